package types

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// NativeToken is the all-zero address used to denote the chain's native coin.
var NativeToken = common.Address{}

// IsNative reports whether token denotes the native asset rather than an ERC-20.
func IsNative(token common.Address) bool {
	return token == NativeToken
}

// SwapRequest represents a fully parsed swap command
type SwapRequest struct {
	RPCEndpoint string
	PrivateKey  string
	TokenIn     common.Address
	TokenOut    common.Address
	Amount      *big.Int
}

// Validate checks the request before any network activity happens
func (r *SwapRequest) Validate() error {
	if r.RPCEndpoint == "" {
		return NewError(InvalidInput, "validate", "rpc endpoint is required", nil)
	}
	if r.PrivateKey == "" {
		return NewError(InvalidInput, "validate", "private key is required", nil)
	}
	if r.Amount == nil || r.Amount.Sign() <= 0 {
		return NewError(InvalidInput, "validate", "amount must be greater than 0", nil)
	}
	if r.Amount.Cmp(MaxAmount) > 0 {
		return NewError(InvalidInput, "validate", "amount does not fit in 128 bits", nil)
	}
	if r.TokenIn == r.TokenOut {
		return NewError(InvalidInput, "validate", "token in cannot be same as token out", nil)
	}
	return nil
}

// String keeps the private key out of logs.
func (r SwapRequest) String() string {
	return fmt.Sprintf("SwapRequest{rpc=%s tokenIn=%s tokenOut=%s amount=%s}",
		r.RPCEndpoint, r.TokenIn.Hex(), r.TokenOut.Hex(), r.Amount)
}

// MaxAmount is the largest amount accepted (2^128 - 1)
var MaxAmount = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// QuoteParams describes a single-hop quote request
type QuoteParams struct {
	UserAddr common.Address
	ChainID  uint64
	TokenIn  common.Address
	TokenOut common.Address
	Amount   *big.Int
}

// Quote is the routing service's answer to a quote request
type Quote struct {
	PathID       string
	QuotedOutput *big.Int // nil when the service did not report an output amount
	NetOutValue  decimal.Decimal
	GasEstimate  float64
	Raw          map[string]interface{}
}

// AssembledTransaction is a ready-to-sign swap payload returned by the routing service
type AssembledTransaction struct {
	To       common.Address
	Data     []byte
	Gas      uint64
	GasPrice *big.Int
	Nonce    uint64
	ChainID  uint64
	Value    *big.Int // as reported by the service, may be nil
}

// AllowanceState is the observed ERC-20 allowance for a spender
type AllowanceState struct {
	Owner   common.Address
	Spender common.Address
	Current *big.Int
}

// Receipt status codes
const (
	StatusFailed  uint64 = 0
	StatusSuccess uint64 = 1
)

// SwapOutcome is the on-chain result of a submitted transaction
type SwapOutcome struct {
	TxHash      common.Hash
	Status      uint64
	BlockNumber *big.Int
	GasUsed     uint64
}

// Succeeded reports whether the receipt status is success
func (o *SwapOutcome) Succeeded() bool {
	return o != nil && o.Status == StatusSuccess
}
