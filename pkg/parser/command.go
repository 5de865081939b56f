package parser

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"odos-swap/pkg/types"
)

// SwapArgs holds the raw CLI inputs for a swap
type SwapArgs struct {
	RPC        string
	PrivateKey string
	TokenIn    string
	TokenOut   string
	Amount     string
}

// ParseSwapArgs validates raw CLI inputs and builds a swap request.
// No network activity happens here.
func ParseSwapArgs(args SwapArgs) (*types.SwapRequest, error) {
	tokenIn, err := ParseTokenAddress(args.TokenIn)
	if err != nil {
		return nil, types.NewError(types.InvalidInput, "parse token-in", err.Error(), nil)
	}

	tokenOut, err := ParseTokenAddress(args.TokenOut)
	if err != nil {
		return nil, types.NewError(types.InvalidInput, "parse token-out", err.Error(), nil)
	}

	amount, err := ParseAmount(args.Amount)
	if err != nil {
		return nil, types.NewError(types.InvalidInput, "parse amount", err.Error(), nil)
	}

	req := &types.SwapRequest{
		RPCEndpoint: strings.TrimSpace(args.RPC),
		PrivateKey:  strings.TrimSpace(args.PrivateKey),
		TokenIn:     tokenIn,
		TokenOut:    tokenOut,
		Amount:      amount,
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return req, nil
}

// ParseTokenAddress parses a hex token address; empty input means the native asset
func ParseTokenAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return types.NativeToken, nil
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.Errorf("invalid token address: %s", s)
	}
	return common.HexToAddress(s), nil
}

// ParseAmount parses a base-unit integer amount that must fit in 128 bits
func ParseAmount(s string) (*big.Int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", "")
	if s == "" {
		return nil, errors.Errorf("amount is required")
	}

	amount, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.Errorf("invalid amount format: %s (expected an integer in base units)", s)
	}
	if amount.Sign() <= 0 {
		return nil, errors.Errorf("amount must be greater than 0")
	}
	if amount.Cmp(types.MaxAmount) > 0 {
		return nil, errors.Errorf("amount %s does not fit in 128 bits", s)
	}

	return amount, nil
}

// NormalizePrivateKey strips whitespace and an optional 0x prefix
func NormalizePrivateKey(key string) string {
	key = strings.TrimSpace(key)
	return strings.TrimPrefix(strings.TrimPrefix(key, "0x"), "0X")
}
