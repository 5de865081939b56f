package erc20

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"

	"odos-swap/pkg/chain"
)

// allowance and approve are the only methods the swap needs
const erc20ABI = `[{"constant":true,"inputs":[{"name":"_owner","type":"address"},{"name":"_spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"type":"function"},{"constant":false,"inputs":[{"name":"_spender","type":"address"},{"name":"_value","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"type":"function"}]`

// gasLimitBufferPercent is added on top of the node's gas estimate for approvals
const gasLimitBufferPercent = 20

var parsedABI abi.ABI

func init() {
	var err error
	parsedABI, err = abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		panic(err)
	}
}

// Token is an ERC-20 contract reached through a chain client
type Token struct {
	address common.Address
	client  chain.Client
}

// NewToken binds the ERC-20 contract at address
func NewToken(address common.Address, client chain.Client) *Token {
	return &Token{
		address: address,
		client:  client,
	}
}

// Address returns the token contract address
func (t *Token) Address() common.Address {
	return t.address
}

// Allowance reads how much spender may move on behalf of owner
func (t *Token) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	data, err := parsedABI.Pack("allowance", owner, spender)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack allowance data")
	}

	result, err := t.client.CallContract(ctx, ethereum.CallMsg{
		To:   &t.address,
		Data: data,
	}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to call allowance")
	}

	out, err := parsedABI.Unpack("allowance", result)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unpack allowance")
	}
	if len(out) == 0 {
		return nil, errors.New("no allowance returned")
	}

	allowance, ok := out[0].(*big.Int)
	if !ok {
		return nil, errors.New("invalid allowance type")
	}

	return allowance, nil
}

// Approve signs and sends approve(spender, amount) at the given nonce.
// It returns once the node has accepted the transaction.
func (t *Token) Approve(ctx context.Context, signer chain.Signer, spender common.Address, amount *big.Int, nonce uint64) (*types.Transaction, error) {
	data, err := parsedABI.Pack("approve", spender, amount)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack approve data")
	}

	gasLimit, err := t.client.EstimateGas(ctx, ethereum.CallMsg{
		From: signer.Address(),
		To:   &t.address,
		Data: data,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to estimate approve gas")
	}
	gasLimit = gasLimit * (100 + gasLimitBufferPercent) / 100

	gasPrice, err := t.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get gas price")
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &t.address,
		Value:    big.NewInt(0),
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})

	signedTx, err := signer.SignTx(tx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign approve transaction")
	}

	if err := t.client.SendTransaction(ctx, signedTx); err != nil {
		return nil, errors.Wrap(err, "failed to send approve transaction")
	}

	return signedTx, nil
}

// DecodeApprove extracts spender and amount from approve calldata
func DecodeApprove(data []byte) (common.Address, *big.Int, error) {
	method, err := parsedABI.MethodById(data)
	if err != nil {
		return common.Address{}, nil, errors.Wrap(err, "unknown method")
	}
	if method.Name != "approve" {
		return common.Address{}, nil, errors.Errorf("not an approve call: %s", method.Name)
	}

	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return common.Address{}, nil, errors.Wrap(err, "failed to unpack approve args")
	}

	spender, ok := args[0].(common.Address)
	if !ok {
		return common.Address{}, nil, errors.New("invalid spender type")
	}
	amount, ok := args[1].(*big.Int)
	if !ok {
		return common.Address{}, nil, errors.New("invalid amount type")
	}
	return spender, amount, nil
}
