package chain

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	swaptypes "odos-swap/pkg/types"
)

// TxReader looks up transactions by hash. *ethclient.Client satisfies it.
type TxReader interface {
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// TxInfo is what the node knows about a sent transaction
type TxInfo struct {
	Hash     common.Hash
	Nonce    uint64
	To       *common.Address
	Value    *big.Int
	GasLimit uint64
	GasPrice *big.Int
	Data     []byte
	Pending  bool
	Receipt  *swaptypes.SwapOutcome // nil until mined
}

// LookupTransaction fetches a transaction and, once mined, its receipt
func LookupTransaction(ctx context.Context, reader TxReader, hash common.Hash) (*TxInfo, error) {
	tx, isPending, err := reader.TransactionByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, swaptypes.NewError(swaptypes.InvalidInput, "lookup transaction", "transaction "+hash.Hex()+" not found", nil)
		}
		return nil, swaptypes.NewError(swaptypes.TransportError, "lookup transaction", hash.Hex(), err)
	}

	info := &TxInfo{
		Hash:     tx.Hash(),
		Nonce:    tx.Nonce(),
		To:       tx.To(),
		Value:    tx.Value(),
		GasLimit: tx.Gas(),
		GasPrice: tx.GasPrice(),
		Data:     tx.Data(),
		Pending:  isPending,
	}
	if isPending {
		return info, nil
	}

	receipt, err := reader.TransactionReceipt(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			info.Pending = true
			return info, nil
		}
		return nil, swaptypes.NewError(swaptypes.TransportError, "lookup receipt", hash.Hex(), err)
	}
	info.Receipt = Outcome(receipt)

	return info, nil
}
