package chain

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"

	swaptypes "odos-swap/pkg/types"
)

// Waiter blocks until a sent transaction is included
type Waiter interface {
	WaitMined(ctx context.Context, client Client, tx *types.Transaction) (*types.Receipt, error)
}

// WaiterFunc adapts a function to Waiter
type WaiterFunc func(ctx context.Context, client Client, tx *types.Transaction) (*types.Receipt, error)

// WaitMined calls f
func (f WaiterFunc) WaitMined(ctx context.Context, client Client, tx *types.Transaction) (*types.Receipt, error) {
	return f(ctx, client, tx)
}

// ReceiptWaiter polls the node for the receipt until it shows up.
// The only timeout is the one carried by ctx.
var ReceiptWaiter Waiter = WaiterFunc(func(ctx context.Context, client Client, tx *types.Transaction) (*types.Receipt, error) {
	return bind.WaitMined(ctx, client, tx)
})

// Outcome converts a receipt into a SwapOutcome
func Outcome(receipt *types.Receipt) *swaptypes.SwapOutcome {
	return &swaptypes.SwapOutcome{
		TxHash:      receipt.TxHash,
		Status:      receipt.Status,
		BlockNumber: receipt.BlockNumber,
		GasUsed:     receipt.GasUsed,
	}
}
