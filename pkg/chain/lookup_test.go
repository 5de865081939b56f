package chain_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odos-swap/pkg/chain"
	"odos-swap/pkg/chain/chaintest"
	swaptypes "odos-swap/pkg/types"
)

type fakeReader struct {
	tx         *types.Transaction
	pending    bool
	txErr      error
	receipt    *types.Receipt
	receiptErr error
}

func (f *fakeReader) TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error) {
	return f.tx, f.pending, f.txErr
}

func (f *fakeReader) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	return f.receipt, f.receiptErr
}

func signedTx(t *testing.T) *types.Transaction {
	t.Helper()
	to := common.HexToAddress("0xCf5540fFFCdC3d510B18bFcA6d2b9987b0772559")
	tx, err := chaintest.NewSession(chaintest.NewClient(1)).Signer.SignTx(types.NewTx(&types.LegacyTx{
		Nonce:    7,
		To:       &to,
		Value:    big.NewInt(5),
		Gas:      300_000,
		GasPrice: big.NewInt(2),
		Data:     []byte{0x01, 0x02},
	}))
	require.NoError(t, err)
	return tx
}

func TestLookupTransactionMined(t *testing.T) {
	t.Parallel()

	tx := signedTx(t)
	reader := &fakeReader{
		tx: tx,
		receipt: &types.Receipt{
			TxHash:      tx.Hash(),
			Status:      types.ReceiptStatusFailed,
			BlockNumber: big.NewInt(42),
			GasUsed:     123,
		},
	}

	info, err := chain.LookupTransaction(context.Background(), reader, tx.Hash())
	require.NoError(t, err)

	assert.Equal(t, uint64(7), info.Nonce)
	assert.Equal(t, "5", info.Value.String())
	assert.False(t, info.Pending)
	require.NotNil(t, info.Receipt)
	assert.Equal(t, swaptypes.StatusFailed, info.Receipt.Status)
	assert.Equal(t, uint64(42), info.Receipt.BlockNumber.Uint64())
}

func TestLookupTransactionPending(t *testing.T) {
	t.Parallel()

	tx := signedTx(t)

	info, err := chain.LookupTransaction(context.Background(), &fakeReader{tx: tx, pending: true}, tx.Hash())
	require.NoError(t, err)
	assert.True(t, info.Pending)
	assert.Nil(t, info.Receipt)

	info, err = chain.LookupTransaction(context.Background(), &fakeReader{tx: tx, receiptErr: ethereum.NotFound}, tx.Hash())
	require.NoError(t, err)
	assert.True(t, info.Pending)
}

func TestLookupTransactionErrors(t *testing.T) {
	t.Parallel()

	hash := common.HexToHash("0x01")

	_, err := chain.LookupTransaction(context.Background(), &fakeReader{txErr: ethereum.NotFound}, hash)
	require.ErrorIs(t, err, swaptypes.ErrInvalidInput)

	_, err = chain.LookupTransaction(context.Background(), &fakeReader{txErr: errors.New("boom")}, hash)
	require.ErrorIs(t, err, swaptypes.ErrTransport)

	tx := signedTx(t)
	_, err = chain.LookupTransaction(context.Background(), &fakeReader{tx: tx, receiptErr: errors.New("boom")}, tx.Hash())
	require.ErrorIs(t, err, swaptypes.ErrTransport)
}

func TestReceiptWaiterReturnsMinedReceipt(t *testing.T) {
	t.Parallel()

	client := chaintest.NewClient(1)
	tx := signedTx(t)
	require.NoError(t, client.SendTransaction(context.Background(), tx))

	receipt, err := chain.ReceiptWaiter.WaitMined(context.Background(), client, tx)
	require.NoError(t, err)

	outcome := chain.Outcome(receipt)
	assert.Equal(t, tx.Hash(), outcome.TxHash)
	assert.True(t, outcome.Succeeded())
	assert.Equal(t, uint64(100), outcome.BlockNumber.Uint64())
}

func TestReceiptWaiterHonoursContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := chain.ReceiptWaiter.WaitMined(ctx, chaintest.NewClient(1), signedTx(t))
	require.ErrorIs(t, err, context.Canceled)
}
