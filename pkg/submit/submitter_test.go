package submit

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odos-swap/pkg/chain"
	"odos-swap/pkg/chain/chaintest"
	swaptypes "odos-swap/pkg/types"
)

var router = common.HexToAddress("0x19cEeAd7105607Cd444F5ad10dd51356436095a1")

func assembledTx(chainID uint64) *swaptypes.AssembledTransaction {
	return &swaptypes.AssembledTransaction{
		To:       router,
		Data:     []byte{0x83, 0xbd, 0x37, 0xf9},
		Gas:      250_000,
		GasPrice: big.NewInt(1_500_000_000),
		Nonce:    4,
		ChainID:  chainID,
		Value:    big.NewInt(999),
	}
}

func TestBuildTx(t *testing.T) {
	t.Parallel()

	tx := BuildTx(assembledTx(8453), big.NewInt(77))

	assert.Equal(t, uint64(4), tx.Nonce())
	assert.Equal(t, router, *tx.To())
	assert.Equal(t, int64(77), tx.Value().Int64())
	assert.Equal(t, uint64(250_000), tx.Gas())
	assert.Equal(t, "1500000000", tx.GasPrice().String())
	assert.Equal(t, []byte{0x83, 0xbd, 0x37, 0xf9}, tx.Data())

	assert.Equal(t, 0, BuildTx(assembledTx(8453), nil).Value().Sign())
}

func TestSubmitSuccess(t *testing.T) {
	t.Parallel()

	client := chaintest.NewClient(8453)
	session := chaintest.NewSession(client)

	outcome, err := NewSubmitter(nil, nil).Submit(context.Background(), session, assembledTx(8453), big.NewInt(1000))
	require.NoError(t, err)

	sent := client.SentTransactions()
	require.Len(t, sent, 1)
	tx := sent[0]
	assert.Equal(t, uint64(4), tx.Nonce())
	assert.Equal(t, int64(1000), tx.Value().Int64())
	assert.Equal(t, big.NewInt(8453), tx.ChainId())

	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(8453)), tx)
	require.NoError(t, err)
	assert.Equal(t, session.Address, sender)

	assert.Equal(t, tx.Hash(), outcome.TxHash)
	assert.True(t, outcome.Succeeded())
}

func TestSubmitReverted(t *testing.T) {
	t.Parallel()

	client := chaintest.NewClient(1)
	client.StatusFor = func(*types.Transaction) uint64 { return types.ReceiptStatusFailed }

	outcome, err := NewSubmitter(nil, nil).Submit(context.Background(), chaintest.NewSession(client), assembledTx(1), big.NewInt(0))
	require.ErrorIs(t, err, swaptypes.ErrSwapFailed)
	require.NotNil(t, outcome)
	assert.Equal(t, swaptypes.StatusFailed, outcome.Status)
	assert.Contains(t, err.Error(), outcome.TxHash.Hex())
}

func TestSubmitChainMismatch(t *testing.T) {
	t.Parallel()

	client := chaintest.NewClient(1)

	_, err := NewSubmitter(nil, nil).Submit(context.Background(), chaintest.NewSession(client), assembledTx(137), nil)
	require.ErrorIs(t, err, swaptypes.ErrMalformedResponse)
	assert.Empty(t, client.SentTransactions())
}

func TestSubmitTransportErrors(t *testing.T) {
	t.Parallel()

	client := chaintest.NewClient(1)
	client.SendErr = errors.New("replacement transaction underpriced")

	_, err := NewSubmitter(nil, nil).Submit(context.Background(), chaintest.NewSession(client), assembledTx(1), nil)
	require.ErrorIs(t, err, swaptypes.ErrTransport)

	waitErr := errors.New("receipt lookup failed")
	waiter := chain.WaiterFunc(func(ctx context.Context, client chain.Client, tx *types.Transaction) (*types.Receipt, error) {
		return nil, waitErr
	})
	client = chaintest.NewClient(1)

	_, err = NewSubmitter(waiter, nil).Submit(context.Background(), chaintest.NewSession(client), assembledTx(1), nil)
	require.ErrorIs(t, err, swaptypes.ErrTransport)
	require.ErrorIs(t, err, waitErr)
	assert.Len(t, client.SentTransactions(), 1)
}
