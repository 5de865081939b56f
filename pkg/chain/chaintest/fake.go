// Package chaintest provides an in-memory chain.Client for tests.
package chaintest

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"odos-swap/pkg/chain"
)

// TestKey is a throwaway secp256k1 key used across tests
const TestKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

// TestAddress is the address derived from TestKey
var TestAddress = func() common.Address {
	key, err := crypto.HexToECDSA(TestKey)
	if err != nil {
		panic(err)
	}
	return crypto.PubkeyToAddress(key.PublicKey)
}()

// Client is a fake node. Sent transactions are mined immediately with the
// status returned by StatusFor (success when nil).
type Client struct {
	mu sync.Mutex

	ID       *big.Int
	ChainErr error
	Gas      uint64
	GasPrice *big.Int
	SendErr  error

	// CallFn answers eth_call; nil returns empty data
	CallFn func(msg ethereum.CallMsg) ([]byte, error)
	// StatusFor decides the receipt status of a sent transaction
	StatusFor func(tx *types.Transaction) uint64

	ChainIDCalls  int
	EstimateCalls []ethereum.CallMsg
	Calls         []ethereum.CallMsg
	Sent          []*types.Transaction
	Closed        bool
}

var _ chain.Client = (*Client)(nil)

// NewClient returns a fake node reporting chainID
func NewClient(chainID uint64) *Client {
	return &Client{
		ID:       new(big.Int).SetUint64(chainID),
		Gas:      50_000,
		GasPrice: big.NewInt(1_000_000_000),
	}
}

func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ChainIDCalls++
	if c.ChainErr != nil {
		return nil, c.ChainErr
	}
	return new(big.Int).Set(c.ID), nil
}

func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	c.mu.Lock()
	c.Calls = append(c.Calls, msg)
	fn := c.CallFn
	c.mu.Unlock()

	if fn == nil {
		return nil, nil
	}
	return fn(msg)
}

func (c *Client) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.EstimateCalls = append(c.EstimateCalls, msg)
	return c.Gas, nil
}

func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(c.GasPrice), nil
}

func (c *Client) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SendErr != nil {
		return c.SendErr
	}
	c.Sent = append(c.Sent, tx)
	return nil
}

func (c *Client) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, tx := range c.Sent {
		if tx.Hash() != txHash {
			continue
		}
		status := types.ReceiptStatusSuccessful
		if c.StatusFor != nil {
			status = c.StatusFor(tx)
		}
		return &types.Receipt{
			TxHash:      txHash,
			Status:      status,
			BlockNumber: big.NewInt(int64(100 + i)),
			GasUsed:     tx.Gas() / 2,
		}, nil
	}
	return nil, ethereum.NotFound
}

func (c *Client) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	return nil, nil
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Closed = true
}

// SentTransactions returns a copy of everything sent so far
func (c *Client) SentTransactions() []*types.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*types.Transaction(nil), c.Sent...)
}

// NewSession binds client to the test key
func NewSession(client *Client) *chain.Session {
	key, err := crypto.HexToECDSA(TestKey)
	if err != nil {
		panic(err)
	}
	id := client.ID.Uint64()
	signer := chain.NewKeySigner(key, id)
	return &chain.Session{
		ChainID: id,
		Address: signer.Address(),
		Signer:  signer,
		Client:  client,
	}
}

// Dial returns a chain.DialFunc that always hands out client
func Dial(client *Client) chain.DialFunc {
	return func(ctx context.Context, rpcURL string) (chain.Client, error) {
		return client, nil
	}
}
