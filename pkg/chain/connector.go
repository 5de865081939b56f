package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"

	"odos-swap/pkg/parser"
	swaptypes "odos-swap/pkg/types"
)

// Client is the subset of the node API the swap needs. *ethclient.Client satisfies it.
type Client interface {
	ChainID(ctx context.Context) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	Close()
}

// DialFunc opens a Client for an RPC endpoint
type DialFunc func(ctx context.Context, rpcURL string) (Client, error)

// DialEthClient dials a JSON-RPC endpoint with go-ethereum's ethclient
func DialEthClient(ctx context.Context, rpcURL string) (Client, error) {
	return ethclient.DialContext(ctx, rpcURL)
}

// Session is the chain binding for a single run. It is immutable once created.
type Session struct {
	ChainID uint64
	Address common.Address
	Signer  Signer
	Client  Client
}

// Close releases the RPC connection
func (s *Session) Close() {
	if s != nil && s.Client != nil {
		s.Client.Close()
	}
}

// Connector binds an RPC endpoint and a private key into a Session
type Connector struct {
	dial      DialFunc
	supported map[uint64]struct{}
	logger    *logrus.Logger
}

// NewConnector creates a connector that only accepts the given chain ids
func NewConnector(dial DialFunc, supported []uint64, logger *logrus.Logger) *Connector {
	if dial == nil {
		dial = DialEthClient
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	allowed := make(map[uint64]struct{}, len(supported))
	for _, id := range supported {
		allowed[id] = struct{}{}
	}

	return &Connector{
		dial:      dial,
		supported: allowed,
		logger:    logger,
	}
}

// IsSupported reports whether chainID is in the allow-list
func (c *Connector) IsSupported(chainID uint64) bool {
	_, ok := c.supported[chainID]
	return ok
}

// Connect resolves the remote chain id, checks it against the allow-list and
// binds the signing key to it. The chain id lookup is the only round trip.
func (c *Connector) Connect(ctx context.Context, rpcURL, privateKey string) (*Session, error) {
	client, err := c.dial(ctx, rpcURL)
	if err != nil {
		return nil, swaptypes.NewError(swaptypes.TransportError, "dial rpc", rpcURL, err)
	}

	session, err := c.bind(ctx, client, privateKey)
	if err != nil {
		client.Close()
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"chain_id": session.ChainID,
		"wallet":   session.Address.Hex(),
	}).Debug("chain session bound")

	return session, nil
}

func (c *Connector) bind(ctx context.Context, client Client, privateKey string) (*Session, error) {
	id, err := client.ChainID(ctx)
	if err != nil {
		return nil, swaptypes.NewError(swaptypes.TransportError, "resolve chain id", "", err)
	}

	if !id.IsUint64() || !c.IsSupported(id.Uint64()) {
		return nil, swaptypes.NewError(swaptypes.UnsupportedChain, "resolve chain id",
			fmt.Sprintf("odos does not support chain id %s", id), nil)
	}
	chainID := id.Uint64()

	key, err := crypto.HexToECDSA(parser.NormalizePrivateKey(privateKey))
	if err != nil {
		// the parse error can echo key material, keep it out of the message
		return nil, swaptypes.NewError(swaptypes.InvalidKey, "parse private key", "not a valid secp256k1 hex key", nil)
	}

	signer := NewKeySigner(key, chainID)

	return &Session{
		ChainID: chainID,
		Address: signer.Address(),
		Signer:  signer,
		Client:  client,
	}, nil
}

// Signer produces signatures over transactions for one address
type Signer interface {
	Address() common.Address
	SignTx(tx *types.Transaction) (*types.Transaction, error)
}

// KeySigner signs with an in-memory ECDSA key for a fixed chain id
type KeySigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
	signer  types.Signer
}

// NewKeySigner binds key to chainID
func NewKeySigner(key *ecdsa.PrivateKey, chainID uint64) *KeySigner {
	return &KeySigner{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		signer:  types.LatestSignerForChainID(new(big.Int).SetUint64(chainID)),
	}
}

// Address returns the signing address
func (s *KeySigner) Address() common.Address {
	return s.address
}

// SignTx signs tx for the bound chain id
func (s *KeySigner) SignTx(tx *types.Transaction) (*types.Transaction, error) {
	return types.SignTx(tx, s.signer, s.key)
}
