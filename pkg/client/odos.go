package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"odos-swap/pkg/types"
)

const (
	quotePath    = "/sor/quote/v2"
	assemblePath = "/sor/assemble"

	// DefaultBaseURL is the public Odos API
	DefaultBaseURL = "https://api.odos.xyz"

	// maxErrorBody caps how much of a failed response is surfaced
	maxErrorBody = 4096
)

// HTTPDoer is the transport used to reach the routing service
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Policy holds the fixed quote parameters
type Policy struct {
	SlippagePercent float64
	ReferralCode    uint64
	Compact         bool
}

// DefaultPolicy is 1% slippage, no referral code, compact response
var DefaultPolicy = Policy{
	SlippagePercent: 1,
	ReferralCode:    0,
	Compact:         true,
}

// OdosClient talks to the Odos smart order router
type OdosClient struct {
	baseURL string
	http    HTTPDoer
	policy  Policy
	logger  *logrus.Logger
}

// Option configures an OdosClient
type Option func(*OdosClient)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *OdosClient) {
		c.http = doer
	}
}

// WithPolicy replaces the default quote policy
func WithPolicy(p Policy) Option {
	return func(c *OdosClient) {
		c.policy = p
	}
}

// WithLogger sets the logger
func WithLogger(logger *logrus.Logger) Option {
	return func(c *OdosClient) {
		c.logger = logger
	}
}

// NewOdosClient creates a new Odos API client
func NewOdosClient(baseURL string, opts ...Option) *OdosClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &OdosClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		policy:  DefaultPolicy,
		logger:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type inputToken struct {
	TokenAddress string `json:"tokenAddress"`
	Amount       string `json:"amount"`
}

type outputToken struct {
	TokenAddress string `json:"tokenAddress"`
	Proportion   int    `json:"proportion"`
}

type quoteRequest struct {
	ChainID              uint64        `json:"chainId"`
	InputTokens          []inputToken  `json:"inputTokens"`
	OutputTokens         []outputToken `json:"outputTokens"`
	SlippageLimitPercent float64       `json:"slippageLimitPercent"`
	UserAddr             string        `json:"userAddr"`
	ReferralCode         uint64        `json:"referralCode"`
	Compact              bool          `json:"compact"`
}

type quoteResponse struct {
	PathID      *string          `json:"pathId"`
	OutAmounts  []string         `json:"outAmounts"`
	NetOutValue *decimal.Decimal `json:"netOutValue"`
	GasEstimate float64          `json:"gasEstimate"`
}

type assembleRequest struct {
	UserAddr string `json:"userAddr"`
	PathID   string `json:"pathId"`
	Simulate bool   `json:"simulate"`
}

type assembleResponse struct {
	Transaction *assembledTx `json:"transaction"`
}

type assembledTx struct {
	To       *string      `json:"to"`
	Data     *string      `json:"data"`
	Gas      *json.Number `json:"gas"`
	GasPrice *json.Number `json:"gasPrice"`
	Nonce    *json.Number `json:"nonce"`
	ChainID  *json.Number `json:"chainId"`
	Value    *json.Number `json:"value"`
}

// GetQuote requests a single-hop quote: one input token for the full amount,
// one output token at 100% proportion.
func (c *OdosClient) GetQuote(ctx context.Context, params types.QuoteParams) (*types.Quote, error) {
	const op = "quote"

	body := quoteRequest{
		ChainID: params.ChainID,
		InputTokens: []inputToken{
			{TokenAddress: params.TokenIn.Hex(), Amount: params.Amount.String()},
		},
		OutputTokens: []outputToken{
			{TokenAddress: params.TokenOut.Hex(), Proportion: 1},
		},
		SlippageLimitPercent: c.policy.SlippagePercent,
		UserAddr:             params.UserAddr.Hex(),
		ReferralCode:         c.policy.ReferralCode,
		Compact:              c.policy.Compact,
	}

	raw, err := c.post(ctx, op, quotePath, body)
	if err != nil {
		return nil, err
	}

	var resp quoteResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, types.NewError(types.MalformedResponse, op, "undecodable quote response", err)
	}
	if resp.PathID == nil || *resp.PathID == "" {
		return nil, types.NewError(types.MalformedResponse, op, "pathId missing from quote response", nil)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, types.NewError(types.MalformedResponse, op, "quote response is not a JSON object", err)
	}

	quote := &types.Quote{
		PathID:      *resp.PathID,
		GasEstimate: resp.GasEstimate,
		Raw:         doc,
	}
	if resp.NetOutValue != nil {
		quote.NetOutValue = *resp.NetOutValue
	}
	if len(resp.OutAmounts) > 0 {
		out, ok := new(big.Int).SetString(resp.OutAmounts[0], 10)
		if !ok {
			return nil, types.Errorf(types.MalformedResponse, op, nil, "invalid outAmounts[0]: %q", resp.OutAmounts[0])
		}
		quote.QuotedOutput = out
	}

	c.logger.WithFields(logrus.Fields{
		"path_id":    quote.PathID,
		"out_amount": quote.QuotedOutput,
	}).Debug("quote received")

	return quote, nil
}

// Assemble exchanges a path id for an executable (non-simulated) transaction
func (c *OdosClient) Assemble(ctx context.Context, userAddr common.Address, pathID string) (*types.AssembledTransaction, error) {
	const op = "assemble"

	raw, err := c.post(ctx, op, assemblePath, assembleRequest{
		UserAddr: userAddr.Hex(),
		PathID:   pathID,
		Simulate: false,
	})
	if err != nil {
		return nil, err
	}

	var resp assembleResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, types.NewError(types.MalformedResponse, op, "undecodable assemble response", err)
	}
	if resp.Transaction == nil {
		return nil, types.NewError(types.MalformedResponse, op, "transaction missing from assemble response", nil)
	}

	tx, err := resp.Transaction.toAssembled()
	if err != nil {
		return nil, types.NewError(types.MalformedResponse, op, err.Error(), nil)
	}

	c.logger.WithFields(logrus.Fields{
		"to":       tx.To.Hex(),
		"nonce":    tx.Nonce,
		"gas":      tx.Gas,
		"chain_id": tx.ChainID,
	}).Debug("transaction assembled")

	return tx, nil
}

func (t *assembledTx) toAssembled() (*types.AssembledTransaction, error) {
	if t.To == nil || !common.IsHexAddress(*t.To) {
		return nil, fieldError("to", t.To == nil)
	}
	if t.Data == nil {
		return nil, fieldError("data", true)
	}
	data, err := hexutil.Decode(*t.Data)
	if err != nil {
		return nil, fieldError("data", false)
	}

	gas, err := uintField("gas", t.Gas)
	if err != nil {
		return nil, err
	}
	nonce, err := uintField("nonce", t.Nonce)
	if err != nil {
		return nil, err
	}
	chainID, err := uintField("chainId", t.ChainID)
	if err != nil {
		return nil, err
	}
	gasPrice, err := bigField("gasPrice", t.GasPrice)
	if err != nil {
		return nil, err
	}

	tx := &types.AssembledTransaction{
		To:       common.HexToAddress(*t.To),
		Data:     data,
		Gas:      gas,
		GasPrice: gasPrice,
		Nonce:    nonce,
		ChainID:  chainID,
	}
	if t.Value != nil {
		if value, err := bigField("value", t.Value); err == nil {
			tx.Value = value
		}
	}
	return tx, nil
}

func fieldError(name string, missing bool) error {
	if missing {
		return fmt.Errorf("transaction.%s missing", name)
	}
	return fmt.Errorf("transaction.%s has the wrong shape", name)
}

func bigField(name string, n *json.Number) (*big.Int, error) {
	if n == nil {
		return nil, fieldError(name, true)
	}
	v, ok := new(big.Int).SetString(n.String(), 10)
	if !ok || v.Sign() < 0 {
		return nil, fieldError(name, false)
	}
	return v, nil
}

func uintField(name string, n *json.Number) (uint64, error) {
	v, err := bigField(name, n)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, fieldError(name, false)
	}
	return v.Uint64(), nil
}

// post sends a JSON body and returns the raw response body of a 2xx reply
func (c *OdosClient) post(ctx context.Context, op, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, types.NewError(types.InvalidInput, op, "failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, types.NewError(types.InvalidInput, op, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.WithField("url", req.URL.String()).Debugf("POST %s", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, types.NewError(types.TransportError, op, "request to routing service failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewError(types.TransportError, op, "failed to read response body", err)
	}

	// Check for successful status codes (200-299)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := raw
		if len(detail) > maxErrorBody {
			detail = detail[:maxErrorBody]
		}
		return nil, types.Errorf(types.RoutingServiceError, op, nil, "status %d: %s", resp.StatusCode, string(detail))
	}

	return raw, nil
}
