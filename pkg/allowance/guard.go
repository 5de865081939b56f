package allowance

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"

	"odos-swap/pkg/chain"
	"odos-swap/pkg/erc20"
	swaptypes "odos-swap/pkg/types"
)

// DefaultSettleDelay is how long the guard waits after a confirmed approval
// before handing the nonce back, so the node's pending view catches up.
const DefaultSettleDelay = 500 * time.Millisecond

// Token is the ERC-20 capability the guard needs
type Token interface {
	Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error)
	Approve(ctx context.Context, signer chain.Signer, spender common.Address, amount *big.Int, nonce uint64) (*types.Transaction, error)
}

// TokenFactory binds a token contract on the session's client
type TokenFactory func(address common.Address, client chain.Client) Token

// DefaultTokenFactory uses the ABI-packed ERC-20 binding
func DefaultTokenFactory(address common.Address, client chain.Client) Token {
	return erc20.NewToken(address, client)
}

// Request describes the allowance the swap needs
type Request struct {
	Token   common.Address
	Spender common.Address
	Amount  *big.Int
	Nonce   uint64
}

// Result is what the guard did. Approval is nil when no transaction was sent.
type Result struct {
	Nonce    uint64
	Approval *swaptypes.SwapOutcome
	State    *swaptypes.AllowanceState
}

// Settings controls what the guard does after a confirmed approval.
// With PollTimeout > 0 the guard re-reads the allowance every PollInterval
// until it covers the amount; otherwise it sleeps SettleDelay.
type Settings struct {
	SettleDelay  time.Duration
	PollTimeout  time.Duration
	PollInterval time.Duration
}

// Guard makes sure the swap contract may spend the input token
type Guard struct {
	tokens   TokenFactory
	waiter   chain.Waiter
	settings Settings
	sleep    func(ctx context.Context, d time.Duration) error
	logger   *logrus.Logger
}

// NewGuard creates an allowance guard
func NewGuard(tokens TokenFactory, waiter chain.Waiter, settings Settings, logger *logrus.Logger) *Guard {
	if tokens == nil {
		tokens = DefaultTokenFactory
	}
	if waiter == nil {
		waiter = chain.ReceiptWaiter
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Guard{
		tokens:   tokens,
		waiter:   waiter,
		settings: settings,
		sleep:    sleepContext,
		logger:   logger,
	}
}

// EnsureAllowance approves exactly req.Amount when the current allowance is
// short. The returned nonce is req.Nonce+1 if and only if an approval was sent.
func (g *Guard) EnsureAllowance(ctx context.Context, session *chain.Session, req Request) (*Result, error) {
	result := &Result{Nonce: req.Nonce}

	if swaptypes.IsNative(req.Token) {
		return result, nil
	}

	token := g.tokens(req.Token, session.Client)
	owner := session.Address

	current, err := token.Allowance(ctx, owner, req.Spender)
	if err != nil {
		return nil, swaptypes.NewError(swaptypes.TransportError, "read allowance", req.Token.Hex(), err)
	}
	result.State = &swaptypes.AllowanceState{
		Owner:   owner,
		Spender: req.Spender,
		Current: current,
	}

	log := g.logger.WithFields(logrus.Fields{
		"token":     req.Token.Hex(),
		"spender":   req.Spender.Hex(),
		"allowance": current.String(),
		"required":  req.Amount.String(),
	})

	if current.Cmp(req.Amount) >= 0 {
		log.Debug("allowance sufficient, no approval needed")
		return result, nil
	}

	log.WithField("nonce", req.Nonce).Info("sending approval")

	tx, err := token.Approve(ctx, session.Signer, req.Spender, req.Amount, req.Nonce)
	if err != nil {
		return nil, swaptypes.NewError(swaptypes.TransportError, "send approval", "", err)
	}

	receipt, err := g.waiter.WaitMined(ctx, session.Client, tx)
	if err != nil {
		return nil, swaptypes.NewError(swaptypes.TransportError, "wait approval", tx.Hash().Hex(), err)
	}

	outcome := chain.Outcome(receipt)
	result.Approval = outcome

	log.WithFields(logrus.Fields{
		"tx_hash": outcome.TxHash.Hex(),
		"status":  outcome.Status,
	}).Info("approval mined")

	if !outcome.Succeeded() {
		return result, swaptypes.NewError(swaptypes.ApprovalFailed, "approve", "approve transaction "+outcome.TxHash.Hex()+" reverted", nil)
	}

	if err := g.settle(ctx, token, owner, req); err != nil {
		return result, err
	}

	result.Nonce = req.Nonce + 1
	return result, nil
}

func (g *Guard) settle(ctx context.Context, token Token, owner common.Address, req Request) error {
	if g.settings.PollTimeout <= 0 {
		if err := g.sleep(ctx, g.settings.SettleDelay); err != nil {
			return swaptypes.NewError(swaptypes.TransportError, "settle", "", err)
		}
		return nil
	}

	pollCtx, cancel := context.WithTimeout(ctx, g.settings.PollTimeout)
	defer cancel()

	for {
		current, err := token.Allowance(pollCtx, owner, req.Spender)
		if err == nil && current.Cmp(req.Amount) >= 0 {
			return nil
		}

		if err := g.sleep(pollCtx, g.settings.PollInterval); err != nil {
			if ctx.Err() != nil {
				return swaptypes.NewError(swaptypes.TransportError, "settle", "", ctx.Err())
			}
			return swaptypes.NewError(swaptypes.ApprovalFailed, "settle",
				"allowance did not reflect the approval within "+g.settings.PollTimeout.String(), nil)
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
