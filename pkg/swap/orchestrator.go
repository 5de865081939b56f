package swap

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"odos-swap/pkg/allowance"
	"odos-swap/pkg/chain"
	"odos-swap/pkg/types"
)

// Connector binds the RPC endpoint and signing key
type Connector interface {
	Connect(ctx context.Context, rpcURL, privateKey string) (*chain.Session, error)
}

// Router is the routing service: quote, then assemble
type Router interface {
	GetQuote(ctx context.Context, params types.QuoteParams) (*types.Quote, error)
	Assemble(ctx context.Context, userAddr common.Address, pathID string) (*types.AssembledTransaction, error)
}

// AllowanceGuard raises the spending allowance when needed
type AllowanceGuard interface {
	EnsureAllowance(ctx context.Context, session *chain.Session, req allowance.Request) (*allowance.Result, error)
}

// Submitter sends the swap and waits for its receipt
type Submitter interface {
	Submit(ctx context.Context, session *chain.Session, assembled *types.AssembledTransaction, value *big.Int) (*types.SwapOutcome, error)
}

// Result collects everything a run produced, also on failure
type Result struct {
	State     State
	ChainID   uint64
	Wallet    common.Address
	Quote     *types.Quote
	Assembled *types.AssembledTransaction
	Allowance *types.AllowanceState
	Approval  *types.SwapOutcome
	Nonce     uint64
	Value     *big.Int
	Swap      *types.SwapOutcome
}

// Orchestrator sequences a single swap run
type Orchestrator struct {
	connector Connector
	router    Router
	guard     AllowanceGuard
	submitter Submitter
	observers []Observer
	logger    *logrus.Logger
}

// NewOrchestrator wires the swap stages together
func NewOrchestrator(connector Connector, router Router, guard AllowanceGuard, submitter Submitter, logger *logrus.Logger, observers ...Observer) *Orchestrator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Orchestrator{
		connector: connector,
		router:    router,
		guard:     guard,
		submitter: submitter,
		observers: observers,
		logger:    logger,
	}
}

// run tracks the current state of one execution
type run struct {
	o       *Orchestrator
	result  *Result
	entered time.Time
}

func (r *run) advance(to State) {
	r.transition(to, nil)
}

func (r *run) fail(err error) error {
	if types.KindOf(err) == "" {
		err = types.NewError(types.TransportError, string(r.result.State), "", err)
	}
	r.transition(Failed, err)
	return err
}

func (r *run) transition(to State, err error) {
	now := time.Now()
	t := Transition{
		From:    r.result.State,
		To:      to,
		Elapsed: now.Sub(r.entered),
		Err:     err,
	}
	r.result.State = to
	r.entered = now

	fields := logrus.Fields{"from": t.From, "state": t.To, "elapsed": t.Elapsed}
	if err != nil {
		fields["kind"] = types.KindOf(err)
		r.o.logger.WithFields(fields).WithError(err).Error("swap failed")
	} else {
		r.o.logger.WithFields(fields).Debug("state transition")
	}

	for _, obs := range r.o.observers {
		obs.OnTransition(t)
	}
}

func (o *Orchestrator) start() *run {
	return &run{o: o, result: &Result{State: Init}, entered: time.Now()}
}

// Run executes Init → ChainBound → Quoted → Assembled → [Approved] →
// Submitted → Done. Any failure moves to Failed and ends the run; the
// returned error is a *types.Error.
func (o *Orchestrator) Run(ctx context.Context, req *types.SwapRequest) (*Result, error) {
	r := o.start()

	session, quote, err := o.quote(ctx, r, req)
	if err != nil {
		return r.result, err
	}
	defer session.Close()

	assembled, err := o.router.Assemble(ctx, session.Address, quote.PathID)
	if err != nil {
		return r.result, r.fail(err)
	}
	r.result.Assembled = assembled
	r.result.Nonce = assembled.Nonce
	r.advance(Assembled)

	guarded, err := o.guard.EnsureAllowance(ctx, session, allowance.Request{
		Token:   req.TokenIn,
		Spender: assembled.To,
		Amount:  req.Amount,
		Nonce:   assembled.Nonce,
	})
	if guarded != nil {
		r.result.Allowance = guarded.State
		r.result.Approval = guarded.Approval
	}
	if err != nil {
		return r.result, r.fail(err)
	}
	r.result.Nonce = guarded.Nonce
	if guarded.Approval != nil {
		r.advance(Approved)
	}

	swapTx := *assembled
	swapTx.Nonce = r.result.Nonce
	r.result.Value = SwapValue(req.TokenIn, req.Amount)

	outcome, err := o.submitter.Submit(ctx, session, &swapTx, r.result.Value)
	r.result.Swap = outcome
	if err != nil {
		return r.result, r.fail(err)
	}
	r.advance(Submitted)
	r.advance(Done)

	return r.result, nil
}

// Quote runs only the read-only prefix of a swap (Init → ChainBound → Quoted)
// and sends nothing on-chain.
func (o *Orchestrator) Quote(ctx context.Context, req *types.SwapRequest) (*Result, error) {
	r := o.start()

	session, _, err := o.quote(ctx, r, req)
	if err != nil {
		return r.result, err
	}
	session.Close()

	return r.result, nil
}

func (o *Orchestrator) quote(ctx context.Context, r *run, req *types.SwapRequest) (*chain.Session, *types.Quote, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, r.fail(err)
	}

	session, err := o.connector.Connect(ctx, req.RPCEndpoint, req.PrivateKey)
	if err != nil {
		return nil, nil, r.fail(err)
	}
	r.result.ChainID = session.ChainID
	r.result.Wallet = session.Address
	r.advance(ChainBound)

	quote, err := o.router.GetQuote(ctx, types.QuoteParams{
		UserAddr: session.Address,
		ChainID:  session.ChainID,
		TokenIn:  req.TokenIn,
		TokenOut: req.TokenOut,
		Amount:   req.Amount,
	})
	if err != nil {
		session.Close()
		return nil, nil, r.fail(err)
	}
	r.result.Quote = quote
	r.advance(Quoted)

	return session, quote, nil
}

// SwapValue is the native value attached to the swap: the full amount when
// the input is the native asset, zero for ERC-20 input.
func SwapValue(tokenIn common.Address, amount *big.Int) *big.Int {
	if types.IsNative(tokenIn) {
		return new(big.Int).Set(amount)
	}
	return big.NewInt(0)
}
