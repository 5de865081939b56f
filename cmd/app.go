package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"odos-swap/config"
	"odos-swap/pkg/allowance"
	"odos-swap/pkg/chain"
	"odos-swap/pkg/client"
	"odos-swap/pkg/parser"
	"odos-swap/pkg/submit"
	"odos-swap/pkg/swap"
	"odos-swap/pkg/types"
)

// swapFlags are the inputs shared by swap and quote
type swapFlags struct {
	rpc        string
	privateKey string
	tokenIn    string
	tokenOut   string
	amount     string
}

func (f *swapFlags) register(cmd *cobra.Command) {
	native := types.NativeToken.Hex()

	cmd.Flags().StringVar(&f.rpc, "rpc", "", "JSON-RPC endpoint of the chain (REQUIRED)")
	cmd.Flags().StringVar(&f.privateKey, "private-key", "", "Hex private key of the wallet (or ODOS_SWAP_PRIVATE_KEY)")
	cmd.Flags().StringVar(&f.tokenIn, "token-in", native, "Input token address, zero address for the native coin")
	cmd.Flags().StringVar(&f.tokenOut, "token-out", native, "Output token address, zero address for the native coin")
	cmd.Flags().StringVar(&f.amount, "amount", "", "Amount of token-in in base units, up to 128 bits (REQUIRED)")
	_ = cmd.MarkFlagRequired("rpc")
	_ = cmd.MarkFlagRequired("amount")
}

func (f *swapFlags) request(cfg *config.Config) (*types.SwapRequest, error) {
	key := f.privateKey
	if key == "" {
		key = cfg.PrivateKey
	}

	return parser.ParseSwapArgs(parser.SwapArgs{
		RPC:        f.rpc,
		PrivateKey: key,
		TokenIn:    f.tokenIn,
		TokenOut:   f.tokenOut,
		Amount:     f.amount,
	})
}

// newOrchestrator wires the production stages from configuration
func newOrchestrator(cfg *config.Config, observers ...swap.Observer) *swap.Orchestrator {
	connector := chain.NewConnector(chain.DialEthClient, cfg.Chains.Supported, logger)

	router := client.NewOdosClient(cfg.Odos.BaseURL,
		client.WithHTTPClient(&http.Client{Timeout: cfg.Odos.Timeout}),
		client.WithPolicy(client.Policy{
			SlippagePercent: cfg.Odos.SlippagePercent,
			ReferralCode:    cfg.Odos.ReferralCode,
			Compact:         cfg.Odos.Compact,
		}),
		client.WithLogger(logger),
	)

	guard := allowance.NewGuard(allowance.DefaultTokenFactory, chain.ReceiptWaiter, allowance.Settings{
		SettleDelay:  cfg.Allowance.SettleDelay,
		PollTimeout:  cfg.Allowance.PollTimeout,
		PollInterval: cfg.Allowance.PollInterval,
	}, logger)

	submitter := submit.NewSubmitter(chain.ReceiptWaiter, logger)

	return swap.NewOrchestrator(connector, router, guard, submitter, logger, observers...)
}

// signalContext is cancelled on SIGINT/SIGTERM. A transaction already sent
// stays sent; cancelling only stops waiting for it.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

var stateMessages = map[swap.State]string{
	swap.Init:       " Connecting to chain...",
	swap.ChainBound: " Fetching quote...",
	swap.Quoted:     " Assembling transaction...",
	swap.Assembled:  " Checking allowance and submitting swap...",
	swap.Approved:   " Submitting swap...",
}

// progressSpinner shows the current stage while the run blocks on the network
type progressSpinner struct {
	s *spinner.Spinner
}

func newProgressSpinner(enabled bool) *progressSpinner {
	if !enabled {
		return &progressSpinner{}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = stateMessages[swap.Init]
	s.Start()
	return &progressSpinner{s: s}
}

func (p *progressSpinner) OnTransition(t swap.Transition) {
	if p.s == nil {
		return
	}
	if t.To.IsTerminal() {
		p.s.Stop()
		return
	}
	if msg, ok := stateMessages[t.To]; ok {
		p.s.Suffix = msg
	}
}

func (p *progressSpinner) Stop() {
	if p.s != nil {
		p.s.Stop()
	}
}
