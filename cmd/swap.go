package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"odos-swap/config"
	"odos-swap/pkg/metrics"
	"odos-swap/pkg/swap"
	"odos-swap/pkg/types"
)

var swapArgs swapFlags

var swapCmd = &cobra.Command{
	Use:   "swap",
	Short: "Quote, approve and execute a single-hop swap",
	Long: `Swap token-in for token-out on the chain behind --rpc using an Odos route.

The run is strictly sequential: resolve the chain id, request a quote,
assemble the transaction, approve the router for exactly --amount when the
input is an ERC-20 with insufficient allowance, then submit the swap and
wait for its receipt. Any failure aborts the run; an approval that already
went through is not reverted.

Examples:
  # Native ETH to USDC on Base
  odos-swap swap --rpc https://mainnet.base.org --private-key $KEY \
    --token-out 0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913 --amount 1_000000000000000000

  # USDC to native ETH on Arbitrum (approves 500 base units first if needed)
  odos-swap swap --rpc https://arb1.arbitrum.io/rpc \
    --token-in 0xaf88d065e77c8cC2239327C5EDb3A432268e5831 --amount 500`,
	Args: cobra.NoArgs,
	RunE: runSwap,
}

func init() {
	rootCmd.AddCommand(swapCmd)
	swapArgs.register(swapCmd)
}

func runSwap(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	cfg := config.Get()

	// Reject bad input before touching the network
	req, err := swapArgs.request(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	recorder := metrics.NewRecorder()
	progress := newProgressSpinner(!jsonOutput)
	defer progress.Stop()

	orch := newOrchestrator(cfg, recorder, progress)
	result, runErr := orch.Run(ctx, req)
	progress.Stop()

	if cfg.Metrics.Textfile != "" {
		if err := recorder.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.WithError(err).Warn("failed to write metrics textfile")
		}
	}

	if jsonOutput {
		printResultJSON(result, runErr)
	} else {
		displayResult(result)
	}

	if runErr != nil {
		return runErr
	}

	printSuccess("Swap executed successfully")
	return nil
}

// resultView is the JSON shape of a run
type resultView struct {
	State        string  `json:"state"`
	ChainID      uint64  `json:"chain_id,omitempty"`
	Wallet       string  `json:"wallet,omitempty"`
	PathID       string  `json:"path_id,omitempty"`
	QuotedOutput string  `json:"quoted_output,omitempty"`
	NetOutValue  string  `json:"net_out_value_usd,omitempty"`
	Router       string  `json:"router,omitempty"`
	Nonce        uint64  `json:"nonce,omitempty"`
	Value        string  `json:"value,omitempty"`
	ApprovalTx   string  `json:"approval_tx,omitempty"`
	SwapTx       string  `json:"swap_tx,omitempty"`
	SwapStatus   *uint64 `json:"swap_status,omitempty"`
	ErrorKind    string  `json:"error_kind,omitempty"`
	Error        string  `json:"error,omitempty"`
}

func newResultView(result *swap.Result, runErr error) resultView {
	view := resultView{State: string(result.State)}
	if result.ChainID != 0 {
		view.ChainID = result.ChainID
		view.Wallet = result.Wallet.Hex()
	}
	if q := result.Quote; q != nil {
		view.PathID = q.PathID
		if q.QuotedOutput != nil {
			view.QuotedOutput = q.QuotedOutput.String()
		}
		if !q.NetOutValue.IsZero() {
			view.NetOutValue = q.NetOutValue.StringFixed(2)
		}
	}
	if a := result.Assembled; a != nil {
		view.Router = a.To.Hex()
		view.Nonce = result.Nonce
	}
	if result.Value != nil {
		view.Value = result.Value.String()
	}
	if result.Approval != nil {
		view.ApprovalTx = result.Approval.TxHash.Hex()
	}
	if result.Swap != nil {
		status := result.Swap.Status
		view.SwapTx = result.Swap.TxHash.Hex()
		view.SwapStatus = &status
	}
	if runErr != nil {
		view.ErrorKind = string(types.KindOf(runErr))
		view.Error = runErr.Error()
	}
	return view
}

func printResultJSON(result *swap.Result, runErr error) {
	jsonData, _ := json.MarshalIndent(newResultView(result, runErr), "", "  ")
	fmt.Println(string(jsonData))
}

func displayResult(result *swap.Result) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                     SWAP RESULT")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  State:             %s\n", coloredState(result.State))
	if result.ChainID != 0 {
		fmt.Printf("  Chain:             %s (%d)\n", chainName(result.ChainID), result.ChainID)
		fmt.Printf("  Wallet:            %s\n", color.CyanString(result.Wallet.Hex()))
	}
	if q := result.Quote; q != nil {
		displayQuoteLines(q)
	}
	if a := result.Assembled; a != nil {
		fmt.Printf("  Router:            %s\n", a.To.Hex())
		fmt.Printf("  Nonce:             %d\n", result.Nonce)
	}
	if result.Approval != nil {
		fmt.Printf("  Approval Tx:       %s (status %d)\n", color.HiBlackString(result.Approval.TxHash.Hex()), result.Approval.Status)
	}
	if result.Swap != nil {
		fmt.Printf("  Swap Tx:           %s\n", color.CyanString(result.Swap.TxHash.Hex()))
		fmt.Printf("  Status:            %s\n", coloredStatus(result.Swap.Status))
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
}

func displayQuoteLines(q *types.Quote) {
	fmt.Printf("  Path ID:           %s\n", q.PathID)
	if q.QuotedOutput != nil {
		fmt.Printf("  Quoted Output:     ~%s\n", color.YellowString(q.QuotedOutput.String()))
	}
	if !q.NetOutValue.IsZero() {
		fmt.Printf("  Net Out Value:     ~$%s\n", q.NetOutValue.StringFixed(2))
	}
}

func coloredState(s swap.State) string {
	switch s {
	case swap.Done:
		return color.GreenString(string(s))
	case swap.Failed:
		return color.RedString(string(s))
	default:
		return color.YellowString(string(s))
	}
}

func coloredStatus(status uint64) string {
	if status == types.StatusSuccess {
		return color.GreenString("SUCCESS (1)")
	}
	return color.RedString("FAILED (%d)", status)
}

func chainName(id uint64) string {
	if name, ok := config.ChainNames[id]; ok {
		return name
	}
	return "unknown"
}
