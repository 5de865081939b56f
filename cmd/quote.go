package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"odos-swap/config"
)

var quoteArgs swapFlags

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Fetch an Odos quote without sending any transaction",
	Long: `Resolve the chain behind --rpc and request a quote for the swap, then stop.
Nothing is assembled, approved or submitted.

Examples:
  odos-swap quote --rpc https://mainnet.base.org --private-key $KEY \
    --token-out 0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913 --amount 1000000000000000000`,
	Args: cobra.NoArgs,
	RunE: runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)
	quoteArgs.register(quoteCmd)
}

func runQuote(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	cfg := config.Get()

	req, err := quoteArgs.request(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	progress := newProgressSpinner(!jsonOutput)
	result, err := newOrchestrator(cfg, progress).Quote(ctx, req)
	progress.Stop()
	if err != nil {
		return err
	}

	if jsonOutput {
		output := map[string]interface{}{
			"chain_id":  result.ChainID,
			"wallet":    result.Wallet.Hex(),
			"token_in":  req.TokenIn.Hex(),
			"amount":    req.Amount.String(),
			"token_out": req.TokenOut.Hex(),
			"quote":     result.Quote.Raw,
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return nil
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                     SWAP QUOTE")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("\n  Chain:             %s (%d)\n", chainName(result.ChainID), result.ChainID)
	fmt.Printf("  Wallet:            %s\n", color.CyanString(result.Wallet.Hex()))
	fmt.Printf("  From:              %s %s\n", req.Amount.String(), color.YellowString(req.TokenIn.Hex()))
	fmt.Printf("  To:                %s\n", color.YellowString(req.TokenOut.Hex()))
	displayQuoteLines(result.Quote)
	if result.Quote.GasEstimate > 0 {
		fmt.Printf("  Gas Estimate:      %.0f\n", result.Quote.GasEstimate)
	}
	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")

	return nil
}
