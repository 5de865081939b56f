package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"odos-swap/config"
)

var logger = logrus.New()

var rootCmd = &cobra.Command{
	Use:   "odos-swap",
	Short: "A CLI for single-hop token swaps routed through the Odos API",
	Long: `odos-swap quotes a token swap on an EVM chain through the Odos smart order
router, approves the router to spend ERC-20 input when needed, and submits
the assembled swap transaction from your wallet.

Amounts are integers in the token's base units (wei for native assets).
The zero address 0x0000000000000000000000000000000000000000 denotes the
chain's native coin.

Examples:
  odos-swap swap --rpc https://mainnet.base.org --private-key $KEY \
    --token-out 0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913 --amount 1000000000000000000
  odos-swap quote --rpc https://arb1.arbitrum.io/rpc --token-in 0xaf88d065e77c8cC2239327C5EDb3A432268e5831 --amount 500
  odos-swap chains
  odos-swap status 0x5c50...e1a9 --rpc https://mainnet.base.org`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		config.Set(cfg)

		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = logrus.DebugLevel
		}
		logger.SetLevel(level)
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

// PrintError reports a failed command. Classified errors already lead with their kind.
func PrintError(err error) {
	fmt.Fprintf(os.Stderr, "\n%s %v\n\n", color.RedString("Error:"), err)
}

func printSuccess(message string) {
	fmt.Printf("\n%s\n\n", color.GreenString(message))
}
