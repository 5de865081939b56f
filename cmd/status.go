package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"odos-swap/pkg/chain"
	"odos-swap/pkg/erc20"
	"odos-swap/pkg/types"
)

var (
	statusRPC     string
	watchStatus   bool
	watchInterval int
)

var statusCmd = &cobra.Command{
	Use:   "status <tx-hash>",
	Short: "Check the status of a swap or approval transaction",
	Long: `Look up a transaction sent by a previous swap and show whether it was mined
and whether it succeeded. Approval transactions are decoded to show the
spender and the approved amount.

Examples:
  odos-swap status 0x5c50...e1f2 --rpc https://mainnet.base.org
  odos-swap status 0x5c50...e1f2 --rpc https://mainnet.base.org --watch
  odos-swap status 0x5c50...e1f2 --rpc https://mainnet.base.org --watch --interval 10`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusRPC, "rpc", "", "JSON-RPC endpoint of the chain (REQUIRED)")
	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Keep polling until the transaction is mined")
	statusCmd.Flags().IntVar(&watchInterval, "interval", 5, "Polling interval in seconds (when watching)")
	_ = statusCmd.MarkFlagRequired("rpc")
}

func runStatus(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	raw, err := hexutil.Decode(args[0])
	if err != nil || len(raw) != common.HashLength {
		return types.NewError(types.InvalidInput, "parse tx hash", fmt.Sprintf("%q is not a transaction hash", args[0]), nil)
	}
	hash := common.BytesToHash(raw)

	if watchStatus && jsonOutput {
		return types.NewError(types.InvalidInput, "status", "watch mode is not supported with JSON output", nil)
	}

	ctx, cancel := signalContext()
	defer cancel()

	client, err := ethclient.DialContext(ctx, statusRPC)
	if err != nil {
		return types.NewError(types.TransportError, "dial rpc", "", err)
	}
	defer client.Close()

	if watchStatus {
		return watchTxStatus(ctx, client, hash)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Checking transaction status..."
		s.Start()
	}

	info, err := chain.LookupTransaction(ctx, client, hash)
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(txInfoMap(info), "", "  ")
		fmt.Println(string(jsonData))
		return nil
	}

	displayTxInfo(info)
	return nil
}

func watchTxStatus(ctx context.Context, client *ethclient.Client, hash common.Hash) error {
	fmt.Printf("\nWatching transaction %s\n", color.CyanString(hash.Hex()))
	fmt.Printf("Checking every %d seconds. Press Ctrl+C to stop.\n\n", watchInterval)

	ticker := time.NewTicker(time.Duration(watchInterval) * time.Second)
	defer ticker.Stop()

	for {
		info, err := chain.LookupTransaction(ctx, client, hash)
		if err != nil {
			color.Red("Error: %v", err)
		} else if info.Receipt != nil {
			displayTxInfo(info)
			return nil
		} else {
			fmt.Printf("  %s still pending\n", time.Now().Format("15:04:05"))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func txInfoMap(info *chain.TxInfo) map[string]interface{} {
	out := map[string]interface{}{
		"hash":      info.Hash.Hex(),
		"nonce":     info.Nonce,
		"gas_price": info.GasPrice.String(),
		"gas_limit": info.GasLimit,
		"to":        "",
		"value":     info.Value.String(),
		"pending":   info.Pending,
	}

	if info.To != nil {
		out["to"] = info.To.Hex()
	}

	if spender, amount, err := erc20.DecodeApprove(info.Data); err == nil {
		out["approve"] = map[string]string{
			"spender": spender.Hex(),
			"amount":  amount.String(),
		}
	}

	if info.Receipt != nil {
		out["block_number"] = info.Receipt.BlockNumber.Uint64()
		out["gas_used"] = info.Receipt.GasUsed
		out["status"] = info.Receipt.Status
	}

	return out
}

func displayTxInfo(info *chain.TxInfo) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                     TRANSACTION STATUS")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Hash:            %s\n", color.CyanString(info.Hash.Hex()))
	if info.Receipt == nil {
		fmt.Printf("  Status:          %s\n", color.YellowString("PENDING"))
	} else {
		fmt.Printf("  Status:          %s\n", coloredStatus(info.Receipt.Status))
		fmt.Printf("  Block:           %s\n", info.Receipt.BlockNumber.String())
		fmt.Printf("  Gas Used:        %d\n", info.Receipt.GasUsed)
	}
	if info.To != nil {
		fmt.Printf("  To:              %s\n", info.To.Hex())
	}
	fmt.Printf("  Nonce:           %d\n", info.Nonce)
	fmt.Printf("  Value:           %s\n", info.Value.String())

	if spender, amount, err := erc20.DecodeApprove(info.Data); err == nil {
		fmt.Printf("  Approval:        %s to %s\n", amount.String(), color.HiBlackString(spender.Hex()))
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}
