package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"odos-swap/config"
)

var chainsCmd = &cobra.Command{
	Use:     "chains",
	Aliases: []string{"list-chains", "ls"},
	Short:   "List the chains swaps are allowed on",
	Long: `List the chain ids accepted by the swap. A swap against an RPC endpoint
whose chain id is not listed is rejected before any quote is requested.

The list defaults to the networks served by Odos and can be overridden with
chains.supported in .odos-swap.yaml or ODOS_SWAP_CHAINS_SUPPORTED.

Examples:
  odos-swap chains
  odos-swap chains --json`,
	Args: cobra.NoArgs,
	Run:  runListChains,
}

func init() {
	rootCmd.AddCommand(chainsCmd)
}

func runListChains(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	cfg := config.Get()

	ids := append([]uint64(nil), cfg.Chains.Supported...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if jsonOutput {
		output := make([]map[string]interface{}, 0, len(ids))
		for _, id := range ids {
			output = append(output, map[string]interface{}{
				"chain_id": id,
				"name":     chainName(id),
			})
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 40))
	color.Green("           SUPPORTED CHAINS")
	fmt.Println(strings.Repeat("=", 40) + "\n")
	for _, id := range ids {
		fmt.Printf("  %-8s %s\n", color.CyanString("%d", id), chainName(id))
	}
	fmt.Printf("\nTotal: %d chains\n\n", len(ids))
}
