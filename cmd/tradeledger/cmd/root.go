package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tradeledger",
	Short: "Realized PnL and trading activity from trade histories",
	Long: `Tradeledger replays per-account trade histories through an average-cost
position ledger and reports realized PnL and trading activity.

Each CSV file in the input directory is one account. For every account it
reports the final cumulative PnL, trade counts, average profit per trade,
holding time and trading frequency, optionally with a per-trade audit trace.`,
	SilenceUsage: true,
}

// Execute runs the root command with ctx, which is cancelled on interrupt.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
