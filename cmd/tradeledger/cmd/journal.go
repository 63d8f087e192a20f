package cmd

import (
	"fmt"
	"time"

	"github.com/rustyeddy/tradeledger/journal"
	"github.com/rustyeddy/tradeledger/pkg/id"
	"github.com/rustyeddy/tradeledger/report"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query recorded runs",
	Long: `Query recorded runs from a SQLite journal.

Subcommands:
  runs     - List recorded runs, newest first
  summary  - Show the account summaries of a run
  trace    - Print the per-trade trace of one account as CSV

Examples:
  tradeledger journal runs
  tradeledger journal summary 01HZX5Q3N7R8S9T0V1W2X3Y4Z5
  tradeledger journal summary 01HZX5Q3N7R8S9T0V1W2X3Y4Z5 alice
  tradeledger journal trace 01HZX5Q3N7R8S9T0V1W2X3Y4Z5 alice`,
}

var journalRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs",
	Args:  cobra.NoArgs,
	RunE:  runJournalRuns,
}

var journalSummaryCmd = &cobra.Command{
	Use:   "summary <run-id> [account-id]",
	Short: "Show the summaries of a run as Org",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runJournalSummary,
}

var journalTraceCmd = &cobra.Command{
	Use:   "trace <run-id> <account-id>",
	Short: "Print the trace of one account as CSV",
	Args:  cobra.ExactArgs(2),
	RunE:  runJournalTrace,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunsCmd)
	journalCmd.AddCommand(journalSummaryCmd)
	journalCmd.AddCommand(journalTraceCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./tradeledger.sqlite", "path to SQLite journal DB")
}

func runJournalRuns(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	runs, err := j.ListRuns()
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, r := range runs {
		fmt.Fprintf(out, "%s  started %s  recorded %s  %d accounts\n",
			r.RunID,
			runStart(r).Local().Format(time.DateTime),
			r.Created.Local().Format(time.DateTime),
			r.Accounts,
		)
	}
	return nil
}

// runStart is the time embedded in the run id, or the time the run was
// recorded when the id is not a ULID.
func runStart(r journal.Run) time.Time {
	if t, err := id.Time(r.RunID); err == nil {
		return t
	}
	return r.Created
}

func runJournalSummary(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	var summaries []report.Summary
	if len(args) == 2 {
		s, err := j.GetSummary(args[0], args[1])
		if err != nil {
			return fmt.Errorf("get summary: %w", err)
		}
		summaries = append(summaries, s)
	} else {
		if summaries, err = j.ListSummaries(args[0]); err != nil {
			return fmt.Errorf("list summaries: %w", err)
		}
	}

	fmt.Fprint(cmd.OutOrStdout(), journal.FormatSummariesOrg(summaries))
	return nil
}

func runJournalTrace(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	rows, err := j.ListTrace(args[0], args[1])
	if err != nil {
		return fmt.Errorf("list trace: %w", err)
	}

	s := report.Summary{AccountID: args[1], Trace: rows}
	return report.WriteTraceCSV(cmd.OutOrStdout(), []report.Summary{s})
}
