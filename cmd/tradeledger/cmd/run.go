package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/rustyeddy/tradeledger/batch"
	"github.com/rustyeddy/tradeledger/config"
	"github.com/rustyeddy/tradeledger/ingest"
	"github.com/rustyeddy/tradeledger/internal/logger"
	"github.com/rustyeddy/tradeledger/internal/obs"
	"github.com/rustyeddy/tradeledger/internal/trace"
	"github.com/rustyeddy/tradeledger/journal"
	"github.com/rustyeddy/tradeledger/pkg/id"
	"github.com/rustyeddy/tradeledger/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute PnL and activity for every account in a directory",
	Long: `Run scans the input directory for account CSV files, replays each
account through the position ledger and writes one summary per account.

Settings come from the config file, then the environment (a .env file in
the working directory is loaded first), then the flags.

Examples:
  tradeledger run --input data/accounts
  tradeledger run --config tradeledger.yaml --format csv --output summary.csv
  tradeledger run --input data --trace --journal sqlite --db runs.sqlite`,
	RunE: runRun,
}

var (
	runConfigPath string
	runInput      string
	runPattern    string
	runWorkers    int
	runFormat     string
	runOutput     string
	runTrace      bool
	runJournal    string
	runDBPath     string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "directory of account CSV files")
	runCmd.Flags().StringVar(&runPattern, "pattern", ingest.DefaultPattern, "glob selecting account files under the input directory")
	runCmd.Flags().IntVarP(&runWorkers, "workers", "w", 4, "number of ledger workers")
	runCmd.Flags().StringVar(&runFormat, "format", "json", "output format (json, csv, org)")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "-", "output path, - for stdout")
	runCmd.Flags().BoolVar(&runTrace, "trace", false, "include the per-trade audit trace")
	runCmd.Flags().StringVar(&runJournal, "journal", "none", "journal type (none, csv, sqlite)")
	runCmd.Flags().StringVarP(&runDBPath, "db", "d", "", "path to SQLite journal DB (implies --journal sqlite)")
}

// resolveConfig layers the config file, the environment and the flags
// that were set explicitly.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	// A missing .env is not an error.
	_ = godotenv.Load()

	cfg := config.Default()
	if runConfigPath != "" {
		var err error
		if cfg, err = config.LoadFromFile(runConfigPath); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.Input.Dir = runInput
	}
	if flags.Changed("pattern") {
		cfg.Input.Pattern = runPattern
	}
	if flags.Changed("workers") {
		cfg.Engine.Workers = runWorkers
	}
	if flags.Changed("format") {
		cfg.Output.Format = runFormat
	}
	if flags.Changed("output") {
		cfg.Output.Path = runOutput
	}
	if flags.Changed("trace") {
		cfg.Engine.Trace = runTrace
	}
	if flags.Changed("journal") {
		cfg.Journal.Type = runJournal
	}
	if flags.Changed("db") {
		cfg.Journal.DBPath = runDBPath
		if !flags.Changed("journal") {
			cfg.Journal.Type = "sqlite"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	ctx := cmd.Context()
	if cfg.Tracing.Enabled {
		if err := trace.Init(cmd.ErrOrStderr(), version); err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		defer trace.Shutdown(ctx)
	}

	sources, err := ingest.Scan(cfg.Input.Dir, cfg.Input.Pattern)
	if err != nil {
		return fmt.Errorf("scan input: %w", err)
	}
	if len(sources) == 0 {
		log.Warn("no account files found",
			zap.String("dir", cfg.Input.Dir),
			zap.String("pattern", cfg.Input.Pattern),
		)
	}

	runID := id.NewRunID()
	log = log.With(zap.String("run_id", runID))
	log.Info("run started", zap.Int("accounts", len(sources)), zap.Int("workers", cfg.Engine.Workers))

	m := obs.New()
	accounts := batch.Load(sources, m, log)

	runner := &batch.Runner{
		Workers: cfg.Engine.Workers,
		Trace:   cfg.Engine.Trace,
		RunID:   runID,
		Logger:  log,
		Metrics: m,
	}
	summaries := runner.Run(ctx, accounts)

	if err := writeOutput(cmd.OutOrStdout(), cfg.Output, summaries); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if err := writeJournal(cfg.Journal, summaries); err != nil {
		return fmt.Errorf("journal: %w", err)
	}

	if cfg.Metrics.Textfile != "" {
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	return ctx.Err()
}

func writeOutput(stdout io.Writer, oc config.OutputConfig, summaries []report.Summary) error {
	if oc.Path == "-" {
		return writeSummaries(stdout, oc.Format, summaries)
	}

	f, err := os.Create(oc.Path)
	if err != nil {
		return err
	}
	if err := writeSummaries(f, oc.Format, summaries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeSummaries(w io.Writer, format string, summaries []report.Summary) error {
	switch format {
	case "csv":
		return report.WriteCSV(w, summaries)
	case "org":
		_, err := io.WriteString(w, journal.FormatSummariesOrg(summaries))
		return err
	default:
		return report.WriteJSON(w, summaries)
	}
}

func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "csv":
		return journal.NewCSV(jc.TraceFile, jc.SummaryFile)
	case "sqlite":
		return journal.NewSQLite(jc.DBPath)
	default:
		return journal.Nop{}, nil
	}
}

func writeJournal(jc config.JournalConfig, summaries []report.Summary) error {
	j, err := openJournal(jc)
	if err != nil {
		return err
	}
	if err := journal.Write(j, summaries); err != nil {
		j.Close()
		return err
	}
	return j.Close()
}
