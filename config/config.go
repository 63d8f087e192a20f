package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rustyeddy/tradeledger/internal/logger"
	"gopkg.in/yaml.v3"
)

// Config is the complete configuration of a ledger run.
type Config struct {
	Input   InputConfig   `json:"input" yaml:"input"`
	Engine  EngineConfig  `json:"engine" yaml:"engine"`
	Output  OutputConfig  `json:"output" yaml:"output"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Log     LogConfig     `json:"log" yaml:"log"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`
}

// InputConfig says where the account files are.
type InputConfig struct {
	Dir     string `json:"dir" yaml:"dir"`
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"` // doublestar glob, e.g. "**/*.csv"
}

type EngineConfig struct {
	Workers int  `json:"workers" yaml:"workers"`
	Trace   bool `json:"trace" yaml:"trace"` // include the per-trade audit trace
}

type OutputConfig struct {
	Format string `json:"format" yaml:"format"` // "json", "csv" or "org"
	Path   string `json:"path" yaml:"path"`     // "-" is stdout
}

type JournalConfig struct {
	Type        string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TraceFile   string `json:"trace_file,omitempty" yaml:"trace_file,omitempty"`
	SummaryFile string `json:"summary_file,omitempty" yaml:"summary_file,omitempty"`
	DBPath      string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

type LogConfig struct {
	Level       string `json:"level" yaml:"level"`
	Development bool   `json:"development" yaml:"development"`
}

type MetricsConfig struct {
	Textfile string `json:"textfile,omitempty" yaml:"textfile,omitempty"`
}

type TracingConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// Environment overrides read by ApplyEnv.
const (
	EnvInputDir = "TRADELEDGER_INPUT_DIR"
	EnvWorkers  = "TRADELEDGER_WORKERS"
	EnvLogLevel = "TRADELEDGER_LOG_LEVEL"
	EnvDBPath   = "TRADELEDGER_DB_PATH"
)

// LoadFromFile loads configuration from a YAML or JSON file. Fields
// missing from the file keep their Default values.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", jerr)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile writes YAML for .yaml and .yml paths and indented JSON
// otherwise.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from the environment. Unset variables leave
// the config unchanged.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvInputDir); ok && v != "" {
		c.Input.Dir = v
	}
	if v, ok := os.LookupEnv(EnvWorkers); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		c.Engine.Workers = n
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := os.LookupEnv(EnvDBPath); ok && v != "" {
		c.Journal.DBPath = v
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Input.Dir == "" {
		return fmt.Errorf("input.dir is required")
	}
	if c.Input.Pattern != "" && !doublestar.ValidatePattern(c.Input.Pattern) {
		return fmt.Errorf("input.pattern %q is not a valid glob", c.Input.Pattern)
	}
	if c.Engine.Workers < 1 {
		return fmt.Errorf("engine.workers must be at least 1")
	}
	switch c.Output.Format {
	case "json", "csv", "org":
	default:
		return fmt.Errorf("output.format must be 'json', 'csv' or 'org'")
	}
	if c.Output.Path == "" {
		return fmt.Errorf("output.path is required (use - for stdout)")
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TraceFile == "" || c.Journal.SummaryFile == "" {
			return fmt.Errorf("journal trace_file and summary_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Dir:     ".",
			Pattern: "**/*.csv",
		},
		Engine: EngineConfig{
			Workers: 4,
		},
		Output: OutputConfig{
			Format: "json",
			Path:   "-",
		},
		Journal: JournalConfig{
			Type:        "none",
			TraceFile:   "./trace.csv",
			SummaryFile: "./summary.csv",
			DBPath:      "./tradeledger.sqlite",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
