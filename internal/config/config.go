// Package config holds settings shared by the triage CLI and API.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatBoth = "both"
	FormatXLSX = "xlsx"
)

var ErrInvalidFormat = errors.New("invalid output format")

// Config values come from flags, falling back to TRIAGE_* environment
// variables (optionally from .env) and then to built-in defaults.
type Config struct {
	Port           int
	RulesPath      string
	Workers        int
	TranscriptsDir string
	ResultsDir     string
	HTTPTimeout    time.Duration
	Format         string
}

// LoadEnv reads a .env file if present. A missing file is not an error.
func LoadEnv(files ...string) {
	_ = godotenv.Load(files...)
}

// RegisterFlags binds Config fields to the given FlagSet with env-aware defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.Port, "port", envInt("TRIAGE_PORT", 8080), "HTTP listen port (1..65535)")
	fs.StringVar(&c.RulesPath, "rules", os.Getenv("TRIAGE_RULES_PATH"), "YAML rule tables (empty = built-in tables)")
	fs.IntVar(&c.Workers, "workers", envInt("TRIAGE_WORKERS", 0), "parallel workers for batch runs (0 or 1 = sequential)")
	fs.StringVar(&c.TranscriptsDir, "dir", envOr("TRIAGE_TRANSCRIPTS_DIR", "transcripts"), "directory of .txt transcripts for batch and list modes")
	fs.StringVar(&c.ResultsDir, "out", envOr("TRIAGE_RESULTS_DIR", "results"), "directory for result files")
	fs.DurationVar(&c.HTTPTimeout, "http-timeout", time.Duration(envInt("TRIAGE_HTTP_TIMEOUT_SEC", 12))*time.Second, "timeout for fetching transcripts over HTTP")
	fs.StringVar(&c.Format, "format", "", "output format: json, csv, both or xlsx")
}

// Validate checks all configuration fields and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d (must be 1..65535)", c.Port))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("invalid workers %d (must be >= 0)", c.Workers))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("invalid http timeout %s (must be > 0)", c.HTTPTimeout))
	}
	if c.Format != "" {
		if err := ValidateFormat(c.Format); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// ValidateFormat accepts json, csv, both and xlsx.
func ValidateFormat(f string) error {
	switch f {
	case FormatJSON, FormatCSV, FormatBoth, FormatXLSX:
		return nil
	}
	return fmt.Errorf("%w %q (want json, csv, both or xlsx)", ErrInvalidFormat, f)
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
