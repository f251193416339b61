// =============================================================================
// Receipt Checker - Configuration Module
// =============================================================================
//
// Loads and validates the application configuration from a single YAML
// file. Every setting has a default, so running without a config file is
// supported; a missing file is not an error, a malformed one is.
//
// CONFIGURATION AREAS:
//   1. Server   : bind address and timeouts for the analyze API
//   2. Matching : default matching options (overridable per request)
//   3. Locking  : highlighting write-back output
//   4. Logging  : level
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/checkhesab/receipt-checker/internal/bankstmt"
	"github.com/checkhesab/receipt-checker/internal/types"
)

// =============================================================================
// STRUCTURES
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Matching MatchingConfig `yaml:"matching"`
	Locking  LockingConfig  `yaml:"locking"`

	// LogLevel controls verbosity: "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level"`
}

// ServerConfig configures the HTTP analyze API.
type ServerConfig struct {
	// Host to bind; local-only by default.
	Host string `yaml:"host"`

	// Port for the analyze API. Default 8765.
	Port int `yaml:"port"`

	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`

	// MaxUploadBytes bounds one multipart upload. Default 64 MiB.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

// MatchingConfig carries the default matching options; API requests may
// override each one per call.
type MatchingConfig struct {
	CreditOnly   bool   `yaml:"credit_only"`
	UseTracking  bool   `yaml:"use_tracking"`
	UseName      bool   `yaml:"use_name"`
	UseAmount    bool   `yaml:"use_amount"`
	TxTypeFilter string `yaml:"tx_type_filter"`
}

// LockingConfig configures the reconciliation-marking write-back.
type LockingConfig struct {
	// Enabled turns the write-back on. Default true.
	Enabled bool `yaml:"enabled"`

	// OutputDir is where the highlighted workbook copy is written.
	// Default "./output".
	OutputDir string `yaml:"output_dir"`

	// LockColumn is the 1-based column the marker text is written into.
	// Default 15 (column O).
	LockColumn int `yaml:"lock_column"`
}

// =============================================================================
// LOADING
// =============================================================================

// Default returns the configuration used when no file is present.
func Default() *MainConfig {
	return &MainConfig{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8765,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   60 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxUploadBytes: 64 << 20,
		},
		Matching: MatchingConfig{
			CreditOnly:   true,
			UseTracking:  true,
			UseName:      true,
			UseAmount:    true,
			TxTypeFilter: "all",
		},
		Locking: LockingConfig{
			Enabled:    true,
			OutputDir:  "./output",
			LockColumn: bankstmt.DefaultLockColumn,
		},
		LogLevel: "info",
	}
}

// Load reads the configuration from path. A missing file yields the
// defaults; a file that exists but cannot be parsed or validated is an
// error.
func Load(path string) (*MainConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the loaded configuration for values the rest of the
// system cannot work with.
func (c *MainConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive")
	}
	switch c.Matching.TxTypeFilter {
	case "all", types.TxDeposit, types.TxWithdrawal:
	default:
		return fmt.Errorf("matching.tx_type_filter must be all, deposit or withdrawal, got %q", c.Matching.TxTypeFilter)
	}
	if c.Locking.LockColumn <= 0 || c.Locking.LockColumn > 16384 {
		return fmt.Errorf("locking.lock_column must be a valid sheet column, got %d", c.Locking.LockColumn)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}
	return nil
}

// MatchOptions converts the configured defaults into engine options.
func (c *MainConfig) MatchOptions() types.MatchOptions {
	return types.MatchOptions{
		CreditOnly:   c.Matching.CreditOnly,
		UseTracking:  c.Matching.UseTracking,
		UseName:      c.Matching.UseName,
		UseAmount:    c.Matching.UseAmount,
		TxTypeFilter: c.Matching.TxTypeFilter,
	}
}
