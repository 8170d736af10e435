// Package daemon holds the long-running pieces of alphatrack serve: the
// TOML configuration and the background timers that drive automatic cycle
// rollover and metric refresh.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the daemon configuration, loaded from ~/.alphatrack/config.toml.
type Config struct {
	API     APIConfig     `toml:"api"`
	Storage StorageConfig `toml:"storage"`
	Metrics MetricsConfig `toml:"metrics"`
	Timers  TimersConfig  `toml:"timers"`
}

// APIConfig configures the HTTP listener.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port listen address.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StorageConfig selects and locates the state store.
type StorageConfig struct {
	// Backend is "bolt" or "sqlite".
	Backend string `toml:"backend"`
	// Path is the database file. Empty means <home>/.alphatrack/state.db.
	Path string `toml:"path"`
}

// MetricsConfig controls the /metrics endpoint.
type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

// TimersConfig sets the background check intervals.
type TimersConfig struct {
	// RolloverCheck is how often the automatic cycle rollover condition is
	// evaluated.
	RolloverCheck duration `toml:"rollover_check"`
	// Refresh is how often exported gauges are recomputed.
	Refresh duration `toml:"refresh"`
}

// duration wraps time.Duration with TOML string decoding ("1h", "30s").
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		API:     APIConfig{Host: "127.0.0.1", Port: 8727},
		Storage: StorageConfig{Backend: "bolt"},
		Metrics: MetricsConfig{Enabled: true},
		Timers: TimersConfig{
			RolloverCheck: duration{time.Hour},
			Refresh:       duration{time.Minute},
		},
	}
}

// DefaultConfigPath returns <home>/.alphatrack/config.toml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".alphatrack", "config.toml")
}

// DefaultStatePath returns <home>/.alphatrack/state.db.
func DefaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "state.db"
	}
	return filepath.Join(home, ".alphatrack", "state.db")
}

// LoadConfig reads the TOML file at path, merged over defaults. A missing
// file is not an error: defaults apply.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("daemon: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// StatePath resolves the configured state database path.
func (c Config) StatePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return DefaultStatePath()
}
