// Package cli implements the alphatrack command tree.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alphatrack/alphatrack/internal/app/tracker"
	"github.com/alphatrack/alphatrack/internal/daemon"
	"github.com/alphatrack/alphatrack/internal/infra/boltstore"
	"github.com/alphatrack/alphatrack/internal/infra/sqlite"
	"github.com/alphatrack/alphatrack/internal/infra/store"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "alphatrack",
	Short: "Track Binance Alpha account scores and 15-day cycles",
	Long: `AlphaTrack tracks a set of accounts in the Binance Alpha point program:
daily score accrual, bonus-date returns, airdrop deductions, and the
15-day cycle countdown. State lives in a local database under
~/.alphatrack; run "alphatrack serve" to expose the HTTP API for the
desktop UI.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", daemon.DefaultConfigPath(),
		"path to the TOML config file")
}

func loadConfig() (daemon.Config, error) {
	return daemon.LoadConfig(configPath)
}

// openStore opens the configured state backend, creating the data
// directory on first use.
func openStore(cfg daemon.Config) (store.Store, error) {
	path := cfg.StatePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	switch cfg.Storage.Backend {
	case "", "bolt":
		return boltstore.Open(path)
	case "sqlite":
		return sqlite.Open(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want bolt or sqlite)", cfg.Storage.Backend)
	}
}

// openTracker loads config, opens the store, and builds the tracker.
// Callers must Close the tracker when done.
func openTracker() (*tracker.Tracker, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	tr, err := tracker.New(st)
	if err != nil {
		st.Close()
		return nil, err
	}
	return tr, nil
}

// resolveAccount finds an account by name or by id prefix, so commands can
// say "alphatrack account rm main" instead of pasting UUIDs.
func resolveAccount(tr *tracker.Tracker, ref string) (string, error) {
	for _, v := range tr.ListAccounts() {
		if v.Name == ref || v.ID == ref || strings.HasPrefix(v.ID, ref) {
			return v.ID, nil
		}
	}
	return "", fmt.Errorf("no account matches %q", ref)
}
