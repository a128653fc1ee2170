// Package cli provides the command-line interface for Till.
package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tillworks/till/internal/config"
	"github.com/tillworks/till/internal/db"
	logpkg "github.com/tillworks/till/internal/log"
	"github.com/tillworks/till/internal/remote"
	"github.com/tillworks/till/internal/session"
	"github.com/tillworks/till/internal/sync"
	"github.com/tillworks/till/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "till",
	Short: "Offline-first point-of-sale register",
	Long: `Offline-first point-of-sale register for dry cleaners.

All records live in a local SQLite database so the register keeps working
without connectivity. Run 'till sync' to reconcile with the backend when
you're back online.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(employeeCmd)
	rootCmd.AddCommand(customerCmd)
	rootCmd.AddCommand(categoryCmd)
	rootCmd.AddCommand(productCmd)
	rootCmd.AddCommand(orderCmd)
	rootCmd.AddCommand(rackCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the CLI with fang enhancements.
func Execute(ctx context.Context) error {
	return fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(version.Short()),
		fang.WithCommit(version.Commit),
	)
}

// app bundles everything a command needs once the environment is loaded.
type app struct {
	cfg      *config.Config
	database *db.DB
	log      *zap.Logger
}

// openApp loads config, builds the logger and opens the database.
func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	paths := config.GetPaths(cfg)
	log, err := logpkg.New(paths.Logs, cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	dbCfg := db.DefaultConfig(paths.Database)
	dbCfg.Debug = cfg.Debug
	database, err := db.New(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	return &app{cfg: cfg, database: database, log: log}, nil
}

func (a *app) close() {
	_ = a.log.Sync()
	_ = a.database.Close()
}

// orchestrator wires the sync engine against the configured backend.
func (a *app) orchestrator() (*sync.Orchestrator, error) {
	if a.cfg.Remote.BaseURL == "" {
		return nil, fmt.Errorf("no backend configured: set remote.base_url in config.yaml or TILL_REMOTE_URL")
	}

	opts := []remote.Option{}
	if rps := a.cfg.Remote.RequestsPerSecond; rps > 0 {
		opts = append(opts, remote.WithRateLimit(rps))
	}
	gw := remote.NewClient(a.cfg.Remote.BaseURL, a.cfg.Remote.APIKey, a.log, opts...)

	var tenants session.Provider
	if a.cfg.Remote.TenantID != "" {
		tenants = session.Static{TenantID: a.cfg.Remote.TenantID}
	} else {
		tenants = session.NewRemote(gw)
	}

	return sync.NewOrchestrator(a.database, gw, tenants, a.log), nil
}
