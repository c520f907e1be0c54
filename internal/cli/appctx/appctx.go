// Package appctx provides a shared bootstrap helper for CLI commands.
// It centralizes config loading, flag overrides, logger construction and
// the optional artifact store to reduce boilerplate across commands.
package appctx

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lherron/dedupe/internal/config"
	"github.com/lherron/dedupe/internal/domain"
	"github.com/lherron/dedupe/internal/logging"
	"github.com/lherron/dedupe/internal/store"
)

// App holds the shared application context for commands.
type App struct {
	// Config is the loaded configuration with flag overrides applied
	Config *config.Config

	// Logger writes diagnostics to the command's stderr
	Logger *zap.Logger

	// Store is the artifact store, nil until OpenStore is called
	Store *store.Store
}

// Close releases resources held by the App.
// Safe to call multiple times.
func (a *App) Close() {
	if a.Store != nil {
		a.Store.Close()
		a.Store = nil
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
}

// OpenStore opens the artifact store named by Config.ArtifactDB. It returns
// nil without error when no artifact database is configured.
func (a *App) OpenStore() (*store.Store, error) {
	if a.Store != nil || a.Config.ArtifactDB == "" {
		return a.Store, nil
	}
	s, err := store.Open(a.Config.ArtifactDB)
	if err != nil {
		return nil, err
	}
	a.Store = s
	return s, nil
}

// Options configures the bootstrap behavior.
type Options struct {
	// NeedsStore requires an artifact database and opens it.
	NeedsStore bool
}

// DefaultOptions returns default options (no artifact store required).
func DefaultOptions() Options {
	return Options{}
}

// WithStore returns options that require the artifact store.
func WithStore() Options {
	return Options{NeedsStore: true}
}

// RunFunc is the signature for command run functions.
type RunFunc func(app *App, cmd *cobra.Command, args []string) error

// WithApp wraps a command's run function with shared bootstrap logic.
// The store is closed and the logger flushed when the wrapped function returns.
func WithApp(opts Options, fn RunFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := Bootstrap(cmd, opts)
		if err != nil {
			return err
		}
		defer app.Close()

		return fn(app, cmd, args)
	}
}

// Bootstrap initializes the App according to the given options.
// Callers are responsible for calling App.Close() when done.
func Bootstrap(cmd *cobra.Command, opts Options) (*App, error) {
	cfg, err := config.Load(flagString(cmd, "config"))
	if err != nil {
		return nil, err
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	logger.Debug("configuration loaded", zap.Stringer("config", cfg))

	app := &App{Config: cfg, Logger: logger}

	if opts.NeedsStore {
		if cfg.ArtifactDB == "" {
			return nil, domain.ConfigErrorf("an artifact database is required (use --artifact-db or DEDUPE_ARTIFACT_DB)")
		}
		if _, err := app.OpenStore(); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Context returns the command's context, or a background context for
// commands run outside Execute.
func Context(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// applyFlags overrides config values with flags the user set explicitly.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	if v, ok := changed(cmd, "threshold"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return domain.ConfigErrorf("invalid --threshold %q: %w", v, err)
		}
		cfg.Threshold = f
	}
	if v, ok := changed(cmd, "workers"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return domain.ConfigErrorf("invalid --workers %q: %w", v, err)
		}
		cfg.Workers = n
	}
	if v, ok := changed(cmd, "log-level"); ok {
		cfg.LogLevel = v
	}
	if v, ok := changed(cmd, "id-column"); ok {
		cfg.IDColumn = v
	}
	if v, ok := changed(cmd, "name-column"); ok {
		cfg.NameColumn = v
	}
	if v, ok := changed(cmd, "fk-column"); ok {
		cfg.FKColumn = v
	}
	if v, ok := changed(cmd, "artifact-db"); ok {
		cfg.ArtifactDB = v
	}
	return nil
}

func changed(cmd *cobra.Command, name string) (string, bool) {
	f := cmd.Flag(name)
	if f == nil || !f.Changed {
		return "", false
	}
	return f.Value.String(), true
}

func flagString(cmd *cobra.Command, name string) string {
	if f := cmd.Flag(name); f != nil {
		return f.Value.String()
	}
	return ""
}
