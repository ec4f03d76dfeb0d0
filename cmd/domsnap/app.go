package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/domsnap/config"
	"github.com/hazyhaar/domsnap/snapcache"
	"github.com/hazyhaar/domsnap/snapshot"
	"github.com/hazyhaar/domsnap/source"
)

var (
	successIcon = color.New(color.FgGreen).Sprint("✓")
	errorIcon   = color.New(color.FgRed).Sprint("✗")

	info = color.New(color.FgCyan).SprintFunc()
	dim  = color.New(color.Faint).SprintFunc()
)

// app holds what the subcommands share, built from the configuration once
// flags are parsed.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	snap    *snapshot.Snapshotter
	loader  *source.Loader
	fetch   source.Config
	browser *source.Browser
	cache   *snapcache.Cache
}

type globalFlags struct {
	configPath string
	logLevel   string
	noCache    bool
}

func newApp(cmd *cobra.Command, g *globalFlags, reg prometheus.Registerer) (*app, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)

	tables, err := cfg.Tables()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger}

	var metrics *snapshot.Metrics
	if reg != nil {
		metrics = snapshot.NewMetrics(reg)
	}
	a.snap = snapshot.New(snapshot.Config{
		Tables:  tables,
		Search:  cfg.Snapshot.Search,
		Metrics: metrics,
		Logger:  logger,
	})

	if cfg.Browser.Enabled {
		bc := cfg.Browser.BrowserConfig
		bc.Logger = logger
		a.browser = source.NewBrowser(bc)
	}
	fetch := cfg.Fetch
	fetch.Sanitize = cfg.Sanitize
	fetch.PreserveAttribute = cfg.Snapshot.Options.PreserveAttribute
	fetch.Tables = tables
	fetch.Browser = a.browser
	fetch.Stdin = cmd.InOrStdin()
	fetch.Logger = logger
	a.fetch = fetch
	a.loader = source.NewLoader(fetch)

	if cfg.Cache.Enabled && !g.noCache {
		cc := cfg.Cache.Config
		cc.Logger = logger
		if a.cache, err = snapcache.Open(cc); err != nil {
			a.close(cmd.Context())
			return nil, err
		}
	}
	return a, nil
}

func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.browser != nil {
		errs = append(errs, a.browser.Close())
	}
	if a.cache != nil {
		if _, err := a.cache.Prune(ctx); err != nil {
			a.logger.Warn("domsnap: cache prune", "error", err)
		}
		errs = append(errs, a.cache.Close())
	}
	return errors.Join(errs...)
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: l}))
}

// printSummary writes the size line of a snapshot to w.
func printSummary(w io.Writer, m snapshot.Meta, cached bool) {
	from := ""
	if cached {
		from = dim(" (cached)")
	}
	fmt.Fprintf(w, "%s %d → %d chars, ratio %s, ~%s tokens%s\n",
		successIcon, m.OriginalSize, m.SnapshotSize,
		info(fmt.Sprintf("%.3f", m.SizeRatio)), info(m.EstimatedTokens), from)
}
