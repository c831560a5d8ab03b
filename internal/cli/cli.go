// Package cli implements the tilegrid command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tilegrid/internal/config"
	"github.com/matzehuels/tilegrid/pkg/buildinfo"
	"github.com/matzehuels/tilegrid/pkg/cache"
	"github.com/matzehuels/tilegrid/pkg/dashboard"
	"github.com/matzehuels/tilegrid/pkg/observability"
	"github.com/matzehuels/tilegrid/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "tilegrid"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// cfg is loaded by the root command before any subcommand runs.
	cfg config.Config

	configPath string
	board      string
	backend    string
	strategy   string
	noCache    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               appName,
		Short:             "Tilegrid lays out and resizes dashboard tiles",
		Long:              `Tilegrid manages dashboard boards: a grid of tiles that can be added, moved, resized and rendered, with other tiles relocated automatically when a resize needs their space.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.loadConfig,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/tilegrid/config.toml)")
	flags.StringVarP(&c.board, "board", "b", "", "board id")
	flags.StringVar(&c.backend, "store", "", "store backend: file, memory, redis, mongo")
	flags.StringVar(&c.strategy, "strategy", "", "relocation strategy: greedy, exhaustive, auto")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the plan cache")

	// Register all subcommands
	root.AddCommand(c.boardsCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.tilesCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.duplicateCommand())
	root.AddCommand(c.clearCommand())
	root.AddCommand(c.moveCommand())
	root.AddCommand(c.resizeCommand())
	root.AddCommand(c.gridCommand())
	root.AddCommand(c.findCommand())
	root.AddCommand(c.placeCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	c.registerCompletions(root)

	return root
}

// loadConfig reads the config file, then applies environment and flag
// overrides in that order.
func (c *CLI) loadConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("board") {
		cfg.Board = c.board
	}
	if flags.Changed("store") {
		cfg.Store.Backend = c.backend
	}
	if flags.Changed("strategy") {
		cfg.Planner.Strategy = c.strategy
	}
	if c.noCache {
		cfg.Cache.Backend = config.CacheNone
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	c.cfg = cfg
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	observability.SetEngineHooks(logHooks{c.Logger})
	observability.SetStoreHooks(logHooks{c.Logger})
	observability.SetCacheHooks(logHooks{c.Logger})
	return nil
}

// =============================================================================
// Service Factory
// =============================================================================

// openService opens the configured store and cache and starts a dashboard
// service on them. The returned function releases all three.
func (c *CLI) openService(ctx context.Context) (*dashboard.Service, func(), error) {
	st, err := store.New(ctx, c.cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	pc, err := newCache(ctx, c.cfg)
	if err != nil {
		c.Logger.Warn("plan cache unavailable, continuing without it", "error", err)
		pc = cache.NewNullCache()
	}
	reloc, err := c.cfg.Relocator()
	if err != nil {
		st.Close()
		pc.Close()
		return nil, nil, err
	}
	ttl, err := c.cfg.PlanTTL()
	if err != nil {
		st.Close()
		pc.Close()
		return nil, nil, err
	}

	svc := dashboard.New(dashboard.Options{
		Store:     st,
		Cache:     pc,
		PlanTTL:   ttl,
		Relocator: reloc,
		Grid:      c.cfg.GridSize(),
		Limits:    c.cfg.Grid.Limits,
		Profiles:  c.cfg.Profiles(),
		Logger:    c.Logger,
	})
	c.Logger.Debug("service ready", "store", st.Name(), "strategy", svc.Strategy(), "board", c.cfg.Board)

	closeAll := func() {
		svc.Close()
		if err := pc.Close(); err != nil {
			c.Logger.Debug("close cache", "error", err)
		}
		if err := st.Close(); err != nil {
			c.Logger.Debug("close store", "error", err)
		}
	}
	return svc, closeAll, nil
}

// withService runs fn against a freshly opened service.
func (c *CLI) withService(ctx context.Context, fn func(*dashboard.Service) error) error {
	svc, closeAll, err := c.openService(ctx)
	if err != nil {
		return err
	}
	defer closeAll()
	return fn(svc)
}

// newCache opens the configured plan cache.
func newCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		r := cfg.Cache.Redis
		return cache.NewRedisCache(ctx, r.Addr, r.Password, r.DB, r.Prefix)
	default:
		return cache.NewFileCache(cfg.Cache.Dir)
	}
}
