// Package config loads tilegrid settings.
//
// Settings come from three layers, later layers winning:
//
//  1. built-in defaults ([Default])
//  2. a TOML file, by default $XDG_CONFIG_HOME/tilegrid/config.toml
//  3. TILEGRID_* environment variables ([Config.ApplyEnv])
//
// Command-line flags are applied on top by the CLI.
//
// # Example
//
//	board = "living-room"
//
//	[grid]
//	rows = 3
//	cols = 6
//
//	[planner]
//	strategy = "auto"
//
//	[store]
//	backend = "redis"
//	redis = { addr = "localhost:6379" }
//
//	[kinds.camera]
//	max_span = { x = 2, y = 2 }
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/relocate"
	"github.com/matzehuels/tilegrid/pkg/store"
)

const appName = "tilegrid"

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config is the complete tilegrid configuration.
type Config struct {
	// Board is the board id commands act on when --board is not given.
	Board   string               `toml:"board"`
	Grid    GridConfig           `toml:"grid"`
	Planner PlannerConfig        `toml:"planner"`
	Store   store.Config         `toml:"store"`
	Cache   CacheConfig          `toml:"cache"`
	Server  ServerConfig         `toml:"server"`
	Kinds   map[string]grid.Caps `toml:"kinds"`
}

// GridConfig sets the size of new boards and the SetGrid limits.
type GridConfig struct {
	Rows   int         `toml:"rows"`
	Cols   int         `toml:"cols"`
	Limits grid.Limits `toml:"limits"`
}

// PlannerConfig selects the relocation strategy.
type PlannerConfig struct {
	Strategy string `toml:"strategy"`
	MaxCells int    `toml:"max_cells"`
	Budget   int    `toml:"budget"`
}

// CacheConfig configures the plan cache.
type CacheConfig struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
	// TTL is a Go duration string ("24h").
	TTL   string            `toml:"ttl"`
	Redis store.RedisConfig `toml:"redis"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Board: "default",
		Grid: GridConfig{
			Rows:   4,
			Cols:   4,
			Limits: grid.DefaultLimits,
		},
		Planner: PlannerConfig{
			Strategy: relocate.StrategyGreedy,
			MaxCells: relocate.DefaultMaxCells,
			Budget:   relocate.DefaultBudget,
		},
		Store:  store.Config{Backend: store.BackendFile},
		Cache:  CacheConfig{Backend: CacheFile, TTL: "24h"},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, "config.toml"), nil
}

// Load reads the config file at path on top of the defaults. An empty
// path reads DefaultPath and tolerates its absence; an explicit path must
// exist. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.New(errors.ErrCodeInvalidFormat, "config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides settings from environment variables. lookup is
// usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("TILEGRID_BOARD", &c.Board)
	str("TILEGRID_STORE", &c.Store.Backend)
	str("TILEGRID_STORE_DIR", &c.Store.Dir)
	str("TILEGRID_REDIS_ADDR", &c.Store.Redis.Addr)
	str("TILEGRID_REDIS_ADDR", &c.Cache.Redis.Addr)
	str("TILEGRID_MONGO_URI", &c.Store.Mongo.URI)
	str("TILEGRID_CACHE", &c.Cache.Backend)
	str("TILEGRID_STRATEGY", &c.Planner.Strategy)
	str("TILEGRID_ADDR", &c.Server.Addr)

	if v, ok := lookup("TILEGRID_REDIS_DB"); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidInput, "TILEGRID_REDIS_DB: %q is not a number", v)
		}
		c.Store.Redis.DB = db
		c.Cache.Redis.DB = db
	}
	return c.Validate()
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if err := errors.ValidateBoardID(c.Board); err != nil {
		return fmt.Errorf("config board: %w", err)
	}
	l := c.Grid.Limits
	if err := errors.ValidateGridSize(c.Grid.Rows, c.Grid.Cols, l.MinRows, l.MaxRows, l.MinCols, l.MaxCols); err != nil {
		return fmt.Errorf("config grid: %w", err)
	}
	if _, err := c.Relocator(); err != nil {
		return err
	}
	switch strings.ToLower(c.Store.Backend) {
	case "", store.BackendFile, store.BackendMemory, store.BackendRedis, store.BackendMongo:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", c.Store.Backend)
	}
	switch strings.ToLower(c.Cache.Backend) {
	case "", CacheNone, CacheFile, CacheRedis:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
	if _, err := c.PlanTTL(); err != nil {
		return err
	}
	for name, caps := range c.Kinds {
		if err := errors.ValidateKind(name); err != nil {
			return fmt.Errorf("config kinds: %w", err)
		}
		if caps.MayGrowGrid && caps.MaxGrowRows < 1 {
			return errors.New(errors.ErrCodeInvalidInput, "kind %q may grow the grid but has no max_grow_rows", name)
		}
	}
	return nil
}

// Relocator returns the configured relocation strategy.
func (c Config) Relocator() (relocate.Relocator, error) {
	r, err := relocate.ParseStrategy(c.Planner.Strategy, c.Planner.MaxCells, c.Planner.Budget)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "config planner")
	}
	return r, nil
}

// Profiles returns the built-in kind profiles overlaid with the [kinds]
// table.
func (c Config) Profiles() grid.Profiles {
	p := grid.DefaultProfiles()
	for name, caps := range c.Kinds {
		p[grid.Kind(name)] = caps
	}
	return p
}

// GridSize returns the size of new boards.
func (c Config) GridSize() grid.Grid {
	return grid.Grid{Rows: c.Grid.Rows, Cols: c.Grid.Cols}
}

// PlanTTL parses the cache TTL. Zero leaves the choice to the service.
func (c Config) PlanTTL() (time.Duration, error) {
	if c.Cache.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil || d < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "cache ttl %q is not a valid duration", c.Cache.TTL)
	}
	return d, nil
}
