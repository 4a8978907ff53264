package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/pybundle/internal/config"
	"github.com/matzehuels/pybundle/pkg/bundle"
	"github.com/matzehuels/pybundle/pkg/cache"
	"github.com/matzehuels/pybundle/pkg/integrations/pypi"
	"github.com/matzehuels/pybundle/pkg/pipeline"
	"github.com/matzehuels/pybundle/pkg/scan"
	"github.com/matzehuels/pybundle/pkg/stdlib"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "pybundle"

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

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Flags
// =============================================================================

// flagKeys maps flag names to the config keys they override.
var flagKeys = map[string]string{
	"dest":           "dest",
	"extension":      "extension",
	"installer":      "installer",
	"python":         "python",
	"exclude-dir":    "scan.exclude_dirs",
	"aliases-file":   "aliases.file",
	"stdlib-extra":   "stdlib.extra",
	"manifest":       "bundle.manifest",
	"no-report":      "bundle.no_report",
	"version-suffix": "bundle.version_suffix",
	"strict":         "bundle.strict",
	"verify":         "verify.enabled",
	"index-url":      "verify.index_url",
	"cache":          "cache.backend",
	"addr":           "serve.addr",
}

// boundFlags returns the flags of cmd that override config keys.
func boundFlags(fs *pflag.FlagSet) map[string]*pflag.Flag {
	out := make(map[string]*pflag.Flag)
	for name, key := range flagKeys {
		if f := fs.Lookup(name); f != nil {
			out[key] = f
		}
	}
	return out
}

// analysisFlags holds the switches that turn a default-on setting off.
// They are applied after loading since viper cannot invert a flag.
type analysisFlags struct {
	noAliases    bool
	noQuery      bool
	includeLocal bool
}

func addAnalysisFlags(fs *pflag.FlagSet, f *analysisFlags) {
	fs.String("extension", scan.DefaultExtension, "source file extension to scan")
	fs.StringSlice("exclude-dir", nil, "directory names to skip (replaces the default list)")
	fs.String("python", stdlib.DefaultPython, "interpreter queried for standard library modules")
	fs.StringSlice("stdlib-extra", nil, "additional module names to treat as standard library")
	fs.String("aliases-file", "", "TOML file with extra [aliases] entries")
	fs.BoolVar(&f.noAliases, "no-aliases", false, "keep import names as package names")
	fs.BoolVar(&f.noQuery, "no-query", false, "do not ask the interpreter for its module list")
	fs.BoolVar(&f.includeLocal, "include-local", false, "keep imports of modules defined in the tree")
}

func (f *analysisFlags) apply(cfg *config.Config) {
	if f == nil {
		return
	}
	if f.noAliases {
		cfg.Aliases.Enabled = false
	}
	if f.noQuery {
		cfg.Stdlib.QueryEnvironment = false
	}
	if f.includeLocal {
		cfg.Scan.SkipLocal = false
	}
}

// loadConfig merges the config file, environment and cmd's flags. A
// positional directory argument overrides root.
func (c *CLI) loadConfig(cmd *cobra.Command, args []string, af *analysisFlags) (*config.Config, error) {
	cfg, err := config.Load(c.configPath, boundFlags(cmd.Flags()))
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		cfg.Root = args[0]
	}
	af.apply(cfg)
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// openCache opens the configured index cache. Backends that cannot be
// reached fall back to no caching.
func (c *CLI) openCache(ctx context.Context, cfg *config.Config) cache.Cache {
	var (
		backend cache.Cache
		err     error
	)
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache()
	case config.CacheRedis:
		var rc *cache.RedisCache
		if rc, err = cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.Cache.RedisAddr}); err == nil {
			backend = rc
		}
	case config.CacheMongo:
		var mc *cache.MongoCache
		if mc, err = cache.NewMongoCache(ctx, cache.MongoConfig{URI: cfg.Cache.MongoURI}); err == nil {
			backend = mc
		}
	default:
		var fc *cache.FileCache
		if fc, err = cache.NewFileCache(cfg.CacheDir()); err == nil {
			backend = fc
		}
	}
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without it", "backend", cfg.Cache.Backend, "err", err)
		return cache.NewNullCache()
	}
	return backend
}

// newRunner creates a pipeline runner for cfg. The returned cleanup closes
// the index cache.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config) (*pipeline.Runner, func(), error) {
	inst, err := bundle.NewInstaller(cfg.Installer)
	if err != nil {
		return nil, nil, err
	}
	var verifier pipeline.Verifier
	cleanup := func() {}
	if cfg.Verify.Enabled {
		backend := c.openCache(ctx, cfg)
		cleanup = func() { _ = backend.Close() }
		verifier = pypi.NewClient(backend, cfg.Cache.TTL).WithBaseURL(cfg.Verify.IndexURL)
	}
	return pipeline.NewRunner(inst, verifier, c.Logger), cleanup, nil
}
