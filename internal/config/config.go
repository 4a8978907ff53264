// Package config loads pybundle settings from defaults, an optional
// .pybundle.toml file, PYBUNDLE_* environment variables, and command
// flags, in increasing order of precedence.
package config

import (
	"net/url"
	"time"

	"github.com/matzehuels/pybundle/pkg/buildinfo"
	"github.com/matzehuels/pybundle/pkg/bundle"
	"github.com/matzehuels/pybundle/pkg/errors"
	"github.com/matzehuels/pybundle/pkg/pipeline"
	"github.com/matzehuels/pybundle/pkg/scan"
)

// Config is the top-level configuration.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Root      string `mapstructure:"root"`
	Dest      string `mapstructure:"dest"`
	Extension string `mapstructure:"extension"`
	Installer string `mapstructure:"installer"`
	Python    string `mapstructure:"python"`

	Scan    ScanConfig    `mapstructure:"scan"`
	Aliases AliasesConfig `mapstructure:"aliases"`
	Stdlib  StdlibConfig  `mapstructure:"stdlib"`
	Bundle  BundleConfig  `mapstructure:"bundle"`
	Verify  VerifyConfig  `mapstructure:"verify"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Serve   ServeConfig   `mapstructure:"serve"`
}

// ScanConfig controls the source walk.
type ScanConfig struct {
	ExcludeDirs []string `mapstructure:"exclude_dirs"`
	SkipLocal   bool     `mapstructure:"skip_local"`
}

// AliasesConfig controls import-to-package substitution.
type AliasesConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	File    string `mapstructure:"file"`
}

// StdlibConfig selects the standard-library name sources.
type StdlibConfig struct {
	QueryEnvironment bool     `mapstructure:"query_environment"`
	ManualList       bool     `mapstructure:"manual_list"`
	BuiltinUtils     bool     `mapstructure:"builtin_utils"`
	Extra            []string `mapstructure:"extra"`
}

// BundleConfig names the generated files.
type BundleConfig struct {
	Manifest      string `mapstructure:"manifest"`
	WindowsScript string `mapstructure:"windows_script"`
	UnixScript    string `mapstructure:"unix_script"`
	Report        string `mapstructure:"report"`
	NoReport      bool   `mapstructure:"no_report"`
	VersionSuffix bool   `mapstructure:"version_suffix"`
	Strict        bool   `mapstructure:"strict"`
}

// VerifyConfig controls package index lookups.
type VerifyConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	IndexURL string `mapstructure:"index_url"`
}

// CacheConfig selects the index response cache.
type CacheConfig struct {
	Backend   string        `mapstructure:"backend"`
	Dir       string        `mapstructure:"dir"`
	TTL       time.Duration `mapstructure:"ttl"`
	RedisAddr string        `mapstructure:"redis_addr"`
	MongoURI  string        `mapstructure:"mongo_uri"`
}

// ServeConfig configures the HTTP API.
type ServeConfig struct {
	Addr string `mapstructure:"addr"`
}

// Validate rejects settings that cannot work.
func (c *Config) Validate() error {
	if c.Root == "" {
		return invalid("root must not be empty")
	}
	if c.Dest == "" {
		return invalid("dest must not be empty")
	}
	if c.Extension == "" {
		return invalid("extension must not be empty")
	}
	if c.Installer == "" {
		return invalid("installer must not be empty")
	}
	if !validBackends[c.Cache.Backend] {
		return invalid("cache.backend %q: want file, redis, mongo or none", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return invalid("cache.ttl must not be negative")
	}
	if c.Verify.Enabled {
		u, err := url.Parse(c.Verify.IndexURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return invalid("verify.index_url %q is not an absolute URL", c.Verify.IndexURL)
		}
	}
	for _, name := range c.Stdlib.Extra {
		if name == "" {
			return invalid("stdlib.extra contains an empty name")
		}
	}
	return c.BundleOptions().WithDefaults().Validate()
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidConfig, format, args...)
}

// BundleOptions returns the bundle writer options described by c.
func (c *Config) BundleOptions() bundle.Options {
	opts := bundle.Options{
		Dest:          c.Dest,
		Manifest:      c.Bundle.Manifest,
		WindowsScript: c.Bundle.WindowsScript,
		UnixScript:    c.Bundle.UnixScript,
		Report:        c.Bundle.Report,
		NoReport:      c.Bundle.NoReport,
		Installer:     c.Installer,
	}
	if c.Bundle.VersionSuffix {
		opts.VersionSuffix = buildinfo.Current()
	}
	return opts
}

// PipelineOptions returns the pipeline options described by c.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Root: c.Root,
		Scan: scan.Options{
			Extension:   c.Extension,
			ExcludeDirs: c.Scan.ExcludeDirs,
		},
		Stdlib: pipeline.StdlibOptions{
			QueryEnvironment: c.Stdlib.QueryEnvironment,
			ManualList:       c.Stdlib.ManualList,
			BuiltinUtils:     c.Stdlib.BuiltinUtils,
			Extra:            c.Stdlib.Extra,
			Python:           c.Python,
		},
		Aliases: pipeline.AliasOptions{
			Enabled: c.Aliases.Enabled,
			File:    c.Aliases.File,
		},
		SkipLocal: c.Scan.SkipLocal,
		Verify:    c.Verify.Enabled,
		Bundle:    c.BundleOptions(),
		Strict:    c.Bundle.Strict,
	}
}

// CacheDir returns the configured cache directory or the default.
func (c *Config) CacheDir() string {
	if c.Cache.Dir != "" {
		return c.Cache.Dir
	}
	return DefaultCacheDir()
}
