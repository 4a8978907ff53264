package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/pybundle/pkg/bundle"
	"github.com/matzehuels/pybundle/pkg/integrations/pypi"
	"github.com/matzehuels/pybundle/pkg/scan"
	"github.com/matzehuels/pybundle/pkg/stdlib"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheMongo = "mongo"
	CacheNone  = "none"
)

const (
	DefaultRoot      = "."
	DefaultCacheTTL  = 24 * time.Hour
	DefaultServeAddr = "127.0.0.1:8080"
)

// DefaultCacheDir returns $XDG_CACHE_HOME/pybundle (or the platform
// equivalent), falling back to a directory under the temp dir.
func DefaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "pybundle")
	}
	return filepath.Join(os.TempDir(), "pybundle-cache")
}

var validBackends = map[string]bool{
	CacheFile:  true,
	CacheRedis: true,
	CacheMongo: true,
	CacheNone:  true,
}

func defaults() map[string]any {
	return map[string]any{
		"root":      DefaultRoot,
		"dest":      bundle.DefaultDest,
		"extension": scan.DefaultExtension,
		"installer": bundle.DefaultInstaller,
		"python":    stdlib.DefaultPython,

		"scan.exclude_dirs": scan.DefaultExcludeDirs,
		"scan.skip_local":   true,

		"aliases.enabled": true,
		"aliases.file":    "",

		"stdlib.query_environment": true,
		"stdlib.manual_list":       true,
		"stdlib.builtin_utils":     true,
		"stdlib.extra":             []string{},

		"bundle.manifest":       bundle.DefaultManifest,
		"bundle.windows_script": bundle.DefaultWindowsScript,
		"bundle.unix_script":    bundle.DefaultUnixScript,
		"bundle.report":         bundle.DefaultReport,
		"bundle.no_report":      false,
		"bundle.version_suffix": false,
		"bundle.strict":         false,

		"verify.enabled":   false,
		"verify.index_url": pypi.DefaultBaseURL,

		"cache.backend":    CacheFile,
		"cache.dir":        "",
		"cache.ttl":        DefaultCacheTTL,
		"cache.redis_addr": "localhost:6379",
		"cache.mongo_uri":  "mongodb://localhost:27017",

		"serve.addr": DefaultServeAddr,
	}
}
