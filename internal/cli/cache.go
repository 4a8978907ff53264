package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pybundle/internal/config"
	"github.com/matzehuels/pybundle/pkg/cache"
	"github.com/matzehuels/pybundle/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the package index response cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached index responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd, nil, nil)
			if err != nil {
				return err
			}
			if cfg.Cache.Backend != config.CacheFile {
				return errors.New(errors.ErrCodeInvalidConfig,
					"cache clear only supports the file backend; %s entries expire after cache.ttl", cfg.Cache.Backend)
			}

			fc, err := cache.NewFileCache(cfg.CacheDir())
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			count, err := fc.Clear()
			if err != nil {
				return err
			}
			if count == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where cached responses are stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd, nil, nil)
			if err != nil {
				return err
			}
			switch cfg.Cache.Backend {
			case config.CacheFile:
				fmt.Fprintln(cmd.OutOrStdout(), cfg.CacheDir())
			case config.CacheRedis:
				printKeyValue("redis", cfg.Cache.RedisAddr+" "+cache.DefaultRedisPrefix+"*")
			case config.CacheMongo:
				printKeyValue("mongo", cfg.Cache.MongoURI+" "+cache.DefaultMongoDatabase+"."+cache.DefaultMongoCollection)
			default:
				printInfo("Caching is disabled")
			}
			return nil
		},
	}
}
