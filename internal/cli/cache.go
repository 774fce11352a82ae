package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archview/internal/config"
	"github.com/matzehuels/archview/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the graph cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached graphs and renderings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, err := cfg.Cache.OpenCache(cmd.Context(), false)
			if err != nil {
				return fmt.Errorf("open %s cache: %w", cfg.Cache.Backend, err)
			}
			defer store.Close()

			if err := cache.Clear(cmd.Context(), store); err != nil {
				if errors.Is(err, cache.ErrUnsupported) {
					printWarning("The %s cache cannot be cleared from here", cfg.Cache.Backend)
					return nil
				}
				return err
			}

			printSuccess("Cleared %s cache", cfg.Cache.Backend)
			if fc, ok := store.(*cache.FileCache); ok {
				printDetail("Directory: %s", fc.Dir())
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, cacheLocation(cfg.Cache))
			return nil
		},
	}
}

// cacheLocation describes the configured backend: a directory for the file
// cache, an address for the remote ones.
func cacheLocation(cc config.CacheConfig) string {
	switch cc.Backend {
	case config.BackendNone:
		return "none"
	case config.BackendRedis:
		return "redis://" + cc.RedisAddr + "/" + cc.RedisPrefix
	case config.BackendMongo:
		return cc.MongoURI + " " + cc.MongoDatabase + "." + cc.MongoCollection
	}
	if cc.Dir != "" {
		return cc.Dir
	}
	dir, err := config.CacheDir()
	if err != nil {
		return ""
	}
	return dir
}
