package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/schematic/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the collection and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCacheClear(cmd.Context())
		},
	}
}

func (c *CLI) runCacheClear(ctx context.Context) error {
	cfg := c.Config.Cache.Config
	if cfg.Backend == cache.BackendFile || cfg.Backend == "" {
		dir := cfg.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			dir = d
		}
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			printInfo(c.out, "Cache is empty")
			return nil
		}
	}

	cc, err := c.newCache(ctx, false)
	if err != nil {
		return err
	}
	defer cc.Close()

	var n int
	switch cc := cc.(type) {
	case *cache.FileCache:
		n, err = cc.Clear()
		if err == nil {
			printSuccess(c.out, "Cleared %d cached entries", n)
			printDetail(c.out, "Directory: %s", cc.Dir())
		}
	case *cache.RedisCache:
		n, err = cc.Clear(ctx)
		if err == nil {
			printSuccess(c.out, "Cleared %d cached entries", n)
			printDetail(c.out, "Redis: %s", cfg.Redis.Addr)
		}
	default:
		printInfo(c.out, "Caching is disabled")
	}
	return err
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Cache.Config
			switch cfg.Backend {
			case cache.BackendRedis:
				addr := cfg.Redis.Addr
				if addr == "" {
					addr = cache.DefaultRedisConfig().Addr
				}
				fmt.Fprintln(c.out, "redis://"+addr)
				return nil
			case cache.BackendNone:
				printInfo(c.out, "Caching is disabled")
				return nil
			}
			dir := cfg.Dir
			if dir == "" {
				d, err := cacheDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				dir = d
			}
			fmt.Fprintln(c.out, dir)
			return nil
		},
	}
}
