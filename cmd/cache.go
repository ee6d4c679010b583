package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/greencampus/facility-reports/cache"
	"github.com/spf13/cobra"
)

// cacheCmd 缓存管理命令
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Cache management commands",
	Long:  "Manage application cache, including the dashboard summary.",
}

// cacheClearCmd 清除缓存命令
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear cache",
	Long: `Delete every key the application writes to the configured cache.
Only useful with a shared (redis) cache; the memory cache lives inside the server process.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCacheClear(); err != nil {
			log.Fatalf("Cache clear failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

// runCacheClear 执行缓存清理
func runCacheClear() error {
	cfg := loadConfig()

	provider, err := cache.New(cache.ConfigFrom(cfg))
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	defer func() { _ = provider.Close() }()

	log.Printf("Cache provider: %s", provider.Name())

	ctx := context.Background()
	if clearer, ok := provider.(interface {
		ClearAll(ctx context.Context) (int64, error)
	}); ok {
		removed, err := clearer.ClearAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		log.Printf("Cache cleared successfully, %d keys removed", removed)
		return nil
	}

	for _, key := range cache.KnownKeys() {
		if err := provider.Delete(ctx, key); err != nil && !cache.IsCacheMiss(err) {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
		log.Printf("Deleted %s", key)
	}
	log.Println("Cache cleared successfully")
	return nil
}
