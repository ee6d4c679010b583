package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/greencampus/facility-reports/database"
	"github.com/greencampus/facility-reports/database/archive"
	"github.com/spf13/cobra"
)

// restoreCmd 数据库还原命令
var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore database from backup archive",
	Long: `Restore database from a tar.gz archive created by the backup command.

Example:
  # Preview without writing
  facility-reports restore --input ./backup.tar.gz --dry-run

  # Clear existing data before restore
  facility-reports restore --input ./backup.tar.gz --truncate`,
	Run: func(cmd *cobra.Command, args []string) {
		inputFile, _ := cmd.Flags().GetString("input")
		tables, _ := cmd.Flags().GetStringSlice("tables")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		truncate, _ := cmd.Flags().GetBool("truncate")

		if err := runRestore(inputFile, archive.RestoreOptions{Tables: tables, DryRun: dryRun, Truncate: truncate}); err != nil {
			log.Fatalf("Restore failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().StringP("input", "i", "", "Input tar.gz backup file path (required)")
	restoreCmd.Flags().StringSliceP("tables", "t", []string{}, "Specific tables to restore (default: all)")
	restoreCmd.Flags().Bool("dry-run", false, "Preview restore without actually writing to database")
	restoreCmd.Flags().Bool("truncate", false, "Clear existing data before restore")

	_ = restoreCmd.MarkFlagRequired("input")
}

// runRestore 执行还原
func runRestore(inputFile string, opts archive.RestoreOptions) error {
	file, err := os.Open(inputFile)
	if err != nil {
		return fmt.Errorf("backup file not found: %w", err)
	}
	defer func() { _ = file.Close() }()

	cfg := loadConfig()
	db, err := database.NewDB(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	if opts.Truncate && !opts.DryRun && !confirm("--truncate deletes existing rows before restoring.") {
		fmt.Println("Restore cancelled.")
		return nil
	}

	stats, err := archive.Restore(context.Background(), db, file, opts)
	if err != nil {
		return err
	}
	log.Printf("Backup version: %s, Database: %s, Timestamp: %s",
		stats.Metadata.Version, stats.Metadata.Database, stats.Metadata.Timestamp.Format("2006-01-02 15:04:05"))
	printRestoreStats(stats, opts.DryRun)
	return nil
}

// printRestoreStats 打印还原摘要
func printRestoreStats(stats *archive.RestoreStats, dryRun bool) {
	fmt.Println()
	fmt.Println("========================================")
	if dryRun {
		fmt.Println("       [DRY RUN MODE]")
	}
	fmt.Println("         Restore Summary")
	fmt.Println("========================================")
	for _, table := range archive.Tables() {
		restored, ok := stats.Restored[table]
		if !ok {
			continue
		}
		fmt.Printf("  %-26s %d restored, %d skipped\n", table+":", restored, stats.Skipped[table])
	}
	fmt.Println("========================================")
}
