package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/greencampus/facility-reports/database"
	"github.com/greencampus/facility-reports/database/archive"
	"github.com/greencampus/facility-reports/utils/format"
	"github.com/spf13/cobra"
)

// backupCmd 数据库备份命令
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Backup database to JSONL archive",
	Long: `Backup users and reports to JSONL files packed into a tar.gz archive.
Photos live in object storage and are not part of the archive.

Example:
  # Backup to default file (./backups/backup_YYYYMMDD_HHMMSS.tar.gz)
  facility-reports backup

  # Backup specific tables only
  facility-reports backup --tables users,daily_waste_entries`,
	Run: func(cmd *cobra.Command, args []string) {
		outputFile, _ := cmd.Flags().GetString("output")
		tables, _ := cmd.Flags().GetStringSlice("tables")

		if err := runBackup(outputFile, tables); err != nil {
			log.Fatalf("Backup failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.Flags().StringP("output", "o", "", "Output tar.gz file path (default: ./backups/backup_YYYYMMDD_HHMMSS.tar.gz)")
	backupCmd.Flags().StringSliceP("tables", "t", []string{}, "Specific tables to backup (default: all)")
}

// runBackup 执行备份
func runBackup(outputFile string, tables []string) error {
	cfg := loadConfig()

	db, err := database.NewDB(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	if outputFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		outputFile = filepath.Join("./backups", fmt.Sprintf("backup_%s.tar.gz", timestamp))
	}
	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(outputFile)
	if err != nil {
		return err
	}

	log.Printf("Starting backup to: %s", outputFile)
	meta, err := archive.Dump(context.Background(), db, file, cfg.DBType, tables)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(outputFile)
		return err
	}

	printBackupSummary(meta, outputFile)
	return nil
}

// printBackupSummary 打印备份摘要
func printBackupSummary(metadata *archive.Metadata, outputFile string) {
	fmt.Println("\nBackup Summary:")
	fmt.Println("===============")
	fmt.Printf("Version:    %s\n", metadata.Version)
	fmt.Printf("Timestamp:  %s\n", metadata.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("Database:   %s\n", metadata.Database)
	fmt.Printf("Output:     %s\n", outputFile)
	if info, err := os.Stat(outputFile); err == nil {
		fmt.Printf("Size:       %s\n", format.HumanReadableSize(info.Size()))
	}
	fmt.Println("\nTables backed up:")
	var total int64
	for _, table := range metadata.Tables {
		count := metadata.RecordCount[table]
		total += count
		fmt.Printf("  - %s: %d records\n", table, count)
	}
	fmt.Printf("\nTotal records: %d\n", total)
}
