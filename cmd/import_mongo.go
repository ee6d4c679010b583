package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/greencampus/facility-reports/database"
	"github.com/greencampus/facility-reports/database/legacy"
	"github.com/spf13/cobra"
)

// importMongoCmd 旧数据导入命令
var importMongoCmd = &cobra.Command{
	Use:   "import-mongo",
	Short: "Import users and reports from the legacy MongoDB store",
	Long: `Copy users, daily waste logs, weekly resource reports and unused space
reports from the legacy MongoDB database. Document ids and creation times are
preserved and records that already exist are skipped, so the command can be
re-run safely. Imported photos stay inline until backfill-photos moves them.

Example:
  facility-reports import-mongo --uri mongodb://localhost:27017 --database school-facilities`,
	Run: func(cmd *cobra.Command, args []string) {
		uri, _ := cmd.Flags().GetString("uri")
		dbName, _ := cmd.Flags().GetString("database")
		batchSize, _ := cmd.Flags().GetInt("batch-size")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		if err := runImportMongo(uri, dbName, batchSize, dryRun); err != nil {
			log.Fatalf("Import failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(importMongoCmd)
	importMongoCmd.Flags().String("uri", "", "MongoDB connection URI (required)")
	importMongoCmd.Flags().String("database", "", "MongoDB database name (required)")
	importMongoCmd.Flags().Int("batch-size", 100, "Documents inserted per transaction")
	importMongoCmd.Flags().Bool("dry-run", false, "Read and convert without writing")

	_ = importMongoCmd.MarkFlagRequired("uri")
	_ = importMongoCmd.MarkFlagRequired("database")
}

func runImportMongo(uri, dbName string, batchSize int, dryRun bool) error {
	cfg := loadConfig()

	db, err := database.NewDB(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	connectCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	source, err := legacy.Connect(connectCtx, uri, dbName)
	cancel()
	if err != nil {
		return err
	}
	defer func() { _ = source.Close(context.Background()) }()

	log.Printf("Importing from %s/%s into %s", maskDSN(uri), dbName, cfg.DBType)
	reports, err := legacy.NewImporter(db, source, batchSize, dryRun).Run(context.Background())

	fmt.Println()
	if dryRun {
		fmt.Println("[DRY RUN MODE]")
	}
	for _, r := range reports {
		fmt.Printf("  %-18s read %d, imported %d, skipped %d\n", r.Collection+":", r.Read, r.Imported, r.Skipped)
	}
	return err
}
