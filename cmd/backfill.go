package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/greencampus/facility-reports/database/models"
	"github.com/greencampus/facility-reports/internal/app"
	"github.com/greencampus/facility-reports/internal/photos"
	"github.com/spf13/cobra"
)

// backfillCmd 旧照片迁移命令
var backfillCmd = &cobra.Command{
	Use:   "backfill-photos",
	Short: "Move inline Base64 photos into photo storage",
	Long: `Scan every report table for photos still stored inline as Base64 and
replace them with hosted references in the configured storage backend.

Example:
  # Count what would be moved
  facility-reports backfill-photos --dry-run`,
	Run: func(cmd *cobra.Command, args []string) {
		batchSize, _ := cmd.Flags().GetInt("batch-size")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		if err := runBackfill(batchSize, dryRun); err != nil {
			log.Fatalf("Backfill failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(backfillCmd)
	backfillCmd.Flags().Int("batch-size", 50, "Entries loaded per batch")
	backfillCmd.Flags().Bool("dry-run", false, "Only count inline photos")
}

func runBackfill(batchSize int, dryRun bool) error {
	cfg := loadConfig()

	container := app.NewContainer(cfg)
	if err := container.Init(false); err != nil {
		return err
	}
	defer func() { _ = container.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var reports []photos.BackfillReport
	waste, err := photos.Backfill[models.WasteEntry](ctx, container.Photos, "daily_waste_entries", container.WasteRepo, batchSize, dryRun)
	reports = append(reports, waste)
	if err == nil {
		var resources photos.BackfillReport
		resources, err = photos.Backfill[models.ResourceEntry](ctx, container.Photos, "weekly_resource_entries", container.ResourcesRepo, batchSize, dryRun)
		reports = append(reports, resources)
	}
	if err == nil {
		var spaces photos.BackfillReport
		spaces, err = photos.Backfill[models.SpaceEntry](ctx, container.Photos, "unused_space_entries", container.SpacesRepo, batchSize, dryRun)
		reports = append(reports, spaces)
	}

	fmt.Println()
	if dryRun {
		fmt.Println("[DRY RUN MODE]")
	}
	for _, r := range reports {
		fmt.Printf("  %-26s %d entries, %d photos, %d failures\n", r.Table+":", r.Entries, r.Photos, r.Failures)
	}
	return err
}
