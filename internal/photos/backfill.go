package photos

import (
	"context"
	"fmt"
	"log"

	"github.com/greencampus/facility-reports/database/models"
	"github.com/greencampus/facility-reports/database/repo/entries"
)

// BackfillReport counts per table
type BackfillReport struct {
	Table    string
	Entries  int
	Photos   int
	Failures int
}

// photoTable is the slice of an entry repository the backfill needs
type photoTable[T entries.Entry] interface {
	EachWithInlinePhotos(ctx context.Context, batchSize int, fn func(entry *T) error) error
	ReplacePhotos(ctx context.Context, id string, photos []models.Photo) error
}

// Backfill moves legacy inline photos of one table into storage.
// An entry whose photos cannot all be hosted is left unchanged and counted
// as a failure; the run continues with the next entry.
func Backfill[T entries.Entry](ctx context.Context, p *Pipeline, table string, repo photoTable[T], batchSize int, dryRun bool) (BackfillReport, error) {
	report := BackfillReport{Table: table}
	if batchSize <= 0 {
		batchSize = 50
	}

	err := repo.EachWithInlinePhotos(ctx, batchSize, func(entry *T) error {
		carrier, ok := any(entry).(models.PhotoCarrier)
		if !ok {
			return fmt.Errorf("%T does not carry photos", entry)
		}

		current := carrier.GetPhotos()
		inline := 0
		for _, photo := range current {
			if photo.Inline() {
				inline++
			}
		}
		if inline == 0 {
			return nil
		}
		if dryRun {
			report.Entries++
			report.Photos += inline
			return nil
		}

		hosted, keys, err := p.HostAll(ctx, current)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			report.Failures++
			log.Printf("[Backfill] %s %s: %v", table, carrier.GetID(), err)
			return nil
		}
		if err := repo.ReplacePhotos(ctx, carrier.GetID(), hosted); err != nil {
			p.Discard(keys)
			return fmt.Errorf("failed to update %s %s: %w", table, carrier.GetID(), err)
		}

		report.Entries++
		report.Photos += inline
		return nil
	})
	return report, err
}
