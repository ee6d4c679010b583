package photos

import (
	"context"
	"image/color"
	"testing"
	"time"

	"github.com/greencampus/facility-reports/database/dbtest"
	"github.com/greencampus/facility-reports/database/models"
	"github.com/greencampus/facility-reports/database/repo/entries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestBackfill_HostsInlinePhotos(t *testing.T) {
	db := dbtest.Open(t)
	repo := entries.NewWasteRepository(db)
	store := newMemStorage()
	p := newTestPipeline(store)
	ctx := context.Background()

	legacy := &models.WasteEntry{
		Submitter: models.Submitter{
			SubmittedBy:     "u1",
			SubmittedByName: "Kamal",
			SubmittedRole:   models.RoleClassTeacher,
		},
		Date:                 time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		ClassroomCleanliness: models.CleanlinessGood,
		Photos: datatypes.NewJSONSlice([]models.Photo{
			{Data: dataURL(pngBytes(t, 16, 16, color.White)), OriginalName: "a.png"},
			{URL: "http://cdn/b.jpg", PublicID: "photos/b.jpg"},
		}),
	}
	require.NoError(t, repo.Create(ctx, legacy))

	dry, err := Backfill[models.WasteEntry](ctx, p, "waste", repo, 10, true)
	require.NoError(t, err)
	assert.Equal(t, 1, dry.Entries)
	assert.Equal(t, 1, dry.Photos)
	assert.Equal(t, 0, store.len())

	report, err := Backfill[models.WasteEntry](ctx, p, "waste", repo, 10, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Entries)
	assert.Equal(t, 0, report.Failures)

	stored, err := repo.GetByID(ctx, legacy.ID)
	require.NoError(t, err)
	require.Len(t, stored.Photos, 2)
	for _, photo := range stored.Photos {
		assert.True(t, photo.Hosted())
		assert.False(t, photo.Inline())
	}
	assert.Equal(t, "a.png", stored.Photos[0].OriginalName)

	again, err := Backfill[models.WasteEntry](ctx, p, "waste", repo, 10, false)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Entries)
}
