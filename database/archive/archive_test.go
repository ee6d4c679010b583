package archive

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/greencampus/facility-reports/database/dbtest"
	"github.com/greencampus/facility-reports/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func seed(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		Username: "kamal",
		Email:    "kamal@school.lk",
		Password: "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		FullName: "Kamal Perera",
		Role:     models.RoleClassTeacher,
	}
	require.NoError(t, db.Create(user).Error)

	entry := &models.WasteEntry{
		Submitter: models.Submitter{
			SubmittedBy:     user.ID,
			SubmittedByName: user.FullName,
			SubmittedRole:   user.Role,
		},
		Date:                 time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		ClassroomCleanliness: models.CleanlinessGood,
		Photos: datatypes.NewJSONSlice([]models.Photo{
			{URL: "http://localhost/photos/a.jpg", PublicID: "photos/a.jpg"},
		}),
	}
	require.NoError(t, db.Create(entry).Error)
	return user
}

func TestDumpRestore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	source := dbtest.Open(t)
	user := seed(t, source)

	var buf bytes.Buffer
	meta, err := Dump(ctx, source, &buf, "sqlite", nil)
	require.NoError(t, err)
	assert.Equal(t, Tables(), meta.Tables)
	assert.Equal(t, int64(1), meta.RecordCount["users"])
	assert.Equal(t, int64(1), meta.RecordCount["daily_waste_entries"])

	target := dbtest.Open(t)
	stats, err := Restore(ctx, target, bytes.NewReader(buf.Bytes()), RestoreOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Restored["users"])
	assert.Equal(t, int64(1), stats.Restored["daily_waste_entries"])

	var restored models.User
	require.NoError(t, target.First(&restored, "id = ?", user.ID).Error)
	assert.Equal(t, user.Password, restored.Password, "password hash survives the archive")

	var entry models.WasteEntry
	require.NoError(t, target.First(&entry).Error)
	assert.Equal(t, user.ID, entry.SubmittedBy)
	require.Len(t, entry.Photos, 1)
	assert.Equal(t, "photos/a.jpg", entry.Photos[0].PublicID)

	again, err := Restore(ctx, target, bytes.NewReader(buf.Bytes()), RestoreOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), again.Restored["users"])
	assert.Equal(t, int64(1), again.Skipped["users"])
}

func TestRestore_DryRunWritesNothing(t *testing.T) {
	ctx := context.Background()
	source := dbtest.Open(t)
	seed(t, source)

	var buf bytes.Buffer
	_, err := Dump(ctx, source, &buf, "sqlite", []string{"users"})
	require.NoError(t, err)

	target := dbtest.Open(t)
	stats, err := Restore(ctx, target, &buf, RestoreOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Restored["users"])

	var count int64
	require.NoError(t, target.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSelectTables_Unknown(t *testing.T) {
	_, err := Dump(context.Background(), dbtest.Open(t), &bytes.Buffer{}, "sqlite", []string{"images"})
	assert.ErrorContains(t, err, "unknown table")
}
