package legacy

import (
	"context"
	"testing"
	"time"

	"github.com/greencampus/facility-reports/database/dbtest"
	"github.com/greencampus/facility-reports/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type fakeSource map[string][]bson.M

func (f fakeSource) Each(ctx context.Context, collection string, fn func(raw bson.Raw) error) error {
	for _, doc := range f[collection] {
		raw, err := bson.Marshal(doc)
		if err != nil {
			return err
		}
		if err := fn(raw); err != nil {
			return err
		}
	}
	return nil
}

func legacyFixture() (fakeSource, bson.ObjectID, bson.ObjectID) {
	userID := bson.NewObjectID()
	wasteID := bson.NewObjectID()
	created := time.Date(2024, 9, 2, 8, 30, 0, 0, time.UTC)

	return fakeSource{
		UsersCollection: {{
			"_id":       userID,
			"username":  "kamal",
			"email":     "Kamal@School.LK",
			"password":  "$2a$10$abcdefghijklmnopqrstuu",
			"fullName":  "Kamal Perera",
			"role":      "Class Teacher",
			"section":   "Primary",
			"createdAt": created,
			"updatedAt": created,
		}},
		WasteCollection: {{
			"_id":                   wasteID,
			"submittedBy":           userID,
			"submittedByName":       "Kamal Perera",
			"submittedRole":         "Class Teacher",
			"submittedSection":      "Primary",
			"date":                  created,
			"generalWaste":          2.5,
			"wasProperlySegregated": true,
			"classroomCleanliness":  "Good",
			"photos": bson.A{
				bson.M{"data": "aGVsbG8=", "mimeType": "image/jpeg", "originalName": "a.jpg", "size": 5},
			},
		}},
		ResourcesCollection: {{
			"_id":             bson.NewObjectID(),
			"submittedBy":     userID,
			"submittedByName": "Kamal Perera",
			"submittedRole":   "Class Teacher",
			"location":        "Library",
			"weekEnding":      created,
			"furniture":       bson.A{bson.M{"type": "Chair", "quantity": 4.0, "condition": "Broken"}},
			"createdAt":       created,
		}},
		SpacesCollection: {{
			"_id":               bson.NewObjectID(),
			"submittedBy":       userID,
			"submittedByName":   "Kamal Perera",
			"submittedRole":     "Class Teacher",
			"buildingName":      "Old Block",
			"floorNumber":       "1",
			"nearLocation":      "Library",
			"specificLocation":  "East wing",
			"spaceType":         "Classroom",
			"spaceSize":         "Medium",
			"currentUsage":      "Storage",
			"usageDescription":  "Old desks",
			"spaceCondition":    "Fair",
			"suggestionDetails": "Reading room",
			"priority":          "High",
			"facilities":        bson.A{"Lights"},
			"createdAt":         created,
		}},
	}, userID, wasteID
}

func TestImporter_PreservesIDsAndSkipsExisting(t *testing.T) {
	db := dbtest.Open(t)
	source, userID, wasteID := legacyFixture()
	ctx := context.Background()

	reports, err := NewImporter(db, source, 10, false).Run(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 4)
	for _, r := range reports {
		assert.EqualValues(t, 1, r.Imported, r.Collection)
	}

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", userID.Hex()).Error)
	assert.Equal(t, "kamal@school.lk", user.Email)
	assert.Equal(t, "$2a$10$abcdefghijklmnopqrstuu", user.Password)
	assert.Equal(t, models.RoleClassTeacher, user.Role)

	var waste models.WasteEntry
	require.NoError(t, db.First(&waste, "id = ?", wasteID.Hex()).Error)
	assert.Equal(t, userID.Hex(), waste.SubmittedBy)
	assert.Equal(t, models.CleanlinessGood, waste.ClassroomCleanliness)
	require.Len(t, waste.Photos, 1)
	assert.True(t, waste.Photos[0].Inline())
	assert.Equal(t, wasteID.Timestamp().Unix(), waste.CreatedAt.Unix(), "missing createdAt falls back to the id timestamp")

	var resource models.ResourceEntry
	require.NoError(t, db.First(&resource).Error)
	require.Len(t, resource.Furniture, 1)
	assert.Equal(t, 4, resource.Furniture[0].Quantity)

	reports, err = NewImporter(db, source, 10, false).Run(ctx)
	require.NoError(t, err)
	for _, r := range reports {
		assert.EqualValues(t, 0, r.Imported, r.Collection)
		assert.EqualValues(t, 1, r.Skipped, r.Collection)
	}
}

func TestImporter_DryRunWritesNothing(t *testing.T) {
	db := dbtest.Open(t)
	source, _, _ := legacyFixture()

	reports, err := NewImporter(db, source, 0, true).Run(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, reports[0].Imported)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}
