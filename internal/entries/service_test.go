package entries

import (
	"context"
	"testing"
	"time"

	"github.com/greencampus/facility-reports/database/dbtest"
	"github.com/greencampus/facility-reports/database/models"
	"github.com/greencampus/facility-reports/database/repo/accounts"
	entryrepo "github.com/greencampus/facility-reports/database/repo/entries"
	"github.com/greencampus/facility-reports/internal/apperr"
	"github.com/greencampus/facility-reports/internal/submission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePhotos hosts every inline photo under a predictable key
type fakePhotos struct {
	hosted    int
	discarded []string
}

func (f *fakePhotos) HostAll(_ context.Context, photos []models.Photo) ([]models.Photo, []string, error) {
	out := make([]models.Photo, len(photos))
	var keys []string
	for i, p := range photos {
		if p.Inline() {
			f.hosted++
			key := "photos/test/" + p.OriginalName
			p = models.Photo{URL: "http://localhost/photos/" + key, PublicID: key, OriginalName: p.OriginalName}
			keys = append(keys, key)
		}
		out[i] = p
	}
	return out, keys, nil
}

func (f *fakePhotos) Discard(keys []string) {
	f.discarded = append(f.discarded, keys...)
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) RefreshCache(context.Context) error {
	c.calls++
	return nil
}

type fixture struct {
	svc         *Service
	users       *accounts.Repository
	photos      *fakePhotos
	invalidator *countingInvalidator
}

func newFixture(t *testing.T) *fixture {
	db := dbtest.Open(t)
	users := accounts.NewRepository(db)
	photos := &fakePhotos{}
	invalidator := &countingInvalidator{}
	svc := NewService(users, Repositories{
		Waste:     entryrepo.NewWasteRepository(db),
		Resources: entryrepo.NewResourceRepository(db),
		Spaces:    entryrepo.NewSpaceRepository(db),
	}, photos, invalidator)
	return &fixture{svc: svc, users: users, photos: photos, invalidator: invalidator}
}

func (f *fixture) user(t *testing.T, username string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    username + "@school.lk",
		Password: "$argon2id$x",
		FullName: "Full " + username,
		Role:     role,
		Section:  "Primary",
		Grade:    "Grade 4",
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func inlinePhotos(n int) []submission.PhotoInput {
	out := make([]submission.PhotoInput, n)
	for i := range out {
		out[i] = submission.PhotoInput{Data: "data:image/png;base64,AAAA", OriginalName: string(rune('a'+i)) + ".png"}
	}
	return out
}

func wasteInput() submission.WasteInput {
	return submission.WasteInput{
		EntryDate:         "2025-03-01",
		ClassSection:      "4B",
		TotalWaste:        3,
		CleanlinessRating: 5,
		Photos:            inlinePhotos(2),
	}
}

func TestSubmitWaste_StampsSubmitterFromRecord(t *testing.T) {
	f := newFixture(t)
	teacher := f.user(t, "kamal", models.RoleClassTeacher)

	entry, err := f.svc.SubmitWaste(context.Background(), teacher.ID, wasteInput())
	require.NoError(t, err)

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, teacher.ID, entry.SubmittedBy)
	assert.Equal(t, "Full kamal", entry.SubmittedByName)
	assert.Equal(t, models.RoleClassTeacher, entry.SubmittedRole)
	assert.Equal(t, "Primary", entry.SubmittedSection)
	assert.Equal(t, "Grade 4", entry.SubmittedGrade)
	assert.Equal(t, models.CleanlinessExcellent, entry.ClassroomCleanliness)

	for _, p := range entry.Photos {
		assert.True(t, p.Hosted())
		assert.False(t, p.Inline())
	}
	assert.Equal(t, 2, f.photos.hosted)
	assert.Equal(t, 1, f.invalidator.calls)
}

func TestSubmitWaste_SectionFallsBackToPayload(t *testing.T) {
	f := newFixture(t)
	u := &models.User{
		Username: "noname", Email: "noname@school.lk", Password: "x",
		FullName: "No Section", Role: models.RoleNonAcademicStaff,
	}
	require.NoError(t, f.users.Create(context.Background(), u))

	entry, err := f.svc.SubmitWaste(context.Background(), u.ID, wasteInput())
	require.NoError(t, err)
	assert.Equal(t, "4B", entry.SubmittedSection)
}

func TestSubmit_RoleMatrix(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	worker := f.user(t, "worker", models.RoleWorker)
	principal := f.user(t, "principal", models.RolePrincipal)

	_, err := f.svc.SubmitWaste(ctx, worker.ID, wasteInput())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))
	assert.Equal(t, "Worker users are not allowed to submit waste entries", apperr.PublicMessage(err))

	_, err = f.svc.SubmitSpace(ctx, principal.ID, submission.SpaceInput{})
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))

	_, err = f.svc.SubmitResource(ctx, principal.ID, submission.ResourceInput{})
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))

	// workers may file resource reports
	entry, err := f.svc.SubmitResource(ctx, worker.ID, submission.ResourceInput{
		Location:   "Hall",
		WeekEnding: "2025-03-07",
		Equipment:  []models.InventoryItem{{Type: "fan", Quantity: 2, Condition: "broken"}},
		Photos:     inlinePhotos(2),
	})
	require.NoError(t, err)
	assert.Equal(t, "routine", entry.PriorityLevel)

	assert.Equal(t, 2, f.photos.hosted, "refused submissions must not touch storage")
}

func TestSubmit_ValidationBeforeWrite(t *testing.T) {
	f := newFixture(t)
	teacher := f.user(t, "kamal", models.RoleClassTeacher)

	in := wasteInput()
	in.Photos = inlinePhotos(1)
	_, err := f.svc.SubmitWaste(context.Background(), teacher.ID, in)
	require.Error(t, err)
	assert.Equal(t, "At least 2 photos are required", apperr.PublicMessage(err))
	assert.Equal(t, 0, f.photos.hosted)
	assert.Equal(t, 0, f.invalidator.calls)

	list, err := f.svc.ListWaste(context.Background(), teacher.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSubmit_UnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SubmitWaste(context.Background(), "ghost", wasteInput())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Equal(t, "User not found", apperr.PublicMessage(err))

	_, err = f.svc.ListSpaces(context.Background(), "ghost", 0)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestList_Scope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.user(t, "alice", models.RoleClassTeacher)
	bob := f.user(t, "bob", models.RoleClassTeacher)
	head := f.user(t, "head", models.RoleSectionHead)

	for _, u := range []*models.User{alice, alice, bob} {
		_, err := f.svc.SubmitWaste(ctx, u.ID, wasteInput())
		require.NoError(t, err)
	}

	own, err := f.svc.ListWaste(ctx, alice.ID, 0)
	require.NoError(t, err)
	assert.Len(t, own, 2)
	for _, e := range own {
		assert.Equal(t, alice.ID, e.SubmittedBy)
	}

	all, err := f.svc.ListWaste(ctx, head.ID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	limited, err := f.svc.ListWaste(ctx, head.ID, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	spaces, err := f.svc.ListSpaces(ctx, alice.ID, 0)
	require.NoError(t, err)
	assert.NotNil(t, spaces)
	assert.Empty(t, spaces)
}

// storedShape drops the fields the store assigns
func storedShape[T any](entry T, drop func(*T)) T {
	drop(&entry)
	return entry
}

func TestSubmitThenList_RoundTripsEveryField(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	teacher := f.user(t, "kamal", models.RoleClassTeacher)
	staff := f.user(t, "nimal", models.RoleNonAcademicStaff)

	t.Run("waste", func(t *testing.T) {
		in := wasteInput()
		in.WasteData = submission.WasteData{
			Recyclable:    submission.WasteAmount{Amount: 1.25},
			Organic:       submission.WasteAmount{Amount: 0.75},
			NonRecyclable: submission.WasteAmount{Amount: 2},
		}
		in.SeparationStatus = "properly_separated"
		in.Notes = "bins emptied"

		created, err := f.svc.SubmitWaste(ctx, teacher.ID, in)
		require.NoError(t, err)
		listed, err := f.svc.ListWaste(ctx, teacher.ID, 0)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, created.ID, listed[0].ID)

		drop := func(e *models.WasteEntry) { e.ID, e.CreatedAt = "", time.Time{} }
		assert.Equal(t, storedShape(*created, drop), storedShape(listed[0], drop))
	})

	t.Run("resource", func(t *testing.T) {
		created, err := f.svc.SubmitResource(ctx, teacher.ID, submission.ResourceInput{
			Location:         "Science Block",
			SpecificArea:     "Lab 2",
			WeekEnding:       "2025-03-07",
			Furniture:        []models.InventoryItem{{Type: "desk", Name: "Lab desk", Quantity: 12, Condition: "good", Notes: "scratched"}},
			Equipment:        []models.InventoryItem{{Type: "projector", Quantity: 1, Condition: "needs repair"}},
			OverallCondition: "fair",
			SpaceUtilization: "high",
			RepairItems:      "projector lamp",
			ReplacementItems: "two stools",
			AdditionalNeeds:  "extension cords",
			SpaceNotes:       "crowded",
			Photos:           inlinePhotos(3),
			Notes:            "end of term",
			PriorityLevel:    "urgent",
		})
		require.NoError(t, err)
		listed, err := f.svc.ListResources(ctx, teacher.ID, 0)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, created.ID, listed[0].ID)

		drop := func(e *models.ResourceEntry) { e.ID, e.CreatedAt = "", time.Time{} }
		assert.Equal(t, storedShape(*created, drop), storedShape(listed[0], drop))
	})

	t.Run("space", func(t *testing.T) {
		length, width := 8.5, 6.0
		created, err := f.svc.SubmitSpace(ctx, staff.ID, submission.SpaceInput{
			BuildingName:      "Main Building",
			FloorNumber:       "2",
			RoomNumber:        "2-14",
			NearLocation:      "Library",
			SpecificLocation:  "End of east corridor",
			SpaceType:         "other",
			OtherSpaceType:    "store room",
			SpaceSize:         "medium",
			EstimatedLength:   &length,
			EstimatedWidth:    &width,
			CurrentUsage:      "completely_unused",
			UsageDescription:  "Locked since 2023",
			LastUsedDate:      "2023-11-30",
			SpaceCondition:    "fair",
			SpaceIssues:       []string{"dust", "leaking roof"},
			ConditionDetails:  "ceiling stains",
			Facilities:        []string{"electricity"},
			FacilitiesNotes:   "one socket",
			PotentialUses:     []string{"reading room"},
			SuggestionDetails: "Convert to reading room",
			Priority:          "high",
			CleaningNeeds:     "deep clean",
			RepairNeeds:       "roof",
			FurnitureNeeds:    "shelves",
			EstimatedBudget:   "50000",
			AdditionalNotes:   "ask the principal",
			ContactPerson:     "Nimal",
			Photos:            inlinePhotos(3),
		})
		require.NoError(t, err)
		listed, err := f.svc.ListSpaces(ctx, staff.ID, 0)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, created.ID, listed[0].ID)

		drop := func(e *models.SpaceEntry) { e.ID, e.CreatedAt = "", time.Time{} }
		assert.Equal(t, storedShape(*created, drop), storedShape(listed[0], drop))
	})
}
