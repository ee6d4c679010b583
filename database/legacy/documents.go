package legacy

import (
	"strings"
	"time"

	"github.com/greencampus/facility-reports/database/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Collection names of the legacy document store
const (
	UsersCollection     = "users"
	WasteCollection     = "dailywastes"
	ResourcesCollection = "weeklyresources"
	SpacesCollection    = "unusedspaces"
)

type userDoc struct {
	ID             bson.ObjectID `bson:"_id"`
	Username       string        `bson:"username"`
	Email          string        `bson:"email"`
	Password       string        `bson:"password"`
	FullName       string        `bson:"fullName"`
	Role           string        `bson:"role"`
	Section        string        `bson:"section,omitempty"`
	Grade          string        `bson:"grade,omitempty"`
	Phone          string        `bson:"phone,omitempty"`
	ProfilePicture string        `bson:"profilePicture,omitempty"`
	CreatedAt      time.Time     `bson:"createdAt"`
	UpdatedAt      time.Time     `bson:"updatedAt"`
}

type photoDoc struct {
	URL          string     `bson:"url,omitempty"`
	PublicID     string     `bson:"publicId,omitempty"`
	Data         string     `bson:"data,omitempty"`
	MimeType     string     `bson:"mimeType,omitempty"`
	OriginalName string     `bson:"originalName,omitempty"`
	Size         int64      `bson:"size,omitempty"`
	UploadedAt   *time.Time `bson:"uploadedAt,omitempty"`
}

type submitterDoc struct {
	SubmittedBy      bson.ObjectID `bson:"submittedBy"`
	SubmittedByName  string        `bson:"submittedByName"`
	SubmittedRole    string        `bson:"submittedRole"`
	SubmittedSection string        `bson:"submittedSection,omitempty"`
}

type wasteDoc struct {
	ID           bson.ObjectID `bson:"_id"`
	submitterDoc `bson:",inline"`

	SubmittedGrade        string     `bson:"submittedGrade,omitempty"`
	Date                  time.Time  `bson:"date"`
	PaperWaste            float64    `bson:"paperWaste"`
	PlasticWaste          float64    `bson:"plasticWaste"`
	FoodWaste             float64    `bson:"foodWaste"`
	GeneralWaste          float64    `bson:"generalWaste"`
	WasProperlySegregated bool       `bson:"wasProperlySegregated"`
	ClassroomCleanliness  string     `bson:"classroomCleanliness"`
	AdditionalNotes       string     `bson:"additionalNotes,omitempty"`
	Photos                []photoDoc `bson:"photos"`
	CreatedAt             time.Time  `bson:"createdAt"`
}

type itemDoc struct {
	Type      string `bson:"type"`
	Name      string `bson:"name,omitempty"`
	Quantity  int    `bson:"quantity"`
	Condition string `bson:"condition"`
	Notes     string `bson:"notes,omitempty"`
}

type resourceDoc struct {
	ID           bson.ObjectID `bson:"_id"`
	submitterDoc `bson:",inline"`

	Location         string     `bson:"location"`
	SpecificArea     string     `bson:"specificArea,omitempty"`
	WeekEnding       time.Time  `bson:"weekEnding"`
	Furniture        []itemDoc  `bson:"furniture"`
	Equipment        []itemDoc  `bson:"equipment"`
	OverallCondition string     `bson:"overallCondition,omitempty"`
	SpaceUtilization string     `bson:"spaceUtilization,omitempty"`
	RepairItems      string     `bson:"repairItems,omitempty"`
	ReplacementItems string     `bson:"replacementItems,omitempty"`
	AdditionalNeeds  string     `bson:"additionalNeeds,omitempty"`
	SpaceNotes       string     `bson:"spaceNotes,omitempty"`
	Photos           []photoDoc `bson:"photos"`
	Notes            string     `bson:"notes,omitempty"`
	PriorityLevel    string     `bson:"priorityLevel,omitempty"`
	CreatedAt        time.Time  `bson:"createdAt"`
}

type spaceDoc struct {
	ID           bson.ObjectID `bson:"_id"`
	submitterDoc `bson:",inline"`

	BuildingName      string     `bson:"buildingName"`
	FloorNumber       string     `bson:"floorNumber"`
	RoomNumber        string     `bson:"roomNumber,omitempty"`
	NearLocation      string     `bson:"nearLocation"`
	SpecificLocation  string     `bson:"specificLocation"`
	SpaceType         string     `bson:"spaceType"`
	OtherSpaceType    string     `bson:"otherSpaceType,omitempty"`
	SpaceSize         string     `bson:"spaceSize"`
	EstimatedLength   *float64   `bson:"estimatedLength,omitempty"`
	EstimatedWidth    *float64   `bson:"estimatedWidth,omitempty"`
	CurrentUsage      string     `bson:"currentUsage"`
	UsageDescription  string     `bson:"usageDescription"`
	LastUsedDate      *time.Time `bson:"lastUsedDate,omitempty"`
	SpaceCondition    string     `bson:"spaceCondition"`
	SpaceIssues       []string   `bson:"spaceIssues"`
	ConditionDetails  string     `bson:"conditionDetails,omitempty"`
	Facilities        []string   `bson:"facilities"`
	FacilitiesNotes   string     `bson:"facilitiesNotes,omitempty"`
	PotentialUses     []string   `bson:"potentialUses"`
	SuggestionDetails string     `bson:"suggestionDetails"`
	Priority          string     `bson:"priority"`
	CleaningNeeds     string     `bson:"cleaningNeeds,omitempty"`
	RepairNeeds       string     `bson:"repairNeeds,omitempty"`
	FurnitureNeeds    string     `bson:"furnitureNeeds,omitempty"`
	EstimatedBudget   string     `bson:"estimatedBudget,omitempty"`
	AdditionalNotes   string     `bson:"additionalNotes,omitempty"`
	ContactPerson     string     `bson:"contactPerson,omitempty"`
	Photos            []photoDoc `bson:"photos"`
	CreatedAt         time.Time  `bson:"createdAt"`
}

// createdAt falls back to the ObjectID timestamp for documents saved
// before the field had a default
func createdAt(id bson.ObjectID, stored time.Time) time.Time {
	if !stored.IsZero() {
		return stored.UTC()
	}
	return id.Timestamp().UTC()
}

func (d *userDoc) model() *models.User {
	created := createdAt(d.ID, d.CreatedAt)
	updated := d.UpdatedAt.UTC()
	if d.UpdatedAt.IsZero() {
		updated = created
	}
	return &models.User{
		ID:             d.ID.Hex(),
		Username:       strings.TrimSpace(d.Username),
		Email:          strings.ToLower(strings.TrimSpace(d.Email)),
		Password:       d.Password,
		FullName:       d.FullName,
		Role:           models.Role(d.Role),
		Section:        d.Section,
		Grade:          d.Grade,
		Phone:          d.Phone,
		ProfilePicture: d.ProfilePicture,
		CreatedAt:      created,
		UpdatedAt:      updated,
	}
}

func (d submitterDoc) model() models.Submitter {
	return models.Submitter{
		SubmittedBy:      d.SubmittedBy.Hex(),
		SubmittedByName:  d.SubmittedByName,
		SubmittedRole:    models.Role(d.SubmittedRole),
		SubmittedSection: d.SubmittedSection,
	}
}

func photoModels(docs []photoDoc) []models.Photo {
	photos := make([]models.Photo, 0, len(docs))
	for _, d := range docs {
		photos = append(photos, models.Photo(d))
	}
	return photos
}

func itemModels(docs []itemDoc) []models.InventoryItem {
	items := make([]models.InventoryItem, 0, len(docs))
	for _, d := range docs {
		items = append(items, models.InventoryItem(d))
	}
	return items
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func (d *wasteDoc) model() *models.WasteEntry {
	return &models.WasteEntry{
		ID:                    d.ID.Hex(),
		Submitter:             d.submitterDoc.model(),
		SubmittedGrade:        d.SubmittedGrade,
		Date:                  d.Date.UTC(),
		PaperWaste:            d.PaperWaste,
		PlasticWaste:          d.PlasticWaste,
		FoodWaste:             d.FoodWaste,
		GeneralWaste:          d.GeneralWaste,
		WasProperlySegregated: d.WasProperlySegregated,
		ClassroomCleanliness:  models.Cleanliness(d.ClassroomCleanliness),
		AdditionalNotes:       d.AdditionalNotes,
		Photos:                photoModels(d.Photos),
		CreatedAt:             createdAt(d.ID, d.CreatedAt),
	}
}

func (d *resourceDoc) model() *models.ResourceEntry {
	return &models.ResourceEntry{
		ID:               d.ID.Hex(),
		Submitter:        d.submitterDoc.model(),
		Location:         d.Location,
		SpecificArea:     d.SpecificArea,
		WeekEnding:       d.WeekEnding.UTC(),
		Furniture:        itemModels(d.Furniture),
		Equipment:        itemModels(d.Equipment),
		OverallCondition: d.OverallCondition,
		SpaceUtilization: d.SpaceUtilization,
		RepairItems:      d.RepairItems,
		ReplacementItems: d.ReplacementItems,
		AdditionalNeeds:  d.AdditionalNeeds,
		SpaceNotes:       d.SpaceNotes,
		Photos:           photoModels(d.Photos),
		Notes:            d.Notes,
		PriorityLevel:    d.PriorityLevel,
		CreatedAt:        createdAt(d.ID, d.CreatedAt),
	}
}

func (d *spaceDoc) model() *models.SpaceEntry {
	return &models.SpaceEntry{
		ID:                d.ID.Hex(),
		Submitter:         d.submitterDoc.model(),
		BuildingName:      d.BuildingName,
		FloorNumber:       d.FloorNumber,
		RoomNumber:        d.RoomNumber,
		NearLocation:      d.NearLocation,
		SpecificLocation:  d.SpecificLocation,
		SpaceType:         d.SpaceType,
		OtherSpaceType:    d.OtherSpaceType,
		SpaceSize:         d.SpaceSize,
		EstimatedLength:   d.EstimatedLength,
		EstimatedWidth:    d.EstimatedWidth,
		CurrentUsage:      d.CurrentUsage,
		UsageDescription:  d.UsageDescription,
		LastUsedDate:      d.LastUsedDate,
		SpaceCondition:    d.SpaceCondition,
		SpaceIssues:       orEmpty(d.SpaceIssues),
		ConditionDetails:  d.ConditionDetails,
		Facilities:        orEmpty(d.Facilities),
		FacilitiesNotes:   d.FacilitiesNotes,
		PotentialUses:     orEmpty(d.PotentialUses),
		SuggestionDetails: d.SuggestionDetails,
		Priority:          d.Priority,
		CleaningNeeds:     d.CleaningNeeds,
		RepairNeeds:       d.RepairNeeds,
		FurnitureNeeds:    d.FurnitureNeeds,
		EstimatedBudget:   d.EstimatedBudget,
		AdditionalNotes:   d.AdditionalNotes,
		ContactPerson:     d.ContactPerson,
		Photos:            photoModels(d.Photos),
		CreatedAt:         createdAt(d.ID, d.CreatedAt),
	}
}
