package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Cleanliness classroom cleanliness grade derived from a 1-5 star rating
type Cleanliness string

const (
	CleanlinessExcellent Cleanliness = "Excellent"
	CleanlinessGood      Cleanliness = "Good"
	CleanlinessFair      Cleanliness = "Fair"
	CleanlinessPoor      Cleanliness = "Poor"
)

// Submitter denormalised snapshot of the submitting user, captured at
// submission time from the stored user record.
type Submitter struct {
	SubmittedBy      string `gorm:"size:36;not null;index" json:"submittedBy"`
	SubmittedByName  string `gorm:"size:128;not null" json:"submittedByName"`
	SubmittedRole    Role   `gorm:"size:32;not null" json:"submittedRole"`
	SubmittedSection string `gorm:"size:64" json:"submittedSection,omitempty"`
}

// WasteEntry daily waste log
type WasteEntry struct {
	ID string `gorm:"primaryKey;size:36" json:"_id"`
	Submitter
	SubmittedGrade string    `gorm:"size:32" json:"submittedGrade,omitempty"`
	Date           time.Time `gorm:"not null;index" json:"date"`

	PaperWaste   float64 `json:"paperWaste"`
	PlasticWaste float64 `json:"plasticWaste"`
	FoodWaste    float64 `json:"foodWaste"`
	GeneralWaste float64 `json:"generalWaste"`

	WasProperlySegregated bool        `json:"wasProperlySegregated"`
	ClassroomCleanliness  Cleanliness `gorm:"size:16;not null" json:"classroomCleanliness"`
	AdditionalNotes       string      `json:"additionalNotes,omitempty"`

	Photos    datatypes.JSONSlice[Photo] `json:"photos"`
	CreatedAt time.Time                  `gorm:"index" json:"createdAt"`
}

func (WasteEntry) TableName() string {
	return "daily_waste_entries"
}

// InventoryItem one furniture or equipment line of a weekly report
type InventoryItem struct {
	Type      string `json:"type"`
	Name      string `json:"name,omitempty"`
	Quantity  int    `json:"quantity"`
	Condition string `json:"condition"`
	Notes     string `json:"notes,omitempty"`
}

// ResourceEntry weekly resource inventory report
type ResourceEntry struct {
	ID string `gorm:"primaryKey;size:36" json:"_id"`
	Submitter

	Location     string    `gorm:"size:128;not null;index" json:"location"`
	SpecificArea string    `json:"specificArea,omitempty"`
	WeekEnding   time.Time `gorm:"not null;index" json:"weekEnding"`

	Furniture datatypes.JSONSlice[InventoryItem] `json:"furniture"`
	Equipment datatypes.JSONSlice[InventoryItem] `json:"equipment"`

	OverallCondition string `json:"overallCondition,omitempty"`
	SpaceUtilization string `json:"spaceUtilization,omitempty"`
	RepairItems      string `json:"repairItems,omitempty"`
	ReplacementItems string `json:"replacementItems,omitempty"`
	AdditionalNeeds  string `json:"additionalNeeds,omitempty"`
	SpaceNotes       string `json:"spaceNotes,omitempty"`

	Photos        datatypes.JSONSlice[Photo] `json:"photos"`
	Notes         string                     `json:"notes,omitempty"`
	PriorityLevel string                     `gorm:"size:32" json:"priorityLevel,omitempty"`
	CreatedAt     time.Time                  `gorm:"index" json:"createdAt"`
}

func (ResourceEntry) TableName() string {
	return "weekly_resource_entries"
}

// SpaceEntry unused-space survey
type SpaceEntry struct {
	ID string `gorm:"primaryKey;size:36" json:"_id"`
	Submitter

	BuildingName     string `gorm:"size:128;not null" json:"buildingName"`
	FloorNumber      string `gorm:"size:32;not null" json:"floorNumber"`
	RoomNumber       string `json:"roomNumber,omitempty"`
	NearLocation     string `gorm:"not null" json:"nearLocation"`
	SpecificLocation string `gorm:"not null" json:"specificLocation"`

	SpaceType      string `gorm:"size:64;not null" json:"spaceType"`
	OtherSpaceType string `json:"otherSpaceType,omitempty"`

	SpaceSize       string   `gorm:"size:64;not null" json:"spaceSize"`
	EstimatedLength *float64 `json:"estimatedLength,omitempty"`
	EstimatedWidth  *float64 `json:"estimatedWidth,omitempty"`

	CurrentUsage     string     `gorm:"not null" json:"currentUsage"`
	UsageDescription string     `gorm:"not null" json:"usageDescription"`
	LastUsedDate     *time.Time `json:"lastUsedDate,omitempty"`

	SpaceCondition   string                      `gorm:"not null" json:"spaceCondition"`
	SpaceIssues      datatypes.JSONSlice[string] `json:"spaceIssues"`
	ConditionDetails string                      `json:"conditionDetails,omitempty"`

	Facilities      datatypes.JSONSlice[string] `json:"facilities"`
	FacilitiesNotes string                      `json:"facilitiesNotes,omitempty"`

	PotentialUses     datatypes.JSONSlice[string] `json:"potentialUses"`
	SuggestionDetails string                      `gorm:"not null" json:"suggestionDetails"`
	Priority          string                      `gorm:"size:32;not null" json:"priority"`

	CleaningNeeds   string `json:"cleaningNeeds,omitempty"`
	RepairNeeds     string `json:"repairNeeds,omitempty"`
	FurnitureNeeds  string `json:"furnitureNeeds,omitempty"`
	EstimatedBudget string `json:"estimatedBudget,omitempty"`

	AdditionalNotes string `json:"additionalNotes,omitempty"`
	ContactPerson   string `json:"contactPerson,omitempty"`

	Photos    datatypes.JSONSlice[Photo] `json:"photos"`
	CreatedAt time.Time                  `gorm:"index" json:"createdAt"`
}

func (SpaceEntry) TableName() string {
	return "unused_space_entries"
}

func (e *WasteEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

func (e *ResourceEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

func (e *SpaceEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

func (e *WasteEntry) GetPhotos() []Photo { return e.Photos }

func (e *WasteEntry) SetPhotos(p []Photo) { e.Photos = p }

func (e *ResourceEntry) GetPhotos() []Photo { return e.Photos }

func (e *ResourceEntry) SetPhotos(p []Photo) { e.Photos = p }

func (e *SpaceEntry) GetPhotos() []Photo { return e.Photos }

func (e *SpaceEntry) SetPhotos(p []Photo) { e.Photos = p }

// All returns every persisted model, in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&WasteEntry{},
		&ResourceEntry{},
		&SpaceEntry{},
	}
}

func (e *WasteEntry) GetID() string { return e.ID }

func (e *ResourceEntry) GetID() string { return e.ID }

func (e *SpaceEntry) GetID() string { return e.ID }
