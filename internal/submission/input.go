// Package submission checks report payloads and turns them into entries.
//
// Checks run in a fixed order and stop at the first failure, so a client
// always sees the same message for the same payload.
package submission

import (
	"time"

	"github.com/greencampus/facility-reports/database/models"
)

// PhotoInput one photo as sent by a form: either a hosted reference or
// an inline data URL / Base64 payload
type PhotoInput struct {
	URL          string     `json:"url,omitempty"`
	PublicID     string     `json:"publicId,omitempty"`
	Data         string     `json:"data,omitempty"`
	MimeType     string     `json:"mimeType,omitempty"`
	OriginalName string     `json:"originalName,omitempty"`
	Size         int64      `json:"size,omitempty"`
	UploadedAt   *time.Time `json:"uploadedAt,omitempty"`
}

func (p PhotoInput) photo() models.Photo {
	return models.Photo{
		URL:          p.URL,
		PublicID:     p.PublicID,
		Data:         p.Data,
		MimeType:     p.MimeType,
		OriginalName: p.OriginalName,
		Size:         p.Size,
		UploadedAt:   p.UploadedAt,
	}
}

// WasteAmount one waste stream of the daily form
type WasteAmount struct {
	Amount float64  `json:"amount"`
	Items  []string `json:"items,omitempty"`
}

// WasteData the three streams weighed on the daily form
type WasteData struct {
	Recyclable    WasteAmount `json:"recyclable"`
	Organic       WasteAmount `json:"organic"`
	NonRecyclable WasteAmount `json:"nonRecyclable"`
}

// WasteInput daily waste form
type WasteInput struct {
	EntryDate         string       `json:"entryDate"`
	Date              string       `json:"date"`
	ClassSection      string       `json:"classSection"`
	WasteData         WasteData    `json:"wasteData"`
	TotalWaste        float64      `json:"totalWaste"`
	SeparationStatus  string       `json:"separationStatus"`
	CleanlinessRating int          `json:"cleanlinessRating"`
	Photos            []PhotoInput `json:"photos"`
	Notes             string       `json:"notes"`
}

// ResourceInput weekly resources form
type ResourceInput struct {
	Location         string                 `json:"location"`
	SpecificArea     string                 `json:"specificArea"`
	WeekEnding       string                 `json:"weekEnding"`
	Furniture        []models.InventoryItem `json:"furniture"`
	Equipment        []models.InventoryItem `json:"equipment"`
	OverallCondition string                 `json:"overallCondition"`
	SpaceUtilization string                 `json:"spaceUtilization"`
	RepairItems      string                 `json:"repairItems"`
	ReplacementItems string                 `json:"replacementItems"`
	AdditionalNeeds  string                 `json:"additionalNeeds"`
	SpaceNotes       string                 `json:"spaceNotes"`
	Photos           []PhotoInput           `json:"photos"`
	Notes            string                 `json:"notes"`
	PriorityLevel    string                 `json:"priorityLevel"`
}

// SpaceInput unused space survey form
type SpaceInput struct {
	BuildingName     string `json:"buildingName"`
	FloorNumber      string `json:"floorNumber"`
	RoomNumber       string `json:"roomNumber"`
	NearLocation     string `json:"nearLocation"`
	SpecificLocation string `json:"specificLocation"`

	SpaceType      string `json:"spaceType"`
	OtherSpaceType string `json:"otherSpaceType"`

	SpaceSize       string   `json:"spaceSize"`
	EstimatedLength *float64 `json:"estimatedLength"`
	EstimatedWidth  *float64 `json:"estimatedWidth"`

	CurrentUsage     string `json:"currentUsage"`
	UsageDescription string `json:"usageDescription"`
	LastUsedDate     string `json:"lastUsedDate"`

	SpaceCondition   string   `json:"spaceCondition"`
	SpaceIssues      []string `json:"spaceIssues"`
	ConditionDetails string   `json:"conditionDetails"`

	Facilities      []string `json:"facilities"`
	FacilitiesNotes string   `json:"facilitiesNotes"`

	PotentialUses     []string `json:"potentialUses"`
	SuggestionDetails string   `json:"suggestionDetails"`
	Priority          string   `json:"priority"`

	CleaningNeeds   string `json:"cleaningNeeds"`
	RepairNeeds     string `json:"repairNeeds"`
	FurnitureNeeds  string `json:"furnitureNeeds"`
	EstimatedBudget string `json:"estimatedBudget"`

	AdditionalNotes string `json:"additionalNotes"`
	ContactPerson   string `json:"contactPerson"`

	Photos []PhotoInput `json:"photos"`
}
