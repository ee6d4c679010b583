package submission

import (
	"fmt"
	"strings"
	"time"

	"github.com/greencampus/facility-reports/database/models"
	"github.com/greencampus/facility-reports/internal/apperr"
	"gorm.io/datatypes"
)

// Photo count bounds per report type
const (
	MinWastePhotos    = 2
	MaxWastePhotos    = 5
	MinResourcePhotos = 2
	MaxResourcePhotos = 8
	MinSpacePhotos    = 3
	MaxSpacePhotos    = 10
)

// DefaultPriorityLevel applied to resource reports sent without one
const DefaultPriorityLevel = "routine"

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04",
}

func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Cleanliness maps a 1-5 star rating onto the stored grade
func Cleanliness(rating int) (models.Cleanliness, bool) {
	switch rating {
	case 5:
		return models.CleanlinessExcellent, true
	case 4, 3:
		return models.CleanlinessGood, true
	case 2:
		return models.CleanlinessFair, true
	case 1:
		return models.CleanlinessPoor, true
	default:
		return "", false
	}
}

// checkPhotoData requires every photo to carry an image
func checkPhotoData(photos []PhotoInput) error {
	for i, p := range photos {
		if strings.TrimSpace(p.Data) == "" && strings.TrimSpace(p.URL) == "" {
			return apperr.Validation(fmt.Sprintf("Photo %d has no image data", i+1))
		}
	}
	return nil
}

func toPhotos(in []PhotoInput) datatypes.JSONSlice[models.Photo] {
	out := make([]models.Photo, len(in))
	for i, p := range in {
		out[i] = p.photo()
	}
	return datatypes.NewJSONSlice(out)
}

func stringList(in []string) datatypes.JSONSlice[string] {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return datatypes.NewJSONSlice(out)
}

// Waste validates a daily waste form. The submitter fields are left for
// the caller to fill from the stored user record.
func Waste(in WasteInput) (*models.WasteEntry, error) {
	if strings.TrimSpace(in.EntryDate) == "" {
		in.EntryDate = in.Date
	}
	if err := dateRequired.run(in); err != nil {
		return nil, err
	}
	date, ok := parseDate(in.EntryDate)
	if !ok {
		return nil, apperr.Validation("Date is invalid")
	}

	if err := photoBounds.run(in); err != nil {
		return nil, err
	}
	if err := checkPhotoData(in.Photos); err != nil {
		return nil, err
	}

	if err := ratingRequired.run(in); err != nil {
		return nil, err
	}
	cleanliness, _ := Cleanliness(in.CleanlinessRating)

	return &models.WasteEntry{
		Date:                  date,
		PaperWaste:            in.WasteData.Recyclable.Amount,
		PlasticWaste:          in.WasteData.Organic.Amount,
		FoodWaste:             in.WasteData.NonRecyclable.Amount,
		GeneralWaste:          in.TotalWaste,
		WasProperlySegregated: in.SeparationStatus == "properly_separated",
		ClassroomCleanliness:  cleanliness,
		AdditionalNotes:       strings.TrimSpace(in.Notes),
		Photos:                toPhotos(in.Photos),
	}, nil
}

// Resource validates a weekly resources form
func Resource(in ResourceInput) (*models.ResourceEntry, error) {
	if err := weekEndingRequired.run(in); err != nil {
		return nil, err
	}
	weekEnding, ok := parseDate(in.WeekEnding)
	if !ok {
		return nil, apperr.Validation("Week ending date is invalid")
	}

	if err := locationRequired.run(in); err != nil {
		return nil, err
	}

	if err := photoBounds.run(in); err != nil {
		return nil, err
	}
	if err := checkPhotoData(in.Photos); err != nil {
		return nil, err
	}

	if len(in.Furniture) == 0 && len(in.Equipment) == 0 {
		return nil, apperr.Validation("At least one furniture or equipment item is required")
	}
	if err := checkItems(append(append([]models.InventoryItem{}, in.Furniture...), in.Equipment...)); err != nil {
		return nil, err
	}

	priority := strings.TrimSpace(in.PriorityLevel)
	if priority == "" {
		priority = DefaultPriorityLevel
	}

	return &models.ResourceEntry{
		Location:         strings.TrimSpace(in.Location),
		SpecificArea:     strings.TrimSpace(in.SpecificArea),
		WeekEnding:       weekEnding,
		Furniture:        datatypes.NewJSONSlice(nonNilItems(in.Furniture)),
		Equipment:        datatypes.NewJSONSlice(nonNilItems(in.Equipment)),
		OverallCondition: in.OverallCondition,
		SpaceUtilization: in.SpaceUtilization,
		RepairItems:      in.RepairItems,
		ReplacementItems: in.ReplacementItems,
		AdditionalNeeds:  in.AdditionalNeeds,
		SpaceNotes:       in.SpaceNotes,
		Photos:           toPhotos(in.Photos),
		Notes:            in.Notes,
		PriorityLevel:    priority,
	}, nil
}

func nonNilItems(items []models.InventoryItem) []models.InventoryItem {
	if items == nil {
		return []models.InventoryItem{}
	}
	return items
}

// Space validates an unused space survey
func Space(in SpaceInput) (*models.SpaceEntry, error) {
	if err := checkSpaceFields(in); err != nil {
		return nil, err
	}
	if err := photoBounds.run(in); err != nil {
		return nil, err
	}
	if err := checkPhotoData(in.Photos); err != nil {
		return nil, err
	}

	var lastUsed *time.Time
	if strings.TrimSpace(in.LastUsedDate) != "" {
		t, ok := parseDate(in.LastUsedDate)
		if !ok {
			return nil, apperr.Validation("Last used date is invalid")
		}
		lastUsed = &t
	}

	return &models.SpaceEntry{
		BuildingName:      strings.TrimSpace(in.BuildingName),
		FloorNumber:       strings.TrimSpace(in.FloorNumber),
		RoomNumber:        strings.TrimSpace(in.RoomNumber),
		NearLocation:      strings.TrimSpace(in.NearLocation),
		SpecificLocation:  strings.TrimSpace(in.SpecificLocation),
		SpaceType:         in.SpaceType,
		OtherSpaceType:    in.OtherSpaceType,
		SpaceSize:         in.SpaceSize,
		EstimatedLength:   positive(in.EstimatedLength),
		EstimatedWidth:    positive(in.EstimatedWidth),
		CurrentUsage:      in.CurrentUsage,
		UsageDescription:  in.UsageDescription,
		LastUsedDate:      lastUsed,
		SpaceCondition:    in.SpaceCondition,
		SpaceIssues:       stringList(in.SpaceIssues),
		ConditionDetails:  in.ConditionDetails,
		Facilities:        stringList(in.Facilities),
		FacilitiesNotes:   in.FacilitiesNotes,
		PotentialUses:     stringList(in.PotentialUses),
		SuggestionDetails: in.SuggestionDetails,
		Priority:          in.Priority,
		CleaningNeeds:     in.CleaningNeeds,
		RepairNeeds:       in.RepairNeeds,
		FurnitureNeeds:    in.FurnitureNeeds,
		EstimatedBudget:   in.EstimatedBudget,
		AdditionalNotes:   in.AdditionalNotes,
		ContactPerson:     in.ContactPerson,
		Photos:            toPhotos(in.Photos),
	}, nil
}

// positive drops zero or negative estimates
func positive(v *float64) *float64 {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}
