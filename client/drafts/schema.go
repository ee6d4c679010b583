package drafts

import (
	"github.com/greencampus/facility-reports/internal/submission"

	playground "github.com/go-playground/validator/v10"
)

// newSchema declares the shape each draft kind must keep on disk.
// Drafts are partial forms, so only ranges and formats are checked;
// required fields are left to the server.
func newSchema() *playground.Validate {
	v := playground.New()

	v.RegisterStructValidationMapRules(map[string]string{
		"EntryDate":         "omitempty,datetime=2006-01-02",
		"ClassSection":      "max=64",
		"TotalWaste":        "gte=0",
		"SeparationStatus":  "max=32",
		"CleanlinessRating": "gte=0,lte=5",
		"Photos":            "max=5",
		"Notes":             "max=2000",
	}, submission.WasteInput{})

	v.RegisterStructValidationMapRules(map[string]string{
		"Location":   "max=128",
		"WeekEnding": "omitempty,datetime=2006-01-02",
		"Furniture":  "max=100",
		"Equipment":  "max=100",
		"Photos":     "max=8",
	}, submission.ResourceInput{})

	v.RegisterStructValidationMapRules(map[string]string{
		"BuildingName":    "max=128",
		"EstimatedLength": "omitempty,gt=0",
		"EstimatedWidth":  "omitempty,gt=0",
		"LastUsedDate":    "omitempty,datetime=2006-01-02",
		"Photos":          "max=10",
	}, submission.SpaceInput{})

	v.RegisterStructValidationMapRules(map[string]string{
		"Size": "gte=0",
	}, submission.PhotoInput{})

	return v
}
