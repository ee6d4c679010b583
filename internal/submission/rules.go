package submission

import (
	"errors"
	"fmt"
	"sync"

	"github.com/greencampus/facility-reports/database/models"
	"github.com/greencampus/facility-reports/internal/apperr"

	playground "github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// check one field rule; message renders the failed tag into the client text
type check struct {
	field   string
	message func(fe playground.FieldError) string
}

func fixed(message string) func(playground.FieldError) string {
	return func(playground.FieldError) string { return message }
}

func photoCount(fe playground.FieldError) string {
	if fe.Tag() == "max" {
		return fmt.Sprintf("Maximum %s photos allowed", fe.Param())
	}
	return fmt.Sprintf("At least %s photos are required", fe.Param())
}

func ratingMessage(fe playground.FieldError) string {
	if fe.Tag() == "required" {
		return "Cleanliness rating is required"
	}
	return "Cleanliness rating must be between 1 and 5"
}

var (
	rules     *playground.Validate
	rulesOnce sync.Once
)

// formRules declares the field rules of every form. Fields are checked
// one at a time, in the order the form validators call them.
func formRules() *playground.Validate {
	rulesOnce.Do(func() {
		v := playground.New()
		_ = v.RegisterValidation("notblank", validators.NotBlank)

		v.RegisterStructValidationMapRules(map[string]string{
			"EntryDate":         "notblank",
			"Photos":            fmt.Sprintf("min=%d,max=%d", MinWastePhotos, MaxWastePhotos),
			"CleanlinessRating": "required,min=1,max=5",
		}, WasteInput{})

		v.RegisterStructValidationMapRules(map[string]string{
			"WeekEnding": "notblank",
			"Location":   "notblank",
			"Photos":     fmt.Sprintf("min=%d,max=%d", MinResourcePhotos, MaxResourcePhotos),
		}, ResourceInput{})

		v.RegisterStructValidationMapRules(map[string]string{
			"Type":     "notblank",
			"Quantity": "gte=1",
		}, models.InventoryItem{})

		spaceRules := map[string]string{
			"Photos": fmt.Sprintf("min=%d,max=%d", MinSpacePhotos, MaxSpacePhotos),
		}
		for _, field := range spaceRequired {
			spaceRules[field] = "notblank"
		}
		v.RegisterStructValidationMapRules(spaceRules, SpaceInput{})

		rules = v
	})
	return rules
}

var (
	dateRequired       = check{"EntryDate", fixed("Date is required")}
	ratingRequired     = check{"CleanlinessRating", ratingMessage}
	weekEndingRequired = check{"WeekEnding", fixed("Week ending date is required")}
	locationRequired   = check{"Location", fixed("Location is required")}
	photoBounds        = check{"Photos", photoCount}
)

var spaceRequired = []string{
	"BuildingName", "FloorNumber", "NearLocation", "SpecificLocation",
	"SpaceType", "SpaceSize", "CurrentUsage", "UsageDescription",
	"SpaceCondition", "SuggestionDetails", "Priority",
}

// run validates a single field of form against its registered rule
func (c check) run(form interface{}) error {
	err := formRules().StructPartial(form, c.field)
	if err == nil {
		return nil
	}
	var fieldErrs playground.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return apperr.Validation(c.message(fieldErrs[0]))
	}
	return err
}

// checkSpaceFields stops at the first blank required survey field
func checkSpaceFields(form SpaceInput) error {
	for _, field := range spaceRequired {
		if err := (check{field, fixed("Please fill in all required fields")}).run(form); err != nil {
			return err
		}
	}
	return nil
}

// checkItems requires a type and a positive quantity on every item
func checkItems(items []models.InventoryItem) error {
	for _, item := range items {
		if err := formRules().Struct(item); err != nil {
			return apperr.Validation("Each item needs a type and a quantity of at least 1")
		}
	}
	return nil
}
