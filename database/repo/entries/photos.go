package entries

import (
	"github.com/greencampus/facility-reports/database/models"
	"gorm.io/datatypes"
)

func datatypesPhotos(photos []models.Photo) datatypes.JSONSlice[models.Photo] {
	return datatypes.NewJSONSlice(photos)
}
