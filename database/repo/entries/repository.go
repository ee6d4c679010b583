package entries

import (
	"context"
	"errors"
	"fmt"

	"github.com/greencampus/facility-reports/database/models"
	"gorm.io/gorm"
)

// MaxListLimit caps every list query
const MaxListLimit = 100

// ErrEntryNotFound 记录不存在
var ErrEntryNotFound = errors.New("entry not found")

// Entry is any of the three report types
type Entry interface {
	models.WasteEntry | models.ResourceEntry | models.SpaceEntry
}

// Filter restricts a list query. An empty SubmittedBy lists every entry.
type Filter struct {
	SubmittedBy string
	Limit       int
}

// Repository persists one report type
type Repository[T Entry] struct {
	db    *gorm.DB
	order string
}

// NewWasteRepository newest report date first, ties by creation time
func NewWasteRepository(db *gorm.DB) *Repository[models.WasteEntry] {
	return &Repository[models.WasteEntry]{db: db, order: "date DESC, created_at DESC"}
}

// NewResourceRepository newest week first, ties by creation time
func NewResourceRepository(db *gorm.DB) *Repository[models.ResourceEntry] {
	return &Repository[models.ResourceEntry]{db: db, order: "week_ending DESC, created_at DESC"}
}

// NewSpaceRepository newest submission first
func NewSpaceRepository(db *gorm.DB) *Repository[models.SpaceEntry] {
	return &Repository[models.SpaceEntry]{db: db, order: "created_at DESC"}
}

// Create inserts entry; id and creation time are assigned by the store
func (r *Repository[T]) Create(ctx context.Context, entry *T) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create entry: %w", err)
	}
	return nil
}

// List applies the filter inside the query, then orders and caps the result
func (r *Repository[T]) List(ctx context.Context, filter Filter) ([]T, error) {
	limit := filter.Limit
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}

	query := r.db.WithContext(ctx).Model(new(T))
	if filter.SubmittedBy != "" {
		query = query.Where("submitted_by = ?", filter.SubmittedBy)
	}

	result := make([]T, 0)
	if err := query.Order(r.order).Limit(limit).Find(&result).Error; err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return result, nil
}

// GetByID 通过ID获取记录
func (r *Repository[T]) GetByID(ctx context.Context, id string) (*T, error) {
	entry := new(T)
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return entry, nil
}

// ReplacePhotos rewrites only the photo column; entries are otherwise immutable
func (r *Repository[T]) ReplacePhotos(ctx context.Context, id string, photos []models.Photo) error {
	result := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).
		Update("photos", datatypesPhotos(photos))
	if result.Error != nil {
		return fmt.Errorf("failed to replace photos: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// EachWithInlinePhotos visits, in batches, entries whose photos still
// carry an inline payload
func (r *Repository[T]) EachWithInlinePhotos(ctx context.Context, batchSize int, fn func(entry *T) error) error {
	var batch []T
	result := r.db.WithContext(ctx).Model(new(T)).
		Where("CAST(photos AS TEXT) LIKE ? OR CAST(photos AS TEXT) LIKE ?", `%"data":"%`, `%"data": "%`).
		FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
			for i := range batch {
				if err := fn(&batch[i]); err != nil {
					return err
				}
			}
			return nil
		})
	return result.Error
}
