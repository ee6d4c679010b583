package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/greencampus/facility-reports/database/models"
	"gorm.io/gorm"
)

// Repository Dashboard 统计仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的 Dashboard 统计仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Totals 全局计数
type Totals struct {
	TotalUsers           int64
	TotalWasteEntries    int64
	TotalResourceEntries int64
	TotalSpaceEntries    int64
}

// GetTotals counts every table in a single round trip
func (r *Repository) GetTotals(ctx context.Context) (*Totals, error) {
	var totals Totals
	query := fmt.Sprintf(
		"SELECT (SELECT COUNT(*) FROM %s) AS total_users, "+
			"(SELECT COUNT(*) FROM %s) AS total_waste_entries, "+
			"(SELECT COUNT(*) FROM %s) AS total_resource_entries, "+
			"(SELECT COUNT(*) FROM %s) AS total_space_entries",
		models.User{}.TableName(),
		models.WasteEntry{}.TableName(),
		models.ResourceEntry{}.TableName(),
		models.SpaceEntry{}.TableName(),
	)
	if err := r.db.WithContext(ctx).Raw(query).Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("failed to count totals: %w", err)
	}
	return &totals, nil
}

// RecentEntries newest entries of each type, unscoped
type RecentEntries struct {
	Waste     []models.WasteEntry
	Resources []models.ResourceEntry
	Spaces    []models.SpaceEntry
}

// GetRecent returns the n newest entries of each type by creation time
func (r *Repository) GetRecent(ctx context.Context, n int) (*RecentEntries, error) {
	recent := &RecentEntries{
		Waste:     []models.WasteEntry{},
		Resources: []models.ResourceEntry{},
		Spaces:    []models.SpaceEntry{},
	}
	db := r.db.WithContext(ctx)

	if err := db.Order("created_at DESC").Limit(n).Find(&recent.Waste).Error; err != nil {
		return nil, fmt.Errorf("failed to load recent waste entries: %w", err)
	}
	if err := db.Order("created_at DESC").Limit(n).Find(&recent.Resources).Error; err != nil {
		return nil, fmt.Errorf("failed to load recent resource entries: %w", err)
	}
	if err := db.Order("created_at DESC").Limit(n).Find(&recent.Spaces).Error; err != nil {
		return nil, fmt.Errorf("failed to load recent space entries: %w", err)
	}
	return recent, nil
}

// DailyStat 每日提交数
type DailyStat struct {
	Date  string
	Count int64
}

// GetDailySubmissions 获取 since 之后每日提交数（三类报告合计）
// Bucketing happens in Go so the query stays portable across SQLite and PostgreSQL.
func (r *Repository) GetDailySubmissions(ctx context.Context, since time.Time) ([]DailyStat, error) {
	counts := make(map[string]int64)
	for _, model := range []interface{}{&models.WasteEntry{}, &models.ResourceEntry{}, &models.SpaceEntry{}} {
		var created []time.Time
		err := r.db.WithContext(ctx).Model(model).
			Where("created_at >= ?", since).
			Pluck("created_at", &created).Error
		if err != nil {
			return nil, fmt.Errorf("failed to load submission times: %w", err)
		}
		for _, t := range created {
			counts[t.UTC().Format("2006-01-02")]++
		}
	}

	stats := make([]DailyStat, 0, len(counts))
	for date, count := range counts {
		stats = append(stats, DailyStat{Date: date, Count: count})
	}
	return stats, nil
}
