package dashboard

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/greencampus/facility-reports/cache"
	"github.com/greencampus/facility-reports/database/models"
	"github.com/greencampus/facility-reports/database/repo/dashboard"
	"github.com/greencampus/facility-reports/internal/apperr"
	"github.com/greencampus/facility-reports/internal/policy"
	"golang.org/x/sync/errgroup"
)

// RecentLimit entries of each type shown on the dashboard
const RecentLimit = 5

// TrendDays length of the submission trend
const TrendDays = 14

// StatsRepository 统计仓库接口
type StatsRepository interface {
	GetTotals(ctx context.Context) (*dashboard.Totals, error)
	GetRecent(ctx context.Context, n int) (*dashboard.RecentEntries, error)
	GetDailySubmissions(ctx context.Context, since time.Time) ([]dashboard.DailyStat, error)
}

// Service Dashboard 统计服务
type Service struct {
	repo     StatsRepository
	cache    cache.Provider
	cacheTTL time.Duration
	now      func() time.Time
}

// NewService 创建新的 Dashboard 统计服务
func NewService(repo StatsRepository, cacheProvider cache.Provider, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &Service{
		repo:     repo,
		cache:    cacheProvider,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// StatsResponse Dashboard 统计响应
type StatsResponse struct {
	Stats         Stats         `json:"stats"`
	RecentEntries RecentEntries `json:"recentEntries"`
	Trend         TrendStats    `json:"trend"`
}

// Stats 全局计数
type Stats struct {
	TotalUsers           int64 `json:"totalUsers"`
	TotalWasteEntries    int64 `json:"totalWasteEntries"`
	TotalResourceEntries int64 `json:"totalResourceEntries"`
	TotalSpaceEntries    int64 `json:"totalSpaceEntries"`
}

// RecentEntries 最近提交
type RecentEntries struct {
	Waste     []models.WasteEntry    `json:"waste"`
	Resources []models.ResourceEntry `json:"resources"`
	Spaces    []models.SpaceEntry    `json:"spaces"`
}

// TrendStats 趋势统计
type TrendStats struct {
	Period string   `json:"period"`
	Dates  []string `json:"dates"`
	Data   []int64  `json:"data"`
}

// GetStats 获取 Dashboard 统计数据; management roles only
func (s *Service) GetStats(ctx context.Context, role models.Role) (*StatsResponse, error) {
	if !policy.Allowed(role, policy.ReadDashboard) {
		return nil, apperr.Authorization(policy.DenyMessage(role, policy.ReadDashboard))
	}

	// 尝试从缓存获取
	var cached StatsResponse
	if err := s.cache.Get(ctx, cache.DashboardStatsKey, &cached); err == nil {
		return &cached, nil
	}

	var (
		totals *dashboard.Totals
		recent *dashboard.RecentEntries
		daily  []dashboard.DailyStat
	)
	since := s.now().UTC().AddDate(0, 0, -(TrendDays - 1)).Truncate(24 * time.Hour)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totals, err = s.repo.GetTotals(gctx)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.repo.GetRecent(gctx, RecentLimit)
		return err
	})
	g.Go(func() (err error) {
		daily, err = s.repo.GetDailySubmissions(gctx, since)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Printf("[Dashboard] Failed to load stats: %v", err)
		return nil, apperr.Persistence(err)
	}

	response := &StatsResponse{
		Stats: Stats{
			TotalUsers:           totals.TotalUsers,
			TotalWasteEntries:    totals.TotalWasteEntries,
			TotalResourceEntries: totals.TotalResourceEntries,
			TotalSpaceEntries:    totals.TotalSpaceEntries,
		},
		RecentEntries: RecentEntries{
			Waste:     recent.Waste,
			Resources: recent.Resources,
			Spaces:    recent.Spaces,
		},
		Trend: s.buildTrendData(daily, TrendDays),
	}

	if err := s.cache.Set(ctx, cache.DashboardStatsKey, response, s.cacheTTL); err != nil {
		log.Printf("[Dashboard] Failed to cache stats: %v", err)
	}
	return response, nil
}

// RefreshCache 刷新统计数据缓存
func (s *Service) RefreshCache(ctx context.Context) error {
	return s.cache.Delete(ctx, cache.DashboardStatsKey)
}

// buildTrendData 构建趋势数据，没有数据的天数补0
func (s *Service) buildTrendData(stats []dashboard.DailyStat, days int) TrendStats {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	today := now().UTC()

	statMap := make(map[string]int64, len(stats))
	for _, stat := range stats {
		statMap[stat.Date] += stat.Count
	}

	dates := make([]string, days)
	data := make([]int64, days)
	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, -(days - 1 - i)).Format("2006-01-02")
		dates[i] = date
		data[i] = statMap[date]
	}

	return TrendStats{
		Period: fmt.Sprintf("%dd", days),
		Dates:  dates,
		Data:   data,
	}
}
