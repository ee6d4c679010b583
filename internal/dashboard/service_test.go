package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/greencampus/facility-reports/cache"
	"github.com/greencampus/facility-reports/database/models"
	dashboardRepo "github.com/greencampus/facility-reports/database/repo/dashboard"
	"github.com/greencampus/facility-reports/internal/apperr"
)

// mockCache 模拟缓存
type mockCache struct {
	data map[string]interface{}
}

func newMockCache() *mockCache {
	return &mockCache{
		data: make(map[string]interface{}),
	}
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *mockCache) Get(ctx context.Context, key string, dest interface{}) error {
	if val, ok := m.data[key]; ok {
		if stats, ok := val.(*StatsResponse); ok {
			*dest.(*StatsResponse) = *stats
			return nil
		}
	}
	return cache.ErrCacheMiss
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *mockCache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

func (m *mockCache) Close() error {
	return nil
}

func (m *mockCache) Name() string {
	return "mock"
}

// mockRepository 模拟仓库
type mockRepository struct {
	totals *dashboardRepo.Totals
	recent *dashboardRepo.RecentEntries
	daily  []dashboardRepo.DailyStat
	err    error
	calls  int
}

func (m *mockRepository) GetTotals(ctx context.Context) (*dashboardRepo.Totals, error) {
	m.calls++
	return m.totals, m.err
}

func (m *mockRepository) GetRecent(ctx context.Context, n int) (*dashboardRepo.RecentEntries, error) {
	return m.recent, nil
}

func (m *mockRepository) GetDailySubmissions(ctx context.Context, since time.Time) ([]dashboardRepo.DailyStat, error) {
	return m.daily, nil
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		totals: &dashboardRepo.Totals{
			TotalUsers:           12,
			TotalWasteEntries:    40,
			TotalResourceEntries: 8,
			TotalSpaceEntries:    3,
		},
		recent: &dashboardRepo.RecentEntries{
			Waste:     []models.WasteEntry{{ID: "w1"}, {ID: "w2"}},
			Resources: []models.ResourceEntry{{ID: "r1"}},
			Spaces:    []models.SpaceEntry{},
		},
	}
}

func TestService_GetStats(t *testing.T) {
	mockRepo := newMockRepository()
	mockCache := newMockCache()
	svc := NewService(mockRepo, mockCache, time.Minute)

	ctx := context.Background()
	stats, err := svc.GetStats(ctx, models.RolePrincipal)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}

	if stats.Stats.TotalUsers != 12 {
		t.Errorf("Expected 12 users, got %d", stats.Stats.TotalUsers)
	}
	if stats.Stats.TotalWasteEntries != 40 {
		t.Errorf("Expected 40 waste entries, got %d", stats.Stats.TotalWasteEntries)
	}
	if len(stats.RecentEntries.Waste) != 2 {
		t.Errorf("Expected 2 recent waste entries, got %d", len(stats.RecentEntries.Waste))
	}
	if len(stats.Trend.Dates) != TrendDays {
		t.Errorf("Expected %d trend days, got %d", TrendDays, len(stats.Trend.Dates))
	}

	// 验证缓存
	cachedStats, err := svc.GetStats(ctx, models.RoleDeputyPrincipal)
	if err != nil {
		t.Fatalf("GetStats from cache failed: %v", err)
	}
	if cachedStats.Stats.TotalUsers != 12 {
		t.Errorf("Cached stats incorrect")
	}
	if mockRepo.calls != 1 {
		t.Errorf("Expected repository to be queried once, got %d", mockRepo.calls)
	}
}

func TestService_GetStats_NonManagementDenied(t *testing.T) {
	mockRepo := newMockRepository()
	svc := NewService(mockRepo, newMockCache(), time.Minute)

	for _, role := range []models.Role{models.RoleClassTeacher, models.RoleSectionHead, models.RoleWorker, models.RoleNonAcademicStaff} {
		_, err := svc.GetStats(context.Background(), role)
		if !apperr.Is(err, apperr.KindAuthorization) {
			t.Errorf("%s: expected authorization error, got %v", role, err)
			continue
		}
		if msg := apperr.PublicMessage(err); msg != "Access denied" {
			t.Errorf("%s: expected 'Access denied', got %q", role, msg)
		}
	}
	if mockRepo.calls != 0 {
		t.Errorf("Repository must not be queried for denied roles")
	}
}

func TestService_GetStats_RepositoryError(t *testing.T) {
	mockRepo := newMockRepository()
	mockRepo.err = errors.New("connection refused")
	mockCache := newMockCache()
	svc := NewService(mockRepo, mockCache, time.Minute)

	_, err := svc.GetStats(context.Background(), models.RoleManagementStaff)
	if !apperr.Is(err, apperr.KindPersistence) {
		t.Fatalf("Expected persistence error, got %v", err)
	}
	if exists, _ := mockCache.Exists(context.Background(), cache.DashboardStatsKey); exists {
		t.Error("Failed stats must not be cached")
	}
}

func TestService_RefreshCache(t *testing.T) {
	mockCache := newMockCache()
	svc := NewService(newMockRepository(), mockCache, time.Minute)

	ctx := context.Background()

	// 先获取一次，写入缓存
	if _, err := svc.GetStats(ctx, models.RoleAssistantPrincipal); err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}

	exists, _ := mockCache.Exists(ctx, cache.DashboardStatsKey)
	if !exists {
		t.Error("Cache should exist")
	}

	// 刷新缓存
	if err := svc.RefreshCache(ctx); err != nil {
		t.Fatalf("RefreshCache failed: %v", err)
	}

	exists, _ = mockCache.Exists(ctx, cache.DashboardStatsKey)
	if exists {
		t.Error("Cache should be deleted after refresh")
	}
}

func Test_buildTrendData(t *testing.T) {
	fixed := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := &Service{now: func() time.Time { return fixed }}

	dailyStats := []dashboardRepo.DailyStat{
		{Date: "2025-03-09", Count: 5},
		{Date: "2025-03-10", Count: 3},
		{Date: "2025-01-01", Count: 9},
	}

	trend := svc.buildTrendData(dailyStats, 30)

	if trend.Period != "30d" {
		t.Errorf("Expected period 30d, got %s", trend.Period)
	}
	if len(trend.Dates) != 30 || len(trend.Data) != 30 {
		t.Fatalf("Expected 30 points, got %d dates / %d values", len(trend.Dates), len(trend.Data))
	}
	if trend.Dates[29] != "2025-03-10" {
		t.Errorf("Expected last date 2025-03-10, got %s", trend.Dates[29])
	}

	if trend.Data[28] != 5 {
		t.Errorf("Expected 5 for yesterday, got %d", trend.Data[28])
	}
	if trend.Data[29] != 3 {
		t.Errorf("Expected 3 for today, got %d", trend.Data[29])
	}

	var total int64
	for _, v := range trend.Data {
		total += v
	}
	if total != 8 {
		t.Errorf("Days outside the window must be ignored, got total %d", total)
	}
}
