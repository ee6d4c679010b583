package core

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/greencampus/facility-reports/cache"
	"github.com/greencampus/facility-reports/config"
	"github.com/greencampus/facility-reports/database"
	"github.com/greencampus/facility-reports/storage"
	"gorm.io/gorm"
)

var startTime = time.Now()

const healthCheckTimeout = 3 * time.Second

// HealthHandler 健康检查处理器
type HealthHandler struct {
	db      *gorm.DB
	cache   cache.Provider
	storage storage.Provider
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(db *gorm.DB, cacheProvider cache.Provider, storageProvider storage.Provider) *HealthHandler {
	return &HealthHandler{
		db:      db,
		cache:   cacheProvider,
		storage: storageProvider,
	}
}

// Handle 200 with status OK while every backend answers, 503 otherwise
func (h *HealthHandler) Handle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	checks := gin.H{
		"database": checkDatabaseHealth(ctx, h.db),
		"cache":    checkCacheHealth(ctx, h.cache),
		"storage":  checkStorageHealth(ctx, h.storage),
	}

	status, message, httpStatus := "OK", "Server is running", http.StatusOK
	for _, result := range checks {
		if result != "ok" {
			status, message, httpStatus = "DEGRADED", "One or more backends are unavailable", http.StatusServiceUnavailable
			break
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":  status,
		"message": message,
		"uptime":  time.Since(startTime).Round(time.Second).String(),
		"version": config.Version,
		"checks":  checks,
	})
}

func checkDatabaseHealth(ctx context.Context, db *gorm.DB) string {
	if db == nil {
		return "not initialized"
	}
	if err := database.Ping(ctx, db); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}

// checkCacheHealth pings backends that support it; in-process caches are always up
func checkCacheHealth(ctx context.Context, provider cache.Provider) string {
	if provider == nil {
		return "not initialized"
	}
	if pinger, ok := provider.(interface{ Health(context.Context) error }); ok {
		if err := pinger.Health(ctx); err != nil {
			return "unavailable: " + err.Error()
		}
	}
	return "ok"
}

func checkStorageHealth(ctx context.Context, provider storage.Provider) string {
	if provider == nil {
		return "not initialized"
	}
	if err := provider.Health(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
