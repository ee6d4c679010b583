package core

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/greencampus/facility-reports/api/common"
	"github.com/greencampus/facility-reports/api/middleware"
	"github.com/greencampus/facility-reports/config"
	"github.com/greencampus/facility-reports/internal/app"
)

// SetupRouter 构建 gin 引擎；cleanup 停止限流器的后台清理
func SetupRouter(container *app.Container) (*gin.Engine, func()) {
	cfg := container.GetConfig()
	router := gin.New()

	// 仅在开发版本时启用 gin 日志
	if config.IsDevelopment() {
		router.Use(gin.Logger())
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Printf("[API] Panic in %s %s (request %s): %v", c.Request.Method, c.FullPath(), c.GetString(common.RequestIDKey), recovered)
		common.RespondErrorAbort(c, http.StatusInternalServerError, "Server error")
	}))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	_ = router.SetTrustedProxies(nil)

	bodyLimit := int64(cfg.UploadMaxBodyMB) << 20
	router.MaxMultipartMemory = bodyLimit

	router.Use(middleware.NewConcurrencyLimiter(cfg.MaxConcurrency).Middleware())
	router.Use(middleware.MaxBytesReader(bodyLimit))
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())

	authRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitAuthRPS, cfg.RateLimitAuthBurst, cfg.RateLimitExpireTime)
	apiRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitApiRPS, cfg.RateLimitApiBurst, cfg.RateLimitExpireTime)
	photoRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitPhotoRPS, cfg.RateLimitPhotoBurst, cfg.RateLimitExpireTime)
	cleanup := func() {
		authRateLimiter.StopCleanup()
		apiRateLimiter.StopCleanup()
		photoRateLimiter.StopCleanup()
	}

	RegisterRoutes(router, &RouterDependencies{
		Container:        container,
		AuthRateLimiter:  authRateLimiter,
		APIRateLimiter:   apiRateLimiter,
		PhotoRateLimiter: photoRateLimiter,
	})

	return router, cleanup
}

// StartServer 创建 http.Server
func StartServer(container *app.Container) (*http.Server, func()) {
	cfg := container.GetConfig()
	router, cleanup := SetupRouter(container)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return srv, cleanup
}
