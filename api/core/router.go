package core

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/greencampus/facility-reports/api/common"
	"github.com/greencampus/facility-reports/api/handler/account"
	"github.com/greencampus/facility-reports/api/handler/dashboard"
	"github.com/greencampus/facility-reports/api/handler/entries"
	"github.com/greencampus/facility-reports/api/handler/mapview"
	"github.com/greencampus/facility-reports/api/handler/photos"
	"github.com/greencampus/facility-reports/api/middleware"
	"github.com/greencampus/facility-reports/config"
	"github.com/greencampus/facility-reports/internal/app"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouterDependencies 路由注册依赖
type RouterDependencies struct {
	Container        *app.Container
	AuthRateLimiter  *middleware.IPRateLimiter
	APIRateLimiter   *middleware.IPRateLimiter
	PhotoRateLimiter *middleware.IPRateLimiter
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(router *gin.Engine, deps *RouterDependencies) {
	registerBasicRoutes(router, deps)
	registerPublicRoutes(router, deps)
	registerAPIRoutes(router, deps)
}

// registerBasicRoutes 注册基础路由
func registerBasicRoutes(router *gin.Engine, deps *RouterDependencies) {
	c := deps.Container
	healthHandler := NewHealthHandler(c.DB(), c.Cache(), c.Storage())
	router.GET("/health", healthHandler.Handle)

	router.GET("/version", func(context *gin.Context) {
		common.RespondSuccess(context, gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	})

	router.GET("/metrics", func(context *gin.Context) {
		context.JSON(http.StatusOK, middleware.GetMetrics())
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// registerPublicRoutes 注册公共照片访问
func registerPublicRoutes(router *gin.Engine, deps *RouterDependencies) {
	photoHandler := photos.NewHandler(deps.Container.Photos)

	photoGroup := router.Group("/photos")
	photoGroup.Use(deps.PhotoRateLimiter.Middleware())
	photoHandler.SetupRoutes(photoGroup)
}

// registerAPIRoutes 注册 API 路由
func registerAPIRoutes(router *gin.Engine, deps *RouterDependencies) {
	c := deps.Container

	accountHandler := account.NewHandler(c.Auth, c.Photos)
	entryHandler := entries.NewHandler(c.Entries)
	dashboardHandler := dashboard.NewHandler(c.Dashboard, c.Auth)
	mapHandler := mapview.NewHandler(c.Map)

	apiGroup := router.Group("/api")
	apiGroup.Use(middleware.NoStore())
	{
		accountHandler.SetupPublicRoutes(apiGroup, deps.AuthRateLimiter.Middleware())

		protected := apiGroup.Group("")
		protected.Use(deps.APIRateLimiter.Middleware())
		protected.Use(middleware.RequireAuth(c.Tokens))
		{
			accountHandler.SetupRoutes(protected)
			entryHandler.SetupRoutes(protected)
			dashboardHandler.SetupRoutes(protected)
			mapHandler.SetupRoutes(protected)
		}
	}
}
