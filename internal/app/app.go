package app

import (
	"fmt"

	"github.com/greencampus/facility-reports/cache"
	"github.com/greencampus/facility-reports/config"
	"github.com/greencampus/facility-reports/database"
	"github.com/greencampus/facility-reports/database/models"
	"github.com/greencampus/facility-reports/database/repo/accounts"
	dashboardRepo "github.com/greencampus/facility-reports/database/repo/dashboard"
	entryrepo "github.com/greencampus/facility-reports/database/repo/entries"
	"github.com/greencampus/facility-reports/internal/auth"
	"github.com/greencampus/facility-reports/internal/dashboard"
	"github.com/greencampus/facility-reports/internal/entries"
	"github.com/greencampus/facility-reports/internal/mapview"
	"github.com/greencampus/facility-reports/internal/photos"
	"github.com/greencampus/facility-reports/internal/worker"
	"github.com/greencampus/facility-reports/storage"
	"github.com/greencampus/facility-reports/utils"
	"gorm.io/gorm"
)

// Container 依赖注入容器 - 管理所有服务的生命周期
type Container struct {
	config  *config.Config
	db      *gorm.DB
	cache   cache.Provider
	storage storage.Provider

	AccountsRepo  *accounts.Repository
	WasteRepo     *entryrepo.Repository[models.WasteEntry]
	ResourcesRepo *entryrepo.Repository[models.ResourceEntry]
	SpacesRepo    *entryrepo.Repository[models.SpaceEntry]
	DashboardRepo *dashboardRepo.Repository

	Tokens    *auth.JWTService
	Auth      *auth.Service
	Entries   *entries.Service
	Dashboard *dashboard.Service
	Map       *mapview.Service
	Photos    *photos.Pipeline
}

// NewContainer 创建新的依赖注入容器
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config: cfg,
	}
}

// Init opens the database and, unless dbOnly, every backend and service
func (c *Container) Init(dbOnly bool) error {
	if err := c.InitDatabase(); err != nil {
		return err
	}
	if dbOnly {
		return nil
	}
	return c.InitServices()
}

// InitDatabase 初始化数据库与仓库
func (c *Container) InitDatabase() error {
	utils.LogIfDevf("[Container] Initializing database...")

	db, err := database.NewDB(c.config)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.db = db
	c.initRepositories()
	return nil
}

// UseDB wires an already opened database, for tests
func (c *Container) UseDB(db *gorm.DB) {
	c.db = db
	c.initRepositories()
}

// initRepositories 初始化所有仓库
func (c *Container) initRepositories() {
	c.AccountsRepo = accounts.NewRepository(c.db)
	c.WasteRepo = entryrepo.NewWasteRepository(c.db)
	c.ResourcesRepo = entryrepo.NewResourceRepository(c.db)
	c.SpacesRepo = entryrepo.NewSpaceRepository(c.db)
	c.DashboardRepo = dashboardRepo.NewRepository(c.db)
	utils.LogIfDevf("[Container] Repositories initialized")
}

// InitServices connects cache and storage, then builds the services
func (c *Container) InitServices() error {
	cacheProvider, err := cache.New(cache.ConfigFrom(c.config))
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	storageProvider, err := storage.New(c.config)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	return c.InitServicesWith(cacheProvider, storageProvider)
}

// InitServicesWith builds the services on the given backends
func (c *Container) InitServicesWith(cacheProvider cache.Provider, storageProvider storage.Provider) error {
	c.cache = cacheProvider
	c.storage = storageProvider

	tokens, err := auth.NewJWTService(c.config.JWTSecret, c.config.JWTExpiresIn)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}
	c.Tokens = tokens
	c.Dashboard = dashboard.NewService(c.DashboardRepo, cacheProvider, c.config.CacheDashboardTTL)
	c.Auth = auth.NewService(c.AccountsRepo, tokens, c.Dashboard)

	c.Photos = photos.NewPipeline(storageProvider, photos.OptionsFrom(c.config))
	c.Entries = entries.NewService(c.AccountsRepo, entries.Repositories{
		Waste:     c.WasteRepo,
		Resources: c.ResourcesRepo,
		Spaces:    c.SpacesRepo,
	}, c.Photos, c.Dashboard)
	c.Map = mapview.NewService(c.Entries, mapview.CenterFrom(c.config))

	utils.LogIfDevf("[Container] Services initialized (cache=%s, storage=%s)", cacheProvider.Name(), storageProvider.Name())
	return nil
}

// StartWorkers 启动后台协程池
func (c *Container) StartWorkers() {
	worker.InitGlobalPool(c.config.WorkerCount, c.config.WorkerQueueSize)
}

// GetConfig 获取配置
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// DB 获取数据库连接
func (c *Container) DB() *gorm.DB {
	return c.db
}

// Cache 获取缓存提供者
func (c *Container) Cache() cache.Provider {
	return c.cache
}

// Storage 获取存储提供者
func (c *Container) Storage() storage.Provider {
	return c.storage
}

// Close 关闭所有服务
func (c *Container) Close() error {
	utils.LogIfDevf("[Container] Closing...")

	worker.StopGlobalPool()

	if c.cache != nil {
		if err := c.cache.Close(); err != nil {
			utils.LogIfDevf("[Container] Error closing cache: %v", err)
		}
	}
	if c.db != nil {
		if err := database.Close(c.db); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	return nil
}
