package container

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"badgeforge-backend/internal/audit"
	"badgeforge-backend/internal/config"
	infraCache "badgeforge-backend/internal/infrastructure/cache"
	"badgeforge-backend/internal/infrastructure/database"
	"badgeforge-backend/internal/infrastructure/email"
	"badgeforge-backend/internal/infrastructure/storage"
	"badgeforge-backend/pkg/cache"
	"badgeforge-backend/pkg/jwt"
	"badgeforge-backend/pkg/logger"

	"badgeforge-backend/internal/domains/assertion"
	assertionHandler "badgeforge-backend/internal/domains/assertion/handler"
	assertionRepo "badgeforge-backend/internal/domains/assertion/repository"
	assertionService "badgeforge-backend/internal/domains/assertion/service"
	"badgeforge-backend/internal/domains/badgeclass"
	badgeclassHandler "badgeforge-backend/internal/domains/badgeclass/handler"
	badgeclassRepo "badgeforge-backend/internal/domains/badgeclass/repository"
	badgeclassService "badgeforge-backend/internal/domains/badgeclass/service"
	"badgeforge-backend/internal/domains/issuer"
	issuerHandler "badgeforge-backend/internal/domains/issuer/handler"
	issuerRepo "badgeforge-backend/internal/domains/issuer/repository"
	issuerService "badgeforge-backend/internal/domains/issuer/service"
	"badgeforge-backend/internal/domains/user"
	userHandler "badgeforge-backend/internal/domains/user/handler"
	userRepo "badgeforge-backend/internal/domains/user/repository"
	userService "badgeforge-backend/internal/domains/user/service"
)

// Container is the root of the dependency graph. Everything in it is a
// singleton built once at startup, in dependency order: config,
// infrastructure, repositories, services, handlers.
type Container struct {
	Config         *config.Config
	DB             *database.PostgresDB
	Cache          cache.Cache
	Storage        *storage.MinIOStorage
	ImageProcessor *storage.ImageProcessor
	EmailService   email.EmailService
	JWTManager     *jwt.Manager
	AsynqClient    *asynq.Client
	AuditEmitter   audit.Emitter
	AuditRepo      audit.Repository

	UserRepo       user.Repository
	IssuerRepo     issuer.Repository
	BadgeClassRepo badgeclass.Repository
	AssertionRepo  assertion.Repository

	UserService       user.Service
	IssuerService     issuer.Service
	BadgeClassService badgeclass.Service
	AssertionService  assertion.Service

	UserHandler       *userHandler.UserHandler
	IssuerHandler     *issuerHandler.IssuerHandler
	BadgeClassHandler *badgeclassHandler.BadgeClassHandler
	AssertionHandler  *assertionHandler.AssertionHandler
}

func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	logger.Init(cfg.App.Environment)

	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}
	c.initRepositories()
	c.initServices()
	c.initHandlers()

	logger.Info("Container initialized", map[string]interface{}{
		"environment": cfg.App.Environment,
	})
	return c, nil
}

func (c *Container) initInfrastructure() error {
	db := database.NewPostgresDB(&c.Config.Database)
	if err := db.Connect(context.Background()); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	c.Cache = infraCache.NewRedisCache(c.Config.Redis.Host, c.Config.Redis.Password, c.Config.Redis.DB)

	minioStorage, err := storage.NewMinIOStorage(c.Config.MinIO)
	if err != nil {
		return fmt.Errorf("failed to connect to minio: %w", err)
	}
	c.Storage = minioStorage

	c.ImageProcessor = storage.NewImageProcessor()
	c.EmailService = email.NewSMTPEmailService(c.Config.Email)
	c.JWTManager = jwt.NewManager(
		c.Config.JWT.Secret,
		c.Config.JWT.AccessTokenExpiry,
		c.Config.JWT.RefreshTokenExpiry,
	)

	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     c.Config.Redis.Host,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})
	c.AuditEmitter = audit.NewAsynqEmitter(c.AsynqClient)
	c.AuditRepo = audit.NewPostgresRepository(c.DB.Pool)

	return nil
}

func (c *Container) initRepositories() {
	c.UserRepo = userRepo.NewUserRepository(c.DB.Pool)
	c.IssuerRepo = issuerRepo.NewPostgresRepository(c.DB.Pool)
	c.BadgeClassRepo = badgeclassRepo.NewBadgeClassRepository(c.DB.Pool, c.Cache)
	c.AssertionRepo = assertionRepo.NewAssertionRepository(c.DB.Pool)
}

func (c *Container) initServices() {
	c.UserService = userService.NewUserService(c.UserRepo, c.JWTManager, c.AsynqClient)
	c.IssuerService = issuerService.NewIssuerService(
		c.IssuerRepo, c.UserRepo, c.Storage, c.AuditEmitter, c.Config.App.ApprovedIssuersOnly)
	c.BadgeClassService = badgeclassService.NewBadgeClassService(
		c.BadgeClassRepo, c.IssuerService, c.Storage, c.ImageProcessor, c.AsynqClient, c.AuditEmitter)

	// The award tracker integration is off unless configured; the
	// service falls back to the no-op implementation on nil.
	var tracker assertion.AwardTracker
	if c.Config.AwardTracker.Enabled {
		tracker = assertion.NewLoggingAwardTracker()
	}
	c.AssertionService = assertionService.NewAssertionService(
		c.AssertionRepo, c.IssuerService, c.BadgeClassRepo, c.AsynqClient, tracker, c.AuditEmitter)
}

func (c *Container) initHandlers() {
	c.UserHandler = userHandler.NewUserHandler(c.UserService)
	c.IssuerHandler = issuerHandler.NewIssuerHandler(c.IssuerService)
	c.BadgeClassHandler = badgeclassHandler.NewBadgeClassHandler(c.BadgeClassService)
	c.AssertionHandler = assertionHandler.NewAssertionHandler(c.AssertionService)
}

// Cleanup closes long-lived connections. Call on shutdown.
func (c *Container) Cleanup() {
	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			logger.Error("Failed to close asynq client", err)
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
	logger.Info("Container cleaned up", map[string]interface{}{})
}
