package app

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/bienesraices/boutique/internal/config"
	"github.com/bienesraices/boutique/internal/db"
	"github.com/bienesraices/boutique/internal/middleware"
	"github.com/bienesraices/boutique/internal/repository"
	"github.com/bienesraices/boutique/internal/service"
	"github.com/bienesraices/boutique/internal/service/identity"
	"github.com/bienesraices/boutique/internal/storage"
	"github.com/bienesraices/boutique/internal/ui"
)

type App struct {
	Cfg             *config.Config
	DB              *sqlx.DB
	UserRepository  repository.UserRepository
	AuthService     *service.AuthService
	EmailService    *service.EmailService
	PropertyService *service.PropertyService
	Captcha         *service.CaptchaVerifier
	Providers       *identity.Registry
	Renderer        *ui.Renderer
	Storage         storage.Storage
	AuthLimiter     middleware.Limiter
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	tokenRepository := repository.NewTokenRepository(database)
	propertyRepository := repository.NewPropertyRepository(database)

	// Storage
	imageStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// Services
	emailService := service.NewEmailService(cfg)
	authService := service.NewAuthService(userRepository, tokenRepository, emailService, cfg)
	propertyService := service.NewPropertyService(propertyRepository, imageStorage)
	captcha := service.NewCaptchaVerifier(cfg.CaptchaSiteKey, cfg.CaptchaSecretKey)

	// OAuth providers: only those with credentials configured
	var providers []identity.Provider
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		providers = append(providers, identity.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.AppURL))
	}
	if cfg.GitHubClientID != "" && cfg.GitHubClientSecret != "" {
		providers = append(providers, identity.NewGitHub(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.AppURL))
	}
	registry := identity.NewRegistry(providers...)

	renderer, err := ui.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize renderer: %v", err)
	}

	limiter, err := authLimiter(cfg)
	if err != nil {
		return nil, err
	}

	return &App{
		Cfg:             cfg,
		DB:              database,
		UserRepository:  userRepository,
		AuthService:     authService,
		EmailService:    emailService,
		PropertyService: propertyService,
		Captcha:         captcha,
		Providers:       registry,
		Renderer:        renderer,
		Storage:         imageStorage,
		AuthLimiter:     limiter,
	}, nil
}

// authLimiter throttles the auth endpoints at 5 requests per 15 minutes
// per IP. With REDIS_URL set the counter is shared across replicas,
// otherwise it is per-process.
func authLimiter(cfg *config.Config) (middleware.Limiter, error) {
	const (
		limit  = 5
		window = 15 * time.Minute
	)
	if cfg.RedisURL == "" {
		return middleware.NewRateLimiter(limit, window), nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %v", err)
	}
	return middleware.NewRedisRateLimiter(redis.NewClient(opts), limit, window), nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
