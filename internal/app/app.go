package app

import (
	"context"
	"fmt"

	"algocamp_backend/internal/auth"
	"algocamp_backend/internal/clients"
	"algocamp_backend/internal/config"
	"algocamp_backend/internal/crypto"
	"algocamp_backend/internal/email"
	"algocamp_backend/internal/handlers"
	"algocamp_backend/internal/logger"
	"algocamp_backend/internal/middleware"
	"algocamp_backend/internal/models"
	"algocamp_backend/internal/repositories"
	"algocamp_backend/internal/routes"
	"algocamp_backend/internal/services"
	"algocamp_backend/internal/validator"
	"algocamp_backend/internal/workers"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Run() {
	// Local development keeps secrets in .env; absent in containers.
	_ = godotenv.Load()

	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	// TranslateError maps driver duplicate-key failures to
	// gorm.ErrDuplicatedKey, which the repository relies on.
	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := gormDB.AutoMigrate(&models.Application{}); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	auth.Init(cfg.JWT.Secret, cfg.JWT.TTL)

	router, worker := SetupRouter(cfg, gormDB)

	// Rows stuck in pending from a previous run are picked up once the
	// process is back.
	go worker.RecoverPending(context.Background())

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", "address", address)
	if err := router.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// SetupRouter wires repositories, services and handlers onto a gin engine.
// Split from Run so tests can build the full HTTP surface around their own
// database handle.
func SetupRouter(cfg *config.Config, gormDB *gorm.DB) (*gin.Engine, *workers.EnrichmentWorker) {
	codec, err := crypto.NewFieldCodec(cfg.Encryption.Key)
	if err != nil {
		// No degraded plaintext mode: a bad key stops the process.
		logger.Fatal("Failed to initialize field encryption", "error", err)
	}

	serviceContainer, worker := initializeServices(cfg, gormDB, codec)
	appHandlers := initializeHandlers(serviceContainer)

	router := initializeGinRouter(cfg)
	routes.RegisterRoutes(router, appHandlers)

	return router, worker
}

func initializeServices(cfg *config.Config, gormDB *gorm.DB, codec *crypto.FieldCodec) (*services.ServiceContainer, *workers.EnrichmentWorker) {
	applicationRepo := repositories.NewApplicationRepository(gormDB)

	codeforcesClient := clients.NewCodeforcesClient(
		cfg.Scraping.CodeforcesBaseURL,
		cfg.RequestTimeout(),
		cfg.Scraping.MaxRetries,
		cfg.RetryDelay(),
	)
	leetcodeClient := clients.NewLeetCodeClient(
		cfg.Scraping.LeetCodeBaseURL,
		cfg.RequestTimeout(),
		cfg.Scraping.MaxRetries,
		cfg.RetryDelay(),
	)

	worker := workers.NewEnrichmentWorker(applicationRepo, codeforcesClient, leetcodeClient)
	verifier := services.NewUniquenessVerifier(applicationRepo, codec)

	var mailer services.ConfirmationSender
	if cfg.Email.Enabled {
		mailer = email.NewSender(cfg)
	} else {
		logger.Warn("Email disabled; confirmation messages will not be sent")
	}

	applicationService := services.NewApplicationService(applicationRepo, codec, verifier, worker, mailer)

	return &services.ServiceContainer{
		ApplicationService: applicationService,
	}, worker
}

func initializeHandlers(container *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		ApplicationHandler: handlers.NewApplicationHandler(baseHandler, container.ApplicationService),
		AdminHandler:       handlers.NewAdminHandler(baseHandler, container.ApplicationService),
	}
}

func initializeGinRouter(cfg *config.Config) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	return router
}
