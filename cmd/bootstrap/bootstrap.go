package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tb-intake/config"
	deliveryHttp "tb-intake/internal/delivery/http"
	"tb-intake/internal/delivery/http/handler"
	"tb-intake/internal/delivery/http/middleware"
	"tb-intake/internal/infrastructure/backend"
	"tb-intake/internal/infrastructure/cache"
	"tb-intake/internal/infrastructure/database"
	"tb-intake/internal/report"
	"tb-intake/internal/repository"
	"tb-intake/internal/service"
	"tb-intake/internal/usecase"
	"tb-intake/pkg/jwt"
	"tb-intake/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	setupLogger(cfg.App.LogLevel)
	logrus.Info("Configuration loaded successfully")

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	// Initialize database (optional, audit trail only)
	db, err := openAuditDB(cfg)
	if err != nil {
		return nil, err
	}
	app.DB = db

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	logrus.Info("Redis connected successfully")

	// Initialize all layers
	server := initializeServer(cfg, db, redisClient)
	app.Server = server

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}

func openAuditDB(cfg *config.Config) (*gorm.DB, error) {
	if !cfg.DB.Enabled() {
		logrus.Warn("DB_HOST not set, intake audit trail disabled")
		return nil, nil
	}

	db, err := database.NewPostgresConnection(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logrus.Info("Database connected successfully")
	return db, nil
}

func newAuditService(db *gorm.DB, log *logrus.Logger) service.AuditService {
	if db == nil {
		return service.NewNoopAuditService()
	}
	return service.NewAuditService(db, log, repository.NewAuditLogRepository())
}

// initializeServer creates and configures the HTTP server
func initializeServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *http.Server {
	// Initialize logger
	log := logrus.StandardLogger()

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	backendClient := backend.NewClient(cfg.Backend, log)
	patientRepo := repository.NewPatientRepository(backendClient)
	diagnosisRepo := repository.NewDiagnosisRepository(backendClient)
	reportRepo := repository.NewReportRepository(backendClient)
	sessionRepo := repository.NewWizardSessionRepository(redisClient)

	// Initialize services
	auditService := newAuditService(db, log)

	// Initialize usecases
	patientUsecase := usecase.NewPatientUsecase(log, patientRepo, auditService)
	reportUsecase := usecase.NewReportUsecase(log, patientRepo, reportRepo, report.NewRenderer(), auditService)
	wizardUsecase := usecase.NewWizardUsecase(log, patientRepo, diagnosisRepo, reportRepo, sessionRepo,
		auditService, jwtService, cfg.Wizard, cfg.Backend.IdempotencyKeys)
	auditLogUsecase := usecase.NewAuditLogUsecase(log, auditService)

	// Initialize handlers
	questionHandler := handler.NewQuestionHandler()
	patientHandler := handler.NewPatientHandler(patientUsecase, customValidator)
	reportHandler := handler.NewReportHandler(reportUsecase)
	wizardHandler := handler.NewWizardHandler(wizardUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	sessionMiddleware := middleware.NewSessionMiddleware(jwtService)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigin)

	// Initialize router
	router := deliveryHttp.NewRouter(questionHandler, patientHandler, reportHandler, wizardHandler,
		auditLogHandler, sessionMiddleware, corsMiddleware)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		logrus.Infof("Clinical backend: %s", app.Config.Backend.BaseURL)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
