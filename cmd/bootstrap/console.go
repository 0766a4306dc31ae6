package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tb-intake/config"
	"tb-intake/internal/delivery/console"
	"tb-intake/internal/infrastructure/backend"
	"tb-intake/internal/report"
	"tb-intake/internal/repository"
	"tb-intake/internal/usecase"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ConsoleApp is the operator terminal front end. It talks to the clinical backend
// directly and needs no redis.
type ConsoleApp struct {
	Config  *config.Config
	DB      *gorm.DB
	Console *console.Console
}

func NewConsole() (*ConsoleApp, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// the terminal belongs to the forms; logs go to stderr in text form
	logrus.SetFormatter(&logrus.TextFormatter{})
	logrus.SetOutput(os.Stderr)
	lvl, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		lvl = logrus.WarnLevel
	}
	logrus.SetLevel(lvl)
	log := logrus.StandardLogger()

	db, err := openAuditDB(cfg)
	if err != nil {
		return nil, err
	}

	backendClient := backend.NewClient(cfg.Backend, log)
	patientRepo := repository.NewPatientRepository(backendClient)
	diagnosisRepo := repository.NewDiagnosisRepository(backendClient)
	reportRepo := repository.NewReportRepository(backendClient)

	auditService := newAuditService(db, log)

	patientUsecase := usecase.NewPatientUsecase(log, patientRepo, auditService)
	reportUsecase := usecase.NewReportUsecase(log, patientRepo, reportRepo, report.NewRenderer(), auditService)

	operator := os.Getenv("USER")
	c := console.NewConsole(log, os.Stdout, console.NewHuhPrompter(), patientUsecase, reportUsecase,
		diagnosisRepo, reportRepo, auditService, report.FileSurface{Dir: cfg.Print.Dir}, console.Options{
			NavigationDelay: cfg.Wizard.NavigationDelay,
			IdempotencyKeys: cfg.Backend.IdempotencyKeys,
			Operator:        operator,
		})

	return &ConsoleApp{Config: cfg, DB: db, Console: c}, nil
}

// Run blocks until the operator quits or the process is interrupted.
func (app *ConsoleApp) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer app.Close()

	return app.Console.Run(ctx)
}

func (app *ConsoleApp) Close() {
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}
