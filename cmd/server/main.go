package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/drarshadhere/mypcos-ai/internal/api"
	"github.com/drarshadhere/mypcos-ai/internal/cache"
	"github.com/drarshadhere/mypcos-ai/internal/config"
	"github.com/drarshadhere/mypcos-ai/internal/database"
	"github.com/drarshadhere/mypcos-ai/internal/delivery"
	"github.com/drarshadhere/mypcos-ai/internal/domain"
	"github.com/drarshadhere/mypcos-ai/internal/progress"
	"github.com/drarshadhere/mypcos-ai/internal/render"
	"github.com/drarshadhere/mypcos-ai/internal/repository"
	"github.com/drarshadhere/mypcos-ai/internal/service"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}
	cfg := configManager.GetConfig()

	logger := newLogger(cfg.Logging)
	logger.WithFields(logrus.Fields{
		"host":    cfg.Server.Host,
		"port":    cfg.Server.Port,
		"storage": cfg.Storage.Driver,
	}).Info("Starting PCOS intake server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage wiring per driver.
	var (
		progressStore progress.Store
		reportRepo    *repository.ReportRepository
		healthChecker api.HealthChecker
	)

	switch cfg.Storage.Driver {
	case "postgres":
		connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
		db, err := database.NewConnection(connectCtx, database.Config{
			Host:        cfg.Storage.Postgres.Host,
			Port:        cfg.Storage.Postgres.Port,
			Database:    cfg.Storage.Postgres.Database,
			Username:    cfg.Storage.Postgres.Username,
			Password:    cfg.Storage.Postgres.Password,
			SSLMode:     cfg.Storage.Postgres.SSLMode,
			MaxConns:    int32(cfg.Storage.Postgres.MaxOpenConns),
			MinConns:    int32(cfg.Storage.Postgres.MaxIdleConns),
			MaxConnLife: cfg.Storage.Postgres.ConnMaxLifetime,
			MaxConnIdle: 5 * time.Minute,
		}, logger)
		connectCancel()
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()

		runner, err := database.NewMigrationRunner(configManager.PostgresURL(), cfg.Storage.Migrations, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create migration runner")
		}
		if err := runner.Up(); err != nil {
			logger.WithError(err).Fatal("Failed to run migrations")
		}
		runner.Close()

		progressStore = progress.NewPostgresStore(db.Pool, logger)
		reportRepo = repository.NewReportRepository(db.Pool, logger)
		healthChecker = db

	case "sqlite":
		store, err := progress.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			logger.WithError(err).Fatal("Failed to open SQLite store")
		}
		defer store.Close()
		progressStore = store

	default:
		logger.WithField("driver", cfg.Storage.Driver).Fatal("Unknown storage driver")
	}

	// Optional rendered-report cache.
	var reportCache service.ReportCache
	if cfg.Cache.Enabled {
		c, err := cache.NewReportCache(cfg.Cache, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create report cache")
		}
		defer c.Close()
		reportCache = c
	}

	// Optional SMTP delivery.
	var mailer service.ReportMailer
	if cfg.Delivery.SMTP.Host != "" {
		mailer = delivery.NewSMTPMailer(cfg.Delivery, logger)
	}

	renderer := render.NewPDFRenderer(cfg.Render, cfg.Clinic.FooterText, logger)

	intake := service.NewIntakeService(
		logger,
		renderer,
		progressStore,
		reportRepoOrNil(reportRepo),
		reportCache,
		mailer,
		service.IntakeOptions{
			ReportTitle:  cfg.Clinic.ReportTitle,
			DoctorLine:   cfg.Clinic.DoctorLine,
			ClinicName:   cfg.Clinic.Name,
			WhatsAppLink: cfg.Delivery.WhatsAppLink,
		},
	)

	server := api.NewServer(cfg, intake, renderer, reportReaderOrNil(reportRepo), progressStore, healthChecker, logger)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

// newLogger builds the application logger from logging configuration.
func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}

// reportRepoOrNil converts a possibly-nil concrete repository into the service
// interface without producing a non-nil interface around a nil pointer.
func reportRepoOrNil(repo *repository.ReportRepository) service.ReportRepository {
	if repo == nil {
		return nil
	}
	return repo
}

func reportReaderOrNil(repo *repository.ReportRepository) api.ReportReader {
	if repo == nil {
		return nil
	}
	return repo
}
