// Package app wires the service graph shared by the API server and the sweep job.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"ndavault/internal/audit"
	"ndavault/internal/config"
	"ndavault/internal/credit"
	"ndavault/internal/database"
	"ndavault/internal/database/migration"
	"ndavault/internal/renderer"
	"ndavault/internal/repository/postgres"
	"ndavault/internal/service"
	"ndavault/internal/storage"
)

// App holds the long-lived dependencies of one process.
type App struct {
	DB        *sql.DB
	Registry  *prometheus.Registry
	Users     *postgres.UserPostgres
	Documents service.DocumentService
	Recorder  *audit.Recorder
}

// New connects to PostgreSQL and object storage, applies migrations and builds
// the document lifecycle service.
func New(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*App, error) {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	a, err := build(ctx, cfg, db, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

func build(ctx context.Context, cfg *config.AppConfig, db *sql.DB, logger *slog.Logger) (*App, error) {
	if cfg.Credit.Cost <= 0 {
		return nil, fmt.Errorf("credit cost must be positive, got %d", cfg.Credit.Cost)
	}

	if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	store, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("initialize object storage: %w", err)
	}

	render, err := renderer.NewClient(cfg.Renderer, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize renderer client: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := service.NewMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	users := postgres.NewUserPostgres(db)
	docs := service.NewDocumentService(
		store,
		postgres.NewDocumentPostgres(db),
		credit.NewLedger(users, cfg.Credit, logger),
		render,
		service.Options{
			DocumentType: cfg.Document.Type,
			Cost:         cfg.Credit.Cost,
			Retention:    cfg.Document.Retention(),
			SignedURLTTL: cfg.Document.SignedURLTTL(),
			MaxPageLimit: cfg.Document.MaxListPageLimit,
		},
		metrics,
		logger,
	)

	return &App{
		DB:        db,
		Registry:  reg,
		Users:     users,
		Documents: docs,
		Recorder:  audit.NewRecorder(postgres.NewAuditPostgres(db), logger),
	}, nil
}

// Close releases the database pool.
func (a *App) Close() error {
	return a.DB.Close()
}
