package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"careerlift-backend/internal/analysis"
	"careerlift-backend/internal/catalog"
	"careerlift-backend/internal/extract"
	"careerlift-backend/internal/history"
	"careerlift-backend/internal/jobmatch"
	"careerlift-backend/internal/llm"
	"careerlift-backend/internal/llm/gemini"
	"careerlift-backend/internal/llm/openai"
	"careerlift-backend/internal/pipeline"
	"careerlift-backend/internal/recommendations"
	"careerlift-backend/internal/resources"
	"careerlift-backend/internal/shared/config"
	"careerlift-backend/internal/shared/server"
	"careerlift-backend/internal/shared/server/middleware"
	"careerlift-backend/internal/shared/storage/db"
	"careerlift-backend/internal/shared/storage/object"
	gcsstore "careerlift-backend/internal/shared/storage/object/gcs"
	localstore "careerlift-backend/internal/shared/storage/object/local"
	s3store "careerlift-backend/internal/shared/storage/object/s3"
	"careerlift-backend/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config      config.Config
	Router      *gin.Engine
	DB          *sql.DB
	Store       object.ObjectStore
	Generator   llm.Generator
	Model       string
	Jobs        *jobmatch.Service
	HistoryRepo history.Repo
	CatalogRepo catalog.Repo
	Pipeline    *pipeline.Service

	closers []func() error
}

// Build prepares every dependency and the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	app := &App{Config: cfg}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.DB = sqlDB

	if app.Store, err = buildStore(ctx, cfg); err != nil {
		return nil, err
	}
	app.Generator, app.Model = buildGenerator(ctx, cfg)

	if err := buildJobs(ctx, app); err != nil {
		return nil, err
	}
	if err := buildHistory(ctx, app); err != nil {
		return nil, err
	}
	if app.DB != nil {
		app.CatalogRepo = &catalog.PGRepo{DB: app.DB}
	} else {
		app.CatalogRepo = catalog.NewMemoryRepo()
	}

	app.Pipeline = &pipeline.Service{
		Analyzer:       analysis.New(app.Generator, app.Model),
		Extractor:      extract.New(app.Store, cfg.MaxExtractChars),
		Discoverer:     &resources.Discoverer{LLM: app.Generator, Model: app.Model},
		Structurer:     &resources.Structurer{LLM: app.Generator, Model: app.Model},
		Jobs:           app.Jobs,
		MinResumeChars: cfg.MinResumeChars,
	}
	if app.HistoryRepo != nil {
		app.Pipeline.History = history.NewRecorder(app.HistoryRepo)
	}

	deps := server.RouterDeps{
		Config: cfg,
		PipelineHandler: pipeline.NewHandler(app.Pipeline, app.Store, pipeline.Timeouts{
			Analyze:  cfg.AnalyzeTimeout,
			Discover: cfg.DiscoverTimeout,
			Jobs:     cfg.JobsTimeout,
		}, cfg.MinResumeChars, cfg.MaxUploadBytes),
		CatalogHandler:         catalog.NewHandler(catalog.NewService(app.CatalogRepo)),
		RecommendationsHandler: recommendations.NewHandler(),
		RateLimiter:            middleware.NewRateLimiter(nil),
	}
	if app.HistoryRepo != nil {
		deps.HistoryHandler = history.NewHandler(app.HistoryRepo)
	}
	app.Router = server.NewRouter(deps)

	return app, nil
}

// Close releases clients opened by Build.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		telemetry.Info("bootstrap.db_disabled", map[string]any{"reason": "DATABASE_URL empty"})
		return nil, nil
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db_connect_failed", map[string]any{
				"fallback": "memory",
				"error":    err.Error(),
			})
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "gcs":
		if strings.TrimSpace(cfg.GCSBucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=gcs requires GCS_BUCKET")
		}
		return gcsstore.New(ctx, cfg.GCSBucket, cfg.GCSPrefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// buildGenerator falls back to the placeholder so the API still serves extraction,
// catalog and job routes without generation credentials.
func buildGenerator(ctx context.Context, cfg config.Config) (llm.Generator, string) {
	var (
		base  llm.Generator
		model string
		err   error
	)
	switch cfg.LLMProvider {
	case "openai":
		model = cfg.OpenAIModel
		base, err = openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.AnalyzeTimeout)
	default:
		model = cfg.GeminiModel
		base, err = gemini.New(ctx, gemini.Config{
			APIKey:   cfg.GeminiAPIKey,
			Backend:  cfg.GeminiBackend,
			Project:  cfg.GoogleProject,
			Location: cfg.GoogleLocation,
			Model:    cfg.GeminiModel,
		})
	}
	if err != nil {
		telemetry.Warn("bootstrap.llm_unavailable", map[string]any{
			"provider": cfg.LLMProvider,
			"error":    err.Error(),
		})
		return llm.PlaceholderGenerator{}, model
	}
	return llm.WithRetry(base, llm.RetryPolicy{
		Attempts:  cfg.LLMRetryAttempts,
		BaseDelay: cfg.LLMRetryBaseDelay,
	}), model
}

func buildJobs(ctx context.Context, app *App) error {
	cfg := app.Config
	table := jobmatch.Table{Project: cfg.BigQueryProject, Dataset: cfg.BigQueryDataset, Name: cfg.BigQueryTable}
	var store jobmatch.Store
	if table.Configured() {
		bq, err := jobmatch.NewBigQueryStore(ctx, cfg.BigQueryProject, cfg.BigQueryCredentials)
		if err != nil {
			return err
		}
		app.closers = append(app.closers, bq.Close)
		store = bq
	} else {
		telemetry.Info("bootstrap.jobs_disabled", map[string]any{"reason": "BIGQUERY_* not set"})
	}
	svc, err := jobmatch.NewService(jobmatch.Config{Table: table, MaxLimit: cfg.JobsMaxLimit}, store)
	if err != nil {
		return err
	}
	app.Jobs = svc
	return nil
}

func buildHistory(ctx context.Context, app *App) error {
	switch app.Config.HistoryStore {
	case "none":
		return nil
	case "postgres":
		if app.DB == nil {
			if isDevLike(app.Config.Env) {
				app.HistoryRepo = history.NewMemoryRepo()
				return nil
			}
			return errors.New("HISTORY_STORE=postgres requires DATABASE_URL")
		}
		app.HistoryRepo = &history.PGRepo{DB: app.DB}
	case "firestore":
		repo, err := history.NewFirestoreRepo(ctx, app.Config.FirestoreProject, app.Config.FirestoreCollection)
		if err != nil {
			return err
		}
		app.closers = append(app.closers, repo.Close)
		app.HistoryRepo = repo
	default:
		app.HistoryRepo = history.NewMemoryRepo()
	}
	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
