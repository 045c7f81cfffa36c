package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"

	"plato/adapters/ingest"
	"plato/adapters/postgres"
	"plato/api"
	"plato/domain/dataset"
	"plato/internal"
	"plato/internal/config"
	"plato/internal/export"
	"plato/internal/pipeline"
	"plato/internal/testkit"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// initDatabase connects to PostgreSQL and ensures the runs table exists.
// Returns nil when no DATABASE_URL is configured; the server then runs
// without persistence.
func initDatabase(appConfig *config.App) (*sqlx.DB, *postgres.RunRepository, error) {
	if appConfig.Database.URL == "" {
		return nil, nil, nil
	}

	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, err
	}

	repo := postgres.NewRunRepository(db)
	if err := repo.Init(context.Background()); err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, repo, nil
}

// loadDataset reads DATA_FILE (CSV or Excel by extension) when set,
// otherwise generates a seeded synthetic dataset.
func loadDataset(logger *internal.Logger) (*dataset.Dataset, string, error) {
	if path := os.Getenv("DATA_FILE"); path != "" {
		logger.Info("loading dataset from %s", path)
		if isExcelPath(path) {
			ds, err := ingest.NewExcelReader(path, os.Getenv("DATA_SHEET")).Read()
			return ds, path, err
		}
		ds, err := ingest.NewCSVReader(path).Read()
		return ds, path, err
	}

	logger.Info("no DATA_FILE configured, generating synthetic survey data")
	ds, err := testkit.NewSurveyDataGenerator(testkit.DefaultSurveyConfig()).Generate()
	return ds, "synthetic", err
}

func isExcelPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		return true
	}
	return false
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	logger := internal.NewDefaultLogger()
	appConfig := config.LoadApp()

	db, runs, err := initDatabase(appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if db != nil {
		defer db.Close()
	}

	// Run one pipeline pass at startup so a configured deployment
	// produces a report immediately; the API serves further runs.
	pipelineCfg := config.DefaultPipeline()
	if path := os.Getenv("PIPELINE_CONFIG"); path != "" {
		pipelineCfg, err = config.LoadPipeline(path)
		if err != nil {
			log.Fatalf("Failed to load pipeline config: %v", err)
		}
	}

	ds, source, err := loadDataset(logger)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}

	runner := pipeline.NewRunner(pipelineCfg)
	result, err := runner.Run(context.Background(), ds)
	if err != nil {
		log.Fatalf("Pipeline run failed: %v", err)
	}
	logger.Info("startup run %s completed with %d report entries", result.RunID, len(result.Report.Results))
	os.Stdout.WriteString(export.Markdown(result.Report))

	if runs != nil {
		rec := &postgres.RunRecord{
			ID:     result.RunID,
			Source: source,
			Status: postgres.RunStatusCompleted,
			Config: pipelineCfg,
			Report: result.Report,
		}
		if err := runs.Save(context.Background(), rec); err != nil {
			logger.Error("persist startup run: %v", err)
		}
	}

	server := api.NewServer(runs, logger)
	if err := server.Start(appConfig.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
