package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"plato/domain/core"
	"plato/domain/report"
	"plato/internal/config"

	"github.com/jmoiron/sqlx"
)

// RunStatus is the persisted state of a pipeline run.
type RunStatus string

const (
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunRecord is one stored pipeline run: the configuration it was run
// with, the report it produced (or the error that stopped it).
type RunRecord struct {
	ID           core.RunID             `db:"id" json:"id"`
	Source       string                 `db:"source" json:"source"`
	Status       RunStatus              `db:"status" json:"status"`
	ErrorMessage string                 `db:"error_message" json:"error_message,omitempty"`
	Config       *config.Pipeline       `db:"-" json:"config,omitempty"`
	Report       *report.AnalysisReport `db:"-" json:"report,omitempty"`
	CreatedAt    time.Time              `db:"created_at" json:"created_at"`
}

// RunRepository persists pipeline runs.
type RunRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a run repository.
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Init creates the runs table if it does not exist.
func (r *RunRepository) Init(ctx context.Context) error {
	schema := `CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		status TEXT NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		config JSONB,
		report JSONB,
		created_at TIMESTAMPTZ NOT NULL
	)`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}
	return nil
}

// Save inserts a run record, stamping CreatedAt if the caller left it zero.
func (r *RunRepository) Save(ctx context.Context, rec *RunRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	configJSON, err := json.Marshal(rec.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal run config: %w", err)
	}
	reportJSON, err := json.Marshal(rec.Report)
	if err != nil {
		return fmt.Errorf("failed to marshal run report: %w", err)
	}

	query := `INSERT INTO runs (id, source, status, error_message, config, report, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.db.ExecContext(ctx, query,
		rec.ID, rec.Source, rec.Status, rec.ErrorMessage, configJSON, reportJSON, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", rec.ID, err)
	}
	return nil
}

// GetByID retrieves a stored run.
func (r *RunRepository) GetByID(ctx context.Context, id core.RunID) (*RunRecord, error) {
	query := NewQueryBuilder().
		Select("id, source, status, error_message, config, report, created_at").
		From("runs").
		Where("id = $1").
		Build()

	var rec RunRecord
	var configJSON, reportJSON []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID, &rec.Source, &rec.Status, &rec.ErrorMessage, &configJSON, &reportJSON, &rec.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}

	if err := unmarshalInto(configJSON, &rec.Config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run config: %w", err)
	}
	if err := unmarshalInto(reportJSON, &rec.Report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run report: %w", err)
	}
	return &rec, nil
}

// List returns the most recent runs, newest first, without their
// config/report payloads.
func (r *RunRepository) List(ctx context.Context, limit, offset int) ([]RunRecord, error) {
	query := NewQueryBuilder().
		Select("id, source, status, error_message, created_at").
		From("runs").
		OrderBy("created_at", "DESC").
		Limit(limit).
		Offset(offset).
		Build()

	var records []RunRecord
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return records, nil
}

func unmarshalInto(raw []byte, dst interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
