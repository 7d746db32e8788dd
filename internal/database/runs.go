package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/autosource/supplier-scout/internal/models"
)

type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunDegraded  RunStatus = "degraded"
	RunFailed    RunStatus = "failed"
)

// SearchRun is one row of run history. Runs are the caller-owned run-identity
// keys; the scraper itself stays stateless between invocations.
type SearchRun struct {
	ID            string                    `json:"id"`
	ImagePath     string                    `json:"image_path"`
	Status        RunStatus                 `json:"status"`
	SupplierCount int                       `json:"supplier_count"`
	Degraded      bool                      `json:"degraded"`
	ArtifactPath  sql.NullString            `json:"-"`
	ErrorMessage  sql.NullString            `json:"-"`
	Diagnostics   []models.DiagnosticSample `json:"-"`
	CreatedAt     time.Time                 `json:"created_at"`
	StartedAt     sql.NullTime              `json:"-"`
	CompletedAt   sql.NullTime              `json:"-"`
}

var ErrRunNotFound = errors.New("search run not found")

// EnsureSchema creates the run-history tables when missing.
func (db *DB) EnsureSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS search_runs (
		id UUID PRIMARY KEY,
		image_path TEXT NOT NULL,
		status TEXT NOT NULL,
		supplier_count INT NOT NULL DEFAULT 0,
		degraded BOOLEAN NOT NULL DEFAULT FALSE,
		artifact_path TEXT,
		error_message TEXT,
		diagnostics JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		started_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ
	);
	CREATE TABLE IF NOT EXISTS suppliers (
		id BIGSERIAL PRIMARY KEY,
		run_id UUID NOT NULL REFERENCES search_runs(id) ON DELETE CASCADE,
		position INT NOT NULL,
		company TEXT NOT NULL,
		location TEXT NOT NULL,
		gold_years TEXT NOT NULL,
		rating TEXT NOT NULL,
		reviews TEXT NOT NULL,
		metrics JSONB NOT NULL,
		main_products JSONB NOT NULL,
		featured_products JSONB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_suppliers_run_id ON suppliers(run_id);
	CREATE INDEX IF NOT EXISTS idx_search_runs_status ON search_runs(status, created_at);`

	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

func (db *DB) InsertSearchRun(ctx context.Context, run *SearchRun) error {
	query := `
		INSERT INTO search_runs (id, image_path, status, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := db.Exec(ctx, query, run.ID, run.ImagePath, run.Status, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert search run: %w", err)
	}
	return nil
}

// ClaimPendingRun atomically picks the oldest pending run and marks it
// running. Returns ErrRunNotFound when no run is pending.
func (db *DB) ClaimPendingRun(ctx context.Context) (*SearchRun, error) {
	var run SearchRun

	err := db.WithTx(ctx, func(tx pgx.Tx) error {
		query := `
			SELECT id, image_path, created_at
			FROM search_runs
			WHERE status = 'pending'
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED`

		if err := tx.QueryRow(ctx, query).Scan(&run.ID, &run.ImagePath, &run.CreatedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrRunNotFound
			}
			return fmt.Errorf("failed to select pending run: %w", err)
		}

		_, err := tx.Exec(ctx,
			`UPDATE search_runs SET status = 'running', started_at = NOW() WHERE id = $1`,
			run.ID)
		if err != nil {
			return fmt.Errorf("failed to mark run running: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	run.Status = RunRunning
	return &run, nil
}

// RequeueInterruptedRuns returns runs a previous process left in running
// state to the pending queue. Called once at worker startup, before any run
// is claimed, so a crash mid-run never strands a row.
func (db *DB) RequeueInterruptedRuns(ctx context.Context) (int64, error) {
	tag, err := db.Exec(ctx,
		`UPDATE search_runs SET status = 'pending', started_at = NULL WHERE status = 'running'`)
	if err != nil {
		return 0, fmt.Errorf("failed to requeue interrupted runs: %w", err)
	}
	return tag.RowsAffected(), nil
}

// RequeueRun puts a claimed run back to pending, e.g. when its artifact path
// is locked by a concurrent run.
func (db *DB) RequeueRun(ctx context.Context, id string) error {
	_, err := db.Exec(ctx,
		`UPDATE search_runs SET status = 'pending', started_at = NULL WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to requeue run: %w", err)
	}
	return nil
}

// CompleteRun records a finished run along with its diagnostics payload.
func (db *DB) CompleteRun(ctx context.Context, id string, status RunStatus, report *models.SearchReport, runErr error) error {
	var (
		supplierCount int
		degraded      bool
		artifact      sql.NullString
		diagnostics   []byte
	)

	if report != nil {
		supplierCount = report.SupplierCount()
		degraded = report.Degraded
		if report.ArtifactPath != "" {
			artifact = sql.NullString{String: report.ArtifactPath, Valid: true}
		}
		if len(report.Diagnostics) > 0 {
			var err error
			diagnostics, err = json.Marshal(report.Diagnostics)
			if err != nil {
				return fmt.Errorf("failed to marshal diagnostics: %w", err)
			}
		}
	}

	var errMsg sql.NullString
	if runErr != nil {
		errMsg = sql.NullString{String: runErr.Error(), Valid: true}
	}

	query := `
		UPDATE search_runs SET
			status = $2,
			supplier_count = $3,
			degraded = $4,
			artifact_path = $5,
			error_message = $6,
			diagnostics = $7,
			completed_at = NOW()
		WHERE id = $1`

	_, err := db.Exec(ctx, query, id, status, supplierCount, degraded, artifact, errMsg, diagnostics)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// InsertSuppliers stores one run's extracted records in listing order.
func (db *DB) InsertSuppliers(ctx context.Context, runID string, suppliers []models.Supplier) error {
	if len(suppliers) == 0 {
		return nil
	}

	return db.WithTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO suppliers
			(run_id, position, company, location, gold_years, rating, reviews, metrics, main_products, featured_products)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

		for i, s := range suppliers {
			metrics, err := json.Marshal(s.Metrics)
			if err != nil {
				return fmt.Errorf("failed to marshal metrics: %w", err)
			}
			mainProducts, err := json.Marshal(s.MainProducts)
			if err != nil {
				return fmt.Errorf("failed to marshal main products: %w", err)
			}
			featured, err := json.Marshal(s.FeaturedProducts)
			if err != nil {
				return fmt.Errorf("failed to marshal featured products: %w", err)
			}

			_, err = tx.Exec(ctx, query,
				runID, i, s.Company, s.Location, s.GoldYears, s.Rating, s.Reviews,
				metrics, mainProducts, featured)
			if err != nil {
				return fmt.Errorf("failed to insert supplier: %w", err)
			}
		}
		return nil
	})
}

func (db *DB) GetSearchRun(ctx context.Context, id string) (*SearchRun, error) {
	query := `
		SELECT id, image_path, status, supplier_count, degraded,
		       artifact_path, error_message, diagnostics, created_at, started_at, completed_at
		FROM search_runs
		WHERE id = $1`

	var run SearchRun
	var diagnostics []byte
	err := db.QueryRow(ctx, query, id).Scan(
		&run.ID, &run.ImagePath, &run.Status, &run.SupplierCount, &run.Degraded,
		&run.ArtifactPath, &run.ErrorMessage, &diagnostics, &run.CreatedAt, &run.StartedAt, &run.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get search run: %w", err)
	}

	if len(diagnostics) > 0 {
		if err := json.Unmarshal(diagnostics, &run.Diagnostics); err != nil {
			return nil, fmt.Errorf("failed to unmarshal diagnostics: %w", err)
		}
	}
	return &run, nil
}

func (db *DB) ListSearchRuns(ctx context.Context, limit int) ([]*SearchRun, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, image_path, status, supplier_count, degraded,
		       artifact_path, error_message, created_at, started_at, completed_at
		FROM search_runs
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list search runs: %w", err)
	}
	defer rows.Close()

	var runs []*SearchRun
	for rows.Next() {
		var run SearchRun
		if err := rows.Scan(
			&run.ID, &run.ImagePath, &run.Status, &run.SupplierCount, &run.Degraded,
			&run.ArtifactPath, &run.ErrorMessage, &run.CreatedAt, &run.StartedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan search run: %w", err)
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// GetRunSuppliers returns one run's records in listing order.
func (db *DB) GetRunSuppliers(ctx context.Context, runID string) ([]models.Supplier, error) {
	query := `
		SELECT company, location, gold_years, rating, reviews, metrics, main_products, featured_products
		FROM suppliers
		WHERE run_id = $1
		ORDER BY position`

	rows, err := db.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query suppliers: %w", err)
	}
	defer rows.Close()

	suppliers := make([]models.Supplier, 0)
	for rows.Next() {
		var (
			s        models.Supplier
			metrics  []byte
			main     []byte
			featured []byte
		)
		if err := rows.Scan(&s.Company, &s.Location, &s.GoldYears, &s.Rating, &s.Reviews,
			&metrics, &main, &featured); err != nil {
			return nil, fmt.Errorf("failed to scan supplier: %w", err)
		}
		if err := json.Unmarshal(metrics, &s.Metrics); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metrics: %w", err)
		}
		if err := json.Unmarshal(main, &s.MainProducts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal main products: %w", err)
		}
		if err := json.Unmarshal(featured, &s.FeaturedProducts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal featured products: %w", err)
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}
