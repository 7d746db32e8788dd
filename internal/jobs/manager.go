package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/autosource/supplier-scout/internal/database"
	"github.com/autosource/supplier-scout/internal/events"
	"github.com/autosource/supplier-scout/internal/models"
	"github.com/autosource/supplier-scout/internal/scraper"
	"github.com/autosource/supplier-scout/internal/store"
)

// RunStore is the slice of the database the manager needs.
type RunStore interface {
	InsertSearchRun(ctx context.Context, run *database.SearchRun) error
	ClaimPendingRun(ctx context.Context) (*database.SearchRun, error)
	RequeueRun(ctx context.Context, id string) error
	RequeueInterruptedRuns(ctx context.Context) (int64, error)
	CompleteRun(ctx context.Context, id string, status database.RunStatus, report *models.SearchReport, runErr error) error
	InsertSuppliers(ctx context.Context, runID string, suppliers []models.Supplier) error
	GetSearchRun(ctx context.Context, id string) (*database.SearchRun, error)
	ListSearchRuns(ctx context.Context, limit int) ([]*database.SearchRun, error)
	GetRunSuppliers(ctx context.Context, runID string) ([]models.Supplier, error)
}

// Manager owns the search-run queue: the API inserts pending runs, a single
// worker claims and executes them one at a time. One worker per process keeps
// the one-session-per-run, serialized-artifact-write model intact.
type Manager struct {
	db           RunStore
	searcher     scraper.Searcher
	lock         *store.RunLock
	publisher    *events.Publisher
	logger       *slog.Logger
	artifactPath string
	pollInterval time.Duration
	runTimeout   time.Duration
}

type ManagerOptions struct {
	ArtifactPath string
	PollInterval time.Duration
	RunTimeout   time.Duration
}

func NewManager(db RunStore, searcher scraper.Searcher, lock *store.RunLock, publisher *events.Publisher, logger *slog.Logger, opts ManagerOptions) *Manager {
	if opts.PollInterval == 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.RunTimeout == 0 {
		opts.RunTimeout = 10 * time.Minute
	}
	return &Manager{
		db:           db,
		searcher:     searcher,
		lock:         lock,
		publisher:    publisher,
		logger:       logger.With("component", "job_manager"),
		artifactPath: opts.ArtifactPath,
		pollInterval: opts.PollInterval,
		runTimeout:   opts.RunTimeout,
	}
}

// CreateRun queues a search run for the worker.
func (m *Manager) CreateRun(ctx context.Context, imagePath string) (*database.SearchRun, error) {
	if imagePath == "" {
		return nil, fmt.Errorf("image path is required")
	}

	run := &database.SearchRun{
		ID:        uuid.New().String(),
		ImagePath: imagePath,
		Status:    database.RunPending,
		CreatedAt: time.Now(),
	}

	if err := m.db.InsertSearchRun(ctx, run); err != nil {
		return nil, err
	}

	m.logger.Info("search run queued", "id", run.ID, "image", imagePath)
	return run, nil
}

func (m *Manager) GetRun(ctx context.Context, id string) (*database.SearchRun, error) {
	return m.db.GetSearchRun(ctx, id)
}

func (m *Manager) ListRuns(ctx context.Context, limit int) ([]*database.SearchRun, error) {
	return m.db.ListSearchRuns(ctx, limit)
}

func (m *Manager) RunSuppliers(ctx context.Context, runID string) ([]models.Supplier, error) {
	return m.db.GetRunSuppliers(ctx, runID)
}
