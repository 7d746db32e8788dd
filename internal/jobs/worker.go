package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/autosource/supplier-scout/internal/database"
	"github.com/autosource/supplier-scout/internal/models"
	"github.com/autosource/supplier-scout/internal/store"
)

// StartWorker claims and executes pending runs until ctx is cancelled.
func (m *Manager) StartWorker(ctx context.Context) {
	m.logger.Info("run worker started", "poll_interval", m.pollInterval)

	// Runs left in running state belong to a previous process; put them
	// back in the queue before claiming anything.
	if requeued, err := m.db.RequeueInterruptedRuns(ctx); err != nil {
		m.logger.Error("failed to requeue interrupted runs", "error", err)
	} else if requeued > 0 {
		m.logger.Info("requeued interrupted runs", "count", requeued)
	}

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("run worker stopping")
			return
		case <-ticker.C:
			m.processNextRun(ctx)
		}
	}
}

func (m *Manager) processNextRun(ctx context.Context) {
	run, err := m.db.ClaimPendingRun(ctx)
	if err != nil {
		if !errors.Is(err, database.ErrRunNotFound) {
			m.logger.Error("failed to claim pending run", "error", err)
		}
		return
	}

	m.logger.Info("processing search run", "id", run.ID, "image", run.ImagePath)

	// Bookkeeping must land even when shutdown cancels ctx mid-run, or the
	// row stays running until the next process start.
	bookCtx := context.WithoutCancel(ctx)

	release, err := m.lock.Acquire(ctx, m.artifactPath, run.ID)
	if err != nil {
		if errors.Is(err, store.ErrLocked) {
			m.logger.Info("artifact path locked, requeueing run", "id", run.ID)
			if err := m.db.RequeueRun(bookCtx, run.ID); err != nil {
				m.logger.Error("failed to requeue run", "id", run.ID, "error", err)
			}
			return
		}
		m.logger.Error("failed to acquire run lock", "id", run.ID, "error", err)
		m.failRun(bookCtx, run.ID, nil, err)
		return
	}
	defer release()

	runCtx, cancel := context.WithTimeout(ctx, m.runTimeout)
	defer cancel()

	report, err := m.searcher.Search(runCtx, run.ImagePath)
	if err != nil {
		m.logger.Error("search run failed", "id", run.ID, "error", err)
		m.failRun(bookCtx, run.ID, report, err)
		return
	}

	if report != nil {
		report.RunID = run.ID
	}

	status := database.RunCompleted
	if report.Degraded {
		status = database.RunDegraded
	}

	if err := m.db.InsertSuppliers(bookCtx, run.ID, report.Suppliers); err != nil {
		m.logger.Error("failed to store suppliers", "id", run.ID, "error", err)
	}
	if err := m.db.CompleteRun(bookCtx, run.ID, status, report, nil); err != nil {
		m.logger.Error("failed to mark run complete", "id", run.ID, "error", err)
	}
	m.publish(bookCtx, run.ID, string(status), report)

	m.logger.Info("search run finished",
		"id", run.ID,
		"status", status,
		"suppliers", report.SupplierCount())
}

func (m *Manager) failRun(ctx context.Context, runID string, report *models.SearchReport, runErr error) {
	if err := m.db.CompleteRun(ctx, runID, database.RunFailed, report, runErr); err != nil {
		m.logger.Error("failed to mark run failed", "id", runID, "error", err)
	}
	m.publish(ctx, runID, string(database.RunFailed), report)
}

func (m *Manager) publish(ctx context.Context, runID, status string, report *models.SearchReport) {
	if m.publisher == nil {
		return
	}
	if err := m.publisher.RunFinished(ctx, runID, status, report); err != nil {
		m.logger.Warn("failed to publish run event", "id", runID, "error", err)
	}
}
