package events

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/autosource/supplier-scout/internal/models"
)

// RedisClient is the subset of redis used for publishing (narrowed for
// testing).
type RedisClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
}

// Publisher emits run lifecycle events to a redis stream so downstream
// consumers (dashboards, exporters) can react without polling the database.
type Publisher struct {
	client RedisClient
	stream string
	logger *slog.Logger
}

func NewPublisher(client RedisClient, stream string, logger *slog.Logger) *Publisher {
	if stream == "" {
		stream = "supplier-scout:runs"
	}
	return &Publisher{
		client: client,
		stream: stream,
		logger: logger.With("component", "events"),
	}
}

// RunFinished publishes the outcome of one search run. Publishing is best
// effort relative to the run itself; a failure is returned for logging but
// never fails the run.
func (p *Publisher) RunFinished(ctx context.Context, runID, status string, report *models.SearchReport) error {
	values := map[string]interface{}{
		"run_id":      runID,
		"status":      status,
		"finished_at": time.Now().UTC().Format(time.RFC3339),
	}
	if report != nil {
		values["suppliers"] = strconv.Itoa(report.SupplierCount())
		values["degraded"] = strconv.FormatBool(report.Degraded)
		values["artifact_path"] = report.ArtifactPath
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: values,
	}).Err(); err != nil {
		return fmt.Errorf("failed to publish run event: %w", err)
	}

	p.logger.Debug("published run event", "run_id", runID, "status", status)
	return nil
}
