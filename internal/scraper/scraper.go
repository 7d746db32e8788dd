package scraper

import (
	"context"
	"errors"

	"github.com/autosource/supplier-scout/internal/models"
)

// Fatal conditions. Everything else the pipeline can encounter is degraded
// (zero results plus diagnostics) or silent (per-card skip), never an error.
var (
	ErrImageNotFound   = errors.New("image file not found or empty")
	ErrNavigation      = errors.New("marketplace unreachable")
	ErrElementNotFound = errors.New("required page control not found")
	ErrPersist         = errors.New("failed to persist search results")
)

type Searcher interface {
	Search(ctx context.Context, imagePath string) (*models.SearchReport, error)
}

// ResultStore persists one run's records, overwriting any previous artifact.
type ResultStore interface {
	Persist(records []models.Supplier) (string, error)
}
