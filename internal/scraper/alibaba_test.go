package scraper

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autosource/supplier-scout/internal/dom"
	"github.com/autosource/supplier-scout/internal/models"
	"github.com/autosource/supplier-scout/internal/parser"
)

type fakeStore struct {
	persisted []models.Supplier
	calls     int
	err       error
}

func (f *fakeStore) Persist(records []models.Supplier) (string, error) {
	f.calls++
	f.persisted = records
	if f.err != nil {
		return "", f.err
	}
	return "data/suppliers_data.json", nil
}

func newTestScraper(store ResultStore) *AlibabaScraper {
	extractor := parser.NewExtractor(parser.ExtractorOptions{
		Selectors: parser.DefaultSelectors(),
	}, slog.Default())
	return NewAlibabaScraper(nil, extractor, store, nil, slog.Default(), DefaultConfig())
}

func TestSearchRejectsUnusableImage(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.jpg")
	require.NoError(t, os.WriteFile(empty, nil, 0644))

	tests := []struct {
		name string
		path string
	}{
		{name: "nonexistent file", path: filepath.Join(dir, "missing.jpg")},
		{name: "directory instead of file", path: dir},
		{name: "zero-byte file", path: empty},
	}

	store := &fakeStore{}
	s := newTestScraper(store)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := s.Search(context.Background(), tt.path)
			assert.ErrorIs(t, err, ErrImageNotFound)
			assert.Nil(t, report)
		})
	}
	assert.Zero(t, store.calls, "nothing may be persisted when the image is rejected")
}

func TestFinishPersistsAndSetsArtifactPath(t *testing.T) {
	store := &fakeStore{}
	s := newTestScraper(store)

	supplier := models.NewSupplier()
	supplier.Company = "Acme Trading Co."
	report, err := s.finish(&models.SearchReport{Suppliers: []models.Supplier{*supplier}})
	require.NoError(t, err)

	assert.Equal(t, "data/suppliers_data.json", report.ArtifactPath)
	assert.False(t, report.CompletedAt.IsZero())
	require.Len(t, store.persisted, 1)
	assert.Equal(t, "Acme Trading Co.", store.persisted[0].Company)
}

func TestFinishReturnsReportOnPersistFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("disk full")}
	s := newTestScraper(store)

	supplier := models.NewSupplier()
	supplier.Company = "Acme Trading Co."
	report, err := s.finish(&models.SearchReport{Suppliers: []models.Supplier{*supplier}})

	assert.ErrorIs(t, err, ErrPersist)
	require.NotNil(t, report, "extracted data must survive a persistence failure")
	assert.Len(t, report.Suppliers, 1)
	assert.Empty(t, report.ArtifactPath)
}

func TestFinishDegradedSamplesDiagnostics(t *testing.T) {
	store := &fakeStore{}
	s := newTestScraper(store)

	root, err := dom.ParseDocument(
		`<html><body><div class="hero">banner</div><div class="footer">links</div></body></html>`)
	require.NoError(t, err)

	report, err := s.finishDegraded(&models.SearchReport{Suppliers: []models.Supplier{}}, root)
	require.NoError(t, err)

	assert.True(t, report.Degraded)
	assert.NotEmpty(t, report.Diagnostics)
	assert.Empty(t, report.Suppliers)
	assert.Equal(t, 1, store.calls, "a degraded run still persists its empty artifact")
	assert.Empty(t, store.persisted)
}
