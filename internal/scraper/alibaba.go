package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/autosource/supplier-scout/internal/browser"
	"github.com/autosource/supplier-scout/internal/dom"
	"github.com/autosource/supplier-scout/internal/models"
	"github.com/autosource/supplier-scout/internal/parser"
	"github.com/autosource/supplier-scout/internal/ratelimit"
)

// Controls names the page controls the pipeline must operate. Each has a
// primary selector and a fallback; when neither resolves the control's stage
// fails. Like the extraction selectors, these are markup-tracking
// configuration.
type Controls struct {
	ImageSearchTrigger         string
	ImageSearchTriggerFallback string
	FileInput                  string
	FileInputFallback          string
	SuppliersTab               string
	SuppliersTabFallback       string
}

func DefaultControls() Controls {
	return Controls{
		ImageSearchTrigger:         "@data-search=switch-image-upload",
		ImageSearchTriggerFallback: ".header-tab-switch-image-upload-multi",
		FileInput:                  ".upload-file",
		FileInputFallback:          "@name=image-search-upload",
		SuppliersTab:               "@dot-params:area=suppliers",
		SuppliersTabFallback:       "text:Suppliers",
	}
}

type Config struct {
	BaseURL            string
	ResultsURLFragment string
	NavigationRetries  int
	ElementTimeout     time.Duration
	ResultsTimeout     time.Duration
	SettleDelay        time.Duration
	Controls           Controls
}

func DefaultConfig() Config {
	return Config{
		BaseURL:            "https://www.alibaba.com",
		ResultsURLFragment: "/search/page?",
		NavigationRetries:  3,
		ElementTimeout:     10 * time.Second,
		ResultsTimeout:     30 * time.Second,
		SettleDelay:        5 * time.Second,
		Controls:           DefaultControls(),
	}
}

// AlibabaScraper sequences one image search run: navigate, trigger the image
// search, upload the file, wait for results, switch to the Suppliers tab,
// extract cards, persist. Navigation and missing required controls are
// fatal; a missing tab, container, or card set degrades the run to an empty
// result with diagnostics. The scraper holds no state between runs.
type AlibabaScraper struct {
	browser   *browser.Browser
	extractor *parser.Extractor
	store     ResultStore
	pacer     ratelimit.Pacer
	logger    *slog.Logger
	cfg       Config
}

func NewAlibabaScraper(b *browser.Browser, e *parser.Extractor, store ResultStore, pacer ratelimit.Pacer, logger *slog.Logger, cfg Config) *AlibabaScraper {
	if pacer == nil {
		pacer = ratelimit.NoopPacer{}
	}
	return &AlibabaScraper{
		browser:   b,
		extractor: e,
		store:     store,
		pacer:     pacer,
		logger:    logger.With("component", "scraper"),
		cfg:       cfg,
	}
}

func (s *AlibabaScraper) Search(ctx context.Context, imagePath string) (*models.SearchReport, error) {
	report := &models.SearchReport{
		ImagePath: imagePath,
		Suppliers: []models.Supplier{},
		StartedAt: time.Now(),
	}

	// Pre-flight, before any browser interaction.
	if err := validateImage(imagePath); err != nil {
		return nil, err
	}

	page, err := s.browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	defer page.Close()

	if err := s.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("opening marketplace", "url", s.cfg.BaseURL)
	if err := s.browser.NavigateWithRetry(page, s.cfg.BaseURL, s.cfg.NavigationRetries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNavigation, err)
	}

	root := dom.PageRoot(page)

	trigger, err := s.locateControl(root, "image search trigger",
		s.cfg.Controls.ImageSearchTrigger, s.cfg.Controls.ImageSearchTriggerFallback)
	if err != nil {
		return nil, err
	}
	if err := trigger.Click(); err != nil {
		return nil, fmt.Errorf("failed to click image search trigger: %w", err)
	}
	sleep(ctx, s.cfg.SettleDelay)

	input, err := s.locateControl(root, "file upload input",
		s.cfg.Controls.FileInput, s.cfg.Controls.FileInputFallback)
	if err != nil {
		return nil, err
	}
	s.logger.Info("uploading search image", "path", imagePath)
	if err := input.SetInputFiles(imagePath); err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	// Results may render in place without the URL ever changing, so a
	// timeout here only reduces confidence.
	if !s.browser.WaitForURLContains(page, s.cfg.ResultsURLFragment, s.cfg.ResultsTimeout) {
		s.logger.Warn("results URL not observed before timeout, proceeding",
			"fragment", s.cfg.ResultsURLFragment)
	}

	if err := s.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	tab := root.Find(s.cfg.Controls.SuppliersTab, s.cfg.ElementTimeout)
	if tab == nil {
		tab = root.Find(s.cfg.Controls.SuppliersTabFallback, s.cfg.ElementTimeout)
	}
	if tab == nil {
		s.logger.Warn("suppliers tab not found, reporting zero results")
		return s.finishDegraded(report, root)
	}
	if control, ok := tab.(dom.Interactive); ok {
		if err := control.Click(); err != nil {
			s.logger.Warn("failed to click suppliers tab", "error", err)
			return s.finishDegraded(report, root)
		}
	}
	sleep(ctx, s.cfg.SettleDelay)

	suppliers, diagnostics := s.extractor.ExtractResults(root)
	if len(diagnostics) > 0 {
		report.Degraded = true
		report.Diagnostics = diagnostics
	}
	if suppliers != nil {
		report.Suppliers = suppliers
	}

	return s.finish(report)
}

// finishDegraded closes out a run that found no extractable results: empty
// supplier list, diagnostic sample, persisted artifact, no error.
func (s *AlibabaScraper) finishDegraded(report *models.SearchReport, root dom.Element) (*models.SearchReport, error) {
	report.Degraded = true
	report.Diagnostics = s.extractor.SampleDiagnostics(root)
	return s.finish(report)
}

func (s *AlibabaScraper) finish(report *models.SearchReport) (*models.SearchReport, error) {
	report.CompletedAt = time.Now()

	location, err := s.store.Persist(report.Suppliers)
	if err != nil {
		// Extraction succeeded, so the caller gets the data alongside
		// the persistence failure.
		return report, fmt.Errorf("%w: %v", ErrPersist, err)
	}
	report.ArtifactPath = location

	s.logger.Info("search run finished",
		"suppliers", len(report.Suppliers),
		"degraded", report.Degraded,
		"artifact", location)
	return report, nil
}

func (s *AlibabaScraper) locateControl(root dom.Element, name, primary, fallback string) (dom.Interactive, error) {
	el := root.Find(primary, s.cfg.ElementTimeout)
	if el == nil && fallback != "" {
		el = root.Find(fallback, s.cfg.ElementTimeout)
	}
	if el == nil {
		return nil, fmt.Errorf("%w: %s", ErrElementNotFound, name)
	}
	control, ok := el.(dom.Interactive)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not interactive", ErrElementNotFound, name)
	}
	return control, nil
}

func validateImage(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrImageNotFound, path)
	}
	if info.IsDir() || info.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrImageNotFound, path)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
