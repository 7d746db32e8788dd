package parser

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/autosource/supplier-scout/internal/dom"
	"github.com/autosource/supplier-scout/internal/models"
)

// Extractor converts located supplier cards into records. Every field follows
// the same chain: primary selector, then fallback where one exists, then a
// field-specific default. A missing sub-field never fails a card; only an
// unexpected panic during traversal does, and then only that card is dropped.
type Extractor struct {
	selectors        Selectors
	logger           *slog.Logger
	containerTimeout time.Duration
	maxDiagnostics   int
	diagnosticChars  int
}

type ExtractorOptions struct {
	Selectors        Selectors
	ContainerTimeout time.Duration
	MaxDiagnostics   int
	DiagnosticChars  int
}

func NewExtractor(opts ExtractorOptions, logger *slog.Logger) *Extractor {
	if opts.MaxDiagnostics == 0 {
		opts.MaxDiagnostics = 25
	}
	if opts.DiagnosticChars == 0 {
		opts.DiagnosticChars = 140
	}
	return &Extractor{
		selectors:        opts.Selectors,
		logger:           logger.With("component", "extractor"),
		containerTimeout: opts.ContainerTimeout,
		maxDiagnostics:   opts.MaxDiagnostics,
		diagnosticChars:  opts.DiagnosticChars,
	}
}

// ExtractResults locates the results container and its supplier cards under
// root and extracts a record per card. When the container is missing or no
// cards match, it returns no suppliers plus a diagnostic sample of nearby
// containers so the selectors can be corrected.
func (e *Extractor) ExtractResults(root dom.Element) ([]models.Supplier, []models.DiagnosticSample) {
	var cards []dom.Element
	if container := root.Find(e.selectors.ResultsContainer, e.containerTimeout); container != nil {
		cards = container.FindAll(e.selectors.SupplierCard)
	}

	if len(cards) == 0 {
		e.logger.Warn("no supplier cards found, sampling candidate containers")
		return nil, e.SampleDiagnostics(root)
	}

	e.logger.Info("found supplier cards", "count", len(cards))
	return e.ExtractCards(cards), nil
}

// ExtractResultsHTML runs ExtractResults against a saved page snapshot.
func (e *Extractor) ExtractResultsHTML(html string) ([]models.Supplier, []models.DiagnosticSample, error) {
	root, err := dom.ParseDocument(html)
	if err != nil {
		return nil, nil, err
	}
	suppliers, diagnostics := e.ExtractResults(root)
	return suppliers, diagnostics, nil
}

// ExtractCards extracts a record per card. Cards that fail extraction are
// skipped; the rest of the run continues.
func (e *Extractor) ExtractCards(cards []dom.Element) []models.Supplier {
	suppliers := make([]models.Supplier, 0, len(cards))
	for i, card := range cards {
		supplier, err := e.ExtractCard(card)
		if err != nil {
			e.logger.Warn("skipping supplier card", "index", i, "error", err)
			continue
		}
		suppliers = append(suppliers, *supplier)
	}
	return suppliers
}

// ExtractCard maps one card element to a supplier record.
func (e *Extractor) ExtractCard(card dom.Element) (supplier *models.Supplier, err error) {
	defer func() {
		if r := recover(); r != nil {
			supplier = nil
			err = fmt.Errorf("card extraction panicked: %v", r)
		}
	}()

	supplier = models.NewSupplier()
	supplier.Company = e.textOr(card, e.selectors.CompanyName, e.selectors.CompanyNameFallback, "")
	supplier.Location = e.textOr(card, e.selectors.Location, "", "")
	supplier.GoldYears = e.goldYears(card)
	supplier.Rating = e.textOr(card, e.selectors.Rating, "", "N/A")
	supplier.Reviews = e.textOr(card, e.selectors.Reviews, "", "0")
	supplier.Metrics = e.metrics(card)
	supplier.MainProducts = e.mainProducts(card)
	supplier.FeaturedProducts = e.featuredProducts(card)

	return supplier, nil
}

// goldYears trusts the badge text only when the gold-years marker attribute
// resolves to the literal string "true". Any other value, including absence,
// yields "N/A"; lookalike badges without the marker are never trusted.
func (e *Extractor) goldYears(card dom.Element) string {
	badge := card.Find(e.selectors.GoldYearsScoped, 0)
	if badge == nil {
		badge = card.Find(e.selectors.GoldYearsBadge, 0)
	}
	if badge == nil {
		return "N/A"
	}

	marker := badge.Attr(e.selectors.GoldYearsAttr)
	if marker == "" {
		marker = card.Attr(e.selectors.GoldYearsAttr)
	}
	if marker != "true" {
		return "N/A"
	}

	if text := badge.Text(); text != "" {
		return text
	}
	return "N/A"
}

// metrics collects label/value pairs. An item missing either sub-element is
// skipped outright rather than defaulted.
func (e *Extractor) metrics(card dom.Element) map[string]string {
	metrics := make(map[string]string)
	for _, item := range card.FindAll(e.selectors.MetricItem) {
		label := item.Find(e.selectors.MetricLabel, 0)
		value := item.Find(e.selectors.MetricValue, 0)
		if label == nil || value == nil {
			continue
		}
		metrics[label.Text()] = value.Text()
	}
	return metrics
}

func (e *Extractor) mainProducts(card dom.Element) []string {
	elements := card.FindAll(e.selectors.MainProduct)
	products := make([]string, 0, len(elements))
	for _, el := range elements {
		products = append(products, el.Text())
	}
	return products
}

// featuredProducts keeps an entry only when its price text is non-empty; an
// item without a price is dropped, not emitted with a blank price.
func (e *Extractor) featuredProducts(card dom.Element) []models.FeaturedProduct {
	elements := card.FindAll(e.selectors.FeaturedProduct)
	products := make([]models.FeaturedProduct, 0, len(elements))
	for _, el := range elements {
		price := e.textOr(el, e.selectors.ProductPrice, "", "")
		if price == "" {
			continue
		}
		products = append(products, models.FeaturedProduct{
			Price:    price,
			MinOrder: e.textOr(el, e.selectors.ProductMinOrder, "", ""),
		})
	}
	return products
}

// textOr applies the uniform field chain. The default is used only when no
// element matches; a present element with empty text yields the empty text.
func (e *Extractor) textOr(scope dom.Element, selector, fallback, def string) string {
	el := scope.Find(selector, 0)
	if el == nil && fallback != "" {
		el = scope.Find(fallback, 0)
	}
	if el == nil {
		return def
	}
	return el.Text()
}
