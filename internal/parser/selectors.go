package parser

// Selectors holds every extraction selector. The defaults match the current
// Alibaba supplier-results markup; the obfuscated class names rotate with
// frontend deployments, so all of them are configuration rather than code.
type Selectors struct {
	ResultsContainer string
	SupplierCard     string

	CompanyName         string
	CompanyNameFallback string
	Location            string

	GoldYearsScoped string
	GoldYearsBadge  string
	GoldYearsAttr   string

	Rating  string
	Reviews string

	MetricItem  string
	MetricLabel string
	MetricValue string

	MainProduct     string
	FeaturedProduct string
	ProductPrice    string
	ProductMinOrder string

	DiagnosticCandidates string
}

func DefaultSelectors() Selectors {
	return Selectors{
		ResultsContainer: "tag:section@class=content",
		SupplierCard:     "@class:wYFEM REIxN",

		CompanyName:         ".iedPc",
		CompanyNameFallback: "h2",
		Location:            ".qoCWI",

		GoldYearsScoped: `[data-supplier-card-gold-years="true"] .WDsPi`,
		GoldYearsBadge:  ".WDsPi",
		GoldYearsAttr:   "data-supplier-card-gold-years",

		Rating:  ".Y5RD3",
		Reviews: ".x4t8m",

		MetricItem:  ".DuZLU",
		MetricLabel: ".VwglV",
		MetricValue: ".WgQ0R",

		MainProduct:     ".u_FeO",
		FeaturedProduct: ".Jzokh",
		ProductPrice:    ".mNSbN",
		ProductMinOrder: ".XYw8w",

		DiagnosticCandidates: "section, div",
	}
}
