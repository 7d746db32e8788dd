package models

import (
	"time"
)

// Supplier is one extracted supplier record. Field order matches the
// artifact layout consumed by downstream tooling.
type Supplier struct {
	Company          string            `json:"company"`
	Location         string            `json:"location"`
	GoldYears        string            `json:"gold_years"`
	Rating           string            `json:"rating"`
	Reviews          string            `json:"reviews"`
	Metrics          map[string]string `json:"metrics"`
	MainProducts     []string          `json:"main_products"`
	FeaturedProducts []FeaturedProduct `json:"featured_products"`
}

type FeaturedProduct struct {
	Price    string `json:"price"`
	MinOrder string `json:"min_order"`
}

// DiagnosticSample captures the class attribute and a flattened text sample
// of one candidate container, emitted when no supplier cards were located.
type DiagnosticSample struct {
	Class      string `json:"class"`
	TextSample string `json:"text_sample"`
}

// SearchReport is the outcome of one search run. A degraded run carries an
// empty supplier list plus diagnostics instead of an error.
type SearchReport struct {
	RunID        string             `json:"run_id,omitempty"`
	ImagePath    string             `json:"image_path"`
	Suppliers    []Supplier         `json:"suppliers"`
	Diagnostics  []DiagnosticSample `json:"diagnostics,omitempty"`
	Degraded     bool               `json:"degraded"`
	ArtifactPath string             `json:"artifact_path,omitempty"`
	StartedAt    time.Time          `json:"started_at"`
	CompletedAt  time.Time          `json:"completed_at"`
}

func NewSupplier() *Supplier {
	return &Supplier{
		GoldYears:        "N/A",
		Rating:           "N/A",
		Reviews:          "0",
		Metrics:          make(map[string]string),
		MainProducts:     make([]string, 0),
		FeaturedProducts: make([]FeaturedProduct, 0),
	}
}

func (r *SearchReport) SupplierCount() int {
	return len(r.Suppliers)
}
