package parser

import (
	"strings"

	"github.com/autosource/supplier-scout/internal/dom"
	"github.com/autosource/supplier-scout/internal/models"
)

// SampleDiagnostics captures the class attribute and a truncated flattened
// text sample of the first broad container elements on the page. The sample
// accompanies every zero-card outcome so a caller can tell "no suppliers
// exist" apart from "the selectors no longer match".
func (e *Extractor) SampleDiagnostics(root dom.Element) []models.DiagnosticSample {
	candidates := root.FindAll(e.selectors.DiagnosticCandidates)
	if len(candidates) > e.maxDiagnostics {
		candidates = candidates[:e.maxDiagnostics]
	}

	samples := make([]models.DiagnosticSample, 0, len(candidates))
	for _, candidate := range candidates {
		samples = append(samples, models.DiagnosticSample{
			Class:      candidate.Attr("class"),
			TextSample: flatten(candidate.Text(), e.diagnosticChars),
		})
	}
	return samples
}

func flatten(text string, limit int) string {
	flat := strings.Join(strings.Fields(text), " ")
	runes := []rune(flat)
	if len(runes) > limit {
		return string(runes[:limit])
	}
	return flat
}
