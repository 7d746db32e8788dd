package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/autosource/supplier-scout/internal/parser"
)

// Parses a saved results-page snapshot into supplier JSON. Useful for
// checking extraction selectors against captured HTML without a browser:
// parse-snapshot results.html
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: parse-snapshot <results.html>")
		os.Exit(2)
	}

	html, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read snapshot: %v\n", err)
		os.Exit(1)
	}

	extractor := parser.NewExtractor(parser.ExtractorOptions{
		Selectors: parser.DefaultSelectors(),
	}, logger)

	suppliers, diagnostics, err := extractor.ExtractResultsHTML(string(html))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse snapshot: %v\n", err)
		os.Exit(1)
	}

	out := map[string]interface{}{
		"suppliers": suppliers,
	}
	if len(diagnostics) > 0 {
		out["diagnostics"] = diagnostics
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode output: %v\n", err)
		os.Exit(1)
	}
}
