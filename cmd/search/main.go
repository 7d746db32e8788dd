package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/autosource/supplier-scout/internal/browser"
	"github.com/autosource/supplier-scout/internal/config"
	"github.com/autosource/supplier-scout/internal/parser"
	"github.com/autosource/supplier-scout/internal/ratelimit"
	"github.com/autosource/supplier-scout/internal/scraper"
	"github.com/autosource/supplier-scout/internal/store"
)

// One-shot search run without the API server: search -image product.jpg
// -out suppliers_data.json
func main() {
	imagePath := flag.String("image", "", "path to the search image")
	outPath := flag.String("out", "", "artifact path (defaults to SEARCH_ARTIFACT_PATH)")
	headless := flag.Bool("headless", true, "run the browser headless")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if *imagePath == "" {
		fmt.Fprintln(os.Stderr, "usage: search -image <path> [-out <path>] [-headless=false]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *outPath == "" {
		*outPath = cfg.Search.ArtifactPath
	}

	opts := browser.DefaultOptions()
	opts.Headless = *headless
	opts.Timeout = cfg.Browser.Timeout
	if cfg.Browser.SessionPath != "" {
		session, err := browser.NewFileSession(cfg.Browser.SessionPath)
		if err != nil {
			logger.Error("failed to set up session store", "error", err)
			os.Exit(1)
		}
		opts.Session = session
	}

	b, err := browser.New(opts)
	if err != nil {
		logger.Error("failed to initialize browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	resultStore, err := store.NewJSONStore(*outPath)
	if err != nil {
		logger.Error("failed to set up result store", "error", err)
		os.Exit(1)
	}

	extractor := parser.NewExtractor(parser.ExtractorOptions{
		Selectors:        parser.DefaultSelectors(),
		ContainerTimeout: cfg.Search.ElementTimeout,
	}, logger)

	searchCfg := scraper.DefaultConfig()
	searchCfg.BaseURL = cfg.Search.BaseURL
	searchCfg.ResultsURLFragment = cfg.Search.ResultsURLFragment
	searchCfg.NavigationRetries = cfg.Search.NavigationRetries
	searchCfg.ElementTimeout = cfg.Search.ElementTimeout
	searchCfg.ResultsTimeout = cfg.Search.ResultsTimeout
	searchCfg.SettleDelay = cfg.Search.SettleDelay

	pacer := ratelimit.NewRandomPacer(cfg.Search.PaceMin, cfg.Search.PaceMax)
	searcher := scraper.NewAlibabaScraper(b, extractor, resultStore, pacer, logger, searchCfg)

	report, err := searcher.Search(context.Background(), *imagePath)
	if err != nil {
		logger.Error("search failed", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(report); err != nil {
		logger.Error("failed to print report", "error", err)
		os.Exit(1)
	}
}
