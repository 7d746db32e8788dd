package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"github.com/autosource/supplier-scout/internal/api"
	"github.com/autosource/supplier-scout/internal/browser"
	"github.com/autosource/supplier-scout/internal/config"
	"github.com/autosource/supplier-scout/internal/database"
	"github.com/autosource/supplier-scout/internal/events"
	"github.com/autosource/supplier-scout/internal/jobs"
	"github.com/autosource/supplier-scout/internal/parser"
	"github.com/autosource/supplier-scout/internal/ratelimit"
	"github.com/autosource/supplier-scout/internal/scraper"
	"github.com/autosource/supplier-scout/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(ctx, database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.Name,
		SSLMode:  cfg.Database.SSLMode,
		MaxConns: cfg.Database.MaxConns,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}

	var session browser.SessionStore = browser.NoopSession{}
	if cfg.Browser.SessionPath != "" {
		fileSession, err := browser.NewFileSession(cfg.Browser.SessionPath)
		if err != nil {
			logger.Error("failed to set up session store", "error", err)
			os.Exit(1)
		}
		session = fileSession
	}

	b, err := browser.New(&browser.Options{
		Headless:       cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		UserAgent:      browser.DefaultOptions().UserAgent,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		AcceptLanguage: cfg.Browser.AcceptLanguage,
		TimezoneID:     cfg.Browser.TimezoneID,
		Locale:         cfg.Browser.Locale,
		ProxyServer:    cfg.Browser.ProxyServer,
		Session:        session,
	})
	if err != nil {
		logger.Error("failed to initialize browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	resultStore, err := store.NewJSONStore(cfg.Search.ArtifactPath)
	if err != nil {
		logger.Error("failed to set up result store", "error", err)
		os.Exit(1)
	}

	extractor := parser.NewExtractor(parser.ExtractorOptions{
		Selectors:        parser.DefaultSelectors(),
		ContainerTimeout: cfg.Search.ElementTimeout,
	}, logger)

	pacer := ratelimit.NewRandomPacer(cfg.Search.PaceMin, cfg.Search.PaceMax)

	searchCfg := scraper.DefaultConfig()
	searchCfg.BaseURL = cfg.Search.BaseURL
	searchCfg.ResultsURLFragment = cfg.Search.ResultsURLFragment
	searchCfg.NavigationRetries = cfg.Search.NavigationRetries
	searchCfg.ElementTimeout = cfg.Search.ElementTimeout
	searchCfg.ResultsTimeout = cfg.Search.ResultsTimeout
	searchCfg.SettleDelay = cfg.Search.SettleDelay

	searcher := scraper.NewAlibabaScraper(b, extractor, resultStore, pacer, logger, searchCfg)

	runLock := store.NewRunLock(redisClient, cfg.Redis.LockTTL)
	publisher := events.NewPublisher(redisClient, cfg.Redis.Stream, logger)

	manager := jobs.NewManager(db, searcher, runLock, publisher, logger, jobs.ManagerOptions{
		ArtifactPath: cfg.Search.ArtifactPath,
		PollInterval: cfg.Search.WorkerPollInterval,
		RunTimeout:   cfg.Search.RunTimeout,
	})
	go manager.StartWorker(ctx)

	handlers := api.NewHandlers(manager, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	handlers.Routes(r)

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
