package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"recipebox/internal/config"
	"recipebox/internal/drafts"
	"recipebox/internal/extract"
	"recipebox/internal/formats"
	server "recipebox/internal/http"
	"recipebox/internal/jobs"
	"recipebox/internal/llm"
	"recipebox/internal/migrate"
	"recipebox/internal/photos"
	"recipebox/internal/scraper"
	"recipebox/internal/secrets"
	"recipebox/internal/services"
	"recipebox/internal/store"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg := config.Load(*configPath)
	logger := newLogger(cfg.Logging)

	// Run migrations on a short-lived connection
	if err := migrate.Run(cfg.Database.DSN); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	// Create a shared *sql.DB with pooling for the Store
	db, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("open db failed: %v", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	defer db.Close()

	st := store.New(db)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := &server.Deps{
		Recipes: st,
		Keys:    secrets.NewProvider(cfg),
	}

	var draftStore services.DraftStore
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("invalid redis url: %v", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()

		ds := drafts.New(rdb, time.Duration(cfg.Drafts.TTLMinutes)*time.Minute)
		deps.Redis = rdb
		deps.Drafts = ds
		draftStore = ds
	}

	var photoArchive services.PhotoArchive
	archive, err := photos.New(rootCtx, cfg.Storage.S3)
	if err != nil {
		log.Fatalf("photo archive setup failed: %v", err)
	}
	if archive != nil {
		deps.Photos = archive
		photoArchive = archive
	}

	client, provider, model, err := llm.NewClientFromConfig(cfg, logger)
	if err != nil {
		log.Fatalf("llm setup failed: %v", err)
	}
	logger.Info("llm_configured", "provider", provider, "model", model)

	pageFormat, err := formats.ParsePageFormat(cfg.Extract.PageFormat)
	if err != nil {
		log.Fatalf("invalid extract.pageFormat: %v", err)
	}

	fetchOpts := scraper.Options{
		UserAgent:      cfg.Scraper.UserAgent,
		AcceptLanguage: cfg.Scraper.AcceptLanguage,
		Timeout:        time.Duration(cfg.Scraper.TimeoutMs) * time.Millisecond,
		MaxRedirects:   cfg.Scraper.MaxRedirects,
		MaxBodyBytes:   cfg.Scraper.MaxBodyBytes,
		RespectRobots:  cfg.Robots.Respect,
		Logger:         logger,
	}

	importerOpts := services.ImporterOptions{
		Extractor:    extract.NewService(client, logger),
		Fetcher:      scraper.NewHTTPFetcher(fetchOpts),
		Photos:       photoArchive,
		Log:          st,
		Drafts:       draftStore,
		PageFormat:   pageFormat,
		MaxPageChars: cfg.Extract.MaxPageChars,
		Logger:       logger,
	}
	if cfg.Rod.Enabled {
		importerOpts.Browser = scraper.NewBrowserFetcher(cfg.Rod.BrowserURL, fetchOpts.Timeout, cfg.Scraper.UserAgent)
	}

	deps.Importer = services.NewImporter(importerOpts)
	deps.Planner = services.NewMealPlanner(st, st)

	go jobs.NewRunner(cfg, st, logger).Start(rootCtx)

	s := server.NewServer(cfg, deps, logger)

	go func() {
		<-rootCtx.Done()
		logger.Info("server_shutting_down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(ctx); err != nil {
			logger.Error("server_shutdown_failed", "error", err)
		}
	}()

	if err := s.Listen(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("server failed: %v", err)
	}
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.Format) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
