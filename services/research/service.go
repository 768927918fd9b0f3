// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package research

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"

	"github.com/AutoLabAI/AutoLabDrive/services/llm"
	"github.com/AutoLabAI/AutoLabDrive/services/research/content"
	"github.com/AutoLabAI/AutoLabDrive/services/research/params"
	"github.com/AutoLabAI/AutoLabDrive/services/research/routes"
	"github.com/AutoLabAI/AutoLabDrive/services/research/storage"
	"github.com/AutoLabAI/AutoLabDrive/services/research/telemetry"
)

// ServiceConfig holds everything needed to stand the engine up as an
// HTTP service.
type ServiceConfig struct {
	// HTTPAddr is the listen address, e.g. ":8080".
	HTTPAddr string

	// DBPath is the BadgerDB directory. Ignored when InMemoryDB is set.
	DBPath     string
	InMemoryDB bool

	// ParamsPath optionally points at a YAML tuning file. Empty means
	// built-in defaults. When set, the file is watched and edits apply
	// to subsequent analyses without a restart.
	ParamsPath string

	// Producer selects the paper source: "corpus" (default,
	// deterministic built-in) or "llm".
	Producer string

	// LLMBackend selects the llm.Client when Producer is "llm".
	LLMBackend string

	// LLMRequestsPerSecond rate-limits the LLM producer.
	LLMRequestsPerSecond float64

	Telemetry telemetry.Config

	// Logger for the service and engine. Nil means slog.Default().
	Logger *slog.Logger
}

// DefaultServiceConfig returns development defaults: local BadgerDB,
// built-in corpus, built-in tuning parameters.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		HTTPAddr:             ":8080",
		DBPath:               "./data/research",
		Producer:             "corpus",
		LLMBackend:           "mock",
		LLMRequestsPerSecond: 2,
		Telemetry:            telemetry.DefaultConfig(),
	}
}

// Service is the research engine wired up as an HTTP server.
type Service struct {
	cfg    ServiceConfig
	logger *slog.Logger

	store     *storage.Store
	paramsSrc *params.Source
	engine    *Engine
	router    *gin.Engine

	telemetryShutdown func(context.Context) error
}

// NewService builds a fully wired service: telemetry, storage (with
// genome seeding), tuning parameters, the paper producer, the engine,
// and the HTTP routes. Call Run to serve.
func NewService(ctx context.Context, cfg ServiceConfig) (*Service, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	telemetryShutdown, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}
	metrics, err := telemetry.NewMetrics(otel.Meter("research-engine"))
	if err != nil {
		return nil, fmt.Errorf("create metrics: %w", err)
	}

	storeCfg := storage.DefaultConfig(cfg.DBPath)
	if cfg.InMemoryDB {
		storeCfg = storage.InMemoryConfig()
	}
	storeCfg.Logger = logger
	store, err := storage.Open(storeCfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := store.SeedGenomes(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("seed genomes: %w", err)
	}

	paramsSrc := params.NewSource(params.Defaults())
	if cfg.ParamsPath != "" {
		paramsSrc, err = params.NewFileSource(cfg.ParamsPath)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("load params %s: %w", cfg.ParamsPath, err)
		}
	}

	producer, err := buildProducer(cfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	engine := NewEngine(store, producer, paramsSrc, logger, metrics)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))

	svc := &Service{
		cfg:               cfg,
		logger:            logger,
		store:             store,
		paramsSrc:         paramsSrc,
		engine:            engine,
		router:            router,
		telemetryShutdown: telemetryShutdown,
	}
	return svc, nil
}

func buildProducer(cfg ServiceConfig) (content.Producer, error) {
	switch cfg.Producer {
	case "", "corpus":
		return content.NewCorpusProducer(), nil
	case "llm":
		client, err := llm.New(cfg.LLMBackend)
		if err != nil {
			return nil, fmt.Errorf("create llm client: %w", err)
		}
		return content.NewLLMProducer(client, cfg.LLMRequestsPerSecond), nil
	default:
		return nil, fmt.Errorf("unknown producer %q", cfg.Producer)
	}
}

// Engine exposes the analysis engine, mainly for the CLI and tests.
func (s *Service) Engine() *Engine { return s.engine }

// Router exposes the configured gin router for tests.
func (s *Service) Router() *gin.Engine { return s.router }

// Run registers routes and serves HTTP until ctx is canceled, then
// shuts everything down in order: HTTP server, parameter watcher,
// store, telemetry.
func (s *Service) Run(ctx context.Context) error {
	routes.SetupRoutes(s.router, s.engine, s.store)

	if s.cfg.ParamsPath != "" {
		go func() {
			if err := s.paramsSrc.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error("params watcher stopped", "error", err)
			}
		}()
	}

	server := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("research service listening", "addr", s.cfg.HTTPAddr)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		_ = s.close(context.Background())
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("http shutdown failed", "error", err)
	}
	return s.close(shutdownCtx)
}

func (s *Service) close(ctx context.Context) error {
	var errs []error
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	if s.telemetryShutdown != nil {
		if err := s.telemetryShutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown telemetry: %w", err))
		}
	}
	return errors.Join(errs...)
}
