// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/AutoLabAI/AutoLabDrive/pkg/logging"
	"github.com/AutoLabAI/AutoLabDrive/services/research"
)

var (
	serveAddr       string
	serveDBPath     string
	serveParamsPath string
	serveProducer   string
	serveLLMBackend string
	serveLogDir     string
	serveLogJSON    bool
	serveDebug      bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the research engine HTTP service",
	Long: `Starts the HTTP service: event ingestion, analysis, and strategy
inspection endpoints, plus /health and /metrics.

Examples:
  autolab serve
  autolab serve --addr :9000 --db ./data/research
  autolab serve --params ./params.yaml --producer llm --llm openai`,
	RunE: runServeCommand,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "HTTP listen address")
	serveCmd.Flags().StringVar(&serveDBPath, "db", "./data/research", "BadgerDB directory")
	serveCmd.Flags().StringVar(&serveParamsPath, "params", "",
		"Optional YAML tuning file (hot-reloaded on change)")
	serveCmd.Flags().StringVar(&serveProducer, "producer", "corpus",
		"Paper producer: corpus or llm")
	serveCmd.Flags().StringVar(&serveLLMBackend, "llm", "mock",
		"LLM backend when --producer llm: openai or mock")
	serveCmd.Flags().StringVar(&serveLogDir, "log-dir", "",
		"Directory for JSON file logs (disabled when empty)")
	serveCmd.Flags().BoolVar(&serveLogJSON, "log-json", false, "Emit stderr logs as JSON")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable gin debug mode")
	rootCmd.AddCommand(serveCmd)
}

func runServeCommand(cmd *cobra.Command, _ []string) error {
	if serveDebug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	if serveLogDir != "" || serveLogJSON {
		level := logging.LevelInfo
		if serveDebug {
			level = logging.LevelDebug
		}
		logger = logging.New(logging.Config{
			Level:   level,
			LogDir:  serveLogDir,
			Service: "research",
			JSON:    serveLogJSON,
		})
		defer func() { _ = logger.Close() }()
		slog.SetDefault(logger.Slog())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := research.DefaultServiceConfig()
	cfg.HTTPAddr = serveAddr
	cfg.DBPath = serveDBPath
	cfg.ParamsPath = serveParamsPath
	cfg.Producer = serveProducer
	cfg.LLMBackend = serveLLMBackend
	cfg.Logger = logger.Slog()

	svc, err := research.NewService(ctx, cfg)
	if err != nil {
		logger.Error("failed to build service", "error", err)
		return err
	}

	if err := svc.Run(ctx); err != nil &&
		!errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
		logger.Error("service exited", "error", err)
		return err
	}
	logger.Info("service stopped")
	return nil
}
