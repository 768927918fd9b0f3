// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command autolab runs the driving-event research engine.
//
// Usage:
//
//	autolab serve                      # start the HTTP service
//	autolab seed --dataset demo        # seed genomes and demo events
//	autolab events --dataset demo      # list events in a dataset
//	autolab analyze --dataset demo --event <id>
//	autolab genomes --lab SafetyLab    # show a lab's strategy lineage
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AutoLabAI/AutoLabDrive/pkg/logging"
)

var logger *logging.Logger

var rootCmd = &cobra.Command{
	Use:   "autolab",
	Short: "Two-lab research engine for driving events",
	Long: `AutoLab analyzes detected driving events with two competing research
labs, arbitrates their recommendations with a deterministic judge, and
evolves the losing lab's strategy genome after every decisive analysis.`,
	SilenceUsage: true,
}

func main() {
	logger = logging.Default()
	defer func() { _ = logger.Close() }()
	slog.SetDefault(logger.Slog())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
