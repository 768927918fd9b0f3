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
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AutoLabAI/AutoLabDrive/services/research"
	"github.com/AutoLabAI/AutoLabDrive/services/research/content"
	"github.com/AutoLabAI/AutoLabDrive/services/research/params"
)

var (
	analyzeDBPath     string
	analyzeDataset    string
	analyzeEventID    string
	analyzeParamsPath string
	analyzeJSON       bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the two-lab analysis for one event",
	Long: `Runs both lab pipelines, the judge, and genome evolution for a stored
event, directly against the local database. Idempotent: if the event
was already analyzed, the stored record is shown.

Examples:
  autolab analyze --dataset demo --event 3f6c...
  autolab analyze --dataset demo --event 3f6c... --json`,
	RunE: runAnalyzeCommand,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeDBPath, "db", "./data/research", "BadgerDB directory")
	analyzeCmd.Flags().StringVar(&analyzeDataset, "dataset", "demo", "Dataset the event belongs to")
	analyzeCmd.Flags().StringVar(&analyzeEventID, "event", "", "Event ID to analyze")
	analyzeCmd.Flags().StringVar(&analyzeParamsPath, "params", "", "Optional YAML tuning file")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Output the full analysis as JSON")
	_ = analyzeCmd.MarkFlagRequired("event")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyzeCommand(cmd *cobra.Command, _ []string) error {
	store, err := openStore(analyzeDBPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	if err := store.SeedGenomes(); err != nil {
		return fmt.Errorf("seed genomes: %w", err)
	}

	src := params.NewSource(params.Defaults())
	if analyzeParamsPath != "" {
		if src, err = params.NewFileSource(analyzeParamsPath); err != nil {
			return fmt.Errorf("load params: %w", err)
		}
	}

	engine := research.NewEngine(store, content.NewCorpusProducer(), src, logger.Slog(), nil)
	analysis, err := engine.Analyze(cmd.Context(), analyzeDataset, analyzeEventID)
	if err != nil {
		return fmt.Errorf("analyze event %s: %w", analyzeEventID, err)
	}

	if analyzeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	}

	decision := analysis.JudgeDecision
	fmt.Printf("Analysis %s (event %s)\n", analysis.ID, analysis.EventID)
	fmt.Printf("  Winner:          %s\n", decision.Winner)
	fmt.Printf("  SafetyLab:       %.3f (genome %s)\n", decision.SafetyLabScore, analysis.SafetyGenomeVersion)
	fmt.Printf("  PerformanceLab:  %.3f (genome %s)\n", decision.PerformanceLabScore, analysis.PerformanceGenomeVersion)
	fmt.Printf("  Reasoning:       %s\n", decision.Reasoning)
	if analysis.NewSafetyGenomeVersion != "" {
		fmt.Printf("  SafetyLab evolved to %s\n", analysis.NewSafetyGenomeVersion)
	}
	if analysis.NewPerformanceGenomeVersion != "" {
		fmt.Printf("  PerformanceLab evolved to %s\n", analysis.NewPerformanceGenomeVersion)
	}
	return nil
}
