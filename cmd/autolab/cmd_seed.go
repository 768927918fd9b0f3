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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AutoLabAI/AutoLabDrive/services/research/storage"
)

var (
	seedDBPath  string
	seedDataset string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed founding genomes and demo events",
	Long: `Installs the v0.1 strategy genome for any lab missing one and inserts
a small set of representative driving events into the given dataset.

Safe to repeat: existing genomes are never touched.`,
	RunE: runSeedCommand,
}

func init() {
	seedCmd.Flags().StringVar(&seedDBPath, "db", "./data/research", "BadgerDB directory")
	seedCmd.Flags().StringVar(&seedDataset, "dataset", "demo", "Dataset for demo events")
	rootCmd.AddCommand(seedCmd)
}

func runSeedCommand(_ *cobra.Command, _ []string) error {
	store, err := openStore(seedDBPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.SeedGenomes(); err != nil {
		return fmt.Errorf("seed genomes: %w", err)
	}
	events, err := store.SeedDemoEvents(seedDataset)
	if err != nil {
		return fmt.Errorf("seed demo events: %w", err)
	}

	logger.Info("seeding complete", "dataset", seedDataset, "events", len(events))
	for _, event := range events {
		fmt.Printf("%s  %-15s %-6s %s\n", event.ID, event.EventType, event.Severity, event.Description)
	}
	return nil
}

func openStore(path string) (*storage.Store, error) {
	cfg := storage.DefaultConfig(path)
	cfg.Logger = logger.Slog()
	store, err := storage.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store at %s: %w", path, err)
	}
	return store, nil
}
