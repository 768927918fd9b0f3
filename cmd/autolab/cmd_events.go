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
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AutoLabAI/AutoLabDrive/services/research/storage"
)

var (
	eventsDBPath  string
	eventsDataset string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List events in a dataset",
	RunE:  runEventsCommand,
}

func init() {
	eventsCmd.Flags().StringVar(&eventsDBPath, "db", "./data/research", "BadgerDB directory")
	eventsCmd.Flags().StringVar(&eventsDataset, "dataset", "demo", "Dataset to list")
	rootCmd.AddCommand(eventsCmd)
}

func runEventsCommand(_ *cobra.Command, _ []string) error {
	store, err := openStore(eventsDBPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	events, err := store.ListEvents(eventsDataset)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	if len(events) == 0 {
		fmt.Printf("no events in dataset %s\n", eventsDataset)
		return nil
	}

	for _, event := range events {
		analyzed := " "
		if _, err := store.AnalysisByEvent(event.ID); err == nil {
			analyzed = "*"
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		fmt.Printf("%s %s  %-15s %-6s %s\n",
			analyzed, event.ID, event.EventType, event.Severity, event.Description)
	}
	fmt.Printf("%d events (* = analyzed)\n", len(events))
	return nil
}
