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

	"github.com/AutoLabAI/AutoLabDrive/services/research/datatypes"
)

var (
	genomesDBPath string
	genomesLab    string
)

var genomesCmd = &cobra.Command{
	Use:   "genomes",
	Short: "Show strategy genome lineages",
	Long: `Shows each lab's genome versions, oldest first, with parent links and
change descriptions. Restrict to one lab with --lab.`,
	RunE: runGenomesCommand,
}

func init() {
	genomesCmd.Flags().StringVar(&genomesDBPath, "db", "./data/research", "BadgerDB directory")
	genomesCmd.Flags().StringVar(&genomesLab, "lab", "", "Limit to one lab (SafetyLab or PerformanceLab)")
	rootCmd.AddCommand(genomesCmd)
}

func runGenomesCommand(_ *cobra.Command, _ []string) error {
	labs := datatypes.LabNames()
	if genomesLab != "" {
		if !datatypes.ValidLabName(genomesLab) {
			return fmt.Errorf("unknown lab %q", genomesLab)
		}
		labs = []string{genomesLab}
	}

	store, err := openStore(genomesDBPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	for _, lab := range labs {
		history, err := store.GenomeHistory(lab)
		if err != nil {
			return fmt.Errorf("history for %s: %w", lab, err)
		}
		fmt.Printf("%s (%d versions)\n", lab, len(history))
		for _, genome := range history {
			marker := " "
			if genome.Active {
				marker = "*"
			}
			parent := genome.ParentVersion
			if parent == "" {
				parent = "-"
			}
			fmt.Printf("  %s %-7s parent=%-7s %s\n",
				marker, genome.Version, parent, genome.ChangeDescription)
		}
	}
	return nil
}
