// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// The two fixed lab identities. Every genome belongs to exactly one.
const (
	SafetyLab      = "SafetyLab"
	PerformanceLab = "PerformanceLab"
)

// LabNames lists the fixed lab identities in canonical order.
func LabNames() []string { return []string{SafetyLab, PerformanceLab} }

// ValidLabName reports whether name is one of the two fixed labs.
func ValidLabName(name string) bool {
	return name == SafetyLab || name == PerformanceLab
}

// OtherLab returns the opposing lab identity.
func OtherLab(name string) string {
	if name == SafetyLab {
		return PerformanceLab
	}
	return SafetyLab
}

// RetrievalPreferences steers which papers a lab's retriever surfaces.
type RetrievalPreferences struct {
	// YearWindow is the inclusive [start, end] publication year range.
	YearWindow [2]int `json:"year_window" validate:"required"`

	// VenueWeights re-ranks candidates by publication venue. Venues not
	// listed default to weight 0.5.
	VenueWeights map[string]float64 `json:"venue_weights" validate:"required"`

	// Keywords seed the search query alongside event-derived terms.
	Keywords []string `json:"keywords" validate:"required,min=1"`

	// MethodCategories optionally restricts results to given categories.
	MethodCategories []string `json:"method_categories,omitempty"`
}

// ReadingTemplate names the fields the reader stage extracts from each
// paper. Fields a paper does not report are filled with the
// agents.NotReported sentinel, never dropped.
type ReadingTemplate struct {
	ExtractFields []string `json:"extract_fields" validate:"required,min=1"`
}

// CritiqueFocus defines the scoring dimensions a lab cares about and
// how much. Weights need not sum to 1; dimensions without a listed
// weight contribute nothing to the overall score.
type CritiqueFocus struct {
	Dimensions []string           `json:"dimensions" validate:"required,min=1"`
	Weights    map[string]float64 `json:"weights" validate:"required,min=1"`
}

// SynthesisStyle shapes the lab's final report.
type SynthesisStyle struct {
	Audience  string `json:"audience" validate:"required"`
	MaxTokens int    `json:"max_tokens" validate:"required,gt=0"`
	Emphasis  string `json:"emphasis,omitempty"`
}

// GenomeConfig is the structured configuration body of a strategy
// genome. All four sub-objects are required; a genome missing one is
// malformed and planning fails for it.
type GenomeConfig struct {
	RetrievalPreferences RetrievalPreferences `json:"retrieval_preferences" validate:"required"`
	ReadingTemplate      ReadingTemplate      `json:"reading_template" validate:"required"`
	CritiqueFocus        CritiqueFocus        `json:"critique_focus" validate:"required"`
	SynthesisStyle       SynthesisStyle       `json:"synthesis_style" validate:"required"`
}

// StrategyGenome is one versioned configuration record for a lab.
//
// Genomes are never mutated in place. Evolution clones the current
// active genome into a new version with an incremented minor version,
// records the parent version and a change description, and flips the
// active flag. All prior versions persist for audit.
type StrategyGenome struct {
	LabName string `json:"lab_name"`

	// Version is "v<major>.<minor>", monotonically increasing per lab.
	Version string `json:"version"`

	Config GenomeConfig `json:"config"`

	// ParentVersion is empty only for the seed v0.1 genome.
	ParentVersion     string `json:"parent_version,omitempty"`
	ChangeDescription string `json:"change_description,omitempty"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// ParseVersion splits a "v<major>.<minor>" version string.
func ParseVersion(v string) (major, minor int, err error) {
	trimmed := strings.TrimPrefix(v, "v")
	if trimmed == v {
		return 0, 0, fmt.Errorf("genome version %q: missing v prefix", v)
	}
	parts := strings.SplitN(trimmed, ".", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("genome version %q: want v<major>.<minor>", v)
	}
	major, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("genome version %q: bad major: %w", v, err)
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("genome version %q: bad minor: %w", v, err)
	}
	return major, minor, nil
}

// NextVersion returns the minor-bumped successor of v, e.g. v0.1 -> v0.2.
func NextVersion(v string) (string, error) {
	major, minor, err := ParseVersion(v)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("v%d.%d", major, minor+1), nil
}

// CompareVersions orders two version strings. Returns -1, 0, or 1.
// Malformed versions sort first so history listings stay stable.
func CompareVersions(a, b string) int {
	amaj, amin, errA := ParseVersion(a)
	bmaj, bmin, errB := ParseVersion(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	if amaj != bmaj {
		if amaj < bmaj {
			return -1
		}
		return 1
	}
	if amin != bmin {
		if amin < bmin {
			return -1
		}
		return 1
	}
	return 0
}
