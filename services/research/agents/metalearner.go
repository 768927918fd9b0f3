// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package agents

import (
	"fmt"
	"strings"

	"github.com/AutoLabAI/AutoLabDrive/services/research/datatypes"
	"github.com/AutoLabAI/AutoLabDrive/services/research/params"
)

// Evolve applies the genome evolution rule to one judge decision.
//
// A tie changes nothing and returns nil. Otherwise the LOSING lab's
// genome is cloned into a new minor version that absorbs a bounded
// amount of the winner's strategy: capped keyword and method-category
// merge, critique weights nudged toward the winner's emphasis, and a
// year-window shift when the judge's recommendations reference
// recency. The winner's genome is never touched; reinforcement is
// implicit in it continuing to win.
//
// The returned genome carries ParentVersion, a change description
// enumerating every field that changed, and Active=true. Persisting it
// and demoting the parent is the caller's job.
func Evolve(decision datatypes.JudgeDecision, safetyGenome, performanceGenome datatypes.StrategyGenome,
	p params.Params) (*datatypes.StrategyGenome, error) {

	if decision.Winner == datatypes.TieWinner {
		return nil, nil
	}
	if !datatypes.ValidLabName(decision.Winner) {
		return nil, &ContractViolationError{
			Component: "meta-learner",
			Detail:    "unknown winner " + decision.Winner,
		}
	}

	loser, winner := performanceGenome, safetyGenome
	if decision.Winner == datatypes.PerformanceLab {
		loser, winner = safetyGenome, performanceGenome
	}

	next, err := datatypes.NextVersion(loser.Version)
	if err != nil {
		return nil, &ContractViolationError{Component: "meta-learner", Detail: err.Error()}
	}

	evolved := cloneGenome(loser)
	var changes []string

	if merged := mergeBounded(
		&evolved.Config.RetrievalPreferences.Keywords,
		winner.Config.RetrievalPreferences.Keywords,
		p.KeywordMergeCap); len(merged) > 0 {
		changes = append(changes, "merged keywords: "+strings.Join(merged, ", "))
	}
	if merged := mergeBounded(
		&evolved.Config.RetrievalPreferences.MethodCategories,
		winner.Config.RetrievalPreferences.MethodCategories,
		p.KeywordMergeCap); len(merged) > 0 {
		changes = append(changes, "merged method categories: "+strings.Join(merged, ", "))
	}

	changes = append(changes, nudgeWeights(&evolved.Config.CritiqueFocus, winner.Config.CritiqueFocus, p.WeightStep)...)

	if mentionsRecency(decision.ImprovementRecommendations[loser.LabName]) {
		window := &evolved.Config.RetrievalPreferences.YearWindow
		if window[0] < p.RecencyFloorYear && p.RecencyFloorYear <= window[1] {
			changes = append(changes, fmt.Sprintf("raised year window start %d -> %d", window[0], p.RecencyFloorYear))
			window[0] = p.RecencyFloorYear
		}
	}

	if len(changes) == 0 {
		changes = []string{"minor parameter adjustments"}
	}

	evolved.Version = next
	evolved.ParentVersion = loser.Version
	evolved.ChangeDescription = strings.Join(changes, "; ")
	evolved.Active = true
	return &evolved, nil
}

// cloneGenome deep-copies a genome so evolution never aliases the
// parent's slices or maps.
func cloneGenome(g datatypes.StrategyGenome) datatypes.StrategyGenome {
	out := g
	prefs := &out.Config.RetrievalPreferences
	prefs.Keywords = append([]string(nil), prefs.Keywords...)
	prefs.MethodCategories = append([]string(nil), prefs.MethodCategories...)
	prefs.VenueWeights = copyMap(prefs.VenueWeights)

	out.Config.ReadingTemplate.ExtractFields = append([]string(nil), g.Config.ReadingTemplate.ExtractFields...)
	out.Config.CritiqueFocus.Dimensions = append([]string(nil), g.Config.CritiqueFocus.Dimensions...)
	out.Config.CritiqueFocus.Weights = copyMap(g.Config.CritiqueFocus.Weights)
	return out
}

func copyMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// mergeBounded appends up to limit entries from src that dst lacks,
// preserving src order, and returns what it added.
func mergeBounded(dst *[]string, src []string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	have := make(map[string]bool, len(*dst))
	for _, s := range *dst {
		have[strings.ToLower(s)] = true
	}
	var added []string
	for _, s := range src {
		if have[strings.ToLower(s)] {
			continue
		}
		added = append(added, s)
		*dst = append(*dst, s)
		if len(added) == limit {
			break
		}
	}
	return added
}

// nudgeWeights moves each of the loser's critique weights toward the
// winner's weight for the same dimension by at most step, clamped to
// [0,1]. Dimensions only the winner weights are adopted at step weight
// and appended to the dimension list.
func nudgeWeights(focus *datatypes.CritiqueFocus, winner datatypes.CritiqueFocus, step float64) []string {
	var changes []string

	for _, dim := range focus.Dimensions {
		target, ok := winner.Weights[dim]
		if !ok {
			continue
		}
		current := focus.Weights[dim]
		if current == target {
			continue
		}
		next := current
		if target > current {
			next = clamp01(minFloat(current+step, target))
		} else {
			next = clamp01(maxFloat(current-step, target))
		}
		if next == current {
			continue
		}
		focus.Weights[dim] = next
		changes = append(changes, fmt.Sprintf("adjusted weight %q %.2f -> %.2f", dim, current, next))
	}

	for _, dim := range winner.Dimensions {
		if _, ok := focus.Weights[dim]; ok {
			continue
		}
		if _, ok := winner.Weights[dim]; !ok {
			continue
		}
		focus.Dimensions = append(focus.Dimensions, dim)
		focus.Weights[dim] = clamp01(step)
		changes = append(changes, fmt.Sprintf("adopted dimension %q at weight %.2f", dim, clamp01(step)))
	}
	return changes
}

func mentionsRecency(recommendations []string) bool {
	for _, rec := range recommendations {
		lower := strings.ToLower(rec)
		if strings.Contains(lower, "recent") || strings.Contains(lower, "latest") {
			return true
		}
	}
	return false
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
