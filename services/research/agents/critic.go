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
	"sort"
	"strings"

	"github.com/AutoLabAI/AutoLabDrive/services/research/datatypes"
	"github.com/AutoLabAI/AutoLabDrive/services/research/params"
)

// Critique scores every paper on the genome's critique-focus
// dimensions and attaches strengths/weaknesses derived from the
// configured thresholds. Returned papers are sorted best-first:
// overall score desc, year desc, title asc.
//
// Scores come deterministically from each paper's reported results;
// the overall score is the weighted average over the genome's listed
// weights, with unlisted dimensions contributing weight 0.
func Critique(papers []datatypes.Paper, event datatypes.Event,
	genome datatypes.StrategyGenome, p params.Params) []datatypes.Paper {

	focus := genome.Config.CritiqueFocus

	out := make([]datatypes.Paper, len(papers))
	for i, paper := range papers {
		scores := make(map[string]float64, len(focus.Dimensions))
		for _, dim := range focus.Dimensions {
			scores[dim] = scoreDimension(paper, dim)
		}

		var weighted, weightSum float64
		for _, dim := range focus.Dimensions {
			w := focus.Weights[dim] // unlisted dimensions weigh 0
			weighted += scores[dim] * w
			weightSum += w
		}
		overall := 0.0
		if weightSum > 0 {
			overall = weighted / weightSum
		}

		var strengths, weaknesses []string
		for _, dim := range focus.Dimensions {
			label := strings.ReplaceAll(dim, "_", " ")
			switch {
			case scores[dim] >= p.StrengthThreshold:
				strengths = append(strengths, fmt.Sprintf("Strong %s (%.2f)", label, scores[dim]))
			case scores[dim] < p.WeaknessThreshold:
				weaknesses = append(weaknesses, fmt.Sprintf("Weak %s (%.2f)", label, scores[dim]))
			}
		}

		paper.Critique = &datatypes.Critique{
			Scores:       scores,
			OverallScore: overall,
			Strengths:    strengths,
			Weaknesses:   weaknesses,
		}
		out[i] = paper
	}

	sortCritiqued(out)
	return out
}

// sortCritiqued orders papers by overall score desc, breaking ties by
// year desc then title asc.
func sortCritiqued(papers []datatypes.Paper) {
	sort.SliceStable(papers, func(i, j int) bool {
		si, sj := papers[i].Critique.OverallScore, papers[j].Critique.OverallScore
		if si != sj {
			return si > sj
		}
		if papers[i].Year != papers[j].Year {
			return papers[i].Year > papers[j].Year
		}
		return papers[i].Title < papers[j].Title
	})
}

// scoreDimension derives a [0,1] score for one dimension from a
// paper's reported results. Unknown dimensions get a neutral 0.75,
// matching the behavior papers without metrics would see.
func scoreDimension(paper datatypes.Paper, dim string) float64 {
	results := paper.KeyResults
	switch dim {
	case "safety", "safety_metrics":
		if v, ok := results["safety_score"]; ok {
			return clamp01(v)
		}
		if v, ok := results["collision_rate"]; ok {
			// 1% collision rate zeroes the score.
			return clamp01(1 - v*100)
		}
		return 0.6
	case "robustness":
		if v, ok := results["detection_accuracy_rain"]; ok {
			return clamp01(v)
		}
		if v, ok := results["worst_case_performance"]; ok {
			return clamp01(v)
		}
		return 0.7
	case "rare_events", "rare_events_handling":
		if v, ok := results["safety_violations"]; ok {
			if v == 0 {
				return 0.85
			}
			return 0.65
		}
		return 0.7
	case "worst_case_performance":
		if v, ok := results["worst_case_performance"]; ok {
			return clamp01(v)
		}
		if v, ok := results["detection_accuracy_fog"]; ok {
			return clamp01(v)
		}
		return 0.65
	case "accuracy":
		for _, key := range []string{"nuscenes_score", "map_score", "prediction_accuracy", "planning_accuracy"} {
			if v, ok := results[key]; ok {
				return clamp01(v)
			}
		}
		return 0.75
	case "speed":
		return fpsScore(results, 30)
	case "computational_efficiency":
		if v, ok := results["latency_ms"]; ok {
			// 100ms of latency zeroes the score.
			return clamp01(1 - v/100)
		}
		return fpsScore(results, 30)
	case "novelty", "sota_comparison":
		// Recency proxy: 2018 scores 0, 2024 and later saturate.
		return clamp01(float64(paper.Year-2018) / 6)
	default:
		return 0.75
	}
}

// fpsScore normalizes frames-per-second against a 60 FPS target.
func fpsScore(results map[string]float64, fallbackFPS float64) float64 {
	fps := fallbackFPS
	if v, ok := results["fps"]; ok {
		fps = v
	}
	return clamp01(fps / 60)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
