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
)

// NotReported is the sentinel the reader writes for template fields a
// paper does not report. Downstream scoring depends on every template
// field being present, so missing values are never dropped.
const NotReported = "not_reported"

// Read annotates each paper with the fields named in the genome's
// reading template. Input papers are not mutated; annotated copies are
// returned.
func Read(papers []datatypes.Paper, genome datatypes.StrategyGenome) []datatypes.Paper {
	fields := genome.Config.ReadingTemplate.ExtractFields

	out := make([]datatypes.Paper, len(papers))
	for i, paper := range papers {
		paper.Extracted = make(map[string]string, len(fields))
		for _, field := range fields {
			paper.Extracted[field] = extractField(paper, field)
		}
		out[i] = paper
	}
	return out
}

func extractField(paper datatypes.Paper, field string) string {
	switch field {
	case "method_name":
		name, _, _ := strings.Cut(paper.Title, ":")
		return name
	case "safety_guarantees":
		return joinMetrics(paper.KeyResults, "collision_rate", "safety_violations", "safety_score")
	case "failure_modes":
		return sentencesMatching(paper.DeploymentNotes, "requires", "limited", "fails", "degrades")
	case "robustness_metrics":
		return joinMetrics(paper.KeyResults, "detection_accuracy_rain", "detection_accuracy_fog", "worst_case_performance")
	case "performance_metrics":
		return joinMetrics(paper.KeyResults, "nuscenes_score", "map_score", "prediction_accuracy",
			"planning_accuracy", "fps", "latency_ms", "planning_time_ms")
	case "computational_cost":
		return joinMetrics(paper.KeyResults, "fps", "latency_ms")
	case "benchmark_results":
		keys := make([]string, 0, len(paper.KeyResults))
		for k := range paper.KeyResults {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return joinMetrics(paper.KeyResults, keys...)
	case "deployment_notes":
		if paper.DeploymentNotes == "" {
			return NotReported
		}
		return paper.DeploymentNotes
	case "limitations":
		return sentencesMatching(paper.DeploymentNotes, "requires", "limited", "only suitable", "not suitable")
	case "scalability":
		if strings.Contains(strings.ToLower(paper.DeploymentNotes), "scalab") {
			return "scalable"
		}
		return "limited"
	default:
		return NotReported
	}
}

// joinMetrics renders the named metrics as "key=value" pairs in the
// given order, skipping absent metrics.
func joinMetrics(results map[string]float64, keys ...string) string {
	var parts []string
	for _, key := range keys {
		if v, ok := results[key]; ok {
			parts = append(parts, fmt.Sprintf("%s=%g", key, v))
		}
	}
	if len(parts) == 0 {
		return NotReported
	}
	return strings.Join(parts, ", ")
}

func sentencesMatching(text string, keywords ...string) string {
	var matched []string
	for _, sentence := range strings.Split(text, ";") {
		lower := strings.ToLower(sentence)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				matched = append(matched, strings.TrimSpace(sentence))
				break
			}
		}
	}
	if len(matched) == 0 {
		return NotReported
	}
	return strings.Join(matched, "; ")
}
