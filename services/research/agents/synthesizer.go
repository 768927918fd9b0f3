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
)

// How many papers feed the synthesis summary and top-paper list.
const synthesisTopCount = 3

// Synthesize condenses critiqued papers into the lab's final scored
// recommendation. Papers must already be sorted best-first by
// Critique (overall desc, year desc, title asc); the top entries drive
// key methods and deployment recommendations.
//
// degraded marks a run whose retrieval timed out; it forces
// confidence to low regardless of anything else.
func Synthesize(plan datatypes.ResearchPlan, papers []datatypes.Paper,
	event datatypes.Event, genome datatypes.StrategyGenome, degraded bool) datatypes.Synthesis {

	style := genome.Config.SynthesisStyle
	top := papers
	if len(top) > synthesisTopCount {
		top = top[:synthesisTopCount]
	}

	var keyMethods []string
	seenMethods := make(map[string]bool)
	var recommendations []string
	topEntries := make([]datatypes.TopPaper, 0, len(top))
	for _, paper := range top {
		if paper.MethodCategory != "" && !seenMethods[paper.MethodCategory] {
			seenMethods[paper.MethodCategory] = true
			keyMethods = append(keyMethods, paper.MethodCategory)
		}
		if paper.DeploymentNotes != "" {
			recommendations = append(recommendations, paper.DeploymentNotes)
		}
		topEntries = append(topEntries, datatypes.TopPaper{
			Title:          paper.Title,
			Year:           paper.Year,
			Score:          paper.Critique.OverallScore,
			MethodCategory: paper.MethodCategory,
		})
	}
	if len(recommendations) == 0 {
		recommendations = []string{"Conduct thorough testing before deployment"}
	}

	return datatypes.Synthesis{
		Summary:                   capTokens(summaryText(genome.LabName, event, style.Audience), style.MaxTokens),
		KeyMethods:                keyMethods,
		TopPapers:                 topEntries,
		DeploymentRecommendations: recommendations,
		TradeOffs:                 tradeOffs(genome.LabName),
		ConfidenceLevel:           confidence(papers, degraded),
		Degraded:                  degraded,
	}
}

func summaryText(labName string, event datatypes.Event, audience string) string {
	scenario := strings.ReplaceAll(string(event.EventType), "_", " ")
	if labName == datatypes.SafetyLab {
		return fmt.Sprintf("For %s events at %s severity, prioritize methods with strong safety guarantees and proven robustness. Prepared for %s.",
			scenario, event.Severity, audience)
	}
	return fmt.Sprintf("For %s events at %s severity, prioritize high-performance methods with real-time capability. Prepared for %s.",
		scenario, event.Severity, audience)
}

func tradeOffs(labName string) map[string]string {
	if labName == datatypes.SafetyLab {
		return map[string]string{
			"safety_vs_performance":     "Higher safety guarantees may reduce performance",
			"complexity_vs_reliability": "More complex verification increases reliability but adds overhead",
		}
	}
	return map[string]string{
		"performance_vs_safety": "Higher performance may sacrifice some safety guarantees",
		"accuracy_vs_speed":     "Faster inference may reduce accuracy slightly",
	}
}

// confidence derives a level from sample size and score spread: five
// or more papers inside a 0.15 score band read as high, an empty set
// as low, everything else as medium.
func confidence(papers []datatypes.Paper, degraded bool) datatypes.ConfidenceLevel {
	if degraded || len(papers) == 0 {
		return datatypes.ConfidenceLow
	}
	minScore, maxScore := papers[0].Critique.OverallScore, papers[0].Critique.OverallScore
	for _, paper := range papers[1:] {
		s := paper.Critique.OverallScore
		if s < minScore {
			minScore = s
		}
		if s > maxScore {
			maxScore = s
		}
	}
	if len(papers) >= 5 && maxScore-minScore <= 0.15 {
		return datatypes.ConfidenceHigh
	}
	return datatypes.ConfidenceMedium
}

// capTokens truncates text to at most max whitespace-delimited tokens.
func capTokens(text string, max int) string {
	if max <= 0 {
		return text
	}
	words := strings.Fields(text)
	if len(words) <= max {
		return text
	}
	return strings.Join(words[:max], " ")
}
