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

import "time"

// TieWinner is the JudgeDecision.Winner value when neither lab scored
// strictly higher than the other within the configured epsilon.
const TieWinner = "Tie"

// JudgeDecision is the judge's deterministic comparison of the two
// labs' outputs for one event.
//
// Invariant: if Winner is not TieWinner, the winner's score is
// strictly greater than the loser's. The judge validates this itself;
// a violation is a programming error, never coerced.
type JudgeDecision struct {
	Winner string `json:"winner"`

	SafetyLabScore      float64 `json:"safety_lab_score"`
	PerformanceLabScore float64 `json:"performance_lab_score"`

	// CriterionScores records the per-criterion [0,1] scores per lab,
	// keyed by lab name then criterion name. Kept for audit; the final
	// scores above are the weighted sums.
	CriterionScores map[string]map[string]float64 `json:"criterion_scores,omitempty"`

	Reasoning string `json:"reasoning"`

	SafetyLabStrengths       []string `json:"safety_lab_strengths"`
	SafetyLabWeaknesses      []string `json:"safety_lab_weaknesses"`
	PerformanceLabStrengths  []string `json:"performance_lab_strengths"`
	PerformanceLabWeaknesses []string `json:"performance_lab_weaknesses"`

	// ImprovementRecommendations per lab feed the meta-learner.
	ImprovementRecommendations map[string][]string `json:"recommendations_for_improvement"`
}

// ScoreFor returns the final score the judge assigned to lab.
func (d *JudgeDecision) ScoreFor(lab string) float64 {
	if lab == SafetyLab {
		return d.SafetyLabScore
	}
	return d.PerformanceLabScore
}

// Analysis is the durable record of one completed run. At most one
// Analysis exists per event; re-running analyze for the same event
// returns the stored record unchanged.
type Analysis struct {
	ID      string `json:"id"`
	EventID string `json:"event_id"`

	SafetyLabOutput      LabOutput `json:"safety_lab_output"`
	PerformanceLabOutput LabOutput `json:"performance_lab_output"`

	JudgeDecision JudgeDecision `json:"judge_decision"`

	// Genome versions the run used.
	SafetyGenomeVersion      string `json:"safety_genome_version"`
	PerformanceGenomeVersion string `json:"performance_genome_version"`

	// New versions the meta-learner created, empty when no evolution
	// occurred.
	NewSafetyGenomeVersion      string `json:"new_safety_genome_version,omitempty"`
	NewPerformanceGenomeVersion string `json:"new_performance_genome_version,omitempty"`

	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}
