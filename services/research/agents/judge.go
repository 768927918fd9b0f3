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
	"math"
	"sort"
	"strings"

	"github.com/AutoLabAI/AutoLabDrive/services/research/datatypes"
	"github.com/AutoLabAI/AutoLabDrive/services/research/params"
)

// Rubric criterion names.
const (
	CriterionRelevance    = "relevance"
	CriterionSafety       = "safety_quality"
	CriterionPerformance  = "performance_quality"
	CriterionPracticality = "practicality"
	CriterionNovelty      = "novelty"
)

var rubricOrder = []string{
	CriterionRelevance,
	CriterionSafety,
	CriterionPerformance,
	CriterionPracticality,
	CriterionNovelty,
}

// RubricWeights returns the per-criterion weights for an event's
// severity. High severity moves weight from the performance criterion
// to the safety criterion, low severity the reverse. The bias is a
// design property: dangerous events systematically favor SafetyLab.
func RubricWeights(severity datatypes.Severity, p params.Params) map[string]float64 {
	w := map[string]float64{
		CriterionRelevance:    p.Judge.Relevance,
		CriterionSafety:       p.Judge.Safety,
		CriterionPerformance:  p.Judge.Performance,
		CriterionPracticality: p.Judge.Practicality,
		CriterionNovelty:      p.Judge.Novelty,
	}
	switch severity {
	case datatypes.SeverityHigh:
		w[CriterionSafety] += p.SeverityShift
		w[CriterionPerformance] -= p.SeverityShift
	case datatypes.SeverityLow:
		w[CriterionSafety] -= p.SeverityShift
		w[CriterionPerformance] += p.SeverityShift
	}
	return w
}

// Judge deterministically compares both labs' outputs for one event.
// Same inputs always produce the same decision. The decision is
// validated before return; a broken invariant surfaces as a
// *ContractViolationError instead of being coerced.
func Judge(event datatypes.Event, safety, performance datatypes.LabOutput,
	p params.Params) (datatypes.JudgeDecision, error) {

	weights := RubricWeights(event.Severity, p)

	safetyScores := criterionScores(safety, event)
	perfScores := criterionScores(performance, event)

	safetyFinal := weightedSum(safetyScores, weights)
	perfFinal := weightedSum(perfScores, weights)

	winner := datatypes.TieWinner
	switch {
	case math.Abs(safetyFinal-perfFinal) <= p.TieEpsilon:
		winner = datatypes.TieWinner
	case safetyFinal > perfFinal:
		winner = datatypes.SafetyLab
	default:
		winner = datatypes.PerformanceLab
	}

	decision := datatypes.JudgeDecision{
		Winner:              winner,
		SafetyLabScore:      safetyFinal,
		PerformanceLabScore: perfFinal,
		CriterionScores: map[string]map[string]float64{
			datatypes.SafetyLab:      safetyScores,
			datatypes.PerformanceLab: perfScores,
		},
		Reasoning:                reasoning(event, winner, safetyFinal, perfFinal),
		SafetyLabStrengths:       criterionStrengths(safetyScores),
		SafetyLabWeaknesses:      criterionWeaknesses(safetyScores),
		PerformanceLabStrengths:  criterionStrengths(perfScores),
		PerformanceLabWeaknesses: criterionWeaknesses(perfScores),
		ImprovementRecommendations: map[string][]string{
			datatypes.SafetyLab:      improvements(safetyScores),
			datatypes.PerformanceLab: improvements(perfScores),
		},
	}

	if err := validateDecision(decision, p); err != nil {
		return datatypes.JudgeDecision{}, err
	}
	return decision, nil
}

// categoryAffinity maps each event type to the method categories most
// relevant to it.
var categoryAffinity = map[datatypes.EventType][]string{
	datatypes.EventCutIn:          {"risk_assessment", "behavior_prediction", "model_based_control"},
	datatypes.EventPedestrian:     {"behavior_prediction", "safety_verification", "robust_perception"},
	datatypes.EventAdverseWeather: {"robust_perception", "uncertainty_estimation"},
	datatypes.EventCloseFollowing: {"model_based_control", "risk_assessment"},
	datatypes.EventSuddenBrake:    {"model_based_control", "safety_verification"},
	datatypes.EventLaneChange:     {"behavior_prediction", "risk_assessment", "end_to_end_learning"},
	datatypes.EventOther:          nil,
}

// criterionScores derives the five rubric scores for one lab from
// features of its synthesis and top papers.
func criterionScores(out datatypes.LabOutput, event datatypes.Event) map[string]float64 {
	papers := out.TopPapers
	scores := make(map[string]float64, len(rubricOrder))

	if len(papers) == 0 {
		// A degraded output still gets judged, just poorly.
		for _, c := range rubricOrder {
			scores[c] = 0.2
		}
		scores[CriterionPracticality] = practicality(out)
		return scores
	}

	var overall, safetyQ, perfQ, noveltyQ float64
	for _, paper := range papers {
		overall += paper.Critique.OverallScore
		safetyQ += (scoreDimension(paper, "safety") + scoreDimension(paper, "robustness")) / 2
		perfQ += (scoreDimension(paper, "computational_efficiency") + scoreDimension(paper, "accuracy")) / 2
		noveltyQ += scoreDimension(paper, "novelty")
	}
	n := float64(len(papers))

	scores[CriterionRelevance] = clamp01(overall/n + 0.1*affinityFraction(out.Synthesis.KeyMethods, event.EventType))
	scores[CriterionSafety] = clamp01(safetyQ / n)
	scores[CriterionPerformance] = clamp01(perfQ / n)
	scores[CriterionPracticality] = practicality(out)
	scores[CriterionNovelty] = clamp01(0.5*(noveltyQ/n) + 0.5*methodDiversity(out.Synthesis.KeyMethods))
	return scores
}

// practicality rewards specific deployment guidance: how many
// recommendations the lab produced and how many of its papers carry
// deployment notes.
func practicality(out datatypes.LabOutput) float64 {
	recCount := float64(len(out.Synthesis.DeploymentRecommendations))
	recScore := math.Min(recCount/3, 1)

	if len(out.TopPapers) == 0 {
		return clamp01(0.5 * recScore)
	}
	var withNotes float64
	for _, paper := range out.TopPapers {
		if paper.DeploymentNotes != "" {
			withNotes++
		}
	}
	return clamp01(0.5*recScore + 0.5*withNotes/float64(len(out.TopPapers)))
}

func affinityFraction(methods []string, eventType datatypes.EventType) float64 {
	affine := categoryAffinity[eventType]
	if len(methods) == 0 || len(affine) == 0 {
		return 0
	}
	var hits float64
	for _, m := range methods {
		for _, a := range affine {
			if m == a {
				hits++
				break
			}
		}
	}
	return hits / float64(len(methods))
}

func methodDiversity(methods []string) float64 {
	return math.Min(float64(len(methods))/3, 1)
}

func weightedSum(scores, weights map[string]float64) float64 {
	var sum float64
	for _, c := range rubricOrder {
		sum += scores[c] * weights[c]
	}
	return clamp01(sum)
}

func reasoning(event datatypes.Event, winner string, safetyScore, perfScore float64) string {
	scenario := strings.ReplaceAll(string(event.EventType), "_", " ")
	if winner == datatypes.TieWinner {
		return fmt.Sprintf("For the %s event at %s severity both labs scored within the tie margin (SafetyLab %.3f, PerformanceLab %.3f).",
			scenario, event.Severity, safetyScore, perfScore)
	}
	return fmt.Sprintf("For the %s event at %s severity, %s produced the stronger recommendation (SafetyLab %.3f, PerformanceLab %.3f).",
		scenario, event.Severity, winner, safetyScore, perfScore)
}

func criterionStrengths(scores map[string]float64) []string {
	var out []string
	for _, c := range rubricOrder {
		if scores[c] >= 0.75 {
			out = append(out, fmt.Sprintf("High %s (%.2f)", strings.ReplaceAll(c, "_", " "), scores[c]))
		}
	}
	if len(out) == 0 {
		out = []string{"No standout criteria"}
	}
	return out
}

func criterionWeaknesses(scores map[string]float64) []string {
	var out []string
	for _, c := range rubricOrder {
		if scores[c] < 0.5 {
			out = append(out, fmt.Sprintf("Low %s (%.2f)", strings.ReplaceAll(c, "_", " "), scores[c]))
		}
	}
	if len(out) == 0 {
		out = []string{"No significant weaknesses"}
	}
	return out
}

// improvementText maps each criterion to the guidance emitted when a
// lab scores poorly on it. The meta-learner keys off this wording, so
// the performance and novelty entries deliberately mention recency.
var improvementText = map[string]string{
	CriterionRelevance:    "Focus retrieval on methods directly relevant to the scenario type",
	CriterionSafety:       "Incorporate more safety analysis and failure mode coverage",
	CriterionPerformance:  "Include more recent real-time methods with efficiency benchmarks",
	CriterionPracticality: "Provide more specific deployment guidance",
	CriterionNovelty:      "Consider the latest publications and emerging method categories",
}

// improvements returns recommendations for the lab's two
// weakest criteria, weakest first.
func improvements(scores map[string]float64) []string {
	order := append([]string(nil), rubricOrder...)
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] < scores[order[j]]
	})
	recs := make([]string, 0, 2)
	for _, c := range order[:2] {
		recs = append(recs, improvementText[c])
	}
	return recs
}

func validateDecision(d datatypes.JudgeDecision, p params.Params) error {
	for lab, score := range map[string]float64{
		datatypes.SafetyLab:      d.SafetyLabScore,
		datatypes.PerformanceLab: d.PerformanceLabScore,
	} {
		if score < 0 || score > 1 {
			return &ContractViolationError{
				Component: "judge",
				Detail:    fmt.Sprintf("%s score %v outside [0,1]", lab, score),
			}
		}
	}
	diff := math.Abs(d.SafetyLabScore - d.PerformanceLabScore)
	if d.Winner == datatypes.TieWinner {
		if diff > p.TieEpsilon {
			return &ContractViolationError{
				Component: "judge",
				Detail:    fmt.Sprintf("tie declared with score gap %v > epsilon %v", diff, p.TieEpsilon),
			}
		}
		return nil
	}
	if !datatypes.ValidLabName(d.Winner) {
		return &ContractViolationError{Component: "judge", Detail: "unknown winner " + d.Winner}
	}
	if d.ScoreFor(d.Winner) <= d.ScoreFor(datatypes.OtherLab(d.Winner)) {
		return &ContractViolationError{
			Component: "judge",
			Detail:    fmt.Sprintf("winner %s does not have the strictly higher score", d.Winner),
		}
	}
	return nil
}
