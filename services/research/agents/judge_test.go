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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AutoLabAI/AutoLabDrive/services/research/datatypes"
	"github.com/AutoLabAI/AutoLabDrive/services/research/params"
)

func strongPaper(title string, year int, category string) datatypes.Paper {
	return datatypes.Paper{
		Title:          title,
		Year:           year,
		MethodCategory: category,
		KeyResults: map[string]float64{
			"safety_score":            0.9,
			"detection_accuracy_rain": 0.85,
			"nuscenes_score":          0.8,
			"latency_ms":              20,
		},
		DeploymentNotes: "Requires calibrated sensors",
		Critique:        &datatypes.Critique{OverallScore: 0.85},
	}
}

func labOut(lab string, papers []datatypes.Paper, methods, recs []string) datatypes.LabOutput {
	return datatypes.LabOutput{
		LabName:       lab,
		GenomeVersion: "v0.1",
		TopPapers:     papers,
		Synthesis: datatypes.Synthesis{
			KeyMethods:                methods,
			DeploymentRecommendations: recs,
		},
	}
}

func TestRubricWeights_SeverityShift(t *testing.T) {
	p := params.Defaults()

	medium := RubricWeights(datatypes.SeverityMedium, p)
	assert.InDelta(t, 0.25, medium[CriterionSafety], 1e-9)
	assert.InDelta(t, 0.20, medium[CriterionPerformance], 1e-9)

	high := RubricWeights(datatypes.SeverityHigh, p)
	assert.InDelta(t, 0.35, high[CriterionSafety], 1e-9)
	assert.InDelta(t, 0.10, high[CriterionPerformance], 1e-9)

	low := RubricWeights(datatypes.SeverityLow, p)
	assert.InDelta(t, 0.15, low[CriterionSafety], 1e-9)
	assert.InDelta(t, 0.30, low[CriterionPerformance], 1e-9)

	for name, w := range map[string]map[string]float64{"medium": medium, "high": high, "low": low} {
		var sum float64
		for _, v := range w {
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "weights for %s severity must sum to 1", name)
	}
}

func TestJudge_Deterministic(t *testing.T) {
	event := datatypes.Event{EventType: datatypes.EventCutIn, Severity: datatypes.SeverityHigh}
	safety := labOut(datatypes.SafetyLab,
		[]datatypes.Paper{strongPaper("A", 2023, "risk_assessment")},
		[]string{"risk_assessment"}, []string{"Deploy with monitoring"})
	performance := labOut(datatypes.PerformanceLab,
		[]datatypes.Paper{strongPaper("B", 2022, "efficient_perception")},
		[]string{"efficient_perception"}, []string{"Benchmark first"})

	first, err := Judge(event, safety, performance, params.Defaults())
	require.NoError(t, err)
	second, err := Judge(event, safety, performance, params.Defaults())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestJudge_IdenticalOutputsTie(t *testing.T) {
	event := datatypes.Event{EventType: datatypes.EventLaneChange, Severity: datatypes.SeverityMedium}
	papers := []datatypes.Paper{strongPaper("Shared", 2023, "behavior_prediction")}
	safety := labOut(datatypes.SafetyLab, papers, []string{"behavior_prediction"}, []string{"Test widely"})
	performance := labOut(datatypes.PerformanceLab, papers, []string{"behavior_prediction"}, []string{"Test widely"})

	decision, err := Judge(event, safety, performance, params.Defaults())
	require.NoError(t, err)

	assert.Equal(t, datatypes.TieWinner, decision.Winner)
	assert.Equal(t, decision.SafetyLabScore, decision.PerformanceLabScore)
	assert.Contains(t, decision.Reasoning, "tie margin")
}

func TestJudge_WinnerHasStrictlyHigherScore(t *testing.T) {
	event := datatypes.Event{EventType: datatypes.EventPedestrian, Severity: datatypes.SeverityHigh}
	safety := labOut(datatypes.SafetyLab,
		[]datatypes.Paper{
			strongPaper("A", 2023, "behavior_prediction"),
			strongPaper("B", 2023, "safety_verification"),
		},
		[]string{"behavior_prediction", "safety_verification"},
		[]string{"Deploy with monitoring", "Validate on edge cases"})
	// Degraded output: no papers retrieved.
	performance := labOut(datatypes.PerformanceLab, nil, nil, []string{"Conduct thorough testing before deployment"})

	decision, err := Judge(event, safety, performance, params.Defaults())
	require.NoError(t, err)

	assert.Equal(t, datatypes.SafetyLab, decision.Winner)
	assert.Greater(t, decision.SafetyLabScore, decision.PerformanceLabScore)
	assert.GreaterOrEqual(t, decision.SafetyLabScore, 0.0)
	assert.LessOrEqual(t, decision.SafetyLabScore, 1.0)
}

func TestJudge_ScoresEveryCriterionForBothLabs(t *testing.T) {
	event := datatypes.Event{EventType: datatypes.EventSuddenBrake, Severity: datatypes.SeverityLow}
	safety := labOut(datatypes.SafetyLab,
		[]datatypes.Paper{strongPaper("A", 2023, "model_based_control")},
		[]string{"model_based_control"}, []string{"Tune brake thresholds"})
	performance := labOut(datatypes.PerformanceLab,
		[]datatypes.Paper{strongPaper("B", 2021, "model_based_control")},
		[]string{"model_based_control"}, []string{"Profile inference latency"})

	decision, err := Judge(event, safety, performance, params.Defaults())
	require.NoError(t, err)

	for _, lab := range datatypes.LabNames() {
		scores := decision.CriterionScores[lab]
		require.Len(t, scores, 5, "lab %s", lab)
		for criterion, score := range scores {
			assert.GreaterOrEqual(t, score, 0.0, "%s/%s", lab, criterion)
			assert.LessOrEqual(t, score, 1.0, "%s/%s", lab, criterion)
		}
	}
}

func TestJudge_ImprovementsNameTwoWeakestCriteria(t *testing.T) {
	event := datatypes.Event{EventType: datatypes.EventOther, Severity: datatypes.SeverityMedium}
	safety := labOut(datatypes.SafetyLab,
		[]datatypes.Paper{strongPaper("A", 2023, "risk_assessment")},
		[]string{"risk_assessment"}, []string{"Deploy with monitoring"})
	performance := labOut(datatypes.PerformanceLab, nil, nil, nil)

	decision, err := Judge(event, safety, performance, params.Defaults())
	require.NoError(t, err)

	// With no papers and no recommendations, practicality bottoms out
	// below the flat 0.2 the other criteria receive.
	recs := decision.ImprovementRecommendations[datatypes.PerformanceLab]
	require.Len(t, recs, 2)
	assert.Equal(t, improvementText[CriterionPracticality], recs[0])
	assert.Equal(t, improvementText[CriterionRelevance], recs[1])
	assert.Len(t, decision.ImprovementRecommendations[datatypes.SafetyLab], 2)
}
