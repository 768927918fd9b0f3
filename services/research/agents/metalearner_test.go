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

func evolutionGenomes() (safety, performance datatypes.StrategyGenome) {
	safety = testGenome(datatypes.SafetyLab)
	safety.Config.RetrievalPreferences.Keywords = []string{
		"collision avoidance", "risk assessment", "pedestrian detection", "safety critical systems",
	}
	safety.Config.RetrievalPreferences.MethodCategories = []string{"safety_verification", "robust_perception"}
	safety.Config.CritiqueFocus = datatypes.CritiqueFocus{
		Dimensions: []string{"safety", "robustness", "novelty"},
		Weights:    map[string]float64{"safety": 0.9, "robustness": 0.8, "novelty": 0.6},
	}

	performance = testGenome(datatypes.PerformanceLab)
	performance.Config.RetrievalPreferences.YearWindow = [2]int{2018, 2024}
	performance.Config.RetrievalPreferences.Keywords = []string{"optimization", "real-time processing"}
	performance.Config.CritiqueFocus = datatypes.CritiqueFocus{
		Dimensions: []string{"computational_efficiency", "novelty"},
		Weights:    map[string]float64{"computational_efficiency": 0.9, "novelty": 0.8},
	}
	return safety, performance
}

func safetyWins(loserRecs ...string) datatypes.JudgeDecision {
	return datatypes.JudgeDecision{
		Winner: datatypes.SafetyLab,
		ImprovementRecommendations: map[string][]string{
			datatypes.PerformanceLab: loserRecs,
		},
	}
}

func TestEvolve_TieChangesNothing(t *testing.T) {
	safety, performance := evolutionGenomes()

	evolved, err := Evolve(datatypes.JudgeDecision{Winner: datatypes.TieWinner},
		safety, performance, params.Defaults())
	require.NoError(t, err)
	assert.Nil(t, evolved)
}

func TestEvolve_LoserGetsNewVersion(t *testing.T) {
	safety, performance := evolutionGenomes()

	evolved, err := Evolve(safetyWins("Provide more specific deployment guidance"),
		safety, performance, params.Defaults())
	require.NoError(t, err)
	require.NotNil(t, evolved)

	assert.Equal(t, datatypes.PerformanceLab, evolved.LabName)
	assert.Equal(t, "v0.2", evolved.Version)
	assert.Equal(t, "v0.1", evolved.ParentVersion)
	assert.True(t, evolved.Active)
	assert.NotEmpty(t, evolved.ChangeDescription)
}

func TestEvolve_KeywordMergeIsBounded(t *testing.T) {
	safety, performance := evolutionGenomes()

	evolved, err := Evolve(safetyWins(), safety, performance, params.Defaults())
	require.NoError(t, err)
	require.NotNil(t, evolved)

	// Cap is 2: exactly the winner's first two unseen keywords come over.
	keywords := evolved.Config.RetrievalPreferences.Keywords
	assert.Equal(t, []string{
		"optimization", "real-time processing",
		"collision avoidance", "risk assessment",
	}, keywords)

	categories := evolved.Config.RetrievalPreferences.MethodCategories
	assert.Equal(t, []string{"safety_verification", "robust_perception"}, categories)
}

func TestEvolve_NudgesWeightsTowardWinner(t *testing.T) {
	safety, performance := evolutionGenomes()

	evolved, err := Evolve(safetyWins(), safety, performance, params.Defaults())
	require.NoError(t, err)
	require.NotNil(t, evolved)

	focus := evolved.Config.CritiqueFocus
	// Shared dimension moves one step toward the winner's 0.6.
	assert.InDelta(t, 0.7, focus.Weights["novelty"], 1e-9)
	// Winner never weights computational_efficiency; it stays put.
	assert.InDelta(t, 0.9, focus.Weights["computational_efficiency"], 1e-9)
	// Winner-only dimensions are adopted at the step weight.
	assert.Contains(t, focus.Dimensions, "safety")
	assert.Contains(t, focus.Dimensions, "robustness")
	assert.InDelta(t, 0.1, focus.Weights["safety"], 1e-9)
	assert.InDelta(t, 0.1, focus.Weights["robustness"], 1e-9)
}

func TestEvolve_RecencyRecommendationRaisesYearWindow(t *testing.T) {
	safety, performance := evolutionGenomes()

	evolved, err := Evolve(
		safetyWins("Include more recent real-time methods with efficiency benchmarks"),
		safety, performance, params.Defaults())
	require.NoError(t, err)
	require.NotNil(t, evolved)

	assert.Equal(t, [2]int{2020, 2024}, evolved.Config.RetrievalPreferences.YearWindow)
	assert.Contains(t, evolved.ChangeDescription, "raised year window start 2018 -> 2020")
}

func TestEvolve_NoRecencyMentionLeavesWindowAlone(t *testing.T) {
	safety, performance := evolutionGenomes()

	evolved, err := Evolve(safetyWins("Provide more specific deployment guidance"),
		safety, performance, params.Defaults())
	require.NoError(t, err)
	require.NotNil(t, evolved)
	assert.Equal(t, [2]int{2018, 2024}, evolved.Config.RetrievalPreferences.YearWindow)
}

func TestEvolve_WindowAlreadyAtFloorIsUntouched(t *testing.T) {
	safety, performance := evolutionGenomes()
	performance.Config.RetrievalPreferences.YearWindow = [2]int{2020, 2024}

	evolved, err := Evolve(safetyWins("Consider the latest publications"),
		safety, performance, params.Defaults())
	require.NoError(t, err)
	require.NotNil(t, evolved)
	assert.Equal(t, [2]int{2020, 2024}, evolved.Config.RetrievalPreferences.YearWindow)
	assert.NotContains(t, evolved.ChangeDescription, "year window")
}

func TestEvolve_WinnerGenomeUntouchedAndNoAliasing(t *testing.T) {
	safety, performance := evolutionGenomes()
	originalSafetyKeywords := append([]string(nil), safety.Config.RetrievalPreferences.Keywords...)
	originalPerfWeights := map[string]float64{"computational_efficiency": 0.9, "novelty": 0.8}

	evolved, err := Evolve(safetyWins(), safety, performance, params.Defaults())
	require.NoError(t, err)
	require.NotNil(t, evolved)

	assert.Equal(t, originalSafetyKeywords, safety.Config.RetrievalPreferences.Keywords)
	assert.Equal(t, originalPerfWeights, performance.Config.CritiqueFocus.Weights)

	// Mutating the evolved genome must not leak into the parent.
	evolved.Config.CritiqueFocus.Weights["novelty"] = 0.0
	evolved.Config.RetrievalPreferences.Keywords[0] = "mutated"
	assert.InDelta(t, 0.8, performance.Config.CritiqueFocus.Weights["novelty"], 1e-9)
	assert.Equal(t, "optimization", performance.Config.RetrievalPreferences.Keywords[0])
}

func TestEvolve_UnknownWinnerIsContractViolation(t *testing.T) {
	safety, performance := evolutionGenomes()

	_, err := Evolve(datatypes.JudgeDecision{Winner: "MysteryLab"},
		safety, performance, params.Defaults())
	var violation *ContractViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "meta-learner", violation.Component)
}
