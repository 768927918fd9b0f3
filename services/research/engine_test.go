// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package research

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/AutoLabAI/AutoLabDrive/services/research/agents"
	"github.com/AutoLabAI/AutoLabDrive/services/research/content"
	"github.com/AutoLabAI/AutoLabDrive/services/research/datatypes"
	"github.com/AutoLabAI/AutoLabDrive/services/research/params"
	"github.com/AutoLabAI/AutoLabDrive/services/research/storage"
)

func newTestEngine(t *testing.T, producer content.Producer) *Engine {
	t.Helper()
	store, err := storage.Open(storage.InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.SeedGenomes())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEngine(store, producer, params.NewSource(params.Defaults()), logger, nil)
}

func putEvent(t *testing.T, e *Engine, event datatypes.Event) datatypes.Event {
	t.Helper()
	require.NoError(t, e.Store().PutEvent(event))
	return event
}

func pedestrianEvent() datatypes.Event {
	return datatypes.Event{
		ID:             "evt-ped",
		DatasetID:      "ds-1",
		EventType:      datatypes.EventPedestrian,
		Severity:       datatypes.SeverityHigh,
		EgoSpeedMPS:    12.5,
		RoadType:       "urban",
		Weather:        "clear",
		PedestrianFlag: true,
	}
}

// failingProducer simulates an unreachable paper index. Both labs
// degrade to empty candidate sets.
type failingProducer struct{}

func (failingProducer) Search(context.Context, content.Query) ([]datatypes.Paper, error) {
	return nil, errors.New("index offline")
}

func TestEngine_Analyze_HighSeverityPedestrian(t *testing.T) {
	engine := newTestEngine(t, content.NewCorpusProducer())
	event := putEvent(t, engine, pedestrianEvent())

	analysis, err := engine.Analyze(context.Background(), event.DatasetID, event.ID)
	require.NoError(t, err)

	decision := analysis.JudgeDecision
	assert.Equal(t, datatypes.SafetyLab, decision.Winner)
	assert.GreaterOrEqual(t, decision.SafetyLabScore, 0.0)
	assert.LessOrEqual(t, decision.SafetyLabScore, 1.0)
	assert.Greater(t, decision.SafetyLabScore, decision.PerformanceLabScore)

	// Both labs ran against the seed genomes.
	assert.Equal(t, storage.InitialVersion, analysis.SafetyGenomeVersion)
	assert.Equal(t, storage.InitialVersion, analysis.PerformanceGenomeVersion)
	assert.NotZero(t, analysis.SafetyLabOutput.PapersAnalyzed)
	assert.NotZero(t, analysis.PerformanceLabOutput.PapersAnalyzed)

	// Only the losing lab evolved.
	assert.Empty(t, analysis.NewSafetyGenomeVersion)
	assert.Equal(t, "v0.2", analysis.NewPerformanceGenomeVersion)

	evolved, err := engine.Store().ActiveGenome(datatypes.PerformanceLab)
	require.NoError(t, err)
	assert.Equal(t, "v0.2", evolved.Version)
	assert.Equal(t, storage.InitialVersion, evolved.ParentVersion)
	assert.NotEmpty(t, evolved.ChangeDescription)

	unchanged, err := engine.Store().ActiveGenome(datatypes.SafetyLab)
	require.NoError(t, err)
	assert.Equal(t, storage.InitialVersion, unchanged.Version)
}

func TestEngine_Analyze_Idempotent(t *testing.T) {
	engine := newTestEngine(t, content.NewCorpusProducer())
	event := putEvent(t, engine, pedestrianEvent())
	ctx := context.Background()

	first, err := engine.Analyze(ctx, event.DatasetID, event.ID)
	require.NoError(t, err)
	second, err := engine.Analyze(ctx, event.DatasetID, event.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.JudgeDecision, second.JudgeDecision)

	// The repeat run produced no further evolution.
	history, err := engine.Store().GenomeHistory(datatypes.PerformanceLab)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestEngine_Analyze_Deterministic(t *testing.T) {
	ctx := context.Background()
	var decisions []datatypes.JudgeDecision
	for i := 0; i < 2; i++ {
		engine := newTestEngine(t, content.NewCorpusProducer())
		event := putEvent(t, engine, pedestrianEvent())
		analysis, err := engine.Analyze(ctx, event.DatasetID, event.ID)
		require.NoError(t, err)
		decisions = append(decisions, analysis.JudgeDecision)
	}
	assert.Equal(t, decisions[0].Winner, decisions[1].Winner)
	assert.Equal(t, decisions[0].SafetyLabScore, decisions[1].SafetyLabScore)
	assert.Equal(t, decisions[0].PerformanceLabScore, decisions[1].PerformanceLabScore)
	assert.Equal(t, decisions[0].CriterionScores, decisions[1].CriterionScores)
}

func TestEngine_Analyze_DegradedProducerTies(t *testing.T) {
	engine := newTestEngine(t, failingProducer{})
	event := putEvent(t, engine, pedestrianEvent())

	analysis, err := engine.Analyze(context.Background(), event.DatasetID, event.ID)
	require.NoError(t, err)

	// Both labs degraded identically, so neither can win.
	assert.Equal(t, datatypes.TieWinner, analysis.JudgeDecision.Winner)
	assert.True(t, analysis.SafetyLabOutput.Synthesis.Degraded)
	assert.True(t, analysis.PerformanceLabOutput.Synthesis.Degraded)
	assert.Equal(t, datatypes.ConfidenceLow, analysis.SafetyLabOutput.Synthesis.ConfidenceLevel)

	// A tie evolves nothing.
	assert.Empty(t, analysis.NewSafetyGenomeVersion)
	assert.Empty(t, analysis.NewPerformanceGenomeVersion)
	for _, lab := range datatypes.LabNames() {
		history, err := engine.Store().GenomeHistory(lab)
		require.NoError(t, err)
		assert.Len(t, history, 1)
	}
}

func TestEngine_Analyze_ConcurrentCallsCommitOnce(t *testing.T) {
	engine := newTestEngine(t, content.NewCorpusProducer())
	event := putEvent(t, engine, pedestrianEvent())

	// All callers race through the full pipeline; the losing commits
	// hit the conflict path and must settle on the first analysis.
	const callers = 8
	results := make([]datatypes.Analysis, callers)
	var g errgroup.Group
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			analysis, err := engine.Analyze(context.Background(), event.DatasetID, event.ID)
			if err != nil {
				return err
			}
			results[i] = analysis
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for _, analysis := range results[1:] {
		assert.Equal(t, results[0].ID, analysis.ID)
		assert.Equal(t, results[0].JudgeDecision, analysis.JudgeDecision)
	}

	// Exactly one evolution happened despite the racing callers.
	history, err := engine.Store().GenomeHistory(datatypes.PerformanceLab)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	for _, lab := range datatypes.LabNames() {
		history, err := engine.Store().GenomeHistory(lab)
		require.NoError(t, err)
		var active int
		for _, genome := range history {
			if genome.Active {
				active++
			}
		}
		assert.Equal(t, 1, active, "lab %s", lab)
	}
}

func TestEngine_Analyze_EventNotFound(t *testing.T) {
	engine := newTestEngine(t, content.NewCorpusProducer())
	_, err := engine.Analyze(context.Background(), "ds-1", "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestEngine_Analyze_MalformedGenomeFailsFatally(t *testing.T) {
	engine := newTestEngine(t, content.NewCorpusProducer())
	event := putEvent(t, engine, pedestrianEvent())

	// Promote a genome with no retrieval keywords; the planner must
	// reject it and the analysis must not partially commit.
	broken, err := engine.Store().ActiveGenome(datatypes.SafetyLab)
	require.NoError(t, err)
	broken.Version = "v0.2"
	broken.ParentVersion = storage.InitialVersion
	broken.Config.RetrievalPreferences.Keywords = nil
	broken.Active = true
	require.NoError(t, engine.Store().PutGenomeVersion(broken))

	_, err = engine.Analyze(context.Background(), event.DatasetID, event.ID)
	var planErr *agents.PlanningError
	require.ErrorAs(t, err, &planErr)
	assert.Equal(t, datatypes.SafetyLab, planErr.LabName)
	assert.Equal(t, "v0.2", planErr.GenomeVersion)

	_, err = engine.GetAnalysis(event.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
