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
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/AutoLabAI/AutoLabDrive/services/research/agents"
	"github.com/AutoLabAI/AutoLabDrive/services/research/content"
	"github.com/AutoLabAI/AutoLabDrive/services/research/datatypes"
	"github.com/AutoLabAI/AutoLabDrive/services/research/params"
	"github.com/AutoLabAI/AutoLabDrive/services/research/storage"
	"github.com/AutoLabAI/AutoLabDrive/services/research/telemetry"
)

// commitRetries bounds how often Analyze retries after losing the
// active-genome race to a concurrent analysis.
const commitRetries = 3

// Engine coordinates one full analysis: both lab pipelines in
// parallel, the judge, the meta-learner, and the atomic commit.
//
// Thread Safety: safe for concurrent use. Concurrent analyses of the
// same event resolve to one stored record; concurrent analyses of
// different events serialize their genome evolution through the
// store's optimistic commit.
type Engine struct {
	store    *storage.Store
	producer content.Producer
	params   *params.Source
	logger   *slog.Logger
	metrics  *telemetry.Metrics
	tracer   trace.Tracer
}

// NewEngine builds an engine. metrics may be nil, which disables
// instrument recording.
func NewEngine(store *storage.Store, producer content.Producer, src *params.Source,
	logger *slog.Logger, metrics *telemetry.Metrics) *Engine {

	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:    store,
		producer: producer,
		params:   src,
		logger:   logger,
		metrics:  metrics,
		tracer:   otel.Tracer("research-engine"),
	}
}

// Analyze runs the full pipeline for one event and returns the stored
// analysis.
//
// The operation is idempotent: if an analysis already exists for the
// event it is returned unchanged and no lab work runs. Both labs read
// their genome from one consistent snapshot; the analysis record and
// any evolved genome commit atomically, and a run that loses the
// genome race to a concurrent analysis is retried with fresh genomes.
func (e *Engine) Analyze(ctx context.Context, datasetID, eventID string) (datatypes.Analysis, error) {
	ctx, span := e.tracer.Start(ctx, "engine.Analyze",
		trace.WithAttributes(
			attribute.String("dataset.id", datasetID),
			attribute.String("event.id", eventID),
		))
	defer span.End()

	if existing, err := e.store.AnalysisByEvent(eventID); err == nil {
		e.logger.InfoContext(ctx, "analysis already exists, returning stored record",
			"event_id", eventID, "analysis_id", existing.ID)
		return existing, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return datatypes.Analysis{}, err
	}

	event, err := e.store.GetEvent(datasetID, eventID)
	if err != nil {
		return datatypes.Analysis{}, err
	}

	var lastErr error
	for attempt := 0; attempt < commitRetries; attempt++ {
		analysis, err := e.runOnce(ctx, event)
		switch {
		case err == nil:
			return analysis, nil
		case errors.Is(err, storage.ErrAnalysisExists):
			// A concurrent request beat us; theirs is the record.
			return e.store.AnalysisByEvent(eventID)
		case errors.Is(err, storage.ErrConflict):
			e.count(ctx, e.metricsCommitConflicts())
			e.logger.WarnContext(ctx, "analysis commit conflict, retrying with fresh genomes",
				"event_id", eventID, "attempt", attempt+1)
			lastErr = err
		default:
			return datatypes.Analysis{}, err
		}
	}
	return datatypes.Analysis{}, fmt.Errorf("analysis of event %s: %w", eventID, lastErr)
}

// runOnce performs one attempt: snapshot genomes, run labs, judge,
// evolve, commit.
func (e *Engine) runOnce(ctx context.Context, event datatypes.Event) (datatypes.Analysis, error) {
	start := time.Now()
	p := e.params.Current()

	genomes, err := e.store.ActiveGenomes()
	if err != nil {
		return datatypes.Analysis{}, err
	}
	safetyGenome := genomes[datatypes.SafetyLab]
	performanceGenome := genomes[datatypes.PerformanceLab]

	var safetyOut, performanceOut datatypes.LabOutput
	g, groupCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		safetyOut, err = RunLab(groupCtx, e.producer, event, safetyGenome, p)
		return err
	})
	g.Go(func() error {
		var err error
		performanceOut, err = RunLab(groupCtx, e.producer, event, performanceGenome, p)
		return err
	})
	if err := g.Wait(); err != nil {
		e.countComponent(ctx, err)
		return datatypes.Analysis{}, err
	}
	e.recordLabRuns(ctx, safetyOut, performanceOut)

	decision, err := agents.Judge(event, safetyOut, performanceOut, p)
	if err != nil {
		e.countComponent(ctx, err)
		return datatypes.Analysis{}, err
	}

	evolved, err := agents.Evolve(decision, safetyGenome, performanceGenome, p)
	if err != nil {
		e.countComponent(ctx, err)
		return datatypes.Analysis{}, err
	}

	analysis := datatypes.Analysis{
		ID:                       uuid.NewString(),
		EventID:                  event.ID,
		SafetyLabOutput:          safetyOut,
		PerformanceLabOutput:     performanceOut,
		JudgeDecision:            decision,
		SafetyGenomeVersion:      safetyGenome.Version,
		PerformanceGenomeVersion: performanceGenome.Version,
		DurationMS:               time.Since(start).Milliseconds(),
		CreatedAt:                time.Now().UTC(),
	}

	var newGenomes []datatypes.StrategyGenome
	if evolved != nil {
		newGenomes = append(newGenomes, *evolved)
		switch evolved.LabName {
		case datatypes.SafetyLab:
			analysis.NewSafetyGenomeVersion = evolved.Version
		case datatypes.PerformanceLab:
			analysis.NewPerformanceGenomeVersion = evolved.Version
		}
	}

	expected := map[string]string{
		datatypes.SafetyLab:      safetyGenome.Version,
		datatypes.PerformanceLab: performanceGenome.Version,
	}
	if err := e.store.CommitAnalysis(analysis, newGenomes, expected); err != nil {
		return datatypes.Analysis{}, err
	}

	e.recordAnalysis(ctx, analysis, evolved)
	e.logger.InfoContext(ctx, "analysis complete",
		"event_id", event.ID,
		"analysis_id", analysis.ID,
		"winner", decision.Winner,
		"safety_score", decision.SafetyLabScore,
		"performance_score", decision.PerformanceLabScore,
		"duration_ms", analysis.DurationMS)
	return analysis, nil
}

// GetAnalysis returns the stored analysis for an event, or
// storage.ErrNotFound.
func (e *Engine) GetAnalysis(eventID string) (datatypes.Analysis, error) {
	return e.store.AnalysisByEvent(eventID)
}

// Store exposes the engine's persistence layer for event and genome
// reads that need no pipeline work.
func (e *Engine) Store() *storage.Store { return e.store }

// =============================================================================
// Metrics plumbing (nil-safe)
// =============================================================================

func (e *Engine) recordLabRuns(ctx context.Context, outputs ...datatypes.LabOutput) {
	if e.metrics == nil {
		return
	}
	for _, out := range outputs {
		e.metrics.LabRunDuration.Record(ctx, float64(out.DurationMS)/1000,
			labAttr(out.LabName))
		if out.Synthesis.Degraded {
			e.metrics.RetrievalTimeoutsTotal.Add(ctx, 1, labAttr(out.LabName))
		}
	}
}

func (e *Engine) recordAnalysis(ctx context.Context, analysis datatypes.Analysis, evolved *datatypes.StrategyGenome) {
	if e.metrics == nil {
		return
	}
	e.metrics.AnalysesTotal.Add(ctx, 1,
		metricAttr("winner", analysis.JudgeDecision.Winner))
	e.metrics.AnalysisDuration.Record(ctx, float64(analysis.DurationMS)/1000)
	if evolved != nil {
		e.metrics.GenomeEvolutionsTotal.Add(ctx, 1, labAttr(evolved.LabName))
	}
}

func (e *Engine) metricsCommitConflicts() func(ctx context.Context) {
	if e.metrics == nil {
		return nil
	}
	return func(ctx context.Context) {
		e.metrics.CommitConflictsTotal.Add(ctx, 1)
	}
}

func (e *Engine) count(ctx context.Context, fn func(ctx context.Context)) {
	if fn != nil {
		fn(ctx)
	}
}

func (e *Engine) countComponent(ctx context.Context, err error) {
	if e.metrics == nil {
		return
	}
	component := "engine"
	var planErr *agents.PlanningError
	var contractErr *agents.ContractViolationError
	switch {
	case errors.As(err, &planErr):
		component = "planner"
	case errors.As(err, &contractErr):
		component = contractErr.Component
	}
	e.metrics.ErrorsTotal.Add(ctx, 1, metricAttr("component", component))
}

func labAttr(lab string) metric.MeasurementOption {
	return metricAttr("lab", lab)
}

func metricAttr(key, value string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String(key, value))
}
