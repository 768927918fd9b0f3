// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// Metrics contains the research engine's pre-defined instruments. All
// metrics use the "research_" prefix.
//
// Thread Safety: Safe for concurrent use after creation.
type Metrics struct {
	// AnalysesTotal counts completed analyses by winner.
	AnalysesTotal metric.Int64Counter

	// AnalysisDuration records end-to-end analysis duration in seconds.
	AnalysisDuration metric.Float64Histogram

	// LabRunDuration records one lab pipeline's duration in seconds,
	// by lab.
	LabRunDuration metric.Float64Histogram

	// GenomeEvolutionsTotal counts genome versions created, by lab.
	GenomeEvolutionsTotal metric.Int64Counter

	// RetrievalTimeoutsTotal counts degraded retrievals, by lab.
	RetrievalTimeoutsTotal metric.Int64Counter

	// CommitConflictsTotal counts analysis commits that lost a race
	// with a concurrent run.
	CommitConflictsTotal metric.Int64Counter

	// ErrorsTotal counts errors by component.
	ErrorsTotal metric.Int64Counter
}

// NewMetrics registers all engine metrics with the provided meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.AnalysesTotal, err = meter.Int64Counter(
		"research_analyses_total",
		metric.WithDescription("Total completed analyses"),
		metric.WithUnit("{analysis}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create analyses_total: %w", err)
	}

	m.AnalysisDuration, err = meter.Float64Histogram(
		"research_analysis_duration_seconds",
		metric.WithDescription("End-to-end analysis duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	if err != nil {
		return nil, fmt.Errorf("create analysis_duration: %w", err)
	}

	m.LabRunDuration, err = meter.Float64Histogram(
		"research_lab_run_duration_seconds",
		metric.WithDescription("Single lab pipeline duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15),
	)
	if err != nil {
		return nil, fmt.Errorf("create lab_run_duration: %w", err)
	}

	m.GenomeEvolutionsTotal, err = meter.Int64Counter(
		"research_genome_evolutions_total",
		metric.WithDescription("Total genome versions created by evolution"),
		metric.WithUnit("{genome}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create genome_evolutions_total: %w", err)
	}

	m.RetrievalTimeoutsTotal, err = meter.Int64Counter(
		"research_retrieval_timeouts_total",
		metric.WithDescription("Total retrievals degraded by timeout or producer failure"),
		metric.WithUnit("{retrieval}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create retrieval_timeouts_total: %w", err)
	}

	m.CommitConflictsTotal, err = meter.Int64Counter(
		"research_commit_conflicts_total",
		metric.WithDescription("Total analysis commits rejected by optimistic concurrency"),
		metric.WithUnit("{commit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create commit_conflicts_total: %w", err)
	}

	m.ErrorsTotal, err = meter.Int64Counter(
		"research_errors_total",
		metric.WithDescription("Total errors by component"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create errors_total: %w", err)
	}

	return m, nil
}
