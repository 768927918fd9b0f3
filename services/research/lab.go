// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package research runs the two-lab analysis engine: independent
// research pipelines per lab, a deterministic judge, and genome
// evolution for the losing lab.
package research

import (
	"context"
	"time"

	"github.com/AutoLabAI/AutoLabDrive/services/research/agents"
	"github.com/AutoLabAI/AutoLabDrive/services/research/content"
	"github.com/AutoLabAI/AutoLabDrive/services/research/datatypes"
	"github.com/AutoLabAI/AutoLabDrive/services/research/params"
)

// labTopCount is how many critiqued papers a lab reports as its top
// set. The judge scores over exactly these.
const labTopCount = 3

// RunLab executes one lab's five-stage pipeline against an event using
// the lab's genome: plan, retrieve, read, critique, synthesize.
//
// The pipeline is pure given its inputs; the lab's behavior differences
// come entirely from the genome. Retrieval failure degrades to an empty
// candidate set and a low-confidence synthesis rather than an error. A
// planning failure or cancellation of ctx is returned as an error and
// fails the whole analysis.
func RunLab(ctx context.Context, producer content.Producer, event datatypes.Event,
	genome datatypes.StrategyGenome, p params.Params) (datatypes.LabOutput, error) {

	start := time.Now()

	plan, err := agents.Plan(event, genome)
	if err != nil {
		return datatypes.LabOutput{}, err
	}

	candidates, degraded, err := agents.Retrieve(ctx, producer, plan, genome, p)
	if err != nil {
		return datatypes.LabOutput{}, err
	}

	read := agents.Read(candidates, genome)
	critiqued := agents.Critique(read, event, genome, p)
	synthesis := agents.Synthesize(plan, critiqued, event, genome, degraded)

	top := critiqued
	if len(top) > labTopCount {
		top = top[:labTopCount]
	}

	return datatypes.LabOutput{
		LabName:        genome.LabName,
		GenomeVersion:  genome.Version,
		ResearchPlan:   plan,
		PapersAnalyzed: len(critiqued),
		TopPapers:      top,
		Synthesis:      synthesis,
		DurationMS:     time.Since(start).Milliseconds(),
	}, nil
}
