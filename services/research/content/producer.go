// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package content abstracts where candidate papers come from. The
// retriever stage depends only on the Producer interface, so the
// built-in deterministic corpus, an LLM-backed generator, or a real
// literature API can be swapped without touching the pipeline.
package content

import (
	"context"

	"github.com/AutoLabAI/AutoLabDrive/services/research/datatypes"
)

// Query carries the retriever's search parameters.
type Query struct {
	Keywords []string

	// YearWindow is the inclusive [start, end] publication range.
	// A zero window means unfiltered.
	YearWindow [2]int

	// MethodCategories, when non-empty, restricts results to papers in
	// the listed categories.
	MethodCategories []string

	// Limit caps the number of returned papers. Zero means the
	// producer's default.
	Limit int
}

// Producer is the single content-discovery contract. Implementations
// must respect ctx cancellation and deadlines; a slow backend is
// surfaced to the retriever as a context error, which the pipeline
// degrades rather than fails on.
type Producer interface {
	Search(ctx context.Context, q Query) ([]datatypes.Paper, error)
}
