// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package content

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/AutoLabAI/AutoLabDrive/services/llm"
	"github.com/AutoLabAI/AutoLabDrive/services/research/datatypes"
)

// LLMProducer asks a language model to surface candidate papers as
// JSON. Malformed model output degrades to an empty candidate list;
// the producer never fails an analysis over formatting.
type LLMProducer struct {
	client  llm.Client
	limiter *rate.Limiter
}

// NewLLMProducer wraps client with a request rate limit. rps <= 0
// disables limiting.
func NewLLMProducer(client llm.Client, rps float64) *LLMProducer {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &LLMProducer{client: client, limiter: limiter}
}

// Search implements Producer.
func (p *LLMProducer) Search(ctx context.Context, q Query) ([]datatypes.Paper, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	raw, err := p.client.Generate(ctx, buildSearchPrompt(q, limit), llm.GenerationParams{})
	if err != nil {
		return nil, fmt.Errorf("content search: %w", err)
	}

	papers, err := parsePapers(raw)
	if err != nil {
		slog.Warn("LLM produced unparseable paper list, degrading to empty candidates", "error", err)
		return nil, nil
	}

	var kept []datatypes.Paper
	for _, paper := range papers {
		if q.YearWindow != [2]int{} && (paper.Year < q.YearWindow[0] || paper.Year > q.YearWindow[1]) {
			continue
		}
		kept = append(kept, paper)
		if len(kept) == limit {
			break
		}
	}
	return kept, nil
}

func buildSearchPrompt(q Query, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Find up to %d research papers on autonomous driving relevant to: %s.\n",
		limit, strings.Join(q.Keywords, ", "))
	if q.YearWindow != [2]int{} {
		fmt.Fprintf(&b, "Only include papers published between %d and %d.\n", q.YearWindow[0], q.YearWindow[1])
	}
	if len(q.MethodCategories) > 0 {
		fmt.Fprintf(&b, "Restrict to method categories: %s.\n", strings.Join(q.MethodCategories, ", "))
	}
	b.WriteString(`Respond with a JSON array of objects with keys: title, authors, venue, year, method_category, abstract, key_results, deployment_notes.`)
	return b.String()
}

func parsePapers(raw string) ([]datatypes.Paper, error) {
	// Models wrap JSON in fences often enough that we strip them first.
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")

	var papers []datatypes.Paper
	if err := json.Unmarshal([]byte(strings.TrimSpace(trimmed)), &papers); err != nil {
		return nil, err
	}
	return papers, nil
}
