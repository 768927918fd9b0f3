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
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/AutoLabAI/AutoLabDrive/services/research/content"
	"github.com/AutoLabAI/AutoLabDrive/services/research/datatypes"
	"github.com/AutoLabAI/AutoLabDrive/services/research/params"
)

// Retrieve fetches candidate papers for a plan through the injected
// content producer, then applies the genome's year window and venue
// weights before truncating to the configured top N.
//
// The producer call is bounded by the retrieval timeout. A timeout (or
// producer cancellation) degrades to an empty candidate set with
// degraded=true so the pipeline still produces a low-confidence
// synthesis instead of failing the analysis. Only cancellation of the
// caller's own ctx is returned as an error.
func Retrieve(ctx context.Context, producer content.Producer, plan datatypes.ResearchPlan,
	genome datatypes.StrategyGenome, p params.Params) (papers []datatypes.Paper, degraded bool, err error) {

	prefs := genome.Config.RetrievalPreferences

	timeout := time.Duration(p.RetrievalTimeoutMS) * time.Millisecond
	searchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results, err := producer.Search(searchCtx, content.Query{
		Keywords:         plan.Keywords,
		YearWindow:       prefs.YearWindow,
		MethodCategories: prefs.MethodCategories,
		Limit:            p.RetrieverTopN,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			slog.Warn("content producer timed out, degrading to empty candidate set",
				"lab", genome.LabName, "timeout_ms", p.RetrievalTimeoutMS)
			return nil, true, nil
		}
		// Producer failures other than timeouts also degrade. The
		// analysis must not abort because a content backend hiccuped.
		slog.Warn("content producer failed, degrading to empty candidate set",
			"lab", genome.LabName, "error", err)
		return nil, true, nil
	}

	// The producer already filtered by year window, but it is an
	// external capability. Re-apply the genome's window so pipeline
	// semantics never depend on producer behavior.
	kept := results[:0]
	for _, paper := range results {
		if prefs.YearWindow != [2]int{} && (paper.Year < prefs.YearWindow[0] || paper.Year > prefs.YearWindow[1]) {
			continue
		}
		paper.RelevanceScore = venueWeight(prefs.VenueWeights, paper.Venue, p.DefaultVenueWeight)
		kept = append(kept, paper)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].RelevanceScore > kept[j].RelevanceScore
	})
	if len(kept) > p.RetrieverTopN {
		kept = kept[:p.RetrieverTopN]
	}
	return kept, false, nil
}

func venueWeight(weights map[string]float64, venue string, fallback float64) float64 {
	if w, ok := weights[venue]; ok {
		return w
	}
	return fallback
}
