// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package agents implements the research pipeline stages as pure
// functions: planner, retriever, reader, critic, synthesizer, plus the
// judge and meta-learner that operate across both labs. Every function
// here is deterministic in its inputs; no stage keeps hidden state.
package agents

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/AutoLabAI/AutoLabDrive/services/research/datatypes"
)

var validate = validator.New()

// Plan builds the research plan for one event under one genome.
//
// Sub-questions and search strategy are derived from the lab identity
// and event type. Effective keywords are the genome's keywords plus
// event-derived terms (the event type with spaces, and non-clear
// weather). Fails with *PlanningError only when the genome is missing
// required sub-objects.
func Plan(event datatypes.Event, genome datatypes.StrategyGenome) (datatypes.ResearchPlan, error) {
	if err := validate.Struct(genome.Config); err != nil {
		return datatypes.ResearchPlan{}, &PlanningError{
			LabName:       genome.LabName,
			GenomeVersion: genome.Version,
			Reason:        fmt.Sprintf("malformed genome config: %v", err),
		}
	}

	return datatypes.ResearchPlan{
		LabName:            genome.LabName,
		EventType:          event.EventType,
		SubQuestions:       subQuestions(genome.LabName, event),
		SearchStrategy:     searchStrategy(genome.LabName),
		Keywords:           effectiveKeywords(event, genome),
		PriorityDimensions: append([]string(nil), genome.Config.CritiqueFocus.Dimensions...),
	}, nil
}

func subQuestions(labName string, event datatypes.Event) []string {
	scenario := strings.ReplaceAll(string(event.EventType), "_", " ")
	if labName == datatypes.SafetyLab {
		return []string{
			fmt.Sprintf("What are the safety-critical aspects of %s scenarios?", scenario),
			fmt.Sprintf("What robust methods exist for handling %s under %s conditions?", scenario, weatherOrClear(event)),
			"What are the failure modes and mitigation strategies?",
		}
	}
	return []string{
		fmt.Sprintf("What are the state-of-the-art methods for %s scenarios?", scenario),
		fmt.Sprintf("How can we optimize real-time performance for %s handling?", scenario),
		"What are the benchmark results for similar scenarios?",
	}
}

func searchStrategy(labName string) string {
	if labName == datatypes.SafetyLab {
		return "Focus on safety verification and robustness"
	}
	return "Focus on performance and efficiency"
}

func effectiveKeywords(event datatypes.Event, genome datatypes.StrategyGenome) []string {
	keywords := append([]string(nil), genome.Config.RetrievalPreferences.Keywords...)
	seen := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		seen[strings.ToLower(kw)] = true
	}
	add := func(kw string) {
		if kw == "" || seen[strings.ToLower(kw)] {
			return
		}
		seen[strings.ToLower(kw)] = true
		keywords = append(keywords, kw)
	}

	add(strings.ReplaceAll(string(event.EventType), "_", " "))
	if event.Weather != "" && event.Weather != "clear" {
		add(event.Weather)
	}
	return keywords
}

func weatherOrClear(event datatypes.Event) string {
	if event.Weather == "" {
		return "clear"
	}
	return event.Weather
}
