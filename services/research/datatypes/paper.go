// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

// Paper is one candidate research result flowing through a lab
// pipeline. The retriever produces it, the reader fills Extracted,
// the critic fills Critique. Papers are transient per-analysis data;
// they persist only as embedded content of an Analysis.
type Paper struct {
	Title          string   `json:"title"`
	Authors        []string `json:"authors,omitempty"`
	Venue          string   `json:"venue"`
	Year           int      `json:"year"`
	MethodCategory string   `json:"method_category"`
	Abstract       string   `json:"abstract,omitempty"`

	// KeyResults holds the paper's reported numeric results, keyed by
	// metric name (collision_rate, fps, map_score, ...).
	KeyResults map[string]float64 `json:"key_results,omitempty"`

	DeploymentNotes string `json:"deployment_notes,omitempty"`

	// RelevanceScore is set by the retriever from venue weights and
	// keyword overlap; used only for candidate ranking.
	RelevanceScore float64 `json:"relevance_score,omitempty"`

	// Extracted is populated by the reader stage according to the
	// genome's reading template. Missing values carry a sentinel.
	Extracted map[string]string `json:"extracted,omitempty"`

	// Critique is populated by the critic stage.
	Critique *Critique `json:"critique,omitempty"`
}

// Critique is the critic stage's evaluation of one paper.
type Critique struct {
	// Scores holds one value in [0,1] per critique-focus dimension.
	Scores map[string]float64 `json:"scores"`

	// OverallScore is the weighted average of Scores using the genome's
	// critique weights. Dimensions without a listed weight count 0.
	OverallScore float64 `json:"overall_score"`

	Strengths  []string `json:"strengths,omitempty"`
	Weaknesses []string `json:"weaknesses,omitempty"`
}

// ResearchPlan is the planner stage's output.
type ResearchPlan struct {
	LabName        string    `json:"lab_name"`
	EventType      EventType `json:"event_type"`
	SubQuestions   []string  `json:"sub_questions"`
	SearchStrategy string    `json:"search_strategy"`

	// Keywords is the effective search list: genome keywords plus
	// event-derived terms.
	Keywords []string `json:"keywords"`

	// PriorityDimensions mirrors the genome's critique dimensions.
	PriorityDimensions []string `json:"priority_dimensions"`
}

// ConfidenceLevel grades how much weight a synthesis deserves.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// TopPaper is the compact per-paper entry embedded in a Synthesis.
type TopPaper struct {
	Title          string  `json:"title"`
	Year           int     `json:"year"`
	Score          float64 `json:"score"`
	MethodCategory string  `json:"method_category,omitempty"`
}

// Synthesis is the final scored recommendation a lab produces for one
// event.
type Synthesis struct {
	Summary                   string            `json:"summary"`
	KeyMethods                []string          `json:"key_methods"`
	TopPapers                 []TopPaper        `json:"top_papers"`
	DeploymentRecommendations []string          `json:"deployment_recommendations"`
	TradeOffs                 map[string]string `json:"trade_offs,omitempty"`
	ConfidenceLevel           ConfidenceLevel   `json:"confidence_level"`

	// Degraded marks a synthesis produced from an empty candidate set
	// after a retrieval timeout.
	Degraded bool `json:"degraded,omitempty"`
}

// LabOutput bundles everything one lab produced for one event.
type LabOutput struct {
	LabName        string       `json:"lab_name"`
	GenomeVersion  string       `json:"genome_version"`
	ResearchPlan   ResearchPlan `json:"research_plan"`
	PapersAnalyzed int          `json:"papers_analyzed"`
	TopPapers      []Paper      `json:"top_papers"`
	Synthesis      Synthesis    `json:"synthesis"`
	DurationMS     int64        `json:"duration_ms"`
}
