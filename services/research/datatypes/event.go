// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes holds the plain data records exchanged between the
// research engine's components: events, strategy genomes, papers, lab
// outputs, judge decisions, and the durable Analysis record.
//
// Everything in this package is a plain struct with JSON tags. No type
// here carries behavior beyond small derivation helpers; the engine's
// logic lives in services/research and services/research/agents.
package datatypes

import "time"

// EventType classifies a detected driving scenario.
type EventType string

const (
	EventCutIn          EventType = "cut_in"
	EventPedestrian     EventType = "pedestrian"
	EventAdverseWeather EventType = "adverse_weather"
	EventCloseFollowing EventType = "close_following"
	EventSuddenBrake    EventType = "sudden_brake"
	EventLaneChange     EventType = "lane_change"
	EventOther          EventType = "other"
)

// Severity grades how dangerous an event is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Event is an immutable detected driving scenario supplied by an
// external event-detection collaborator. The research engine reads
// events and never mutates them.
type Event struct {
	ID        string    `json:"id"`
	DatasetID string    `json:"dataset_id"`
	EventType EventType `json:"event_type"`
	Severity  Severity  `json:"severity"`

	// Scenario context from telemetry.
	EgoSpeedMPS   float64 `json:"ego_speed_mps,omitempty"`
	RoadType      string  `json:"road_type,omitempty"`
	Weather       string  `json:"weather,omitempty"`
	LeadDistanceM float64 `json:"lead_distance_m,omitempty"`

	CutInFlag      bool `json:"cut_in_flag,omitempty"`
	PedestrianFlag bool `json:"pedestrian_flag,omitempty"`

	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ValidEventType reports whether t is one of the known event types.
func ValidEventType(t EventType) bool {
	switch t {
	case EventCutIn, EventPedestrian, EventAdverseWeather,
		EventCloseFollowing, EventSuddenBrake, EventLaneChange, EventOther:
		return true
	}
	return false
}

// ValidSeverity reports whether s is one of the known severity grades.
func ValidSeverity(s Severity) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}
