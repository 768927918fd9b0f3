// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AutoLabAI/AutoLabDrive/services/research/datatypes"
)

// InitialVersion is the version every lab's founding genome carries.
const InitialVersion = "v0.1"

// SeedGenomes installs the founding v0.1 genome for any lab that does
// not yet have one. Labs that already have an active genome are left
// alone, so the call is safe on every startup.
func (s *Store) SeedGenomes() error {
	for _, lab := range datatypes.LabNames() {
		if _, err := s.ActiveGenome(lab); err == nil {
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := s.PutGenomeVersion(initialGenome(lab)); err != nil {
			return fmt.Errorf("seed %s genome: %w", lab, err)
		}
	}
	return nil
}

// initialGenome returns the founding strategy for a lab. SafetyLab
// starts wide on years and weighted toward safety venues and critique
// dimensions; PerformanceLab starts recent-only and weighted toward
// efficiency.
func initialGenome(lab string) datatypes.StrategyGenome {
	config := datatypes.GenomeConfig{
		RetrievalPreferences: datatypes.RetrievalPreferences{
			YearWindow: [2]int{2018, 2024},
			VenueWeights: map[string]float64{
				"ICRA": 0.9, "IV": 0.85, "IROS": 0.8, "ITSC": 0.75,
			},
			Keywords: []string{
				"collision avoidance", "safety critical systems", "risk assessment",
				"autonomous driving safety", "pedestrian detection",
			},
			MethodCategories: []string{
				"safety_verification", "risk_assessment", "robust_perception",
			},
		},
		ReadingTemplate: datatypes.ReadingTemplate{
			ExtractFields: []string{
				"method_name", "safety_guarantees", "failure_modes",
				"robustness_metrics", "deployment_notes", "limitations",
			},
		},
		CritiqueFocus: datatypes.CritiqueFocus{
			Dimensions: []string{"safety", "robustness", "novelty", "computational_efficiency"},
			Weights: map[string]float64{
				"safety": 0.9, "robustness": 0.8, "novelty": 0.6, "computational_efficiency": 0.3,
			},
		},
		SynthesisStyle: datatypes.SynthesisStyle{
			Audience:  "safety_engineers",
			MaxTokens: 500,
			Emphasis:  "risk_mitigation",
		},
	}
	if lab == datatypes.PerformanceLab {
		config = datatypes.GenomeConfig{
			RetrievalPreferences: datatypes.RetrievalPreferences{
				YearWindow: [2]int{2020, 2024},
				VenueWeights: map[string]float64{
					"CVPR": 0.9, "NeurIPS": 0.85, "ICCV": 0.8, "ECCV": 0.75,
				},
				Keywords: []string{
					"optimization", "computational efficiency", "real-time processing",
					"neural network acceleration", "model compression",
				},
				MethodCategories: []string{
					"end_to_end_learning", "efficient_perception", "model_based_control",
				},
			},
			ReadingTemplate: datatypes.ReadingTemplate{
				ExtractFields: []string{
					"method_name", "performance_metrics", "computational_cost",
					"benchmark_results", "deployment_notes", "scalability",
				},
			},
			CritiqueFocus: datatypes.CritiqueFocus{
				Dimensions: []string{"computational_efficiency", "novelty", "robustness", "safety"},
				Weights: map[string]float64{
					"computational_efficiency": 0.9, "novelty": 0.8, "robustness": 0.6, "safety": 0.3,
				},
			},
			SynthesisStyle: datatypes.SynthesisStyle{
				Audience:  "performance_engineers",
				MaxTokens: 400,
				Emphasis:  "benchmarks",
			},
		}
	}
	return datatypes.StrategyGenome{
		LabName:           lab,
		Version:           InitialVersion,
		Config:            config,
		ChangeDescription: "initial strategy",
		Active:            true,
		CreatedAt:         time.Now().UTC(),
	}
}

// SeedDemoEvents inserts a small set of representative driving events
// into a dataset and returns them. Intended for the CLI's seed command
// and local demos.
func (s *Store) SeedDemoEvents(datasetID string) ([]datatypes.Event, error) {
	now := time.Now().UTC()
	events := []datatypes.Event{
		{
			EventType:      datatypes.EventPedestrian,
			Severity:       datatypes.SeverityHigh,
			EgoSpeedMPS:    12.5,
			RoadType:       "urban",
			Weather:        "clear",
			PedestrianFlag: true,
			Description:    "Pedestrian stepped off the curb mid-block while the vehicle approached a crosswalk",
		},
		{
			EventType:     datatypes.EventCutIn,
			Severity:      datatypes.SeverityMedium,
			EgoSpeedMPS:   27.0,
			RoadType:      "highway",
			Weather:       "clear",
			LeadDistanceM: 8.2,
			CutInFlag:     true,
			Description:   "Adjacent vehicle cut in with a short gap during highway merge",
		},
		{
			EventType:   datatypes.EventAdverseWeather,
			Severity:    datatypes.SeverityMedium,
			EgoSpeedMPS: 18.0,
			RoadType:    "rural",
			Weather:     "heavy_rain",
			Description: "Reduced perception range in heavy rain on an unlit rural road",
		},
		{
			EventType:     datatypes.EventSuddenBrake,
			Severity:      datatypes.SeverityLow,
			EgoSpeedMPS:   22.0,
			RoadType:      "highway",
			Weather:       "clear",
			LeadDistanceM: 35.0,
			Description:   "Lead vehicle braked moderately with ample following distance",
		},
	}
	for i := range events {
		events[i].ID = uuid.NewString()
		events[i].DatasetID = datasetID
		events[i].CreatedAt = now
		if err := s.PutEvent(events[i]); err != nil {
			return nil, err
		}
	}
	return events, nil
}
