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
	"sort"
	"strings"

	"github.com/AutoLabAI/AutoLabDrive/services/research/datatypes"
)

// DefaultLimit caps corpus results when a query does not set one.
const DefaultLimit = 10

// CorpusProducer serves papers from a built-in corpus. Fully
// deterministic: the same query always returns the same papers in the
// same order.
type CorpusProducer struct {
	papers []datatypes.Paper
}

// NewCorpusProducer returns a producer over the built-in corpus.
func NewCorpusProducer() *CorpusProducer {
	return &CorpusProducer{papers: builtinCorpus()}
}

// NewCorpusProducerWith returns a producer over a caller-supplied
// corpus. Used by tests.
func NewCorpusProducerWith(papers []datatypes.Paper) *CorpusProducer {
	return &CorpusProducer{papers: papers}
}

// Search implements Producer. Relevance is the count of query keywords
// appearing in a paper's title, abstract, or method category. Papers
// with zero keyword overlap are kept at relevance 0 so a sparse query
// still yields candidates; ordering is relevance desc, year desc,
// title asc.
func (p *CorpusProducer) Search(ctx context.Context, q Query) ([]datatypes.Paper, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	var matched []datatypes.Paper
	for _, paper := range p.papers {
		if q.YearWindow != [2]int{} && (paper.Year < q.YearWindow[0] || paper.Year > q.YearWindow[1]) {
			continue
		}
		if len(q.MethodCategories) > 0 && !containsFold(q.MethodCategories, paper.MethodCategory) {
			continue
		}
		paper.RelevanceScore = keywordOverlap(paper, q.Keywords)
		matched = append(matched, paper)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].RelevanceScore != matched[j].RelevanceScore {
			return matched[i].RelevanceScore > matched[j].RelevanceScore
		}
		if matched[i].Year != matched[j].Year {
			return matched[i].Year > matched[j].Year
		}
		return matched[i].Title < matched[j].Title
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func keywordOverlap(paper datatypes.Paper, keywords []string) float64 {
	haystack := strings.ToLower(paper.Title + " " + paper.Abstract + " " +
		strings.ReplaceAll(paper.MethodCategory, "_", " "))
	var hits float64
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(kw)) {
			hits++
		}
	}
	return hits
}

func containsFold(list []string, want string) bool {
	for _, s := range list {
		if strings.EqualFold(s, want) {
			return true
		}
	}
	return false
}

// builtinCorpus is the hardcoded research corpus. Numeric results use
// the metric names the reader and critic stages understand
// (collision_rate, fps, map_score, safety_score, ...).
func builtinCorpus() []datatypes.Paper {
	return []datatypes.Paper{
		{
			Title:          "Safe Reinforcement Learning for Autonomous Driving with Reachability Analysis",
			Authors:        []string{"Smith, J.", "Johnson, A."},
			Venue:          "ICRA",
			Year:           2023,
			MethodCategory: "safety_verification",
			Abstract:       "A safe RL framework that uses reachability analysis to ensure collision-free behavior in dense traffic.",
			KeyResults: map[string]float64{
				"collision_rate":    0.001,
				"safety_violations": 0,
				"safety_score":      0.96,
				"test_scenarios":    10000,
			},
			DeploymentNotes: "Requires offline reachability set computation; suitable for structured environments",
		},
		{
			Title:          "Robust Perception Under Adverse Weather Using Multi-Modal Sensor Fusion",
			Authors:        []string{"Chen, L.", "Wang, Y."},
			Venue:          "CVPR",
			Year:           2023,
			MethodCategory: "robust_perception",
			Abstract:       "Multi-modal fusion combining camera, LiDAR, and radar for robust perception in rain and fog.",
			KeyResults: map[string]float64{
				"detection_accuracy_rain": 0.92,
				"detection_accuracy_fog":  0.88,
				"fps":                     25,
			},
			DeploymentNotes: "Requires calibrated multi-modal sensors; proven in real-world testing",
		},
		{
			Title:          "Uncertainty-Aware Planning for Safety-Critical Autonomous Driving",
			Authors:        []string{"Brown, M.", "Davis, K."},
			Venue:          "CoRL",
			Year:           2022,
			MethodCategory: "uncertainty_estimation",
			Abstract:       "Planning framework that explicitly models uncertainty in perception and prediction outputs.",
			KeyResults: map[string]float64{
				"safety_score":     0.95,
				"comfort_score":    0.82,
				"planning_time_ms": 50,
			},
			DeploymentNotes: "Suitable for urban environments; requires uncertainty-calibrated perception",
		},
		{
			Title:          "Pedestrian Intent Prediction with Spatio-Temporal Graph Networks",
			Authors:        []string{"Nakamura, H.", "Ito, R."},
			Venue:          "IV",
			Year:           2023,
			MethodCategory: "behavior_prediction",
			Abstract:       "Graph network predicting pedestrian crossing intent from pose and scene context for collision avoidance.",
			KeyResults: map[string]float64{
				"prediction_accuracy": 0.89,
				"safety_score":        0.91,
				"fps":                 40,
			},
			DeploymentNotes: "Requires pose estimation pipeline; limited in heavy occlusion",
		},
		{
			Title:          "Risk-Bounded Lane Change Planning via Chance Constraints",
			Authors:        []string{"Olsen, P.", "Garcia, M."},
			Venue:          "ITSC",
			Year:           2022,
			MethodCategory: "risk_assessment",
			Abstract:       "Chance-constrained lane change and cut-in handling with explicit risk bounds on surrounding traffic.",
			KeyResults: map[string]float64{
				"collision_rate":   0.002,
				"safety_score":     0.93,
				"planning_time_ms": 35,
			},
			DeploymentNotes: "Requires probabilistic prediction of neighbors; degrades with poor tracking",
		},
		{
			Title:          "Fail-Operational Motion Planning with Runtime Safety Monitors",
			Authors:        []string{"Keller, S.", "Braun, T."},
			Venue:          "IROS",
			Year:           2021,
			MethodCategory: "safety_verification",
			Abstract:       "Runtime monitor architecture that falls back to verified minimal-risk maneuvers on planner faults.",
			KeyResults: map[string]float64{
				"safety_violations": 0,
				"safety_score":      0.94,
				"planning_time_ms":  45,
			},
			DeploymentNotes: "Requires redundant compute path; certified for highway pilots",
		},
		{
			Title:          "End-to-End Autonomous Driving with Transformers",
			Authors:        []string{"Zhang, X.", "Liu, H."},
			Venue:          "NeurIPS",
			Year:           2023,
			MethodCategory: "end_to_end_learning",
			Abstract:       "Transformer-based end-to-end driving model achieving state-of-the-art performance on nuScenes.",
			KeyResults: map[string]float64{
				"nuscenes_score":    0.68,
				"planning_accuracy": 0.91,
				"fps":               30,
			},
			DeploymentNotes: "Requires large-scale training data; excellent generalization",
		},
		{
			Title:          "Real-Time 3D Object Detection with Efficient Neural Architectures",
			Authors:        []string{"Kim, S.", "Park, J."},
			Venue:          "CVPR",
			Year:           2023,
			MethodCategory: "efficient_perception",
			Abstract:       "Efficient 3D detection network optimized for real-time inference on edge devices.",
			KeyResults: map[string]float64{
				"map_score":  0.72,
				"fps":        60,
				"latency_ms": 16,
			},
			DeploymentNotes: "Optimized for edge deployment; minimal computational overhead",
		},
		{
			Title:          "Model Predictive Control with Learned Dynamics for Autonomous Driving",
			Authors:        []string{"Anderson, R.", "Taylor, S."},
			Venue:          "ICRA",
			Year:           2022,
			MethodCategory: "model_based_control",
			Abstract:       "MPC framework with learned vehicle dynamics achieving superior trajectory tracking.",
			KeyResults: map[string]float64{
				"tracking_error_m": 0.15,
				"comfort_score":    0.89,
				"planning_time_ms": 30,
			},
			DeploymentNotes: "Requires vehicle-specific dynamics learning; excellent control performance",
		},
		{
			Title:          "Knowledge Distillation for Compact Driving Policies",
			Authors:        []string{"Moreau, C.", "Lefevre, A."},
			Venue:          "ICCV",
			Year:           2023,
			MethodCategory: "model_compression",
			Abstract:       "Distilling large planner ensembles into compact student policies for real-time processing.",
			KeyResults: map[string]float64{
				"planning_accuracy": 0.88,
				"fps":               55,
				"latency_ms":        18,
			},
			DeploymentNotes: "Optimized for embedded targets; small accuracy drop versus teacher ensemble",
		},
		{
			Title:          "Sparse Query-Based Trajectory Prediction for Dense Traffic",
			Authors:        []string{"Huang, W.", "Zhao, Q."},
			Venue:          "ECCV",
			Year:           2022,
			MethodCategory: "behavior_prediction",
			Abstract:       "Sparse query attention for multi-agent trajectory prediction in cut-in and merge scenarios.",
			KeyResults: map[string]float64{
				"prediction_accuracy": 0.87,
				"fps":                 45,
				"latency_ms":          22,
			},
			DeploymentNotes: "Scalable to dense traffic; requires map priors",
		},
		{
			Title:          "Hardware-Aware Neural Architecture Search for Automotive Perception",
			Authors:        []string{"Novak, D.", "Silva, R."},
			Venue:          "NeurIPS",
			Year:           2021,
			MethodCategory: "efficient_perception",
			Abstract:       "Neural network acceleration through hardware-aware search targeting automotive SoCs.",
			KeyResults: map[string]float64{
				"map_score":  0.69,
				"fps":        72,
				"latency_ms": 14,
			},
			DeploymentNotes: "Requires per-SoC search run; strong efficiency gains",
		},
		{
			Title:          "Adaptive Cruise Optimization Under Sudden Braking of Lead Vehicles",
			Authors:        []string{"Fischer, E.", "Weber, L."},
			Venue:          "ITSC",
			Year:           2021,
			MethodCategory: "model_based_control",
			Abstract:       "Optimization of following distance and braking response to sudden brake events of lead vehicles.",
			KeyResults: map[string]float64{
				"collision_rate":   0.004,
				"comfort_score":    0.85,
				"planning_time_ms": 20,
			},
			DeploymentNotes: "Requires accurate lead distance estimation; limited in stop-and-go traffic",
		},
		{
			Title:          "Closing the Sim-to-Real Gap for Adverse Weather Perception",
			Authors:        []string{"Petrov, I.", "Haas, N."},
			Venue:          "IROS",
			Year:           2020,
			MethodCategory: "robust_perception",
			Abstract:       "Domain adaptation from simulated rain and fog improving worst-case perception robustness.",
			KeyResults: map[string]float64{
				"detection_accuracy_rain": 0.84,
				"detection_accuracy_fog":  0.81,
				"fps":                     28,
			},
			DeploymentNotes: "Requires simulated weather assets; degrades on unseen precipitation types",
		},
	}
}
