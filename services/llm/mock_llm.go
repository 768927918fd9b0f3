// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"context"
	"strings"
)

// MockClient generates deterministic responses keyed off prompt
// content. Identical prompts always produce identical output, which
// keeps the whole analysis path reproducible without a network.
type MockClient struct{}

func NewMockClient() *MockClient { return &MockClient{} }

// Generate implements the Client interface.
func (m *MockClient) Generate(_ context.Context, prompt string, _ GenerationParams) (string, error) {
	lower := strings.ToLower(prompt)
	switch {
	case strings.Contains(lower, "research papers"):
		if strings.Contains(lower, "safety") {
			return `[{"title":"Formally Verified Emergency Braking for Urban Driving","venue":"ICRA","year":2023,"method_category":"safety_verification","abstract":"Verified braking controller with formal reachability guarantees.","deployment_notes":"Requires certified runtime monitor"}]`, nil
		}
		return `[{"title":"Latency-Optimal Trajectory Prediction with Sparse Attention","venue":"CVPR","year":2023,"method_category":"efficient_perception","abstract":"Sparse attention predictor meeting real-time budgets on embedded GPUs.","deployment_notes":"Optimized for edge deployment"}]`, nil
	case strings.Contains(lower, "summary"):
		return "Combine robust perception with verified planning for this scenario.", nil
	default:
		return "Mock LLM response for: " + truncate(prompt, 100), nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
