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

import "fmt"

// PlanningError marks a genome the planner cannot work with. Fatal
// for the analysis that hit it; it identifies the offending genome
// version so operators can repair or roll back the configuration.
type PlanningError struct {
	LabName       string
	GenomeVersion string
	Reason        string
}

func (e *PlanningError) Error() string {
	return fmt.Sprintf("planning failed for %s genome %s: %s",
		e.LabName, e.GenomeVersion, e.Reason)
}

// ContractViolationError marks judge or meta-learner output that broke
// an internal invariant (score out of [0,1], winner/score mismatch).
// These are programming errors and are never silently coerced.
type ContractViolationError struct {
	Component string
	Detail    string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("%s contract violation: %s", e.Component, e.Detail)
}
