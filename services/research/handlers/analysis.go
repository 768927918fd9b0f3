// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AutoLabAI/AutoLabDrive/services/research/agents"
	"github.com/AutoLabAI/AutoLabDrive/services/research/datatypes"
	"github.com/AutoLabAI/AutoLabDrive/services/research/storage"
)

// Analyzer is the slice of the engine the analysis handlers need.
type Analyzer interface {
	Analyze(ctx context.Context, datasetID, eventID string) (datatypes.Analysis, error)
	GetAnalysis(eventID string) (datatypes.Analysis, error)
}

// AnalyzeEvent runs the full two-lab analysis for an event. The
// operation is idempotent; repeating it returns the stored analysis.
func AnalyzeEvent(engine Analyzer) gin.HandlerFunc {
	return func(c *gin.Context) {
		datasetID := c.Param("datasetId")
		eventID := c.Param("eventId")
		slog.Info("analysis requested", "dataset_id", datasetID, "event_id", eventID)

		analysis, err := engine.Analyze(c.Request.Context(), datasetID, eventID)
		if err != nil {
			writeAnalysisError(c, eventID, err)
			return
		}
		c.JSON(http.StatusOK, analysis)
	}
}

// GetAnalysis returns the stored analysis for an event.
func GetAnalysis(engine Analyzer) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID := c.Param("eventId")

		analysis, err := engine.GetAnalysis(eventID)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no analysis for event"})
			return
		}
		if err != nil {
			slog.Error("failed to load analysis", "event_id", eventID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load analysis"})
			return
		}
		c.JSON(http.StatusOK, analysis)
	}
}

func writeAnalysisError(c *gin.Context, eventID string, err error) {
	var planErr *agents.PlanningError
	var contractErr *agents.ContractViolationError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
	case errors.As(err, &planErr):
		slog.Error("analysis failed on malformed genome", "event_id", eventID, "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":          "planning failed",
			"lab":            planErr.LabName,
			"genome_version": planErr.GenomeVersion,
			"reason":         planErr.Reason,
		})
	case errors.As(err, &contractErr):
		slog.Error("analysis hit contract violation", "event_id", eventID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		slog.Error("analysis failed", "event_id", eventID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
	}
}
