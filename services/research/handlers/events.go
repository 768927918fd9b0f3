// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers holds the gin HTTP handlers for the research
// engine's API. Handlers take their dependencies as arguments and
// return gin.HandlerFunc closures.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AutoLabAI/AutoLabDrive/services/research/datatypes"
	"github.com/AutoLabAI/AutoLabDrive/services/research/storage"
)

// CreateEventRequest is the POST body for recording a detected event.
type CreateEventRequest struct {
	EventType datatypes.EventType `json:"event_type" binding:"required"`
	Severity  datatypes.Severity  `json:"severity" binding:"required"`

	EgoSpeedMPS   float64 `json:"ego_speed_mps"`
	RoadType      string  `json:"road_type"`
	Weather       string  `json:"weather"`
	LeadDistanceM float64 `json:"lead_distance_m"`

	CutInFlag      bool `json:"cut_in_flag"`
	PedestrianFlag bool `json:"pedestrian_flag"`

	Description string `json:"description"`
}

// CreateEvent records one detected driving event in a dataset.
func CreateEvent(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		datasetID := c.Param("datasetId")

		var req CreateEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !datatypes.ValidEventType(req.EventType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown event_type " + string(req.EventType)})
			return
		}
		if !datatypes.ValidSeverity(req.Severity) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown severity " + string(req.Severity)})
			return
		}

		event := datatypes.Event{
			ID:             uuid.NewString(),
			DatasetID:      datasetID,
			EventType:      req.EventType,
			Severity:       req.Severity,
			EgoSpeedMPS:    req.EgoSpeedMPS,
			RoadType:       req.RoadType,
			Weather:        req.Weather,
			LeadDistanceM:  req.LeadDistanceM,
			CutInFlag:      req.CutInFlag,
			PedestrianFlag: req.PedestrianFlag,
			Description:    req.Description,
			CreatedAt:      time.Now().UTC(),
		}
		if err := store.PutEvent(event); err != nil {
			slog.Error("failed to store event", "dataset_id", datasetID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store event"})
			return
		}

		slog.Info("event recorded", "dataset_id", datasetID,
			"event_id", event.ID, "event_type", event.EventType, "severity", event.Severity)
		c.JSON(http.StatusCreated, event)
	}
}

// ListEvents returns every event in a dataset.
func ListEvents(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		datasetID := c.Param("datasetId")
		events, err := store.ListEvents(datasetID)
		if err != nil {
			slog.Error("failed to list events", "dataset_id", datasetID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list events"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"dataset_id": datasetID, "events": events, "count": len(events)})
	}
}

// GetEvent returns one event by ID.
func GetEvent(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		datasetID := c.Param("datasetId")
		eventID := c.Param("eventId")

		event, err := store.GetEvent(datasetID, eventID)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		if err != nil {
			slog.Error("failed to load event", "event_id", eventID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load event"})
			return
		}
		c.JSON(http.StatusOK, event)
	}
}
