// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AutoLabAI/AutoLabDrive/services/research"
	"github.com/AutoLabAI/AutoLabDrive/services/research/content"
	"github.com/AutoLabAI/AutoLabDrive/services/research/datatypes"
	"github.com/AutoLabAI/AutoLabDrive/services/research/params"
	"github.com/AutoLabAI/AutoLabDrive/services/research/routes"
	"github.com/AutoLabAI/AutoLabDrive/services/research/storage"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := storage.Open(storage.InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.SeedGenomes())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := research.NewEngine(store, content.NewCorpusProducer(),
		params.NewSource(params.Defaults()), logger, nil)

	router := gin.New()
	routes.SetupRoutes(router, engine, store)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createEvent(t *testing.T, router *gin.Engine) datatypes.Event {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/v1/datasets/ds-1/events", gin.H{
		"event_type":      "pedestrian",
		"severity":        "high",
		"ego_speed_mps":   12.5,
		"road_type":       "urban",
		"weather":         "clear",
		"pedestrian_flag": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var event datatypes.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &event))
	require.NotEmpty(t, event.ID)
	return event
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateEvent_Validation(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/v1/datasets/ds-1/events", gin.H{
		"event_type": "teleportation",
		"severity":   "high",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/v1/datasets/ds-1/events", gin.H{
		"event_type": "cut_in",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEventRoundTrip(t *testing.T) {
	router := newTestRouter(t)
	event := createEvent(t, router)

	w := doJSON(t, router, http.MethodGet, "/v1/datasets/ds-1/events/"+event.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/v1/datasets/ds-1/events", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listing struct {
		Events []datatypes.Event `json:"events"`
		Count  int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	assert.Equal(t, 1, listing.Count)

	w = doJSON(t, router, http.MethodGet, "/v1/datasets/ds-1/events/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalyzeEvent_FullFlow(t *testing.T) {
	router := newTestRouter(t)
	event := createEvent(t, router)

	w := doJSON(t, router, http.MethodPost, "/v1/datasets/ds-1/events/"+event.ID+"/analyze", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var analysis datatypes.Analysis
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &analysis))
	assert.Equal(t, event.ID, analysis.EventID)
	assert.NotEmpty(t, analysis.JudgeDecision.Winner)

	// Repeating the request returns the same stored analysis.
	w = doJSON(t, router, http.MethodPost, "/v1/datasets/ds-1/events/"+event.ID+"/analyze", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var repeat datatypes.Analysis
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &repeat))
	assert.Equal(t, analysis.ID, repeat.ID)

	w = doJSON(t, router, http.MethodGet, "/v1/datasets/ds-1/events/"+event.ID+"/analysis", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAnalyzeEvent_NotFound(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/v1/datasets/ds-1/events/missing/analyze", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodGet, "/v1/datasets/ds-1/events/missing/analysis", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStrategyEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/v1/labs/strategies", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listing struct {
		Labs []struct {
			LabName string                   `json:"lab_name"`
			Active  datatypes.StrategyGenome `json:"active"`
		} `json:"labs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	require.Len(t, listing.Labs, 2)
	assert.Equal(t, storage.InitialVersion, listing.Labs[0].Active.Version)

	w = doJSON(t, router, http.MethodGet, "/v1/labs/SafetyLab/strategies", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/v1/labs/ChaosLab/strategies", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
