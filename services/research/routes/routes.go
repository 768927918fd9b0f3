// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/AutoLabAI/AutoLabDrive/services/research/handlers"
	"github.com/AutoLabAI/AutoLabDrive/services/research/storage"
	"github.com/AutoLabAI/AutoLabDrive/services/research/telemetry"
)

func SetupRoutes(router *gin.Engine, engine handlers.Analyzer, store *storage.Store) {
	router.GET("/health", handlers.HealthCheck)
	if metricsHandler := telemetry.MetricsHandler(); metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	// API version 1 group
	v1 := router.Group("/v1")
	{
		datasets := v1.Group("/datasets/:datasetId")
		{
			datasets.POST("/events", handlers.CreateEvent(store))
			datasets.GET("/events", handlers.ListEvents(store))
			datasets.GET("/events/:eventId", handlers.GetEvent(store))
			datasets.POST("/events/:eventId/analyze", handlers.AnalyzeEvent(engine))
			datasets.GET("/events/:eventId/analysis", handlers.GetAnalysis(engine))
		}
		labs := v1.Group("/labs")
		{
			labs.GET("/strategies", handlers.ListStrategies(store))
			labs.GET("/:labName/strategies", handlers.GetLabStrategies(store))
		}
	}
}
