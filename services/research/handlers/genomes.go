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
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AutoLabAI/AutoLabDrive/services/research/datatypes"
	"github.com/AutoLabAI/AutoLabDrive/services/research/storage"
)

// ListStrategies returns every lab's active genome plus version count.
func ListStrategies(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		labs := make([]gin.H, 0, 2)
		for _, lab := range datatypes.LabNames() {
			active, err := store.ActiveGenome(lab)
			if err != nil {
				slog.Error("failed to load active genome", "lab", lab, "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load strategies"})
				return
			}
			history, err := store.GenomeHistory(lab)
			if err != nil {
				slog.Error("failed to load genome history", "lab", lab, "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load strategies"})
				return
			}
			labs = append(labs, gin.H{
				"lab_name":      lab,
				"active":        active,
				"version_count": len(history),
			})
		}
		c.JSON(http.StatusOK, gin.H{"labs": labs})
	}
}

// GetLabStrategies returns one lab's full genome lineage, oldest
// version first.
func GetLabStrategies(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		lab := c.Param("labName")
		if !datatypes.ValidLabName(lab) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown lab " + lab})
			return
		}

		history, err := store.GenomeHistory(lab)
		if err != nil {
			slog.Error("failed to load genome history", "lab", lab, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load genome history"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"lab_name": lab, "versions": history, "count": len(history)})
	}
}
