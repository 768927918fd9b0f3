// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logFilePath(dir, service string) string {
	name := service + "_" + time.Now().Format("2006-01-02") + ".log"
	return filepath.Join(dir, name)
}

func readLogLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var lines []map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var entry map[string]any
		require.NoError(t, dec.Decode(&entry))
		lines = append(lines, entry)
	}
	return lines
}

func TestDefault_ReturnsUsableLogger(t *testing.T) {
	logger := Default()
	require.NotNil(t, logger.Slog())
	assert.NoError(t, logger.Close())
}

func TestNew_FileLoggingWritesJSON(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{Level: LevelInfo, LogDir: dir, Service: "research", Quiet: true})

	logger.Info("analysis committed", "event_id", "abc123")
	require.NoError(t, logger.Close())

	lines := readLogLines(t, logFilePath(dir, "research"))
	require.Len(t, lines, 1)
	assert.Equal(t, "analysis committed", lines[0]["msg"])
	assert.Equal(t, "abc123", lines[0]["event_id"])
	assert.Equal(t, "research", lines[0]["service"])
}

func TestNew_LevelFiltersFileOutput(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{Level: LevelWarn, LogDir: dir, Service: "research", Quiet: true})

	logger.Debug("dropped")
	logger.Info("dropped too")
	logger.Warn("kept")
	logger.Error("also kept")
	require.NoError(t, logger.Close())

	lines := readLogLines(t, logFilePath(dir, "research"))
	require.Len(t, lines, 2)
	assert.Equal(t, "kept", lines[0]["msg"])
	assert.Equal(t, "also kept", lines[1]["msg"])
}

func TestNew_EmptyServiceDefaultsFileName(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{LogDir: dir, Quiet: true})

	logger.Info("hello")
	require.NoError(t, logger.Close())

	_, err := os.Stat(logFilePath(dir, "autolab"))
	assert.NoError(t, err)
}

func TestNew_UnwritableLogDirDegradesToStderr(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "blocked")
	require.NoError(t, os.WriteFile(dir, []byte("not a directory"), 0o600))

	logger := New(Config{LogDir: dir, Service: "research", Quiet: true})
	logger.Info("still works")
	assert.NoError(t, logger.Close())
}

func TestWith_AddsAttributesWithoutOwningFile(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{LogDir: dir, Service: "research", Quiet: true})

	child := logger.With("lab", "SafetyLab")
	child.Info("pipeline done")
	require.NoError(t, child.Close()) // child holds no file handle
	require.NoError(t, logger.Close())

	lines := readLogLines(t, logFilePath(dir, "research"))
	require.Len(t, lines, 1)
	assert.Equal(t, "SafetyLab", lines[0]["lab"])
}

func TestClose_IsIdempotent(t *testing.T) {
	logger := New(Config{LogDir: t.TempDir(), Service: "research", Quiet: true})
	require.NoError(t, logger.Close())
	assert.NoError(t, logger.Close())
}

func TestSlog_BridgesToStandardLogger(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{LogDir: dir, Service: "research", Quiet: true})

	std := logger.Slog()
	require.IsType(t, &slog.Logger{}, std)
	std.Info("via slog", "source", "bridge")
	require.NoError(t, logger.Close())

	lines := readLogLines(t, logFilePath(dir, "research"))
	require.Len(t, lines, 1)
	assert.Equal(t, "via slog", lines[0]["msg"])
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".autolab/logs"), expandPath("~/.autolab/logs"))
	assert.Equal(t, "/var/log/autolab", expandPath("/var/log/autolab"))
	assert.Equal(t, "relative/logs", expandPath("relative/logs"))
}
