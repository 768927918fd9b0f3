// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package params

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults_AreValid(t *testing.T) {
	p := Defaults()
	require.NoError(t, p.Validate())

	sum := p.Judge.Relevance + p.Judge.Safety + p.Judge.Performance +
		p.Judge.Practicality + p.Judge.Novelty
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), p)

	p, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), p)
}

func TestLoad_OverridesSubset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tie_epsilon: 0.05\nretriever_top_n: 5\n"), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.05, p.TieEpsilon)
	assert.Equal(t, 5, p.RetrieverTopN)
	// Untouched keys keep their defaults.
	assert.Equal(t, Defaults().WeightStep, p.WeightStep)
	assert.Equal(t, Defaults().Judge, p.Judge)
}

func TestLoad_RejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tie_epsilon: 1.5\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Params)
	}{
		{"negative tie epsilon", func(p *Params) { p.TieEpsilon = -0.1 }},
		{"weight step above one", func(p *Params) { p.WeightStep = 1.2 }},
		{"negative merge cap", func(p *Params) { p.KeywordMergeCap = -1 }},
		{"zero retriever top n", func(p *Params) { p.RetrieverTopN = 0 }},
		{"zero rubric weights", func(p *Params) { p.Judge = JudgeWeights{} }},
		{"shift exceeds performance weight", func(p *Params) { p.SeverityShift = 0.5 }},
		{"shift exceeds safety weight", func(p *Params) {
			p.Judge.Safety = 0.05
			p.Judge.Novelty = 0.30 // keep the rubric sum positive
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Defaults()
			tc.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestSource_CurrentReturnsConstructedParams(t *testing.T) {
	p := Defaults()
	p.TieEpsilon = 0.02

	src := NewSource(p)
	assert.Equal(t, p, src.Current())
}

func TestFileSource_LoadsBackingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte("weight_step: 0.2\n"), 0o644))

	src, err := NewFileSource(path)
	require.NoError(t, err)
	assert.Equal(t, 0.2, src.Current().WeightStep)

	_, err = NewFileSource(filepath.Join(t.TempDir(), "bad.yaml"))
	require.NoError(t, err) // missing file falls back to defaults
}
