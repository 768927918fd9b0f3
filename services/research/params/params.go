// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package params holds the engine's tunable numeric thresholds.
//
// The scoring and evolution constants (tie epsilon, weight step,
// keyword merge cap, ...) are deliberately configuration rather than
// hardcoded behavior. Defaults() matches the values the system shipped
// with; a yaml file can override any subset, and Watch reloads the
// file on change.
package params

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// JudgeWeights is the base rubric weight per criterion. Weights sum
// to 1 before any severity shift is applied.
type JudgeWeights struct {
	Relevance    float64 `yaml:"relevance"`
	Safety       float64 `yaml:"safety"`
	Performance  float64 `yaml:"performance"`
	Practicality float64 `yaml:"practicality"`
	Novelty      float64 `yaml:"novelty"`
}

// Params bundles every tunable threshold in the engine.
type Params struct {
	// TieEpsilon: score gaps at or below this are a tie.
	TieEpsilon float64 `yaml:"tie_epsilon"`

	// WeightStep: how far the meta-learner nudges a losing lab's
	// critique weights toward the winner's emphasis per evolution.
	WeightStep float64 `yaml:"weight_step"`

	// KeywordMergeCap: max keywords (and method categories) merged
	// from the winner into a losing genome per evolution.
	KeywordMergeCap int `yaml:"keyword_merge_cap"`

	// RecencyFloorYear: when the judge recommends more recent work,
	// the losing genome's year window start is raised to this year.
	RecencyFloorYear int `yaml:"recency_floor_year"`

	// RetrieverTopN caps candidate papers per pipeline run.
	RetrieverTopN int `yaml:"retriever_top_n"`

	// RetrievalTimeoutMS bounds one content-producer call. On timeout
	// the pipeline degrades to an empty candidate set.
	RetrievalTimeoutMS int `yaml:"retrieval_timeout_ms"`

	// StrengthThreshold / WeaknessThreshold classify critique
	// dimension scores into strengths and weaknesses.
	StrengthThreshold float64 `yaml:"strength_threshold"`
	WeaknessThreshold float64 `yaml:"weakness_threshold"`

	// DefaultVenueWeight applies to venues a genome does not list.
	DefaultVenueWeight float64 `yaml:"default_venue_weight"`

	// Judge holds the base rubric weights.
	Judge JudgeWeights `yaml:"judge"`

	// SeverityShift is moved from the performance criterion to the
	// safety criterion on high-severity events, and the reverse on
	// low-severity events.
	SeverityShift float64 `yaml:"severity_shift"`
}

// Defaults returns the shipped parameter set.
func Defaults() Params {
	return Params{
		TieEpsilon:         0.01,
		WeightStep:         0.1,
		KeywordMergeCap:    2,
		RecencyFloorYear:   2020,
		RetrieverTopN:      10,
		RetrievalTimeoutMS: 10000,
		StrengthThreshold:  0.8,
		WeaknessThreshold:  0.5,
		DefaultVenueWeight: 0.5,
		Judge: JudgeWeights{
			Relevance:    0.30,
			Safety:       0.25,
			Performance:  0.20,
			Practicality: 0.15,
			Novelty:      0.10,
		},
		SeverityShift: 0.10,
	}
}

// Load reads a yaml file over Defaults(). A missing path returns the
// defaults without error so the engine runs unconfigured.
func Load(path string) (Params, error) {
	p := Defaults()
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return p, fmt.Errorf("read params file: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse params file %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// Validate rejects parameter sets the engine cannot run with.
func (p Params) Validate() error {
	if p.TieEpsilon < 0 || p.TieEpsilon >= 1 {
		return fmt.Errorf("tie_epsilon %v out of range [0,1)", p.TieEpsilon)
	}
	if p.WeightStep < 0 || p.WeightStep > 1 {
		return fmt.Errorf("weight_step %v out of range [0,1]", p.WeightStep)
	}
	if p.KeywordMergeCap < 0 {
		return fmt.Errorf("keyword_merge_cap %d must be >= 0", p.KeywordMergeCap)
	}
	if p.RetrieverTopN <= 0 {
		return fmt.Errorf("retriever_top_n %d must be > 0", p.RetrieverTopN)
	}
	sum := p.Judge.Relevance + p.Judge.Safety + p.Judge.Performance +
		p.Judge.Practicality + p.Judge.Novelty
	if sum <= 0 {
		return fmt.Errorf("judge rubric weights sum %v must be > 0", sum)
	}
	// The shift is subtracted from the performance weight on high
	// severity and from the safety weight on low severity; it must not
	// drive either negative.
	shiftBound := p.Judge.Performance
	if p.Judge.Safety < shiftBound {
		shiftBound = p.Judge.Safety
	}
	if p.SeverityShift < 0 || p.SeverityShift > shiftBound {
		return fmt.Errorf("severity_shift %v must be in [0, min(safety, performance) weight %v]",
			p.SeverityShift, shiftBound)
	}
	return nil
}

// Source provides the current parameter set to the engine. Reads are
// cheap and safe for concurrent use; Watch swaps the set atomically
// when the backing file changes.
type Source struct {
	mu   sync.RWMutex
	cur  Params
	path string
}

// NewSource returns a Source serving p.
func NewSource(p Params) *Source {
	return &Source{cur: p}
}

// NewFileSource loads path and returns a Source backed by it.
func NewFileSource(path string) (*Source, error) {
	p, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Source{cur: p, path: path}, nil
}

// Current returns the active parameter set.
func (s *Source) Current() Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Watch reloads the backing file whenever it changes, until ctx is
// done. Invalid updates are logged and skipped; the previous set stays
// active. No-op for sources without a file.
func (s *Source) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("params watcher: %w", err)
	}

	// Watch the directory: editors replace files on save, which drops
	// a watch held on the file itself.
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("params watcher add %s: %w", dir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(s.path) {
					continue
				}
				if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
					continue
				}
				p, err := Load(s.path)
				if err != nil {
					slog.Warn("ignoring invalid params update", "path", s.path, "error", err)
					continue
				}
				s.mu.Lock()
				s.cur = p
				s.mu.Unlock()
				slog.Info("engine params reloaded", "path", s.path)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("params watcher error", "error", err)
			}
		}
	}()
	return nil
}
