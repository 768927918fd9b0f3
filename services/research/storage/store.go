// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/AutoLabAI/AutoLabDrive/services/research/datatypes"
)

var (
	// ErrNotFound marks a missing record. Surfaced to callers, not
	// retried.
	ErrNotFound = errors.New("record not found")

	// ErrConflict marks a commit that lost a race with a concurrent
	// analysis. Transient: the caller may retry, and the idempotency
	// guard will re-check.
	ErrConflict = errors.New("storage conflict")

	// ErrAnalysisExists marks an attempt to commit a second analysis
	// for an event. The caller should re-read and return the stored
	// record.
	ErrAnalysisExists = errors.New("analysis already exists for event")
)

// Store is the engine's persistence layer over one BadgerDB instance.
// All methods are safe for concurrent use.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the store described by cfg.
func Open(cfg Config) (*Store, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database. The store is unusable
// afterwards.
func (s *Store) Close() error { return s.db.Close() }

func eventKey(datasetID, eventID string) []byte {
	return []byte("event/" + datasetID + "/" + eventID)
}

func genomeKey(lab, version string) []byte {
	return []byte("genome/" + lab + "/" + version)
}

func activeKey(lab string) []byte {
	return []byte("genome-active/" + lab)
}

func analysisKey(eventID string) []byte {
	return []byte("analysis/" + eventID)
}

// =============================================================================
// Events
// =============================================================================

// PutEvent stores an event record. Events are immutable; writing the
// same ID twice is rejected so a detector cannot silently rewrite
// history.
func (s *Store) PutEvent(event datatypes.Event) error {
	if event.ID == "" || event.DatasetID == "" {
		return errors.New("event requires id and dataset_id")
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	key := eventKey(event.DatasetID, event.ID)
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return fmt.Errorf("event %s already exists", event.ID)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return setJSON(txn, key, event)
	})
	return mapBadgerErr(err)
}

// GetEvent loads one event, or ErrNotFound.
func (s *Store) GetEvent(datasetID, eventID string) (datatypes.Event, error) {
	var event datatypes.Event
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, eventKey(datasetID, eventID), &event)
	})
	return event, mapBadgerErr(err)
}

// ListEvents returns every event in a dataset, ordered by creation
// time then ID.
func (s *Store) ListEvents(datasetID string) ([]datatypes.Event, error) {
	var events []datatypes.Event
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, []byte("event/"+datasetID+"/"), func(val []byte) error {
			var event datatypes.Event
			if err := json.Unmarshal(val, &event); err != nil {
				return err
			}
			events = append(events, event)
			return nil
		})
	})
	if err != nil {
		return nil, mapBadgerErr(err)
	}
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].CreatedAt.Before(events[j].CreatedAt)
		}
		return events[i].ID < events[j].ID
	})
	return events, nil
}

// =============================================================================
// Genomes
// =============================================================================

// PutGenomeVersion stores a genome version. When the version is marked
// active it also demotes the previous active version and repoints the
// active pointer, all in one transaction. Used for seeding and
// administrative imports; the engine's evolution path goes through
// CommitAnalysis instead.
func (s *Store) PutGenomeVersion(genome datatypes.StrategyGenome) error {
	if !datatypes.ValidLabName(genome.LabName) {
		return fmt.Errorf("unknown lab %q", genome.LabName)
	}
	if genome.CreatedAt.IsZero() {
		genome.CreatedAt = time.Now().UTC()
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(genomeKey(genome.LabName, genome.Version)); err == nil {
			return fmt.Errorf("genome %s %s already exists", genome.LabName, genome.Version)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := setJSON(txn, genomeKey(genome.LabName, genome.Version), genome); err != nil {
			return err
		}
		if genome.Active {
			return promote(txn, genome.LabName, genome.Version)
		}
		return nil
	})
	return mapBadgerErr(err)
}

// ActiveGenome returns the lab's single active genome version.
func (s *Store) ActiveGenome(lab string) (datatypes.StrategyGenome, error) {
	var genome datatypes.StrategyGenome
	err := s.db.View(func(txn *badger.Txn) error {
		var e error
		genome, e = activeGenome(txn, lab)
		return e
	})
	return genome, mapBadgerErr(err)
}

// ActiveGenomes returns the active genome of every lab in one
// snapshot-consistent read. The engine uses this so one analysis plans
// with exactly the versions it will later record.
func (s *Store) ActiveGenomes() (map[string]datatypes.StrategyGenome, error) {
	genomes := make(map[string]datatypes.StrategyGenome, 2)
	err := s.db.View(func(txn *badger.Txn) error {
		for _, lab := range datatypes.LabNames() {
			genome, err := activeGenome(txn, lab)
			if err != nil {
				return err
			}
			genomes[lab] = genome
		}
		return nil
	})
	if err != nil {
		return nil, mapBadgerErr(err)
	}
	return genomes, nil
}

// GetGenome loads one specific genome version.
func (s *Store) GetGenome(lab, version string) (datatypes.StrategyGenome, error) {
	var genome datatypes.StrategyGenome
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, genomeKey(lab, version), &genome)
	})
	return genome, mapBadgerErr(err)
}

// GenomeHistory returns every version for a lab, oldest to newest.
func (s *Store) GenomeHistory(lab string) ([]datatypes.StrategyGenome, error) {
	var genomes []datatypes.StrategyGenome
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, []byte("genome/"+lab+"/"), func(val []byte) error {
			var genome datatypes.StrategyGenome
			if err := json.Unmarshal(val, &genome); err != nil {
				return err
			}
			genomes = append(genomes, genome)
			return nil
		})
	})
	if err != nil {
		return nil, mapBadgerErr(err)
	}
	sort.SliceStable(genomes, func(i, j int) bool {
		return datatypes.CompareVersions(genomes[i].Version, genomes[j].Version) < 0
	})
	return genomes, nil
}

// =============================================================================
// Analyses
// =============================================================================

// AnalysisByEvent loads the analysis for an event, or ErrNotFound.
func (s *Store) AnalysisByEvent(eventID string) (datatypes.Analysis, error) {
	var analysis datatypes.Analysis
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, analysisKey(eventID), &analysis)
	})
	return analysis, mapBadgerErr(err)
}

// CommitAnalysis atomically persists one completed run: the analysis
// record plus any genome versions the meta-learner created, including
// demotion of each superseded parent.
//
// expectedActive maps lab name -> the active version the engine read
// at snapshot time. If any lab's active pointer moved since (a racing
// analysis evolved it first), nothing is written and ErrConflict is
// returned. If an analysis for the event appeared since the
// idempotency check, nothing is written and ErrAnalysisExists is
// returned. Either way the store is left fully consistent: all of the
// run's effects are visible, or none are.
func (s *Store) CommitAnalysis(analysis datatypes.Analysis,
	newGenomes []datatypes.StrategyGenome, expectedActive map[string]string) error {

	if analysis.EventID == "" {
		return errors.New("analysis requires event_id")
	}
	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = time.Now().UTC()
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		// Idempotency guard, re-checked inside the transaction.
		if _, err := txn.Get(analysisKey(analysis.EventID)); err == nil {
			return ErrAnalysisExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		// The genomes this run used must still be the active ones.
		for lab, expected := range expectedActive {
			item, err := txn.Get(activeKey(lab))
			if err != nil {
				return err
			}
			var current string
			if err := item.Value(func(val []byte) error {
				current = string(val)
				return nil
			}); err != nil {
				return err
			}
			if current != expected {
				return ErrConflict
			}
		}

		if err := setJSON(txn, analysisKey(analysis.EventID), analysis); err != nil {
			return err
		}

		now := time.Now().UTC()
		for _, genome := range newGenomes {
			genome.Active = true
			genome.CreatedAt = now
			if err := setJSON(txn, genomeKey(genome.LabName, genome.Version), genome); err != nil {
				return err
			}
			if err := promote(txn, genome.LabName, genome.Version); err != nil {
				return err
			}
		}
		return nil
	})
	return mapBadgerErr(err)
}

// =============================================================================
// Internal helpers
// =============================================================================

// promote points the lab's active pointer at version and clears the
// Active flag on the previously active record, if any.
func promote(txn *badger.Txn, lab, version string) error {
	item, err := txn.Get(activeKey(lab))
	switch {
	case err == nil:
		var previous string
		if err := item.Value(func(val []byte) error {
			previous = string(val)
			return nil
		}); err != nil {
			return err
		}
		if previous != "" && previous != version {
			var old datatypes.StrategyGenome
			if err := getJSON(txn, genomeKey(lab, previous), &old); err != nil {
				return err
			}
			old.Active = false
			if err := setJSON(txn, genomeKey(lab, previous), old); err != nil {
				return err
			}
		}
	case errors.Is(err, badger.ErrKeyNotFound):
		// First genome for this lab.
	default:
		return err
	}
	return txn.Set(activeKey(lab), []byte(version))
}

func activeGenome(txn *badger.Txn, lab string) (datatypes.StrategyGenome, error) {
	var genome datatypes.StrategyGenome
	item, err := txn.Get(activeKey(lab))
	if err != nil {
		return genome, err
	}
	var version string
	if err := item.Value(func(val []byte) error {
		version = string(val)
		return nil
	}); err != nil {
		return genome, err
	}
	err = getJSON(txn, genomeKey(lab, version), &genome)
	return genome, err
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return txn.Set(key, data)
}

func getJSON(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func scanPrefix(txn *badger.Txn, prefix []byte, fn func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()
	for it.Rewind(); it.Valid(); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}

// mapBadgerErr translates BadgerDB sentinels into the store's error
// taxonomy.
func mapBadgerErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return ErrNotFound
	case errors.Is(err, badger.ErrConflict):
		return ErrConflict
	default:
		return err
	}
}
