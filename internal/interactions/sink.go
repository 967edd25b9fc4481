// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package interactions

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/marquee/internal/recommend"
)

// keyPrefix namespaces interaction records in BadgerDB.
const keyPrefix = "interaction:"

// Sink persists decoded interactions.
type Sink interface {
	Append(ctx context.Context, it recommend.Interaction) error
}

// Stats aggregates stored interactions. It carries no user identifiers.
type Stats struct {
	Total    int            `json:"total"`
	ByType   map[string]int `json:"by_type"`
	BySource map[string]int `json:"by_source"`
	Oldest   *time.Time     `json:"oldest,omitempty"`
	Newest   *time.Time     `json:"newest,omitempty"`
}

// BadgerSinkConfig configures a BadgerSink.
type BadgerSinkConfig struct {
	Path      string
	InMemory  bool
	Retention time.Duration // 0 keeps records forever
}

// BadgerSink stores interactions in BadgerDB.
type BadgerSink struct {
	db        *badger.DB
	retention time.Duration
}

// OpenBadgerSink opens or creates the sink database.
func OpenBadgerSink(cfg BadgerSinkConfig) (*BadgerSink, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create interaction store directory: %w", err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts.Logger = nil // Disable BadgerDB's internal logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open interaction store: %w", err)
	}
	return &BadgerSink{db: db, retention: cfg.Retention}, nil
}

// recordKey orders records by arrival. The nanosecond field is fixed width.
func recordKey(at time.Time) []byte {
	return []byte(fmt.Sprintf("%s%019d:%s", keyPrefix, at.UnixNano(), uuid.NewString()))
}

// Append implements Sink.
func (s *BadgerSink) Append(ctx context.Context, it recommend.Interaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	value, err := json.Marshal(it)
	if err != nil {
		return fmt.Errorf("marshal interaction: %w", err)
	}

	entry := badger.NewEntry(recordKey(it.OccurredAt), value)
	if s.retention > 0 {
		entry = entry.WithTTL(s.retention)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(entry)
	})
}

// Stats scans every live record and aggregates counts.
func (s *BadgerSink) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		ByType:   make(map[string]int),
		BySource: make(map[string]int),
	}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var rec recommend.Interaction
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("decode stored interaction: %w", err)
			}

			stats.Total++
			stats.ByType[string(rec.Type)]++
			stats.BySource[rec.Source]++

			at := rec.OccurredAt.UTC()
			if stats.Oldest == nil || at.Before(*stats.Oldest) {
				t := at
				stats.Oldest = &t
			}
			if stats.Newest == nil || at.After(*stats.Newest) {
				t := at
				stats.Newest = &t
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Close closes the underlying database.
func (s *BadgerSink) Close() error {
	return s.db.Close()
}

var _ Sink = (*BadgerSink)(nil)
