package audit

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cockroachdb/pebble"
)

// PebbleStore persists a Log's exported events to an on-disk pebble
// database, keyed by zero-padded sequence number so iteration order matches
// append order. It is an optional durability layer: a Log works entirely
// in-memory without one.
type PebbleStore struct {
	db *pebble.DB
}

// NewPebbleStore opens (creating if necessary) a pebble database at dir for
// persisting audit events.
func NewPebbleStore(dir string) (*PebbleStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("audit: creating store directory: %w", err)
	}
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("audit: opening pebble store: %w", err)
	}
	return &PebbleStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *PebbleStore) Close() error {
	return s.db.Close()
}

// Persist writes every event currently in l to the store, overwriting any
// prior snapshot at the same sequence numbers.
func (s *PebbleStore) Persist(l *Log) error {
	batch := s.db.NewBatch()
	defer batch.Close()

	exported := l.Export()
	for i, ev := range exported.Events {
		key := eventKey(i)
		value, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("audit: encoding event %d: %w", i, err)
		}
		if err := batch.Set(key, value, nil); err != nil {
			return fmt.Errorf("audit: writing event %d: %w", i, err)
		}
	}
	return batch.Commit(pebble.Sync)
}

// Load reads back every persisted event in sequence order.
func (s *PebbleStore) Load() ([]ExportedEvent, error) {
	var events []ExportedEvent

	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, fmt.Errorf("audit: iterating store: %w", err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		var ev ExportedEvent
		if err := json.Unmarshal(iter.Value(), &ev); err != nil {
			return nil, fmt.Errorf("audit: decoding stored event: %w", err)
		}
		events = append(events, ev)
	}
	return events, iter.Error()
}

// eventKey renders a sequence number as a fixed-width, lexicographically
// sortable key so pebble's key-ordered iteration preserves append order.
func eventKey(seq int) []byte {
	return []byte(fmt.Sprintf("ev/%012d", seq))
}
