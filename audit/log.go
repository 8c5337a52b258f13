// Package audit implements an append-only, hash-chained log of election
// events. Each event's hash absorbs the previous event's hash, so altering
// or reordering any stored event breaks the chain from that point forward
// and VerifyIntegrity detects it.
package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/luencaro/Sistema-de-Votaci-n-ElGamal/crypto/hash"
	"github.com/luencaro/Sistema-de-Votaci-n-ElGamal/log"
)

// ErrIntegrityBroken is returned by VerifyIntegrity when a stored event's
// prev-hash or this-hash does not match what the chain requires.
var ErrIntegrityBroken = errors.New("audit: chain integrity broken")

// Event kinds recorded by the election orchestrator.
const (
	KindSetup      = "SETUP"
	KindRegister   = "REGISTRO"
	KindVote       = "VOTO"
	KindMix        = "MEZCLA"
	KindTally      = "CONTEO"
)

// Event is one entry in the audit chain.
type Event struct {
	TimestampMs int64
	Kind        string
	Payload     any
	PrevHash    *big.Int
	ThisHash    *big.Int
}

// Log is an append-only, hash-chained sequence of Events, seeded by a fixed
// genesis hash so an empty log still has a well-defined chain root.
type Log struct {
	genesis *big.Int
	events  []Event
}

// NewLog creates an empty audit log with the fixed genesis hash
// H0 = H("GENESIS_BLOCK", "0", "{}", "").
func NewLog() *Log {
	genesis := hash.ToChallenge("GENESIS_BLOCK", "0", "{}", "")
	return &Log{genesis: genesis}
}

// Genesis returns the log's seed hash H0.
func (l *Log) Genesis() *big.Int {
	return l.genesis
}

// Append records a new event of the given kind carrying payload, chaining
// it to the previous event (or the genesis hash if this is the first
// event), and returns the event's hash.
func (l *Log) Append(kind string, payload any) (*big.Int, error) {
	prevHash := l.genesis
	if n := len(l.events); n > 0 {
		prevHash = l.events[n-1].ThisHash
	}

	payloadJSON, err := canonicalJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("audit: encoding payload: %w", err)
	}

	timestampMs := time.Now().UnixMilli()
	thisHash := hash.ToChallenge(kind, fmt.Sprint(timestampMs), payloadJSON, prevHash.String())

	l.events = append(l.events, Event{
		TimestampMs: timestampMs,
		Kind:        kind,
		Payload:     payload,
		PrevHash:    prevHash,
		ThisHash:    thisHash,
	})

	log.Debugw("audit: event recorded", "kind", kind, "hash", thisHash.String())
	return thisHash, nil
}

// Events returns the recorded events in append order. The returned slice
// must not be mutated by the caller.
func (l *Log) Events() []Event {
	return l.events
}

// VerifyIntegrity recomputes each event's hash chain and reports
// ErrIntegrityBroken at the first event whose stored prev-hash or this-hash
// fails to match what the chain requires.
func (l *Log) VerifyIntegrity() error {
	expectedPrev := l.genesis
	for i, ev := range l.events {
		if ev.PrevHash.Cmp(expectedPrev) != 0 {
			return fmt.Errorf("audit: event %d: %w", i, ErrIntegrityBroken)
		}

		payloadJSON, err := canonicalJSON(ev.Payload)
		if err != nil {
			return fmt.Errorf("audit: event %d: encoding payload: %w", i, err)
		}
		recomputed := hash.ToChallenge(ev.Kind, fmt.Sprint(ev.TimestampMs), payloadJSON, ev.PrevHash.String())
		if recomputed.Cmp(ev.ThisHash) != 0 {
			return fmt.Errorf("audit: event %d: %w", i, ErrIntegrityBroken)
		}

		expectedPrev = ev.ThisHash
	}
	return nil
}

// ExportedEvent is the JSON-serializable form of an Event, returned by Export.
type ExportedEvent struct {
	TimestampMs int64  `json:"timestamp_ms"`
	Kind        string `json:"kind"`
	Payload     any    `json:"payload"`
	PrevHash    string `json:"prev_hash"`
	ThisHash    string `json:"this_hash"`
}

// Export returns a JSON-serializable snapshot of the whole audit log.
type Export struct {
	GenesisHash string          `json:"genesis_hash"`
	TotalEvents int             `json:"total_events"`
	Events      []ExportedEvent `json:"events"`
}

// Export returns the full chain in a form suitable for serialization.
func (l *Log) Export() Export {
	out := Export{
		GenesisHash: l.genesis.String(),
		TotalEvents: len(l.events),
		Events:      make([]ExportedEvent, len(l.events)),
	}
	for i, ev := range l.events {
		out.Events[i] = ExportedEvent{
			TimestampMs: ev.TimestampMs,
			Kind:        ev.Kind,
			Payload:     ev.Payload,
			PrevHash:    ev.PrevHash.String(),
			ThisHash:    ev.ThisHash.String(),
		}
	}
	return out
}

// canonicalJSON renders payload the way the hash chain expects: object keys
// sorted, so the same logical payload always encodes to the same bytes
// regardless of struct field order or map iteration order. encoding/json
// already sorts map[string]any keys; for struct payloads we round-trip
// through a map to get the same guarantee.
func canonicalJSON(payload any) (string, error) {
	if payload == nil {
		return "null", nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", err
	}

	canon, err := json.Marshal(generic)
	if err != nil {
		return "", err
	}
	return string(canon), nil
}
