// Package save persists the GameState as a versioned JSON document.
package save

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/derelict-dawn/derelict/internal/game/state"
	"github.com/derelict-dawn/derelict/internal/game/upgrade"
)

// Version is the document format written by this package.
const Version = 1

// ErrUnsupportedVersion is returned when decoding a document written by an
// unknown format version.
var ErrUnsupportedVersion = errors.New("unsupported save version")

// Metadata summarises a save for listing without decoding the state.
type Metadata struct {
	PlayTime   float64   `json:"playTime"`
	LastPlayed time.Time `json:"lastPlayed"`
}

// Document is the on-disk save envelope.
type Document struct {
	ID        string           `json:"id"`
	Version   int              `json:"version"`
	Timestamp time.Time        `json:"timestamp"`
	State     *state.GameState `json:"state"`
	Metadata  Metadata         `json:"metadata"`
}

// NewDocument wraps a copy of st. An empty id allocates a fresh one.
//
// Precondition: st must be non-nil.
func NewDocument(id string, st *state.GameState, now time.Time) *Document {
	if id == "" {
		id = uuid.NewString()
	}
	now = now.UTC()
	return &Document{
		ID:        id,
		Version:   Version,
		Timestamp: now,
		State:     st.Clone(),
		Metadata:  Metadata{PlayTime: st.PlayTime, LastPlayed: now},
	}
}

// Encode renders doc as indented JSON.
func Encode(doc *Document) ([]byte, error) {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding save %q: %w", doc.ID, err)
	}
	return b, nil
}

// Decode parses a document and checks its version.
//
// Postcondition: Returns a document with a non-nil State, or an error.
func Decode(b []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decoding save: %w", err)
	}
	if doc.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}
	if doc.State == nil {
		return nil, fmt.Errorf("decoding save %q: missing state", doc.ID)
	}
	return &doc, nil
}

// Restore returns a live state from doc: nil collections are filled and every
// derived category stat is recomputed from upgrade levels, so a hand-edited
// capacity or rate in the file has no effect.
//
// Precondition: doc.State and ledger must be non-nil.
func Restore(doc *Document, ledger *upgrade.Ledger) *state.GameState {
	st := doc.State.Clone()
	st.Normalize()
	if st.PlayTime < doc.Metadata.PlayTime {
		st.PlayTime = doc.Metadata.PlayTime
	}
	ledger.Recompute(st)
	return st
}
