package ir

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when the snapshot format changes.
const snapshotSchemaVersion uint16 = 1

// moduleSnapshot is the on-disk form of a lowered module. The
// function table is flattened to ordered entries so the snapshot
// round-trips deterministically.
type moduleSnapshot struct {
	Schema      uint16
	Name        string
	HasTopLevel bool
	TopLevel    *Func
	Entries     []snapshotEntry
}

type snapshotEntry struct {
	Key  Key
	Func *Func
}

// EncodeModule writes a msgpack snapshot of the module.
func EncodeModule(w io.Writer, m *Module) error {
	if m == nil {
		return fmt.Errorf("ir: cannot encode nil module")
	}
	snap := moduleSnapshot{
		Schema:      snapshotSchemaVersion,
		Name:        m.Name,
		HasTopLevel: m.HasTopLevel,
		TopLevel:    m.TopLevel,
		Entries:     make([]snapshotEntry, 0, len(m.Order)),
	}
	for _, key := range m.Order {
		snap.Entries = append(snap.Entries, snapshotEntry{Key: key, Func: m.Funcs[key]})
	}
	return msgpack.NewEncoder(w).Encode(&snap)
}

// DecodeModule reads a msgpack snapshot written by EncodeModule.
// Snapshots with a different schema version are rejected rather than
// misread.
func DecodeModule(r io.Reader) (*Module, error) {
	var snap moduleSnapshot
	if err := msgpack.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("ir: decoding module snapshot: %w", err)
	}
	if snap.Schema != snapshotSchemaVersion {
		return nil, fmt.Errorf("ir: snapshot schema %d, want %d", snap.Schema, snapshotSchemaVersion)
	}
	m := &Module{
		Name:        snap.Name,
		HasTopLevel: snap.HasTopLevel,
		TopLevel:    snap.TopLevel,
		Funcs:       make(map[Key]*Func, len(snap.Entries)),
	}
	for _, e := range snap.Entries {
		if _, exists := m.Funcs[e.Key]; exists {
			return nil, fmt.Errorf("ir: snapshot contains duplicate key %s", e.Key)
		}
		m.Funcs[e.Key] = e.Func
		m.Order = append(m.Order, e.Key)
	}
	return m, nil
}
