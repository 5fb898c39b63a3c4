package types

import (
	"fmt"

	"fortio.org/safecast"

	"sable/internal/source"
)

// Field describes a single stored member of a nominal type.
type Field struct {
	Name string
	Type TypeID
}

// NominalInfo stores metadata for a struct or class type.
type NominalInfo struct {
	Name   string
	Decl   source.Span
	Fields []Field
}

// RegisterStruct allocates a value-semantics nominal type slot and
// returns its TypeID.
func (in *Interner) RegisterStruct(name string, decl source.Span) TypeID {
	slot := in.appendNominalInfo(NominalInfo{Name: name, Decl: decl})
	return in.internRaw(Type{Kind: KindStruct, Payload: slot})
}

// RegisterClass allocates a reference-semantics nominal type slot and
// returns its TypeID.
func (in *Interner) RegisterClass(name string, decl source.Span) TypeID {
	slot := in.appendNominalInfo(NominalInfo{Name: name, Decl: decl})
	return in.internRaw(Type{Kind: KindClass, Payload: slot})
}

// SetFields stores the resolved field descriptors for a nominal type.
func (in *Interner) SetFields(id TypeID, fields []Field) {
	info := in.nominalInfo(id)
	if info == nil {
		return
	}
	info.Fields = append([]Field(nil), fields...)
}

// Fields returns the stored fields for a nominal TypeID.
func (in *Interner) Fields(id TypeID) []Field {
	info := in.nominalInfo(id)
	if info == nil {
		return nil
	}
	return info.Fields
}

// NominalInfo returns metadata for the provided nominal TypeID.
func (in *Interner) NominalInfo(id TypeID) (*NominalInfo, bool) {
	info := in.nominalInfo(id)
	if info == nil {
		return nil, false
	}
	return info, true
}

func (in *Interner) nominalInfo(id TypeID) *NominalInfo {
	tt, ok := in.Lookup(id)
	if !ok || (tt.Kind != KindStruct && tt.Kind != KindClass) {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.nominals) {
		return nil
	}
	return &in.nominals[tt.Payload]
}

func (in *Interner) appendNominalInfo(info NominalInfo) uint32 {
	slot, err := safecast.Conv[uint32](len(in.nominals))
	if err != nil {
		panic(fmt.Errorf("len(nominals) overflow: %w", err))
	}
	in.nominals = append(in.nominals, info)
	return slot
}
