package types

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Invalid TypeID
	Unit    TypeID
	Bool    TypeID
	Int     TypeID
	Float   TypeID
	String  TypeID
}

// Interner provides stable TypeIDs for structural and nominal descriptors.
type Interner struct {
	types    []Type
	index    map[Type]TypeID
	builtins Builtins
	nominals []NominalInfo
	fns      []FnInfo
	tuples   []TupleInfo
}

// TupleInfo stores element types for a tuple type.
type TupleInfo struct {
	Elems []TypeID
}

// FnInfo stores the signature of a function type.
type FnInfo struct {
	Params []TypeID
	Result TypeID
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[Type]TypeID, 32),
	}
	in.nominals = append(in.nominals, NominalInfo{}) // reserve 0 as invalid sentinel
	in.fns = append(in.fns, FnInfo{})
	in.tuples = append(in.tuples, TupleInfo{})
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Int = in.Intern(Type{Kind: KindInt})
	in.builtins.Float = in.Intern(Type{Kind: KindFloat})
	in.builtins.String = in.Intern(Type{Kind: KindString})
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := in.index[t]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// InternTuple ensures the element list has a stable tuple TypeID.
// The empty tuple is the unit type.
func (in *Interner) InternTuple(elems []TypeID) TypeID {
	if len(elems) == 0 {
		return in.builtins.Unit
	}
	for slot := 1; slot < len(in.tuples); slot++ {
		if typeIDsEqual(in.tuples[slot].Elems, elems) {
			return in.Intern(Type{Kind: KindTuple, Payload: uint32(slot)})
		}
	}
	slot := in.appendTupleInfo(TupleInfo{Elems: append([]TypeID(nil), elems...)})
	return in.internRaw(Type{Kind: KindTuple, Payload: slot})
}

// TupleElems returns the element types for a tuple TypeID.
func (in *Interner) TupleElems(id TypeID) []TypeID {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindTuple || int(tt.Payload) >= len(in.tuples) {
		return nil
	}
	return in.tuples[tt.Payload].Elems
}

// InternFn ensures the signature has a stable function TypeID.
func (in *Interner) InternFn(params []TypeID, result TypeID) TypeID {
	for slot := 1; slot < len(in.fns); slot++ {
		fi := in.fns[slot]
		if fi.Result == result && typeIDsEqual(fi.Params, params) {
			return in.Intern(Type{Kind: KindFn, Payload: uint32(slot)})
		}
	}
	slot := in.appendFnInfo(FnInfo{Params: append([]TypeID(nil), params...), Result: result})
	return in.internRaw(Type{Kind: KindFn, Payload: slot})
}

// FnInfo returns the signature for a function TypeID.
func (in *Interner) FnInfo(id TypeID) (FnInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindFn || int(tt.Payload) >= len(in.fns) {
		return FnInfo{}, false
	}
	return in.fns[tt.Payload], true
}

// IsUnit reports whether id is the canonical empty-tuple type.
func (in *Interner) IsUnit(id TypeID) bool {
	return id != NoTypeID && id == in.builtins.Unit
}

// HasReferenceSemantics reports whether id is an identity-based,
// heap-allocated type (a class).
func (in *Interner) HasReferenceSemantics(id TypeID) bool {
	tt, ok := in.Lookup(id)
	return ok && tt.Kind == KindClass
}

// String renders a human-readable form of the type for dumps.
func (in *Interner) String(id TypeID) string {
	tt, ok := in.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	switch tt.Kind {
	case KindStruct, KindClass:
		if info, ok := in.NominalInfo(id); ok && info.Name != "" {
			return info.Name
		}
		return tt.Kind.String()
	case KindTuple:
		elems := in.TupleElems(id)
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = in.String(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindFn:
		info, _ := in.FnInfo(id)
		parts := make([]string, len(info.Params))
		for i, p := range info.Params {
			parts[i] = in.String(p)
		}
		return "fn(" + strings.Join(parts, ", ") + ") -> " + in.String(info.Result)
	default:
		return tt.Kind.String()
	}
}

func (in *Interner) appendFnInfo(info FnInfo) uint32 {
	slot, err := safecast.Conv[uint32](len(in.fns))
	if err != nil {
		panic(fmt.Errorf("len(fns) overflow: %w", err))
	}
	in.fns = append(in.fns, info)
	return slot
}

func (in *Interner) appendTupleInfo(info TupleInfo) uint32 {
	slot, err := safecast.Conv[uint32](len(in.tuples))
	if err != nil {
		panic(fmt.Errorf("len(tuples) overflow: %w", err))
	}
	in.tuples = append(in.tuples, info)
	return slot
}

func typeIDsEqual(a, b []TypeID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
