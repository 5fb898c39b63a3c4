package ir

import "sable/internal/types"

// InstrKind enumerates instruction kinds.
type InstrKind uint8

const (
	// InstrTuple constructs a tuple value; with no elements it
	// constructs the unit value.
	InstrTuple InstrKind = iota
	// InstrAllocStack allocates storage for a value-semantics instance.
	InstrAllocStack
	// InstrAllocRef heap-allocates a class instance.
	InstrAllocRef
	// InstrDeallocRef frees a class instance's storage.
	InstrDeallocRef
	// InstrStoreField stores a value into a field of an instance.
	InstrStoreField
	// InstrLoadField loads a field of an instance.
	InstrLoadField
	// InstrCall calls an emitted function by key.
	InstrCall
	// InstrRelease releases one reference to a class instance.
	InstrRelease
)

// Instr represents an IR instruction. Result is NoValueID for
// instructions that produce no value.
type Instr struct {
	Kind   InstrKind
	Result ValueID

	Tuple      TupleInstr
	AllocStack AllocStackInstr
	AllocRef   AllocRefInstr
	DeallocRef DeallocRefInstr
	StoreField StoreFieldInstr
	LoadField  LoadFieldInstr
	Call       CallInstr
	Release    ReleaseInstr
}

// TupleInstr constructs a tuple from element operands.
type TupleInstr struct {
	Elems []Operand
}

// AllocStackInstr allocates a value-semantics instance.
type AllocStackInstr struct {
	Type types.TypeID
}

// AllocRefInstr heap-allocates a class instance.
type AllocRefInstr struct {
	Type types.TypeID
}

// DeallocRefInstr frees a class instance's storage.
type DeallocRefInstr struct {
	Value Operand
}

// StoreFieldInstr stores Value into field Field of Object.
type StoreFieldInstr struct {
	Object Operand
	Field  int
	Value  Operand
}

// LoadFieldInstr loads field Field of Object.
type LoadFieldInstr struct {
	Object Operand
	Field  int
}

// Callee names the target of a call by emission key.
type Callee struct {
	Key  Key
	Name string
}

// CallInstr calls a function with the given arguments.
type CallInstr struct {
	Callee Callee
	Args   []Operand
}

// ReleaseInstr releases one reference to a class instance.
type ReleaseInstr struct {
	Value Operand
}

// OperandKind distinguishes operand sources.
type OperandKind uint8

const (
	// OperandConst is an immediate constant.
	OperandConst OperandKind = iota
	// OperandValue references an instruction result or parameter.
	OperandValue
)

// Operand is an instruction input.
type Operand struct {
	Kind OperandKind
	Type types.TypeID

	Const Const
	Value ValueID
}

// ConstKind distinguishes constant kinds.
type ConstKind uint8

const (
	ConstUnit ConstKind = iota
	ConstBool
	ConstInt
	ConstFloat
	ConstString
)

// Const is an immediate constant.
type Const struct {
	Kind ConstKind

	BoolValue   bool
	IntValue    int64
	FloatValue  float64
	StringValue string
}
