package ir

import (
	"sable/internal/source"
	"sable/internal/types"
)

// Param describes one parameter of an IR function. Parameter i is
// value i inside the function body.
type Param struct {
	Name string
	Type types.TypeID
}

// Func is one unit of the output IR: a signature plus an ordered
// sequence of basic blocks. It is created as an empty shell before
// its body is lowered and owned by the module once emission
// completes.
type Func struct {
	ID   FuncID
	Key  Key
	Name string
	Span source.Span

	Params []Param
	Result types.TypeID

	Blocks []Block
	Entry  BlockID
}
