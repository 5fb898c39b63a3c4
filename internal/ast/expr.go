package ast

import (
	"sable/internal/source"
	"sable/internal/types"
)

// ExprKind enumerates expression kinds.
type ExprKind uint8

const (
	// ExprLit represents a literal constant.
	ExprLit ExprKind = iota
	// ExprParam represents a reference to a parameter of the
	// enclosing declaration, by position.
	ExprParam
	// ExprLocal represents a reference to a local variable by name.
	ExprLocal
	// ExprCall represents a call to a declared function or constructor.
	ExprCall
	// ExprTuple represents a tuple construction.
	ExprTuple
)

// Expr is a resolved, typed expression. Type is always set by the
// type checker before lowering sees the node.
type Expr struct {
	Kind ExprKind
	Type types.TypeID
	Span source.Span

	Lit   LitExpr
	Param ParamExpr
	Local LocalExpr
	Call  CallExpr
	Tuple TupleExpr
}

// LitKind enumerates literal kinds.
type LitKind uint8

const (
	// LitUnit represents the empty tuple literal.
	LitUnit LitKind = iota
	// LitBool represents a boolean literal.
	LitBool
	// LitInt represents an integer literal.
	LitInt
	// LitFloat represents a floating-point literal.
	LitFloat
	// LitString represents a string literal.
	LitString
)

// LitExpr represents a literal constant.
type LitExpr struct {
	Kind LitKind

	BoolValue   bool
	IntValue    int64
	FloatValue  float64
	StringValue string
}

// ParamExpr references a parameter by position.
type ParamExpr struct {
	Index int
}

// LocalExpr references a local variable by name.
type LocalExpr struct {
	Name string
}

// CallExpr calls a declared function or constructor.
type CallExpr struct {
	Callee DeclID
	Name   string
	Args   []*Expr
}

// TupleExpr constructs a tuple from element expressions.
type TupleExpr struct {
	Elems []*Expr
}
