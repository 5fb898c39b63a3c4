package ast

import (
	"sable/internal/source"
	"sable/internal/types"
)

// DeclID uniquely identifies a declaration across a translation unit.
// IDs are assigned by the front end after name resolution.
type DeclID int32

// NoDeclID marks the absence of a declaration.
const NoDeclID DeclID = -1

// IsValid reports whether the ID refers to a declaration.
func (id DeclID) IsValid() bool {
	return id != NoDeclID
}

// DeclKind enumerates declaration kinds.
type DeclKind uint8

const (
	// DeclFn represents a named function declaration.
	DeclFn DeclKind = iota
	// DeclCtor represents a constructor declaration inside a nominal type.
	DeclCtor
	// DeclDtor represents a destructor declaration inside a class.
	DeclDtor
	// DeclClosure represents an anonymous function expression hoisted
	// to declaration level by the front end.
	DeclClosure
	// DeclBinding represents a top-level pattern binding (global variable).
	DeclBinding
	// DeclType represents a nominal type declaration with its members.
	DeclType
)

func (k DeclKind) String() string {
	switch k {
	case DeclFn:
		return "fn"
	case DeclCtor:
		return "ctor"
	case DeclDtor:
		return "dtor"
	case DeclClosure:
		return "closure"
	case DeclBinding:
		return "binding"
	case DeclType:
		return "type"
	default:
		return "unknown"
	}
}

// Decl is a resolved, fully typed declaration. The lowering engine
// holds only non-owning references to declarations.
type Decl struct {
	ID   DeclID
	Kind DeclKind
	Name string
	Span source.Span

	Fn      *FuncDecl
	Ctor    *CtorDecl
	Dtor    *DtorDecl
	Closure *ClosureDecl
	Binding *BindingDecl
	Type    *TypeDecl
}

// Param represents a resolved function parameter.
type Param struct {
	Name string
	Type types.TypeID
}

// FuncDecl carries the signature and body of a named function.
// A nil Body marks a prototype.
type FuncDecl struct {
	Params []Param
	Result types.TypeID
	Body   *Block
}

// CtorDecl carries a constructor for the nominal type Self.
// A nil Body marks a prototype.
type CtorDecl struct {
	Self   types.TypeID
	Params []Param
	Body   *Block
}

// DtorDecl carries an explicit destructor for the class Self.
type DtorDecl struct {
	Self types.TypeID
	Body *Block
}

// ClosureDecl carries an anonymous function. Closures always have a body.
type ClosureDecl struct {
	Params []Param
	Result types.TypeID
	Body   *Block
}

// BindingDecl carries a top-level pattern binding (global variable).
type BindingDecl struct {
	Type  types.TypeID
	Value *Expr
}

// TypeDecl carries a nominal type and its member declarations
// (constructors, methods, at most one explicit destructor).
type TypeDecl struct {
	Type    types.TypeID
	Members []*Decl
}
