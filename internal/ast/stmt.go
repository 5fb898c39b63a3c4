package ast

import "sable/internal/source"

// Block is an ordered statement list forming a declaration body.
type Block struct {
	Stmts []Stmt
	Span  source.Span
}

// StmtKind enumerates statement kinds.
type StmtKind uint8

const (
	// StmtVar represents a local variable binding.
	StmtVar StmtKind = iota
	// StmtExpr represents an expression evaluated for effect.
	StmtExpr
	// StmtReturn represents an explicit return.
	StmtReturn
)

// Stmt represents a statement inside a body.
type Stmt struct {
	Kind StmtKind
	Span source.Span

	Var    VarStmt
	Expr   ExprStmt
	Return ReturnStmt
}

// VarStmt binds the value of an initializer expression to a name.
type VarStmt struct {
	Name  string
	Value *Expr
}

// ExprStmt evaluates an expression and discards its result.
type ExprStmt struct {
	X *Expr
}

// ReturnStmt transfers control out of the enclosing function.
type ReturnStmt struct {
	HasValue bool
	Value    *Expr
}
