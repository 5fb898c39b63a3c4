// Package testkit provides typed-AST construction helpers shared by
// package tests and the demo command. The front end normally produces
// resolved declarations; these builders stand in for it.
package testkit

import (
	"sable/internal/ast"
	"sable/internal/types"
)

// Program assembles translation units with fresh declaration IDs over
// one type interner.
type Program struct {
	Types  *types.Interner
	nextID ast.DeclID
}

func NewProgram() *Program {
	return &Program{Types: types.NewInterner(), nextID: 1}
}

// NewID returns a fresh declaration ID.
func (p *Program) NewID() ast.DeclID {
	id := p.nextID
	p.nextID++
	return id
}

// Unit builds a translation unit over the given declarations.
func (p *Program) Unit(kind ast.UnitKind, name string, decls ...*ast.Decl) *ast.TranslationUnit {
	return &ast.TranslationUnit{Kind: kind, Name: name, Decls: decls}
}

// Fn builds a named function declaration. A nil body is a prototype.
func (p *Program) Fn(name string, params []ast.Param, result types.TypeID, body *ast.Block) *ast.Decl {
	return &ast.Decl{
		ID:   p.NewID(),
		Kind: ast.DeclFn,
		Name: name,
		Fn:   &ast.FuncDecl{Params: params, Result: result, Body: body},
	}
}

// Closure builds an anonymous function declaration.
func (p *Program) Closure(name string, params []ast.Param, result types.TypeID, body *ast.Block) *ast.Decl {
	return &ast.Decl{
		ID:      p.NewID(),
		Kind:    ast.DeclClosure,
		Name:    name,
		Closure: &ast.ClosureDecl{Params: params, Result: result, Body: body},
	}
}

// Ctor builds a constructor for the nominal type self. A nil body is
// a prototype.
func (p *Program) Ctor(name string, self types.TypeID, params []ast.Param, body *ast.Block) *ast.Decl {
	return &ast.Decl{
		ID:   p.NewID(),
		Kind: ast.DeclCtor,
		Name: name,
		Ctor: &ast.CtorDecl{Self: self, Params: params, Body: body},
	}
}

// Dtor builds an explicit destructor for the class self.
func (p *Program) Dtor(name string, self types.TypeID, body *ast.Block) *ast.Decl {
	return &ast.Decl{
		ID:   p.NewID(),
		Kind: ast.DeclDtor,
		Name: name,
		Dtor: &ast.DtorDecl{Self: self, Body: body},
	}
}

// Binding builds a top-level pattern binding.
func (p *Program) Binding(name string, ty types.TypeID, value *ast.Expr) *ast.Decl {
	return &ast.Decl{
		ID:      p.NewID(),
		Kind:    ast.DeclBinding,
		Name:    name,
		Binding: &ast.BindingDecl{Type: ty, Value: value},
	}
}

// TypeDecl builds a nominal type declaration with its members.
func (p *Program) TypeDecl(name string, ty types.TypeID, members ...*ast.Decl) *ast.Decl {
	return &ast.Decl{
		ID:   p.NewID(),
		Kind: ast.DeclType,
		Name: name,
		Type: &ast.TypeDecl{Type: ty, Members: members},
	}
}

// Body builds a statement block.
func Body(stmts ...ast.Stmt) *ast.Block {
	return &ast.Block{Stmts: stmts}
}

// Ret builds an explicit valueless return.
func Ret() ast.Stmt {
	return ast.Stmt{Kind: ast.StmtReturn}
}

// RetVal builds an explicit return of a value.
func RetVal(v *ast.Expr) ast.Stmt {
	return ast.Stmt{Kind: ast.StmtReturn, Return: ast.ReturnStmt{HasValue: true, Value: v}}
}

// Var builds a local variable binding.
func Var(name string, value *ast.Expr) ast.Stmt {
	return ast.Stmt{Kind: ast.StmtVar, Var: ast.VarStmt{Name: name, Value: value}}
}

// Eval builds an expression statement.
func Eval(x *ast.Expr) ast.Stmt {
	return ast.Stmt{Kind: ast.StmtExpr, Expr: ast.ExprStmt{X: x}}
}

// IntLit builds an integer literal expression.
func IntLit(ty types.TypeID, v int64) *ast.Expr {
	return &ast.Expr{
		Kind: ast.ExprLit,
		Type: ty,
		Lit:  ast.LitExpr{Kind: ast.LitInt, IntValue: v},
	}
}

// StringLit builds a string literal expression.
func StringLit(ty types.TypeID, v string) *ast.Expr {
	return &ast.Expr{
		Kind: ast.ExprLit,
		Type: ty,
		Lit:  ast.LitExpr{Kind: ast.LitString, StringValue: v},
	}
}

// ParamRef builds a reference to parameter idx.
func ParamRef(ty types.TypeID, idx int) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprParam, Type: ty, Param: ast.ParamExpr{Index: idx}}
}

// LocalRef builds a reference to a local variable.
func LocalRef(ty types.TypeID, name string) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprLocal, Type: ty, Local: ast.LocalExpr{Name: name}}
}

// Call builds a call to a declared function or constructor.
func Call(callee *ast.Decl, resultTy types.TypeID, args ...*ast.Expr) *ast.Expr {
	return &ast.Expr{
		Kind: ast.ExprCall,
		Type: resultTy,
		Call: ast.CallExpr{Callee: callee.ID, Name: callee.Name, Args: args},
	}
}
