package testkit

import (
	"sable/internal/ast"
	"sable/internal/source"
	"sable/internal/types"
)

// SampleUnit builds a small main unit covering the emission policies:
// a class with a constructor and an explicit destructor, a struct
// with a constructor, a plain function, a prototype, a global
// binding, and top-level statements. Used by tests and the demo
// command.
func SampleUnit() (*Program, *ast.TranslationUnit) {
	p := NewProgram()
	b := p.Types.Builtins()

	point := p.Types.RegisterClass("Point", source.Span{})
	p.Types.SetFields(point, []types.Field{
		{Name: "x", Type: b.Int},
		{Name: "y", Type: b.Int},
	})

	vec := p.Types.RegisterStruct("Vec", source.Span{})
	p.Types.SetFields(vec, []types.Field{
		{Name: "dx", Type: b.Int},
		{Name: "dy", Type: b.Int},
	})

	pointCtor := p.Ctor("Point.init", point, []ast.Param{
		{Name: "x", Type: b.Int},
		{Name: "y", Type: b.Int},
	}, Body())
	pointDtor := p.Dtor("Point.deinit", point, Body())
	pointType := p.TypeDecl("Point", point, pointCtor, pointDtor)

	vecCtor := p.Ctor("Vec.init", vec, []ast.Param{
		{Name: "dx", Type: b.Int},
		{Name: "dy", Type: b.Int},
	}, Body())
	vecType := p.TypeDecl("Vec", vec, vecCtor)

	identity := p.Fn("identity", []ast.Param{{Name: "n", Type: b.Int}}, b.Int,
		Body(RetVal(ParamRef(b.Int, 0))))
	proto := p.Fn("external", nil, b.Int, nil)
	greeting := p.Binding("greeting", b.String, StringLit(b.String, "hello"))

	tu := p.Unit(ast.UnitMain, "sample", pointType, vecType, identity, proto, greeting)
	tu.TopLevel = []ast.Stmt{
		Var("origin", Call(pointCtor, point, IntLit(b.Int, 0), IntLit(b.Int, 0))),
		Eval(Call(identity, b.Int, IntLit(b.Int, 42))),
	}
	return p, tu
}
