package ir_test

import (
	"bytes"
	"strings"
	"testing"

	"sable/internal/ast"
	"sable/internal/ir"
	"sable/internal/source"
	"sable/internal/testkit"
	"sable/internal/types"
)

func lowerUnit(t *testing.T, p *testkit.Program, tu *ast.TranslationUnit) *ir.Module {
	t.Helper()
	m, err := ir.ConstructModule(tu, p.Types, ir.Options{})
	if err != nil {
		t.Fatalf("ConstructModule: %v", err)
	}
	if m == nil {
		t.Fatal("ConstructModule returned nil module")
	}
	return m
}

// classWithCtor registers a class with two int fields and builds its
// constructor declaration.
func classWithCtor(p *testkit.Program, name string) (types.TypeID, *ast.Decl) {
	b := p.Types.Builtins()
	cls := p.Types.RegisterClass(name, source.Span{})
	p.Types.SetFields(cls, []types.Field{
		{Name: "x", Type: b.Int},
		{Name: "y", Type: b.Int},
	})
	ctor := p.Ctor(name+".init", cls, []ast.Param{
		{Name: "x", Type: b.Int},
		{Name: "y", Type: b.Int},
	}, testkit.Body())
	return cls, ctor
}

func TestVoidableFallthrough(t *testing.T) {
	p := testkit.NewProgram()
	b := p.Types.Builtins()

	fn := p.Fn("noop", nil, b.Unit, testkit.Body())
	m := lowerUnit(t, p, p.Unit(ast.UnitLibrary, "lib", fn))

	f, ok := m.Lookup(ir.Key{Decl: fn.ID, Role: ir.RolePlain})
	if !ok {
		t.Fatal("noop not emitted")
	}
	if len(f.Blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(f.Blocks))
	}
	bb := f.Blocks[0]
	if len(bb.Instrs) != 1 || bb.Instrs[0].Kind != ir.InstrTuple || len(bb.Instrs[0].Tuple.Elems) != 0 {
		t.Fatalf("fallthrough should construct a unit value, got %+v", bb.Instrs)
	}
	if bb.Term.Kind != ir.TermReturn {
		t.Fatalf("terminator = %v, want return", bb.Term.Kind)
	}
	ret := bb.Term.Return.Value
	if ret.Kind != ir.OperandValue || ret.Value != bb.Instrs[0].Result {
		t.Fatalf("return should use the constructed unit value, got %+v", ret)
	}
	if !p.Types.IsUnit(ret.Type) {
		t.Fatalf("returned type is not unit")
	}
}

func TestNonVoidableFallthrough(t *testing.T) {
	p := testkit.NewProgram()
	b := p.Types.Builtins()

	fn := p.Fn("pending", nil, b.Int, testkit.Body())
	m := lowerUnit(t, p, p.Unit(ast.UnitLibrary, "lib", fn))

	f, _ := m.Lookup(ir.Key{Decl: fn.ID, Role: ir.RolePlain})
	if f == nil {
		t.Fatal("pending not emitted")
	}
	bb := f.Blocks[f.Entry]
	if bb.Term.Kind != ir.TermUnreachable {
		t.Fatalf("terminator = %v, want unreachable", bb.Term.Kind)
	}
	if len(bb.Instrs) != 0 {
		t.Fatalf("unexpected instructions on unreachable fallthrough: %+v", bb.Instrs)
	}
}

func TestExplicitReturnSkipsEpilogue(t *testing.T) {
	p := testkit.NewProgram()
	b := p.Types.Builtins()

	fn := p.Fn("identity", []ast.Param{{Name: "n", Type: b.Int}}, b.Int,
		testkit.Body(testkit.RetVal(testkit.ParamRef(b.Int, 0))))
	m := lowerUnit(t, p, p.Unit(ast.UnitLibrary, "lib", fn))

	f, _ := m.Lookup(ir.Key{Decl: fn.ID, Role: ir.RolePlain})
	bb := f.Blocks[f.Entry]
	if len(bb.Instrs) != 0 {
		t.Fatalf("explicit return should not synthesize an epilogue, got %+v", bb.Instrs)
	}
	if bb.Term.Kind != ir.TermReturn || bb.Term.Return.Value.Value != 0 {
		t.Fatalf("want return of v0, got %+v", bb.Term)
	}
}

func TestCleanupsEmittedInReverseOrder(t *testing.T) {
	p := testkit.NewProgram()
	b := p.Types.Builtins()
	cls, ctor := classWithCtor(p, "Point")

	use := p.Fn("use", nil, b.Unit, testkit.Body(
		testkit.Var("a", testkit.Call(ctor, cls, testkit.IntLit(b.Int, 1), testkit.IntLit(b.Int, 2))),
		testkit.Var("b", testkit.Call(ctor, cls, testkit.IntLit(b.Int, 3), testkit.IntLit(b.Int, 4))),
	))
	typeDecl := p.TypeDecl("Point", cls, ctor)
	m := lowerUnit(t, p, p.Unit(ast.UnitLibrary, "lib", typeDecl, use))

	f, _ := m.Lookup(ir.Key{Decl: use.ID, Role: ir.RolePlain})
	bb := f.Blocks[f.Entry]

	var releases []ir.ValueID
	for _, ins := range bb.Instrs {
		if ins.Kind == ir.InstrRelease {
			releases = append(releases, ins.Release.Value.Value)
		}
	}
	if len(releases) != 2 {
		t.Fatalf("releases = %d, want 2", len(releases))
	}
	// b (v1) was pushed after a (v0) and must be released first.
	if releases[0] != 1 || releases[1] != 0 {
		t.Fatalf("release order = %v, want [1 0]", releases)
	}
	if bb.Term.Kind != ir.TermReturn {
		t.Fatalf("terminator = %v, want return", bb.Term.Kind)
	}
	// Cleanups run between the unit construction and the return.
	last := bb.Instrs[len(bb.Instrs)-1]
	if last.Kind != ir.InstrRelease {
		t.Fatalf("last instruction before return = %v, want release", last.Kind)
	}
}

func TestClassConstructorSplits(t *testing.T) {
	p := testkit.NewProgram()
	cls, ctor := classWithCtor(p, "Point")
	typeDecl := p.TypeDecl("Point", cls, ctor)
	m := lowerUnit(t, p, p.Unit(ast.UnitLibrary, "lib", typeDecl))

	alloc, ok := m.Lookup(ir.Key{Decl: ctor.ID, Role: ir.RoleAllocator})
	if !ok {
		t.Fatal("allocator not emitted")
	}
	init, ok := m.Lookup(ir.Key{Decl: ctor.ID, Role: ir.RoleInitializer})
	if !ok {
		t.Fatal("initializer not emitted")
	}
	if _, ok := m.Lookup(ir.Key{Decl: ctor.ID, Role: ir.RolePlain}); ok {
		t.Fatal("class constructor must not emit a plain function")
	}

	// Allocator allocates and delegates.
	bb := alloc.Blocks[alloc.Entry]
	if bb.Instrs[0].Kind != ir.InstrAllocRef {
		t.Fatalf("allocator first instr = %v, want alloc_ref", bb.Instrs[0].Kind)
	}
	foundCall := false
	for _, ins := range bb.Instrs {
		if ins.Kind == ir.InstrCall {
			foundCall = true
			if ins.Call.Callee.Key != (ir.Key{Decl: ctor.ID, Role: ir.RoleInitializer}) {
				t.Fatalf("allocator delegates to %v", ins.Call.Callee.Key)
			}
			if len(ins.Call.Args) != 3 {
				t.Fatalf("allocator call args = %d, want self + 2 params", len(ins.Call.Args))
			}
		}
	}
	if !foundCall {
		t.Fatal("allocator does not call the initializer")
	}

	// Initializer takes self first and stores the fields.
	if len(init.Params) != 3 || init.Params[0].Name != "self" {
		t.Fatalf("initializer params = %+v", init.Params)
	}
	stores := 0
	for _, ins := range init.Blocks[init.Entry].Instrs {
		if ins.Kind == ir.InstrStoreField {
			stores++
		}
	}
	if stores != 2 {
		t.Fatalf("initializer stores = %d, want 2", stores)
	}
}

func TestValueConstructorSingleEmission(t *testing.T) {
	p := testkit.NewProgram()
	b := p.Types.Builtins()

	vec := p.Types.RegisterStruct("Vec", source.Span{})
	p.Types.SetFields(vec, []types.Field{{Name: "dx", Type: b.Int}})
	ctor := p.Ctor("Vec.init", vec, []ast.Param{{Name: "dx", Type: b.Int}}, testkit.Body())
	typeDecl := p.TypeDecl("Vec", vec, ctor)

	m := lowerUnit(t, p, p.Unit(ast.UnitLibrary, "lib", typeDecl))

	f, ok := m.Lookup(ir.Key{Decl: ctor.ID, Role: ir.RolePlain})
	if !ok {
		t.Fatal("value constructor not emitted")
	}
	if _, ok := m.Lookup(ir.Key{Decl: ctor.ID, Role: ir.RoleAllocator}); ok {
		t.Fatal("value constructor must not split")
	}
	if _, ok := m.Lookup(ir.Key{Decl: ctor.ID, Role: ir.RoleInitializer}); ok {
		t.Fatal("value constructor must not split")
	}
	bb := f.Blocks[f.Entry]
	if bb.Instrs[0].Kind != ir.InstrAllocStack {
		t.Fatalf("value ctor first instr = %v, want alloc_stack", bb.Instrs[0].Kind)
	}
	// Struct types get no destructor emission.
	if _, ok := m.Lookup(ir.Key{Decl: typeDecl.ID, Role: ir.RoleDestructor}); ok {
		t.Fatal("destructor emitted for value-semantics type")
	}
}

func TestDestructorGuarantee(t *testing.T) {
	tests := []struct {
		name     string
		explicit bool
	}{
		{name: "implicit", explicit: false},
		{name: "explicit", explicit: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testkit.NewProgram()
			cls, ctor := classWithCtor(p, "Point")

			members := []*ast.Decl{ctor}
			if tt.explicit {
				members = append(members, p.Dtor("Point.deinit", cls, testkit.Body()))
			}
			typeDecl := p.TypeDecl("Point", cls, members...)
			m := lowerUnit(t, p, p.Unit(ast.UnitLibrary, "lib", typeDecl))

			dtorKey := ir.Key{Decl: typeDecl.ID, Role: ir.RoleDestructor}
			f, ok := m.Lookup(dtorKey)
			if !ok {
				t.Fatal("destructor not emitted")
			}
			count := 0
			for _, key := range m.Order {
				if key.Role == ir.RoleDestructor {
					count++
				}
			}
			if count != 1 {
				t.Fatalf("destructor emissions = %d, want 1", count)
			}
			// Teardown ends by deallocating the instance.
			bb := f.Blocks[f.Entry]
			foundDealloc := false
			for _, ins := range bb.Instrs {
				if ins.Kind == ir.InstrDeallocRef {
					foundDealloc = true
				}
			}
			if !foundDealloc {
				t.Fatal("destructor does not dealloc the instance")
			}
		})
	}
}

func TestDestructorReleasesClassMembers(t *testing.T) {
	p := testkit.NewProgram()
	b := p.Types.Builtins()

	inner := p.Types.RegisterClass("Inner", source.Span{})
	outer := p.Types.RegisterClass("Outer", source.Span{})
	p.Types.SetFields(outer, []types.Field{
		{Name: "tag", Type: b.Int},
		{Name: "inner", Type: inner},
	})
	typeDecl := p.TypeDecl("Outer", outer)
	m := lowerUnit(t, p, p.Unit(ast.UnitLibrary, "lib", typeDecl))

	f, _ := m.Lookup(ir.Key{Decl: typeDecl.ID, Role: ir.RoleDestructor})
	bb := f.Blocks[f.Entry]
	releases := 0
	for _, ins := range bb.Instrs {
		if ins.Kind == ir.InstrRelease {
			releases++
		}
	}
	if releases != 1 {
		t.Fatalf("member releases = %d, want 1 (only the class-typed field)", releases)
	}
}

func TestPrototypesAreSkipped(t *testing.T) {
	p := testkit.NewProgram()
	b := p.Types.Builtins()
	cls, _ := classWithCtor(p, "Point")

	proto := p.Fn("external", nil, b.Int, nil)
	ctorProto := p.Ctor("Point.init", cls, nil, nil)
	typeDecl := p.TypeDecl("Point", cls, ctorProto)

	m := lowerUnit(t, p, p.Unit(ast.UnitLibrary, "lib", proto, typeDecl))

	if _, ok := m.Lookup(ir.Key{Decl: proto.ID, Role: ir.RolePlain}); ok {
		t.Fatal("prototype occupies the function table")
	}
	for _, key := range m.Order {
		if key.Decl == ctorProto.ID {
			t.Fatalf("constructor prototype emitted as %s", key)
		}
	}
	// The class still gets its destructor.
	if _, ok := m.Lookup(ir.Key{Decl: typeDecl.ID, Role: ir.RoleDestructor}); !ok {
		t.Fatal("destructor missing for class with prototype constructor")
	}
}

func TestBindingsProduceNoEmission(t *testing.T) {
	p := testkit.NewProgram()
	b := p.Types.Builtins()

	binding := p.Binding("greeting", b.String, testkit.StringLit(b.String, "hello"))
	m := lowerUnit(t, p, p.Unit(ast.UnitLibrary, "lib", binding))

	if len(m.Order) != 0 {
		t.Fatalf("bindings must not emit functions, got %v", m.Order)
	}
}

func TestClosureIsNeverVoidable(t *testing.T) {
	p := testkit.NewProgram()
	b := p.Types.Builtins()

	cl := p.Closure("closure#1", nil, b.Unit, testkit.Body())
	m := lowerUnit(t, p, p.Unit(ast.UnitLibrary, "lib", cl))

	f, ok := m.Lookup(ir.Key{Decl: cl.ID, Role: ir.RolePlain})
	if !ok {
		t.Fatal("closure not emitted")
	}
	// Even with a unit result, a closure falling off the end is
	// unreachable, not an implicit unit return.
	if f.Blocks[f.Entry].Term.Kind != ir.TermUnreachable {
		t.Fatalf("closure fallthrough = %v, want unreachable", f.Blocks[f.Entry].Term.Kind)
	}
}

func TestTopLevelPresencePerUnitKind(t *testing.T) {
	tests := []struct {
		kind ast.UnitKind
		want bool
	}{
		{ast.UnitLibrary, false},
		{ast.UnitMain, true},
		{ast.UnitRepl, true},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			p := testkit.NewProgram()
			m := lowerUnit(t, p, p.Unit(tt.kind, "u"))
			if m.HasTopLevel != tt.want {
				t.Fatalf("HasTopLevel = %v, want %v", m.HasTopLevel, tt.want)
			}
			if (m.TopLevel != nil) != tt.want {
				t.Fatalf("TopLevel presence = %v, want %v", m.TopLevel != nil, tt.want)
			}
			if tt.want {
				bb := m.TopLevel.Blocks[m.TopLevel.Entry]
				if bb.Term.Kind != ir.TermReturn {
					t.Fatalf("top-level fallthrough = %v, want unit return", bb.Term.Kind)
				}
			}
		})
	}
}

func TestTopLevelStatementsLowered(t *testing.T) {
	p, tu := testkit.SampleUnit()
	m := lowerUnit(t, p, tu)

	if m.TopLevel == nil {
		t.Fatal("main unit has no top-level function")
	}
	bb := m.TopLevel.Blocks[m.TopLevel.Entry]
	calls, releases := 0, 0
	for _, ins := range bb.Instrs {
		switch ins.Kind {
		case ir.InstrCall:
			calls++
		case ir.InstrRelease:
			releases++
		}
	}
	if calls != 2 {
		t.Fatalf("top-level calls = %d, want 2", calls)
	}
	// The class-typed top-level var gets released before the implicit return.
	if releases != 1 {
		t.Fatalf("top-level releases = %d, want 1", releases)
	}
	if err := ir.Validate(m, p.Types); err != nil {
		t.Fatalf("sample module fails validation: %v", err)
	}
}

func TestNoOpenBlocksAnywhere(t *testing.T) {
	p, tu := testkit.SampleUnit()
	m := lowerUnit(t, p, tu)

	check := func(f *ir.Func) {
		for i := range f.Blocks {
			if f.Blocks[i].Term.Kind == ir.TermNone {
				t.Errorf("%s: bb%d is open", f.Name, i)
			}
		}
	}
	check(m.TopLevel)
	for _, key := range m.Order {
		check(m.Funcs[key])
	}
}

func TestDeterministicLowering(t *testing.T) {
	p1, tu1 := testkit.SampleUnit()
	p2, tu2 := testkit.SampleUnit()

	m1 := lowerUnit(t, p1, tu1)
	m2 := lowerUnit(t, p2, tu2)

	if len(m1.Order) != len(m2.Order) {
		t.Fatalf("emission counts differ: %d vs %d", len(m1.Order), len(m2.Order))
	}
	for i := range m1.Order {
		if m1.Order[i] != m2.Order[i] {
			t.Fatalf("order[%d] differs: %s vs %s", i, m1.Order[i], m2.Order[i])
		}
	}

	var d1, d2 bytes.Buffer
	if err := ir.DumpModule(&d1, m1, p1.Types); err != nil {
		t.Fatal(err)
	}
	if err := ir.DumpModule(&d2, m2, p2.Types); err != nil {
		t.Fatal(err)
	}
	if d1.String() != d2.String() {
		t.Fatal("dumps of identical units differ")
	}
}

func TestDuplicateEmissionPanics(t *testing.T) {
	p := testkit.NewProgram()
	b := p.Types.Builtins()

	d1 := p.Fn("dup", nil, b.Unit, testkit.Body())
	d2 := &ast.Decl{
		ID:   d1.ID,
		Kind: ast.DeclFn,
		Name: "dup",
		Fn:   &ast.FuncDecl{Result: b.Unit, Body: testkit.Body()},
	}
	tu := p.Unit(ast.UnitLibrary, "lib", d1, d2)

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("duplicate emission key did not panic")
		}
	}()
	_, _ = ir.ConstructModule(tu, p.Types, ir.Options{})
}

func TestValueSemanticsDestructorPanics(t *testing.T) {
	p := testkit.NewProgram()
	b := p.Types.Builtins()

	vec := p.Types.RegisterStruct("Vec", source.Span{})
	p.Types.SetFields(vec, []types.Field{{Name: "dx", Type: b.Int}})
	dtor := p.Dtor("Vec.deinit", vec, testkit.Body())
	typeDecl := p.TypeDecl("Vec", vec, dtor)
	tu := p.Unit(ast.UnitLibrary, "lib", typeDecl)

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("destructor in value-semantics type did not panic")
		}
	}()
	_, _ = ir.ConstructModule(tu, p.Types, ir.Options{})
}

func TestVerboseDumpsDuringEmission(t *testing.T) {
	p := testkit.NewProgram()
	b := p.Types.Builtins()

	fn := p.Fn("noop", nil, b.Unit, testkit.Body())
	var buf bytes.Buffer
	_, err := ir.ConstructModule(p.Unit(ast.UnitLibrary, "lib", fn), p.Types, ir.Options{
		Verbose:    true,
		DumpWriter: &buf,
	})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "noop") {
		t.Fatalf("verbose output misses the declaration:\n%s", out)
	}
	if !strings.Contains(out, "$fn() -> unit") {
		t.Fatalf("verbose output misses the computed type:\n%s", out)
	}
}
