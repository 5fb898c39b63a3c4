package ir

import (
	"fmt"
	"io"
	"os"

	"sable/internal/ast"
	"sable/internal/types"
)

// Options configures one lowering pass.
type Options struct {
	// Verbose dumps each declaration, its computed type, and the
	// finished function during emission.
	Verbose bool
	// DumpWriter receives verbose dumps; defaults to stderr.
	DumpWriter io.Writer
}

func (o Options) dumpWriter() io.Writer {
	if o.DumpWriter != nil {
		return o.DumpWriter
	}
	return os.Stderr
}

// ConstructModule lowers a whole translation unit to an IR module.
// Main and repl units own an implicit top-level function; libraries
// do not. Declarations are processed strictly in source order.
//
// Verification failure of any emitted function aborts the whole pass;
// there is no per-declaration partial success.
func ConstructModule(tu *ast.TranslationUnit, typesIn *types.Interner, opts Options) (*Module, error) {
	m := &Module{Funcs: make(map[Key]*Func)}
	if tu == nil {
		return m, nil
	}
	if typesIn == nil {
		return nil, fmt.Errorf("ir: lowering %s: nil type interner", tu.Name)
	}
	m.Name = tu.Name

	switch tu.Kind {
	case ast.UnitLibrary:
		m.HasTopLevel = false
	case ast.UnitMain, ast.UnitRepl:
		m.HasTopLevel = true
	}

	g := &moduleLowerer{
		m:       m,
		typesIn: typesIn,
		opts:    opts,
		decls:   make(map[ast.DeclID]*ast.Decl),
		nextID:  1,
	}
	g.indexDecls(tu.Decls)

	var top *funcLowerer
	if m.HasTopLevel {
		f := &Func{
			ID:     g.allocFuncID(),
			Key:    Key{Decl: ast.NoDeclID, Role: RolePlain},
			Name:   "__sable_start",
			Result: typesIn.Builtins().Unit,
		}
		top = newFuncLowerer(g, f, true)
	}

	for _, d := range tu.Decls {
		if err := g.visitDecl(d); err != nil {
			return nil, err
		}
	}

	if top != nil {
		for i := range tu.TopLevel {
			if !top.hasValidInsertionPoint() {
				break
			}
			if err := top.lowerStmt(&tu.TopLevel[i]); err != nil {
				return nil, err
			}
		}
		top.finish()
		if opts.Verbose {
			dumpFunc(opts.dumpWriter(), top.f, typesIn)
		}
		if err := validateFunc(top.f, typesIn); err != nil {
			return nil, fmt.Errorf("ir: verification failed for %s: %w", top.f.Name, err)
		}
		m.TopLevel = top.f
	}

	return m, nil
}

// moduleLowerer dispatches declarations to emission policies and owns
// the module's function table. It is the only writer of the table.
type moduleLowerer struct {
	m       *Module
	typesIn *types.Interner
	opts    Options
	decls   map[ast.DeclID]*ast.Decl
	nextID  FuncID
}

// indexDecls records every declaration, including nominal type
// members, so call sites and destructor emission can resolve
// signatures by DeclID.
func (g *moduleLowerer) indexDecls(decls []*ast.Decl) {
	for _, d := range decls {
		if d == nil || !d.ID.IsValid() {
			continue
		}
		g.decls[d.ID] = d
		if d.Kind == ast.DeclType && d.Type != nil {
			g.indexDecls(d.Type.Members)
		}
	}
}

func (g *moduleLowerer) allocFuncID() FuncID {
	id := g.nextID
	g.nextID++
	return id
}

// calleeKey maps a resolved callee declaration to the emission key of
// its public entry point: the allocator for class constructors, the
// plain function otherwise.
func (g *moduleLowerer) calleeKey(id ast.DeclID) Key {
	if d, ok := g.decls[id]; ok && d.Kind == ast.DeclCtor && d.Ctor != nil {
		if g.typesIn.HasReferenceSemantics(d.Ctor.Self) {
			return Key{Decl: id, Role: RoleAllocator}
		}
	}
	return Key{Decl: id, Role: RolePlain}
}

// visitDecl dispatches one top-level declaration to its emission
// policy. Every declaration kind must be handled here; an unknown
// kind is a bug in the front end.
func (g *moduleLowerer) visitDecl(d *ast.Decl) error {
	if d == nil {
		return nil
	}
	switch d.Kind {
	case ast.DeclFn:
		return g.emitFunction(d)
	case ast.DeclClosure:
		return g.emitClosure(d)
	case ast.DeclCtor:
		return g.emitConstructor(d)
	case ast.DeclDtor:
		panic(fmt.Errorf("ir: destructor %s outside a nominal type", d.Name))
	case ast.DeclBinding:
		// Accessor synthesis for global bindings is not implemented;
		// pattern bindings currently produce no IR functions.
		return nil
	case ast.DeclType:
		tl := newTypeLowerer(g, d)
		if err := tl.lowerMembers(); err != nil {
			return err
		}
		return tl.finish()
	default:
		panic(fmt.Errorf("ir: unknown declaration kind %d", d.Kind))
	}
}

// preEmit asserts the key is unused, optionally dumps the declaration
// and its computed type, and allocates the shell function the body
// will be lowered into. Duplicate emission means the orchestrator's
// own bookkeeping is broken, so it is not a recoverable condition.
func (g *moduleLowerer) preEmit(key Key, name string, decl *ast.Decl) *Func {
	if _, exists := g.m.Funcs[key]; exists {
		panic(fmt.Errorf("ir: function already emitted for %s", key))
	}

	params, result := g.constantType(key)

	if g.opts.Verbose {
		w := g.opts.dumpWriter()
		paramTypes := make([]types.TypeID, len(params))
		for i := range params {
			paramTypes[i] = params[i].Type
		}
		fnType := g.typesIn.InternFn(paramTypes, result)
		fmt.Fprintf(w, "%s (%s) : $%s\n", key, name, g.typesIn.String(fnType))
		if decl != nil {
			fmt.Fprintf(w, "  %s %s @ %s\n", decl.Kind, decl.Name, decl.Span)
		}
	}

	f := &Func{
		ID:     g.allocFuncID(),
		Key:    key,
		Name:   name,
		Params: params,
		Result: result,
		Entry:  NoBlockID,
	}
	if decl != nil {
		f.Span = decl.Span
	}
	return f
}

// postEmit verifies the finished function and records it in the
// function table. Verification failure is fatal: well-typed input
// should never lower to malformed IR, so any failure is a lowering
// bug.
func (g *moduleLowerer) postEmit(key Key, f *Func) error {
	if g.opts.Verbose {
		dumpFunc(g.opts.dumpWriter(), f, g.typesIn)
	}
	if err := validateFunc(f, g.typesIn); err != nil {
		return fmt.Errorf("ir: verification failed for %s: %w", f.Name, err)
	}
	g.m.Funcs[key] = f
	g.m.Order = append(g.m.Order, key)
	return nil
}

// constantType computes the signature for an emission key.
//
// Constructor- and destructor-derived functions all have unit results
// at this stage: the allocator delegates, the initializer and value
// constructor fill in fields, and the destructor tears down; none of
// them returns the instance yet.
func (g *moduleLowerer) constantType(key Key) ([]Param, types.TypeID) {
	d, ok := g.decls[key.Decl]
	if !ok {
		panic(fmt.Errorf("ir: no declaration for %s", key))
	}
	unit := g.typesIn.Builtins().Unit

	switch key.Role {
	case RolePlain:
		switch d.Kind {
		case ast.DeclFn:
			return paramList(d.Fn.Params), resultOrUnit(d.Fn.Result, unit)
		case ast.DeclClosure:
			return paramList(d.Closure.Params), resultOrUnit(d.Closure.Result, unit)
		case ast.DeclCtor:
			return paramList(d.Ctor.Params), unit
		}
	case RoleAllocator:
		return paramList(d.Ctor.Params), unit
	case RoleInitializer:
		params := make([]Param, 0, len(d.Ctor.Params)+1)
		params = append(params, Param{Name: "self", Type: d.Ctor.Self})
		params = append(params, paramList(d.Ctor.Params)...)
		return params, unit
	case RoleDestructor:
		// key.Decl is the nominal type declaration.
		return []Param{{Name: "self", Type: d.Type.Type}}, unit
	}
	panic(fmt.Errorf("ir: cannot compute type for %s (%s)", key, d.Kind))
}

func paramList(in []ast.Param) []Param {
	out := make([]Param, len(in))
	for i, p := range in {
		out[i] = Param{Name: p.Name, Type: p.Type}
	}
	return out
}

func resultOrUnit(id types.TypeID, unit types.TypeID) types.TypeID {
	if id == types.NoTypeID {
		return unit
	}
	return id
}

// emitFunction lowers a named function declaration.
func (g *moduleLowerer) emitFunction(d *ast.Decl) error {
	// Prototypes never occupy the function table.
	if d.Fn == nil || d.Fn.Body == nil {
		return nil
	}
	key := Key{Decl: d.ID, Role: RolePlain}
	f := g.preEmit(key, d.Name, d)
	l := newFuncLowerer(g, f, g.typesIn.IsUnit(f.Result))
	if err := l.lowerBlock(d.Fn.Body); err != nil {
		return err
	}
	l.finish()
	return g.postEmit(key, f)
}

// emitClosure lowers an anonymous function. Closures always have a
// body and always return a value.
func (g *moduleLowerer) emitClosure(d *ast.Decl) error {
	key := Key{Decl: d.ID, Role: RolePlain}
	f := g.preEmit(key, d.Name, d)
	l := newFuncLowerer(g, f, false)
	if err := l.lowerBlock(d.Closure.Body); err != nil {
		return err
	}
	l.finish()
	return g.postEmit(key, f)
}

// emitConstructor lowers a constructor declaration. Class
// constructors split into an allocator and an initializer with
// separate emission keys; value-semantics constructors allocate and
// initialize in a single function.
func (g *moduleLowerer) emitConstructor(d *ast.Decl) error {
	// Prototypes never occupy the function table.
	if d.Ctor == nil || d.Ctor.Body == nil {
		return nil
	}

	if g.typesIn.HasReferenceSemantics(d.Ctor.Self) {
		allocKey := Key{Decl: d.ID, Role: RoleAllocator}
		alloc := g.preEmit(allocKey, d.Name, d)
		al := newFuncLowerer(g, alloc, true)
		al.emitClassAllocator(d)
		al.finish()
		if err := g.postEmit(allocKey, alloc); err != nil {
			return err
		}

		initKey := Key{Decl: d.ID, Role: RoleInitializer}
		init := g.preEmit(initKey, d.Name+"!init", d)
		il := newFuncLowerer(g, init, true)
		if err := il.emitClassInitializer(d); err != nil {
			return err
		}
		il.finish()
		return g.postEmit(initKey, init)
	}

	key := Key{Decl: d.ID, Role: RolePlain}
	f := g.preEmit(key, d.Name, d)
	l := newFuncLowerer(g, f, true)
	if err := l.emitValueConstructor(d); err != nil {
		return err
	}
	l.finish()
	return g.postEmit(key, f)
}

// emitDestructor lowers the destructor of a class. dtor may be nil:
// a class without an explicit destructor still gets one emitted,
// since member teardown is inherent.
func (g *moduleLowerer) emitDestructor(typeDecl *ast.Decl, dtor *ast.Decl) error {
	key := Key{Decl: typeDecl.ID, Role: RoleDestructor}
	f := g.preEmit(key, typeDecl.Name+".deinit", dtor)
	l := newFuncLowerer(g, f, true)
	if err := l.emitDestructorBody(typeDecl.Type.Type, dtor); err != nil {
		return err
	}
	l.finish()
	return g.postEmit(key, f)
}
