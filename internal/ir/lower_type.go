package ir

import (
	"fmt"

	"sable/internal/ast"
)

// typeLowerer scopes the lowering of one nominal type's members. Its
// finish step guarantees that every class gets exactly one destructor
// emission, whether or not the source declared one, without the call
// site having to remember to ask for it.
type typeLowerer struct {
	g            *moduleLowerer
	decl         *ast.Decl
	explicitDtor *ast.Decl
}

func newTypeLowerer(g *moduleLowerer, d *ast.Decl) *typeLowerer {
	return &typeLowerer{g: g, decl: d}
}

// lowerMembers dispatches the type's member declarations.
func (t *typeLowerer) lowerMembers() error {
	if t.decl.Type == nil {
		return nil
	}
	for _, m := range t.decl.Type.Members {
		if m == nil {
			continue
		}
		switch m.Kind {
		case ast.DeclCtor:
			if err := t.g.emitConstructor(m); err != nil {
				return err
			}
		case ast.DeclFn:
			if err := t.g.emitFunction(m); err != nil {
				return err
			}
		case ast.DeclDtor:
			t.registerDestructor(m)
		default:
			panic(fmt.Errorf("ir: unexpected %s member in type %s", m.Kind, t.decl.Name))
		}
	}
	return nil
}

func (t *typeLowerer) registerDestructor(d *ast.Decl) {
	if t.explicitDtor != nil {
		panic(fmt.Errorf("ir: multiple destructors registered for type %s", t.decl.Name))
	}
	t.explicitDtor = d
}

// finish runs once, when member lowering is complete. Classes get
// their destructor emitted here; a value-semantics type with a
// registered destructor is an invariant violation, not a valid
// program.
func (t *typeLowerer) finish() error {
	if t.g.typesIn.HasReferenceSemantics(t.decl.Type.Type) {
		return t.g.emitDestructor(t.decl, t.explicitDtor)
	}
	if t.explicitDtor != nil {
		panic(fmt.Errorf("ir: destructor in value-semantics type %s", t.decl.Name))
	}
	return nil
}
