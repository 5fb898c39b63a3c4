package ir

import (
	"sable/internal/ast"
	"sable/internal/types"
)

// emitClassAllocator lowers the allocating entry point of a class
// constructor: heap-allocate the instance and delegate to the
// initializer.
func (l *funcLowerer) emitClassAllocator(d *ast.Decl) {
	classType := d.Ctor.Self
	self := l.emitValue(Instr{Kind: InstrAllocRef, AllocRef: AllocRefInstr{Type: classType}}, classType)

	args := make([]Operand, 0, len(l.f.Params)+1)
	args = append(args, self)
	for i := range l.f.Params {
		p, err := l.paramOperand(i)
		if err != nil {
			// Allocator params mirror the shell's own signature.
			panic(err)
		}
		args = append(args, p)
	}
	callee := Callee{Key: Key{Decl: d.ID, Role: RoleInitializer}, Name: d.Name + "!init"}
	l.emitValue(Instr{Kind: InstrCall, Call: CallInstr{Callee: callee, Args: args}}, l.g.typesIn.Builtins().Unit)
}

// emitClassInitializer lowers the initializing entry point of a class
// constructor: store constructor parameters into the fields of the
// already-allocated instance, then run the explicit body.
func (l *funcLowerer) emitClassInitializer(d *ast.Decl) error {
	self, err := l.paramOperand(0)
	if err != nil {
		return err
	}
	l.storeParamFields(self, d.Ctor.Self, 1)
	return l.lowerBlock(d.Ctor.Body)
}

// emitValueConstructor lowers a value-semantics constructor:
// allocation and initialization happen in one function since there is
// no separate identity to allocate.
func (l *funcLowerer) emitValueConstructor(d *ast.Decl) error {
	structType := d.Ctor.Self
	self := l.emitValue(Instr{Kind: InstrAllocStack, AllocStack: AllocStackInstr{Type: structType}}, structType)
	l.storeParamFields(self, structType, 0)
	return l.lowerBlock(d.Ctor.Body)
}

// storeParamFields stores constructor parameters into the instance's
// fields positionally, starting at parameter paramOffset.
func (l *funcLowerer) storeParamFields(self Operand, selfType types.TypeID, paramOffset int) {
	fields := l.g.typesIn.Fields(selfType)
	for i := range fields {
		idx := paramOffset + i
		if idx >= len(l.f.Params) {
			break
		}
		p, err := l.paramOperand(idx)
		if err != nil {
			break
		}
		l.emitNoValue(Instr{Kind: InstrStoreField, StoreField: StoreFieldInstr{
			Object: self,
			Field:  i,
			Value:  p,
		}})
	}
}

// emitDestructorBody lowers a class destructor: the explicit body if
// one was written, then the inherent member teardown and the
// deallocation of the instance itself. Teardown is skipped when the
// body ended in an explicit terminator.
func (l *funcLowerer) emitDestructorBody(classType types.TypeID, dtor *ast.Decl) error {
	self, err := l.paramOperand(0)
	if err != nil {
		return err
	}

	if dtor != nil && dtor.Dtor != nil {
		if err := l.lowerBlock(dtor.Dtor.Body); err != nil {
			return err
		}
	}

	if !l.hasValidInsertionPoint() {
		return nil
	}

	for i, field := range l.g.typesIn.Fields(classType) {
		if !l.g.typesIn.HasReferenceSemantics(field.Type) {
			continue
		}
		member := l.emitValue(Instr{Kind: InstrLoadField, LoadField: LoadFieldInstr{
			Object: self,
			Field:  i,
		}}, field.Type)
		l.emitNoValue(Instr{Kind: InstrRelease, Release: ReleaseInstr{Value: member}})
	}
	l.emitNoValue(Instr{Kind: InstrDeallocRef, DeallocRef: DeallocRefInstr{Value: self}})
	return nil
}
