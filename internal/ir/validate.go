package ir

import (
	"errors"
	"fmt"

	"sable/internal/types"
)

// Validate checks module invariants for every emitted function.
// Returns an error if any invariant is violated.
func Validate(m *Module, typesIn *types.Interner) error {
	if m == nil {
		return nil
	}
	var errs []error
	if m.TopLevel != nil {
		if err := validateFunc(m.TopLevel, typesIn); err != nil {
			errs = append(errs, fmt.Errorf("function %s: %w", m.TopLevel.Name, err))
		}
	}
	for _, key := range m.Order {
		f := m.Funcs[key]
		if f == nil {
			errs = append(errs, fmt.Errorf("%s: missing function for recorded key", key))
			continue
		}
		if err := validateFunc(f, typesIn); err != nil {
			errs = append(errs, fmt.Errorf("function %s: %w", f.Name, err))
		}
	}
	return errors.Join(errs...)
}

func validateFunc(f *Func, typesIn *types.Interner) error {
	if f == nil {
		return nil
	}

	var errs []error

	if len(f.Blocks) == 0 {
		errs = append(errs, fmt.Errorf("no blocks"))
	} else if f.Entry < 0 || int(f.Entry) >= len(f.Blocks) {
		errs = append(errs, fmt.Errorf("entry block bb%d does not exist", f.Entry))
	}

	if err := validateBlocksTerminated(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateValueRefs(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateReturns(f); err != nil {
		errs = append(errs, err)
	}
	if typesIn != nil {
		if err := validateRefOps(f, typesIn); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// validateBlocksTerminated checks that every block ends with a
// terminator: a function must contain zero open blocks.
func validateBlocksTerminated(f *Func) error {
	var errs []error
	for i := range f.Blocks {
		if f.Blocks[i].Term.Kind == TermNone {
			errs = append(errs, fmt.Errorf("bb%d: unterminated block", i))
		}
	}
	return errors.Join(errs...)
}

// validateValueRefs checks that every value operand references a
// parameter or an instruction result.
func validateValueRefs(f *Func) error {
	var errs []error

	defined := make(map[ValueID]bool, len(f.Params))
	for i := range f.Params {
		defined[ValueID(i)] = true
	}
	for i := range f.Blocks {
		for j := range f.Blocks[i].Instrs {
			if r := f.Blocks[i].Instrs[j].Result; r != NoValueID {
				defined[r] = true
			}
		}
	}

	check := func(op Operand, context string) {
		if op.Kind == OperandValue && !defined[op.Value] {
			errs = append(errs, fmt.Errorf("%s: undefined value v%d", context, op.Value))
		}
	}

	for i := range f.Blocks {
		bb := &f.Blocks[i]
		for j := range bb.Instrs {
			ctx := fmt.Sprintf("bb%d instr %d", i, j)
			for _, op := range instrOperands(&bb.Instrs[j]) {
				check(op, ctx)
			}
		}
		if bb.Term.Kind == TermReturn {
			check(bb.Term.Return.Value, fmt.Sprintf("bb%d terminator", i))
		}
	}

	return errors.Join(errs...)
}

// validateReturns checks that every return carries a value of the
// declared result type.
func validateReturns(f *Func) error {
	var errs []error
	for i := range f.Blocks {
		bb := &f.Blocks[i]
		if bb.Term.Kind != TermReturn {
			continue
		}
		if got := bb.Term.Return.Value.Type; got != f.Result {
			errs = append(errs, fmt.Errorf("bb%d: return of type t%d in function returning t%d", i, got, f.Result))
		}
	}
	return errors.Join(errs...)
}

// validateRefOps checks that release and dealloc_ref only apply to
// reference-semantics operands.
func validateRefOps(f *Func, typesIn *types.Interner) error {
	var errs []error
	for i := range f.Blocks {
		bb := &f.Blocks[i]
		for j := range bb.Instrs {
			ins := &bb.Instrs[j]
			var op Operand
			switch ins.Kind {
			case InstrRelease:
				op = ins.Release.Value
			case InstrDeallocRef:
				op = ins.DeallocRef.Value
			default:
				continue
			}
			if !typesIn.HasReferenceSemantics(op.Type) {
				errs = append(errs, fmt.Errorf("bb%d instr %d: %s on non-reference operand", i, j, instrMnemonic(ins.Kind)))
			}
		}
	}
	return errors.Join(errs...)
}

// instrOperands collects the input operands of an instruction.
func instrOperands(ins *Instr) []Operand {
	switch ins.Kind {
	case InstrTuple:
		return ins.Tuple.Elems
	case InstrAllocStack, InstrAllocRef:
		return nil
	case InstrDeallocRef:
		return []Operand{ins.DeallocRef.Value}
	case InstrStoreField:
		return []Operand{ins.StoreField.Object, ins.StoreField.Value}
	case InstrLoadField:
		return []Operand{ins.LoadField.Object}
	case InstrCall:
		return ins.Call.Args
	case InstrRelease:
		return []Operand{ins.Release.Value}
	default:
		return nil
	}
}
