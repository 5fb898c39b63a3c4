package ir

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"sable/internal/types"
)

// DumpModule writes a human-readable representation of an IR module.
// Output follows emission order and is deterministic.
func DumpModule(w io.Writer, m *Module, typesIn *types.Interner) error {
	if w == nil || m == nil {
		return nil
	}

	name := m.Name
	if name == "" {
		name = "_"
	}
	if _, err := fmt.Fprintf(w, "module %s\n", name); err != nil {
		return err
	}

	if m.TopLevel != nil {
		dumpFunc(w, m.TopLevel, typesIn)
	}

	fmt.Fprintf(w, "funcs=%d\n", len(m.Order))
	for _, key := range m.Order {
		f := m.Funcs[key]
		if f == nil {
			continue
		}
		fmt.Fprintf(w, "// %s\n", key)
		dumpFunc(w, f, typesIn)
	}
	return nil
}

func dumpFunc(w io.Writer, f *Func, typesIn *types.Interner) {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		name := p.Name
		if name == "" {
			name = "_"
		}
		params[i] = fmt.Sprintf("v%d %s: %s", i, name, typeStr(typesIn, p.Type))
	}
	fmt.Fprintf(w, "func @%s(%s) -> %s {\n", f.Name, strings.Join(params, ", "), typeStr(typesIn, f.Result))

	for i := range f.Blocks {
		bb := &f.Blocks[i]
		fmt.Fprintf(w, "bb%d:\n", i)
		for j := range bb.Instrs {
			fmt.Fprintf(w, "  %s\n", instrStr(&bb.Instrs[j], typesIn))
		}
		fmt.Fprintf(w, "  %s\n", termStr(&bb.Term))
	}
	fmt.Fprintf(w, "}\n")
}

func instrStr(ins *Instr, typesIn *types.Interner) string {
	var b strings.Builder
	if ins.Result != NoValueID {
		fmt.Fprintf(&b, "v%d = ", ins.Result)
	}
	switch ins.Kind {
	case InstrTuple:
		fmt.Fprintf(&b, "tuple (%s)", operandsStr(ins.Tuple.Elems))
	case InstrAllocStack:
		fmt.Fprintf(&b, "alloc_stack %s", typeStr(typesIn, ins.AllocStack.Type))
	case InstrAllocRef:
		fmt.Fprintf(&b, "alloc_ref %s", typeStr(typesIn, ins.AllocRef.Type))
	case InstrDeallocRef:
		fmt.Fprintf(&b, "dealloc_ref %s", operandStr(ins.DeallocRef.Value))
	case InstrStoreField:
		fmt.Fprintf(&b, "store_field %s.%d = %s", operandStr(ins.StoreField.Object), ins.StoreField.Field, operandStr(ins.StoreField.Value))
	case InstrLoadField:
		fmt.Fprintf(&b, "load_field %s.%d", operandStr(ins.LoadField.Object), ins.LoadField.Field)
	case InstrCall:
		fmt.Fprintf(&b, "call @%s(%s)", ins.Call.Callee.Name, operandsStr(ins.Call.Args))
	case InstrRelease:
		fmt.Fprintf(&b, "release %s", operandStr(ins.Release.Value))
	default:
		fmt.Fprintf(&b, "<unknown instr %d>", ins.Kind)
	}
	return b.String()
}

func instrMnemonic(k InstrKind) string {
	switch k {
	case InstrTuple:
		return "tuple"
	case InstrAllocStack:
		return "alloc_stack"
	case InstrAllocRef:
		return "alloc_ref"
	case InstrDeallocRef:
		return "dealloc_ref"
	case InstrStoreField:
		return "store_field"
	case InstrLoadField:
		return "load_field"
	case InstrCall:
		return "call"
	case InstrRelease:
		return "release"
	default:
		return fmt.Sprintf("instr(%d)", k)
	}
}

func termStr(t *Terminator) string {
	switch t.Kind {
	case TermNone:
		return "<unterminated>"
	case TermReturn:
		return "return " + operandStr(t.Return.Value)
	case TermUnreachable:
		return "unreachable"
	default:
		return fmt.Sprintf("<unknown term %d>", t.Kind)
	}
}

func operandsStr(ops []Operand) string {
	parts := make([]string, len(ops))
	for i := range ops {
		parts[i] = operandStr(ops[i])
	}
	return strings.Join(parts, ", ")
}

func operandStr(op Operand) string {
	switch op.Kind {
	case OperandValue:
		return fmt.Sprintf("v%d", op.Value)
	case OperandConst:
		return constStr(op.Const)
	default:
		return "<?>"
	}
}

func constStr(c Const) string {
	switch c.Kind {
	case ConstUnit:
		return "()"
	case ConstBool:
		return strconv.FormatBool(c.BoolValue)
	case ConstInt:
		return strconv.FormatInt(c.IntValue, 10)
	case ConstFloat:
		return strconv.FormatFloat(c.FloatValue, 'g', -1, 64)
	case ConstString:
		return strconv.Quote(c.StringValue)
	default:
		return "<?>"
	}
}

func typeStr(typesIn *types.Interner, id types.TypeID) string {
	if typesIn == nil {
		return fmt.Sprintf("t%d", id)
	}
	return typesIn.String(id)
}
