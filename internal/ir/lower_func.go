package ir

import (
	"fmt"

	"fortio.org/safecast"

	"sable/internal/ast"
	"sable/internal/types"
)

// funcLowerer owns the construction of exactly one IR function. It
// tracks the current open block (the insertion point), the scope-exit
// cleanup stack, and whether the declared result is the unit type.
//
// The insertion point is NoBlockID when no open block exists, e.g.
// after an explicit return. Instructions are never appended while the
// insertion point is invalid; emitting a terminator invalidates it.
type funcLowerer struct {
	g *moduleLowerer
	f *Func

	cur      BlockID
	voidable bool
	cleanups cleanupStack

	locals    map[string]Operand
	nextValue int
}

func newFuncLowerer(g *moduleLowerer, f *Func, voidable bool) *funcLowerer {
	l := &funcLowerer{
		g:         g,
		f:         f,
		voidable:  voidable,
		locals:    make(map[string]Operand),
		nextValue: len(f.Params),
	}
	entry := l.newBlock()
	l.f.Entry = entry
	l.cur = entry
	return l
}

// finish synthesizes the implicit epilogue after the entire body has
// been visited. It must run exactly once per lowerer, before the
// function is handed to postEmit.
//
// If the body ended in an explicit terminator there is nothing to do.
// A voidable function falling off the end returns a freshly
// constructed unit value after running all cleanups; a non-voidable
// one ends in an unreachable marker, leaving the proof that control
// never gets here to upstream flow analysis.
func (l *funcLowerer) finish() {
	if !l.hasValidInsertionPoint() {
		return
	}
	if l.voidable {
		unit := l.emitTuple(nil)
		l.cleanups.emitAll(l)
		l.terminate(Terminator{Kind: TermReturn, Return: ReturnTerm{Value: unit}})
		return
	}
	l.terminate(Terminator{Kind: TermUnreachable})
}

func (l *funcLowerer) hasValidInsertionPoint() bool {
	return l.cur != NoBlockID
}

func (l *funcLowerer) curBlock() *Block {
	if l.cur == NoBlockID || int(l.cur) >= len(l.f.Blocks) {
		return nil
	}
	return &l.f.Blocks[l.cur]
}

func (l *funcLowerer) newBlock() BlockID {
	raw, err := safecast.Conv[int32](len(l.f.Blocks))
	if err != nil {
		panic(fmt.Errorf("ir: block id overflow: %w", err))
	}
	id := BlockID(raw)
	l.f.Blocks = append(l.f.Blocks, Block{ID: id, Term: Terminator{Kind: TermNone}})
	return id
}

func (l *funcLowerer) emit(ins Instr) {
	b := l.curBlock()
	if b == nil || b.Terminated() {
		return
	}
	b.Instrs = append(b.Instrs, ins)
}

// emitNoValue appends an instruction that produces no value.
func (l *funcLowerer) emitNoValue(ins Instr) {
	ins.Result = NoValueID
	l.emit(ins)
}

// emitValue appends an instruction that produces a value and returns
// an operand referencing it.
func (l *funcLowerer) emitValue(ins Instr, ty types.TypeID) Operand {
	raw, err := safecast.Conv[int32](l.nextValue)
	if err != nil {
		panic(fmt.Errorf("ir: value id overflow: %w", err))
	}
	id := ValueID(raw)
	l.nextValue++
	ins.Result = id
	l.emit(ins)
	return Operand{Kind: OperandValue, Type: ty, Value: id}
}

func (l *funcLowerer) terminate(t Terminator) {
	b := l.curBlock()
	if b == nil || b.Terminated() {
		return
	}
	b.Term = t
	l.cur = NoBlockID
}

func (l *funcLowerer) paramOperand(idx int) (Operand, error) {
	if idx < 0 || idx >= len(l.f.Params) {
		return Operand{}, fmt.Errorf("ir: %s: parameter index %d out of range", l.f.Name, idx)
	}
	return Operand{Kind: OperandValue, Type: l.f.Params[idx].Type, Value: ValueID(idx)}, nil
}

func (l *funcLowerer) unitConst() Operand {
	return Operand{
		Kind:  OperandConst,
		Type:  l.g.typesIn.Builtins().Unit,
		Const: Const{Kind: ConstUnit},
	}
}

// emitTuple constructs a tuple value from elems; with no elements it
// constructs the unit value.
func (l *funcLowerer) emitTuple(elems []Operand) Operand {
	elemTypes := make([]types.TypeID, len(elems))
	for i := range elems {
		elemTypes[i] = elems[i].Type
	}
	ty := l.g.typesIn.InternTuple(elemTypes)
	return l.emitValue(Instr{Kind: InstrTuple, Tuple: TupleInstr{Elems: elems}}, ty)
}

// lowerBlock lowers body statements until the insertion point becomes
// invalid; statements after an explicit terminator are dead code and
// skipped.
func (l *funcLowerer) lowerBlock(b *ast.Block) error {
	if b == nil {
		return nil
	}
	for i := range b.Stmts {
		if !l.hasValidInsertionPoint() {
			break
		}
		if err := l.lowerStmt(&b.Stmts[i]); err != nil {
			return err
		}
	}
	return nil
}

func (l *funcLowerer) lowerStmt(s *ast.Stmt) error {
	switch s.Kind {
	case ast.StmtVar:
		val, err := l.lowerExpr(s.Var.Value)
		if err != nil {
			return err
		}
		l.locals[s.Var.Name] = val
		if l.g.typesIn.HasReferenceSemantics(val.Type) {
			l.cleanups.push(releaseCleanup{value: val})
		}
		return nil
	case ast.StmtExpr:
		_, err := l.lowerExpr(s.Expr.X)
		return err
	case ast.StmtReturn:
		val := l.unitConst()
		if s.Return.HasValue {
			v, err := l.lowerExpr(s.Return.Value)
			if err != nil {
				return err
			}
			val = v
		}
		l.cleanups.emitAll(l)
		l.terminate(Terminator{Kind: TermReturn, Return: ReturnTerm{Value: val}})
		return nil
	default:
		panic(fmt.Errorf("ir: unknown statement kind %d", s.Kind))
	}
}

func (l *funcLowerer) lowerExpr(e *ast.Expr) (Operand, error) {
	if e == nil {
		return l.unitConst(), nil
	}
	switch e.Kind {
	case ast.ExprLit:
		return l.lowerLit(e)
	case ast.ExprParam:
		return l.paramOperand(e.Param.Index)
	case ast.ExprLocal:
		val, ok := l.locals[e.Local.Name]
		if !ok {
			return Operand{}, fmt.Errorf("ir: %s: unresolved local %q", l.f.Name, e.Local.Name)
		}
		return val, nil
	case ast.ExprCall:
		args := make([]Operand, 0, len(e.Call.Args))
		for _, a := range e.Call.Args {
			v, err := l.lowerExpr(a)
			if err != nil {
				return Operand{}, err
			}
			args = append(args, v)
		}
		callee := Callee{Key: l.g.calleeKey(e.Call.Callee), Name: e.Call.Name}
		return l.emitValue(Instr{Kind: InstrCall, Call: CallInstr{Callee: callee, Args: args}}, e.Type), nil
	case ast.ExprTuple:
		elems := make([]Operand, 0, len(e.Tuple.Elems))
		for _, el := range e.Tuple.Elems {
			v, err := l.lowerExpr(el)
			if err != nil {
				return Operand{}, err
			}
			elems = append(elems, v)
		}
		return l.emitTuple(elems), nil
	default:
		panic(fmt.Errorf("ir: unknown expression kind %d", e.Kind))
	}
}

func (l *funcLowerer) lowerLit(e *ast.Expr) (Operand, error) {
	c := Const{}
	switch e.Lit.Kind {
	case ast.LitUnit:
		c.Kind = ConstUnit
	case ast.LitBool:
		c.Kind = ConstBool
		c.BoolValue = e.Lit.BoolValue
	case ast.LitInt:
		c.Kind = ConstInt
		c.IntValue = e.Lit.IntValue
	case ast.LitFloat:
		c.Kind = ConstFloat
		c.FloatValue = e.Lit.FloatValue
	case ast.LitString:
		c.Kind = ConstString
		c.StringValue = e.Lit.StringValue
	default:
		return Operand{}, fmt.Errorf("ir: %s: unknown literal kind %d", l.f.Name, e.Lit.Kind)
	}
	return Operand{Kind: OperandConst, Type: e.Type, Const: c}, nil
}
