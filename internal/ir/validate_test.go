package ir_test

import (
	"strings"
	"testing"

	"sable/internal/ast"
	"sable/internal/ir"
	"sable/internal/types"
)

func wrap(f *ir.Func) *ir.Module {
	key := ir.Key{Decl: ast.DeclID(1), Role: ir.RolePlain}
	f.Key = key
	return &ir.Module{
		Funcs: map[ir.Key]*ir.Func{key: f},
		Order: []ir.Key{key},
	}
}

func TestValidateUnterminatedBlock(t *testing.T) {
	f := &ir.Func{
		Name:   "test",
		Blocks: []ir.Block{{}},
	}
	err := ir.Validate(wrap(f), nil)
	if err == nil {
		t.Fatal("expected validation error for unterminated block")
	}
	if !strings.Contains(err.Error(), "unterminated") {
		t.Fatalf("expected unterminated error, got: %v", err)
	}
}

func TestValidateNoBlocks(t *testing.T) {
	f := &ir.Func{Name: "empty"}
	err := ir.Validate(wrap(f), nil)
	if err == nil || !strings.Contains(err.Error(), "no blocks") {
		t.Fatalf("expected no-blocks error, got: %v", err)
	}
}

func TestValidateUndefinedValue(t *testing.T) {
	f := &ir.Func{
		Name:   "test",
		Result: types.TypeID(7),
		Blocks: []ir.Block{{
			Term: ir.Terminator{
				Kind: ir.TermReturn,
				Return: ir.ReturnTerm{Value: ir.Operand{
					Kind:  ir.OperandValue,
					Type:  types.TypeID(7),
					Value: ir.ValueID(5),
				}},
			},
		}},
	}
	err := ir.Validate(wrap(f), nil)
	if err == nil || !strings.Contains(err.Error(), "undefined value v5") {
		t.Fatalf("expected undefined value error, got: %v", err)
	}
}

func TestValidateReturnTypeMismatch(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	f := &ir.Func{
		Name:   "test",
		Result: b.Unit,
		Blocks: []ir.Block{{
			Term: ir.Terminator{
				Kind: ir.TermReturn,
				Return: ir.ReturnTerm{Value: ir.Operand{
					Kind:  ir.OperandConst,
					Type:  b.Int,
					Const: ir.Const{Kind: ir.ConstInt, IntValue: 1},
				}},
			},
		}},
	}
	err := ir.Validate(wrap(f), in)
	if err == nil || !strings.Contains(err.Error(), "return of type") {
		t.Fatalf("expected return type error, got: %v", err)
	}
}

func TestValidateReleaseOnNonReference(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	f := &ir.Func{
		Name:   "test",
		Result: b.Unit,
		Blocks: []ir.Block{{
			Instrs: []ir.Instr{{
				Kind:   ir.InstrRelease,
				Result: ir.NoValueID,
				Release: ir.ReleaseInstr{Value: ir.Operand{
					Kind:  ir.OperandConst,
					Type:  b.Int,
					Const: ir.Const{Kind: ir.ConstInt, IntValue: 1},
				}},
			}},
			Term: ir.Terminator{
				Kind: ir.TermReturn,
				Return: ir.ReturnTerm{Value: ir.Operand{
					Kind:  ir.OperandConst,
					Type:  b.Unit,
					Const: ir.Const{Kind: ir.ConstUnit},
				}},
			},
		}},
	}
	err := ir.Validate(wrap(f), in)
	if err == nil || !strings.Contains(err.Error(), "release on non-reference operand") {
		t.Fatalf("expected release error, got: %v", err)
	}
}
