package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tlog.app/go/errors"
)

func testFunc() *Func {
	return &Func{
		Name:   "add",
		Pub:    true,
		Params: []Param{{Operand: Var{Name: "a"}, Type: Number}, {Operand: Var{Name: "b"}, Type: Number}},
		Ret:    Number,
		Code: []Instruction{
			{Op: Load, Dst: Temp{ID: 0, Type: Number}, Src1: Var{Name: "a"}},
			{Op: Load, Dst: Temp{ID: 1, Type: Number}, Src1: Var{Name: "b"}},
			{Op: Add, Dst: Temp{ID: 2, Type: Number}, Src1: Temp{ID: 0, Type: Number}, Src2: Temp{ID: 1, Type: Number}},
			{Op: Return, Src1: Temp{ID: 2, Type: Number}},
		},
	}
}

func TestFormat(t *testing.T) {
	p := &Program{
		Funcs:  []*Func{testFunc(), {Name: "puts", External: true, Params: []Param{{Operand: Var{Name: "s"}, Type: String}}}},
		Consts: []Const{Int(1), Text("hi"), Boolean(true)},
	}

	exp := `consts: 1, "hi", true

pub fun add($a number, $b number) number
	load t0, $a
	load t1, $b
	add t2, t0, t1
	return t2

extern fun puts($s str) number
`

	assert.Equal(t, exp, string(Format(nil, p)))
}

func TestInstructionString(t *testing.T) {
	assert.Equal(t, "L3:", Instruction{Op: LabelOp, Dst: Label{Name: "L3"}}.String())
	assert.Equal(t, "jumpiffalse L3, t1", Instruction{Op: JumpIfFalse, Dst: Label{Name: "L3"}, Src1: Temp{ID: 1, Type: Bool}}.String())
	assert.Equal(t, "call t4, &loop, 1", Instruction{Op: Call, Dst: Temp{ID: 4}, Src1: Function{Name: "loop"}, Src2: Int(1)}.String())
	assert.Equal(t, "arg void, 0", Instruction{Op: Arg, Src1: VoidValue(), Src2: Int(0)}.String())
}

func TestValidate(t *testing.T) {
	p := &Program{Funcs: []*Func{testFunc()}}
	require.NoError(t, p.Validate())

	p = &Program{Funcs: []*Func{testFunc(), testFunc()}}
	assert.True(t, errors.Is(p.Validate(), ErrDuplicateDeclaration))

	f := testFunc()
	f.Code = append(f.Code[:3:3], Instruction{Op: Jump, Dst: Label{Name: "nowhere"}})
	assert.True(t, errors.Is(f.Validate(), ErrUndefinedVariable))

	f = testFunc()
	f.Code[2].Dst = Int(3)
	assert.True(t, errors.Is(f.Validate(), ErrInvalidOperandKind))

	f = testFunc()
	f.Code[1].Dst = Temp{ID: 0, Type: Bool}
	assert.True(t, errors.Is(f.Validate(), ErrInvalidOperandKind))

	f = testFunc()
	f.Code = append(f.Code, Instruction{Op: LabelOp, Dst: Label{Name: "L0"}}, Instruction{Op: LabelOp, Dst: Label{Name: "L0"}})
	assert.True(t, errors.Is(f.Validate(), ErrDuplicateDeclaration))

	f = &Func{Name: "ext", External: true, Code: []Instruction{{Op: Nop}}}
	assert.True(t, errors.Is(f.Validate(), ErrInvalidOperandKind))
}

func TestConstType(t *testing.T) {
	assert.Equal(t, Number, Int(5).Type())
	assert.Equal(t, Bool, Boolean(false).Type())
	assert.Equal(t, String, Text("").Type())
	assert.Equal(t, Void, VoidValue().Type())
	assert.Equal(t, "array", Array.String())
}
