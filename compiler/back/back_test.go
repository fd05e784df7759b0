package back

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tlog.app/go/errors"

	"github.com/goslang/gos/compiler/ast"
	"github.com/goslang/gos/compiler/front"
	"github.com/goslang/gos/compiler/ir"
)

func compile(t *testing.T, body ...ast.Expr) string {
	t.Helper()

	ctx := context.Background()

	p, err := front.Compile(ctx, &ast.Program{Body: body})
	require.NoError(t, err)
	require.NoError(t, p.Validate())

	obj, err := New().CompileProgram(ctx, nil, p)
	require.NoError(t, err)

	t.Logf("result:\n%s", obj)

	return string(obj)
}

func addFunc() ast.FuncDecl {
	return ast.FuncDecl{
		Name:   "add",
		Params: []ast.Param{{Name: "a"}, {Name: "b"}},
		Body:   ast.BinOp{Op: "+", Left: ast.Var{Name: "a"}, Right: ast.Var{Name: "b"}},
	}
}

func TestSmoke(t *testing.T) {
	obj := compile(t, addFunc())

	exp := `section .data

section .text

$add:
	push rbp
	mov rbp, rsp
	sub rsp, 48
.entry:
	mov qword [rbp - 8], rdi
	mov qword [rbp - 16], rsi
	mov rax, rdi
	mov qword [rbp - 24], rax
	mov rax, rsi
	mov qword [rbp - 32], rax
	mov rax, qword [rbp - 24]
	mov rcx, qword [rbp - 32]
	add rax, rcx
	mov qword [rbp - 40], rax
.exit:
	mov rsp, rbp
	pop rbp
	ret
`

	assert.Equal(t, exp, obj)
}

func TestFrame(t *testing.T) {
	p, err := front.Compile(context.Background(), &ast.Program{Body: []ast.Expr{addFunc()}})
	require.NoError(t, err)

	f := p.Func("add")
	fr := newFrame(f)

	assert.Equal(t, 5, fr.slots)
	assert.Equal(t, 48, FrameSize(f))
	assert.Zero(t, FrameSize(f)%16)

	seen := map[int]bool{}

	for _, o := range []ir.Operand{ir.Var{Name: "a"}, ir.Var{Name: "b"}, ir.Temp{ID: 0}, ir.Temp{ID: 1}, ir.Temp{ID: 2}} {
		off, ok := fr.offset(o)
		require.True(t, ok, "%v", o)
		assert.Less(t, off, 0)
		assert.False(t, seen[off], "slot %d reused", off)

		seen[off] = true
	}

	_, ok := fr.offset(ir.Temp{ID: 10})
	assert.False(t, ok)

	assert.Zero(t, FrameSize(&ir.Func{Name: "ext", External: true}))
}

func TestTailCall(t *testing.T) {
	obj := compile(t, ast.FuncDecl{
		Name:   "loop",
		Params: []ast.Param{{Name: "n"}},
		Body: ast.If{
			Cond: ast.BinOp{Op: "==", Left: ast.Var{Name: "n"}, Right: ast.Num(0)},
			Then: ast.Num(0),
			Else: ast.FuncCall{Name: "loop", Args: []ast.Expr{
				ast.BinOp{Op: "-", Left: ast.Var{Name: "n"}, Right: ast.Num(1)},
			}},
		},
	})

	assert.Contains(t, obj, "\tjmp .entry\n")
	assert.NotContains(t, obj, "call loop")
}

func TestTailCallDirectReturn(t *testing.T) {
	obj := compile(t, ast.FuncDecl{
		Name:   "spin",
		Params: []ast.Param{{Name: "n"}},
		Body:   ast.Return{Value: ast.FuncCall{Name: "spin", Args: []ast.Expr{ast.Var{Name: "n"}}}},
	})

	assert.Contains(t, obj, "\tjmp .entry\n")
	assert.NotContains(t, obj, "call spin")
}

func TestNotTailCall(t *testing.T) {
	obj := compile(t, ast.FuncDecl{
		Name:   "fact",
		Params: []ast.Param{{Name: "n"}},
		Body: ast.If{
			Cond: ast.BinOp{Op: "==", Left: ast.Var{Name: "n"}, Right: ast.Num(0)},
			Then: ast.Num(1),
			Else: ast.BinOp{Op: "*", Left: ast.Var{Name: "n"}, Right: ast.FuncCall{Name: "fact", Args: []ast.Expr{
				ast.BinOp{Op: "-", Left: ast.Var{Name: "n"}, Right: ast.Num(1)},
			}}},
		},
	})

	assert.Contains(t, obj, "\tcall $fact\n")
	assert.Contains(t, obj, "\timul rax, rcx\n")
	assert.NotContains(t, obj, "jmp .entry")
}

func TestArray(t *testing.T) {
	obj := compile(t, ast.FuncDecl{
		Name: "main",
		Body: ast.Index{
			Target: ast.Array{Elems: []ast.Expr{ast.Num(5), ast.Num(6), ast.Num(7)}},
			Index:  ast.Num(1),
		},
	})

	assert.Contains(t, obj, "\tlea rsp, [rbp - ")
	assert.Contains(t, obj, "\tsub rsp, 32\n")
	assert.Contains(t, obj, "\tmov qword [rsp], 3\n")

	for _, off := range []string{"8", "16", "24"} {
		assert.Contains(t, obj, "\tmov [rsp + "+off+"], rax\n")
	}

	assert.Contains(t, obj, "\tmov rax, [rax + rcx*8 + 8]\n")

	assert.Equal(t, 16, ArraySize(0))
	assert.Equal(t, 16, ArraySize(1))
	assert.Equal(t, 32, ArraySize(3))
}

func TestManyArgs(t *testing.T) {
	var params []ast.Param
	var args []ast.Expr

	for _, n := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		params = append(params, ast.Param{Name: n})
		args = append(args, ast.Num(int64(len(args))))
	}

	obj := compile(t,
		ast.FuncDecl{Name: "last", Params: params, Body: ast.Var{Name: "g"}},
		ast.FuncDecl{Name: "main", Body: ast.BinOp{Op: "+", Left: ast.Num(1), Right: ast.FuncCall{Name: "last", Args: args}}},
	)

	assert.Contains(t, obj, "\tmov rax, qword [rbp + 16]\n")
	assert.Contains(t, obj, "\tsub rsp, 8\n")
	assert.Contains(t, obj, "\tpush rax\n")
	assert.Contains(t, obj, "\tcall $last\n\tadd rsp, 16\n")
}

func TestExternAndStrings(t *testing.T) {
	obj := compile(t,
		ast.FuncDecl{Name: "puts", Extern: true, Params: []ast.Param{{Name: "s", Type: ast.Str}}},
		ast.FuncDecl{Name: "main", Pub: true, Body: ast.Block{Body: []ast.Expr{
			ast.FuncCall{Name: "puts", Args: []ast.Expr{ast.String("hi")}},
			ast.FuncCall{Name: "puts", Args: []ast.Expr{ast.String("a`b\n")}},
			ast.FuncCall{Name: "puts", Args: []ast.Expr{ast.String("hi")}},
			ast.Num(0),
		}}},
	)

	assert.True(t, strings.HasPrefix(obj, "section .data\nstr_0: db `hi`, 0\nstr_1: db `a\\`b\\n`, 0\n\nsection .text\n"), "%s", obj)
	assert.Contains(t, obj, "\nextern $puts\n")
	assert.Contains(t, obj, "\nglobal $main\n$main:\n")
	assert.Contains(t, obj, "\tlea rax, [rel str_0]\n")
	assert.Contains(t, obj, "\tlea rax, [rel str_1]\n")
	assert.Contains(t, obj, "\tmov rdi, rax\n\tcall $puts\n")
	assert.NotContains(t, obj, "str_2")
}

func TestExitAndGoto(t *testing.T) {
	obj := compile(t, ast.FuncDecl{
		Name: "main",
		Body: ast.Block{Body: []ast.Expr{
			ast.Goto{Label: "out"},
			ast.Label{Name: "out"},
			ast.Exit{Code: ast.Num(3)},
		}},
	})

	assert.Contains(t, obj, "\tjmp .user.out\n.user.out:\n")
	assert.Contains(t, obj, "\tmov rax, 60\n\tsyscall\n")
}

func TestLoadErrors(t *testing.T) {
	p := &ir.Program{Funcs: []*ir.Func{{
		Name: "bad",
		Code: []ir.Instruction{
			{Op: ir.Return, Src1: ir.Label{Name: "x"}},
		},
	}}}

	_, err := New().CompileProgram(context.Background(), nil, p)
	assert.True(t, errors.Is(err, ir.ErrInvalidOperandKind), "got %v", err)

	p.Funcs[0].Code = []ir.Instruction{
		{Op: ir.Call, Dst: ir.Temp{ID: 0}, Src1: ir.Function{Name: "bad"}, Src2: ir.Int(2)},
	}

	_, err = New().CompileProgram(context.Background(), nil, p)
	assert.True(t, errors.Is(err, ir.ErrInvalidOperandKind), "got %v", err)
}

func TestNasmString(t *testing.T) {
	assert.Equal(t, "`a\\\\b\\t\\x01`", string(appendNasmString(nil, "a\\b\t\x01")))
}

func TestComments(t *testing.T) {
	p, err := front.Compile(context.Background(), &ast.Program{Body: []ast.Expr{addFunc()}})
	require.NoError(t, err)

	c := New()
	c.Comments = true

	obj, err := c.CompileProgram(context.Background(), nil, p)
	require.NoError(t, err)

	assert.Contains(t, string(obj), "\t; add t2, t0, t1\n")
}

func TestMnemonicNames(t *testing.T) {
	loop := ast.FuncDecl{
		Name:   "loop",
		Params: []ast.Param{{Name: "n"}},
		Body: ast.If{
			Cond: ast.BinOp{Op: "==", Left: ast.Var{Name: "n"}, Right: ast.Num(0)},
			Then: ast.Num(0),
			Else: ast.FuncCall{Name: "loop", Args: []ast.Expr{
				ast.BinOp{Op: "-", Left: ast.Var{Name: "n"}, Right: ast.Num(1)},
			}},
		},
	}

	obj := compile(t, addFunc(), loop, ast.FuncDecl{
		Name: "main",
		Pub:  true,
		Body: ast.FuncCall{Name: "add", Args: []ast.Expr{
			ast.FuncCall{Name: "loop", Args: []ast.Expr{ast.Num(100000)}},
			ast.Num(0),
		}},
	})

	assert.Contains(t, obj, "\n$add:\n")
	assert.Contains(t, obj, "\n$loop:\n")
	assert.Contains(t, obj, "\tcall $add\n")
	assert.Contains(t, obj, "\tcall $loop\n")

	for _, l := range strings.Split(obj, "\n") {
		assert.NotContains(t, []string{"add:", "loop:", "\tcall add", "\tcall loop"}, l)
	}
}

func TestTopLevelStrings(t *testing.T) {
	obj := compile(t,
		ast.String("banner"),
		ast.FuncDecl{Name: "main", Body: ast.Block{Body: []ast.Expr{
			ast.String("body"),
			ast.String("banner"),
		}}},
	)

	assert.True(t, strings.HasPrefix(obj, "section .data\nstr_0: db `banner`, 0\nstr_1: db `body`, 0\n\nsection .text\n"), "%s", obj)
	assert.Contains(t, obj, "\tlea rax, [rel str_1]\n\tmov qword [rbp - 8], rax\n")
}
