package format

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goslang/gos/compiler/ast"
)

func TestFormat(t *testing.T) {
	p := &ast.Program{Body: []ast.Expr{
		ast.FuncDecl{Name: "puts", Extern: true, Params: []ast.Param{{Name: "s", Type: ast.Str}}, Ret: ast.Void},
		ast.FuncDecl{
			Name:   "main",
			Pub:    true,
			Params: []ast.Param{{Name: "n"}},
			Body: ast.Block{Body: []ast.Expr{
				ast.VarDecl{Name: "x", Value: ast.Array{Elems: []ast.Expr{ast.Num(1), ast.Num(2)}}},
				ast.FuncCall{Name: "puts", Args: []ast.Expr{ast.String("hi")}},
				ast.If{
					Cond: ast.BinOp{Op: "<", Left: ast.Var{Name: "n"}, Right: ast.Num(0)},
					Then: ast.Return{Value: ast.UnaryOp{Op: "-", Arg: ast.Var{Name: "n"}}},
				},
				ast.Index{Target: ast.Var{Name: "x"}, Index: ast.Num(1)},
			}},
		},
	}}

	exp := `extern fun puts(s str) void

pub fun main(n number) number {
	let x number = [1, 2]
	puts("hi")
	if (n < 0) then return -n
	x[1]
}
`

	b, err := Format(context.Background(), nil, p)
	require.NoError(t, err)
	assert.Equal(t, exp, string(b))
}

func TestFormatUnsupported(t *testing.T) {
	_, err := Format(context.Background(), nil, 3)
	assert.Error(t, err)

	_, err = Format(context.Background(), nil, ast.Block{Body: []ast.Expr{nil}})
	assert.Error(t, err)
}
