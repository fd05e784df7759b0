package format

import (
	"context"
	"strconv"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/goslang/gos/compiler/ast"
)

// Format appends gos-like source text for x, which is a *ast.Program or an ast.Expr.
func Format(ctx context.Context, b []byte, x any) ([]byte, error) {
	return format(ctx, b, x, 0)
}

func format(ctx context.Context, b []byte, x any, d int) ([]byte, error) {
	switch x := x.(type) {
	case *ast.Program:
		return formatProgram(ctx, b, x, d)
	case ast.Expr:
		return formatExpr(ctx, b, x, d)
	default:
		return nil, errors.New("unsupported type: %T", x)
	}
}

func formatProgram(ctx context.Context, b []byte, x *ast.Program, d int) (_ []byte, err error) {
	for i, e := range x.Body {
		if i != 0 {
			b = append(b, '\n')
		}

		if f, ok := e.(ast.FuncDecl); ok {
			b, err = formatFunc(ctx, b, f, d)
			if err != nil {
				return nil, errors.Wrap(err, "func %v", f.Name)
			}

			continue
		}

		b, err = formatExpr(ctx, b, e, d)
		if err != nil {
			return nil, errors.Wrap(err, "item %d", i)
		}

		b = append(b, '\n')
	}

	return b, nil
}

func formatFunc(ctx context.Context, b []byte, x ast.FuncDecl, d int) (_ []byte, err error) {
	if x.Extern {
		b = append(b, "extern "...)
	}

	if x.Pub {
		b = append(b, "pub "...)
	}

	b = app(b, 0, "fun %v(", x.Name)

	for i, a := range x.Params {
		if i != 0 {
			b = append(b, ", "...)
		}

		b = app(b, 0, "%v %v", a.Name, a.Type)
	}

	b = app(b, 0, ") %v", x.Ret)

	if x.Extern {
		return append(b, '\n'), nil
	}

	b = append(b, ' ')

	b, err = formatExpr(ctx, b, x.Body, d)
	if err != nil {
		return nil, errors.Wrap(err, "body")
	}

	return append(b, '\n'), nil
}

func formatBlock(ctx context.Context, b []byte, x ast.Block, d int) (_ []byte, err error) {
	b = append(b, "{\n"...)

	for i, s := range x.Body {
		b = app(b, d+1, "")

		b, err = formatExpr(ctx, b, s, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "stmt %d", i)
		}

		b = append(b, '\n')
	}

	return app(b, d, "}"), nil
}

func formatExpr(ctx context.Context, b []byte, x ast.Expr, d int) (_ []byte, err error) {
	switch x := x.(type) {
	case ast.Block:
		return formatBlock(ctx, b, x, d)
	case ast.Literal:
		switch x.Kind {
		case ast.NumberLit:
			b = strconv.AppendInt(b, x.Int, 10)
		case ast.BoolLit:
			b = strconv.AppendBool(b, x.Bool)
		case ast.StrLit:
			b = strconv.AppendQuote(b, x.Str)
		default:
			b = append(b, "void"...)
		}
	case ast.Var:
		b = append(b, x.Name...)
	case ast.Array:
		b = append(b, '[')

		b, err = formatList(ctx, b, x.Elems, d)
		if err != nil {
			return nil, err
		}

		b = append(b, ']')
	case ast.VarDecl:
		b = app(b, 0, "let %v %v = ", x.Name, x.Type)

		b, err = formatExpr(ctx, b, x.Value, d)
		if err != nil {
			return nil, errors.Wrap(err, "let %v", x.Name)
		}
	case ast.VarMod:
		b = app(b, 0, "%v = ", x.Name)

		b, err = formatExpr(ctx, b, x.Value, d)
		if err != nil {
			return nil, errors.Wrap(err, "set %v", x.Name)
		}
	case ast.BinOp:
		b = append(b, '(')

		b, err = formatExpr(ctx, b, x.Left, d)
		if err != nil {
			return nil, errors.Wrap(err, "left")
		}

		b = app(b, 0, " %s ", x.Op)

		b, err = formatExpr(ctx, b, x.Right, d)
		if err != nil {
			return nil, errors.Wrap(err, "right")
		}

		b = append(b, ')')
	case ast.UnaryOp:
		b = append(b, x.Op...)

		b, err = formatExpr(ctx, b, x.Arg, d)
		if err != nil {
			return nil, errors.Wrap(err, "operand")
		}
	case ast.If:
		b = append(b, "if "...)

		b, err = formatExpr(ctx, b, x.Cond, d)
		if err != nil {
			return nil, errors.Wrap(err, "cond")
		}

		b = append(b, " then "...)

		b, err = formatExpr(ctx, b, x.Then, d)
		if err != nil {
			return nil, errors.Wrap(err, "then")
		}

		if x.Else != nil {
			b = append(b, " else "...)

			b, err = formatExpr(ctx, b, x.Else, d)
			if err != nil {
				return nil, errors.Wrap(err, "else")
			}
		}
	case ast.While:
		b = append(b, "while "...)

		b, err = formatExpr(ctx, b, x.Cond, d)
		if err != nil {
			return nil, errors.Wrap(err, "cond")
		}

		b = append(b, ' ')

		b, err = formatExpr(ctx, b, x.Body, d)
		if err != nil {
			return nil, errors.Wrap(err, "body")
		}
	case ast.FuncCall:
		b = app(b, 0, "%s(", x.Name)

		b, err = formatList(ctx, b, x.Args, d)
		if err != nil {
			return nil, errors.Wrap(err, "call %v", x.Name)
		}

		b = append(b, ')')
	case ast.Return:
		b = append(b, "return"...)

		if x.Value != nil {
			b = append(b, ' ')

			b, err = formatExpr(ctx, b, x.Value, d)
			if err != nil {
				return nil, errors.Wrap(err, "return")
			}
		}
	case ast.Index:
		b, err = formatExpr(ctx, b, x.Target, d)
		if err != nil {
			return nil, errors.Wrap(err, "target")
		}

		b = append(b, '[')

		b, err = formatExpr(ctx, b, x.Index, d)
		if err != nil {
			return nil, errors.Wrap(err, "index")
		}

		b = append(b, ']')
	case ast.IndexMod:
		b, err = formatExpr(ctx, b, ast.Index{Target: x.Target, Index: x.Index}, d)
		if err != nil {
			return nil, err
		}

		b = append(b, " = "...)

		b, err = formatExpr(ctx, b, x.Value, d)
		if err != nil {
			return nil, errors.Wrap(err, "value")
		}
	case ast.Out:
		b = append(b, "out "...)

		b, err = formatExpr(ctx, b, x.Value, d)
		if err != nil {
			return nil, errors.Wrap(err, "out")
		}
	case ast.In:
		b = app(b, 0, "in %s", x.Name)
	case ast.Label:
		b = app(b, 0, "%s:", x.Name)
	case ast.Goto:
		b = app(b, 0, "goto %s", x.Label)
	case ast.Exit:
		b = append(b, "exit"...)

		if x.Code != nil {
			b = append(b, ' ')

			b, err = formatExpr(ctx, b, x.Code, d)
			if err != nil {
				return nil, errors.Wrap(err, "exit code")
			}
		}
	case ast.FuncDecl:
		b, err = formatFunc(ctx, b, x, d)
		if err != nil {
			return nil, errors.Wrap(err, "func %v", x.Name)
		}

		b = b[:len(b)-1]
	default:
		return nil, errors.New("unsupported expr: %T", x)
	}

	return b, nil
}

func formatList(ctx context.Context, b []byte, xs []ast.Expr, d int) (_ []byte, err error) {
	for i, x := range xs {
		if i != 0 {
			b = append(b, ", "...)
		}

		b, err = formatExpr(ctx, b, x, d)
		if err != nil {
			return nil, errors.Wrap(err, "item %d", i)
		}
	}

	return b, nil
}

func app(b []byte, d int, f string, args ...any) []byte {
	const tabs = "\t\t\t\t\t\t\t\t\t\t\t\t\t\t\t"

	for d > len(tabs) {
		b = append(b, tabs...)
		d -= len(tabs)
	}

	b = append(b, tabs[:d]...)
	b = hfmt.Appendf(b, f, args...)
	return b
}
