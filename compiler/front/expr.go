package front

import (
	"context"

	"tlog.app/go/errors"

	"github.com/goslang/gos/compiler/ast"
	"github.com/goslang/gos/compiler/ir"
)

var binOps = map[string]ir.Op{
	"+":  ir.Add,
	"-":  ir.Sub,
	"*":  ir.Mul,
	"/":  ir.Div,
	"%":  ir.Mod,
	"&":  ir.And,
	"|":  ir.Or,
	"^":  ir.Xor,
	"<<": ir.Shl,
	">>": ir.Shr,
	"==": ir.Eq,
	"!=": ir.Ne,
	">":  ir.Gt,
	">=": ir.Ge,
	"<":  ir.Lt,
	"<=": ir.Le,
}

func (c *Front) compileAssign(ctx context.Context, s *Context, x ast.VarMod) (ir.Operand, error) {
	v, err := c.compileExpr(ctx, s, x.Value)
	if err != nil {
		return nil, errors.Wrap(err, "set %v", x.Name)
	}

	sym, err := s.Lookup(x.Name)
	if err != nil {
		return nil, err
	}

	s.Emit(ir.Store, sym.Var, v, nil)

	return s.Temp(ir.Void), nil
}

func (c *Front) compileBinOp(ctx context.Context, s *Context, x ast.BinOp) (ir.Operand, error) {
	if x.Op == "&&" || x.Op == "||" {
		return c.compileLogical(ctx, s, x)
	}

	op, ok := binOps[x.Op]
	if !ok {
		return nil, errors.Wrap(ir.ErrUnsupportedConstruct, "binary operator %q", x.Op)
	}

	l, err := c.compileExpr(ctx, s, x.Left)
	if err != nil {
		return nil, errors.Wrap(err, "left")
	}

	r, err := c.compileExpr(ctx, s, x.Right)
	if err != nil {
		return nil, errors.Wrap(err, "right")
	}

	tp := ir.Number
	if op.IsCompare() {
		tp = ir.Bool
	}

	t := s.Temp(tp)

	s.Emit(op, t, l, r)

	return t, nil
}

// compileLogical evaluates the right side only when the left one
// does not decide the result.
func (c *Front) compileLogical(ctx context.Context, s *Context, x ast.BinOp) (ir.Operand, error) {
	res := s.Temp(ir.Bool)
	end := s.Label()

	l, err := c.compileExpr(ctx, s, x.Left)
	if err != nil {
		return nil, errors.Wrap(err, "left")
	}

	s.Emit(ir.Ne, res, l, ir.Int(0))

	if x.Op == "&&" {
		s.Emit(ir.JumpIfFalse, end, res, nil)
	} else {
		rhs := s.Label()

		s.Emit(ir.JumpIfFalse, rhs, res, nil)
		s.Emit(ir.Jump, end, nil, nil)
		s.Emit(ir.LabelOp, rhs, nil, nil)
	}

	r, err := c.compileExpr(ctx, s, x.Right)
	if err != nil {
		return nil, errors.Wrap(err, "right")
	}

	s.Emit(ir.Ne, res, r, ir.Int(0))
	s.Emit(ir.LabelOp, end, nil, nil)

	return res, nil
}

func (c *Front) compileUnary(ctx context.Context, s *Context, x ast.UnaryOp) (ir.Operand, error) {
	var op ir.Op
	tp := ir.Number

	switch x.Op {
	case "-":
		op = ir.Neg
	case "!":
		op, tp = ir.Not, ir.Bool
	case "#", "len":
		op = ir.Len
	case "++":
		op = ir.Inc
	case "--":
		op = ir.Dec
	default:
		return nil, errors.Wrap(ir.ErrUnsupportedConstruct, "unary operator %q", x.Op)
	}

	a, err := c.compileExpr(ctx, s, x.Arg)
	if err != nil {
		return nil, errors.Wrap(err, "operand")
	}

	t := s.Temp(tp)

	s.Emit(op, t, a, nil)

	if v, ok := x.Arg.(ast.Var); ok && (op == ir.Inc || op == ir.Dec) {
		sym, err := s.Lookup(v.Name)
		if err != nil {
			return nil, err
		}

		s.Emit(ir.Store, sym.Var, t, nil)
	}

	return t, nil
}

func (c *Front) compileIf(ctx context.Context, s *Context, x ast.If) (ir.Operand, error) {
	cond, err := c.compileExpr(ctx, s, x.Cond)
	if err != nil {
		return nil, errors.Wrap(err, "if cond")
	}

	els := s.Label()
	s.Emit(ir.JumpIfFalse, els, cond, nil)

	if x.Else == nil {
		_, err = c.compileExpr(ctx, s, x.Then)
		if err != nil {
			return nil, errors.Wrap(err, "then")
		}

		s.Emit(ir.LabelOp, els, nil, nil)

		return s.Temp(ir.Void), nil
	}

	end := s.Label()

	then, err := c.compileExpr(ctx, s, x.Then)
	if err != nil {
		return nil, errors.Wrap(err, "then")
	}

	res := s.Temp(typeOf(then))

	s.Emit(ir.Move, res, then, nil)
	s.Emit(ir.Jump, end, nil, nil)
	s.Emit(ir.LabelOp, els, nil, nil)

	alt, err := c.compileExpr(ctx, s, x.Else)
	if err != nil {
		return nil, errors.Wrap(err, "else")
	}

	s.Emit(ir.Move, res, alt, nil)
	s.Emit(ir.LabelOp, end, nil, nil)

	return res, nil
}

func (c *Front) compileWhile(ctx context.Context, s *Context, x ast.While) (ir.Operand, error) {
	top := s.Label()
	end := s.Label()

	s.Emit(ir.LabelOp, top, nil, nil)

	cond, err := c.compileExpr(ctx, s, x.Cond)
	if err != nil {
		return nil, errors.Wrap(err, "while cond")
	}

	s.Emit(ir.JumpIfFalse, end, cond, nil)

	_, err = c.compileExpr(ctx, s, x.Body)
	if err != nil {
		return nil, errors.Wrap(err, "while body")
	}

	s.Emit(ir.Jump, top, nil, nil)
	s.Emit(ir.LabelOp, end, nil, nil)

	return s.Temp(ir.Void), nil
}

func (c *Front) compileCall(ctx context.Context, s *Context, x ast.FuncCall) (ir.Operand, error) {
	d, ok := c.sigs[x.Name]
	if !ok {
		return nil, errors.Wrap(ir.ErrUndefinedVariable, "func %v", x.Name)
	}

	if len(x.Args) != len(d.Params) {
		return nil, errors.Wrap(ir.ErrInvalidOperandKind, "call %v: %d args, want %d", x.Name, len(x.Args), len(d.Params))
	}

	args, err := c.compileList(ctx, s, x.Args)
	if err != nil {
		return nil, errors.Wrap(err, "call %v", x.Name)
	}

	for i, a := range args {
		s.Emit(ir.Arg, nil, a, ir.Int(int64(i)))
	}

	t := s.Temp(irType(d.Ret))

	s.Emit(ir.Call, t, ir.Function{Name: x.Name}, ir.Int(int64(len(args))))

	return t, nil
}

func (c *Front) compileReturn(ctx context.Context, s *Context, x ast.Return) (ir.Operand, error) {
	var v ir.Operand

	if x.Value != nil {
		var err error

		v, err = c.compileExpr(ctx, s, x.Value)
		if err != nil {
			return nil, errors.Wrap(err, "return")
		}
	} else {
		v = s.Temp(ir.Void)
	}

	s.Emit(ir.Return, nil, v, nil)

	return s.Temp(ir.Void), nil
}

func (c *Front) compileArray(ctx context.Context, s *Context, x ast.Array) (ir.Operand, error) {
	elems, err := c.compileList(ctx, s, x.Elems)
	if err != nil {
		return nil, errors.Wrap(err, "array")
	}

	for i, e := range elems {
		s.Emit(ir.Arg, nil, e, ir.Int(int64(i)))
	}

	t := s.Temp(ir.Array)

	s.Emit(ir.ArrayNew, t, ir.Int(int64(len(elems))), nil)

	return t, nil
}

func (c *Front) compileIndex(ctx context.Context, s *Context, x ast.Index) (ir.Operand, error) {
	a, err := c.compileExpr(ctx, s, x.Target)
	if err != nil {
		return nil, errors.Wrap(err, "index target")
	}

	i, err := c.compileExpr(ctx, s, x.Index)
	if err != nil {
		return nil, errors.Wrap(err, "index")
	}

	t := s.Temp(ir.Number)

	s.Emit(ir.Index, t, a, i)

	return t, nil
}

func (c *Front) compileIndexSet(ctx context.Context, s *Context, x ast.IndexMod) (ir.Operand, error) {
	a, err := c.compileExpr(ctx, s, x.Target)
	if err != nil {
		return nil, errors.Wrap(err, "index target")
	}

	i, err := c.compileExpr(ctx, s, x.Index)
	if err != nil {
		return nil, errors.Wrap(err, "index")
	}

	v, err := c.compileExpr(ctx, s, x.Value)
	if err != nil {
		return nil, errors.Wrap(err, "value")
	}

	s.Emit(ir.IndexSet, a, i, v)

	return s.Temp(ir.Void), nil
}

func (c *Front) compileList(ctx context.Context, s *Context, xs []ast.Expr) (l []ir.Operand, err error) {
	for i, x := range xs {
		v, err := c.compileExpr(ctx, s, x)
		if err != nil {
			return nil, errors.Wrap(err, "item %d", i)
		}

		l = append(l, v)
	}

	return l, nil
}
