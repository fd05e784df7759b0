package front

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/goslang/gos/compiler/ast"
	"github.com/goslang/gos/compiler/ir"
)

type (
	// Front lowers a program tree into IR.
	Front struct {
		funcs  []*ir.Func
		consts []ir.Const

		sigs map[string]*ast.FuncDecl
	}
)

func New() *Front {
	return &Front{}
}

// Compile lowers prog with a fresh Front.
func Compile(ctx context.Context, prog *ast.Program) (*ir.Program, error) {
	return New().Compile(ctx, prog)
}

func (c *Front) Compile(ctx context.Context, prog *ast.Program) (_ *ir.Program, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "front: compile program", "items", len(prog.Body))
	defer tr.Finish("err", &err)

	c.funcs = nil
	c.consts = nil
	c.sigs = map[string]*ast.FuncDecl{}

	for i := range prog.Body {
		d, ok := prog.Body[i].(ast.FuncDecl)
		if !ok {
			continue
		}

		if _, ok := c.sigs[d.Name]; ok {
			return nil, errors.Wrap(ir.ErrDuplicateDeclaration, "func %v", d.Name)
		}

		c.sigs[d.Name] = &d
	}

	for i, x := range prog.Body {
		switch x := x.(type) {
		case ast.FuncDecl:
			err = c.funcDecl(ctx, x)
			if err != nil {
				return nil, errors.Wrap(err, "func %v", x.Name)
			}
		case ast.Literal:
			err = c.globalConst(x)
			if err != nil {
				return nil, errors.Wrap(err, "item %d", i)
			}
		default:
			return nil, errors.Wrap(ir.ErrUnsupportedConstruct, "item %d: top-level %T", i, x)
		}
	}

	p := &ir.Program{
		Funcs:  c.funcs,
		Consts: c.consts,
	}

	if tr.If("dump_ir") {
		tr.Printw("ir", "text", ir.Format(nil, p))
	}

	return p, nil
}

// globalConst pools a top-level literal. Nothing refers to it.
func (c *Front) globalConst(x ast.Literal) error {
	switch x.Kind {
	case ast.NumberLit:
		c.consts = append(c.consts, ir.Int(x.Int))
	case ast.BoolLit:
		c.consts = append(c.consts, ir.Boolean(x.Bool))
	case ast.StrLit:
		c.consts = append(c.consts, ir.Text(x.Str))
	default:
		return errors.Wrap(ir.ErrUnsupportedConstruct, "global constant of kind %v", x.Kind)
	}

	return nil
}

func (c *Front) funcDecl(ctx context.Context, d ast.FuncDecl) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile func", "name", d.Name, "params", len(d.Params), "pub", d.Pub, "extern", d.Extern)
	defer tr.Finish("err", &err)

	s := NewContext()
	s.Enter()

	f := &ir.Func{
		Name:     d.Name,
		Ret:      irType(d.Ret),
		Pub:      d.Pub,
		External: d.Extern,
	}

	for _, p := range d.Params {
		tp := irType(p.Type)

		v, err := s.Declare(p.Name, tp)
		if err != nil {
			return errors.Wrap(err, "param")
		}

		f.Params = append(f.Params, ir.Param{Operand: v, Type: tp})
	}

	if !d.Extern {
		if d.Body == nil {
			return errors.New("no body")
		}

		res, err := c.compileExpr(ctx, s, d.Body)
		if err != nil {
			return errors.Wrap(err, "body")
		}

		s.Emit(ir.Return, nil, res, nil)

		f.Code = s.Code
	}

	err = s.Exit()
	if err != nil {
		return errors.Wrap(err, "params scope")
	}

	if tr.If("dump_func") {
		for i, x := range f.Code {
			tr.Printw("code", "i", i, "insn", x)
		}
	}

	c.funcs = append(c.funcs, f)

	return nil
}

func (c *Front) compileExpr(ctx context.Context, s *Context, x ast.Expr) (_ ir.Operand, err error) {
	switch x := x.(type) {
	case ast.Literal:
		var k ir.Const

		switch x.Kind {
		case ast.NumberLit:
			k = ir.Int(x.Int)
		case ast.BoolLit:
			k = ir.Boolean(x.Bool)
		case ast.StrLit:
			k = ir.Text(x.Str)
		case ast.VoidLit:
			return s.Temp(ir.Void), nil
		default:
			return nil, errors.Wrap(ir.ErrUnsupportedConstruct, "literal kind %v", x.Kind)
		}

		t := s.Temp(k.Type())
		c.consts = append(c.consts, k)

		s.Emit(ir.Move, t, k, nil)

		return t, nil
	case ast.VarDecl:
		v, err := c.compileExpr(ctx, s, x.Value)
		if err != nil {
			return nil, errors.Wrap(err, "let %v", x.Name)
		}

		dst, err := s.Declare(x.Name, irType(x.Type))
		if err != nil {
			return nil, err
		}

		s.Emit(ir.Store, dst, v, nil)

		return s.Temp(ir.Void), nil
	case ast.Var:
		sym, err := s.Lookup(x.Name)
		if err != nil {
			return nil, err
		}

		t := s.Temp(sym.Type)

		s.Emit(ir.Load, t, sym.Var, nil)

		return t, nil
	case ast.Block:
		s.Enter()

		var res ir.Operand

		for i, e := range x.Body {
			res, err = c.compileExpr(ctx, s, e)
			if err != nil {
				return nil, errors.Wrap(err, "block expr %d", i)
			}
		}

		if res == nil {
			res = s.Temp(ir.Void)
		}

		err = s.Exit()
		if err != nil {
			return nil, err
		}

		return res, nil
	case ast.Array:
		return c.compileArray(ctx, s, x)
	case ast.VarMod:
		return c.compileAssign(ctx, s, x)
	case ast.BinOp:
		return c.compileBinOp(ctx, s, x)
	case ast.UnaryOp:
		return c.compileUnary(ctx, s, x)
	case ast.If:
		return c.compileIf(ctx, s, x)
	case ast.While:
		return c.compileWhile(ctx, s, x)
	case ast.FuncCall:
		return c.compileCall(ctx, s, x)
	case ast.Return:
		return c.compileReturn(ctx, s, x)
	case ast.Index:
		return c.compileIndex(ctx, s, x)
	case ast.IndexMod:
		return c.compileIndexSet(ctx, s, x)
	case ast.Label:
		s.Emit(ir.LabelOp, userLabel(x.Name), nil, nil)

		return s.Temp(ir.Void), nil
	case ast.Goto:
		s.Emit(ir.Jump, userLabel(x.Label), nil, nil)

		return s.Temp(ir.Void), nil
	case ast.Exit:
		var code ir.Operand = ir.Int(0)

		if x.Code != nil {
			code, err = c.compileExpr(ctx, s, x.Code)
			if err != nil {
				return nil, errors.Wrap(err, "exit code")
			}
		}

		s.Emit(ir.Exit, nil, code, nil)

		return s.Temp(ir.Void), nil
	case nil:
		return nil, errors.Wrap(ir.ErrUnsupportedConstruct, "nil expression")
	default:
		return nil, errors.Wrap(ir.ErrUnsupportedConstruct, "%T", x)
	}
}

func irType(t ast.VarType) ir.Type {
	switch t {
	case ast.Bool:
		return ir.Bool
	case ast.Str:
		return ir.String
	case ast.Void:
		return ir.Void
	case ast.ArrayType:
		return ir.Array
	default:
		return ir.Number
	}
}

func typeOf(o ir.Operand) ir.Type {
	switch o := o.(type) {
	case ir.Temp:
		return o.Type
	case ir.Const:
		return o.Type()
	default:
		return ir.Number
	}
}

func userLabel(name string) ir.Label {
	return ir.Label{Name: "user." + name}
}
