package ir

import "tlog.app/go/errors"

// Validate checks the structural invariants the backend relies on.
func (p *Program) Validate() error {
	names := make(map[string]struct{}, len(p.Funcs))

	for _, f := range p.Funcs {
		if _, ok := names[f.Name]; ok {
			return errors.Wrap(ErrDuplicateDeclaration, "func %v", f.Name)
		}

		names[f.Name] = struct{}{}

		err := f.Validate()
		if err != nil {
			return errors.Wrap(err, "func %v", f.Name)
		}
	}

	return nil
}

func (f *Func) Validate() error {
	if f.External {
		if len(f.Code) != 0 {
			return errors.Wrap(ErrInvalidOperandKind, "external func with %d instructions", len(f.Code))
		}

		return nil
	}

	temps := map[int]Type{}
	labels := map[string]struct{}{}
	var jumps []string

	for _, p := range f.Params {
		if _, ok := p.Operand.(Var); !ok {
			return errors.Wrap(ErrInvalidOperandKind, "param %T", p.Operand)
		}
	}

	for i, x := range f.Code {
		for _, o := range [...]Operand{x.Dst, x.Src1, x.Src2} {
			t, ok := o.(Temp)
			if !ok {
				continue
			}

			if tp, ok := temps[t.ID]; ok && tp != t.Type {
				return errors.Wrap(ErrInvalidOperandKind, "insn %d: temp t%d used as %v and %v", i, t.ID, tp, t.Type)
			}

			temps[t.ID] = t.Type
		}

		err := x.check()
		if err != nil {
			return errors.Wrap(err, "insn %d (%v)", i, x)
		}

		switch x.Op {
		case LabelOp:
			l := x.Dst.(Label)

			if _, ok := labels[l.Name]; ok {
				return errors.Wrap(ErrDuplicateDeclaration, "label %v", l.Name)
			}

			labels[l.Name] = struct{}{}
		case Jump, JumpIfFalse:
			jumps = append(jumps, x.Dst.(Label).Name)
		}
	}

	for _, l := range jumps {
		if _, ok := labels[l]; !ok {
			return errors.Wrap(ErrUndefinedVariable, "label %v", l)
		}
	}

	return nil
}

func (x Instruction) check() error {
	is := func(o Operand, what string, ok bool) error {
		if ok {
			return nil
		}

		return errors.Wrap(ErrInvalidOperandKind, "%v: %T", what, o)
	}

	switch {
	case x.Op.IsBinary(), x.Op.IsCompare():
		if err := is(x.Dst, "dst", storage(x.Dst)); err != nil {
			return err
		}
		if err := is(x.Src1, "src1", value(x.Src1)); err != nil {
			return err
		}

		return is(x.Src2, "src2", value(x.Src2))
	case x.Op.IsUnary():
		if err := is(x.Dst, "dst", storage(x.Dst)); err != nil {
			return err
		}

		return is(x.Src1, "src1", value(x.Src1))
	}

	switch x.Op {
	case Nop:
	case Move, Index:
		if err := is(x.Dst, "dst", storage(x.Dst)); err != nil {
			return err
		}
		if err := is(x.Src1, "src1", value(x.Src1)); err != nil {
			return err
		}
		if x.Op == Index {
			return is(x.Src2, "src2", value(x.Src2))
		}
	case Load:
		_, ok := x.Src1.(Var)
		if err := is(x.Src1, "src1", ok); err != nil {
			return err
		}

		return is(x.Dst, "dst", storage(x.Dst))
	case Store:
		_, ok := x.Dst.(Var)
		if err := is(x.Dst, "dst", ok); err != nil {
			return err
		}

		return is(x.Src1, "src1", value(x.Src1))
	case IndexSet:
		for _, o := range [...]Operand{x.Dst, x.Src1, x.Src2} {
			if err := is(o, "operand", value(o)); err != nil {
				return err
			}
		}
	case ArrayNew:
		if err := is(x.Dst, "dst", storage(x.Dst)); err != nil {
			return err
		}

		return is(x.Src1, "src1", count(x.Src1))
	case Arg:
		if err := is(x.Src1, "src1", value(x.Src1)); err != nil {
			return err
		}

		return is(x.Src2, "src2", count(x.Src2))
	case Call:
		_, ok := x.Src1.(Function)
		if err := is(x.Src1, "callee", ok); err != nil {
			return err
		}
		if err := is(x.Src2, "argc", count(x.Src2)); err != nil {
			return err
		}

		return is(x.Dst, "dst", x.Dst == nil || storage(x.Dst))
	case LabelOp, Jump:
		_, ok := x.Dst.(Label)
		return is(x.Dst, "target", ok)
	case JumpIfFalse:
		_, ok := x.Dst.(Label)
		if err := is(x.Dst, "target", ok); err != nil {
			return err
		}

		return is(x.Src1, "cond", value(x.Src1))
	case Return, Exit:
		return is(x.Src1, "value", x.Src1 == nil || value(x.Src1))
	default:
		return errors.Wrap(ErrUnsupportedConstruct, "op %v", x.Op)
	}

	return nil
}

func storage(o Operand) bool {
	switch o.(type) {
	case Temp, Var:
		return true
	default:
		return false
	}
}

func value(o Operand) bool {
	switch o.(type) {
	case Temp, Var, Const:
		return true
	default:
		return false
	}
}

func count(o Operand) bool {
	c, ok := o.(Const)

	return ok && c.Kind == I64 && c.Int >= 0
}
