package ir

import (
	"strconv"

	"github.com/nikandfor/hacked/hfmt"
)

// Format appends a human readable listing of the program to b.
func Format(b []byte, p *Program) []byte {
	if len(p.Consts) != 0 {
		b = append(b, "consts:"...)

		for i, c := range p.Consts {
			if i != 0 {
				b = append(b, ',')
			}

			b = append(b, ' ')
			b = c.append(b)
		}

		b = append(b, '\n')
	}

	for _, f := range p.Funcs {
		b = append(b, '\n')
		b = FormatFunc(b, f)
	}

	return b
}

func FormatFunc(b []byte, f *Func) []byte {
	if f.External {
		b = append(b, "extern "...)
	}
	if f.Pub {
		b = append(b, "pub "...)
	}

	b = hfmt.Appendf(b, "fun %s(", f.Name)

	for i, p := range f.Params {
		if i != 0 {
			b = append(b, ", "...)
		}

		b = AppendOperand(b, p.Operand)
		b = hfmt.Appendf(b, " %v", p.Type)
	}

	b = hfmt.Appendf(b, ") %v\n", f.Ret)

	for _, x := range f.Code {
		if x.Op != LabelOp {
			b = append(b, '\t')
		}

		b = x.append(b)
		b = append(b, '\n')
	}

	return b
}

func (x Instruction) String() string {
	return string(x.append(nil))
}

func (x Instruction) append(b []byte) []byte {
	if x.Op == LabelOp {
		b = AppendOperand(b, x.Dst)
		return append(b, ':')
	}

	b = hfmt.Appendf(b, "%v", x.Op)

	sep := " "

	for _, o := range [...]Operand{x.Dst, x.Src1, x.Src2} {
		if o == nil {
			continue
		}

		b = append(b, sep...)
		b = AppendOperand(b, o)

		sep = ", "
	}

	return b
}

// AppendOperand appends the listing form of o.
func AppendOperand(b []byte, o Operand) []byte {
	switch o := o.(type) {
	case nil:
		return append(b, "_"...)
	case Temp:
		return hfmt.Appendf(b, "t%d", o.ID)
	case Var:
		return hfmt.Appendf(b, "$%s", o.Name)
	case Const:
		return o.append(b)
	case Label:
		return append(b, o.Name...)
	case Function:
		return hfmt.Appendf(b, "&%s", o.Name)
	default:
		return hfmt.Appendf(b, "%v", o)
	}
}

func (c Const) append(b []byte) []byte {
	switch c.Kind {
	case I64:
		return strconv.AppendInt(b, c.Int, 10)
	case BoolConst:
		return strconv.AppendBool(b, c.Bool)
	case Str:
		return strconv.AppendQuote(b, c.Str)
	default:
		return append(b, "void"...)
	}
}

func (c Const) String() string { return string(c.append(nil)) }
