package back

import (
	"fmt"

	"tlog.app/go/errors"

	"github.com/goslang/gos/compiler/ir"
)

type (
	Reg int

	// regCache is what we believe each register holds.
	// nil means unknown. Any doubt must clear the entry.
	regCache [numRegs]ir.Operand
)

const (
	RAX Reg = iota
	RCX
	RDX
	RSI
	RDI
	R8
	R9
	R10
	R11

	numRegs
)

var regNames = [numRegs]string{
	RAX: "rax",
	RCX: "rcx",
	RDX: "rdx",
	RSI: "rsi",
	RDI: "rdi",
	R8:  "r8",
	R9:  "r9",
	R10: "r10",
	R11: "r11",
}

// argRegs are the System V integer argument registers.
var argRegs = [...]Reg{RDI, RSI, RDX, RCX, R8, R9}

func (r Reg) String() string { return regNames[r] }

func (c *regCache) reset() {
	*c = regCache{}
}

// find returns a register holding o.
func (c *regCache) find(o ir.Operand) (Reg, bool) {
	for r, x := range c {
		if x != nil && x == o {
			return Reg(r), true
		}
	}

	return 0, false
}

// written records that r now holds the new value of o.
// Registers holding the old value of o are forgotten.
func (c *regCache) written(o ir.Operand, r Reg) {
	for i, x := range c {
		if x == o {
			c[i] = nil
		}
	}

	c[r] = o
}

// load materializes o in r.
func (f *funContext) load(b []byte, o ir.Operand, r Reg) (_ []byte, err error) {
	if f.cache[r] != nil && f.cache[r] == o {
		f.tr.V("regcache").Printw("cache hit", "reg", r.String(), "op", o)

		return b, nil
	}

	if from, ok := f.cache.find(o); ok {
		f.tr.V("regcache").Printw("cache move", "reg", r.String(), "from", from.String(), "op", o)

		b = line(b, "mov %v, %v", r, from)
		f.cache[r] = o

		return b, nil
	}

	switch o := o.(type) {
	case ir.Const:
		b, err = f.loadConst(b, o, r)
		if err != nil {
			return nil, err
		}
	case ir.Temp, ir.Var:
		off, ok := f.frame.offset(o)
		if !ok {
			return nil, errors.Wrap(ir.ErrUndefinedVariable, "no slot for %v", string(ir.AppendOperand(nil, o)))
		}

		b = line(b, "mov %v, %v", r, slot(off))
	default:
		return nil, errors.Wrap(ir.ErrInvalidOperandKind, "load %T into register", o)
	}

	f.cache[r] = o

	return b, nil
}

func (f *funContext) loadConst(b []byte, c ir.Const, r Reg) ([]byte, error) {
	switch c.Kind {
	case ir.I64:
		return line(b, "mov %v, %d", r, c.Int), nil
	case ir.BoolConst:
		v := 0
		if c.Bool {
			v = 1
		}

		return line(b, "mov %v, %d", r, v), nil
	case ir.Str:
		return line(b, "lea %v, [rel %s]", r, f.strs.label(c.Str)), nil
	case ir.VoidConst:
		return line(b, "mov %v, 0", r), nil
	default:
		return nil, errors.Wrap(ir.ErrInvalidOperandKind, "const kind %v", c.Kind)
	}
}

// store writes r into the slot of o.
func (f *funContext) store(b []byte, o ir.Operand, r Reg) (_ []byte, err error) {
	off, ok := f.frame.offset(o)
	if !ok {
		return nil, errors.Wrap(ir.ErrInvalidOperandKind, "store into %T", o)
	}

	b = line(b, "mov %v, %v", slot(off), r)
	f.cache.written(o, r)

	return b, nil
}

func slot(off int) string {
	if off < 0 {
		return fmt.Sprintf("qword [rbp - %d]", -off)
	}

	return fmt.Sprintf("qword [rbp + %d]", off)
}

func line(b []byte, format string, args ...any) []byte {
	b = append(b, '\t')
	b = fmt.Appendf(b, format, args...)

	return append(b, '\n')
}
