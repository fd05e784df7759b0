package back

import (
	"context"
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/goslang/gos/compiler/ir"
)

type (
	// Compiler emits NASM x86-64 assembly for the System V calling convention.
	Compiler struct {
		// Comments echoes every IR instruction as an assembly comment.
		Comments bool
	}

	funContext struct {
		*ir.Func

		tr tlog.Span

		strs  *strTable
		frame *frame
		cache regCache

		labels map[string]int // label -> instruction index
		args   []ir.Operand   // pending Arg values
	}
)

const (
	entryLabel = ".entry"
	exitLabel  = ".exit"
)

func New() *Compiler {
	return &Compiler{}
}

// CompileProgram appends assembly text for p to b. p is not modified.
func (c *Compiler) CompileProgram(ctx context.Context, b []byte, p *ir.Program) (_ []byte, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "back: compile program", "funcs", len(p.Funcs))
	defer tr.Finish("err", &err)

	strs := newStrTable(p)

	b = strs.appendData(b)
	b = append(b, "\nsection .text\n"...)

	for _, f := range p.Funcs {
		b = append(b, '\n')

		if f.External {
			if len(f.Code) != 0 {
				return nil, errors.Wrap(ir.ErrInvalidOperandKind, "func %v: external with code", f.Name)
			}

			b = fmt.Appendf(b, "extern %s\n", symbol(f.Name))

			continue
		}

		b, err = c.compileFunc(ctx, b, strs, f)
		if err != nil {
			return nil, errors.Wrap(err, "func %v", f.Name)
		}
	}

	return b, nil
}

func (c *Compiler) compileFunc(ctx context.Context, b []byte, strs *strTable, fn *ir.Func) (_ []byte, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile func", "name", fn.Name, "params", len(fn.Params), "insns", len(fn.Code))
	defer tr.Finish("err", &err)

	f := &funContext{
		Func:   fn,
		tr:     tr,
		strs:   strs,
		frame:  newFrame(fn),
		labels: map[string]int{},
	}

	for i, x := range f.Code {
		if x.Op != ir.LabelOp {
			continue
		}

		l, ok := x.Dst.(ir.Label)
		if !ok {
			return nil, errors.Wrap(ir.ErrInvalidOperandKind, "insn %d: label %T", i, x.Dst)
		}

		f.labels[l.Name] = i
	}

	size := f.frame.size()

	if tr.If("dump_frame") {
		tr.Printw("frame", "slots", f.frame.slots, "size", size, "temps", f.frame.temps, "vars", f.frame.varOff)
	}

	if f.Pub {
		b = fmt.Appendf(b, "global %s\n", symbol(f.Name))
	}

	b = fmt.Appendf(b, "%s:\n", symbol(f.Name))
	b = line(b, "push rbp")
	b = line(b, "mov rbp, rsp")

	if size != 0 {
		b = line(b, "sub rsp, %d", size)
	}

	b = fmt.Appendf(b, "%s:\n", entryLabel)

	if f.frame.arrays {
		b = line(b, "lea rsp, [rbp - %d]", size)
	}

	b, err = f.bindParams(b)
	if err != nil {
		return nil, errors.Wrap(err, "params")
	}

	for i := 0; i < len(f.Code); i++ {
		x := f.Code[i]

		if c.Comments {
			b = fmt.Appendf(b, "\t; %v\n", x)
		}

		var skip int

		b, skip, err = f.compileInsn(b, i, x)
		if err != nil {
			return nil, errors.Wrap(err, "insn %d (%v)", i, x)
		}

		i += skip
	}

	b = fmt.Appendf(b, "%s:\n", exitLabel)
	b = line(b, "mov rsp, rbp")
	b = line(b, "pop rbp")
	b = line(b, "ret")

	return b, nil
}

// bindParams copies incoming arguments into their slots.
// The first six come in registers, the rest are on the caller's stack.
func (f *funContext) bindParams(b []byte) (_ []byte, err error) {
	f.cache.reset()

	for i, p := range f.Params {
		off, ok := f.frame.offset(p.Operand)
		if !ok {
			return nil, errors.Wrap(ir.ErrInvalidOperandKind, "param %d: %T", i, p.Operand)
		}

		if i < len(argRegs) {
			r := argRegs[i]

			b = line(b, "mov %v, %v", slot(off), r)
			f.cache[r] = p.Operand

			continue
		}

		b = line(b, "mov %v, %v", RAX, slot(stackArg(i)))
		b = line(b, "mov %v, %v", slot(off), RAX)
		f.cache[RAX] = p.Operand
	}

	return b, nil
}

// stackArg is the rbp offset of the i-th incoming argument, i >= 6.
func stackArg(i int) int {
	return 16 + 8*(i-len(argRegs))
}

// symbol is the NASM spelling of a function name.
// The $ prefix keeps names like add or loop from parsing as mnemonics.
func symbol(name string) string {
	return "$" + name
}
