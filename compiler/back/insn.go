package back

import (
	"tlog.app/go/errors"

	"github.com/goslang/gos/compiler/ir"
)

var binInsn = map[ir.Op]string{
	ir.Add: "add",
	ir.Sub: "sub",
	ir.Mul: "imul",
	ir.And: "and",
	ir.Or:  "or",
	ir.Xor: "xor",
}

var setcc = map[ir.Op]string{
	ir.Eq: "sete",
	ir.Ne: "setne",
	ir.Gt: "setg",
	ir.Ge: "setge",
	ir.Lt: "setl",
	ir.Le: "setle",
}

// compileInsn emits code for x, the i-th instruction.
// skip is the number of following instructions already handled.
func (f *funContext) compileInsn(b []byte, i int, x ir.Instruction) (_ []byte, skip int, err error) {
	switch {
	case x.Op.IsBinary():
		b, err = f.binary(b, x)
		return b, 0, err
	case x.Op.IsCompare():
		b, err = f.compare(b, x)
		return b, 0, err
	case x.Op.IsUnary():
		b, err = f.unary(b, x)
		return b, 0, err
	}

	switch x.Op {
	case ir.Nop:
	case ir.Move, ir.Load, ir.Store:
		b, err = f.load(b, x.Src1, RAX)
		if err != nil {
			return nil, 0, err
		}

		b, err = f.store(b, x.Dst, RAX)
	case ir.Index:
		b, err = f.index(b, x)
	case ir.IndexSet:
		b, err = f.indexSet(b, x)
	case ir.ArrayNew:
		b, err = f.arrayNew(b, x)
	case ir.Arg:
		pos, ok := x.Src2.(ir.Const)
		if !ok || pos.Kind != ir.I64 || pos.Int != int64(len(f.args)) {
			return nil, 0, errors.Wrap(ir.ErrInvalidOperandKind, "arg position %v, want %d", x.Src2, len(f.args))
		}

		f.args = append(f.args, x.Src1)
	case ir.Call:
		return f.call(b, i, x)
	case ir.LabelOp:
		l, ok := x.Dst.(ir.Label)
		if !ok {
			return nil, 0, errors.Wrap(ir.ErrInvalidOperandKind, "label %T", x.Dst)
		}

		f.cache.reset()

		b = append(b, '.')
		b = append(b, l.Name...)
		b = append(b, ":\n"...)
	case ir.Jump:
		l, ok := x.Dst.(ir.Label)
		if !ok {
			return nil, 0, errors.Wrap(ir.ErrInvalidOperandKind, "jump target %T", x.Dst)
		}

		b = line(b, "jmp .%s", l.Name)
	case ir.JumpIfFalse:
		l, ok := x.Dst.(ir.Label)
		if !ok {
			return nil, 0, errors.Wrap(ir.ErrInvalidOperandKind, "jump target %T", x.Dst)
		}

		b, err = f.load(b, x.Src1, RAX)
		if err != nil {
			return nil, 0, err
		}

		b = line(b, "cmp rax, 0")
		b = line(b, "je .%s", l.Name)
	case ir.Return:
		if x.Src1 != nil {
			b, err = f.load(b, x.Src1, RAX)
			if err != nil {
				return nil, 0, err
			}
		}

		if i+1 < len(f.Code) {
			b = line(b, "jmp %s", exitLabel)
		}
	case ir.Exit:
		var code ir.Operand = ir.Int(0)
		if x.Src1 != nil {
			code = x.Src1
		}

		b, err = f.load(b, code, RDI)
		if err != nil {
			return nil, 0, err
		}

		b = line(b, "mov rax, 60")
		b = line(b, "syscall")

		f.cache.reset()
	default:
		return nil, 0, errors.Wrap(ir.ErrUnsupportedConstruct, "op %v", x.Op)
	}

	if err != nil {
		return nil, 0, err
	}

	return b, 0, nil
}

func (f *funContext) binary(b []byte, x ir.Instruction) (_ []byte, err error) {
	b, err = f.load2(b, x.Src1, x.Src2)
	if err != nil {
		return nil, err
	}

	switch x.Op {
	case ir.Div, ir.Mod:
		b = line(b, "cqo")
		b = line(b, "idiv rcx")

		if x.Op == ir.Mod {
			b = line(b, "mov rax, rdx")
		}
	case ir.Shl:
		b = line(b, "shl rax, cl")
	case ir.Shr:
		b = line(b, "sar rax, cl")
	default:
		b = line(b, "%s rax, rcx", binInsn[x.Op])
	}

	return f.produced(b, x.Dst)
}

func (f *funContext) compare(b []byte, x ir.Instruction) (_ []byte, err error) {
	b, err = f.load2(b, x.Src1, x.Src2)
	if err != nil {
		return nil, err
	}

	b = line(b, "cmp rax, rcx")
	b = line(b, "%s al", setcc[x.Op])
	b = line(b, "movzx rax, al")

	return f.produced(b, x.Dst)
}

func (f *funContext) unary(b []byte, x ir.Instruction) (_ []byte, err error) {
	b, err = f.load(b, x.Src1, RAX)
	if err != nil {
		return nil, err
	}

	switch x.Op {
	case ir.Neg:
		b = line(b, "neg rax")
	case ir.Not:
		b = line(b, "cmp rax, 0")
		b = line(b, "sete al")
		b = line(b, "movzx rax, al")
	case ir.Inc:
		b = line(b, "inc rax")
	case ir.Dec:
		b = line(b, "dec rax")
	case ir.Len:
		b = line(b, "mov rax, [rax]")
	}

	f.cache[RAX] = nil

	return f.store(b, x.Dst, RAX)
}

// load2 puts l into rax and r into rcx.
func (f *funContext) load2(b []byte, l, r ir.Operand) (_ []byte, err error) {
	b, err = f.load(b, l, RAX)
	if err != nil {
		return nil, errors.Wrap(err, "src1")
	}

	b, err = f.load(b, r, RCX)
	if err != nil {
		return nil, errors.Wrap(err, "src2")
	}

	return b, nil
}

// produced stores rax into dst after an instruction that used several
// registers. Only the fresh value is trusted afterwards.
func (f *funContext) produced(b []byte, dst ir.Operand) (_ []byte, err error) {
	f.cache.reset()

	return f.store(b, dst, RAX)
}

// index loads Src1[Src2]. Arrays are an 8-byte length followed by 8-byte elements.
func (f *funContext) index(b []byte, x ir.Instruction) (_ []byte, err error) {
	b, err = f.load2(b, x.Src1, x.Src2)
	if err != nil {
		return nil, err
	}

	b = line(b, "mov rax, [rax + rcx*8 + 8]")
	f.cache[RAX] = nil

	return f.store(b, x.Dst, RAX)
}

func (f *funContext) indexSet(b []byte, x ir.Instruction) (_ []byte, err error) {
	b, err = f.load2(b, x.Dst, x.Src1)
	if err != nil {
		return nil, err
	}

	b, err = f.load(b, x.Src2, RDX)
	if err != nil {
		return nil, errors.Wrap(err, "value")
	}

	b = line(b, "mov [rax + rcx*8 + 8], rdx")

	return b, nil
}

// arrayNew builds an array from the pending args on the stack.
func (f *funContext) arrayNew(b []byte, x ir.Instruction) (_ []byte, err error) {
	n, ok := x.Src1.(ir.Const)
	if !ok || n.Kind != ir.I64 || n.Int != int64(len(f.args)) {
		return nil, errors.Wrap(ir.ErrInvalidOperandKind, "array length %v, %d elements pending", x.Src1, len(f.args))
	}

	elems := f.args
	f.args = nil

	b = line(b, "sub rsp, %d", ArraySize(len(elems)))
	b = line(b, "mov qword [rsp], %d", len(elems))

	for i, e := range elems {
		b, err = f.load(b, e, RAX)
		if err != nil {
			return nil, errors.Wrap(err, "elem %d", i)
		}

		b = line(b, "mov [rsp + %d], rax", 8+8*i)
	}

	b = line(b, "mov rax, rsp")
	f.cache[RAX] = nil

	return f.store(b, x.Dst, RAX)
}

// ArraySize is the stack space taken by an array of n elements.
func ArraySize(n int) int {
	return align16(8 + 8*n)
}
