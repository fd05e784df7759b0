package back

import (
	"tlog.app/go/errors"

	"github.com/goslang/gos/compiler/ir"
)

func (f *funContext) call(b []byte, i int, x ir.Instruction) (_ []byte, skip int, err error) {
	fn, ok := x.Src1.(ir.Function)
	if !ok {
		return nil, 0, errors.Wrap(ir.ErrInvalidOperandKind, "callee %T", x.Src1)
	}

	argc, ok := x.Src2.(ir.Const)
	if !ok || argc.Kind != ir.I64 || argc.Int != int64(len(f.args)) {
		return nil, 0, errors.Wrap(ir.ErrInvalidOperandKind, "call %v: argc %v, %d args pending", fn.Name, x.Src2, len(f.args))
	}

	args := f.args
	f.args = nil

	if fn.Name == f.Name && f.tailCall(i, x.Dst) {
		f.tr.V("tailcall").Printw("self tail call", "func", f.Name, "insn", i)

		b, err = f.tailJump(b, args)
		if err != nil {
			return nil, 0, err
		}

		if i+1 < len(f.Code) {
			if n := f.Code[i+1]; n.Op == ir.Return && n.Src1 == x.Dst {
				skip = 1
			}
		}

		return b, skip, nil
	}

	stack := 0
	if len(args) > len(argRegs) {
		stack = len(args) - len(argRegs)
	}

	pad := 8 * (stack % 2)

	if pad != 0 {
		b = line(b, "sub rsp, %d", pad)
	}

	for j := len(args) - 1; j >= len(argRegs); j-- {
		b, err = f.load(b, args[j], RAX)
		if err != nil {
			return nil, 0, errors.Wrap(err, "arg %d", j)
		}

		b = line(b, "push rax")
	}

	for j := 0; j < len(args) && j < len(argRegs); j++ {
		b, err = f.load(b, args[j], argRegs[j])
		if err != nil {
			return nil, 0, errors.Wrap(err, "arg %d", j)
		}
	}

	b = line(b, "call %s", symbol(fn.Name))

	if n := 8*stack + pad; n != 0 {
		b = line(b, "add rsp, %d", n)
	}

	f.cache.reset()

	if x.Dst == nil {
		return b, 0, nil
	}

	b, err = f.store(b, x.Dst, RAX)
	if err != nil {
		return nil, 0, err
	}

	return b, 0, nil
}

// tailCall reports whether the result of the call at i flows unchanged
// into a Return. Moves, labels and unconditional jumps may come between.
func (f *funContext) tailCall(i int, res ir.Operand) bool {
	for steps, j := 0, i+1; steps <= len(f.Code) && j < len(f.Code); steps++ {
		x := f.Code[j]

		switch x.Op {
		case ir.Nop, ir.LabelOp:
			j++
		case ir.Move, ir.Load, ir.Store:
			if res == nil || x.Src1 != res {
				return false
			}

			res = x.Dst
			j++
		case ir.Jump:
			l, ok := x.Dst.(ir.Label)
			if !ok {
				return false
			}

			j, ok = f.labels[l.Name]
			if !ok {
				return false
			}
		case ir.Return:
			return x.Src1 == nil || x.Src1 == res
		default:
			return false
		}
	}

	return false
}

// tailJump rebinds the incoming arguments and restarts the function body.
// Stack arguments overwrite the caller's argument area.
// Parameters live in local slots by then.
func (f *funContext) tailJump(b []byte, args []ir.Operand) (_ []byte, err error) {
	if len(args) != len(f.Params) {
		return nil, errors.Wrap(ir.ErrInvalidOperandKind, "self call with %d args, want %d", len(args), len(f.Params))
	}

	for j := len(argRegs); j < len(args); j++ {
		b, err = f.load(b, args[j], RAX)
		if err != nil {
			return nil, errors.Wrap(err, "arg %d", j)
		}

		b = line(b, "mov %v, %v", slot(stackArg(j)), RAX)
	}

	for j := 0; j < len(args) && j < len(argRegs); j++ {
		b, err = f.load(b, args[j], argRegs[j])
		if err != nil {
			return nil, errors.Wrap(err, "arg %d", j)
		}
	}

	b = line(b, "jmp %s", entryLabel)

	f.cache.reset()

	return b, nil
}
