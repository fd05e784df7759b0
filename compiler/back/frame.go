package back

import (
	"github.com/goslang/gos/compiler/ir"
	"github.com/goslang/gos/compiler/set"
)

type (
	// frame maps every Var and Temp of a function to its own
	// 8-byte slot below rbp. Slots are never shared or reused.
	frame struct {
		temps   set.Bits[int]
		tempOff []int
		varOff  map[string]int

		slots int

		arrays bool
	}
)

func newFrame(f *ir.Func) *frame {
	fr := &frame{
		temps:  set.MakeBits[int](),
		varOff: map[string]int{},
	}

	for _, p := range f.Params {
		fr.add(p.Operand)
	}

	for _, x := range f.Code {
		fr.add(x.Dst)
		fr.add(x.Src1)
		fr.add(x.Src2)

		if x.Op == ir.ArrayNew {
			fr.arrays = true
		}
	}

	return fr
}

// FrameSize returns the number of bytes reserved below rbp for f.
func FrameSize(f *ir.Func) int {
	if f.External {
		return 0
	}

	return newFrame(f).size()
}

func (fr *frame) add(o ir.Operand) {
	switch o := o.(type) {
	case ir.Temp:
		if fr.temps.IsSet(o.ID) {
			return
		}

		fr.temps.Set(o.ID)
		fr.slots++
		fr.tempOff = sliceSet(fr.tempOff, o.ID, -8*fr.slots)
	case ir.Var:
		if _, ok := fr.varOff[o.Name]; ok {
			return
		}

		fr.slots++
		fr.varOff[o.Name] = -8 * fr.slots
	}
}

// offset returns o's slot offset from rbp.
func (fr *frame) offset(o ir.Operand) (int, bool) {
	switch o := o.(type) {
	case ir.Temp:
		if !fr.temps.IsSet(o.ID) {
			return 0, false
		}

		return fr.tempOff[o.ID], true
	case ir.Var:
		off, ok := fr.varOff[o.Name]
		return off, ok
	default:
		return 0, false
	}
}

func (fr *frame) size() int {
	return align16(8 * fr.slots)
}

func align16(n int) int {
	return (n + 15) &^ 15
}
