package front

import (
	"strconv"

	"github.com/goslang/gos/compiler/ir"
)

type (
	// Context holds the state of one function being lowered.
	Context struct {
		Scopes

		Code []ir.Instruction

		temps  int
		labels int
	}
)

func NewContext() *Context {
	return &Context{}
}

// Temp allocates a fresh temporary. Ids are never reused.
func (c *Context) Temp(tp ir.Type) ir.Temp {
	t := ir.Temp{ID: c.temps, Type: tp}
	c.temps++

	return t
}

func (c *Context) Label() ir.Label {
	l := ir.Label{Name: "L" + strconv.Itoa(c.labels)}
	c.labels++

	return l
}

func (c *Context) Emit(op ir.Op, dst, src1, src2 ir.Operand) {
	c.Code = append(c.Code, ir.Instruction{
		Op:   op,
		Dst:  dst,
		Src1: src1,
		Src2: src2,
	})
}
