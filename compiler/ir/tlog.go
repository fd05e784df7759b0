package ir

import "tlog.app/go/tlog/tlwire"

func (t Temp) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 2)
	b = e.AppendKeyInt64(b, "temp", int64(t.ID))
	b = e.AppendKeyString(b, "type", t.Type.String())

	return b
}

func (v Var) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	return e.AppendString(b, "$"+v.Name)
}

func (c Const) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	return e.AppendString(b, c.String())
}

func (x Instruction) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	return e.AppendString(b, x.String())
}
