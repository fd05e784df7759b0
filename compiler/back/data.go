package back

import (
	"strconv"

	"github.com/goslang/gos/compiler/ir"
)

type (
	// strTable assigns sequential labels to string literals.
	strTable struct {
		index map[string]int
		list  []string
	}
)

func newStrTable(p *ir.Program) *strTable {
	t := &strTable{index: map[string]int{}}

	for _, c := range p.Consts {
		if c.Kind == ir.Str {
			t.add(c.Str)
		}
	}

	for _, f := range p.Funcs {
		for _, x := range f.Code {
			for _, o := range [...]ir.Operand{x.Dst, x.Src1, x.Src2} {
				if c, ok := o.(ir.Const); ok && c.Kind == ir.Str {
					t.add(c.Str)
				}
			}
		}
	}

	return t
}

func (t *strTable) add(s string) int {
	if i, ok := t.index[s]; ok {
		return i
	}

	i := len(t.list)
	t.index[s] = i
	t.list = append(t.list, s)

	return i
}

func (t *strTable) label(s string) string {
	return "str_" + strconv.Itoa(t.add(s))
}

// appendData appends the .data section.
func (t *strTable) appendData(b []byte) []byte {
	b = append(b, "section .data\n"...)

	for i, s := range t.list {
		b = append(b, "str_"...)
		b = strconv.AppendInt(b, int64(i), 10)
		b = append(b, ": db "...)

		if s != "" {
			b = appendNasmString(b, s)
			b = append(b, ", "...)
		}

		b = append(b, "0\n"...)
	}

	return b
}

// appendNasmString appends s as a NASM backquoted string.
func appendNasmString(b []byte, s string) []byte {
	const hex = "0123456789abcdef"

	b = append(b, '`')

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case c == '`' || c == '\\':
			b = append(b, '\\', c)
		case c == '\n':
			b = append(b, `\n`...)
		case c == '\t':
			b = append(b, `\t`...)
		case c >= 0x20 && c < 0x7f:
			b = append(b, c)
		default:
			b = append(b, '\\', 'x', hex[c>>4], hex[c&0xf])
		}
	}

	return append(b, '`')
}
