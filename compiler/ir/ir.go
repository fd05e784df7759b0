package ir

type (
	Type int

	ConstKind int

	// Const is a literal payload. It is comparable.
	Const struct {
		Kind ConstKind
		Int  int64
		Bool bool
		Str  string
	}

	// Operand is one of Temp, Var, Const, Label or Function.
	Operand interface {
		operand()
	}

	Temp struct {
		ID   int
		Type Type
	}

	Var struct {
		Name string
	}

	Label struct {
		Name string
	}

	Function struct {
		Name string
	}

	Instruction struct {
		Op Op

		Dst  Operand
		Src1 Operand
		Src2 Operand
	}

	Param struct {
		Operand Operand
		Type    Type
	}

	Func struct {
		Name   string
		Params []Param

		Code []Instruction

		Ret      Type
		Pub      bool
		External bool
	}

	Program struct {
		Funcs  []*Func
		Consts []Const
	}
)

const (
	Number Type = iota
	String
	Bool
	Void
	Array
)

const (
	I64 ConstKind = iota
	BoolConst
	Str
	VoidConst
)

func (Temp) operand() {}
func (Var) operand() {}
func (Const) operand() {}
func (Label) operand() {}
func (Function) operand() {}

func Int(v int64) Const { return Const{Kind: I64, Int: v} }
func Boolean(v bool) Const { return Const{Kind: BoolConst, Bool: v} }
func Text(v string) Const { return Const{Kind: Str, Str: v} }
func VoidValue() Const { return Const{Kind: VoidConst} }

// Type returns the static type of the literal.
func (c Const) Type() Type {
	switch c.Kind {
	case I64:
		return Number
	case BoolConst:
		return Bool
	case Str:
		return String
	default:
		return Void
	}
}

func (p *Program) Func(name string) *Func {
	for _, f := range p.Funcs {
		if f.Name == name {
			return f
		}
	}

	return nil
}

var typeNames = [...]string{
	Number: "number",
	String: "str",
	Bool:   "bool",
	Void:   "void",
	Array:  "array",
}

func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}

	return "type?"
}
