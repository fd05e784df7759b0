package ir

type Op int

const (
	Nop Op = iota

	// binary: Dst = Src1 op Src2
	Add
	Sub
	Mul
	Div
	Mod
	And
	Or
	Xor
	Shl
	Shr

	// compare: Dst = Src1 cmp Src2 ? 1 : 0
	Eq
	Ne
	Gt
	Ge
	Lt
	Le

	// unary: Dst = op Src1
	Neg
	Not
	Inc
	Dec
	Len

	Move
	Load
	Store

	Index    // Dst = Src1[Src2]
	IndexSet // Dst[Src1] = Src2
	ArrayNew // Dst = [pending args], Src1 = Const(len)

	Arg  // Src1 = value, Src2 = Const(position)
	Call // Dst = Src1(pending args), Src2 = Const(argc)

	LabelOp
	Jump
	JumpIfFalse

	Return
	Exit
)

var opNames = [...]string{
	Nop:         "nop",
	Add:         "add",
	Sub:         "sub",
	Mul:         "mul",
	Div:         "div",
	Mod:         "mod",
	And:         "and",
	Or:          "or",
	Xor:         "xor",
	Shl:         "shl",
	Shr:         "shr",
	Eq:          "eq",
	Ne:          "ne",
	Gt:          "gt",
	Ge:          "ge",
	Lt:          "lt",
	Le:          "le",
	Neg:         "neg",
	Not:         "not",
	Inc:         "inc",
	Dec:         "dec",
	Len:         "len",
	Move:        "move",
	Load:        "load",
	Store:       "store",
	Index:       "index",
	IndexSet:    "setindex",
	ArrayNew:    "array",
	Arg:         "arg",
	Call:        "call",
	LabelOp:     "label",
	Jump:        "jump",
	JumpIfFalse: "jumpiffalse",
	Return:      "return",
	Exit:        "exit",
}

func (op Op) String() string {
	if op >= 0 && int(op) < len(opNames) {
		return opNames[op]
	}

	return "op?"
}

func (op Op) IsBinary() bool { return op >= Add && op <= Shr }

func (op Op) IsCompare() bool { return op >= Eq && op <= Le }

func (op Op) IsUnary() bool { return op >= Neg && op <= Len }
