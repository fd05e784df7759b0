package ast

type (
	// Expr is one of the node types below.
	Expr interface {
		expr()
	}

	Program struct {
		Body []Expr
	}

	VarType int
	LitKind int

	Block struct {
		Body []Expr
	}

	Literal struct {
		Kind LitKind

		Int  int64
		Bool bool
		Str  string
	}

	Array struct {
		Elems []Expr
	}

	Var struct {
		Name string
	}

	VarDecl struct {
		Name  string
		Type  VarType
		Value Expr
	}

	VarMod struct {
		Name  string
		Value Expr
	}

	BinOp struct {
		Op    string
		Left  Expr
		Right Expr
	}

	UnaryOp struct {
		Op  string
		Arg Expr
	}

	If struct {
		Cond Expr
		Then Expr
		Else Expr
	}

	While struct {
		Cond Expr
		Body Expr
	}

	Param struct {
		Name string
		Type VarType
	}

	FuncDecl struct {
		Name   string
		Params []Param
		Ret    VarType
		Body   Expr

		Pub    bool
		Extern bool
	}

	FuncCall struct {
		Name string
		Args []Expr
	}

	Return struct {
		Value Expr
	}

	Index struct {
		Target Expr
		Index  Expr
	}

	IndexMod struct {
		Target Expr
		Index  Expr
		Value  Expr
	}

	Out struct {
		Value Expr
	}

	In struct {
		Name string
	}

	Label struct {
		Name string
	}

	Goto struct {
		Label string
	}

	Exit struct {
		Code Expr
	}
)

const (
	Number VarType = iota
	Bool
	Str
	Void
	ArrayType
)

const (
	NumberLit LitKind = iota
	BoolLit
	StrLit
	VoidLit
)

func (Block) expr() {}
func (Literal) expr() {}
func (Array) expr() {}
func (Var) expr() {}
func (VarDecl) expr() {}
func (VarMod) expr() {}
func (BinOp) expr() {}
func (UnaryOp) expr() {}
func (If) expr() {}
func (While) expr() {}
func (FuncDecl) expr() {}
func (FuncCall) expr() {}
func (Return) expr() {}
func (Index) expr() {}
func (IndexMod) expr() {}
func (Out) expr() {}
func (In) expr() {}
func (Label) expr() {}
func (Goto) expr() {}
func (Exit) expr() {}

func Num(v int64) Literal { return Literal{Kind: NumberLit, Int: v} }
func Boolean(v bool) Literal { return Literal{Kind: BoolLit, Bool: v} }
func String(v string) Literal { return Literal{Kind: StrLit, Str: v} }

var VoidValue = Literal{Kind: VoidLit}

var typeNames = map[string]VarType{
	"number": Number,
	"bool":   Bool,
	"str":    Str,
	"void":   Void,
	"array":  ArrayType,
}

// ParseType returns the type named s.
func ParseType(s string) (VarType, bool) {
	t, ok := typeNames[s]
	return t, ok
}

func (t VarType) String() string {
	for n, x := range typeNames {
		if x == t {
			return n
		}
	}

	return "type?"
}
