package ast

import (
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
	"tlog.app/go/errors"
)

type (
	fields map[string]*yaml.Node
)

// DecodeFile reads a program tree from a YAML file.
func DecodeFile(name string) (*Program, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}

	defer f.Close()

	return Decode(f)
}

// Decode reads a program tree from YAML.
//
// Scalars are literals, sequences are array literals
// and single-key mappings name the node kind:
//
//	- fun:
//	    name: add
//	    params: [{name: a}, {name: b}]
//	    body: {binop: {op: "+", left: {var: a}, right: {var: b}}}
func Decode(r io.Reader) (*Program, error) {
	var doc yaml.Node

	err := yaml.NewDecoder(r).Decode(&doc)
	if errors.Is(err, io.EOF) {
		return &Program{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "yaml")
	}

	n := &doc
	if n.Kind == yaml.DocumentNode {
		n = n.Content[0]
	}

	if n.Kind != yaml.SequenceNode {
		return nil, errors.New("line %d: program: expected a sequence", n.Line)
	}

	p := &Program{}

	for _, c := range n.Content {
		x, err := decodeExpr(c)
		if err != nil {
			return nil, err
		}

		p.Body = append(p.Body, x)
	}

	return p, nil
}

func decodeExpr(n *yaml.Node) (x Expr, err error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return decodeLiteral(n)
	case yaml.SequenceNode:
		elems, err := decodeList(n)
		if err != nil {
			return nil, err
		}

		return Array{Elems: elems}, nil
	case yaml.MappingNode:
	default:
		return nil, errors.New("line %d: unexpected yaml node", n.Line)
	}

	if len(n.Content) != 2 {
		return nil, errors.New("line %d: node must have exactly one key", n.Line)
	}

	key, v := n.Content[0].Value, n.Content[1]

	x, err = decodeNode(key, v)
	if err != nil {
		return nil, errors.Wrap(err, "line %d: %v", n.Line, key)
	}

	return x, nil
}

func decodeNode(key string, v *yaml.Node) (Expr, error) {
	switch key {
	case "block":
		body, err := decodeList(v)
		if err != nil {
			return nil, err
		}

		return Block{Body: body}, nil
	case "var":
		name, err := scalarName(v)
		return Var{Name: name}, err
	case "in":
		name, err := scalarName(v)
		return In{Name: name}, err
	case "label":
		name, err := scalarName(v)
		return Label{Name: name}, err
	case "goto":
		name, err := scalarName(v)
		return Goto{Label: name}, err
	case "out":
		x, err := decodeExpr(v)
		return Out{Value: x}, err
	case "exit":
		x, err := decodeOpt(v)
		return Exit{Code: x}, err
	case "return":
		x, err := decodeOpt(v)
		return Return{Value: x}, err
	}

	f, err := decodeFields(v)
	if err != nil {
		return nil, err
	}

	switch key {
	case "let":
		var x VarDecl

		x.Name, err = f.name("name")
		if err == nil {
			x.Type, err = f.typ("type")
		}
		if err == nil {
			x.Value, err = f.expr("value")
		}

		return x, err
	case "set":
		var x VarMod

		x.Name, err = f.name("name")
		if err == nil {
			x.Value, err = f.expr("value")
		}

		return x, err
	case "binop":
		var x BinOp

		x.Op, err = f.name("op")
		if err == nil {
			x.Left, err = f.expr("left")
		}
		if err == nil {
			x.Right, err = f.expr("right")
		}

		return x, err
	case "unary":
		var x UnaryOp

		x.Op, err = f.name("op")
		if err == nil {
			x.Arg, err = f.expr("arg")
		}

		return x, err
	case "if":
		var x If

		x.Cond, err = f.expr("cond")
		if err == nil {
			x.Then, err = f.expr("then")
		}
		if err == nil && f["else"] != nil {
			x.Else, err = f.expr("else")
		}

		return x, err
	case "while":
		var x While

		x.Cond, err = f.expr("cond")
		if err == nil {
			x.Body, err = f.expr("body")
		}

		return x, err
	case "fun":
		return decodeFunc(f)
	case "call":
		var x FuncCall

		x.Name, err = f.name("name")
		if err == nil && f["args"] != nil {
			x.Args, err = decodeList(f["args"])
		}

		return x, err
	case "index":
		var x Index

		x.Target, err = f.expr("target")
		if err == nil {
			x.Index, err = f.expr("index")
		}

		return x, err
	case "setindex":
		var x IndexMod

		x.Target, err = f.expr("target")
		if err == nil {
			x.Index, err = f.expr("index")
		}
		if err == nil {
			x.Value, err = f.expr("value")
		}

		return x, err
	default:
		return nil, errors.New("unknown node")
	}
}

func decodeFunc(f fields) (x FuncDecl, err error) {
	x.Name, err = f.name("name")
	if err != nil {
		return
	}

	x.Ret, err = f.typ("ret")
	if err != nil {
		return
	}

	x.Pub, err = f.flag("pub")
	if err != nil {
		return
	}

	x.Extern, err = f.flag("extern")
	if err != nil {
		return
	}

	if ps := f["params"]; ps != nil {
		if ps.Kind != yaml.SequenceNode {
			return x, errors.New("params: expected a sequence")
		}

		for _, pn := range ps.Content {
			pf, err := decodeFields(pn)
			if err != nil {
				return x, errors.Wrap(err, "param")
			}

			var p Param

			p.Name, err = pf.name("name")
			if err == nil {
				p.Type, err = pf.typ("type")
			}
			if err != nil {
				return x, errors.Wrap(err, "param")
			}

			x.Params = append(x.Params, p)
		}
	}

	if x.Extern {
		return x, nil
	}

	x.Body, err = f.expr("body")

	return
}

func decodeLiteral(n *yaml.Node) (Expr, error) {
	switch n.Tag {
	case "!!int":
		v, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			return nil, errors.Wrap(err, "line %d: number", n.Line)
		}

		return Num(v), nil
	case "!!bool":
		v, err := strconv.ParseBool(n.Value)
		if err != nil {
			return nil, errors.Wrap(err, "line %d: bool", n.Line)
		}

		return Boolean(v), nil
	case "!!null":
		return VoidValue, nil
	case "!!str":
		return String(n.Value), nil
	default:
		return nil, errors.New("line %d: unsupported scalar %v", n.Line, n.Tag)
	}
}

func decodeList(n *yaml.Node) (l []Expr, err error) {
	if n.Kind != yaml.SequenceNode {
		return nil, errors.New("line %d: expected a sequence", n.Line)
	}

	for _, c := range n.Content {
		x, err := decodeExpr(c)
		if err != nil {
			return nil, err
		}

		l = append(l, x)
	}

	return l, nil
}

func scalarName(n *yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode || n.Tag == "!!null" || n.Value == "" {
		return "", errors.New("line %d: expected a name", n.Line)
	}

	return n.Value, nil
}

func decodeOpt(n *yaml.Node) (Expr, error) {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil, nil
	}

	return decodeExpr(n)
}

func decodeFields(n *yaml.Node) (fields, error) {
	if n.Kind != yaml.MappingNode {
		return nil, errors.New("line %d: expected a mapping", n.Line)
	}

	f := make(fields, len(n.Content)/2)

	for i := 0; i+1 < len(n.Content); i += 2 {
		f[n.Content[i].Value] = n.Content[i+1]
	}

	return f, nil
}

func (f fields) name(k string) (string, error) {
	n := f[k]
	if n == nil || n.Kind != yaml.ScalarNode || n.Value == "" {
		return "", errors.New("%v: expected a name", k)
	}

	return n.Value, nil
}

func (f fields) typ(k string) (VarType, error) {
	n := f[k]
	if n == nil {
		return Number, nil
	}

	t, ok := ParseType(n.Value)
	if !ok {
		return 0, errors.New("%v: unknown type %q", k, n.Value)
	}

	return t, nil
}

func (f fields) flag(k string) (bool, error) {
	n := f[k]
	if n == nil {
		return false, nil
	}

	v, err := strconv.ParseBool(n.Value)
	if err != nil {
		return false, errors.Wrap(err, "%v", k)
	}

	return v, nil
}

func (f fields) expr(k string) (Expr, error) {
	n := f[k]
	if n == nil {
		return nil, errors.New("%v: missing", k)
	}

	x, err := decodeExpr(n)
	if err != nil {
		return nil, errors.Wrap(err, "%v", k)
	}

	return x, nil
}
