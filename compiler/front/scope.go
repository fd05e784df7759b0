package front

import (
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/goslang/gos/compiler/ir"
)

type (
	Symbol struct {
		Name string
		Var  ir.Var // storage slot
		Type ir.Type
	}

	// Scopes is a stack of ordered name -> symbol mappings.
	Scopes struct {
		stack []*scope

		used map[string]bool // storage names taken in the function
	}

	scope struct {
		names []string
		syms  map[string]Symbol

		from loc.PC
	}
)

func (s *Scopes) Enter() {
	s.stack = append(s.stack, &scope{
		syms: map[string]Symbol{},
		from: loc.Caller(1),
	})
}

func (s *Scopes) Exit() error {
	l := len(s.stack)
	if l == 0 {
		return ir.ErrScopeUnderflow
	}

	sc := s.stack[l-1]
	s.stack[l-1] = nil
	s.stack = s.stack[:l-1]

	tlog.V("scope").Printw("exit scope", "depth", l, "names", sc.names, "from", sc.from)

	return nil
}

func (s *Scopes) Depth() int { return len(s.stack) }

// Declare binds name in the innermost scope.
// Names living in outer scopes may be shadowed.
// Every later declaration of the same name gets its own storage.
func (s *Scopes) Declare(name string, tp ir.Type) (ir.Var, error) {
	l := len(s.stack)
	if l == 0 {
		return ir.Var{}, errors.Wrap(ir.ErrScopeUnderflow, "declare %v", name)
	}

	sc := s.stack[l-1]

	if _, ok := sc.syms[name]; ok {
		return ir.Var{}, errors.Wrap(ir.ErrDuplicateDeclaration, "%v", name)
	}

	if s.used == nil {
		s.used = map[string]bool{}
	}

	v := ir.Var{Name: name}

	for n := 1; s.used[v.Name]; n++ {
		v.Name = fmt.Sprintf("%s.%d", name, n)
	}

	s.used[v.Name] = true

	sc.names = append(sc.names, name)
	sc.syms[name] = Symbol{
		Name: name,
		Var:  v,
		Type: tp,
	}

	return v, nil
}

// Lookup resolves name innermost scope first.
func (s *Scopes) Lookup(name string) (Symbol, error) {
	for i := len(s.stack) - 1; i >= 0; i-- {
		if sym, ok := s.stack[i].syms[name]; ok {
			return sym, nil
		}
	}

	return Symbol{}, errors.Wrap(ir.ErrUndefinedVariable, "%v", name)
}

func (s *Scopes) LookupType(name string) (ir.Type, error) {
	sym, err := s.Lookup(name)

	return sym.Type, err
}
