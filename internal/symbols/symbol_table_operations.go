package symbols

import (
	"fmt"
	"sort"

	"github.com/zsakowitz/rewrites-sub000/internal/overload"
	"github.com/zsakowitz/rewrites-sub000/internal/typesystem"
)

// NewRoot returns an empty outermost scope.
func NewRoot() *SymbolTable {
	return &SymbolTable{
		fns:   make(map[string][]*overload.Fn),
		types: make(map[string]typesystem.Type),
		ids:   &idCounter{},
	}
}

func NewEnclosed(outer *SymbolTable) *SymbolTable {
	return &SymbolTable{
		fns:   make(map[string][]*overload.Fn),
		types: make(map[string]typesystem.Type),
		outer: outer,
		ids:   outer.ids,
	}
}

// DefineFn appends fn to the overloads of its name in this scope and
// assigns it a fresh FnID.
func (s *SymbolTable) DefineFn(fn *overload.Fn) error {
	if fn.Sig.Name == "" {
		return fmt.Errorf("function has no name")
	}
	if fn.Sig.Ret == nil {
		return fmt.Errorf("function %s has no return type", fn.Sig.Name)
	}
	if fn.Params == nil {
		fn.Params = typesystem.NewFnParamsTempl()
	}
	fn.ID = s.ids.next()
	s.fns[fn.Sig.Name] = append(s.fns[fn.Sig.Name], fn)
	return nil
}

// Lookup returns the overloads of name declared in the innermost scope that
// declares any.
func (s *SymbolTable) Lookup(name string) []*overload.Fn {
	for scope := s; scope != nil; scope = scope.outer {
		if fns, ok := scope.fns[name]; ok {
			out := make([]*overload.Fn, len(fns))
			copy(out, fns)
			return out
		}
	}
	return nil
}

// IsDefinedLocally reports whether this scope itself declares a function
// or a type called name.
func (s *SymbolTable) IsDefinedLocally(name string) bool {
	if _, ok := s.fns[name]; ok {
		return true
	}
	_, ok := s.types[name]
	return ok
}

func (s *SymbolTable) DefineType(name string, t typesystem.Type) {
	s.types[name] = t
}

func (s *SymbolTable) ResolveType(name string) (typesystem.Type, bool) {
	for scope := s; scope != nil; scope = scope.outer {
		if t, ok := scope.types[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// FunctionNames lists every function name visible from this scope.
func (s *SymbolTable) FunctionNames() []string {
	seen := make(map[string]bool)
	var names []string
	for scope := s; scope != nil; scope = scope.outer {
		for name := range scope.fns {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}
