// Package overload picks which declared function a call refers to.
// Overloads are tried in declaration order and the first full match wins.
package overload

import (
	"fmt"
	"strings"

	"github.com/zsakowitz/rewrites-sub000/internal/typesystem"
)

// Impl runs a resolved call. Arguments have already been converted into
// the declared argument types. The returned value's type is replaced by the
// specialized return type.
type Impl func(args ...typesystem.Value) (typesystem.Value, error)

// FnSignature is a name with argument and return types, any of which may
// mention generic parameters.
type FnSignature struct {
	Name string
	Args []typesystem.Type
	Ret  typesystem.Type
}

func (s FnSignature) String() string {
	parts := make([]string, len(s.Args))
	for i, a := range s.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s) -> %s", s.Name, strings.Join(parts, ", "), s.Ret)
}

// Fn is one declared overload.
type Fn struct {
	ID     typesystem.FnID
	Sig    FnSignature
	Params *typesystem.FnParamsTempl
	Where  []*Constraint
	Impl   Impl
}

func (f *Fn) Name() string { return f.Sig.Name }

// Type is the singleton type naming exactly this function.
func (f *Fn) Type() *typesystem.TFn {
	return typesystem.NewFnType(f.ID, f.Sig.Name)
}

func (f *Fn) String() string {
	s := f.Sig.String()
	if f.Params.Len() > 0 {
		labels := make([]string, 0, f.Params.Len())
		for _, p := range f.Params.Params() {
			labels = append(labels, p.Label())
		}
		s = f.Sig.Name + "<" + strings.Join(labels, ", ") + ">" + strings.TrimPrefix(s, f.Sig.Name)
	}
	if len(f.Where) > 0 {
		clauses := make([]string, len(f.Where))
		for i, c := range f.Where {
			clauses[i] = c.Sig.String()
		}
		s += " where " + strings.Join(clauses, ", ")
	}
	return s
}

// Scope is where the resolver finds overloads and named types. Lookup
// returns the overloads of the innermost scope declaring name, in
// declaration order.
type Scope interface {
	Lookup(name string) []*Fn
	ResolveType(name string) (typesystem.Type, bool)
}
