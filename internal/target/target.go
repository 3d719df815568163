// Package target declares the code generation collaborator. The coercion
// engine and the overload resolver never build runtime values themselves;
// every construction, split and render goes through a Target.
package target

import (
	"github.com/zsakowitz/rewrites-sub000/internal/typesystem"
)

// MapFunc converts one element during an element-wise map.
type MapFunc func(elem typesystem.Value) (typesystem.Value, error)

// Target materializes values. Values passed in carry their static type; a
// returned value must carry the type given as into (or the literal's type).
// Elements handed to a MapFunc are typed with the source element type.
type Target interface {
	Bool(b bool) typesystem.Value
	Int(n int64) typesystem.Value
	Num(f float64) typesystem.Value
	Null() typesystem.Value
	EmptyArray() typesystem.Value

	// SymPayload returns the runtime tag and the payload of a Sym value.
	SymPayload(v typesystem.Value) (tag string, payload typesystem.Value)
	SymJoin(tag string, payload typesystem.Value, into typesystem.Type) typesystem.Value

	TupleSplit(v typesystem.Value) []typesystem.Value
	TupleJoin(elems []typesystem.Value, into typesystem.Type) typesystem.Value
	TupleIndex(v typesystem.Value, i int) typesystem.Value

	// ArrayOf builds an array from its outermost elements.
	ArrayOf(elems []typesystem.Value, into typesystem.Type) typesystem.Value
	// ArrayMap converts every outermost element of v.
	ArrayMap(v typesystem.Value, into typesystem.Type, f MapFunc) (typesystem.Value, error)
	// ArrayWiden changes only the size class of v, e.g. fixed to unsized.
	ArrayWiden(v typesystem.Value, into typesystem.Type) typesystem.Value

	OptionNone(into typesystem.Type) typesystem.Value
	OptionSome(v typesystem.Value, into typesystem.Type) typesystem.Value
	// OptionMap converts the payload of v if it is present.
	OptionMap(v typesystem.Value, into typesystem.Type, f MapFunc) (typesystem.Value, error)

	// Render produces the runtime form of v.
	Render(v typesystem.Value) string
}
