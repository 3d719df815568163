package typesystem

import (
	"fmt"
	"strings"

	"github.com/zsakowitz/rewrites-sub000/internal/config"
)

// Type is the interface for all types in our system. The set of
// implementations is closed: only this package can add one.
type Type interface {
	String() string
	Kind() Kind
	// Has0 reports that no value of the type can exist.
	Has0() bool
	// Has1 reports that exactly one value of the type exists.
	Has1() bool
	// IsConst reports that no unresolved generic parameter is reachable.
	IsConst() bool
	// Apply substitutes every parameter bound in p.
	Apply(p *FnParams) Type
	isType()
}

// flags are computed once by each constructor.
type flags struct {
	has0, has1, isConst bool
}

func (f flags) Has0() bool    { return f.has0 }
func (f flags) Has1() bool    { return f.has1 }
func (f flags) IsConst() bool { return f.isConst }

// TPrim is one of the nullary kinds. Only the package-level singletons
// below exist.
type TPrim struct {
	flags
	kind Kind
	name string
}

var (
	Never      Type = &TPrim{kind: KindNever, name: config.NeverTypeName, flags: flags{has0: true, isConst: true}}
	Bool       Type = &TPrim{kind: KindBool, name: config.BoolTypeName, flags: flags{isConst: true}}
	Int        Type = &TPrim{kind: KindInt, name: config.IntTypeName, flags: flags{isConst: true}}
	Num        Type = &TPrim{kind: KindNum, name: config.NumTypeName, flags: flags{isConst: true}}
	Null       Type = &TPrim{kind: KindNull, name: config.NullTypeName, flags: flags{has1: true, isConst: true}}
	ArrayEmpty Type = &TPrim{kind: KindArrayEmpty, name: config.ArrayEmptyTypeName, flags: flags{has1: true, isConst: true}}
)

func (t *TPrim) isType()              {}
func (t *TPrim) Kind() Kind           { return t.kind }
func (t *TPrim) String() string       { return t.name }
func (t *TPrim) Apply(*FnParams) Type { return t }

// TSym is a labeled variant: an optional compile-time tag plus a payload.
// An untagged Sym carries its tag at runtime.
type TSym struct {
	flags
	tag     string
	tagged  bool
	payload Type
}

// NewSym returns an untagged Sym.
func NewSym(payload Type) *TSym {
	return &TSym{
		payload: payload,
		flags:   flags{has0: payload.Has0(), isConst: payload.IsConst()},
	}
}

// NewTaggedSym returns a Sym whose tag is known at compile time.
func NewTaggedSym(tag string, payload Type) *TSym {
	return &TSym{
		tag:     tag,
		tagged:  true,
		payload: payload,
		flags:   flags{has0: payload.Has0(), has1: payload.Has1(), isConst: payload.IsConst()},
	}
}

func (t *TSym) isType()             {}
func (t *TSym) Kind() Kind          { return KindSym }
func (t *TSym) Tag() (string, bool) { return t.tag, t.tagged }
func (t *TSym) Payload() Type       { return t.payload }

func (t *TSym) String() string {
	if t.tagged {
		return fmt.Sprintf("@%s(%s)", t.tag, t.payload)
	}
	return fmt.Sprintf("@(%s)", t.payload)
}

// TTuple is an ordered product of element types.
type TTuple struct {
	flags
	elems []Type
}

func NewTuple(elems ...Type) *TTuple {
	f := flags{has1: true, isConst: true}
	for _, e := range elems {
		f.has0 = f.has0 || e.Has0()
		f.has1 = f.has1 && e.Has1()
		f.isConst = f.isConst && e.IsConst()
	}
	return &TTuple{elems: elems, flags: f}
}

func (t *TTuple) isType()         {}
func (t *TTuple) Kind() Kind      { return KindTuple }
func (t *TTuple) Len() int        { return len(t.elems) }
func (t *TTuple) Elem(i int) Type { return t.elems[i] }

// Elems returns a copy of the element types.
func (t *TTuple) Elems() []Type {
	out := make([]Type, len(t.elems))
	copy(out, t.elems)
	return out
}

func (t *TTuple) String() string {
	if len(t.elems) == 1 {
		return fmt.Sprintf("(%s,)", t.elems[0])
	}
	return "(" + joinTypes(t.elems) + ")"
}

// TArrayFixed is an array whose every dimension has a known size.
// The element is never itself a TArrayFixed.
type TArrayFixed struct {
	flags
	elem Type
	dims []*Const
}

// NewArrayFixed builds a fixed array, outermost dimension first. A fixed
// array element is flattened into the result, so [[int; 3]; 2] becomes
// [int; 2, 3].
func NewArrayFixed(elem Type, dims ...*Const) *TArrayFixed {
	all := append([]*Const(nil), dims...)
	if inner, ok := elem.(*TArrayFixed); ok {
		all = append(all, inner.dims...)
		elem = inner.elem
	}

	f := flags{isConst: elem.IsConst()}
	known := true
	empty := false
	for _, d := range all {
		f.isConst = f.isConst && d.IsConst()
		if d.Is0() {
			empty = true
		}
		if !d.IsConst() {
			known = false
		}
	}
	f.has0 = elem.Has0() && known && !empty
	f.has1 = empty || elem.Has1()
	return &TArrayFixed{elem: elem, dims: all, flags: f}
}

func (t *TArrayFixed) isType()          {}
func (t *TArrayFixed) Kind() Kind       { return KindArrayFixed }
func (t *TArrayFixed) Elem() Type       { return t.elem }
func (t *TArrayFixed) Rank() int        { return len(t.dims) }
func (t *TArrayFixed) Dim(i int) *Const { return t.dims[i] }

// Dims returns a copy of the dimension sizes.
func (t *TArrayFixed) Dims() []*Const {
	out := make([]*Const, len(t.dims))
	copy(out, t.dims)
	return out
}

// Row returns the element type seen when indexing the outermost dimension.
func (t *TArrayFixed) Row() Type {
	if len(t.dims) == 1 {
		return t.elem
	}
	return NewArrayFixed(t.elem, t.dims[1:]...)
}

func (t *TArrayFixed) String() string {
	parts := make([]string, len(t.dims))
	for i, d := range t.dims {
		parts[i] = d.String()
	}
	return fmt.Sprintf("[%s; %s]", t.elem, strings.Join(parts, ", "))
}

// TArrayCapped is an array of variable length bounded above by Cap.
type TArrayCapped struct {
	flags
	elem Type
	cap  *Const
}

func NewArrayCapped(elem Type, limit *Const) *TArrayCapped {
	return &TArrayCapped{
		elem: elem,
		cap:  limit,
		flags: flags{
			has1:    limit.Is0() || elem.Has0(),
			isConst: elem.IsConst() && limit.IsConst(),
		},
	}
}

func (t *TArrayCapped) isType()     {}
func (t *TArrayCapped) Kind() Kind  { return KindArrayCapped }
func (t *TArrayCapped) Elem() Type  { return t.elem }
func (t *TArrayCapped) Cap() *Const { return t.cap }
func (t *TArrayCapped) String() string {
	return fmt.Sprintf("[%s; <=%s]", t.elem, t.cap)
}

// TArrayUnsized is an array of any length.
type TArrayUnsized struct {
	flags
	elem Type
}

func NewArrayUnsized(elem Type) *TArrayUnsized {
	return &TArrayUnsized{
		elem:  elem,
		flags: flags{has1: elem.Has0(), isConst: elem.IsConst()},
	}
}

func (t *TArrayUnsized) isType()        {}
func (t *TArrayUnsized) Kind() Kind     { return KindArrayUnsized }
func (t *TArrayUnsized) Elem() Type     { return t.elem }
func (t *TArrayUnsized) String() string { return fmt.Sprintf("[%s]", t.elem) }

// TAdt is an instance of a registered extension type. Build it with
// AdtRegistry.New.
type TAdt struct {
	flags
	reg    *AdtRegistry
	id     AdtID
	types  []Type
	consts []*Const
}

func (t *TAdt) isType()                {}
func (t *TAdt) Kind() Kind             { return KindAdt }
func (t *TAdt) ID() AdtID              { return t.id }
func (t *TAdt) Def() *AdtDef           { return t.reg.Def(t.id) }
func (t *TAdt) Registry() *AdtRegistry { return t.reg }
func (t *TAdt) TypeArgs() []Type {
	out := make([]Type, len(t.types))
	copy(out, t.types)
	return out
}
func (t *TAdt) ConstArgs() []*Const {
	out := make([]*Const, len(t.consts))
	copy(out, t.consts)
	return out
}

func (t *TAdt) String() string {
	name := t.Def().Name
	if len(t.types) == 0 && len(t.consts) == 0 {
		return name
	}
	parts := make([]string, 0, len(t.types)+len(t.consts))
	for _, a := range t.types {
		parts = append(parts, a.String())
	}
	for _, c := range t.consts {
		parts = append(parts, c.String())
	}
	return fmt.Sprintf("%s<%s>", name, strings.Join(parts, ", "))
}

// FnID identifies one declared function for the lifetime of a session.
type FnID uint32

// NoFnID is never assigned to a declared function.
const NoFnID FnID = 0

// TFn is the type of one concrete function value.
type TFn struct {
	flags
	id   FnID
	name string
}

func NewFnType(id FnID, name string) *TFn {
	return &TFn{id: id, name: name, flags: flags{has1: true, isConst: true}}
}

func (t *TFn) isType()              {}
func (t *TFn) Kind() Kind           { return KindFn }
func (t *TFn) ID() FnID             { return t.id }
func (t *TFn) Name() string         { return t.name }
func (t *TFn) String() string       { return "fn " + t.name }
func (t *TFn) Apply(*FnParams) Type { return t }

// TParam is an unresolved generic type parameter.
type TParam struct {
	flags
	param *Param
}

func NewParamType(p *Param) *TParam {
	return &TParam{param: p}
}

func (t *TParam) isType()        {}
func (t *TParam) Kind() Kind     { return KindParam }
func (t *TParam) Param() *Param  { return t.param }
func (t *TParam) String() string { return t.param.Label() }

// TOption is a value that may be absent.
type TOption struct {
	flags
	inner Type
}

func NewOption(inner Type) *TOption {
	return &TOption{inner: inner, flags: flags{has1: inner.Has0(), isConst: inner.IsConst()}}
}

func (t *TOption) isType()        {}
func (t *TOption) Kind() Kind     { return KindOption }
func (t *TOption) Inner() Type    { return t.inner }
func (t *TOption) String() string { return "?" + t.inner.String() }

func joinTypes(ts []Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

// Fingerprint returns a canonical key for t. Two types have the same
// fingerprint iff they are structurally equal without binding anything.
func Fingerprint(t Type) string {
	var b strings.Builder
	writeFingerprint(&b, t)
	return b.String()
}

func writeFingerprint(b *strings.Builder, t Type) {
	switch t := t.(type) {
	case *TPrim:
		b.WriteString(t.name)
	case *TSym:
		if t.tagged {
			fmt.Fprintf(b, "@%q(", t.tag)
		} else {
			b.WriteString("@(")
		}
		writeFingerprint(b, t.payload)
		b.WriteByte(')')
	case *TTuple:
		b.WriteByte('(')
		for i, e := range t.elems {
			if i > 0 {
				b.WriteByte(',')
			}
			writeFingerprint(b, e)
		}
		b.WriteByte(')')
	case *TArrayFixed:
		b.WriteByte('[')
		writeFingerprint(b, t.elem)
		for _, d := range t.dims {
			b.WriteByte(';')
			b.WriteString(d.fingerprint())
		}
		b.WriteByte(']')
	case *TArrayCapped:
		b.WriteByte('[')
		writeFingerprint(b, t.elem)
		b.WriteString(";<=")
		b.WriteString(t.cap.fingerprint())
		b.WriteByte(']')
	case *TArrayUnsized:
		b.WriteByte('[')
		writeFingerprint(b, t.elem)
		b.WriteByte(']')
	case *TAdt:
		fmt.Fprintf(b, "adt#%d<", t.id)
		for _, a := range t.types {
			writeFingerprint(b, a)
			b.WriteByte(',')
		}
		for _, c := range t.consts {
			b.WriteString(c.fingerprint())
			b.WriteByte(',')
		}
		b.WriteByte('>')
	case *TFn:
		fmt.Fprintf(b, "fn#%d", t.id)
	case *TParam:
		b.WriteString("$" + t.param.ID().String())
	case *TOption:
		b.WriteByte('?')
		writeFingerprint(b, t.inner)
	default:
		panic(fmt.Sprintf("typesystem: unknown type %T", t))
	}
}
