package typesystem

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Param is a generic placeholder standing for a type or, when ConstType is
// non-nil, for a bool/int const. Two params are the same only if they are
// the same declaration; labels may repeat.
type Param struct {
	id      uuid.UUID
	label   string
	constTy Type
}

func NewTypeParam(label string) *Param {
	return &Param{id: uuid.New(), label: label}
}

// NewConstParam declares a const parameter of type ty, which must be Bool or
// Int.
func NewConstParam(label string, ty Type) (*Param, error) {
	switch ty.Kind() {
	case KindBool, KindInt:
		return &Param{id: uuid.New(), label: label, constTy: ty}, nil
	}
	return nil, errInvalidConst(ty)
}

func (p *Param) ID() uuid.UUID   { return p.id }
func (p *Param) Label() string   { return p.label }
func (p *Param) IsConst() bool   { return p.constTy != nil }
func (p *Param) ConstType() Type { return p.constTy }
func (p *Param) String() string  { return p.label }

// Variance decides how later uses of an already-bound parameter are checked.
type Variance int

const (
	// Invariant requires later uses to be structurally equal to the binding.
	Invariant Variance = iota
	// Coercible lets later uses merely coerce into the binding.
	Coercible
)

func (v Variance) String() string {
	if v == Coercible {
		return "coercible"
	}
	return "invariant"
}

// Context answers coercibility questions for Coercible parameters. The
// coercion engine implements it.
type Context interface {
	Can(from, into Type, fp *FnParams) bool
}

type templEntry struct {
	param    *Param
	variance Variance
}

// FnParamsTempl is the static list of generic parameters a function
// declares.
type FnParamsTempl struct {
	entries []templEntry
	index   map[uuid.UUID]int
}

func NewFnParamsTempl() *FnParamsTempl {
	return &FnParamsTempl{index: make(map[uuid.UUID]int)}
}

// Set declares p with variance v. Declaring p again replaces its variance.
func (t *FnParamsTempl) Set(p *Param, v Variance) *FnParamsTempl {
	if i, ok := t.index[p.id]; ok {
		t.entries[i].variance = v
		return t
	}
	t.index[p.id] = len(t.entries)
	t.entries = append(t.entries, templEntry{param: p, variance: v})
	return t
}

// SetConst declares a const parameter, checking that ty is Bool or Int and
// matches the type p was created with.
func (t *FnParamsTempl) SetConst(p *Param, v Variance, ty Type) error {
	if ty.Kind() != KindBool && ty.Kind() != KindInt {
		return errInvalidConst(ty)
	}
	if !p.IsConst() || p.constTy != ty {
		return errInvalidConst(ty)
	}
	t.Set(p, v)
	return nil
}

func (t *FnParamsTempl) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Params returns the declared parameters in declaration order.
func (t *FnParamsTempl) Params() []*Param {
	if t == nil {
		return nil
	}
	out := make([]*Param, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.param
	}
	return out
}

func (t *FnParamsTempl) variance(p *Param) (Variance, bool) {
	if t == nil {
		return Invariant, false
	}
	i, ok := t.index[p.id]
	if !ok {
		return Invariant, false
	}
	return t.entries[i].variance, true
}

// Within produces a fresh, empty binding table.
func (t *FnParamsTempl) Within(ctx Context) *FnParams {
	return &FnParams{
		templ:  t,
		ctx:    ctx,
		tys:    make(map[uuid.UUID]Type),
		consts: make(map[uuid.UUID]*Const),
	}
}

// FnParams binds the parameters of one resolution attempt. Each parameter
// is bound at most once; later uses are verified against the binding. A
// table is never rolled back: on failure the whole table is discarded.
type FnParams struct {
	templ  *FnParamsTempl
	ctx    Context
	tys    map[uuid.UUID]Type
	consts map[uuid.UUID]*Const
}

// Declares reports whether p belongs to this table's template. It is safe
// to call on a nil table.
func (fp *FnParams) Declares(p *Param) bool {
	if fp == nil {
		return false
	}
	_, ok := fp.templ.variance(p)
	return ok
}

// Has reports whether p is bound.
func (fp *FnParams) Has(p *Param) bool {
	if fp == nil {
		return false
	}
	if p.IsConst() {
		_, ok := fp.consts[p.id]
		return ok
	}
	_, ok := fp.tys[p.id]
	return ok
}

// Lookup returns the type bound to p, if any.
func (fp *FnParams) Lookup(p *Param) (Type, bool) {
	if fp == nil {
		return nil, false
	}
	t, ok := fp.tys[p.id]
	return t, ok
}

// LookupConst returns the const bound to p, if any.
func (fp *FnParams) LookupConst(p *Param) (*Const, bool) {
	if fp == nil {
		return nil, false
	}
	c, ok := fp.consts[p.id]
	return c, ok
}

// Get returns the type bound to p. Reading an unbound parameter is an
// engine bug and yields an internal error.
func (fp *FnParams) Get(p *Param) (Type, error) {
	if t, ok := fp.Lookup(p); ok {
		return t, nil
	}
	return nil, errUnresolved(p)
}

// GetConst is Get for const parameters.
func (fp *FnParams) GetConst(p *Param) (*Const, error) {
	if c, ok := fp.LookupConst(p); ok {
		return c, nil
	}
	return nil, errUnresolved(p)
}

// SetTy binds p to t if p is unbound, otherwise verifies t against the
// binding under p's variance. It reports false when p is not declared here,
// is a const parameter, or disagrees with its binding.
func (fp *FnParams) SetTy(p *Param, t Type) bool {
	if fp == nil || p.IsConst() {
		return false
	}
	v, ok := fp.templ.variance(p)
	if !ok {
		return false
	}
	if tp, ok := t.(*TParam); ok && tp.param == p {
		return fp.Has(p)
	}
	bound, ok := fp.tys[p.id]
	if !ok {
		fp.tys[p.id] = t.Apply(fp)
		return true
	}
	if v == Coercible && fp.ctx != nil {
		return fp.ctx.Can(t, bound, fp)
	}
	return Equal(t, bound, fp)
}

// SetConst is SetTy for const parameters. Coercible const parameters accept
// later values that are <= the binding.
func (fp *FnParams) SetConst(p *Param, c *Const) bool {
	if fp == nil || !p.IsConst() {
		return false
	}
	v, ok := fp.templ.variance(p)
	if !ok {
		return false
	}
	if c.param == p {
		return fp.Has(p)
	}
	c = c.Apply(fp)
	if c.ty != p.constTy {
		return false
	}
	bound, ok := fp.consts[p.id]
	if !ok {
		fp.consts[p.id] = c
		return true
	}
	if v == Coercible {
		return c.LeTo(bound, fp)
	}
	return c.EqTo(bound, fp)
}

// Bind is SetTy that explains a failure.
func (fp *FnParams) Bind(p *Param, t Type) error {
	if fp.SetTy(p, t) {
		return nil
	}
	if bound, ok := fp.Lookup(p); ok {
		return errUnify(p, bound, t)
	}
	return errUnify(p, stringer("<undeclared>"), t)
}

// BindConst is SetConst that explains a failure.
func (fp *FnParams) BindConst(p *Param, c *Const) error {
	if fp.SetConst(p, c) {
		return nil
	}
	if bound, ok := fp.LookupConst(p); ok {
		return errUnify(p, bound, c)
	}
	return errUnify(p, stringer("<undeclared>"), c)
}

// String lists the bindings in declaration order, e.g. "T = bool, N = 3".
func (fp *FnParams) String() string {
	if fp == nil {
		return ""
	}
	var parts []string
	for _, p := range fp.templ.Params() {
		if t, ok := fp.tys[p.id]; ok {
			parts = append(parts, fmt.Sprintf("%s = %s", p.label, t))
		} else if c, ok := fp.consts[p.id]; ok {
			parts = append(parts, fmt.Sprintf("%s = %s", p.label, c))
		}
	}
	return strings.Join(parts, ", ")
}

type stringer string

func (s stringer) String() string { return string(s) }
