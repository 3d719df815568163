package typesystem

import (
	"strconv"
)

// Const is a compile-time bool or int used inside a type, such as an array
// length. It is either a literal or an unresolved const parameter.
type Const struct {
	ty    Type
	n     int64
	param *Param
}

// NewConst returns a literal of type ty, which must be Bool or Int. For Bool
// any non-zero n is true.
func NewConst(ty Type, n int64) (*Const, error) {
	switch ty.Kind() {
	case KindInt:
		return &Const{ty: Int, n: n}, nil
	case KindBool:
		if n != 0 {
			n = 1
		}
		return &Const{ty: Bool, n: n}, nil
	}
	return nil, errInvalidConst(ty)
}

func IntConst(n int64) *Const {
	return &Const{ty: Int, n: n}
}

func BoolConst(b bool) *Const {
	if b {
		return &Const{ty: Bool, n: 1}
	}
	return &Const{ty: Bool}
}

// ParamConst refers to a const parameter. The parameter must have been
// created with NewConstParam.
func ParamConst(p *Param) *Const {
	return &Const{ty: p.ConstType(), param: p}
}

func (c *Const) Type() Type    { return c.ty }
func (c *Const) IsConst() bool { return c.param == nil }
func (c *Const) Param() *Param { return c.param }

// Int returns the literal value. It is meaningless for a parameter.
func (c *Const) Int() int64 { return c.n }

func (c *Const) Bool() bool { return c.n != 0 }

// Is0 reports a literal numeric zero.
func (c *Const) Is0() bool {
	return c.param == nil && c.ty == Int && c.n == 0
}

func (c *Const) String() string {
	switch {
	case c.param != nil:
		return c.param.Label()
	case c.ty == Bool:
		return strconv.FormatBool(c.n != 0)
	default:
		return strconv.FormatInt(c.n, 10)
	}
}

func (c *Const) fingerprint() string {
	if c.param != nil {
		return "$" + c.param.ID().String()
	}
	return c.ty.String() + ":" + strconv.FormatInt(c.n, 10)
}

// Apply substitutes a bound const parameter.
func (c *Const) Apply(fp *FnParams) *Const {
	if c.param == nil {
		return c
	}
	if bound, ok := fp.LookupConst(c.param); ok && bound != c {
		return bound.Apply(fp)
	}
	return c
}

// EqTo reports whether c and o are the same value. A parameter declared in
// fp is bound on first use and verified under its variance afterwards.
func (c *Const) EqTo(o *Const, fp *FnParams) bool {
	if c.param != nil && c.param == o.param {
		return true
	}
	if o.param != nil && fp.Declares(o.param) {
		return fp.SetConst(o.param, c)
	}
	if c.param != nil && fp.Declares(c.param) {
		return fp.SetConst(c.param, o)
	}
	c, o = c.Apply(fp), o.Apply(fp)
	if c.param != nil || o.param != nil {
		return c.param == o.param
	}
	return c.ty == o.ty && c.n == o.n
}

// LeTo reports c <= o for int literals and falls back to EqTo otherwise.
func (c *Const) LeTo(o *Const, fp *FnParams) bool {
	if o.param != nil && fp.Declares(o.param) {
		return fp.SetConst(o.param, c)
	}
	if c.param != nil && fp.Declares(c.param) {
		return fp.SetConst(c.param, o)
	}
	a, b := c.Apply(fp), o.Apply(fp)
	if a.param == nil && b.param == nil && a.ty == Int && b.ty == Int {
		return a.n <= b.n
	}
	return a.EqTo(b, fp)
}
