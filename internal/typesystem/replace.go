package typesystem

// Apply methods return t itself when nothing inside it changes, so fully
// concrete types are never copied.

func (t *TSym) Apply(fp *FnParams) Type {
	if t.isConst || fp == nil {
		return t
	}
	p := t.payload.Apply(fp)
	if p == t.payload {
		return t
	}
	if t.tagged {
		return NewTaggedSym(t.tag, p)
	}
	return NewSym(p)
}

func (t *TTuple) Apply(fp *FnParams) Type {
	if t.isConst || fp == nil {
		return t
	}
	elems, changed := applyAll(t.elems, fp)
	if !changed {
		return t
	}
	return NewTuple(elems...)
}

func (t *TArrayFixed) Apply(fp *FnParams) Type {
	if t.isConst || fp == nil {
		return t
	}
	elem := t.elem.Apply(fp)
	changed := elem != t.elem
	dims := make([]*Const, len(t.dims))
	for i, d := range t.dims {
		dims[i] = d.Apply(fp)
		changed = changed || dims[i] != d
	}
	if !changed {
		return t
	}
	return NewArrayFixed(elem, dims...)
}

func (t *TArrayCapped) Apply(fp *FnParams) Type {
	if t.isConst || fp == nil {
		return t
	}
	elem, limit := t.elem.Apply(fp), t.cap.Apply(fp)
	if elem == t.elem && limit == t.cap {
		return t
	}
	return NewArrayCapped(elem, limit)
}

func (t *TArrayUnsized) Apply(fp *FnParams) Type {
	if t.isConst || fp == nil {
		return t
	}
	elem := t.elem.Apply(fp)
	if elem == t.elem {
		return t
	}
	return NewArrayUnsized(elem)
}

func (t *TAdt) Apply(fp *FnParams) Type {
	if t.isConst || fp == nil {
		return t
	}
	types, changed := applyAll(t.types, fp)
	consts := make([]*Const, len(t.consts))
	for i, c := range t.consts {
		consts[i] = c.Apply(fp)
		changed = changed || consts[i] != c
	}
	if !changed {
		return t
	}
	return t.reg.build(t.id, types, consts)
}

func (t *TParam) Apply(fp *FnParams) Type {
	bound, ok := fp.Lookup(t.param)
	if !ok {
		return t
	}
	if bp, ok := bound.(*TParam); ok && bp.param == t.param {
		return t
	}
	return bound.Apply(fp)
}

func (t *TOption) Apply(fp *FnParams) Type {
	if t.isConst || fp == nil {
		return t
	}
	inner := t.inner.Apply(fp)
	if inner == t.inner {
		return t
	}
	return NewOption(inner)
}

func applyAll(ts []Type, fp *FnParams) ([]Type, bool) {
	out := make([]Type, len(ts))
	changed := false
	for i, t := range ts {
		out[i] = t.Apply(fp)
		changed = changed || out[i] != t
	}
	return out, changed
}

// ElemOf returns the type of one element of an array type: the row of a
// fixed array, or the element of a capped or unsized array.
func ElemOf(t Type) (Type, bool) {
	switch t := t.(type) {
	case *TArrayFixed:
		return t.Row(), true
	case *TArrayCapped:
		return t.elem, true
	case *TArrayUnsized:
		return t.elem, true
	}
	return nil, false
}
