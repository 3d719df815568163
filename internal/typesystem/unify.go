package typesystem

// Equal reports whether a and b are structurally identical. When a side is a
// parameter declared in fp, the comparison binds it instead (or verifies the
// existing binding under its variance). Pass a nil fp for plain equality.
func Equal(a, b Type, fp *FnParams) bool {
	if a == b {
		return true
	}
	if pa, ok := a.(*TParam); ok {
		if pb, ok := b.(*TParam); ok && pa.param == pb.param {
			return true
		}
	}
	if pb, ok := b.(*TParam); ok && fp.Declares(pb.param) {
		return fp.SetTy(pb.param, a)
	}
	if pa, ok := a.(*TParam); ok && fp.Declares(pa.param) {
		return fp.SetTy(pa.param, b)
	}

	switch a := a.(type) {
	case *TPrim:
		return false

	case *TSym:
		b, ok := b.(*TSym)
		return ok && a.tagged == b.tagged && a.tag == b.tag && Equal(a.payload, b.payload, fp)

	case *TTuple:
		b, ok := b.(*TTuple)
		if !ok || len(a.elems) != len(b.elems) {
			return false
		}
		for i := range a.elems {
			if !Equal(a.elems[i], b.elems[i], fp) {
				return false
			}
		}
		return true

	case *TArrayFixed:
		b, ok := b.(*TArrayFixed)
		if !ok || len(a.dims) != len(b.dims) || !Equal(a.elem, b.elem, fp) {
			return false
		}
		for i := range a.dims {
			if !a.dims[i].EqTo(b.dims[i], fp) {
				return false
			}
		}
		return true

	case *TArrayCapped:
		b, ok := b.(*TArrayCapped)
		return ok && Equal(a.elem, b.elem, fp) && a.cap.EqTo(b.cap, fp)

	case *TArrayUnsized:
		b, ok := b.(*TArrayUnsized)
		return ok && Equal(a.elem, b.elem, fp)

	case *TAdt:
		b, ok := b.(*TAdt)
		if !ok || a.reg != b.reg || a.id != b.id || len(a.types) != len(b.types) || len(a.consts) != len(b.consts) {
			return false
		}
		for i := range a.types {
			if !Equal(a.types[i], b.types[i], fp) {
				return false
			}
		}
		for i := range a.consts {
			if !a.consts[i].EqTo(b.consts[i], fp) {
				return false
			}
		}
		return true

	case *TFn:
		b, ok := b.(*TFn)
		return ok && a.id == b.id

	case *TParam:
		// Undeclared parameters are only equal to themselves, handled above.
		if bound, ok := fp.Lookup(a.param); ok {
			return Equal(bound, b, fp)
		}
		return false

	case *TOption:
		b, ok := b.(*TOption)
		return ok && Equal(a.inner, b.inner, fp)
	}
	return false
}
