package coerce

import (
	"github.com/zsakowitz/rewrites-sub000/internal/typesystem"
)

// Can reports whether a value of type from coerces into into. Parameters
// declared in fp are bound on first use and verified afterwards, so a
// failed call may leave fp partially bound; callers discard it.
func (e *Engine) Can(from, into typesystem.Type, fp *typesystem.FnParams) bool {
	if typesystem.Equal(from, into, nil) || from.Kind() == typesystem.KindNever {
		return true
	}

	if p, ok := into.(*typesystem.TParam); ok {
		if fp.Declares(p.Param()) {
			return fp.SetTy(p.Param(), from)
		}
		if bound, ok := fp.Lookup(p.Param()); ok {
			return e.Can(from, bound, fp)
		}
		return false
	}
	if p, ok := from.(*typesystem.TParam); ok {
		if fp.Declares(p.Param()) {
			return fp.SetTy(p.Param(), into)
		}
		if bound, ok := fp.Lookup(p.Param()); ok {
			return e.Can(bound, into, fp)
		}
		return false
	}

	if e.canStructural(from, into, fp) {
		return true
	}
	if o, ok := into.(*typesystem.TOption); ok && from.Kind() != typesystem.KindOption {
		return from.Kind() == typesystem.KindNull || e.Can(from, o.Inner(), fp)
	}
	return e.lookup(from, into) != nil
}

func (e *Engine) canStructural(from, into typesystem.Type, fp *typesystem.FnParams) bool {
	switch f := from.(type) {
	case *typesystem.TPrim:
		if f.Kind() != typesystem.KindArrayEmpty {
			return false
		}
		switch i := into.(type) {
		case *typesystem.TArrayFixed:
			return i.Rank() == 1 && typesystem.IntConst(0).EqTo(i.Dim(0), fp)
		case *typesystem.TArrayCapped, *typesystem.TArrayUnsized:
			return true
		}

	case *typesystem.TSym:
		switch i := into.(type) {
		case *typesystem.TSym:
			if tag, ok := i.Tag(); ok {
				if ftag, fok := f.Tag(); !fok || ftag != tag {
					return false
				}
			}
			return e.Can(f.Payload(), i.Payload(), fp)
		case *typesystem.TAdt:
			tag, ok := f.Tag()
			if !ok {
				return false
			}
			ctor := i.Def().Ctors[tag]
			return ctor != nil && e.Can(f.Payload(), ctor.Payload(i), fp)
		}

	case *typesystem.TTuple:
		i, ok := into.(*typesystem.TTuple)
		if !ok || i.Len() != f.Len() {
			return false
		}
		for k := 0; k < f.Len(); k++ {
			if !e.Can(f.Elem(k), i.Elem(k), fp) {
				return false
			}
		}
		return true

	case *typesystem.TArrayFixed:
		switch i := into.(type) {
		case *typesystem.TArrayFixed:
			return f.Dim(0).EqTo(i.Dim(0), fp) && e.Can(f.Row(), i.Row(), fp)
		case *typesystem.TArrayCapped:
			return f.Rank() == 1 && f.Dim(0).LeTo(i.Cap(), fp) && e.Can(f.Elem(), i.Elem(), fp)
		case *typesystem.TArrayUnsized:
			return f.Rank() == 1 && e.Can(f.Elem(), i.Elem(), fp)
		}

	case *typesystem.TArrayCapped:
		switch i := into.(type) {
		case *typesystem.TArrayCapped:
			return f.Cap().LeTo(i.Cap(), fp) && e.Can(f.Elem(), i.Elem(), fp)
		case *typesystem.TArrayUnsized:
			return e.Can(f.Elem(), i.Elem(), fp)
		}

	case *typesystem.TArrayUnsized:
		if i, ok := into.(*typesystem.TArrayUnsized); ok {
			return e.Can(f.Elem(), i.Elem(), fp)
		}

	case *typesystem.TAdt:
		i, ok := into.(*typesystem.TAdt)
		if !ok || i.Registry() != f.Registry() || i.ID() != f.ID() {
			return false
		}
		g := f.Def().Generics
		if g == nil {
			return false
		}
		return e.canGenerics(g, f, i, fp)

	case *typesystem.TOption:
		if i, ok := into.(*typesystem.TOption); ok {
			return e.Can(f.Inner(), i.Inner(), fp)
		}

	case *typesystem.TFn, *typesystem.TParam:
		return false
	}
	return false
}

func (e *Engine) canGenerics(g *typesystem.AdtGenerics, from, into *typesystem.TAdt, fp *typesystem.FnParams) bool {
	ft, it := from.TypeArgs(), into.TypeArgs()
	for k, v := range g.Types {
		switch v {
		case typesystem.Coercible:
			if !e.Can(ft[k], it[k], fp) {
				return false
			}
		default:
			if !typesystem.Equal(ft[k], it[k], fp) {
				return false
			}
		}
	}
	fc, ic := from.ConstArgs(), into.ConstArgs()
	for k, cg := range g.Consts {
		switch cg.Variance {
		case typesystem.Coercible:
			if !fc[k].LeTo(ic[k], fp) {
				return false
			}
		default:
			if !fc[k].EqTo(ic[k], fp) {
				return false
			}
		}
	}
	return true
}
