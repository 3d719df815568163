package coerce

import (
	"fmt"

	"github.com/zsakowitz/rewrites-sub000/internal/typesystem"
)

// Map converts v into into. It assumes Can(v.Ty, into, fp) already
// succeeded with the same fp and does not check again.
func (e *Engine) Map(v typesystem.Value, into typesystem.Type, fp *typesystem.FnParams) (typesystem.Value, error) {
	from := v.Ty.Apply(fp)
	into = into.Apply(fp)
	if typesystem.Equal(from, into, nil) || from.Kind() == typesystem.KindNever {
		return v.Retag(into), nil
	}
	if into.Kind() == typesystem.KindParam || from.Kind() == typesystem.KindParam {
		return v.Retag(into), nil
	}
	v = v.Retag(from)
	tg := e.target

	switch f := from.(type) {
	case *typesystem.TPrim:
		if f.Kind() == typesystem.KindArrayEmpty && into.Kind().IsArray() {
			return tg.ArrayOf(nil, into), nil
		}

	case *typesystem.TSym:
		switch i := into.(type) {
		case *typesystem.TSym:
			tag, payload := tg.SymPayload(v)
			p, err := e.Map(payload, i.Payload(), fp)
			if err != nil {
				return typesystem.Value{}, err
			}
			return tg.SymJoin(tag, p, into), nil
		case *typesystem.TAdt:
			tag, payload := tg.SymPayload(v)
			ctor := i.Def().Ctors[tag]
			if ctor == nil {
				break
			}
			p, err := e.Map(payload, ctor.Payload(i), fp)
			if err != nil {
				return typesystem.Value{}, err
			}
			return ctor.Build(p, i).Retag(into), nil
		}

	case *typesystem.TTuple:
		if i, ok := into.(*typesystem.TTuple); ok {
			parts := tg.TupleSplit(v)
			for k := range parts {
				m, err := e.Map(parts[k], i.Elem(k), fp)
				if err != nil {
					return typesystem.Value{}, err
				}
				parts[k] = m
			}
			return tg.TupleJoin(parts, into), nil
		}

	case *typesystem.TArrayFixed, *typesystem.TArrayCapped, *typesystem.TArrayUnsized:
		if into.Kind().IsArray() {
			return e.mapArray(v, into, fp)
		}

	case *typesystem.TAdt:
		if i, ok := into.(*typesystem.TAdt); ok && f.ID() == i.ID() {
			g := f.Def().Generics
			if g != nil && g.Coerce != nil {
				return g.Coerce(v, i, fp)
			}
			return v.Retag(into), nil
		}

	case *typesystem.TOption:
		if i, ok := into.(*typesystem.TOption); ok {
			return tg.OptionMap(v, into, func(inner typesystem.Value) (typesystem.Value, error) {
				return e.Map(inner, i.Inner(), fp)
			})
		}
	}

	if o, ok := into.(*typesystem.TOption); ok && from.Kind() != typesystem.KindOption {
		if from.Kind() == typesystem.KindNull {
			return tg.OptionNone(into), nil
		}
		if e.Can(from, o.Inner(), fp) {
			inner, err := e.Map(v, o.Inner(), fp)
			if err != nil {
				return typesystem.Value{}, err
			}
			return tg.OptionSome(inner, into), nil
		}
	}

	if c := e.lookup(from, into); c != nil {
		out, err := c.Convert(v)
		if err != nil {
			return typesystem.Value{}, err
		}
		return out.Retag(into), nil
	}
	return typesystem.Value{}, fmt.Errorf("no conversion from %s to %s", from, into)
}

// mapArray converts between array size classes, converting elements only
// when their types differ.
func (e *Engine) mapArray(v typesystem.Value, into typesystem.Type, fp *typesystem.FnParams) (typesystem.Value, error) {
	fromElem, _ := typesystem.ElemOf(v.Ty)
	intoElem, _ := typesystem.ElemOf(into)
	if typesystem.Equal(fromElem, intoElem, nil) {
		return e.target.ArrayWiden(v, into), nil
	}
	return e.target.ArrayMap(v, into, func(elem typesystem.Value) (typesystem.Value, error) {
		return e.Map(elem, intoElem, fp)
	})
}
