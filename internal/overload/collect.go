package overload

import (
	"github.com/zsakowitz/rewrites-sub000/internal/typesystem"
)

// collectable reports whether fn takes exactly one array parameter, which
// lets it be called with one argument per element.
func collectable(fn *Fn) bool {
	return len(fn.Sig.Args) == 1 && fn.Sig.Args[0].Kind().IsArray()
}

func packedType(elem typesystem.Type, n int, fp *typesystem.FnParams) typesystem.Type {
	return typesystem.NewArrayFixed(elem.Apply(fp), typesystem.IntConst(int64(n)))
}

// tryCollect packs args into a fixed array of len(args) elements and
// matches that against fn's array parameter.
func (r *Resolver) tryCollect(fn *Fn, generics []Generic, args []typesystem.Type) (*Match, error) {
	fp, ok := r.start(fn, generics)
	if !ok {
		return nil, nil
	}
	param := fn.Sig.Args[0].Apply(fp)
	elem, _ := typesystem.ElemOf(param)
	for _, a := range args {
		if !r.engine.Can(a, elem, fp) {
			return nil, nil
		}
	}
	if !r.engine.Can(packedType(elem, len(args), fp), param, fp) {
		return nil, nil
	}
	ok, err := r.where(fn, fp)
	if err != nil || !ok {
		return nil, err
	}
	r.logger.Printf("  collected %d argument(s) into %s", len(args), param.Apply(fp))
	return &Match{
		Fn:        fn,
		Params:    fp,
		Ret:       fn.Sig.Ret.Apply(fp),
		Collected: true,
		elem:      elem,
	}, nil
}

func (r *Resolver) collectValues(m *Match, args []typesystem.Value) ([]typesystem.Value, error) {
	elem := m.elem.Apply(m.Params)
	elems := make([]typesystem.Value, len(args))
	for i, a := range args {
		v, err := r.engine.Map(a, elem, m.Params)
		if err != nil {
			return nil, err
		}
		elems[i] = v
	}
	arr := r.engine.Target().ArrayOf(elems, packedType(elem, len(args), m.Params))
	v, err := r.engine.Map(arr, m.Fn.Sig.Args[0], m.Params)
	if err != nil {
		return nil, err
	}
	return []typesystem.Value{v}, nil
}
