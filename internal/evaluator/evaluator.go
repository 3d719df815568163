// Package evaluator is the in-memory code generation target: instead of
// emitting code it builds Objects directly, so resolved calls can be run.
package evaluator

import (
	"fmt"

	"github.com/zsakowitz/rewrites-sub000/internal/target"
	"github.com/zsakowitz/rewrites-sub000/internal/typesystem"
)

// Evaluator implements target.Target.
type Evaluator struct{}

var _ target.Target = (*Evaluator)(nil)

func New() *Evaluator { return &Evaluator{} }

func value(t typesystem.Type, obj Object) typesystem.Value {
	return typesystem.Value{Ty: t, Repr: obj}
}

func (e *Evaluator) Bool(b bool) typesystem.Value   { return value(typesystem.Bool, &Boolean{Value: b}) }
func (e *Evaluator) Int(n int64) typesystem.Value   { return value(typesystem.Int, &Integer{Value: n}) }
func (e *Evaluator) Num(f float64) typesystem.Value { return value(typesystem.Num, &Float{Value: f}) }
func (e *Evaluator) Null() typesystem.Value         { return value(typesystem.Null, &Nil{}) }
func (e *Evaluator) EmptyArray() typesystem.Value   { return value(typesystem.ArrayEmpty, &Array{}) }

func (e *Evaluator) SymPayload(v typesystem.Value) (string, typesystem.Value) {
	tagged := mustUnwrap(v).(*Tagged)
	var pt typesystem.Type = typesystem.Never
	if s, ok := v.Ty.(*typesystem.TSym); ok {
		pt = s.Payload()
	}
	return tagged.Tag, value(pt, tagged.Payload)
}

func (e *Evaluator) SymJoin(tag string, payload typesystem.Value, into typesystem.Type) typesystem.Value {
	return value(into, &Tagged{Tag: tag, Payload: mustUnwrap(payload)})
}

func (e *Evaluator) TupleSplit(v typesystem.Value) []typesystem.Value {
	tuple := mustUnwrap(v).(*Tuple)
	tt, _ := v.Ty.(*typesystem.TTuple)
	out := make([]typesystem.Value, len(tuple.Elements))
	for i, el := range tuple.Elements {
		out[i] = value(elemType(tt, i), el)
	}
	return out
}

func (e *Evaluator) TupleJoin(elems []typesystem.Value, into typesystem.Type) typesystem.Value {
	objs := make([]Object, len(elems))
	for i, el := range elems {
		objs[i] = mustUnwrap(el)
	}
	return value(into, &Tuple{Elements: objs})
}

func (e *Evaluator) TupleIndex(v typesystem.Value, i int) typesystem.Value {
	tuple := mustUnwrap(v).(*Tuple)
	tt, _ := v.Ty.(*typesystem.TTuple)
	return value(elemType(tt, i), tuple.Elements[i])
}

func elemType(tt *typesystem.TTuple, i int) typesystem.Type {
	if tt == nil || i >= tt.Len() {
		return typesystem.Never
	}
	return tt.Elem(i)
}

func (e *Evaluator) ArrayOf(elems []typesystem.Value, into typesystem.Type) typesystem.Value {
	objs := make([]Object, len(elems))
	for i, el := range elems {
		objs[i] = mustUnwrap(el)
	}
	return value(into, &Array{Elements: objs})
}

func (e *Evaluator) ArrayMap(v typesystem.Value, into typesystem.Type, f target.MapFunc) (typesystem.Value, error) {
	arr, ok := mustUnwrap(v).(*Array)
	if !ok {
		return typesystem.Value{}, fmt.Errorf("expected array, got %s", mustUnwrap(v).Type())
	}
	elemTy, ok := typesystem.ElemOf(v.Ty)
	if !ok {
		elemTy = typesystem.Never
	}
	out := make([]Object, len(arr.Elements))
	for i, el := range arr.Elements {
		m, err := f(value(elemTy, el))
		if err != nil {
			return typesystem.Value{}, err
		}
		out[i] = mustUnwrap(m)
	}
	return value(into, &Array{Elements: out}), nil
}

func (e *Evaluator) ArrayWiden(v typesystem.Value, into typesystem.Type) typesystem.Value {
	return v.Retag(into)
}

func (e *Evaluator) OptionNone(into typesystem.Type) typesystem.Value {
	return value(into, &Optional{})
}

func (e *Evaluator) OptionSome(v typesystem.Value, into typesystem.Type) typesystem.Value {
	return value(into, &Optional{Value: mustUnwrap(v)})
}

func (e *Evaluator) OptionMap(v typesystem.Value, into typesystem.Type, f target.MapFunc) (typesystem.Value, error) {
	opt := mustUnwrap(v).(*Optional)
	if !opt.IsSome() {
		return e.OptionNone(into), nil
	}
	var inner typesystem.Type = typesystem.Never
	if o, ok := v.Ty.(*typesystem.TOption); ok {
		inner = o.Inner()
	}
	m, err := f(value(inner, opt.Value))
	if err != nil {
		return typesystem.Value{}, err
	}
	return e.OptionSome(m, into), nil
}

func (e *Evaluator) Render(v typesystem.Value) string {
	obj, err := Unwrap(v)
	if err != nil {
		return "<invalid>"
	}
	return obj.Inspect()
}

// Construct wraps an already converted payload as an instance of an
// extension type.
func (e *Evaluator) Construct(typeName, ctor string, payload typesystem.Value, into typesystem.Type) typesystem.Value {
	return value(into, &Instance{TypeName: typeName, Ctor: ctor, Payload: mustUnwrap(payload)})
}

// Deconstruct splits an instance into its constructor tag and payload. The
// payload carries no type; the caller retags it.
func (e *Evaluator) Deconstruct(v typesystem.Value) (string, typesystem.Value, error) {
	obj, err := Unwrap(v)
	if err != nil {
		return "", typesystem.Value{}, err
	}
	inst, ok := obj.(*Instance)
	if !ok {
		return "", typesystem.Value{}, fmt.Errorf("expected %s, got %s", INSTANCE_OBJ, obj.Type())
	}
	return inst.Ctor, typesystem.Value{Repr: inst.Payload}, nil
}
