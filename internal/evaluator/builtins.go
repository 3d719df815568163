package evaluator

import (
	"errors"
	"fmt"

	"github.com/zsakowitz/rewrites-sub000/internal/typesystem"
)

type BuiltinFunction func(e *Evaluator, args ...Object) (Object, error)

// Builtin is a host implementation that the prelude binds to a declared
// overload or coercion by name.
type Builtin struct {
	Fn    BuiltinFunction
	Name  string
	Arity int
}

// Call checks the argument count and runs the builtin.
func (b *Builtin) Call(e *Evaluator, args ...Object) (Object, error) {
	if len(args) != b.Arity {
		return nil, fmt.Errorf("%s expects %d argument(s), got %d", b.Name, b.Arity, len(args))
	}
	return b.Fn(e, args...)
}

var ErrDivisionByZero = errors.New("division by zero")

func init() {
	for name, builtin := range Builtins {
		if builtin.Name != name {
			panic(fmt.Sprintf("builtin %q is registered as %q", builtin.Name, name))
		}
	}
}

var Builtins = map[string]*Builtin{
	"int_add": intOp("int_add", func(a, b int64) (int64, error) { return a + b, nil }),
	"int_sub": intOp("int_sub", func(a, b int64) (int64, error) { return a - b, nil }),
	"int_mul": intOp("int_mul", func(a, b int64) (int64, error) { return a * b, nil }),
	"int_div": intOp("int_div", func(a, b int64) (int64, error) {
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return a / b, nil
	}),
	"num_add": numOp("num_add", func(a, b float64) float64 { return a + b }),
	"num_sub": numOp("num_sub", func(a, b float64) float64 { return a - b }),
	"num_mul": numOp("num_mul", func(a, b float64) float64 { return a * b }),
	"num_div": numOp("num_div", func(a, b float64) float64 { return a / b }),

	"eq": {Name: "eq", Arity: 2, Fn: func(e *Evaluator, args ...Object) (Object, error) {
		return &Boolean{Value: ObjectsEqual(args[0], args[1])}, nil
	}},
	"int_neg": {Name: "int_neg", Arity: 1, Fn: func(e *Evaluator, args ...Object) (Object, error) {
		n, err := asInt(args[0])
		if err != nil {
			return nil, err
		}
		return &Integer{Value: -n}, nil
	}},
	"num_neg": {Name: "num_neg", Arity: 1, Fn: func(e *Evaluator, args ...Object) (Object, error) {
		f, err := asNum(args[0])
		if err != nil {
			return nil, err
		}
		return &Float{Value: -f}, nil
	}},
	"not": {Name: "not", Arity: 1, Fn: func(e *Evaluator, args ...Object) (Object, error) {
		b, ok := args[0].(*Boolean)
		if !ok {
			return nil, typeError("not", "BOOLEAN", args[0])
		}
		return &Boolean{Value: !b.Value}, nil
	}},
	"identity": {Name: "identity", Arity: 1, Fn: func(e *Evaluator, args ...Object) (Object, error) {
		return args[0], nil
	}},
	"int_sum": {Name: "int_sum", Arity: 1, Fn: builtinIntSum},
	"num_sum": {Name: "num_sum", Arity: 1, Fn: builtinNumSum},
	"len": {Name: "len", Arity: 1, Fn: func(e *Evaluator, args ...Object) (Object, error) {
		arr, err := asArray("len", args[0])
		if err != nil {
			return nil, err
		}
		return &Integer{Value: int64(len(arr.Elements))}, nil
	}},
	"first": {Name: "first", Arity: 1, Fn: func(e *Evaluator, args ...Object) (Object, error) {
		arr, err := asArray("first", args[0])
		if err != nil {
			return nil, err
		}
		if len(arr.Elements) == 0 {
			return &Optional{}, nil
		}
		return &Optional{Value: arr.Elements[0]}, nil
	}},
	"some": {Name: "some", Arity: 1, Fn: func(e *Evaluator, args ...Object) (Object, error) {
		return &Optional{Value: args[0]}, nil
	}},

	"bool_to_int": {Name: "bool_to_int", Arity: 1, Fn: func(e *Evaluator, args ...Object) (Object, error) {
		b, ok := args[0].(*Boolean)
		if !ok {
			return nil, typeError("bool_to_int", "BOOLEAN", args[0])
		}
		if b.Value {
			return &Integer{Value: 1}, nil
		}
		return &Integer{Value: 0}, nil
	}},
	"double": {Name: "double", Arity: 1, Fn: func(e *Evaluator, args ...Object) (Object, error) {
		switch n := args[0].(type) {
		case *Integer:
			return &Integer{Value: 2 * n.Value}, nil
		case *Float:
			return &Float{Value: 2 * n.Value}, nil
		}
		return nil, typeError("double", "INTEGER or FLOAT", args[0])
	}},
	"int_to_num": {Name: "int_to_num", Arity: 1, Fn: func(e *Evaluator, args ...Object) (Object, error) {
		n, err := asInt(args[0])
		if err != nil {
			return nil, err
		}
		return &Float{Value: float64(n)}, nil
	}},
}

func intOp(name string, op func(a, b int64) (int64, error)) *Builtin {
	return &Builtin{Name: name, Arity: 2, Fn: func(e *Evaluator, args ...Object) (Object, error) {
		a, err := asInt(args[0])
		if err != nil {
			return nil, err
		}
		b, err := asInt(args[1])
		if err != nil {
			return nil, err
		}
		n, err := op(a, b)
		if err != nil {
			return nil, err
		}
		return &Integer{Value: n}, nil
	}}
}

func numOp(name string, op func(a, b float64) float64) *Builtin {
	return &Builtin{Name: name, Arity: 2, Fn: func(e *Evaluator, args ...Object) (Object, error) {
		a, err := asNum(args[0])
		if err != nil {
			return nil, err
		}
		b, err := asNum(args[1])
		if err != nil {
			return nil, err
		}
		return &Float{Value: op(a, b)}, nil
	}}
}

func builtinIntSum(e *Evaluator, args ...Object) (Object, error) {
	arr, err := asArray("int_sum", args[0])
	if err != nil {
		return nil, err
	}
	var total int64
	for _, el := range arr.Elements {
		n, err := asInt(el)
		if err != nil {
			return nil, err
		}
		total += n
	}
	return &Integer{Value: total}, nil
}

func builtinNumSum(e *Evaluator, args ...Object) (Object, error) {
	arr, err := asArray("num_sum", args[0])
	if err != nil {
		return nil, err
	}
	var total float64
	for _, el := range arr.Elements {
		f, err := asNum(el)
		if err != nil {
			return nil, err
		}
		total += f
	}
	return &Float{Value: total}, nil
}

func asInt(obj Object) (int64, error) {
	if i, ok := obj.(*Integer); ok {
		return i.Value, nil
	}
	return 0, typeError("int", INTEGER_OBJ, obj)
}

func asNum(obj Object) (float64, error) {
	if f, ok := obj.(*Float); ok {
		return f.Value, nil
	}
	return 0, typeError("num", FLOAT_OBJ, obj)
}

func asArray(name string, obj Object) (*Array, error) {
	if a, ok := obj.(*Array); ok {
		return a, nil
	}
	return nil, typeError(name, ARRAY_OBJ, obj)
}

func typeError(name string, want ObjectType, got Object) error {
	return fmt.Errorf("%s: expected %s, got %s", name, want, got.Type())
}

// Lift adapts b to typed values. The result carries no type; the caller
// retags it with the declared return type.
func (e *Evaluator) Lift(b *Builtin) func(args ...typesystem.Value) (typesystem.Value, error) {
	return func(args ...typesystem.Value) (typesystem.Value, error) {
		objs := make([]Object, len(args))
		for i, a := range args {
			obj, err := Unwrap(a)
			if err != nil {
				return typesystem.Value{}, err
			}
			objs[i] = obj
		}
		out, err := b.Call(e, objs...)
		if err != nil {
			return typesystem.Value{}, err
		}
		return typesystem.Value{Repr: out}, nil
	}
}
