package evaluator

import (
	"fmt"

	"github.com/zsakowitz/rewrites-sub000/internal/typesystem"
)

type ObjectType string

const (
	INTEGER_OBJ  = "INTEGER"
	FLOAT_OBJ    = "FLOAT"
	BOOLEAN_OBJ  = "BOOLEAN"
	NIL_OBJ      = "NIL"
	ARRAY_OBJ    = "ARRAY"
	TUPLE_OBJ    = "TUPLE"
	TAGGED_OBJ   = "TAGGED"
	OPTION_OBJ   = "OPTION"
	INSTANCE_OBJ = "INSTANCE"
)

// Object is the runtime representation the evaluator stores in
// typesystem.Value.Repr.
type Object interface {
	Type() ObjectType
	Inspect() string
}

// Unwrap returns the object behind v.
func Unwrap(v typesystem.Value) (Object, error) {
	obj, ok := v.Repr.(Object)
	if !ok {
		return nil, fmt.Errorf("value %s has no runtime object (%T)", v, v.Repr)
	}
	return obj, nil
}

func mustUnwrap(v typesystem.Value) Object {
	obj, err := Unwrap(v)
	if err != nil {
		panic(err)
	}
	return obj
}
