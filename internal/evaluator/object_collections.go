package evaluator

import (
	"strings"
)

// Array holds the outermost elements of any array kind. Rows of a
// multi-dimensional fixed array are themselves Arrays.
type Array struct {
	Elements []Object
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }
func (a *Array) Inspect() string  { return "[" + inspectAll(a.Elements) + "]" }

// Tuple represents a heterogeneous immutable collection of objects.
type Tuple struct {
	Elements []Object
}

func (t *Tuple) Type() ObjectType { return TUPLE_OBJ }
func (t *Tuple) Inspect() string {
	if len(t.Elements) == 1 {
		return "(" + t.Elements[0].Inspect() + ",)"
	}
	return "(" + inspectAll(t.Elements) + ")"
}

// Tagged is a Sym value; the tag is always kept at runtime.
type Tagged struct {
	Tag     string
	Payload Object
}

func (t *Tagged) Type() ObjectType { return TAGGED_OBJ }
func (t *Tagged) Inspect() string  { return "@" + t.Tag + "(" + t.Payload.Inspect() + ")" }

// Optional is a possibly absent value.
type Optional struct {
	Value Object // nil when absent
}

func (o *Optional) Type() ObjectType { return OPTION_OBJ }
func (o *Optional) IsSome() bool     { return o.Value != nil }
func (o *Optional) Inspect() string {
	if o.Value == nil {
		return "none"
	}
	return "some(" + o.Value.Inspect() + ")"
}

// Instance is a value of a registered extension type.
type Instance struct {
	TypeName string
	Ctor     string
	Payload  Object
}

func (i *Instance) Type() ObjectType { return INSTANCE_OBJ }
func (i *Instance) Inspect() string {
	return i.TypeName + "." + i.Ctor + "(" + i.Payload.Inspect() + ")"
}

func inspectAll(objs []Object) string {
	parts := make([]string, len(objs))
	for i, o := range objs {
		parts[i] = o.Inspect()
	}
	return strings.Join(parts, ", ")
}
