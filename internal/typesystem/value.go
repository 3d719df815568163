package typesystem

// Value is a typed runtime value. Repr is produced and consumed only by the
// code generation target; the engine never looks inside it.
type Value struct {
	Ty   Type
	Repr any
}

// Retag returns v with its type replaced.
func (v Value) Retag(t Type) Value {
	return Value{Ty: t, Repr: v.Repr}
}

func (v Value) String() string {
	if v.Ty == nil {
		return "<untyped>"
	}
	return "<" + v.Ty.String() + ">"
}
