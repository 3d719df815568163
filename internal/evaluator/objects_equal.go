package evaluator

// ObjectsEqual performs a deep equality check between two objects.
func ObjectsEqual(a, b Object) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Type() != b.Type() {
		return false
	}

	switch aVal := a.(type) {
	case *Integer:
		return aVal.Value == b.(*Integer).Value
	case *Float:
		return aVal.Value == b.(*Float).Value
	case *Boolean:
		return aVal.Value == b.(*Boolean).Value
	case *Nil:
		return true
	case *Array:
		return objectsEqualAll(aVal.Elements, b.(*Array).Elements)
	case *Tuple:
		return objectsEqualAll(aVal.Elements, b.(*Tuple).Elements)
	case *Tagged:
		bVal := b.(*Tagged)
		return aVal.Tag == bVal.Tag && ObjectsEqual(aVal.Payload, bVal.Payload)
	case *Optional:
		return ObjectsEqual(aVal.Value, b.(*Optional).Value)
	case *Instance:
		bVal := b.(*Instance)
		return aVal.TypeName == bVal.TypeName && aVal.Ctor == bVal.Ctor && ObjectsEqual(aVal.Payload, bVal.Payload)
	}
	return false
}

func objectsEqualAll(a, b []Object) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !ObjectsEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
