package typesystem

// Kind is the closed set of type shapes. Every switch over Kind in this
// module lists all of them; add new kinds to each.
type Kind int

const (
	KindNever Kind = iota
	KindBool
	KindInt
	KindNum
	KindNull
	KindArrayEmpty
	KindSym
	KindTuple
	KindArrayFixed
	KindArrayCapped
	KindArrayUnsized
	KindAdt
	KindFn
	KindParam
	KindOption
)

var kindNames = [...]string{
	KindNever:        "Never",
	KindBool:         "Bool",
	KindInt:          "Int",
	KindNum:          "Num",
	KindNull:         "Null",
	KindArrayEmpty:   "ArrayEmpty",
	KindSym:          "Sym",
	KindTuple:        "Tuple",
	KindArrayFixed:   "ArrayFixed",
	KindArrayCapped:  "ArrayCapped",
	KindArrayUnsized: "ArrayUnsized",
	KindAdt:          "Adt",
	KindFn:           "Fn",
	KindParam:        "Param",
	KindOption:       "Option",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsPrimitive reports whether values of the kind are only converted through
// the coercion registry.
func (k Kind) IsPrimitive() bool {
	switch k {
	case KindBool, KindInt, KindNum:
		return true
	}
	return false
}

// IsArray reports whether the kind is one of the sized or unsized array
// kinds. The nullary ArrayEmpty marker is not included.
func (k Kind) IsArray() bool {
	switch k {
	case KindArrayFixed, KindArrayCapped, KindArrayUnsized:
		return true
	}
	return false
}
