package diagnostics

// ErrorCode identifies one kind of fault. The first letter names the stage:
// C for the coercion registry, T for types and generics, R for overload
// resolution, P for the prelude manifest and I for internal engine errors.
type ErrorCode string

const (
	ErrC001 ErrorCode = "C001" // coercion cycle
	ErrC002 ErrorCode = "C002" // duplicate explicit coercion
	ErrC003 ErrorCode = "C003" // registry modified after setup

	ErrT001 ErrorCode = "T001" // const generic of a non bool/int type
	ErrT002 ErrorCode = "T002" // generic parameter re-bound inconsistently
	ErrT003 ErrorCode = "T003" // unknown type name

	ErrR001 ErrorCode = "R001" // no matching overload
	ErrR002 ErrorCode = "R002" // where-clause recursion limit

	ErrP001 ErrorCode = "P001" // malformed prelude manifest

	ErrI001 ErrorCode = "I001" // generic parameter read before it was bound
)

var codeTitles = map[ErrorCode]string{
	ErrC001: "coercion cycle",
	ErrC002: "duplicate coercion",
	ErrC003: "registry frozen",
	ErrT001: "invalid const parameter",
	ErrT002: "unification failed",
	ErrT003: "unknown type",
	ErrR001: "no matching overload",
	ErrR002: "constraint depth exceeded",
	ErrP001: "invalid manifest",
	ErrI001: "unresolved parameter",
}

// Title returns a short human-readable name for the code.
func (c ErrorCode) Title() string {
	if t, ok := codeTitles[c]; ok {
		return t
	}
	return "error"
}

// IsInternal reports whether the code denotes an engine bug rather than a
// problem in user code.
func (c ErrorCode) IsInternal() bool {
	return len(c) > 0 && c[0] == 'I'
}
