package config

// Built-in type names, as written in prelude manifests and rendered by
// typesystem String methods.
const (
	NeverTypeName      = "never"
	BoolTypeName       = "bool"
	IntTypeName        = "int"
	NumTypeName        = "num"
	NullTypeName       = "null"
	ArrayEmptyTypeName = "[]"
)

// Built-in function names installed by the default prelude.
const (
	AddFuncName      = "+"
	SubFuncName      = "-"
	MulFuncName      = "*"
	DivFuncName      = "/"
	EqFuncName       = "=="
	NegFuncName      = "neg"
	NotFuncName      = "not"
	IdentityFuncName = "identity"
	SumFuncName      = "sum"
	LenFuncName      = "len"
	FirstFuncName    = "first"
	SomeFuncName     = "some"
	DoubleFuncName   = "double"
)

// Defaults applied when a config file omits a field.
const (
	DefaultMaxConstraintDepth = 64
	DefaultColor              = "auto"
)

// ConfigFileNames are searched, in order, by FindConfig.
var ConfigFileNames = []string{"tyco.yaml", "tyco.yml"}
