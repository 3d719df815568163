package symbols

import (
	"github.com/zsakowitz/rewrites-sub000/internal/overload"
	"github.com/zsakowitz/rewrites-sub000/internal/typesystem"
)

// SymbolTable is one lexical scope. Functions and types declared here
// shadow those of outer scopes by name.
type SymbolTable struct {
	fns   map[string][]*overload.Fn
	types map[string]typesystem.Type
	outer *SymbolTable
	ids   *idCounter
}

// idCounter is shared by a root table and everything enclosed by it, so
// an FnID is unique across the whole tree.
type idCounter struct {
	last typesystem.FnID
}

func (c *idCounter) next() typesystem.FnID {
	c.last++
	return c.last
}

var _ overload.Scope = (*SymbolTable)(nil)
