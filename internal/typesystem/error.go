package typesystem

import (
	"fmt"

	"github.com/zsakowitz/rewrites-sub000/internal/diagnostics"
)

func errInvalidConst(ty Type) error {
	return diagnostics.NewError(diagnostics.ErrT001, diagnostics.Position{},
		fmt.Sprintf("const generics must be bool or int, got %s", ty))
}

func errUnresolved(p *Param) error {
	return diagnostics.NewError(diagnostics.ErrI001, diagnostics.Position{},
		fmt.Sprintf("generic parameter %s was read before it was bound", p.Label()))
}

func errUnify(p *Param, bound, got fmt.Stringer) error {
	return diagnostics.NewError(diagnostics.ErrT002, diagnostics.Position{},
		fmt.Sprintf("generic parameter %s is %s, cannot also be %s", p.Label(), bound, got))
}
