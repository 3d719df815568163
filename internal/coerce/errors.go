package coerce

import (
	"fmt"

	"github.com/zsakowitz/rewrites-sub000/internal/diagnostics"
	"github.com/zsakowitz/rewrites-sub000/internal/typesystem"
)

func errCycle(from, into typesystem.Type) error {
	return diagnostics.NewError(diagnostics.ErrC001, diagnostics.Position{},
		fmt.Sprintf("coercion %s -> %s would make a cycle", from, into))
}

func errDuplicate(from, into typesystem.Type) error {
	return diagnostics.NewError(diagnostics.ErrC002, diagnostics.Position{},
		fmt.Sprintf("coercion %s -> %s is already declared", from, into))
}

func errFrozen(from, into typesystem.Type) error {
	return diagnostics.NewError(diagnostics.ErrC003, diagnostics.Position{},
		fmt.Sprintf("cannot declare coercion %s -> %s after setup", from, into))
}
