package overload

import (
	"github.com/zsakowitz/rewrites-sub000/internal/typesystem"
)

// Constraint is a where-clause: some overload of Sig.Name must accept
// Sig.Args and return something that coerces into Sig.Ret.
type Constraint struct {
	Sig FnSignature
}

func NewConstraint(name string, args []typesystem.Type, ret typesystem.Type) *Constraint {
	return &Constraint{Sig: FnSignature{Name: name, Args: args, Ret: ret}}
}

// Matches checks the clause under the current bindings. It may bind
// parameters of fp that appear in the declared return type. The only error
// is running past the resolver's depth limit.
func (c *Constraint) Matches(r *Resolver, fp *typesystem.FnParams) (bool, error) {
	if err := r.enter(c); err != nil {
		return false, err
	}
	defer r.leave()

	args := make([]typesystem.Type, len(c.Sig.Args))
	for i, a := range c.Sig.Args {
		args[i] = a.Apply(fp)
	}
	m, err := r.find(Call{Name: c.Sig.Name}, args)
	if err != nil || m == nil {
		return false, err
	}
	return r.engine.Can(m.Ret, c.Sig.Ret, fp), nil
}
