package overload

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/zsakowitz/rewrites-sub000/internal/coerce"
	"github.com/zsakowitz/rewrites-sub000/internal/config"
	"github.com/zsakowitz/rewrites-sub000/internal/diagnostics"
	"github.com/zsakowitz/rewrites-sub000/internal/typesystem"
)

// Generic is one explicit generic argument at a call site. Exactly one of
// Ty and Const is set, matching the kind of the parameter it binds.
type Generic struct {
	Ty    typesystem.Type
	Const *typesystem.Const
}

// Call identifies a call site.
type Call struct {
	Pos  diagnostics.Position
	Name string
	// Generics bind the callee's parameters in declaration order before
	// any argument is looked at.
	Generics []Generic
}

// Match is a successful resolution.
type Match struct {
	Fn     *Fn
	Params *typesystem.FnParams
	// Ret is the callee's return type specialized by Params.
	Ret typesystem.Type
	// Collected is set when the call-site arguments were packed into the
	// callee's single array parameter.
	Collected bool
	// elem is the element type the arguments were packed as.
	elem typesystem.Type
}

// Resolver resolves calls against one scope.
type Resolver struct {
	scope    Scope
	engine   *coerce.Engine
	reporter diagnostics.Reporter
	logger   *log.Logger
	maxDepth int
	depth    int
}

type Option func(*Resolver)

// WithReporter routes resolution errors through rep.
func WithReporter(rep diagnostics.Reporter) Option {
	return func(r *Resolver) { r.reporter = rep }
}

// WithLogger traces every candidate tried.
func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// WithMaxDepth bounds how deeply where-clauses may nest.
func WithMaxDepth(n int) Option {
	return func(r *Resolver) { r.maxDepth = n }
}

func NewResolver(scope Scope, engine *coerce.Engine, opts ...Option) *Resolver {
	r := &Resolver{
		scope:    scope,
		engine:   engine,
		logger:   log.New(io.Discard, "", 0),
		maxDepth: config.DefaultMaxConstraintDepth,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) Engine() *coerce.Engine { return r.engine }

// Resolve finds the first overload of call.Name accepting args.
func (r *Resolver) Resolve(call Call, args []typesystem.Type) (*Match, error) {
	m, err := r.find(call, args)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, r.noMatch(call, args)
	}
	return m, nil
}

// CallTy returns the type a call with argument types args evaluates to.
func (r *Resolver) CallTy(call Call, args []typesystem.Type) (typesystem.Type, error) {
	m, err := r.Resolve(call, args)
	if err != nil {
		return nil, err
	}
	return m.Ret, nil
}

// CallVal resolves the call, converts every argument into its declared
// type, and runs the implementation.
func (r *Resolver) CallVal(call Call, args []typesystem.Value) (typesystem.Value, error) {
	types := make([]typesystem.Type, len(args))
	for i, a := range args {
		types[i] = a.Ty
	}
	m, err := r.Resolve(call, types)
	if err != nil {
		return typesystem.Value{}, err
	}
	return r.Invoke(m, args)
}

// Invoke runs a match produced by Resolve for the same argument types.
func (r *Resolver) Invoke(m *Match, args []typesystem.Value) (typesystem.Value, error) {
	var (
		converted []typesystem.Value
		err       error
	)
	if m.Collected {
		converted, err = r.collectValues(m, args)
	} else {
		converted, err = r.convertAll(args, m.Fn.Sig.Args, m.Params)
	}
	if err != nil {
		return typesystem.Value{}, err
	}
	if m.Fn.Impl == nil {
		return typesystem.Value{}, fmt.Errorf("%s has no implementation", m.Fn)
	}
	out, err := m.Fn.Impl(converted...)
	if err != nil {
		return typesystem.Value{}, err
	}
	return out.Retag(m.Ret), nil
}

func (r *Resolver) convertAll(args []typesystem.Value, into []typesystem.Type, fp *typesystem.FnParams) ([]typesystem.Value, error) {
	out := make([]typesystem.Value, len(args))
	for i, a := range args {
		v, err := r.engine.Map(a, into[i], fp)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (r *Resolver) find(call Call, args []typesystem.Type) (*Match, error) {
	for _, fn := range r.scope.Lookup(call.Name) {
		m, err := r.try(fn, call.Generics, args)
		if err != nil {
			return nil, err
		}
		if m != nil {
			r.logger.Printf("%s(%s) -> %s [%s]", call.Name, joinTypes(args), fn, m.Params)
			return m, nil
		}
	}
	return nil, nil
}

// try matches one overload, first directly and then, if that fails, with
// the collect fallback.
func (r *Resolver) try(fn *Fn, generics []Generic, args []typesystem.Type) (*Match, error) {
	r.logger.Printf("try %s with (%s)", fn, joinTypes(args))

	fp, ok := r.start(fn, generics)
	if !ok {
		return nil, nil
	}
	// Explicit generics are already bound; substituting them lets
	// arguments coerce into the chosen types.
	declared := specialize(fn.Sig.Args, fp)
	if len(args) == len(declared) && r.canAll(args, declared, fp) {
		ok, err := r.where(fn, fp)
		if err != nil {
			return nil, err
		}
		if ok {
			return &Match{Fn: fn, Params: fp, Ret: fn.Sig.Ret.Apply(fp)}, nil
		}
	}
	if !collectable(fn) {
		return nil, nil
	}
	return r.tryCollect(fn, generics, args)
}

// start makes a fresh binding table with the explicit generics bound.
func (r *Resolver) start(fn *Fn, generics []Generic) (*typesystem.FnParams, bool) {
	fp := fn.Params.Within(r.engine)
	params := fn.Params.Params()
	if len(generics) > len(params) {
		return nil, false
	}
	for i, g := range generics {
		var err error
		if params[i].IsConst() {
			if g.Const == nil {
				return nil, false
			}
			err = fp.BindConst(params[i], g.Const)
		} else {
			if g.Ty == nil {
				return nil, false
			}
			err = fp.Bind(params[i], g.Ty)
		}
		if err != nil {
			r.logger.Printf("  explicit generic: %v", err)
			return nil, false
		}
	}
	return fp, true
}

func specialize(ts []typesystem.Type, fp *typesystem.FnParams) []typesystem.Type {
	out := make([]typesystem.Type, len(ts))
	for i, t := range ts {
		out[i] = t.Apply(fp)
	}
	return out
}

func (r *Resolver) canAll(args, into []typesystem.Type, fp *typesystem.FnParams) bool {
	for i := range args {
		if !r.engine.Can(args[i], into[i], fp) {
			return false
		}
	}
	return true
}

func (r *Resolver) where(fn *Fn, fp *typesystem.FnParams) (bool, error) {
	for _, c := range fn.Where {
		ok, err := c.Matches(r, fp)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (r *Resolver) enter(c *Constraint) error {
	if r.depth >= r.maxDepth {
		return r.issue(diagnostics.ErrR002, diagnostics.Position{},
			fmt.Sprintf("where-clause %s nests deeper than %d", c.Sig, r.maxDepth))
	}
	r.depth++
	return nil
}

func (r *Resolver) leave() { r.depth-- }

func (r *Resolver) noMatch(call Call, args []typesystem.Type) error {
	fns := r.scope.Lookup(call.Name)
	if len(fns) == 0 {
		return r.issue(diagnostics.ErrR001, call.Pos, fmt.Sprintf("no function named %s", call.Name))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "no overload of %s accepts (%s); tried:", call.Name, joinTypes(args))
	for _, fn := range fns {
		b.WriteString("\n  ")
		b.WriteString(fn.String())
	}
	return r.issue(diagnostics.ErrR001, call.Pos, b.String())
}

func (r *Resolver) issue(code diagnostics.ErrorCode, pos diagnostics.Position, msg string) error {
	if r.reporter != nil {
		return r.reporter.Issue(code, pos, msg)
	}
	return diagnostics.NewError(code, pos, msg)
}

func joinTypes(ts []typesystem.Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}
