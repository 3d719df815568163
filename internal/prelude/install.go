package prelude

import (
	"errors"
	"fmt"

	"github.com/zsakowitz/rewrites-sub000/internal/coerce"
	"github.com/zsakowitz/rewrites-sub000/internal/diagnostics"
	"github.com/zsakowitz/rewrites-sub000/internal/evaluator"
	"github.com/zsakowitz/rewrites-sub000/internal/overload"
	"github.com/zsakowitz/rewrites-sub000/internal/pipeline"
	"github.com/zsakowitz/rewrites-sub000/internal/typesystem"
)

// installer carries the decoded manifest between the setup stages.
type installer struct {
	manifest *Manifest
	path     string
}

// Processors returns the setup stages that install a prelude, in order:
// load the manifest, declare its types, register its coercions, declare
// its functions and finally seal the registry. A stage does nothing once
// an earlier one has failed.
func Processors() []pipeline.Processor {
	in := &installer{}
	return []pipeline.Processor{
		pipeline.ProcessorFunc(in.load),
		pipeline.ProcessorFunc(in.declareTypes),
		pipeline.ProcessorFunc(in.installCoercions),
		pipeline.ProcessorFunc(in.declareFunctions),
		pipeline.ProcessorFunc(in.seal),
	}
}

// Install runs every prelude stage on ctx.
func Install(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	return pipeline.New(Processors()...).Run(ctx)
}

func report(ctx *pipeline.PipelineContext, pos diagnostics.Position, err error) {
	var de *diagnostics.DiagnosticError
	if errors.As(err, &de) {
		if !de.Pos.IsValid() && pos.IsValid() {
			de.Pos = pos
		}
		ctx.Diagnostics.Add(de)
		return
	}
	ctx.Diagnostics.Issue(diagnostics.ErrP001, pos, err.Error())
}

func (in *installer) load(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Failed() {
		return ctx
	}
	var (
		m   *Manifest
		err error
	)
	switch {
	case len(ctx.ManifestSource) > 0:
		in.path = ctx.ManifestPath
		if in.path == "" {
			in.path = "<input>"
		}
		m, err = ParseManifest(ctx.ManifestSource, in.path)
	case ctx.Config.Prelude != "":
		in.path = ctx.Config.Prelude
		m, err = LoadManifest(in.path)
	default:
		in.path = DefaultManifestPath
		m, err = DefaultManifest()
	}
	if err != nil {
		report(ctx, diagnostics.Position{File: in.path}, err)
		return ctx
	}
	in.manifest = m
	ctx.Logger.Printf("prelude: loaded %s (%d types, %d coercions, %d functions)",
		in.path, len(m.Types), len(m.Coercions), len(m.Functions))
	return ctx
}

func (in *installer) env(ctx *pipeline.PipelineContext, params map[string]*typesystem.Param) *typeEnv {
	return &typeEnv{params: params, resolve: ctx.Scope.ResolveType, adts: ctx.Adts}
}

func (in *installer) exprPos(e TypeExpr) diagnostics.Position {
	return diagnostics.Position{File: in.path, Line: e.Line, Column: e.Column}
}

// declareParams creates the generic parameters of one declaration and
// records them in templ.
func declareParams(specs []GenericSpec, templ *typesystem.FnParamsTempl) (map[string]*typesystem.Param, error) {
	params := make(map[string]*typesystem.Param, len(specs))
	for _, g := range specs {
		variance := typesystem.Invariant
		if g.Variance == typesystem.Coercible.String() {
			variance = typesystem.Coercible
		}
		if g.Const == "" {
			p := typesystem.NewTypeParam(g.Name)
			templ.Set(p, variance)
			params[g.Name] = p
			continue
		}
		ty, err := constType(g.Const)
		if err != nil {
			return nil, err
		}
		p, err := typesystem.NewConstParam(g.Name, ty)
		if err != nil {
			return nil, err
		}
		if err := templ.SetConst(p, variance, ty); err != nil {
			return nil, err
		}
		params[g.Name] = p
	}
	return params, nil
}

func (in *installer) declareTypes(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Failed() || in.manifest == nil {
		return ctx
	}
	for _, t := range []typesystem.Type{typesystem.Never, typesystem.Bool, typesystem.Int, typesystem.Num, typesystem.Null} {
		ctx.Scope.DefineType(t.String(), t)
	}
	for _, spec := range in.manifest.Types {
		if err := in.declareType(ctx, spec); err != nil {
			report(ctx, spec.Pos, err)
			return ctx
		}
	}
	return ctx
}

func (in *installer) declareType(ctx *pipeline.PipelineContext, spec TypeSpec) error {
	if _, dup := ctx.Adts.Lookup(spec.Name); dup || ctx.Scope.IsDefinedLocally(spec.Name) {
		return fmt.Errorf("type %s is already declared", spec.Name)
	}
	templ := typesystem.NewFnParamsTempl()
	params, err := declareParams(spec.Generics, templ)
	if err != nil {
		return err
	}
	def := &typesystem.AdtDef{Name: spec.Name, Ctors: make(map[string]*typesystem.AdtCtor)}
	if len(spec.Generics) > 0 {
		g := &typesystem.AdtGenerics{}
		for _, p := range templ.Params() {
			v := typesystem.Invariant
			if spec.variance(p.Label()) == typesystem.Coercible.String() {
				v = typesystem.Coercible
			}
			if p.IsConst() {
				g.Consts = append(g.Consts, typesystem.ConstGeneric{Variance: v, Ty: p.ConstType()})
			} else {
				g.Types = append(g.Types, v)
			}
		}
		g.Coerce = coerceInstance(ctx.Engine, ctx.Target, def)
		def.Generics = g
	}
	id, err := ctx.Adts.Register(def)
	if err != nil {
		return err
	}

	// Payloads are parsed after registration so a constructor may mention
	// the type being declared.
	env := in.env(ctx, params)
	payloads := make(map[string]typesystem.Type, len(spec.Ctors))
	for tag, expr := range spec.Ctors {
		payload, err := parseType(env, expr, in.path)
		if err != nil {
			return err
		}
		payloads[tag] = payload
	}
	ordered := templ.Params()
	for tag, payload := range payloads {
		def.Ctors[tag] = &typesystem.AdtCtor{
			Payload: func(into *typesystem.TAdt) typesystem.Type {
				return instantiate(templ, ordered, payload, into)
			},
			Build: func(v typesystem.Value, into *typesystem.TAdt) typesystem.Value {
				return ctx.Target.Construct(def.Name, tag, v, into)
			},
		}
	}
	def.Has0, def.Has1 = inhabitedness(def)

	if def.IsPlain() {
		ctx.Scope.DefineType(spec.Name, ctx.Adts.Plain(id))
	}
	ctx.Logger.Printf("prelude: type %s with %d constructor(s)", spec.Name, len(def.Ctors))
	return nil
}

func (s TypeSpec) variance(name string) string {
	for _, g := range s.Generics {
		if g.Name == name {
			return g.Variance
		}
	}
	return ""
}

// instantiate substitutes the generic arguments of into for the declared
// parameters in payload.
func instantiate(templ *typesystem.FnParamsTempl, params []*typesystem.Param, payload typesystem.Type, into *typesystem.TAdt) typesystem.Type {
	fp := templ.Within(nil)
	types, consts := into.TypeArgs(), into.ConstArgs()
	var ti, ci int
	for _, p := range params {
		if p.IsConst() {
			if ci < len(consts) {
				fp.SetConst(p, consts[ci])
			}
			ci++
			continue
		}
		if ti < len(types) {
			fp.SetTy(p, types[ti])
		}
		ti++
	}
	return payload.Apply(fp)
}

// inhabitedness derives Has0 and Has1 from the constructors. A type has
// no values when every constructor's payload has none, which includes a
// type without constructors. A type with a single constructor whose
// payload has exactly one value has exactly one value. A constructor
// mentioning its own type counts as inhabited and as having more than one.
func inhabitedness(def *typesystem.AdtDef) (has0, has1 func(*typesystem.TAdt) bool) {
	var busy bool
	has0 = func(t *typesystem.TAdt) bool {
		if busy {
			return false
		}
		busy = true
		defer func() { busy = false }()
		for _, ctor := range def.Ctors {
			if !ctor.Payload(t).Has0() {
				return false
			}
		}
		return true
	}
	has1 = func(t *typesystem.TAdt) bool {
		if len(def.Ctors) != 1 || busy {
			return false
		}
		busy = true
		defer func() { busy = false }()
		for _, ctor := range def.Ctors {
			return ctor.Payload(t).Has1()
		}
		return false
	}
	return has0, has1
}

// coerceInstance converts between two instances of one generic type by
// converting the payload under the target's constructor.
func coerceInstance(engine *coerce.Engine, ev *evaluator.Evaluator, def *typesystem.AdtDef) func(typesystem.Value, *typesystem.TAdt, *typesystem.FnParams) (typesystem.Value, error) {
	return func(v typesystem.Value, into *typesystem.TAdt, fp *typesystem.FnParams) (typesystem.Value, error) {
		tag, payload, err := ev.Deconstruct(v)
		if err != nil {
			return typesystem.Value{}, err
		}
		ctor, ok := def.Ctors[tag]
		if !ok {
			return typesystem.Value{}, diagnostics.Errorf(diagnostics.ErrI001, diagnostics.Position{},
				"%s has no constructor %s", def.Name, tag)
		}
		from, ok := v.Ty.(*typesystem.TAdt)
		if !ok {
			return typesystem.Value{}, diagnostics.Errorf(diagnostics.ErrI001, diagnostics.Position{},
				"%s is not an instance of %s", v.Ty, def.Name)
		}
		mapped, err := engine.Map(payload.Retag(ctor.Payload(from)), ctor.Payload(into), fp)
		if err != nil {
			return typesystem.Value{}, err
		}
		return ctor.Build(mapped, into), nil
	}
}

func (in *installer) installCoercions(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Failed() || in.manifest == nil {
		return ctx
	}
	env := in.env(ctx, nil)
	for _, spec := range in.manifest.Coercions {
		pos := in.exprPos(spec.From)
		from, err := parseType(env, spec.From, in.path)
		if err != nil {
			report(ctx, pos, err)
			return ctx
		}
		into, err := parseType(env, spec.Into, in.path)
		if err != nil {
			report(ctx, pos, err)
			return ctx
		}
		b, err := lookupBuiltin(spec.Impl, 1)
		if err != nil {
			report(ctx, pos, err)
			return ctx
		}
		lifted := ctx.Target.Lift(b)
		convert := func(v typesystem.Value) (typesystem.Value, error) { return lifted(v) }
		if err := ctx.Engine.Add(from, into, convert); err != nil {
			report(ctx, pos, err)
			return ctx
		}
	}
	return ctx
}

func (in *installer) declareFunctions(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Failed() || in.manifest == nil {
		return ctx
	}
	for _, spec := range in.manifest.Functions {
		fn, err := in.function(ctx, spec)
		if err == nil {
			err = ctx.Scope.DefineFn(fn)
		}
		if err != nil {
			report(ctx, in.exprPos(spec.Ret), err)
			return ctx
		}
		ctx.Logger.Printf("prelude: declared %s", fn)
	}
	return ctx
}

func (in *installer) function(ctx *pipeline.PipelineContext, spec FunctionSpec) (*overload.Fn, error) {
	templ := typesystem.NewFnParamsTempl()
	params, err := declareParams(spec.Generics, templ)
	if err != nil {
		return nil, err
	}
	env := in.env(ctx, params)
	args, err := in.parseAll(env, spec.Args)
	if err != nil {
		return nil, err
	}
	ret, err := parseType(env, spec.Ret, in.path)
	if err != nil {
		return nil, err
	}
	fn := &overload.Fn{
		Sig:    overload.FnSignature{Name: spec.Name, Args: args, Ret: ret},
		Params: templ,
	}
	for _, w := range spec.Where {
		cargs, err := in.parseAll(env, w.Args)
		if err != nil {
			return nil, err
		}
		cret, err := parseType(env, w.Ret, in.path)
		if err != nil {
			return nil, err
		}
		fn.Where = append(fn.Where, overload.NewConstraint(w.Name, cargs, cret))
	}
	if spec.Impl != "" {
		b, err := lookupBuiltin(spec.Impl, len(args))
		if err != nil {
			return nil, err
		}
		fn.Impl = ctx.Target.Lift(b)
	}
	return fn, nil
}

func (in *installer) parseAll(env *typeEnv, exprs []TypeExpr) ([]typesystem.Type, error) {
	out := make([]typesystem.Type, len(exprs))
	for i, e := range exprs {
		t, err := parseType(env, e, in.path)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func lookupBuiltin(name string, arity int) (*evaluator.Builtin, error) {
	b, ok := evaluator.Builtins[name]
	if !ok {
		return nil, diagnostics.Errorf(diagnostics.ErrP001, diagnostics.Position{}, "unknown builtin %q", name)
	}
	if b.Arity != arity {
		return nil, diagnostics.Errorf(diagnostics.ErrP001, diagnostics.Position{},
			"builtin %s takes %d argument(s), declared with %d", name, b.Arity, arity)
	}
	return b, nil
}

func (in *installer) seal(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Failed() || in.manifest == nil {
		return ctx
	}
	if ctx.Config.StrictRegistry {
		ctx.Engine.Freeze()
		ctx.Logger.Printf("prelude: coercion registry frozen")
	}
	return ctx
}
