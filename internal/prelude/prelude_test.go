package prelude_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/zsakowitz/rewrites-sub000/internal/config"
	"github.com/zsakowitz/rewrites-sub000/internal/diagnostics"
	"github.com/zsakowitz/rewrites-sub000/internal/evaluator"
	"github.com/zsakowitz/rewrites-sub000/internal/overload"
	"github.com/zsakowitz/rewrites-sub000/internal/pipeline"
	"github.com/zsakowitz/rewrites-sub000/internal/prelude"
	"github.com/zsakowitz/rewrites-sub000/internal/typesystem"
)

func install(t *testing.T, cfg *config.Config, manifest string) *pipeline.PipelineContext {
	t.Helper()
	ctx := pipeline.NewPipelineContext(cfg, nil)
	if manifest != "" {
		ctx.ManifestPath = "m.yaml"
		ctx.ManifestSource = []byte(manifest)
	}
	return prelude.Install(ctx)
}

func installDefault(t *testing.T) *pipeline.PipelineContext {
	t.Helper()
	ctx := install(t, nil, "")
	if err := ctx.Diagnostics.Err(); err != nil {
		t.Fatalf("installing the default prelude: %v", err)
	}
	return ctx
}

func call(t *testing.T, ctx *pipeline.PipelineContext, name string, args ...typesystem.Value) typesystem.Value {
	t.Helper()
	r := overload.NewResolver(ctx.Scope, ctx.Engine, overload.WithReporter(ctx.Diagnostics))
	v, err := r.CallVal(overload.Call{Name: name}, args)
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	return v
}

// expect checks the type and rendering of v.
func expect(t *testing.T, v typesystem.Value, ty, want string) {
	t.Helper()
	obj, err := evaluator.Unwrap(v)
	if err != nil {
		t.Fatal(err)
	}
	if ty != "" && v.Ty.String() != ty {
		t.Errorf("type = %s, want %s", v.Ty, ty)
	}
	if got := obj.Inspect(); got != want {
		t.Errorf("value = %s, want %s", got, want)
	}
}

func TestDefaultManifestDecodes(t *testing.T) {
	m, err := prelude.DefaultManifest()
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Functions) == 0 || len(m.Coercions) != 2 {
		t.Fatalf("%d functions, %d coercions", len(m.Functions), len(m.Coercions))
	}

	var first *prelude.FunctionSpec
	for i := range m.Functions {
		if m.Functions[i].Name == config.FirstFuncName {
			first = &m.Functions[i]
		}
	}
	if first == nil {
		t.Fatal("first is not declared")
	}
	want := []prelude.GenericSpec{{Name: "T"}, {Name: "N", Const: "int"}}
	if !reflect.DeepEqual(first.Generics, want) {
		t.Errorf("generics = %+v, want %+v", first.Generics, want)
	}
	if first.Args[0].Src != "[T; N]" || first.Args[0].Line <= 0 {
		t.Errorf("arg = %+v", first.Args[0])
	}
}

func TestDefaultPreludeArithmetic(t *testing.T) {
	ctx := installDefault(t)
	ev := ctx.Target

	tests := []struct {
		name     string
		args     []typesystem.Value
		ty, want string
	}{
		{config.AddFuncName, []typesystem.Value{ev.Int(2), ev.Int(3)}, "int", "5"},
		{config.AddFuncName, []typesystem.Value{ev.Int(1), ev.Num(2.5)}, "num", "3.5"},
		{config.AddFuncName, []typesystem.Value{ev.Bool(true), ev.Int(1)}, "int", "2"},
		{config.EqFuncName, []typesystem.Value{ev.Bool(true), ev.Int(1)}, "bool", "true"},
		{config.NegFuncName, []typesystem.Value{ev.Num(1.5)}, "num", "-1.5"},
	}
	for _, tt := range tests {
		expect(t, call(t, ctx, tt.name, tt.args...), tt.ty, tt.want)
	}
}

func TestDefaultPreludeDivisionByZero(t *testing.T) {
	ctx := installDefault(t)
	r := overload.NewResolver(ctx.Scope, ctx.Engine)
	_, err := r.CallVal(overload.Call{Name: config.DivFuncName}, []typesystem.Value{ctx.Target.Int(1), ctx.Target.Int(0)})
	if !errors.Is(err, evaluator.ErrDivisionByZero) {
		t.Errorf("1 / 0 error = %v", err)
	}
}

func TestDefaultPreludeGenerics(t *testing.T) {
	ctx := installDefault(t)
	ev := ctx.Target

	expect(t, call(t, ctx, config.IdentityFuncName, ev.Bool(false)), "bool", "false")
	expect(t, call(t, ctx, config.SumFuncName, ev.Int(1), ev.Int(2), ev.Int(3)), "int", "6")

	arr := ev.ArrayOf([]typesystem.Value{ev.Num(1.5), ev.Num(2)},
		typesystem.NewArrayFixed(typesystem.Num, typesystem.IntConst(2)))
	expect(t, call(t, ctx, config.FirstFuncName, arr), "?num", "some(1.5)")
	expect(t, call(t, ctx, config.LenFuncName, arr), "int", "2")
	expect(t, call(t, ctx, config.SomeFuncName, ev.Int(4)), "?int", "some(4)")
}

func TestDefaultPreludeWhereClause(t *testing.T) {
	ctx := installDefault(t)
	expect(t, call(t, ctx, config.DoubleFuncName, ctx.Target.Num(1.25)), "num", "2.5")

	// +(bool, bool) exists through bool -> int but returns int, not bool.
	r := overload.NewResolver(ctx.Scope, ctx.Engine, overload.WithReporter(ctx.Diagnostics))
	_, err := r.CallTy(overload.Call{Name: config.DoubleFuncName}, []typesystem.Type{typesystem.Bool})
	if !diagnostics.Is(err, diagnostics.ErrR001) {
		t.Errorf("double(bool) error = %v, want R001", err)
	}
}

func TestDefaultPreludeTypes(t *testing.T) {
	ctx := installDefault(t)
	ev := ctx.Target

	ordering, ok := ctx.Scope.ResolveType("Ordering")
	if !ok {
		t.Fatal("Ordering is not declared")
	}
	if !ctx.Engine.Can(typesystem.NewTaggedSym("lt", typesystem.NewTuple()), ordering, nil) {
		t.Error("@lt(()) should coerce into Ordering")
	}
	if ctx.Engine.Can(typesystem.NewTaggedSym("nope", typesystem.NewTuple()), ordering, nil) {
		t.Error("unknown tags should not coerce into Ordering")
	}
	if ordering.Has0() || ordering.Has1() {
		t.Errorf("Ordering has0=%v has1=%v, want neither", ordering.Has0(), ordering.Has1())
	}

	id, ok := ctx.Adts.Lookup("Box")
	if !ok {
		t.Fatal("Box is not declared")
	}
	box := func(arg typesystem.Type) *typesystem.TAdt {
		a, err := ctx.Adts.New(id, []typesystem.Type{arg}, nil)
		if err != nil {
			t.Fatal(err)
		}
		return a
	}
	boxInt, boxNum := box(typesystem.Int), box(typesystem.Num)

	inhabitedness := []struct {
		ty         *typesystem.TAdt
		has0, has1 bool
	}{
		{boxInt, false, false},
		{box(typesystem.Null), false, true},
		{box(typesystem.Never), true, false},
		{box(typesystem.NewTuple(typesystem.Never, typesystem.Int)), true, false},
	}
	for _, tt := range inhabitedness {
		if tt.ty.Has0() != tt.has0 || tt.ty.Has1() != tt.has1 {
			t.Errorf("%s has0=%v has1=%v, want has0=%v has1=%v", tt.ty, tt.ty.Has0(), tt.ty.Has1(), tt.has0, tt.has1)
		}
	}

	sym := typesystem.NewTaggedSym("box", typesystem.Int)
	boxed, err := ctx.Engine.Map(ev.SymJoin("box", ev.Int(7), sym), boxInt, nil)
	if err != nil {
		t.Fatal(err)
	}
	expect(t, boxed, "Box<int>", "Box.box(7)")

	if !ctx.Engine.Can(boxInt, boxNum, nil) || ctx.Engine.Can(boxNum, boxInt, nil) {
		t.Error("Box<T> should follow T's coercions in one direction only")
	}
	widened, err := ctx.Engine.Map(boxed, boxNum, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !typesystem.Equal(widened.Ty, boxNum, nil) {
		t.Errorf("type = %s, want %s", widened.Ty, boxNum)
	}
	obj, err := evaluator.Unwrap(widened)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := obj.(*evaluator.Instance).Payload.(*evaluator.Float); !ok {
		t.Errorf("payload = %s, want a float", obj.Inspect())
	}
}

func TestTypeWithoutConstructors(t *testing.T) {
	ctx := install(t, nil, "types:\n  - name: Void\n")
	if err := ctx.Diagnostics.Err(); err != nil {
		t.Fatal(err)
	}
	void, ok := ctx.Scope.ResolveType("Void")
	if !ok {
		t.Fatal("Void is not declared")
	}
	if !void.Has0() || void.Has1() {
		t.Errorf("Void has0=%v has1=%v, want has0 only", void.Has0(), void.Has1())
	}
}

func TestStrictRegistry(t *testing.T) {
	cfg := config.Default()
	cfg.StrictRegistry = true
	ctx := install(t, cfg, "")
	if err := ctx.Diagnostics.Err(); err != nil {
		t.Fatal(err)
	}
	if !ctx.Engine.Frozen() {
		t.Fatal("registry should be frozen")
	}
	err := ctx.Engine.Add(typesystem.Num, typesystem.NewOption(typesystem.Num), nil)
	if !diagnostics.Is(err, diagnostics.ErrC003) {
		t.Errorf("Add after freeze = %v, want C003", err)
	}
}

func TestPreludeFromConfigPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mini.yaml")
	manifest := "functions:\n  - {name: not, args: [bool], ret: bool, impl: not}\n"
	if err := os.WriteFile(path, []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Prelude = path
	ctx := install(t, cfg, "")
	if err := ctx.Diagnostics.Err(); err != nil {
		t.Fatal(err)
	}
	if got := ctx.Scope.FunctionNames(); !reflect.DeepEqual(got, []string{config.NotFuncName}) {
		t.Errorf("FunctionNames() = %v", got)
	}
}

func TestManifestErrors(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		code     diagnostics.ErrorCode
		contains string
	}{
		{
			name:     "not yaml",
			manifest: "functions: [",
			code:     diagnostics.ErrP001,
		},
		{
			name:     "unknown builtin",
			manifest: "functions:\n  - {name: f, args: [int], ret: int, impl: nope}\n",
			code:     diagnostics.ErrP001,
			contains: `unknown builtin "nope"`,
		},
		{
			name:     "arity mismatch",
			manifest: "functions:\n  - {name: f, args: [int, int], ret: int, impl: not}\n",
			code:     diagnostics.ErrP001,
			contains: "takes 1 argument(s), declared with 2",
		},
		{
			name:     "missing return type",
			manifest: "functions:\n  - {name: f, args: [int]}\n",
			code:     diagnostics.ErrP001,
			contains: "has no return type",
		},
		{
			name:     "bad variance",
			manifest: "functions:\n  - {name: f, generics: [{name: T, variance: sideways}], args: [T], ret: T}\n",
			code:     diagnostics.ErrP001,
			contains: "variance must be invariant or coercible",
		},
		{
			name:     "unknown type",
			manifest: "functions:\n  - {name: f, args: [str], ret: int}\n",
			code:     diagnostics.ErrT003,
			contains: "m.yaml:2:",
		},
		{
			name:     "num const generic",
			manifest: "functions:\n  - {name: f, generics: [{name: N, const: num}], args: [int], ret: int}\n",
			code:     diagnostics.ErrT001,
		},
		{
			name:     "coercion cycle",
			manifest: "coercions:\n  - {from: bool, into: int, impl: bool_to_int}\n  - {from: int, into: bool, impl: bool_to_int}\n",
			code:     diagnostics.ErrC001,
			contains: "m.yaml:3:",
		},
		{
			name:     "duplicate coercion",
			manifest: "coercions:\n  - {from: int, into: num, impl: int_to_num}\n  - {from: int, into: num, impl: int_to_num}\n",
			code:     diagnostics.ErrC002,
		},
		{
			name:     "unknown constructor payload",
			manifest: "types:\n  - name: Wrap\n    ctors:\n      w: Missing\n",
			code:     diagnostics.ErrT003,
			contains: "unknown type Missing",
		},
		{
			name:     "duplicate type",
			manifest: "types:\n  - {name: Wrap}\n  - {name: Wrap}\n",
			code:     diagnostics.ErrP001,
			contains: "m.yaml:3:",
		},
		{
			name:     "type shadows a builtin",
			manifest: "types:\n  - {name: int}\n",
			code:     diagnostics.ErrP001,
			contains: "type int is already declared",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := install(t, nil, tt.manifest)
			err := ctx.Diagnostics.Err()
			if err == nil {
				t.Fatal("expected a diagnostic")
			}
			if code, _ := diagnostics.CodeOf(err); code != tt.code {
				t.Errorf("code = %s, want %s (%v)", code, tt.code, err)
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error = %q, want it to contain %q", err, tt.contains)
			}
			// Later stages must not run after a failure.
			if n := len(ctx.Diagnostics.Errors()); n != 1 {
				t.Errorf("%d diagnostics, want 1", n)
			}
		})
	}
}

func TestGenericShorthand(t *testing.T) {
	m, err := prelude.ParseManifest([]byte(strings.Join([]string{
		"functions:",
		"  - name: pick",
		"    generics: [A, {name: B, variance: coercible}]",
		"    args: [A, B]",
		"    ret: B",
	}, "\n")), "g.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Functions) != 1 {
		t.Fatalf("%d functions", len(m.Functions))
	}
	want := []prelude.GenericSpec{{Name: "A"}, {Name: "B", Variance: "coercible"}}
	if !reflect.DeepEqual(m.Functions[0].Generics, want) {
		t.Errorf("generics = %+v, want %+v", m.Functions[0].Generics, want)
	}
	if line := m.Functions[0].Args[0].Line; line != 4 {
		t.Errorf("arg line = %d, want 4", line)
	}
}
