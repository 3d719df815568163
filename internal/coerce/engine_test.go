package coerce

import (
	"bytes"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/zsakowitz/rewrites-sub000/internal/diagnostics"
	"github.com/zsakowitz/rewrites-sub000/internal/evaluator"
	"github.com/zsakowitz/rewrites-sub000/internal/typesystem"
)

func lift(ev *evaluator.Evaluator, name string) ConvertFunc {
	f := ev.Lift(evaluator.Builtins[name])
	return func(v typesystem.Value) (typesystem.Value, error) { return f(v) }
}

// newEngine returns an engine with bool -> int and int -> num declared.
func newEngine(t *testing.T) (*Engine, *evaluator.Evaluator) {
	t.Helper()
	ev := evaluator.New()
	e := New(ev)
	if err := e.Add(typesystem.Int, typesystem.Num, lift(ev, "int_to_num")); err != nil {
		t.Fatalf("Add(int, num): %v", err)
	}
	if err := e.Add(typesystem.Bool, typesystem.Int, lift(ev, "bool_to_int")); err != nil {
		t.Fatalf("Add(bool, int): %v", err)
	}
	return e, ev
}

func assertObject(t *testing.T, got typesystem.Value, want evaluator.Object) {
	t.Helper()
	obj, err := evaluator.Unwrap(got)
	if err != nil {
		t.Fatal(err)
	}
	if !evaluator.ObjectsEqual(obj, want) {
		t.Errorf("got %s, want %s\n%s", obj.Inspect(), want.Inspect(), spew.Sdump(got))
	}
}

func TestReflexive(t *testing.T) {
	e, _ := newEngine(t)
	types := []typesystem.Type{
		typesystem.Int,
		typesystem.Null,
		typesystem.NewTuple(typesystem.Int, typesystem.Bool),
		typesystem.NewArrayFixed(typesystem.Num, typesystem.IntConst(3)),
		typesystem.NewOption(typesystem.NewArrayUnsized(typesystem.Bool)),
		typesystem.NewParamType(typesystem.NewTypeParam("T")),
	}
	for _, ty := range types {
		if !e.Can(ty, ty, nil) {
			t.Errorf("Can(%s, %s) = false", ty, ty)
		}
	}
	if !e.Can(typesystem.Never, typesystem.NewTuple(typesystem.Int), nil) {
		t.Errorf("never should coerce into anything")
	}
}

func TestTransitivity(t *testing.T) {
	e, ev := newEngine(t)

	if !e.Can(typesystem.Bool, typesystem.Num, nil) {
		t.Fatalf("Can(bool, num) = false, want derived coercion")
	}
	if e.Can(typesystem.Num, typesystem.Bool, nil) {
		t.Errorf("Can(num, bool) = true")
	}

	targets := e.Targets(typesystem.Bool)
	if len(targets) != 2 {
		t.Fatalf("Targets(bool) = %v", targets)
	}
	if targets[0].Into != typesystem.Int || targets[1].Into != typesystem.Num {
		t.Errorf("Targets(bool) order = %v, want int before num", targets)
	}
	if targets[0].Auto || !targets[1].Auto {
		t.Errorf("bool -> int is explicit and bool -> num derived: %v", targets)
	}

	got, err := e.Map(ev.Bool(true), typesystem.Num, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Ty != typesystem.Num {
		t.Errorf("result type = %s, want num", got.Ty)
	}

	step, err := e.Map(ev.Bool(true), typesystem.Int, nil)
	if err != nil {
		t.Fatal(err)
	}
	step, err = e.Map(step, typesystem.Num, nil)
	if err != nil {
		t.Fatal(err)
	}
	assertObject(t, got, mustUnwrap(t, step))
	assertObject(t, got, &evaluator.Float{Value: 1})
}

func TestSelfCoercion(t *testing.T) {
	e, ev := newEngine(t)

	err := e.Add(typesystem.Int, typesystem.Int, lift(ev, "identity"))
	if !diagnostics.Is(err, diagnostics.ErrC001) {
		t.Errorf("Add(int, int) error = %v, want C001", err)
	}

	err = e.Add(typesystem.Num, typesystem.Bool, lift(ev, "identity"))
	if !diagnostics.Is(err, diagnostics.ErrC001) {
		t.Errorf("closing a cycle error = %v, want C001", err)
	}
	if e.Can(typesystem.Num, typesystem.Bool, nil) {
		t.Errorf("a rejected coercion must not be registered")
	}
}

func TestDuplicateAndExplicitWins(t *testing.T) {
	e, ev := newEngine(t)

	err := e.Add(typesystem.Int, typesystem.Num, lift(ev, "int_to_num"))
	if !diagnostics.Is(err, diagnostics.ErrC002) {
		t.Errorf("duplicate error = %v, want C002", err)
	}

	custom := func(v typesystem.Value) (typesystem.Value, error) {
		return ev.Num(42), nil
	}
	if err := e.Add(typesystem.Bool, typesystem.Num, custom); err != nil {
		t.Fatalf("explicit edge over a derived one: %v", err)
	}
	for _, c := range e.Targets(typesystem.Bool) {
		if c.Into == typesystem.Num && c.Auto {
			t.Errorf("bool -> num is still auto")
		}
	}
	got, err := e.Map(ev.Bool(false), typesystem.Num, nil)
	if err != nil {
		t.Fatal(err)
	}
	assertObject(t, got, &evaluator.Float{Value: 42})

	err = e.Add(typesystem.Bool, typesystem.Num, custom)
	if !diagnostics.Is(err, diagnostics.ErrC002) {
		t.Errorf("second explicit bool -> num error = %v, want C002", err)
	}
}

func TestFreeze(t *testing.T) {
	e, ev := newEngine(t)
	e.Freeze()
	err := e.Add(typesystem.Null, typesystem.Int, lift(ev, "identity"))
	if !diagnostics.Is(err, diagnostics.ErrC003) {
		t.Errorf("Add after Freeze error = %v, want C003", err)
	}
	if !e.Can(typesystem.Bool, typesystem.Num, nil) {
		t.Errorf("queries still work after Freeze")
	}
}

func TestArraySizes(t *testing.T) {
	e, _ := newEngine(t)
	n := typesystem.IntConst
	fixed := func(el typesystem.Type, d ...int64) typesystem.Type {
		dims := make([]*typesystem.Const, len(d))
		for i, x := range d {
			dims[i] = n(x)
		}
		return typesystem.NewArrayFixed(el, dims...)
	}
	capped := func(el typesystem.Type, c int64) typesystem.Type { return typesystem.NewArrayCapped(el, n(c)) }
	unsized := typesystem.NewArrayUnsized
	i := typesystem.Int

	tests := []struct {
		name       string
		from, into typesystem.Type
		want       bool
	}{
		{"fixed same", fixed(i, 3), fixed(i, 3), true},
		{"fixed other length", fixed(i, 3), fixed(i, 4), false},
		{"fixed into larger cap", fixed(i, 3), capped(i, 4), true},
		{"fixed into equal cap", fixed(i, 3), capped(i, 3), true},
		{"fixed into smaller cap", fixed(i, 3), capped(i, 2), false},
		{"fixed into unsized", fixed(i, 3), unsized(i), true},
		{"rank 2 into unsized", fixed(i, 2, 3), unsized(i), false},
		{"capped grows", capped(i, 3), capped(i, 5), true},
		{"capped same", capped(i, 3), capped(i, 3), true},
		{"capped widens element", capped(typesystem.Bool, 2), capped(typesystem.Num, 2), true},
		{"capped shrinks", capped(i, 3), capped(i, 2), false},
		{"capped into unsized", capped(i, 3), unsized(i), true},
		{"capped into fixed", capped(i, 3), fixed(i, 3), false},
		{"unsized into fixed", unsized(i), fixed(i, 3), false},
		{"unsized into capped", unsized(i), capped(i, 3), false},
		{"empty into fixed 0", typesystem.ArrayEmpty, fixed(i, 0), true},
		{"empty into fixed 1", typesystem.ArrayEmpty, fixed(i, 1), false},
		{"empty into capped", typesystem.ArrayEmpty, capped(i, 0), true},
		{"empty into unsized", typesystem.ArrayEmpty, unsized(i), true},
		{"element coercion", fixed(typesystem.Bool, 3), unsized(typesystem.Num), true},
		{"element mismatch", fixed(typesystem.Num, 3), unsized(typesystem.Bool), false},
		{"rank 2 rows", fixed(typesystem.Bool, 2, 3), fixed(typesystem.Num, 2, 3), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Can(tt.from, tt.into, nil); got != tt.want {
				t.Errorf("Can(%s, %s) = %v, want %v", tt.from, tt.into, got, tt.want)
			}
		})
	}
}

func TestMapArray(t *testing.T) {
	e, ev := newEngine(t)
	from := typesystem.NewArrayFixed(typesystem.Bool, typesystem.IntConst(2))
	v := ev.ArrayOf([]typesystem.Value{ev.Bool(true), ev.Bool(false)}, from)

	into := typesystem.NewArrayUnsized(typesystem.Num)
	got, err := e.Map(v, into, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Ty != into {
		t.Errorf("type = %s, want %s", got.Ty, into)
	}
	assertObject(t, got, &evaluator.Array{Elements: []evaluator.Object{
		&evaluator.Float{Value: 1}, &evaluator.Float{Value: 0},
	}})

	empty, err := e.Map(ev.EmptyArray(), into, nil)
	if err != nil {
		t.Fatal(err)
	}
	assertObject(t, empty, &evaluator.Array{Elements: []evaluator.Object{}})
}

func TestParamBinding(t *testing.T) {
	e, _ := newEngine(t)
	tp := typesystem.NewTypeParam("T")
	np, err := typesystem.NewConstParam("N", typesystem.Int)
	if err != nil {
		t.Fatal(err)
	}
	templ := typesystem.NewFnParamsTempl().Set(tp, typesystem.Invariant).Set(np, typesystem.Invariant)

	fp := templ.Within(e)
	from := typesystem.NewArrayFixed(typesystem.Bool, typesystem.IntConst(3))
	into := typesystem.NewArrayFixed(typesystem.NewParamType(tp), typesystem.ParamConst(np))
	if !e.Can(from, into, fp) {
		t.Fatalf("Can(%s, %s) = false", from, into)
	}
	if got := fp.String(); got != "T = bool, N = 3" {
		t.Errorf("bindings = %q", got)
	}

	fp = templ.Within(e)
	pair := typesystem.NewTuple(typesystem.NewParamType(tp), typesystem.NewParamType(tp))
	if e.Can(typesystem.NewTuple(typesystem.Bool, typesystem.Int), pair, fp) {
		t.Errorf("invariant T cannot be both bool and int")
	}

	cov := typesystem.NewFnParamsTempl().Set(tp, typesystem.Coercible)
	fp = cov.Within(e)
	if !e.Can(typesystem.NewTuple(typesystem.Int, typesystem.Bool), pair, fp) {
		t.Errorf("coercible T = int should accept bool")
	}
}

func TestOption(t *testing.T) {
	e, ev := newEngine(t)
	optInt := typesystem.NewOption(typesystem.Int)
	optNum := typesystem.NewOption(typesystem.Num)

	tests := []struct {
		from, into typesystem.Type
		want       bool
	}{
		{typesystem.Null, optInt, true},
		{typesystem.Int, optNum, true},
		{typesystem.NewOption(typesystem.Bool), optNum, true},
		{optNum, optInt, false},
		{optInt, typesystem.Int, false},
	}
	for _, tt := range tests {
		if got := e.Can(tt.from, tt.into, nil); got != tt.want {
			t.Errorf("Can(%s, %s) = %v, want %v", tt.from, tt.into, got, tt.want)
		}
	}

	some, err := e.Map(ev.Int(2), optNum, nil)
	if err != nil {
		t.Fatal(err)
	}
	assertObject(t, some, &evaluator.Optional{Value: &evaluator.Float{Value: 2}})

	none, err := e.Map(ev.Null(), optInt, nil)
	if err != nil {
		t.Fatal(err)
	}
	assertObject(t, none, &evaluator.Optional{})

	wrapped := ev.OptionSome(ev.Bool(true), typesystem.NewOption(typesystem.Bool))
	mapped, err := e.Map(wrapped, optNum, nil)
	if err != nil {
		t.Fatal(err)
	}
	assertObject(t, mapped, &evaluator.Optional{Value: &evaluator.Float{Value: 1}})
}

func TestSym(t *testing.T) {
	e, ev := newEngine(t)
	tagged := func(tag string, p typesystem.Type) typesystem.Type { return typesystem.NewTaggedSym(tag, p) }

	tests := []struct {
		name       string
		from, into typesystem.Type
		want       bool
	}{
		{"payload widens", tagged("a", typesystem.Bool), tagged("a", typesystem.Int), true},
		{"tag mismatch", tagged("a", typesystem.Int), tagged("b", typesystem.Int), false},
		{"forget tag", tagged("a", typesystem.Int), typesystem.NewSym(typesystem.Num), true},
		{"invent tag", typesystem.NewSym(typesystem.Int), tagged("a", typesystem.Int), false},
	}
	for _, tt := range tests {
		if got := e.Can(tt.from, tt.into, nil); got != tt.want {
			t.Errorf("%s: Can(%s, %s) = %v, want %v", tt.name, tt.from, tt.into, got, tt.want)
		}
	}

	from := tagged("a", typesystem.Bool)
	v := ev.SymJoin("a", ev.Bool(true), from)
	got, err := e.Map(v, typesystem.NewSym(typesystem.Num), nil)
	if err != nil {
		t.Fatal(err)
	}
	assertObject(t, got, &evaluator.Tagged{Tag: "a", Payload: &evaluator.Float{Value: 1}})
}

func TestAdt(t *testing.T) {
	e, ev := newEngine(t)
	reg := typesystem.NewAdtRegistry()

	meters, err := reg.Register(&typesystem.AdtDef{
		Name: "Meters",
		Ctors: map[string]*typesystem.AdtCtor{
			"m": {
				Payload: func(*typesystem.TAdt) typesystem.Type { return typesystem.Num },
				Build: func(p typesystem.Value, into *typesystem.TAdt) typesystem.Value {
					obj, _ := evaluator.Unwrap(p)
					return typesystem.Value{Ty: into, Repr: &evaluator.Instance{TypeName: "Meters", Ctor: "m", Payload: obj}}
				},
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	m := reg.Plain(meters)

	sym := typesystem.NewTaggedSym("m", typesystem.Int)
	if !e.Can(sym, m, nil) {
		t.Fatalf("Can(%s, Meters) = false", sym)
	}
	if e.Can(typesystem.NewTaggedSym("km", typesystem.Int), m, nil) {
		t.Errorf("unknown constructor tag should not coerce")
	}
	got, err := e.Map(ev.SymJoin("m", ev.Int(3), sym), m, nil)
	if err != nil {
		t.Fatal(err)
	}
	assertObject(t, got, &evaluator.Instance{TypeName: "Meters", Ctor: "m", Payload: &evaluator.Float{Value: 3}})

	if err := e.Add(m, typesystem.Num, func(v typesystem.Value) (typesystem.Value, error) {
		inst := mustUnwrap(t, v).(*evaluator.Instance)
		return typesystem.Value{Repr: inst.Payload}, nil
	}); err != nil {
		t.Fatal(err)
	}
	if !e.Can(m, typesystem.Num, nil) {
		t.Errorf("plain adt should use the registry")
	}

	box, err := reg.Register(&typesystem.AdtDef{
		Name: "Box",
		Generics: &typesystem.AdtGenerics{
			Types: []typesystem.Variance{typesystem.Coercible},
			Coerce: func(v typesystem.Value, into *typesystem.TAdt, fp *typesystem.FnParams) (typesystem.Value, error) {
				return v.Retag(into), nil
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	cell, err := reg.Register(&typesystem.AdtDef{
		Name:     "Cell",
		Generics: &typesystem.AdtGenerics{Types: []typesystem.Variance{typesystem.Invariant}},
	})
	if err != nil {
		t.Fatal(err)
	}
	inst := func(id typesystem.AdtID, arg typesystem.Type) typesystem.Type {
		a, err := reg.New(id, []typesystem.Type{arg}, nil)
		if err != nil {
			t.Fatal(err)
		}
		return a
	}
	if !e.Can(inst(box, typesystem.Bool), inst(box, typesystem.Num), nil) {
		t.Errorf("coercible Box<bool> -> Box<num> = false")
	}
	if e.Can(inst(cell, typesystem.Bool), inst(cell, typesystem.Num), nil) {
		t.Errorf("invariant Cell<bool> -> Cell<num> = true")
	}
	if e.Can(inst(box, typesystem.Bool), inst(cell, typesystem.Bool), nil) {
		t.Errorf("different families should not coerce")
	}
}

func TestConstGenerics(t *testing.T) {
	e, _ := newEngine(t)
	reg := typesystem.NewAdtRegistry()
	// Vec<T, Cap, Rows>: Cap may grow, Rows may not change.
	vec, err := reg.Register(&typesystem.AdtDef{
		Name: "Vec",
		Generics: &typesystem.AdtGenerics{
			Types: []typesystem.Variance{typesystem.Coercible},
			Consts: []typesystem.ConstGeneric{
				{Variance: typesystem.Coercible, Ty: typesystem.Int},
				{Variance: typesystem.Invariant, Ty: typesystem.Int},
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	inst := func(elem typesystem.Type, capacity, rows int64) typesystem.Type {
		a, err := reg.New(vec, []typesystem.Type{elem}, []*typesystem.Const{typesystem.IntConst(capacity), typesystem.IntConst(rows)})
		if err != nil {
			t.Fatal(err)
		}
		return a
	}
	b, n := typesystem.Bool, typesystem.Num

	tests := []struct {
		name       string
		from, into typesystem.Type
		want       bool
	}{
		{"same", inst(b, 2, 3), inst(b, 2, 3), true},
		{"coercible const grows", inst(b, 2, 3), inst(n, 4, 3), true},
		{"coercible const shrinks", inst(b, 5, 3), inst(n, 4, 3), false},
		{"invariant const differs", inst(b, 2, 3), inst(n, 4, 4), false},
		{"element narrows", inst(n, 2, 3), inst(b, 2, 3), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Can(tt.from, tt.into, nil); got != tt.want {
				t.Errorf("Can(%s, %s) = %v, want %v", tt.from, tt.into, got, tt.want)
			}
		})
	}
}

func TestMapTuple(t *testing.T) {
	e, ev := newEngine(t)
	from := typesystem.NewTuple(typesystem.Bool, typesystem.Int)
	into := typesystem.NewTuple(typesystem.Int, typesystem.Num)
	if !e.Can(from, into, nil) {
		t.Fatalf("Can(%s, %s) = false", from, into)
	}
	if e.Can(from, typesystem.NewTuple(typesystem.Int), nil) {
		t.Errorf("tuples of different arity should not coerce")
	}

	v := ev.TupleJoin([]typesystem.Value{ev.Bool(true), ev.Int(2)}, from)
	got, err := e.Map(v, into, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Ty != into {
		t.Errorf("type = %s, want %s", got.Ty, into)
	}
	assertObject(t, got, &evaluator.Tuple{Elements: []evaluator.Object{
		&evaluator.Integer{Value: 1}, &evaluator.Float{Value: 2},
	}})
}

func TestFnIdentity(t *testing.T) {
	e, _ := newEngine(t)
	f := typesystem.NewFnType(1, "f")
	tests := []struct {
		name string
		into typesystem.Type
		want bool
	}{
		{"same function", typesystem.NewFnType(1, "f"), true},
		{"same name, other function", typesystem.NewFnType(2, "f"), false},
		{"not a function", typesystem.Int, false},
	}
	for _, tt := range tests {
		if got := e.Can(f, tt.into, nil); got != tt.want {
			t.Errorf("%s: Can(%s, %s) = %v, want %v", tt.name, f, tt.into, got, tt.want)
		}
	}
}

func TestDump(t *testing.T) {
	e, _ := newEngine(t)
	var buf bytes.Buffer
	e.Dump(&buf)
	out := buf.String()
	for _, want := range []string{`From: (string) (len=4) "bool"`, `Into: (string) (len=3) "num"`} {
		if !strings.Contains(out, want) {
			t.Errorf("Dump output missing %q:\n%s", want, out)
		}
	}
}

func mustUnwrap(t *testing.T, v typesystem.Value) evaluator.Object {
	t.Helper()
	obj, err := evaluator.Unwrap(v)
	if err != nil {
		t.Fatal(err)
	}
	return obj
}
