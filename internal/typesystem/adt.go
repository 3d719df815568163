package typesystem

import (
	"fmt"
)

// AdtID is an interned handle to an AdtDef within one AdtRegistry.
type AdtID uint32

// ConstGeneric describes one const generic slot of an Adt.
type ConstGeneric struct {
	Variance Variance
	Ty       Type
}

// AdtGenerics makes an Adt generic. Coerce converts between two instances
// of the same family; it is only called after the variance checks passed.
type AdtGenerics struct {
	Types  []Variance
	Consts []ConstGeneric
	Coerce func(v Value, into *TAdt, fp *FnParams) (Value, error)
}

// AdtCtor lets a Sym tagged with the constructor's tag coerce into the Adt.
// Payload gives the payload type the constructor expects for an instance;
// Build wraps an already converted payload.
type AdtCtor struct {
	Payload func(into *TAdt) Type
	Build   func(payload Value, into *TAdt) Value
}

// AdtDef is a user-registered extension type.
type AdtDef struct {
	Name string
	// Has0 and Has1 compute inhabitedness of an instance; nil means false.
	Has0     func(t *TAdt) bool
	Has1     func(t *TAdt) bool
	Generics *AdtGenerics
	Ctors    map[string]*AdtCtor
}

// IsPlain reports an Adt without generics, which coerces like a primitive.
func (d *AdtDef) IsPlain() bool { return d.Generics == nil }

// AdtRegistry is the arena holding every AdtDef of a session.
type AdtRegistry struct {
	defs   []*AdtDef
	byName map[string]AdtID
}

func NewAdtRegistry() *AdtRegistry {
	// id 0 is reserved so the zero AdtID never refers to a definition.
	return &AdtRegistry{defs: []*AdtDef{nil}, byName: make(map[string]AdtID)}
}

// Register adds def and returns its handle. A later definition with the same
// name shadows the earlier one for Lookup; both handles stay valid.
func (r *AdtRegistry) Register(def *AdtDef) (AdtID, error) {
	if def.Generics != nil {
		for _, cg := range def.Generics.Consts {
			if cg.Ty.Kind() != KindBool && cg.Ty.Kind() != KindInt {
				return 0, errInvalidConst(cg.Ty)
			}
		}
	}
	id := AdtID(len(r.defs))
	r.defs = append(r.defs, def)
	r.byName[def.Name] = id
	return id, nil
}

// Def returns the definition behind id, or nil.
func (r *AdtRegistry) Def(id AdtID) *AdtDef {
	if int(id) >= len(r.defs) {
		return nil
	}
	return r.defs[id]
}

func (r *AdtRegistry) Lookup(name string) (AdtID, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// New instantiates the Adt id with the given generic arguments.
func (r *AdtRegistry) New(id AdtID, types []Type, consts []*Const) (*TAdt, error) {
	def := r.Def(id)
	if def == nil {
		return nil, fmt.Errorf("unknown adt #%d", id)
	}
	var wantTypes, wantConsts int
	if def.Generics != nil {
		wantTypes, wantConsts = len(def.Generics.Types), len(def.Generics.Consts)
	}
	if len(types) != wantTypes || len(consts) != wantConsts {
		return nil, fmt.Errorf("%s expects %d type and %d const arguments, got %d and %d",
			def.Name, wantTypes, wantConsts, len(types), len(consts))
	}
	for i, c := range consts {
		if c.Type() != def.Generics.Consts[i].Ty {
			return nil, fmt.Errorf("%s: const argument %d must be %s, got %s",
				def.Name, i, def.Generics.Consts[i].Ty, c.Type())
		}
	}
	return r.build(id, types, consts), nil
}

// Plain instantiates an Adt without generics.
func (r *AdtRegistry) Plain(id AdtID) *TAdt {
	return r.build(id, nil, nil)
}

func (r *AdtRegistry) build(id AdtID, types []Type, consts []*Const) *TAdt {
	t := &TAdt{reg: r, id: id, types: types, consts: consts}
	t.isConst = true
	for _, a := range types {
		t.isConst = t.isConst && a.IsConst()
	}
	for _, c := range consts {
		t.isConst = t.isConst && c.IsConst()
	}
	def := r.Def(id)
	if def.Has0 != nil {
		t.has0 = def.Has0(t)
	}
	if def.Has1 != nil {
		t.has1 = def.Has1(t)
	}
	return t
}
