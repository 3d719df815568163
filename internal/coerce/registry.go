package coerce

import (
	"fmt"
	"io"
	"sort"

	"github.com/davecgh/go-spew/spew"
	set "github.com/hashicorp/go-set/v2"

	"github.com/zsakowitz/rewrites-sub000/internal/typesystem"
)

// ConvertFunc converts a value of a coercion's source type. The engine
// retags the result with the coercion's target type.
type ConvertFunc func(v typesystem.Value) (typesystem.Value, error)

// Coercion is one edge of the registry. Auto edges were derived by the
// transitive closure; explicit edges were declared.
type Coercion struct {
	From    typesystem.Type
	Into    typesystem.Type
	Convert ConvertFunc
	Auto    bool
}

func (c *Coercion) String() string {
	if c.Auto {
		return fmt.Sprintf("%s -> %s (auto)", c.From, c.Into)
	}
	return fmt.Sprintf("%s -> %s", c.From, c.Into)
}

// registry is a transitively closed coercion graph keyed by fingerprint.
type registry struct {
	nodes map[string]typesystem.Type
	seen  []string // nodes in order of first sight
	edges map[string]map[string]*Coercion
	adj   map[string][]*Coercion
}

func newRegistry() *registry {
	return &registry{
		nodes: make(map[string]typesystem.Type),
		edges: make(map[string]map[string]*Coercion),
		adj:   make(map[string][]*Coercion),
	}
}

func (r *registry) node(t typesystem.Type) string {
	k := typesystem.Fingerprint(t)
	if _, ok := r.nodes[k]; !ok {
		r.nodes[k] = t
		r.seen = append(r.seen, k)
	}
	return k
}

func (r *registry) lookup(from, into string) *Coercion {
	return r.edges[from][into]
}

func (r *registry) put(c *Coercion) {
	from, into := r.node(c.From), r.node(c.Into)
	m, ok := r.edges[from]
	if !ok {
		m = make(map[string]*Coercion)
		r.edges[from] = m
	}
	m[into] = c
}

func (r *registry) remove(c *Coercion) {
	from, into := typesystem.Fingerprint(c.From), typesystem.Fingerprint(c.Into)
	delete(r.edges[from], into)
}

func compose(first, second *Coercion) *Coercion {
	mid := first.Into
	return &Coercion{
		From: first.From,
		Into: second.Into,
		Auto: true,
		Convert: func(v typesystem.Value) (typesystem.Value, error) {
			m, err := first.Convert(v)
			if err != nil {
				return typesystem.Value{}, err
			}
			return second.Convert(m.Retag(mid))
		},
	}
}

// add inserts an explicit edge and closes the graph over it. Nothing is
// changed when an error is returned.
func (r *registry) add(from, into typesystem.Type, convert ConvertFunc) ([]*Coercion, error) {
	fk, ik := typesystem.Fingerprint(from), typesystem.Fingerprint(into)
	if fk == ik {
		return nil, errCycle(from, into)
	}
	old := r.lookup(fk, ik)
	if old != nil && !old.Auto {
		return nil, errDuplicate(from, into)
	}

	edge := &Coercion{From: from, Into: into, Convert: convert}
	var incoming, outgoing []*Coercion
	for _, a := range r.seen {
		if c := r.lookup(a, fk); c != nil {
			incoming = append(incoming, c)
		}
	}
	for _, d := range r.seen {
		if c := r.lookup(ik, d); c != nil {
			outgoing = append(outgoing, c)
		}
	}

	derived := make([]*Coercion, 0, len(incoming)+len(outgoing)+len(incoming)*len(outgoing))
	for _, in := range incoming {
		derived = append(derived, compose(in, edge))
	}
	for _, out := range outgoing {
		derived = append(derived, compose(edge, out))
	}
	for _, in := range incoming {
		for _, out := range outgoing {
			derived = append(derived, compose(compose(in, edge), out))
		}
	}
	for _, c := range derived {
		if typesystem.Fingerprint(c.From) == typesystem.Fingerprint(c.Into) {
			return nil, errCycle(c.From, c.Into)
		}
	}

	// An explicit edge replaces an auto one; derived edges fill gaps only.
	r.put(edge)
	added := []*Coercion{edge}
	for _, c := range derived {
		if r.lookup(typesystem.Fingerprint(c.From), typesystem.Fingerprint(c.Into)) != nil {
			continue
		}
		r.put(c)
		added = append(added, c)
	}

	if err := r.sort(); err != nil {
		for _, c := range added[1:] {
			r.remove(c)
		}
		r.remove(edge)
		if old != nil {
			r.put(old)
		}
		return nil, err
	}
	return added, nil
}

// sort rebuilds every adjacency list in topological order of the whole
// graph. Ties keep the order in which nodes were first seen.
func (r *registry) sort() error {
	visited := set.New[string](len(r.seen))
	onStack := set.New[string](len(r.seen))
	post := make([]string, 0, len(r.seen))

	var visit func(k string) error
	visit = func(k string) error {
		if onStack.Contains(k) {
			return errCycle(r.nodes[k], r.nodes[k])
		}
		if visited.Contains(k) {
			return nil
		}
		visited.Insert(k)
		onStack.Insert(k)
		for _, d := range r.seen {
			if r.lookup(k, d) == nil {
				continue
			}
			if err := visit(d); err != nil {
				return err
			}
		}
		onStack.Remove(k)
		post = append(post, k)
		return nil
	}
	for _, k := range r.seen {
		if err := visit(k); err != nil {
			return err
		}
	}

	rank := make(map[string]int, len(post))
	for i, k := range post {
		rank[k] = len(post) - 1 - i
	}
	adj := make(map[string][]*Coercion, len(r.edges))
	for from, m := range r.edges {
		list := make([]*Coercion, 0, len(m))
		for _, c := range m {
			list = append(list, c)
		}
		sort.Slice(list, func(i, j int) bool {
			return rank[typesystem.Fingerprint(list[i].Into)] < rank[typesystem.Fingerprint(list[j].Into)]
		})
		adj[from] = list
	}
	r.adj = adj
	return nil
}

type edgeView struct {
	From, Into string
	Auto       bool
}

func (r *registry) dump(w io.Writer) {
	var views []edgeView
	for _, k := range r.seen {
		for _, c := range r.adj[k] {
			views = append(views, edgeView{From: c.From.String(), Into: c.Into.String(), Auto: c.Auto})
		}
	}
	cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
	cfg.Fdump(w, views)
}
