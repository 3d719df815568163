// Package coerce holds the coercion registry and answers whether, and how,
// a value of one type converts into another.
package coerce

import (
	"io"
	"log"

	"github.com/zsakowitz/rewrites-sub000/internal/target"
	"github.com/zsakowitz/rewrites-sub000/internal/typesystem"
)

// Engine owns the coercion registry of one session. Coercions are added
// during setup; after Freeze the engine only answers queries.
type Engine struct {
	reg    *registry
	target target.Target
	logger *log.Logger
	frozen bool
}

type Option func(*Engine)

// WithLogger traces registrations to l.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func New(tg target.Target, opts ...Option) *Engine {
	e := &Engine{
		reg:    newRegistry(),
		target: tg,
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Target() target.Target { return e.target }

// Add declares an explicit coercion and derives every coercion it makes
// reachable.
func (e *Engine) Add(from, into typesystem.Type, convert ConvertFunc) error {
	if e.frozen {
		return errFrozen(from, into)
	}
	added, err := e.reg.add(from, into, convert)
	if err != nil {
		return err
	}
	for _, c := range added {
		e.logger.Printf("coercion %s", c)
	}
	return nil
}

// Freeze ends the setup phase.
func (e *Engine) Freeze()      { e.frozen = true }
func (e *Engine) Frozen() bool { return e.frozen }

// Targets lists the registered coercions out of from, nearest first.
func (e *Engine) Targets(from typesystem.Type) []*Coercion {
	list := e.reg.adj[typesystem.Fingerprint(from)]
	out := make([]*Coercion, len(list))
	copy(out, list)
	return out
}

// Dump writes every registered coercion to w.
func (e *Engine) Dump(w io.Writer) {
	e.reg.dump(w)
}

func (e *Engine) lookup(from, into typesystem.Type) *Coercion {
	if !from.IsConst() || !into.IsConst() {
		return nil
	}
	return e.reg.lookup(typesystem.Fingerprint(from), typesystem.Fingerprint(into))
}
