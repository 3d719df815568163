// Package session wires the engine together: one Session owns a coercion
// registry, an extension type arena, the prelude scope and the diagnostics
// raised against them. Sessions share nothing, so independent sessions may
// be used from different goroutines.
package session

import (
	"io"
	"log"
	"os"

	"github.com/zsakowitz/rewrites-sub000/internal/coerce"
	"github.com/zsakowitz/rewrites-sub000/internal/config"
	"github.com/zsakowitz/rewrites-sub000/internal/diagnostics"
	"github.com/zsakowitz/rewrites-sub000/internal/evaluator"
	"github.com/zsakowitz/rewrites-sub000/internal/overload"
	"github.com/zsakowitz/rewrites-sub000/internal/pipeline"
	"github.com/zsakowitz/rewrites-sub000/internal/prelude"
	"github.com/zsakowitz/rewrites-sub000/internal/symbols"
	"github.com/zsakowitz/rewrites-sub000/internal/typesystem"
)

// TracePrefix starts every trace line.
const TracePrefix = "resolve: "

type Session struct {
	ctx *pipeline.PipelineContext
}

type options struct {
	logger       *log.Logger
	manifestPath string
	manifest     []byte
	stages       []pipeline.Processor
}

type Option func(*options)

// WithLogger sends traces to l regardless of the config's trace flag.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithManifest installs src instead of the configured prelude. path only
// names it in diagnostics.
func WithManifest(path string, src []byte) Option {
	return func(o *options) {
		o.manifestPath = path
		o.manifest = src
	}
}

// WithStages appends setup stages that run after the prelude.
func WithStages(stages ...pipeline.Processor) Option {
	return func(o *options) { o.stages = append(o.stages, stages...) }
}

// New builds a session for cfg and installs its prelude. A nil cfg means
// config.Default. The returned error is the first diagnostic raised during
// setup; the session is still returned so every diagnostic can be shown.
func New(cfg *config.Config, opts ...Option) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		if cfg.Trace {
			o.logger = log.New(os.Stderr, TracePrefix, 0)
		} else {
			o.logger = log.New(io.Discard, "", 0)
		}
	}

	ctx := pipeline.NewPipelineContext(cfg, o.logger)
	ctx.ManifestPath = o.manifestPath
	ctx.ManifestSource = o.manifest

	stages := append(prelude.Processors(), o.stages...)
	ctx = pipeline.New(stages...).Run(ctx)
	return &Session{ctx: ctx}, ctx.Diagnostics.Err()
}

// FromDir builds a session configured by the nearest config file in dir or
// one of its parents, or by config.Default when there is none.
func FromDir(dir string, opts ...Option) (*Session, error) {
	path, err := config.FindConfig(dir)
	if err != nil {
		return nil, err
	}
	cfg := config.Default()
	if path != "" {
		if cfg, err = config.LoadConfig(path); err != nil {
			return nil, err
		}
	}
	return New(cfg, opts...)
}

func (s *Session) Config() *config.Config        { return s.ctx.Config }
func (s *Session) Engine() *coerce.Engine        { return s.ctx.Engine }
func (s *Session) Adts() *typesystem.AdtRegistry { return s.ctx.Adts }
func (s *Session) Target() *evaluator.Evaluator  { return s.ctx.Target }
func (s *Session) Diagnostics() *diagnostics.Bag { return s.ctx.Diagnostics }
func (s *Session) Logger() *log.Logger           { return s.ctx.Logger }

// Prelude is the root scope holding everything the prelude declared.
func (s *Session) Prelude() *symbols.SymbolTable { return s.ctx.Scope }

// Scope opens a fresh top-level scope for user declarations. Names
// declared there shadow prelude overloads of the same name.
func (s *Session) Scope() *symbols.SymbolTable {
	return symbols.NewEnclosed(s.ctx.Scope)
}

// Resolver returns a resolver over scope that reports into the session's
// diagnostics. A nil scope means the prelude.
func (s *Session) Resolver(scope overload.Scope) *overload.Resolver {
	if scope == nil {
		scope = s.ctx.Scope
	}
	return overload.NewResolver(scope, s.ctx.Engine,
		overload.WithReporter(s.ctx.Diagnostics),
		overload.WithLogger(s.ctx.Logger),
		overload.WithMaxDepth(s.ctx.Config.MaxConstraintDepth),
	)
}

// ParseType reads a type such as "[int; 3]" or "Box<num>" against the
// session's named types.
func (s *Session) ParseType(src string) (typesystem.Type, error) {
	return prelude.ParseType(s.ctx, src)
}

// Report writes every diagnostic to w, coloured per the config.
func (s *Session) Report(w io.Writer) error {
	em := diagnostics.NewEmitter(w, diagnostics.ColorMode(s.ctx.Config.Color))
	return em.EmitAll(s.ctx.Diagnostics)
}
