package pipeline

import (
	"io"
	"log"

	"github.com/zsakowitz/rewrites-sub000/internal/coerce"
	"github.com/zsakowitz/rewrites-sub000/internal/config"
	"github.com/zsakowitz/rewrites-sub000/internal/diagnostics"
	"github.com/zsakowitz/rewrites-sub000/internal/evaluator"
	"github.com/zsakowitz/rewrites-sub000/internal/symbols"
	"github.com/zsakowitz/rewrites-sub000/internal/typesystem"
)

// PipelineContext carries the session state every setup stage extends.
type PipelineContext struct {
	Config      *config.Config
	Diagnostics *diagnostics.Bag
	Adts        *typesystem.AdtRegistry
	Engine      *coerce.Engine
	Scope       *symbols.SymbolTable
	Target      *evaluator.Evaluator
	Logger      *log.Logger

	// ManifestPath names the prelude manifest in diagnostics.
	ManifestPath string
	// ManifestSource is the raw manifest; empty means the embedded default.
	ManifestSource []byte
}

// NewPipelineContext builds empty session state for cfg. A nil logger
// discards.
func NewPipelineContext(cfg *config.Config, logger *log.Logger) *PipelineContext {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	ev := evaluator.New()
	return &PipelineContext{
		Config:      cfg,
		Diagnostics: diagnostics.NewBag(),
		Adts:        typesystem.NewAdtRegistry(),
		Engine:      coerce.New(ev, coerce.WithLogger(logger)),
		Scope:       symbols.NewRoot(),
		Target:      ev,
		Logger:      logger,
	}
}

// Failed reports whether any stage issued a diagnostic.
func (ctx *PipelineContext) Failed() bool {
	return ctx.Diagnostics.HasErrors()
}
