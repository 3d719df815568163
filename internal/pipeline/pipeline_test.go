package pipeline

import (
	"bytes"
	"log"
	"testing"

	"github.com/zsakowitz/rewrites-sub000/internal/config"
	"github.com/zsakowitz/rewrites-sub000/internal/diagnostics"
	"github.com/zsakowitz/rewrites-sub000/internal/typesystem"
)

func TestRunOrder(t *testing.T) {
	var order []string
	stage := func(name string) Processor {
		return ProcessorFunc(func(ctx *PipelineContext) *PipelineContext {
			order = append(order, name)
			return ctx
		})
	}
	ctx := New(stage("load"), stage("declare"), stage("seal")).Run(NewPipelineContext(nil, nil))
	if ctx == nil {
		t.Fatal("Run returned nil context")
	}
	if got := len(order); got != 3 || order[0] != "load" || order[1] != "declare" || order[2] != "seal" {
		t.Errorf("stages ran as %v", order)
	}
}

func TestStageCanReplaceContext(t *testing.T) {
	replacement := NewPipelineContext(nil, nil)
	ctx := New(ProcessorFunc(func(*PipelineContext) *PipelineContext { return replacement })).
		Run(NewPipelineContext(nil, nil))
	if ctx != replacement {
		t.Error("Run must return the context produced by the last stage")
	}
}

func TestNewPipelineContext(t *testing.T) {
	var buf bytes.Buffer
	ctx := NewPipelineContext(nil, log.New(&buf, "", 0))
	if ctx.Config.MaxConstraintDepth != config.DefaultMaxConstraintDepth {
		t.Errorf("nil config should mean defaults, got depth %d", ctx.Config.MaxConstraintDepth)
	}
	if ctx.Engine.Target() != ctx.Target {
		t.Error("engine must convert through the session target")
	}
	if ctx.Failed() {
		t.Error("fresh context reports failure")
	}

	if err := ctx.Engine.Add(typesystem.Bool, typesystem.Int, nil); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Error("engine should log through the context logger")
	}

	ctx.Diagnostics.Issue(diagnostics.ErrP001, diagnostics.Position{}, "broken")
	if !ctx.Failed() {
		t.Error("context with a diagnostic should report failure")
	}
}
