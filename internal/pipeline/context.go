package pipeline

import (
	"github.com/rs/zerolog"

	"github.com/funvibe/canscope/internal/canonicalize"
	"github.com/funvibe/canscope/internal/diagnostics"
	"github.com/funvibe/canscope/internal/script"
	"github.com/funvibe/canscope/internal/symbols"
)

// PipelineContext carries one script through the stages.
type PipelineContext struct {
	FilePath string
	// Source is the raw script. When set, LoaderProcessor parses it instead of
	// reading FilePath.
	Source []byte

	Script *script.Script
	Output *canonicalize.Output
	Errors []*diagnostics.DiagnosticError

	// Modules and Names are shared by every script of a run.
	Modules *symbols.ModuleIDs
	Names   *symbols.DebugNames
	Logger  zerolog.Logger
}

func NewPipelineContext(filePath string) *PipelineContext {
	return &PipelineContext{
		FilePath: filePath,
		Modules:  symbols.NewModuleIDs(),
		Names:    symbols.NewDebugNames(),
		Logger:   zerolog.Nop(),
	}
}

// HasErrors reports whether any stage produced a diagnostic.
func (ctx *PipelineContext) HasErrors() bool {
	return len(ctx.Errors) > 0
}
