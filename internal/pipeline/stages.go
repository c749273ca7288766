package pipeline

import (
	"errors"

	"github.com/funvibe/canscope/internal/canonicalize"
	"github.com/funvibe/canscope/internal/diagnostics"
	"github.com/funvibe/canscope/internal/region"
	"github.com/funvibe/canscope/internal/script"
)

// LoaderProcessor reads and validates the script.
type LoaderProcessor struct{}

func (lp *LoaderProcessor) Process(ctx *PipelineContext) *PipelineContext {
	var (
		s   *script.Script
		err error
	)
	if ctx.Source != nil {
		s, err = script.Parse(ctx.Source, ctx.FilePath)
	} else {
		s, err = script.Load(ctx.FilePath)
	}
	if err != nil {
		d := diagnostics.NewError(diagnostics.ErrS001, region.Zero(), err.Error())
		d.File = ctx.FilePath
		var serr *script.Error
		if errors.As(err, &serr) {
			d.Message = serr.Msg
			if serr.Line > 0 {
				d.WithRelated(region.Zero(), "at line %d of the script", serr.Line)
			}
		}
		ctx.Errors = append(ctx.Errors, d)
		ctx.Logger.Debug().Err(err).Str("file", ctx.FilePath).Msg("script rejected")
		return ctx
	}
	ctx.Script = s
	return ctx
}

// CanonicalizeProcessor resolves the loaded script's sites.
type CanonicalizeProcessor struct{}

func (cp *CanonicalizeProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Script == nil {
		return ctx
	}
	ctx.Output = canonicalize.Canonicalize(ctx.Script, canonicalize.Options{
		Modules: ctx.Modules,
		Names:   ctx.Names,
		Logger:  ctx.Logger,
	})
	ctx.Errors = append(ctx.Errors, ctx.Output.Problems...)
	return ctx
}

// Default returns the loader followed by the canonicalizer.
func Default() *Pipeline {
	return New(&LoaderProcessor{}, &CanonicalizeProcessor{})
}
