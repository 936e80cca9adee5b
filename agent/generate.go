package agent

import (
	"fmt"

	"github.com/hupe1980/teamflow/core"
	"github.com/hupe1980/teamflow/model"
)

// generate performs one model call on behalf of the node owning runCtx. It
// emits model-start, one token event per streamed fragment (when
// emitTokens is set) and model-end, and returns the final response.
func generate(runCtx *core.RunContext, llm model.Model, req model.Request, emitTokens bool) (model.Response, error) {
	if err := runCtx.SpendModelCall(); err != nil {
		return model.Response{}, err
	}

	name := llm.Info().Name
	if err := runCtx.EmitEvent(core.NewModelStartEvent(runCtx.Node, runCtx.Step(), name)); err != nil {
		return model.Response{}, err
	}

	respCh, errCh := llm.Generate(runCtx.Context, req)

	var (
		final    model.Response
		gotFinal bool
		streamed bool
	)
	for resp := range respCh {
		if !resp.Partial {
			final, gotFinal = resp, true
			continue
		}
		if !emitTokens {
			continue
		}
		streamed = true
		chunk := core.Chunk{ID: resp.ID, Content: resp.Content.Text(), ReasoningContent: resp.ReasoningContent}
		if err := runCtx.EmitEvent(core.NewTokenEvent(runCtx.Node, runCtx.Step(), chunk)); err != nil {
			return model.Response{}, err
		}
	}
	if err := <-errCh; err != nil {
		return model.Response{}, fmt.Errorf("generate with %s: %w", name, err)
	}
	if err := runCtx.Err(); err != nil {
		return model.Response{}, err
	}
	if !gotFinal {
		return model.Response{}, fmt.Errorf("generate with %s: stream ended without a final response", name)
	}

	// a non-streaming provider still surfaces its text as a single fragment
	if emitTokens && !streamed {
		if text := final.Content.Text(); text != "" {
			chunk := core.Chunk{ID: final.ID, Content: text}
			if err := runCtx.EmitEvent(core.NewTokenEvent(runCtx.Node, runCtx.Step(), chunk)); err != nil {
				return model.Response{}, err
			}
		}
	}

	if err := runCtx.EmitEvent(core.NewModelEndEvent(runCtx.Node, runCtx.Step(), name)); err != nil {
		return model.Response{}, err
	}

	return final, nil
}
