package agent

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hupe1980/teamflow/core"
	"github.com/hupe1980/teamflow/model"
	"github.com/hupe1980/teamflow/tool"
)

// ErrMaxToolIterations is returned when a model keeps requesting tools past
// the configured bound.
var ErrMaxToolIterations = errors.New("max tool iterations exceeded")

// ModelAgentOptions configures a ModelAgent instance.
//
// Use functional options with NewModelAgent to override defaults.
type ModelAgentOptions struct {
	Description string
	Instruction Instruction
	Tools       []tool.Tool

	// EnableStreaming streams model fragments as token events.
	EnableStreaming bool

	// MaxToolIterations bounds model/tool round trips per invocation. 0 means unlimited.
	MaxToolIterations int

	// MaxHistoryMessages keeps only the most recent messages in the prompt. 0 keeps all.
	MaxHistoryMessages int

	// ReasoningModel replaces the primary model when the run asks for deep thinking.
	ReasoningModel model.Model

	// PrePlanSearch is run with the latest user request as "query" before the
	// first model call when the run asks for search before planning.
	PrePlanSearch tool.Tool
}

// ModelAgent is a language-model backed team participant. One invocation:
//
//  1. resolves the instruction against the shared state
//  2. optionally runs the pre-plan search tool
//  3. calls the model, executes requested tools and feeds results back until
//     the model answers without tool calls
//  4. returns the final text as a message attributed to the agent
//
// Model and tool activity is reported as raw events through the RunContext.
// A ModelAgent holds no per-run state and may serve concurrent runs.
type ModelAgent struct {
	BaseAgent
	llm                model.Model
	reasoningModel     model.Model
	instruction        Instruction
	tools              []tool.Tool
	prePlanSearch      tool.Tool
	executor           *toolExecutor
	enableStreaming    bool
	maxToolIterations  int
	maxHistoryMessages int
}

var _ core.Agent = (*ModelAgent)(nil)

// NewModelAgent creates a new model-based agent with sensible defaults.
func NewModelAgent(name string, llm model.Model, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	opts := ModelAgentOptions{
		Instruction:       NewInstructionFromText(fmt.Sprintf("You are %s, a helpful member of an AI team.", name)),
		EnableStreaming:   true,
		MaxToolIterations: 10,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	execTools := opts.Tools
	if opts.PrePlanSearch != nil {
		execTools = append(append([]tool.Tool(nil), opts.Tools...), opts.PrePlanSearch)
	}

	return &ModelAgent{
		BaseAgent:          NewBaseAgent(name, opts.Description),
		llm:                llm,
		reasoningModel:     opts.ReasoningModel,
		instruction:        opts.Instruction,
		tools:              opts.Tools,
		prePlanSearch:      opts.PrePlanSearch,
		executor:           newToolExecutor(name, execTools),
		enableStreaming:    opts.EnableStreaming,
		maxToolIterations:  opts.MaxToolIterations,
		maxHistoryMessages: opts.MaxHistoryMessages,
	}
}

// Tools returns the tools offered to the model.
func (a *ModelAgent) Tools() []tool.Tool { return append([]tool.Tool(nil), a.tools...) }

// Sessions returns the tools that keep per-run external resources, such as
// browser sessions.
func (a *ModelAgent) Sessions() []core.SessionProvider {
	var out []core.SessionProvider
	for _, t := range a.tools {
		if sp, ok := t.(core.SessionProvider); ok {
			out = append(out, sp)
		}
	}
	return out
}

// Invoke implements core.Agent.
func (a *ModelAgent) Invoke(runCtx *core.RunContext, state *core.SharedState) (core.Message, error) {
	runCtx.LogDebug("agent.invoke.start", "agent", a.Name(), "messages", len(state.Messages))

	instructions, err := a.instruction.Resolve(runCtx, state)
	if err != nil {
		return core.Message{}, fmt.Errorf("resolve instruction: %w", err)
	}

	llm := a.llm
	if state.DeepThinking && a.reasoningModel != nil {
		llm = a.reasoningModel
	}

	if state.SearchBeforePlanning && a.prePlanSearch != nil {
		results, err := a.search(runCtx, state.LastUserContent())
		if err != nil {
			return core.Message{}, err
		}
		if results != "" {
			instructions += "\n\n# Relevant Search Results\n\n" + results
		}
	}

	contents := model.FromMessages(a.window(state.Messages))

	for i := 0; ; i++ {
		if a.maxToolIterations > 0 && i > a.maxToolIterations {
			return core.Message{}, fmt.Errorf("%s: %w (%d)", a.Name(), ErrMaxToolIterations, a.maxToolIterations)
		}

		req := model.Request{
			Instructions: instructions,
			Contents:     contents,
			Tools:        tool.Definitions(a.tools),
			Stream:       a.enableStreaming,
		}

		resp, err := generate(runCtx, llm, req, a.enableStreaming)
		if err != nil {
			return core.Message{}, err
		}

		calls := resp.Content.FunctionCalls()
		if len(calls) == 0 {
			text := resp.Content.Text()
			runCtx.LogDebug("agent.invoke.complete", "agent", a.Name(), "iterations", i+1, "chars", len(text))
			return core.NewAgentMessage(a.Name(), text), nil
		}

		runCtx.LogDebug("agent.tool_calls", "agent", a.Name(), "count", len(calls))

		parts, err := a.executor.execute(runCtx, calls)
		if err != nil {
			return core.Message{}, err
		}

		assistant := resp.Content
		assistant.Role = model.RoleAssistant
		contents = append(contents, assistant, model.Content{Role: model.RoleTool, Parts: parts})
	}
}

func (a *ModelAgent) search(runCtx *core.RunContext, query string) (string, error) {
	if query == "" {
		return "", nil
	}
	args, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return "", err
	}
	fc := core.FunctionCall{ID: core.NewID(), Name: a.prePlanSearch.Name(), Arguments: string(args)}
	fr, err := a.executor.executeSingle(runCtx, fc)
	if err != nil {
		return "", err
	}
	if fr.Error != "" {
		runCtx.LogWarn("agent.pre_plan_search.failed", "agent", a.Name(), "error", fr.Error)
		return "", nil
	}
	return resultText(fr.Response), nil
}

func (a *ModelAgent) window(msgs []core.Message) []core.Message {
	if a.maxHistoryMessages <= 0 || len(msgs) <= a.maxHistoryMessages {
		return msgs
	}
	return msgs[len(msgs)-a.maxHistoryMessages:]
}
