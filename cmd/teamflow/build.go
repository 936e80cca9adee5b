package main

import (
	"errors"
	"fmt"
	"net/url"
	"slices"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/teamflow"
	"github.com/hupe1980/teamflow/agent"
	"github.com/hupe1980/teamflow/code"
	"github.com/hupe1980/teamflow/config"
	"github.com/hupe1980/teamflow/core"
	"github.com/hupe1980/teamflow/logging"
	"github.com/hupe1980/teamflow/metrics"
	"github.com/hupe1980/teamflow/model"
	anthropicmodel "github.com/hupe1980/teamflow/model/anthropic"
	openaimodel "github.com/hupe1980/teamflow/model/openai"
	"github.com/hupe1980/teamflow/tool"
)

// models holds the primary and the optional reasoning model.
type models struct {
	basic     model.Model
	reasoning model.Model
	// supervisor is only distinct from basic for the mock provider.
	supervisor model.Model
}

func buildModels(cfg config.LLMConfig) (models, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		m := models{basic: newOpenAI(cfg, cfg.Model)}
		if cfg.ReasoningModel != "" {
			m.reasoning = newOpenAI(cfg, cfg.ReasoningModel)
		}
		m.supervisor = m.basic
		return m, nil
	case config.ProviderAnthropic:
		m := models{basic: newAnthropic(cfg, cfg.Model, 0)}
		if cfg.ReasoningModel != "" {
			m.reasoning = newAnthropic(cfg, cfg.ReasoningModel, int64(cfg.ThinkingBudget))
		}
		m.supervisor = m.basic
		return m, nil
	case config.ProviderMock:
		return mockModels(), nil
	default:
		return models{}, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}

func newOpenAI(cfg config.LLMConfig, name string) model.Model {
	return openaimodel.NewModel(func(o *openaimodel.Options) {
		o.Model = name
		o.Temperature = cfg.Temperature
		o.MaxCompletionTokens = int64(cfg.MaxTokens)
		o.APIKey = cfg.APIKey
		o.BaseURL = cfg.BaseURL
	})
}

func newAnthropic(cfg config.LLMConfig, name string, thinkingBudget int64) model.Model {
	return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
		o.Model = anthropic.Model(name)
		o.Temperature = cfg.Temperature
		o.MaxTokens = int64(cfg.MaxTokens)
		o.ThinkingBudget = thinkingBudget
		o.APIKey = cfg.APIKey
		o.BaseURL = cfg.BaseURL
	})
}

// mockModels scripts an offline team: the coordinator hands off, the planner
// plans, the researcher reports once and the supervisor then finishes.
func mockModels() models {
	return models{
		basic: model.NewMockModel("mock",
			model.MockTurn{Fragments: []string{"handoff_to_planner"}},
			model.MockTurn{Fragments: []string{"1. Research the topic.\n", "2. Summarize the findings."}},
			model.MockTurn{Fragments: []string{"# Findings\n\n", "Nothing to report in offline mode."}},
		),
		supervisor: model.NewMockModel("mock-supervisor",
			model.MockTurn{Fragments: []string{`{"next": "researcher"}`}},
			model.MockTurn{Fragments: []string{`{"next": "FINISH"}`}},
		),
	}
}

// team is the assembled process-wide team.
type team struct {
	flow    *teamflow.TeamFlow
	members []string
	configs []core.MemberConfig
	metrics *metrics.Recorder
}

func buildTeam(cfg *config.Config, logger logging.Logger) (*team, error) {
	ms, err := buildModels(cfg.LLM)
	if err != nil {
		return nil, err
	}

	newWorker := func(name, prompt string, tools ...tool.Tool) core.Agent {
		return agent.NewModelAgent(name, ms.basic, func(o *agent.ModelAgentOptions) {
			o.Instruction = agent.NewInstructionFromText(prompt)
			o.Tools = tools
			o.ReasoningModel = ms.reasoning
			o.MaxToolIterations = cfg.Team.MaxToolIterations
		})
	}

	fetch := tool.NewFetchTool(nil, 0)

	var workers []core.Agent
	for _, name := range cfg.Team.Members {
		switch name {
		case core.Researcher:
			workers = append(workers, newWorker(name, agent.ResearcherPrompt, fetch))
		case core.Coder:
			var tools []tool.Tool
			if cfg.Team.CodeExecution {
				executor := code.NewProcessExecutor(func(o *code.ProcessOptions) {
					o.Dir = cfg.Team.Workspace
					o.Timeout = cfg.Team.CodeTimeout
				})
				tools = append(tools, tool.NewCodeTool(executor))
			}
			workers = append(workers, newWorker(name, agent.CoderPrompt, tools...))
		case core.Browser:
			if cfg.Team.BrowserEndpoint == "" {
				logger.Warn("teamflow.team.browser_disabled", "reason", "no browser endpoint configured")
				continue
			}
			driver := tool.NewHTTPBrowserDriver(cfg.Team.BrowserEndpoint, nil)
			workers = append(workers, newWorker(name, agent.BrowserPrompt, tool.NewBrowserTool(driver)))
		case core.FileManager:
			workers = append(workers, newWorker(name, agent.FileManagerPrompt, tool.FileTools(cfg.Team.Workspace)...))
		}
	}
	if len(workers) == 0 {
		return nil, errors.New("team has no workers")
	}

	members := make([]string, len(workers))
	for i, w := range workers {
		members[i] = w.Name()
	}
	configs := slices.DeleteFunc(slices.Clone(cfg.Team.MemberConfigs), func(mc core.MemberConfig) bool {
		return !slices.Contains(members, mc.Name)
	})
	memberConfigs := make(map[string]core.MemberConfig, len(configs))
	for _, mc := range configs {
		memberConfigs[mc.Name] = mc
	}

	rec := metrics.New(func(o *metrics.Options) { o.WithRuntimeCollectors = true })

	flow, err := teamflow.New(agent.NewModelSupervisor(ms.supervisor), workers, func(o *teamflow.Options) {
		if cfg.Team.Coordinator {
			o.Coordinator = newWorker(core.Coordinator, agent.CoordinatorPrompt)
		}
		if cfg.Team.Planner {
			o.Planner = agent.NewModelAgent(core.Planner, ms.basic, func(ao *agent.ModelAgentOptions) {
				ao.Instruction = agent.NewInstructionFromTemplate(agent.PlannerPrompt)
				ao.ReasoningModel = ms.reasoning
				ao.PrePlanSearch = fetchSearch(fetch)
				ao.MaxToolIterations = cfg.Team.MaxToolIterations
			})
		}
		o.MaxSteps = cfg.Runner.MaxSteps
		o.TeamMembers = members
		o.MemberConfigs = memberConfigs
		o.EventBufferSize = cfg.Runner.EventBufferSize
		o.MaxModelCalls = cfg.Runner.MaxModelCalls
		o.TerminateTimeout = cfg.Runner.TerminateTimeout
		o.Logger = logger
		o.Metrics = rec
	})
	if err != nil {
		return nil, err
	}

	return &team{flow: flow, members: members, configs: configs, metrics: rec}, nil
}

// fetchSearch adapts fetch_url into the planner's pre-plan search: the query
// is looked up on DuckDuckGo's HTML endpoint.
func fetchSearch(fetch tool.Tool) tool.Tool {
	return tool.NewFunctionTool("web_search", "Search the web for a query.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string", "description": "Search query"},
			},
			"required": []string{"query"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			q, _ := args["query"].(string)
			return fetch.Call(tc, map[string]any{"url": "https://html.duckduckgo.com/html/?q=" + url.QueryEscape(q)})
		})
}
