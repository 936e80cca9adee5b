// Package config loads process-wide teamflow settings: a YAML file overlaid
// with TEAMFLOW_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/teamflow/core"
	"github.com/hupe1980/teamflow/logging"
)

// Supported LLM providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// Config is the root configuration.
type Config struct {
	LLM    LLMConfig    `yaml:"llm"`
	Team   TeamConfig   `yaml:"team"`
	Runner RunnerConfig `yaml:"runner"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// LLMConfig selects and configures the model provider.
type LLMConfig struct {
	Provider       string  `yaml:"provider" env:"TEAMFLOW_LLM_PROVIDER"`
	Model          string  `yaml:"model" env:"TEAMFLOW_LLM_MODEL"`
	ReasoningModel string  `yaml:"reasoning_model" env:"TEAMFLOW_LLM_REASONING_MODEL"`
	APIKey         string  `yaml:"api_key" env:"TEAMFLOW_LLM_API_KEY"`
	BaseURL        string  `yaml:"base_url" env:"TEAMFLOW_LLM_BASE_URL"`
	Temperature    float64 `yaml:"temperature" env:"TEAMFLOW_LLM_TEMPERATURE"`
	MaxTokens      int     `yaml:"max_tokens" env:"TEAMFLOW_LLM_MAX_TOKENS"`
	ThinkingBudget int     `yaml:"thinking_budget" env:"TEAMFLOW_LLM_THINKING_BUDGET"`
}

// TeamConfig describes the default team.
type TeamConfig struct {
	Members           []string            `yaml:"members" env:"TEAMFLOW_TEAM_MEMBERS" envSeparator:","`
	MemberConfigs     []core.MemberConfig `yaml:"member_configs"`
	Workspace         string              `yaml:"workspace" env:"TEAMFLOW_TEAM_WORKSPACE"`
	Coordinator       bool                `yaml:"coordinator" env:"TEAMFLOW_TEAM_COORDINATOR"`
	Planner           bool                `yaml:"planner" env:"TEAMFLOW_TEAM_PLANNER"`
	MaxToolIterations int                 `yaml:"max_tool_iterations" env:"TEAMFLOW_TEAM_MAX_TOOL_ITERATIONS"`
	// BrowserEndpoint is the base URL of the browser automation service.
	// The browser worker is left out of the team when it is empty.
	BrowserEndpoint string `yaml:"browser_endpoint" env:"TEAMFLOW_TEAM_BROWSER_ENDPOINT"`
	// CodeExecution lets the coder run Python and Bash in the workspace.
	CodeExecution bool          `yaml:"code_execution" env:"TEAMFLOW_TEAM_CODE_EXECUTION"`
	CodeTimeout   time.Duration `yaml:"code_timeout" env:"TEAMFLOW_TEAM_CODE_TIMEOUT"`
}

// RunnerConfig tunes run execution.
type RunnerConfig struct {
	EventBufferSize  int           `yaml:"event_buffer_size" env:"TEAMFLOW_RUNNER_EVENT_BUFFER_SIZE"`
	MaxModelCalls    int           `yaml:"max_model_calls" env:"TEAMFLOW_RUNNER_MAX_MODEL_CALLS"`
	MaxSteps         int           `yaml:"max_steps" env:"TEAMFLOW_RUNNER_MAX_STEPS"`
	TerminateTimeout time.Duration `yaml:"terminate_timeout" env:"TEAMFLOW_RUNNER_TERMINATE_TIMEOUT"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr              string        `yaml:"addr" env:"TEAMFLOW_SERVER_ADDR"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"TEAMFLOW_SERVER_READ_HEADER_TIMEOUT"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" env:"TEAMFLOW_SERVER_SHUTDOWN_TIMEOUT"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level     string `yaml:"level" env:"TEAMFLOW_LOG_LEVEL"`
	Format    string `yaml:"format" env:"TEAMFLOW_LOG_FORMAT"`
	AddSource bool   `yaml:"add_source" env:"TEAMFLOW_LOG_ADD_SOURCE"`
}

// DefaultMemberConfigs describes the standard workers.
func DefaultMemberConfigs() []core.MemberConfig {
	return []core.MemberConfig{
		{
			Name:        core.Researcher,
			Description: "Searches the web and collects information.",
			DescForLLM:  "Uses search engines and web crawlers to gather information from the internet. Outputs a Markdown report summarizing findings. Cannot do math or programming.",
		},
		{
			Name:        core.Coder,
			Description: "Writes and runs code to solve technical problems.",
			DescForLLM:  "Executes code and performs mathematical calculations and data analysis. Outputs a Markdown report of the result.",
		},
		{
			Name:        core.Browser,
			Description: "Operates a web browser to interact with pages.",
			DescForLLM:  "Directly interacts with web pages, performing complex operations such as navigating, clicking and reading content. Use it for in-depth page interaction.",
			IsOptional:  true,
		},
		{
			Name:        core.FileManager,
			Description: "Reads and writes files in the workspace.",
			DescForLLM:  "Reads, writes and lists files in the workspace. Use it to persist results.",
		},
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    ProviderOpenAI,
			Model:       "gpt-4o-mini",
			Temperature: 0,
			MaxTokens:   4096,
		},
		Team: TeamConfig{
			Members:           slices.Clone(core.DefaultTeamMembers),
			MemberConfigs:     DefaultMemberConfigs(),
			Workspace:         ".",
			Coordinator:       true,
			Planner:           true,
			MaxToolIterations: 10,
			CodeTimeout:       60 * time.Second,
		},
		Runner: RunnerConfig{
			MaxModelCalls:    100,
			TerminateTimeout: 5 * time.Second,
		},
		Server: ServerConfig{
			Addr:              ":8000",
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   15 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads path (if it exists) over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	var errs []error

	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderMock:
	default:
		errs = append(errs, fmt.Errorf("llm.provider: unsupported provider %q", c.LLM.Provider))
	}

	if len(c.Team.Members) == 0 {
		errs = append(errs, errors.New("team.members: at least one member is required"))
	}
	seen := make(map[string]bool, len(c.Team.Members))
	for _, m := range c.Team.Members {
		switch {
		case m == "" || m == core.Supervisor || m == core.Coordinator || m == core.Planner || m == core.RouteFinish:
			errs = append(errs, fmt.Errorf("team.members: reserved name %q", m))
		case !slices.Contains(core.DefaultTeamMembers, m):
			errs = append(errs, fmt.Errorf("team.members: unknown member %q", m))
		case seen[m]:
			errs = append(errs, fmt.Errorf("team.members: duplicate member %q", m))
		}
		seen[m] = true
	}

	if c.Runner.EventBufferSize < 0 || c.Runner.MaxModelCalls < 0 || c.Runner.MaxSteps < 0 {
		errs = append(errs, errors.New("runner: limits must not be negative"))
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		errs = append(errs, fmt.Errorf("log.format: must be json or text, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// MemberConfigMap indexes the member configurations by name.
func (c *Config) MemberConfigMap() map[string]core.MemberConfig {
	out := make(map[string]core.MemberConfig, len(c.Team.MemberConfigs))
	for _, mc := range c.Team.MemberConfigs {
		out[mc.Name] = mc
	}
	return out
}

// Logger builds the process logger described by the log section.
func (c *Config) Logger() (*logging.TeamLogger, error) {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewSlogLogger(level, c.Log.Format, c.Log.AddSource), nil
}
