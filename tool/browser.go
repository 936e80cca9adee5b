package tool

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/teamflow/core"
)

// BrowserDriver is the browser-automation backend. It keeps one browser
// session per run: Run executes one natural language instruction in the
// session of runID and returns a textual summary, Terminate closes it.
type BrowserDriver interface {
	Run(ctx context.Context, runID, instruction string) (string, error)
	Terminate(ctx context.Context, runID string) error
}

// BrowserTool exposes a BrowserDriver to the browser worker. The tool is
// shared by all runs; each run browses in its own session, which is released
// through the handle returned by Session.
type BrowserTool struct {
	driver BrowserDriver
}

var _ core.SessionProvider = (*BrowserTool)(nil)

// NewBrowserTool wraps driver.
func NewBrowserTool(driver BrowserDriver) *BrowserTool {
	return &BrowserTool{driver: driver}
}

// Name implements Tool.
func (b *BrowserTool) Name() string { return "browser" }

// Description implements Tool.
func (b *BrowserTool) Description() string {
	return "Use this tool to interact with web browsers. Input should be a natural language description of what you want to do with the browser."
}

// Parameters implements Tool.
func (b *BrowserTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"instruction": map[string]any{"type": "string", "description": "The instruction to use browser"},
		},
		"required": []string{"instruction"},
	}
}

// Call implements Tool.
func (b *BrowserTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	instruction, _ := args["instruction"].(string)
	if instruction == "" {
		return nil, NewToolError(b.Name(), "instruction is required", CodeBadInput)
	}

	if err := toolCtx.Context().Err(); err != nil {
		return nil, NewToolError(b.Name(), "browser session was terminated", CodeExecution)
	}

	out, err := b.driver.Run(toolCtx.Context(), toolCtx.RunID(), instruction)
	if err != nil {
		return nil, fmt.Errorf("browser run: %w", err)
	}
	return out, nil
}

// Session returns the handle of runID's browser session. Only the first
// Terminate on the handle reaches the driver.
func (b *BrowserTool) Session(runID string) core.Terminator {
	return &browserSession{driver: b.driver, runID: runID}
}

type browserSession struct {
	driver BrowserDriver
	runID  string
	once   sync.Once
}

func (s *browserSession) Terminate(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		err = s.driver.Terminate(ctx, s.runID)
	})
	return err
}
