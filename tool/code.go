package tool

import (
	"errors"

	"github.com/hupe1980/teamflow/code"
	"github.com/hupe1980/teamflow/core"
)

// NewCodeTool returns the run_code tool used by the coder. A non-zero exit
// code is returned as a result so the model can react to it.
func NewCodeTool(executor code.Executor) *FunctionTool {
	return NewFunctionTool("run_code", "Execute a Python or Bash snippet and return stdout, stderr and the exit code. Print anything you want to see.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"language": map[string]any{"type": "string", "enum": []string{code.Python, code.Bash}},
				"code":     map[string]any{"type": "string", "description": "The source to execute"},
			},
			"required": []string{"language", "code"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			language, _ := args["language"].(string)
			source, _ := args["code"].(string)

			res, err := executor.Execute(tc.Context(), language, source)
			if errors.Is(err, code.ErrUnsupportedLanguage) {
				return nil, NewToolError("run_code", err.Error(), CodeBadInput)
			}
			if err != nil {
				return nil, err
			}
			return res, nil
		})
}
