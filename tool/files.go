package tool

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hupe1980/teamflow/core"
)

// FileTools returns read_file, write_file and list_directory tools confined
// to root. They back the file_manager worker.
func FileTools(root string) []Tool {
	fs := &sandbox{root: root}
	return []Tool{
		NewFunctionTool("read_file", "Read a text file from the workspace.",
			pathSchema("Relative path of the file to read"), fs.read),
		NewFunctionTool("write_file", "Write text to a file in the workspace, creating parent directories.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path":    map[string]any{"type": "string", "description": "Relative path of the file to write"},
					"content": map[string]any{"type": "string", "description": "Full file content"},
				},
				"required": []string{"path", "content"},
			}, fs.write),
		NewFunctionTool("list_directory", "List entries of a workspace directory.",
			pathSchema("Relative directory path, '.' for the workspace root"), fs.list),
	}
}

func pathSchema(desc string) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{"path": map[string]any{"type": "string", "description": desc}},
		"required":   []string{"path"},
	}
}

type sandbox struct {
	root string
}

func (s *sandbox) resolve(tool, rel string) (string, error) {
	root, err := filepath.Abs(s.root)
	if err != nil {
		return "", err
	}
	p := filepath.Join(root, filepath.Clean("/"+rel))
	if p != root && !strings.HasPrefix(p, root+string(filepath.Separator)) {
		return "", NewToolError(tool, fmt.Sprintf("path %q escapes the workspace", rel), CodeBadInput)
	}
	return p, nil
}

func (s *sandbox) read(tc *core.ToolContext, args map[string]any) (any, error) {
	p, err := s.resolve("read_file", args["path"].(string))
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, NewToolError("read_file", fmt.Sprintf("%s does not exist", args["path"]), CodeNotFound)
	}
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *sandbox) write(tc *core.ToolContext, args map[string]any) (any, error) {
	p, err := s.resolve("write_file", args["path"].(string))
	if err != nil {
		return nil, err
	}
	content, _ := args["content"].(string)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		return nil, err
	}
	tc.LogInfo("tool.file.written", "path", args["path"], "bytes", len(content))
	return fmt.Sprintf("wrote %d bytes to %s", len(content), args["path"]), nil
}

func (s *sandbox) list(tc *core.ToolContext, args map[string]any) (any, error) {
	p, err := s.resolve("list_directory", args["path"].(string))
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(p)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	return strings.Join(names, "\n"), nil
}
