package tool

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hupe1980/teamflow/core"
)

const defaultFetchLimit = 64 << 10

// NewFetchTool returns the fetch_url tool used by the researcher. It GETs a
// web page and returns at most limit bytes of its body. limit <= 0 uses 64KiB.
func NewFetchTool(client *http.Client, limit int64) *FunctionTool {
	if client == nil {
		client = http.DefaultClient
	}
	if limit <= 0 {
		limit = defaultFetchLimit
	}

	return NewFunctionTool("fetch_url", "Fetch the content of a web page by URL.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"url": map[string]any{"type": "string", "description": "Absolute http(s) URL"},
			},
			"required": []string{"url"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			url, _ := args["url"].(string)
			if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
				return nil, NewToolError("fetch_url", fmt.Sprintf("unsupported url %q", url), CodeBadInput)
			}

			req, err := http.NewRequestWithContext(tc.Context(), http.MethodGet, url, nil)
			if err != nil {
				return nil, err
			}
			resp, err := client.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				return nil, NewToolError("fetch_url", url+" not found", CodeNotFound)
			}
			if resp.StatusCode >= 300 {
				return nil, fmt.Errorf("fetch %s: %s", url, resp.Status)
			}

			b, err := io.ReadAll(io.LimitReader(resp.Body, limit))
			if err != nil {
				return nil, err
			}
			return string(b), nil
		})
}
