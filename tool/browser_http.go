package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPBrowserDriver drives a remote browser automation service. The service
// executes natural language instructions in a browser session keyed by the
// run id:
//
//	POST {base}/run        {"session_id": "...", "instruction": "..."} -> {"result": "..."}
//	POST {base}/terminate  {"session_id": "..."} releases the session
type HTTPBrowserDriver struct {
	baseURL string
	client  *http.Client
}

var _ BrowserDriver = (*HTTPBrowserDriver)(nil)

// NewHTTPBrowserDriver creates a driver for the service at baseURL. A nil
// client uses http.DefaultClient.
func NewHTTPBrowserDriver(baseURL string, client *http.Client) *HTTPBrowserDriver {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPBrowserDriver{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// Run implements BrowserDriver.
func (d *HTTPBrowserDriver) Run(ctx context.Context, runID, instruction string) (string, error) {
	var out struct {
		Result string `json:"result"`
	}
	if err := d.post(ctx, "/run", map[string]string{"session_id": runID, "instruction": instruction}, &out); err != nil {
		return "", err
	}
	return out.Result, nil
}

// Terminate implements BrowserDriver.
func (d *HTTPBrowserDriver) Terminate(ctx context.Context, runID string) error {
	return d.post(ctx, "/terminate", map[string]string{"session_id": runID}, nil)
}

func (d *HTTPBrowserDriver) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("browser service %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("browser service %s: %s: %s", path, resp.Status, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("browser service %s: decode response: %w", path, err)
	}
	return nil
}
