// Package server exposes team runs over HTTP. Runs are streamed to the client
// as server-sent events; a client that disconnects cancels its run.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hupe1980/teamflow/core"
	"github.com/hupe1980/teamflow/logging"
	"github.com/hupe1980/teamflow/protocol"
	"github.com/hupe1980/teamflow/runner"
)

// Runner starts team runs.
type Runner interface {
	Run(ctx context.Context, messages []core.Message, optFns ...func(o *runner.RunOptions)) (string, <-chan protocol.Event, <-chan error, error)
}

// Options configures the HTTP handler.
type Options struct {
	// TeamMembers is the configured team; requests may only narrow it.
	TeamMembers []string
	// MemberConfigs is served by GET /api/team.
	MemberConfigs []core.MemberConfig
	// Metrics, when set, is mounted at /metrics.
	Metrics http.Handler
	// Logger for request handling.
	Logger logging.Logger
}

// ChatRequest is the body of POST /api/chat/stream.
type ChatRequest struct {
	Messages             []protocol.Message `json:"messages"`
	Debug                bool               `json:"debug"`
	DeepThinkingMode     bool               `json:"deep_thinking_mode"`
	SearchBeforePlanning bool               `json:"search_before_planning"`
	TeamMembers          []string           `json:"team_members"`
}

// TeamResponse is the body of GET /api/team.
type TeamResponse struct {
	TeamMembers   []string            `json:"team_members"`
	MemberConfigs []core.MemberConfig `json:"member_configs"`
}

type handler struct {
	runner        Runner
	teamMembers   []string
	memberConfigs []core.MemberConfig
	logger        logging.Logger
}

// NewHandler builds the chi router serving the API.
func NewHandler(r Runner, optFns ...func(o *Options)) http.Handler {
	opts := Options{
		TeamMembers: core.DefaultTeamMembers,
		Logger:      logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	h := &handler{
		runner:        r,
		teamMembers:   opts.TeamMembers,
		memberConfigs: opts.MemberConfigs,
		logger:        opts.Logger,
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.Get("/health", h.health)
	router.Route("/api", func(api chi.Router) {
		api.Get("/team", h.team)
		api.Post("/chat/stream", h.chatStream)
	})
	if opts.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	return router
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) team(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, TeamResponse{TeamMembers: h.teamMembers, MemberConfigs: h.memberConfigs})
}

func (h *handler) chatStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	for _, m := range req.TeamMembers {
		if !slices.Contains(h.teamMembers, m) {
			http.Error(w, fmt.Sprintf("unknown team member %q", m), http.StatusBadRequest)
			return
		}
	}

	messages := make([]core.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, core.Message{Role: m.Role, Content: m.Content, Name: m.Name})
	}

	runID, events, errs, err := h.runner.Run(r.Context(), messages, func(o *runner.RunOptions) {
		o.Debug = req.Debug
		o.DeepThinking = req.DeepThinkingMode
		o.SearchBeforePlanning = req.SearchBeforePlanning
		o.TeamMembers = req.TeamMembers
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrEmptyInput) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	logger := logging.ForRun(h.logger, runID)
	logger.Info("server.chat.stream.start", "request_id", middleware.GetReqID(r.Context()))

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Run-ID", runID)
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	start := time.Now()
	for ev := range events {
		if err := writeEvent(w, ev); err != nil {
			logger.Warn("server.chat.stream.write_failed", "error", err.Error())
			continue
		}
		flusher.Flush()
	}

	if err := <-errs; err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("server.chat.stream.client_gone")
			return
		}
		logger.Error("server.chat.stream.failed", "error", err.Error())
		if werr := writeEvent(w, protocol.NewError(err)); werr == nil {
			flusher.Flush()
		}
		return
	}

	logger.Info("server.chat.stream.complete", "duration_ms", time.Since(start).Milliseconds())
}

func writeEvent(w http.ResponseWriter, ev protocol.Event) error {
	frame, err := ev.SSE()
	if err != nil {
		return err
	}
	_, err = w.Write(frame)
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ListenAndServe serves handler on addr until ctx is cancelled, then shuts
// down gracefully within shutdownTimeout.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, readHeaderTimeout, shutdownTimeout time.Duration, logger logging.Logger) error {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server.listen", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("server.shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return <-errCh
}
