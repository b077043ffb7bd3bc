// Package http exposes an Acheron engine over a JSON API with a server-sent
// events stream of state diffs.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/acheron"
	"github.com/aretw0/acheron/internal/logging"
	"github.com/aretw0/acheron/internal/presentation/graph"
	"github.com/aretw0/acheron/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Engine is the subset of *acheron.Engine the API needs.
type Engine interface {
	Snapshot() acheron.Snapshot
	Subscribe(fn func(acheron.Snapshot)) (cancel func())
	Choose(ctx context.Context, i int) error
	UseHint(ctx context.Context) bool
	Reset(ctx context.Context, full bool) error
	SwitchToRandomOther(ctx context.Context) (domain.MissionInfo, error)
	SwitchTo(ctx context.Context, id string) (domain.MissionInfo, error)
	Missions() []domain.MissionInfo
	Statistics() domain.Statistics
	HintProbabilities() []domain.ChoiceProbability
	MaxDepth() int
	ExportReport() string
	ReportFileName() string
	Briefing() string
	Scenario() (*domain.Scenario, error)
	Save(ctx context.Context) error
	Restore(ctx context.Context) (bool, error)
	ClearSaved(ctx context.Context) error
}

var _ Engine = (*acheron.Engine)(nil)

// Server serves the engine API.
type Server struct {
	Engine  Engine
	Streams *StreamManager
	logger  *slog.Logger
	metrics http.Handler
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// NewHandler creates the HTTP handler for engine. It subscribes to the engine
// for the lifetime of the process to feed /events.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{
		Engine:  engine,
		Streams: NewStreamManager(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger
	s.Streams.Follow(engine)

	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/state", s.GetState)
	r.Get("/node", s.GetNode)
	r.Get("/briefing", s.GetBriefing)
	r.Post("/choose", s.Choose)
	r.Post("/hint", s.UseHint)
	r.Post("/reset", s.Reset)
	r.Get("/missions", s.ListMissions)
	r.Post("/missions/switch", s.SwitchMission)
	r.Get("/stats", s.GetStatistics)
	r.Get("/probabilities", s.GetProbabilities)
	r.Get("/depth", s.GetDepth)
	r.Get("/report", s.GetReport)
	r.Get("/graph", s.GetGraph)
	r.Post("/save", s.Save)
	r.Post("/load", s.Load)
	r.Delete("/save", s.ClearSaved)
	r.Get("/events", s.SubscribeEvents)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	return r
}

type ctxKey struct{}

// requestID tags each request with an X-Request-ID, reusing the caller's when present.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "request_id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// RequestID returns the id assigned to the request carried by ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ChooseRequest selects a choice of the current node by 0-based index.
type ChooseRequest struct {
	Index int `json:"index"`
}

// ResetRequest selects a full reset (attempt counted) or a fresh one.
type ResetRequest struct {
	Full bool `json:"full"`
}

// SwitchRequest names the mission to activate; an empty id picks a random other mission.
type SwitchRequest struct {
	ID string `json:"id,omitempty"`
}

// HintResponse reports the outcome of a hint request.
type HintResponse struct {
	Granted       bool                       `json:"granted"`
	Remaining     int                        `json:"hintsRemaining"`
	Probabilities []domain.ChoiceProbability `json:"probabilities,omitempty"`
}

// NodeResponse is the current node with the per-choice flags of the session.
type NodeResponse struct {
	Node      *domain.Node         `json:"node"`
	Choices   []domain.ChoiceState `json:"choices"`
	Exhausted bool                 `json:"exhausted"`
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "acheron-http",
		"version": strings.TrimSpace(acheron.Version),
	})
}

// GetState handles GET /state.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Engine.Snapshot())
}

// GetNode handles GET /node.
func (s *Server) GetNode(w http.ResponseWriter, r *http.Request) {
	snap := s.Engine.Snapshot()
	if snap.Node == nil {
		s.writeError(w, r, domain.ErrNoScenario)
		return
	}
	s.writeJSON(w, http.StatusOK, NodeResponse{Node: snap.Node, Choices: snap.Choices, Exhausted: snap.Exhausted})
}

// GetBriefing handles GET /briefing.
func (s *Server) GetBriefing(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"briefing": s.Engine.Briefing()})
}

// Choose handles POST /choose.
func (s *Server) Choose(w http.ResponseWriter, r *http.Request) {
	var body ChooseRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("choose: invalid request body", "err", err, "request_id", RequestID(r.Context()))
		return
	}
	if err := s.Engine.Choose(r.Context(), body.Index); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.Engine.Snapshot())
}

// UseHint handles POST /hint.
func (s *Server) UseHint(w http.ResponseWriter, r *http.Request) {
	granted := s.Engine.UseHint(r.Context())
	snap := s.Engine.Snapshot()
	resp := HintResponse{Granted: granted}
	if snap.State != nil {
		resp.Remaining = snap.State.HintsRemaining
	}
	if granted {
		resp.Probabilities = s.Engine.HintProbabilities()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// Reset handles POST /reset. An empty body is a fresh reset.
func (s *Server) Reset(w http.ResponseWriter, r *http.Request) {
	var body ResetRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}
	if err := s.Engine.Reset(r.Context(), body.Full); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.Engine.Snapshot())
}

// ListMissions handles GET /missions.
func (s *Server) ListMissions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Engine.Missions())
}

// SwitchMission handles POST /missions/switch.
func (s *Server) SwitchMission(w http.ResponseWriter, r *http.Request) {
	var body SwitchRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	id, err := acheron.SanitizeInput(body.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var info domain.MissionInfo
	if id = strings.TrimSpace(id); id != "" {
		info, err = s.Engine.SwitchTo(r.Context(), id)
	} else {
		info, err = s.Engine.SwitchToRandomOther(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

// GetStatistics handles GET /stats.
func (s *Server) GetStatistics(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Engine.Statistics())
}

// GetProbabilities handles GET /probabilities.
func (s *Server) GetProbabilities(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Engine.HintProbabilities())
}

// GetDepth handles GET /depth.
func (s *Server) GetDepth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]int{"maxDepth": s.Engine.MaxDepth()})
}

// GetReport handles GET /report and serves the markdown as an attachment.
func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	md := s.Engine.ExportReport()
	if md == "" {
		s.writeError(w, r, domain.ErrNoScenario)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.Engine.ReportFileName()))
	_, _ = w.Write([]byte(md))
}

// GetGraph handles GET /graph. format=json returns the scenario, anything else Mermaid.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	sc, err := s.Engine.Scenario()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if r.URL.Query().Get("format") == "json" {
		s.writeJSON(w, http.StatusOK, sc)
		return
	}

	var overlay *graph.GraphOverlay
	if snap := s.Engine.Snapshot(); snap.State != nil {
		overlay = &graph.GraphOverlay{
			VisitedNodes: snap.State.History,
			CurrentNode:  snap.State.CurrentNodeID,
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(graph.GenerateMermaid(sc, overlay)))
}

// Save handles POST /save.
func (s *Server) Save(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.Save(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"saved": true})
}

// Load handles POST /load.
func (s *Server) Load(w http.ResponseWriter, r *http.Request) {
	resumed, err := s.Engine.Restore(r.Context())
	if err != nil && !errors.Is(err, domain.ErrCorruptRecord) {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"resumed": resumed,
		"state":   s.Engine.Snapshot(),
	})
}

// ClearSaved handles DELETE /save.
func (s *Server) ClearSaved(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.ClearSaved(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubscribeEvents handles GET /events (SSE). Each message is a domain.StateDiff.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("events: streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	var watchList []string
	if watch := r.URL.Query().Get("watch"); watch != "" {
		watchList = strings.Split(watch, ",")
	}

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("events: client disconnected", "request_id", RequestID(r.Context()))
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watchList) > 0 && !matchesWatch(msg, watchList) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// matchesWatch keeps a diff when any watched field is present.
func matchesWatch(msg string, watchList []string) bool {
	var diff domain.StateDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	for _, field := range watchList {
		switch strings.TrimSpace(field) {
		case "node":
			if diff.CurrentNodeID != nil {
				return true
			}
		case "history":
			if diff.HistoryParams != nil || diff.Restarted {
				return true
			}
		case "status":
			if diff.Status != nil {
				return true
			}
		case "hints":
			if diff.HintsRemaining != nil {
				return true
			}
		case "attempts":
			if diff.Attempts != nil {
				return true
			}
		}
	}
	return false
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

// writeError maps engine errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidBranch):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSessionOver), errors.Is(err, acheron.ErrChoiceUsed):
		code = http.StatusConflict
	case errors.Is(err, domain.ErrMissionNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrNoScenario):
		code = http.StatusServiceUnavailable
	case errors.Is(err, acheron.ErrChoiceOutOfRange):
		code = http.StatusBadRequest
	}
	if code == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err, "request_id", RequestID(r.Context()))
	}
	s.writeJSON(w, code, map[string]string{"error": err.Error()})
}
