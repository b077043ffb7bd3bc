// Package mcp exposes an Acheron engine as a Model Context Protocol server,
// so an assistant can play or analyze a simulation through tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/acheron"
	"github.com/aretw0/acheron/internal/logging"
	"github.com/aretw0/acheron/internal/presentation/graph"
	"github.com/aretw0/acheron/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const graphURI = "acheron://graph"

// StateResponse is the structured result of every tool that changes or reads the session.
type StateResponse struct {
	Mission  domain.MissionInfo   `json:"mission" jsonschema_description:"Active mission and its slot in the catalog"`
	Node     *domain.Node         `json:"node,omitempty" jsonschema_description:"Node the session sits on"`
	State    *domain.SessionState `json:"state" jsonschema_description:"Session state"`
	Terminal bool                 `json:"terminal" jsonschema_description:"True once the mission is won or failed"`

	Choices   []domain.ChoiceState `json:"choices" jsonschema_description:"Choices of the node; disabled ones were already taken and are refused until every choice here has been taken"`
	Exhausted bool                 `json:"exhausted" jsonschema_description:"True once every choice of the node has been taken"`
}

// HintResponse is the structured result of use_hint.
type HintResponse struct {
	Granted       bool                       `json:"granted"`
	Remaining     int                        `json:"hintsRemaining"`
	Probabilities []domain.ChoiceProbability `json:"probabilities"`
}

// Engine is the subset of *acheron.Engine the tools need.
type Engine interface {
	Snapshot() acheron.Snapshot
	Choose(ctx context.Context, i int) error
	UseHint(ctx context.Context) bool
	Reset(ctx context.Context, full bool) error
	SwitchToRandomOther(ctx context.Context) (domain.MissionInfo, error)
	SwitchTo(ctx context.Context, id string) (domain.MissionInfo, error)
	Statistics() domain.Statistics
	HintProbabilities() []domain.ChoiceProbability
	ExportReport() string
	Scenario() (*domain.Scenario, error)
}

var _ Engine = (*acheron.Engine)(nil)

// Server wraps the engine and exposes it as an MCP server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP server for engine.
func NewServer(engine Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		engine:    engine,
		logger:    logger,
		mcpServer: server.NewMCPServer("acheron-mcp", strings.TrimSpace(acheron.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, mainly for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves on addr using SSE until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Return the current node, its choices and the session state."),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleGetState))

	s.mcpServer.AddTool(mcp.NewTool("choose",
		mcp.WithDescription("Take a choice of the current node by its 1-based number."),
		mcp.WithNumber("choice", mcp.Required(), mcp.Description("1-based choice number as listed in node.choices")),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleChoose))

	s.mcpServer.AddTool(mcp.NewTool("use_hint",
		mcp.WithDescription("Spend one hint and get the success weight of each choice."),
		mcp.WithOutputSchema[HintResponse](),
	), mcp.NewStructuredToolHandler(s.handleUseHint))

	s.mcpServer.AddTool(mcp.NewTool("reset",
		mcp.WithDescription("Restart the mission. full=true counts one more attempt."),
		mcp.WithBoolean("full", mcp.Description("Count a new attempt instead of starting fresh")),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleReset))

	s.mcpServer.AddTool(mcp.NewTool("switch_mission",
		mcp.WithDescription("Activate a mission by id, or a random other one when id is omitted."),
		mcp.WithString("id", mcp.Description("Mission identity key")),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleSwitch))

	s.mcpServer.AddTool(mcp.NewTool("get_statistics",
		mcp.WithDescription("Session statistics: elapsed time, attempts, achievements, captured flags, depth."),
		mcp.WithOutputSchema[domain.Statistics](),
	), mcp.NewStructuredToolHandler(s.handleStatistics))

	s.mcpServer.AddTool(mcp.NewTool("export_report",
		mcp.WithDescription("Render the markdown attack path report."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		md := s.engine.ExportReport()
		if md == "" {
			return mcp.NewToolResultError(domain.ErrNoScenario.Error()), nil
		}
		return mcp.NewToolResultText(md), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the active scenario graph as a Mermaid flowchart."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sc, err := s.engine.Scenario()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("graph unavailable: %v", err)), nil
		}
		return mcp.NewToolResultText(graph.GenerateMermaid(sc, s.overlay())), nil
	})
}

func (s *Server) overlay() *graph.GraphOverlay {
	snap := s.engine.Snapshot()
	if snap.State == nil {
		return nil
	}
	return &graph.GraphOverlay{VisitedNodes: snap.State.History, CurrentNode: snap.State.CurrentNodeID}
}

func (s *Server) stateResponse() StateResponse {
	snap := s.engine.Snapshot()
	resp := StateResponse{
		Mission:   snap.Mission,
		Node:      snap.Node,
		State:     snap.State,
		Choices:   snap.Choices,
		Exhausted: snap.Exhausted,
	}
	if snap.State != nil {
		resp.Terminal = snap.State.Status.IsTerminal()
	}
	return resp
}

func (s *Server) handleGetState(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (StateResponse, error) {
	return s.stateResponse(), nil
}

func (s *Server) handleChoose(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (StateResponse, error) {
	n, ok := args["choice"].(float64)
	if !ok {
		return StateResponse{}, errors.New("choice must be a number")
	}
	if err := s.engine.Choose(ctx, int(n)-1); err != nil {
		s.logger.Warn("mcp choose rejected", "choice", int(n), "err", err)
		return StateResponse{}, fmt.Errorf("choose failed: %w", err)
	}
	return s.stateResponse(), nil
}

func (s *Server) handleUseHint(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (HintResponse, error) {
	granted := s.engine.UseHint(ctx)
	resp := HintResponse{Granted: granted, Probabilities: []domain.ChoiceProbability{}}
	if snap := s.engine.Snapshot(); snap.State != nil {
		resp.Remaining = snap.State.HintsRemaining
	}
	if granted {
		resp.Probabilities = s.engine.HintProbabilities()
	}
	return resp, nil
}

func (s *Server) handleReset(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (StateResponse, error) {
	full, _ := args["full"].(bool)
	if err := s.engine.Reset(ctx, full); err != nil {
		return StateResponse{}, fmt.Errorf("reset failed: %w", err)
	}
	return s.stateResponse(), nil
}

func (s *Server) handleSwitch(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (StateResponse, error) {
	raw, _ := args["id"].(string)
	id, err := acheron.SanitizeInput(raw)
	if err != nil {
		return StateResponse{}, err
	}
	if id = strings.TrimSpace(id); id != "" {
		_, err = s.engine.SwitchTo(ctx, id)
	} else {
		_, err = s.engine.SwitchToRandomOther(ctx)
	}
	if err != nil {
		return StateResponse{}, fmt.Errorf("switch failed: %w", err)
	}
	return s.stateResponse(), nil
}

func (s *Server) handleStatistics(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (domain.Statistics, error) {
	return s.engine.Statistics(), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(graphURI, "Active Scenario",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		sc, err := s.engine.Scenario()
		if err != nil {
			return nil, fmt.Errorf("failed to read scenario: %w", err)
		}
		jsonBytes, _ := json.Marshal(sc)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      graphURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
