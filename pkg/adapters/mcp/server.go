package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/sections"
	"github.com/aretw0/sections/pkg/markup"
	"github.com/aretw0/sections/pkg/ports"
	"github.com/aretw0/sections/pkg/template"
)

// TemplatesURI is the resource listing the registered templates.
const TemplatesURI = "sections://templates"

// NormalizeResponse aligns with the HTTP API and provides a unified structure across adapters.
type NormalizeResponse struct {
	HTML      string `json:"html" jsonschema_description:"The normalized document markup"`
	Changed   bool   `json:"changed" jsonschema_description:"Whether repair altered the document"`
	Cycles    int    `json:"cycles" jsonschema_description:"Post-fixer rounds the repair needed"`
	Converted int    `json:"converted" jsonschema_description:"Input nodes converted into the model"`
	Unmatched int    `json:"unmatched" jsonschema_description:"Input elements no template matched"`
	Rejected  int    `json:"rejected" jsonschema_description:"Input nodes rejected by the schema"`
}

// Engine defines the interface required by the MCP server.
type Engine interface {
	NormalizeContext(ctx context.Context, raw string) (sections.Result, error)
	Templates() []template.Definition
}

// Server wraps the sections Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	store     ports.DocumentStore
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance. store may be nil.
func NewServer(engine Engine, store ports.DocumentStore) *Server {
	s := &Server{
		engine:    engine,
		store:     store,
		mcpServer: server.NewMCPServer("sections-mcp", sections.Version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		slog.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("CORS Middleware", "method", r.Method, "path", r.URL.Path)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: normalize_document
	normalizeTool := mcp.NewTool("normalize_document",
		mcp.WithDescription("Repair an HTML document so every templated element has its slots, in declared order."),
		mcp.WithString("html", mcp.Required(), mcp.Description("The document markup")),
		mcp.WithOutputSchema[NormalizeResponse](),
	)
	s.mcpServer.AddTool(normalizeTool, mcp.NewStructuredToolHandler(s.handleNormalize))

	// TOOL: list_templates
	s.mcpServer.AddTool(mcp.NewTool("list_templates",
		mcp.WithDescription("List the registered templates and their markup."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, _ := json.Marshal(s.engine.Templates())
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	if s.store == nil {
		return
	}

	// TOOL: get_document
	s.mcpServer.AddTool(mcp.NewTool("get_document",
		mcp.WithDescription("Load a stored document by ID."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Document ID")),
	), s.handleGetDocument)
}

// Handler methods for structured tools

func (s *Server) handleNormalize(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (NormalizeResponse, error) {
	raw, _ := args["html"].(string)

	res, err := s.engine.NormalizeContext(ctx, markup.Sanitize(raw))
	if err != nil {
		slog.Warn("MCP Normalize: failed", "error", err, "size", len(raw))
		return NormalizeResponse{}, fmt.Errorf("normalize failed: %w", err)
	}

	return NormalizeResponse{
		HTML:      res.HTML,
		Changed:   res.Changed,
		Cycles:    res.Cycles,
		Converted: res.Report.Converted,
		Unmatched: res.Report.Unmatched,
		Rejected:  res.Report.Rejected,
	}, nil
}

func (s *Server) handleGetDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.store.Load(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}
	jsonBytes, _ := json.Marshal(doc)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) registerResources() {
	// EXPOSE: sections://templates
	s.mcpServer.AddResource(mcp.NewResource(TemplatesURI, "Registered Templates",
		mcp.WithMIMEType("application/json"),
	), s.readTemplates)
}

func (s *Server) readTemplates(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	defs := s.engine.Templates()
	if defs == nil {
		return nil, errors.New("no templates registered")
	}
	jsonBytes, _ := json.Marshal(defs)

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      TemplatesURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
