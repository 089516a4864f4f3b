// Package mcp provides an MCP (Model Context Protocol) server exposing the
// simulated process namespace.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/procsim/internal/ratelimit"
	"github.com/nvandessel/procsim/internal/service"
)

// Server wraps the MCP SDK server and provides procsim-specific functionality.
type Server struct {
	server       *sdk.Server
	svc          *service.Service
	logger       *slog.Logger
	audit        *AuditLogger
	toolLimiters ratelimit.ToolLimiters
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "procsim")
	Version string // Server version

	// Service answers browse, read and status requests.
	Service *service.Service

	// Logger defaults to a discarding logger.
	Logger *slog.Logger

	// Audit may be nil to disable tool auditing.
	Audit *AuditLogger
}

// NewServer creates a new MCP server with procsim tools and one resource
// per variable.
func NewServer(cfg *Config) (*Server, error) {
	if cfg.Service == nil {
		return nil, fmt.Errorf("mcp server requires a service")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			logger.Debug("mcp client initialized")
		},
	})

	s := &Server{
		server:       mcpServer,
		svc:          cfg.Service,
		logger:       logger,
		audit:        cfg.Audit,
		toolLimiters: ratelimit.NewToolLimiters(),
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	if err := s.registerResources(); err != nil {
		return nil, fmt.Errorf("failed to register resources: %w", err)
	}

	return s, nil
}

// Run serves MCP over stdio. It blocks until the client disconnects or the
// context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.RunTransport(ctx, &sdk.StdioTransport{})
}

// RunTransport serves a single session over t.
func (s *Server) RunTransport(ctx context.Context, t sdk.Transport) error {
	return s.server.Run(ctx, t)
}

// HTTPHandler returns a streamable HTTP handler serving this server.
func (s *Server) HTTPHandler() http.Handler {
	return sdk.NewStreamableHTTPHandler(func(*http.Request) *sdk.Server {
		return s.server
	}, nil)
}

// Close releases resources held by the server.
func (s *Server) Close() error {
	return s.audit.Close()
}
