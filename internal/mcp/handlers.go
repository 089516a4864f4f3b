package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/procsim/internal/logging"
	"github.com/nvandessel/procsim/internal/namespace"
	"github.com/nvandessel/procsim/internal/ratelimit"
	"github.com/nvandessel/procsim/internal/service"
)

// registerTools registers all procsim MCP tools with the server.
func (s *Server) registerTools() error {
	// Register sim_browse tool
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "sim_browse",
		Description: "List a namespace node and its direct children (containers and variables)",
	}, s.handleSimBrowse)

	// Register sim_read tool
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "sim_read",
		Description: "Read the current value of one or more simulated process variables",
	}, s.handleSimRead)

	// Register sim_status tool
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "sim_status",
		Description: "Report server build info, uptime and counter ticks",
	}, s.handleSimStatus)

	return nil
}

// registerResources registers the namespace tree resource and one resource
// per variable. Variables are evaluated on every resource read.
func (s *Server) registerResources() error {
	s.server.AddResource(&sdk.Resource{
		URI:         s.svc.BrowseURI(),
		Name:        "procsim-namespace",
		Description: "Outline of the simulated process namespace with resource URIs of every variable.",
		MIMEType:    "text/markdown",
	}, s.handleBrowseResource)

	for _, n := range s.svc.Space().Variables() {
		s.server.AddResource(&sdk.Resource{
			URI:         s.svc.URI(n),
			Name:        n.BrowseName(),
			Description: fmt.Sprintf("%s (%s), evaluated on every read.", n.DisplayName(), n.ValueType()),
			MIMEType:    "application/json",
		}, s.handleVariableResource)
	}

	return nil
}

// handleBrowseResource returns the namespace outline.
func (s *Server) handleBrowseResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{
				URI:      s.svc.BrowseURI(),
				MIMEType: "text/markdown",
				Text:     s.svc.Tree(),
			},
		},
	}, nil
}

// handleVariableResource evaluates the variable named by the request URI.
func (s *Server) handleVariableResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	uri := req.Params.URI

	path, err := s.svc.PathFromURI(uri)
	if err != nil {
		return nil, err
	}

	n, err := s.svc.Space().Lookup(path)
	if errors.Is(err, namespace.ErrNotFound) {
		return nil, sdk.ResourceNotFoundError(uri)
	}
	if err != nil {
		return nil, err
	}

	res, err := s.svc.ReadOne(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	body, err := json.Marshal(VariableResource{
		ReadResult: res,
		BrowseName: n.BrowseName(),
		NodeID:     n.ID(),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", path, err)
	}

	s.logger.Log(ctx, logging.LevelTrace, "resource read", "uri", uri)

	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(body),
			},
		},
	}, nil
}

func (s *Server) handleSimBrowse(ctx context.Context, req *sdk.CallToolRequest, args SimBrowseInput) (_ *sdk.CallToolResult, _ SimBrowseOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("sim_browse", start, retErr, auditParams(nonEmpty(args.Path)))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "sim_browse"); err != nil {
		return nil, SimBrowseOutput{}, err
	}

	res, err := s.svc.Browse(args.Path)
	if err != nil {
		return nil, SimBrowseOutput{}, fmt.Errorf("browse %q: %w", args.Path, err)
	}

	return nil, SimBrowseOutput{Node: res.Node, Children: res.Children}, nil
}

func (s *Server) handleSimRead(ctx context.Context, req *sdk.CallToolRequest, args SimReadInput) (_ *sdk.CallToolResult, _ SimReadOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("sim_read", start, retErr, auditParams(args.Paths))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "sim_read"); err != nil {
		return nil, SimReadOutput{}, err
	}

	var results []service.ReadResult
	if len(args.Paths) > 0 {
		results = s.svc.Read(args.Paths)
	} else {
		results = s.svc.ReadAll()
	}

	out := SimReadOutput{Results: results, Count: len(results)}
	for _, r := range results {
		if r.Error != "" {
			out.Errors++
		}
	}

	return nil, out, nil
}

func (s *Server) handleSimStatus(ctx context.Context, req *sdk.CallToolRequest, args SimStatusInput) (_ *sdk.CallToolResult, _ SimStatusOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("sim_status", start, retErr, nil)
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "sim_status"); err != nil {
		return nil, SimStatusOutput{}, err
	}

	return nil, SimStatusOutput{Status: s.svc.Status()}, nil
}

func nonEmpty(path string) []string {
	if path == "" {
		return nil
	}
	return []string{path}
}
