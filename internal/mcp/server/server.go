// Package server implements the MCP server that exposes dynamically
// synthesized Dataverse operations as tools.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Leon4s4/dynamics-mcp/internal/dataverse"
	logpkg "github.com/Leon4s4/dynamics-mcp/internal/log"
	"github.com/Leon4s4/dynamics-mcp/pkg/errors"
)

// Server wraps the MCP server and the endpoint registry it fronts.
type Server struct {
	mcpServer *server.MCPServer
	registry  *dataverse.Registry
	name      string
	version   string
	logger    *slog.Logger
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	// Name is the server name (default: "dynamics-mcp")
	Name string

	// Version is the dynamics-mcp version
	Version string

	// Registry is the endpoint registry the tools operate on (required)
	Registry *dataverse.Registry

	// Logger receives server logs; nil falls back to the env-configured default
	Logger *slog.Logger
}

// NewServer creates a new MCP server instance.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if config.Name == "" {
		config.Name = "dynamics-mcp"
	}
	if config.Version == "" {
		config.Version = "dev"
	}
	logger := config.Logger
	if logger == nil {
		logger = logpkg.New(logpkg.FromEnv())
	}

	s := &Server{
		mcpServer: server.NewMCPServer(config.Name, config.Version),
		registry:  config.Registry,
		name:      config.Name,
		version:   config.Version,
		logger:    logpkg.WithComponent(logger, "mcp-server"),
	}

	s.registerTools()
	return s, nil
}

// registerTools registers the fixed tool surface with the MCP server. The
// operations these tools expose are synthesized at runtime; the tool set
// itself never changes.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "dynamics_register_endpoint",
		Description: "Register a Dynamics 365 / Dataverse endpoint: authenticates, introspects the entity schema, and synthesizes a callable operation catalog. Returns the endpoint id used by every other tool.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"connection_string": map[string]interface{}{
					"type":        "string",
					"description": "Dynamics connection string (Url=...;ClientId=...;ClientSecret=... or Url=...;Username=...;Password=...)",
				},
				"url": map[string]interface{}{
					"type":        "string",
					"description": "Instance base URL (alternative to connection_string)",
				},
				"client_id": map[string]interface{}{
					"type":        "string",
					"description": "OAuth client id for the client-credentials flow",
				},
				"client_secret": map[string]interface{}{
					"type":        "string",
					"description": "OAuth client secret for the client-credentials flow",
				},
				"username": map[string]interface{}{
					"type":        "string",
					"description": "Username for the password flow",
				},
				"password": map[string]interface{}{
					"type":        "string",
					"description": "Password for the password flow",
				},
			},
		},
	}, s.handleRegisterEndpoint)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "dynamics_list_operations",
		Description: "List the synthesized operations of a registered endpoint, grouped by record type.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"endpoint_id": map[string]interface{}{
					"type":        "string",
					"description": "Endpoint id returned by dynamics_register_endpoint",
				},
				"record_type": map[string]interface{}{
					"type":        "string",
					"description": "Restrict the listing to one record type (logical name)",
				},
			},
			Required: []string{"endpoint_id"},
		},
	}, s.handleListOperations)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "dynamics_execute_operation",
		Description: "Execute one synthesized operation by name with a JSON argument object. Use dynamics_list_operations to discover names and input schemas.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"endpoint_id": map[string]interface{}{
					"type":        "string",
					"description": "Endpoint id returned by dynamics_register_endpoint",
				},
				"operation": map[string]interface{}{
					"type":        "string",
					"description": "Operation name, e.g. create_account or search_account_by_name",
				},
				"arguments": map[string]interface{}{
					"type":        "object",
					"description": "Arguments matching the operation's input schema",
				},
			},
			Required: []string{"endpoint_id", "operation"},
		},
	}, s.handleExecuteOperation)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "dynamics_refresh_endpoint",
		Description: "Re-introspect a registered endpoint and rebuild its operation catalog. A failed refresh keeps the previous catalog intact.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"endpoint_id": map[string]interface{}{
					"type":        "string",
					"description": "Endpoint id returned by dynamics_register_endpoint",
				},
			},
			Required: []string{"endpoint_id"},
		},
	}, s.handleRefreshEndpoint)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "dynamics_endpoint_status",
		Description: "Report the status of a registered endpoint, or of all endpoints when no id is given.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"endpoint_id": map[string]interface{}{
					"type":        "string",
					"description": "Endpoint id; omit to list every registered endpoint",
				},
			},
		},
	}, s.handleEndpointStatus)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "dynamics_unregister_endpoint",
		Description: "Unregister an endpoint and discard its operation catalog.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"endpoint_id": map[string]interface{}{
					"type":        "string",
					"description": "Endpoint id returned by dynamics_register_endpoint",
				},
			},
			Required: []string{"endpoint_id"},
		},
	}, s.handleUnregisterEndpoint)
}

// Run starts the MCP server using stdio transport.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting dynamics MCP server", slog.String("version", s.version))

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down dynamics MCP server")
	// The mcp-go stdio server stops when ServeStdio returns.
	return nil
}

// resultEnvelope is the uniform result shape every tool returns. Failures
// carry success=false and a human-readable message; nothing faults through
// to the host.
type resultEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// successResponse marshals a success envelope.
func successResponse(message string, data any) *mcp.CallToolResult {
	payload, err := json.MarshalIndent(resultEnvelope{Success: true, Message: message, Data: data}, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(string(payload)),
		},
	}
}

// failureResponse turns a core error into the uniform failure shape,
// prefixing the error category when the error carries one.
func failureResponse(err error) *mcp.CallToolResult {
	var classifier errors.ErrorClassifier
	if errors.As(err, &classifier) {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %s", classifier.ErrorType(), err.Error()))
	}
	return mcp.NewToolResultError(err.Error())
}

// errorResponse reports a precondition failure detected at the tool boundary.
func errorResponse(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}
