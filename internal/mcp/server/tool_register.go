package server

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Leon4s4/dynamics-mcp/internal/dataverse"
)

// handleRegisterEndpoint implements the dynamics_register_endpoint tool.
// Credentials arrive either as a connection string or as discrete fields;
// the connection string wins when both are present.
func (s *Server) handleRegisterEndpoint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var creds dataverse.Credentials
	if connString := request.GetString("connection_string", ""); connString != "" {
		creds = dataverse.ParseConnectionString(connString)
	} else {
		creds = dataverse.Credentials{
			URL:          request.GetString("url", ""),
			ClientID:     request.GetString("client_id", ""),
			ClientSecret: request.GetString("client_secret", ""),
			Username:     request.GetString("username", ""),
			Password:     request.GetString("password", ""),
			AuthType:     "OAuth",
			LoginPrompt:  "Never",
		}
	}

	status, err := s.registry.Register(ctx, creds)
	if err != nil {
		s.logger.Warn("endpoint registration failed", slog.Any("error", err))
		return failureResponse(err), nil
	}

	return successResponse("endpoint registered", status), nil
}

// handleUnregisterEndpoint implements the dynamics_unregister_endpoint tool.
func (s *Server) handleUnregisterEndpoint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	endpointID, err := request.RequireString("endpoint_id")
	if err != nil {
		return errorResponse("Missing or invalid 'endpoint_id' argument"), nil
	}

	if err := s.registry.Unregister(endpointID); err != nil {
		return failureResponse(err), nil
	}
	return successResponse("endpoint unregistered", map[string]string{"endpoint_id": endpointID}), nil
}

// handleRefreshEndpoint implements the dynamics_refresh_endpoint tool.
func (s *Server) handleRefreshEndpoint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	endpointID, err := request.RequireString("endpoint_id")
	if err != nil {
		return errorResponse("Missing or invalid 'endpoint_id' argument"), nil
	}

	status, err := s.registry.Refresh(ctx, endpointID)
	if err != nil {
		return failureResponse(err), nil
	}
	return successResponse("endpoint refreshed", status), nil
}

// handleEndpointStatus implements the dynamics_endpoint_status tool.
func (s *Server) handleEndpointStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if endpointID := request.GetString("endpoint_id", ""); endpointID != "" {
		status, err := s.registry.Status(endpointID)
		if err != nil {
			return failureResponse(err), nil
		}
		return successResponse("", status), nil
	}

	statuses := make([]dataverse.EndpointStatus, 0)
	for _, id := range s.registry.EndpointIDs() {
		if status, err := s.registry.Status(id); err == nil {
			statuses = append(statuses, status)
		}
	}
	return successResponse("", statuses), nil
}
