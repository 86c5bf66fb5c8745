package server

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Leon4s4/dynamics-mcp/internal/dataverse"
	logpkg "github.com/Leon4s4/dynamics-mcp/internal/log"
)

// operationListing is the per-record-type view returned by
// dynamics_list_operations.
type operationListing struct {
	RecordType string                `json:"record_type"`
	Operations []dataverse.Operation `json:"operations"`
}

// handleListOperations implements the dynamics_list_operations tool.
func (s *Server) handleListOperations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	endpointID, err := request.RequireString("endpoint_id")
	if err != nil {
		return errorResponse("Missing or invalid 'endpoint_id' argument"), nil
	}

	grouped, err := s.registry.ListOperations(endpointID)
	if err != nil {
		return failureResponse(err), nil
	}

	recordType := request.GetString("record_type", "")
	listings := make([]operationListing, 0, len(grouped))
	for rt, ops := range grouped {
		if recordType != "" && rt != recordType {
			continue
		}
		listings = append(listings, operationListing{RecordType: rt, Operations: ops})
	}

	return successResponse("", listings), nil
}

// handleExecuteOperation implements the dynamics_execute_operation tool. An
// unknown operation name fails here without touching the network; argument
// precondition failures surface as validation errors from the executor.
func (s *Server) handleExecuteOperation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	endpointID, err := request.RequireString("endpoint_id")
	if err != nil {
		return errorResponse("Missing or invalid 'endpoint_id' argument"), nil
	}
	operation, err := request.RequireString("operation")
	if err != nil {
		return errorResponse("Missing or invalid 'operation' argument"), nil
	}

	var args map[string]interface{}
	if raw := request.GetArguments(); raw != nil {
		if inner, ok := raw["arguments"].(map[string]interface{}); ok {
			args = inner
		}
	}

	result, err := s.registry.Execute(ctx, endpointID, operation, args)
	if err != nil {
		s.logger.Debug("operation failed",
			slog.String(logpkg.EndpointKey, endpointID),
			slog.String(logpkg.OperationKey, operation),
			slog.Any("error", err),
		)
		return failureResponse(err), nil
	}

	return successResponse("", result), nil
}
