package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/dasscoax/freshdesk-mcp/internal/observability"
	apperrors "github.com/dasscoax/freshdesk-mcp/pkg/util"
)

// invocationMiddleware attaches an invocation id to the logs, applies the
// configured timeout, records counters, and converts domain errors into
// tool error results so the caller sees a code and message instead of a
// protocol failure.
func invocationMiddleware(logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			tool := req.Params.Name
			log := logger.With(
				zap.String("invocation_id", uuid.NewString()),
				zap.String("tool", tool),
			)

			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			start := time.Now()
			result, err := next(ctx, req)
			metrics.RecordToolCall(tool)

			if err != nil {
				domainErr := apperrors.ToDomainError(err)
				metrics.RecordToolError(tool, domainErr.Code)
				if domainErr.HTTPStatus >= 500 {
					log.Error("tool invocation failed",
						zap.Error(domainErr),
						zap.Duration("duration", time.Since(start)))
				} else {
					log.Warn("tool invocation rejected",
						zap.String("code", domainErr.Code),
						zap.String("reason", domainErr.Message),
						zap.Duration("duration", time.Since(start)))
				}
				return mcp.NewToolResultError(renderError(domainErr)), nil
			}

			log.Info("tool invocation completed", zap.Duration("duration", time.Since(start)))
			return result, nil
		}
	}
}

// renderError flattens a DomainError into the text carried by an error
// result: code and message first, details appended as JSON when present.
func renderError(err *apperrors.DomainError) string {
	msg := err.Code + ": " + err.Message
	if len(err.Details) > 0 {
		if encoded, marshalErr := json.Marshal(err.Details); marshalErr == nil {
			msg += "\ndetails: " + string(encoded)
		}
	}
	return msg
}
