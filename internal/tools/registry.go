package tools

import (
	"time"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/dasscoax/freshdesk-mcp/internal/observability"
	"github.com/dasscoax/freshdesk-mcp/internal/service"
)

// ToolConfig bundles dependencies for tool registration.
type ToolConfig struct {
	Service *service.TicketService
	Logger  *zap.Logger
	Metrics *observability.Metrics
	Timeout time.Duration
}

// NewServer builds the MCP server with every ticket tool registered.
func NewServer(name, version string, cfg ToolConfig) *server.MCPServer {
	s := server.NewMCPServer(name, version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithToolHandlerMiddleware(invocationMiddleware(cfg.Logger, cfg.Metrics, cfg.Timeout)),
	)

	h := NewTicketTools(cfg.Service, cfg.Logger)

	s.AddTool(filterTicketsTool(), h.FilterTickets)
	s.AddTool(unresolvedTicketsTool(), h.UnresolvedTickets)
	s.AddTool(currentAgentTool(), h.CurrentAgent)
	s.AddTool(squadTicketsTool(), h.SquadTickets)
	s.AddTool(listTicketsTool(), h.ListTickets)
	s.AddTool(getTicketTool(), h.GetTicket)
	s.AddTool(searchTicketsTool(), h.SearchTickets)
	s.AddTool(similarTicketsTool(), h.SimilarTickets)
	s.AddTool(searchAgentsTool(), h.SearchAgents)

	return s
}
