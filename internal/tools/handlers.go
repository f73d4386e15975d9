// Package tools registers the MCP tool surface and maps tool arguments
// onto ticket service inputs.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/dasscoax/freshdesk-mcp/internal/query"
	"github.com/dasscoax/freshdesk-mcp/internal/service"
	apperrors "github.com/dasscoax/freshdesk-mcp/pkg/util"
)

// TicketTools holds the handlers behind every registered tool.
type TicketTools struct {
	service *service.TicketService
	logger  *zap.Logger
}

// NewTicketTools creates the handler set around the ticket service.
func NewTicketTools(svc *service.TicketService, logger *zap.Logger) *TicketTools {
	return &TicketTools{service: svc, logger: logger}
}

// FilterTickets handles filter_tickets.
func (h *TicketTools) FilterTickets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	input := service.FilterInput{
		AssigneeName: req.GetString("assignee_name", ""),
		OrderBy:      req.GetString("order_by", service.DefaultOrderBy),
		OrderType:    req.GetString("order_type", service.DefaultOrderType),
		Exclude:      req.GetString("exclude", service.DefaultExclude),
		Include:      req.GetString("include", service.DefaultInclude),
	}

	var err error
	if input.Page, err = intArg(args, "page", 1); err != nil {
		return nil, err
	}
	if input.PerPage, err = intArg(args, "per_page", service.DefaultPerPage); err != nil {
		return nil, err
	}
	if input.Status, err = optionalInt(args, "status"); err != nil {
		return nil, err
	}
	if input.Priority, err = optionalInt(args, "priority"); err != nil {
		return nil, err
	}

	if raw, present := args["query_hash"]; present && raw != nil {
		list, ok := raw.([]any)
		if !ok {
			return nil, apperrors.NewInvalidParameter("query_hash must be an array of condition objects", nil)
		}
		conditions, err := query.ParseConditions(list)
		if err != nil {
			return nil, err
		}
		input.QueryHash = conditions
	}

	result, err := h.service.Filter(ctx, input)
	if err != nil {
		return nil, err
	}
	return jsonResult(result)
}

// UnresolvedTickets handles get_unresolved_tickets.
func (h *TicketTools) UnresolvedTickets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	input := service.UnresolvedInput{AssigneeName: req.GetString("assignee_name", "")}

	var err error
	if input.AssigneeID, err = optionalInt64(args, "assignee_id"); err != nil {
		return nil, err
	}
	if input.Status, err = optionalIntSlice(args, "status"); err != nil {
		return nil, err
	}

	result, err := h.service.UnresolvedForAgent(ctx, input)
	if err != nil {
		return nil, err
	}
	return jsonResult(result)
}

// CurrentAgent handles get_current_agent_id.
func (h *TicketTools) CurrentAgent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := h.service.CurrentAgent(ctx)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(raw)), nil
}

// SquadTickets handles get_unresolved_tickets_by_squad.
func (h *TicketTools) SquadTickets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input := service.SquadInput{
		Squad:  req.GetString("squad", ""),
		Status: req.GetString("status", ""),
	}

	result, err := h.service.UnresolvedBySquad(ctx, input)
	if err != nil {
		return nil, err
	}
	return jsonResult(result)
}

// ListTickets handles get_tickets.
func (h *TicketTools) ListTickets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	page, err := intArg(args, "page", 1)
	if err != nil {
		return nil, err
	}
	perPage, err := intArg(args, "per_page", 0)
	if err != nil {
		return nil, err
	}

	result, err := h.service.List(ctx, page, perPage)
	if err != nil {
		return nil, err
	}
	return jsonResult(result)
}

// GetTicket handles get_ticket.
func (h *TicketTools) GetTicket(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredInt64(req.GetArguments(), "ticket_id")
	if err != nil {
		return nil, err
	}

	raw, err := h.service.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(raw)), nil
}

// SearchTickets handles search_tickets.
func (h *TicketTools) SearchTickets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := optionalInt64(req.GetArguments(), "ticket_id")
	if err != nil {
		return nil, err
	}

	raw, err := h.service.Search(ctx, id, req.GetString("query", ""))
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(raw)), nil
}

// SimilarTickets handles find_similar_tickets.
func (h *TicketTools) SimilarTickets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredInt64(req.GetArguments(), "ticket_id")
	if err != nil {
		return nil, err
	}

	raw, err := h.service.Similar(ctx, id)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(raw)), nil
}

// SearchAgents handles search_agents.
func (h *TicketTools) SearchAgents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := h.service.Agents(ctx, req.GetString("term", ""))
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return mcp.NewToolResultText(string(encoded)), nil
}

func toInt64(raw any) (int64, error) {
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%v is not an integer", v)
		}
		return int64(v), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case json.Number:
		return v.Int64()
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", raw)
	}
}

func optionalInt64(args map[string]any, key string) (*int64, error) {
	raw, present := args[key]
	if !present || raw == nil {
		return nil, nil
	}
	n, err := toInt64(raw)
	if err != nil {
		return nil, apperrors.NewInvalidParameter(fmt.Sprintf("%s must be an integer", key), nil)
	}
	return &n, nil
}

func optionalInt(args map[string]any, key string) (*int, error) {
	v, err := optionalInt64(args, key)
	if err != nil || v == nil {
		return nil, err
	}
	n := int(*v)
	return &n, nil
}

func requiredInt64(args map[string]any, key string) (int64, error) {
	v, err := optionalInt64(args, key)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, apperrors.NewValidationError(fmt.Sprintf("%s is required", key), nil)
	}
	return *v, nil
}

func intArg(args map[string]any, key string, fallback int) (int, error) {
	v, err := optionalInt(args, key)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return fallback, nil
	}
	return *v, nil
}

func optionalIntSlice(args map[string]any, key string) ([]int, error) {
	raw, present := args[key]
	if !present || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		// A bare scalar is treated as a single-element list.
		n, err := toInt64(raw)
		if err != nil {
			return nil, apperrors.NewInvalidParameter(fmt.Sprintf("%s must be an array of integers", key), nil)
		}
		return []int{int(n)}, nil
	}
	codes := make([]int, 0, len(list))
	for _, item := range list {
		n, err := toInt64(item)
		if err != nil {
			return nil, apperrors.NewInvalidParameter(fmt.Sprintf("%s must be an array of integers", key), nil)
		}
		codes = append(codes, int(n))
	}
	return codes, nil
}
