package tools

import "github.com/mark3labs/mcp-go/mcp"

func filterTicketsTool() mcp.Tool {
	return mcp.NewTool("filter_tickets",
		mcp.WithDescription("Filter tickets using native query_hash conditions and/or helper parameters (assignee_name, status, priority). Helper parameters override same-field conditions from query_hash."),
		mcp.WithArray("query_hash",
			mcp.Description("Native filter conditions. Each item is an object with condition (field name), operator (e.g. is_in), type (default or custom_field) and value (scalar or array)."),
			mcp.Items(map[string]any{"type": "object"}),
		),
		mcp.WithString("assignee_name",
			mcp.Description("Agent display name or email, resolved to a responder_id condition. Supply a numeric id to skip the lookup."),
		),
		mcp.WithNumber("status",
			mcp.Description("Status code filter: 2 Open, 3 Pending, 4 Resolved, 5 Closed."),
		),
		mcp.WithNumber("priority",
			mcp.Description("Priority code filter: 1 Low, 2 Medium, 3 High, 4 Urgent."),
		),
		mcp.WithNumber("page", mcp.DefaultNumber(1), mcp.Description("Page number, starting at 1.")),
		mcp.WithNumber("per_page", mcp.DefaultNumber(100), mcp.Description("Results per page, between 1 and 100.")),
		mcp.WithString("order_by", mcp.DefaultString("created_at"), mcp.Description("Sort field.")),
		mcp.WithString("order_type", mcp.DefaultString("desc"), mcp.Enum("asc", "desc"), mcp.Description("Sort direction.")),
		mcp.WithString("exclude", mcp.DefaultString("custom_fields"), mcp.Description("Response fields to exclude.")),
		mcp.WithString("include", mcp.DefaultString("requester,stats,company,survey"), mcp.Description("Response fields to include.")),
	)
}

func unresolvedTicketsTool() mcp.Tool {
	return mcp.NewTool("get_unresolved_tickets",
		mcp.WithDescription("Get unresolved tickets (open or pending) assigned to an agent. With no arguments it uses the current authenticated agent; use it for questions like \"my tickets\" or \"tickets assigned to me\". Supply at most one of assignee_name and assignee_id."),
		mcp.WithString("assignee_name", mcp.Description("Agent display name or email to resolve.")),
		mcp.WithNumber("assignee_id", mcp.Description("Numeric responder id. Skips name resolution.")),
		mcp.WithArray("status",
			mcp.Description("Status codes overriding the unresolved default [2,3]."),
			mcp.Items(map[string]any{"type": "number"}),
		),
	)
}

func currentAgentTool() mcp.Tool {
	return mcp.NewTool("get_current_agent_id",
		mcp.WithDescription("Get the current authenticated agent document, including its numeric id."),
	)
}

func squadTicketsTool() mcp.Tool {
	return mcp.NewTool("get_unresolved_tickets_by_squad",
		mcp.WithDescription("Get tickets for a squad (team). Filters on the squad membership custom fields plus a status filter derived from the status token; the default is unresolved (open or pending)."),
		mcp.WithString("squad", mcp.Required(), mcp.Description("Squad name, e.g. \"Dracarys\".")),
		mcp.WithString("status",
			mcp.DefaultString("unresolved"),
			mcp.Enum("unresolved", "open", "pending", "resolved", "awaiting_l2_response"),
			mcp.Description("Status token. awaiting_l2_response filters on the squad workflow custom field instead of a status code."),
		),
	)
}

func listTicketsTool() mcp.Tool {
	return mcp.NewTool("get_tickets",
		mcp.WithDescription("List tickets page by page with no filtering."),
		mcp.WithNumber("page", mcp.DefaultNumber(1), mcp.Description("Page number, starting at 1.")),
		mcp.WithNumber("per_page", mcp.DefaultNumber(30), mcp.Description("Results per page, between 1 and 100.")),
	)
}

func getTicketTool() mcp.Tool {
	return mcp.NewTool("get_ticket",
		mcp.WithDescription("Get a ticket's full details by id."),
		mcp.WithNumber("ticket_id", mcp.Required(), mcp.Description("Ticket id.")),
	)
}

func searchTicketsTool() mcp.Tool {
	return mcp.NewTool("search_tickets",
		mcp.WithDescription("Text search over tickets. Give either a query string or a ticket_id whose subject becomes the query."),
		mcp.WithNumber("ticket_id", mcp.Description("Ticket whose subject seeds the search.")),
		mcp.WithString("query", mcp.Description("Search text.")),
	)
}

func similarTicketsTool() mcp.Tool {
	return mcp.NewTool("find_similar_tickets",
		mcp.WithDescription("Find tickets similar to the given ticket using the provider's copilot, including summaries and confidence scores."),
		mcp.WithNumber("ticket_id", mcp.Required(), mcp.Description("Ticket id to find similar tickets for.")),
	)
}

func searchAgentsTool() mcp.Tool {
	return mcp.NewTool("search_agents",
		mcp.WithDescription("Autocomplete search for agents by name or email fragment."),
		mcp.WithString("term", mcp.Required(), mcp.Description("Search term.")),
	)
}
