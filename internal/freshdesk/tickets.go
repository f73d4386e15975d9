package freshdesk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/dasscoax/freshdesk-mcp/internal/query"
	apperrors "github.com/dasscoax/freshdesk-mcp/pkg/util"
)

// FilterRequest is the serialized form of a composed ticket query.
type FilterRequest struct {
	Query     query.Query
	Page      int
	PerPage   int
	OrderBy   string
	OrderType string
	Exclude   string
	Include   string
}

func (r FilterRequest) params() url.Values {
	vals := url.Values{}
	vals.Set("page", strconv.Itoa(r.Page))
	vals.Set("per_page", strconv.Itoa(r.PerPage))
	vals.Set("order_by", r.OrderBy)
	vals.Set("order_type", r.OrderType)
	vals.Set("exclude", r.Exclude)
	vals.Set("include", r.Include)
	query.Encode(r.Query, vals)
	return vals
}

// FilterTickets runs a composed query against the filtered tickets
// endpoint.
func (c *Client) FilterTickets(ctx context.Context, req FilterRequest) ([]Ticket, Pagination, error) {
	resp, err := c.get(ctx, "tickets.filter", "/api/_/tickets", req.params())
	if err != nil {
		return nil, Pagination{}, err
	}

	tickets, err := decodeTickets(resp)
	if err != nil {
		return nil, Pagination{}, err
	}
	next, prev := ParseLinkHeader(resp.Header().Get("Link"))
	return tickets, Pagination{CurrentPage: req.Page, NextPage: next, PrevPage: prev, PerPage: req.PerPage}, nil
}

// ListTickets returns one page of the plain ticket listing.
func (c *Client) ListTickets(ctx context.Context, page, perPage int) ([]Ticket, Pagination, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))

	resp, err := c.get(ctx, "tickets.list", "/api/v2/tickets", params)
	if err != nil {
		return nil, Pagination{}, err
	}

	tickets, err := decodeTickets(resp)
	if err != nil {
		return nil, Pagination{}, err
	}
	next, prev := ParseLinkHeader(resp.Header().Get("Link"))
	return tickets, Pagination{CurrentPage: page, NextPage: next, PrevPage: prev, PerPage: perPage}, nil
}

// GetTicket returns the raw ticket document.
func (c *Client) GetTicket(ctx context.Context, id int64) (json.RawMessage, error) {
	resp, err := c.get(ctx, "tickets.get", fmt.Sprintf("/api/tickets/%d", id), nil)
	if err != nil {
		return nil, err
	}
	return rawBody(resp), nil
}

// SearchTickets runs the ticket text search.
func (c *Client) SearchTickets(ctx context.Context, text string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("query", text)

	resp, err := c.get(ctx, "tickets.search", "/api/v2/search/tickets", params)
	if err != nil {
		return nil, err
	}
	return rawBody(resp), nil
}

// SimilarTickets asks the copilot endpoint for tickets similar to id.
func (c *Client) SimilarTickets(ctx context.Context, id int64) (json.RawMessage, error) {
	resp, err := c.get(ctx, "tickets.similar", fmt.Sprintf("/api/_/copilot/tickets/%d/similar_tickets", id), nil)
	if err != nil {
		return nil, err
	}
	return rawBody(resp), nil
}

// decodeTickets accepts both payload shapes the ticket endpoints
// produce: a bare array or an object wrapping a tickets array.
func decodeTickets(resp *resty.Response) ([]Ticket, error) {
	body := resp.Body()

	var list []Ticket
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Tickets []Ticket `json:"tickets"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, apperrors.NewUpstream(resp.StatusCode(), "undecodable ticket payload")
	}
	return wrapped.Tickets, nil
}
