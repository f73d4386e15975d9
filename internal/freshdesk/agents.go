package freshdesk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	apperrors "github.com/dasscoax/freshdesk-mcp/pkg/util"
)

// ListAgents returns one page of the agents collection.
func (c *Client) ListAgents(ctx context.Context, page, perPage int) ([]Agent, Pagination, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))

	resp, err := c.get(ctx, "agents.list", "/api/v2/agents", params)
	if err != nil {
		return nil, Pagination{}, err
	}

	var agents []Agent
	if err := decodeJSON(resp, &agents); err != nil {
		return nil, Pagination{}, err
	}
	next, prev := ParseLinkHeader(resp.Header().Get("Link"))
	return agents, Pagination{CurrentPage: page, NextPage: next, PrevPage: prev, PerPage: perPage}, nil
}

// CurrentAgent returns the raw "who am I" document.
func (c *Client) CurrentAgent(ctx context.Context) (json.RawMessage, error) {
	resp, err := c.get(ctx, "agents.me", "/api/_/bootstrap/me", nil)
	if err != nil {
		return nil, err
	}
	return rawBody(resp), nil
}

// CurrentAgentID extracts the caller's identifier from the "who am I"
// document.
func (c *Client) CurrentAgentID(ctx context.Context) (int64, error) {
	raw, err := c.CurrentAgent(ctx)
	if err != nil {
		return 0, err
	}
	var payload struct {
		Agent struct {
			ID int64 `json:"id"`
		} `json:"agent"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Agent.ID == 0 {
		return 0, apperrors.NewNotFound("current agent", nil)
	}
	return payload.Agent.ID, nil
}

// GetAgentName resolves a responder identifier to a display name.
func (c *Client) GetAgentName(ctx context.Context, id int64) (string, error) {
	resp, err := c.get(ctx, "agents.get", fmt.Sprintf("/api/agents/%d", id), nil)
	if err != nil {
		return "", err
	}

	var payload struct {
		Agent struct {
			User struct {
				Name string `json:"name"`
			} `json:"user"`
		} `json:"agent"`
	}
	if err := decodeJSON(resp, &payload); err != nil {
		return "", err
	}
	if payload.Agent.User.Name == "" {
		return "", apperrors.NewNotFound(fmt.Sprintf("agent %d", id), nil)
	}
	return payload.Agent.User.Name, nil
}

// SearchAgents runs the agent autocomplete lookup.
func (c *Client) SearchAgents(ctx context.Context, term string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("term", term)

	resp, err := c.get(ctx, "agents.autocomplete", "/api/v2/agents/autocomplete", params)
	if err != nil {
		return nil, err
	}
	return rawBody(resp), nil
}
