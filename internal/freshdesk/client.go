package freshdesk

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/dasscoax/freshdesk-mcp/internal/config"
	"github.com/dasscoax/freshdesk-mcp/internal/observability"
	apperrors "github.com/dasscoax/freshdesk-mcp/pkg/util"
)

const maxErrorBodyBytes = 2048

// Client talks to the Freshdesk REST API.
type Client struct {
	httpClient *resty.Client
	host       string
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewClient builds a client for the configured provider domain. The API
// key travels as HTTP Basic auth with the provider's fixed "X" password.
func NewClient(cfg config.FreshdeskConfig, logger *zap.Logger, metrics *observability.Metrics) *Client {
	token := base64.StdEncoding.EncodeToString([]byte(cfg.APIKey + ":X"))

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL()).
		SetTimeout(30 * time.Second).
		SetHeader("Authorization", "Basic "+token).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")

	httpClient.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		return mapResponseError(resp)
	})

	return &Client{
		httpClient: httpClient,
		host:       cfg.Host(),
		logger:     logger,
		metrics:    metrics,
	}
}

// TicketURL renders the agent-facing URL of a ticket.
func (c *Client) TicketURL(id int64) string {
	return fmt.Sprintf("https://%s/a/tickets/%d", c.host, id)
}

func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values) (*resty.Response, error) {
	req := c.httpClient.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetQueryParamsFromValues(params)
	}

	resp, err := req.Get(path)
	if resp != nil {
		c.metrics.RecordUpstreamCall(endpoint, resp.StatusCode())
	}
	if err != nil {
		var domainErr *apperrors.DomainError
		if errors.As(err, &domainErr) {
			return resp, err
		}
		c.logger.Debug("provider request failed", zap.String("endpoint", endpoint), zap.Error(err))
		return resp, apperrors.NewDomainError(
			"UPSTREAM_ERROR",
			fmt.Sprintf("provider request failed: %v", err),
			http.StatusBadGateway,
			nil,
		)
	}
	return resp, nil
}

func mapResponseError(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	body := string(resp.Body())
	if len(body) > maxErrorBodyBytes {
		body = body[:maxErrorBodyBytes]
	}
	return apperrors.NewUpstream(resp.StatusCode(), body)
}

func decodeJSON(resp *resty.Response, out any) error {
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return apperrors.NewUpstream(resp.StatusCode(), "undecodable provider payload")
	}
	return nil
}

func rawBody(resp *resty.Response) json.RawMessage {
	return append(json.RawMessage(nil), resp.Body()...)
}
