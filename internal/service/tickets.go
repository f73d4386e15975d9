package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dasscoax/freshdesk-mcp/internal/freshdesk"
	"github.com/dasscoax/freshdesk-mcp/internal/query"
	apperrors "github.com/dasscoax/freshdesk-mcp/pkg/util"
)

// Defaults for the general filter pipeline.
const (
	DefaultPerPage   = 100
	MaxPerPage       = 100
	DefaultOrderBy   = "created_at"
	DefaultOrderType = "desc"
	DefaultExclude   = "custom_fields"
	DefaultInclude   = "requester,stats,company,survey"

	defaultListPerPage = 30
)

// Provider is the Freshdesk surface the ticket service consumes.
type Provider interface {
	FilterTickets(ctx context.Context, req freshdesk.FilterRequest) ([]freshdesk.Ticket, freshdesk.Pagination, error)
	ListTickets(ctx context.Context, page, perPage int) ([]freshdesk.Ticket, freshdesk.Pagination, error)
	GetTicket(ctx context.Context, id int64) (json.RawMessage, error)
	SearchTickets(ctx context.Context, text string) (json.RawMessage, error)
	SimilarTickets(ctx context.Context, id int64) (json.RawMessage, error)
	SearchAgents(ctx context.Context, term string) (json.RawMessage, error)
	CurrentAgent(ctx context.Context) (json.RawMessage, error)
	CurrentAgentID(ctx context.Context) (int64, error)
	GetAgentName(ctx context.Context, id int64) (string, error)
	TicketURL(id int64) string
}

// IdentifierResolver resolves names or emails to responder identifiers.
type IdentifierResolver interface {
	ResolveIdentifier(ctx context.Context, term string) (int64, error)
}

// TicketService orchestrates filter translation and provider calls.
type TicketService struct {
	provider Provider
	resolver IdentifierResolver
	logger   *zap.Logger
	l2Team   string
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Provider   Provider
	Resolver   IdentifierResolver
	Logger     *zap.Logger
	L2TeamName string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		provider: deps.Provider,
		resolver: deps.Resolver,
		logger:   deps.Logger,
		l2Team:   deps.L2TeamName,
	}
}

// FilterInput carries the parameters of a general filter call.
type FilterInput struct {
	QueryHash    query.Query
	AssigneeName string
	Status       *int
	Priority     *int
	Page         int
	PerPage      int
	OrderBy      string
	OrderType    string
	Exclude      string
	Include      string
}

// UnresolvedInput selects whose unresolved tickets to fetch. At most one
// of AssigneeName and AssigneeID may be set; with neither, the caller's
// own identifier is used.
type UnresolvedInput struct {
	AssigneeName string
	AssigneeID   *int64
	Status       []int
}

// SquadInput selects a squad and an optional status token.
type SquadInput struct {
	Squad  string
	Status string
}

// FilterResult is a raw page of tickets plus the applied filters.
type FilterResult struct {
	Tickets        []json.RawMessage    `json:"tickets"`
	Pagination     freshdesk.Pagination `json:"pagination"`
	FiltersApplied query.Query          `json:"filters_applied"`
}

// ListResult is a raw page of the plain ticket listing.
type ListResult struct {
	Tickets    []json.RawMessage    `json:"tickets"`
	Pagination freshdesk.Pagination `json:"pagination"`
}

// FormattedTicket is the agent-facing rendering of a ticket.
type FormattedTicket struct {
	URL                string `json:"url"`
	Subject            string `json:"subject"`
	Status             string `json:"status"`
	Priority           string `json:"priority"`
	Responder          string `json:"responder,omitempty"`
	ResolutionDueBy    string `json:"resolution_due_by"`
	FirstResponseDueBy string `json:"first_response_due_by,omitempty"`
}

// UnresolvedResult is the formatted unresolved-tickets response.
type UnresolvedResult struct {
	Summary     string               `json:"summary"`
	TicketCount int                  `json:"ticket_count"`
	Tickets     []FormattedTicket    `json:"tickets"`
	Pagination  freshdesk.Pagination `json:"pagination"`
	RawTickets  []json.RawMessage    `json:"raw_tickets"`
}

// Filter composes and dispatches a general ticket query. Pagination
// bounds are validated before any network call, including identifier
// resolution.
func (s *TicketService) Filter(ctx context.Context, input FilterInput) (*FilterResult, error) {
	applyFilterDefaults(&input)
	if err := validatePage(input.Page, input.PerPage); err != nil {
		return nil, err
	}

	helpers := query.Helpers{}
	if name := strings.TrimSpace(input.AssigneeName); name != "" {
		id, err := s.resolver.ResolveIdentifier(ctx, name)
		if err != nil {
			return nil, err
		}
		helpers.ResponderID = &id
	}
	if input.Status != nil {
		helpers.Status = []int{*input.Status}
	}
	if input.Priority != nil {
		helpers.Priority = []int{*input.Priority}
	}

	composed, err := query.Compose(input.QueryHash, helpers)
	if err != nil {
		return nil, err
	}
	if len(composed) == 0 {
		return nil, apperrors.NewValidationError("at least one filter condition is required", nil)
	}

	tickets, pagination, err := s.provider.FilterTickets(ctx, freshdesk.FilterRequest{
		Query:     composed,
		Page:      input.Page,
		PerPage:   input.PerPage,
		OrderBy:   input.OrderBy,
		OrderType: input.OrderType,
		Exclude:   input.Exclude,
		Include:   input.Include,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("filter dispatched",
		zap.Int("conditions", len(composed)),
		zap.Int("tickets", len(tickets)))

	return &FilterResult{
		Tickets:        rawTickets(tickets),
		Pagination:     pagination,
		FiltersApplied: composed,
	}, nil
}

// UnresolvedForAgent fetches unresolved tickets for one agent: a named
// agent, an agent by identifier, or the caller when neither is given.
func (s *TicketService) UnresolvedForAgent(ctx context.Context, input UnresolvedInput) (*UnresolvedResult, error) {
	name := strings.TrimSpace(input.AssigneeName)
	if name != "" && input.AssigneeID != nil {
		return nil, apperrors.NewValidationError("assignee_name and assignee_id are mutually exclusive", nil)
	}

	self := false
	var responderID int64
	switch {
	case input.AssigneeID != nil:
		responderID = *input.AssigneeID
	case name != "":
		id, err := s.resolver.ResolveIdentifier(ctx, name)
		if err != nil {
			return nil, err
		}
		responderID = id
	default:
		id, err := s.provider.CurrentAgentID(ctx)
		if err != nil {
			return nil, err
		}
		responderID = id
		self = true
	}

	codes := input.Status
	if len(codes) == 0 {
		codes = query.UnresolvedStatusCodes()
	}

	composed, err := query.Compose(nil, query.Helpers{ResponderID: &responderID, Status: codes})
	if err != nil {
		return nil, err
	}

	tickets, pagination, err := s.dispatchDefaults(ctx, composed)
	if err != nil {
		return nil, err
	}

	formatted := make([]FormattedTicket, 0, len(tickets))
	for i := range tickets {
		formatted = append(formatted, s.formatTicket(ctx, &tickets[i], false))
	}

	summary := fmt.Sprintf("Found %d unresolved ticket(s) assigned to you:", len(formatted))
	if !self {
		summary = fmt.Sprintf("Found %d unresolved ticket(s) assigned to agent %d:", len(formatted), responderID)
	}

	return &UnresolvedResult{
		Summary:     summary,
		TicketCount: len(formatted),
		Tickets:     formatted,
		Pagination:  pagination,
		RawTickets:  rawTickets(tickets),
	}, nil
}

// UnresolvedBySquad fetches tickets for a squad: squad membership plus
// the squad group custom-field clauses, and the status filter derived
// from the token (default "unresolved").
func (s *TicketService) UnresolvedBySquad(ctx context.Context, input SquadInput) (*UnresolvedResult, error) {
	squad := strings.TrimSpace(input.Squad)
	if squad == "" {
		return nil, apperrors.NewValidationError("squad is required", nil)
	}

	token := strings.TrimSpace(input.Status)
	if token == "" {
		token = "unresolved"
	}
	statusFilter, err := query.ResolveStatusToken(token)
	if err != nil {
		return nil, err
	}

	base := query.Query{
		query.CustomField(query.FieldFreshserviceTeams, []string{s.l2Team}),
		query.CustomField(query.FieldTeamMember, []string{squad}),
	}
	helpers := query.Helpers{}
	if statusFilter.IsCustom() {
		helpers.Custom = []query.Condition{*statusFilter.Custom}
	} else {
		helpers.Status = statusFilter.Codes
	}

	composed, err := query.Compose(base, helpers)
	if err != nil {
		return nil, err
	}

	tickets, pagination, err := s.dispatchDefaults(ctx, composed)
	if err != nil {
		return nil, err
	}

	formatted := make([]FormattedTicket, 0, len(tickets))
	for i := range tickets {
		formatted = append(formatted, s.formatTicket(ctx, &tickets[i], true))
	}

	return &UnresolvedResult{
		Summary:     fmt.Sprintf("Found %d %s ticket(s) in squad '%s':", len(formatted), strings.ToLower(token), squad),
		TicketCount: len(formatted),
		Tickets:     formatted,
		Pagination:  pagination,
		RawTickets:  rawTickets(tickets),
	}, nil
}

// CurrentAgent returns the caller's raw agent document.
func (s *TicketService) CurrentAgent(ctx context.Context) (json.RawMessage, error) {
	return s.provider.CurrentAgent(ctx)
}

// List returns one raw page of the plain ticket listing.
func (s *TicketService) List(ctx context.Context, page, perPage int) (*ListResult, error) {
	if page == 0 {
		page = 1
	}
	if perPage == 0 {
		perPage = defaultListPerPage
	}
	if err := validatePage(page, perPage); err != nil {
		return nil, err
	}

	tickets, pagination, err := s.provider.ListTickets(ctx, page, perPage)
	if err != nil {
		return nil, err
	}
	return &ListResult{Tickets: rawTickets(tickets), Pagination: pagination}, nil
}

// Get returns the raw ticket document for ticketID.
func (s *TicketService) Get(ctx context.Context, ticketID int64) (json.RawMessage, error) {
	if ticketID < 1 {
		return nil, apperrors.NewValidationError("ticket_id must be a positive integer", map[string]any{"ticket_id": ticketID})
	}
	return s.provider.GetTicket(ctx, ticketID)
}

// Search runs the ticket text search. Exactly one of ticketID and text
// must be given; with ticketID, that ticket's subject becomes the query.
func (s *TicketService) Search(ctx context.Context, ticketID *int64, text string) (json.RawMessage, error) {
	text = strings.TrimSpace(text)
	if (ticketID == nil) == (text == "") {
		return nil, apperrors.NewValidationError("exactly one of ticket_id and query is required", nil)
	}

	if ticketID != nil {
		if *ticketID < 1 {
			return nil, apperrors.NewValidationError("ticket_id must be a positive integer", map[string]any{"ticket_id": *ticketID})
		}
		raw, err := s.provider.GetTicket(ctx, *ticketID)
		if err != nil {
			return nil, err
		}
		subject, err := extractSubject(raw)
		if err != nil {
			return nil, err
		}
		text = subject
	}

	return s.provider.SearchTickets(ctx, text)
}

// Similar asks the copilot endpoint for tickets similar to ticketID.
func (s *TicketService) Similar(ctx context.Context, ticketID int64) (json.RawMessage, error) {
	if ticketID < 1 {
		return nil, apperrors.NewValidationError("ticket_id must be a positive integer", map[string]any{"ticket_id": ticketID})
	}
	return s.provider.SimilarTickets(ctx, ticketID)
}

// Agents runs the agent autocomplete lookup.
func (s *TicketService) Agents(ctx context.Context, term string) (json.RawMessage, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, apperrors.NewValidationError("term is required", nil)
	}
	return s.provider.SearchAgents(ctx, term)
}

func (s *TicketService) dispatchDefaults(ctx context.Context, composed query.Query) ([]freshdesk.Ticket, freshdesk.Pagination, error) {
	if len(composed) == 0 {
		return nil, freshdesk.Pagination{}, apperrors.NewValidationError("at least one filter condition is required", nil)
	}
	return s.provider.FilterTickets(ctx, freshdesk.FilterRequest{
		Query:     composed,
		Page:      1,
		PerPage:   DefaultPerPage,
		OrderBy:   DefaultOrderBy,
		OrderType: DefaultOrderType,
		Exclude:   DefaultExclude,
		Include:   DefaultInclude,
	})
}

func (s *TicketService) formatTicket(ctx context.Context, t *freshdesk.Ticket, withResponder bool) FormattedTicket {
	formatted := FormattedTicket{
		URL:             s.provider.TicketURL(t.ID),
		Subject:         t.Subject,
		Status:          query.StatusName(t.Status),
		Priority:        query.PriorityName(t.Priority),
		ResolutionDueBy: t.DueBy,
	}
	if formatted.Subject == "" {
		formatted.Subject = "No subject"
	}
	if t.FrDueBy != "" {
		formatted.FirstResponseDueBy = t.FrDueBy
	}
	if withResponder {
		formatted.Responder = s.responderName(ctx, t.ResponderID)
	}
	return formatted
}

// responderName degrades gracefully: a failed lookup renders the raw
// identifier rather than failing the whole page.
func (s *TicketService) responderName(ctx context.Context, id *int64) string {
	if id == nil {
		return "Unassigned"
	}
	name, err := s.provider.GetAgentName(ctx, *id)
	if err != nil || name == "" {
		s.logger.Debug("responder resolution failed", zap.Int64("responder_id", *id), zap.Error(err))
		return fmt.Sprintf("Agent ID: %d", *id)
	}
	return name
}

func applyFilterDefaults(input *FilterInput) {
	if input.Page == 0 {
		input.Page = 1
	}
	if input.PerPage == 0 {
		input.PerPage = DefaultPerPage
	}
	if input.OrderBy == "" {
		input.OrderBy = DefaultOrderBy
	}
	if input.OrderType == "" {
		input.OrderType = DefaultOrderType
	}
	if input.Exclude == "" {
		input.Exclude = DefaultExclude
	}
	if input.Include == "" {
		input.Include = DefaultInclude
	}
}

func validatePage(page, perPage int) error {
	if page < 1 {
		return apperrors.NewValidationError("page must be greater than or equal to 1", map[string]any{"page": page})
	}
	if perPage < 1 || perPage > MaxPerPage {
		return apperrors.NewValidationError("per_page must be between 1 and 100", map[string]any{"per_page": perPage})
	}
	return nil
}

func extractSubject(raw json.RawMessage) (string, error) {
	var payload struct {
		Subject string `json:"subject"`
		Ticket  struct {
			Subject string `json:"subject"`
		} `json:"ticket"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", apperrors.NewNotFound("ticket subject", nil)
	}
	if payload.Subject != "" {
		return payload.Subject, nil
	}
	if payload.Ticket.Subject != "" {
		return payload.Ticket.Subject, nil
	}
	return "", apperrors.NewNotFound("ticket subject", nil)
}

func rawTickets(tickets []freshdesk.Ticket) []json.RawMessage {
	raw := make([]json.RawMessage, 0, len(tickets))
	for i := range tickets {
		if tickets[i].Raw != nil {
			raw = append(raw, tickets[i].Raw)
			continue
		}
		encoded, err := json.Marshal(tickets[i])
		if err != nil {
			continue
		}
		raw = append(raw, encoded)
	}
	return raw
}
