package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dasscoax/freshdesk-mcp/internal/freshdesk"
	"github.com/dasscoax/freshdesk-mcp/internal/query"
	apperrors "github.com/dasscoax/freshdesk-mcp/pkg/util"
)

type fakeProvider struct {
	filterReq     *freshdesk.FilterRequest
	filterTickets []freshdesk.Ticket
	filterPage    freshdesk.Pagination
	filterErr     error
	filterCalls   int

	listPage    int
	listPerPage int

	getID  int64
	getRaw json.RawMessage
	getErr error

	searchText string
	searchRaw  json.RawMessage

	similarID  int64
	similarRaw json.RawMessage

	agentsTerm string
	agentsRaw  json.RawMessage

	currentRaw     json.RawMessage
	currentID      int64
	currentErr     error
	currentIDCalls int

	names map[int64]string
}

func (p *fakeProvider) FilterTickets(_ context.Context, req freshdesk.FilterRequest) ([]freshdesk.Ticket, freshdesk.Pagination, error) {
	p.filterCalls++
	p.filterReq = &req
	return p.filterTickets, p.filterPage, p.filterErr
}

func (p *fakeProvider) ListTickets(_ context.Context, page, perPage int) ([]freshdesk.Ticket, freshdesk.Pagination, error) {
	p.listPage, p.listPerPage = page, perPage
	return p.filterTickets, p.filterPage, p.filterErr
}

func (p *fakeProvider) GetTicket(_ context.Context, id int64) (json.RawMessage, error) {
	p.getID = id
	return p.getRaw, p.getErr
}

func (p *fakeProvider) SearchTickets(_ context.Context, text string) (json.RawMessage, error) {
	p.searchText = text
	return p.searchRaw, nil
}

func (p *fakeProvider) SimilarTickets(_ context.Context, id int64) (json.RawMessage, error) {
	p.similarID = id
	return p.similarRaw, nil
}

func (p *fakeProvider) SearchAgents(_ context.Context, term string) (json.RawMessage, error) {
	p.agentsTerm = term
	return p.agentsRaw, nil
}

func (p *fakeProvider) CurrentAgent(_ context.Context) (json.RawMessage, error) {
	return p.currentRaw, p.currentErr
}

func (p *fakeProvider) CurrentAgentID(_ context.Context) (int64, error) {
	p.currentIDCalls++
	if p.currentErr != nil {
		return 0, p.currentErr
	}
	return p.currentID, nil
}

func (p *fakeProvider) GetAgentName(_ context.Context, id int64) (string, error) {
	if name, ok := p.names[id]; ok {
		return name, nil
	}
	return "", apperrors.NewNotFound(fmt.Sprintf("agent %d", id), nil)
}

func (p *fakeProvider) TicketURL(id int64) string {
	return fmt.Sprintf("https://example.freshdesk.com/a/tickets/%d", id)
}

type fakeResolver struct {
	ids   map[string]int64
	err   error
	calls int
}

func (r *fakeResolver) ResolveIdentifier(_ context.Context, term string) (int64, error) {
	r.calls++
	if r.err != nil {
		return 0, r.err
	}
	id, ok := r.ids[term]
	if !ok {
		return 0, apperrors.NewNotFound(fmt.Sprintf("agent %q", term), map[string]any{"term": term})
	}
	return id, nil
}

func newService(p *fakeProvider, r *fakeResolver) *TicketService {
	return NewTicketService(TicketDependencies{
		Provider:   p,
		Resolver:   r,
		Logger:     zap.NewNop(),
		L2TeamName: "L2 Teams",
	})
}

func sampleTicket(id int64, subject string, status, priority int, responder *int64) freshdesk.Ticket {
	s, p := status, priority
	return freshdesk.Ticket{
		ID:          id,
		Subject:     subject,
		Status:      &s,
		Priority:    &p,
		ResponderID: responder,
		DueBy:       "2025-08-30T17:00:00Z",
		FrDueBy:     "2025-08-26T09:00:00Z",
	}
}

func requireDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

func TestFilter_RejectsPerPageAboveLimitBeforeDispatch(t *testing.T) {
	provider := &fakeProvider{}
	resolver := &fakeResolver{ids: map[string]int64{"Jane Smith": 1501}}
	svc := newService(provider, resolver)

	_, err := svc.Filter(context.Background(), FilterInput{
		AssigneeName: "Jane Smith",
		PerPage:      150,
	})

	requireDomainCode(t, err, "VALIDATION_FAILED")
	assert.Zero(t, provider.filterCalls)
	assert.Zero(t, resolver.calls)
}

func TestFilter_RejectsNonPositivePage(t *testing.T) {
	svc := newService(&fakeProvider{}, &fakeResolver{})

	status := 2
	_, err := svc.Filter(context.Background(), FilterInput{Status: &status, Page: -1})
	requireDomainCode(t, err, "VALIDATION_FAILED")
}

func TestFilter_HelperOverridesExplicitStatus(t *testing.T) {
	provider := &fakeProvider{}
	svc := newService(provider, &fakeResolver{})

	status := 2
	result, err := svc.Filter(context.Background(), FilterInput{
		QueryHash: query.Query{query.StatusCondition([]int{4})},
		Status:    &status,
	})
	require.NoError(t, err)

	require.NotNil(t, provider.filterReq)
	composed := provider.filterReq.Query
	require.Len(t, composed, 1)
	assert.Equal(t, query.FieldStatus, composed[0].Field)
	assert.Equal(t, []string{"2"}, composed[0].Values)
	assert.Equal(t, composed, result.FiltersApplied)
}

func TestFilter_ResolvesAssigneeName(t *testing.T) {
	provider := &fakeProvider{}
	resolver := &fakeResolver{ids: map[string]int64{"Jane Smith": 1501}}
	svc := newService(provider, resolver)

	_, err := svc.Filter(context.Background(), FilterInput{AssigneeName: "Jane Smith"})
	require.NoError(t, err)

	require.NotNil(t, provider.filterReq)
	composed := provider.filterReq.Query
	require.Len(t, composed, 1)
	assert.Equal(t, query.FieldResponderID, composed[0].Field)
	assert.Equal(t, []string{"1501"}, composed[0].Values)
}

func TestFilter_ResolutionFailurePropagates(t *testing.T) {
	provider := &fakeProvider{}
	resolver := &fakeResolver{err: apperrors.NewAmbiguousMatch(`multiple agents match "Alex"`, nil)}
	svc := newService(provider, resolver)

	_, err := svc.Filter(context.Background(), FilterInput{AssigneeName: "Alex"})
	requireDomainCode(t, err, "AMBIGUOUS_MATCH")
	assert.Zero(t, provider.filterCalls)
}

func TestFilter_RequiresAtLeastOneCondition(t *testing.T) {
	provider := &fakeProvider{}
	svc := newService(provider, &fakeResolver{})

	_, err := svc.Filter(context.Background(), FilterInput{})
	requireDomainCode(t, err, "VALIDATION_FAILED")
	assert.Zero(t, provider.filterCalls)
}

func TestFilter_AppliesDefaults(t *testing.T) {
	provider := &fakeProvider{}
	svc := newService(provider, &fakeResolver{})

	status := 2
	_, err := svc.Filter(context.Background(), FilterInput{Status: &status})
	require.NoError(t, err)

	req := provider.filterReq
	require.NotNil(t, req)
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, DefaultPerPage, req.PerPage)
	assert.Equal(t, DefaultOrderBy, req.OrderBy)
	assert.Equal(t, DefaultOrderType, req.OrderType)
	assert.Equal(t, DefaultExclude, req.Exclude)
	assert.Equal(t, DefaultInclude, req.Include)
}

func TestFilter_ReturnsRawTicketDocuments(t *testing.T) {
	raw := json.RawMessage(`{"id": 42, "subject": "Login broken", "custom": true}`)
	provider := &fakeProvider{filterTickets: []freshdesk.Ticket{{ID: 42, Subject: "Login broken", Raw: raw}}}
	svc := newService(provider, &fakeResolver{})

	status := 2
	result, err := svc.Filter(context.Background(), FilterInput{Status: &status})
	require.NoError(t, err)

	require.Len(t, result.Tickets, 1)
	assert.JSONEq(t, string(raw), string(result.Tickets[0]))
}

func TestUnresolvedForAgent_MutualExclusion(t *testing.T) {
	svc := newService(&fakeProvider{}, &fakeResolver{})
	id := int64(7)

	_, err := svc.UnresolvedForAgent(context.Background(), UnresolvedInput{AssigneeName: "Jane", AssigneeID: &id})
	requireDomainCode(t, err, "VALIDATION_FAILED")
}

func TestUnresolvedForAgent_DefaultsToCaller(t *testing.T) {
	responder := int64(1501)
	provider := &fakeProvider{
		currentID:     1501,
		filterTickets: []freshdesk.Ticket{sampleTicket(42, "Login broken", 2, 3, &responder)},
	}
	svc := newService(provider, &fakeResolver{})

	result, err := svc.UnresolvedForAgent(context.Background(), UnresolvedInput{})
	require.NoError(t, err)

	assert.Equal(t, 1, provider.currentIDCalls)
	assert.Equal(t, "Found 1 unresolved ticket(s) assigned to you:", result.Summary)
	assert.Equal(t, 1, result.TicketCount)

	req := provider.filterReq
	require.NotNil(t, req)
	assert.Equal(t, []string{query.FieldResponderID, query.FieldStatus}, req.Query.Fields())
	assert.Equal(t, []string{"1501"}, req.Query[0].Values)
	assert.Equal(t, []string{"2", "3"}, req.Query[1].Values)

	require.Len(t, result.Tickets, 1)
	got := result.Tickets[0]
	assert.Equal(t, "https://example.freshdesk.com/a/tickets/42", got.URL)
	assert.Equal(t, "Login broken", got.Subject)
	assert.Equal(t, "Open", got.Status)
	assert.Equal(t, "High", got.Priority)
	assert.Equal(t, "2025-08-30T17:00:00Z", got.ResolutionDueBy)
	assert.Empty(t, got.Responder)
}

func TestUnresolvedForAgent_ByID(t *testing.T) {
	provider := &fakeProvider{}
	svc := newService(provider, &fakeResolver{})
	id := int64(2002)

	result, err := svc.UnresolvedForAgent(context.Background(), UnresolvedInput{AssigneeID: &id})
	require.NoError(t, err)

	assert.Zero(t, provider.currentIDCalls)
	assert.Equal(t, "Found 0 unresolved ticket(s) assigned to agent 2002:", result.Summary)
	require.NotNil(t, provider.filterReq)
	assert.Equal(t, []string{"2002"}, provider.filterReq.Query[0].Values)
}

func TestUnresolvedForAgent_ByName(t *testing.T) {
	provider := &fakeProvider{}
	resolver := &fakeResolver{ids: map[string]int64{"Jane Smith": 1501}}
	svc := newService(provider, resolver)

	_, err := svc.UnresolvedForAgent(context.Background(), UnresolvedInput{AssigneeName: "Jane Smith"})
	require.NoError(t, err)

	assert.Equal(t, 1, resolver.calls)
	require.NotNil(t, provider.filterReq)
	assert.Equal(t, []string{"1501"}, provider.filterReq.Query[0].Values)
}

func TestUnresolvedForAgent_StatusOverride(t *testing.T) {
	provider := &fakeProvider{currentID: 9}
	svc := newService(provider, &fakeResolver{})

	_, err := svc.UnresolvedForAgent(context.Background(), UnresolvedInput{Status: []int{4, 5}})
	require.NoError(t, err)

	require.NotNil(t, provider.filterReq)
	assert.Equal(t, []string{"4", "5"}, provider.filterReq.Query[1].Values)
}

func TestUnresolvedBySquad_RequiresSquad(t *testing.T) {
	svc := newService(&fakeProvider{}, &fakeResolver{})

	_, err := svc.UnresolvedBySquad(context.Background(), SquadInput{})
	requireDomainCode(t, err, "VALIDATION_FAILED")
}

func TestUnresolvedBySquad_DefaultUnresolved(t *testing.T) {
	responder := int64(1501)
	provider := &fakeProvider{
		filterTickets: []freshdesk.Ticket{sampleTicket(7, "VPN drops", 3, 2, &responder)},
		names:         map[int64]string{1501: "Jane Smith"},
	}
	svc := newService(provider, &fakeResolver{})

	result, err := svc.UnresolvedBySquad(context.Background(), SquadInput{Squad: "Dracarys"})
	require.NoError(t, err)

	req := provider.filterReq
	require.NotNil(t, req)
	require.Len(t, req.Query, 3)
	assert.Equal(t, []string{query.FieldFreshserviceTeams, query.FieldTeamMember, query.FieldStatus}, req.Query.Fields())
	assert.Equal(t, []string{"L2 Teams"}, req.Query[0].Values)
	assert.Equal(t, query.KindCustomField, req.Query[0].Kind)
	assert.Equal(t, []string{"Dracarys"}, req.Query[1].Values)
	assert.Equal(t, query.KindCustomField, req.Query[1].Kind)
	assert.Equal(t, []string{"2", "3"}, req.Query[2].Values)
	assert.Equal(t, query.KindDefault, req.Query[2].Kind)

	assert.Equal(t, "Found 1 unresolved ticket(s) in squad 'Dracarys':", result.Summary)
	require.Len(t, result.Tickets, 1)
	assert.Equal(t, "Jane Smith", result.Tickets[0].Responder)
}

func TestUnresolvedBySquad_SingleStatusToken(t *testing.T) {
	provider := &fakeProvider{}
	svc := newService(provider, &fakeResolver{})

	_, err := svc.UnresolvedBySquad(context.Background(), SquadInput{Squad: "X", Status: "open"})
	require.NoError(t, err)

	req := provider.filterReq
	require.NotNil(t, req)
	require.Len(t, req.Query, 3)
	assert.Equal(t, []string{"2"}, req.Query[2].Values)
}

func TestUnresolvedBySquad_AwaitingL2UsesCustomField(t *testing.T) {
	provider := &fakeProvider{}
	svc := newService(provider, &fakeResolver{})

	_, err := svc.UnresolvedBySquad(context.Background(), SquadInput{Squad: "Dracarys", Status: "awaiting_l2_response"})
	require.NoError(t, err)

	req := provider.filterReq
	require.NotNil(t, req)
	require.Len(t, req.Query, 3)
	assert.Equal(t, []string{query.FieldFreshserviceTeams, query.FieldTeamMember, query.FieldAwaitingL2}, req.Query.Fields())
	assert.Equal(t, query.KindCustomField, req.Query[2].Kind)
	assert.Equal(t, []string{"true"}, req.Query[2].Values)
}

func TestUnresolvedBySquad_UnknownToken(t *testing.T) {
	provider := &fakeProvider{}
	svc := newService(provider, &fakeResolver{})

	_, err := svc.UnresolvedBySquad(context.Background(), SquadInput{Squad: "Dracarys", Status: "snoozed"})
	requireDomainCode(t, err, "UNKNOWN_STATUS")
	assert.Zero(t, provider.filterCalls)
}

func TestUnresolvedBySquad_ResponderFallsBackToID(t *testing.T) {
	responder := int64(888)
	provider := &fakeProvider{
		filterTickets: []freshdesk.Ticket{sampleTicket(7, "VPN drops", 2, 2, &responder)},
	}
	svc := newService(provider, &fakeResolver{})

	result, err := svc.UnresolvedBySquad(context.Background(), SquadInput{Squad: "Dracarys"})
	require.NoError(t, err)

	require.Len(t, result.Tickets, 1)
	assert.Equal(t, "Agent ID: 888", result.Tickets[0].Responder)
}

func TestUnresolvedBySquad_UnassignedResponder(t *testing.T) {
	provider := &fakeProvider{
		filterTickets: []freshdesk.Ticket{sampleTicket(7, "VPN drops", 2, 2, nil)},
	}
	svc := newService(provider, &fakeResolver{})

	result, err := svc.UnresolvedBySquad(context.Background(), SquadInput{Squad: "Dracarys"})
	require.NoError(t, err)

	require.Len(t, result.Tickets, 1)
	assert.Equal(t, "Unassigned", result.Tickets[0].Responder)
}

func TestFormatTicket_MissingSubjectAndUnknownCodes(t *testing.T) {
	provider := &fakeProvider{
		currentID:     9,
		filterTickets: []freshdesk.Ticket{{ID: 5}},
	}
	svc := newService(provider, &fakeResolver{})

	result, err := svc.UnresolvedForAgent(context.Background(), UnresolvedInput{})
	require.NoError(t, err)

	require.Len(t, result.Tickets, 1)
	got := result.Tickets[0]
	assert.Equal(t, "No subject", got.Subject)
	assert.Equal(t, "Unknown", got.Status)
	assert.Equal(t, "Unknown", got.Priority)
	assert.Empty(t, got.FirstResponseDueBy)
}

func TestList_Defaults(t *testing.T) {
	provider := &fakeProvider{}
	svc := newService(provider, &fakeResolver{})

	_, err := svc.List(context.Background(), 0, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, provider.listPage)
	assert.Equal(t, defaultListPerPage, provider.listPerPage)
}

func TestList_RejectsPerPageAboveLimit(t *testing.T) {
	svc := newService(&fakeProvider{}, &fakeResolver{})

	_, err := svc.List(context.Background(), 1, 101)
	requireDomainCode(t, err, "VALIDATION_FAILED")
}

func TestGet_RejectsNonPositiveID(t *testing.T) {
	svc := newService(&fakeProvider{}, &fakeResolver{})

	_, err := svc.Get(context.Background(), 0)
	requireDomainCode(t, err, "VALIDATION_FAILED")
}

func TestGet_Passthrough(t *testing.T) {
	provider := &fakeProvider{getRaw: json.RawMessage(`{"id": 42}`)}
	svc := newService(provider, &fakeResolver{})

	raw, err := svc.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), provider.getID)
	assert.JSONEq(t, `{"id": 42}`, string(raw))
}

func TestSearch_RequiresExactlyOneInput(t *testing.T) {
	svc := newService(&fakeProvider{}, &fakeResolver{})
	id := int64(42)

	_, err := svc.Search(context.Background(), nil, "")
	requireDomainCode(t, err, "VALIDATION_FAILED")

	_, err = svc.Search(context.Background(), &id, "login")
	requireDomainCode(t, err, "VALIDATION_FAILED")
}

func TestSearch_ByText(t *testing.T) {
	provider := &fakeProvider{searchRaw: json.RawMessage(`{"results": []}`)}
	svc := newService(provider, &fakeResolver{})

	_, err := svc.Search(context.Background(), nil, "login broken")
	require.NoError(t, err)
	assert.Equal(t, "login broken", provider.searchText)
}

func TestSearch_ByTicketIDUsesSubject(t *testing.T) {
	provider := &fakeProvider{
		getRaw:    json.RawMessage(`{"ticket": {"id": 42, "subject": "Login broken"}}`),
		searchRaw: json.RawMessage(`{"results": []}`),
	}
	svc := newService(provider, &fakeResolver{})
	id := int64(42)

	_, err := svc.Search(context.Background(), &id, "")
	require.NoError(t, err)

	assert.Equal(t, int64(42), provider.getID)
	assert.Equal(t, "Login broken", provider.searchText)
}

func TestSearch_TopLevelSubject(t *testing.T) {
	provider := &fakeProvider{
		getRaw:    json.RawMessage(`{"id": 42, "subject": "Printer on fire"}`),
		searchRaw: json.RawMessage(`{"results": []}`),
	}
	svc := newService(provider, &fakeResolver{})
	id := int64(42)

	_, err := svc.Search(context.Background(), &id, "")
	require.NoError(t, err)
	assert.Equal(t, "Printer on fire", provider.searchText)
}

func TestSearch_MissingSubject(t *testing.T) {
	provider := &fakeProvider{getRaw: json.RawMessage(`{"id": 42}`)}
	svc := newService(provider, &fakeResolver{})
	id := int64(42)

	_, err := svc.Search(context.Background(), &id, "")
	requireDomainCode(t, err, "NOT_FOUND")
}

func TestSimilar_RejectsNonPositiveID(t *testing.T) {
	svc := newService(&fakeProvider{}, &fakeResolver{})

	_, err := svc.Similar(context.Background(), -3)
	requireDomainCode(t, err, "VALIDATION_FAILED")
}

func TestSimilar_Passthrough(t *testing.T) {
	provider := &fakeProvider{similarRaw: json.RawMessage(`{"similar_tickets": []}`)}
	svc := newService(provider, &fakeResolver{})

	raw, err := svc.Similar(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), provider.similarID)
	assert.JSONEq(t, `{"similar_tickets": []}`, string(raw))
}

func TestAgents_RequiresTerm(t *testing.T) {
	svc := newService(&fakeProvider{}, &fakeResolver{})

	_, err := svc.Agents(context.Background(), "  ")
	requireDomainCode(t, err, "VALIDATION_FAILED")
}

func TestAgents_Passthrough(t *testing.T) {
	provider := &fakeProvider{agentsRaw: json.RawMessage(`[{"id": 1501}]`)}
	svc := newService(provider, &fakeResolver{})

	raw, err := svc.Agents(context.Background(), "jane")
	require.NoError(t, err)
	assert.Equal(t, "jane", provider.agentsTerm)
	assert.JSONEq(t, `[{"id": 1501}]`, string(raw))
}

func TestCurrentAgent_Passthrough(t *testing.T) {
	provider := &fakeProvider{currentRaw: json.RawMessage(`{"agent": {"id": 1501}}`)}
	svc := newService(provider, &fakeResolver{})

	raw, err := svc.CurrentAgent(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"agent": {"id": 1501}}`, string(raw))
}
