// Package freshdesk is the HTTP collaborator: a resty client for the
// Freshdesk REST API covering agents, tickets, filtered ticket queries,
// search, and copilot similarity lookups.
package freshdesk

import "encoding/json"

// Agent is a provider agent record.
type Agent struct {
	ID      int64        `json:"id"`
	Contact AgentContact `json:"contact"`
}

// AgentContact carries the display name and email of an agent.
type AgentContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Ticket carries the fields formatting needs plus the untouched provider
// document in Raw.
type Ticket struct {
	ID          int64  `json:"id"`
	Subject     string `json:"subject"`
	Status      *int   `json:"status"`
	Priority    *int   `json:"priority"`
	ResponderID *int64 `json:"responder_id"`
	DueBy       string `json:"due_by"`
	FrDueBy     string `json:"fr_due_by"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the typed fields and keeps the raw document.
func (t *Ticket) UnmarshalJSON(data []byte) error {
	type plain Ticket
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*t = Ticket(decoded)
	t.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// Pagination carries page links parsed from the Link response header.
type Pagination struct {
	CurrentPage int  `json:"current_page"`
	NextPage    *int `json:"next_page"`
	PrevPage    *int `json:"prev_page"`
	PerPage     int  `json:"per_page"`
}
