package query

import (
	"fmt"
	"strings"

	apperrors "github.com/dasscoax/freshdesk-mcp/pkg/util"
)

// Provider ticket status codes.
const (
	StatusOpen     = 2
	StatusPending  = 3
	StatusResolved = 4
	StatusClosed   = 5
)

// UnresolvedStatusCodes returns the expansion of the "unresolved" token:
// open plus pending, not a single provider status.
func UnresolvedStatusCodes() []int {
	return []int{StatusOpen, StatusPending}
}

// StatusFilter is the resolution of a status token: either a set of
// numeric status codes or a custom-field clause, never both.
type StatusFilter struct {
	Codes  []int
	Custom *Condition
}

// IsCustom reports whether the token resolved to a custom-field clause.
func (f StatusFilter) IsCustom() bool {
	return f.Custom != nil
}

// ResolveStatusToken maps a symbolic status keyword to its filter form.
// Lookup is case-insensitive. Unknown tokens fail with an
// UNKNOWN_STATUS error.
func ResolveStatusToken(token string) (StatusFilter, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "open":
		return StatusFilter{Codes: []int{StatusOpen}}, nil
	case "pending":
		return StatusFilter{Codes: []int{StatusPending}}, nil
	case "resolved":
		return StatusFilter{Codes: []int{StatusResolved}}, nil
	case "closed":
		return StatusFilter{Codes: []int{StatusClosed}}, nil
	case "unresolved":
		return StatusFilter{Codes: UnresolvedStatusCodes()}, nil
	case "awaiting_l2_response":
		cond := CustomField(FieldAwaitingL2, []string{"true"})
		return StatusFilter{Custom: &cond}, nil
	default:
		return StatusFilter{}, apperrors.NewUnknownStatus(token)
	}
}

var statusNames = map[int]string{
	0: "Unresolved",
	2: "Open",
	3: "Pending",
	4: "Resolved",
	5: "Closed",
}

var priorityNames = map[int]string{
	1: "Low",
	2: "Medium",
	3: "High",
	4: "Urgent",
}

// StatusName renders a provider status code for display.
func StatusName(code *int) string {
	if code == nil {
		return "Unknown"
	}
	if name, ok := statusNames[*code]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (%d)", *code)
}

// PriorityName renders a provider priority code for display.
func PriorityName(code *int) string {
	if code == nil {
		return "Unknown"
	}
	if name, ok := priorityNames[*code]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (%d)", *code)
}
