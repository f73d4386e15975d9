// Package query implements the filter translation layer: building,
// merging, and serializing the structured ticket filter (query_hash)
// the provider expects.
package query

import (
	"fmt"
	"strconv"

	apperrors "github.com/dasscoax/freshdesk-mcp/pkg/util"
)

// Operator enumerates comparison operators the filter endpoint accepts.
type Operator string

const (
	OperatorIsIn        Operator = "is_in"
	OperatorIs          Operator = "is"
	OperatorEquals      Operator = "equals"
	OperatorGreaterThan Operator = "greater_than"
	OperatorLessThan    Operator = "less_than"
)

// ValueKind distinguishes provider-native fields from custom fields.
type ValueKind string

const (
	KindDefault     ValueKind = "default"
	KindCustomField ValueKind = "custom_field"
)

// Field names used by the helper parameters and squad workflow.
const (
	FieldStatus            = "status"
	FieldPriority          = "priority"
	FieldResponderID       = "responder_id"
	FieldTeamMember        = "team_member"
	FieldFreshserviceTeams = "freshservice_teams"
	FieldAwaitingL2        = "cf_awaiting_l2_response"
)

// Condition is one filter clause of a ticket query. Values are held in
// their wire form: the filter travels as URL parameters, so every scalar
// is a string by the time it leaves the process.
type Condition struct {
	Field    string    `json:"condition"`
	Operator Operator  `json:"operator"`
	Kind     ValueKind `json:"type"`
	Values   []string  `json:"value"`
}

// NewCondition builds a validated Condition.
func NewCondition(field string, op Operator, kind ValueKind, values []string) (Condition, error) {
	cond := Condition{Field: field, Operator: op, Kind: kind, Values: values}
	if err := cond.Validate(); err != nil {
		return Condition{}, err
	}
	return cond, nil
}

// Validate checks the Condition invariants: non-empty field, non-empty
// values, operator and kind members of their enumerations.
func (c Condition) Validate() error {
	if c.Field == "" {
		return apperrors.NewInvalidParameter("condition field must not be empty", nil)
	}
	if len(c.Values) == 0 {
		return apperrors.NewInvalidParameter(fmt.Sprintf("condition %q must carry at least one value", c.Field), nil)
	}
	switch c.Operator {
	case OperatorIsIn, OperatorIs, OperatorEquals, OperatorGreaterThan, OperatorLessThan:
	default:
		return apperrors.NewInvalidParameter(fmt.Sprintf("unsupported operator %q for condition %q", c.Operator, c.Field), nil)
	}
	switch c.Kind {
	case KindDefault, KindCustomField:
	default:
		return apperrors.NewInvalidParameter(fmt.Sprintf("unsupported condition type %q for condition %q", c.Kind, c.Field), nil)
	}
	return nil
}

// StatusCondition builds the status clause from numeric status codes.
func StatusCondition(codes []int) Condition {
	return Condition{Field: FieldStatus, Operator: OperatorIsIn, Kind: KindDefault, Values: intValues(codes)}
}

// PriorityCondition builds the priority clause from numeric priority codes.
func PriorityCondition(codes []int) Condition {
	return Condition{Field: FieldPriority, Operator: OperatorIsIn, Kind: KindDefault, Values: intValues(codes)}
}

// ResponderCondition builds the assignee clause for a responder identifier.
func ResponderCondition(id int64) Condition {
	return Condition{Field: FieldResponderID, Operator: OperatorIsIn, Kind: KindDefault, Values: []string{strconv.FormatInt(id, 10)}}
}

// CustomField builds a custom-field clause.
func CustomField(field string, values []string) Condition {
	return Condition{Field: field, Operator: OperatorIsIn, Kind: KindCustomField, Values: values}
}

func intValues(codes []int) []string {
	values := make([]string, 0, len(codes))
	for _, code := range codes {
		values = append(values, strconv.Itoa(code))
	}
	return values
}

// scalarString normalizes a decoded JSON scalar to its wire form.
// Integral floats render without a decimal point so numeric identifiers
// survive the float64 round trip JSON decoding imposes.
func scalarString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case bool:
		return strconv.FormatBool(val), nil
	default:
		return "", apperrors.NewInvalidParameter(fmt.Sprintf("unsupported condition value of type %T", v), nil)
	}
}
