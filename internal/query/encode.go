package query

import (
	"fmt"
	"net/url"

	apperrors "github.com/dasscoax/freshdesk-mcp/pkg/util"
)

// Encode writes q into vals using the provider's indexed query_hash
// parameter layout:
//
//	query_hash[i][condition]=field
//	query_hash[i][operator]=op
//	query_hash[i][type]=kind
//	query_hash[i][value][j]=scalar
func Encode(q Query, vals url.Values) {
	for i, cond := range q {
		vals.Set(fmt.Sprintf("query_hash[%d][condition]", i), cond.Field)
		vals.Set(fmt.Sprintf("query_hash[%d][operator]", i), string(cond.Operator))
		vals.Set(fmt.Sprintf("query_hash[%d][type]", i), string(cond.Kind))
		for j, value := range cond.Values {
			vals.Set(fmt.Sprintf("query_hash[%d][value][%d]", i, j), value)
		}
	}
}

// ParseQueryHash reads the indexed query_hash layout back into a Query.
// Indices are consumed from zero until the first gap.
func ParseQueryHash(vals url.Values) (Query, error) {
	var parsed Query
	for i := 0; ; i++ {
		field := vals.Get(fmt.Sprintf("query_hash[%d][condition]", i))
		if field == "" {
			return parsed, nil
		}
		var values []string
		for j := 0; ; j++ {
			key := fmt.Sprintf("query_hash[%d][value][%d]", i, j)
			if !vals.Has(key) {
				break
			}
			values = append(values, vals.Get(key))
		}
		cond, err := NewCondition(
			field,
			Operator(vals.Get(fmt.Sprintf("query_hash[%d][operator]", i))),
			ValueKind(vals.Get(fmt.Sprintf("query_hash[%d][type]", i))),
			values,
		)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, cond)
	}
}

// ParseConditions decodes a caller-supplied JSON condition list (the
// query_hash tool argument) into a Query. Each element must be an object
// with condition, operator, optional type (defaults to "default"), and a
// scalar or array value.
func ParseConditions(raw []any) (Query, error) {
	parsed := make(Query, 0, len(raw))
	for i, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			return nil, apperrors.NewInvalidParameter(fmt.Sprintf("query_hash[%d] must be a condition object", i), nil)
		}
		field, _ := obj["condition"].(string)
		operator, _ := obj["operator"].(string)
		kind := string(KindDefault)
		if rawKind, present := obj["type"]; present {
			kindStr, isStr := rawKind.(string)
			if !isStr {
				return nil, apperrors.NewInvalidParameter(fmt.Sprintf("query_hash[%d] type must be a string", i), nil)
			}
			kind = kindStr
		}
		values, err := parseValues(obj["value"], i)
		if err != nil {
			return nil, err
		}
		cond, err := NewCondition(field, Operator(operator), ValueKind(kind), values)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, cond)
	}
	return parsed, nil
}

func parseValues(raw any, index int) ([]string, error) {
	if raw == nil {
		return nil, apperrors.NewInvalidParameter(fmt.Sprintf("query_hash[%d] is missing a value", index), nil)
	}
	if list, ok := raw.([]any); ok {
		values := make([]string, 0, len(list))
		for _, item := range list {
			value, err := scalarString(item)
			if err != nil {
				return nil, err
			}
			values = append(values, value)
		}
		return values, nil
	}
	value, err := scalarString(raw)
	if err != nil {
		return nil, err
	}
	return []string{value}, nil
}
