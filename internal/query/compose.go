package query

// Query is an ordered list of Conditions. A well-formed Query never
// carries two Conditions with the same field name; Compose and Upsert
// are the only places that enforce it.
type Query []Condition

// Upsert inserts cond or, when a clause for the same field exists,
// replaces that clause in place. The first-seen position is kept so
// composition stays order-stable.
func (q Query) Upsert(cond Condition) Query {
	for i := range q {
		if q[i].Field == cond.Field {
			q[i] = cond
			return q
		}
	}
	return append(q, cond)
}

// Fields returns the field names in query order.
func (q Query) Fields() []string {
	fields := make([]string, 0, len(q))
	for _, cond := range q {
		fields = append(fields, cond.Field)
	}
	return fields
}

// Helpers carries the helper-parameter-derived clauses merged into an
// explicit query. Application order is fixed (responder, status,
// priority, then custom clauses in declaration order) so composition is
// deterministic.
type Helpers struct {
	ResponderID *int64
	Status      []int
	Priority    []int
	Custom      []Condition
}

// Compose merges an explicit query with helper-derived clauses into one
// normalized Query. Helper clauses replace same-field clauses from the
// explicit query; replaced clauses keep their original position. The
// result never contains duplicate field names, including duplicates
// already present in the explicit input.
func Compose(explicit Query, helpers Helpers) (Query, error) {
	composed := make(Query, 0, len(explicit)+4)
	for _, cond := range explicit {
		if err := cond.Validate(); err != nil {
			return nil, err
		}
		composed = composed.Upsert(cond)
	}

	if helpers.ResponderID != nil {
		composed = composed.Upsert(ResponderCondition(*helpers.ResponderID))
	}
	if len(helpers.Status) > 0 {
		composed = composed.Upsert(StatusCondition(helpers.Status))
	}
	if len(helpers.Priority) > 0 {
		composed = composed.Upsert(PriorityCondition(helpers.Priority))
	}
	for _, cond := range helpers.Custom {
		if err := cond.Validate(); err != nil {
			return nil, err
		}
		composed = composed.Upsert(cond)
	}

	return composed, nil
}
