package domain

import "time"

// CustomerType values accepted by the type filter.
const (
	CustomerTypeUser = "user"
)

// CustomerListParams carries every optional filter a customer listing accepts.
// Empty strings and nil pointers mean "not requested". IDs follows the same
// rule: nil is absent, an empty non-nil slice is an allow-list of nothing.
type CustomerListParams struct {
	Page    int
	PerPage int

	Segment         string
	Tag             string
	IDs             []string
	SearchValue     string
	Brand           string
	Form            string
	StartDate       *time.Time
	EndDate         *time.Time
	LifecycleState  string
	LeadStatus      string
	Type            string
	IntegrationType string
	Integration     string

	ConformityMainType   string
	ConformityMainTypeID string
	ConformityIsRelated  bool
	ConformityIsSaved    bool

	SortField     string
	SortDirection SortDirection
}

// ConformityQuery returns the relationship part of the params scoped to customers.
func (p CustomerListParams) ConformityQuery() ConformityQuery {
	return ConformityQuery{
		MainType:   p.ConformityMainType,
		MainTypeID: p.ConformityMainTypeID,
		RelType:    ContentTypeCustomer,
		IsRelated:  p.ConformityIsRelated,
		IsSaved:    p.ConformityIsSaved,
	}
}

// ContentTypeCustomer is the conformity type name of customers.
const ContentTypeCustomer = "customer"
