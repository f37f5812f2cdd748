package filter

import (
	"strings"

	"github.com/rpattn/crmql/internal/domain"
)

// DefaultSearchFields are the customer attributes free text is matched against.
var DefaultSearchFields = []string{"first_name", "last_name", "primary_email", "primary_phone", "code"}

// TextSearchFunc turns a free-text value into a search constraint. It returns
// nil when the value holds no searchable terms.
type TextSearchFunc func(value string) *domain.TextSearch

// DefaultTextSearch splits the value on whitespace and requires every term
// to match one of fields.
func DefaultTextSearch(fields []string) TextSearchFunc {
	if len(fields) == 0 {
		fields = DefaultSearchFields
	}
	fields = append([]string(nil), fields...)
	return func(value string) *domain.TextSearch {
		terms := strings.Fields(value)
		if len(terms) == 0 {
			return nil
		}
		return &domain.TextSearch{Terms: terms, Fields: fields}
	}
}

// TypeFragment filters on the is-user flag: "user" keeps users, any other
// value keeps everyone else.
func TypeFragment(customerType string) *bool {
	isUser := customerType == domain.CustomerTypeUser
	return &isUser
}

// TagFragment requires the tag among the customer's tags.
func TagFragment(tagID string) []string {
	return []string{tagID}
}

// IDsFragment restricts the listing to the given ids.
func IDsFragment(ids []string) *domain.IDSet {
	set := domain.NewIDSet(ids...)
	return &set
}

// LeadStatusFragment requires an exact lead status.
func LeadStatusFragment(leadStatus string) *string {
	return &leadStatus
}

// LifecycleStateFragment requires an exact lifecycle state.
func LifecycleStateFragment(lifecycleState string) *string {
	return &lifecycleState
}

// IntegrationFragment reconciles the ids resolved for the integration filter
// with an integration constraint already derived from other dimensions. Both
// constrain the same attribute, so they intersect instead of replacing each
// other.
func IntegrationFragment(resolved domain.IDSet, current *domain.IDSet) *domain.IDSet {
	if current == nil {
		out := domain.NewIDSet(resolved.IDs()...)
		return &out
	}
	out := resolved.Intersect(*current)
	return &out
}

// BaseFragment is the constraint every listing carries.
func BaseFragment(minProfileScore int, activeIntegrations domain.IDSet) domain.CustomerBaseFilter {
	return domain.CustomerBaseFilter{
		ExcludeStatus:        domain.CustomerStatusDeleted,
		MinProfileScore:      minProfileScore,
		ActiveIntegrationIDs: activeIntegrations,
	}
}
