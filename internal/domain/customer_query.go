package domain

// CustomerBaseFilter is applied to every customer listing: deleted customers
// and customers below the score threshold are hidden, as are customers whose
// integration is no longer active. Customers without an integration pass.
type CustomerBaseFilter struct {
	ExcludeStatus        CustomerStatus
	MinProfileScore      int
	ActiveIntegrationIDs IDSet
}

// TextSearch matches when every term is found, case-insensitively and as a
// substring, in at least one of Fields.
type TextSearch struct {
	Terms  []string
	Fields []string
}

// CustomerQuery is the conjunction of every constraint of a listing. Each
// field constrains a distinct attribute; nil or empty fields add nothing.
//
// IsUser set to true keeps only users, set to false keeps everything that is
// not flagged as a user (including unknown).
type CustomerQuery struct {
	Base           CustomerBaseFilter
	IsUser         *bool
	Segment        *SegmentPredicate
	TagIDs         []string
	IntegrationIDs *IDSet
	IDs            *IDSet
	Search         *TextSearch
	LeadStatus     *string
	LifecycleState *string
}

// IsBaseOnly reports whether nothing but the base filter is set.
func (q CustomerQuery) IsBaseOnly() bool {
	return q.IsUser == nil &&
		q.Segment == nil &&
		len(q.TagIDs) == 0 &&
		q.IntegrationIDs == nil &&
		q.IDs == nil &&
		q.Search == nil &&
		q.LeadStatus == nil &&
		q.LifecycleState == nil
}
