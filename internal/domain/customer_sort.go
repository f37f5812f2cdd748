package domain

// SortDirection represents ordering direction for sortable fields.
type SortDirection string

const (
	SortDirectionAsc  SortDirection = "asc"
	SortDirectionDesc SortDirection = "desc"
)

// CustomerSortField names a customer attribute that can order a listing.
type CustomerSortField string

const (
	CustomerSortFieldLastSeenAt     CustomerSortField = "lastSeenAt"
	CustomerSortFieldCreatedAt      CustomerSortField = "createdAt"
	CustomerSortFieldUpdatedAt      CustomerSortField = "updatedAt"
	CustomerSortFieldFirstName      CustomerSortField = "firstName"
	CustomerSortFieldLastName       CustomerSortField = "lastName"
	CustomerSortFieldPrimaryEmail   CustomerSortField = "primaryEmail"
	CustomerSortFieldProfileScore   CustomerSortField = "profileScore"
	CustomerSortFieldLeadStatus     CustomerSortField = "leadStatus"
	CustomerSortFieldLifecycleState CustomerSortField = "lifecycleState"
)

// CustomerSort captures ordering preferences for customer listings.
type CustomerSort struct {
	Field     CustomerSortField
	Direction SortDirection
}
