package domain

import "time"

// CustomerStatus is the lifecycle status of a customer record.
type CustomerStatus string

const (
	CustomerStatusActive  CustomerStatus = "active"
	CustomerStatusDeleted CustomerStatus = "deleted"
)

// Customer is a contact tracked by the CRM. Integration is the channel the
// customer first arrived through and may be empty for manually created ones.
type Customer struct {
	ID             string
	Code           string
	FirstName      string
	LastName       string
	PrimaryEmail   string
	PrimaryPhone   string
	Status         CustomerStatus
	ProfileScore   int
	IntegrationID  string
	IsUser         bool
	TagIDs         []string
	LeadStatus     string
	LifecycleState string
	Properties     map[string]any
	LastSeenAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FullName joins first and last name, skipping blanks.
func (c Customer) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// LeadStatuses lists the lead status values customers are counted by.
var LeadStatuses = []string{"new", "attemptedToContact", "inProgress", "badTiming", "unqualified"}

// LifecycleStates lists the lifecycle stages customers are counted by.
var LifecycleStates = []string{
	"subscriber", "lead", "marketingQualifiedLead", "salesQualifiedLead",
	"opportunity", "customer", "evangelist", "other",
}
