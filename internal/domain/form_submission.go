package domain

import "time"

// FormSubmission records one submission of a lead form. CustomerID is empty
// when the submission could not be attributed to a customer.
type FormSubmission struct {
	ID          string
	FormID      string
	CustomerID  string
	SubmittedAt time.Time
}
