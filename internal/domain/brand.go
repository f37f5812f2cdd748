package domain

import "time"

// Brand groups integrations under one company identity.
type Brand struct {
	ID        string
	Name      string
	Code      string
	CreatedAt time.Time
}
