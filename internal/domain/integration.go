package domain

import "time"

// Integration is an inbound channel (messenger, form, mail, ...) owned by a brand.
type Integration struct {
	ID         string
	Name       string
	Kind       string
	BrandID    string
	IsArchived bool
	CreatedAt  time.Time
}

// IntegrationIDs collects ids from a list of integrations.
func IntegrationIDs(integrations []Integration) []string {
	ids := make([]string, len(integrations))
	for i, integration := range integrations {
		ids[i] = integration.ID
	}
	return ids
}
