package filter

import (
	"strings"

	"github.com/rpattn/crmql/internal/domain"
)

// DefaultSort orders customers by most recent activity.
var DefaultSort = domain.CustomerSort{
	Field:     domain.CustomerSortFieldLastSeenAt,
	Direction: domain.SortDirectionDesc,
}

// SortFor derives the ordering of a listing. Without a sort field the
// listing is ordered by last activity, newest first.
func SortFor(params domain.CustomerListParams) domain.CustomerSort {
	field := strings.TrimSpace(params.SortField)
	if field == "" {
		return DefaultSort
	}
	direction := params.SortDirection
	if direction != domain.SortDirectionAsc {
		direction = domain.SortDirectionDesc
	}
	return domain.CustomerSort{
		Field:     domain.CustomerSortField(field),
		Direction: direction,
	}
}

// ParseSortDirection accepts 1/asc/ascending and -1/desc/descending. Anything
// else, including an empty value, is descending.
func ParseSortDirection(value string) domain.SortDirection {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "asc", "ascending":
		return domain.SortDirectionAsc
	default:
		return domain.SortDirectionDesc
	}
}
