package customers

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rpattn/crmql/internal/domain"
	"github.com/rpattn/crmql/internal/filter"
)

const dateOnlyLayout = "2006-01-02"

// ParseListParams reads the listing parameters from a query string.
// Malformed values are reported as filter.ErrInvalidParams.
func ParseListParams(query url.Values) (domain.CustomerListParams, error) {
	params := domain.CustomerListParams{
		Segment:              strings.TrimSpace(query.Get("segment")),
		Tag:                  strings.TrimSpace(query.Get("tag")),
		SearchValue:          query.Get("searchValue"),
		Brand:                strings.TrimSpace(query.Get("brand")),
		Form:                 strings.TrimSpace(query.Get("form")),
		LifecycleState:       strings.TrimSpace(query.Get("lifecycleState")),
		LeadStatus:           strings.TrimSpace(query.Get("leadStatus")),
		Type:                 strings.TrimSpace(query.Get("type")),
		IntegrationType:      strings.TrimSpace(query.Get("integrationType")),
		Integration:          strings.TrimSpace(query.Get("integration")),
		ConformityMainType:   strings.TrimSpace(query.Get("conformityMainType")),
		ConformityMainTypeID: strings.TrimSpace(query.Get("conformityMainTypeId")),
		SortField:            strings.TrimSpace(query.Get("sortField")),
		SortDirection:        filter.ParseSortDirection(query.Get("sortDirection")),
	}

	if values, ok := query["ids"]; ok {
		params.IDs = parseIDs(values)
	}

	var err error
	if params.Page, err = parseInt(query, "page"); err != nil {
		return domain.CustomerListParams{}, err
	}
	if params.PerPage, err = parseInt(query, "perPage"); err != nil {
		return domain.CustomerListParams{}, err
	}
	if params.StartDate, err = parseDate(query, "startDate"); err != nil {
		return domain.CustomerListParams{}, err
	}
	if params.EndDate, err = parseDate(query, "endDate"); err != nil {
		return domain.CustomerListParams{}, err
	}
	if params.ConformityIsRelated, err = parseBool(query, "conformityIsRelated"); err != nil {
		return domain.CustomerListParams{}, err
	}
	if params.ConformityIsSaved, err = parseBool(query, "conformityIsSaved"); err != nil {
		return domain.CustomerListParams{}, err
	}

	return params, nil
}

// parseIDs accepts both repeated and comma-separated ids. The result is
// never nil: a present but empty parameter is an allow-list of nothing.
func parseIDs(values []string) []string {
	ids := make([]string, 0, len(values))
	for _, value := range values {
		for _, id := range strings.Split(value, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func parseInt(query url.Values, key string) (int, error) {
	raw := strings.TrimSpace(query.Get(key))
	if raw == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", filter.ErrInvalidParams, key)
	}
	return parsed, nil
}

func parseBool(query url.Values, key string) (bool, error) {
	raw := strings.TrimSpace(query.Get(key))
	if raw == "" {
		return false, nil
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", filter.ErrInvalidParams, key)
	}
	return parsed, nil
}

func parseDate(query url.Values, key string) (*time.Time, error) {
	raw := strings.TrimSpace(query.Get(key))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, dateOnlyLayout} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed, nil
		}
	}
	return nil, fmt.Errorf("%w: %s must be an RFC 3339 timestamp or a YYYY-MM-DD date", filter.ErrInvalidParams, key)
}
