package repository

import (
	"fmt"
	"strings"

	"github.com/rpattn/crmql/internal/domain"
)

const customerAlias = "c"

type columnKind int

const (
	columnText columnKind = iota
	columnNumber
	columnBool
	columnTime
)

type customerColumn struct {
	name string
	kind columnKind
}

// customerColumns maps the attribute names accepted by search fields, segment
// conditions and sorting onto real columns. Both snake_case and camelCase
// spellings are accepted.
var customerColumns = map[string]customerColumn{
	"id":              {"id", columnText},
	"code":            {"code", columnText},
	"first_name":      {"first_name", columnText},
	"firstname":       {"first_name", columnText},
	"last_name":       {"last_name", columnText},
	"lastname":        {"last_name", columnText},
	"primary_email":   {"primary_email", columnText},
	"primaryemail":    {"primary_email", columnText},
	"primary_phone":   {"primary_phone", columnText},
	"primaryphone":    {"primary_phone", columnText},
	"status":          {"status", columnText},
	"lead_status":     {"lead_status", columnText},
	"leadstatus":      {"lead_status", columnText},
	"lifecycle_state": {"lifecycle_state", columnText},
	"lifecyclestate":  {"lifecycle_state", columnText},
	"integration_id":  {"integration_id", columnText},
	"integrationid":   {"integration_id", columnText},
	"profile_score":   {"profile_score", columnNumber},
	"profilescore":    {"profile_score", columnNumber},
	"is_user":         {"is_user", columnBool},
	"isuser":          {"is_user", columnBool},
	"last_seen_at":    {"last_seen_at", columnTime},
	"lastseenat":      {"last_seen_at", columnTime},
	"created_at":      {"created_at", columnTime},
	"createdat":       {"created_at", columnTime},
	"updated_at":      {"updated_at", columnTime},
	"updatedat":       {"updated_at", columnTime},
}

// attributeExpr resolves an attribute name to a SQL expression. Unknown names
// address keys of the properties document.
func attributeExpr(field string, b *sqlBuilder) (string, columnKind) {
	key := strings.ToLower(strings.TrimSpace(field))
	if col, ok := customerColumns[key]; ok {
		return customerAlias + "." + col.name, col.kind
	}
	return fmt.Sprintf("%s.properties ->> %s::text", customerAlias, b.bind(strings.TrimSpace(field))), columnText
}

// buildCustomerWhere translates every constraint of the query into WHERE
// clauses that are joined with AND.
func buildCustomerWhere(q domain.CustomerQuery, b *sqlBuilder) []string {
	c := customerAlias
	where := make([]string, 0, 12)

	if q.Base.ExcludeStatus != "" {
		where = append(where, fmt.Sprintf("%s.status <> %s", c, b.bind(string(q.Base.ExcludeStatus))))
	}
	where = append(where, fmt.Sprintf("%s.profile_score > %s", c, b.bind(q.Base.MinProfileScore)))
	where = append(where, fmt.Sprintf("(COALESCE(%s.integration_id, '') = '' OR %s.integration_id = ANY(%s::text[]))",
		c, c, b.bind(q.Base.ActiveIntegrationIDs.IDs())))

	if q.IsUser != nil {
		if *q.IsUser {
			where = append(where, c+".is_user IS TRUE")
		} else {
			where = append(where, c+".is_user IS NOT TRUE")
		}
	}

	if q.Segment != nil {
		where = append(where, buildSegmentClause(*q.Segment, b))
	}

	if len(q.TagIDs) > 0 {
		where = append(where, fmt.Sprintf("%s.tag_ids @> %s::text[]", c, b.bind(q.TagIDs)))
	}

	if q.IntegrationIDs != nil {
		where = append(where, fmt.Sprintf("%s.integration_id = ANY(%s::text[])", c, b.bind(q.IntegrationIDs.IDs())))
	}

	if q.IDs != nil {
		where = append(where, fmt.Sprintf("%s.id = ANY(%s::text[])", c, b.bind(q.IDs.IDs())))
	}

	if q.Search != nil {
		where = append(where, buildSearchClauses(*q.Search, b)...)
	}

	if q.LeadStatus != nil {
		where = append(where, fmt.Sprintf("%s.lead_status = %s", c, b.bind(*q.LeadStatus)))
	}

	if q.LifecycleState != nil {
		where = append(where, fmt.Sprintf("%s.lifecycle_state = %s", c, b.bind(*q.LifecycleState)))
	}

	return where
}

// buildSearchClauses requires every term to match at least one field.
func buildSearchClauses(search domain.TextSearch, b *sqlBuilder) []string {
	if len(search.Fields) == 0 {
		return nil
	}
	clauses := make([]string, 0, len(search.Terms))
	for _, term := range search.Terms {
		pattern := b.bind(likePattern(term))
		alternatives := make([]string, 0, len(search.Fields))
		for _, field := range search.Fields {
			expr, _ := attributeExpr(field, b)
			alternatives = append(alternatives, fmt.Sprintf("COALESCE(%s, '') ILIKE %s", expr, pattern))
		}
		clauses = append(clauses, "("+strings.Join(alternatives, " OR ")+")")
	}
	return clauses
}

func buildSegmentClause(predicate domain.SegmentPredicate, b *sqlBuilder) string {
	joiner := " AND "
	if predicate.Connector == domain.SegmentConnectorAny {
		joiner = " OR "
	}

	terms := make([]string, 0, len(predicate.Terms))
	for _, term := range predicate.Terms {
		terms = append(terms, buildSegmentTerm(term, b))
	}

	clause := "TRUE"
	if len(terms) > 0 {
		clause = "(" + strings.Join(terms, joiner) + ")"
	}

	if predicate.Parent != nil {
		clause = "(" + buildSegmentClause(*predicate.Parent, b) + " AND " + clause + ")"
	}
	return clause
}

func buildSegmentTerm(term domain.SegmentTerm, b *sqlBuilder) string {
	parts := make([]string, 0, 2)
	if term.IntegrationIDs != nil {
		parts = append(parts, fmt.Sprintf("%s.integration_id = ANY(%s::text[])", customerAlias, b.bind(term.IntegrationIDs.IDs())))
	}
	if term.Field != "" {
		parts = append(parts, buildCondition(term, b))
	}
	if len(parts) == 0 {
		return "TRUE"
	}
	return "(" + strings.Join(parts, " AND ") + ")"
}

func buildCondition(term domain.SegmentTerm, b *sqlBuilder) string {
	expr, kind := attributeExpr(term.Field, b)

	switch term.Operator {
	case domain.SegmentOperatorEquals:
		return fmt.Sprintf("%s = %s", castedExpr(expr, kind), b.bind(term.Value)+"::text")
	case domain.SegmentOperatorNotEquals:
		return fmt.Sprintf("%s IS DISTINCT FROM %s", castedExpr(expr, kind), b.bind(term.Value)+"::text")
	case domain.SegmentOperatorContains:
		return fmt.Sprintf("COALESCE(%s::text, '') ILIKE %s", expr, b.bind(likePattern(term.Value)))
	case domain.SegmentOperatorNotContains:
		return fmt.Sprintf("COALESCE(%s::text, '') NOT ILIKE %s", expr, b.bind(likePattern(term.Value)))
	case domain.SegmentOperatorGreaterThan:
		return fmt.Sprintf("%s > %s", orderedExpr(expr, kind), orderedValue(b.bind(term.Value), kind))
	case domain.SegmentOperatorLessThan:
		return fmt.Sprintf("%s < %s", orderedExpr(expr, kind), orderedValue(b.bind(term.Value), kind))
	case domain.SegmentOperatorIsSet:
		if kind == columnText {
			return fmt.Sprintf("COALESCE(%s, '') <> ''", expr)
		}
		return expr + " IS NOT NULL"
	case domain.SegmentOperatorIsNotSet:
		if kind == columnText {
			return fmt.Sprintf("COALESCE(%s, '') = ''", expr)
		}
		return expr + " IS NULL"
	case domain.SegmentOperatorIsTrue:
		if kind == columnBool {
			return expr + " IS TRUE"
		}
		return fmt.Sprintf("LOWER(COALESCE(%s::text, '')) = 'true'", expr)
	case domain.SegmentOperatorIsFalse:
		if kind == columnBool {
			return expr + " IS NOT TRUE"
		}
		return fmt.Sprintf("LOWER(COALESCE(%s::text, '')) <> 'true'", expr)
	case domain.SegmentOperatorWithinLastDays:
		return fmt.Sprintf("%s >= now() - make_interval(days => %s::int)", orderedExpr(expr, columnTime), b.bind(term.Value))
	default:
		return "FALSE"
	}
}

func castedExpr(expr string, kind columnKind) string {
	if kind == columnText {
		return expr
	}
	return expr + "::text"
}

// orderedExpr prepares an attribute for range comparison. Text attributes
// come from the properties document and are compared numerically, except in
// time context where they are parsed as timestamps.
func orderedExpr(expr string, kind columnKind) string {
	switch kind {
	case columnNumber:
		return expr
	case columnTime:
		if strings.Contains(expr, "->>") {
			return fmt.Sprintf("NULLIF(%s, '')::timestamptz", expr)
		}
		return expr
	default:
		return fmt.Sprintf("NULLIF(%s, '')::numeric", expr)
	}
}

func orderedValue(placeholder string, kind columnKind) string {
	if kind == columnTime {
		return placeholder + "::timestamptz"
	}
	return placeholder + "::numeric"
}

var customerSortColumns = map[domain.CustomerSortField]string{
	domain.CustomerSortFieldLastSeenAt:     "last_seen_at",
	domain.CustomerSortFieldCreatedAt:      "created_at",
	domain.CustomerSortFieldUpdatedAt:      "updated_at",
	domain.CustomerSortFieldFirstName:      "first_name",
	domain.CustomerSortFieldLastName:       "last_name",
	domain.CustomerSortFieldPrimaryEmail:   "primary_email",
	domain.CustomerSortFieldProfileScore:   "profile_score",
	domain.CustomerSortFieldLeadStatus:     "lead_status",
	domain.CustomerSortFieldLifecycleState: "lifecycle_state",
}

// buildCustomerOrderClause allow-lists the sort column, falling back to last
// activity, and breaks ties on id so equal keys keep a stable order.
func buildCustomerOrderClause(sort domain.CustomerSort) string {
	column, ok := customerSortColumns[sort.Field]
	if !ok {
		if col, known := customerColumns[strings.ToLower(string(sort.Field))]; known {
			column = col.name
		} else {
			column = "last_seen_at"
		}
	}
	direction := "DESC"
	if sort.Direction == domain.SortDirectionAsc {
		direction = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s.%s %s NULLS LAST, %s.id ASC", customerAlias, column, direction, customerAlias)
}
