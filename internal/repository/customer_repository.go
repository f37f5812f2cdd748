package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rpattn/crmql/internal/db"
	"github.com/rpattn/crmql/internal/domain"
)

const customerColumnsSQL = "c.id, c.code, c.first_name, c.last_name, c.primary_email, c.primary_phone, c.status, " +
	"c.profile_score, c.integration_id, c.is_user, c.tag_ids, c.lead_status, c.lifecycle_state, c.properties, " +
	"c.last_seen_at, c.created_at, c.updated_at"

// customerRepository implements CustomerRepository interface
type customerRepository struct {
	db db.DBTX
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(exec db.DBTX) CustomerRepository {
	return &customerRepository{db: exec}
}

// List runs the composed query and returns one page of customers plus the
// total number of matches.
func (r *customerRepository) List(ctx context.Context, query domain.CustomerQuery, sort domain.CustomerSort, page domain.Page) ([]domain.Customer, int, error) {
	sqlText, args := buildCustomerListSQL(query, sort, page)

	rows, err := r.db.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0)
	total := 0
	for rows.Next() {
		var (
			row        customerRow
			totalCount int64
		)
		if err := rows.Scan(
			&row.ID, &row.Code, &row.FirstName, &row.LastName, &row.PrimaryEmail, &row.PrimaryPhone, &row.Status,
			&row.ProfileScore, &row.IntegrationID, &row.IsUser, &row.TagIDs, &row.LeadStatus, &row.LifecycleState,
			&row.Properties, &row.LastSeenAt, &row.CreatedAt, &row.UpdatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan customer: %w", err)
		}
		customer, err := row.toDomain()
		if err != nil {
			return nil, 0, err
		}
		customers = append(customers, customer)
		total = int(totalCount)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate customers: %w", err)
	}

	return customers, total, nil
}

// Count returns the number of customers matching the query
func (r *customerRepository) Count(ctx context.Context, query domain.CustomerQuery) (int64, error) {
	sqlText, args := buildCustomerCountSQL(query)

	var count int64
	if err := r.db.QueryRow(ctx, sqlText, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return count, nil
}

func buildCustomerListSQL(query domain.CustomerQuery, sort domain.CustomerSort, page domain.Page) (string, []any) {
	builder := newSQLBuilder()
	where := buildCustomerWhere(query, builder)

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(customerColumnsSQL)
	sb.WriteString(", COUNT(*) OVER() AS total_count FROM customers ")
	sb.WriteString(customerAlias)
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString(" ")
	sb.WriteString(buildCustomerOrderClause(sort))

	limit := page.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := page.Offset()
	sb.WriteString(fmt.Sprintf(" LIMIT %s OFFSET %s", builder.bind(limit), builder.bind(offset)))

	return sb.String(), builder.args
}

func buildCustomerCountSQL(query domain.CustomerQuery) (string, []any) {
	builder := newSQLBuilder()
	where := buildCustomerWhere(query, builder)

	sqlText := "SELECT COUNT(*) FROM customers " + customerAlias
	if len(where) > 0 {
		sqlText += " WHERE " + strings.Join(where, " AND ")
	}
	return sqlText, builder.args
}

type customerRow struct {
	ID             string
	Code           string
	FirstName      string
	LastName       string
	PrimaryEmail   string
	PrimaryPhone   string
	Status         string
	ProfileScore   int32
	IntegrationID  pgtype.Text
	IsUser         pgtype.Bool
	TagIDs         []string
	LeadStatus     string
	LifecycleState string
	Properties     []byte
	LastSeenAt     pgtype.Timestamptz
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (row customerRow) toDomain() (domain.Customer, error) {
	properties := map[string]any{}
	if len(row.Properties) > 0 {
		if err := json.Unmarshal(row.Properties, &properties); err != nil {
			return domain.Customer{}, fmt.Errorf("failed to decode properties for customer %s: %w", row.ID, err)
		}
	}

	var lastSeenAt *time.Time
	if row.LastSeenAt.Valid {
		t := row.LastSeenAt.Time
		lastSeenAt = &t
	}

	return domain.Customer{
		ID:             row.ID,
		Code:           row.Code,
		FirstName:      row.FirstName,
		LastName:       row.LastName,
		PrimaryEmail:   row.PrimaryEmail,
		PrimaryPhone:   row.PrimaryPhone,
		Status:         domain.CustomerStatus(row.Status),
		ProfileScore:   int(row.ProfileScore),
		IntegrationID:  row.IntegrationID.String,
		IsUser:         row.IsUser.Valid && row.IsUser.Bool,
		TagIDs:         row.TagIDs,
		LeadStatus:     row.LeadStatus,
		LifecycleState: row.LifecycleState,
		Properties:     properties,
		LastSeenAt:     lastSeenAt,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}, nil
}
