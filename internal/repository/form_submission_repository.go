package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rpattn/crmql/internal/db"
	"github.com/rpattn/crmql/internal/domain"
)

type formSubmissionRepository struct {
	db db.DBTX
}

// NewFormSubmissionRepository creates a new form submission repository
func NewFormSubmissionRepository(exec db.DBTX) FormSubmissionRepository {
	return &formSubmissionRepository{db: exec}
}

// FindByForm lists every submission of a form, oldest first
func (r *formSubmissionRepository) FindByForm(ctx context.Context, formID string) ([]domain.FormSubmission, error) {
	rows, err := r.db.Query(ctx,
		"SELECT id, form_id, customer_id, submitted_at FROM form_submissions WHERE form_id = $1 ORDER BY submitted_at, id", formID)
	if err != nil {
		return nil, fmt.Errorf("failed to list form submissions: %w", err)
	}

	submissions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.FormSubmission, error) {
		var (
			submission domain.FormSubmission
			customerID pgtype.Text
		)
		err := row.Scan(&submission.ID, &submission.FormID, &customerID, &submission.SubmittedAt)
		submission.CustomerID = customerID.String
		return submission, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan form submissions: %w", err)
	}
	return submissions, nil
}
