package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rpattn/crmql/internal/db"
	"github.com/rpattn/crmql/internal/domain"
)

const integrationSelectSQL = "SELECT id, name, kind, brand_id, is_archived, created_at FROM integrations"

type integrationRepository struct {
	db db.DBTX
}

// NewIntegrationRepository creates a new integration repository
func NewIntegrationRepository(exec db.DBTX) IntegrationRepository {
	return &integrationRepository{db: exec}
}

// FindByBrand lists the non-archived integrations of a brand
func (r *integrationRepository) FindByBrand(ctx context.Context, brandID string) ([]domain.Integration, error) {
	return r.query(ctx, integrationSelectSQL+" WHERE brand_id = $1 AND NOT is_archived ORDER BY created_at, id", brandID)
}

// FindByBrands lists the non-archived integrations of several brands at once
func (r *integrationRepository) FindByBrands(ctx context.Context, brandIDs []string) ([]domain.Integration, error) {
	if len(brandIDs) == 0 {
		return []domain.Integration{}, nil
	}
	return r.query(ctx, integrationSelectSQL+" WHERE brand_id = ANY($1::text[]) AND NOT is_archived ORDER BY created_at, id", brandIDs)
}

// FindByKind lists the non-archived integrations of a kind
func (r *integrationRepository) FindByKind(ctx context.Context, kind string) ([]domain.Integration, error) {
	return r.query(ctx, integrationSelectSQL+" WHERE kind = $1 AND NOT is_archived ORDER BY created_at, id", kind)
}

// FindActive lists every non-archived integration
func (r *integrationRepository) FindActive(ctx context.Context) ([]domain.Integration, error) {
	return r.query(ctx, integrationSelectSQL+" WHERE NOT is_archived ORDER BY created_at, id")
}

func (r *integrationRepository) query(ctx context.Context, sqlText string, args ...any) ([]domain.Integration, error) {
	rows, err := r.db.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query integrations: %w", err)
	}

	integrations, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Integration, error) {
		var (
			integration domain.Integration
			brandID     pgtype.Text
		)
		err := row.Scan(&integration.ID, &integration.Name, &integration.Kind, &brandID, &integration.IsArchived, &integration.CreatedAt)
		integration.BrandID = brandID.String
		return integration, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan integrations: %w", err)
	}
	return integrations, nil
}
