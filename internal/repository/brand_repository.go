package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rpattn/crmql/internal/db"
	"github.com/rpattn/crmql/internal/domain"
)

type brandRepository struct {
	db db.DBTX
}

// NewBrandRepository creates a new brand repository
func NewBrandRepository(exec db.DBTX) BrandRepository {
	return &brandRepository{db: exec}
}

// FindAll lists every brand
func (r *brandRepository) FindAll(ctx context.Context) ([]domain.Brand, error) {
	rows, err := r.db.Query(ctx, "SELECT id, name, code, created_at FROM brands ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}

	brands, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Brand, error) {
		var brand domain.Brand
		err := row.Scan(&brand.ID, &brand.Name, &brand.Code, &brand.CreatedAt)
		return brand, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan brands: %w", err)
	}
	return brands, nil
}
