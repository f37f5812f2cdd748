package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rpattn/crmql/internal/db"
	"github.com/rpattn/crmql/internal/domain"
)

// Associations are stored once but read in both directions.
const savedConformitySQL = `
SELECT rel_type_id FROM conformities WHERE main_type = $1 AND main_type_id = $2 AND rel_type = $3
UNION
SELECT main_type_id FROM conformities WHERE rel_type = $1 AND rel_type_id = $2 AND main_type = $3`

const relatedConformitySQL = `
WITH direct AS (
	SELECT rel_type AS type, rel_type_id AS id FROM conformities WHERE main_type = $1 AND main_type_id = $2
	UNION
	SELECT main_type, main_type_id FROM conformities WHERE rel_type = $1 AND rel_type_id = $2
), related AS (
	SELECT c.rel_type_id AS id FROM conformities c
	JOIN direct d ON c.main_type = d.type AND c.main_type_id = d.id
	WHERE c.rel_type = $3
	UNION
	SELECT c.main_type_id FROM conformities c
	JOIN direct d ON c.rel_type = d.type AND c.rel_type_id = d.id
	WHERE c.main_type = $3
)
SELECT id FROM related WHERE NOT ($3 = $1 AND id = $2)`

type conformityRepository struct {
	db db.DBTX
}

// NewConformityRepository creates a new conformity repository
func NewConformityRepository(exec db.DBTX) ConformityRepository {
	return &conformityRepository{db: exec}
}

// SavedRelatedIDs returns the ids of relType entities directly associated with the anchor
func (r *conformityRepository) SavedRelatedIDs(ctx context.Context, mainType, mainTypeID, relType string) ([]string, error) {
	return r.ids(ctx, savedConformitySQL, mainType, mainTypeID, relType)
}

// RelatedIDs returns the ids of relType entities associated with anything the anchor is associated with
func (r *conformityRepository) RelatedIDs(ctx context.Context, mainType, mainTypeID, relType string) ([]string, error) {
	return r.ids(ctx, relatedConformitySQL, mainType, mainTypeID, relType)
}

func (r *conformityRepository) ids(ctx context.Context, sqlText, mainType, mainTypeID, relType string) ([]string, error) {
	rows, err := r.db.Query(ctx, sqlText, mainType, mainTypeID, relType)
	if err != nil {
		return nil, fmt.Errorf("failed to query conformities: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan conformities: %w", err)
	}
	return domain.NewIDSet(ids...).IDs(), nil
}
