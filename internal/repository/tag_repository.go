package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rpattn/crmql/internal/db"
	"github.com/rpattn/crmql/internal/domain"
)

type tagRepository struct {
	db db.DBTX
}

// NewTagRepository creates a new tag repository
func NewTagRepository(exec db.DBTX) TagRepository {
	return &tagRepository{db: exec}
}

// FindByType lists the tags of one content type
func (r *tagRepository) FindByType(ctx context.Context, tagType string) ([]domain.Tag, error) {
	rows, err := r.db.Query(ctx, "SELECT id, name, type, created_at FROM tags WHERE type = $1 ORDER BY name, id", tagType)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	tags, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Tag, error) {
		var tag domain.Tag
		err := row.Scan(&tag.ID, &tag.Name, &tag.Type, &tag.CreatedAt)
		return tag, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan tags: %w", err)
	}
	return tags, nil
}
