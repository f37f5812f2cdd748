package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rpattn/crmql/internal/db"
	"github.com/rpattn/crmql/internal/domain"
)

const segmentSelectSQL = "SELECT id, name, content_type, connector, conditions, sub_of, created_at FROM segments"

type segmentRepository struct {
	db db.DBTX
}

// NewSegmentRepository creates a new segment repository
func NewSegmentRepository(exec db.DBTX) SegmentRepository {
	return &segmentRepository{db: exec}
}

// GetByID loads one segment with its conditions
func (r *segmentRepository) GetByID(ctx context.Context, id string) (domain.Segment, error) {
	segment, err := scanSegment(r.db.QueryRow(ctx, segmentSelectSQL+" WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Segment{}, fmt.Errorf("segment %s: %w", id, ErrNotFound)
		}
		return domain.Segment{}, fmt.Errorf("failed to get segment: %w", err)
	}
	return segment, nil
}

// ListByContentType lists the segments defined for one content type
func (r *segmentRepository) ListByContentType(ctx context.Context, contentType string) ([]domain.Segment, error) {
	rows, err := r.db.Query(ctx, segmentSelectSQL+" WHERE content_type = $1 ORDER BY name, id", contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to list segments: %w", err)
	}

	segments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Segment, error) {
		return scanSegment(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan segments: %w", err)
	}
	return segments, nil
}

func scanSegment(row pgx.Row) (domain.Segment, error) {
	var (
		segment    domain.Segment
		connector  string
		conditions []byte
		subOf      pgtype.Text
		createdAt  time.Time
	)
	if err := row.Scan(&segment.ID, &segment.Name, &segment.ContentType, &connector, &conditions, &subOf, &createdAt); err != nil {
		return domain.Segment{}, err
	}

	if len(conditions) > 0 {
		if err := json.Unmarshal(conditions, &segment.Conditions); err != nil {
			return domain.Segment{}, fmt.Errorf("decode conditions of segment %s: %w", segment.ID, err)
		}
	}
	segment.Connector = domain.SegmentConnector(connector)
	segment.SubOf = subOf.String
	segment.CreatedAt = createdAt
	return segment, nil
}
