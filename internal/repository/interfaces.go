package repository

import (
	"context"
	"errors"

	"github.com/rpattn/crmql/internal/domain"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("record not found")

// CustomerRepository executes composed customer queries
type CustomerRepository interface {
	List(ctx context.Context, query domain.CustomerQuery, sort domain.CustomerSort, page domain.Page) ([]domain.Customer, int, error)
	Count(ctx context.Context, query domain.CustomerQuery) (int64, error)
}

// IntegrationRepository defines the read operations on integrations
type IntegrationRepository interface {
	FindByBrand(ctx context.Context, brandID string) ([]domain.Integration, error)
	FindByBrands(ctx context.Context, brandIDs []string) ([]domain.Integration, error)
	FindByKind(ctx context.Context, kind string) ([]domain.Integration, error)
	FindActive(ctx context.Context) ([]domain.Integration, error)
}

// BrandRepository defines the read operations on brands
type BrandRepository interface {
	FindAll(ctx context.Context) ([]domain.Brand, error)
}

// TagRepository defines the read operations on tags
type TagRepository interface {
	FindByType(ctx context.Context, tagType string) ([]domain.Tag, error)
}

// SegmentRepository defines the read operations on segments
type SegmentRepository interface {
	GetByID(ctx context.Context, id string) (domain.Segment, error)
	ListByContentType(ctx context.Context, contentType string) ([]domain.Segment, error)
}

// FormSubmissionRepository defines the read operations on form submissions
type FormSubmissionRepository interface {
	FindByForm(ctx context.Context, formID string) ([]domain.FormSubmission, error)
}

// ConformityRepository resolves typed associations between entities
type ConformityRepository interface {
	SavedRelatedIDs(ctx context.Context, mainType, mainTypeID, relType string) ([]string, error)
	RelatedIDs(ctx context.Context, mainType, mainTypeID, relType string) ([]string, error)
}
