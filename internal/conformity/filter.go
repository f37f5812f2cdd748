package conformity

import (
	"context"
	"fmt"

	"github.com/rpattn/crmql/internal/domain"
)

// Store resolves associations between entities.
type Store interface {
	SavedRelatedIDs(ctx context.Context, mainType, mainTypeID, relType string) ([]string, error)
	RelatedIDs(ctx context.Context, mainType, mainTypeID, relType string) ([]string, error)
}

// Filter narrows listings to entities associated with an anchor entity.
type Filter struct {
	store Store
}

// NewFilter creates a relationship filter backed by store.
func NewFilter(store Store) *Filter {
	return &Filter{store: store}
}

// Apply returns the ids of q.RelType entities associated with the anchor,
// restricted to prior when prior is not nil. Saved associations win over
// related ones when both are requested. Without an anchor or a mode prior is
// returned unchanged.
func (f *Filter) Apply(ctx context.Context, prior *domain.IDSet, q domain.ConformityQuery) (*domain.IDSet, error) {
	if !q.Present() || (!q.IsSaved && !q.IsRelated) {
		return prior, nil
	}

	var (
		ids []string
		err error
	)
	if q.IsSaved {
		ids, err = f.store.SavedRelatedIDs(ctx, q.MainType, q.MainTypeID, q.RelType)
	} else {
		ids, err = f.store.RelatedIDs(ctx, q.MainType, q.MainTypeID, q.RelType)
	}
	if err != nil {
		return nil, fmt.Errorf("load associations of %s %s: %w", q.MainType, q.MainTypeID, err)
	}

	related := domain.NewIDSet(ids...)
	if prior != nil {
		related = prior.Intersect(related)
	}
	return &related, nil
}
