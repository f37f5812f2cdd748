package filter

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rpattn/crmql/internal/domain"
	"github.com/rpattn/crmql/internal/middleware"
)

// IntegrationFinder looks up integrations.
type IntegrationFinder interface {
	FindByBrand(ctx context.Context, brandID string) ([]domain.Integration, error)
	FindByKind(ctx context.Context, kind string) ([]domain.Integration, error)
	FindActive(ctx context.Context) ([]domain.Integration, error)
}

// BrandFinder lists brands.
type BrandFinder interface {
	FindAll(ctx context.Context) ([]domain.Brand, error)
}

// SegmentFinder loads segment definitions.
type SegmentFinder interface {
	GetByID(ctx context.Context, id string) (domain.Segment, error)
}

// SegmentEvaluator turns a segment rule tree into a predicate. The mapping
// carries the integration ids of every brand for brand-scoped conditions.
type SegmentEvaluator interface {
	Evaluate(ctx context.Context, segment domain.Segment, brandIntegrations map[string]domain.IDSet) (*domain.SegmentPredicate, error)
}

// FormSubmissionFinder loads the submissions of a form.
type FormSubmissionFinder interface {
	FindByForm(ctx context.Context, formID string) ([]domain.FormSubmission, error)
}

// Resolver turns loosely coupled references (brand, integration kind,
// segment, form) into concrete id sets.
type Resolver struct {
	integrations IntegrationFinder
	brands       BrandFinder
	segments     SegmentFinder
	evaluator    SegmentEvaluator
	submissions  FormSubmissionFinder
	formBounds   DateBounds
}

// NewResolver wires a resolver over the given collaborators.
func NewResolver(c Collaborators, formBounds DateBounds) *Resolver {
	return &Resolver{
		integrations: c.Integrations,
		brands:       c.Brands,
		segments:     c.Segments,
		evaluator:    c.SegmentEvaluator,
		submissions:  c.Submissions,
		formBounds:   formBounds,
	}
}

// BrandIntegrationIDs returns the ids of the brand's integrations. A brand
// without integrations yields an empty set.
func (r *Resolver) BrandIntegrationIDs(ctx context.Context, brandID string) (domain.IDSet, error) {
	integrations, err := r.integrations.FindByBrand(ctx, brandID)
	if err != nil {
		return domain.IDSet{}, fmt.Errorf("resolve integrations of brand %s: %w", brandID, err)
	}
	return domain.NewIDSet(domain.IntegrationIDs(integrations)...), nil
}

// KindIntegrationIDs returns the ids of every integration of the given kind.
func (r *Resolver) KindIntegrationIDs(ctx context.Context, kind string) (domain.IDSet, error) {
	integrations, err := r.integrations.FindByKind(ctx, kind)
	if err != nil {
		return domain.IDSet{}, fmt.Errorf("resolve integrations of kind %s: %w", kind, err)
	}
	return domain.NewIDSet(domain.IntegrationIDs(integrations)...), nil
}

// ActiveIntegrationIDs returns the ids of every integration that is not archived.
func (r *Resolver) ActiveIntegrationIDs(ctx context.Context) (domain.IDSet, error) {
	integrations, err := r.integrations.FindActive(ctx)
	if err != nil {
		return domain.IDSet{}, fmt.Errorf("resolve active integrations: %w", err)
	}
	return domain.NewIDSet(domain.IntegrationIDs(integrations)...), nil
}

// BrandIntegrationMapping maps every brand id to the ids of its integrations.
// The request-scoped loader batches the lookups when one is attached to ctx.
func (r *Resolver) BrandIntegrationMapping(ctx context.Context) (map[string]domain.IDSet, error) {
	brands, err := r.brands.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}

	brandIDs := make([]string, len(brands))
	for i, brand := range brands {
		brandIDs[i] = brand.ID
	}

	if loader := middleware.IntegrationLoaderFromContext(ctx); loader != nil {
		mapping, err := loader.LoadBrandIntegrationIDs(ctx, brandIDs)
		if err != nil {
			return nil, fmt.Errorf("load brand integrations: %w", err)
		}
		return mapping, nil
	}

	sets := make([]domain.IDSet, len(brandIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, brandID := range brandIDs {
		g.Go(func() error {
			set, err := r.BrandIntegrationIDs(gctx, brandID)
			if err != nil {
				return err
			}
			sets[i] = set
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	mapping := make(map[string]domain.IDSet, len(brandIDs))
	for i, brandID := range brandIDs {
		mapping[brandID] = sets[i]
	}
	return mapping, nil
}

// SegmentPredicate loads the segment and delegates its evaluation.
func (r *Resolver) SegmentPredicate(ctx context.Context, segmentID string) (*domain.SegmentPredicate, error) {
	segment, err := r.segments.GetByID(ctx, segmentID)
	if err != nil {
		return nil, fmt.Errorf("load segment %s: %w", segmentID, err)
	}

	mapping, err := r.BrandIntegrationMapping(ctx)
	if err != nil {
		return nil, err
	}

	predicate, err := r.evaluator.Evaluate(ctx, segment, mapping)
	if err != nil {
		return nil, fmt.Errorf("evaluate segment %s: %w", segmentID, err)
	}
	return predicate, nil
}

// FormSubmitterIDs returns the distinct customers that submitted the form.
// When both start and end are given only submissions inside the configured
// window count; otherwise every submission counts.
func (r *Resolver) FormSubmitterIDs(ctx context.Context, formID string, start, end *time.Time) (domain.IDSet, error) {
	submissions, err := r.submissions.FindByForm(ctx, formID)
	if err != nil {
		return domain.IDSet{}, fmt.Errorf("resolve submissions of form %s: %w", formID, err)
	}

	windowed := start != nil && end != nil
	ids := make([]string, 0, len(submissions))
	for _, submission := range submissions {
		if submission.CustomerID == "" {
			continue
		}
		if windowed && !r.formBounds.Contains(submission.SubmittedAt, *start, *end) {
			continue
		}
		ids = append(ids, submission.CustomerID)
	}
	return domain.NewIDSet(ids...), nil
}
