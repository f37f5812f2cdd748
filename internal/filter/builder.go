package filter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rpattn/crmql/internal/domain"
)

// ErrInvalidParams marks listing parameters that cannot be turned into a query.
var ErrInvalidParams = errors.New("invalid filter parameters")

// ConformityFilter narrows an identifier constraint to entities associated
// with an anchor entity. It returns prior unchanged when q names no anchor.
type ConformityFilter interface {
	Apply(ctx context.Context, prior *domain.IDSet, q domain.ConformityQuery) (*domain.IDSet, error)
}

// Collaborators are the read-only services the builder resolves references with.
type Collaborators struct {
	Integrations     IntegrationFinder
	Brands           BrandFinder
	Segments         SegmentFinder
	SegmentEvaluator SegmentEvaluator
	Submissions      FormSubmissionFinder
	Conformity       ConformityFilter
}

// Option customizes a Builder.
type Option func(*Builder)

// WithMinProfileScore sets the score a customer must exceed to be listed.
func WithMinProfileScore(score int) Option {
	return func(b *Builder) {
		b.minProfileScore = score
	}
}

// WithFormDateBounds sets the inclusivity of the form submission window.
func WithFormDateBounds(bounds DateBounds) Option {
	return func(b *Builder) {
		if bounds != "" {
			b.formBounds = bounds
		}
	}
}

// WithTextSearch replaces the free-text constraint generator.
func WithTextSearch(search TextSearchFunc) Option {
	return func(b *Builder) {
		if search != nil {
			b.search = search
		}
	}
}

// Builder composes the listing parameters of a customer search into one
// query.
type Builder struct {
	collaborators   Collaborators
	resolver        *Resolver
	minProfileScore int
	formBounds      DateBounds
	search          TextSearchFunc
}

// NewBuilder wires a builder over the given collaborators.
func NewBuilder(c Collaborators, opts ...Option) *Builder {
	b := &Builder{
		collaborators: c,
		formBounds:    DateBoundsExclusive,
		search:        DefaultTextSearch(nil),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.resolver = NewResolver(c, b.formBounds)
	return b
}

// Resolver exposes the reference resolver the builder uses.
func (b *Builder) Resolver() *Resolver {
	return b.resolver
}

// Fragments holds the constraint each filter dimension contributed. Nil
// fields belong to dimensions that were not requested. During resolution
// every dimension writes only its own field.
type Fragments struct {
	Base            domain.CustomerBaseFilter
	Type            *bool
	Segment         *domain.SegmentPredicate
	Tag             []string
	Brand           *domain.IDSet
	IntegrationType *domain.IDSet
	Form            *domain.IDSet
	IDs             *domain.IDSet
	Integration     *domain.IDSet
	Search          *domain.TextSearch
	LeadStatus      *string
	LifecycleState  *string
	Conformity      *domain.IDSet
}

// Build resolves every requested dimension and merges the fragments into
// the final query. Any collaborator failure aborts the whole build.
func (b *Builder) Build(ctx context.Context, params domain.CustomerListParams) (domain.CustomerQuery, error) {
	fragments, err := b.Fragments(ctx, params)
	if err != nil {
		return domain.CustomerQuery{}, err
	}
	return fragments.Merge(), nil
}

// Fragments resolves the per-dimension constraints without merging them.
func (b *Builder) Fragments(ctx context.Context, params domain.CustomerListParams) (*Fragments, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	active, err := b.resolver.ActiveIntegrationIDs(ctx)
	if err != nil {
		return nil, err
	}
	f := &Fragments{Base: BaseFragment(b.minProfileScore, active)}

	if err := b.resolveIndependent(ctx, params, f); err != nil {
		return nil, err
	}
	if err := b.resolveDependent(ctx, params, f); err != nil {
		return nil, err
	}
	return f, nil
}

// resolveIndependent resolves every dimension that does not depend on
// another dimension's result.
func (b *Builder) resolveIndependent(ctx context.Context, params domain.CustomerListParams, f *Fragments) error {
	if params.Type != "" {
		f.Type = TypeFragment(params.Type)
	}
	if params.Tag != "" {
		f.Tag = TagFragment(params.Tag)
	}
	if params.IDs != nil {
		f.IDs = IDsFragment(params.IDs)
	}
	if params.SearchValue != "" {
		f.Search = b.search(params.SearchValue)
	}
	if params.LeadStatus != "" {
		f.LeadStatus = LeadStatusFragment(params.LeadStatus)
	}
	if params.LifecycleState != "" {
		f.LifecycleState = LifecycleStateFragment(params.LifecycleState)
	}

	g, gctx := errgroup.WithContext(ctx)

	if params.Segment != "" {
		g.Go(func() error {
			predicate, err := b.resolver.SegmentPredicate(gctx, params.Segment)
			if err != nil {
				return err
			}
			f.Segment = predicate
			return nil
		})
	}

	if params.Brand != "" {
		g.Go(func() error {
			ids, err := b.resolver.BrandIntegrationIDs(gctx, params.Brand)
			if err != nil {
				return err
			}
			f.Brand = &ids
			return nil
		})
	}

	if params.IntegrationType != "" {
		g.Go(func() error {
			ids, err := b.resolver.KindIntegrationIDs(gctx, params.IntegrationType)
			if err != nil {
				return err
			}
			f.IntegrationType = &ids
			return nil
		})
	}

	if params.Form != "" {
		g.Go(func() error {
			ids, err := b.resolver.FormSubmitterIDs(gctx, params.Form, params.StartDate, params.EndDate)
			if err != nil {
				return err
			}
			f.Form = &ids
			return nil
		})
	}

	return g.Wait()
}

// resolveDependent resolves the dimensions that reconcile against earlier
// results: integration against brand and integration kind, conformity
// against the identifier allow-lists.
func (b *Builder) resolveDependent(ctx context.Context, params domain.CustomerListParams, f *Fragments) error {
	q := params.ConformityQuery()
	if q.Present() && b.collaborators.Conformity == nil {
		return fmt.Errorf("%w: relationship filtering is not configured", ErrInvalidParams)
	}

	g, gctx := errgroup.WithContext(ctx)

	if params.Integration != "" {
		current := domain.IntersectPtr(f.Brand, f.IntegrationType)
		g.Go(func() error {
			resolved, err := b.resolver.KindIntegrationIDs(gctx, params.Integration)
			if err != nil {
				return err
			}
			f.Integration = IntegrationFragment(resolved, current)
			return nil
		})
	}

	if q.Present() {
		prior := domain.IntersectPtr(f.IDs, f.Form)
		g.Go(func() error {
			ids, err := b.collaborators.Conformity.Apply(gctx, prior, q)
			if err != nil {
				return fmt.Errorf("resolve related %s of %s %s: %w", q.RelType, q.MainType, q.MainTypeID, err)
			}
			f.Conformity = ids
			return nil
		})
	}

	return g.Wait()
}

// Merge folds the fragments into one query. Fragments are visited in a fixed
// order: base, type, segment, tag, brand, integrationType, form, ids,
// integration, searchValue, leadStatus, lifecycleState, conformity.
// Dimensions that constrain the same attribute are intersected, never
// overwritten.
func (f *Fragments) Merge() domain.CustomerQuery {
	q := domain.CustomerQuery{Base: f.Base}
	q.IsUser = f.Type
	q.Segment = f.Segment
	q.TagIDs = f.Tag
	q.IntegrationIDs = f.integrationConstraint()
	q.IDs = f.identifierConstraint()
	q.Search = f.Search
	q.LeadStatus = f.LeadStatus
	q.LifecycleState = f.LifecycleState
	return q
}

// integrationConstraint is the integration fragment when present, since it
// was already reconciled with brand and integration kind during resolution.
func (f *Fragments) integrationConstraint() *domain.IDSet {
	if f.Integration != nil {
		return f.Integration
	}
	return domain.IntersectPtr(f.Brand, f.IntegrationType)
}

// identifierConstraint is the conformity fragment when present, since it
// was already intersected with ids and form during resolution.
func (f *Fragments) identifierConstraint() *domain.IDSet {
	if f.Conformity != nil {
		return f.Conformity
	}
	return domain.IntersectPtr(f.IDs, f.Form)
}

func validateParams(params domain.CustomerListParams) error {
	if params.Form != "" && params.StartDate != nil && params.EndDate != nil && params.StartDate.After(*params.EndDate) {
		return fmt.Errorf("%w: startDate %s is after endDate %s", ErrInvalidParams,
			params.StartDate.Format(time.RFC3339), params.EndDate.Format(time.RFC3339))
	}
	return nil
}
