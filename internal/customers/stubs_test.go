package customers

import (
	"context"
	"sync"

	"github.com/rpattn/crmql/internal/domain"
	"github.com/rpattn/crmql/internal/filter"
	"github.com/rpattn/crmql/internal/repository"
)

type stubCustomerRepo struct {
	mu        sync.Mutex
	customers []domain.Customer
	total     int
	err       error

	lastQuery domain.CustomerQuery
	lastSort  domain.CustomerSort
	lastPage  domain.Page
	counted   []domain.CustomerQuery
	countFn   func(domain.CustomerQuery) int64
}

func (s *stubCustomerRepo) List(ctx context.Context, query domain.CustomerQuery, sort domain.CustomerSort, page domain.Page) ([]domain.Customer, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastQuery, s.lastSort, s.lastPage = query, sort, page
	return s.customers, s.total, s.err
}

func (s *stubCustomerRepo) Count(ctx context.Context, query domain.CustomerQuery) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counted = append(s.counted, query)
	if s.err != nil {
		return 0, s.err
	}
	if s.countFn != nil {
		return s.countFn(query), nil
	}
	return int64(s.total), nil
}

type stubIntegrationRepo struct {
	byBrand map[string][]domain.Integration
	byKind  map[string][]domain.Integration
	active  []domain.Integration
}

func (s *stubIntegrationRepo) FindByBrand(ctx context.Context, brandID string) ([]domain.Integration, error) {
	return s.byBrand[brandID], nil
}

func (s *stubIntegrationRepo) FindByBrands(ctx context.Context, brandIDs []string) ([]domain.Integration, error) {
	panic("not implemented")
}

func (s *stubIntegrationRepo) FindByKind(ctx context.Context, kind string) ([]domain.Integration, error) {
	return s.byKind[kind], nil
}

func (s *stubIntegrationRepo) FindActive(ctx context.Context) ([]domain.Integration, error) {
	return s.active, nil
}

type stubBrandRepo struct {
	brands []domain.Brand
}

func (s *stubBrandRepo) FindAll(ctx context.Context) ([]domain.Brand, error) {
	return s.brands, nil
}

type stubTagRepo struct {
	tags []domain.Tag
}

func (s *stubTagRepo) FindByType(ctx context.Context, tagType string) ([]domain.Tag, error) {
	return s.tags, nil
}

type stubSegmentRepo struct{}

func (s *stubSegmentRepo) GetByID(ctx context.Context, id string) (domain.Segment, error) {
	return domain.Segment{}, repository.ErrNotFound
}

func (s *stubSegmentRepo) ListByContentType(ctx context.Context, contentType string) ([]domain.Segment, error) {
	panic("not implemented")
}

type stubSubmissionRepo struct{}

func (s *stubSubmissionRepo) FindByForm(ctx context.Context, formID string) ([]domain.FormSubmission, error) {
	return nil, nil
}

type stubEvaluator struct{}

func (stubEvaluator) Evaluate(ctx context.Context, segment domain.Segment, brandIntegrations map[string]domain.IDSet) (*domain.SegmentPredicate, error) {
	panic("not implemented")
}

func integration(id, brandID, kind string) domain.Integration {
	return domain.Integration{ID: id, BrandID: brandID, Kind: kind}
}

func newTestService(customers *stubCustomerRepo, opts ...Option) *Service {
	i1 := integration("I1", "B1", "messenger")
	i2 := integration("I2", "B1", "lead")
	i3 := integration("I3", "B2", "messenger")
	integrations := &stubIntegrationRepo{
		byBrand: map[string][]domain.Integration{"B1": {i1, i2}, "B2": {i3}},
		byKind:  map[string][]domain.Integration{"messenger": {i1, i3}, "lead": {i2}},
		active:  []domain.Integration{i1, i2, i3},
	}
	brands := &stubBrandRepo{brands: []domain.Brand{{ID: "B1"}, {ID: "B2"}}}
	segments := &stubSegmentRepo{}

	builder := filter.NewBuilder(filter.Collaborators{
		Integrations:     integrations,
		Brands:           brands,
		Segments:         segments,
		SegmentEvaluator: stubEvaluator{},
		Submissions:      &stubSubmissionRepo{},
	})
	return NewService(builder, Repositories{
		Customers:    customers,
		Brands:       brands,
		Integrations: integrations,
		Tags:         &stubTagRepo{tags: []domain.Tag{{ID: "T1"}, {ID: "T2"}}},
		Segments:     segments,
	}, opts...)
}
