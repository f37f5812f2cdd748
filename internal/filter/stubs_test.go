package filter

import (
	"context"
	"sync"
	"time"

	"github.com/rpattn/crmql/internal/domain"
)

type stubIntegrations struct {
	mu       sync.Mutex
	byBrand  map[string][]domain.Integration
	byKind   map[string][]domain.Integration
	active   []domain.Integration
	err      error
	kindErr  error
	brandHit int
}

func (s *stubIntegrations) FindByBrand(ctx context.Context, brandID string) ([]domain.Integration, error) {
	s.mu.Lock()
	s.brandHit++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.byBrand[brandID], nil
}

func (s *stubIntegrations) FindByBrands(ctx context.Context, brandIDs []string) ([]domain.Integration, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]domain.Integration, 0)
	for _, id := range brandIDs {
		out = append(out, s.byBrand[id]...)
	}
	return out, nil
}

func (s *stubIntegrations) FindByKind(ctx context.Context, kind string) ([]domain.Integration, error) {
	if s.kindErr != nil {
		return nil, s.kindErr
	}
	return s.byKind[kind], nil
}

func (s *stubIntegrations) FindActive(ctx context.Context) ([]domain.Integration, error) {
	return s.active, nil
}

type stubBrands struct {
	brands []domain.Brand
}

func (s *stubBrands) FindAll(ctx context.Context) ([]domain.Brand, error) {
	return s.brands, nil
}

type stubSegments struct {
	segments map[string]domain.Segment
}

func (s *stubSegments) GetByID(ctx context.Context, id string) (domain.Segment, error) {
	return s.segments[id], nil
}

type stubEvaluator struct {
	mapping map[string]domain.IDSet
	err     error
}

func (s *stubEvaluator) Evaluate(ctx context.Context, segment domain.Segment, brandIntegrations map[string]domain.IDSet) (*domain.SegmentPredicate, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mapping = brandIntegrations
	return &domain.SegmentPredicate{
		Connector: segment.Connector,
		Terms:     []domain.SegmentTerm{{Field: "segment", Operator: domain.SegmentOperatorEquals, Value: segment.ID}},
	}, nil
}

type stubSubmissions struct {
	byForm map[string][]domain.FormSubmission
	err    error
}

func (s *stubSubmissions) FindByForm(ctx context.Context, formID string) ([]domain.FormSubmission, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.byForm[formID], nil
}

type stubConformity struct {
	prior  *domain.IDSet
	result []string
	called bool
}

func (s *stubConformity) Apply(ctx context.Context, prior *domain.IDSet, q domain.ConformityQuery) (*domain.IDSet, error) {
	s.called = true
	s.prior = prior
	related := domain.NewIDSet(s.result...)
	if prior != nil {
		related = prior.Intersect(related)
	}
	return &related, nil
}

func integrations(brandID, kind string, ids ...string) []domain.Integration {
	out := make([]domain.Integration, len(ids))
	for i, id := range ids {
		out[i] = domain.Integration{ID: id, BrandID: brandID, Kind: kind}
	}
	return out
}

func date(day int) time.Time {
	return time.Date(2024, time.March, day, 12, 0, 0, 0, time.UTC)
}

// newFixture wires a builder over a small catalogue: brand B1 owns I1 and I2,
// brand B2 owns I3; I2 and I3 are messenger integrations, I1 is a lead form.
func newFixture() (*stubIntegrations, Collaborators) {
	ints := &stubIntegrations{
		byBrand: map[string][]domain.Integration{
			"B1": integrations("B1", "", "I1", "I2"),
			"B2": integrations("B2", "", "I3"),
		},
		byKind: map[string][]domain.Integration{
			"messenger": integrations("", "messenger", "I2", "I3"),
			"lead":      integrations("", "lead", "I1"),
		},
		active: integrations("", "", "I1", "I2", "I3"),
	}
	return ints, Collaborators{
		Integrations:     ints,
		Brands:           &stubBrands{brands: []domain.Brand{{ID: "B1"}, {ID: "B2"}}},
		Segments:         &stubSegments{segments: map[string]domain.Segment{"S1": {ID: "S1", Connector: domain.SegmentConnectorAll}}},
		SegmentEvaluator: &stubEvaluator{},
		Submissions: &stubSubmissions{byForm: map[string][]domain.FormSubmission{
			"F1": {
				{ID: "s1", FormID: "F1", CustomerID: "C1", SubmittedAt: date(1)},
				{ID: "s2", FormID: "F1", CustomerID: "C2", SubmittedAt: date(10)},
				{ID: "s3", FormID: "F1", CustomerID: "C3", SubmittedAt: date(20)},
				{ID: "s4", FormID: "F1", SubmittedAt: date(10)},
			},
		}},
	}
}
