package integrationloader

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/rpattn/crmql/internal/domain"
)

type stubIntegrationRepo struct {
	mu      sync.Mutex
	calls   [][]string
	byBrand map[string][]domain.Integration
	err     error
}

func (s *stubIntegrationRepo) FindByBrand(ctx context.Context, brandID string) ([]domain.Integration, error) {
	panic("not implemented")
}

func (s *stubIntegrationRepo) FindByBrands(ctx context.Context, brandIDs []string) ([]domain.Integration, error) {
	s.mu.Lock()
	s.calls = append(s.calls, append([]string(nil), brandIDs...))
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.Integration
	for _, id := range brandIDs {
		out = append(out, s.byBrand[id]...)
	}
	return out, nil
}

func (s *stubIntegrationRepo) FindByKind(ctx context.Context, kind string) ([]domain.Integration, error) {
	panic("not implemented")
}

func (s *stubIntegrationRepo) FindActive(ctx context.Context) ([]domain.Integration, error) {
	panic("not implemented")
}

func TestLoadBrandIntegrationIDsBatchesBrands(t *testing.T) {
	repo := &stubIntegrationRepo{
		byBrand: map[string][]domain.Integration{
			"B1": {{ID: "I1", BrandID: "B1"}, {ID: "I2", BrandID: "B1"}},
			"B2": {{ID: "I3", BrandID: "B2"}},
		},
	}
	loader := NewIntegrationLoader(repo)

	mapping, err := loader.LoadBrandIntegrationIDs(context.Background(), []string{"B1", "B2", "B3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.calls) != 1 {
		t.Fatalf("expected one batched repository call, got %d", len(repo.calls))
	}
	batch := repo.calls[0]
	sort.Strings(batch)
	if len(batch) != 3 || batch[0] != "B1" || batch[2] != "B3" {
		t.Fatalf("unexpected batch keys %v", batch)
	}

	if !mapping["B1"].Equal(domain.NewIDSet("I1", "I2")) {
		t.Fatalf("unexpected integrations for B1: %v", mapping["B1"].IDs())
	}
	if !mapping["B2"].Equal(domain.NewIDSet("I3")) {
		t.Fatalf("unexpected integrations for B2: %v", mapping["B2"].IDs())
	}
	if set, ok := mapping["B3"]; !ok || set.Len() != 0 {
		t.Fatalf("expected empty set for brand without integrations, got %v", set.IDs())
	}
}

func TestLoadBrandIntegrationIDsPropagatesErrors(t *testing.T) {
	boom := errors.New("store offline")
	loader := NewIntegrationLoader(&stubIntegrationRepo{err: boom})

	_, err := loader.LoadBrandIntegrationIDs(context.Background(), []string{"B1"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestLoadBrandIntegrationIDsWithoutBrands(t *testing.T) {
	loader := NewIntegrationLoader(&stubIntegrationRepo{})
	mapping, err := loader.LoadBrandIntegrationIDs(context.Background(), nil)
	if err != nil || len(mapping) != 0 {
		t.Fatalf("expected empty mapping, got %v (err %v)", mapping, err)
	}
}
