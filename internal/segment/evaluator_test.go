package segment

import (
	"context"
	"errors"
	"testing"

	"github.com/rpattn/crmql/internal/domain"
)

type stubFinder struct {
	segments map[string]domain.Segment
	calls    []string
}

func (s *stubFinder) GetByID(ctx context.Context, id string) (domain.Segment, error) {
	s.calls = append(s.calls, id)
	segment, ok := s.segments[id]
	if !ok {
		return domain.Segment{}, errors.New("segment not found")
	}
	return segment, nil
}

func TestEvaluateBuildsTerms(t *testing.T) {
	evaluator := NewEvaluator(&stubFinder{})
	mapping := map[string]domain.IDSet{"B1": domain.NewIDSet("I1", "I2")}

	predicate, err := evaluator.Evaluate(context.Background(), domain.Segment{
		ID:          "S1",
		ContentType: domain.ContentTypeCustomer,
		Connector:   domain.SegmentConnectorAny,
		Conditions: []domain.SegmentCondition{
			{Field: "lead_status", Operator: domain.SegmentOperatorEquals, Value: "new"},
			{BrandID: "B1"},
			{Field: "first_name", Operator: domain.SegmentOperatorIsSet, BrandID: "B9"},
		},
	}, mapping)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	if predicate.Connector != domain.SegmentConnectorAny {
		t.Fatalf("expected any connector, got %s", predicate.Connector)
	}
	if len(predicate.Terms) != 3 {
		t.Fatalf("expected 3 terms, got %d", len(predicate.Terms))
	}
	if predicate.Terms[0].IntegrationIDs != nil {
		t.Fatalf("expected unscoped first term")
	}
	if got := predicate.Terms[1].IntegrationIDs; got == nil || !got.Equal(domain.NewIDSet("I1", "I2")) {
		t.Fatalf("expected brand B1 integrations, got %v", got)
	}
	if got := predicate.Terms[2].IntegrationIDs; got == nil || got.Len() != 0 {
		t.Fatalf("expected unknown brand to match no integrations, got %v", got)
	}
	if predicate.Parent != nil {
		t.Fatalf("expected no parent predicate")
	}
}

func TestEvaluateDefaultsConnectorToAll(t *testing.T) {
	predicate, err := NewEvaluator(&stubFinder{}).Evaluate(context.Background(), domain.Segment{ID: "S1"}, nil)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if predicate.Connector != domain.SegmentConnectorAll {
		t.Fatalf("expected all connector, got %s", predicate.Connector)
	}
}

func TestEvaluateLoadsParents(t *testing.T) {
	finder := &stubFinder{segments: map[string]domain.Segment{
		"P1": {ID: "P1", ContentType: domain.ContentTypeCustomer, SubOf: "P2", Conditions: []domain.SegmentCondition{
			{Field: "is_user", Operator: domain.SegmentOperatorIsTrue},
		}},
		"P2": {ID: "P2", ContentType: domain.ContentTypeCustomer, Connector: domain.SegmentConnectorAny},
	}}

	predicate, err := NewEvaluator(finder).Evaluate(context.Background(), domain.Segment{ID: "S1", SubOf: "P1"}, nil)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if predicate.Parent == nil || predicate.Parent.Parent == nil {
		t.Fatalf("expected two parent levels, got %+v", predicate)
	}
	if predicate.Parent.Parent.Connector != domain.SegmentConnectorAny {
		t.Fatalf("expected grandparent connector any, got %s", predicate.Parent.Parent.Connector)
	}
	if len(finder.calls) != 2 {
		t.Fatalf("expected 2 parent lookups, got %v", finder.calls)
	}
}

func TestEvaluateRejectsCycles(t *testing.T) {
	finder := &stubFinder{segments: map[string]domain.Segment{
		"P1": {ID: "P1", SubOf: "S1"},
	}}

	_, err := NewEvaluator(finder).Evaluate(context.Background(), domain.Segment{ID: "S1", SubOf: "P1"}, nil)
	if !errors.Is(err, ErrInvalidSegment) {
		t.Fatalf("expected ErrInvalidSegment, got %v", err)
	}
}

func TestEvaluatePropagatesParentLookupErrors(t *testing.T) {
	_, err := NewEvaluator(&stubFinder{}).Evaluate(context.Background(), domain.Segment{ID: "S1", SubOf: "missing"}, nil)
	if err == nil || errors.Is(err, ErrInvalidSegment) {
		t.Fatalf("expected lookup error, got %v", err)
	}
}

func TestEvaluateRejectsInvalidDefinitions(t *testing.T) {
	for name, segment := range map[string]domain.Segment{
		"content type":    {ID: "S1", ContentType: "deal"},
		"connector":       {ID: "S1", Connector: "some"},
		"operator":        {ID: "S1", Conditions: []domain.SegmentCondition{{Field: "code", Operator: "zz"}}},
		"missing value":   {ID: "S1", Conditions: []domain.SegmentCondition{{Field: "code", Operator: domain.SegmentOperatorEquals}}},
		"days":            {ID: "S1", Conditions: []domain.SegmentCondition{{Field: "last_seen_at", Operator: domain.SegmentOperatorWithinLastDays, Value: "week"}}},
		"empty condition": {ID: "S1", Conditions: []domain.SegmentCondition{{}}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewEvaluator(&stubFinder{}).Evaluate(context.Background(), segment, nil)
			if !errors.Is(err, ErrInvalidSegment) {
				t.Fatalf("expected ErrInvalidSegment, got %v", err)
			}
		})
	}
}
