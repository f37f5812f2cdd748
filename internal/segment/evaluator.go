package segment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rpattn/crmql/internal/domain"
)

// maxParentDepth bounds how many sub-of hops are followed.
const maxParentDepth = 8

// ErrInvalidSegment is returned for segment definitions that cannot be evaluated.
var ErrInvalidSegment = errors.New("invalid segment")

// Finder loads segment definitions by id.
type Finder interface {
	GetByID(ctx context.Context, id string) (domain.Segment, error)
}

// Evaluator turns stored segment rule trees into predicates.
type Evaluator struct {
	segments Finder
}

// NewEvaluator creates an evaluator that loads parent segments through segments.
func NewEvaluator(segments Finder) *Evaluator {
	return &Evaluator{segments: segments}
}

// Evaluate validates the segment and returns its predicate. Conditions scoped
// to a brand are bound to the brand's integration ids from brandIntegrations;
// an unknown brand matches nothing.
func (e *Evaluator) Evaluate(ctx context.Context, segment domain.Segment, brandIntegrations map[string]domain.IDSet) (*domain.SegmentPredicate, error) {
	return e.evaluate(ctx, segment, brandIntegrations, map[string]struct{}{}, 0)
}

func (e *Evaluator) evaluate(ctx context.Context, segment domain.Segment, brandIntegrations map[string]domain.IDSet, seen map[string]struct{}, depth int) (*domain.SegmentPredicate, error) {
	if segment.ContentType != "" && segment.ContentType != domain.ContentTypeCustomer {
		return nil, fmt.Errorf("%w: segment %s targets %q, not customers", ErrInvalidSegment, segment.ID, segment.ContentType)
	}

	connector, err := normalizeConnector(segment.Connector)
	if err != nil {
		return nil, fmt.Errorf("segment %s: %w", segment.ID, err)
	}

	predicate := &domain.SegmentPredicate{
		Connector: connector,
		Terms:     make([]domain.SegmentTerm, 0, len(segment.Conditions)),
	}
	for i, condition := range segment.Conditions {
		term, err := buildTerm(condition, brandIntegrations)
		if err != nil {
			return nil, fmt.Errorf("segment %s condition %d: %w", segment.ID, i, err)
		}
		predicate.Terms = append(predicate.Terms, term)
	}

	if segment.SubOf == "" {
		return predicate, nil
	}

	if segment.ID != "" {
		seen[segment.ID] = struct{}{}
	}
	if _, cycle := seen[segment.SubOf]; cycle {
		return nil, fmt.Errorf("%w: segment %s is its own ancestor", ErrInvalidSegment, segment.SubOf)
	}
	if depth+1 > maxParentDepth {
		return nil, fmt.Errorf("%w: segment %s nests deeper than %d levels", ErrInvalidSegment, segment.ID, maxParentDepth)
	}

	parent, err := e.segments.GetByID(ctx, segment.SubOf)
	if err != nil {
		return nil, fmt.Errorf("load parent segment %s: %w", segment.SubOf, err)
	}
	predicate.Parent, err = e.evaluate(ctx, parent, brandIntegrations, seen, depth+1)
	if err != nil {
		return nil, err
	}
	return predicate, nil
}

func normalizeConnector(connector domain.SegmentConnector) (domain.SegmentConnector, error) {
	switch domain.SegmentConnector(strings.ToLower(string(connector))) {
	case "", domain.SegmentConnectorAll:
		return domain.SegmentConnectorAll, nil
	case domain.SegmentConnectorAny:
		return domain.SegmentConnectorAny, nil
	default:
		return "", fmt.Errorf("%w: unknown connector %q", ErrInvalidSegment, connector)
	}
}

func buildTerm(condition domain.SegmentCondition, brandIntegrations map[string]domain.IDSet) (domain.SegmentTerm, error) {
	term := domain.SegmentTerm{
		Field:    strings.TrimSpace(condition.Field),
		Operator: condition.Operator,
		Value:    condition.Value,
	}

	if condition.BrandID != "" {
		ids, ok := brandIntegrations[condition.BrandID]
		if !ok {
			ids = domain.NewIDSet()
		}
		term.IntegrationIDs = &ids
	}

	if term.Field == "" {
		if term.IntegrationIDs == nil {
			return domain.SegmentTerm{}, fmt.Errorf("%w: condition names neither a field nor a brand", ErrInvalidSegment)
		}
		return term, nil
	}

	if err := validateOperator(term.Operator, term.Value); err != nil {
		return domain.SegmentTerm{}, fmt.Errorf("field %s: %w", term.Field, err)
	}
	return term, nil
}

func validateOperator(op domain.SegmentOperator, value string) error {
	switch op {
	case domain.SegmentOperatorEquals, domain.SegmentOperatorNotEquals,
		domain.SegmentOperatorContains, domain.SegmentOperatorNotContains,
		domain.SegmentOperatorGreaterThan, domain.SegmentOperatorLessThan:
		if value == "" {
			return fmt.Errorf("%w: operator %s needs a value", ErrInvalidSegment, op)
		}
	case domain.SegmentOperatorWithinLastDays:
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Errorf("%w: operator %s needs a whole number of days, got %q", ErrInvalidSegment, op, value)
		}
	case domain.SegmentOperatorIsSet, domain.SegmentOperatorIsNotSet,
		domain.SegmentOperatorIsTrue, domain.SegmentOperatorIsFalse:
	default:
		return fmt.Errorf("%w: unknown operator %q", ErrInvalidSegment, op)
	}
	return nil
}
