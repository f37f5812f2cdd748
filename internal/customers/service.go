package customers

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/rpattn/crmql/internal/domain"
	"github.com/rpattn/crmql/internal/filter"
	"github.com/rpattn/crmql/internal/repository"
)

const (
	defaultPerPage    = 20
	defaultMaxPerPage = 200
	countsConcurrency = 4
)

// CountDimension names the dimension a breakdown of counts is keyed by.
type CountDimension string

const (
	CountByBrand           CountDimension = "brand"
	CountByIntegrationType CountDimension = "integrationType"
	CountByTag             CountDimension = "tag"
	CountBySegment         CountDimension = "segment"
	CountByLeadStatus      CountDimension = "leadStatus"
	CountByLifecycleState  CountDimension = "lifecycleState"
)

// ParseCountDimension validates a breakdown dimension name.
func ParseCountDimension(value string) (CountDimension, error) {
	switch d := CountDimension(strings.TrimSpace(value)); d {
	case CountByBrand, CountByIntegrationType, CountByTag, CountBySegment, CountByLeadStatus, CountByLifecycleState:
		return d, nil
	default:
		return "", fmt.Errorf("%w: unknown count dimension %q", filter.ErrInvalidParams, value)
	}
}

// Repositories are the stores the service reads from.
type Repositories struct {
	Customers    repository.CustomerRepository
	Brands       repository.BrandRepository
	Integrations repository.IntegrationRepository
	Tags         repository.TagRepository
	Segments     repository.SegmentRepository
}

// ListResult is one page of a customer listing.
type ListResult struct {
	Customers  []domain.Customer
	TotalCount int
	Page       int
	PerPage    int
}

type Service struct {
	builder *filter.Builder
	repos   Repositories

	defaultPerPage int
	maxPerPage     int
}

type Option func(*Service)

// WithPageSizes sets the page size used when a request has none and the
// largest page a request may ask for.
func WithPageSizes(defaultSize, maxSize int) Option {
	return func(s *Service) {
		if defaultSize > 0 {
			s.defaultPerPage = defaultSize
		}
		if maxSize > 0 {
			s.maxPerPage = maxSize
		}
	}
}

func NewService(builder *filter.Builder, repos Repositories, opts ...Option) *Service {
	service := &Service{
		builder:        builder,
		repos:          repos,
		defaultPerPage: defaultPerPage,
		maxPerPage:     defaultMaxPerPage,
	}
	for _, opt := range opts {
		opt(service)
	}
	if service.defaultPerPage > service.maxPerPage {
		service.defaultPerPage = service.maxPerPage
	}
	return service
}

// Page normalizes the pagination of params.
func (s *Service) Page(params domain.CustomerListParams) domain.Page {
	page := domain.Page{Page: params.Page, PerPage: params.PerPage}
	if page.Page < 1 {
		page.Page = 1
	}
	if page.PerPage <= 0 {
		page.PerPage = s.defaultPerPage
	}
	if page.PerPage > s.maxPerPage {
		page.PerPage = s.maxPerPage
	}
	return page
}

// List returns one page of the customers matching params.
func (s *Service) List(ctx context.Context, params domain.CustomerListParams) (ListResult, error) {
	query, err := s.builder.Build(ctx, params)
	if err != nil {
		return ListResult{}, err
	}

	page := s.Page(params)
	customers, total, err := s.repos.Customers.List(ctx, query, filter.SortFor(params), page)
	if err != nil {
		return ListResult{}, err
	}

	return ListResult{
		Customers:  customers,
		TotalCount: total,
		Page:       page.Page,
		PerPage:    page.PerPage,
	}, nil
}

// Count returns the number of customers matching params.
func (s *Service) Count(ctx context.Context, params domain.CustomerListParams) (int64, error) {
	query, err := s.builder.Build(ctx, params)
	if err != nil {
		return 0, err
	}
	return s.repos.Customers.Count(ctx, query)
}

// CountsBy breaks the customers matching params down by one dimension. Each
// key is counted with params plus that key as the dimension's filter, so a
// dimension already present in params is replaced for the breakdown.
func (s *Service) CountsBy(ctx context.Context, params domain.CustomerListParams, by CountDimension) (map[string]int64, error) {
	keys, err := s.countKeys(ctx, by)
	if err != nil {
		return nil, err
	}

	counts := make([]int64, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(countsConcurrency)
	for i, key := range keys {
		g.Go(func() error {
			count, err := s.Count(gctx, withDimension(params, by, key))
			if err != nil {
				return fmt.Errorf("count customers by %s %s: %w", by, key, err)
			}
			counts[i] = count
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make(map[string]int64, len(keys))
	for i, key := range keys {
		result[key] = counts[i]
	}
	log.Printf("[customers] counted %d %s buckets", len(result), by)
	return result, nil
}

func (s *Service) countKeys(ctx context.Context, by CountDimension) ([]string, error) {
	switch by {
	case CountByBrand:
		brands, err := s.repos.Brands.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		keys := make([]string, len(brands))
		for i, brand := range brands {
			keys[i] = brand.ID
		}
		return keys, nil
	case CountByIntegrationType:
		integrations, err := s.repos.Integrations.FindActive(ctx)
		if err != nil {
			return nil, err
		}
		kinds := make([]string, 0, len(integrations))
		for _, integration := range integrations {
			kinds = append(kinds, integration.Kind)
		}
		keys := domain.NewIDSet(kinds...).IDs()
		sort.Strings(keys)
		return keys, nil
	case CountByTag:
		tags, err := s.repos.Tags.FindByType(ctx, domain.ContentTypeCustomer)
		if err != nil {
			return nil, err
		}
		keys := make([]string, len(tags))
		for i, tag := range tags {
			keys[i] = tag.ID
		}
		return keys, nil
	case CountBySegment:
		segments, err := s.repos.Segments.ListByContentType(ctx, domain.ContentTypeCustomer)
		if err != nil {
			return nil, err
		}
		keys := make([]string, len(segments))
		for i, segment := range segments {
			keys[i] = segment.ID
		}
		return keys, nil
	case CountByLeadStatus:
		return domain.LeadStatuses, nil
	case CountByLifecycleState:
		return domain.LifecycleStates, nil
	default:
		return nil, fmt.Errorf("%w: unknown count dimension %q", filter.ErrInvalidParams, by)
	}
}

func withDimension(params domain.CustomerListParams, by CountDimension, key string) domain.CustomerListParams {
	switch by {
	case CountByBrand:
		params.Brand = key
	case CountByIntegrationType:
		params.IntegrationType = key
	case CountByTag:
		params.Tag = key
	case CountBySegment:
		params.Segment = key
	case CountByLeadStatus:
		params.LeadStatus = key
	case CountByLifecycleState:
		params.LifecycleState = key
	}
	return params
}
