package integrationloader

import (
	"context"
	"fmt"
	"time"

	"github.com/rpattn/crmql/internal/domain"
	"github.com/rpattn/crmql/internal/repository"

	"github.com/graph-gophers/dataloader"
)

// IntegrationLoader batches brand → integration lookups within one request.
type IntegrationLoader struct {
	Loader *dataloader.Loader
}

func NewIntegrationLoader(repo repository.IntegrationRepository) *IntegrationLoader {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		brandIDs := keys.Keys()

		// Fetch integrations of every requested brand in one query
		integrations, err := repo.FindByBrands(ctx, brandIDs)
		if err != nil {
			results := make([]*dataloader.Result, len(keys))
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		byBrand := make(map[string][]string, len(brandIDs))
		for _, integration := range integrations {
			byBrand[integration.BrandID] = append(byBrand[integration.BrandID], integration.ID)
		}

		// Build results in the same order as keys
		results := make([]*dataloader.Result, len(keys))
		for i, brandID := range brandIDs {
			results[i] = &dataloader.Result{Data: domain.NewIDSet(byBrand[brandID]...)}
		}

		return results
	}

	loader := dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(2*time.Millisecond))

	return &IntegrationLoader{Loader: loader}
}

// LoadBrandIntegrationIDs maps each brand id to the ids of its integrations.
func (l *IntegrationLoader) LoadBrandIntegrationIDs(ctx context.Context, brandIDs []string) (map[string]domain.IDSet, error) {
	mapping := make(map[string]domain.IDSet, len(brandIDs))
	if len(brandIDs) == 0 {
		return mapping, nil
	}

	values, errs := l.Loader.LoadMany(ctx, dataloader.NewKeysFromStrings(brandIDs))()
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("load integrations of brand %s: %w", brandIDs[i], err)
		}
	}

	for i, brandID := range brandIDs {
		set, ok := values[i].(domain.IDSet)
		if !ok {
			return nil, fmt.Errorf("unexpected loader value %T for brand %s", values[i], brandID)
		}
		mapping[brandID] = set
	}
	return mapping, nil
}
