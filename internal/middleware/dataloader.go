package middleware

import (
	"context"
	"net/http"

	"github.com/rpattn/crmql/internal/integrationloader"
	"github.com/rpattn/crmql/internal/repository"
)

type ctxKey string

const integrationLoaderKey ctxKey = "integrationLoader"

// DataLoaderMiddleware attaches a fresh integration loader to every request context
func DataLoaderMiddleware(repo repository.IntegrationRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loader := integrationloader.NewIntegrationLoader(repo)
			next.ServeHTTP(w, r.WithContext(WithIntegrationLoader(r.Context(), loader)))
		})
	}
}

// WithIntegrationLoader returns a context carrying loader.
func WithIntegrationLoader(ctx context.Context, loader *integrationloader.IntegrationLoader) context.Context {
	return context.WithValue(ctx, integrationLoaderKey, loader)
}

// IntegrationLoaderFromContext retrieves the loader from context
func IntegrationLoaderFromContext(ctx context.Context) *integrationloader.IntegrationLoader {
	if l, ok := ctx.Value(integrationLoaderKey).(*integrationloader.IntegrationLoader); ok {
		return l
	}
	return nil
}
