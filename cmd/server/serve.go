package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/rpattn/crmql/internal/config"
	"github.com/rpattn/crmql/internal/conformity"
	"github.com/rpattn/crmql/internal/customers"
	"github.com/rpattn/crmql/internal/db"
	"github.com/rpattn/crmql/internal/export"
	"github.com/rpattn/crmql/internal/filter"
	"github.com/rpattn/crmql/internal/middleware"
	"github.com/rpattn/crmql/internal/repository"
	"github.com/rpattn/crmql/internal/segment"
)

var skipMigrations bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply pending migrations on start")
}

func serve(ctx context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.NewConnection(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close()

	if !skipMigrations {
		if err := db.RunMigrations(conn.Pool); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// Repositories
	customerRepo := repository.NewCustomerRepository(conn.Pool)
	integrationRepo := repository.NewIntegrationRepository(conn.Pool)
	brandRepo := repository.NewBrandRepository(conn.Pool)
	tagRepo := repository.NewTagRepository(conn.Pool)
	segmentRepo := repository.NewSegmentRepository(conn.Pool)
	submissionRepo := repository.NewFormSubmissionRepository(conn.Pool)
	conformityRepo := repository.NewConformityRepository(conn.Pool)

	builder := filter.NewBuilder(filter.Collaborators{
		Integrations:     integrationRepo,
		Brands:           brandRepo,
		Segments:         segmentRepo,
		SegmentEvaluator: segment.NewEvaluator(segmentRepo),
		Submissions:      submissionRepo,
		Conformity:       conformity.NewFilter(conformityRepo),
	},
		filter.WithMinProfileScore(cfg.Filter.MinProfileScore),
		filter.WithFormDateBounds(cfg.Filter.FormDateBounds),
		filter.WithTextSearch(filter.DefaultTextSearch(cfg.Filter.SearchFields)),
	)

	customerService := customers.NewService(builder, customers.Repositories{
		Customers:    customerRepo,
		Brands:       brandRepo,
		Integrations: integrationRepo,
		Tags:         tagRepo,
		Segments:     segmentRepo,
	}, customers.WithPageSizes(cfg.Filter.DefaultPerPage, cfg.Filter.MaxPerPage))
	exportService := export.NewService(customerService, export.WithPageSize(cfg.Filter.MaxPerPage))

	customerHandler := customers.NewHTTPHandler(customerService)
	mux := http.NewServeMux()
	mux.Handle("/customers", customerHandler)
	mux.Handle("/customers/", customerHandler)
	mux.Handle("/customers/export", export.NewHTTPHandler(exportService))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := conn.Pool.Ping(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	server := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: corsHandler.Handler(middleware.LoggingMiddleware(
			middleware.DataLoaderMiddleware(integrationRepo)(mux),
		)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Println("Server exited")
	return nil
}
