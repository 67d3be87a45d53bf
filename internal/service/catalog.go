package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/kamau/sugarbloom-api/internal/domain"
	"github.com/kamau/sugarbloom-api/internal/infra/observability"
	"github.com/kamau/sugarbloom-api/internal/port"
)

var catalogTracer = otel.Tracer("catalog")

const galleryCacheKey = "gallery"

// featuredCount is how many of the newest cakes the home page shows.
const featuredCount = 3

// CatalogService serves the public cake gallery. Listings are cached as one
// snapshot; category filtering happens against the snapshot without another
// backend round trip.
type CatalogService struct {
	store   port.CatalogStore
	cache   port.Cache[domain.Gallery]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewCatalogService creates the catalog service.
func NewCatalogService(store port.CatalogStore, cache port.Cache[domain.Gallery], metrics *observability.Metrics, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		store:   store,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// Gallery returns available cakes (newest first) and the category filter
// set, optionally narrowed to one category. The category list always covers
// the full snapshot so the filter bar stays stable while filtering.
func (s *CatalogService) Gallery(ctx context.Context, category string) (*domain.Gallery, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.Gallery")
	defer span.End()
	span.SetAttributes(attribute.String("gallery.category", category))

	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	if category == "" || category == domain.AllCategories {
		return snapshot, nil
	}

	filtered := make([]domain.Cake, 0, len(snapshot.Cakes))
	for _, cake := range snapshot.Cakes {
		if cake.Category == category {
			filtered = append(filtered, cake)
		}
	}

	return &domain.Gallery{Cakes: filtered, Categories: snapshot.Categories}, nil
}

// Featured returns the newest available cakes for the home page.
func (s *CatalogService) Featured(ctx context.Context) ([]domain.Cake, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.Featured")
	defer span.End()

	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	if len(snapshot.Cakes) <= featuredCount {
		return snapshot.Cakes, nil
	}
	return snapshot.Cakes[:featuredCount], nil
}

// GetCake fetches one cake by id, bypassing the gallery cache so order
// prefill always sees current data.
func (s *CatalogService) GetCake(ctx context.Context, cakeID string) (*domain.Cake, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.GetCake")
	defer span.End()
	span.SetAttributes(attribute.String("cake.id", cakeID))

	return s.store.GetCake(ctx, cakeID)
}

// Invalidate drops the gallery snapshot. Called after any admin catalog
// mutation.
func (s *CatalogService) Invalidate() {
	s.cache.Delete(galleryCacheKey)
}

func (s *CatalogService) snapshot(ctx context.Context) (*domain.Gallery, error) {
	if g, ok := s.cache.Get(galleryCacheKey); ok {
		s.metrics.IncrCacheHit(galleryCacheKey)
		return &g, nil
	}
	s.metrics.IncrCacheMiss(galleryCacheKey)

	cakes, err := s.store.ListAvailableCakes(ctx)
	if err != nil {
		s.metrics.IncrExternalError("supabase/cakes")
		return nil, err
	}

	gallery := domain.Gallery{
		Cakes:      cakes,
		Categories: deriveCategories(cakes),
	}
	s.cache.Set(galleryCacheKey, gallery)

	return &gallery, nil
}

// deriveCategories builds the filter set: the synthetic "All" entry followed
// by distinct categories in first-seen order.
func deriveCategories(cakes []domain.Cake) []string {
	categories := []string{domain.AllCategories}
	seen := map[string]bool{}
	for _, cake := range cakes {
		if cake.Category == "" || seen[cake.Category] {
			continue
		}
		seen[cake.Category] = true
		categories = append(categories, cake.Category)
	}
	return categories
}
