package service

import (
	"context"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kamau/sugarbloom-api/internal/domain"
	"github.com/kamau/sugarbloom-api/internal/infra/cache"
	"github.com/kamau/sugarbloom-api/internal/infra/observability"
)

func galleryCakes() []domain.Cake {
	return []domain.Cake{
		{ID: "c1", Name: "Midnight Ganache", Category: "Birthday", Available: true},
		{ID: "c2", Name: "Ivory Tiers", Category: "Wedding", Available: true},
		{ID: "c3", Name: "Lemon Drizzle", Category: "Birthday", Available: true},
		{ID: "c4", Name: "Unsorted Classic", Available: true},
		{ID: "c5", Name: "Graduation Scroll", Category: "Graduation", Available: true},
	}
}

func newTestCatalogService(store *mockCatalogStore) *CatalogService {
	return NewCatalogService(store, cache.New[domain.Gallery](time.Minute), observability.NewMetrics(), zap.NewNop())
}

func TestCatalogService_GalleryDerivesCategories(t *testing.T) {
	store := &mockCatalogStore{listResults: galleryCakes()}
	svc := newTestCatalogService(store)

	gallery, err := svc.Gallery(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(gallery.Cakes) != 5 {
		t.Errorf("expected the full snapshot, got %d cakes", len(gallery.Cakes))
	}

	want := []string{domain.AllCategories, "Birthday", "Wedding", "Graduation"}
	if !reflect.DeepEqual(gallery.Categories, want) {
		t.Errorf("categories mismatch: got %v want %v", gallery.Categories, want)
	}
}

func TestCatalogService_GalleryFiltersInMemory(t *testing.T) {
	store := &mockCatalogStore{listResults: galleryCakes()}
	svc := newTestCatalogService(store)

	gallery, err := svc.Gallery(context.Background(), "Birthday")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(gallery.Cakes) != 2 {
		t.Fatalf("expected 2 birthday cakes, got %d", len(gallery.Cakes))
	}
	for _, cake := range gallery.Cakes {
		if cake.Category != "Birthday" {
			t.Errorf("filter leaked cake %q (%q)", cake.Name, cake.Category)
		}
	}

	// The filter bar stays stable while filtering.
	if len(gallery.Categories) != 4 {
		t.Errorf("filtered view must keep the full category set, got %v", gallery.Categories)
	}

	// Filtering must not hit the backend a second time.
	if store.listCalls != 1 {
		t.Errorf("expected a single backend call, got %d", store.listCalls)
	}
}

func TestCatalogService_GallerySelectingAllReturnsEverything(t *testing.T) {
	store := &mockCatalogStore{listResults: galleryCakes()}
	svc := newTestCatalogService(store)

	gallery, err := svc.Gallery(context.Background(), domain.AllCategories)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gallery.Cakes) != 5 {
		t.Errorf("All must return the full snapshot, got %d", len(gallery.Cakes))
	}
}

func TestCatalogService_SnapshotIsCached(t *testing.T) {
	store := &mockCatalogStore{listResults: galleryCakes()}
	svc := newTestCatalogService(store)

	for i := 0; i < 3; i++ {
		if _, err := svc.Gallery(context.Background(), ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if store.listCalls != 1 {
		t.Errorf("expected one backend call across repeated reads, got %d", store.listCalls)
	}

	svc.Invalidate()
	if _, err := svc.Gallery(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.listCalls != 2 {
		t.Errorf("invalidation must force a refetch, got %d calls", store.listCalls)
	}
}

func TestCatalogService_FeaturedTakesNewestThree(t *testing.T) {
	store := &mockCatalogStore{listResults: galleryCakes()}
	svc := newTestCatalogService(store)

	featured, err := svc.Featured(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(featured) != 3 {
		t.Fatalf("expected 3 featured cakes, got %d", len(featured))
	}
	if featured[0].ID != "c1" || featured[2].ID != "c3" {
		t.Errorf("featured must preserve listing order, got %v", featured)
	}
}

func TestCatalogService_FeaturedWithSmallCatalog(t *testing.T) {
	store := &mockCatalogStore{listResults: galleryCakes()[:2]}
	svc := newTestCatalogService(store)

	featured, err := svc.Featured(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(featured) != 2 {
		t.Errorf("expected every cake when fewer than three exist, got %d", len(featured))
	}
}

func TestCatalogService_GalleryPropagatesBackendFailure(t *testing.T) {
	store := &mockCatalogStore{listFail: true}
	svc := newTestCatalogService(store)

	if _, err := svc.Gallery(context.Background(), ""); err == nil {
		t.Fatal("expected error from failing backend")
	}
}

func TestCatalogService_GetCakeBypassesCache(t *testing.T) {
	store := &mockCatalogStore{
		listResults: galleryCakes(),
		cakes:       map[string]*domain.Cake{"c2": {ID: "c2", Name: "Ivory Tiers"}},
	}
	svc := newTestCatalogService(store)

	// Warm the snapshot, then fetch directly.
	if _, err := svc.Gallery(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cake, err := svc.GetCake(context.Background(), "c2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cake.Name != "Ivory Tiers" {
		t.Errorf("unexpected cake %+v", cake)
	}
}
