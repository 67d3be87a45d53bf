package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kamau/sugarbloom-api/internal/domain"
	"github.com/kamau/sugarbloom-api/internal/infra/cache"
	"github.com/kamau/sugarbloom-api/internal/infra/observability"
)

func newTestAdminService(orders *mockOrderStore, cakes *mockCatalogStore, storage *mockStorage, notifier *mockNotifier) (*AdminService, *CatalogService) {
	metrics := observability.NewMetrics()
	catalog := NewCatalogService(cakes, cache.New[domain.Gallery](time.Minute), metrics, zap.NewNop())
	admin := NewAdminService(orders, cakes, storage, catalog, notifier, metrics, zap.NewNop())
	return admin, catalog
}

func TestAdminService_DashboardLoadsBothSides(t *testing.T) {
	orders := &mockOrderStore{created: []*domain.Order{
		{ID: "o1", CustomerName: "Wanjiru Kamau", Status: domain.OrderStatusPending},
		{ID: "o2", CustomerName: "Otieno Odhiambo", Status: domain.OrderStatusCompleted},
	}}
	cakes := &mockCatalogStore{listResults: []domain.Cake{
		{ID: "c1", Name: "Midnight Ganache", Available: true},
		{ID: "c2", Name: "Retired Sponge", Available: false},
	}}
	admin, _ := newTestAdminService(orders, cakes, &mockStorage{}, &mockNotifier{})

	dashboard, err := admin.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dashboard.Orders) != 2 {
		t.Errorf("expected 2 orders, got %d", len(dashboard.Orders))
	}
	// The management view includes unavailable cakes.
	if len(dashboard.Cakes) != 2 {
		t.Errorf("expected 2 cakes including unavailable, got %d", len(dashboard.Cakes))
	}
}

func TestAdminService_ListCakesLeavesOrdersAlone(t *testing.T) {
	orders := &mockOrderStore{}
	cakes := &mockCatalogStore{listResults: []domain.Cake{
		{ID: "c1", Name: "Midnight Ganache", Available: true},
		{ID: "c2", Name: "Retired Sponge", Available: false},
	}}
	admin, _ := newTestAdminService(orders, cakes, &mockStorage{}, &mockNotifier{})

	got, err := admin.ListCakes(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 cakes including unavailable, got %d", len(got))
	}
	if orders.listCalls != 0 {
		t.Errorf("listing cakes queried orders %d times", orders.listCalls)
	}
}

func TestAdminService_UpdateOrderStatus(t *testing.T) {
	orders := &mockOrderStore{created: []*domain.Order{
		{ID: "o1", Status: domain.OrderStatusPending},
	}}
	notifier := &mockNotifier{}
	admin, _ := newTestAdminService(orders, &mockCatalogStore{}, &mockStorage{}, notifier)

	if err := admin.UpdateOrderStatus(context.Background(), "o1", domain.OrderStatusConfirmed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if orders.created[0].Status != domain.OrderStatusConfirmed {
		t.Errorf("status not persisted, got %q", orders.created[0].Status)
	}

	n, _ := notifier.last()
	if n.Title != "Success" || n.Message != "Order status updated" {
		t.Errorf("unexpected notification %+v", n)
	}
}

func TestAdminService_UpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	orders := &mockOrderStore{created: []*domain.Order{{ID: "o1", Status: domain.OrderStatusPending}}}
	admin, _ := newTestAdminService(orders, &mockCatalogStore{}, &mockStorage{}, &mockNotifier{})

	err := admin.UpdateOrderStatus(context.Background(), "o1", "shipped")
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if orders.created[0].Status != domain.OrderStatusPending {
		t.Error("rejected status must not reach the store")
	}
}

func TestAdminService_UpdateOrderStatusUnknownOrder(t *testing.T) {
	notifier := &mockNotifier{}
	admin, _ := newTestAdminService(&mockOrderStore{}, &mockCatalogStore{}, &mockStorage{}, notifier)

	err := admin.UpdateOrderStatus(context.Background(), "missing", domain.OrderStatusConfirmed)
	var nf *domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected not-found error, got %v", err)
	}

	n, _ := notifier.last()
	if n.Title != "Error" {
		t.Errorf("expected failure notification, got %+v", n)
	}
}

func TestAdminService_CakeMutationsInvalidateGallery(t *testing.T) {
	cakes := &mockCatalogStore{listResults: galleryCakes()}
	admin, catalog := newTestAdminService(&mockOrderStore{}, cakes, &mockStorage{}, &mockNotifier{})

	// Warm the public snapshot.
	if _, err := catalog.Gallery(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cakes.listCalls != 1 {
		t.Fatalf("expected warm cache, got %d list calls", cakes.listCalls)
	}

	if _, err := admin.CreateCake(context.Background(), &domain.CakeRequest{Name: "New Cake", Price: 3000, Available: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The next public read must refetch.
	if _, err := catalog.Gallery(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cakes.listCalls != 2 {
		t.Errorf("create must invalidate the gallery snapshot, got %d list calls", cakes.listCalls)
	}

	if _, err := admin.UpdateCake(context.Background(), "c1", &domain.CakeRequest{Name: "Renamed", Price: 3500}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := admin.DeleteCake(context.Background(), "c1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := catalog.Gallery(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cakes.listCalls != 3 {
		t.Errorf("update/delete must invalidate the snapshot, got %d list calls", cakes.listCalls)
	}
}

func TestAdminService_CakeMutationsRejectInvalidPayloads(t *testing.T) {
	bad := []domain.CakeRequest{
		{Price: 1200},       // no name
		{Name: "Free Cake"}, // no price
		{Name: "Discount Gone Wrong", Price: -5},
	}

	for _, req := range bad {
		req := req
		cakes := &mockCatalogStore{}
		admin, _ := newTestAdminService(&mockOrderStore{}, cakes, &mockStorage{}, &mockNotifier{})

		_, err := admin.CreateCake(context.Background(), &req)
		var verr *domain.ErrValidation
		if !errors.As(err, &verr) {
			t.Errorf("CreateCake(%+v) err = %v, want ErrValidation", req, err)
		}
		if _, err := admin.UpdateCake(context.Background(), "c1", &req); !errors.As(err, &verr) {
			t.Errorf("UpdateCake(%+v) did not return ErrValidation", req)
		}
		if cakes.mutations != 0 {
			t.Errorf("store mutated %d times for invalid payload %+v", cakes.mutations, req)
		}
	}
}

func TestAdminService_CreateCakeFailure(t *testing.T) {
	cakes := &mockCatalogStore{mutateFail: true}
	notifier := &mockNotifier{}
	admin, _ := newTestAdminService(&mockOrderStore{}, cakes, &mockStorage{}, notifier)

	if _, err := admin.CreateCake(context.Background(), &domain.CakeRequest{Name: "Doomed", Price: 100}); err == nil {
		t.Fatal("expected error from failing store")
	}

	n, _ := notifier.last()
	if n.Title != "Error" || n.Message != "Failed to save cake" {
		t.Errorf("unexpected notification %+v", n)
	}
}

func TestAdminService_UploadCakeImage(t *testing.T) {
	storage := &mockStorage{}
	admin, _ := newTestAdminService(&mockOrderStore{}, &mockCatalogStore{}, storage, &mockNotifier{})

	url, err := admin.UploadCakeImage(context.Background(), &domain.UploadedFile{Name: "photo.webp", Data: []byte("img")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if storage.uploads != 1 {
		t.Fatalf("expected one upload, got %d", storage.uploads)
	}
	if !strings.Contains(url, "cake-images/") || !strings.HasSuffix(url, ".webp") {
		t.Errorf("unexpected image url %q", url)
	}
}

func TestAdminService_UploadCakeImageFailure(t *testing.T) {
	storage := &mockStorage{fail: true}
	notifier := &mockNotifier{}
	admin, _ := newTestAdminService(&mockOrderStore{}, &mockCatalogStore{}, storage, notifier)

	if _, err := admin.UploadCakeImage(context.Background(), &domain.UploadedFile{Name: "photo.png"}); err == nil {
		t.Fatal("expected error from failing storage")
	}
	n, _ := notifier.last()
	if n.Message != "Failed to upload image" {
		t.Errorf("unexpected notification %+v", n)
	}
}
