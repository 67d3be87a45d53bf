package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kamau/sugarbloom-api/internal/domain"
	"github.com/kamau/sugarbloom-api/internal/infra/observability"
	"github.com/kamau/sugarbloom-api/internal/port"
)

var adminTracer = otel.Tracer("admin")

// AdminService implements the management console: order oversight and
// catalog maintenance. Authorization is enforced at the router; this layer
// assumes an admin caller.
type AdminService struct {
	orders   port.OrderStore
	cakes    port.CatalogStore
	storage  port.ObjectStorage
	catalog  *CatalogService
	notifier port.Notifier
	metrics  *observability.Metrics
	validate *validator.Validate
	logger   *zap.Logger
}

// NewAdminService creates the admin service. The catalog service is shared
// so catalog mutations can invalidate the public gallery snapshot.
func NewAdminService(orders port.OrderStore, cakes port.CatalogStore, storage port.ObjectStorage, catalog *CatalogService, notifier port.Notifier, metrics *observability.Metrics, logger *zap.Logger) *AdminService {
	return &AdminService{
		orders:   orders,
		cakes:    cakes,
		storage:  storage,
		catalog:  catalog,
		notifier: notifier,
		metrics:  metrics,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

func (s *AdminService) validateCake(req *domain.CakeRequest) error {
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if ok := errors.As(err, &verrs); ok && len(verrs) > 0 {
			return &domain.ErrValidation{
				Field:   verrs[0].Field(),
				Message: "name and a positive price are required",
			}
		}
		return &domain.ErrValidation{Field: "request", Message: err.Error()}
	}
	return nil
}

// Dashboard loads both admin tabs concurrently: all orders (with joined
// cake name/price) and the full catalog including unavailable cakes.
func (s *AdminService) Dashboard(ctx context.Context) (*domain.AdminDashboard, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.Dashboard")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("admin_dashboard", time.Since(start))
	}()

	var dashboard domain.AdminDashboard

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		orders, err := s.orders.ListOrders(gctx)
		if err != nil {
			return err
		}
		dashboard.Orders = orders
		return nil
	})
	g.Go(func() error {
		cakes, err := s.cakes.ListAllCakes(gctx)
		if err != nil {
			return err
		}
		dashboard.Cakes = cakes
		return nil
	})

	if err := g.Wait(); err != nil {
		s.metrics.IncrExternalError("supabase/admin")
		return nil, err
	}

	return &dashboard, nil
}

// ListOrders returns every order, newest first.
func (s *AdminService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.ListOrders")
	defer span.End()

	return s.orders.ListOrders(ctx)
}

// ListCakes returns the full catalog, unavailable cakes included.
func (s *AdminService) ListCakes(ctx context.Context) ([]domain.Cake, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.ListCakes")
	defer span.End()

	return s.cakes.ListAllCakes(ctx)
}

// UpdateOrderStatus moves an order through its lifecycle. Unknown statuses
// are rejected before any backend call.
func (s *AdminService) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	ctx, span := adminTracer.Start(ctx, "AdminService.UpdateOrderStatus")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.id", orderID),
		attribute.String("order.status", status),
	)

	if !domain.ValidOrderStatus(status) {
		return &domain.ErrValidation{Field: "status", Message: fmt.Sprintf("unknown order status %q", status)}
	}

	if err := s.orders.UpdateOrderStatus(ctx, orderID, status); err != nil {
		s.notifier.Error("Error", "Failed to update order status")
		return err
	}

	s.notifier.Success("Success", "Order status updated")
	s.logger.Info("order status updated",
		zap.String("order_id", orderID),
		zap.String("status", status),
	)
	return nil
}

// CreateCake adds a catalog item and refreshes the gallery.
func (s *AdminService) CreateCake(ctx context.Context, req *domain.CakeRequest) (*domain.Cake, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.CreateCake")
	defer span.End()

	if err := s.validateCake(req); err != nil {
		return nil, err
	}

	cake, err := s.cakes.CreateCake(ctx, req)
	if err != nil {
		s.notifier.Error("Error", "Failed to save cake")
		return nil, err
	}

	s.catalog.Invalidate()
	s.notifier.Success("Success", "Cake added successfully")
	s.logger.Info("cake created", zap.String("cake_id", cake.ID), zap.String("name", cake.Name))
	return cake, nil
}

// UpdateCake edits a catalog item and refreshes the gallery.
func (s *AdminService) UpdateCake(ctx context.Context, cakeID string, req *domain.CakeRequest) (*domain.Cake, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.UpdateCake")
	defer span.End()
	span.SetAttributes(attribute.String("cake.id", cakeID))

	if err := s.validateCake(req); err != nil {
		return nil, err
	}

	cake, err := s.cakes.UpdateCake(ctx, cakeID, req)
	if err != nil {
		s.notifier.Error("Error", "Failed to save cake")
		return nil, err
	}

	s.catalog.Invalidate()
	s.notifier.Success("Success", "Cake updated successfully")
	return cake, nil
}

// DeleteCake removes a catalog item and refreshes the gallery.
func (s *AdminService) DeleteCake(ctx context.Context, cakeID string) error {
	ctx, span := adminTracer.Start(ctx, "AdminService.DeleteCake")
	defer span.End()
	span.SetAttributes(attribute.String("cake.id", cakeID))

	if err := s.cakes.DeleteCake(ctx, cakeID); err != nil {
		s.notifier.Error("Error", "Failed to delete cake")
		return err
	}

	s.catalog.Invalidate()
	s.notifier.Success("Success", "Cake deleted successfully")
	return nil
}

// UploadCakeImage stores a catalog photo and returns its public URL for use
// in a subsequent cake create/update.
func (s *AdminService) UploadCakeImage(ctx context.Context, file *domain.UploadedFile) (string, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.UploadCakeImage")
	defer span.End()

	ext := path.Ext(file.Name)
	objectPath := uuid.New().String() + ext

	if err := s.storage.Upload(ctx, imageBucket, objectPath, file); err != nil {
		s.metrics.IncrUpload(imageBucket, "failed")
		s.notifier.Error("Error", "Failed to upload image")
		return "", err
	}

	s.metrics.IncrUpload(imageBucket, "ok")
	s.notifier.Success("Success", "Image uploaded successfully")
	return s.storage.PublicURL(imageBucket, objectPath), nil
}
