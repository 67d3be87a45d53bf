package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/kamau/sugarbloom-api/internal/domain"
	"github.com/kamau/sugarbloom-api/internal/infra/observability"
	"github.com/kamau/sugarbloom-api/internal/port"
)

var orderTracer = otel.Tracer("orders")

const (
	imageBucket       = "cake-images"
	referenceImageDir = "customer-references"
)

// Form vocabularies. Served to the storefront and enforced on submission.
var (
	orderCategories = []string{
		"Wedding Cake",
		"Birthday Cake",
		"Baby Shower Cake",
		"Graduation Cake",
		"Corporate Cake",
		"Anniversary Cake",
		"Custom Design",
	}
	orderWeights = []string{
		"0.5kg", "1kg", "1.5kg", "2kg", "2.5kg", "3kg", "3.5kg", "4kg", "4.5kg", "5kg",
	}
	orderFlavors = []string{
		"Vanilla",
		"Chocolate",
		"Red Velvet",
		"Strawberry",
		"Lemon",
		"Carrot",
		"Black Forest",
		"Tiramisu",
		"Coconut",
		"Funfetti",
	}
	orderIcingTypes = []string{
		"Buttercream",
		"Fondant",
		"Cream Cheese",
		"Royal Icing",
		"Ganache",
		"Whipped Cream",
	}
)

// OrderService handles custom cake order submission.
type OrderService struct {
	orders     port.OrderStore
	catalog    port.CatalogStore
	storage    port.ObjectStorage
	notifier   port.Notifier
	validate   *validator.Validate
	metrics    *observability.Metrics
	logger     *zap.Logger
	pricePerKg float64
}

// NewOrderService creates the order service.
func NewOrderService(orders port.OrderStore, catalog port.CatalogStore, storage port.ObjectStorage, notifier port.Notifier, metrics *observability.Metrics, pricePerKg float64, logger *zap.Logger) *OrderService {
	return &OrderService{
		orders:     orders,
		catalog:    catalog,
		storage:    storage,
		notifier:   notifier,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		metrics:    metrics,
		logger:     logger,
		pricePerKg: pricePerKg,
	}
}

// Options returns the form vocabularies.
func (s *OrderService) Options() domain.OrderOptions {
	return domain.OrderOptions{
		Categories: orderCategories,
		Weights:    orderWeights,
		Flavors:    orderFlavors,
		IcingTypes: orderIcingTypes,
	}
}

// Submit validates and persists a custom cake order. Validation failures
// reject the request before any backend call. A failed reference image
// upload is reported but does not block the order; it is stored without an
// image instead.
func (s *OrderService) Submit(ctx context.Context, userID string, req *domain.OrderRequest) (*domain.OrderReceipt, error) {
	ctx, span := orderTracer.Start(ctx, "OrderService.Submit")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("submit_order", time.Since(start))
	}()

	if err := s.validateRequest(req); err != nil {
		s.metrics.IncrOrder("rejected")
		return nil, err
	}

	// Resolve the reference cake when the order came from the gallery.
	var selectedCake *domain.Cake
	if req.CakeID != "" {
		cake, err := s.catalog.GetCake(ctx, req.CakeID)
		if err != nil {
			// A dangling cake_id degrades to a custom design order.
			s.logger.Warn("order references unknown cake",
				zap.String("cake_id", req.CakeID),
				zap.Error(err),
			)
		} else {
			selectedCake = cake
		}
	}

	imageURL := s.uploadReferenceImage(ctx, req.ReferenceImage)

	amount := s.estimatePrice(req.Weight)

	order := &domain.Order{
		UserID:              userID,
		CustomerName:        req.CustomerName,
		CustomerEmail:       req.CustomerEmail,
		CustomerPhone:       req.CustomerPhone,
		DeliveryDate:        req.EventDate,
		SpecialInstructions: buildInstructions(selectedCake, req),
		Status:              domain.OrderStatusPending,
		TotalAmount:         amount,
		ReferenceImageURL:   imageURL,
	}
	if selectedCake != nil {
		order.CakeID = selectedCake.ID
	}
	if req.DeliveryOption == "delivery" {
		order.DeliveryAddress = req.DeliveryAddress
	}

	created, err := s.orders.CreateOrder(ctx, order)
	if err != nil {
		s.metrics.IncrOrder("failed")
		s.metrics.IncrExternalError("supabase/orders")
		s.notifier.Error("Order Failed", "There was an error submitting your order. Please try again.")
		return nil, err
	}

	s.metrics.IncrOrder("submitted")
	message := fmt.Sprintf("Your cake order (est. KSH %.0f) has been submitted. We'll contact you within 24 hours to confirm.", amount)
	s.notifier.Success("Order Submitted!", message)

	s.logger.Info("order submitted",
		zap.String("order_id", created.ID),
		zap.Float64("total_amount", amount),
	)

	return &domain.OrderReceipt{
		Order:           *created,
		EstimatedAmount: amount,
		Message:         message,
	}, nil
}

func (s *OrderService) validateRequest(req *domain.OrderRequest) error {
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if ok := errors.As(err, &verrs); ok && len(verrs) > 0 {
			fe := verrs[0]
			return &domain.ErrValidation{
				Field:   fe.Field(),
				Message: "Please fill in all required fields.",
			}
		}
		return &domain.ErrValidation{Field: "request", Message: err.Error()}
	}

	if req.DeliveryOption == "delivery" && strings.TrimSpace(req.DeliveryAddress) == "" {
		return &domain.ErrValidation{
			Field:   "delivery_address",
			Message: "Please provide a delivery address for home delivery.",
		}
	}

	if !contains(orderWeights, req.Weight) {
		return &domain.ErrValidation{Field: "weight", Message: "unknown weight option"}
	}

	return nil
}

// uploadReferenceImage stores the customer's picture and returns its public
// URL. Any failure logs, notifies, and returns empty: the order still goes
// through.
func (s *OrderService) uploadReferenceImage(ctx context.Context, file *domain.UploadedFile) string {
	if file == nil {
		return ""
	}

	ext := path.Ext(file.Name)
	objectPath := fmt.Sprintf("%s/customer-%d%s", referenceImageDir, time.Now().UnixMilli(), ext)

	if err := s.storage.Upload(ctx, imageBucket, objectPath, file); err != nil {
		s.metrics.IncrUpload(imageBucket, "failed")
		s.logger.Warn("reference image upload failed", zap.Error(err))
		s.notifier.Error("Image Upload Failed", "Failed to upload reference image, but order will still be submitted.")
		return ""
	}

	s.metrics.IncrUpload(imageBucket, "ok")
	return s.storage.PublicURL(imageBucket, objectPath)
}

// estimatePrice converts a weight option like "2kg" into an estimate at the
// configured rate per kilogram.
func (s *OrderService) estimatePrice(weight string) float64 {
	kg, err := strconv.ParseFloat(strings.TrimSuffix(weight, "kg"), 64)
	if err != nil {
		return 0
	}
	return kg * s.pricePerKg
}

// buildInstructions assembles the free-text summary the bakers read.
func buildInstructions(selectedCake *domain.Cake, req *domain.OrderRequest) string {
	cakeName := "Custom Design"
	if selectedCake != nil {
		cakeName = selectedCake.Name
	}

	return fmt.Sprintf(
		"Selected Cake: %s, Category: %s, Weight: %s, Flavor: %s, Icing: %s, Theme: %s, Delivery: %s, Special Requests: %s",
		cakeName,
		req.Category,
		req.Weight,
		req.Flavor,
		orDefault(req.Icing, "Not specified"),
		orDefault(req.Theme, "Not specified"),
		req.DeliveryOption,
		orDefault(req.SpecialRequests, "None"),
	)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
