package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kamau/sugarbloom-api/internal/domain"
	"github.com/kamau/sugarbloom-api/internal/infra/resilience"
)

// supabaseOrder maps `orders` table columns. The embedded cakes object is
// populated only when the select clause joins the cakes table.
type supabaseOrder struct {
	ID                  string  `json:"id"`
	UserID              *string `json:"user_id"`
	CakeID              *string `json:"cake_id"`
	CustomerName        string  `json:"customer_name"`
	CustomerEmail       string  `json:"customer_email"`
	CustomerPhone       *string `json:"customer_phone"`
	DeliveryDate        string  `json:"delivery_date"`
	DeliveryAddress     *string `json:"delivery_address"`
	SpecialInstructions string  `json:"special_instructions"`
	Status              string  `json:"status"`
	TotalAmount         float64 `json:"total_amount"`
	ReferenceImageURL   *string `json:"customer_reference_image"`
	CreatedAt           string  `json:"created_at"`
	Cake                *struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	} `json:"cakes"`
}

func (r supabaseOrder) toDomain() domain.Order {
	created, _ := time.Parse(time.RFC3339, r.CreatedAt)
	o := domain.Order{
		ID:                  r.ID,
		CustomerName:        r.CustomerName,
		CustomerEmail:       r.CustomerEmail,
		DeliveryDate:        r.DeliveryDate,
		SpecialInstructions: r.SpecialInstructions,
		Status:              r.Status,
		TotalAmount:         r.TotalAmount,
		CreatedAt:           created,
	}
	if r.UserID != nil {
		o.UserID = *r.UserID
	}
	if r.CakeID != nil {
		o.CakeID = *r.CakeID
	}
	if r.CustomerPhone != nil {
		o.CustomerPhone = *r.CustomerPhone
	}
	if r.DeliveryAddress != nil {
		o.DeliveryAddress = *r.DeliveryAddress
	}
	if r.ReferenceImageURL != nil {
		o.ReferenceImageURL = *r.ReferenceImageURL
	}
	if r.Cake != nil {
		o.CakeSummary = &domain.CakeSummary{Name: r.Cake.Name, Price: r.Cake.Price}
	}
	return o
}

// CreateOrder inserts a new order row. Nullable columns are sent as nil so
// PostgREST stores SQL NULL rather than empty strings.
func (c *Client) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateOrder")
	defer span.End()

	payload := map[string]any{
		"id":                   uuid.New().String(),
		"customer_name":        order.CustomerName,
		"customer_email":       order.CustomerEmail,
		"delivery_date":        order.DeliveryDate,
		"special_instructions": order.SpecialInstructions,
		"status":               order.Status,
		"total_amount":         order.TotalAmount,
		"created_at":           time.Now().UTC().Format(time.RFC3339),
	}
	payload["user_id"] = nullable(order.UserID)
	payload["cake_id"] = nullable(order.CakeID)
	payload["customer_phone"] = nullable(order.CustomerPhone)
	payload["delivery_address"] = nullable(order.DeliveryAddress)
	payload["customer_reference_image"] = nullable(order.ReferenceImageURL)

	body, err := c.doPost(ctx, "orders", payload)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/orders", Err: err}
	}

	var rows []supabaseOrder
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode order: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrExternalService{Service: "supabase/orders", Err: fmt.Errorf("insert returned no rows")}
	}

	created := rows[0].toDomain()
	return &created, nil
}

// ListOrders fetches all orders with the joined cake name/price, newest
// first. Used by the admin surface only.
func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListOrders")
	defer span.End()

	var orders []domain.Order

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := "orders?select=*,cakes(name,price)&order=created_at.desc"
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				orders = []domain.Order{}
				return nil
			}

			var rows []supabaseOrder
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("failed to decode orders: %w", err)
			}

			orders = make([]domain.Order, 0, len(rows))
			for _, r := range rows {
				orders = append(orders, r.toDomain())
			}
			return nil
		})
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/orders", Err: err}
	}

	return orders, nil
}

// UpdateOrderStatus patches the status of one order.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateOrderStatus")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.id", orderID),
		attribute.String("order.status", status),
	)

	// The orders table only ever has its status mutated after insert.
	payload := map[string]any{"status": status}

	body, err := c.doPatch(ctx, fmt.Sprintf("orders?id=eq.%s", orderID), payload)
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/orders", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return &domain.ErrNotFound{Resource: "order", ID: orderID}
	}
	return nil
}

// nullable maps an empty string to nil for PostgREST payloads.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
