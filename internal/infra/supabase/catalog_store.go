package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kamau/sugarbloom-api/internal/domain"
	"github.com/kamau/sugarbloom-api/internal/infra/resilience"
)

// supabaseCake maps `cakes` table columns to our domain.
type supabaseCake struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	Category    string  `json:"category"`
	Available   bool    `json:"available"`
	CreatedAt   string  `json:"created_at"`
}

func (r supabaseCake) toDomain() domain.Cake {
	created, _ := time.Parse(time.RFC3339, r.CreatedAt)
	return domain.Cake{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
		Category:    r.Category,
		Available:   r.Available,
		CreatedAt:   created,
	}
}

// ListAvailableCakes fetches cakes visible on the storefront, newest first.
func (c *Client) ListAvailableCakes(ctx context.Context) ([]domain.Cake, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListAvailableCakes")
	defer span.End()

	return c.listCakes(ctx, "cakes?available=eq.true&order=created_at.desc")
}

// ListAllCakes fetches every cake, including unavailable ones, for the
// admin surface.
func (c *Client) ListAllCakes(ctx context.Context) ([]domain.Cake, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListAllCakes")
	defer span.End()

	return c.listCakes(ctx, "cakes?order=created_at.desc")
}

func (c *Client) listCakes(ctx context.Context, path string) ([]domain.Cake, error) {
	var cakes []domain.Cake

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				cakes = []domain.Cake{}
				return nil
			}

			var rows []supabaseCake
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("failed to decode cakes: %w", err)
			}

			cakes = make([]domain.Cake, 0, len(rows))
			for _, r := range rows {
				cakes = append(cakes, r.toDomain())
			}
			return nil
		})
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/cakes", Err: err}
	}

	return cakes, nil
}

// GetCake fetches one cake by id.
func (c *Client) GetCake(ctx context.Context, cakeID string) (*domain.Cake, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetCake")
	defer span.End()
	span.SetAttributes(attribute.String("cake.id", cakeID))

	var cake *domain.Cake

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf("cakes?id=eq.%s&limit=1", cakeID)
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				return &domain.ErrNotFound{Resource: "cake", ID: cakeID}
			}

			var rows []supabaseCake
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("failed to decode cake: %w", err)
			}
			if len(rows) == 0 {
				return &domain.ErrNotFound{Resource: "cake", ID: cakeID}
			}

			d := rows[0].toDomain()
			cake = &d
			return nil
		})
	})

	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, notFound
		}
		return nil, &domain.ErrExternalService{Service: "supabase/cakes", Err: err}
	}

	return cake, nil
}

// CreateCake inserts a new cake row.
func (c *Client) CreateCake(ctx context.Context, req *domain.CakeRequest) (*domain.Cake, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateCake")
	defer span.End()

	payload := map[string]any{
		"id":          uuid.New().String(),
		"name":        req.Name,
		"description": req.Description,
		"price":       req.Price,
		"image_url":   req.ImageURL,
		"category":    req.Category,
		"available":   req.Available,
		"created_at":  time.Now().UTC().Format(time.RFC3339),
	}

	body, err := c.doPost(ctx, "cakes", payload)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/cakes", Err: err}
	}

	return decodeCakeRow(body)
}

// UpdateCake patches an existing cake row and returns the updated row.
func (c *Client) UpdateCake(ctx context.Context, cakeID string, req *domain.CakeRequest) (*domain.Cake, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateCake")
	defer span.End()
	span.SetAttributes(attribute.String("cake.id", cakeID))

	payload := map[string]any{
		"name":        req.Name,
		"description": req.Description,
		"price":       req.Price,
		"category":    req.Category,
		"available":   req.Available,
	}
	if req.ImageURL != "" {
		payload["image_url"] = req.ImageURL
	}

	body, err := c.doPatch(ctx, fmt.Sprintf("cakes?id=eq.%s", cakeID), payload)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/cakes", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "cake", ID: cakeID}
	}

	return decodeCakeRow(body)
}

// DeleteCake removes a cake row.
func (c *Client) DeleteCake(ctx context.Context, cakeID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteCake")
	defer span.End()
	span.SetAttributes(attribute.String("cake.id", cakeID))

	if err := c.doDelete(ctx, fmt.Sprintf("cakes?id=eq.%s", cakeID)); err != nil {
		return &domain.ErrExternalService{Service: "supabase/cakes", Err: err}
	}
	return nil
}

// decodeCakeRow unwraps a single-row representation response.
func decodeCakeRow(body []byte) (*domain.Cake, error) {
	var rows []supabaseCake
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode cake: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "cake", ID: ""}
	}
	d := rows[0].toDomain()
	return &d, nil
}
