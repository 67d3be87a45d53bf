package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kamau/sugarbloom-api/internal/domain"
	"github.com/kamau/sugarbloom-api/internal/infra/resilience"
)

// supabaseProfile maps `profiles` table columns. Rows are created by a
// database trigger when a user signs up; this adapter only reads them.
type supabaseProfile struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	Email     string  `json:"email"`
	FullName  *string `json:"full_name"`
	Role      string  `json:"role"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// GetProfile fetches the profile row for a user id. A missing row yields
// ErrNotFound; callers decide whether that is fatal.
func (c *Client) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetProfile")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var profile *domain.Profile

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf("profiles?user_id=eq.%s&limit=1", userID)
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				return &domain.ErrNotFound{Resource: "profile", ID: userID}
			}

			var rows []supabaseProfile
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("failed to decode profile: %w", err)
			}
			if len(rows) == 0 {
				return &domain.ErrNotFound{Resource: "profile", ID: userID}
			}

			p := rows[0]
			created, _ := time.Parse(time.RFC3339, p.CreatedAt)
			updated, _ := time.Parse(time.RFC3339, p.UpdatedAt)
			profile = &domain.Profile{
				ID:        p.ID,
				UserID:    p.UserID,
				Email:     p.Email,
				Role:      p.Role,
				CreatedAt: created,
				UpdatedAt: updated,
			}
			if p.FullName != nil {
				profile.FullName = *p.FullName
			}
			return nil
		})
	})

	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, notFound
		}
		return nil, &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}

	return profile, nil
}
