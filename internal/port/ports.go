// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/kamau/sugarbloom-api/internal/domain"
)

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// CatalogStore defines data operations for the cake catalog.
// Implemented by the Supabase adapter (or any other persistence layer).
type CatalogStore interface {
	ListAvailableCakes(ctx context.Context) ([]domain.Cake, error)
	ListAllCakes(ctx context.Context) ([]domain.Cake, error)
	GetCake(ctx context.Context, cakeID string) (*domain.Cake, error)
	CreateCake(ctx context.Context, req *domain.CakeRequest) (*domain.Cake, error)
	UpdateCake(ctx context.Context, cakeID string, req *domain.CakeRequest) (*domain.Cake, error)
	DeleteCake(ctx context.Context, cakeID string) error
}

// OrderStore defines data operations for custom cake orders.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) error
}

// ProfileStore retrieves user profile rows (display name, role).
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
}

// AuthAPI wraps the hosted authentication service.
type AuthAPI interface {
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	SignUp(ctx context.Context, email, password, fullName, redirectTo string) (*domain.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	RequestPasswordReset(ctx context.Context, email, redirectTo string) error
	RefreshSession(ctx context.Context, refreshToken string) (*domain.Session, error)

	// Subscribe registers a listener for auth state changes. The returned
	// function unsubscribes the listener.
	Subscribe(fn func(event domain.AuthEvent)) (unsubscribe func())
}

// ObjectStorage uploads files to a hosted bucket and resolves public URLs.
type ObjectStorage interface {
	Upload(ctx context.Context, bucket, path string, file *domain.UploadedFile) error
	PublicURL(bucket, path string) string
}

// Notifier publishes user-facing notifications (toasts).
type Notifier interface {
	Publish(n domain.Notification)
	Success(title, message string)
	Error(title, message string)
}
