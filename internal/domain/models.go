// Package domain defines the core business entities for the Sugarbloom
// storefront. These models mirror the hosted backend's table shapes and are
// the canonical data structures used throughout the service.
package domain

import "time"

// ============================================================
// Catalog
// ============================================================

// Cake is a sellable catalog item (table `cakes`).
type Cake struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"image_url"`
	Category    string    `json:"category"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"created_at"`
}

// Gallery is the storefront listing: all available cakes plus the distinct
// category set. Filtering by category is computed from this snapshot without
// another backend round trip.
type Gallery struct {
	Cakes      []Cake   `json:"cakes"`
	Categories []string `json:"categories"`
}

// AllCategories is the synthetic filter value matching every cake.
const AllCategories = "All"

// ============================================================
// Orders
// ============================================================

// Order status lifecycle. Status is the only field mutated after creation,
// and only through the admin surface.
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusInProgress = "in_progress"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// ValidOrderStatus reports whether s is part of the order status vocabulary.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusInProgress,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is a customer request for a customized cake (table `orders`).
type Order struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"user_id,omitempty"`
	CakeID              string    `json:"cake_id,omitempty"`
	CustomerName        string    `json:"customer_name"`
	CustomerEmail       string    `json:"customer_email"`
	CustomerPhone       string    `json:"customer_phone,omitempty"`
	DeliveryDate        string    `json:"delivery_date"`
	DeliveryAddress     string    `json:"delivery_address,omitempty"`
	SpecialInstructions string    `json:"special_instructions"`
	Status              string    `json:"status"`
	TotalAmount         float64   `json:"total_amount"`
	ReferenceImageURL   string    `json:"customer_reference_image,omitempty"`
	CreatedAt           time.Time `json:"created_at"`

	// CakeSummary carries the joined cake name/price for admin listings.
	CakeSummary *CakeSummary `json:"cakes,omitempty"`
}

// CakeSummary is the cake subset embedded into admin order rows.
type CakeSummary struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ============================================================
// Profiles
// ============================================================

// Profile is the application-level record keyed by user id (table
// `profiles`). It is created server-side when a User is created and is never
// mutated by this service; role is the sole authorization signal.
type Profile struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoleAdmin gates access to the management surface.
const RoleAdmin = "admin"

// IsAdmin reports whether the profile grants admin access.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// ============================================================
// Notifications
// ============================================================

// Notification levels.
const (
	NotifySuccess = "success"
	NotifyError   = "error"
)

// Notification is a transient, dismissible outcome message. Every operation
// outcome (success or failure) produces exactly one.
type Notification struct {
	ID        string    `json:"id"`
	Level     string    `json:"level"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// ============================================================
// Static content
// ============================================================

// FAQItem is a question/answer pair served on the FAQ page.
type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ContactInfo is the static contact block shown on the contact page.
type ContactInfo struct {
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Hours   string `json:"hours"`
}

// SuccessResponse is a generic message envelope.
type SuccessResponse struct {
	Message string `json:"message"`
}
