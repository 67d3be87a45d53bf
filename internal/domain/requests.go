package domain

// ============================================================
// Storefront & admin request bodies
//
// These structs pin the boundary schema explicitly: every payload is decoded
// into a typed struct and checked with validator tags before any backend
// call is made.
// ============================================================

// OrderRequest is the body for POST /v1/orders. Required fields are rejected
// locally; no backend call happens on a validation failure.
type OrderRequest struct {
	CakeID          string `json:"cake_id,omitempty"`
	Category        string `json:"category" validate:"required"`
	Weight          string `json:"weight" validate:"required"`
	Flavor          string `json:"flavor" validate:"required"`
	Icing           string `json:"icing,omitempty"`
	Theme           string `json:"theme,omitempty"`
	EventDate       string `json:"event_date" validate:"required"`
	DeliveryOption  string `json:"delivery_option,omitempty" validate:"omitempty,oneof=pickup delivery"`
	DeliveryAddress string `json:"delivery_address,omitempty"`
	SpecialRequests string `json:"special_requests,omitempty"`
	CustomerName    string `json:"customer_name" validate:"required"`
	CustomerEmail   string `json:"customer_email" validate:"required,email"`
	CustomerPhone   string `json:"customer_phone,omitempty"`

	// ReferenceImage is the optional uploaded reference picture. Populated
	// from the multipart part, never from JSON.
	ReferenceImage *UploadedFile `json:"-"`
}

// UploadedFile is an in-memory file received from a multipart form.
type UploadedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// OrderReceipt is the 201 response for a submitted order.
type OrderReceipt struct {
	Order           Order   `json:"order"`
	EstimatedAmount float64 `json:"estimated_amount"`
	Message         string  `json:"message"`
}

// OrderOptions is the form vocabulary shared by the storefront form and the
// server-side validation.
type OrderOptions struct {
	Categories []string `json:"categories"`
	Weights    []string `json:"weights"`
	Flavors    []string `json:"flavors"`
	IcingTypes []string `json:"icing_types"`
}

// CakeRequest is the body for POST/PUT /v1/admin/cakes.
type CakeRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	ImageURL    string  `json:"image_url,omitempty"`
	Category    string  `json:"category,omitempty"`
	Available   bool    `json:"available"`
}

// OrderStatusRequest is the body for PATCH /v1/admin/orders/{id}/status.
type OrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ContactRequest is the body for POST /v1/contact. Submissions are
// acknowledged but not persisted.
type ContactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message" validate:"required"`
}

// AdminDashboard bundles the two admin panel tabs.
type AdminDashboard struct {
	Orders []Order `json:"orders"`
	Cakes  []Cake  `json:"cakes"`
}
