package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/kamau/sugarbloom-api/internal/domain"
	"github.com/kamau/sugarbloom-api/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Orders — POST /v1/orders, GET /v1/orders/options
// ============================================================

// submitOrderHandler accepts the custom order form. JSON bodies carry the
// fields only; multipart bodies additionally carry the reference image under
// the reference_image part.
func submitOrderHandler(svc *service.OrderService, session *service.SessionManager, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/orders")
		defer span.End()

		var req domain.OrderRequest

		contentType := r.Header.Get("Content-Type")
		if strings.HasPrefix(contentType, "multipart/form-data") {
			if err := r.ParseMultipartForm(maxUploadSize); err != nil {
				writeError(w, http.StatusBadRequest, "invalid multipart form")
				return
			}
			req = domain.OrderRequest{
				CakeID:          r.FormValue("cake_id"),
				Category:        r.FormValue("category"),
				Weight:          r.FormValue("weight"),
				Flavor:          r.FormValue("flavor"),
				Icing:           r.FormValue("icing"),
				Theme:           r.FormValue("theme"),
				EventDate:       r.FormValue("event_date"),
				DeliveryOption:  r.FormValue("delivery_option"),
				DeliveryAddress: r.FormValue("delivery_address"),
				SpecialRequests: r.FormValue("special_requests"),
				CustomerName:    r.FormValue("customer_name"),
				CustomerEmail:   r.FormValue("customer_email"),
				CustomerPhone:   r.FormValue("customer_phone"),
			}

			file, err := readMultipartFile(r, "reference_image")
			if err != nil {
				handleServiceError(w, err, logger)
				return
			}
			req.ReferenceImage = file
		} else {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
		}

		// Prefill contact fields from the signed-in profile when the form
		// left them empty.
		if snap := session.Snapshot(); snap.User != nil {
			if req.CustomerEmail == "" {
				req.CustomerEmail = snap.User.Email
			}
			if req.CustomerName == "" && snap.Profile != nil {
				req.CustomerName = snap.Profile.FullName
			}
		}

		receipt, err := svc.Submit(ctx, session.UserID(), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, receipt)
	}
}

func orderOptionsHandler(svc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Options())
	}
}
