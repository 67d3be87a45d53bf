package handler

import (
	"encoding/json"
	"net/http"

	"github.com/kamau/sugarbloom-api/internal/domain"
	"github.com/kamau/sugarbloom-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Admin console — /v1/admin/*
// ============================================================

func adminDashboardHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/dashboard")
		defer span.End()

		dashboard, err := svc.Dashboard(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, dashboard)
	}
}

func adminListOrdersHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/orders")
		defer span.End()

		orders, err := svc.ListOrders(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
	}
}

func adminOrderStatusHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/admin/orders/{orderId}/status")
		defer span.End()

		orderID := chi.URLParam(r, "orderId")
		span.SetAttributes(attribute.String("order.id", orderID))

		var req domain.OrderStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := svc.UpdateOrderStatus(ctx, orderID, req.Status); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "Order status updated"})
	}
}

func adminListCakesHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/cakes")
		defer span.End()

		cakes, err := svc.ListCakes(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"cakes": cakes})
	}
}

func adminCreateCakeHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/cakes")
		defer span.End()

		var req domain.CakeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		cake, err := svc.CreateCake(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, cake)
	}
}

func adminUpdateCakeHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/admin/cakes/{cakeId}")
		defer span.End()

		cakeID := chi.URLParam(r, "cakeId")
		span.SetAttributes(attribute.String("cake.id", cakeID))

		var req domain.CakeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		cake, err := svc.UpdateCake(ctx, cakeID, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, cake)
	}
}

func adminDeleteCakeHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/admin/cakes/{cakeId}")
		defer span.End()

		cakeID := chi.URLParam(r, "cakeId")
		span.SetAttributes(attribute.String("cake.id", cakeID))

		if err := svc.DeleteCake(ctx, cakeID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// adminCakeImageHandler uploads a catalog photo and returns its public URL
// for the subsequent cake create/update.
func adminCakeImageHandler(svc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/cakes/image")
		defer span.End()

		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}

		file, err := readMultipartFile(r, "image")
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if file == nil {
			writeError(w, http.StatusBadRequest, "image file is required")
			return
		}

		url, err := svc.UploadCakeImage(ctx, file)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"image_url": url})
	}
}
