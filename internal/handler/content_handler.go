package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/kamau/sugarbloom-api/internal/domain"
	"github.com/kamau/sugarbloom-api/internal/notify"
	"github.com/kamau/sugarbloom-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// FAQ
// ============================================================

func faqListHandler(svc *service.FAQService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"items": svc.Items(),
			"open":  svc.Open(),
		})
	}
}

func faqToggleHandler(svc *service.FAQService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "index must be a number")
			return
		}

		open, err := svc.Toggle(index)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"index": index, "open": open})
	}
}

// ============================================================
// Contact
// ============================================================

func contactInfoHandler(svc *service.ContactService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Info())
	}
}

func whatsAppLinkHandler(svc *service.ContactService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"url": svc.WhatsAppLink()})
	}
}

func contactSubmitHandler(svc *service.ContactService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/contact")
		defer span.End()

		var req domain.ContactRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := svc.SubmitMessage(ctx, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusAccepted, domain.SuccessResponse{
			Message: "We'll get back to you within 24 hours.",
		})
	}
}

// ============================================================
// Notifications
// ============================================================

func listNotificationsHandler(center *notify.Center) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"notifications": center.List()})
	}
}

func dismissNotificationHandler(center *notify.Center) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		center.Dismiss(chi.URLParam(r, "notifId"))
		w.WriteHeader(http.StatusNoContent)
	}
}
