// Package handler exposes the HTTP surface: the public storefront API and
// the admin console API.
package handler

import (
	"net/http"

	"github.com/kamau/sugarbloom-api/internal/infra/observability"
	"github.com/kamau/sugarbloom-api/internal/notify"
	"github.com/kamau/sugarbloom-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services bundles everything the router needs.
type Services struct {
	Session *service.SessionManager
	Catalog *service.CatalogService
	Orders  *service.OrderService
	Admin   *service.AdminService
	Contact *service.ContactService
	FAQ     *service.FAQService
	Notify  *notify.Center
	Metrics *observability.Metrics
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svcs Services, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svcs.Catalog))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(svcs.Metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// Storefront: catalog
		// =============================================
		r.Get("/gallery", galleryHandler(svcs.Catalog, logger))
		r.Get("/featured", featuredHandler(svcs.Catalog, logger))
		r.Get("/cakes/{cakeId}", getCakeHandler(svcs.Catalog, logger))

		// =============================================
		// Storefront: orders
		// =============================================
		r.Post("/orders", submitOrderHandler(svcs.Orders, svcs.Session, logger))
		r.Get("/orders/options", orderOptionsHandler(svcs.Orders))

		// =============================================
		// Storefront: content
		// =============================================
		r.Get("/faq", faqListHandler(svcs.FAQ))
		r.Post("/faq/{index}/toggle", faqToggleHandler(svcs.FAQ, logger))
		r.Get("/contact", contactInfoHandler(svcs.Contact))
		r.Post("/contact", contactSubmitHandler(svcs.Contact, logger))
		r.Get("/contact/whatsapp", whatsAppLinkHandler(svcs.Contact))

		// =============================================
		// Storefront: notifications
		// =============================================
		r.Get("/notifications", listNotificationsHandler(svcs.Notify))
		r.Delete("/notifications/{notifId}", dismissNotificationHandler(svcs.Notify))

		// =============================================
		// Authentication & session
		// =============================================
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", signUpHandler(svcs.Session, logger))
			r.Post("/signin", signInHandler(svcs.Session, logger))
			r.Post("/signout", signOutHandler(svcs.Session, logger))
			r.Post("/password/reset", resetPasswordHandler(svcs.Session, logger))
			r.Get("/session", sessionHandler(svcs.Session))
		})

		// =============================================
		// Admin console (requires the admin role)
		// =============================================
		r.Route("/admin", func(r chi.Router) {
			r.Use(AdminOnly(svcs.Session, logger))

			r.Get("/dashboard", adminDashboardHandler(svcs.Admin, logger))
			r.Get("/orders", adminListOrdersHandler(svcs.Admin, logger))
			r.Patch("/orders/{orderId}/status", adminOrderStatusHandler(svcs.Admin, logger))

			r.Get("/cakes", adminListCakesHandler(svcs.Admin, logger))
			r.Post("/cakes", adminCreateCakeHandler(svcs.Admin, logger))
			r.Put("/cakes/{cakeId}", adminUpdateCakeHandler(svcs.Admin, logger))
			r.Delete("/cakes/{cakeId}", adminDeleteCakeHandler(svcs.Admin, logger))
			r.Post("/cakes/image", adminCakeImageHandler(svcs.Admin, logger))
		})
	})

	return r
}

// ============================================================
// Health
// ============================================================

func healthzHandler(catalog *service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "healthy"
		if _, err := catalog.Gallery(r.Context(), ""); err != nil {
			status = "degraded"
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": status})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// ============================================================
// Catalog
// ============================================================

func galleryHandler(svc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/gallery")
		defer span.End()

		category := r.URL.Query().Get("category")
		span.SetAttributes(attribute.String("gallery.category", category))

		gallery, err := svc.Gallery(ctx, category)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, gallery)
	}
}

func featuredHandler(svc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/featured")
		defer span.End()

		cakes, err := svc.Featured(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"cakes": cakes})
	}
}

func getCakeHandler(svc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/cakes/{cakeId}")
		defer span.End()

		cakeID := chi.URLParam(r, "cakeId")
		span.SetAttributes(attribute.String("cake.id", cakeID))

		cake, err := svc.GetCake(ctx, cakeID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, cake)
	}
}
