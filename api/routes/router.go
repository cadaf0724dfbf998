package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bookride/backend/api/controllers"
	"github.com/bookride/backend/api/controllers/webhooks"
	"github.com/bookride/backend/api/middleware"
	"github.com/bookride/backend/internal/payments"
	stripewebhook "github.com/bookride/backend/internal/webhooks/stripe"
	"github.com/bookride/backend/pkg/db"
	"github.com/bookride/backend/pkg/logger"
	"github.com/bookride/backend/pkg/metrics"
	"github.com/bookride/backend/pkg/redis"
)

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Logger *logger.Logger

	DB    db.Pinger
	Redis redis.Pinger

	PaymentService *payments.Service
	WebhookService *stripewebhook.Service
	WebhookGuard   *stripewebhook.IdempotencyGuard

	StripeSigningSecret string

	Metrics  *metrics.PaymentMetrics
	Registry *prometheus.Registry
}

// New assembles the HTTP router.
func New(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer(deps.Logger))
	r.Use(middleware.RequestID(deps.Logger))
	r.Use(middleware.Logging(deps.Logger))

	r.Get("/health/live", controllers.Liveness())
	r.Get("/health/ready", controllers.Readiness(deps.DB, deps.Redis, deps.Logger))

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/payments", func(r chi.Router) {
			r.Post("/intents", controllers.CreatePaymentIntent(deps.PaymentService, deps.Logger, deps.Metrics))
		})
		r.Route("/webhooks", func(r chi.Router) {
			r.Post("/stripe", webhooks.HandleStripeEvent(
				deps.WebhookService,
				deps.WebhookGuard,
				deps.StripeSigningSecret,
				deps.Logger,
				deps.Metrics,
			))
		})
	})

	return r
}
