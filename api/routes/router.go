package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/customorder-backend/api/controllers"
	"github.com/angelmondragon/customorder-backend/api/middleware"
	"github.com/angelmondragon/customorder-backend/internal/catalog"
	"github.com/angelmondragon/customorder-backend/pkg/config"
	"github.com/angelmondragon/customorder-backend/pkg/db"
	"github.com/angelmondragon/customorder-backend/pkg/logger"
)

// RateLimiter is the fixed-window counter behind the submit throttle.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Dependencies are the collaborators built in cmd/api.
type Dependencies struct {
	Catalog     *catalog.Catalog
	Forms       controllers.FormService
	Attempts    controllers.AttemptLister
	RateLimiter RateLimiter
	HTTPMetrics middleware.RequestObserver
	Gatherer    prometheus.Gatherer

	Pingers       map[string]db.Pinger
	Collaborators map[string]controllers.StateReporter
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(cfg.App.CORSAllowedOrigins),
	)

	submitPolicy := middleware.NewSubmitRateLimitPolicy(
		"submit",
		cfg.SubmitRateLimit.Window,
		cfg.SubmitRateLimit.IPLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers, deps.Collaborators))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", controllers.CatalogList(deps.Catalog, logg))

		r.Route("/forms", func(r chi.Router) {
			r.Post("/", controllers.FormCreate(deps.Forms, logg))

			r.Route("/{sessionId}", func(r chi.Router) {
				r.Get("/", controllers.FormState(deps.Forms, logg))
				r.Delete("/", controllers.FormReset(deps.Forms, logg))
				r.Put("/fields", controllers.FormSetFields(deps.Forms, logg))
				r.Post("/fields/{field}/validate", controllers.FormValidateField(deps.Forms, logg))
				r.Post("/products/{productId}/toggle", controllers.FormToggleProduct(deps.Forms, logg))
				r.Post("/next", controllers.FormNext(deps.Forms, logg))
				r.Post("/prev", controllers.FormPrev(deps.Forms, logg))
				r.Get("/summary", controllers.FormSummary(deps.Forms, logg))
				r.Post("/logo/inspect", controllers.FormInspectLogo(deps.Forms, logg))

				submit := r.With()
				if deps.RateLimiter != nil {
					submit = r.With(middleware.SubmitRateLimit(submitPolicy, deps.RateLimiter, logg))
				}
				submit.Post("/submit", controllers.FormSubmit(deps.Forms, logg))

				if deps.Attempts != nil {
					r.Get("/attempts", controllers.FormAttempts(deps.Attempts, logg))
				}
			})
		})
	})

	return r
}
