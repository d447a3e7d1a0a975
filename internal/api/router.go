package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Audit5S/internal/events"
	"github.com/MikeSquared-Agency/Audit5S/internal/imagegen"
	"github.com/MikeSquared-Agency/Audit5S/internal/metrics"
	"github.com/MikeSquared-Agency/Audit5S/internal/state"
)

type RouterOptions struct {
	AdminToken   string
	RateLimitRPM int
	MaxBodyBytes int64
}

// NewRouter wires the public API. pub and img may be nil; a nil m registers
// a private set of collectors.
func NewRouter(st *state.State, pub events.Publisher, img imagegen.Client, m *metrics.Metrics, opts RouterOptions, logger *slog.Logger) http.Handler {
	if m == nil {
		m = metrics.New(prometheus.NewRegistry())
	}

	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(MetricsMiddleware(m))
	r.Use(RateLimitMiddleware(opts.RateLimitRPM))
	if opts.MaxBodyBytes > 0 {
		r.Use(chiMiddleware.RequestSize(opts.MaxBodyBytes))
	}

	audits := NewAuditsHandler(st, pub, m, logger)
	actions := NewActionsHandler(st, pub, logger)
	reports := NewReportsHandler(st, logger)
	settings := NewSettingsHandler(st, pub, logger)
	images := NewImagesHandler(img, m, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ActorMiddleware)

		r.Get("/audits/draft", audits.Draft)
		r.Post("/audits", audits.Create)
		r.Get("/audits", audits.List)
		r.Get("/audits/{id}", audits.Get)
		r.Put("/audits/{id}", audits.Update)
		r.Delete("/audits/{id}", audits.Delete)

		r.Get("/actions", actions.List)
		r.Get("/actions/{id}", actions.Get)
		r.Patch("/actions/{id}", actions.Update)
		r.Delete("/actions/{id}", actions.Delete)

		r.Get("/dashboard", reports.Dashboard)
		r.Get("/consolidated", reports.Consolidated)
		r.Get("/export.xlsx", reports.Export)

		r.Post("/images/edit", images.Edit)

		r.Get("/config", settings.Get)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(opts.AdminToken))
			r.Delete("/actions", actions.Clear)
			r.Put("/config", settings.Replace)
			r.Post("/config/areas", settings.AddArea)
			r.Delete("/config/areas/{name}", settings.RemoveArea)
			r.Post("/config/responsables", settings.AddResponsable)
			r.Delete("/config/responsables/{name}", settings.RemoveResponsable)
			r.Post("/config/questions", settings.AddQuestion)
			r.Delete("/config/questions/{id}", settings.RemoveQuestion)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
