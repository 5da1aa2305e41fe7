package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/stashkeeper-backend/api/controllers"
	"github.com/angelmondragon/stashkeeper-backend/api/middleware"
	"github.com/angelmondragon/stashkeeper-backend/internal/items"
	"github.com/angelmondragon/stashkeeper-backend/internal/tracked"
	"github.com/angelmondragon/stashkeeper-backend/pkg/cache"
	"github.com/angelmondragon/stashkeeper-backend/pkg/config"
	"github.com/angelmondragon/stashkeeper-backend/pkg/db"
	"github.com/angelmondragon/stashkeeper-backend/pkg/logger"
)

// Deps carries everything the router mounts. Gatherer may be nil to omit /metrics.
type Deps struct {
	DB       db.Pinger
	Cache    *cache.Cache
	Gatherer prometheus.Gatherer
	Items    items.Service
	Tracked  tracked.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	ready := map[string]controllers.Pinger{}
	if deps.DB != nil {
		ready["db"] = deps.DB
	}
	if deps.Cache.Enabled() {
		ready["cache_"+deps.Cache.BackendName()] = deps.Cache
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, ready))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/items", func(r chi.Router) {
			r.Get("/", controllers.ListItems(deps.Items, logg))
			r.Post("/", controllers.CreateItem(deps.Items, logg))
			r.Get("/{itemId}", controllers.GetItem(deps.Items, logg))
			r.Patch("/{itemId}", controllers.UpdateItem(deps.Items, logg))
			r.Delete("/{itemId}", controllers.DeleteItem(deps.Items, logg))
		})

		r.Route("/tracked-items", func(r chi.Router) {
			r.Get("/", controllers.ListTrackedItems(deps.Tracked, logg))
			r.Post("/", controllers.CreateTrackedItem(deps.Tracked, logg))
			r.Get("/{itemId}", controllers.GetTrackedItem(deps.Tracked, logg))
			r.Patch("/{itemId}", controllers.UpdateTrackedItem(deps.Tracked, logg))
			r.Delete("/{itemId}", controllers.DeleteTrackedItem(deps.Tracked, logg))
			r.Post("/{itemId}/transitions", controllers.TransitionTrackedItem(deps.Tracked, logg))
			r.Get("/{itemId}/usage-periods", controllers.TrackedItemHistory(deps.Tracked, logg))
		})
	})

	return r
}
