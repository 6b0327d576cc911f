package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/rocketshoes/api/controllers"
	"github.com/angelmondragon/rocketshoes/api/handlers"
	"github.com/angelmondragon/rocketshoes/api/middleware"
	"github.com/angelmondragon/rocketshoes/api/responses"
	pkgerrors "github.com/angelmondragon/rocketshoes/pkg/errors"
	"github.com/angelmondragon/rocketshoes/pkg/config"
	dbpkg "github.com/angelmondragon/rocketshoes/pkg/db"
	"github.com/angelmondragon/rocketshoes/pkg/logger"
)

// NewRouter builds the catalog API: the json-server style product and stock
// resources the cart's stock gateway reads, plus health and metrics.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP dbpkg.Pinger,
	catalogService controllers.CatalogService,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.Catalog.CORSOrigins),
	)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
	})

	r.Get("/health", handlers.Healthz(cfg, logg, dbP))
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(catalogService, logg))
		r.Get("/{id}", controllers.GetProduct(catalogService, logg))
	})
	r.Get("/stock/{id}", controllers.GetStock(catalogService, logg))

	return r
}
