package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skladapp/sklad-backend/api/controllers"
	"github.com/skladapp/sklad-backend/api/middleware"
	"github.com/skladapp/sklad-backend/internal/backup"
	"github.com/skladapp/sklad-backend/internal/parts"
	"github.com/skladapp/sklad-backend/internal/scan"
	"github.com/skladapp/sklad-backend/pkg/config"
	"github.com/skladapp/sklad-backend/pkg/logger"
	"github.com/skladapp/sklad-backend/pkg/metrics"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	registry *prometheus.Registry,
	httpMetrics *metrics.HTTPMetrics,
	partsService parts.Service,
	backupService backup.Service,
	scanService scan.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Get("/health/live", controllers.HealthLive(cfg))
	r.Get("/health/ready", controllers.HealthReady(cfg))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/parts", func(r chi.Router) {
			r.Get("/", controllers.PartsList(partsService, logg))
			r.Post("/", controllers.PartsCreate(partsService, logg))
			r.Delete("/", controllers.PartsClear(partsService, logg))
			r.Get("/by-article/{article}", controllers.PartsByArticle(partsService, logg))
			r.Route("/{partId}", func(r chi.Router) {
				r.Get("/", controllers.PartsGet(partsService, logg))
				r.Put("/", controllers.PartsUpdate(partsService, logg))
				r.Delete("/", controllers.PartsDelete(partsService, logg))
				r.Get("/analogs", controllers.PartsAnalogs(partsService, logg))
				r.Get("/compatible", controllers.PartsCompatible(partsService, logg))
			})
		})

		r.Get("/categories", controllers.CategoriesList(partsService, logg))
		r.Get("/manufacturers", controllers.ManufacturersList(partsService, logg))

		r.Route("/history", func(r chi.Router) {
			r.Get("/", controllers.HistoryList(partsService, logg))
			r.Post("/", controllers.HistoryAdd(partsService, logg))
			r.Delete("/", controllers.HistoryClear(partsService, logg))
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", controllers.FavoritesList(partsService, logg))
			r.Post("/", controllers.FavoritesAdd(partsService, logg))
			r.Delete("/{partId}", controllers.FavoritesRemove(partsService, logg))
		})

		r.Route("/backups", func(r chi.Router) {
			r.Get("/", controllers.BackupsList(backupService, logg))
			r.Post("/", controllers.BackupsCreate(backupService, logg))
			r.Post("/restore", controllers.BackupsRestore(backupService, logg))
			r.Delete("/{name}", controllers.BackupsDelete(backupService, logg))
		})

		r.Post("/export/csv", controllers.ExportCSV(backupService, logg))
		r.Post("/import/csv", controllers.ImportCSV(backupService, logg))
		r.Post("/export/json", controllers.ExportJSON(backupService, logg))
		r.Post("/import/json", controllers.ImportJSON(backupService, logg))

		r.Post("/scan/extract", controllers.ScanExtract(scanService, logg))
		r.Post("/scan/image", controllers.ScanImage(scanService, logg))
	})

	return r
}
