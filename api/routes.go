/*
 * @module api/routes
 * @description Configuración de rutas de la API: middleware base, CORS,
 *              sondas de salud, reportes, PDFs, analítica y formularios
 * @architecture API RESTful
 * @stateFlow procesamiento HTTP sin estado
 * @rules Formato de error uniforme {error}; los 405 anuncian los métodos
 *        permitidos en la cabecera Allow
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs api/controllers
 */

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"qa-report-service/api/controllers"
	"qa-report-service/service/analytics"
	"qa-report-service/service/report"
	"qa-report-service/service/storage"
)

// Deps agrupa los servicios que consumen los controladores.
type Deps struct {
	Reports   *report.Service
	Analytics *analytics.Service
	Forms     storage.DocumentStore
}

// InitRoute registra todas las rutas de la API sobre el router dado.
func InitRoute(r *chi.Mux, deps Deps) {
	// Middleware base
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Sondas de salud
	healthController := controllers.NewHealthController()
	r.Get("/health", healthController.Health)
	r.Get("/ready", healthController.Ready)

	// Métricas Prometheus
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Reportes de inspección
	reportController := controllers.NewReportController(deps.Reports)
	pdfController := controllers.NewPDFController(deps.Reports)
	r.Route("/reports", func(r chi.Router) {
		r.MethodNotAllowed(controllers.MethodNotAllowed(http.MethodGet, http.MethodPost))
		r.Get("/", reportController.List)
		r.Post("/", reportController.Create)

		// Vaciado administrativo y listado de PDFs van antes que /{id}
		r.Post("/clear", reportController.Clear)
		r.Get("/pdfs", pdfController.List)

		r.Route("/{id}", func(r chi.Router) {
			r.MethodNotAllowed(controllers.MethodNotAllowed(http.MethodGet, http.MethodPut, http.MethodDelete))
			r.Get("/", reportController.Get)
			r.Put("/", reportController.Update)
			r.Delete("/", reportController.Delete)

			r.Post("/pdf", pdfController.Attach)
			r.Get("/pdf-url", pdfController.URL)
		})
	})

	// Analítica
	analyticsController := controllers.NewAnalyticsController(deps.Analytics)
	r.Route("/analytics", func(r chi.Router) {
		r.MethodNotAllowed(controllers.MethodNotAllowed(http.MethodGet))
		r.Get("/overview", analyticsController.Overview)
	})

	// Formularios
	formsController := controllers.NewFormsController(deps.Forms)
	r.Route("/forms", func(r chi.Router) {
		r.MethodNotAllowed(controllers.MethodNotAllowed(http.MethodGet, http.MethodPost))
		r.Get("/", formsController.List)
		r.Post("/", formsController.Create)
	})
}
