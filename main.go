/*
 * @module main
 * @description Arranque del servicio de reportes de calidad: configuración,
 *              clientes de Firestore/Storage/Redis, servicios, rutas y
 *              apagado ordenado
 * @architecture Servicio HTTP sin estado
 * @stateFlow config -> clientes -> servicios -> rutas -> servir -> apagado
 * @rules Todas las dependencias se construyen aquí y se inyectan; ningún
 *        paquete de servicio toca variables globales de infraestructura
 * @dependencies cloud.google.com/go/firestore, cloud.google.com/go/storage,
 *               github.com/go-chi/chi/v5
 * @refs api/routes.go, service/config
 */

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	gcs "cloud.google.com/go/storage"
	"github.com/go-chi/chi/v5"

	"qa-report-service/api"
	"qa-report-service/logger"
	"qa-report-service/service/analytics"
	"qa-report-service/service/config"
	"qa-report-service/service/report"
	"qa-report-service/service/scheduler"
	"qa-report-service/service/storage"
	"qa-report-service/service/urlcache"
)

const shutdownTimeout = 10 * time.Second

// @title API de Reportes de Calidad
// @version 1.0
// @description Backend de reportes de inspección de calidad farmacéutica:
// @description ingesta normalizada, adjuntos PDF y analítica de dashboard
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuración inválida", "error", err)
		os.Exit(1)
	}
	logger.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fsClient, err := firestore.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		slog.Error("fallo creando cliente de Firestore", "error", err)
		os.Exit(1)
	}
	defer fsClient.Close()

	gcsClient, err := gcs.NewClient(ctx)
	if err != nil {
		slog.Error("fallo creando cliente de Storage", "error", err)
		os.Exit(1)
	}
	defer gcsClient.Close()

	var cache urlcache.Cache = urlcache.Noop{}
	if cfg.RedisEnabled() {
		redisCache, err := urlcache.NewRedisCache(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			// Sin Redis el servicio funciona igual, sólo refirma más
			slog.Warn("caché Redis no disponible, se usa caché nula", "error", err)
		} else {
			cache = redisCache
			defer redisCache.Close()
		}
	}

	reportStore := storage.NewFirestoreStore(fsClient, cfg.ReportsCollection)
	formStore := storage.NewFirestoreStore(fsClient, cfg.FormsCollection)
	blobStore := storage.NewGCSBlobStore(gcsClient.Bucket(cfg.StorageBucket))

	reportService := report.New(reportStore, blobStore, cache)
	analyticsService := analytics.New(reportStore)

	refresher := scheduler.NewMetricsRefresher(analyticsService, cfg.MetricsRefreshSpec)
	if err := refresher.Start(); err != nil {
		slog.Error("fallo arrancando el refresco de métricas", "error", err)
		os.Exit(1)
	}
	defer refresher.Stop()

	mux := chi.NewRouter()
	deps := api.Deps{
		Reports:   reportService,
		Analytics: analyticsService,
		Forms:     formStore,
	}

	// Con BASE_CONTEXT todas las rutas cuelgan de ese prefijo
	if cfg.BaseContext != "" {
		mux.Route(cfg.BaseContext, func(r chi.Router) {
			api.InitRoute(r.(*chi.Mux), deps)
		})
	} else {
		api.InitRoute(mux, deps)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: mux,
	}

	go func() {
		slog.Info("servicio escuchando", "port", cfg.Port, "base_context", cfg.BaseContext)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("fallo del servidor HTTP", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("apagando el servicio")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("apagado forzado del servidor", "error", err)
	}
}
