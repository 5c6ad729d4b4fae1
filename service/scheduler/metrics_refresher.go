/*
 * @module service/scheduler/metrics_refresher
 * @description Refresco programado de los gauges Prometheus a partir del
 *              agregado de analítica de la ventana de 30 días
 * @architecture Capa de tareas programadas
 * @stateFlow arranque de cron -> refresco inmediato -> refresco periódico
 * @rules Un fallo de refresco se cuenta y se registra; los gauges conservan
 *        el último valor bueno
 * @dependencies github.com/robfig/cron/v3, qa-report-service/service/analytics
 * @refs service/metrics, main.go
 */

package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"qa-report-service/service/meta"
	"qa-report-service/service/metrics"
	"qa-report-service/service/models"
)

const refreshTimeout = 30 * time.Second

// OverviewProvider es lo que el refrescador necesita de analítica.
type OverviewProvider interface {
	Overview(ctx context.Context, rangeDays int) (*models.Overview, error)
}

// MetricsRefresher mantiene los gauges del servicio alineados con el
// agregado de analítica mediante un cron interno.
type MetricsRefresher struct {
	provider OverviewProvider
	spec     string
	cron     *cron.Cron
}

// NewMetricsRefresher crea el refrescador con la expresión cron dada
// (por ejemplo "@every 5m").
func NewMetricsRefresher(provider OverviewProvider, spec string) *MetricsRefresher {
	return &MetricsRefresher{
		provider: provider,
		spec:     spec,
		cron:     cron.New(),
	}
}

// Start registra la tarea, hace un refresco inmediato y arranca el cron.
func (r *MetricsRefresher) Start() error {
	if _, err := r.cron.AddFunc(r.spec, r.refresh); err != nil {
		return err
	}
	go r.refresh()
	r.cron.Start()
	slog.Info("refresco de métricas programado", "spec", r.spec)
	return nil
}

// Stop detiene el cron y espera a que termine la tarea en curso.
func (r *MetricsRefresher) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

func (r *MetricsRefresher) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	ov, err := r.provider.Overview(ctx, 30)
	if err != nil {
		metrics.OverviewRefreshErrors.Inc()
		slog.Error("fallo refrescando métricas de analítica", "error", err)
		return
	}

	metrics.ReportsByState.WithLabelValues(meta.EstadoAprobado).Set(float64(ov.Summary.Approved))
	metrics.ReportsByState.WithLabelValues(meta.EstadoPendiente).Set(float64(ov.Summary.Pending))
	metrics.ReportsByState.WithLabelValues(meta.EstadoRechazado).Set(float64(ov.Summary.Rejected))
	metrics.ReportsWithPDF.Set(float64(ov.Summary.WithPDF))

	metrics.DefectUnits.WithLabelValues("criticos").Set(float64(ov.Breakdown.DefectsByType.Criticos))
	metrics.DefectUnits.WithLabelValues("mayores").Set(float64(ov.Breakdown.DefectsByType.Mayores))
	metrics.DefectUnits.WithLabelValues("menores").Set(float64(ov.Breakdown.DefectsByType.Menores))

	slog.Debug("métricas de analítica refrescadas", "total", ov.Summary.Total)
}
