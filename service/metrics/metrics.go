/*
 * @module service/metrics
 * @description Colectores Prometheus del servicio: contadores de ingesta y
 *              gauges del agregado de analítica refrescados por el scheduler
 * @architecture Capa de observabilidad
 * @dependencies github.com/prometheus/client_golang/prometheus
 * @refs service/scheduler, service/report, main.go
 */

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReportsCreated cuenta reportes ingeridos por estado derivado.
	ReportsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qa_reports_created_total",
		Help: "Reportes de inspección creados, por estado derivado",
	}, []string{"estado"})

	// ReportsByState expone el reparto de estados de la ventana de 30 días.
	ReportsByState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "qa_reports_by_state",
		Help: "Reportes en la ventana de 30 días, por estado",
	}, []string{"estado"})

	// ReportsWithPDF expone cuántos reportes de la ventana tienen PDF.
	ReportsWithPDF = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "qa_reports_with_pdf",
		Help: "Reportes con PDF registrado en la ventana de 30 días",
	})

	// DefectUnits expone unidades de defecto acumuladas por severidad.
	DefectUnits = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "qa_defect_units",
		Help: "Unidades de defecto acumuladas en la ventana, por severidad",
	}, []string{"severidad"})

	// OverviewRefreshErrors cuenta fallos del refresco programado de gauges.
	OverviewRefreshErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qa_overview_refresh_errors_total",
		Help: "Fallos al refrescar los gauges desde el agregado de analítica",
	})
)
