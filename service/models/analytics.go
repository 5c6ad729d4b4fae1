/*
 * @module service/models/analytics
 * @description Estructura del agregado de analítica: resumen, desgloses y
 *              series temporales para el dashboard
 * @architecture Capa de modelos
 * @dependencies ninguna
 * @refs service/analytics, api/controllers/analytics_controller.go
 */

package models

// Overview es el agregado completo sobre la ventana de análisis.
type Overview struct {
	Summary   OverviewSummary   `json:"summary"`
	Breakdown OverviewBreakdown `json:"breakdown"`
	Series    OverviewSeries    `json:"series"`
}

// OverviewSummary son los contadores y tasas globales de la ventana.
type OverviewSummary struct {
	Total        int      `json:"total"`
	Approved     int      `json:"approved"`
	Pending      int      `json:"pending"`
	Rejected     int      `json:"rejected"`
	WithPDF      int      `json:"withPdf"`
	ApprovalRate int      `json:"approvalRate"`
	RejectRate   int      `json:"rejectRate"`
	AvgDefects   int      `json:"avgDefects"`
	AvgCycleDays *float64 `json:"avgCycleDays"`
}

// DefectsByType acumula unidades de defecto por grupo de severidad.
type DefectsByType struct {
	Criticos int `json:"criticos"`
	Mayores  int `json:"mayores"`
	Menores  int `json:"menores"`
	Total    int `json:"total"`
}

// AreaStat es el desglose de una área de inspección.
type AreaStat struct {
	Area     string `json:"area"`
	Total    int    `json:"total"`
	Approved int    `json:"approved"`
	Rejected int    `json:"rejected"`
}

// DefectStat es una descripción de defecto con sus unidades acumuladas.
type DefectStat struct {
	Descripcion string `json:"descripcion"`
	Total       int    `json:"total"`
}

// StatusSplit es el reparto de estados de los últimos 30 días.
type StatusSplit struct {
	Approved int `json:"approved"`
	Pending  int `json:"pending"`
	Rejected int `json:"rejected"`
}

// OverviewBreakdown agrupa los desgloses del agregado.
type OverviewBreakdown struct {
	DefectsByType   DefectsByType `json:"defectsByType"`
	ByArea          []AreaStat    `json:"byArea"`
	TopAreasRechazo []AreaStat    `json:"topAreasRechazo"`
	TopDefects      []DefectStat  `json:"topDefects"`
	Status30d       StatusSplit   `json:"status30d"`
}

// OverviewSeries son las series por mes calendario y por semana ISO.
type OverviewSeries struct {
	ByMonth map[string]int `json:"byMonth"`
	ByWeek  map[string]int `json:"byWeek"`
}
