/*
 * @module api/controllers/analytics_controller
 * @description Controlador de analítica: agregado de ventana para el dashboard
 * @architecture Arquitectura MVC - capa de controladores
 * @dependencies github.com/go-chi/render, github.com/spf13/cast
 * @refs service/analytics
 */

package controllers

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/spf13/cast"

	"qa-report-service/service/analytics"
)

// AnalyticsController expone el agregado de analítica.
type AnalyticsController struct {
	analytics *analytics.Service
}

// NewAnalyticsController crea el controlador con el servicio inyectado.
func NewAnalyticsController(svc *analytics.Service) *AnalyticsController {
	return &AnalyticsController{analytics: svc}
}

// Overview calcula el agregado de la ventana
// @Summary Agregado de analítica
// @Description Resumen, desgloses y series sobre los últimos rangeDays días
// @Tags analitica
// @Produce json
// @Param rangeDays query int false "ventana en días (1-365, defecto 180)"
// @Success 200 {object} models.Overview
// @Failure 500 {object} ErrorResponse
// @Router /analytics/overview [get]
func (c *AnalyticsController) Overview(w http.ResponseWriter, r *http.Request) {
	rangeDays := cast.ToInt(r.URL.Query().Get("rangeDays"))

	overview, err := c.analytics.Overview(r.Context(), rangeDays)
	if err != nil {
		renderAppError(w, r, err)
		return
	}
	render.JSON(w, r, overview)
}
