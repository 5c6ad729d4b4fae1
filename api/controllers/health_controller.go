/*
 * @module api/controllers/health_controller
 * @description Controlador de salud: sondas de vida y de disponibilidad para
 *              contenedores y balanceadores
 * @architecture Arquitectura MVC - capa de controladores
 * @dependencies net/http, github.com/go-chi/render
 * @refs main.go
 */

package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/render"
)

// HealthController expone las sondas de salud del servicio.
type HealthController struct{}

// NewHealthController crea el controlador de salud.
func NewHealthController() *HealthController {
	return &HealthController{}
}

// HealthResponse es la respuesta de las sondas.
type HealthResponse struct {
	Status    string    `json:"status" example:"ok"`
	Timestamp time.Time `json:"timestamp" example:"2026-01-01T00:00:00Z"`
	Version   string    `json:"version" example:"1.0.0"`
	Service   string    `json:"service" example:"qa-report-service"`
}

// Health sonda de vida
// @Summary Sonda de vida
// @Tags sistema
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   "1.0.0",
		Service:   "qa-report-service",
	})
}

// Ready sonda de disponibilidad
// @Summary Sonda de disponibilidad
// @Tags sistema
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /ready [get]
func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, HealthResponse{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   "1.0.0",
		Service:   "qa-report-service",
	})
}
