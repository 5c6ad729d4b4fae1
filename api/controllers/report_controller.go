/*
 * @module api/controllers/report_controller
 * @description Controlador de reportes de inspección: ingesta, listado
 *              paginado, lectura puntual, parche, borrado y vaciado
 * @architecture Arquitectura MVC - capa de controladores
 * @stateFlow petición HTTP -> decodificación -> servicio de reportes -> JSON
 * @rules El controlador no toca documentos: toda la normalización vive en el
 *        servicio. Los cursores viajan como tokens opacos
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/render
 * @refs service/report
 */

package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/spf13/cast"

	"qa-report-service/service/report"
)

// ReportController expone las operaciones CRUD de reportes.
type ReportController struct {
	reports *report.Service
}

// NewReportController crea el controlador con el servicio inyectado.
func NewReportController(reports *report.Service) *ReportController {
	return &ReportController{reports: reports}
}

// Create ingiere un reporte
// @Summary Crear reporte de inspección
// @Description Normaliza el payload, deriva estado y completitud y lo persiste
// @Tags reportes
// @Accept json
// @Produce json
// @Success 201 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Router /reports [post]
func (c *ReportController) Create(w http.ResponseWriter, r *http.Request) {
	var raw map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		renderError(w, r, http.StatusBadRequest, "cuerpo JSON inválido")
		return
	}

	id, err := c.reports.Create(r.Context(), raw)
	if err != nil {
		renderAppError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, MessageResponse{Message: "Reporte guardado exitosamente", ID: id})
}

// List devuelve una página de reportes
// @Summary Listar reportes
// @Description Página proyectada ordenada por fecha de elaboración descendente
// @Tags reportes
// @Produce json
// @Param status query string false "all|approved|pending|rejected"
// @Param limit query int false "tamaño de página (1-100, defecto 20)"
// @Param cursor query string false "token opaco de continuación"
// @Success 200 {object} models.ReportPage
// @Failure 400 {object} ErrorResponse
// @Router /reports [get]
func (c *ReportController) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	limit := cast.ToInt(r.URL.Query().Get("limit"))
	cursor := r.URL.Query().Get("cursor")

	page, err := c.reports.List(r.Context(), status, limit, cursor)
	if err != nil {
		renderAppError(w, r, err)
		return
	}
	render.JSON(w, r, page)
}

// Get devuelve el documento completo
// @Summary Obtener reporte
// @Tags reportes
// @Produce json
// @Param id path string true "id del documento"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /reports/{id} [get]
func (c *ReportController) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := c.reports.Get(r.Context(), id)
	if err != nil {
		renderAppError(w, r, err)
		return
	}
	render.JSON(w, r, doc)
}

// Update aplica un parche restringido
// @Summary Actualizar reporte
// @Description Sólo se aceptan los campos hasPdf, payload, estado y createdAt
// @Tags reportes
// @Accept json
// @Param id path string true "id del documento"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Router /reports/{id} [put]
func (c *ReportController) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		renderError(w, r, http.StatusBadRequest, "cuerpo JSON inválido")
		return
	}

	if err := c.reports.Update(r.Context(), id, patch); err != nil {
		renderAppError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// Delete elimina un reporte
// @Summary Eliminar reporte
// @Description Idempotente: borrar un id inexistente también responde 204
// @Tags reportes
// @Param id path string true "id del documento"
// @Success 204
// @Router /reports/{id} [delete]
func (c *ReportController) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := c.reports.Delete(r.Context(), id); err != nil {
		renderAppError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// Clear vacía la colección de reportes
// @Summary Vaciar colección de reportes
// @Description Barrido administrativo por lotes de toda la colección
// @Tags reportes
// @Success 204
// @Router /reports/clear [post]
func (c *ReportController) Clear(w http.ResponseWriter, r *http.Request) {
	if _, err := c.reports.Clear(r.Context()); err != nil {
		renderAppError(w, r, err)
		return
	}
	render.NoContent(w, r)
}
