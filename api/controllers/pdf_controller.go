/*
 * @module api/controllers/pdf_controller
 * @description Controlador de adjuntos PDF: subida en base64, URL firmada de
 *              lectura y listado de reportes con PDF
 * @architecture Arquitectura MVC - capa de controladores
 * @stateFlow petición HTTP -> decodificación base64 -> servicio de reportes
 * @rules El binario viaja en el cuerpo como base64 estándar; las URLs firmadas
 *        caducan y nunca se persisten
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/render
 * @refs service/report
 */

package controllers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/spf13/cast"

	"qa-report-service/service/report"
)

// PDFController expone las operaciones de adjuntos PDF.
type PDFController struct {
	reports *report.Service
}

// NewPDFController crea el controlador con el servicio inyectado.
func NewPDFController(reports *report.Service) *PDFController {
	return &PDFController{reports: reports}
}

type attachPDFRequest struct {
	PDFBase64   string `json:"pdfBase64"`
	FileName    string `json:"fileName"`
	Area        string `json:"area"`
	Lot         string `json:"lot"`
	ContentType string `json:"contentType"`
}

type attachPDFResponse struct {
	OK            bool   `json:"ok"`
	Path          string `json:"path"`
	SignedReadURL string `json:"signedReadUrl"`
}

type pdfURLResponse struct {
	URL string `json:"url"`
}

// Attach sube el PDF de un reporte
// @Summary Adjuntar PDF a un reporte
// @Description Decodifica el base64, escribe el blob en ruta determinista y marca el documento
// @Tags pdfs
// @Accept json
// @Produce json
// @Param id path string true "id del documento"
// @Success 201 {object} attachPDFResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /reports/{id}/pdf [post]
func (c *PDFController) Attach(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req attachPDFRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, http.StatusBadRequest, "cuerpo JSON inválido")
		return
	}
	if req.PDFBase64 == "" {
		renderError(w, r, http.StatusBadRequest, "pdfBase64 is required")
		return
	}
	content, err := base64.StdEncoding.DecodeString(req.PDFBase64)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, "pdfBase64 no es base64 válido")
		return
	}

	attachment, err := c.reports.AttachPDF(r.Context(), id, content, req.FileName, req.Area, req.Lot, req.ContentType)
	if err != nil {
		renderAppError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, attachPDFResponse{OK: true, Path: attachment.Path, SignedReadURL: attachment.SignedReadURL})
}

// URL devuelve una URL firmada de lectura
// @Summary URL de lectura del PDF
// @Description Firma de corta duración, con caché para no refirmar cada hit
// @Tags pdfs
// @Produce json
// @Param id path string true "id del documento"
// @Success 200 {object} pdfURLResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /reports/{id}/pdf-url [get]
func (c *PDFController) URL(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	url, err := c.reports.PDFURL(r.Context(), id)
	if err != nil {
		renderAppError(w, r, err)
		return
	}
	render.JSON(w, r, pdfURLResponse{URL: url})
}

// List devuelve los reportes con PDF
// @Summary Listar reportes con PDF
// @Description Ordenados por createdAt descendente; cae a ordenación en memoria si el índice compuesto no existe
// @Tags pdfs
// @Produce json
// @Param limit query int false "tamaño de página (1-100, defecto 20)"
// @Param cursor query string false "token opaco de continuación"
// @Success 200 {object} models.PDFPage
// @Failure 400 {object} ErrorResponse
// @Router /reports/pdfs [get]
func (c *PDFController) List(w http.ResponseWriter, r *http.Request) {
	limit := cast.ToInt(r.URL.Query().Get("limit"))
	cursor := r.URL.Query().Get("cursor")

	page, err := c.reports.ListPDFs(r.Context(), limit, cursor)
	if err != nil {
		renderAppError(w, r, err)
		return
	}
	render.JSON(w, r, page)
}
