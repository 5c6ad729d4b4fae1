/*
 * @module api/controllers/forms_controller
 * @description Controlador de formularios: colección libre de paso directo
 *              usada por las plantillas del frontend
 * @architecture Arquitectura MVC - capa de controladores
 * @rules Sin normalización: los formularios se guardan y devuelven tal cual
 * @dependencies github.com/go-chi/render
 * @refs service/storage
 */

package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"

	"qa-report-service/service/apperrors"
	"qa-report-service/service/storage"
)

// FormsController expone la colección de formularios sin procesar.
type FormsController struct {
	store storage.DocumentStore
}

// NewFormsController crea el controlador sobre la colección de formularios.
func NewFormsController(store storage.DocumentStore) *FormsController {
	return &FormsController{store: store}
}

type formCreatedResponse struct {
	ID string `json:"id"`
}

// List devuelve todos los formularios
// @Summary Listar formularios
// @Tags formularios
// @Produce json
// @Success 200 {array} map[string]interface{}
// @Failure 500 {object} ErrorResponse
// @Router /forms [get]
func (c *FormsController) List(w http.ResponseWriter, r *http.Request) {
	docs, err := c.store.Query(r.Context(), storage.Query{})
	if err != nil {
		renderAppError(w, r, apperrors.NewStorage("listar formularios", err))
		return
	}

	items := make([]map[string]interface{}, 0, len(docs))
	for _, d := range docs {
		item := make(map[string]interface{}, len(d.Data)+1)
		for k, v := range d.Data {
			item[k] = v
		}
		item["id"] = d.ID
		items = append(items, item)
	}
	render.JSON(w, r, items)
}

// Create guarda un formulario tal cual llega
// @Summary Crear formulario
// @Tags formularios
// @Accept json
// @Produce json
// @Success 200 {object} formCreatedResponse
// @Failure 400 {object} ErrorResponse
// @Router /forms [post]
func (c *FormsController) Create(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		renderError(w, r, http.StatusBadRequest, "cuerpo JSON inválido")
		return
	}

	id, err := c.store.Add(r.Context(), body)
	if err != nil {
		renderAppError(w, r, apperrors.NewStorage("guardar formulario", err))
		return
	}
	render.JSON(w, r, formCreatedResponse{ID: id})
}
