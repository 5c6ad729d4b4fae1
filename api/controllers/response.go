/*
 * @module api/controllers/response
 * @description Helpers de respuesta HTTP: formato de error uniforme {error} y
 *              mapeo de la taxonomía de errores del servicio a códigos HTTP
 * @architecture Arquitectura MVC - capa de controladores
 * @rules Los errores de validación son 400, los de recurso inexistente 404 y
 *        los de almacén 500 con el mensaje original
 * @dependencies github.com/go-chi/render
 * @refs service/apperrors
 */

package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"qa-report-service/service/apperrors"
)

// ErrorResponse es el cuerpo uniforme de error de la API.
type ErrorResponse struct {
	Error string `json:"error" example:"cursor inválido"`
}

// MessageResponse es el cuerpo de confirmación con mensaje e id.
type MessageResponse struct {
	Message string `json:"message" example:"Reporte guardado exitosamente"`
	ID      string `json:"id" example:"aB3dE9"`
}

func renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: msg})
}

// renderAppError traduce un error del servicio al código HTTP que le toca.
func renderAppError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case apperrors.IsValidation(err):
		renderError(w, r, http.StatusBadRequest, err.Error())
	case apperrors.IsNotFound(err):
		renderError(w, r, http.StatusNotFound, err.Error())
	default:
		renderError(w, r, http.StatusInternalServerError, err.Error())
	}
}

// MethodNotAllowed produce el manejador 405 de un grupo de rutas, anunciando
// los métodos soportados en la cabecera Allow.
func MethodNotAllowed(allowed ...string) http.HandlerFunc {
	allow := strings.Join(allowed, ", ")
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allow)
		renderError(w, r, http.StatusMethodNotAllowed, "método no permitido")
	}
}
