/*
 * @module service/apperrors
 * @description Taxonomía de errores de la aplicación: validación, no encontrado y
 *              fallo de almacenamiento, con el mensaje original preservado
 * @architecture Capa transversal
 * @rules Los controladores traducen esta taxonomía a códigos HTTP; nunca se
 *        traga un error de almacenamiento en silencio
 * @dependencies errors, fmt
 * @refs api/controllers/response.go
 */

package apperrors

import (
	"errors"
	"fmt"
)

// ValidationError indica entrada requerida ausente o malformada. HTTP 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidation crea un error de validación con el mensaje dado.
func NewValidation(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError indica que el recurso referenciado no existe. HTTP 404.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s no encontrado", e.Resource)
	}
	return fmt.Sprintf("%s %s no encontrado", e.Resource, e.ID)
}

// NewNotFound crea un error de recurso no encontrado.
func NewNotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// StorageError envuelve un fallo del almacén de documentos o de blobs,
// conservando el mensaje original para diagnóstico. HTTP 500.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("almacenamiento: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorage envuelve err como fallo de almacenamiento en la operación op.
func NewStorage(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// IsValidation reporta si err pertenece a la categoría de validación.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reporta si err pertenece a la categoría no-encontrado.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
