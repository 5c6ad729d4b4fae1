/*
 * @module service/storage/docstore
 * @description Abstracción del almacén de documentos sin esquema: alta, lectura,
 *              consulta con filtro/orden/cursor, merge parcial, borrado y barrido
 * @architecture Capa de almacenamiento - interfaz de colaborador externo
 * @stateFlow Servicio -> DocumentStore -> Firestore (o fake en memoria)
 * @rules Los documentos son árboles map/slice/hoja; time.Time es la hoja opaca
 *        de timestamp nativo. ErrNotFound distingue lectura de id inexistente
 * @dependencies google.golang.org/grpc/status
 * @refs service/report, service/analytics
 */

package storage

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrNotFound se devuelve cuando el documento pedido no existe.
var ErrNotFound = errors.New("documento no encontrado")

// Document es un documento persistido junto con su id generado por el almacén.
type Document struct {
	ID   string
	Data map[string]interface{}
}

// Filter es una condición de consulta sobre una ruta punteada.
// Op admite "==" y ">=".
type Filter struct {
	Path  string
	Op    string
	Value interface{}
}

// Query describe una consulta con filtros, orden, límite y cursor start-after.
// StartAfter se interpreta respecto al campo OrderBy.
type Query struct {
	Filters    []Filter
	OrderBy    string
	Desc       bool
	Limit      int
	StartAfter interface{}
}

// DocumentStore es el contrato mínimo que este núcleo consume del almacén de
// documentos. Las implementaciones no deben asumir forma alguna del documento.
type DocumentStore interface {
	// Add persiste un documento nuevo y devuelve el id generado.
	Add(ctx context.Context, data map[string]interface{}) (string, error)
	// Get devuelve el documento por id, o ErrNotFound.
	Get(ctx context.Context, id string) (map[string]interface{}, error)
	// Query ejecuta la consulta y devuelve los documentos en orden.
	Query(ctx context.Context, q Query) ([]Document, error)
	// Merge aplica un parche con semántica de merge campo a campo.
	Merge(ctx context.Context, id string, patch map[string]interface{}) error
	// Delete elimina el documento; borrar un id inexistente no es error.
	Delete(ctx context.Context, id string) error
	// DeleteAll barre la colección en páginas de batchSize documentos y
	// devuelve cuántos eliminó. No es atómico.
	DeleteAll(ctx context.Context, batchSize int) (int, error)
}

// IsFailedPrecondition reporta si err es el fallo de precondición del almacén
// (típicamente un índice compuesto inexistente para la consulta pedida).
func IsFailedPrecondition(err error) bool {
	if err == nil {
		return false
	}
	if status.Code(err) == codes.FailedPrecondition {
		return true
	}
	return strings.Contains(err.Error(), "FAILED_PRECONDITION")
}

// ValueAt resuelve una ruta punteada dentro de un documento. Devuelve nil si
// algún segmento no existe o no es un mapa.
func ValueAt(doc map[string]interface{}, path string) interface{} {
	cur := interface{}(doc)
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur, ok = m[seg]
		if !ok {
			return nil
		}
	}
	return cur
}
