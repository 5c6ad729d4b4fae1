/*
 * @module testutil/test_helper
 * @description Utilidades de prueba: fábrica de documentos de reporte y
 *              helpers HTTP compartidos por los paquetes de test
 * @architecture Infraestructura de pruebas
 * @stateFlow construcción de documento -> mutación por opciones -> aserción
 * @rules Las fábricas devuelven copias frescas: mutar un documento de prueba
 *        nunca afecta a otro test
 * @dependencies net/http/httptest, github.com/stretchr/testify
 * @refs service/report, service/normalize, api/controllers
 */

package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// ReportOption muta un documento de reporte de la fábrica.
type ReportOption func(map[string]interface{})

// ValidReport construye un reporte completo y aprobable: campos requeridos
// presentes, cuestionario todo conforme, firmas de elaboración y sin defectos.
func ValidReport(opts ...ReportOption) map[string]interface{} {
	doc := map[string]interface{}{
		"id": "INS-2026-0001",
		"datos_inspeccion": map[string]interface{}{
			"area":     "Empaque",
			"fecha":    time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			"producto": "Paracetamol 500mg",
			"lote":     "L-4821",
		},
		"elaboracion": map[string]interface{}{
			"elaborado_por":     "R. Salas",
			"revisado_por":      "M. Quispe",
			"aprobado_por":      "J. Torres",
			"fecha_elaboracion": time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			"fecha_revision":    time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
			"fecha_aprobacion":  time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		},
		"cuestionario": []interface{}{
			map[string]interface{}{"pregunta": "¿Empaque íntegro?", "conformidad": true, "no_conformidad": false},
			map[string]interface{}{"pregunta": "¿Rotulado correcto?", "conformidad": true, "no_conformidad": false},
		},
		"defectos": map[string]interface{}{
			"criticos": map[string]interface{}{"aql": "0.065", "items": []interface{}{}},
			"mayores":  map[string]interface{}{"aql": "1.0", "items": []interface{}{}},
			"menores":  map[string]interface{}{"aql": "2.5", "items": []interface{}{}},
		},
	}
	for _, opt := range opts {
		opt(doc)
	}
	return doc
}

// WithDefectItems agrega items de defecto a un grupo de severidad.
func WithDefectItems(group string, items ...map[string]interface{}) ReportOption {
	return func(doc map[string]interface{}) {
		def := doc["defectos"].(map[string]interface{})
		g := def[group].(map[string]interface{})
		raw := make([]interface{}, 0, len(items))
		for _, it := range items {
			raw = append(raw, it)
		}
		g["items"] = raw
	}
}

// WithNonConformity marca la primera entrada del cuestionario como no conforme.
func WithNonConformity() ReportOption {
	return func(doc map[string]interface{}) {
		cuest := doc["cuestionario"].([]interface{})
		e := cuest[0].(map[string]interface{})
		e["conformidad"] = false
		e["no_conformidad"] = true
	}
}

// WithField fija un campo de primer nivel del documento.
func WithField(key string, value interface{}) ReportOption {
	return func(doc map[string]interface{}) {
		doc[key] = value
	}
}

// WithoutField elimina un campo de primer nivel del documento.
func WithoutField(key string) ReportOption {
	return func(doc map[string]interface{}) {
		delete(doc, key)
	}
}

// NewJSONRequest construye una petición HTTP con cuerpo JSON.
func NewJSONRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("serializando cuerpo de prueba: %v", err)
		}
		reqBody = bytes.NewBuffer(raw)
	}
	req := httptest.NewRequest(method, url, reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// DecodeJSON deserializa el cuerpo de la respuesta en dst.
func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	err := json.Unmarshal(w.Body.Bytes(), dst)
	assert.NoError(t, err, "el cuerpo debe ser JSON válido")
}
