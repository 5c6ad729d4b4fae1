/*
 * @module api/controllers/report_controller_test
 * @description Pruebas HTTP de los controladores de reportes y PDFs sobre los
 *              fakes en memoria: códigos de estado, formato de error y Allow
 * @architecture Capa de pruebas
 * @stateFlow preparación -> petición -> verificación de respuesta
 * @dependencies testing, net/http/httptest, stretchr/testify
 */

package controllers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qa-report-service/service/report"
	"qa-report-service/service/storage"
	"qa-report-service/testutil"
)

// newTestRouter monta los controladores de reportes sobre un router real para
// que los parámetros de ruta y los 405 se comporten como en producción.
func newTestRouter() (*chi.Mux, *storage.MemoryStore, *storage.MemoryBlobStore) {
	store := storage.NewMemoryStore()
	blobs := storage.NewMemoryBlobStore()
	svc := report.New(store, blobs, nil)

	reportController := NewReportController(svc)
	pdfController := NewPDFController(svc)

	r := chi.NewRouter()
	r.Route("/reports", func(r chi.Router) {
		r.MethodNotAllowed(MethodNotAllowed(http.MethodGet, http.MethodPost))
		r.Get("/", reportController.List)
		r.Post("/", reportController.Create)
		r.Post("/clear", reportController.Clear)
		r.Get("/pdfs", pdfController.List)
		r.Route("/{id}", func(r chi.Router) {
			r.MethodNotAllowed(MethodNotAllowed(http.MethodGet, http.MethodPut, http.MethodDelete))
			r.Get("/", reportController.Get)
			r.Put("/", reportController.Update)
			r.Delete("/", reportController.Delete)
			r.Post("/pdf", pdfController.Attach)
			r.Get("/pdf-url", pdfController.URL)
		})
	})
	return r, store, blobs
}

// TestCreateReportHTTP verifica la ingesta feliz: 201 con mensaje e id.
func TestCreateReportHTTP(t *testing.T) {
	router, store, _ := newTestRouter()

	req := testutil.NewJSONRequest(t, http.MethodPost, "/reports", testutil.ValidReport())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp MessageResponse
	testutil.DecodeJSON(t, w, &resp)
	assert.Equal(t, "Reporte guardado exitosamente", resp.Message)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, 1, store.Len())
}

// TestCreateReportJSONInvalido verifica el 400 con formato de error uniforme.
func TestCreateReportJSONInvalido(t *testing.T) {
	router, _, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/reports", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	testutil.DecodeJSON(t, w, &resp)
	assert.NotEmpty(t, resp.Error)
}

// TestListReportsHTTP verifica el contrato {items, nextCursor}.
func TestListReportsHTTP(t *testing.T) {
	router, _, _ := newTestRouter()

	create := testutil.NewJSONRequest(t, http.MethodPost, "/reports", testutil.ValidReport())
	router.ServeHTTP(httptest.NewRecorder(), create)

	req := httptest.NewRequest(http.MethodGet, "/reports?status=all&limit=10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Items      []map[string]interface{} `json:"items"`
		NextCursor *string                  `json:"nextCursor"`
	}
	testutil.DecodeJSON(t, w, &resp)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "approved", resp.Items[0]["status"])
	assert.NotNil(t, resp.NextCursor)
}

// TestGetReportHTTP verifica lectura puntual y 404 con {error}.
func TestGetReportHTTP(t *testing.T) {
	router, store, _ := newTestRouter()
	store.Seed("r1", testutil.ValidReport())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/r1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/no-existe", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	var resp ErrorResponse
	testutil.DecodeJSON(t, w, &resp)
	assert.NotEmpty(t, resp.Error)
}

// TestUpdateYDeleteHTTP verifica los 204 de parche y borrado.
func TestUpdateYDeleteHTTP(t *testing.T) {
	router, store, _ := newTestRouter()
	store.Seed("r1", testutil.ValidReport())

	req := testutil.NewJSONRequest(t, http.MethodPut, "/reports/r1", map[string]interface{}{"hasPdf": true})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/reports/r1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, store.Len())
}

// TestMethodNotAllowedHTTP verifica el 405 con cabecera Allow.
func TestMethodNotAllowedHTTP(t *testing.T) {
	router, _, _ := newTestRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/reports/r1", nil))

	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "GET, PUT, DELETE", w.Header().Get("Allow"))

	var resp ErrorResponse
	testutil.DecodeJSON(t, w, &resp)
	assert.NotEmpty(t, resp.Error)
}

// TestAttachPDFHTTP verifica la subida: 201 con ruta y URL firmada.
func TestAttachPDFHTTP(t *testing.T) {
	router, store, blobs := newTestRouter()
	store.Seed("r1", testutil.ValidReport())

	body := map[string]interface{}{
		"pdfBase64": base64.StdEncoding.EncodeToString([]byte("%PDF-1.4")),
		"fileName":  "informe.pdf",
		"area":      "Empaque",
		"lot":       "L-4821",
	}
	req := testutil.NewJSONRequest(t, http.MethodPost, "/reports/r1/pdf", body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		OK            bool   `json:"ok"`
		Path          string `json:"path"`
		SignedReadURL string `json:"signedReadUrl"`
	}
	testutil.DecodeJSON(t, w, &resp)
	assert.True(t, resp.OK)
	assert.True(t, blobs.Has(resp.Path))
	assert.NotEmpty(t, resp.SignedReadURL)
}

// TestAttachPDFSinBase64 verifica el 400 por campo requerido ausente.
func TestAttachPDFSinBase64(t *testing.T) {
	router, store, _ := newTestRouter()
	store.Seed("r1", testutil.ValidReport())

	req := testutil.NewJSONRequest(t, http.MethodPost, "/reports/r1/pdf", map[string]interface{}{"fileName": "a.pdf"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	testutil.DecodeJSON(t, w, &resp)
	assert.Equal(t, "pdfBase64 is required", resp.Error)
}

// TestPDFURLHTTP verifica la URL firmada de lectura y el 400 sin pdfPath.
func TestPDFURLHTTP(t *testing.T) {
	router, store, _ := newTestRouter()
	store.Seed("con", testutil.ValidReport(testutil.WithField("payload",
		map[string]interface{}{"pdfPath": "reports/2026/03/con/a.pdf"})))
	store.Seed("sin", testutil.ValidReport())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/con/pdf-url", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	testutil.DecodeJSON(t, w, &resp)
	assert.Contains(t, resp["url"], "a.pdf")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/sin/pdf-url", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestListPDFsHTTP verifica el listado de reportes con PDF.
func TestListPDFsHTTP(t *testing.T) {
	router, store, _ := newTestRouter()
	store.Seed("r1", testutil.ValidReport(
		testutil.WithField("hasPdf", true),
		testutil.WithField("createdAt", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
	))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/pdfs", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Items []json.RawMessage `json:"items"`
	}
	testutil.DecodeJSON(t, w, &resp)
	assert.Len(t, resp.Items, 1)
}

// TestClearHTTP verifica el vaciado administrativo.
func TestClearHTTP(t *testing.T) {
	router, store, _ := newTestRouter()
	store.Seed("r1", testutil.ValidReport())
	store.Seed("r2", testutil.ValidReport())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/reports/clear", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, store.Len())
}
