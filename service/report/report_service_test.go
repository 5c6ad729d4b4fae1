/*
 * @module service/report/report_service_test
 * @description Pruebas del repositorio de reportes sobre los fakes en memoria:
 *              pipeline de ingesta, paginación, parche, adjuntos y fallback
 * @architecture Capa de pruebas
 * @dependencies testing, stretchr/testify, qa-report-service/testutil
 */

package report

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qa-report-service/service/apperrors"
	"qa-report-service/service/meta"
	"qa-report-service/service/storage"
	"qa-report-service/testutil"
)

func newTestService() (*Service, *storage.MemoryStore, *storage.MemoryBlobStore) {
	store := storage.NewMemoryStore()
	blobs := storage.NewMemoryBlobStore()
	return New(store, blobs, nil), store, blobs
}

// rawReport produce un payload como llega por HTTP: fechas en cadena ISO.
func rawReport(code string, fecha string) map[string]interface{} {
	doc := testutil.ValidReport(testutil.WithField("id", code))
	doc["datos_inspeccion"].(map[string]interface{})["fecha"] = fecha
	doc["elaboracion"].(map[string]interface{})["fecha_elaboracion"] = fecha
	return doc
}

// TestCreatePersisteNormalizado verifica la forma persistida tras la ingesta.
func TestCreatePersisteNormalizado(t *testing.T) {
	svc, store, _ := newTestService()

	raw := rawReport("INS-2026-0100", "2026-03-10")
	raw["observaciones"] = ""

	id, err := svc.Create(context.Background(), raw)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := store.Get(context.Background(), id)
	require.NoError(t, err)

	// Fecha whitelisteada convertida a timestamp nativo
	assert.IsType(t, time.Time{}, storage.ValueAt(doc, "datos_inspeccion.fecha"))
	// Cadena vacía convertida a null
	assert.Nil(t, doc["observaciones"])
	// Estado derivado y metadatos de ingesta presentes
	assert.Equal(t, meta.EstadoAprobado, doc["estado"])
	assert.Equal(t, true, storage.ValueAt(doc, "metadata.completado"))
	assert.Equal(t, false, doc["hasPdf"])
	assert.IsType(t, time.Time{}, doc["createdAt"])
	assert.NotNil(t, doc["payload"])
}

// TestCreateCreatedAtDesdeFechaInspeccion verifica la preferencia de createdAt.
func TestCreateCreatedAtDesdeFechaInspeccion(t *testing.T) {
	svc, store, _ := newTestService()

	id, err := svc.Create(context.Background(), rawReport("INS-2026-0101", "2026-02-01"))
	require.NoError(t, err)

	doc, _ := store.Get(context.Background(), id)
	created := doc["createdAt"].(time.Time)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), created.UTC())
}

// TestListPaginaExhaustiva verifica que seguir cursores recorre todo sin
// repetir y respetando el orden descendente.
func TestListPaginaExhaustiva(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	for d := 1; d <= 7; d++ {
		_, err := svc.Create(ctx, rawReport(
			fmt.Sprintf("INS-2026-%04d", d),
			fmt.Sprintf("2026-03-%02d", d),
		))
		require.NoError(t, err)
	}

	seen := make(map[string]bool)
	var cursor string
	var lastDate *time.Time
	for {
		page, err := svc.List(ctx, "all", 3, cursor)
		require.NoError(t, err)
		if len(page.Items) == 0 {
			break
		}
		for _, item := range page.Items {
			assert.False(t, seen[item.ID], "item repetido entre páginas")
			seen[item.ID] = true
			require.NotNil(t, item.Date)
			if lastDate != nil {
				assert.False(t, item.Date.After(*lastDate), "el orden debe ser descendente")
			}
			lastDate = item.Date
		}
		if page.NextCursor == nil {
			break
		}
		cursor = *page.NextCursor
	}
	assert.Len(t, seen, 7)
}

// TestListFiltraPorEstado verifica el filtro con vocabulario externo.
func TestListFiltraPorEstado(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, rawReport("INS-2026-0001", "2026-03-01"))
	require.NoError(t, err)

	rejected := rawReport("INS-2026-0002", "2026-03-02")
	testutil.WithNonConformity()(rejected)
	_, err = svc.Create(ctx, rejected)
	require.NoError(t, err)

	page, err := svc.List(ctx, "approved", 10, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "approved", page.Items[0].Status)

	page, err = svc.List(ctx, "rejected", 10, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "rejected", page.Items[0].Status)
}

// TestListCursorInvalido verifica el rechazo de tokens corruptos.
func TestListCursorInvalido(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.List(context.Background(), "all", 10, "{no-es-json")
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.List(context.Background(), "all", 10, `{"fechaISO":"ayer"}`)
	assert.True(t, apperrors.IsValidation(err))
}

// TestGetInyectaID verifica la lectura puntual.
func TestGetInyectaID(t *testing.T) {
	svc, store, _ := newTestService()
	store.Seed("r1", testutil.ValidReport())

	doc, err := svc.Get(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", doc["_id"])

	_, err = svc.Get(context.Background(), "no-existe")
	assert.True(t, apperrors.IsNotFound(err))
}

// TestUpdateAllowList verifica que el parche sólo toca campos permitidos.
func TestUpdateAllowList(t *testing.T) {
	svc, store, _ := newTestService()
	store.Seed("r1", testutil.ValidReport())

	err := svc.Update(context.Background(), "r1", map[string]interface{}{
		"estado":           meta.EstadoRechazado,
		"hasPdf":           true,
		"datos_inspeccion": map[string]interface{}{"area": "Hackeada"},
		"defectos":         "basura",
	})
	require.NoError(t, err)

	doc, _ := store.Get(context.Background(), "r1")
	assert.Equal(t, meta.EstadoRechazado, doc["estado"])
	assert.Equal(t, true, doc["hasPdf"])
	// Los campos fuera de la allow-list quedan intactos
	assert.Equal(t, "Empaque", storage.ValueAt(doc, "datos_inspeccion.area"))
	assert.IsType(t, map[string]interface{}{}, doc["defectos"])
}

// TestUpdateNormalizaCreatedAt verifica que el parche pasa por el normalizador
// de fechas antes de persistirse.
func TestUpdateNormalizaCreatedAt(t *testing.T) {
	svc, store, _ := newTestService()
	store.Seed("r1", testutil.ValidReport())

	err := svc.Update(context.Background(), "r1", map[string]interface{}{
		"createdAt": "2026-04-01T10:00:00Z",
	})
	require.NoError(t, err)

	doc, _ := store.Get(context.Background(), "r1")
	assert.IsType(t, time.Time{}, doc["createdAt"])
}

// TestDeleteIdempotente verifica el borrado y su idempotencia.
func TestDeleteIdempotente(t *testing.T) {
	svc, store, _ := newTestService()
	store.Seed("r1", testutil.ValidReport())

	require.NoError(t, svc.Delete(context.Background(), "r1"))
	assert.Equal(t, 0, store.Len())
	// Borrar de nuevo no es error
	require.NoError(t, svc.Delete(context.Background(), "r1"))
}

// TestClear verifica el barrido completo de la colección.
func TestClear(t *testing.T) {
	svc, store, _ := newTestService()
	for i := 0; i < 5; i++ {
		store.Seed(fmt.Sprintf("r%d", i), testutil.ValidReport())
	}

	n, err := svc.Clear(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, 0, store.Len())
}

// TestAttachPDF verifica la subida: ruta determinista, metadatos y marca.
func TestAttachPDF(t *testing.T) {
	svc, store, blobs := newTestService()
	fixed := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	store.Seed("r1", testutil.ValidReport())

	att, err := svc.AttachPDF(context.Background(), "r1", []byte("%PDF-1.4"), "Informe Final.PDF", "Empaque", "L-4821", "")
	require.NoError(t, err)

	assert.Equal(t, "reports/2026/03/r1/informe-final.pdf", att.Path)
	assert.NotEmpty(t, att.SignedReadURL)
	assert.True(t, blobs.Has(att.Path))
	assert.Equal(t, "application/pdf", blobs.ContentType(att.Path))

	doc, _ := store.Get(context.Background(), "r1")
	assert.Equal(t, true, doc["hasPdf"])
	assert.Equal(t, att.Path, storage.ValueAt(doc, "payload.pdfPath"))
}

// TestAttachPDFErrores verifica contenido vacío y reporte inexistente.
func TestAttachPDFErrores(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.AttachPDF(context.Background(), "r1", nil, "a.pdf", "", "", "")
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.AttachPDF(context.Background(), "no-existe", []byte("x"), "a.pdf", "", "", "")
	assert.True(t, apperrors.IsNotFound(err))
}

// TestPDFURL verifica la firma de lectura y sus errores.
func TestPDFURL(t *testing.T) {
	svc, store, _ := newTestService()
	store.Seed("con-pdf", testutil.ValidReport(testutil.WithField("payload",
		map[string]interface{}{"pdfPath": "reports/2026/03/con-pdf/a.pdf"})))
	store.Seed("sin-pdf", testutil.ValidReport())

	url, err := svc.PDFURL(context.Background(), "con-pdf")
	require.NoError(t, err)
	assert.Contains(t, url, "reports/2026/03/con-pdf/a.pdf")

	_, err = svc.PDFURL(context.Background(), "sin-pdf")
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.PDFURL(context.Background(), "no-existe")
	assert.True(t, apperrors.IsNotFound(err))
}

// TestListPDFs verifica el listado ordenado con cursor.
func TestListPDFs(t *testing.T) {
	svc, store, _ := newTestService()
	for d := 1; d <= 4; d++ {
		store.Seed(fmt.Sprintf("r%d", d), testutil.ValidReport(
			testutil.WithField("hasPdf", true),
			testutil.WithField("createdAt", time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)),
		))
	}
	store.Seed("sin", testutil.ValidReport(testutil.WithField("hasPdf", false)))

	page, err := svc.ListPDFs(context.Background(), 3, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "r4", page.Items[0].ID)
	require.NotNil(t, page.NextCursor)

	page, err = svc.ListPDFs(context.Background(), 3, *page.NextCursor)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "r1", page.Items[0].ID)
}

// TestListPDFsFallback verifica la degradación sin índice compuesto: orden en
// memoria y sin cursor de continuación.
func TestListPDFsFallback(t *testing.T) {
	svc, store, _ := newTestService()
	store.FailCompound = true
	for d := 1; d <= 3; d++ {
		store.Seed(fmt.Sprintf("r%d", d), testutil.ValidReport(
			testutil.WithField("hasPdf", true),
			testutil.WithField("createdAt", time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)),
		))
	}

	page, err := svc.ListPDFs(context.Background(), 2, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "r3", page.Items[0].ID)
	assert.Equal(t, "r2", page.Items[1].ID)
	assert.Nil(t, page.NextCursor)
}

// TestSafeName verifica el saneo de nombres de archivo.
func TestSafeName(t *testing.T) {
	assert.Equal(t, "informe-final.pdf", safeName("Informe  Final.PDF"))
	assert.Equal(t, "plan-v2-.pdf", safeName("Plan v2!.pdf"))
	assert.Equal(t, "a-b", safeName("--a///b--"))
	assert.Equal(t, "", safeName("???"))
}
