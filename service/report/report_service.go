/*
 * @module service/report/report_service
 * @description Repositorio de reportes de inspección: pipeline de ingesta
 *              (saneo -> fechas -> defectos -> estado), listado con cursor,
 *              operaciones puntuales, parche allow-listed y adjuntos PDF
 * @architecture Capa de servicio - repositorio de dominio
 * @stateFlow payload crudo -> normalización -> evaluación -> persistencia;
 *            lecturas proyectadas para el dashboard
 * @rules El estado nunca es autoritativo del cliente tras la evaluación; los
 *        fallos del almacén se reenvuelven con el mensaje original
 * @dependencies qa-report-service/service/normalize, service/storage, spf13/cast
 * @refs api/controllers/report_controller.go, api/controllers/pdf_controller.go
 */

package report

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"

	"qa-report-service/service/apperrors"
	"qa-report-service/service/meta"
	"qa-report-service/service/metrics"
	"qa-report-service/service/models"
	"qa-report-service/service/normalize"
	"qa-report-service/service/storage"
	"qa-report-service/service/urlcache"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	attachSignTTL = time.Hour
	readSignTTL   = 20 * time.Minute
	// El TTL de caché queda por debajo de la expiración de la firma
	readCacheTTL = 15 * time.Minute

	clearBatchSize = 500
)

// Service es el repositorio de reportes. Se construye una vez en el arranque
// con sus colaboradores inyectados.
type Service struct {
	store storage.DocumentStore
	blobs storage.BlobStore
	cache urlcache.Cache
	now   func() time.Time
}

// New crea el repositorio con el almacén de documentos, el de blobs y la
// caché de URLs firmadas.
func New(store storage.DocumentStore, blobs storage.BlobStore, cache urlcache.Cache) *Service {
	if cache == nil {
		cache = urlcache.Noop{}
	}
	return &Service{store: store, blobs: blobs, cache: cache, now: time.Now}
}

// reportCursor es el token opaco de paginación del listado. El nombre del
// campo actúa como versión del token: si cambia la clave de orden, cambia el
// nombre.
type reportCursor struct {
	FechaISO string `json:"fechaISO"`
}

type pdfCursor struct {
	CreatedAtISO string `json:"createdAtISO"`
}

// Create ingiere un payload crudo: lo pasa por el pipeline completo de
// normalización y evaluación, inyecta createdAt/hasPdf/payload y lo persiste.
// Devuelve el id generado por el almacén.
func (s *Service) Create(ctx context.Context, raw map[string]interface{}) (string, error) {
	cleaned, _ := normalize.DropAbsent(raw).(map[string]interface{})
	if cleaned == nil {
		cleaned = make(map[string]interface{})
	}
	cleaned = normalize.ReplaceEmptyStrings(cleaned).(map[string]interface{})
	cleaned = normalize.NormalizeDates(cleaned)
	if def, ok := cleaned["defectos"]; ok {
		cleaned["defectos"] = normalize.NormalizeDefects(def)
	}
	cleaned = normalize.EvaluateStatus(cleaned)

	// createdAt para el dashboard: preferimos la fecha de inspección ya
	// normalizada; si no, se respeta un createdAt previo; si no, ahora.
	if fecha, ok := storage.ValueAt(cleaned, "datos_inspeccion.fecha").(time.Time); ok {
		cleaned["createdAt"] = fecha
	} else if _, ok := cleaned["createdAt"].(time.Time); !ok {
		cleaned["createdAt"] = s.now()
	}

	if explicit, ok := raw["hasPdf"].(bool); ok {
		cleaned["hasPdf"] = explicit
	} else {
		evidencias, _ := cleaned["evidencias"].([]interface{})
		cleaned["hasPdf"] = len(evidencias) > 0
	}

	if _, ok := cleaned["payload"].(map[string]interface{}); !ok {
		cleaned["payload"] = map[string]interface{}{}
	}

	id, err := s.store.Add(ctx, cleaned)
	if err != nil {
		return "", apperrors.NewStorage("crear reporte", err)
	}
	metrics.ReportsCreated.WithLabelValues(cast.ToString(cleaned["estado"])).Inc()
	return id, nil
}

// List devuelve una página de reportes filtrada por estado y ordenada por
// fecha de elaboración descendente. El cursor es opaco para el llamador.
func (s *Service) List(ctx context.Context, status string, limit int, cursor string) (*models.ReportPage, error) {
	if status == "" {
		status = "all"
	}
	limit = clampLimit(limit)

	q := storage.Query{
		OrderBy: "elaboracion.fecha_elaboracion",
		Desc:    true,
		Limit:   limit,
	}
	if status != "all" {
		q.Filters = append(q.Filters, storage.Filter{Path: "estado", Op: "==", Value: meta.StatusToES(status)})
	}
	if cursor != "" {
		var c reportCursor
		if err := json.Unmarshal([]byte(cursor), &c); err != nil {
			return nil, apperrors.NewValidation("cursor inválido")
		}
		after, err := time.Parse(time.RFC3339, c.FechaISO)
		if err != nil {
			return nil, apperrors.NewValidation("cursor inválido")
		}
		q.StartAfter = after
	}

	docs, err := s.store.Query(ctx, q)
	if err != nil {
		return nil, apperrors.NewStorage("listar reportes", err)
	}

	page := &models.ReportPage{Items: make([]models.ReportListItem, 0, len(docs))}
	for _, d := range docs {
		page.Items = append(page.Items, projectListItem(d))
	}
	if len(docs) > 0 {
		last := docs[len(docs)-1].Data
		lastDate := time.Unix(0, 0).UTC()
		if t, ok := storage.ValueAt(last, "elaboracion.fecha_elaboracion").(time.Time); ok {
			lastDate = t
		}
		token, _ := json.Marshal(reportCursor{FechaISO: lastDate.UTC().Format(time.RFC3339)})
		next := string(token)
		page.NextCursor = &next
	}
	return page, nil
}

// Get devuelve el documento completo con su id inyectado.
func (s *Service) Get(ctx context.Context, id string) (map[string]interface{}, error) {
	data, err := s.store.Get(ctx, id)
	if err != nil {
		if err == storage.ErrNotFound {
			return nil, apperrors.NewNotFound("reporte", id)
		}
		return nil, apperrors.NewStorage("leer reporte", err)
	}
	out := make(map[string]interface{}, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	out["_id"] = id
	return out, nil
}

// Update aplica un parche filtrado a la allow-list con semántica de merge.
// Las fechas whitelisteadas del parche se normalizan para no romper el
// invariante de timestamps persistidos.
func (s *Service) Update(ctx context.Context, id string, patch map[string]interface{}) error {
	filtered := make(map[string]interface{})
	for k, v := range patch {
		if meta.IsUpdatable(k) {
			filtered[k] = v
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	filtered = normalize.NormalizeDates(filtered)
	if err := s.store.Merge(ctx, id, filtered); err != nil {
		return apperrors.NewStorage("actualizar reporte", err)
	}
	return nil
}

// Delete elimina un reporte. Borrar un id inexistente no es error.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return apperrors.NewStorage("eliminar reporte", err)
	}
	return nil
}

// Clear barre la colección completa en lotes. Uso administrativo.
func (s *Service) Clear(ctx context.Context) (int, error) {
	n, err := s.store.DeleteAll(ctx, clearBatchSize)
	if err != nil {
		return n, apperrors.NewStorage("vaciar colección", err)
	}
	return n, nil
}

// AttachPDF registra el binario de un reporte: verifica que exista, deriva la
// ruta determinista, delega los bytes al almacén de blobs y marca el
// documento. Un reintento tras fallo parcial sobreescribe la misma ruta.
func (s *Service) AttachPDF(ctx context.Context, id string, content []byte, fileName, area, lot, contentType string) (*models.PDFAttachment, error) {
	if len(content) == 0 {
		return nil, apperrors.NewValidation("pdfBase64 is required")
	}
	data, err := s.store.Get(ctx, id)
	if err != nil {
		if err == storage.ErrNotFound {
			return nil, apperrors.NewNotFound("reporte", id)
		}
		return nil, apperrors.NewStorage("leer reporte", err)
	}

	now := s.now()
	code := safeName(cast.ToString(data["id"]))
	if code == "" {
		code = safeName(id)
	}
	base := safeName(fileName)
	if base == "" {
		base = safeName(fmt.Sprintf("%s-%d.pdf", code, now.UnixMilli()))
	}
	path := fmt.Sprintf("reports/%d/%02d/%s/%s", now.Year(), int(now.Month()), id, base)

	if contentType == "" {
		contentType = "application/pdf"
	}
	err = s.blobs.Write(ctx, path, content, contentType, map[string]string{
		"reportId":      id,
		"area":          area,
		"lot":           lot,
		"uploadedAtISO": now.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, apperrors.NewStorage("subir pdf", err)
	}

	signed, err := s.blobs.SignedURL(path, attachSignTTL)
	if err != nil {
		return nil, apperrors.NewStorage("firmar url de pdf", err)
	}

	patch := map[string]interface{}{
		"hasPdf":  true,
		"payload": map[string]interface{}{"pdfPath": path},
	}
	if err := s.store.Merge(ctx, id, patch); err != nil {
		return nil, apperrors.NewStorage("marcar pdf en reporte", err)
	}
	return &models.PDFAttachment{Path: path, SignedReadURL: signed}, nil
}

// PDFURL produce una URL firmada de lectura (~20 min) para el PDF registrado
// de un reporte, con caché TTL por ruta.
func (s *Service) PDFURL(ctx context.Context, id string) (string, error) {
	data, err := s.store.Get(ctx, id)
	if err != nil {
		if err == storage.ErrNotFound {
			return "", apperrors.NewNotFound("reporte", id)
		}
		return "", apperrors.NewStorage("leer reporte", err)
	}
	path, _ := storage.ValueAt(data, "payload.pdfPath").(string)
	if path == "" {
		return "", apperrors.NewValidation("este reporte no tiene pdfPath")
	}

	key := "pdfurl:" + path
	if url, ok := s.cache.Get(ctx, key); ok {
		return url, nil
	}
	url, err := s.blobs.SignedURL(path, readSignTTL)
	if err != nil {
		return "", apperrors.NewStorage("firmar url de pdf", err)
	}
	s.cache.Set(ctx, key, url, readCacheTTL)
	return url, nil
}

// ListPDFs lista los reportes con PDF ordenados por createdAt descendente.
// Si el almacén rechaza la consulta compuesta por falta de índice, cae a una
// lectura sin orden con ordenación en memoria y sin cursor de continuación.
func (s *Service) ListPDFs(ctx context.Context, limit int, cursor string) (*models.PDFPage, error) {
	limit = clampLimit(limit)

	q := storage.Query{
		Filters: []storage.Filter{{Path: "hasPdf", Op: "==", Value: true}},
		OrderBy: "createdAt",
		Desc:    true,
		Limit:   limit,
	}
	if cursor != "" {
		var c pdfCursor
		if err := json.Unmarshal([]byte(cursor), &c); err != nil {
			return nil, apperrors.NewValidation("cursor inválido")
		}
		after, err := time.Parse(time.RFC3339, c.CreatedAtISO)
		if err != nil {
			return nil, apperrors.NewValidation("cursor inválido")
		}
		q.StartAfter = after
	}

	docs, err := s.store.Query(ctx, q)
	if err != nil {
		if !storage.IsFailedPrecondition(err) {
			return nil, apperrors.NewStorage("listar pdfs", err)
		}
		return s.listPDFsFallback(ctx, limit)
	}

	page := &models.PDFPage{Items: make([]models.PDFItem, 0, len(docs))}
	for _, d := range docs {
		page.Items = append(page.Items, projectPDFItem(d))
	}
	if len(docs) > 0 {
		last := docs[len(docs)-1].Data
		lastDate := time.Unix(0, 0).UTC()
		if t, ok := last["createdAt"].(time.Time); ok {
			lastDate = t
		}
		token, _ := json.Marshal(pdfCursor{CreatedAtISO: lastDate.UTC().Format(time.RFC3339)})
		next := string(token)
		page.NextCursor = &next
	}
	return page, nil
}

// listPDFsFallback: lectura sin orden, ordenación en memoria, sin cursor.
func (s *Service) listPDFsFallback(ctx context.Context, limit int) (*models.PDFPage, error) {
	docs, err := s.store.Query(ctx, storage.Query{
		Filters: []storage.Filter{{Path: "hasPdf", Op: "==", Value: true}},
	})
	if err != nil {
		return nil, apperrors.NewStorage("listar pdfs (fallback)", err)
	}

	items := make([]models.PDFItem, 0, len(docs))
	for _, d := range docs {
		items = append(items, projectPDFItem(d))
	}
	sort.SliceStable(items, func(i, j int) bool {
		ti, tj := int64(0), int64(0)
		if items[i].CreatedAt != nil {
			ti = items[i].CreatedAt.UnixMilli()
		}
		if items[j].CreatedAt != nil {
			tj = items[j].CreatedAt.UnixMilli()
		}
		return ti > tj
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return &models.PDFPage{Items: items, NextCursor: nil}, nil
}

func projectListItem(d storage.Document) models.ReportListItem {
	data := d.Data
	item := models.ReportListItem{
		ID:           d.ID,
		Product:      cast.ToString(storage.ValueAt(data, "datos_inspeccion.producto")),
		Lot:          cast.ToString(storage.ValueAt(data, "datos_inspeccion.lote")),
		Status:       meta.StatusToEN(cast.ToString(data["estado"])),
		Area:         cast.ToString(storage.ValueAt(data, "datos_inspeccion.area")),
		ElaboradoPor: cast.ToString(storage.ValueAt(data, "elaboracion.elaborado_por")),
		Completado:   storage.ValueAt(data, "metadata.completado") == true,
	}
	// El campo interno "id" es el código humano INS-20xx-xxxx, no el id del
	// documento
	if code := cast.ToString(data["id"]); code != "" {
		item.Code = &code
	}
	if t := asTime(storage.ValueAt(data, "elaboracion.fecha_elaboracion")); t != nil {
		item.Date = t
	} else {
		item.Date = asTime(storage.ValueAt(data, "datos_inspeccion.fecha"))
	}
	if n, err := cast.ToFloat64E(storage.ValueAt(data, "defectos.total_general")); err == nil {
		item.TotalDefectos = int(n)
	}
	return item
}

func projectPDFItem(d storage.Document) models.PDFItem {
	data := d.Data
	item := models.PDFItem{
		ID:     d.ID,
		Estado: meta.EstadoPendiente,
		Area:   cast.ToString(storage.ValueAt(data, "datos_inspeccion.area")),
		Lot:    cast.ToString(storage.ValueAt(data, "datos_inspeccion.lote")),
	}
	if code := cast.ToString(data["id"]); code != "" {
		item.Code = &code
	}
	item.CreatedAt = asTime(data["createdAt"])
	if estado := cast.ToString(data["estado"]); estado != "" {
		item.Estado = estado
	}
	if path, ok := storage.ValueAt(data, "payload.pdfPath").(string); ok && path != "" {
		item.PDFPath = &path
	}
	return item
}

func asTime(v interface{}) *time.Time {
	switch t := v.(type) {
	case time.Time:
		return &t
	case string:
		if d, err := time.Parse(time.RFC3339, t); err == nil {
			return &d
		}
		return nil
	default:
		return nil
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

var unsafeNameRe = regexp.MustCompile(`[^\w.-]+`)
var dashRunRe = regexp.MustCompile(`-+`)

// safeName normaliza un nombre de archivo para usarlo en la ruta del blob.
func safeName(s string) string {
	s = strings.ToLower(s)
	s = unsafeNameRe.ReplaceAllString(s, "-")
	s = dashRunRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
