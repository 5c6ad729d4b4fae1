/*
 * @module service/meta/report
 * @description Metadatos del dominio de reportes de inspección: estados, grupos de
 *              severidad, whitelist de campos de fecha y campos actualizables
 * @architecture Capa de metadatos
 * @rules Definiciones estáticas compartidas por normalización, repositorio y analítica
 * @dependencies ninguna
 * @refs service/normalize, service/report
 */

package meta

// Estados internos de un reporte de inspección.
const (
	EstadoPendiente = "pendiente"
	EstadoAprobado  = "aprobado"
	EstadoRechazado = "rechazado"
)

// Colecciones del almacén de documentos.
const (
	CollectionReports = "reportes"
	CollectionForms   = "forms"
)

// SeverityGroups son los tres grupos de severidad de defectos, en orden de criticidad.
var SeverityGroups = []string{"criticos", "mayores", "menores"}

// DateFields es la whitelist de rutas punteadas cuyos valores se almacenan como
// timestamp nativo. Cualquier otro campo con pinta de fecha pasa sin tocar.
var DateFields = map[string]bool{
	"elaboracion.fecha_elaboracion": true,
	"elaboracion.fecha_revision":    true,
	"elaboracion.fecha_aprobacion":  true,
	"datos_inspeccion.fecha":        true,
	"createdAt":                     true,
}

// UpdatableFields es la allow-list de campos aceptados en una actualización parcial.
var UpdatableFields = []string{"hasPdf", "payload", "estado", "createdAt"}

var statusToES = map[string]string{
	"approved": EstadoAprobado,
	"pending":  EstadoPendiente,
	"rejected": EstadoRechazado,
}

var statusToEN = map[string]string{
	EstadoAprobado:  "approved",
	EstadoPendiente: "pending",
	EstadoRechazado: "rejected",
}

// StatusToES traduce el vocabulario externo (inglés) al interno. Valores
// desconocidos se devuelven tal cual.
func StatusToES(s string) string {
	if es, ok := statusToES[s]; ok {
		return es
	}
	return s
}

// StatusToEN traduce el estado interno al vocabulario externo. Estados
// desconocidos se reportan como "pending".
func StatusToEN(s string) string {
	if en, ok := statusToEN[s]; ok {
		return en
	}
	return "pending"
}

// IsUpdatable indica si un campo está permitido en el parche de actualización.
func IsUpdatable(field string) bool {
	for _, f := range UpdatableFields {
		if f == field {
			return true
		}
	}
	return false
}
