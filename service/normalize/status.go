/*
 * @module service/normalize/status
 * @description Regla de negocio final: recalcula totales de defectos, evalúa
 *              completitud (campos requeridos + cuestionario + firmas) y
 *              deriva el estado pendiente/aprobado/rechazado
 * @architecture Capa de normalización - evaluador de negocio
 * @stateFlow documento saneado -> totales -> completitud -> estado
 * @rules Los totales se recalculan siempre desde los items, nunca se confía en
 *        los que vengan del cliente. Un reporte incompleto es pendiente;
 *        sólo uno completo puede aprobarse o rechazarse
 * @dependencies github.com/spf13/cast, strings
 * @refs service/report
 */

package normalize

import (
	"strings"

	"github.com/spf13/cast"

	"qa-report-service/service/meta"
)

// EvaluateStatus escribe los totales de defectos recalculados, la bandera
// metadata.completado y el estado derivado sobre el documento, y lo devuelve.
// Sub-objetos ausentes cuentan como chequeo fallido; nunca hay error.
func EvaluateStatus(doc map[string]interface{}) map[string]interface{} {
	total := recomputeDefectTotals(doc)

	completed := requiredFieldsOK(doc) &&
		questionnaireComplete(doc["cuestionario"]) &&
		signaturesOK(doc)

	estado := meta.EstadoPendiente
	if completed {
		if total == 0 && !hasNonConformity(doc["cuestionario"]) {
			estado = meta.EstadoAprobado
		} else {
			estado = meta.EstadoRechazado
		}
	}

	md, ok := doc["metadata"].(map[string]interface{})
	if !ok {
		md = make(map[string]interface{})
		doc["metadata"] = md
	}
	md["completado"] = completed
	doc["estado"] = estado
	return doc
}

// recomputeDefectTotals escribe total_defectos por grupo y total_general desde
// los items (nil cuenta como 0) y devuelve el total general.
func recomputeDefectTotals(doc map[string]interface{}) float64 {
	def, ok := doc["defectos"].(map[string]interface{})
	if !ok {
		return 0
	}
	var total float64
	for _, name := range meta.SeverityGroups {
		g, ok := def[name].(map[string]interface{})
		if !ok {
			continue
		}
		sum := sumUnits(g)
		g["total_defectos"] = sum
		total += sum
	}
	def["total_general"] = total
	return total
}

func sumUnits(group map[string]interface{}) float64 {
	items, _ := group["items"].([]interface{})
	var sum float64
	for _, it := range items {
		o, ok := it.(map[string]interface{})
		if !ok {
			continue
		}
		if n, err := cast.ToFloat64E(o["unidades"]); err == nil {
			sum += n
		}
	}
	return sum
}

// requiredFieldsOK exige área, fecha, producto y lote presentes y no vacíos.
func requiredFieldsOK(doc map[string]interface{}) bool {
	di, ok := doc["datos_inspeccion"].(map[string]interface{})
	if !ok {
		return false
	}
	for _, field := range []string{"area", "fecha", "producto", "lote"} {
		if !presentNonBlank(di[field]) {
			return false
		}
	}
	return true
}

// questionnaireComplete exige secuencia no vacía donde cada entrada tiene
// exactamente una de {conformidad, no_conformidad} en true.
func questionnaireComplete(v interface{}) bool {
	cuest, ok := v.([]interface{})
	if !ok || len(cuest) == 0 {
		return false
	}
	for _, q := range cuest {
		e, ok := q.(map[string]interface{})
		if !ok {
			return false
		}
		c := e["conformidad"] == true
		nc := e["no_conformidad"] == true
		if c == nc {
			return false
		}
	}
	return true
}

func hasNonConformity(v interface{}) bool {
	cuest, _ := v.([]interface{})
	for _, q := range cuest {
		if e, ok := q.(map[string]interface{}); ok && e["no_conformidad"] == true {
			return true
		}
	}
	return false
}

// signaturesOK acepta cualquiera de los dos esquemas de firma: el del
// formulario (signatures) o el del documento principal (elaboracion). Son dos
// validadores con nombre, no sniffing de campos.
func signaturesOK(doc map[string]interface{}) bool {
	return signedOnForm(doc) || signedOnElaboration(doc)
}

func signedOnForm(doc map[string]interface{}) bool {
	s, ok := doc["signatures"].(map[string]interface{})
	if !ok {
		return false
	}
	return presentNonBlank(s["assistant"]) && presentNonBlank(s["chief"])
}

func signedOnElaboration(doc map[string]interface{}) bool {
	e, ok := doc["elaboracion"].(map[string]interface{})
	if !ok {
		return false
	}
	return presentNonBlank(e["revisado_por"]) && presentNonBlank(e["aprobado_por"])
}

// presentNonBlank: nil es ausente; una cadena cuenta si no queda vacía tras
// recortar; cualquier otro valor (timestamp, número, objeto) cuenta presente.
func presentNonBlank(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	default:
		return true
	}
}
