/*
 * @module service/normalize/dates
 * @description Conversión de campos de fecha whitelisteados (por ruta punteada)
 *              de cadena ISO-8601 a timestamp nativo, de forma idempotente
 * @architecture Capa de normalización - funciones puras
 * @rules Sólo se convierten las rutas de meta.DateFields; cualquier otra cadena
 *        con pinta de fecha pasa sin tocar. Una cadena que matchea el patrón
 *        pero no parsea produce null
 * @dependencies regexp, time, qa-report-service/service/meta
 * @refs service/report
 */

package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"qa-report-service/service/meta"
)

// Patrón estricto: YYYY-MM-DD, opcionalmente seguido de hora con T o espacio,
// segundos/fracción y zona opcionales.
var isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(?:[T ]\d{2}:\d{2}(?::\d{2}(?:\.\d{1,3})?)?(?:Z|[+\-]\d{2}:\d{2})?)?$`)

var isoLayouts = []string{
	"2006-01-02T15:04:05.999Z07:00",
	"2006-01-02T15:04:05.999",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// NormalizeDates recorre el documento llevando la ruta punteada actual y
// convierte los campos whitelisteados a time.Time o nil. Aplicarla dos veces
// produce el mismo resultado que una.
func NormalizeDates(doc map[string]interface{}) map[string]interface{} {
	return convertDates(doc, "").(map[string]interface{})
}

func convertDates(v interface{}, path string) interface{} {
	switch t := v.(type) {
	case nil, time.Time:
		return v
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = convertDates(e, fmt.Sprintf("%s[%d]", path, i))
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			child := k
			if path != "" {
				child = path + "." + k
			}
			if meta.DateFields[child] {
				out[k] = coerceDate(e)
			} else {
				out[k] = convertDates(e, child)
			}
		}
		return out
	default:
		return v
	}
}

// coerceDate convierte un valor whitelisteado a timestamp nativo. Formas no
// reconocidas pasan sin tocar: mejor conservar que corromper.
func coerceDate(v interface{}) interface{} {
	switch t := v.(type) {
	case time.Time:
		return t
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
		if !isoDateRe.MatchString(t) {
			return t
		}
		d, err := parseISO(t)
		if err != nil {
			return nil
		}
		return d
	default:
		return v
	}
}

func parseISO(s string) (time.Time, error) {
	s = strings.Replace(s, " ", "T", 1)
	var lastErr error
	for _, layout := range isoLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d.UTC(), nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}
