/*
 * @module service/normalize/defects
 * @description Saneo de tipos del sub-documento de defectos: aql a cadena,
 *              descripciones a cadena, unidades a número finito o null
 * @architecture Capa de normalización - funciones puras
 * @rules Este módulo no suma totales; los totales autoritativos los recalcula
 *        el evaluador de estado
 * @dependencies github.com/spf13/cast, math
 * @refs service/normalize/status.go
 */

package normalize

import (
	"fmt"
	"math"

	"github.com/spf13/cast"

	"qa-report-service/service/meta"
)

// NormalizeDefects corrige los tipos de la estructura de defectos. Si el valor
// no es un objeto se devuelve tal cual.
func NormalizeDefects(defectos interface{}) interface{} {
	m, ok := defectos.(map[string]interface{})
	if !ok {
		return defectos
	}

	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	for _, g := range meta.SeverityGroups {
		if gv, ok := m[g]; ok {
			out[g] = normalizeGroup(gv)
		}
	}
	out["total_general"] = toFiniteOrNil(m["total_general"])
	return out
}

func normalizeGroup(g interface{}) interface{} {
	gm, ok := g.(map[string]interface{})
	if !ok {
		return g
	}

	rawItems, _ := gm["items"].([]interface{})
	safeItems := make([]interface{}, 0, len(rawItems))
	for i, it := range rawItems {
		o, ok := it.(map[string]interface{})
		if !ok {
			// El item no es un registro: descripción posicional, cero unidades
			desc := fmt.Sprintf("item-%d", i)
			if it != nil {
				desc = cast.ToString(it)
			}
			safeItems = append(safeItems, map[string]interface{}{
				"descripcion": desc,
				"unidades":    float64(0),
			})
			continue
		}
		safeItems = append(safeItems, map[string]interface{}{
			"descripcion": cast.ToString(o["descripcion"]),
			"unidades":    toFiniteOrNil(o["unidades"]),
		})
	}

	out := make(map[string]interface{}, len(gm))
	for k, v := range gm {
		out[k] = v
	}
	out["aql"] = cast.ToString(gm["aql"])
	out["items"] = safeItems
	out["total_defectos"] = toFiniteOrNil(gm["total_defectos"])
	return out
}

// toFiniteOrNil coerce a float64 finito; todo lo no numérico o no finito
// produce nil.
func toFiniteOrNil(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	n, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil
	}
	return n
}
