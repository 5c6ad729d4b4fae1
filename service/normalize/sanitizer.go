/*
 * @module service/normalize/sanitizer
 * @description Limpieza de payloads anidados antes de persistir: elimina el
 *              centinela de valor ausente y convierte cadenas vacías en null
 * @architecture Capa de normalización - funciones puras
 * @stateFlow payload crudo -> DropAbsent -> ReplaceEmptyStrings -> persistible
 * @rules Funciones totales: nunca fallan sobre entrada arbitraria. time.Time
 *        es hoja opaca y no se recorre
 * @dependencies ninguna
 * @refs service/report
 */

package normalize

import "time"

type absentValue struct{}

// Absent es el centinela de "valor ausente", distinto de nil. Un campo con
// este valor no debe persistirse jamás: se elimina por completo del árbol.
var Absent interface{} = absentValue{}

// DropAbsent elimina en profundidad todo valor Absent de mapas y secuencias.
// nil y los timestamps nativos pasan sin cambio.
func DropAbsent(v interface{}) interface{} {
	switch t := v.(type) {
	case nil, time.Time:
		return v
	case []interface{}:
		out := make([]interface{}, 0, len(t))
		for _, e := range t {
			if d := DropAbsent(e); d != Absent {
				out = append(out, d)
			}
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			if d := DropAbsent(e); d != Absent {
				out[k] = d
			}
		}
		return out
	default:
		return v
	}
}

// ReplaceEmptyStrings convierte toda hoja "" en nil, a cualquier profundidad,
// tanto en mapas como en secuencias.
func ReplaceEmptyStrings(v interface{}) interface{} {
	switch t := v.(type) {
	case nil, time.Time:
		return v
	case string:
		if t == "" {
			return nil
		}
		return t
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = ReplaceEmptyStrings(e)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			out[k] = ReplaceEmptyStrings(e)
		}
		return out
	default:
		return v
	}
}
