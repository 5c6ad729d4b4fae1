/*
 * @module service/normalize/defects_test
 * @description Pruebas del normalizador de defectos: coerción de tipos de
 *              items, aql y totales
 * @architecture Capa de pruebas
 * @dependencies testing, stretchr/testify
 */

package normalize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNormalizeDefectsItems verifica la coerción de items bien y mal formados.
func TestNormalizeDefectsItems(t *testing.T) {
	in := map[string]interface{}{
		"criticos": map[string]interface{}{
			"aql": 0.065,
			"items": []interface{}{
				map[string]interface{}{"descripcion": "Fisura en blíster", "unidades": "3"},
				map[string]interface{}{"descripcion": 42, "unidades": "no-numero"},
				"suelto",
				nil,
			},
		},
	}

	out := NormalizeDefects(in).(map[string]interface{})
	criticos := out["criticos"].(map[string]interface{})

	// aql siempre termina como cadena
	assert.Equal(t, "0.065", criticos["aql"])

	items := criticos["items"].([]interface{})
	require.Len(t, items, 4)

	first := items[0].(map[string]interface{})
	assert.Equal(t, "Fisura en blíster", first["descripcion"])
	assert.Equal(t, float64(3), first["unidades"])

	second := items[1].(map[string]interface{})
	assert.Equal(t, "42", second["descripcion"])
	assert.Nil(t, second["unidades"])

	// Un item que no es registro se convierte en uno con cero unidades
	third := items[2].(map[string]interface{})
	assert.Equal(t, "suelto", third["descripcion"])
	assert.Equal(t, float64(0), third["unidades"])

	fourth := items[3].(map[string]interface{})
	assert.Equal(t, "item-3", fourth["descripcion"])
	assert.Equal(t, float64(0), fourth["unidades"])
}

// TestNormalizeDefectsTotales verifica la coerción de totales a finito o null.
func TestNormalizeDefectsTotales(t *testing.T) {
	in := map[string]interface{}{
		"mayores": map[string]interface{}{
			"items":          []interface{}{},
			"total_defectos": "7",
		},
		"menores": map[string]interface{}{
			"items":          []interface{}{},
			"total_defectos": math.NaN(),
		},
		"total_general": math.Inf(1),
	}

	out := NormalizeDefects(in).(map[string]interface{})

	assert.Equal(t, float64(7), out["mayores"].(map[string]interface{})["total_defectos"])
	assert.Nil(t, out["menores"].(map[string]interface{})["total_defectos"])
	assert.Nil(t, out["total_general"])
}

// TestNormalizeDefectsNoObjeto verifica el paso directo de valores no objeto.
func TestNormalizeDefectsNoObjeto(t *testing.T) {
	assert.Equal(t, "texto", NormalizeDefects("texto"))
	assert.Nil(t, NormalizeDefects(nil))
}
