/*
 * @module service/analytics/analytics_service
 * @description Agregador de analítica: una pasada fría sobre la ventana de
 *              reportes persistidos produce resumen, desgloses por área y
 *              defecto, series mensual/semanal y reparto de 30 días
 * @architecture Capa de servicio - agregación de lectura
 * @stateFlow consulta de ventana -> acumulación por documento -> derivados
 * @rules Sólo lectura; se recalcula en cada llamada. Documentos sin instante
 *        de creación resoluble se omiten
 * @dependencies qa-report-service/service/storage, github.com/spf13/cast
 * @refs api/controllers/analytics_controller.go, service/scheduler
 */

package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/spf13/cast"

	"qa-report-service/service/apperrors"
	"qa-report-service/service/meta"
	"qa-report-service/service/models"
	"qa-report-service/service/storage"
)

const (
	// DefaultRangeDays es la ventana por defecto del agregado.
	DefaultRangeDays = 180

	minRangeDays = 1
	maxRangeDays = 365

	topAreasN        = 6
	topAreasRejectN  = 5
	topDefectsN      = 8
	rollingSplitDays = 30
)

// Service es el agregador. Sólo necesita el almacén de documentos.
type Service struct {
	store storage.DocumentStore
	now   func() time.Time
}

// New crea el agregador sobre la colección de reportes.
func New(store storage.DocumentStore) *Service {
	return &Service{store: store, now: time.Now}
}

type areaAccum struct {
	total    int
	approved int
	rejected int
}

// Overview calcula el agregado completo sobre la ventana de rangeDays,
// recortada a [1,365]. Sin valor (cero) se usa la ventana por defecto.
func (s *Service) Overview(ctx context.Context, rangeDays int) (*models.Overview, error) {
	if rangeDays == 0 {
		rangeDays = DefaultRangeDays
	}
	if rangeDays < minRangeDays {
		rangeDays = minRangeDays
	}
	if rangeDays > maxRangeDays {
		rangeDays = maxRangeDays
	}

	now := s.now()
	start := now.AddDate(0, 0, -rangeDays)
	last30 := now.AddDate(0, 0, -rollingSplitDays)

	// La ventana se apoya en createdAt: documentos antiguos sin él quedan
	// fuera por construcción, y eso se acepta
	docs, err := s.store.Query(ctx, storage.Query{
		Filters: []storage.Filter{{Path: "createdAt", Op: ">=", Value: start}},
		OrderBy: "createdAt",
	})
	if err != nil {
		return nil, apperrors.NewStorage("consultar ventana de analítica", err)
	}

	var (
		total, approved, pending, rejected, withPDF        int
		defectsTotal, defectsCrit, defectsMaj, defectsMin  float64
		cycleSumDays                                       float64
		cycleCount                                         int
		s30                                                models.StatusSplit
	)
	byMonth := make(map[string]int)
	byWeek := make(map[string]int)
	byArea := make(map[string]*areaAccum)
	topDefects := make(map[string]float64)

	for _, d := range docs {
		doc := d.Data
		created := bestInstant(doc)
		if created == nil {
			continue
		}

		total++

		estado := cast.ToString(doc["estado"])
		switch estado {
		case meta.EstadoAprobado:
			approved++
		case meta.EstadoRechazado:
			rejected++
		default:
			pending++
		}

		if doc["hasPdf"] == true {
			withPDF++
		}

		byMonth[monthKey(*created)]++
		byWeek[isoWeekKey(*created)]++

		area := cast.ToString(storage.ValueAt(doc, "datos_inspeccion.area"))
		if area == "" {
			area = "Sin área"
		}
		acc := byArea[area]
		if acc == nil {
			acc = &areaAccum{}
			byArea[area] = acc
		}
		acc.total++
		if estado == meta.EstadoAprobado {
			acc.approved++
		}
		if estado == meta.EstadoRechazado {
			acc.rejected++
		}

		defectsTotal += numAt(doc, "defectos.total_general")
		defectsCrit += numAt(doc, "defectos.criticos.total_defectos")
		defectsMaj += numAt(doc, "defectos.mayores.total_defectos")
		defectsMin += numAt(doc, "defectos.menores.total_defectos")

		for _, g := range meta.SeverityGroups {
			items, _ := storage.ValueAt(doc, "defectos."+g+".items").([]interface{})
			for _, it := range items {
				o, ok := it.(map[string]interface{})
				if !ok {
					continue
				}
				desc := cast.ToString(o["descripcion"])
				units, err := cast.ToFloat64E(o["unidades"])
				if desc == "" || err != nil || units == 0 {
					continue
				}
				topDefects[desc] += units
			}
		}

		fElab := asTime(storage.ValueAt(doc, "elaboracion.fecha_elaboracion"))
		fAprob := asTime(storage.ValueAt(doc, "elaboracion.fecha_aprobacion"))
		if fElab != nil && fAprob != nil && !fAprob.Before(*fElab) {
			cycleSumDays += fAprob.Sub(*fElab).Hours() / 24
			cycleCount++
		}

		if !created.Before(last30) {
			switch estado {
			case meta.EstadoAprobado:
				s30.Approved++
			case meta.EstadoRechazado:
				s30.Rejected++
			default:
				s30.Pending++
			}
		}
	}

	summary := models.OverviewSummary{
		Total:    total,
		Approved: approved,
		Pending:  pending,
		Rejected: rejected,
		WithPDF:  withPDF,
	}
	if total > 0 {
		summary.ApprovalRate = int(math.Round(float64(approved) / float64(total) * 100))
		summary.RejectRate = int(math.Round(float64(rejected) / float64(total) * 100))
		summary.AvgDefects = int(math.Round(defectsTotal / float64(total)))
	}
	if cycleCount > 0 {
		avg := math.Round(cycleSumDays/float64(cycleCount)*10) / 10
		summary.AvgCycleDays = &avg
	}

	areas := make([]models.AreaStat, 0, len(byArea))
	for name, acc := range byArea {
		areas = append(areas, models.AreaStat{Area: name, Total: acc.total, Approved: acc.approved, Rejected: acc.rejected})
	}
	sort.SliceStable(areas, func(i, j int) bool { return areas[i].Total > areas[j].Total })
	topAreas := topN(areas, topAreasN)

	byReject := append([]models.AreaStat(nil), areas...)
	sort.SliceStable(byReject, func(i, j int) bool { return byReject[i].Rejected > byReject[j].Rejected })
	topReject := topN(byReject, topAreasRejectN)

	defects := make([]models.DefectStat, 0, len(topDefects))
	for desc, units := range topDefects {
		defects = append(defects, models.DefectStat{Descripcion: desc, Total: int(units)})
	}
	sort.SliceStable(defects, func(i, j int) bool {
		if defects[i].Total != defects[j].Total {
			return defects[i].Total > defects[j].Total
		}
		return defects[i].Descripcion < defects[j].Descripcion
	})
	if len(defects) > topDefectsN {
		defects = defects[:topDefectsN]
	}

	return &models.Overview{
		Summary: summary,
		Breakdown: models.OverviewBreakdown{
			DefectsByType: models.DefectsByType{
				Criticos: int(defectsCrit),
				Mayores:  int(defectsMaj),
				Menores:  int(defectsMin),
				Total:    int(defectsTotal),
			},
			ByArea:          topAreas,
			TopAreasRechazo: topReject,
			TopDefects:      defects,
			Status30d:       s30,
		},
		Series: models.OverviewSeries{ByMonth: byMonth, ByWeek: byWeek},
	}, nil
}

// bestInstant resuelve el instante de creación de un documento: createdAt,
// luego fecha de elaboración, luego fecha de inspección.
func bestInstant(doc map[string]interface{}) *time.Time {
	if t := asTime(doc["createdAt"]); t != nil {
		return t
	}
	if t := asTime(storage.ValueAt(doc, "elaboracion.fecha_elaboracion")); t != nil {
		return t
	}
	return asTime(storage.ValueAt(doc, "datos_inspeccion.fecha"))
}

func monthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// isoWeekKey usa la numeración ISO (semana inicia lunes, regla del jueves).
func isoWeekKey(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func numAt(doc map[string]interface{}, path string) float64 {
	n, err := cast.ToFloat64E(storage.ValueAt(doc, path))
	if err != nil {
		return 0
	}
	return n
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

func topN(in []models.AreaStat, n int) []models.AreaStat {
	if len(in) > n {
		in = in[:n]
	}
	out := make([]models.AreaStat, len(in))
	copy(out, in)
	return out
}
