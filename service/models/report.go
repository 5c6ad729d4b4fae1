/*
 * @module service/models/report
 * @description Proyecciones de salida del repositorio de reportes: item de
 *              listado, página con cursor y resultado de adjuntar PDF
 * @architecture Capa de modelos
 * @rules Las proyecciones usan el vocabulario externo (inglés) de estados
 * @dependencies time
 * @refs service/report, api/controllers
 */

package models

import "time"

// ReportListItem es la proyección de un reporte para el listado del dashboard.
type ReportListItem struct {
	ID            string     `json:"id"`
	Code          *string    `json:"code"`
	Date          *time.Time `json:"date"`
	Product       string     `json:"product"`
	Lot           string     `json:"lot"`
	Status        string     `json:"status"`
	Area          string     `json:"area"`
	ElaboradoPor  string     `json:"elaborado_por"`
	TotalDefectos int        `json:"total_defectos"`
	Completado    bool       `json:"completado"`
}

// ReportPage es una página de listado con su cursor opaco de continuación.
type ReportPage struct {
	Items      []ReportListItem `json:"items"`
	NextCursor *string          `json:"nextCursor"`
}

// PDFItem es la proyección de un reporte con PDF registrado.
type PDFItem struct {
	ID        string     `json:"id"`
	Code      *string    `json:"code"`
	CreatedAt *time.Time `json:"createdAt"`
	Estado    string     `json:"estado"`
	Area      string     `json:"area"`
	Lot       string     `json:"lot"`
	PDFPath   *string    `json:"pdfPath"`
}

// PDFPage es una página de reportes con PDF.
type PDFPage struct {
	Items      []PDFItem `json:"items"`
	NextCursor *string   `json:"nextCursor"`
}

// PDFAttachment es el resultado de registrar el binario de un reporte.
type PDFAttachment struct {
	Path          string `json:"path"`
	SignedReadURL string `json:"signedReadUrl"`
}
