// Package export renders audits and the action plan as an XLSX workbook.
package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/MikeSquared-Agency/Audit5S/internal/store"
)

const (
	AuditSheet  = "Resultados Auditoría"
	ActionSheet = "Plan de Acción"

	// Filename is the suggested download name.
	Filename = "Reporte_Integral_5S.xlsx"

	dateLayout = "2006-01-02"
)

var auditHeaders = []string{"ID Auditoría", "Fecha", "Área", "Responsable", "Auditor", "Puntaje"}

var actionHeaders = []string{
	"ID Acción", "ID Auditoría", "Fecha Creación", "Área", "Hallazgo", "Tipo",
	"Acción Sugerida", "Responsable", "Fecha Compromiso", "Estado", "Comentarios",
}

// Workbook writes both sheets to w.
func Workbook(records []store.AuditRecord, actions []store.ActionItem, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", AuditSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeAudits(f, records); err != nil {
		return err
	}
	if _, err := f.NewSheet(ActionSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := writeActions(f, actions); err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeAudits(f *excelize.File, records []store.AuditRecord) error {
	ids := questionIDs(records)
	header := make([]any, 0, len(auditHeaders)+len(ids))
	for _, h := range auditHeaders {
		header = append(header, h)
	}
	for _, id := range ids {
		header = append(header, fmt.Sprintf("Pregunta %d", id))
	}
	if err := setRow(f, AuditSheet, 1, header); err != nil {
		return err
	}

	for i, r := range records {
		responsable := r.Responsable
		if responsable == "" {
			responsable = "N/A"
		}
		row := []any{
			shortID(r.ID.String()),
			r.Date.Format(dateLayout),
			r.Area,
			responsable,
			r.Auditor,
			fmt.Sprintf("%d%%", r.Score),
		}
		ratings := make(map[int]store.Rating, len(r.Answers))
		for _, a := range r.Answers {
			ratings[a.QuestionID] = a.Rating
		}
		for _, id := range ids {
			row = append(row, string(ratings[id]))
		}
		if err := setRow(f, AuditSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeActions(f *excelize.File, actions []store.ActionItem) error {
	header := make([]any, len(actionHeaders))
	for i, h := range actionHeaders {
		header[i] = h
	}
	if err := setRow(f, ActionSheet, 1, header); err != nil {
		return err
	}
	for i, a := range actions {
		row := []any{
			shortID(a.ID.String()),
			shortID(a.AuditID.String()),
			a.CreatedAt.Format(dateLayout),
			a.Area,
			a.QuestionText,
			string(a.IssueType),
			a.SuggestedAction,
			a.Responsable,
			a.DueDate.Format(dateLayout),
			a.Status.Label(),
			a.Comments,
		}
		if err := setRow(f, ActionSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

// questionIDs returns every question id answered in any record, ascending.
func questionIDs(records []store.AuditRecord) []int {
	seen := make(map[int]bool)
	var ids []int
	for _, r := range records {
		for _, a := range r.Answers {
			if !seen[a.QuestionID] {
				seen[a.QuestionID] = true
				ids = append(ids, a.QuestionID)
			}
		}
	}
	sort.Ints(ids)
	return ids
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
