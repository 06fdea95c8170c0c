// Package export writes a stored run's abstract as a reviewer-facing
// XLSX workbook.
package export

import (
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/lease-abstract-cli/internal/model"
)

var abstractHeader = []string{
	"Field", "Extracted", "Override", "Effective",
	"Source Document", "Source Quote", "Notes",
}

// WriteAbstract renders the result into a workbook with three sheets:
// Summary (run metadata), Abstract (one row per schema field), and
// Checks (validation outcomes), then saves it to path.
func WriteAbstract(result *model.PipelineResult, path string) error {
	f := xlsx.NewFile()

	if err := addSummarySheet(f, result); err != nil {
		return err
	}
	if err := addAbstractSheet(f, result); err != nil {
		return err
	}
	if err := addChecksSheet(f, result); err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save workbook %s", path)
	}
	return nil
}

func addSummarySheet(f *xlsx.File, result *model.PipelineResult) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}

	writeRow(sheet, "Document", result.Filename)
	writeRow(sheet, "Lease Type", string(result.Subtype))
	writeRow(sheet, "Pages", strconv.Itoa(result.PageCount))
	writeRow(sheet, "Model", result.Model)
	writeRow(sheet, "Extracted At", result.Timestamp.Format(time.RFC3339))
	if len(result.Errors) > 0 {
		writeRow(sheet, "Errors", strings.Join(result.Errors, "; "))
	}
	return nil
}

func addAbstractSheet(f *xlsx.File, result *model.PipelineResult) error {
	sheet, err := f.AddSheet("Abstract")
	if err != nil {
		return eris.Wrap(err, "export: add abstract sheet")
	}

	writeRow(sheet, abstractHeader...)

	for _, rec := range result.Records {
		label := rec.Name
		if field, ok := model.FieldByName(rec.Name); ok {
			label = field.Label
		}

		override := ""
		if rec.Override != nil {
			override = cellValue(*rec.Override)
		}

		writeRow(sheet,
			label,
			cellValue(rec.ExtractedValue),
			override,
			cellValue(rec.Effective()),
			rec.SourceDocument,
			rec.SourceQuote,
			strings.Join(rec.Notes, "; "),
		)
	}
	return nil
}

func addChecksSheet(f *xlsx.File, result *model.PipelineResult) error {
	sheet, err := f.AddSheet("Checks")
	if err != nil {
		return eris.Wrap(err, "export: add checks sheet")
	}

	writeRow(sheet, "Check", "Status", "Detail")
	for _, o := range result.Outcomes {
		writeRow(sheet, o.CheckID, string(o.Status), o.Detail)
	}
	return nil
}

// cellValue renders a scalar for a worksheet cell. Nulls come out blank
// rather than as the literal word "null".
func cellValue(s model.Scalar) string {
	if s.IsNull() {
		return ""
	}
	return s.Display()
}

func writeRow(sheet *xlsx.Sheet, cells ...string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}
