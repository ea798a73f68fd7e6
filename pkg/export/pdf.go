package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/pibshift/pibshift/pkg/core/model"
)

var pdfColumnWidths = []float64{40, 60, 80}

// WritePDF writes the schedule as a one-table A4 document
func WritePDF(w io.Writer, schedule *model.Schedule, opts Options) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252; translate so accents survive
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(opts.Title), "", 1, "C", false, 0, "")
	pdf.Ln(10)

	if len(schedule.Slots) == 0 {
		pdf.SetFont("Arial", "", 12)
		pdf.CellFormat(0, 10, tr("Nenhuma escala para exportar"), "", 1, "C", false, 0, "")
		return output(pdf, w)
	}

	pdf.SetFont("Arial", "B", 12)
	for i, header := range []string{"Data", "Função", "Voluntário"} {
		pdf.CellFormat(pdfColumnWidths[i], 10, tr(header), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, row := range Rows(schedule, opts) {
		pdf.CellFormat(pdfColumnWidths[0], 8, tr(truncate(row.Date, 20)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(pdfColumnWidths[1], 8, tr(truncate(row.Role, 25)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(pdfColumnWidths[2], 8, tr(truncate(row.Volunteer, 30)), "1", 1, "L", false, 0, "")
	}

	return output(pdf, w)
}

func output(pdf *fpdf.Fpdf, w io.Writer) error {
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}
