package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"fin_statements/pkg/core/session"
)

// BuildPDF renders a printable summary of every statement and the ratios.
func BuildPDF(view *session.View) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	title := "Financial Statements"
	if view.Ticker != "" {
		title = fmt.Sprintf("Financial Statements: %s", view.Ticker)
	}
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, title)
	pdf.Ln(9)
	pdf.SetFont("Arial", "", 9)
	if view.Source != "" {
		pdf.Cell(0, 5, fmt.Sprintf("Source: %s", view.Source))
		pdf.Ln(5)
	}
	pdf.Cell(0, 5, fmt.Sprintf("Generated: %s", time.Now().UTC().Format(time.RFC3339)))
	pdf.Ln(8)

	for _, sv := range view.Statements {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 7, sv.Title)
		pdf.Ln(8)

		for _, sec := range sv.Sections {
			pdf.SetFont("Arial", "B", 10)
			pdf.CellFormat(180, 6, sec.Title, "B", 1, "L", false, 0, "")
			pdf.SetFont("Arial", "", 9)
			for _, item := range sec.Items {
				pdf.CellFormat(120, 5, item.Label, "", 0, "L", false, 0, "")
				pdf.CellFormat(60, 5, FormatCurrency(item.Value), "", 1, "R", false, 0, "")
			}
			pdf.SetFont("Arial", "B", 9)
			for _, total := range sec.Totals {
				label := total.Label
				if s := sourceLabel(total.Source); s != "computed" {
					label = fmt.Sprintf("%s (%s)", label, s)
				}
				pdf.CellFormat(120, 5, label, "T", 0, "L", false, 0, "")
				pdf.CellFormat(60, 5, FormatCurrency(total.Value), "T", 1, "R", false, 0, "")
			}
			pdf.Ln(2)
		}
		pdf.Ln(4)
	}

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 7, "Financial Ratios")
	pdf.Ln(8)
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(60, 6, "Category", "1", 0, "C", false, 0, "")
	pdf.CellFormat(80, 6, "Ratio", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Value", "1", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	for _, r := range view.Ratios {
		pdf.CellFormat(60, 6, r.Category, "1", 0, "L", false, 0, "")
		pdf.CellFormat(80, 6, r.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, r.Display(), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 6, "Checks")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 9)
	for _, name := range checkOrder {
		if check, ok := view.Checks[name]; ok {
			pdf.CellFormat(60, 5, checkTitles[name], "", 0, "L", false, 0, "")
			pdf.CellFormat(120, 5, checkText(check), "", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
