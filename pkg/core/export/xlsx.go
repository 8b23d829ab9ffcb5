package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"fin_statements/pkg/core/calc"
	"fin_statements/pkg/core/session"
)

const (
	summarySheet = "Summary"
	ratiosSheet  = "Ratios"
	amountFormat = `"$"#,##0;-"$"#,##0`
)

// BuildXLSX renders a summary sheet, one sheet per statement and a ratio sheet.
// Amounts are written as numbers so the workbook stays computable.
func BuildXLSX(view *session.View) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}

	numFmt := amountFormat
	amountStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return nil, err
	}
	totalStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt, Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	writeSummary(f, view, headerStyle)

	for _, sv := range view.Statements {
		sheet := sv.Title
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
		_ = f.SetCellValue(sheet, "A1", "Line Item")
		_ = f.SetCellValue(sheet, "B1", "Amount")
		_ = f.SetCellValue(sheet, "C1", "Source")
		_ = f.SetCellStyle(sheet, "A1", "C1", headerStyle)
		_ = f.SetColWidth(sheet, "A", "A", 42)
		_ = f.SetColWidth(sheet, "B", "B", 20)

		row := 2
		for _, sec := range sv.Sections {
			row++
			_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), sec.Title)
			_ = f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), headerStyle)
			row++
			for _, item := range sec.Items {
				_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), item.Label)
				_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), item.Value)
				_ = f.SetCellStyle(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), amountStyle)
				row++
			}
			for _, total := range sec.Totals {
				_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), total.Label)
				_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), total.Value)
				_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), sourceLabel(total.Source))
				_ = f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), totalStyle)
				row++
			}
		}
	}

	if _, err := f.NewSheet(ratiosSheet); err != nil {
		return nil, err
	}
	for col, h := range []string{"Category", "Ratio", "Value", "Formula"} {
		name, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(ratiosSheet, name, h)
	}
	_ = f.SetCellStyle(ratiosSheet, "A1", "D1", headerStyle)
	_ = f.SetColWidth(ratiosSheet, "A", "B", 28)
	_ = f.SetColWidth(ratiosSheet, "D", "D", 48)
	for i, r := range view.Ratios {
		row := i + 2
		_ = f.SetCellValue(ratiosSheet, fmt.Sprintf("A%d", row), r.Category)
		_ = f.SetCellValue(ratiosSheet, fmt.Sprintf("B%d", row), r.Name)
		if r.Applicable {
			_ = f.SetCellValue(ratiosSheet, fmt.Sprintf("C%d", row), r.Value)
		} else {
			_ = f.SetCellValue(ratiosSheet, fmt.Sprintf("C%d", row), r.Display())
		}
		if def, ok := calc.FindRatio(r.Key); ok {
			_ = f.SetCellValue(ratiosSheet, fmt.Sprintf("D%d", row), def.Formula)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, view *session.View, headerStyle int) {
	ticker := view.Ticker
	if ticker == "" {
		ticker = "(manual entry)"
	}
	_ = f.SetCellValue(summarySheet, "A1", "Financial Statements")
	_ = f.SetCellStyle(summarySheet, "A1", "A1", headerStyle)
	_ = f.SetCellValue(summarySheet, "A3", "Ticker")
	_ = f.SetCellValue(summarySheet, "B3", ticker)
	_ = f.SetCellValue(summarySheet, "A4", "Source")
	_ = f.SetCellValue(summarySheet, "B4", view.Source)
	_ = f.SetCellValue(summarySheet, "A5", "Generated")
	_ = f.SetCellValue(summarySheet, "B5", time.Now().UTC().Format(time.RFC3339))
	_ = f.SetColWidth(summarySheet, "A", "A", 24)
	_ = f.SetColWidth(summarySheet, "B", "B", 60)

	row := 7
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), "Checks")
	_ = f.SetCellStyle(summarySheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), headerStyle)
	for _, name := range checkOrder {
		check, ok := view.Checks[name]
		if !ok {
			continue
		}
		row++
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), checkTitles[name])
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), checkText(check))
	}
}

var checkOrder = []string{"balance_sheet", "cash_flow", "net_income_link"}

var checkTitles = map[string]string{
	"balance_sheet":   "Balance sheet",
	"cash_flow":       "Cash flow",
	"net_income_link": "Net income link",
}

func checkText(c calc.VerificationResult) string {
	if c.IsBalanced {
		return "OK"
	}
	return "Off by " + FormatCurrency(c.Gap)
}

func sourceLabel(s calc.TotalSource) string {
	switch s {
	case calc.SourceOverride:
		return "reported"
	case calc.SourceResidual:
		return "derived from reported total"
	}
	return "computed"
}
