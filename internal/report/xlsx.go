package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"mortgage-triage-go/internal/types"
)

const (
	summarySheet = "Summary"
	resultsSheet = "Results"
)

// WriteXLSX saves a workbook with a Summary sheet of batch metrics and a
// Results sheet with one row per result.
func WriteXLSX(path string, names []string, results []*types.TriageResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(resultsSheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	for i, rec := range summaryRows(Summarize(results), results) {
		if err := setRow(f, summarySheet, i+1, rec); err != nil {
			return err
		}
	}

	header := []string{"filename", "intent", "escalate", "risk_level", "reason_codes", "summary", "amounts", "loan_numbers"}
	if err := setRow(f, resultsSheet, 1, header); err != nil {
		return err
	}
	for i, r := range results {
		row := resultRow(rowName(names, i), r)
		amounts := make([]string, 0, len(r.Entities.Amounts))
		for _, a := range r.Entities.Amounts {
			amounts = append(amounts, strconv.FormatFloat(a, 'f', -1, 64))
		}
		row = append(row, strings.Join(amounts, "|"), strings.Join(r.Entities.LoanNumbers, "|"))
		if err := setRow(f, resultsSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
