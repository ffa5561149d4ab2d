// Package export renders admin data as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"finhub/internal/models"
)

// TransactionsSheet is the name of the worksheet written by WriteTransactions.
const TransactionsSheet = "Transactions"

// ContentTypeXLSX is the media type of an Office Open XML workbook.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var transactionHeaders = []string{"ID", "User", "Type", "Category", "Amount", "Date", "Description", "Goal"}

var transactionColumnWidths = map[string]float64{
	"A": 8, "B": 20, "C": 10, "D": 15, "E": 12, "F": 12, "G": 30, "H": 20,
}

// WriteTransactions writes one row per transaction, below a header row, as an
// XLSX workbook to w.
func WriteTransactions(w io.Writer, transactions []models.AdminTransaction) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(TransactionsSheet)
	if err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	for i, h := range transactionHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(TransactionsSheet, cell, h); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for idx, t := range transactions {
		goal := ""
		if t.GoalTitle != nil {
			goal = *t.GoalTitle
		}
		row := []interface{}{
			t.ID,
			t.UserName,
			string(t.Type),
			t.Category,
			t.Amount.InexactFloat64(),
			t.OccurredAt.UTC().Format("2006-01-02"),
			t.Description,
			goal,
		}
		cell, err := excelize.CoordinatesToCellName(1, idx+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(TransactionsSheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", idx+2, err)
		}
	}

	for col, width := range transactionColumnWidths {
		if err := f.SetColWidth(TransactionsSheet, col, col, width); err != nil {
			return fmt.Errorf("setting column width: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
