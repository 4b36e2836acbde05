// Package export writes family groups to spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mmynk/clubportal/internal/billing"
)

// SheetName is the worksheet holding the family groups.
const SheetName = "Familles"

// Header is the first row of the sheet.
var Header = []any{"Famille", "Mois", "Factures", "Facturé", "Payé", "Reste", "Statut"}

// FamilyGroups writes one row per group followed by a totals row.
// Amounts are numeric cells rounded to two decimals with a 0.00 format.
func FamilyGroups(w io.Writer, groups []billing.Group) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	// NumFmt 2 is "0.00".
	money, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return fmt.Errorf("failed to create money style: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}
	if err := sw.SetColWidth(1, 1, 28); err != nil {
		return err
	}
	if err := sw.SetColWidth(2, 7, 14); err != nil {
		return err
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = excelize.Cell{StyleID: bold, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	rowIdx := 2
	for _, g := range groups {
		row := []any{
			g.Name,
			g.Month,
			len(g.Invoices),
			excelize.Cell{StyleID: money, Value: amount(g.Billed)},
			excelize.Cell{StyleID: money, Value: amount(g.Paid)},
			excelize.Cell{StyleID: money, Value: amount(g.Remaining())},
			g.Status().Label(),
		}
		cell, _ := excelize.CoordinatesToCellName(1, rowIdx)
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write group %s: %w", g.ID, err)
		}
		rowIdx++
	}

	sum := billing.Summarize(groups)
	cell, _ := excelize.CoordinatesToCellName(1, rowIdx)
	if err := sw.SetRow(cell, []any{
		excelize.Cell{StyleID: bold, Value: "Total"},
		"",
		sum.Invoices,
		excelize.Cell{StyleID: money, Value: amount(sum.Billed)},
		excelize.Cell{StyleID: money, Value: amount(sum.Paid)},
		excelize.Cell{StyleID: money, Value: amount(sum.Remaining)},
		"",
	}); err != nil {
		return fmt.Errorf("failed to write totals: %w", err)
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func amount(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
