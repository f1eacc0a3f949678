package renderer

import (
	"fmt"
	"io"
	"math"

	"github.com/etnz/rpi"
	"github.com/xuri/excelize/v2"
)

const (
	historySheet = "History"
	itemsSheet   = "Items"
)

// round2 rounds to 2 decimals, spreadsheets show the full float otherwise.
func round2(f float64) float64 { return math.Round(f*100) / 100 }

// WriteHistoryXLSX writes index points to w as an xlsx workbook.
//
// The "History" sheet has one row per point, the "Items" sheet one row per
// contributing item of each point.
func WriteHistoryXLSX(w io.Writer, points []rpi.Point) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	header := []any{"Month", "Index (%)", "Items", "Excluded"}
	if err := f.SetSheetRow(historySheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(historySheet, "A1", "D1", bold); err != nil {
		return err
	}
	header = []any{"Month", "Item", "Share (%)", "Old price", "New price", "Change (%)"}
	if err := f.SetSheetRow(itemsSheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(itemsSheet, "A1", "F1", bold); err != nil {
		return err
	}

	line := 2
	for i, p := range points {
		month := p.Date.Format("2006-01")
		row := []any{month, round2(float64(p.Index)), len(p.Result.Contributions), len(p.Result.Exclusions)}
		if err := f.SetSheetRow(historySheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
		for _, c := range p.Result.Contributions {
			row := []any{month, c.Item, round2(100 * c.Share), c.Old.Price.AsFloat(), c.New.Price.AsFloat(), round2(float64(c.Change))}
			if err := f.SetSheetRow(itemsSheet, fmt.Sprintf("A%d", line), &row); err != nil {
				return err
			}
			line++
		}
	}
	if err := f.SetColWidth(itemsSheet, "B", "B", 30); err != nil {
		return err
	}
	return f.Write(w)
}
