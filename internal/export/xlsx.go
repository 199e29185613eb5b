package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/guttosm/bistpulse/internal/domain/models"
)

const sheetName = "prices"

// writeXLSX writes the same columns as the CSV to a single-sheet workbook.
// Timestamps are written as naive UTC strings; Excel has no timezone-aware
// datetime type.
func writeXLSX(path string, rows []models.PriceRow) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(csvHeader))
	for i, h := range csvHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		row := []interface{}{
			r.Ticker,
			r.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			r.Open,
			r.High,
			r.Low,
			r.Close,
			r.Volume,
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save xlsx: %w", err)
	}
	return nil
}
