package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"retrocli/pkg/contracts/domain"
)

const sheetName = "Feedback"

// WriteXLSX renders the result as a single-sheet Excel workbook with the
// same columns as the CSV artifact. Vote counts are written as numbers so
// spreadsheet sorting works without coercion.
func WriteXLSX(w io.Writer, result domain.AggregationResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	header := []interface{}{"Feedback", "Task ID", "Votes"}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, r := range result.Records {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell for row %d: %w", i, err)
		}
		row := []interface{}{r.Description, formatTaskID(r), r.Votes}
		if err := f.SetSheetRow(sheetName, cellRef, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	slog.Debug("writing XLSX export", slog.Int("record_count", len(result.Records)))

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
