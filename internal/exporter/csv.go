package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"retrocli/pkg/contracts/domain"
)

// csvHeader is the fixed column set of the CSV artifact.
var csvHeader = []string{"Feedback", "Task ID", "Votes"}

// CSVOptions configures CSV rendering behavior.
type CSVOptions struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV renders the full result set (not just the charted top items) as
// CSV with the header Feedback,Task ID,Votes.
func WriteCSV(w io.Writer, result domain.AggregationResult, options CSVOptions) error {
	slog.Debug("writing CSV export",
		slog.Int("record_count", len(result.Records)),
		slog.Bool("bom", options.BOMPrefix))

	// BOM helps Excel recognize UTF-8.
	if options.BOMPrefix {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, r := range result.Records {
		row := []string{r.Description, formatTaskID(r), formatInt(r.Votes)}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
