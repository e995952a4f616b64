package exporter

import (
	"fmt"
	"io"
	"strings"

	"retrocli/pkg/contracts/domain"
)

// Format identifies an export artifact type.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatXLSX     Format = "xlsx"
)

// ParseFormat normalizes a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unknown export format: %q", s)
	}
}

// ContentType returns the MIME type used when serving the artifact.
func (f Format) ContentType() string {
	switch f {
	case FormatMarkdown:
		return "text/markdown"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv"
	}
}

// Extension returns the file extension for the artifact, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatXLSX:
		return "xlsx"
	default:
		return "csv"
	}
}

// Write renders the result in the given format.
func Write(w io.Writer, format Format, result domain.AggregationResult) error {
	switch format {
	case FormatMarkdown:
		return WriteMarkdown(w, result)
	case FormatXLSX:
		return WriteXLSX(w, result)
	case FormatCSV:
		return WriteCSV(w, result, CSVOptions{BOMPrefix: true})
	default:
		return fmt.Errorf("unknown export format: %q", format)
	}
}

// formatTaskID renders a task id cell; absent ids show the literal "None"
// placeholder in tabular output.
func formatTaskID(r domain.FeedbackRecord) string {
	if !r.HasTask() {
		return "None"
	}
	return r.TaskID
}

// formatInt formats an int value for tabular output.
func formatInt(i int) string {
	return fmt.Sprintf("%d", i)
}
