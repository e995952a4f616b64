package retro

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Header markers for the two tables inside a retrospective export. Real
// export files carry metadata rows above the tables, so detection is a
// substring scan over raw lines rather than strict first-row-is-header
// parsing. Do not tighten this.
const (
	primaryHeaderMarker  = "Type,Description,Votes"
	workItemHeaderMarker = "Feedback Description,Work Item Title,Work Item Type,Work Item Id,"
)

// Primary table column names required after header detection.
const (
	colDescription = "Description"
	colVotes       = "Votes"
)

// Work item table column names.
const (
	colFeedbackDescription = "Feedback Description"
	colWorkItemID          = "Work Item Id"
)

// Parse failure classes. The aggregator maps these onto per-file outcomes;
// they never abort a batch.
var (
	ErrNotText                = errors.New("file content is not valid text")
	ErrPrimaryHeaderNotFound  = errors.New("required columns not found")
	ErrRequiredColumnsMissing = errors.New("required columns missing after header detection")
)

// FeedbackRow is one parsed row of the primary feedback table.
type FeedbackRow struct {
	Description string
	Votes       int
}

// ParsedExport holds everything extracted from a single export file: the
// feedback rows in file order and the work-item links keyed by feedback
// description (later rows overwrite earlier ones).
type ParsedExport struct {
	Rows      []FeedbackRow
	TaskLinks map[string]string
}

// ParseExport extracts the feedback table and the optional work-items table
// from one export file. The work-items table is independent of the primary
// table: its absence is not an error and produces no log entry.
func ParseExport(name string, content []byte) (*ParsedExport, error) {
	text, err := decodeText(content)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(text, "\n")

	primaryIdx := findMarkerLine(lines, primaryHeaderMarker)
	if primaryIdx < 0 {
		return nil, ErrPrimaryHeaderNotFound
	}

	workItemIdx := findMarkerLine(lines, workItemHeaderMarker)

	// The primary table runs from its header to the work-items header (when
	// present) so that work-item rows are never mistaken for feedback rows.
	primaryEnd := len(lines)
	if workItemIdx > primaryIdx {
		primaryEnd = workItemIdx
	}

	rows, err := parsePrimaryTable(lines[primaryIdx:primaryEnd])
	if err != nil {
		return nil, err
	}

	parsed := &ParsedExport{
		Rows:      rows,
		TaskLinks: map[string]string{},
	}

	if workItemIdx >= 0 {
		links := parseWorkItemTable(lines[workItemIdx:])
		parsed.TaskLinks = links
		slog.Debug("parsed work items section",
			slog.String("file", name),
			slog.Int("links", len(links)))
	}

	slog.Debug("parsed export file",
		slog.String("file", name),
		slog.Int("feedback_rows", len(parsed.Rows)),
		slog.Int("task_links", len(parsed.TaskLinks)))

	return parsed, nil
}

// decodeText validates the bytes as UTF-8 text and strips a leading BOM.
// Export tools aimed at Excel frequently prepend one.
func decodeText(content []byte) (string, error) {
	content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})
	if !utf8.Valid(content) {
		return "", fmt.Errorf("%w: invalid UTF-8", ErrNotText)
	}
	if bytes.IndexByte(content, 0x00) >= 0 {
		return "", fmt.Errorf("%w: binary content", ErrNotText)
	}
	return string(content), nil
}

// findMarkerLine returns the index of the first line containing marker as a
// substring, or -1. Substring match, not equality: exports wrap header rows
// in quoting or trailing delimiters depending on the tool version.
func findMarkerLine(lines []string, marker string) int {
	for i, line := range lines {
		if strings.Contains(line, marker) {
			return i
		}
	}
	return -1
}

// newTableReader builds a CSV reader tolerant of the ragged sections real
// export files contain: variable field counts and stray quotes must not abort
// the whole file.
func newTableReader(lines []string) *csv.Reader {
	r := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r
}

// parsePrimaryTable reads the feedback table. lines[0] is the header row.
// Rows missing either required cell are dropped; unparseable vote cells
// default to zero rather than failing the row.
func parsePrimaryTable(lines []string) ([]FeedbackRow, error) {
	r := newTableReader(lines)

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading feedback header: %w", err)
	}

	cols := columnIndex(header)
	descIdx, okDesc := cols[colDescription]
	votesIdx, okVotes := cols[colVotes]
	if !okDesc || !okVotes {
		return nil, ErrRequiredColumnsMissing
	}

	var rows []FeedbackRow
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading feedback row: %w", err)
		}

		desc := cell(record, descIdx)
		rawVotes := cell(record, votesIdx)
		if desc == "" || strings.TrimSpace(rawVotes) == "" {
			continue
		}

		rows = append(rows, FeedbackRow{
			Description: desc,
			Votes:       coerceVotes(rawVotes),
		})
	}

	return rows, nil
}

// parseWorkItemTable reads the optional work-items table. lines[0] is its
// header row. Malformed rows are skipped silently; this section never fails
// the file.
func parseWorkItemTable(lines []string) map[string]string {
	links := map[string]string{}

	r := newTableReader(lines)

	header, err := r.Read()
	if err != nil {
		return links
	}

	cols := columnIndex(header)
	descIdx, okDesc := cols[colFeedbackDescription]
	idIdx, okID := cols[colWorkItemID]
	if !okDesc || !okID {
		return links
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		desc := cell(record, descIdx)
		id := strings.TrimSpace(cell(record, idIdx))
		if desc == "" || id == "" {
			continue
		}
		links[desc] = id
	}

	return links
}

// columnIndex maps trimmed header names to their positions. The first
// occurrence of a duplicated name wins.
func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, seen := cols[name]; !seen {
			cols[name] = i
		}
	}
	return cols
}

// cell returns the field at idx, or "" when the row is too short.
func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// coerceVotes converts a vote cell to an integer. Non-numeric values become
// zero, never an error: a bad cell costs its votes, not the file. Values
// like "3.0" appear when exports round-trip through spreadsheet tools, so
// a float parse is attempted before giving up.
func coerceVotes(raw string) int {
	raw = strings.TrimSpace(raw)
	if v, err := strconv.Atoi(raw); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int(f)
	}
	return 0
}
