package retro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExport_BasicTable(t *testing.T) {
	content := []byte("Type,Description,Votes\nWent Well,The team was collaborative,5\nNeeds Improvement,Documentation is lacking,3\n")

	parsed, err := ParseExport("sprint.csv", content)
	require.NoError(t, err)

	assert.Equal(t, []FeedbackRow{
		{Description: "The team was collaborative", Votes: 5},
		{Description: "Documentation is lacking", Votes: 3},
	}, parsed.Rows)
	assert.Empty(t, parsed.TaskLinks)
}

func TestParseExport_HeaderNotOnFirstLine(t *testing.T) {
	// Real exports carry metadata rows above the table; the header is found
	// by substring scan, not by position.
	content := []byte("Retrospective Export\nTeam,Board 7\n\nType,Description,Votes\nWent Well,Good pairing,4\n")

	parsed, err := ParseExport("sprint.csv", content)
	require.NoError(t, err)
	require.Len(t, parsed.Rows, 1)
	assert.Equal(t, "Good pairing", parsed.Rows[0].Description)
	assert.Equal(t, 4, parsed.Rows[0].Votes)
}

func TestParseExport_MarkerIsSubstringMatch(t *testing.T) {
	// The marker may be embedded in a longer line, e.g. extra columns.
	content := []byte("Type,Description,Votes,Created Date\nWent Well,Good pairing,4,2025-01-01\n")

	parsed, err := ParseExport("sprint.csv", content)
	require.NoError(t, err)
	require.Len(t, parsed.Rows, 1)
	assert.Equal(t, 4, parsed.Rows[0].Votes)
}

func TestParseExport_MissingPrimaryHeader(t *testing.T) {
	content := []byte("Category,Text,Count\nWent Well,Good pairing,4\n")

	_, err := ParseExport("other.csv", content)
	assert.ErrorIs(t, err, ErrPrimaryHeaderNotFound)
}

func TestParseExport_InvalidText(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{"invalid utf8", []byte{0xff, 0xfe, 0x00, 0x41}},
		{"embedded nul", []byte("Type,Description,Votes\nA,B\x00C,1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseExport("bad.csv", tt.content)
			assert.ErrorIs(t, err, ErrNotText)
		})
	}
}

func TestParseExport_StripsBOM(t *testing.T) {
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Type,Description,Votes\nWent Well,X,3\n")...)

	parsed, err := ParseExport("bom.csv", content)
	require.NoError(t, err)
	require.Len(t, parsed.Rows, 1)
	assert.Equal(t, 3, parsed.Rows[0].Votes)
}

func TestParseExport_DropsIncompleteRows(t *testing.T) {
	content := []byte("Type,Description,Votes\n" +
		"Went Well,Keep standups short,2\n" +
		"Went Well,,5\n" + // empty description
		"Went Well,No votes cell\n" + // short row
		"Went Well,Blank votes,\n" + // empty votes
		"Needs Improvement,More demos,1\n")

	parsed, err := ParseExport("sprint.csv", content)
	require.NoError(t, err)

	assert.Equal(t, []FeedbackRow{
		{Description: "Keep standups short", Votes: 2},
		{Description: "More demos", Votes: 1},
	}, parsed.Rows)
}

func TestParseExport_VoteCoercion(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"integer", "7", 7},
		{"whitespace padded", " 7 ", 7},
		{"float from spreadsheet round-trip", "7.0", 7},
		{"non-numeric defaults to zero", "many", 0},
		{"negative kept as-is", "-2", -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, coerceVotes(tt.raw))
		})
	}
}

func TestParseExport_WorkItemsSection(t *testing.T) {
	content := []byte("Type,Description,Votes\n" +
		"Needs Improvement,Documentation is lacking,3\n" +
		"\n" +
		"Feedback Description,Work Item Title,Work Item Type,Work Item Id,\n" +
		"Documentation is lacking,Improve Docs,Task,12345,\n")

	parsed, err := ParseExport("sprint.csv", content)
	require.NoError(t, err)

	// Work-item rows must not bleed into the feedback table.
	require.Len(t, parsed.Rows, 1)
	assert.Equal(t, "Documentation is lacking", parsed.Rows[0].Description)

	assert.Equal(t, map[string]string{"Documentation is lacking": "12345"}, parsed.TaskLinks)
}

func TestParseExport_WorkItemsRowsRequireBothValues(t *testing.T) {
	content := []byte("Type,Description,Votes\n" +
		"Went Well,A,1\n" +
		"Feedback Description,Work Item Title,Work Item Type,Work Item Id,\n" +
		"A,Title only,Task,,\n" +
		",Orphan,Task,99,\n" +
		"A,Linked,Task,42,\n")

	parsed, err := ParseExport("sprint.csv", content)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "42"}, parsed.TaskLinks)
}

func TestParseExport_NoWorkItemsSectionIsNotAnError(t *testing.T) {
	content := []byte("Type,Description,Votes\nWent Well,A,1\n")

	parsed, err := ParseExport("sprint.csv", content)
	require.NoError(t, err)
	assert.Empty(t, parsed.TaskLinks)
}
