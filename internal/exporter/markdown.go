package exporter

import (
	"fmt"
	"io"
	"strings"

	"retrocli/pkg/contracts/domain"
)

// WriteMarkdown renders the result as a Markdown document: a title, the
// filter settings the result was produced with, and one bullet per feedback
// item. Items with a linked work item get a " - Task #<id>" suffix.
func WriteMarkdown(w io.Writer, result domain.AggregationResult) error {
	var b strings.Builder

	b.WriteString("# Retrospective Analysis Results\n\n")
	fmt.Fprintf(&b, "Filter settings: Min votes: %d, Max votes: %d\n\n", result.MinVotes, result.MaxVotes)
	b.WriteString("## Consolidated Feedback\n\n")

	for _, r := range result.Records {
		if r.HasTask() {
			fmt.Fprintf(&b, "- %s (%d votes) - Task #%s\n", r.Description, r.Votes, r.TaskID)
		} else {
			fmt.Fprintf(&b, "- %s (%d votes)\n", r.Description, r.Votes)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
