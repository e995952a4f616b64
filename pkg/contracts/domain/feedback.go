package domain

import (
	"fmt"
)

// SentinelDescription is the placeholder emitted when no feedback could be
// aggregated from any input file.
const SentinelDescription = "No valid feedback found."

// SourceFile is one uploaded retrospective export: a display name plus the
// raw file bytes. It is consumed once per aggregation call.
type SourceFile struct {
	Name    string `json:"name" validate:"required"`
	Content []byte `json:"-"`
}

// FeedbackRecord is one consolidated feedback item. Description is the merge
// key (exact, case-sensitive match across files); Votes is the running total
// summed over every file the description appears in; TaskID is the linked
// work item id, empty when no file supplied one.
type FeedbackRecord struct {
	Description string `json:"description"`
	TaskID      string `json:"task_id,omitempty"`
	Votes       int    `json:"votes"`
}

// HasTask reports whether a work item id was linked to this record.
func (r FeedbackRecord) HasTask() bool {
	return r.TaskID != ""
}

// IsSentinel reports whether this record is the no-data placeholder.
func (r FeedbackRecord) IsSentinel() bool {
	return r.Description == SentinelDescription && r.Votes == 0 && r.TaskID == ""
}

// AggregationResult is the filtered, vote-descending list of consolidated
// feedback. Ties keep first-encounter order. An aggregation that produced no
// feedback at all contains exactly the sentinel record.
type AggregationResult struct {
	Records  []FeedbackRecord `json:"records"`
	MinVotes int              `json:"min_votes"`
	MaxVotes int              `json:"max_votes"`
}

// IsEmpty reports whether the result carries no usable feedback, either
// because nothing could be aggregated (sentinel) or because the vote range
// filtered everything out.
func (a AggregationResult) IsEmpty() bool {
	if len(a.Records) == 0 {
		return true
	}
	return len(a.Records) == 1 && a.Records[0].IsSentinel()
}

// OutcomeKind classifies the per-file processing result.
type OutcomeKind string

const (
	OutcomeSuccess                OutcomeKind = "success"
	OutcomeDecodeFailure          OutcomeKind = "decode_failure"
	OutcomeMissingPrimaryHeader   OutcomeKind = "missing_primary_header"
	OutcomeMissingRequiredColumns OutcomeKind = "missing_required_columns"
	OutcomeUnexpectedParseFailure OutcomeKind = "unexpected_parse_failure"
)

// Outcome records what happened to a single input file. Outcomes are
// append-only and keep input-file order; a failed file never aborts the rest
// of the batch.
type Outcome struct {
	File   string      `json:"file"`
	Kind   OutcomeKind `json:"kind"`
	Detail string      `json:"detail,omitempty"`
}

// OK reports whether the file contributed feedback rows.
func (o Outcome) OK() bool {
	return o.Kind == OutcomeSuccess
}

// String renders the outcome as a human-readable log line, mirroring the
// processing log shown to users.
func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeSuccess:
		return fmt.Sprintf("Successfully processed %s", o.File)
	case OutcomeDecodeFailure:
		return fmt.Sprintf("Error processing %s: %s", o.File, o.Detail)
	case OutcomeMissingPrimaryHeader:
		return fmt.Sprintf("Warning: Skipping %s - Required columns not found.", o.File)
	case OutcomeMissingRequiredColumns:
		return fmt.Sprintf("Warning: Skipping %s - Required columns missing after header detection.", o.File)
	case OutcomeUnexpectedParseFailure:
		return fmt.Sprintf("Error processing %s: %s", o.File, o.Detail)
	default:
		return fmt.Sprintf("%s: %s", o.File, o.Detail)
	}
}
