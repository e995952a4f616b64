package retro

import (
	"retrocli/pkg/contracts/domain"
)

// Chart shaping defaults, matching the presentation surface: the bar chart
// shows at most 15 items and the vote histogram uses 20 buckets.
const (
	DefaultTopN             = 15
	DefaultHistogramBuckets = 20
)

// HistogramBucket is one bar of the vote-distribution histogram. The range
// is [Low, High) except for the last bucket, which includes High.
type HistogramBucket struct {
	Low   int `json:"low"`
	High  int `json:"high"`
	Count int `json:"count"`
}

// TaskAssociation counts records with and without a linked work item, for
// the task-coverage pie chart.
type TaskAssociation struct {
	WithTask    int `json:"with_task"`
	WithoutTask int `json:"without_task"`
}

// TopFeedback returns the first n records of the result. The result is
// already sorted by votes descending, so this is the top-n by vote count.
func TopFeedback(result domain.AggregationResult, n int) []domain.FeedbackRecord {
	if n <= 0 || n >= len(result.Records) {
		return result.Records
	}
	return result.Records[:n]
}

// VoteHistogram distributes the result's vote counts over a fixed number of
// equal-width buckets spanning [0, max votes in result]. An empty result
// yields no buckets.
func VoteHistogram(result domain.AggregationResult, buckets int) []HistogramBucket {
	if buckets <= 0 || len(result.Records) == 0 {
		return nil
	}

	maxVotes := 0
	for _, r := range result.Records {
		if r.Votes > maxVotes {
			maxVotes = r.Votes
		}
	}

	width := maxVotes/buckets + 1

	out := make([]HistogramBucket, buckets)
	for i := range out {
		out[i].Low = i * width
		out[i].High = (i + 1) * width
	}

	for _, r := range result.Records {
		idx := r.Votes / width
		if idx >= buckets {
			idx = buckets - 1
		}
		out[idx].Count++
	}

	return out
}

// TaskAssociationCounts splits the result into records with and without a
// linked work item. The sentinel record carries no task id and therefore
// counts as without.
func TaskAssociationCounts(result domain.AggregationResult) TaskAssociation {
	var ta TaskAssociation
	for _, r := range result.Records {
		if r.HasTask() {
			ta.WithTask++
		} else {
			ta.WithoutTask++
		}
	}
	return ta
}
