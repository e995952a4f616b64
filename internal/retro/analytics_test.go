package retro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retrocli/pkg/contracts/domain"
)

func resultWith(records ...domain.FeedbackRecord) domain.AggregationResult {
	return domain.AggregationResult{Records: records, MinVotes: 0, MaxVotes: 100}
}

func TestTopFeedback(t *testing.T) {
	result := resultWith(
		domain.FeedbackRecord{Description: "A", Votes: 9},
		domain.FeedbackRecord{Description: "B", Votes: 5},
		domain.FeedbackRecord{Description: "C", Votes: 1},
	)

	assert.Len(t, TopFeedback(result, 2), 2)
	assert.Equal(t, "A", TopFeedback(result, 2)[0].Description)

	// n larger than the set returns everything.
	assert.Len(t, TopFeedback(result, 15), 3)
	assert.Len(t, TopFeedback(result, 0), 3)
}

func TestVoteHistogram(t *testing.T) {
	result := resultWith(
		domain.FeedbackRecord{Description: "A", Votes: 0},
		domain.FeedbackRecord{Description: "B", Votes: 7},
		domain.FeedbackRecord{Description: "C", Votes: 19},
		domain.FeedbackRecord{Description: "D", Votes: 19},
	)

	buckets := VoteHistogram(result, DefaultHistogramBuckets)
	require.Len(t, buckets, DefaultHistogramBuckets)

	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	assert.Equal(t, len(result.Records), total)

	// Width is 1 for max 19 over 20 buckets, so each vote count lands in its
	// own bucket.
	assert.Equal(t, 1, buckets[0].Count)
	assert.Equal(t, 1, buckets[7].Count)
	assert.Equal(t, 2, buckets[19].Count)
}

func TestVoteHistogram_Empty(t *testing.T) {
	assert.Nil(t, VoteHistogram(resultWith(), DefaultHistogramBuckets))
	assert.Nil(t, VoteHistogram(resultWith(domain.FeedbackRecord{Votes: 1}), 0))
}

func TestVoteHistogram_MaxVoteLandsInLastBucket(t *testing.T) {
	result := resultWith(domain.FeedbackRecord{Description: "A", Votes: 40})

	buckets := VoteHistogram(result, 20)
	require.Len(t, buckets, 20)
	assert.Equal(t, 1, buckets[13].Count) // width 3, 40/3 = 13
}

func TestTaskAssociationCounts(t *testing.T) {
	result := resultWith(
		domain.FeedbackRecord{Description: "A", TaskID: "42", Votes: 9},
		domain.FeedbackRecord{Description: "B", Votes: 5},
		domain.FeedbackRecord{Description: "C", Votes: 1},
	)

	ta := TaskAssociationCounts(result)
	assert.Equal(t, 1, ta.WithTask)
	assert.Equal(t, 2, ta.WithoutTask)
}

func TestTaskAssociationCounts_SentinelCountsAsWithout(t *testing.T) {
	result := resultWith(domain.FeedbackRecord{Description: domain.SentinelDescription})

	ta := TaskAssociationCounts(result)
	assert.Equal(t, 0, ta.WithTask)
	assert.Equal(t, 1, ta.WithoutTask)
}
