package retro

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"retrocli/pkg/contracts/domain"
)

// Aggregate consolidates feedback across the given export files. Files are
// processed sequentially in input order; a failing file is recorded in the
// outcome log and never aborts the rest of the batch.
//
// Vote totals are summed per exact feedback description. Work-item links use
// a last-write-wins policy: when several files link the same description, the
// id from the last file in input order is kept. Do not change this to
// first-write-wins or a merge.
//
// The inclusive [minVotes, maxVotes] filter is applied after accumulation.
// The bounds are not validated here: callers enforce minVotes <= maxVotes at
// their boundary, and an inverted range simply filters everything out.
func Aggregate(ctx context.Context, files []domain.SourceFile, minVotes, maxVotes int) (domain.AggregationResult, []domain.Outcome) {
	logger := slog.Default().With(slog.String("component", "aggregator"))

	votes := map[string]int{}
	taskLinks := map[string]string{}
	var order []string
	outcomes := make([]domain.Outcome, 0, len(files))

	for _, file := range files {
		outcome := processFile(file, votes, taskLinks, &order)
		outcomes = append(outcomes, outcome)

		logger.InfoContext(ctx, "processed export file",
			slog.String("file", file.Name),
			slog.String("outcome", string(outcome.Kind)))
	}

	if len(votes) == 0 {
		logger.InfoContext(ctx, "no feedback accumulated, returning sentinel",
			slog.Int("files", len(files)))
		return domain.AggregationResult{
			Records:  []domain.FeedbackRecord{{Description: domain.SentinelDescription}},
			MinVotes: minVotes,
			MaxVotes: maxVotes,
		}, outcomes
	}

	records := make([]domain.FeedbackRecord, 0, len(votes))
	for _, desc := range order {
		total := votes[desc]
		if total < minVotes || total > maxVotes {
			continue
		}
		records = append(records, domain.FeedbackRecord{
			Description: desc,
			TaskID:      taskLinks[desc],
			Votes:       total,
		})
	}

	// Stable keeps first-encounter order among equal vote counts.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Votes > records[j].Votes
	})

	logger.InfoContext(ctx, "aggregation complete",
		slog.Int("unique_feedback", len(votes)),
		slog.Int("filtered", len(records)),
		slog.Int("min_votes", minVotes),
		slog.Int("max_votes", maxVotes))

	return domain.AggregationResult{
		Records:  records,
		MinVotes: minVotes,
		MaxVotes: maxVotes,
	}, outcomes
}

// processFile parses one file and folds its rows into the running
// accumulators. Panics from pathological inputs are converted into an
// unexpected-parse-failure outcome so the batch keeps going.
func processFile(file domain.SourceFile, votes map[string]int, taskLinks map[string]string, order *[]string) (outcome domain.Outcome) {
	outcome = domain.Outcome{File: file.Name, Kind: domain.OutcomeSuccess}

	defer func() {
		if r := recover(); r != nil {
			outcome = domain.Outcome{
				File:   file.Name,
				Kind:   domain.OutcomeUnexpectedParseFailure,
				Detail: fmt.Sprintf("%v", r),
			}
		}
	}()

	parsed, err := ParseExport(file.Name, file.Content)
	if err != nil {
		return classifyParseError(file.Name, err)
	}

	for _, row := range parsed.Rows {
		if _, seen := votes[row.Description]; !seen {
			*order = append(*order, row.Description)
		}
		votes[row.Description] += row.Votes
	}
	for desc, id := range parsed.TaskLinks {
		taskLinks[desc] = id
	}

	return outcome
}

// classifyParseError maps parser failures onto the outcome taxonomy.
func classifyParseError(name string, err error) domain.Outcome {
	switch {
	case errors.Is(err, ErrNotText):
		return domain.Outcome{File: name, Kind: domain.OutcomeDecodeFailure, Detail: err.Error()}
	case errors.Is(err, ErrPrimaryHeaderNotFound):
		return domain.Outcome{File: name, Kind: domain.OutcomeMissingPrimaryHeader, Detail: err.Error()}
	case errors.Is(err, ErrRequiredColumnsMissing):
		return domain.Outcome{File: name, Kind: domain.OutcomeMissingRequiredColumns, Detail: err.Error()}
	default:
		return domain.Outcome{File: name, Kind: domain.OutcomeUnexpectedParseFailure, Detail: err.Error()}
	}
}
