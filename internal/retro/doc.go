// Package retro consolidates retrospective-meeting CSV exports into a single
// vote-ranked feedback list.
//
// # Architecture
//
// The package is organized into three main components:
//
// 1. Parser: locates and reads the feedback and work-item tables inside one export file
// 2. Aggregator: merges feedback across files, filters by vote range and sorts
// 3. Analytics: derives chart series (top items, vote histogram, task association)
//
// # Usage
//
// Basic aggregation example:
//
//	files := []domain.SourceFile{{Name: "sprint-12.csv", Content: raw}}
//	result, outcomes := retro.Aggregate(ctx, files, 0, 100)
//	for _, o := range outcomes {
//	    fmt.Println(o.String())
//	}
//
// Export files are tolerant of leading metadata rows: the parser scans for the
// literal header text rather than assuming the first row is the header.
package retro
