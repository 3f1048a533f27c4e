package submissions

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/govdesk/govdesk/backend"
)

// ErrAllTablesFailed is returned when not a single form table could be
// read. Individual table failures only shrink the result.
var ErrAllTablesFailed = errors.New("failed to load submissions")

// FetchAll reads all four form tables concurrently, normalizes the rows,
// and returns one merged list sorted most-recent first. A failing table
// contributes zero rows and is logged; the fetch as a whole errors only
// when every table fails.
func FetchAll(ctx context.Context, client backend.Client, log *zap.Logger) ([]Submission, error) {
	results := make([][]Submission, len(AllFormTypes))
	errs := make([]error, len(AllFormTypes))

	var wg sync.WaitGroup
	for i, ft := range AllFormTypes {
		wg.Add(1)
		go func(i int, ft FormType) {
			defer wg.Done()
			results[i], errs[i] = FetchTable(ctx, client, ft)
		}(i, ft)
	}
	wg.Wait()

	failed := 0
	var merged []Submission
	for i, ft := range AllFormTypes {
		if errs[i] != nil {
			failed++
			if log != nil {
				log.Warn("form table fetch failed",
					zap.String("table", string(ft)),
					zap.Error(errs[i]))
			}
			continue
		}
		merged = append(merged, results[i]...)
	}
	if failed == len(AllFormTypes) {
		return nil, ErrAllTablesFailed
	}

	SortRecentFirst(merged)
	return merged, nil
}

// FetchTable reads and normalizes a single form table, sorted most-recent
// first.
func FetchTable(ctx context.Context, client backend.Client, ft FormType) ([]Submission, error) {
	rows, err := client.Select(ctx, string(ft), nil)
	if err != nil {
		return nil, err
	}
	subs := make([]Submission, 0, len(rows))
	for _, row := range rows {
		if s, ok := Normalize(string(ft), row); ok {
			subs = append(subs, s)
		}
	}
	SortRecentFirst(subs)
	return subs, nil
}

// FetchByID reads one submission from its form table.
func FetchByID(ctx context.Context, client backend.Client, ft FormType, id string) (Submission, error) {
	rows, err := client.Select(ctx, string(ft), backend.Filter{"id": id})
	if err != nil {
		return Submission{}, err
	}
	if len(rows) == 0 {
		return Submission{}, backend.ErrNotFound
	}
	s, ok := Normalize(string(ft), rows[0])
	if !ok {
		return Submission{}, backend.ErrNotFound
	}
	return s, nil
}

// SortRecentFirst orders subs descending by effective timestamp; records
// with no timestamp sink to the end. The sort is stable so equal
// timestamps keep their fetch order.
func SortRecentFirst(subs []Submission) {
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].EffectiveTime().After(subs[j].EffectiveTime())
	})
}
