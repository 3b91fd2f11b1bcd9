package store

import (
	"sort"
	"strings"
)

// Filters. Any category name is also a valid filter.
const (
	FilterAll   = "all"
	FilterToday = "today"
)

// Sort keys. An unrecognized key preserves insertion order.
const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortDeadline  = "deadline"
	SortCompleted = "completed"
)

// QueryOptions narrows and orders a task view.
type QueryOptions struct {
	Filter string
	Search string
	Sort   string
}

// Query produces an ordered view of tasks without mutating the input.
// Filtering and searching apply before sorting.
func Query(tasks []Task, opts QueryOptions) []Task {
	filter := strings.TrimSpace(strings.ToLower(opts.Filter))
	today := DayKey(timeNow())

	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		switch filter {
		case "", FilterAll:
		case FilterToday:
			if t.Due != today {
				continue
			}
		default:
			if t.Category != filter {
				continue
			}
		}
		out = append(out, t)
	}

	if q := strings.ToLower(strings.TrimSpace(opts.Search)); q != "" {
		kept := out[:0]
		for _, t := range out {
			if strings.Contains(strings.ToLower(t.Text), q) ||
				strings.Contains(t.Category, q) ||
				strings.Contains(t.Priority, q) {
				kept = append(kept, t)
			}
		}
		out = kept
	}

	switch strings.TrimSpace(strings.ToLower(opts.Sort)) {
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Created.After(out[j].Created)
		})
	case SortOldest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Created.Before(out[j].Created)
		})
	case SortDeadline:
		// Tasks without a due date sort last; ISO dates compare as strings.
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Due == "" {
				return false
			}
			if out[j].Due == "" {
				return true
			}
			return out[i].Due < out[j].Due
		})
	case SortCompleted:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Completed != out[j].Completed {
				return out[i].Completed
			}
			return out[i].Created.After(out[j].Created)
		})
	}
	return out
}
