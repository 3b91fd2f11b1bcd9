package store

import "time"

const dayLayout = "2006-01-02"

// DayKey formats a time as the ledger's calendar-day key.
func DayKey(t time.Time) string {
	return t.Format(dayLayout)
}

// Meta is the per-session metadata: an optional display name and the
// completion ledger. It is persisted across sessions and has no explicit
// teardown.
type Meta struct {
	Name        string         `json:"name,omitempty"`
	Completions map[string]int `json:"daily_completions"`
}

func NewMeta() *Meta {
	return &Meta{Completions: map[string]int{}}
}

// RecordCompletion increments the completion count for day, creating the
// entry if absent. Counts only ever grow; un-completing a task does not
// decrement them.
func (m *Meta) RecordCompletion(day string) {
	if m.Completions == nil {
		m.Completions = map[string]int{}
	}
	m.Completions[day]++
}

// Streak counts consecutive calendar days with at least one completion,
// walking backward from asOf. A day with zero (or no) completions ends
// the walk, so an empty asOf day means a streak of 0.
func (m *Meta) Streak(asOf time.Time) int {
	day := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, asOf.Location())
	streak := 0
	for m.Completions[DayKey(day)] > 0 {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
