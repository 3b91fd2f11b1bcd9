package store

import (
	"fmt"
	"math"
	"time"
)

// Metrics aggregates the current task set into display figures. Celebrate
// is set only when every task is completed; the celebratory effect itself
// belongs to the presentation layer.
type Metrics struct {
	Total     int
	Completed int
	Pending   int
	Percent   int
	Message   string
	Streak    int
	Tip       string
	Celebrate bool
}

const (
	msgStart    = "Start adding tasks"
	msgKeepUp   = "Keep going, small steps build momentum"
	msgProgress = "Great progress, you're doing well"
	msgDone     = "All tasks completed, celebrate!"

	tipOnboarding = "Tip: Add a task to get reminders."
	tipFocus      = "Smart Tip: Keep your task list short and focused for productivity."
)

// dueSoonWindow is how far ahead the advisory engine looks for pressing
// deadlines. Overdue tasks fall inside the window too.
const dueSoonWindow = 48 * time.Hour

// ComputeMetrics derives counts, the completion percentage, the progress
// message tier, the current streak, and a single advisory tip from the
// task set as of the given time.
func ComputeMetrics(tasks []Task, meta *Meta, asOf time.Time) Metrics {
	m := Metrics{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			m.Completed++
		}
	}
	m.Pending = m.Total - m.Completed
	if m.Total > 0 {
		m.Percent = int(math.Round(float64(m.Completed) / float64(m.Total) * 100))
	}

	switch {
	case m.Percent == 0:
		m.Message = msgStart
	case m.Percent < 50:
		m.Message = msgKeepUp
	case m.Percent < 100:
		m.Message = msgProgress
	default:
		m.Message = msgDone
		m.Celebrate = true
	}

	if meta != nil {
		m.Streak = meta.Streak(asOf)
	}
	m.Tip = computeTip(tasks, asOf)
	return m
}

// computeTip picks one advisory string; the first matching rule wins.
func computeTip(tasks []Task, asOf time.Time) string {
	if len(tasks) == 0 {
		return tipOnboarding
	}
	high := 0
	soon := 0
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		if t.Priority == PriorityHigh {
			high++
		}
		if t.Due != "" {
			if due, err := time.Parse(dayLayout, t.Due); err == nil && due.Sub(asOf) <= dueSoonWindow {
				soon++
			}
		}
	}
	if high > 2 {
		return fmt.Sprintf("Smart Tip: You have %d high-priority tasks. Focus on one at a time.", high)
	}
	if soon > 0 {
		return fmt.Sprintf("Smart Tip: %d task(s) due within 48 hours, prioritize them.", soon)
	}
	return tipFocus
}
