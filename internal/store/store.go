// Package store holds the in-memory task list, the per-day completion
// ledger, and the read-only query and metrics passes over them. It has no
// I/O of its own; persistence is the caller's concern.
package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

type randReader struct{}

func (randReader) Read(p []byte) (int, error) { return rand.Read(p) }

var (
	ErrNotFound  = errors.New("not found")
	ErrInvalid   = errors.New("invalid")
	ErrAmbiguous = errors.New("ambiguous")
	ErrFormat    = errors.New("invalid format")
	timeNow      = func() time.Time { return time.Now() }
)

// Categories and priorities are closed sets; anything outside them is
// coerced to the default on create/import and ignored on edit.
const (
	CategoryWork     = "work"
	CategoryStudy    = "study"
	CategoryPersonal = "personal"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task is one to-do entry. ID and Created are immutable after creation.
// Due is a calendar date in YYYY-MM-DD form; empty means no deadline.
type Task struct {
	ID        string    `json:"id" yaml:"id"`
	Text      string    `json:"text" yaml:"text"`
	Category  string    `json:"category" yaml:"category"`
	Priority  string    `json:"priority" yaml:"priority"`
	Due       string    `json:"due,omitempty" yaml:"due,omitempty"`
	Completed bool      `json:"completed" yaml:"completed"`
	Created   time.Time `json:"created" yaml:"created"`
}

// Normalize coerces the enumerated fields to valid values and the due
// date to a bare calendar date. Persisted blobs pass through here on
// load so hand-edited files cannot break the enum invariant.
func (t Task) Normalize() Task {
	t.Category = normalizeCategory(t.Category)
	t.Priority = normalizePriority(t.Priority)
	t.Due = normalizeDue(t.Due)
	return t
}

// Store is the authoritative task list for one session. It assumes
// exclusive access from a single logical thread of control; callers
// exposing it concurrently must add their own serialization.
type Store struct {
	tasks []Task
	meta  *Meta
}

func New() *Store {
	return &Store{meta: NewMeta()}
}

// NewWithMeta builds a store from previously persisted state. A nil meta
// is replaced with an empty one so the ledger is always usable.
func NewWithMeta(tasks []Task, meta *Meta) *Store {
	if meta == nil {
		meta = NewMeta()
	}
	return &Store{tasks: tasks, meta: meta}
}

func (s *Store) Meta() *Meta { return s.meta }

func (s *Store) Len() int { return len(s.tasks) }

// Tasks returns a copy of the task list in insertion order.
func (s *Store) Tasks() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

type AddInput struct {
	Text     string
	Category string
	Priority string
	Due      string
}

// Add appends a new task. Text must be non-empty after trimming; category
// and priority fall back to their defaults when unrecognized.
func (s *Store) Add(in AddInput) (*Task, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: task text is required", ErrInvalid)
	}
	t := Task{
		ID:       newULID(),
		Text:     text,
		Category: normalizeCategory(in.Category),
		Priority: normalizePriority(in.Priority),
		Due:      normalizeDue(in.Due),
		Created:  timeNow(),
	}
	s.tasks = append(s.tasks, t)
	return &t, nil
}

// Toggle flips the completion state of the task with the given id. A
// false->true transition records a completion in the ledger for today;
// the reverse transition leaves the ledger untouched.
func (s *Store) Toggle(id string) (*Task, error) {
	for i := range s.tasks {
		if s.tasks[i].ID != id {
			continue
		}
		s.tasks[i].Completed = !s.tasks[i].Completed
		if s.tasks[i].Completed {
			s.meta.RecordCompletion(DayKey(timeNow()))
		}
		t := s.tasks[i]
		return &t, nil
	}
	return nil, ErrNotFound
}

// EditInput carries one structured edit. Zero-value fields leave the task
// unchanged; DueSet distinguishes "clear the due date" from "keep it".
type EditInput struct {
	Text     string
	Category string
	Priority string
	Due      string
	DueSet   bool
}

// Edit applies the set fields of in to the task with the given id. An
// empty text keeps the prior text; category and priority are applied only
// when they name a known value (case-insensitive), otherwise the prior
// value is kept.
func (s *Store) Edit(id string, in EditInput) (*Task, error) {
	for i := range s.tasks {
		if s.tasks[i].ID != id {
			continue
		}
		if text := strings.TrimSpace(in.Text); text != "" {
			s.tasks[i].Text = text
		}
		if c, ok := validCategory(in.Category); ok {
			s.tasks[i].Category = c
		}
		if p, ok := validPriority(in.Priority); ok {
			s.tasks[i].Priority = p
		}
		if in.DueSet {
			s.tasks[i].Due = normalizeDue(in.Due)
		}
		t := s.tasks[i]
		return &t, nil
	}
	return nil, ErrNotFound
}

// Delete removes the task with the given id and reports whether one was
// found.
func (s *Store) Delete(id string) bool {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the store unconditionally. The ledger is kept.
func (s *Store) Clear() {
	s.tasks = nil
}

// FindByPrefix resolves a task by a case-insensitive id prefix. More than
// one match reports ErrAmbiguous.
func (s *Store) FindByPrefix(prefix string) (*Task, error) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalid)
	}
	var found *Task
	for i := range s.tasks {
		if !strings.HasPrefix(strings.ToUpper(s.tasks[i].ID), prefix) {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("%w: id prefix %q matches multiple tasks", ErrAmbiguous, prefix)
		}
		t := s.tasks[i]
		found = &t
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

// ImportMerge decodes raw as a sequence of partial task records and
// appends them to the store. JSON is tried first with a lenient decode
// (comments and trailing commas are tolerated), then YAML, so the store's
// own export round-trips. The top level must be a sequence; anything else
// fails with ErrFormat and the store is left unchanged. Individual
// records are coerced rather than rejected: a missing id gets a fresh
// one, a missing created timestamp becomes now, completed is coerced to
// a boolean, and category/priority are normalized to valid values.
// Returns the number of tasks merged.
func (s *Store) ImportMerge(raw []byte) (int, error) {
	records, err := decodeRecords(raw)
	if err != nil {
		return 0, err
	}
	now := timeNow()
	merged := make([]Task, 0, len(records))
	for _, rec := range records {
		fields, ok := rec.(map[string]any)
		if !ok {
			// Non-record entries (numbers, strings) carry nothing coercible.
			continue
		}
		merged = append(merged, coerceRecord(fields, now))
	}
	s.tasks = append(s.tasks, merged...)
	return len(merged), nil
}

func decodeRecords(raw []byte) ([]any, error) {
	var records []any
	if data, err := hujson.Standardize(raw); err == nil {
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("%w: expected a sequence of task records", ErrFormat)
		}
	} else if err := yaml.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: expected a sequence of task records", ErrFormat)
	}
	// Both decoders treat a null (or empty) document as a successful no-op
	// that leaves the slice nil; null is not a sequence.
	if records == nil {
		return nil, fmt.Errorf("%w: expected a sequence of task records", ErrFormat)
	}
	return records, nil
}

func coerceRecord(fields map[string]any, now time.Time) Task {
	t := Task{
		ID:        stringField(fields, "id"),
		Text:      strings.TrimSpace(stringField(fields, "text")),
		Category:  normalizeCategory(stringField(fields, "category")),
		Priority:  normalizePriority(stringField(fields, "priority")),
		Due:       coerceDue(fields["due"]),
		Completed: truthy(fields["completed"]),
		Created:   coerceCreated(fields["created"], now),
	}
	if t.ID == "" {
		t.ID = newULID()
	}
	return t
}

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

// coerceDue accepts both string dates and the time.Time values the YAML
// decoder produces for bare dates.
func coerceDue(v any) string {
	switch x := v.(type) {
	case string:
		return normalizeDue(x)
	case time.Time:
		return DayKey(x)
	default:
		return ""
	}
}

// truthy mirrors loose-input truthiness: any non-empty string counts as
// true, numbers are true when non-zero.
func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	default:
		return false
	}
}

func coerceCreated(v any, now time.Time) time.Time {
	switch x := v.(type) {
	case time.Time:
		return x
	case float64:
		if x > 0 {
			return time.UnixMilli(int64(x))
		}
	case string:
		if ts, err := time.Parse(time.RFC3339, x); err == nil {
			return ts
		}
		if ts, err := time.Parse(dayLayout, x); err == nil {
			return ts
		}
	}
	return now
}

func normalizeCategory(c string) string {
	if v, ok := validCategory(c); ok {
		return v
	}
	return CategoryPersonal
}

func validCategory(c string) (string, bool) {
	switch strings.TrimSpace(strings.ToLower(c)) {
	case CategoryWork:
		return CategoryWork, true
	case CategoryStudy:
		return CategoryStudy, true
	case CategoryPersonal:
		return CategoryPersonal, true
	default:
		return "", false
	}
}

func normalizePriority(p string) string {
	if v, ok := validPriority(p); ok {
		return v
	}
	return PriorityLow
}

func validPriority(p string) (string, bool) {
	switch strings.TrimSpace(strings.ToLower(p)) {
	case PriorityLow:
		return PriorityLow, true
	case PriorityMedium, "med":
		return PriorityMedium, true
	case PriorityHigh:
		return PriorityHigh, true
	default:
		return "", false
	}
}

// normalizeDue reduces a due value to a bare YYYY-MM-DD date, dropping
// anything that does not parse as one.
func normalizeDue(due string) string {
	due = strings.TrimSpace(due)
	if due == "" {
		return ""
	}
	if len(due) >= len(dayLayout) {
		datePart := due[:len(dayLayout)]
		if _, err := time.Parse(dayLayout, datePart); err == nil {
			return datePart
		}
	}
	if ts, err := time.Parse(time.RFC3339, due); err == nil {
		return ts.Format(dayLayout)
	}
	return ""
}

func newULID() string {
	t := ulid.Timestamp(timeNow())
	entropy := ulid.Monotonic(randReader{}, 0)
	id, err := ulid.New(t, entropy)
	if err != nil {
		// fallback
		return fmt.Sprintf("%d", timeNow().UnixNano())
	}
	return strings.ToUpper(id.String())
}
