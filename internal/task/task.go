// Package task defines the to-do task model and its lifecycle rules.
package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrAlreadyCompleted is returned when completing a completed task.
var ErrAlreadyCompleted = errors.New("task already completed")

// Status represents a task status.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Priority represents a task priority level.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Kind tags the task variant. Urgent tasks always carry high priority;
// recurring tasks regenerate a fresh pending occurrence on completion.
type Kind string

const (
	KindNormal    Kind = "normal"
	KindUrgent    Kind = "urgent"
	KindRecurring Kind = "recurring"
)

// priorityWeight orders priorities for sorting, high first.
var priorityWeight = map[Priority]int{
	PriorityHigh:   0,
	PriorityMedium: 1,
	PriorityLow:    2,
}

// ParsePriority parses a priority from user input. It accepts full
// names, single-letter shorthands, and the numeric forms 1..3.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "l", "1":
		return PriorityLow, nil
	case "medium", "med", "m", "2", "":
		return PriorityMedium, nil
	case "high", "h", "3":
		return PriorityHigh, nil
	}
	return "", &ValidationError{Field: "priority", Err: fmt.Errorf("unknown priority %q", s)}
}

// ParseKind parses a task kind string.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return KindNormal, nil
	case "urgent":
		return KindUrgent, nil
	case "recurring":
		return KindRecurring, nil
	}
	return "", &ValidationError{Field: "kind", Err: fmt.Errorf("unknown kind %q", s)}
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Valid reports whether p is a known priority value.
func (p Priority) Valid() bool {
	_, ok := priorityWeight[p]
	return ok
}

// Valid reports whether k is a known kind value.
func (k Kind) Valid() bool {
	return k == KindNormal || k == KindUrgent || k == KindRecurring
}

// ValidationError reports a rejected task field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Task is a single to-do item. The JSON field names and enumeration
// values are the persisted record format and must stay stable.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	Kind        Kind       `json:"kind"`
	CreatedAt   time.Time  `json:"created_at"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// RecurDays is the interval, in whole days, added to DueAt when a
	// recurring task regenerates. Present only for KindRecurring.
	RecurDays int `json:"recur_interval,omitempty"`
}

// Spec holds the caller-supplied fields for a new task.
type Spec struct {
	Title       string
	Description string
	Category    string
	Priority    Priority
	Kind        Kind
	DueAt       *time.Time
	RecurDays   int
}

// DefaultCategory is assigned when a spec leaves the category empty.
const DefaultCategory = "general"

// New validates spec and builds a pending task. Urgent tasks are forced
// to high priority regardless of the requested value.
func New(spec Spec, now time.Time) (Task, error) {
	title := strings.TrimSpace(spec.Title)
	if title == "" {
		return Task{}, &ValidationError{Field: "title", Err: fmt.Errorf("must not be empty")}
	}

	kind := spec.Kind
	if kind == "" {
		kind = KindNormal
	}
	if !kind.Valid() {
		return Task{}, &ValidationError{Field: "kind", Err: fmt.Errorf("unknown kind %q", kind)}
	}

	priority := spec.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.Valid() {
		return Task{}, &ValidationError{Field: "priority", Err: fmt.Errorf("unknown priority %q", priority)}
	}
	if kind == KindUrgent {
		priority = PriorityHigh
	}

	category := strings.TrimSpace(spec.Category)
	if category == "" {
		category = DefaultCategory
	}

	if kind == KindRecurring && spec.RecurDays <= 0 {
		return Task{}, &ValidationError{Field: "recur_interval", Err: fmt.Errorf("recurring tasks need a positive interval")}
	}
	if kind != KindRecurring && spec.RecurDays != 0 {
		return Task{}, &ValidationError{Field: "recur_interval", Err: fmt.Errorf("only recurring tasks carry an interval")}
	}

	t := Task{
		ID:          NewID(),
		Title:       title,
		Description: strings.TrimSpace(spec.Description),
		Category:    category,
		Priority:    priority,
		Status:      StatusPending,
		Kind:        kind,
		CreatedAt:   now,
		RecurDays:   spec.RecurDays,
	}
	if spec.DueAt != nil {
		due := *spec.DueAt
		t.DueAt = &due
	}
	return t, nil
}

// NewID returns a short unique task identifier.
func NewID() string {
	return uuid.NewString()[:8]
}

// MarkComplete transitions the task from pending to completed and
// records the completion time. Completing twice is rejected; the
// original completion timestamp is kept.
func (t *Task) MarkComplete(now time.Time) error {
	if t.Status == StatusCompleted {
		return fmt.Errorf("task %s: %w", t.ID, ErrAlreadyCompleted)
	}
	t.Status = StatusCompleted
	completed := now
	t.CompletedAt = &completed
	return nil
}

// Overdue reports whether the task is pending with a due date strictly
// before now. Completed tasks are never overdue.
func (t *Task) Overdue(now time.Time) bool {
	if t.Status != StatusPending || t.DueAt == nil {
		return false
	}
	return t.DueAt.Before(now)
}

// DueToday reports whether the task is due on now's calendar day.
func (t *Task) DueToday(now time.Time) bool {
	if t.DueAt == nil {
		return false
	}
	y1, m1, d1 := t.DueAt.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// DueWithin reports whether the task is pending and due between now
// and now plus the given number of days. Overdue tasks are excluded.
func (t *Task) DueWithin(now time.Time, days int) bool {
	if t.Status != StatusPending || t.DueAt == nil {
		return false
	}
	limit := now.AddDate(0, 0, days)
	return !t.DueAt.Before(now) && !t.DueAt.After(limit)
}

// NextOccurrence builds the follow-up occurrence of a recurring task:
// a fresh pending task with a new ID and the due date advanced by the
// recurrence interval. All other fields carry over. The receiver is
// left untouched; callers mark it completed separately so history is
// preserved.
func (t Task) NextOccurrence(now time.Time) Task {
	next := t
	next.ID = NewID()
	next.Status = StatusPending
	next.CompletedAt = nil
	next.CreatedAt = now
	if t.DueAt != nil {
		due := t.DueAt.AddDate(0, 0, t.RecurDays)
		next.DueAt = &due
	}
	return next
}

// Less orders tasks for priority sorting: higher priority first, then
// earlier due date, tasks without a due date after those with one.
func (t *Task) Less(other *Task) bool {
	wl, wr := priorityWeight[t.Priority], priorityWeight[other.Priority]
	if wl != wr {
		return wl < wr
	}
	return dueBefore(t.DueAt, other.DueAt)
}

// dueBefore orders due dates ascending with nil last.
func dueBefore(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.Before(*b)
}

// DueLess orders tasks by due date only, nil due dates last.
func (t *Task) DueLess(other *Task) bool {
	return dueBefore(t.DueAt, other.DueAt)
}

// Matches reports whether the query occurs, case-insensitively, in the
// task title, description, or category.
func (t *Task) Matches(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Description), q) ||
		strings.Contains(strings.ToLower(t.Category), q)
}
