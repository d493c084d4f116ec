package task

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

func TestNew_Defaults(t *testing.T) {
	created, err := New(Spec{Title: "buy milk"}, testNow)
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "buy milk", created.Title)
	assert.Equal(t, DefaultCategory, created.Category)
	assert.Equal(t, PriorityMedium, created.Priority)
	assert.Equal(t, StatusPending, created.Status)
	assert.Equal(t, KindNormal, created.Kind)
	assert.Equal(t, testNow, created.CreatedAt)
	assert.Nil(t, created.DueAt)
	assert.Nil(t, created.CompletedAt)
}

func TestNew_EmptyTitle(t *testing.T) {
	_, err := New(Spec{Title: "   "}, testNow)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)
}

func TestNew_UrgentForcesHighPriority(t *testing.T) {
	created, err := New(Spec{Title: "server down", Kind: KindUrgent, Priority: PriorityLow}, testNow)
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, created.Priority)
}

func TestNew_RecurringNeedsInterval(t *testing.T) {
	_, err := New(Spec{Title: "water plants", Kind: KindRecurring}, testNow)
	require.Error(t, err)

	created, err := New(Spec{Title: "water plants", Kind: KindRecurring, RecurDays: 3}, testNow)
	require.NoError(t, err)
	assert.Equal(t, 3, created.RecurDays)
}

func TestNew_IntervalOnlyForRecurring(t *testing.T) {
	_, err := New(Spec{Title: "oops", RecurDays: 2}, testNow)
	require.Error(t, err)
}

func TestNew_UniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		created, err := New(Spec{Title: "x"}, testNow)
		require.NoError(t, err)
		assert.False(t, seen[created.ID])
		seen[created.ID] = true
	}
}

func TestMarkComplete(t *testing.T) {
	created, err := New(Spec{Title: "ship release"}, testNow)
	require.NoError(t, err)

	completedAt := testNow.Add(time.Hour)
	require.NoError(t, created.MarkComplete(completedAt))
	assert.Equal(t, StatusCompleted, created.Status)
	require.NotNil(t, created.CompletedAt)
	assert.Equal(t, completedAt, *created.CompletedAt)

	// Double completion is rejected and the original timestamp kept.
	err = created.MarkComplete(completedAt.Add(time.Hour))
	require.ErrorIs(t, err, ErrAlreadyCompleted)
	assert.Equal(t, completedAt, *created.CompletedAt)
}

func TestOverdue(t *testing.T) {
	past := testNow.Add(-time.Hour)
	future := testNow.Add(time.Hour)

	pending, err := New(Spec{Title: "late", DueAt: &past}, testNow.Add(-2*time.Hour))
	require.NoError(t, err)
	assert.True(t, pending.Overdue(testNow))
	assert.False(t, pending.Overdue(past.Add(-time.Minute)))

	notDue, err := New(Spec{Title: "on time", DueAt: &future}, testNow)
	require.NoError(t, err)
	assert.False(t, notDue.Overdue(testNow))

	noDue, err := New(Spec{Title: "whenever"}, testNow)
	require.NoError(t, err)
	assert.False(t, noDue.Overdue(testNow))

	// A completed task past its due date is never overdue.
	require.NoError(t, pending.MarkComplete(testNow))
	assert.False(t, pending.Overdue(testNow))
}

func TestDueToday(t *testing.T) {
	sameDay := time.Date(2024, 5, 20, 23, 0, 0, 0, time.UTC)
	created, err := New(Spec{Title: "today", DueAt: &sameDay}, testNow)
	require.NoError(t, err)

	assert.True(t, created.DueToday(testNow))
	assert.False(t, created.DueToday(testNow.AddDate(0, 0, 1)))
}

func TestDueWithin(t *testing.T) {
	due := testNow.AddDate(0, 0, 3)
	created, err := New(Spec{Title: "soon", DueAt: &due}, testNow)
	require.NoError(t, err)

	assert.True(t, created.DueWithin(testNow, 7))
	assert.True(t, created.DueWithin(testNow, 3))
	assert.False(t, created.DueWithin(testNow, 2))

	// Already-overdue tasks are not upcoming.
	assert.False(t, created.DueWithin(testNow.AddDate(0, 0, 4), 7))

	require.NoError(t, created.MarkComplete(testNow))
	assert.False(t, created.DueWithin(testNow, 7))

	undated, err := New(Spec{Title: "no due"}, testNow)
	require.NoError(t, err)
	assert.False(t, undated.DueWithin(testNow, 7))
}

func TestNextOccurrence(t *testing.T) {
	due := time.Date(2024, 5, 22, 18, 0, 0, 0, time.UTC)
	original, err := New(Spec{
		Title:       "water plants",
		Description: "the ones on the balcony",
		Category:    "home",
		Priority:    PriorityHigh,
		Kind:        KindRecurring,
		DueAt:       &due,
		RecurDays:   3,
	}, testNow)
	require.NoError(t, err)

	later := testNow.Add(48 * time.Hour)
	next := original.NextOccurrence(later)

	assert.NotEqual(t, original.ID, next.ID)
	assert.Equal(t, StatusPending, next.Status)
	assert.Nil(t, next.CompletedAt)
	assert.Equal(t, later, next.CreatedAt)
	require.NotNil(t, next.DueAt)
	assert.Equal(t, due.AddDate(0, 0, 3), *next.DueAt)

	// Everything else carries over.
	assert.Equal(t, original.Title, next.Title)
	assert.Equal(t, original.Description, next.Description)
	assert.Equal(t, original.Category, next.Category)
	assert.Equal(t, original.Priority, next.Priority)
	assert.Equal(t, KindRecurring, next.Kind)
	assert.Equal(t, 3, next.RecurDays)

	// The receiver is untouched.
	assert.Equal(t, due, *original.DueAt)
	assert.Equal(t, StatusPending, original.Status)
}

func TestLess_PriorityOrder(t *testing.T) {
	var tasks []Task
	for _, p := range []Priority{PriorityLow, PriorityHigh, PriorityMedium} {
		created, err := New(Spec{Title: string(p), Priority: p}, testNow)
		require.NoError(t, err)
		tasks = append(tasks, created)
	}

	assert.True(t, tasks[1].Less(&tasks[2]))  // high before medium
	assert.True(t, tasks[2].Less(&tasks[0]))  // medium before low
	assert.False(t, tasks[0].Less(&tasks[1])) // low after high
}

func TestLess_DueDateTieBreak(t *testing.T) {
	early := testNow.Add(time.Hour)
	late := testNow.Add(48 * time.Hour)

	a, err := New(Spec{Title: "a", DueAt: &early}, testNow)
	require.NoError(t, err)
	b, err := New(Spec{Title: "b", DueAt: &late}, testNow)
	require.NoError(t, err)
	c, err := New(Spec{Title: "c"}, testNow)
	require.NoError(t, err)

	assert.True(t, a.Less(&b))
	assert.True(t, b.Less(&c)) // no due date sorts last
	assert.False(t, c.Less(&a))
}

func TestMatches(t *testing.T) {
	created, err := New(Spec{Title: "Buy Milk", Description: "two liters", Category: "Errands"}, testNow)
	require.NoError(t, err)

	assert.True(t, created.Matches("milk"))
	assert.True(t, created.Matches("LITERS"))
	assert.True(t, created.Matches("errand"))
	assert.False(t, created.Matches("bread"))
}

func TestJSONRoundTrip(t *testing.T) {
	due := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	original, err := New(Spec{
		Title:       "weekly review",
		Description: "inbox zero",
		Category:    "work",
		Priority:    PriorityHigh,
		Kind:        KindRecurring,
		DueAt:       &due,
		RecurDays:   7,
	}, testNow)
	require.NoError(t, err)
	require.NoError(t, original.MarkComplete(testNow.Add(time.Hour)))

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Task
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestParsePriority(t *testing.T) {
	for input, want := range map[string]Priority{
		"low": PriorityLow, "l": PriorityLow, "1": PriorityLow,
		"medium": PriorityMedium, "MED": PriorityMedium, "m": PriorityMedium, "2": PriorityMedium, "": PriorityMedium,
		"high": PriorityHigh, "H": PriorityHigh, "3": PriorityHigh,
	} {
		got, err := ParsePriority(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}

	_, err := ParsePriority("extreme")
	assert.Error(t, err)
}
