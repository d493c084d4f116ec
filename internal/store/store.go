// Package store holds the task collection and its JSON persistence.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"todoman/internal/task"
)

// ErrNotFound is returned when no task carries the requested ID.
var ErrNotFound = errors.New("task not found")

// Option configures a Store.
type Option func(*Store)

// WithLogger attaches a logger for operation logging.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store owns the in-memory task collection in insertion order and
// persists it to a single JSON file after every mutation.
type Store struct {
	path   string
	tasks  []task.Task
	logger *log.Logger
	now    func() time.Time
}

// Open loads the store from path. A missing file yields an empty
// store; an unreadable or invalid file is an error.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path: path,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the data file path.
func (s *Store) Path() string {
	return s.path
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Reload re-reads the data file, replacing the in-memory collection.
// Lets a long-lived caller pick up edits made behind its back.
func (s *Store) Reload() error {
	return s.load()
}

// load reads the whole data file, validates it against the task list
// schema, and decodes it. A missing file is not an error.
func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.tasks = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("read data file: %w", err)
	}

	if err := validateDocument(data); err != nil {
		return fmt.Errorf("data file %s: %w", s.path, err)
	}

	var tasks []task.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return fmt.Errorf("parse data file %s: %w", s.path, err)
	}

	s.tasks = tasks
	s.logger.Debug("loaded tasks", "count", len(tasks), "path", s.path)
	return nil
}

// Save writes the whole collection as one JSON document. The document
// is written to a temp file first and renamed into place so a write
// failure cannot truncate the existing file.
func (s *Store) Save() error {
	data, err := json.MarshalIndent(s.tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tasks-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace data file: %w", err)
	}

	s.logger.Debug("saved tasks", "count", len(s.tasks), "path", s.path)
	return nil
}

// Add validates the spec, appends the new task, and persists.
func (s *Store) Add(spec task.Spec) (task.Task, error) {
	t, err := task.New(spec, s.now())
	if err != nil {
		return task.Task{}, err
	}
	s.tasks = append(s.tasks, t)
	if err := s.Save(); err != nil {
		return task.Task{}, err
	}
	s.logger.Info("task added", "id", t.ID, "title", t.Title, "kind", t.Kind)
	return t, nil
}

// Get returns the task with the given ID.
func (s *Store) Get(id string) (task.Task, error) {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return s.tasks[i], nil
		}
	}
	return task.Task{}, fmt.Errorf("task %q: %w", id, ErrNotFound)
}

// Remove deletes the task with the given ID and persists.
func (s *Store) Remove(id string) error {
	for i := range s.tasks {
		if s.tasks[i].ID != id {
			continue
		}
		removed := s.tasks[i]
		s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
		if err := s.Save(); err != nil {
			return err
		}
		s.logger.Info("task removed", "id", removed.ID, "title", removed.Title)
		return nil
	}
	return fmt.Errorf("task %q: %w", id, ErrNotFound)
}

// Complete marks the task completed and persists. For recurring tasks
// with a due date it also appends the next occurrence, returned as a
// non-nil second value; the completed original stays in the collection
// unchanged. A recurring task without a due date completes terminally,
// since there is no schedule to advance.
func (s *Store) Complete(id string) (task.Task, *task.Task, error) {
	for i := range s.tasks {
		if s.tasks[i].ID != id {
			continue
		}
		now := s.now()
		if err := s.tasks[i].MarkComplete(now); err != nil {
			return task.Task{}, nil, err
		}
		completed := s.tasks[i]

		var next *task.Task
		if completed.Kind == task.KindRecurring && completed.DueAt != nil {
			n := completed.NextOccurrence(now)
			s.tasks = append(s.tasks, n)
			next = &n
		}

		if err := s.Save(); err != nil {
			return task.Task{}, nil, err
		}
		if next != nil {
			s.logger.Info("task completed, next occurrence queued",
				"id", completed.ID, "next_id", next.ID, "next_due", next.DueAt)
		} else {
			s.logger.Info("task completed", "id", completed.ID, "title", completed.Title)
		}
		return completed, next, nil
	}
	return task.Task{}, nil, fmt.Errorf("task %q: %w", id, ErrNotFound)
}

// Tasks returns a copy of the collection in store order.
func (s *Store) Tasks() []task.Task {
	out := make([]task.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Search returns tasks whose title, description, or category contains
// the query, case-insensitively, in store order.
func (s *Store) Search(query string) []task.Task {
	var out []task.Task
	for i := range s.tasks {
		if s.tasks[i].Matches(query) {
			out = append(out, s.tasks[i])
		}
	}
	return out
}

// Filter selects tasks by status, category, overdue, due-today, or
// due within the next DueWithin days. Zero-valued fields match
// everything.
type Filter struct {
	Status    task.Status
	Category  string
	Overdue   bool
	DueToday  bool
	DueWithin int
}

// Filter returns the tasks matching f in store order. The stored
// collection is not mutated.
func (s *Store) Filter(f Filter) []task.Task {
	now := s.now()
	var out []task.Task
	for i := range s.tasks {
		t := &s.tasks[i]
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Category != "" && t.Category != f.Category {
			continue
		}
		if f.Overdue && !t.Overdue(now) {
			continue
		}
		if f.DueToday && !t.DueToday(now) {
			continue
		}
		if f.DueWithin > 0 && !t.DueWithin(now, f.DueWithin) {
			continue
		}
		out = append(out, *t)
	}
	return out
}

// SortByPriority returns a new slice ordered high priority first, then
// earliest due date, tasks without a due date last. Store order is not
// touched.
func (s *Store) SortByPriority() []task.Task {
	out := s.Tasks()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Less(&out[j])
	})
	return out
}

// SortByDueDate returns a new slice ordered by due date ascending,
// tasks without a due date last.
func (s *Store) SortByDueDate() []task.Task {
	out := s.Tasks()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueLess(&out[j])
	})
	return out
}

// Categories returns the distinct categories in sorted order.
func (s *Store) Categories() []string {
	seen := map[string]bool{}
	for i := range s.tasks {
		seen[s.tasks[i].Category] = true
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// ClearCompleted removes all completed tasks, persists, and returns
// how many were removed.
func (s *Store) ClearCompleted() (int, error) {
	kept := s.tasks[:0]
	removed := 0
	for _, t := range s.tasks {
		if t.Status == task.StatusCompleted {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	s.tasks = kept
	if removed == 0 {
		return 0, nil
	}
	if err := s.Save(); err != nil {
		return removed, err
	}
	s.logger.Info("cleared completed tasks", "count", removed)
	return removed, nil
}

// Backup copies the persisted data file to a timestamped sibling and
// returns the backup path. The in-memory state is persisted first so
// the backup reflects the current collection.
func (s *Store) Backup() (string, error) {
	if err := s.Save(); err != nil {
		return "", err
	}

	base := s.path
	ext := filepath.Ext(base)
	stamp := s.now().Format("20060102-150405")
	backupPath := fmt.Sprintf("%s.backup-%s%s", base[:len(base)-len(ext)], stamp, ext)

	src, err := os.Open(s.path)
	if err != nil {
		return "", fmt.Errorf("open data file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(backupPath)
	if err != nil {
		return "", fmt.Errorf("create backup file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(backupPath)
		return "", fmt.Errorf("copy backup: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close backup file: %w", err)
	}

	s.logger.Info("backup written", "path", backupPath)
	return backupPath, nil
}
