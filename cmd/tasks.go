package cmd

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"todoman/internal/config"
	"todoman/internal/dates"
	"todoman/internal/store"
	"todoman/internal/task"
)

const dueLayout = "2006-01-02 15:04"

// addCommand creates a new task from flags and positional title words.
func addCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todoman add", flag.ContinueOnError)
	desc := fs.String("desc", "", "Task description")
	category := fs.String("category", cfg.DefaultCategory, "Task category")
	prio := fs.String("priority", "", "Priority (low|medium|high)")
	kindStr := fs.String("kind", "", "Kind (normal|urgent|recurring)")
	due := fs.String("due", "", "Due date (2006-01-02, today, tomorrow, +3days, ...)")
	every := fs.String("every", "", "Recurrence interval for recurring tasks (+3days, +2weeks)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	title := strings.Join(fs.Args(), " ")

	priority, err := task.ParsePriority(*prio)
	if err != nil {
		return err
	}
	kind, err := task.ParseKind(*kindStr)
	if err != nil {
		return err
	}

	now := time.Now()
	spec := task.Spec{
		Title:       title,
		Description: *desc,
		Category:    *category,
		Priority:    priority,
		Kind:        kind,
	}
	if *due != "" {
		dueAt, err := dates.Parse(*due, now)
		if err != nil {
			return fmt.Errorf("invalid due date: %w", err)
		}
		spec.DueAt = &dueAt
	}
	if *every != "" {
		days, err := dates.ParseInterval(*every)
		if err != nil {
			return fmt.Errorf("invalid interval: %w", err)
		}
		spec.RecurDays = days
		if spec.Kind == task.KindNormal {
			spec.Kind = task.KindRecurring
		}
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	created, err := st.Add(spec)
	if err != nil {
		return err
	}
	fmt.Printf("Added %s: %s\n", created.ID, created.Title)
	return nil
}

// lsCommand lists tasks with optional filtering and sorting.
func lsCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todoman ls", flag.ContinueOnError)
	status := fs.String("status", "", "Filter by status (pending|completed)")
	category := fs.String("category", "", "Filter by category")
	overdue := fs.Bool("overdue", false, "Only overdue tasks")
	today := fs.Bool("today", false, "Only tasks due today")
	upcoming := fs.Int("upcoming", 0, "Only pending tasks due within N days")
	sortBy := fs.String("sort", "", "Sort order (priority|due); default store order")

	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}

	var tasks []task.Task
	switch *sortBy {
	case "priority":
		tasks = st.SortByPriority()
	case "due":
		tasks = st.SortByDueDate()
	case "":
		tasks = st.Tasks()
	default:
		return fmt.Errorf("unknown sort order %q", *sortBy)
	}

	if *upcoming < 0 {
		return fmt.Errorf("-upcoming must be positive")
	}
	if *status != "" || *category != "" || *overdue || *today || *upcoming > 0 {
		f := store.Filter{Category: *category, Overdue: *overdue, DueToday: *today, DueWithin: *upcoming}
		if *status != "" {
			f.Status = task.Status(*status)
			if !f.Status.Valid() {
				return fmt.Errorf("unknown status %q", *status)
			}
		}
		tasks = applyFilter(tasks, f, time.Now())
	}

	printTasks(tasks)
	return nil
}

// applyFilter filters an already-ordered slice, preserving its order.
func applyFilter(tasks []task.Task, f store.Filter, now time.Time) []task.Task {
	var out []task.Task
	for i := range tasks {
		t := &tasks[i]
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

func printTasks(tasks []task.Task) {
	if len(tasks) == 0 {
		fmt.Println("No tasks.")
		return
	}
	now := time.Now()
	for _, t := range tasks {
		check := "[ ]"
		if t.Status == task.StatusCompleted {
			check = "[x]"
		}
		line := fmt.Sprintf("%s %s (%s) [%s] %s", check, t.ID, t.Priority, t.Category, t.Title)
		if t.Kind == task.KindUrgent {
			line += " !"
		}
		if t.Kind == task.KindRecurring {
			line += fmt.Sprintf(" (every %dd)", t.RecurDays)
		}
		if t.DueAt != nil {
			line += " due " + t.DueAt.Format(dueLayout)
			if t.Overdue(now) {
				line += " OVERDUE"
			}
		}
		fmt.Println(line)
	}
}

// doneCommand completes the task with the given id.
func doneCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todoman done", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: todoman done <id>")
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}

	completed, next, err := st.Complete(fs.Arg(0))
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("no task with id %q", fs.Arg(0))
	case errors.Is(err, task.ErrAlreadyCompleted):
		return fmt.Errorf("task %q is already completed", fs.Arg(0))
	case err != nil:
		return err
	}

	fmt.Printf("Completed %s: %s\n", completed.ID, completed.Title)
	if next != nil {
		due := "unscheduled"
		if next.DueAt != nil {
			due = next.DueAt.Format(dueLayout)
		}
		fmt.Printf("Next occurrence %s due %s\n", next.ID, due)
	}
	return nil
}

// rmCommand deletes the task with the given id.
func rmCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todoman rm", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: todoman rm <id>")
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	if err := st.Remove(fs.Arg(0)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no task with id %q", fs.Arg(0))
		}
		return err
	}
	fmt.Printf("Deleted %s\n", fs.Arg(0))
	return nil
}

// searchCommand prints tasks matching the keyword.
func searchCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todoman search", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("usage: todoman search <keyword>")
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	matches := st.Search(strings.Join(fs.Args(), " "))
	if len(matches) == 0 {
		fmt.Fprintln(os.Stderr, "No matching tasks.")
		return nil
	}
	printTasks(matches)
	return nil
}
