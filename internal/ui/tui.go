// Package ui provides the interactive terminal interface.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"todoman/internal/store"
	"todoman/internal/task"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle    = lipgloss.NewStyle().Bold(true)
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	completedStyle = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	overdueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle      = lipgloss.NewStyle().Faint(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	priorityStyles = map[task.Priority]lipgloss.Style{
		task.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		task.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		task.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	}
)

// viewFilter selects which tasks the list shows.
type viewFilter int

const (
	filterAll viewFilter = iota
	filterPending
	filterCompleted
	filterOverdue
)

func (f viewFilter) String() string {
	switch f {
	case filterPending:
		return "pending"
	case filterCompleted:
		return "completed"
	case filterOverdue:
		return "overdue"
	default:
		return "all"
	}
}

// Run starts the interactive task browser over st.
func Run(ctx context.Context, st *store.Store) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("interactive mode requires a TTY")
	}
	model := newModel(st)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type model struct {
	st      *store.Store
	visible []task.Task
	cursor  int

	filter    viewFilter
	searching bool
	query     string

	notice   string
	errMsg   string
	showHelp bool
}

func newModel(st *store.Store) *model {
	m := &model{st: st}
	m.refresh()
	return m
}

func (m *model) Init() tea.Cmd {
	return nil
}

// refresh recomputes the visible task list from the store.
func (m *model) refresh() {
	var tasks []task.Task
	switch m.filter {
	case filterPending:
		tasks = m.st.Filter(store.Filter{Status: task.StatusPending})
	case filterCompleted:
		tasks = m.st.Filter(store.Filter{Status: task.StatusCompleted})
	case filterOverdue:
		tasks = m.st.Filter(store.Filter{Overdue: true})
	default:
		tasks = m.st.Tasks()
	}

	if m.query != "" {
		matched := tasks[:0]
		for _, t := range tasks {
			if t.Matches(m.query) {
				matched = append(matched, t)
			}
		}
		tasks = matched
	}

	m.visible = tasks
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.searching {
		return m.updateSearch(keyMsg)
	}

	m.notice = ""
	m.errMsg = ""

	switch keyMsg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "h", "?":
		m.showHelp = !m.showHelp
	case "j", "down":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "c", "enter":
		m.completeSelected()
	case "d":
		m.deleteSelected()
	case "r":
		if err := m.st.Reload(); err != nil {
			m.errMsg = err.Error()
		} else {
			m.notice = "Reloaded"
		}
		m.refresh()
	case "/":
		m.searching = true
	case "1":
		m.filter = filterPending
		m.refresh()
	case "2":
		m.filter = filterCompleted
		m.refresh()
	case "3":
		m.filter = filterOverdue
		m.refresh()
	case "0":
		m.filter = filterAll
		m.query = ""
		m.refresh()
	}
	return m, nil
}

// updateSearch handles key input while the search prompt is active.
func (m *model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.refresh()
	case tea.KeyEsc:
		m.searching = false
		m.query = ""
		m.refresh()
	case tea.KeyBackspace:
		if len(m.query) > 0 {
			m.query = m.query[:len(m.query)-1]
		}
	case tea.KeyRunes:
		m.query += string(msg.Runes)
	case tea.KeySpace:
		m.query += " "
	}
	return m, nil
}

func (m *model) completeSelected() {
	if len(m.visible) == 0 {
		return
	}
	t := m.visible[m.cursor]
	completed, next, err := m.st.Complete(t.ID)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	if next != nil {
		m.notice = fmt.Sprintf("Completed %q, next occurrence due %s", completed.Title, formatDue(next.DueAt))
	} else {
		m.notice = fmt.Sprintf("Completed %q", completed.Title)
	}
	m.refresh()
}

func (m *model) deleteSelected() {
	if len(m.visible) == 0 {
		return
	}
	t := m.visible[m.cursor]
	if err := m.st.Remove(t.ID); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.notice = fmt.Sprintf("Deleted %q", t.Title)
	m.refresh()
}

func (m *model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("todoman") + "\n\n")

	if m.showHelp {
		writeHelp(&b)
		return b.String()
	}

	stats := m.st.Statistics()
	b.WriteString(headerStyle.Render(fmt.Sprintf("Total: %d  Pending: %d  Completed: %d  Overdue: %d",
		stats.Total, stats.Pending, stats.Completed, stats.Overdue)) + "\n\n")

	if m.searching {
		b.WriteString("Search: " + m.query + "▌\n\n")
	} else if m.query != "" {
		b.WriteString(fmt.Sprintf("Search: %s (0 to clear)\n\n", m.query))
	}
	if m.filter != filterAll {
		b.WriteString(fmt.Sprintf("Filter: %s (0 to clear)\n\n", m.filter))
	}

	if len(m.visible) == 0 {
		b.WriteString("  No tasks.\n")
	}
	now := time.Now()
	for i, t := range m.visible {
		prefix := "  "
		if i == m.cursor {
			prefix = cursorStyle.Render("> ")
		}
		b.WriteString(prefix + formatTask(&t, now) + "\n")
	}
	b.WriteString("\n")

	if m.errMsg != "" {
		b.WriteString(errorStyle.Render("Error: "+m.errMsg) + "\n")
	}
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice) + "\n")
	}

	b.WriteString(helpStyle.Render("j/k move · c complete · d delete · r reload · / search · 1-3 filter · 0 all · h help · q quit") + "\n")
	return b.String()
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  j/k, arrows  Move cursor\n")
	b.WriteString("  c, enter     Complete selected task\n")
	b.WriteString("  d            Delete selected task\n")
	b.WriteString("  r            Reload the data file\n")
	b.WriteString("  /            Search (enter applies, esc cancels)\n")
	b.WriteString("  1            Show pending tasks\n")
	b.WriteString("  2            Show completed tasks\n")
	b.WriteString("  3            Show overdue tasks\n")
	b.WriteString("  0            Show all tasks, clear search\n")
	b.WriteString("  h, ?         Toggle this help screen\n")
}

func formatTask(t *task.Task, now time.Time) string {
	check := "[ ]"
	if t.Status == task.StatusCompleted {
		check = "[x]"
	}

	prio := priorityStyles[t.Priority].Render(string(t.Priority))
	line := fmt.Sprintf("%s %s (%s) [%s] %s", check, t.ID, prio, t.Category, t.Title)

	if t.Kind == task.KindRecurring {
		line += fmt.Sprintf(" ↻%dd", t.RecurDays)
	}
	if t.DueAt != nil {
		due := " due " + t.DueAt.Format("2006-01-02 15:04")
		if t.Overdue(now) {
			due = overdueStyle.Render(due + " (overdue)")
		}
		line += due
	}
	if t.Status == task.StatusCompleted {
		return completedStyle.Render(line)
	}
	return line
}

func formatDue(t *time.Time) string {
	if t == nil {
		return "unscheduled"
	}
	return t.Format("2006-01-02")
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, _ := f.Stat()
	return (info.Mode() & os.ModeCharDevice) != 0
}
