// Package report renders the task collection to exportable formats.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"todoman/internal/store"
	"todoman/internal/task"
)

const timeLayout = "2006-01-02 15:04"

// Exporter renders store contents as json, csv, or pdf.
type Exporter struct {
	st *store.Store
}

// NewExporter creates an exporter over st.
func NewExporter(st *store.Store) *Exporter {
	return &Exporter{st: st}
}

// Export renders every task plus summary statistics in the requested
// format.
func (e *Exporter) Export(format string) ([]byte, error) {
	tasks := e.st.Tasks()
	stats := e.st.Statistics()

	switch strings.ToLower(format) {
	case "json":
		doc := struct {
			Stats store.Stats `json:"stats"`
			Tasks []task.Task `json:"tasks"`
		}{Stats: stats, Tasks: tasks}
		return json.MarshalIndent(doc, "", "  ")
	case "csv":
		return exportCSV(tasks)
	case "pdf":
		return exportPDF(tasks, stats)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

func exportCSV(tasks []task.Task) ([]byte, error) {
	var b bytes.Buffer
	w := csv.NewWriter(&b)
	if err := w.Write([]string{"id", "title", "description", "category", "priority", "status", "kind", "created_at", "due_at", "completed_at", "recur_interval"}); err != nil {
		return nil, err
	}
	for _, t := range tasks {
		interval := ""
		if t.RecurDays > 0 {
			interval = fmt.Sprint(t.RecurDays)
		}
		if err := w.Write([]string{
			t.ID, t.Title, t.Description, t.Category,
			string(t.Priority), string(t.Status), string(t.Kind),
			t.CreatedAt.Format(timeLayout),
			formatTime(t.DueAt), formatTime(t.CompletedAt), interval,
		}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func exportPDF(tasks []task.Task, stats store.Stats) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Task Report")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(0, 6, fmt.Sprintf("Total: %d  Pending: %d  Completed: %d  Overdue: %d  Completion: %.0f%%",
		stats.Total, stats.Pending, stats.Completed, stats.Overdue, stats.CompletionRate*100), "0", "L", false)
	pdf.Ln(4)

	for _, t := range tasks {
		line := fmt.Sprintf("[%s] (%s/%s) %s - %s", t.ID, t.Priority, t.Status, t.Category, t.Title)
		if t.DueAt != nil {
			line += " due " + t.DueAt.Format(timeLayout)
		}
		pdf.MultiCell(0, 6, line, "0", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timeLayout)
}
