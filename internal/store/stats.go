package store

import (
	"todoman/internal/task"
)

// Stats aggregates counts over the whole collection.
type Stats struct {
	Total          int                   `json:"total"`
	Pending        int                   `json:"pending"`
	Completed      int                   `json:"completed"`
	Overdue        int                   `json:"overdue"`
	CompletionRate float64               `json:"completion_rate"`
	ByCategory     map[string]int        `json:"by_category"`
	ByPriority     map[task.Priority]int `json:"by_priority"`
}

// Statistics computes counts for the current collection. The rate is
// completed/total, 0 for an empty store.
func (s *Store) Statistics() Stats {
	now := s.now()
	stats := Stats{
		ByCategory: make(map[string]int),
		ByPriority: make(map[task.Priority]int),
	}

	for i := range s.tasks {
		t := &s.tasks[i]
		stats.Total++
		stats.ByCategory[t.Category]++
		stats.ByPriority[t.Priority]++

		switch t.Status {
		case task.StatusPending:
			stats.Pending++
		case task.StatusCompleted:
			stats.Completed++
		}
		if t.Overdue(now) {
			stats.Overdue++
		}
	}

	if stats.Total > 0 {
		stats.CompletionRate = float64(stats.Completed) / float64(stats.Total)
	}
	return stats
}
