package cmd

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"todoman/internal/config"
	"todoman/internal/report"
	"todoman/internal/task"
)

// statsCommand prints collection statistics.
func statsCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todoman stats", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	stats := st.Statistics()

	fmt.Printf("Total:      %d\n", stats.Total)
	fmt.Printf("Pending:    %d\n", stats.Pending)
	fmt.Printf("Completed:  %d\n", stats.Completed)
	fmt.Printf("Overdue:    %d\n", stats.Overdue)
	fmt.Printf("Completion: %.0f%%\n", stats.CompletionRate*100)

	if len(stats.ByCategory) > 0 {
		fmt.Println("\nBy category:")
		categories := make([]string, 0, len(stats.ByCategory))
		for c := range stats.ByCategory {
			categories = append(categories, c)
		}
		sort.Strings(categories)
		for _, c := range categories {
			fmt.Printf("  %-12s %d\n", c, stats.ByCategory[c])
		}
	}

	fmt.Println("\nBy priority:")
	for _, p := range []task.Priority{task.PriorityHigh, task.PriorityMedium, task.PriorityLow} {
		fmt.Printf("  %-12s %d\n", p, stats.ByPriority[p])
	}
	return nil
}

// backupCommand copies the data file to a timestamped sibling, or into
// the configured backup directory.
func backupCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todoman backup", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	path, err := st.Backup()
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	if cfg.BackupDir != "" {
		if err := os.MkdirAll(cfg.BackupDir, 0755); err != nil {
			return fmt.Errorf("create backup dir: %w", err)
		}
		dest := filepath.Join(cfg.BackupDir, filepath.Base(path))
		if err := os.Rename(path, dest); err != nil {
			return fmt.Errorf("move backup: %w", err)
		}
		path = dest
	}

	fmt.Printf("Backup written to %s\n", path)
	return nil
}

// exportCommand writes the task report in the requested format.
func exportCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todoman export", flag.ContinueOnError)
	format := fs.String("format", "json", "Export format (json|csv|pdf)")
	out := fs.String("out", "", "Output file (default stdout, required for pdf)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}

	data, err := report.NewExporter(st).Export(*format)
	if err != nil {
		return err
	}

	if *out == "" {
		if *format == "pdf" {
			return fmt.Errorf("pdf export requires -out")
		}
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(*out, data, 0644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Printf("Exported %d tasks to %s\n", st.Len(), *out)
	return nil
}

// clearCommand removes all completed tasks.
func clearCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todoman clear", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	removed, err := st.ClearCompleted()
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d completed task(s)\n", removed)
	return nil
}
