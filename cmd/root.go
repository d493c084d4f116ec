// Package cmd implements the CLI command structure for todoman.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"todoman/internal/config"
	"todoman/internal/logging"
	"todoman/internal/store"
	"todoman/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the todoman CLI.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todoman", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cfg, err := config.Load(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	subcommand := "ui"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "add":
		return addCommand(cfg, remainingArgs)
	case "ls", "list":
		return lsCommand(cfg, remainingArgs)
	case "done", "complete":
		return doneCommand(cfg, remainingArgs)
	case "rm", "delete":
		return rmCommand(cfg, remainingArgs)
	case "search":
		return searchCommand(cfg, remainingArgs)
	case "stats":
		return statsCommand(cfg, remainingArgs)
	case "backup":
		return backupCommand(cfg, remainingArgs)
	case "export":
		return exportCommand(cfg, remainingArgs)
	case "clear":
		return clearCommand(cfg, remainingArgs)
	case "ui":
		return uiCommand(ctx, cfg, remainingArgs)
	case "version", "--version", "-v":
		return versionCommand()
	case "help", "--help", "-h":
		printUsage(fs, os.Stdout)
		return nil
	default:
		// An existing file path is treated as the data file for ui.
		if fi, err := os.Stat(subcommand); err == nil && !fi.IsDir() {
			cfg.DataFile = subcommand
			return uiCommand(ctx, cfg, remainingArgs)
		}
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// openStore opens the configured data file with the configured logger.
func openStore(cfg *config.Config) (*store.Store, error) {
	logger := logging.New(os.Stderr, logging.Options{
		Level:           cfg.LogLevel,
		Format:          cfg.LogFormat,
		ReportTimestamp: cfg.LogTimestamps,
	})
	st, err := store.Open(cfg.DataFile, store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return st, nil
}

// uiCommand launches the interactive browser.
func uiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todoman ui", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if remaining := fs.Args(); len(remaining) == 1 {
		cfg.DataFile = remaining[0]
	} else if len(remaining) > 1 {
		return fmt.Errorf("unexpected arguments: %v", remaining[1:])
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	return ui.Run(ctx, st)
}

func versionCommand() error {
	fmt.Printf("todoman %s\n", Version)
	return nil
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, `todoman - local to-do list manager

Usage:
  todoman [flags] <command> [command flags]

Commands:
  add        Add a task
  ls         List tasks
  done       Complete a task by id
  rm         Delete a task by id
  search     Search tasks by keyword
  stats      Show task statistics
  backup     Copy the data file to a timestamped backup
  export     Export tasks (json, csv, pdf)
  clear      Remove completed tasks
  ui         Interactive task browser (default)
  version    Show version
  help       Show this help

Flags:
`)
	fs.SetOutput(w)
	fs.PrintDefaults()
}
