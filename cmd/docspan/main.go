// Package main is the entry point for the docspan CLI.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dshills/docspan/internal/app"
	"github.com/dshills/docspan/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	SnapshotPath string
	ConfigPath   string
	TabID        string
	LogLevel     string
	Preview      bool
	Watch        bool
	MatchCase    bool
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no command given")
		flag.Usage()
		return 2
	}
	if opts.SnapshotPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -snapshot is required")
		return 2
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: load config: %v\n", err)
		return 1
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	logger := app.NewLogger(app.ParseLogLevel(cfg.Log.Level), os.Stderr)
	eng := app.New(cfg, logger)

	switch cmd, rest := args[0], args[1:]; cmd {
	case "inspect":
		return cmdInspect(eng, opts)
	case "section":
		if len(rest) != 1 {
			fmt.Fprintln(os.Stderr, "Error: usage: docspan -snapshot doc.json section <heading>")
			return 2
		}
		return cmdSection(eng, opts, rest[0])
	case "table":
		if len(rest) != 1 {
			fmt.Fprintln(os.Stderr, "Error: usage: docspan -snapshot doc.json table <index>")
			return 2
		}
		return cmdTable(eng, opts, rest[0])
	case "resolve":
		if len(rest) != 1 {
			fmt.Fprintln(os.Stderr, "Error: usage: docspan -snapshot doc.json resolve <range.json>")
			return 2
		}
		return cmdResolve(eng, opts, rest[0])
	case "plan":
		if len(rest) != 1 {
			fmt.Fprintln(os.Stderr, "Error: usage: docspan -snapshot doc.json plan <ops.json>")
			return 2
		}
		if opts.Watch {
			return cmdWatch(eng, logger, opts, rest[0])
		}
		return cmdPlan(eng, opts, rest[0])
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", cmd)
		flag.Usage()
		return 2
	}
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.SnapshotPath, "snapshot", "", "Path to document snapshot JSON")
	flag.StringVar(&opts.SnapshotPath, "s", "", "Path to document snapshot JSON (shorthand)")
	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.TabID, "tab", "", "Document tab ID")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.Preview, "preview", false, "Resolve operations without emitting requests")
	flag.BoolVar(&opts.Watch, "watch", false, "Re-plan when the snapshot or operations file changes")
	flag.BoolVar(&opts.MatchCase, "match-case", true, "Case-sensitive heading lookup")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "docspan - document position and range-resolution engine\n\n")
		fmt.Fprintf(os.Stderr, "Usage: docspan -snapshot doc.json <command> [args]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  inspect              Print structure, headings, and stats\n")
		fmt.Fprintf(os.Stderr, "  section <heading>    Look up a section by heading text\n")
		fmt.Fprintf(os.Stderr, "  table <index>        Show a table's geometry and cells\n")
		fmt.Fprintf(os.Stderr, "  resolve <range.json> Resolve a range specification\n")
		fmt.Fprintf(os.Stderr, "  plan <ops.json>      Plan a batch of operations\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  docspan -snapshot doc.json inspect\n")
		fmt.Fprintf(os.Stderr, "  docspan -snapshot doc.json section \"Introduction\"\n")
		fmt.Fprintf(os.Stderr, "  docspan -snapshot doc.json plan ops.json -preview\n")
		fmt.Fprintf(os.Stderr, "  docspan -snapshot doc.json plan ops.json -watch\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("docspan %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	return opts
}

func openSession(eng *app.Engine, opts options) (*app.Session, error) {
	data, err := os.ReadFile(opts.SnapshotPath)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return eng.OpenTab(data, opts.TabID)
}
