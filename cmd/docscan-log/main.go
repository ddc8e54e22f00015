// Command docscan-log views and analyzes docscan session trace files.
//
// Trace files are written by docscan when run with -event-log.
//
// Usage:
//
//	docscan-log <command> [flags] <file.dlog>
//
// Commands:
//
//	view     View trace file in human-readable format
//	export   Export trace file to JSONL or CSV
//	filter   Filter trace file and write to new file
//	stats    Show statistics about the trace file
//
// Examples:
//
//	# View all events
//	docscan-log view scan.dlog
//
//	# View only device requests
//	docscan-log view -category request scan.dlog
//
//	# View one session
//	docscan-log view -session 1b4e28ba-2fa1-11d2-883f-0016d3cca427 scan.dlog
//
//	# Export to CSV
//	docscan-log export -format csv -o scan.csv scan.dlog
//
//	# Keep only failed-session errors
//	docscan-log filter -category error -o errors.dlog scan.dlog
//
//	# Show statistics
//	docscan-log stats scan.dlog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/docscan/docscan-go/cmd/docscan-log/commands"
)

const usage = `docscan-log - docscan session trace analyzer

Usage:
  docscan-log <command> [flags] <file.dlog>

Commands:
  view     View trace file in human-readable format
  export   Export trace file to JSONL or CSV
  filter   Filter trace file and write to new file
  stats    Show statistics about the trace file

Use "docscan-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// selection registers the shared event selection flags on fs.
func selection(fs *flag.FlagSet) *commands.FilterOptions {
	opts := &commands.FilterOptions{}
	fs.StringVar(&opts.SessionID, "session", "", "Filter by session ID")
	fs.StringVar(&opts.DeviceID, "device-id", "", "Filter by device ID")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
	fs.StringVar(&opts.Layer, "layer", "", "Filter by layer (discovery, session, device)")
	fs.StringVar(&opts.Category, "category", "", "Filter by category (state, config, transfer, request, discovery, error)")
	fs.StringVar(&opts.Direction, "direction", "", "Filter device requests by direction (in, out)")
	return opts
}

func newFlagSet(name, summary string, withFlags bool) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "docscan-log %s - %s\n\nUsage:\n  docscan-log %s [flags] <file.dlog>\n\n", name, summary, name)
		if withFlags {
			fmt.Fprintln(os.Stderr, "Flags:")
			fs.PrintDefaults()
		}
	}
	return fs
}

func pathArg(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func runView(args []string) {
	fs := newFlagSet("view", "View trace file in human-readable format", true)
	opts := selection(fs)
	path := pathArg(fs, args)

	sel, err := opts.Selection()
	if err != nil {
		fail(err)
	}
	if err := commands.RunView(path, sel, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := newFlagSet("export", "Export trace file to JSONL or CSV", true)
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	path := pathArg(fs, args)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := newFlagSet("filter", "Filter trace file and write to new file", true)
	opts := selection(fs)
	fs.StringVar(&opts.Output, "o", "", "Output file (required)")
	path := pathArg(fs, args)

	if opts.Output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	n, err := commands.RunFilter(path, *opts)
	if err != nil {
		fail(err)
	}
	fmt.Printf("Filtered %d events to %s\n", n, opts.Output)
}

func runStats(args []string) {
	fs := newFlagSet("stats", "Show statistics about the trace file", false)
	path := pathArg(fs, args)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
