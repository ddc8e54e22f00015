// Command docscan scans a document from a network scanner into a file.
//
// Scanners are found with mDNS (eSCL/AirScan). A scan runs one session:
// the device is opened, its capabilities are matched against the request,
// the scan is started and the delivered document is moved to the output
// path.
//
// Usage:
//
//	docscan [flags]
//
// Flags:
//
//	-L                  List available scanners and exit
//	-d string           Scanner name (default: first found)
//	-m, -mode string    Color mode: color, grayscale, lineart (default "color")
//	-r, -resolution     Resolution in DPI (default 200)
//	-o, -output string  Output file or directory (required)
//	-l, -left float     Scan area left offset in mm
//	-t, -top float      Scan area top offset in mm
//	-x, -width float    Scan area width in mm (default 210)
//	-y, -height float   Scan area height in mm (default 297)
//	-format string      Document format: jpeg, png, pdf, tiff
//	-config string      Configuration file path
//	-log-level string   Log level: debug, info, warn, error (default "warn")
//	-settle duration    Longest wait for scanners to appear (default 1s)
//	-quiet duration     End the wait once no scanner appeared for this long
//	-timeout duration   Overall scan deadline (default none)
//	-event-log string   Write a session trace (.dlog) to this path
//	-metrics-textfile   Write Prometheus metrics to this path
//	-device-url string  Skip discovery and use this eSCL base URL
//	-interface string   Network interface for mDNS
//	-insecure           Accept self-signed certificates on _uscans
//	-simulate           Use built-in simulated scanners
//	-interactive        Start an interactive shell
//
// Examples:
//
//	# List scanners on the network
//	docscan -L
//
//	# Scan an A4 page in grayscale at 300 DPI
//	docscan -d "Canon MF740C" -m grayscale -r 300 -o page.jpg
//
//	# Scan a letter-sized area to PDF from a known scanner
//	docscan -device-url http://10.0.0.5/eSCL -x 215.9 -y 279.4 -o scan.pdf
//
//	# Try it without hardware
//	docscan -simulate -d Epson2 -o out/
//
// Interactive Commands:
//
//	list              - List scanners
//	use <name>        - Select a scanner
//	mode <mode>       - Set color mode
//	res <dpi>         - Set resolution
//	area <l> <t> <w> <h> - Set scan area in mm
//	scan <output>     - Scan to a file or directory
//	status            - Show current settings
//	quit              - Exit
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/docscan/docscan-go/cmd/docscan/interactive"
	"github.com/docscan/docscan-go/pkg/config"
)

var opts options

func init() {
	flag.BoolVar(&opts.List, "L", false, "List available scanners and exit")
	flag.StringVar(&opts.Device, "d", "", "Scanner name (default: first found)")
	flag.StringVar(&opts.Mode, "m", "", "Color mode: color, grayscale, lineart")
	flag.StringVar(&opts.Mode, "mode", "", "Color mode: color, grayscale, lineart")
	flag.StringVar(&opts.Resolution, "r", "", "Resolution in DPI (non-integer means 200)")
	flag.StringVar(&opts.Resolution, "resolution", "", "Resolution in DPI (non-integer means 200)")
	flag.StringVar(&opts.Output, "o", "", "Output file or directory")
	flag.StringVar(&opts.Output, "output", "", "Output file or directory")
	flag.Float64Var(&opts.Left, "l", 0, "Scan area left offset in mm")
	flag.Float64Var(&opts.Left, "left", 0, "Scan area left offset in mm")
	flag.Float64Var(&opts.Top, "t", 0, "Scan area top offset in mm")
	flag.Float64Var(&opts.Top, "top", 0, "Scan area top offset in mm")
	flag.Float64Var(&opts.Width, "x", 0, "Scan area width in mm (default 210)")
	flag.Float64Var(&opts.Width, "width", 0, "Scan area width in mm (default 210)")
	flag.Float64Var(&opts.Height, "y", 0, "Scan area height in mm (default 297)")
	flag.Float64Var(&opts.Height, "height", 0, "Scan area height in mm (default 297)")
	flag.StringVar(&opts.Format, "format", "", "Document format: jpeg, png, pdf, tiff (default from output extension)")

	flag.StringVar(&opts.ConfigFile, "config", "", "Configuration file path")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level: debug, info, warn, error (default \"warn\")")
	flag.DurationVar(&opts.Settle, "settle", 0, "Longest wait for scanners to appear (default 1s)")
	flag.DurationVar(&opts.Quiet, "quiet", 0, "End the discovery wait once no scanner appeared for this long")
	flag.DurationVar(&opts.Timeout, "timeout", 0, "Overall scan deadline (0 means none)")
	flag.StringVar(&opts.EventLog, "event-log", "", "Write a session trace to this path")
	flag.StringVar(&opts.MetricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this path")

	flag.StringVar(&opts.DeviceURL, "device-url", "", "Skip discovery and use this eSCL base URL")
	flag.StringVar(&opts.Interface, "interface", "", "Network interface for mDNS")
	flag.BoolVar(&opts.Insecure, "insecure", false, "Accept self-signed certificates on _uscans endpoints")
	flag.BoolVar(&opts.Simulate, "simulate", false, "Use built-in simulated scanners")
	flag.BoolVar(&opts.Interactive, "interactive", false, "Start an interactive shell")
}

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	fileCfg, path, err := config.Load(opts.ConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	cfg, err := opts.apply(fileCfg, explicitFlags())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger := setupLogging(cfg.LogLevel, os.Stderr)
	if path != "" {
		logger.Debug("loaded configuration", "path", path)
	}

	if !opts.List && !opts.Interactive && opts.Output == "" {
		printUsage()
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app, err := newApp(cfg, appOptions{
		Simulate:   opts.Simulate,
		DeviceURL:  opts.DeviceURL,
		Continuous: opts.Interactive,
		Out:        os.Stdout,
		Logger:     logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer app.Close()

	if err := app.StartDiscovery(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	switch {
	case opts.List:
		app.List(ctx)
		return 0

	case opts.Interactive:
		shell, err := interactive.New(app, interactive.Settings{
			Device:     cfg.Device,
			Mode:       cfg.Mode,
			Resolution: cfg.Resolution,
			Geometry:   cfg.Geometry.Scanner(),
			Format:     cfg.Format,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		app.SetOutput(shell.Stdout())
		shell.Run(ctx, cancel)
		return 0
	}

	req, err := buildRequest(cfg, opts.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if !app.ScanOnce(ctx, req, opts.Timeout).OK() {
		return 1
	}
	return 0
}

func explicitFlags() map[string]bool {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func printUsage() {
	fmt.Println("Usage: docscan [options]")
	fmt.Println("Options:")
	fmt.Println("  -L                List all available scanners")
	fmt.Println("  -d <name>         Specify scanner by name")
	fmt.Println("  -m <mode>         Specify color mode")
	fmt.Println("  -r <resolution>   Specify resolution")
	fmt.Println("  -o <path>         Output file path")
	fmt.Println("Run 'docscan -help' for all flags.")
}
