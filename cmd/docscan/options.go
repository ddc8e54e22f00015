package main

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/docscan/docscan-go/pkg/capability"
	"github.com/docscan/docscan-go/pkg/config"
	"github.com/docscan/docscan-go/pkg/scanner"
)

// options holds the parsed command line.
type options struct {
	List        bool
	Device      string
	Mode        string
	Resolution  string
	Output      string
	Left        float64
	Top         float64
	Width       float64
	Height      float64
	Format      string
	Interactive bool

	ConfigFile      string
	LogLevel        string
	Settle          time.Duration
	Quiet           time.Duration
	Timeout         time.Duration
	EventLog        string
	MetricsTextfile string

	DeviceURL string
	Interface string
	Insecure  bool
	Simulate  bool
}

// apply overlays the explicitly set flags onto cfg and validates the result.
func (o *options) apply(cfg config.Config, set map[string]bool) (config.Config, error) {
	given := func(names ...string) bool {
		for _, n := range names {
			if set[n] {
				return true
			}
		}
		return false
	}

	if given("d") {
		cfg.Device = o.Device
	}
	if given("m", "mode") {
		cfg.Mode = o.Mode
	}
	if given("r", "resolution") {
		cfg.Resolution = parseResolution(o.Resolution)
	}
	if given("l", "left") {
		cfg.Geometry.Left = o.Left
	}
	if given("t", "top") {
		cfg.Geometry.Top = o.Top
	}
	if given("x", "width") {
		cfg.Geometry.Width = o.Width
	}
	if given("y", "height") {
		cfg.Geometry.Height = o.Height
	}
	if given("format") {
		cfg.Format = o.Format
	}
	if given("log-level") {
		cfg.LogLevel = o.LogLevel
	}
	if given("settle") {
		cfg.Discovery.Settle = o.Settle
	}
	if given("quiet") {
		cfg.Discovery.Quiet = o.Quiet
	}
	if given("interface") {
		cfg.Discovery.Interface = o.Interface
	}
	if given("insecure") {
		cfg.ESCL.Insecure = o.Insecure
	}
	if given("event-log") {
		cfg.EventLog = o.EventLog
	}
	if given("metrics-textfile") {
		cfg.MetricsTextfile = o.MetricsTextfile
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// parseResolution parses a DPI value. Anything that is not a positive
// integer yields the default resolution.
func parseResolution(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return capability.DefaultResolution
	}
	return n
}

// buildRequest turns the effective configuration into a scan request for
// output. The format is taken from the configuration, else from the output
// file extension, else JPEG.
func buildRequest(cfg config.Config, output string) (scanner.ScanRequest, error) {
	format := scanner.FormatJPEG
	if cfg.Format != "" {
		f, err := scanner.ParseFormat(cfg.Format)
		if err != nil {
			return scanner.ScanRequest{}, err
		}
		format = f
	} else if ext := filepath.Ext(output); ext != "" {
		if f, err := scanner.ParseFormat(ext); err == nil {
			format = f
		}
	}

	return scanner.ScanRequest{
		DeviceName:  cfg.Device,
		ColorMode:   capability.ParseColorMode(cfg.Mode),
		Resolution:  cfg.Resolution,
		Destination: output,
		Geometry:    cfg.Geometry.Scanner(),
		Format:      format,
	}, nil
}
