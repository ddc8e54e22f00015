package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/docscan/docscan-go/pkg/scanner"
)

// RelPath is the config file location relative to the XDG config directories.
const RelPath = "docscan/config.yaml"

// Config holds the file-configurable defaults.
type Config struct {
	Device          string    `yaml:"device"`
	Mode            string    `yaml:"mode"`
	Resolution      int       `yaml:"resolution"`
	Format          string    `yaml:"format"`
	Geometry        Geometry  `yaml:"geometry"`
	Discovery       Discovery `yaml:"discovery"`
	ESCL            ESCL      `yaml:"escl"`
	LogLevel        string    `yaml:"log_level"`
	EventLog        string    `yaml:"event_log"`
	MetricsTextfile string    `yaml:"metrics_textfile"`
}

// Geometry is the scan area in millimetres.
type Geometry struct {
	Left   float64 `yaml:"left"`
	Top    float64 `yaml:"top"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Scanner converts to the scanner model.
func (g Geometry) Scanner() scanner.Geometry {
	return scanner.Geometry{Left: g.Left, Top: g.Top, Width: g.Width, Height: g.Height}
}

// Discovery tunes device discovery.
type Discovery struct {
	// Settle is the longest time to wait for devices.
	Settle time.Duration `yaml:"settle"`

	// Quiet ends the wait early once no device has appeared for this long.
	Quiet time.Duration `yaml:"quiet"`

	// Interface restricts mDNS to one network interface.
	Interface string `yaml:"interface"`
}

// ESCL tunes the eSCL client.
type ESCL struct {
	Timeout      time.Duration `yaml:"timeout"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Insecure     bool          `yaml:"insecure"`
}

// Default returns the built-in defaults.
func Default() Config {
	g := scanner.DefaultGeometry
	return Config{
		Mode:       "color",
		Resolution: 200,
		Geometry:   Geometry{Left: g.Left, Top: g.Top, Width: g.Width, Height: g.Height},
		Discovery: Discovery{
			Settle: time.Second,
			Quiet:  250 * time.Millisecond,
		},
		ESCL: ESCL{
			Timeout:      2 * time.Minute,
			PollInterval: 500 * time.Millisecond,
		},
		LogLevel: "warn",
	}
}

// LoadError describes a config file that could not be used.
type LoadError struct {
	// File is the path to the file that failed to load.
	File string

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	msg := e.File + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Locate returns the config file path. An explicit path is returned as is;
// otherwise the XDG config directories are searched. An empty result means
// no file exists.
func Locate(explicit string) string {
	if explicit != "" {
		return explicit
	}
	path, err := xdg.SearchConfigFile(RelPath)
	if err != nil {
		return ""
	}
	return path
}

// Load reads the config file at Locate(explicit). It returns the defaults
// when no file is found and the path that was used.
func Load(explicit string) (Config, string, error) {
	path := Locate(explicit)
	if path == "" {
		return Default(), "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, path, &LoadError{File: path, Message: "failed to read file", Cause: err}
	}
	cfg, err := Parse(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
			return Config{}, path, le
		}
		return Config{}, path, &LoadError{File: path, Message: err.Error()}
	}
	return cfg, path, nil
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, &LoadError{Message: "failed to parse YAML", Cause: err}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, &LoadError{Message: "invalid configuration", Cause: err}
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.Resolution <= 0 {
		errs = append(errs, fmt.Errorf("resolution must be positive, got %d", c.Resolution))
	}
	if c.Format != "" {
		if _, err := scanner.ParseFormat(c.Format); err != nil {
			errs = append(errs, err)
		}
	}
	g := c.Geometry
	if g.Left < 0 || g.Top < 0 {
		errs = append(errs, fmt.Errorf("geometry offsets must not be negative"))
	}
	if g.Width <= 0 || g.Height <= 0 {
		errs = append(errs, fmt.Errorf("geometry width and height must be positive"))
	}
	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"discovery.settle", c.Discovery.Settle},
		{"discovery.quiet", c.Discovery.Quiet},
		{"escl.timeout", c.ESCL.Timeout},
		{"escl.poll_interval", c.ESCL.PollInterval},
	} {
		if d.value < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", d.name))
		}
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	return errors.Join(errs...)
}
