// Package config loads the planner and service configuration for
// go-spacejockey. The file is JSON; fields missing from the file keep their
// defaults, and a handful of environment variables override the result.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/teslashibe/go-spacejockey/pkg/geom"
	"github.com/teslashibe/go-spacejockey/pkg/serialsink"
)

// DefaultConfigPath is where the daemon looks when no -config flag is given.
const DefaultConfigPath = "config/planner.json"

// maxFileSize bounds config files read from disk.
const maxFileSize = 1 << 20

// Extend bounds the distance between the middle foot and either end foot.
type Extend struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Angle bounds rotation per tick.
type Angle struct {
	Max float64 `json:"max"`
}

// View is the distance band used to frame VIEW waypoints.
type View struct {
	Min float64 `json:"min"`
	Opt float64 `json:"opt"`
	Max float64 `json:"max"`
}

// Window maps operator screen clicks to world coordinates.
type Window struct {
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Scale  float64    `json:"scale"`
	Origin geom.Point `json:"origin"`
}

// Viewport returns the window as a geom.Viewport.
func (w Window) Viewport() geom.Viewport {
	return geom.Viewport{Width: w.Width, Height: w.Height, Scale: w.Scale, Origin: w.Origin}
}

// Duration is a time.Duration that reads "500ms" style strings from JSON.
type Duration time.Duration

// MarshalJSON writes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON accepts a duration string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("duration must be a string like \"500ms\": %w", err)
	}
	*d = Duration(n)
	return nil
}

// Planner holds the constants the decision engine and loop read.
type Planner struct {
	Tick   Duration `json:"tick"`
	Ferr   float64  `json:"ferr"`
	Extend Extend   `json:"extend"`
	Angle  Angle    `json:"angle"`
	View   View     `json:"view"`
	Window Window   `json:"window"`

	// Start is the initial middle foot pose; the end feet are placed
	// extend.min away along its heading.
	Start geom.AngledPoint `json:"start"`
}

// Serial configures the optional serial action link.
type Serial struct {
	Port    string                 `json:"port"`
	Options serialsink.PortOptions `json:"options"`
}

// Service is the full daemon configuration.
type Service struct {
	HTTPAddr    string  `json:"http_addr"`
	JournalPath string  `json:"journal_path"`
	LogLevel    string  `json:"log_level"`
	Serial      Serial  `json:"serial"`
	Planner     Planner `json:"planner"`
}

// DefaultPlanner returns the stock inchworm constants.
func DefaultPlanner() Planner {
	return Planner{
		Tick:   Duration(500 * time.Millisecond),
		Ferr:   0.0001,
		Extend: Extend{Min: 0.05, Max: 0.15},
		Angle:  Angle{Max: 0.3},
		View:   View{Min: 0.2, Opt: 0.3, Max: 0.5},
		Window: Window{Width: 800, Height: 600, Scale: 0.005, Origin: geom.Point{X: 400, Y: 300}},
	}
}

// Default returns a complete service configuration.
func Default() Service {
	return Service{
		HTTPAddr: ":8088",
		LogLevel: "info",
		Planner:  DefaultPlanner(),
	}
}

// Load reads a JSON config file on top of Default and validates it.
func Load(path string) (Service, error) {
	cfg := Default()

	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return cfg, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return cfg, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the service configuration.
func (s Service) Validate() error {
	if err := s.Planner.Validate(); err != nil {
		return fmt.Errorf("planner: %w", err)
	}
	if s.Serial.Port != "" {
		if _, err := s.Serial.Options.Normalize(); err != nil {
			return fmt.Errorf("serial: %w", err)
		}
	}
	return nil
}

// Validate checks that the planner constants describe a robot that can move.
func (p Planner) Validate() error {
	var errs []error
	if p.Tick <= 0 {
		errs = append(errs, errors.New("tick must be > 0"))
	}
	if p.Ferr <= 0 {
		errs = append(errs, errors.New("ferr must be > 0"))
	}
	if p.Extend.Min <= 0 {
		errs = append(errs, errors.New("extend.min must be > 0"))
	}
	if p.Extend.Max <= p.Extend.Min+p.Ferr {
		errs = append(errs, fmt.Errorf("extend.max (%g) must exceed extend.min (%g)", p.Extend.Max, p.Extend.Min))
	}
	if p.Angle.Max <= 0 {
		errs = append(errs, errors.New("angle.max must be > 0"))
	}
	if p.View.Min < 0 || p.View.Min >= p.View.Max {
		errs = append(errs, fmt.Errorf("view band [%g, %g) is empty", p.View.Min, p.View.Max))
	}
	if p.View.Opt < 0 || p.View.Opt > p.View.Max {
		errs = append(errs, fmt.Errorf("view.opt (%g) must lie in [0, view.max]", p.View.Opt))
	}
	if p.Window.Scale < 0 {
		errs = append(errs, errors.New("window.scale must be >= 0"))
	}
	return errors.Join(errs...)
}
