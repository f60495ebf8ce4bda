// Package serialsink streams planner actions to the foot controller over a
// serial line, one CSV record per action.
package serialsink

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"go.bug.st/serial"

	"github.com/teslashibe/go-spacejockey/pkg/protocol"
)

// ErrClosed is returned by Dispatch after Close.
var ErrClosed = errors.New("serial sink closed")

// Sink writes actions to a serial port.
type Sink struct {
	mu     sync.Mutex
	w      io.WriteCloser
	closed bool
	log    *slog.Logger

	written uint64
}

// Open opens the serial device at path and returns a sink writing to it.
func Open(path string, opts PortOptions, logger *slog.Logger) (*Sink, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return nil, err
	}
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	s := New(port, logger)
	s.log.Info("foot link open", "port", path, "framing", opts.String())
	return s, nil
}

// New wraps an already open writer.
func New(w io.WriteCloser, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{w: w, log: logger}
}

// Dispatch writes one line per action.
func (s *Sink) Dispatch(a protocol.PlannerAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	line := protocol.EncodeActionCSV(a) + "\n"
	if _, err := io.WriteString(s.w, line); err != nil {
		return fmt.Errorf("write action %d: %w", a.MajorID, err)
	}
	s.written++
	s.log.Debug("action sent", "major_id", a.MajorID, "node", a.NodeName)
	return nil
}

// Written returns the number of actions successfully written.
func (s *Sink) Written() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written
}

// Close closes the underlying port. Further dispatches fail with ErrClosed.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.w.Close()
}
