// Package auditlog provides the three categorized append-only audit sinks
// the status pipeline writes to: malformed batches, references to
// unregistered IDs, and successful status changes. Recording is
// best-effort; a sink failure never surfaces to the request that caused
// the entry.
package auditlog

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category selects which sink an entry is appended to.
type Category string

const (
	FormatError    Category = "format_error"
	UnregisteredID Category = "unregistered_id"
	StatusChange   Category = "status_change"
)

// Logger is the injected audit sink abstraction.
type Logger interface {
	Record(cat Category, fields ...zap.Field)
	Close() error
}

// FileSinks writes each category to its own file under one directory,
// one JSON entry per line. File names match the historical log layout
// (format_error.log, unregistered_id.log, status_change.log).
type FileSinks struct {
	sinks map[Category]*zap.Logger
}

// NewFileSinks opens the three category files under dir, creating the
// directory if needed.
func NewFileSinks(dir string) (*FileSinks, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("audit log dir: %w", err)
	}

	sinks := make(map[Category]*zap.Logger, 3)
	for _, cat := range []Category{FormatError, UnregisteredID, StatusChange} {
		lg, err := newSink(filepath.Join(dir, string(cat)+".log"))
		if err != nil {
			return nil, fmt.Errorf("open %s sink: %w", cat, err)
		}
		sinks[cat] = lg
	}
	return &FileSinks{sinks: sinks}, nil
}

func newSink(path string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// Record appends one entry to the sink for cat. Entries for a category
// this logger was not built with are dropped.
func (s *FileSinks) Record(cat Category, fields ...zap.Field) {
	lg, ok := s.sinks[cat]
	if !ok {
		return
	}
	lg.Info(string(cat), fields...)
}

// Close flushes all sinks.
func (s *FileSinks) Close() error {
	var firstErr error
	for _, lg := range s.sinks {
		if err := lg.Sync(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Nop discards every entry; used in tests and when auditing is disabled.
type Nop struct{}

func (Nop) Record(Category, ...zap.Field) {}
func (Nop) Close() error                  { return nil }
