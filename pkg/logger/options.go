package logger

import "io"

// Rotation defaults for the file sink.
const (
	defaultMaxSizeMB  = 100
	defaultMaxBackups = 3
	defaultMaxAgeDays = 28
)

type options struct {
	format     string
	file       string
	maxSizeMB  int
	maxBackups int
	maxAgeDays int
	compress   bool
	writer     io.Writer
}

// Option configures Init.
type Option func(*options)

// WithFormat selects the handler: "text" (default) or "json".
func WithFormat(format string) Option {
	return func(o *options) {
		if format != "" {
			o.format = format
		}
	}
}

// WithFile additionally writes logs to a size-rotated file. An empty path disables it.
func WithFile(path string) Option {
	return func(o *options) {
		o.file = path
		o.maxSizeMB = defaultMaxSizeMB
		o.maxBackups = defaultMaxBackups
		o.maxAgeDays = defaultMaxAgeDays
		o.compress = true
	}
}

// WithWriter replaces every sink with w. Intended for tests.
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.writer = w
		}
	}
}
