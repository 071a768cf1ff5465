package logger

import "io"

type options struct {
	output             io.Writer
	file               string
	fileMaxSizeMB      int
	errorFile          string
	errorFileMaxSizeMB int
}

// Option configures Init.
type Option func(*options)

// WithOutput replaces stdout as the console sink.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.output = w
		}
	}
}

// WithFile adds a rotating JSON log file receiving every enabled record.
func WithFile(path string, maxSizeMB int) Option {
	return func(o *options) {
		o.file = path
		o.fileMaxSizeMB = maxSizeMB
	}
}

// WithErrorFile adds a rotating JSON log file receiving error records only.
func WithErrorFile(path string, maxSizeMB int) Option {
	return func(o *options) {
		o.errorFile = path
		o.errorFileMaxSizeMB = maxSizeMB
	}
}
