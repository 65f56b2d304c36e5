package spool

import (
	"os"
	"time"
)

// Options configures one spool scope. The zero value is not directly
// usable; call DefaultOptions and override what the caller cares about.
type Options struct {
	// Env is the child's environment. Nil inherits os.Environ().
	Env []string
	// Cwd is the child's working directory. Empty inherits the parent's.
	Cwd string
	// Echo sets the slave's initial ECHO mode.
	Echo bool
	// Timeout bounds the post-loop wait before escalating to SIGKILL.
	Timeout time.Duration
	// Bufsize is the child pipe buffer size hint; must be >= 1.
	Bufsize int
	// Waterlevel bounds each of the multiplexer's four buffers.
	Waterlevel int
	// ReadSize is the multiplexer's per-read chunk size.
	ReadSize int
	// HistorySize bounds the segmenter's Action history.
	HistorySize int
	// ScrollbackSize bounds the live raw-byte scrollback exposed on
	// Typescript.Scrollback.
	ScrollbackSize int
	// CloseFDs requests that the child not inherit the parent's other
	// open descriptors beyond stdin/stdout/stderr. Go's os/exec does this
	// by default (ExtraFiles is opt-in), so this mostly documents intent.
	CloseFDs bool
	// PassFDs are additional open files handed to the child starting at
	// fd 3, in order. Empty by default; nothing is passed through beyond
	// the PTY slave and the two output pipes.
	PassFDs []*os.File
	// Preexec, if set, runs in the parent just before the child starts.
	Preexec func() error
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		Echo:           true,
		Timeout:        time.Second,
		Bufsize:        8192,
		Waterlevel:     4096,
		ReadSize:       1024,
		HistorySize:    256,
		ScrollbackSize: 1 << 20,
		CloseFDs:       true,
	}
}
