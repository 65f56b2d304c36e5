package main

import (
	"errors"

	"github.com/pedregon/pasta/internal/spoolerr"
)

const (
	exitOK = 0
	// exitGeneric covers any error the taxonomy below doesn't distinguish.
	exitGeneric         = 1
	exitNotATty         = 2
	exitPtyAllocFailed  = 3
	exitCommandNotFound = 127
)

// exitCodeFor maps a spool error to the process exit code. A surfaced
// child exit code is passed through verbatim.
func exitCodeFor(err error) int {
	var childErr *spoolerr.ChildExitError
	if errors.As(err, &childErr) {
		return childErr.Code
	}
	switch {
	case errors.Is(err, spoolerr.ErrCommandNotFound):
		return exitCommandNotFound
	case errors.Is(err, spoolerr.ErrNotATty):
		return exitNotATty
	case errors.Is(err, spoolerr.ErrPtyAllocFailed):
		return exitPtyAllocFailed
	default:
		return exitGeneric
	}
}
