package main

import (
	"fmt"
	"testing"

	"github.com/pedregon/pasta/internal/spoolerr"
)

func TestExitCodeFor_ChildExitError(t *testing.T) {
	err := fmt.Errorf("wrap: %w", &spoolerr.ChildExitError{Code: 7})
	if got := exitCodeFor(err); got != 7 {
		t.Errorf("exitCodeFor = %d, want 7", got)
	}
}

func TestExitCodeFor_Sentinels(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{spoolerr.ErrCommandNotFound, exitCommandNotFound},
		{spoolerr.ErrNotATty, exitNotATty},
		{spoolerr.ErrPtyAllocFailed, exitPtyAllocFailed},
		{fmt.Errorf("boom"), exitGeneric},
	}
	for _, c := range cases {
		if got := exitCodeFor(c.err); got != c.want {
			t.Errorf("exitCodeFor(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}
