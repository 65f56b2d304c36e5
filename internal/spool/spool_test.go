package spool

import (
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/pedregon/pasta/internal/action"
	"github.com/pedregon/pasta/internal/buffer"
	"github.com/pedregon/pasta/internal/spoolerr"
)

func TestTypescript_ScrollbackCapturesWrites(t *testing.T) {
	ts := &Typescript{
		History:    action.NewHistory(8),
		Scrollback: buffer.NewRingBuffer(16),
		EOFByte:    0x04,
	}
	ts.Scrollback.Write([]byte("hello"))
	if got := string(ts.Scrollback.Bytes()); got != "hello" {
		t.Errorf("Scrollback.Bytes() = %q, want %q", got, "hello")
	}
}

func TestTeardown_LIFOOrder(t *testing.T) {
	var order []int
	var td teardown
	td.push(func() error { order = append(order, 1); return nil })
	td.push(func() error { order = append(order, 2); return nil })
	td.push(func() error { order = append(order, 3); return nil })

	if err := td.run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []int{3, 2, 1}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestTeardown_RunTwiceIsNoop(t *testing.T) {
	calls := 0
	var td teardown
	td.push(func() error { calls++; return nil })

	if err := td.run(); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := td.run(); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected exactly one release, got %d", calls)
	}
}

func TestTeardown_CollectsFirstError(t *testing.T) {
	boom := errors.New("boom")
	var td teardown
	// Releases run LIFO, so boom (registered last) is the first error seen.
	td.push(func() error { return errors.New("other") })
	td.push(func() error { return boom })

	if err := td.run(); !errors.Is(err, boom) {
		t.Errorf("run() = %v, want %v", err, boom)
	}
}

func TestClassifyExit_Nil(t *testing.T) {
	if err := classifyExit(nil); err != nil {
		t.Errorf("classifyExit(nil) = %v, want nil", err)
	}
}

func TestClassifyExit_ExitError(t *testing.T) {
	cmd := exec.Command("sh", "-c", "exit 7")
	runErr := cmd.Run()
	if runErr == nil {
		t.Fatal("expected the child to exit non-zero")
	}

	err := classifyExit(runErr)
	var childErr *spoolerr.ChildExitError
	if !errors.As(err, &childErr) {
		t.Fatalf("classifyExit(%v) = %v, want *ChildExitError", runErr, err)
	}
	if childErr.Code != 7 {
		t.Errorf("exit code = %d, want 7", childErr.Code)
	}
	if !errors.Is(err, spoolerr.ErrChildFailure) {
		t.Errorf("classifyExit result does not wrap ErrChildFailure")
	}
}

func TestReapChild_ImmediateExit(t *testing.T) {
	cmd := exec.Command("sh", "-c", "exit 0")
	if err := cmd.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitErrCh := make(chan error, 1)
	waitErrCh <- cmd.Wait()

	if err := reapChild(cmd, waitErrCh, time.Second); err != nil {
		t.Errorf("reapChild: %v", err)
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if !opts.Echo {
		t.Error("expected Echo to default true")
	}
	if opts.Bufsize != 8192 {
		t.Errorf("Bufsize = %d, want 8192", opts.Bufsize)
	}
	if opts.Waterlevel != 4096 {
		t.Errorf("Waterlevel = %d, want 4096", opts.Waterlevel)
	}
	if opts.ReadSize != 1024 {
		t.Errorf("ReadSize = %d, want 1024", opts.ReadSize)
	}
	if opts.Timeout != time.Second {
		t.Errorf("Timeout = %v, want 1s", opts.Timeout)
	}
	if opts.HistorySize != 256 {
		t.Errorf("HistorySize = %d, want 256", opts.HistorySize)
	}
	if opts.ScrollbackSize != 1<<20 {
		t.Errorf("ScrollbackSize = %d, want %d", opts.ScrollbackSize, 1<<20)
	}
	if opts.PassFDs != nil {
		t.Errorf("PassFDs = %v, want nil", opts.PassFDs)
	}
}
