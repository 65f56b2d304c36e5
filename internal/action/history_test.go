package action

import (
	"testing"
	"time"
)

func mkAction(started time.Time) Action {
	return New(nil, []byte("ls\r"), []byte("a b c\r\n"), nil, []byte("ls\ra b c\r\n"), started, started.Add(time.Millisecond))
}

func TestHistory_BoundedFIFO(t *testing.T) {
	h := NewHistory(2)
	base := time.Now()

	h.Append(mkAction(base))
	h.Append(mkAction(base.Add(time.Second)))
	if h.Len() != 2 {
		t.Fatalf("expected len 2, got %d", h.Len())
	}

	third := mkAction(base.Add(2 * time.Second))
	h.Append(third)

	if h.Len() != 2 {
		t.Fatalf("expected len to stay at capacity 2, got %d", h.Len())
	}

	snap := h.Snapshot()
	if !snap[0].TimeStarted.Equal(base.Add(time.Second)) {
		t.Errorf("expected oldest retained action to be the second append, got %v", snap[0].TimeStarted)
	}
	if !snap[1].TimeStarted.Equal(third.TimeStarted) {
		t.Errorf("expected newest action to be the third append, got %v", snap[1].TimeStarted)
	}
}

func TestHistory_ZeroCapacity(t *testing.T) {
	h := NewHistory(0)
	h.Append(mkAction(time.Now()))
	if h.Len() != 0 {
		t.Fatalf("expected zero-capacity history to retain nothing, got %d", h.Len())
	}
}

func TestAction_ElapsedNeverNegative(t *testing.T) {
	started := time.Now()
	a := New(nil, nil, nil, nil, nil, started, started.Add(-time.Second))
	if a.TimeElapsed < 0 {
		t.Errorf("expected elapsed to clamp at zero, got %v", a.TimeElapsed)
	}
}
