// Package segment implements the Action segmenter (component C5): a
// per-stream handler chain plus the small state machine that carves the
// bytes observed on STDIN/STDOUT/STDERR into Action records.
package segment

import (
	"bytes"
	"time"

	"github.com/pedregon/pasta/internal/action"
)

var crlf = []byte("\r\n")

// Segmenter holds the five roll-over buffers for one spool scope plus the
// bounded Action history they feed. It is owned exclusively by the spool
// supervisor; nothing outside the supervisor's scope should mutate it.
type Segmenter struct {
	Registry *Registry
	History  *action.History
	EOFByte  byte
	Clock    func() time.Time

	bufPS1 []byte
	bufI   []byte
	bufO   []byte
	bufE   []byte
	bufC   []byte

	startTime time.Time
	started   bool
}

// New creates a Segmenter with empty buffers and the given bounded
// history. eofByte is the terminal's VEOF control character (see
// internal/term.EOFByte).
func New(registry *Registry, history *action.History, eofByte byte) *Segmenter {
	return &Segmenter{
		Registry: registry,
		History:  history,
		EOFByte:  eofByte,
		Clock:    time.Now,
	}
}

func (s *Segmenter) allEmpty() bool {
	return len(s.bufI) == 0 && len(s.bufPS1) == 0 && len(s.bufC) == 0
}

func (s *Segmenter) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// Wrap runs b through the registered handler chain for event and then
// advances the state machine. It returns the bytes as they left the last
// handler, so the caller can write them to its own buffers verbatim.
func (s *Segmenter) Wrap(event Event, b []byte) []byte {
	out := s.Registry.run(event, b)

	switch event {
	case STDIN:
		s.onStdin(out)
	case STDOUT:
		s.onStdout(out)
	case STDERR:
		s.onStderr(out)
	}

	return out
}

// checkBoundary closes the in-flight Action when buf_i's last byte was the
// raw-mode line terminator for Enter and output has since started arriving
// on buf_c. It runs ahead of every event, not just STDIN: a shell usually
// reprints its next prompt before the user's next keystroke, so the close
// has to fire as soon as that reprint shows up on STDOUT/STDERR rather than
// waiting for the following line of input.
func (s *Segmenter) checkBoundary() {
	if bytes.HasSuffix(s.bufI, []byte("\r")) && len(s.bufC) > 0 {
		s.emit()
	}
}

func (s *Segmenter) onStdin(b []byte) {
	s.checkBoundary()

	if bytes.Equal(b, append([]byte{s.EOFByte}, crlf...)) {
		// Session ending. A command with input but no output (the
		// child exited before writing anything back) is still a
		// completed Action, so flush it before consuming the
		// synthetic EOF+CRLF.
		if len(s.bufI) > 0 || len(s.bufC) > 0 {
			s.emit()
		}
		return
	}

	s.maybeStartTurn()

	if len(s.bufI) == 0 && len(s.bufC) > 0 && !bytes.HasSuffix(s.bufC, []byte{s.EOFByte}) {
		// Prompt redraw bytes that arrived via the input path (e.g. shell
		// line-editor redraw).
		s.bufPS1 = append(s.bufPS1, b...)
		return
	}

	s.bufI = append(s.bufI, b...)
}

// maybeStartTurn records the wall-clock instant at which the first byte
// of either the prompt or the input was observed for the in-flight
// Action, per the time_started definition in the data model. It runs on
// every event kind (not just STDIN) since a child can print a prompt
// before the user has typed anything.
func (s *Segmenter) maybeStartTurn() {
	if s.allEmpty() {
		s.startTime = s.now()
		s.started = true
	}
}

// isEOFMarker reports whether b is the bare EOF sentinel used to drive
// the terminal flush (see TerminalFlush). Such bytes are a transition
// signal, not observed child output, so they are never appended to any
// buffer on their own.
func (s *Segmenter) isEOFMarker(b []byte) bool {
	return len(b) == 1 && b[0] == s.EOFByte
}

func (s *Segmenter) onStdout(b []byte) {
	s.checkBoundary()
	if s.isEOFMarker(b) {
		return
	}
	s.maybeStartTurn()
	if len(s.bufI) == 0 {
		s.bufPS1 = append(s.bufPS1, b...)
		return
	}
	s.bufO = append(s.bufO, b...)
	s.bufC = append(s.bufC, b...)
}

func (s *Segmenter) onStderr(b []byte) {
	s.checkBoundary()
	if s.isEOFMarker(b) {
		return
	}
	s.maybeStartTurn()
	if len(s.bufI) == 0 {
		s.bufPS1 = append(s.bufPS1, b...)
		return
	}
	s.bufE = append(s.bufE, b...)
	s.bufC = append(s.bufC, b...)
}

// emit closes the in-flight Action from the current buffers and appends
// it to the history, then resets all five buffers.
func (s *Segmenter) emit() {
	typescript := make([]byte, 0, len(s.bufPS1)+len(s.bufI)+len(s.bufC))
	typescript = append(typescript, s.bufPS1...)
	typescript = append(typescript, s.bufI...)
	typescript = append(typescript, s.bufC...)

	started := s.startTime
	if !s.started {
		started = s.now()
	}

	a := action.New(s.bufPS1, s.bufI, s.bufO, s.bufE, typescript, started, s.now())
	s.History.Append(a)
	s.reset()
}

func (s *Segmenter) reset() {
	s.bufPS1 = nil
	s.bufI = nil
	s.bufO = nil
	s.bufE = nil
	s.bufC = nil
	s.started = false
}

// TerminalFlush drives the synthetic end-of-session bytes that close out a
// session: a bare EOF on STDOUT followed by EOF+CRLF on STDIN, so any
// in-flight command is closed and emitted. If both buf_i and buf_c are
// still empty when this runs, nothing was in flight and no Action is
// produced.
func (s *Segmenter) TerminalFlush() {
	s.Wrap(STDOUT, []byte{s.EOFByte})
	s.Wrap(STDIN, append([]byte{s.EOFByte}, crlf...))
}
