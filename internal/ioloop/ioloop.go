// Package ioloop implements the single-threaded, non-blocking multiplexer
// (component C4) that relays bytes between the real controlling terminal
// and a child running under a PTY slave, feeding every observed byte span
// through the segmenter on the way past.
package ioloop

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/pedregon/pasta/internal/segment"
	"github.com/pedregon/pasta/internal/spoolerr"
	"golang.org/x/sys/unix"
)

const (
	// DefaultWaterlevel bounds each of the four buffers.
	DefaultWaterlevel = 4096
	// DefaultReadSize is the per-read chunk size.
	DefaultReadSize = 1024

	// pollTimeoutMs exists only because Poll has no portable way to also
	// wait on the exited flag below; a short timeout re-checks it between
	// wakeups.
	pollTimeoutMs = 100
)

// EchoMode reports whether the slave currently echoes input, so the loop
// knows whether STDIN or PTM is the authoritative source for the
// segmenter's STDIN event.
type EchoMode func() bool

// Sink is the destination for bytes drained from one of the downstream
// write buffers (real stdout or real stderr).
type Sink interface {
	Write(p []byte) (int, error)
}

// Loop owns the four roll-over I/O buffers and drives one spool's worth
// of relaying and segmentation. It is built and run entirely within the
// spool supervisor's scope; nothing outside that scope touches it.
type Loop struct {
	stdinFd int
	ptmFd   int
	coutFd  int
	cerrFd  int

	realStdout Sink
	realStderr Sink

	Segmenter  *segment.Segmenter
	Echo       EchoMode
	Waterlevel int
	ReadSize   int

	bufI []byte // user -> pty
	bufP []byte // pty echo -> real stdout
	bufO []byte // child stdout -> real stdout
	bufE []byte // child stderr -> real stderr

	stdinEOF bool
	coutEOF  bool
	cerrEOF  bool

	exited int32
}

// New builds a Loop over the four session descriptors. stdinFd, coutFd and
// cerrFd must already be non-blocking; ptmFd is the PTY master, also
// already switched to non-blocking mode by the caller (internal/ptypair).
func New(stdinFd, ptmFd, coutFd, cerrFd int, realStdout, realStderr Sink, seg *segment.Segmenter, echo EchoMode) *Loop {
	return &Loop{
		stdinFd:    stdinFd,
		ptmFd:      ptmFd,
		coutFd:     coutFd,
		cerrFd:     cerrFd,
		realStdout: realStdout,
		realStderr: realStderr,
		Segmenter:  seg,
		Echo:       echo,
		Waterlevel: DefaultWaterlevel,
		ReadSize:   DefaultReadSize,
	}
}

// MarkExited tells the loop the child has terminated. Safe to call from
// another goroutine (the waiter that reaps the child). From its next
// iteration on, the loop stops polling STDIN; it still returns only once
// COUT and CERR have reached EOF and all four buffers have drained.
func (l *Loop) MarkExited() {
	atomic.StoreInt32(&l.exited, 1)
}

func (l *Loop) hasExited() bool {
	return atomic.LoadInt32(&l.exited) == 1
}

func (l *Loop) waterlevel() int {
	if l.Waterlevel > 0 {
		return l.Waterlevel
	}
	return DefaultWaterlevel
}

func (l *Loop) readSize() int {
	if l.ReadSize > 0 {
		return l.ReadSize
	}
	return DefaultReadSize
}

// Run drives the loop until both child pipes have reached EOF and every
// buffer has drained. It returns spoolerr.ErrIOFailure-wrapped errors for
// fatal failures on the real TTY; child-pipe failures are absorbed as
// EOF.
func (l *Loop) Run() error {
	for {
		if l.coutEOF && l.cerrEOF && l.allDrained() {
			return nil
		}

		fds, index := l.buildPollSet()
		if len(fds) == 0 {
			// Nothing left to wait on but COUT/CERR haven't reached EOF
			// yet; this only happens in the brief window before the
			// child's exit closes its last fds, so spin briefly.
			continue
		}

		n, err := unix.Poll(fds, pollTimeoutMs)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("%w: poll: %v", spoolerr.ErrIOFailure, err)
		}
		if n == 0 {
			continue
		}

		// Fixed order: STDIN, PTM, COUT, CERR, then the PTM write.
		if index.stdin >= 0 {
			if err := l.serviceRead(fds[index.stdin], l.onStdinReady); err != nil {
				return err
			}
		}
		if index.ptm >= 0 {
			if err := l.serviceRead(fds[index.ptm], l.onPtmReadyRead); err != nil {
				return err
			}
		}
		if index.cout >= 0 {
			if err := l.serviceRead(fds[index.cout], l.onCoutReady); err != nil {
				return err
			}
		}
		if index.cerr >= 0 {
			if err := l.serviceRead(fds[index.cerr], l.onCerrReady); err != nil {
				return err
			}
		}
		if index.ptm >= 0 {
			if err := l.servicePtmWrite(fds[index.ptm]); err != nil {
				return err
			}
		}
		if err := l.drainToSinks(); err != nil {
			return err
		}
	}
}

func (l *Loop) allDrained() bool {
	return len(l.bufI) == 0 && len(l.bufP) == 0 && len(l.bufO) == 0 && len(l.bufE) == 0
}

type pollIndex struct {
	stdin, ptm, cout, cerr int
}

// buildPollSet constructs the readiness set for one iteration. A
// descriptor is included for POLLIN only when its target buffer still has
// room below the waterlevel; PTM additionally gets POLLOUT when buf_i is
// non-empty. STDIN stops being polled once the child has been marked
// exited: there's nothing left to feed keystrokes to, and COUT/CERR are
// what the termination check actually waits on.
func (l *Loop) buildPollSet() ([]unix.PollFd, pollIndex) {
	idx := pollIndex{stdin: -1, ptm: -1, cout: -1, cerr: -1}
	var fds []unix.PollFd

	if !l.stdinEOF && !l.hasExited() && len(l.bufI) < l.waterlevel() {
		idx.stdin = len(fds)
		fds = append(fds, unix.PollFd{Fd: int32(l.stdinFd), Events: unix.POLLIN})
	}

	var ptmEvents int16
	if len(l.bufP) < l.waterlevel() {
		ptmEvents |= unix.POLLIN
	}
	if len(l.bufI) > 0 {
		ptmEvents |= unix.POLLOUT
	}
	if ptmEvents != 0 {
		idx.ptm = len(fds)
		fds = append(fds, unix.PollFd{Fd: int32(l.ptmFd), Events: ptmEvents})
	}

	if !l.coutEOF && len(l.bufO) < l.waterlevel() {
		idx.cout = len(fds)
		fds = append(fds, unix.PollFd{Fd: int32(l.coutFd), Events: unix.POLLIN})
	}

	if !l.cerrEOF && len(l.bufE) < l.waterlevel() {
		idx.cerr = len(fds)
		fds = append(fds, unix.PollFd{Fd: int32(l.cerrFd), Events: unix.POLLIN})
	}

	return fds, idx
}

// serviceRead reads up to readsize bytes from pfd if it is readable or has
// hung up, then hands them to route. The caller only invokes it for
// descriptors present in the poll set (index >= 0).
func (l *Loop) serviceRead(pfd unix.PollFd, route func([]byte) error) error {
	if pfd.Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) == 0 {
		return nil
	}
	buf := make([]byte, l.readSize())
	n, err := unix.Read(int(pfd.Fd), buf)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
			return nil
		}
		if errors.Is(err, unix.EIO) {
			return route(nil) // stream EOF
		}
		if int(pfd.Fd) == l.coutFd || int(pfd.Fd) == l.cerrFd {
			return route(nil) // child-pipe failure: that stream's EOF
		}
		return fmt.Errorf("%w: read fd %d: %v", spoolerr.ErrIOFailure, pfd.Fd, err)
	}
	if n == 0 {
		return route(nil) // EOF
	}
	return route(buf[:n])
}

func (l *Loop) onStdinReady(b []byte) error {
	if b == nil {
		l.stdinEOF = true
		return nil
	}
	if !l.Echo() {
		b = l.Segmenter.Wrap(segment.STDIN, b)
	}
	l.bufI = append(l.bufI, b...)
	return nil
}

func (l *Loop) onPtmReadyRead(b []byte) error {
	if b == nil {
		// PTM EOF means the slave side has gone away; treat the session
		// as over rather than a fatal failure.
		l.MarkExited()
		return nil
	}
	if l.Echo() {
		b = l.Segmenter.Wrap(segment.STDIN, b)
	}
	l.bufP = append(l.bufP, b...)
	return nil
}

func (l *Loop) onCoutReady(b []byte) error {
	if b == nil {
		l.coutEOF = true
		return nil
	}
	b = l.Segmenter.Wrap(segment.STDOUT, b)
	l.bufO = append(l.bufO, b...)
	return nil
}

func (l *Loop) onCerrReady(b []byte) error {
	if b == nil {
		l.cerrEOF = true
		return nil
	}
	b = l.Segmenter.Wrap(segment.STDERR, b)
	l.bufE = append(l.bufE, b...)
	return nil
}

func (l *Loop) servicePtmWrite(pfd unix.PollFd) error {
	if pfd.Revents&unix.POLLOUT == 0 || len(l.bufI) == 0 {
		return nil
	}
	n, err := unix.Write(int(pfd.Fd), l.bufI)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EINTR) {
			return nil
		}
		return fmt.Errorf("%w: write pty master: %v", spoolerr.ErrIOFailure, err)
	}
	l.bufI = l.bufI[n:]
	return nil
}

// drainToSinks writes whatever has accumulated in buf_p/buf_o to the real
// stdout and buf_e to the real stderr, trimming each by what was actually
// written. These sinks are the real terminal's own fds, normally
// blocking; short writes are retried next call rather than looped here so
// the multiplexer never stalls on them.
func (l *Loop) drainToSinks() error {
	if err := l.drainOne(&l.bufP, l.realStdout); err != nil {
		return err
	}
	if err := l.drainOne(&l.bufO, l.realStdout); err != nil {
		return err
	}
	return l.drainOne(&l.bufE, l.realStderr)
}

func (l *Loop) drainOne(buf *[]byte, sink Sink) error {
	if len(*buf) == 0 {
		return nil
	}
	n, err := sink.Write(*buf)
	if n > 0 {
		*buf = (*buf)[n:]
	}
	if err != nil {
		return fmt.Errorf("%w: write to real terminal: %v", spoolerr.ErrIOFailure, err)
	}
	return nil
}
