// Package winch bridges SIGWINCH delivered on the real controlling
// terminal to a resize of a PTY slave (component C3).
package winch

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pedregon/pasta/internal/term"
)

// Bridge installs a SIGWINCH handler that, each time it fires, reads the
// real terminal's window size and applies it to the target fd. The
// handler runs on its own goroutine, not in signal context; each run does
// the size query, the resize ioctl, and the OnResize callback.
type Bridge struct {
	ch       chan os.Signal
	stopped  chan struct{}
	realFD   int
	targetFD int

	// OnResize is called after every successful sync with the new window
	// dimensions; set via Start.
	OnResize func(rows, cols uint16)
}

// Start installs the handler and begins forwarding. realFD is the real
// controlling terminal to query; targetFD is the PTY slave to resize.
// onResize, if non-nil, is called after every successful sync including
// the initial one performed here, so the slave matches the real terminal
// before the first resize signal ever arrives.
func Start(realFD, targetFD int, onResize func(rows, cols uint16)) (*Bridge, error) {
	b := &Bridge{
		ch:       make(chan os.Signal, 1),
		stopped:  make(chan struct{}),
		realFD:   realFD,
		targetFD: targetFD,
		OnResize: onResize,
	}

	if err := b.sync(); err != nil {
		return nil, err
	}

	signal.Notify(b.ch, syscall.SIGWINCH)
	go b.run()
	return b, nil
}

func (b *Bridge) sync() error {
	rows, cols, err := term.GetWinsize(b.realFD)
	if err != nil {
		return err
	}
	if err := term.SetWinsize(b.targetFD, rows, cols); err != nil {
		return err
	}
	if b.OnResize != nil {
		b.OnResize(rows, cols)
	}
	return nil
}

func (b *Bridge) run() {
	for {
		select {
		case <-b.ch:
			b.sync() //nolint:errcheck
		case <-b.stopped:
			return
		}
	}
}

// Stop restores the prior SIGWINCH disposition. Safe to call once.
func (b *Bridge) Stop() {
	signal.Stop(b.ch)
	close(b.stopped)
}
