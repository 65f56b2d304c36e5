// Package ptypair allocates and tears down a master/slave pseudo-terminal
// pair for the capture engine (component C2).
package ptypair

import (
	"fmt"
	"os"

	"github.com/creack/pty"
	"github.com/pedregon/pasta/internal/spoolerr"
	"golang.org/x/sys/unix"
)

// Pair is an allocated PTY master/slave pair. Neither descriptor is
// inheritable beyond the child process; both are closed, slave then
// master, when Close is called.
type Pair struct {
	Master *os.File
	Slave  *os.File

	masterWasBlocking bool
	closed            bool
}

// Open allocates a new pseudo-terminal pair.
func Open() (*Pair, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", spoolerr.ErrPtyAllocFailed, err)
	}
	return &Pair{Master: master, Slave: slave}, nil
}

// SetMasterNonblocking puts the master descriptor in non-blocking mode
// for the duration of the I/O loop, remembering its previous blocking
// state so Close (or an explicit restore) can put it back.
func (p *Pair) SetMasterNonblocking() error {
	p.masterWasBlocking = true
	if err := unix.SetNonblock(int(p.Master.Fd()), true); err != nil {
		return fmt.Errorf("set pty master non-blocking: %w", err)
	}
	return nil
}

// RestoreMasterBlocking reverts the master descriptor to its blocking
// state from before SetMasterNonblocking, if that was ever called.
func (p *Pair) RestoreMasterBlocking() error {
	if !p.masterWasBlocking {
		return nil
	}
	if err := unix.SetNonblock(int(p.Master.Fd()), false); err != nil {
		return fmt.Errorf("restore pty master blocking mode: %w", err)
	}
	p.masterWasBlocking = false
	return nil
}

// Close closes the slave then the master. Safe to call more than once.
func (p *Pair) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	var errs []error
	if err := p.Slave.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close pty slave: %w", err))
	}
	if err := p.Master.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close pty master: %w", err))
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
