// Package term wraps the POSIX termios ioctls needed by the capture
// engine: echo mode, window size, raw mode, and the EOF control
// character. Every exported function mirrors one operation from
// component C1 of the capture engine design.
package term

import (
	"fmt"

	"github.com/pedregon/pasta/internal/spoolerr"
	"golang.org/x/sys/unix"
)

// RestoreToken restores the termios attributes captured at the moment
// EnterRaw was called. Every successful EnterRaw must be paired with
// exactly one call to Restore, even on abnormal exit.
type RestoreToken struct {
	fd       int
	original unix.Termios
}

// Restore reapplies the attributes snapshotted by EnterRaw, with flush
// semantics: queued but unread input is discarded and the change takes
// effect only after queued output has been transmitted, so a raw-mode
// session's leftover unread bytes never leak into the restored terminal.
func (t *RestoreToken) Restore() error {
	if err := unix.IoctlSetTermios(t.fd, ioctlSetTermiosFlush, &t.original); err != nil {
		return fmt.Errorf("restore termios on fd %d: %w", t.fd, err)
	}
	return nil
}

func getTermios(fd int) (*unix.Termios, error) {
	termios, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, fmt.Errorf("%w: fd %d: %v", spoolerr.ErrUnsupportedTerminal, fd, err)
	}
	return termios, nil
}

// GetEcho reports whether the ECHO local-mode flag is set on fd.
func GetEcho(fd int) (bool, error) {
	termios, err := getTermios(fd)
	if err != nil {
		return false, err
	}
	return termios.Lflag&unix.ECHO != 0, nil
}

// SetEcho reads, modifies, and writes back the ECHO local-mode flag,
// applying the change with drain semantics.
func SetEcho(fd int, on bool) error {
	termios, err := getTermios(fd)
	if err != nil {
		return err
	}
	if on {
		termios.Lflag |= unix.ECHO
	} else {
		termios.Lflag &^= unix.ECHO
	}
	if err := unix.IoctlSetTermios(fd, ioctlSetTermiosDrain, termios); err != nil {
		return fmt.Errorf("%w: set echo on fd %d: %v", spoolerr.ErrUnsupportedTerminal, fd, err)
	}
	return nil
}

// GetWinsize issues the terminal window-size query ioctl.
func GetWinsize(fd int) (rows, cols uint16, err error) {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, fmt.Errorf("get window size on fd %d: %w", fd, err)
	}
	return ws.Row, ws.Col, nil
}

// SetWinsize issues the corresponding set ioctl.
func SetWinsize(fd int, rows, cols uint16) error {
	ws := &unix.Winsize{Row: rows, Col: cols}
	if err := unix.IoctlSetWinsize(fd, unix.TIOCSWINSZ, ws); err != nil {
		return fmt.Errorf("set window size on fd %d: %w", fd, err)
	}
	return nil
}

// EnterRaw snapshots the current attributes and puts the terminal into
// raw mode: no canonical processing, no echo, no signal translation.
// The returned token restores the prior attributes with flush semantics.
func EnterRaw(fd int) (*RestoreToken, error) {
	original, err := getTermios(fd)
	if err != nil {
		return nil, err
	}
	token := &RestoreToken{fd: fd, original: *original}

	raw := *original
	raw.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	raw.Oflag &^= unix.OPOST
	raw.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	raw.Cflag &^= unix.CSIZE | unix.PARENB
	raw.Cflag |= unix.CS8
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &raw); err != nil {
		return nil, fmt.Errorf("%w: enter raw mode on fd %d: %v", spoolerr.ErrUnsupportedTerminal, fd, err)
	}
	return token, nil
}

// EOFByte reads VEOF from the control-character table, defaulting to the
// platform EOF constant (Ctrl-D, 0x04) if the terminal doesn't report one.
func EOFByte(fd int) byte {
	termios, err := getTermios(fd)
	if err != nil {
		return 0x04
	}
	b := termios.Cc[unix.VEOF]
	if b == 0 {
		return 0x04
	}
	return b
}

// IsTerminal reports whether fd refers to a terminal device.
func IsTerminal(fd int) bool {
	_, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	return err == nil
}
