// Package spool implements the scoped supervisor (component C6): the
// single entry point that resolves a command, wraps it in a PTY, and
// brackets its entire capture lifetime with deterministic teardown.
package spool

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/pedregon/pasta/internal/action"
	"github.com/pedregon/pasta/internal/applog"
	"github.com/pedregon/pasta/internal/buffer"
	"github.com/pedregon/pasta/internal/ioloop"
	"github.com/pedregon/pasta/internal/ptypair"
	"github.com/pedregon/pasta/internal/segment"
	"github.com/pedregon/pasta/internal/shellsplit"
	"github.com/pedregon/pasta/internal/spoolerr"
	"github.com/pedregon/pasta/internal/term"
	"github.com/pedregon/pasta/internal/winch"
	"golang.org/x/sys/unix"
)

// Run resolves argv[0] on PATH, spawns argv under a fresh PTY, and drives
// the capture loop until the child exits. Callers that only have a
// shell-style command string should tokenize it first with
// internal/shellsplit.Split. registerHandlers, if non-nil, is called once
// with the segmenter's registry before the I/O loop starts, so the
// caller's handler chain sees every byte including the first. block, if non-nil,
// receives the live Typescript once the child is running and before the
// real terminal is switched to raw mode; returning an error from it
// aborts the session (ErrSessionAborted) and kills the child.
func Run(argv []string, opts Options, logger *slog.Logger, registerHandlers func(*segment.Registry), block func(*Typescript) error) (err error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Bufsize < 1 {
		return fmt.Errorf("%w: bufsize must be >= 1", spoolerr.ErrIOFailure)
	}

	stdinFd := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFd) {
		return spoolerr.ErrNotATty
	}

	path, argv, resolveErr := shellsplit.ResolveArgv(argv)
	if resolveErr != nil {
		return resolveErr
	}
	logger.Info("audit", "event", "pasta.pty", "argv", strings.Join(argv, " "))

	var td teardown
	defer func() {
		if terr := td.run(); terr != nil && err == nil {
			err = terr
		}
	}()

	pair, perr := ptypair.Open()
	if perr != nil {
		return perr
	}
	td.push(pair.Close)
	logger.Debug("pty allocated")

	if serr := term.SetEcho(int(pair.Slave.Fd()), opts.Echo); serr != nil {
		return serr
	}
	logger.Debug("echo mode set", "on", opts.Echo)

	cout, coutW, perr := os.Pipe()
	if perr != nil {
		return fmt.Errorf("%w: stdout pipe: %v", spoolerr.ErrIOFailure, perr)
	}
	td.push(cout.Close)
	setPipeBufSize(int(coutW.Fd()), opts.Bufsize)

	cerr, cerrW, perr := os.Pipe()
	if perr != nil {
		return fmt.Errorf("%w: stderr pipe: %v", spoolerr.ErrIOFailure, perr)
	}
	td.push(cerr.Close)
	setPipeBufSize(int(cerrW.Fd()), opts.Bufsize)

	child := exec.Command(path, argv[1:]...)
	child.Args = argv
	child.Env = opts.Env
	child.Dir = opts.Cwd
	child.Stdin = pair.Slave
	child.Stdout = coutW
	child.Stderr = cerrW
	child.ExtraFiles = opts.PassFDs
	child.SysProcAttr = &syscall.SysProcAttr{Setsid: true, Setctty: true, Ctty: 0}

	if opts.Preexec != nil {
		if perr := opts.Preexec(); perr != nil {
			return perr
		}
	}

	if serr := child.Start(); serr != nil {
		return fmt.Errorf("%w: %v", spoolerr.ErrChildFailure, serr)
	}
	logger.Info("child started", "pid", child.Process.Pid, "argv", argv)

	// The parent's copies of the write ends must close so COUT/CERR see
	// EOF once the child's own copies (inherited across fork) close too.
	_ = coutW.Close()
	_ = cerrW.Close()

	waitErrCh := make(chan error, 1)
	exitedCh := make(chan struct{})
	go func() {
		waitErrCh <- child.Wait()
		close(exitedCh)
	}()

	bridge, berr := winch.Start(stdinFd, int(pair.Slave.Fd()), func(rows, cols uint16) {
		logger.Debug("window resized", "rows", rows, "cols", cols)
	})
	if berr != nil {
		killChild(child)
		return berr
	}
	td.push(func() error { bridge.Stop(); return nil })
	logger.Debug("winch bridge installed")

	eofByte := term.EOFByte(stdinFd)
	reg := segment.NewRegistry()
	if registerHandlers != nil {
		registerHandlers(reg)
	}
	hist := action.NewHistory(opts.HistorySize)
	seg := segment.New(reg, hist, eofByte)
	scrollback := buffer.NewRingBuffer(opts.ScrollbackSize)

	ts := &Typescript{History: hist, Scrollback: scrollback, EOFByte: eofByte}
	if block != nil {
		if berr := block(ts); berr != nil {
			killChild(child)
			return fmt.Errorf("%w: %v", spoolerr.ErrSessionAborted, berr)
		}
	}

	restoreToken, rerr := term.EnterRaw(stdinFd)
	if rerr != nil {
		killChild(child)
		return rerr
	}
	td.push(func() error {
		rerr := restoreToken.Restore()
		logger.Debug("real stdin restored from raw mode")
		return rerr
	})
	logger.Debug("real stdin entered raw mode")

	if nerr := pair.SetMasterNonblocking(); nerr != nil {
		killChild(child)
		return nerr
	}
	td.push(pair.RestoreMasterBlocking)

	for _, fd := range []int{stdinFd, int(cout.Fd()), int(cerr.Fd())} {
		if nerr := unix.SetNonblock(fd, true); nerr != nil {
			killChild(child)
			return fmt.Errorf("%w: set non-blocking fd %d: %v", spoolerr.ErrIOFailure, fd, nerr)
		}
	}

	teeToScrollback := func(real *os.File) ioloop.Sink {
		return buffer.FnToWriter(func(p []byte) (int, error) {
			n, werr := real.Write(p)
			scrollback.Write(p[:n])
			return n, werr
		})
	}

	loop := ioloop.New(stdinFd, int(pair.Master.Fd()), int(cout.Fd()), int(cerr.Fd()), teeToScrollback(os.Stdout), teeToScrollback(os.Stderr), seg, func() bool {
		on, _ := term.GetEcho(int(pair.Slave.Fd()))
		return on
	})
	loop.Waterlevel = opts.Waterlevel
	loop.ReadSize = opts.ReadSize

	go func() {
		<-exitedCh
		loop.MarkExited()
	}()

	loopErr := loop.Run()
	seg.TerminalFlush()

	for _, a := range hist.Snapshot() {
		applog.ActionCompleted(logger, a.ID, a.ElapsedSeconds())
	}

	if reapErr := reapChild(child, waitErrCh, opts.Timeout); reapErr != nil && loopErr == nil {
		loopErr = reapErr
	}

	return loopErr
}

func killChild(child *exec.Cmd) {
	if child.Process != nil {
		_ = child.Process.Kill()
	}
}

// reapChild waits for the child that the I/O loop has already observed
// as exited (or, if the loop returned early on a fatal I/O error, that is
// still running) escalating from SIGTERM to SIGKILL if it overstays
// timeout.
func reapChild(child *exec.Cmd, waitErrCh <-chan error, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = time.Second
	}
	select {
	case werr := <-waitErrCh:
		return classifyExit(werr)
	case <-time.After(timeout):
	}

	if child.Process != nil {
		_ = child.Process.Signal(syscall.SIGTERM)
	}
	select {
	case werr := <-waitErrCh:
		return classifyExit(werr)
	case <-time.After(timeout):
	}

	killChild(child)
	return classifyExit(<-waitErrCh)
}

func classifyExit(werr error) error {
	if werr == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(werr, &exitErr) {
		return &spoolerr.ChildExitError{Code: exitErr.ExitCode()}
	}
	return fmt.Errorf("%w: %v", spoolerr.ErrChildFailure, werr)
}
