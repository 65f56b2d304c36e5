package spool

// setPipeBufSize is a no-op on Darwin: the kernel does not expose a
// per-pipe buffer size knob the way Linux's F_SETPIPE_SZ does.
func setPipeBufSize(fd, size int) {}
