package spool

import "golang.org/x/sys/unix"

// setPipeBufSize applies the configured child-pipe buffer hint via
// fcntl(F_SETPIPE_SZ), a Linux-only facility. Best-effort: a kernel that
// clamps or rejects the requested size does not fail the session.
func setPipeBufSize(fd, size int) {
	_, _ = unix.FcntlInt(uintptr(fd), unix.F_SETPIPE_SZ, size)
}
