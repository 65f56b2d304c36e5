package spool

import (
	"github.com/pedregon/pasta/internal/action"
	"github.com/pedregon/pasta/internal/buffer"
)

// Typescript is what Run yields to the caller's block: the live Action
// history, a live scrollback of the raw combined stdout/stderr stream,
// and the session's resolved EOF byte. The caller's block runs after the
// child has been spawned but before the real terminal is switched to raw
// mode, so it can only observe state, not add handlers to the segmenter
// (those come from Run's registerHandlers argument, called before block).
// Scrollback only starts filling once the I/O loop begins, after block
// returns; it has no subscription API, so callers read it with Bytes.
type Typescript struct {
	History    *action.History
	Scrollback *buffer.RingBuffer
	EOFByte    byte
}
