package spool

// teardown is a LIFO list of release actions, mirroring the scoped
// resource policy every acquisition in Run registers against: raw mode,
// master blocking mode, the signal handler, the child pipes and the PTY
// pair all unwind in the reverse order they were acquired, on every exit
// path. The child is not on this list: Run kills and reaps it directly.
type teardown struct {
	actions []func() error
}

func (t *teardown) push(release func() error) {
	t.actions = append(t.actions, release)
}

// run invokes every registered release in reverse registration order,
// collecting (not stopping on) individual errors. Safe to call once; the
// list is drained so a second call is a no-op.
func (t *teardown) run() error {
	var first error
	for i := len(t.actions) - 1; i >= 0; i-- {
		if err := t.actions[i](); err != nil && first == nil {
			first = err
		}
	}
	t.actions = nil
	return first
}
