// Package action models one completed shell command captured by a spool.
package action

import (
	"time"

	"github.com/google/uuid"
)

// Action is one completed command: the prompt that preceded it, what the
// user typed, what the child produced on stdout and stderr while it ran,
// the verbatim typescript, and timing.
type Action struct {
	ID            uuid.UUID
	PromptPS1     []byte
	CommandInput  []byte
	CommandOutput []byte
	CommandError  []byte
	Typescript    []byte
	TimeStarted   time.Time
	TimeElapsed   time.Duration
}

// New builds an Action from the segmenter's buffers at the moment a
// command boundary closes. elapsed is computed here so every Action
// carries a non-negative duration by construction.
func New(promptPS1, commandInput, commandOutput, commandError, typescript []byte, started time.Time, closed time.Time) Action {
	elapsed := closed.Sub(started)
	if elapsed < 0 {
		elapsed = 0
	}
	return Action{
		ID:            uuid.New(),
		PromptPS1:     promptPS1,
		CommandInput:  commandInput,
		CommandOutput: commandOutput,
		CommandError:  commandError,
		Typescript:    typescript,
		TimeStarted:   started,
		TimeElapsed:   elapsed,
	}
}

// ElapsedSeconds returns TimeElapsed as a floating point second count,
// the wire shape used for time_elapsed in logs and serialized output.
func (a Action) ElapsedSeconds() float64 {
	return a.TimeElapsed.Seconds()
}
