package shellevents

import (
	"context"
	"time"

	"github.com/mattjoyce/playhook/internal/player"
)

// Outcome describes one attempted command execution.
type Outcome struct {
	Event     player.EventKind
	Command   string
	Mode      Mode
	ExitCode  int
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}

// Succeeded reports whether the process ran and exited with code 0.
func (o Outcome) Succeeded() bool {
	return o.Err == nil && o.ExitCode == 0
}

// Observer receives outcomes after they are logged. Observers are side sinks:
// their results never reach the event source.
type Observer interface {
	Observe(ctx context.Context, outcome Outcome)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, outcome Outcome)

func (f ObserverFunc) Observe(ctx context.Context, outcome Outcome) { f(ctx, outcome) }
