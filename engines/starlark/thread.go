package starlark

import (
	"context"
	"log/slog"

	starlarkLib "go.starlark.net/starlark"
)

// newThread creates a thread that logs print() output and is cancelled with ctx. The
// returned stop function releases the cancellation hook.
func newThread(
	ctx context.Context,
	logger *slog.Logger,
	name string,
	maxSteps uint64,
) (*starlarkLib.Thread, func() bool) {
	thread := &starlarkLib.Thread{
		Name: name,
		Print: func(thread *starlarkLib.Thread, msg string) {
			logger.InfoContext(ctx, msg, "starlark-thread", thread.Name)
		},
	}
	if maxSteps > 0 {
		thread.SetMaxExecutionSteps(maxSteps)
	}

	stop := context.AfterFunc(ctx, func() {
		thread.Cancel(context.Cause(ctx).Error())
	})
	return thread, stop
}
