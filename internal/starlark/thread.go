package starlark

import (
	"context"
	"log/slog"

	"go.starlark.net/starlark"
)

// DefaultMaxSteps bounds the execution steps of one check when no limit is configured.
const DefaultMaxSteps = 1_000_000

// newThread creates a thread whose print output goes to the debug log.
// A maxSteps of zero means no limit.
func newThread(name string, maxSteps uint64, logger *slog.Logger) *starlark.Thread {
	thread := &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, msg string) {
			logger.Debug("starlark print", "thread", name, "msg", msg)
		},
	}
	if maxSteps > 0 {
		thread.SetMaxExecutionSteps(maxSteps)
	}
	return thread
}

// cancelOnDone cancels thread when ctx is done. The returned func releases
// the watcher and must be called once the thread has finished.
func cancelOnDone(ctx context.Context, thread *starlark.Thread) func() bool {
	return context.AfterFunc(ctx, func() {
		thread.Cancel(ctx.Err().Error())
	})
}
