// internal/recovery/recovery.go
package recovery

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
)

// ErrPanic wraps a panic turned into an error by Guard.
var ErrPanic = errors.New("panic")

// HandlePanic should be deferred at the top of main().
// It logs panic details and exits with code 1.
func HandlePanic() {
	if r := recover(); r != nil {
		fatal(r)
		os.Exit(1)
	}
}

// HandlePanicFunc logs panic details, calls cleanup, and exits with code 1.
func HandlePanicFunc(cleanup func()) {
	if r := recover(); r != nil {
		fatal(r)
		if cleanup != nil {
			cleanup()
		}
		os.Exit(1)
	}
}

func fatal(r any) {
	slog.Error("FATAL", "panic", fmt.Sprint(r))
	_, _ = fmt.Fprintf(os.Stderr, "FATAL: %v\n\nStack trace:\n%s\n", r, debug.Stack())
}

// Guard wraps an errgroup task so a panic cancels the group with ErrPanic
// instead of killing the process mid-stream.
//
//	g.Go(recovery.Guard(func() error {
//		return pipeline.Run(ctx)
//	}))
func Guard(fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("recovered panic", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
				err = fmt.Errorf("%w: %v", ErrPanic, r)
			}
		}()
		return fn()
	}
}
