// -----------------------------------------------------------------------
// Safe Goroutine - Panic-protected goroutine wrappers
// -----------------------------------------------------------------------

package common

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync/atomic"

	"github.com/ternarybob/arbor"
)

// goroutineCounter tracks spawned goroutines for diagnostics
var goroutineCounter int64

// GetGoroutineCount returns the number of goroutines spawned via SafeGo and RunGuarded
func GetGoroutineCount() int64 {
	return atomic.LoadInt64(&goroutineCounter)
}

// PanicError is returned by RunGuarded when fn panics
type PanicError struct {
	Name  string
	Value interface{}
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Name, e.Value)
}

func stackTrace() string {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

// SafeGo runs a function in a goroutine with panic recovery.
// Panics are logged but don't crash the service.
func SafeGo(logger arbor.ILogger, name string, fn func()) {
	atomic.AddInt64(&goroutineCounter, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				stack := stackTrace()
				if logger != nil {
					logger.Error().
						Str("goroutine", name).
						Str("panic", fmt.Sprintf("%v", r)).
						Str("stack", stack).
						Msg("Recovered from panic in goroutine - continuing service operation")
				} else {
					fmt.Fprintf(os.Stderr, "PANIC in goroutine %s: %v\n%s\n", name, r, stack)
				}
			}
		}()

		fn()
	}()
}

// RunGuarded runs fn on its own goroutine and waits for its result or for ctx.
// A panic inside fn is returned as a *PanicError. When ctx is done first the
// goroutine is abandoned and ctx.Err() is returned; its eventual result is dropped.
func RunGuarded[T any](ctx context.Context, logger arbor.ILogger, name string, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	type result struct {
		value T
		err   error
	}

	atomic.AddInt64(&goroutineCounter, 1)
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				stack := stackTrace()
				if logger != nil {
					logger.Error().
						Str("goroutine", name).
						Str("panic", fmt.Sprintf("%v", r)).
						Str("stack", stack).
						Msg("Recovered from panic in guarded stage")
				}
				done <- result{err: &PanicError{Name: name, Value: r, Stack: stack}}
			}
		}()
		v, err := fn()
		done <- result{value: v, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		if logger != nil {
			logger.Debug().Str("goroutine", name).Msg("Guarded stage abandoned after cancellation")
		}
		return zero, ctx.Err()
	}
}
