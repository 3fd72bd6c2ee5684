package actorutil

import (
	"errors"
	"fmt"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/primetalk/goio/io"
)

var ErrNilTaskResult = errors.New("task result is nil")

// SafeBackgroundTask runs a blocking function as a goio effect on its own
// goroutine, turning panics into errors, and hands the outcome to an actor.
type SafeBackgroundTask[T any] struct {
	system  *actor.ActorSystem
	fn      func() (*T, error)
	recover func(error) T
}

func NewBackgroundTaskNoError[T any](ctx actor.Context, fn func() *T) *SafeBackgroundTask[T] {
	return &SafeBackgroundTask[T]{
		system: ctx.ActorSystem(),
		fn: func() (result *T, err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("background task panic: %v", r)
				}
			}()
			return fn(), nil
		},
	}
}

// Recover maps a failure to a value that is then delivered as a result.
func (t *SafeBackgroundTask[T]) Recover(fn func(error) T) *SafeBackgroundTask[T] {
	t.recover = fn
	return t
}

// PipeTo starts the task and returns at once. The result (or the recovered
// value) is sent to pid; an unrecovered failure is dropped.
func (t *SafeBackgroundTask[T]) PipeTo(pid *actor.PID) {
	root := t.system.Root
	go func() {
		if value, ok := t.run(); ok {
			root.Send(pid, value)
		}
	}()
}

func (t *SafeBackgroundTask[T]) run() (T, bool) {
	bgFn := io.Eval(t.fn)
	bg := io.FlatMap(bgFn, func(a *T) io.IO[T] {
		if a == nil {
			return io.Fail[T](ErrNilTaskResult)
		}
		return io.Lift(*a)
	})
	result := io.RunSync(bg)

	if result.Error != nil {
		if t.recover == nil {
			var zero T
			return zero, false
		}
		return t.recover(result.Error), true
	}
	return result.Value, true
}
