package driver

import (
	"runtime/debug"
	"sync"
)

// DefaultStackSize is the minimum stack budget for compile, allocate and
// reduce. Reduction recurses as deep as the terms it walks.
const DefaultStackSize = 64 << 20

var stackMu sync.Mutex

// RunWithStack runs fn on a fresh goroutine whose maximum stack size is at
// least size bytes and waits for it. The process-wide limit is raised for
// the duration of the call, never lowered, and restored afterwards. A
// panic inside fn is returned as an *EngineError.
func RunWithStack(size uint64, fn func() error) error {
	stackMu.Lock()
	defer stackMu.Unlock()

	prev := debug.SetMaxStack(int(size))
	if uint64(prev) > size {
		debug.SetMaxStack(prev)
	}
	defer debug.SetMaxStack(prev)

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- &EngineError{Panic: r}
			}
		}()
		done <- fn()
	}()
	return <-done
}

// Reduce normalizes the graph at root and returns the rewrite count.
// Errors from the engine are wrapped in *EngineError.
func Reduce(e Engine, root Handle) (uint64, error) {
	rewrites, err := e.Normalize(root)
	if err != nil {
		return rewrites, &EngineError{Err: err}
	}
	return rewrites, nil
}
