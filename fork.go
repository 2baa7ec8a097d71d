package itree

import "sync"

// Forker runs two tasks to completion, in parallel if resources allow. It
// is the only capability the parallel build and query paths require; the
// package never spawns unmanaged background work.
type Forker interface {
	RunBoth(a, b func())
}

// GoForker forks one task onto a new goroutine and runs the other on the
// calling goroutine, blocking until both return. It is the default Forker
// of the parallel variants.
type GoForker struct{}

// RunBoth implements Forker.
func (GoForker) RunBoth(a, b func()) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a()
	}()
	b()
	wg.Wait()
}

// SerialForker runs both tasks one after the other on the calling
// goroutine, turning every parallel variant into its sequential
// counterpart.
type SerialForker struct{}

// RunBoth implements Forker.
func (SerialForker) RunBoth(a, b func()) {
	a()
	b()
}
