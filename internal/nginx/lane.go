package nginx

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrLaneClosed is returned by Submit after Close
var ErrLaneClosed = errors.New("worker lane closed")

type laneJob struct {
	fn   func() error
	done chan error
}

// Lane runs blocking jobs one at a time on a dedicated goroutine, so
// subprocess waits and file swaps never run concurrently with each other
type Lane struct {
	jobs chan laneJob
	quit chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// NewLane starts the lane goroutine
func NewLane() *Lane {
	l := &Lane{
		jobs: make(chan laneJob),
		quit: make(chan struct{}),
	}
	l.wg.Add(1)
	go l.run()
	return l
}

func (l *Lane) run() {
	defer l.wg.Done()
	for {
		select {
		case j := <-l.jobs:
			j.done <- runJob(j.fn)
		case <-l.quit:
			return
		}
	}
}

func runJob(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lane job panicked: %v", r)
		}
	}()
	return fn()
}

// Submit queues fn and waits for its result. ctx only bounds the wait for a
// free lane: once fn has been handed over, Submit returns what fn returns.
func (l *Lane) Submit(ctx context.Context, fn func() error) error {
	j := laneJob{fn: fn, done: make(chan error, 1)}

	select {
	case l.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.quit:
		return ErrLaneClosed
	}
	return <-j.done
}

// Close stops the lane after the running job finishes
func (l *Lane) Close() {
	l.once.Do(func() { close(l.quit) })
	l.wg.Wait()
}
