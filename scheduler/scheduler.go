package scheduler

import (
	"context"
	"log"
	"time"
)

// Scheduler runs an update job at the top of every hour
type Scheduler struct {
	job    func()
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a new scheduler for the given job
func NewScheduler(job func()) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		job:    job,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Start starts the scheduler in a goroutine
func (s *Scheduler) Start() {
	go s.run()
}

// Stop stops the scheduler and waits for the loop to exit. A job already in
// progress runs to completion.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.done
	log.Println("Scheduler stopped")
}

// run is the main scheduler loop. Jobs are executed in this goroutine, so
// overlapping fires cannot run concurrently.
func (s *Scheduler) run() {
	defer close(s.done)

	timer := time.NewTimer(time.Until(NextFire(time.Now())))
	defer timer.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-timer.C:
			s.job()
			timer.Reset(time.Until(NextFire(time.Now())))
		}
	}
}

// NextFire returns the next top-of-hour instant strictly after t
func NextFire(t time.Time) time.Time {
	return t.Truncate(time.Hour).Add(time.Hour)
}
