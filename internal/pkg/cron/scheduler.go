package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is a named function the scheduler invokes on a fixed interval.
type Job struct {
	Name     string
	Interval time.Duration
	Fn       func(ctx context.Context) error
}

// Scheduler drives the engine's background jobs. Each job gets its own
// goroutine and ticker; Stop cancels the shared context and waits for every
// loop to drain before returning.
type Scheduler struct {
	jobs   []Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{ctx: ctx, cancel: cancel}
}

// AddJob registers a job. Call before Start; jobs added later are only picked
// up by RunOnce.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, Job{Name: name, Interval: interval, Fn: fn})
	slog.Info("Background job registered", "job", name, "interval", interval)
}

// Start launches one loop per registered job. Every job fires once
// immediately, so a restarted process never waits a full interval to catch up
// on work it missed while down.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(job)
	}

	slog.Info("Job scheduler started", "jobs", len(s.jobs))
}

// Stop cancels all job loops and blocks until each has exited.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	slog.Info("Job scheduler stopped")
}

func (s *Scheduler) loop(job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	s.run(job)

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.run(job)
		}
	}
}

func (s *Scheduler) run(job Job) {
	start := time.Now()
	if err := job.Fn(s.ctx); err != nil {
		slog.Error("Background job failed", "job", job.Name, "error", err, "duration", time.Since(start))
		return
	}
	slog.Debug("Background job completed", "job", job.Name, "duration", time.Since(start))
}

// RunOnce invokes every registered job a single time with the caller's
// context, independent of the tickers.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		if err := job.Fn(ctx); err != nil {
			slog.Error("Background job failed", "job", job.Name, "error", err)
		}
	}
}
