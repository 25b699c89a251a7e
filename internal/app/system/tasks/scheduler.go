// internal/app/system/tasks/scheduler.go
package tasks

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a unit of periodic background work.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler runs each registered Job on its own ticker until Stop.
type Scheduler struct {
	log     *zap.Logger
	timeout time.Duration
	jobs    []Job

	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewScheduler creates a scheduler. timeout bounds a single job run.
func NewScheduler(logger *zap.Logger, timeout time.Duration) *Scheduler {
	return &Scheduler{
		log:     logger,
		timeout: timeout,
		stopCh:  make(chan struct{}),
	}
}

// Add registers a job. Jobs added after Start are not run.
func (s *Scheduler) Add(j Job) {
	s.jobs = append(s.jobs, j)
}

// Start launches one goroutine per job.
func (s *Scheduler) Start() {
	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.loop(j)
		s.log.Info("background job started",
			zap.String("job", j.Name),
			zap.Duration("interval", j.Interval))
	}
}

// Stop signals every job loop to exit and waits for in-flight runs.
func (s *Scheduler) Stop() {
	s.once.Do(func() { close(s.stopCh) })
	s.wg.Wait()
	s.log.Info("background jobs stopped")
}

func (s *Scheduler) loop(j Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.RunOnce(j)
		}
	}
}

// RunOnce runs j a single time with the scheduler's timeout. Errors are
// logged, never retried.
func (s *Scheduler) RunOnce(j Job) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := j.Run(ctx); err != nil {
		s.log.Error("background job failed",
			zap.String("job", j.Name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return
	}
	s.log.Debug("background job finished",
		zap.String("job", j.Name),
		zap.Duration("elapsed", time.Since(start)))
}
