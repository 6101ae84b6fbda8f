// Package housekeeping runs periodic cleanup tasks in the background.
package housekeeping

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Task is one cleanup job. Run returns the number of records it removed.
type Task struct {
	Name string
	Run  func(ctx context.Context, now time.Time) (int, error)
}

// Service periodically runs its tasks to prevent unbounded growth of
// short-lived records (flows, interactions, lockout counters).
type Service struct {
	Tasks    []Task
	Logger   *slog.Logger
	Interval time.Duration

	// Internal channels for lifecycle management
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// New creates a housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 minute.
func New(logger *slog.Logger, interval time.Duration, tasks ...Task) *Service {
	if interval <= 0 {
		interval = time.Minute
	}

	return &Service{
		Tasks:    tasks,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// Call Stop() to gracefully shutdown the worker.
func (s *Service) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "tasks", len(s.Tasks))
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
// Stop must only be called after Start.
func (s *Service) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *Service) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			s.RunOnce(context.Background(), now)
		case <-s.stopCh:
			return
		}
	}
}

// RunOnce runs every task once. Each task is independent; a failure in one
// won't stop the others. It returns the total number of removed records.
func (s *Service) RunOnce(ctx context.Context, now time.Time) int {
	var total int
	for _, task := range s.Tasks {
		n, err := task.Run(ctx, now)
		if err != nil {
			s.Logger.Error("housekeeping task failed", "task", task.Name, "error", err)
			continue
		}
		if n > 0 {
			s.Logger.Debug("housekeeping task removed records", "task", task.Name, "removed", n)
		}
		total += n
	}
	return total
}
