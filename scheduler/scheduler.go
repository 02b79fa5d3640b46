package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a periodic maintenance task. The context is cancelled on Stop.
type Job func(ctx context.Context) error

// Status reports the last run of a job.
type Status struct {
	Name     string        `json:"name"`
	Interval time.Duration `json:"interval"`
	Runs     int           `json:"runs"`
	LastRun  *time.Time    `json:"last_run,omitempty"`
	LastErr  string        `json:"last_error,omitempty"`
}

// Scheduler runs named jobs on fixed intervals.
type Scheduler struct {
	mu     sync.Mutex
	jobs   map[string]*entry
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *zap.Logger
}

type entry struct {
	status Status
	stopCh chan struct{}
}

// New creates a Scheduler whose jobs stop when ctx is done or Stop is called.
func New(ctx context.Context, logger *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(ctx)
	return &Scheduler{
		jobs:   make(map[string]*entry),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// Every registers fn to run each interval. A job with the same name is
// replaced. A non-positive interval disables the job.
func (s *Scheduler) Every(name string, interval time.Duration, fn Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.jobs[name]; ok {
		close(old.stopCh)
		delete(s.jobs, name)
	}
	if interval <= 0 {
		s.logger.Info("scheduler job disabled", zap.String("name", name))
		return
	}

	e := &entry{status: Status{Name: name, Interval: interval}, stopCh: make(chan struct{})}
	s.jobs[name] = e

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.run(e, fn)
			case <-e.stopCh:
				return
			case <-s.ctx.Done():
				return
			}
		}
	}()
	s.logger.Info("scheduler job registered", zap.String("name", name), zap.Duration("interval", interval))
}

func (s *Scheduler) run(e *entry, fn Job) {
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("scheduler job panicked",
					zap.String("job", e.status.Name),
					zap.Any("recover", r))
			}
		}()
		err = fn(s.ctx)
	}()
	if err != nil {
		s.logger.Warn("scheduler job failed", zap.String("job", e.status.Name), zap.Error(err))
	}

	now := time.Now()
	s.mu.Lock()
	e.status.Runs++
	e.status.LastRun = &now
	e.status.LastErr = ""
	if err != nil {
		e.status.LastErr = err.Error()
	}
	s.mu.Unlock()
}

// Remove stops a job by name.
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.jobs[name]; ok {
		close(e.stopCh)
		delete(s.jobs, name)
	}
}

// Stop cancels every job and waits for running ones to return.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// Jobs returns the status of every registered job, sorted by name.
func (s *Scheduler) Jobs() []Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Status, 0, len(s.jobs))
	for _, e := range s.jobs {
		st := e.status
		if st.LastRun != nil {
			t := *st.LastRun
			st.LastRun = &t
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
