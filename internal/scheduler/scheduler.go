// Package scheduler runs the recurring per-product jobs and the global
// maintenance jobs on fixed intervals. Each job key has at most one
// running instance at a time; a tick that finds the previous run still
// in flight is skipped, not queued.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pricepulse/logger"
)

// Job kinds. The job key is "<kind>:<id>".
const (
	KindPrice      = "scrape_price"
	KindComparison = "compare_price"
	KindRetention  = "retention_sweep"
	KindLiveness   = "liveness_probe"
)

const tickResolution = time.Second

// JobFunc is one unit of scheduled work
type JobFunc func(ctx context.Context) error

// JobStatus is the externally visible state of one scheduled job
type JobStatus struct {
	Key     string    `json:"id"`
	Kind    string    `json:"kind"`
	NextRun time.Time `json:"next_run_time"`
	Running bool      `json:"running"`
}

// Status is the externally visible state of the scheduler
type Status struct {
	Running    bool        `json:"running"`
	ActiveJobs int         `json:"active_job_count"`
	Jobs       []JobStatus `json:"jobs"`
}

type job struct {
	key      string
	kind     string
	interval time.Duration
	nextRun  time.Time
	running  bool
	fn       JobFunc
}

// Scheduler owns the job table and the tick loop. All mutation of the
// table goes through the mutex; job bodies run outside it.
type Scheduler struct {
	mu         sync.Mutex
	jobs       map[string]*job
	started    bool
	jobTimeout time.Duration
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	log        *logger.Logger
	now        func() time.Time
}

// New creates an empty scheduler. jobTimeout bounds each job execution;
// zero means no bound.
func New(jobTimeout time.Duration) *Scheduler {
	return &Scheduler{
		jobs:       make(map[string]*job),
		jobTimeout: jobTimeout,
		log:        logger.ForComponent("scheduler"),
		now:        time.Now,
	}
}

// Upsert registers a job under the key, replacing any existing schedule for
// that key. The first fire is one full interval out.
func (s *Scheduler) Upsert(kind, id string, interval time.Duration, fn JobFunc) {
	key := jobKey(kind, id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.jobs[key]; ok && existing.running {
		// Replace the schedule but let the in-flight run finish
		existing.interval = interval
		existing.fn = fn
		existing.nextRun = s.now().Add(interval)
		return
	}

	s.jobs[key] = &job{
		key:      key,
		kind:     kind,
		interval: interval,
		nextRun:  s.now().Add(interval),
		fn:       fn,
	}
}

// Remove drops the job under the key. An in-flight run finishes but never
// fires again.
func (s *Scheduler) Remove(kind, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobKey(kind, id))
}

// TriggerNow runs the job under the key immediately, outside its schedule,
// respecting the single-instance guard
func (s *Scheduler) TriggerNow(kind, id string) error {
	key := jobKey(kind, id)

	s.mu.Lock()
	j, ok := s.jobs[key]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("no scheduled job %s", key)
	}
	if j.running {
		s.mu.Unlock()
		return fmt.Errorf("job %s is already running", key)
	}
	j.running = true
	fn := j.fn
	s.mu.Unlock()

	s.wg.Add(1)
	go s.execute(j, fn)
	return nil
}

// Start launches the tick loop. Calling Start twice is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop(ctx)
	s.log.Info().Msg("Scheduler started")
}

// Stop halts the tick loop and waits for in-flight jobs up to the context
// deadline
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info().Msg("Scheduler stopped")
		return nil
	case <-ctx.Done():
		s.log.Warn().Msg("Scheduler stop timed out with jobs still in flight")
		return ctx.Err()
	}
}

// Status reports the scheduler and job table state
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{Running: s.started, ActiveJobs: len(s.jobs)}
	for _, j := range s.jobs {
		st.Jobs = append(st.Jobs, JobStatus{
			Key:     j.key,
			Kind:    j.kind,
			NextRun: j.nextRun,
			Running: j.running,
		})
	}
	return st
}

// ActiveJobCount returns how many jobs are scheduled
func (s *Scheduler) ActiveJobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(tickResolution)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runDue(s.now())
		}
	}
}

// dispatch is a job snapshot taken under the mutex at fire time. execute
// works off the snapshot, so a concurrent Upsert replacing the job's fn
// never races an in-flight run.
type dispatch struct {
	j  *job
	fn JobFunc
}

// runDue fires every job whose next run is at or before now. The next fire
// time advances at dispatch, so a slow run cannot pile up catch-up fires.
func (s *Scheduler) runDue(now time.Time) {
	s.mu.Lock()
	var due []dispatch
	for _, j := range s.jobs {
		if j.nextRun.After(now) {
			continue
		}
		j.nextRun = now.Add(j.interval)
		if j.running {
			s.log.Warn().
				Str("job", j.key).
				Msg("Previous run still in flight, skipping this fire")
			continue
		}
		j.running = true
		due = append(due, dispatch{j: j, fn: j.fn})
	}
	s.mu.Unlock()

	for _, d := range due {
		s.wg.Add(1)
		go s.execute(d.j, d.fn)
	}
}

func (s *Scheduler) execute(j *job, fn JobFunc) {
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().
				Str("job", j.key).
				Interface("panic", r).
				Msg("Job panicked")
		}
		s.mu.Lock()
		j.running = false
		s.mu.Unlock()
	}()

	ctx := context.Background()
	if s.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.jobTimeout)
		defer cancel()
	}

	start := s.now()
	if err := fn(ctx); err != nil {
		s.log.Error().
			Err(err).
			Str("job", j.key).
			Dur("elapsed", s.now().Sub(start)).
			Msg("Job failed")
		return
	}

	s.log.Debug().
		Str("job", j.key).
		Dur("elapsed", s.now().Sub(start)).
		Msg("Job completed")
}

func jobKey(kind, id string) string {
	if id == "" {
		return kind
	}
	return kind + ":" + id
}
