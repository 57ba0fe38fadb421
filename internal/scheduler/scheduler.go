// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs background maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrJobNotFound is returned by RunNow for unknown names.
var ErrJobNotFound = errors.New("job not found")

// jobTimeout bounds a single run.
const jobTimeout = 10 * time.Minute

// JobFunc is the body of a job.
type JobFunc func(ctx context.Context) error

// JobInfo describes a registered job for display.
type JobInfo struct {
	Name      string
	Schedule  string
	Next      time.Time
	LastRun   time.Time
	LastError string
}

type job struct {
	name     string
	schedule string
	entryID  cron.EntryID
	fn       JobFunc

	mu      sync.Mutex
	lastRun time.Time
	lastErr error
}

// Scheduler wraps a cron instance with named jobs.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	mu   sync.RWMutex
	jobs []*job
}

// New creates a new scheduler instance.
func New(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger: logger,
	}
}

// ValidateSchedule reports whether spec is a standard cron expression or a
// descriptor such as @hourly.
func ValidateSchedule(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// Add registers a job. An empty schedule disables it.
func (s *Scheduler) Add(name, schedule string, fn JobFunc) error {
	if schedule == "" {
		s.logger.Info("job disabled", "job", name)
		return nil
	}
	if err := ValidateSchedule(schedule); err != nil {
		return err
	}

	j := &job{name: name, schedule: schedule, fn: fn}
	id, err := s.cron.AddFunc(schedule, func() { s.run(j) })
	if err != nil {
		return fmt.Errorf("adding job %s: %w", name, err)
	}
	j.entryID = id

	s.mu.Lock()
	s.jobs = append(s.jobs, j)
	s.mu.Unlock()
	return nil
}

// RunNow runs a job synchronously outside its schedule and returns its
// error.
func (s *Scheduler) RunNow(name string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, j := range s.jobs {
		if j.name == name {
			return s.run(j)
		}
	}
	return fmt.Errorf("job %s: %w", name, ErrJobNotFound)
}

func (s *Scheduler) run(j *job) error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	err := j.fn(ctx)

	j.mu.Lock()
	j.lastRun = start
	j.lastErr = err
	j.mu.Unlock()

	if err != nil {
		s.logger.Error("scheduled job failed", "job", j.name, "error", err, "category", "system")
	} else {
		s.logger.Debug("scheduled job finished", "job", j.name, "duration", time.Since(start))
	}
	return err
}

// Jobs lists the registered jobs.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		info := JobInfo{Name: j.name, Schedule: j.schedule, Next: s.cron.Entry(j.entryID).Next}
		j.mu.Lock()
		info.LastRun = j.lastRun
		if j.lastErr != nil {
			info.LastError = j.lastErr.Error()
		}
		j.mu.Unlock()
		out = append(out, info)
	}
	return out
}

// Start begins running jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}
