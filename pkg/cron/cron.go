// Package cron schedules recurring storekit jobs such as update checks.
package cron

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/matzehuels/storekit/pkg/errors"
)

// Scheduler is an interface for cron scheduling operations.
type Scheduler interface {
	AddFunc(expr string, cmd func()) (cron.EntryID, error)
	Remove(id cron.EntryID)
	Start()
	Stop()
	Entries() []cron.Entry
}

// RealScheduler wraps robfig/cron for production use.
type RealScheduler struct {
	*cron.Cron
}

// NewRealScheduler creates a production cron scheduler. Overlapping runs
// of the same job are skipped.
func NewRealScheduler() *RealScheduler {
	return &RealScheduler{
		Cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

// Start starts the cron scheduler.
func (r *RealScheduler) Start() {
	r.Cron.Start()
}

// Stop stops the scheduler and waits for running jobs to finish.
func (r *RealScheduler) Stop() {
	ctx := r.Cron.Stop()
	<-ctx.Done()
}

// ValidateSchedule checks a standard cron expression or descriptor
// such as "@hourly" or "@every 30m".
func ValidateSchedule(expr string) error {
	if _, err := cron.ParseStandard(expr); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid schedule %q", expr)
	}
	return nil
}

// Run schedules job on expr, starts s and blocks until ctx is done.
// The scheduler is stopped before Run returns. Each job run receives ctx.
func Run(ctx context.Context, s Scheduler, expr string, job func(context.Context)) error {
	if err := ValidateSchedule(expr); err != nil {
		return err
	}
	id, err := s.AddFunc(expr, func() { job(ctx) })
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "schedule %q", expr)
	}
	defer s.Remove(id)

	s.Start()
	<-ctx.Done()
	s.Stop()
	return nil
}
