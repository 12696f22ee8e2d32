// Package jobs runs the periodic housekeeping sweeps on a cron schedule.
package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Task is one sweep. Run returns how many entries it removed.
type Task struct {
	Name string
	Run  func() int
}

type Recorder interface {
	ObserveSweep(target string, removed int)
}

type Scheduler struct {
	cron  *cron.Cron
	spec  string
	tasks []Task
	rec   Recorder
	log   *slog.Logger
}

func NewScheduler(spec string, rec Recorder, log *slog.Logger, tasks ...Task) *Scheduler {
	if log == nil {
		log = slog.Default()
	}

	c := cron.New(cron.WithChain(
		cron.Recover(cron.DiscardLogger),
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))

	return &Scheduler{
		cron:  c,
		spec:  spec,
		tasks: tasks,
		rec:   rec,
		log:   log,
	}
}

func (s *Scheduler) Start() error {
	for _, t := range s.tasks {
		t := t
		if _, err := s.cron.AddFunc(s.spec, func() { s.run(t) }); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.log.Info("sweeper started", "schedule", s.spec, "tasks", len(s.tasks))
	return nil
}

// Stop waits for running sweeps to finish or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunNow runs every task once on the calling goroutine.
func (s *Scheduler) RunNow() {
	for _, t := range s.tasks {
		s.run(t)
	}
}

func (s *Scheduler) run(t Task) {
	removed := t.Run()

	if s.rec != nil {
		s.rec.ObserveSweep(t.Name, removed)
	}
	if removed > 0 {
		s.log.Debug("sweep removed entries", "task", t.Name, "removed", removed)
	}
}
