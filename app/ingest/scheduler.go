package ingest

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Scheduler triggers a data pull on a fixed interval. A tick landing while
// another operation holds the gate is skipped, not queued. Stop halts the
// ticker only; a pull already in flight runs to completion.
type Scheduler struct {
	runner   *Runner
	opts     Options
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewScheduler(runner *Runner, opts Options, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		runner:   runner,
		opts:     opts,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.trigger()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) trigger() {
	if err := s.runner.Start(s.opts); err != nil {
		if errors.Is(err, ErrBusy) {
			slog.Debug("Scheduled pull skipped, another operation is in progress")
			return
		}
		slog.Warn("Failed to start scheduled pull", "error", err)
		return
	}

	slog.Info("Scheduled pull started", "start_page", s.opts.StartPage, "pages", s.opts.Pages)
}
