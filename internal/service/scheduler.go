package service

import (
	"context"
	"fmt"
	"time"

	"jsmc-rsvp/internal/logger"

	"github.com/jasonlvhit/gocron"
)

type Job func(ctx context.Context) error

// Scheduler runs background jobs on fixed intervals.
type Scheduler struct {
	cron *gocron.Scheduler
	stop chan bool
}

func NewScheduler() *Scheduler { return &Scheduler{cron: gocron.NewScheduler()} }

func (s *Scheduler) EveryMinutes(n uint64, name string, job Job) error {
	if err := s.cron.Every(n).Minutes().Do(runJob, name, job); err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	return nil
}

func (s *Scheduler) EverySeconds(n uint64, name string, job Job) error {
	if err := s.cron.Every(n).Seconds().Do(runJob, name, job); err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	return nil
}

func (s *Scheduler) Start() { s.stop = s.cron.Start() }

func (s *Scheduler) Stop() {
	if s.stop != nil {
		s.stop <- true
		s.stop = nil
	}
	s.cron.Clear()
}

func runJob(name string, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := job(ctx); err != nil {
		logger.Error("job.failed", "job", name, "err", err)
	}
}
