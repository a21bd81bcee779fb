package orchestrator

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler renders and persists a snapshot of one source on a cron schedule.
type Scheduler struct {
	c       *cron.Cron
	p       *Pipeline
	source  string
	outputs string
	log     *logrus.Entry
}

func NewScheduler(p *Pipeline, schedule, source, outputs string) (*Scheduler, error) {
	s := &Scheduler{
		c:       cron.New(),
		p:       p,
		source:  source,
		outputs: outputs,
		log:     p.log.Logger.WithField("component", "scheduler"),
	}
	if _, err := s.c.AddFunc(schedule, func() {
		if _, err := s.Snapshot(context.Background()); err != nil {
			s.log.WithError(err).Error("snapshot failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("snapshot schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.log.WithField("source", s.source).Info("snapshot scheduler started")
	s.c.Start()
}

// Stop halts scheduling; the returned context is done once a running job ends.
func (s *Scheduler) Stop() context.Context {
	return s.c.Stop()
}

// Snapshot runs one render and persists it.
func (s *Scheduler) Snapshot(ctx context.Context) (*Snapshot, error) {
	d, err := s.p.Run(ctx, s.source, "")
	if err != nil {
		return nil, err
	}
	snap, err := Persist(s.outputs, d)
	if err != nil {
		return nil, fmt.Errorf("persist snapshot: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"session": snap.SessionID,
		"dir":     snap.Dir,
	}).Info("snapshot written")
	return snap, nil
}
