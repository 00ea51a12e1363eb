package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/hal9000y/mailvoice/internal/mail"
)

const DefaultSpec = "@every 1m"

type dueStore interface {
	DueScheduled(ctx context.Context, now time.Time) ([]mail.ScheduledEmail, error)
	MarkScheduled(ctx context.Context, id, status, lastErr string) error
}

type sender interface {
	SendEmail(ctx context.Context, userID string, out mail.Outgoing) (mail.Sent, error)
}

// Scheduler periodically delivers scheduled emails whose time has come.
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	store  dueStore
	sender sender
	log    *zap.Logger
	now    func() time.Time
}

func NewScheduler(st dueStore, snd sender, spec string, opts ...Option) *Scheduler {
	o := newOptions(opts)
	if spec == "" {
		spec = DefaultSpec
	}
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		spec:   spec,
		store:  st,
		sender: snd,
		log:    o.log,
		now:    o.now,
	}
}

// Start registers the delivery job and starts the cron runner. Jobs run
// with ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if _, err := s.RunDue(ctx); err != nil {
			s.log.Error("scheduled delivery failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc(%q) failed: %w", s.spec, err)
	}

	s.cron.Start()
	s.log.Info("scheduler started", zap.String("spec", s.spec))
	return nil
}

// Stop stops the runner and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RunDue sends every due email once and returns how many were sent.
func (s *Scheduler) RunDue(ctx context.Context) (int, error) {
	due, err := s.store.DueScheduled(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("store.DueScheduled failed: %w", err)
	}

	sent := 0
	for _, se := range due {
		status, lastErr := mail.ScheduledSent, ""
		if _, err := s.sender.SendEmail(ctx, se.UserID, se.Email); err != nil {
			status, lastErr = mail.ScheduledFailed, err.Error()
			s.log.Warn("scheduled email failed", zap.String("id", se.ID), zap.Error(err))
		} else {
			sent++
		}

		if err := s.store.MarkScheduled(ctx, se.ID, status, lastErr); err != nil {
			return sent, fmt.Errorf("store.MarkScheduled failed: %w", err)
		}
	}

	if len(due) > 0 {
		s.log.Info("scheduled emails processed", zap.Int("due", len(due)), zap.Int("sent", sent))
	}
	return sent, nil
}
