// Package automation schedules emails for later delivery and exposes the
// user's automation rules and follow-up reminders.
package automation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hal9000y/mailvoice/internal/mail"
)

type store interface {
	AddScheduled(ctx context.Context, se mail.ScheduledEmail) (mail.ScheduledEmail, error)
	ListRules(ctx context.Context, userID string) ([]mail.AutomationRule, error)
	SaveRule(ctx context.Context, r mail.AutomationRule) (mail.AutomationRule, error)
	ListFollowUps(ctx context.Context, userID string) ([]mail.FollowUp, error)
	RecordActivity(ctx context.Context, a mail.Activity) (mail.Activity, error)
}

type options struct {
	log *zap.Logger
	now func() time.Time
	loc *time.Location
}

type Option func(*options)

func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLocation sets the zone spoken times are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.loc = loc }
}

func newOptions(opts []Option) options {
	o := options{log: zap.NewNop(), now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type Service struct {
	store store
	log   *zap.Logger
	now   func() time.Time
	loc   *time.Location
}

func NewService(st store, opts ...Option) *Service {
	o := newOptions(opts)
	return &Service{store: st, log: o.log, now: o.now, loc: o.loc}
}

// ScheduleEmail stores out for delivery at the time described by when.
func (s *Service) ScheduleEmail(ctx context.Context, userID string, out mail.Outgoing, when string) (mail.ScheduledEmail, error) {
	if len(out.To) == 0 {
		return mail.ScheduledEmail{}, errors.New("no recipients")
	}

	at, err := ParseWhen(when, s.now().In(s.loc))
	if err != nil {
		return mail.ScheduledEmail{}, err
	}

	scheduled, err := s.store.AddScheduled(ctx, mail.ScheduledEmail{UserID: userID, Email: out, ScheduledAt: at})
	if err != nil {
		return mail.ScheduledEmail{}, fmt.Errorf("store.AddScheduled failed: %w", err)
	}

	_, err = s.store.RecordActivity(ctx, mail.Activity{
		UserID:    userID,
		Kind:      mail.ActivityScheduled,
		Recipient: out.To[0],
		Subject:   out.Subject,
		RefID:     scheduled.ID,
	})
	if err != nil {
		s.log.Warn("record activity failed", zap.String("kind", mail.ActivityScheduled), zap.Error(err))
	}

	s.log.Debug("email scheduled", zap.String("id", scheduled.ID), zap.Time("at", scheduled.ScheduledAt))
	return scheduled, nil
}

func (s *Service) GetAutomationRules(ctx context.Context, userID string) ([]mail.AutomationRule, error) {
	return s.store.ListRules(ctx, userID)
}

func (s *Service) GetFollowUpReminders(ctx context.Context, userID string) ([]mail.FollowUp, error) {
	return s.store.ListFollowUps(ctx, userID)
}

// SyncRules upserts rules declared outside the store, e.g. in the config file.
func (s *Service) SyncRules(ctx context.Context, userID string, rules []mail.AutomationRule) error {
	for _, r := range rules {
		r.UserID = userID
		if _, err := s.store.SaveRule(ctx, r); err != nil {
			return fmt.Errorf("store.SaveRule failed: %w", err)
		}
	}
	return nil
}
