// Package service implements the email, search, template, campaign and
// analytics backends on top of Gmail and the local store.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hal9000y/mailvoice/internal/mail"
	"github.com/hal9000y/mailvoice/internal/store"
)

type mailbox interface {
	Send(ctx context.Context, out mail.Outgoing) (mail.Sent, error)
	List(ctx context.Context, labelID, q string, limit int64) ([]mail.Email, error)
	Modify(ctx context.Context, msgID string, add, remove []string) error
	Trash(ctx context.Context, msgID string) error
	Labels(ctx context.Context) ([]mail.Folder, error)
	CreateLabel(ctx context.Context, name string) (mail.Folder, error)
	DeleteLabel(ctx context.Context, labelID string) error
}

type activityRecorder interface {
	RecordActivity(ctx context.Context, a mail.Activity) (mail.Activity, error)
}

type activityLog interface {
	activityRecorder
	Activities(ctx context.Context, f store.ActivityFilter) ([]mail.Activity, error)
}

type options struct {
	log *zap.Logger
	now func() time.Time
}

type Option func(*options)

func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func newOptions(opts []Option) options {
	o := options{log: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func record(ctx context.Context, activity activityRecorder, log *zap.Logger, a mail.Activity) {
	if _, err := activity.RecordActivity(ctx, a); err != nil {
		log.Warn("record activity failed", zap.String("kind", a.Kind), zap.Error(err))
	}
}
