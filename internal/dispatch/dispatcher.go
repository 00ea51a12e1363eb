// Package dispatch executes parsed email commands against the mail services and
// shapes every outcome into an Envelope.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hal9000y/mailvoice/internal/command"
	"github.com/hal9000y/mailvoice/internal/mail"
)

const defaultListLimit = 20

// ExecutionContext identifies who issued a command and what they were looking at.
type ExecutionContext struct {
	UserID       string
	CurrentEmail *mail.Email
}

type recorder interface {
	ObserveDispatch(action string, tag string, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveDispatch(string, string, time.Duration) {}

type handler func(ctx context.Context, p command.Params, ec ExecutionContext) Envelope

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for recovered panics and failed commands.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithMetrics records the outcome and latency of every command.
func WithMetrics(r recorder) Option {
	return func(d *Dispatcher) {
		if r != nil {
			d.metrics = r
		}
	}
}

// WithListLimit caps the number of items list and search commands return.
func WithListLimit(n int64) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.limit = n
		}
	}
}

// Dispatcher routes actions to their handlers. It is safe for concurrent use.
type Dispatcher struct {
	svc      Services
	logger   *zap.Logger
	metrics  recorder
	limit    int64
	handlers map[command.ActionID]handler
}

// New creates a dispatcher over svc.
func New(svc Services, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		svc:     svc,
		logger:  zap.NewNop(),
		metrics: nopRecorder{},
		limit:   defaultListLimit,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.handlers = map[command.ActionID]handler{
		command.Compose:              d.compose,
		command.Send:                 d.send,
		command.Reply:                d.reply,
		command.Forward:              d.forward,
		command.ShowEmails:           d.showEmails,
		command.MarkRead:             d.markRead,
		command.MarkUnread:           d.markUnread,
		command.StarEmail:            d.starEmail,
		command.UnstarEmail:          d.unstarEmail,
		command.DeleteEmail:          d.deleteEmail,
		command.ArchiveEmail:         d.archiveEmail,
		command.SearchEmails:         d.searchEmails,
		command.SearchByFrom:         d.searchByFrom,
		command.SearchBySubject:      d.searchBySubject,
		command.SearchAttachments:    d.searchAttachments,
		command.ShowFolders:          d.showFolders,
		command.CreateFolder:         d.createFolder,
		command.DeleteFolder:         d.deleteFolder,
		command.MoveToFolder:         d.moveToFolder,
		command.ShowTemplates:        d.showTemplates,
		command.CreateTemplate:       d.createTemplate,
		command.UseTemplate:          d.useTemplate,
		command.DeleteTemplate:       d.deleteTemplate,
		command.CreateCampaign:       d.createCampaign,
		command.SendCampaign:         d.sendCampaign,
		command.ShowCampaigns:        d.showCampaigns,
		command.CampaignStats:        d.campaignStats,
		command.PauseCampaign:        d.pauseCampaign,
		command.ResumeCampaign:       d.resumeCampaign,
		command.EmailAnalytics:       d.emailAnalytics,
		command.EmailStats:           d.emailStats,
		command.EmailMetrics:         d.emailMetrics,
		command.EmailPerformance:     d.emailPerformance,
		command.EmailReport:          d.emailReport,
		command.ClientEmailHistory:   d.clientEmailHistory,
		command.EmailActivity:        d.emailActivity,
		command.ScheduleEmail:        d.scheduleEmail,
		command.CreateAutomation:     d.createAutomation,
		command.ShowAutomationRules:  d.showAutomationRules,
		command.ShowFollowUps:        d.showFollowUps,
		command.SendInvoiceEmail:     d.sendInvoiceEmail,
		command.SendQuoteEmail:       d.sendQuoteEmail,
		command.SendPaymentReminder:  d.sendPaymentReminder,
		command.EmailSettings:        d.emailSettings,
		command.ManageSignature:      d.manageSignature,
		command.NotificationSettings: d.notificationSettings,
		command.EmailHelp:            d.emailHelp,
	}

	return d
}

// Handles reports whether action has a handler.
func (d *Dispatcher) Handles(action command.ActionID) bool {
	_, ok := d.handlers[action]
	return ok
}

// Actions that fall back to the email the user is looking at.
var currentEmailActions = map[command.ActionID]bool{
	command.Reply:        true,
	command.Forward:      true,
	command.MarkRead:     true,
	command.MarkUnread:   true,
	command.StarEmail:    true,
	command.UnstarEmail:  true,
	command.DeleteEmail:  true,
	command.ArchiveEmail: true,
	command.MoveToFolder: true,
}

// Execute runs action with params. It never panics: every outcome, including an
// unknown action or a failing handler, is reported in the returned Envelope.
func (d *Dispatcher) Execute(ctx context.Context, action command.ActionID, params command.Params, ec ExecutionContext) (env Envelope) {
	start := time.Now()

	defer func() {
		r := recover()
		if r != nil {
			env = fail(fmt.Sprintf("Error executing email command: %v", panicErr(r)))
		}
		d.observe(action, env, r, time.Since(start))
	}()

	h, ok := d.handlers[action]
	if !ok {
		return fail(fmt.Sprintf("Unknown email action: %s", action))
	}

	if params.EmailID == "" && ec.CurrentEmail != nil && currentEmailActions[action] {
		params.EmailID = ec.CurrentEmail.ID
	}

	d.logger.Debug("executing email command", zap.String("action", string(action)), zap.String("user_id", ec.UserID))

	return h(ctx, params, ec)
}

// observe logs and records a finished command. env is final by then; a panic
// from the logger or the recorder is dropped.
func (d *Dispatcher) observe(action command.ActionID, env Envelope, panicked any, elapsed time.Duration) {
	defer func() { _ = recover() }()

	if panicked != nil {
		d.logger.Error("email command panicked", zap.String("action", string(action)), zap.Any("panic", panicked))
	}
	if !env.Success && env.Action == TagError {
		d.logger.Warn("email command failed", zap.String("action", string(action)), zap.String("message", env.Message))
	}
	d.metrics.ObserveDispatch(string(action), string(env.Action), elapsed)
}

// call invokes a service method, turning a panic into an error.
func call[T any](fn func() (T, error)) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicErr(r)
		}
	}()
	return fn()
}

// run is call for methods that only return an error.
func run(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicErr(r)
		}
	}()
	return fn()
}

func panicErr(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return errUnknown
}
