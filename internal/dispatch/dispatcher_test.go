package dispatch_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"

	"github.com/hal9000y/mailvoice/internal/command"
	"github.com/hal9000y/mailvoice/internal/dispatch"
	"github.com/hal9000y/mailvoice/internal/mail"
)

var fullParams = command.Params{
	Recipient:     "alice@example.com",
	Sender:        "bob@example.com",
	Subject:       "Hi",
	Message:       "See you",
	Query:         "invoice",
	EmailID:       "m-001",
	FolderName:    "Receipts",
	TemplateName:  "Welcome",
	CampaignName:  "Launch",
	CampaignID:    "c-001",
	ClientID:      "client-7",
	ScheduledTime: "tomorrow",
	RuleName:      "Auto reply",
	InvoiceID:     "1042",
	QuoteID:       "Q7",
	Topic:         "send",
}

func TestEveryActionHasHandler(t *testing.T) {
	d := dispatch.New((&svcMock{}).services())

	for _, action := range command.Actions() {
		assert.True(t, d.Handles(action), "missing handler for %s", action)
	}
}

func TestEveryActionSucceedsWithParams(t *testing.T) {
	d := dispatch.New((&svcMock{}).services())
	ec := dispatch.ExecutionContext{UserID: "u-1"}

	for _, action := range command.Actions() {
		t.Run(string(action), func(t *testing.T) {
			env := d.Execute(context.Background(), action, fullParams, ec)
			assert.True(t, env.Success, env.Message)
			assert.NotEqual(t, dispatch.TagError, env.Action)
			assert.NotEqual(t, dispatch.TagInputRequired, env.Action)
		})
	}
}

func TestMissingParams(t *testing.T) {
	cases := []struct {
		action  command.ActionID
		message string
		missing dispatch.Missing
	}{
		{command.Send, "Please specify a recipient", dispatch.Missing{Field: "recipient"}},
		{command.Reply, "Please specify which email to reply to", dispatch.Missing{Field: "emailId"}},
		{command.MarkRead, "Please specify which email to mark as read", dispatch.Missing{Field: "emailId"}},
		{command.SearchEmails, "Please specify what to search for", dispatch.Missing{Field: "query"}},
		{command.SearchByFrom, "Please specify the sender to search for", dispatch.Missing{Field: "sender"}},
		{command.CreateFolder, "Please specify a folder name", dispatch.Missing{Field: "folderName"}},
		{command.MoveToFolder, "Please specify both email ID and folder name", dispatch.Missing{Fields: []string{"emailId", "folderName"}}},
		{command.CreateTemplate, "Please specify a template name", dispatch.Missing{Field: "templateName"}},
		{command.SendCampaign, "Please specify which campaign to send", dispatch.Missing{Field: "campaignId"}},
		{command.ClientEmailHistory, "Please specify a client ID", dispatch.Missing{Field: "clientId"}},
		{command.ScheduleEmail, "Please specify recipient and scheduled time", dispatch.Missing{Fields: []string{"recipient", "scheduledTime"}}},
		{command.CreateAutomation, "Please specify an automation rule name", dispatch.Missing{Field: "ruleName"}},
		{command.SendInvoiceEmail, "Please specify invoice ID and recipient", dispatch.Missing{Fields: []string{"invoiceId", "recipient"}}},
		{command.SendPaymentReminder, "Please specify an invoice ID", dispatch.Missing{Field: "invoiceId"}},
	}

	for _, tc := range cases {
		t.Run(string(tc.action), func(t *testing.T) {
			svc := &svcMock{}
			d := dispatch.New(svc.services())

			env := d.Execute(context.Background(), tc.action, command.Params{}, dispatch.ExecutionContext{UserID: "u"})

			assert.False(t, env.Success)
			assert.Equal(t, dispatch.TagInputRequired, env.Action)
			assert.Equal(t, tc.message, env.Message)
			assert.Equal(t, tc.missing, env.Data)
			assert.Empty(t, svc.Calls())
		})
	}
}

func TestInputRequiredJSON(t *testing.T) {
	d := dispatch.New((&svcMock{}).services())

	env := d.Execute(context.Background(), command.Send, command.Params{}, dispatch.ExecutionContext{})

	raw, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": false,
		"message": "Please specify a recipient",
		"action": "input_required",
		"data": {"field": "recipient"}
	}`, string(raw))
}

func TestServiceFailures(t *testing.T) {
	cases := []struct {
		name    string
		svc     *svcMock
		action  command.ActionID
		params  command.Params
		message string
	}{
		{
			name: "error_passthrough",
			svc: &svcMock{UpdateEmailFunc: func(context.Context, string, string, mail.Update) error {
				return errors.New("not found")
			}},
			action:  command.MarkRead,
			params:  command.Params{EmailID: "x"},
			message: "Failed to mark as read: not found",
		},
		{
			name: "panic_with_string",
			svc: &svcMock{UpdateEmailFunc: func(context.Context, string, string, mail.Update) error {
				panic("boom")
			}},
			action:  command.MarkRead,
			params:  command.Params{EmailID: "x"},
			message: "Failed to mark as read: Unknown error occurred",
		},
		{
			name: "panic_with_error",
			svc: &svcMock{SendEmailFunc: func(context.Context, string, mail.Outgoing) (mail.Sent, error) {
				panic(fmt.Errorf("connection reset"))
			}},
			action:  command.Send,
			params:  command.Params{Recipient: "a@b.co"},
			message: "Failed to send email: connection reset",
		},
		{
			name: "search",
			svc: &svcMock{SearchEmailsFunc: func(context.Context, string, mail.SearchQuery) ([]mail.Email, error) {
				return nil, errors.New("quota exceeded")
			}},
			action:  command.SearchEmails,
			params:  command.Params{Query: "taxes"},
			message: "Search failed: quota exceeded",
		},
		{
			name: "folder_not_found",
			svc: &svcMock{DeleteFolderFunc: func(_ context.Context, _, name string) error {
				return fmt.Errorf("label %q: %w", name, mail.ErrNotFound)
			}},
			action:  command.DeleteFolder,
			params:  command.Params{FolderName: "Receipts"},
			message: `Folder "Receipts" not found`,
		},
		{
			name: "move_folder_not_found",
			svc: &svcMock{MoveToFolderFunc: func(context.Context, string, string, string) error {
				return mail.ErrNotFound
			}},
			action:  command.MoveToFolder,
			params:  command.Params{EmailID: "m-1", FolderName: "Nowhere"},
			message: `Folder "Nowhere" not found`,
		},
		{
			name: "template_not_found",
			svc: &svcMock{DeleteTemplateFunc: func(context.Context, string, string) error {
				return mail.ErrNotFound
			}},
			action:  command.DeleteTemplate,
			params:  command.Params{TemplateName: "Welcome"},
			message: `Template "Welcome" not found`,
		},
		{
			name: "campaign_transition",
			svc: &svcMock{PauseCampaignFunc: func(context.Context, string, string) (mail.Campaign, error) {
				return mail.Campaign{}, errors.New(`campaign "c-1" is draft`)
			}},
			action:  command.PauseCampaign,
			params:  command.Params{CampaignID: "c-1"},
			message: `Failed to pause campaign: campaign "c-1" is draft`,
		},
		{
			name: "analytics",
			svc: &svcMock{GetEmailStatsFunc: func(context.Context, string) (mail.Stats, error) {
				return mail.Stats{}, errors.New("db closed")
			}},
			action:  command.EmailStats,
			message: "Failed to get email stats: db closed",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := dispatch.New(tc.svc.services())

			env := d.Execute(context.Background(), tc.action, tc.params, dispatch.ExecutionContext{UserID: "u"})

			assert.False(t, env.Success)
			assert.Equal(t, dispatch.TagError, env.Action)
			assert.Equal(t, tc.message, env.Message)
			assert.Nil(t, env.Data)
		})
	}
}

func TestNilServiceIsReportedNotPanicked(t *testing.T) {
	d := dispatch.New(dispatch.Services{})

	env := d.Execute(context.Background(), command.ShowFolders, command.Params{}, dispatch.ExecutionContext{})

	assert.False(t, env.Success)
	assert.Equal(t, dispatch.TagError, env.Action)
	assert.Contains(t, env.Message, "Failed to fetch folders: ")
}

func TestUnknownAction(t *testing.T) {
	svc := &svcMock{}
	d := dispatch.New(svc.services())

	env := d.Execute(context.Background(), command.ActionID("teleport"), command.Params{}, dispatch.ExecutionContext{})

	assert.Equal(t, dispatch.Envelope{
		Success: false,
		Message: "Unknown email action: teleport",
		Action:  dispatch.TagError,
	}, env)
	assert.Empty(t, svc.Calls())
}

func TestCurrentEmailFillsEmailID(t *testing.T) {
	var gotID string
	svc := &svcMock{UpdateEmailFunc: func(_ context.Context, _, emailID string, upd mail.Update) error {
		gotID = emailID
		require.NotNil(t, upd.Starred)
		assert.True(t, *upd.Starred)
		return nil
	}}
	d := dispatch.New(svc.services())
	ec := dispatch.ExecutionContext{UserID: "u", CurrentEmail: &mail.Email{ID: "m-current"}}

	env := d.Execute(context.Background(), command.StarEmail, command.Params{}, ec)
	assert.True(t, env.Success)
	assert.Equal(t, "Email starred", env.Message)
	assert.Equal(t, "m-current", gotID)

	env = d.Execute(context.Background(), command.StarEmail, command.Params{EmailID: "m-explicit"}, ec)
	assert.True(t, env.Success)
	assert.Equal(t, "m-explicit", gotID)

	// Actions that do not target a message ignore the current email.
	env = d.Execute(context.Background(), command.Send, command.Params{}, ec)
	assert.Equal(t, dispatch.TagInputRequired, env.Action)
}

func TestSendDefaults(t *testing.T) {
	var got mail.Outgoing
	svc := &svcMock{SendEmailFunc: func(_ context.Context, userID string, out mail.Outgoing) (mail.Sent, error) {
		got = out
		return mail.Sent{ID: "s-1", To: out.To, Subject: out.Subject}, nil
	}}
	d := dispatch.New(svc.services())

	env := d.Execute(context.Background(), command.Send, command.Params{Recipient: "a@b.co", Message: "hello"}, dispatch.ExecutionContext{UserID: "u"})

	assert.True(t, env.Success)
	assert.Equal(t, dispatch.TagEmailSent, env.Action)
	assert.Equal(t, "Email sent successfully", env.Message)
	assert.Equal(t, mail.Outgoing{To: []string{"a@b.co"}, Subject: "No Subject", Body: "hello", Priority: "normal"}, got)
	assert.Equal(t, mail.Sent{ID: "s-1", To: []string{"a@b.co"}, Subject: "No Subject"}, env.Data)
}

func TestShowData(t *testing.T) {
	svc := &svcMock{
		GetEmailsFunc: func(_ context.Context, _, folder string, limit int64) ([]mail.Email, error) {
			assert.Equal(t, "inbox", folder)
			assert.Equal(t, int64(5), limit)
			return []mail.Email{{ID: "m-1"}, {ID: "m-2"}}, nil
		},
		SearchEmailsFunc: func(_ context.Context, _ string, q mail.SearchQuery) ([]mail.Email, error) {
			assert.Equal(t, mail.SearchQuery{From: "bob@x.com", Limit: 5}, q)
			return []mail.Email{{ID: "m-3"}}, nil
		},
	}
	d := dispatch.New(svc.services(), dispatch.WithListLimit(5))

	env := d.Execute(context.Background(), command.ShowEmails, command.Params{}, dispatch.ExecutionContext{})
	assert.Equal(t, "Showing 2 emails from inbox", env.Message)
	assert.Equal(t, dispatch.TagShowData, env.Action)
	assert.Equal(t, dispatch.View{Type: "emails", Route: "/email", Items: []mail.Email{{ID: "m-1"}, {ID: "m-2"}}}, env.Data)

	env = d.Execute(context.Background(), command.SearchByFrom, command.Params{Query: "bob@x.com"}, dispatch.ExecutionContext{})
	assert.Equal(t, `Found 1 emails from "bob@x.com"`, env.Message)
	view, ok := env.Data.(dispatch.View)
	require.True(t, ok)
	assert.Equal(t, "from:bob@x.com", view.Query)
	assert.Equal(t, "search_results", view.Type)
}

func TestNavigation(t *testing.T) {
	d := dispatch.New((&svcMock{}).services())

	env := d.Execute(context.Background(), command.Reply, command.Params{EmailID: "m-1"}, dispatch.ExecutionContext{})
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": true,
		"message": "Opening email composer for reply...",
		"action": "navigate",
		"data": {"route": "/email/compose", "params": {"emailId": "m-1", "replyTo": "m-1"}}
	}`, string(raw))

	env = d.Execute(context.Background(), command.ManageSignature, command.Params{}, dispatch.ExecutionContext{})
	assert.Equal(t, dispatch.Navigation{Route: "/email/settings/signature"}, env.Data)
}

func TestScheduleEmail(t *testing.T) {
	svc := &svcMock{ScheduleEmailFunc: func(_ context.Context, userID string, out mail.Outgoing, when string) (mail.ScheduledEmail, error) {
		assert.Equal(t, "tomorrow", when)
		assert.Equal(t, "Scheduled Email", out.Subject)
		return mail.ScheduledEmail{ID: "s-1", UserID: userID, Email: out, Status: mail.ScheduledPending}, nil
	}}
	d := dispatch.New(svc.services())

	env := d.Execute(context.Background(), command.ScheduleEmail,
		command.Params{Recipient: "bob@co.com", ScheduledTime: "tomorrow"}, dispatch.ExecutionContext{UserID: "u"})

	assert.True(t, env.Success)
	assert.Equal(t, dispatch.TagEmailScheduled, env.Action)
	assert.Equal(t, "Email scheduled for tomorrow", env.Message)
	assert.Equal(t, []string{"ScheduleEmail"}, svc.Calls())
}

type recorderMock struct {
	mu   sync.Mutex
	tags map[string]string
}

func (r *recorderMock) ObserveDispatch(action, tag string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags[action] = tag
}

func TestMetricsRecorded(t *testing.T) {
	rec := &recorderMock{tags: map[string]string{}}
	d := dispatch.New((&svcMock{}).services(), dispatch.WithMetrics(rec))

	d.Execute(context.Background(), command.Send, command.Params{}, dispatch.ExecutionContext{})
	d.Execute(context.Background(), command.EmailHelp, command.Params{}, dispatch.ExecutionContext{})
	d.Execute(context.Background(), command.ActionID("nope"), command.Params{}, dispatch.ExecutionContext{})

	assert.Equal(t, map[string]string{
		"send":      "input_required",
		"emailHelp": "show_help",
		"nope":      "error",
	}, rec.tags)
}

type panicRecorder struct{}

func (panicRecorder) ObserveDispatch(string, string, time.Duration) {
	panic("metrics backend down")
}

func TestRecorderPanicDoesNotEscape(t *testing.T) {
	d := dispatch.New((&svcMock{}).services(), dispatch.WithMetrics(panicRecorder{}))

	var env dispatch.Envelope
	require.NotPanics(t, func() {
		env = d.Execute(context.Background(), command.EmailHelp, command.Params{}, dispatch.ExecutionContext{})
	})
	assert.True(t, env.Success)
	assert.Equal(t, dispatch.TagShowHelp, env.Action)
}

func TestPanicOutsideServiceCall(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		message string
	}{
		{name: "string", value: "log sink closed", message: "Error executing email command: Unknown error occurred"},
		{name: "error", value: errors.New("log sink closed"), message: "Error executing email command: log sink closed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := zaptest.NewLogger(t,
				zaptest.Level(zapcore.DebugLevel),
				zaptest.WrapOptions(zap.Hooks(func(e zapcore.Entry) error {
					if e.Message == "executing email command" {
						panic(tt.value)
					}
					return nil
				})),
			)
			rec := &recorderMock{tags: map[string]string{}}
			svc := &svcMock{}
			d := dispatch.New(svc.services(), dispatch.WithLogger(log), dispatch.WithMetrics(rec))

			env := d.Execute(context.Background(), command.EmailHelp, command.Params{}, dispatch.ExecutionContext{})

			assert.False(t, env.Success)
			assert.Equal(t, dispatch.TagError, env.Action)
			assert.Equal(t, tt.message, env.Message)
			assert.Equal(t, map[string]string{"emailHelp": "error"}, rec.tags)
			assert.Empty(t, svc.Calls())
		})
	}
}
