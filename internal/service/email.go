package service

import (
	"context"
	"errors"
	"fmt"
	stdmail "net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hal9000y/mailvoice/internal/format"
	"github.com/hal9000y/mailvoice/internal/gservice"
	"github.com/hal9000y/mailvoice/internal/mail"
	"github.com/hal9000y/mailvoice/internal/store"
)

const (
	followUpAfter   = 7 * 24 * time.Hour
	archiveFolder   = "archive"
	templateInvoice = "invoice"
	templateQuote   = "quote"
)

// Gmail system labels addressable by name.
var systemFolders = map[string]bool{
	"INBOX": true, "SENT": true, "DRAFT": true, "SPAM": true,
	"TRASH": true, "STARRED": true, "IMPORTANT": true, "UNREAD": true,
}

type emailStore interface {
	activityLog
	AddFollowUp(ctx context.Context, f mail.FollowUp) (mail.FollowUp, error)
	TemplateByName(ctx context.Context, userID, name string) (mail.Template, error)
}

// Email sends and organizes messages. Gmail holds a single mailbox; userID
// scopes the activity log and templates.
type Email struct {
	box   mailbox
	store emailStore
	log   *zap.Logger
	now   func() time.Time
}

func NewEmail(box mailbox, st emailStore, opts ...Option) *Email {
	o := newOptions(opts)
	return &Email{box: box, store: st, log: o.log, now: o.now}
}

func (e *Email) SendEmail(ctx context.Context, userID string, out mail.Outgoing) (mail.Sent, error) {
	return e.deliver(ctx, userID, out, mail.ActivitySent, "")
}

// GetEmails lists messages in the named folder.
func (e *Email) GetEmails(ctx context.Context, _ string, folder string, limit int64) ([]mail.Email, error) {
	labelID, err := e.resolveFolder(ctx, folder)
	if err != nil {
		return nil, err
	}

	emails, err := e.box.List(ctx, labelID, "", limit)
	if err != nil {
		return nil, fmt.Errorf("box.List failed: %w", err)
	}
	return emails, nil
}

func (e *Email) UpdateEmail(ctx context.Context, userID, emailID string, upd mail.Update) error {
	var (
		add, remove []string
		kinds       []string
	)

	if upd.Read != nil {
		if *upd.Read {
			remove = append(remove, gservice.LabelUnread)
			kinds = append(kinds, mail.ActivityRead)
		} else {
			add = append(add, gservice.LabelUnread)
			kinds = append(kinds, mail.ActivityUnread)
		}
	}
	if upd.Starred != nil {
		if *upd.Starred {
			add = append(add, gservice.LabelStarred)
			kinds = append(kinds, mail.ActivityStarred)
		} else {
			remove = append(remove, gservice.LabelStarred)
			kinds = append(kinds, mail.ActivityUnstarred)
		}
	}
	switch {
	case strings.EqualFold(upd.Folder, archiveFolder):
		remove = append(remove, gservice.LabelInbox)
		kinds = append(kinds, mail.ActivityArchived)
	case upd.Folder != "":
		labelID, err := e.resolveFolder(ctx, upd.Folder)
		if err != nil {
			return err
		}
		add = append(add, labelID)
		remove = append(remove, gservice.LabelInbox)
		kinds = append(kinds, mail.ActivityMoved)
	}

	if len(add) == 0 && len(remove) == 0 {
		return errors.New("nothing to update")
	}

	if err := e.box.Modify(ctx, emailID, add, remove); err != nil {
		return fmt.Errorf("box.Modify failed: %w", err)
	}

	for _, kind := range kinds {
		record(ctx, e.store, e.log, mail.Activity{UserID: userID, Kind: kind, EmailID: emailID})
	}
	return nil
}

// DeleteEmail moves the message to the trash.
func (e *Email) DeleteEmail(ctx context.Context, userID, emailID string) error {
	if err := e.box.Trash(ctx, emailID); err != nil {
		return fmt.Errorf("box.Trash failed: %w", err)
	}

	record(ctx, e.store, e.log, mail.Activity{UserID: userID, Kind: mail.ActivityDeleted, EmailID: emailID})
	return nil
}

func (e *Email) GetFolders(ctx context.Context, _ string) ([]mail.Folder, error) {
	folders, err := e.box.Labels(ctx)
	if err != nil {
		return nil, fmt.Errorf("box.Labels failed: %w", err)
	}
	return folders, nil
}

func (e *Email) CreateFolder(ctx context.Context, _ string, name string) (mail.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return mail.Folder{}, errors.New("folder name is empty")
	}
	if systemFolders[strings.ToUpper(name)] {
		return mail.Folder{}, fmt.Errorf("%q is a system folder", name)
	}

	folder, err := e.box.CreateLabel(ctx, name)
	if err != nil {
		return mail.Folder{}, fmt.Errorf("box.CreateLabel failed: %w", err)
	}
	return folder, nil
}

func (e *Email) DeleteFolder(ctx context.Context, _ string, name string) error {
	if systemFolders[strings.ToUpper(name)] {
		return fmt.Errorf("%q is a system folder", name)
	}

	labelID, err := e.resolveFolder(ctx, name)
	if err != nil {
		return err
	}

	if err := e.box.DeleteLabel(ctx, labelID); err != nil {
		return fmt.Errorf("box.DeleteLabel failed: %w", err)
	}
	return nil
}

func (e *Email) MoveToFolder(ctx context.Context, userID, emailID, folderName string) error {
	return e.UpdateEmail(ctx, userID, emailID, mail.Update{Folder: folderName})
}

// GetClientEmailHistory returns the activity recorded for a client address.
func (e *Email) GetClientEmailHistory(ctx context.Context, userID, clientID string) ([]mail.Activity, error) {
	history, err := e.store.Activities(ctx, store.ActivityFilter{UserID: userID, ClientID: normalizeAddress(clientID)})
	if err != nil {
		return nil, fmt.Errorf("store.Activities failed: %w", err)
	}
	return history, nil
}

// SendInvoiceEmail sends the invoice notice and schedules a follow-up.
func (e *Email) SendInvoiceEmail(ctx context.Context, userID, invoiceID, recipient string) (mail.Sent, error) {
	out := e.documentEmail(ctx, userID, templateInvoice, invoiceID, recipient,
		"Invoice "+invoiceID,
		"Hello,\n\nPlease find invoice "+invoiceID+" attached.\n\nThank you for your business.")

	sent, err := e.deliver(ctx, userID, out, mail.ActivityInvoice, invoiceID)
	if err != nil {
		return mail.Sent{}, err
	}

	_, err = e.store.AddFollowUp(ctx, mail.FollowUp{
		UserID:    userID,
		RefID:     invoiceID,
		Recipient: recipient,
		Note:      "Follow up on invoice " + invoiceID,
		DueAt:     e.now().Add(followUpAfter),
	})
	if err != nil {
		e.log.Warn("add follow-up failed", zap.String("invoice", invoiceID), zap.Error(err))
	}

	return sent, nil
}

func (e *Email) SendQuoteEmail(ctx context.Context, userID, quoteID, recipient string) (mail.Sent, error) {
	out := e.documentEmail(ctx, userID, templateQuote, quoteID, recipient,
		"Quote "+quoteID,
		"Hello,\n\nPlease find quote "+quoteID+" attached.\n\nLet us know if you have any questions.")

	return e.deliver(ctx, userID, out, mail.ActivityQuote, quoteID)
}

// SendPaymentReminder reminds the recipient of the last invoice email sent for invoiceID.
func (e *Email) SendPaymentReminder(ctx context.Context, userID, invoiceID string) (mail.Sent, error) {
	last, err := e.store.Activities(ctx, store.ActivityFilter{
		UserID: userID,
		Kinds:  []string{mail.ActivityInvoice},
		RefID:  invoiceID,
		Limit:  1,
	})
	if err != nil {
		return mail.Sent{}, fmt.Errorf("store.Activities failed: %w", err)
	}
	if len(last) == 0 {
		return mail.Sent{}, fmt.Errorf("no invoice email recorded for invoice %s", invoiceID)
	}

	out := mail.Outgoing{
		To:       []string{last[0].Recipient},
		Subject:  "Payment reminder: invoice " + invoiceID,
		Body:     "Hello,\n\nThis is a friendly reminder that invoice " + invoiceID + " is awaiting payment.",
		Priority: "high",
	}

	return e.deliver(ctx, userID, out, mail.ActivityReminder, invoiceID)
}

func (e *Email) deliver(ctx context.Context, userID string, out mail.Outgoing, kind, refID string) (mail.Sent, error) {
	if len(out.To) == 0 {
		return mail.Sent{}, errors.New("no recipients")
	}
	for _, to := range out.To {
		if _, err := stdmail.ParseAddress(to); err != nil {
			return mail.Sent{}, fmt.Errorf("invalid recipient %q", to)
		}
	}

	sent, err := e.box.Send(ctx, out)
	if err != nil {
		record(ctx, e.store, e.log, mail.Activity{
			UserID:    userID,
			Kind:      mail.ActivitySendFailed,
			Recipient: strings.Join(out.To, ", "),
			Subject:   out.Subject,
			RefID:     refID,
		})
		return mail.Sent{}, fmt.Errorf("box.Send failed: %w", err)
	}

	for _, to := range out.To {
		record(ctx, e.store, e.log, mail.Activity{
			UserID:    userID,
			Kind:      kind,
			EmailID:   sent.ID,
			Recipient: to,
			Subject:   out.Subject,
			ClientID:  normalizeAddress(to),
			RefID:     refID,
		})
	}

	return sent, nil
}

// documentEmail builds an invoice or quote email from the user's stored
// template, falling back to the given subject and body. "{id}" and
// "{recipient}" are substituted.
func (e *Email) documentEmail(ctx context.Context, userID, templateName, id, recipient, subject, body string) mail.Outgoing {
	t, err := e.store.TemplateByName(ctx, userID, templateName)
	switch {
	case err == nil && t.IsActive:
		r := strings.NewReplacer("{id}", id, "{recipient}", recipient)
		subject = r.Replace(t.Subject)
		body = r.Replace(t.Body)
		if strings.Contains(body, "<") {
			body = format.PlainText(body)
		}
	case err != nil && !errors.Is(err, store.ErrNotFound):
		e.log.Warn("load template failed", zap.String("template", templateName), zap.Error(err))
	}

	return mail.Outgoing{To: []string{recipient}, Subject: subject, Body: body, Priority: "normal"}
}

// resolveFolder maps a folder name to a Gmail label id.
func (e *Email) resolveFolder(ctx context.Context, name string) (string, error) {
	if name == "" {
		return gservice.LabelInbox, nil
	}
	if upper := strings.ToUpper(name); systemFolders[upper] {
		return upper, nil
	}

	folders, err := e.box.Labels(ctx)
	if err != nil {
		return "", fmt.Errorf("box.Labels failed: %w", err)
	}
	for _, f := range folders {
		if strings.EqualFold(f.Name, name) {
			return f.ID, nil
		}
	}

	return "", fmt.Errorf("folder %q: %w", name, mail.ErrNotFound)
}

func normalizeAddress(addr string) string {
	if parsed, err := stdmail.ParseAddress(addr); err == nil {
		addr = parsed.Address
	}
	return strings.ToLower(strings.TrimSpace(addr))
}
