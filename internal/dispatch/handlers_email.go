package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/hal9000y/mailvoice/internal/command"
	"github.com/hal9000y/mailvoice/internal/mail"
)

const (
	routeCompose = "/email/compose"
	routeInbox   = "/email"
	routeSearch  = "/email/search"
	routeFolders = "/email/folders"
	routeClients = "/email/clients"
)

func (d *Dispatcher) compose(_ context.Context, p command.Params, _ ExecutionContext) Envelope {
	return succeed("Opening email composer...", TagNavigate, Navigation{
		Route:  routeCompose,
		Params: p,
	})
}

func (d *Dispatcher) send(ctx context.Context, p command.Params, ec ExecutionContext) Envelope {
	if p.Recipient == "" {
		return inputRequired("Please specify a recipient", command.ParamRecipient)
	}

	out := mail.Outgoing{
		To:       []string{p.Recipient},
		Subject:  orDefault(p.Subject, "No Subject"),
		Body:     p.Text(),
		Priority: "normal",
	}

	sent, err := call(func() (mail.Sent, error) { return d.svc.Email.SendEmail(ctx, ec.UserID, out) })
	if err != nil {
		return failure("Failed to send email", err)
	}

	return succeed("Email sent successfully", TagEmailSent, sent)
}

func (d *Dispatcher) reply(_ context.Context, p command.Params, _ ExecutionContext) Envelope {
	if p.EmailID == "" {
		return inputRequired("Please specify which email to reply to", command.ParamEmailID)
	}
	return succeed("Opening email composer for reply...", TagNavigate, Navigation{
		Route:  routeCompose,
		Params: ComposeParams{Params: p, ReplyTo: p.EmailID},
	})
}

func (d *Dispatcher) forward(_ context.Context, p command.Params, _ ExecutionContext) Envelope {
	if p.EmailID == "" {
		return inputRequired("Please specify which email to forward", command.ParamEmailID)
	}
	return succeed("Opening email composer to forward...", TagNavigate, Navigation{
		Route:  routeCompose,
		Params: ComposeParams{Params: p, Forward: p.EmailID},
	})
}

func (d *Dispatcher) showEmails(ctx context.Context, p command.Params, ec ExecutionContext) Envelope {
	folder := orDefault(p.FolderName, "inbox")

	emails, err := call(func() ([]mail.Email, error) {
		return d.svc.Email.GetEmails(ctx, ec.UserID, folder, d.limit)
	})
	if err != nil {
		return failure("Failed to fetch emails", err)
	}

	return succeed(fmt.Sprintf("Showing %d emails from %s", len(emails), folder), TagShowData, View{
		Type:  "emails",
		Route: routeInbox,
		Items: emails,
	})
}

// updateEmail covers the single-flag message mutations.
type updateEmail struct {
	prompt  string
	prefix  string
	message string
	upd     mail.Update
}

var (
	markReadOp   = updateEmail{"Please specify which email to mark as read", "Failed to mark as read", "Email marked as read", mail.Update{Read: flag(true)}}
	markUnreadOp = updateEmail{"Please specify which email to mark as unread", "Failed to mark as unread", "Email marked as unread", mail.Update{Read: flag(false)}}
	starOp       = updateEmail{"Please specify which email to star", "Failed to star email", "Email starred", mail.Update{Starred: flag(true)}}
	unstarOp     = updateEmail{"Please specify which email to unstar", "Failed to unstar email", "Email unstarred", mail.Update{Starred: flag(false)}}
	archiveOp    = updateEmail{"Please specify which email to archive", "Failed to archive email", "Email archived", mail.Update{Folder: "archive"}}
)

func flag(v bool) *bool { return &v }

func (d *Dispatcher) applyUpdate(ctx context.Context, op updateEmail, p command.Params, ec ExecutionContext) Envelope {
	if p.EmailID == "" {
		return inputRequired(op.prompt, command.ParamEmailID)
	}

	err := run(func() error { return d.svc.Email.UpdateEmail(ctx, ec.UserID, p.EmailID, op.upd) })
	if err != nil {
		return failure(op.prefix, err)
	}

	return succeed(op.message, TagEmailUpdated, nil)
}

func (d *Dispatcher) markRead(ctx context.Context, p command.Params, ec ExecutionContext) Envelope {
	return d.applyUpdate(ctx, markReadOp, p, ec)
}

func (d *Dispatcher) markUnread(ctx context.Context, p command.Params, ec ExecutionContext) Envelope {
	return d.applyUpdate(ctx, markUnreadOp, p, ec)
}

func (d *Dispatcher) starEmail(ctx context.Context, p command.Params, ec ExecutionContext) Envelope {
	return d.applyUpdate(ctx, starOp, p, ec)
}

func (d *Dispatcher) unstarEmail(ctx context.Context, p command.Params, ec ExecutionContext) Envelope {
	return d.applyUpdate(ctx, unstarOp, p, ec)
}

func (d *Dispatcher) archiveEmail(ctx context.Context, p command.Params, ec ExecutionContext) Envelope {
	return d.applyUpdate(ctx, archiveOp, p, ec)
}

func (d *Dispatcher) deleteEmail(ctx context.Context, p command.Params, ec ExecutionContext) Envelope {
	if p.EmailID == "" {
		return inputRequired("Please specify which email to delete", command.ParamEmailID)
	}

	if err := run(func() error { return d.svc.Email.DeleteEmail(ctx, ec.UserID, p.EmailID) }); err != nil {
		return failure("Failed to delete email", err)
	}

	return succeed("Email moved to trash", TagEmailDeleted, nil)
}

func (d *Dispatcher) search(ctx context.Context, ec ExecutionContext, q mail.SearchQuery) ([]mail.Email, error) {
	q.Limit = d.limit
	return call(func() ([]mail.Email, error) { return d.svc.Search.SearchEmails(ctx, ec.UserID, q) })
}

func (d *Dispatcher) searchEmails(ctx context.Context, p command.Params, ec ExecutionContext) Envelope {
	if p.Query == "" {
		return inputRequired("Please specify what to search for", command.ParamQuery)
	}

	emails, err := d.search(ctx, ec, mail.SearchQuery{Query: p.Query})
	if err != nil {
		return failure("Search failed", err)
	}

	return succeed(fmt.Sprintf("Found %d emails matching %q", len(emails), p.Query), TagShowData, View{
		Type:  "search_results",
		Route: routeSearch,
		Query: p.Query,
		Items: emails,
	})
}

// searchByFrom reads the sender, falling back to the free-text query the parser
// extracts for "search from" phrases.
func (d *Dispatcher) searchByFrom(ctx context.Context, p command.Params, ec ExecutionContext) Envelope {
	sender := orDefault(p.Sender, p.Query)
	if sender == "" {
		return inputRequired("Please specify the sender to search for", command.ParamSender)
	}

	emails, err := d.search(ctx, ec, mail.SearchQuery{From: sender})
	if err != nil {
		return failure("Search failed", err)
	}

	return succeed(fmt.Sprintf("Found %d emails from %q", len(emails), sender), TagShowData, View{
		Type:  "search_results",
		Route: routeSearch,
		Query: "from:" + sender,
		Items: emails,
	})
}

func (d *Dispatcher) searchBySubject(ctx context.Context, p command.Params, ec ExecutionContext) Envelope {
	subject := orDefault(p.Subject, p.Query)
	if subject == "" {
		return inputRequired("Please specify the subject to search for", command.ParamSubject)
	}

	emails, err := d.search(ctx, ec, mail.SearchQuery{Subject: subject})
	if err != nil {
		return failure("Search failed", err)
	}

	return succeed(fmt.Sprintf("Found %d emails with subject containing %q", len(emails), subject), TagShowData, View{
		Type:  "search_results",
		Route: routeSearch,
		Query: "subject:" + subject,
		Items: emails,
	})
}

func (d *Dispatcher) searchAttachments(ctx context.Context, p command.Params, ec ExecutionContext) Envelope {
	if p.Query == "" {
		return inputRequired("Please specify what attachment to search for", command.ParamQuery)
	}

	q := mail.SearchQuery{Query: p.Query, Limit: d.limit}
	emails, err := call(func() ([]mail.Email, error) { return d.svc.Search.SearchAttachments(ctx, ec.UserID, q) })
	if err != nil {
		return failure("Attachment search failed", err)
	}

	return succeed(fmt.Sprintf("Found %d emails with attachments matching %q", len(emails), p.Query), TagShowData, View{
		Type:  "search_results",
		Route: routeSearch,
		Query: "attachment:" + p.Query,
		Items: emails,
	})
}

func (d *Dispatcher) showFolders(ctx context.Context, _ command.Params, ec ExecutionContext) Envelope {
	folders, err := call(func() ([]mail.Folder, error) { return d.svc.Email.GetFolders(ctx, ec.UserID) })
	if err != nil {
		return failure("Failed to fetch folders", err)
	}

	return succeed(fmt.Sprintf("Found %d email folders", len(folders)), TagShowData, View{
		Type:  "folders",
		Route: routeFolders,
		Items: folders,
	})
}

func (d *Dispatcher) createFolder(ctx context.Context, p command.Params, ec ExecutionContext) Envelope {
	if p.FolderName == "" {
		return inputRequired("Please specify a folder name", command.ParamFolderName)
	}

	folder, err := call(func() (mail.Folder, error) { return d.svc.Email.CreateFolder(ctx, ec.UserID, p.FolderName) })
	if err != nil {
		return failure("Failed to create folder", err)
	}

	return succeed(fmt.Sprintf("Folder %q created successfully", p.FolderName), TagFolderCreated, folder)
}

func (d *Dispatcher) deleteFolder(ctx context.Context, p command.Params, ec ExecutionContext) Envelope {
	if p.FolderName == "" {
		return inputRequired("Please specify which folder to delete", command.ParamFolderName)
	}

	err := run(func() error { return d.svc.Email.DeleteFolder(ctx, ec.UserID, p.FolderName) })
	switch {
	case errors.Is(err, mail.ErrNotFound):
		return fail(fmt.Sprintf("Folder %q not found", p.FolderName))
	case err != nil:
		return failure("Failed to delete folder", err)
	}

	return succeed(fmt.Sprintf("Folder %q deleted successfully", p.FolderName), TagFolderDeleted, nil)
}

func (d *Dispatcher) moveToFolder(ctx context.Context, p command.Params, ec ExecutionContext) Envelope {
	if p.EmailID == "" || p.FolderName == "" {
		return inputRequired("Please specify both email ID and folder name", command.ParamEmailID, command.ParamFolderName)
	}

	err := run(func() error { return d.svc.Email.MoveToFolder(ctx, ec.UserID, p.EmailID, p.FolderName) })
	switch {
	case errors.Is(err, mail.ErrNotFound):
		return fail(fmt.Sprintf("Folder %q not found", p.FolderName))
	case err != nil:
		return failure("Failed to move email", err)
	}

	return succeed(fmt.Sprintf("Email moved to %q folder", p.FolderName), TagEmailUpdated, nil)
}

func (d *Dispatcher) clientEmailHistory(ctx context.Context, p command.Params, ec ExecutionContext) Envelope {
	if p.ClientID == "" {
		return inputRequired("Please specify a client ID", command.ParamClientID)
	}

	history, err := call(func() ([]mail.Activity, error) {
		return d.svc.Email.GetClientEmailHistory(ctx, ec.UserID, p.ClientID)
	})
	if err != nil {
		return failure("Failed to get client email history", err)
	}

	return succeed("Client email history retrieved", TagShowData, View{
		Type:     "client_history",
		Route:    routeClients,
		ClientID: p.ClientID,
		Items:    history,
	})
}

func (d *Dispatcher) sendInvoiceEmail(ctx context.Context, p command.Params, ec ExecutionContext) Envelope {
	if p.InvoiceID == "" || p.Recipient == "" {
		return inputRequired("Please specify invoice ID and recipient", command.ParamInvoiceID, command.ParamRecipient)
	}

	sent, err := call(func() (mail.Sent, error) {
		return d.svc.Email.SendInvoiceEmail(ctx, ec.UserID, p.InvoiceID, p.Recipient)
	})
	if err != nil {
		return failure("Failed to send invoice email", err)
	}

	return succeed("Invoice email sent to "+p.Recipient, TagEmailSent, sent)
}

func (d *Dispatcher) sendQuoteEmail(ctx context.Context, p command.Params, ec ExecutionContext) Envelope {
	if p.QuoteID == "" || p.Recipient == "" {
		return inputRequired("Please specify quote ID and recipient", command.ParamQuoteID, command.ParamRecipient)
	}

	sent, err := call(func() (mail.Sent, error) {
		return d.svc.Email.SendQuoteEmail(ctx, ec.UserID, p.QuoteID, p.Recipient)
	})
	if err != nil {
		return failure("Failed to send quote email", err)
	}

	return succeed("Quote email sent to "+p.Recipient, TagEmailSent, sent)
}

func (d *Dispatcher) sendPaymentReminder(ctx context.Context, p command.Params, ec ExecutionContext) Envelope {
	if p.InvoiceID == "" {
		return inputRequired("Please specify an invoice ID", command.ParamInvoiceID)
	}

	sent, err := call(func() (mail.Sent, error) {
		return d.svc.Email.SendPaymentReminder(ctx, ec.UserID, p.InvoiceID)
	})
	if err != nil {
		return failure("Failed to send payment reminder", err)
	}

	return succeed("Payment reminder sent", TagEmailSent, sent)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
