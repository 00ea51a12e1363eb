// Package gservice wraps the Gmail API behind the mail domain types.
package gservice

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"slices"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/hal9000y/mailvoice/internal/format"
	"github.com/hal9000y/mailvoice/internal/mail"
)

const gmailUserID = "me"

// System label ids.
const (
	LabelInbox   = "INBOX"
	LabelUnread  = "UNREAD"
	LabelStarred = "STARRED"
	LabelTrash   = "TRASH"
)

type tokenSource interface {
	OAuthToken() (*oauth2.Token, error)
}

func NewGmail(cfg *oauth2.Config, tok tokenSource, opts ...option.ClientOption) *GMail {
	return &GMail{
		cfg:  cfg,
		tok:  tok,
		opts: opts,
	}
}

type GMail struct {
	cfg  *oauth2.Config
	tok  tokenSource
	opts []option.ClientOption
}

// Send delivers out as a plain-text message.
func (m *GMail) Send(ctx context.Context, out mail.Outgoing) (mail.Sent, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return mail.Sent{}, fmt.Errorf("newSvc failed: %w", err)
	}

	msg, err := svc.Users.Messages.Send(gmailUserID, &gmail.Message{Raw: encodeRaw(out)}).Context(ctx).Do()
	if err != nil {
		return mail.Sent{}, fmt.Errorf("messages.Send failed: %w", err)
	}

	return mail.Sent{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		To:       out.To,
		Subject:  out.Subject,
	}, nil
}

// List returns message summaries under labelID matching q. Both are optional.
func (m *GMail) List(ctx context.Context, labelID, q string, limit int64) ([]mail.Email, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	call := svc.Users.Messages.List(gmailUserID).
		Q(q).
		MaxResults(normalizeMaxResults(limit)).
		Context(ctx)
	if labelID != "" {
		call = call.LabelIds(labelID)
	}

	result, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("messages.List failed: %w", err)
	}

	emails := make([]mail.Email, 0, len(result.Messages))
	for _, ref := range result.Messages {
		msg, err := svc.Users.Messages.Get(gmailUserID, ref.Id).
			Format("METADATA").
			MetadataHeaders("From", "To", "Subject", "Date").
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("get message %s failed: %w", ref.Id, err)
		}
		emails = append(emails, toEmail(msg))
	}

	return emails, nil
}

// Modify adds and removes labels on a message.
func (m *GMail) Modify(ctx context.Context, msgID string, add, remove []string) error {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return fmt.Errorf("newSvc failed: %w", err)
	}

	req := &gmail.ModifyMessageRequest{AddLabelIds: add, RemoveLabelIds: remove}
	if _, err := svc.Users.Messages.Modify(gmailUserID, msgID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("messages.Modify failed: %w", notFound(err))
	}

	return nil
}

// Trash moves a message to the trash.
func (m *GMail) Trash(ctx context.Context, msgID string) error {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return fmt.Errorf("newSvc failed: %w", err)
	}

	if _, err := svc.Users.Messages.Trash(gmailUserID, msgID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("messages.Trash failed: %w", notFound(err))
	}

	return nil
}

// Labels lists system and user labels.
func (m *GMail) Labels(ctx context.Context) ([]mail.Folder, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	result, err := svc.Users.Labels.List(gmailUserID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("labels.List failed: %w", err)
	}

	folders := make([]mail.Folder, 0, len(result.Labels))
	for _, l := range result.Labels {
		folders = append(folders, toFolder(l))
	}

	return folders, nil
}

func (m *GMail) CreateLabel(ctx context.Context, name string) (mail.Folder, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return mail.Folder{}, fmt.Errorf("newSvc failed: %w", err)
	}

	l, err := svc.Users.Labels.Create(gmailUserID, &gmail.Label{
		Name:                  name,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	}).Context(ctx).Do()
	if err != nil {
		return mail.Folder{}, fmt.Errorf("labels.Create failed: %w", err)
	}

	return toFolder(l), nil
}

func (m *GMail) DeleteLabel(ctx context.Context, labelID string) error {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return fmt.Errorf("newSvc failed: %w", err)
	}

	if err := svc.Users.Labels.Delete(gmailUserID, labelID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("labels.Delete failed: %w", notFound(err))
	}

	return nil
}

func (m *GMail) newSvc(ctx context.Context) (*gmail.Service, error) {
	t, err := m.tok.OAuthToken()
	if err != nil {
		return nil, fmt.Errorf("tok.OAuthToken failed: %w", err)
	}

	clt := m.cfg.Client(ctx, t)

	opts := append([]option.ClientOption{option.WithHTTPClient(clt)}, m.opts...)
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gmail.NewService failed: %w", err)
	}

	return svc, nil
}

func encodeRaw(out mail.Outgoing) string {
	var b strings.Builder
	b.WriteString("To: " + strings.Join(out.To, ", ") + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", out.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	switch out.Priority {
	case "high":
		b.WriteString("X-Priority: 1\r\n")
	case "low":
		b.WriteString("X-Priority: 5\r\n")
	}
	b.WriteString("\r\n")
	b.WriteString(out.Body)

	return base64.URLEncoding.EncodeToString([]byte(b.String()))
}

func toEmail(msg *gmail.Message) mail.Email {
	e := mail.Email{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Snippet:  format.PlainText(msg.Snippet),
		Labels:   msg.LabelIds,
		Unread:   slices.Contains(msg.LabelIds, LabelUnread),
		Starred:  slices.Contains(msg.LabelIds, LabelStarred),
	}

	if msg.Payload == nil {
		return e
	}

	for _, header := range msg.Payload.Headers {
		switch header.Name {
		case "From":
			e.From = parseAddress(header.Value)
		case "To":
			e.To = parseAddressList(header.Value)
		case "Subject":
			e.Subject = header.Value
		case "Date":
			e.Timestamp = header.Value
		}
	}

	return e
}

func toFolder(l *gmail.Label) mail.Folder {
	return mail.Folder{
		ID:     l.Id,
		Name:   l.Name,
		Type:   l.Type,
		Total:  l.MessagesTotal,
		Unread: l.MessagesUnread,
	}
}

func normalizeMaxResults(maxResults int64) int64 {
	if maxResults <= 0 {
		return 20
	}
	if maxResults > 100 {
		return 100
	}
	return maxResults
}

func parseAddress(from string) mail.Address {
	addr := mail.Address{}

	if idx := strings.Index(from, "<"); idx != -1 {
		addr.Name = strings.TrimSpace(from[:idx])
		if endIdx := strings.Index(from[idx:], ">"); endIdx != -1 {
			addr.Email = strings.TrimSpace(from[idx+1 : idx+endIdx])
		}
	} else {
		addr.Email = strings.TrimSpace(from)
	}

	addr.Name = strings.Trim(addr.Name, "\"")

	return addr
}

func parseAddressList(addresses string) []mail.Address {
	if addresses == "" {
		return nil
	}

	parts := strings.Split(addresses, ",")
	result := make([]mail.Address, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, parseAddress(trimmed))
		}
	}

	return result
}

func notFound(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
		return fmt.Errorf("%w: %s", mail.ErrNotFound, gerr.Message)
	}
	return err
}
