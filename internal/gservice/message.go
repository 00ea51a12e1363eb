package gservice

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/mailvoice/internal/format"
	"github.com/hal9000y/mailvoice/internal/mail"
)

// Message fetches a full message. HTML-only bodies are rendered as plain text.
func (m *GMail) Message(ctx context.Context, msgID string) (mail.Message, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return mail.Message{}, fmt.Errorf("newSvc failed: %w", err)
	}

	msg, err := svc.Users.Messages.Get(gmailUserID, msgID).Format("FULL").Context(ctx).Do()
	if err != nil {
		return mail.Message{}, fmt.Errorf("messages.Get failed: %w", notFound(err))
	}

	out := mail.Message{Email: toEmail(msg)}
	if msg.Payload == nil {
		return out, nil
	}

	out.Attachments = extractAttachments(msg.Payload)

	textBody, htmlBody := extractBodies(msg.Payload)
	out.Body = textBody
	if out.Body == "" && htmlBody != "" {
		out.Body = format.PlainText(htmlBody)
	}

	return out, nil
}

// extractBodies returns the first text/plain and text/html bodies, depth first.
func extractBodies(part *gmail.MessagePart) (textBody, htmlBody string) {
	if part.Body != nil && part.Body.Data != "" {
		switch part.MimeType {
		case "text/plain":
			textBody = decodeBase64URL(part.Body.Data)
		case "text/html":
			htmlBody = decodeBase64URL(part.Body.Data)
		}
	}

	for _, child := range part.Parts {
		childText, childHTML := extractBodies(child)
		if textBody == "" {
			textBody = childText
		}
		if htmlBody == "" {
			htmlBody = childHTML
		}
	}

	return textBody, htmlBody
}

func decodeBase64URL(data string) string {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			return data
		}
	}
	return string(decoded)
}

func extractAttachments(part *gmail.MessagePart) []mail.Attachment {
	var attachments []mail.Attachment

	if part.Filename != "" && part.Body != nil && part.Body.AttachmentId != "" {
		attachments = append(attachments, mail.Attachment{
			ID:       part.Body.AttachmentId,
			Filename: part.Filename,
			MimeType: part.MimeType,
			Size:     part.Body.Size,
		})
	}

	for _, child := range part.Parts {
		attachments = append(attachments, extractAttachments(child)...)
	}

	return attachments
}
