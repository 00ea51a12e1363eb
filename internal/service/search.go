package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/hal9000y/mailvoice/internal/mail"
)

type Search struct {
	box mailbox
}

func NewSearch(box mailbox) *Search {
	return &Search{box: box}
}

func (s *Search) SearchEmails(ctx context.Context, _ string, q mail.SearchQuery) ([]mail.Email, error) {
	return s.list(ctx, BuildQuery(q, false), q.Limit)
}

// SearchAttachments restricts the search to messages with attachments; the
// free-text query matches attachment file names.
func (s *Search) SearchAttachments(ctx context.Context, _ string, q mail.SearchQuery) ([]mail.Email, error) {
	return s.list(ctx, BuildQuery(q, true), q.Limit)
}

func (s *Search) list(ctx context.Context, q string, limit int64) ([]mail.Email, error) {
	emails, err := s.box.List(ctx, "", q, limit)
	if err != nil {
		return nil, fmt.Errorf("box.List failed: %w", err)
	}
	return emails, nil
}

// BuildQuery renders q in Gmail search syntax.
func BuildQuery(q mail.SearchQuery, attachments bool) string {
	var parts []string

	if attachments {
		parts = append(parts, "has:attachment")
		if q.Query != "" {
			parts = append(parts, "filename:"+quote(q.Query))
		}
	} else if q.Query != "" {
		parts = append(parts, q.Query)
	}
	if q.From != "" {
		parts = append(parts, "from:"+quote(q.From))
	}
	if q.Subject != "" {
		parts = append(parts, "subject:"+quote(q.Subject))
	}

	return strings.Join(parts, " ")
}

func quote(v string) string {
	v = strings.TrimSpace(v)
	if strings.ContainsAny(v, " \t") {
		return `"` + strings.ReplaceAll(v, `"`, "") + `"`
	}
	return v
}
