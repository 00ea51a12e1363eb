package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hal9000y/mailvoice/internal/mail"
)

// ActivityFilter narrows an activity query. Zero fields are ignored.
type ActivityFilter struct {
	UserID   string
	Kinds    []string
	ClientID string
	RefID    string
	Since    time.Time
	Limit    int
}

// RecordActivity appends an entry to the activity log.
func (s *Store) RecordActivity(ctx context.Context, a mail.Activity) (mail.Activity, error) {
	a.ID = uuid.NewString()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.timestamp()
	}

	_, err := s.db.ExecContext(ctx, `
	INSERT INTO activity (id, user_id, kind, email_id, recipient, subject, client_id, ref_id, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.UserID, a.Kind, a.EmailID, a.Recipient, a.Subject, a.ClientID, a.RefID, formatTime(a.CreatedAt))
	if err != nil {
		return mail.Activity{}, fmt.Errorf("record activity: %w", err)
	}

	return a, nil
}

// Activities returns matching log entries, newest first.
func (s *Store) Activities(ctx context.Context, f ActivityFilter) ([]mail.Activity, error) {
	var (
		where []string
		args  []any
	)
	if f.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if len(f.Kinds) > 0 {
		where = append(where, "kind IN (?"+strings.Repeat(", ?", len(f.Kinds)-1)+")")
		for _, k := range f.Kinds {
			args = append(args, k)
		}
	}
	if f.ClientID != "" {
		where = append(where, "client_id = ?")
		args = append(args, f.ClientID)
	}
	if f.RefID != "" {
		where = append(where, "ref_id = ?")
		args = append(args, f.RefID)
	}
	if !f.Since.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, formatTime(f.Since))
	}

	query := `SELECT id, user_id, kind, email_id, recipient, subject, client_id, ref_id, created_at FROM activity`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer rows.Close()

	out := []mail.Activity{}
	for rows.Next() {
		var (
			a         mail.Activity
			createdAt string
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Kind, &a.EmailID, &a.Recipient, &a.Subject, &a.ClientID, &a.RefID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		if a.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
