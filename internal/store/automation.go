package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hal9000y/mailvoice/internal/mail"
)

const scheduledColumns = `id, user_id, email, scheduled_at, status, last_error, created_at`

// AddScheduled stores a pending scheduled email.
func (s *Store) AddScheduled(ctx context.Context, se mail.ScheduledEmail) (mail.ScheduledEmail, error) {
	se.ID = uuid.NewString()
	se.CreatedAt = s.timestamp()
	se.ScheduledAt = se.ScheduledAt.UTC()
	if se.Status == "" {
		se.Status = mail.ScheduledPending
	}

	email, err := json.Marshal(se.Email)
	if err != nil {
		return mail.ScheduledEmail{}, fmt.Errorf("marshal email: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
	INSERT INTO scheduled_emails (`+scheduledColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`, se.ID, se.UserID, string(email), formatTime(se.ScheduledAt), se.Status, se.Error, formatTime(se.CreatedAt))
	if err != nil {
		return mail.ScheduledEmail{}, fmt.Errorf("add scheduled email: %w", err)
	}

	return se, nil
}

// DueScheduled returns pending emails scheduled at or before now, oldest first.
func (s *Store) DueScheduled(ctx context.Context, now time.Time) ([]mail.ScheduledEmail, error) {
	return s.queryScheduled(ctx, `
	SELECT `+scheduledColumns+`
	FROM scheduled_emails
	WHERE status = ? AND scheduled_at <= ?
	ORDER BY scheduled_at
	`, mail.ScheduledPending, formatTime(now))
}

// ListScheduled returns all of the user's scheduled emails, soonest first.
func (s *Store) ListScheduled(ctx context.Context, userID string) ([]mail.ScheduledEmail, error) {
	return s.queryScheduled(ctx, `
	SELECT `+scheduledColumns+`
	FROM scheduled_emails
	WHERE user_id = ?
	ORDER BY scheduled_at
	`, userID)
}

// MarkScheduled records the delivery outcome of a scheduled email.
func (s *Store) MarkScheduled(ctx context.Context, id, status, lastErr string) error {
	err := affected(s.db.ExecContext(ctx, `
	UPDATE scheduled_emails SET status = ?, last_error = ? WHERE id = ?
	`, status, lastErr, id))
	if err != nil {
		return fmt.Errorf("mark scheduled email %s: %w", id, err)
	}
	return nil
}

func (s *Store) queryScheduled(ctx context.Context, query string, args ...any) ([]mail.ScheduledEmail, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query scheduled emails: %w", err)
	}
	defer rows.Close()

	out := []mail.ScheduledEmail{}
	for rows.Next() {
		var (
			se                     mail.ScheduledEmail
			email                  string
			scheduledAt, createdAt string
		)
		if err := rows.Scan(&se.ID, &se.UserID, &email, &scheduledAt, &se.Status, &se.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("scan scheduled email: %w", err)
		}
		if err := json.Unmarshal([]byte(email), &se.Email); err != nil {
			return nil, fmt.Errorf("unmarshal email: %w", err)
		}
		if se.ScheduledAt, err = parseTime(scheduledAt); err != nil {
			return nil, err
		}
		if se.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, se)
	}
	return out, rows.Err()
}

// SaveRule inserts r, or replaces the user's rule with the same name.
func (s *Store) SaveRule(ctx context.Context, r mail.AutomationRule) (mail.AutomationRule, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.timestamp()
	}

	_, err := s.db.ExecContext(ctx, `
	INSERT INTO automation_rules (id, user_id, name, rule_condition, rule_action, is_active, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(user_id, name) DO UPDATE SET
		rule_condition = excluded.rule_condition,
		rule_action = excluded.rule_action,
		is_active = excluded.is_active
	`, r.ID, r.UserID, r.Name, r.Condition, r.Action, boolInt(r.IsActive), formatTime(r.CreatedAt))
	if err != nil {
		return mail.AutomationRule{}, fmt.Errorf("save rule %q: %w", r.Name, err)
	}

	return r, nil
}

// ListRules returns the user's automation rules ordered by name.
func (s *Store) ListRules(ctx context.Context, userID string) ([]mail.AutomationRule, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, user_id, name, rule_condition, rule_action, is_active, created_at
	FROM automation_rules
	WHERE user_id = ?
	ORDER BY name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	rules := []mail.AutomationRule{}
	for rows.Next() {
		var (
			r         mail.AutomationRule
			active    int
			createdAt string
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.Name, &r.Condition, &r.Action, &active, &createdAt); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		if r.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		r.IsActive = active == 1
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// AddFollowUp stores a follow-up reminder.
func (s *Store) AddFollowUp(ctx context.Context, f mail.FollowUp) (mail.FollowUp, error) {
	f.ID = uuid.NewString()
	f.CreatedAt = s.timestamp()
	f.DueAt = f.DueAt.UTC()

	_, err := s.db.ExecContext(ctx, `
	INSERT INTO follow_ups (id, user_id, ref_id, recipient, note, due_at, completed, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, f.ID, f.UserID, f.RefID, f.Recipient, f.Note, formatTime(f.DueAt), boolInt(f.Completed), formatTime(f.CreatedAt))
	if err != nil {
		return mail.FollowUp{}, fmt.Errorf("add follow-up: %w", err)
	}

	return f, nil
}

// ListFollowUps returns the user's open follow-ups, earliest due first.
func (s *Store) ListFollowUps(ctx context.Context, userID string) ([]mail.FollowUp, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, user_id, ref_id, recipient, note, due_at, completed, created_at
	FROM follow_ups
	WHERE user_id = ? AND completed = 0
	ORDER BY due_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list follow-ups: %w", err)
	}
	defer rows.Close()

	followUps := []mail.FollowUp{}
	for rows.Next() {
		var (
			f                mail.FollowUp
			completed        int
			dueAt, createdAt string
		)
		if err := rows.Scan(&f.ID, &f.UserID, &f.RefID, &f.Recipient, &f.Note, &dueAt, &completed, &createdAt); err != nil {
			return nil, fmt.Errorf("scan follow-up: %w", err)
		}
		if f.DueAt, err = parseTime(dueAt); err != nil {
			return nil, err
		}
		if f.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		f.Completed = completed == 1
		followUps = append(followUps, f)
	}
	return followUps, rows.Err()
}

// CompleteFollowUp closes a follow-up.
func (s *Store) CompleteFollowUp(ctx context.Context, id string) error {
	err := affected(s.db.ExecContext(ctx, `UPDATE follow_ups SET completed = 1 WHERE id = ?`, id))
	if err != nil {
		return fmt.Errorf("complete follow-up %s: %w", id, err)
	}
	return nil
}
