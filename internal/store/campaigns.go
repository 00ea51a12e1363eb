package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/hal9000y/mailvoice/internal/mail"
)

const campaignColumns = `id, user_id, name, subject, body, template_id, recipients, status, sent_count, fail_count, created_at, updated_at`

// CreateCampaign inserts c with a fresh id.
func (s *Store) CreateCampaign(ctx context.Context, c mail.Campaign) (mail.Campaign, error) {
	now := s.timestamp()
	c.ID = uuid.NewString()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Recipients == nil {
		c.Recipients = []string{}
	}

	recipients, err := json.Marshal(c.Recipients)
	if err != nil {
		return mail.Campaign{}, fmt.Errorf("marshal recipients: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
	INSERT INTO campaigns (`+campaignColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.UserID, c.Name, c.Subject, c.Body, c.TemplateID, string(recipients), c.Status,
		c.SentCount, c.FailCount, formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
	if err != nil {
		return mail.Campaign{}, fmt.Errorf("create campaign: %w", err)
	}

	return c, nil
}

// Campaign loads one of the user's campaigns.
func (s *Store) Campaign(ctx context.Context, userID, id string) (mail.Campaign, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT `+campaignColumns+`
	FROM campaigns
	WHERE user_id = ? AND id = ?
	`, userID, id)

	c, err := scanCampaign(row)
	if err != nil {
		return mail.Campaign{}, fmt.Errorf("load campaign %s: %w", id, notFound(err))
	}
	return c, nil
}

// ListCampaigns returns the user's campaigns, newest first.
func (s *Store) ListCampaigns(ctx context.Context, userID string) ([]mail.Campaign, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT `+campaignColumns+`
	FROM campaigns
	WHERE user_id = ?
	ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := []mail.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

// UpdateCampaign stores the status, recipients and counters of c.
func (s *Store) UpdateCampaign(ctx context.Context, c mail.Campaign) (mail.Campaign, error) {
	c.UpdatedAt = s.timestamp()

	recipients, err := json.Marshal(c.Recipients)
	if err != nil {
		return mail.Campaign{}, fmt.Errorf("marshal recipients: %w", err)
	}

	err = affected(s.db.ExecContext(ctx, `
	UPDATE campaigns
	SET recipients = ?, status = ?, sent_count = ?, fail_count = ?, updated_at = ?
	WHERE user_id = ? AND id = ?
	`, string(recipients), c.Status, c.SentCount, c.FailCount, formatTime(c.UpdatedAt), c.UserID, c.ID))
	if err != nil {
		return mail.Campaign{}, fmt.Errorf("update campaign %s: %w", c.ID, err)
	}

	return c, nil
}

func scanCampaign(row scanner) (mail.Campaign, error) {
	var (
		c                    mail.Campaign
		recipients           string
		createdAt, updatedAt string
	)
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Subject, &c.Body, &c.TemplateID, &recipients,
		&c.Status, &c.SentCount, &c.FailCount, &createdAt, &updatedAt)
	if err != nil {
		return mail.Campaign{}, err
	}

	if err := json.Unmarshal([]byte(recipients), &c.Recipients); err != nil {
		return mail.Campaign{}, fmt.Errorf("unmarshal recipients: %w", err)
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return mail.Campaign{}, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return mail.Campaign{}, err
	}

	return c, nil
}
