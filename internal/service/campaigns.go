package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	stdmail "net/mail"
	"slices"

	"go.uber.org/zap"

	"github.com/hal9000y/mailvoice/internal/mail"
)

type campaignStore interface {
	CreateCampaign(ctx context.Context, c mail.Campaign) (mail.Campaign, error)
	Campaign(ctx context.Context, userID, id string) (mail.Campaign, error)
	ListCampaigns(ctx context.Context, userID string) ([]mail.Campaign, error)
	UpdateCampaign(ctx context.Context, c mail.Campaign) (mail.Campaign, error)
	activityRecorder
}

type sender interface {
	SendEmail(ctx context.Context, userID string, out mail.Outgoing) (mail.Sent, error)
}

// Campaigns manages bulk sends. A campaign is sent once, one message per
// recipient; it can then be paused and resumed.
type Campaigns struct {
	store  campaignStore
	sender sender
	log    *zap.Logger
}

func NewCampaigns(st campaignStore, snd sender, opts ...Option) *Campaigns {
	o := newOptions(opts)
	return &Campaigns{store: st, sender: snd, log: o.log}
}

func (c *Campaigns) CreateCampaign(ctx context.Context, camp mail.Campaign) (mail.Campaign, error) {
	if camp.Name == "" {
		return mail.Campaign{}, errors.New("campaign name is empty")
	}
	recipients, err := recipientSet(camp.Recipients)
	if err != nil {
		return mail.Campaign{}, err
	}
	camp.Recipients = recipients
	camp.Status = mail.CampaignDraft
	camp.SentCount, camp.FailCount = 0, 0

	created, err := c.store.CreateCampaign(ctx, camp)
	if err != nil {
		return mail.Campaign{}, fmt.Errorf("store.CreateCampaign failed: %w", err)
	}
	return created, nil
}

// SendCampaign delivers a draft campaign to each of its recipients.
func (c *Campaigns) SendCampaign(ctx context.Context, userID, id string) (mail.Campaign, error) {
	camp, err := c.store.Campaign(ctx, userID, id)
	if err != nil {
		return mail.Campaign{}, err
	}
	if camp.Status != mail.CampaignDraft {
		return mail.Campaign{}, fmt.Errorf("campaign %q is %s, only drafts can be sent", camp.Name, camp.Status)
	}
	if len(camp.Recipients) == 0 {
		return mail.Campaign{}, fmt.Errorf("campaign %q has no recipients", camp.Name)
	}

	for _, to := range camp.Recipients {
		out := mail.Outgoing{To: []string{to}, Subject: camp.Subject, Body: camp.Body, Priority: "normal"}
		if _, err := c.sender.SendEmail(ctx, userID, out); err != nil {
			c.log.Warn("campaign delivery failed",
				zap.String("campaign", camp.ID), zap.String("recipient", to), zap.Error(err))
			camp.FailCount++
			continue
		}
		camp.SentCount++
	}
	camp.Status = mail.CampaignSent

	updated, err := c.store.UpdateCampaign(ctx, camp)
	if err != nil {
		return mail.Campaign{}, fmt.Errorf("store.UpdateCampaign failed: %w", err)
	}

	record(ctx, c.store, c.log, mail.Activity{
		UserID:  userID,
		Kind:    mail.ActivityCampaign,
		Subject: camp.Subject,
		RefID:   camp.ID,
	})

	return updated, nil
}

// SetRecipients replaces the recipients of a draft campaign.
func (c *Campaigns) SetRecipients(ctx context.Context, userID, id string, recipients []string) (mail.Campaign, error) {
	camp, err := c.store.Campaign(ctx, userID, id)
	if err != nil {
		return mail.Campaign{}, err
	}
	if camp.Status != mail.CampaignDraft {
		return mail.Campaign{}, fmt.Errorf("campaign %q is %s, only drafts can change recipients", camp.Name, camp.Status)
	}

	if camp.Recipients, err = recipientSet(recipients); err != nil {
		return mail.Campaign{}, err
	}

	updated, err := c.store.UpdateCampaign(ctx, camp)
	if err != nil {
		return mail.Campaign{}, fmt.Errorf("store.UpdateCampaign failed: %w", err)
	}
	return updated, nil
}

func (c *Campaigns) GetCampaigns(ctx context.Context, userID string) ([]mail.Campaign, error) {
	return c.store.ListCampaigns(ctx, userID)
}

func (c *Campaigns) GetCampaignStats(ctx context.Context, userID, id string) (mail.CampaignStats, error) {
	camp, err := c.store.Campaign(ctx, userID, id)
	if err != nil {
		return mail.CampaignStats{}, err
	}

	stats := mail.CampaignStats{
		CampaignID: camp.ID,
		Name:       camp.Name,
		Status:     camp.Status,
		Recipients: len(camp.Recipients),
		Sent:       camp.SentCount,
		Failed:     camp.FailCount,
	}
	if stats.Recipients > 0 {
		stats.DeliveryPct = percent(stats.Sent, stats.Recipients)
	}
	return stats, nil
}

func (c *Campaigns) PauseCampaign(ctx context.Context, userID, id string) (mail.Campaign, error) {
	return c.transition(ctx, userID, id, mail.CampaignPaused, mail.CampaignSent, mail.CampaignActive)
}

func (c *Campaigns) ResumeCampaign(ctx context.Context, userID, id string) (mail.Campaign, error) {
	return c.transition(ctx, userID, id, mail.CampaignActive, mail.CampaignPaused)
}

func (c *Campaigns) transition(ctx context.Context, userID, id, to string, from ...string) (mail.Campaign, error) {
	camp, err := c.store.Campaign(ctx, userID, id)
	if err != nil {
		return mail.Campaign{}, err
	}

	if !slices.Contains(from, camp.Status) {
		return mail.Campaign{}, fmt.Errorf("campaign %q cannot change from %s to %s", camp.Name, camp.Status, to)
	}

	camp.Status = to
	updated, err := c.store.UpdateCampaign(ctx, camp)
	if err != nil {
		return mail.Campaign{}, fmt.Errorf("store.UpdateCampaign failed: %w", err)
	}
	return updated, nil
}

// percent returns part/total*100 rounded to one decimal.
func percent(part, total int) float64 {
	return math.Round(float64(part)/float64(total)*1000) / 10
}

// recipientSet validates and normalizes addresses, dropping duplicates.
func recipientSet(list []string) ([]string, error) {
	out := make([]string, 0, len(list))
	for _, addr := range list {
		if _, err := stdmail.ParseAddress(addr); err != nil {
			return nil, fmt.Errorf("invalid recipient %q", addr)
		}
		if norm := normalizeAddress(addr); !slices.Contains(out, norm) {
			out = append(out, norm)
		}
	}
	return out, nil
}
