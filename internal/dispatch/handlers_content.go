package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/hal9000y/mailvoice/internal/command"
	"github.com/hal9000y/mailvoice/internal/mail"
)

const (
	routeTemplates = "/email/templates"
	routeCampaigns = "/email/campaigns"
)

func (d *Dispatcher) showTemplates(ctx context.Context, _ command.Params, ec ExecutionContext) Envelope {
	templates, err := call(func() ([]mail.Template, error) { return d.svc.Templates.GetTemplates(ctx, ec.UserID) })
	if err != nil {
		return failure("Failed to fetch templates", err)
	}

	return succeed(fmt.Sprintf("Found %d email templates", len(templates)), TagShowData, View{
		Type:  "templates",
		Route: routeTemplates,
		Items: templates,
	})
}

func (d *Dispatcher) createTemplate(ctx context.Context, p command.Params, ec ExecutionContext) Envelope {
	if p.TemplateName == "" {
		return inputRequired("Please specify a template name", command.ParamTemplateName)
	}

	tmpl := mail.Template{
		UserID:   ec.UserID,
		Name:     p.TemplateName,
		Subject:  orDefault(p.Subject, "Template Subject"),
		Body:     orDefault(p.Body, "Template Body"),
		Category: "custom",
		IsActive: true,
	}

	saved, err := call(func() (mail.Template, error) { return d.svc.Templates.SaveTemplate(ctx, tmpl) })
	if err != nil {
		return failure("Failed to create template", err)
	}

	return succeed(fmt.Sprintf("Template %q created successfully", p.TemplateName), TagTemplateCreated, saved)
}

func (d *Dispatcher) useTemplate(_ context.Context, p command.Params, _ ExecutionContext) Envelope {
	if p.TemplateName == "" {
		return inputRequired("Please specify which template to use", command.ParamTemplateName)
	}

	return succeed(fmt.Sprintf("Opening composer with template %q...", p.TemplateName), TagNavigate, Navigation{
		Route:  routeCompose,
		Params: map[string]string{"templateName": p.TemplateName},
	})
}

func (d *Dispatcher) deleteTemplate(ctx context.Context, p command.Params, ec ExecutionContext) Envelope {
	if p.TemplateName == "" {
		return inputRequired("Please specify which template to delete", command.ParamTemplateName)
	}

	err := run(func() error { return d.svc.Templates.DeleteTemplate(ctx, ec.UserID, p.TemplateName) })
	switch {
	case errors.Is(err, mail.ErrNotFound):
		return fail(fmt.Sprintf("Template %q not found", p.TemplateName))
	case err != nil:
		return failure("Failed to delete template", err)
	}

	return succeed(fmt.Sprintf("Template %q deleted successfully", p.TemplateName), TagTemplateDeleted, nil)
}

func (d *Dispatcher) createCampaign(ctx context.Context, p command.Params, ec ExecutionContext) Envelope {
	if p.CampaignName == "" {
		return inputRequired("Please specify a campaign name", command.ParamCampaignName)
	}

	c := mail.Campaign{
		UserID:     ec.UserID,
		Name:       p.CampaignName,
		Subject:    orDefault(p.Subject, "Campaign Subject"),
		Body:       p.Text(),
		TemplateID: p.TemplateID,
		Recipients: recipientList(p.Recipient),
		Status:     mail.CampaignDraft,
	}

	created, err := call(func() (mail.Campaign, error) { return d.svc.Campaigns.CreateCampaign(ctx, c) })
	if err != nil {
		return failure("Failed to create campaign", err)
	}

	return succeed(fmt.Sprintf("Campaign %q created successfully", p.CampaignName), TagCampaignCreated, created)
}

func (d *Dispatcher) sendCampaign(ctx context.Context, p command.Params, ec ExecutionContext) Envelope {
	if p.CampaignID == "" {
		return inputRequired("Please specify which campaign to send", command.ParamCampaignID)
	}

	c, err := call(func() (mail.Campaign, error) { return d.svc.Campaigns.SendCampaign(ctx, ec.UserID, p.CampaignID) })
	if err != nil {
		return failure("Failed to send campaign", err)
	}

	return succeed("Campaign sent successfully", TagCampaignSent, c)
}

func (d *Dispatcher) showCampaigns(ctx context.Context, _ command.Params, ec ExecutionContext) Envelope {
	campaigns, err := call(func() ([]mail.Campaign, error) { return d.svc.Campaigns.GetCampaigns(ctx, ec.UserID) })
	if err != nil {
		return failure("Failed to fetch campaigns", err)
	}

	return succeed(fmt.Sprintf("Found %d email campaigns", len(campaigns)), TagShowData, View{
		Type:  "campaigns",
		Route: routeCampaigns,
		Items: campaigns,
	})
}

func (d *Dispatcher) campaignStats(ctx context.Context, p command.Params, ec ExecutionContext) Envelope {
	if p.CampaignID == "" {
		return inputRequired("Please specify which campaign to get stats for", command.ParamCampaignID)
	}

	stats, err := call(func() (mail.CampaignStats, error) {
		return d.svc.Campaigns.GetCampaignStats(ctx, ec.UserID, p.CampaignID)
	})
	if err != nil {
		return failure("Failed to get campaign stats", err)
	}

	return succeed("Campaign statistics retrieved", TagShowData, View{
		Type:   "campaign_stats",
		Route:  routeCampaigns,
		Detail: stats,
	})
}

func (d *Dispatcher) pauseCampaign(ctx context.Context, p command.Params, ec ExecutionContext) Envelope {
	if p.CampaignID == "" {
		return inputRequired("Please specify which campaign to pause", command.ParamCampaignID)
	}

	if _, err := call(func() (mail.Campaign, error) { return d.svc.Campaigns.PauseCampaign(ctx, ec.UserID, p.CampaignID) }); err != nil {
		return failure("Failed to pause campaign", err)
	}

	return succeed("Campaign paused successfully", TagCampaignUpdated, nil)
}

func (d *Dispatcher) resumeCampaign(ctx context.Context, p command.Params, ec ExecutionContext) Envelope {
	if p.CampaignID == "" {
		return inputRequired("Please specify which campaign to resume", command.ParamCampaignID)
	}

	if _, err := call(func() (mail.Campaign, error) { return d.svc.Campaigns.ResumeCampaign(ctx, ec.UserID, p.CampaignID) }); err != nil {
		return failure("Failed to resume campaign", err)
	}

	return succeed("Campaign resumed successfully", TagCampaignUpdated, nil)
}

// recipientList splits a recipient parameter holding one or more addresses.
func recipientList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
}
