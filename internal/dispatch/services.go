package dispatch

import (
	"context"

	"github.com/hal9000y/mailvoice/internal/mail"
)

type EmailService interface {
	SendEmail(ctx context.Context, userID string, out mail.Outgoing) (mail.Sent, error)
	GetEmails(ctx context.Context, userID, folder string, limit int64) ([]mail.Email, error)
	UpdateEmail(ctx context.Context, userID, emailID string, upd mail.Update) error
	DeleteEmail(ctx context.Context, userID, emailID string) error
	GetFolders(ctx context.Context, userID string) ([]mail.Folder, error)
	CreateFolder(ctx context.Context, userID, name string) (mail.Folder, error)
	DeleteFolder(ctx context.Context, userID, name string) error
	MoveToFolder(ctx context.Context, userID, emailID, folderName string) error
	GetClientEmailHistory(ctx context.Context, userID, clientID string) ([]mail.Activity, error)
	SendInvoiceEmail(ctx context.Context, userID, invoiceID, recipient string) (mail.Sent, error)
	SendQuoteEmail(ctx context.Context, userID, quoteID, recipient string) (mail.Sent, error)
	SendPaymentReminder(ctx context.Context, userID, invoiceID string) (mail.Sent, error)
}

type SearchService interface {
	SearchEmails(ctx context.Context, userID string, q mail.SearchQuery) ([]mail.Email, error)
	SearchAttachments(ctx context.Context, userID string, q mail.SearchQuery) ([]mail.Email, error)
}

type TemplateService interface {
	GetTemplates(ctx context.Context, userID string) ([]mail.Template, error)
	SaveTemplate(ctx context.Context, t mail.Template) (mail.Template, error)
	DeleteTemplate(ctx context.Context, userID, name string) error
}

type CampaignService interface {
	CreateCampaign(ctx context.Context, c mail.Campaign) (mail.Campaign, error)
	SendCampaign(ctx context.Context, userID, id string) (mail.Campaign, error)
	GetCampaigns(ctx context.Context, userID string) ([]mail.Campaign, error)
	GetCampaignStats(ctx context.Context, userID, id string) (mail.CampaignStats, error)
	PauseCampaign(ctx context.Context, userID, id string) (mail.Campaign, error)
	ResumeCampaign(ctx context.Context, userID, id string) (mail.Campaign, error)
}

type AnalyticsService interface {
	GetDashboardAnalytics(ctx context.Context, userID string) (mail.Dashboard, error)
	GetEmailStats(ctx context.Context, userID string) (mail.Stats, error)
	GetActivityMetrics(ctx context.Context, userID string) (mail.ActivityMetrics, error)
	GetPerformanceMetrics(ctx context.Context, userID string) (mail.Performance, error)
	GenerateEmailReport(ctx context.Context, userID string) (mail.Report, error)
}

type AutomationService interface {
	ScheduleEmail(ctx context.Context, userID string, out mail.Outgoing, when string) (mail.ScheduledEmail, error)
	GetAutomationRules(ctx context.Context, userID string) ([]mail.AutomationRule, error)
	GetFollowUpReminders(ctx context.Context, userID string) ([]mail.FollowUp, error)
}

// Services are the backends the handlers delegate to.
type Services struct {
	Email      EmailService
	Search     SearchService
	Templates  TemplateService
	Campaigns  CampaignService
	Analytics  AnalyticsService
	Automation AutomationService
}
