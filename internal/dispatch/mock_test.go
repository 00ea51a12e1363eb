package dispatch_test

import (
	"context"
	"sync"

	"github.com/hal9000y/mailvoice/internal/dispatch"
	"github.com/hal9000y/mailvoice/internal/mail"
)

// svcMock implements every service the dispatcher consumes. Unset funcs return
// zero values.
type svcMock struct {
	mu    sync.Mutex
	calls []string

	SendEmailFunc           func(ctx context.Context, userID string, out mail.Outgoing) (mail.Sent, error)
	GetEmailsFunc           func(ctx context.Context, userID, folder string, limit int64) ([]mail.Email, error)
	UpdateEmailFunc         func(ctx context.Context, userID, emailID string, upd mail.Update) error
	DeleteEmailFunc         func(ctx context.Context, userID, emailID string) error
	GetFoldersFunc          func(ctx context.Context, userID string) ([]mail.Folder, error)
	CreateFolderFunc        func(ctx context.Context, userID, name string) (mail.Folder, error)
	DeleteFolderFunc        func(ctx context.Context, userID, name string) error
	MoveToFolderFunc        func(ctx context.Context, userID, emailID, folderName string) error
	SendInvoiceEmailFunc    func(ctx context.Context, userID, invoiceID, recipient string) (mail.Sent, error)
	SendPaymentReminderFunc func(ctx context.Context, userID, invoiceID string) (mail.Sent, error)
	SearchEmailsFunc        func(ctx context.Context, userID string, q mail.SearchQuery) ([]mail.Email, error)
	SaveTemplateFunc        func(ctx context.Context, t mail.Template) (mail.Template, error)
	DeleteTemplateFunc      func(ctx context.Context, userID, name string) error
	CreateCampaignFunc      func(ctx context.Context, c mail.Campaign) (mail.Campaign, error)
	PauseCampaignFunc       func(ctx context.Context, userID, id string) (mail.Campaign, error)
	GetEmailStatsFunc       func(ctx context.Context, userID string) (mail.Stats, error)
	ScheduleEmailFunc       func(ctx context.Context, userID string, out mail.Outgoing, when string) (mail.ScheduledEmail, error)
}

func (m *svcMock) services() dispatch.Services {
	return dispatch.Services{
		Email:      m,
		Search:     m,
		Templates:  m,
		Campaigns:  m,
		Analytics:  m,
		Automation: m,
	}
}

func (m *svcMock) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *svcMock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *svcMock) SendEmail(ctx context.Context, userID string, out mail.Outgoing) (mail.Sent, error) {
	m.record("SendEmail")
	if m.SendEmailFunc == nil {
		return mail.Sent{}, nil
	}
	return m.SendEmailFunc(ctx, userID, out)
}

func (m *svcMock) GetEmails(ctx context.Context, userID, folder string, limit int64) ([]mail.Email, error) {
	m.record("GetEmails")
	if m.GetEmailsFunc == nil {
		return nil, nil
	}
	return m.GetEmailsFunc(ctx, userID, folder, limit)
}

func (m *svcMock) UpdateEmail(ctx context.Context, userID, emailID string, upd mail.Update) error {
	m.record("UpdateEmail")
	if m.UpdateEmailFunc == nil {
		return nil
	}
	return m.UpdateEmailFunc(ctx, userID, emailID, upd)
}

func (m *svcMock) DeleteEmail(ctx context.Context, userID, emailID string) error {
	m.record("DeleteEmail")
	if m.DeleteEmailFunc == nil {
		return nil
	}
	return m.DeleteEmailFunc(ctx, userID, emailID)
}

func (m *svcMock) GetFolders(ctx context.Context, userID string) ([]mail.Folder, error) {
	m.record("GetFolders")
	if m.GetFoldersFunc == nil {
		return nil, nil
	}
	return m.GetFoldersFunc(ctx, userID)
}

func (m *svcMock) CreateFolder(ctx context.Context, userID, name string) (mail.Folder, error) {
	m.record("CreateFolder")
	if m.CreateFolderFunc == nil {
		return mail.Folder{ID: "Label_1", Name: name, Type: "user"}, nil
	}
	return m.CreateFolderFunc(ctx, userID, name)
}

func (m *svcMock) DeleteFolder(ctx context.Context, userID, name string) error {
	m.record("DeleteFolder")
	if m.DeleteFolderFunc == nil {
		return nil
	}
	return m.DeleteFolderFunc(ctx, userID, name)
}

func (m *svcMock) MoveToFolder(ctx context.Context, userID, emailID, folderName string) error {
	m.record("MoveToFolder")
	if m.MoveToFolderFunc == nil {
		return nil
	}
	return m.MoveToFolderFunc(ctx, userID, emailID, folderName)
}

func (m *svcMock) GetClientEmailHistory(context.Context, string, string) ([]mail.Activity, error) {
	m.record("GetClientEmailHistory")
	return nil, nil
}

func (m *svcMock) SendInvoiceEmail(ctx context.Context, userID, invoiceID, recipient string) (mail.Sent, error) {
	m.record("SendInvoiceEmail")
	if m.SendInvoiceEmailFunc == nil {
		return mail.Sent{}, nil
	}
	return m.SendInvoiceEmailFunc(ctx, userID, invoiceID, recipient)
}

func (m *svcMock) SendQuoteEmail(context.Context, string, string, string) (mail.Sent, error) {
	m.record("SendQuoteEmail")
	return mail.Sent{}, nil
}

func (m *svcMock) SendPaymentReminder(ctx context.Context, userID, invoiceID string) (mail.Sent, error) {
	m.record("SendPaymentReminder")
	if m.SendPaymentReminderFunc == nil {
		return mail.Sent{}, nil
	}
	return m.SendPaymentReminderFunc(ctx, userID, invoiceID)
}

func (m *svcMock) SearchEmails(ctx context.Context, userID string, q mail.SearchQuery) ([]mail.Email, error) {
	m.record("SearchEmails")
	if m.SearchEmailsFunc == nil {
		return nil, nil
	}
	return m.SearchEmailsFunc(ctx, userID, q)
}

func (m *svcMock) SearchAttachments(context.Context, string, mail.SearchQuery) ([]mail.Email, error) {
	m.record("SearchAttachments")
	return nil, nil
}

func (m *svcMock) GetTemplates(context.Context, string) ([]mail.Template, error) {
	m.record("GetTemplates")
	return nil, nil
}

func (m *svcMock) SaveTemplate(ctx context.Context, t mail.Template) (mail.Template, error) {
	m.record("SaveTemplate")
	if m.SaveTemplateFunc == nil {
		return t, nil
	}
	return m.SaveTemplateFunc(ctx, t)
}

func (m *svcMock) DeleteTemplate(ctx context.Context, userID, name string) error {
	m.record("DeleteTemplate")
	if m.DeleteTemplateFunc == nil {
		return nil
	}
	return m.DeleteTemplateFunc(ctx, userID, name)
}

func (m *svcMock) CreateCampaign(ctx context.Context, c mail.Campaign) (mail.Campaign, error) {
	m.record("CreateCampaign")
	if m.CreateCampaignFunc == nil {
		return c, nil
	}
	return m.CreateCampaignFunc(ctx, c)
}

func (m *svcMock) SendCampaign(context.Context, string, string) (mail.Campaign, error) {
	m.record("SendCampaign")
	return mail.Campaign{}, nil
}

func (m *svcMock) GetCampaigns(context.Context, string) ([]mail.Campaign, error) {
	m.record("GetCampaigns")
	return nil, nil
}

func (m *svcMock) GetCampaignStats(context.Context, string, string) (mail.CampaignStats, error) {
	m.record("GetCampaignStats")
	return mail.CampaignStats{}, nil
}

func (m *svcMock) PauseCampaign(ctx context.Context, userID, id string) (mail.Campaign, error) {
	m.record("PauseCampaign")
	if m.PauseCampaignFunc == nil {
		return mail.Campaign{}, nil
	}
	return m.PauseCampaignFunc(ctx, userID, id)
}

func (m *svcMock) ResumeCampaign(context.Context, string, string) (mail.Campaign, error) {
	m.record("ResumeCampaign")
	return mail.Campaign{}, nil
}

func (m *svcMock) GetDashboardAnalytics(context.Context, string) (mail.Dashboard, error) {
	m.record("GetDashboardAnalytics")
	return mail.Dashboard{}, nil
}

func (m *svcMock) GetEmailStats(ctx context.Context, userID string) (mail.Stats, error) {
	m.record("GetEmailStats")
	if m.GetEmailStatsFunc == nil {
		return mail.Stats{}, nil
	}
	return m.GetEmailStatsFunc(ctx, userID)
}

func (m *svcMock) GetActivityMetrics(context.Context, string) (mail.ActivityMetrics, error) {
	m.record("GetActivityMetrics")
	return mail.ActivityMetrics{}, nil
}

func (m *svcMock) GetPerformanceMetrics(context.Context, string) (mail.Performance, error) {
	m.record("GetPerformanceMetrics")
	return mail.Performance{}, nil
}

func (m *svcMock) GenerateEmailReport(context.Context, string) (mail.Report, error) {
	m.record("GenerateEmailReport")
	return mail.Report{}, nil
}

func (m *svcMock) ScheduleEmail(ctx context.Context, userID string, out mail.Outgoing, when string) (mail.ScheduledEmail, error) {
	m.record("ScheduleEmail")
	if m.ScheduleEmailFunc == nil {
		return mail.ScheduledEmail{UserID: userID, Email: out}, nil
	}
	return m.ScheduleEmailFunc(ctx, userID, out, when)
}

func (m *svcMock) GetAutomationRules(context.Context, string) ([]mail.AutomationRule, error) {
	m.record("GetAutomationRules")
	return nil, nil
}

func (m *svcMock) GetFollowUpReminders(context.Context, string) ([]mail.FollowUp, error) {
	m.record("GetFollowUpReminders")
	return nil, nil
}
