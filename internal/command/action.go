// Package command turns free-text voice utterances into structured email actions.
package command

// ActionID identifies one supported email operation.
type ActionID string

// Supported actions.
const (
	Compose              ActionID = "compose"
	Send                 ActionID = "send"
	Reply                ActionID = "reply"
	Forward              ActionID = "forward"
	ShowEmails           ActionID = "showEmails"
	MarkRead             ActionID = "markRead"
	MarkUnread           ActionID = "markUnread"
	StarEmail            ActionID = "starEmail"
	UnstarEmail          ActionID = "unstarEmail"
	DeleteEmail          ActionID = "deleteEmail"
	ArchiveEmail         ActionID = "archiveEmail"
	SearchEmails         ActionID = "searchEmails"
	SearchByFrom         ActionID = "searchByFrom"
	SearchBySubject      ActionID = "searchBySubject"
	SearchAttachments    ActionID = "searchAttachments"
	ShowFolders          ActionID = "showFolders"
	CreateFolder         ActionID = "createFolder"
	DeleteFolder         ActionID = "deleteFolder"
	MoveToFolder         ActionID = "moveToFolder"
	ShowTemplates        ActionID = "showTemplates"
	CreateTemplate       ActionID = "createTemplate"
	UseTemplate          ActionID = "useTemplate"
	DeleteTemplate       ActionID = "deleteTemplate"
	CreateCampaign       ActionID = "createCampaign"
	SendCampaign         ActionID = "sendCampaign"
	ShowCampaigns        ActionID = "showCampaigns"
	CampaignStats        ActionID = "campaignStats"
	PauseCampaign        ActionID = "pauseCampaign"
	ResumeCampaign       ActionID = "resumeCampaign"
	EmailAnalytics       ActionID = "emailAnalytics"
	EmailStats           ActionID = "emailStats"
	EmailMetrics         ActionID = "emailMetrics"
	EmailPerformance     ActionID = "emailPerformance"
	EmailReport          ActionID = "emailReport"
	ClientEmailHistory   ActionID = "clientEmailHistory"
	EmailActivity        ActionID = "emailActivity"
	ScheduleEmail        ActionID = "scheduleEmail"
	CreateAutomation     ActionID = "createAutomation"
	ShowAutomationRules  ActionID = "showAutomationRules"
	ShowFollowUps        ActionID = "showFollowUps"
	SendInvoiceEmail     ActionID = "sendInvoiceEmail"
	SendQuoteEmail       ActionID = "sendQuoteEmail"
	SendPaymentReminder  ActionID = "sendPaymentReminder"
	EmailSettings        ActionID = "emailSettings"
	ManageSignature      ActionID = "manageSignature"
	NotificationSettings ActionID = "notificationSettings"
	EmailHelp            ActionID = "emailHelp"
)

var allActions = []ActionID{
	Compose, Send, Reply, Forward, ShowEmails,
	MarkRead, MarkUnread, StarEmail, UnstarEmail, DeleteEmail, ArchiveEmail,
	SearchEmails, SearchByFrom, SearchBySubject, SearchAttachments,
	ShowFolders, CreateFolder, DeleteFolder, MoveToFolder,
	ShowTemplates, CreateTemplate, UseTemplate, DeleteTemplate,
	CreateCampaign, SendCampaign, ShowCampaigns, CampaignStats, PauseCampaign, ResumeCampaign,
	EmailAnalytics, EmailStats, EmailMetrics, EmailPerformance, EmailReport, ClientEmailHistory, EmailActivity,
	ScheduleEmail, CreateAutomation, ShowAutomationRules, ShowFollowUps,
	SendInvoiceEmail, SendQuoteEmail, SendPaymentReminder,
	EmailSettings, ManageSignature, NotificationSettings,
	EmailHelp,
}

// Actions returns every supported action.
func Actions() []ActionID {
	return append([]ActionID(nil), allActions...)
}

// Valid reports whether a is a supported action.
func (a ActionID) Valid() bool {
	for _, known := range allActions {
		if known == a {
			return true
		}
	}
	return false
}

// Param names a field of Params.
type Param string

// Parameter names, identical to the JSON keys of Params.
const (
	ParamRecipient     Param = "recipient"
	ParamSender        Param = "sender"
	ParamSubject       Param = "subject"
	ParamMessage       Param = "message"
	ParamBody          Param = "body"
	ParamQuery         Param = "query"
	ParamEmailID       Param = "emailId"
	ParamFolderName    Param = "folderName"
	ParamTemplateName  Param = "templateName"
	ParamTemplateID    Param = "templateId"
	ParamCampaignName  Param = "campaignName"
	ParamCampaignID    Param = "campaignId"
	ParamClientID      Param = "clientId"
	ParamScheduledTime Param = "scheduledTime"
	ParamRuleName      Param = "ruleName"
	ParamInvoiceID     Param = "invoiceId"
	ParamQuoteID       Param = "quoteId"
	ParamTopic         Param = "topic"
)

// Params carries the values extracted from an utterance. An empty string means
// the value was not provided.
type Params struct {
	Recipient     string `json:"recipient,omitempty"`
	Sender        string `json:"sender,omitempty"`
	Subject       string `json:"subject,omitempty"`
	Message       string `json:"message,omitempty"`
	Body          string `json:"body,omitempty"`
	Query         string `json:"query,omitempty"`
	EmailID       string `json:"emailId,omitempty"`
	FolderName    string `json:"folderName,omitempty"`
	TemplateName  string `json:"templateName,omitempty"`
	TemplateID    string `json:"templateId,omitempty"`
	CampaignName  string `json:"campaignName,omitempty"`
	CampaignID    string `json:"campaignId,omitempty"`
	ClientID      string `json:"clientId,omitempty"`
	ScheduledTime string `json:"scheduledTime,omitempty"`
	RuleName      string `json:"ruleName,omitempty"`
	InvoiceID     string `json:"invoiceId,omitempty"`
	QuoteID       string `json:"quoteId,omitempty"`
	Topic         string `json:"topic,omitempty"`
}

// Get returns the value of the named parameter.
func (p Params) Get(name Param) string {
	switch name {
	case ParamRecipient:
		return p.Recipient
	case ParamSender:
		return p.Sender
	case ParamSubject:
		return p.Subject
	case ParamMessage:
		return p.Message
	case ParamBody:
		return p.Body
	case ParamQuery:
		return p.Query
	case ParamEmailID:
		return p.EmailID
	case ParamFolderName:
		return p.FolderName
	case ParamTemplateName:
		return p.TemplateName
	case ParamTemplateID:
		return p.TemplateID
	case ParamCampaignName:
		return p.CampaignName
	case ParamCampaignID:
		return p.CampaignID
	case ParamClientID:
		return p.ClientID
	case ParamScheduledTime:
		return p.ScheduledTime
	case ParamRuleName:
		return p.RuleName
	case ParamInvoiceID:
		return p.InvoiceID
	case ParamQuoteID:
		return p.QuoteID
	case ParamTopic:
		return p.Topic
	default:
		return ""
	}
}

// Text returns the message body, preferring Message over Body.
func (p Params) Text() string {
	if p.Message != "" {
		return p.Message
	}
	return p.Body
}
