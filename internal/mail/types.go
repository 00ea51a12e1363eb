// Package mail holds the domain types shared by the services and the dispatcher.
package mail

import "time"

// Address represents an email address with optional display name.
type Address struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// Email is a message as shown to the voice shell.
type Email struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"thread_id,omitempty"`
	Timestamp string    `json:"timestamp,omitempty"`
	From      Address   `json:"from"`
	To        []Address `json:"to,omitempty"`
	Subject   string    `json:"subject"`
	Snippet   string    `json:"snippet,omitempty"`
	Labels    []string  `json:"labels,omitempty"`
	Unread    bool      `json:"unread"`
	Starred   bool      `json:"starred"`
}

// Outgoing is an email to be sent.
type Outgoing struct {
	To       []string `json:"to"`
	Subject  string   `json:"subject"`
	Body     string   `json:"body"`
	Priority string   `json:"priority,omitempty"`
}

// Sent is the result of a successful send.
type Sent struct {
	ID       string   `json:"id"`
	ThreadID string   `json:"thread_id,omitempty"`
	To       []string `json:"to"`
	Subject  string   `json:"subject"`
}

// Update lists the message flags to change. Nil fields are left untouched.
type Update struct {
	Read    *bool
	Starred *bool
	Folder  string
}

// Folder is a user-visible mailbox (a Gmail label).
type Folder struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Total  int64  `json:"total,omitempty"`
	Unread int64  `json:"unread,omitempty"`
}

// SearchQuery narrows a message search. Empty fields are ignored.
type SearchQuery struct {
	Query   string
	From    string
	Subject string
	Limit   int64
}

// Template is a reusable subject/body pair.
type Template struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Category  string    `json:"category"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Campaign statuses.
const (
	CampaignDraft  = "draft"
	CampaignActive = "active"
	CampaignPaused = "paused"
	CampaignSent   = "sent"
)

// Campaign is a bulk send to a fixed recipient list.
type Campaign struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body,omitempty"`
	TemplateID string    `json:"template_id,omitempty"`
	Recipients []string  `json:"recipients"`
	Status     string    `json:"status"`
	SentCount  int       `json:"sent_count"`
	FailCount  int       `json:"fail_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CampaignStats summarizes a campaign's delivery.
type CampaignStats struct {
	CampaignID  string  `json:"campaign_id"`
	Name        string  `json:"name"`
	Status      string  `json:"status"`
	Recipients  int     `json:"recipients"`
	Sent        int     `json:"sent"`
	Failed      int     `json:"failed"`
	DeliveryPct float64 `json:"delivery_pct"`
}

// Scheduled email statuses.
const (
	ScheduledPending = "pending"
	ScheduledSent    = "sent"
	ScheduledFailed  = "failed"
)

// ScheduledEmail is an outgoing email waiting for its send time.
type ScheduledEmail struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Email       Outgoing  `json:"email"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// AutomationRule is a declarative condition/action pair.
type AutomationRule struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Condition string    `json:"condition"`
	Action    string    `json:"action"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// FollowUp is a reminder to follow up on a sent email.
type FollowUp struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	RefID     string    `json:"ref_id,omitempty"`
	Recipient string    `json:"recipient,omitempty"`
	Note      string    `json:"note"`
	DueAt     time.Time `json:"due_at"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// Activity kinds recorded in the activity log.
const (
	ActivitySent       = "sent"
	ActivityScheduled  = "scheduled"
	ActivityRead       = "read"
	ActivityUnread     = "unread"
	ActivityStarred    = "starred"
	ActivityUnstarred  = "unstarred"
	ActivityArchived   = "archived"
	ActivityMoved      = "moved"
	ActivityDeleted    = "deleted"
	ActivityInvoice    = "invoice_sent"
	ActivityQuote      = "quote_sent"
	ActivityReminder   = "reminder_sent"
	ActivityCampaign   = "campaign_sent"
	ActivitySendFailed = "send_failed"
)

// Activity is one entry of the activity log.
type Activity struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	EmailID   string    `json:"email_id,omitempty"`
	Recipient string    `json:"recipient,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	ClientID  string    `json:"client_id,omitempty"`
	RefID     string    `json:"ref_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats counts activity by kind over a period.
type Stats struct {
	Since  time.Time      `json:"since"`
	Total  int            `json:"total"`
	ByKind map[string]int `json:"by_kind"`
}

// ActivityMetrics describes when activity happens.
type ActivityMetrics struct {
	Since  time.Time      `json:"since"`
	Daily  map[string]int `json:"daily"`
	Hourly [24]int        `json:"hourly"`
}

// Performance describes send outcomes.
type Performance struct {
	Since       time.Time `json:"since"`
	Sent        int       `json:"sent"`
	Failed      int       `json:"failed"`
	SuccessRate float64   `json:"success_rate"`
	Campaigns   int       `json:"campaigns"`
}

// Dashboard is the analytics overview.
type Dashboard struct {
	Stats       Stats       `json:"stats"`
	Performance Performance `json:"performance"`
	Recent      []Activity  `json:"recent"`
}

// RecipientCount is a recipient and how often they were emailed.
type RecipientCount struct {
	Recipient string `json:"recipient"`
	Count     int    `json:"count"`
}

// Report is a generated period report.
type Report struct {
	GeneratedAt   time.Time        `json:"generated_at"`
	Since         time.Time        `json:"since"`
	Stats         Stats            `json:"stats"`
	Performance   Performance      `json:"performance"`
	TopRecipients []RecipientCount `json:"top_recipients"`
}

// Attachment is the metadata of a message attachment.
type Attachment struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

// Message is an email with its readable body.
type Message struct {
	Email       Email        `json:"email"`
	Body        string       `json:"body"`
	Attachments []Attachment `json:"attachments,omitempty"`
}
