package dispatch

import (
	"errors"
	"fmt"

	"github.com/hal9000y/mailvoice/internal/command"
)

// ResultTag tells the voice shell what kind of outcome an Envelope carries.
type ResultTag string

const (
	TagNavigate        ResultTag = "navigate"
	TagEmailSent       ResultTag = "email_sent"
	TagEmailUpdated    ResultTag = "email_updated"
	TagEmailDeleted    ResultTag = "email_deleted"
	TagEmailScheduled  ResultTag = "email_scheduled"
	TagShowData        ResultTag = "show_data"
	TagShowHelp        ResultTag = "show_help"
	TagFolderCreated   ResultTag = "folder_created"
	TagFolderDeleted   ResultTag = "folder_deleted"
	TagTemplateCreated ResultTag = "template_created"
	TagTemplateDeleted ResultTag = "template_deleted"
	TagCampaignCreated ResultTag = "campaign_created"
	TagCampaignSent    ResultTag = "campaign_sent"
	TagCampaignUpdated ResultTag = "campaign_updated"
	TagInputRequired   ResultTag = "input_required"
	TagError           ResultTag = "error"
)

// Envelope is the uniform result of every dispatched command.
type Envelope struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Action  ResultTag `json:"action"`
	Data    any       `json:"data,omitempty"`
}

// Navigation asks the shell to open a screen.
type Navigation struct {
	Route  string `json:"route"`
	Params any    `json:"params,omitempty"`
}

// ComposeParams prefills the composer.
type ComposeParams struct {
	command.Params
	ReplyTo string `json:"replyTo,omitempty"`
	Forward string `json:"forward,omitempty"`
}

// View is the payload of a show_data envelope. Lists go in Items, single
// aggregates in Detail.
type View struct {
	Type     string `json:"type"`
	Route    string `json:"route"`
	Query    string `json:"query,omitempty"`
	ClientID string `json:"clientId,omitempty"`
	Items    any    `json:"items,omitempty"`
	Detail   any    `json:"detail,omitempty"`
}

// Missing names the parameters the caller must supply before retrying.
type Missing struct {
	Field  string   `json:"field,omitempty"`
	Fields []string `json:"fields,omitempty"`
}

// Help is the payload of a show_help envelope.
type Help struct {
	Type  string `json:"type"`
	Topic string `json:"topic,omitempty"`
}

var errUnknown = errors.New("Unknown error occurred")

func succeed(message string, tag ResultTag, data any) Envelope {
	return Envelope{Success: true, Message: message, Action: tag, Data: data}
}

func fail(message string) Envelope {
	return Envelope{Success: false, Message: message, Action: TagError}
}

func failure(prefix string, err error) Envelope {
	return fail(fmt.Sprintf("%s: %v", prefix, err))
}

func inputRequired(message string, params ...command.Param) Envelope {
	var missing Missing
	if len(params) == 1 {
		missing.Field = string(params[0])
	} else {
		for _, p := range params {
			missing.Fields = append(missing.Fields, string(p))
		}
	}
	return Envelope{Success: false, Message: message, Action: TagInputRequired, Data: missing}
}
