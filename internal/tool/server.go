// Package tool exposes the command parser and dispatcher to a voice shell as
// MCP tools.
package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/mailvoice/internal/command"
	"github.com/hal9000y/mailvoice/internal/dispatch"
	"github.com/hal9000y/mailvoice/internal/mail"
)

type parser interface {
	Process(utterance string) (command.Result, bool)
	Table() *command.Table
}

type executor interface {
	Execute(ctx context.Context, action command.ActionID, params command.Params, ec dispatch.ExecutionContext) dispatch.Envelope
}

type messageReader interface {
	Message(ctx context.Context, msgID string) (mail.Message, error)
}

type campaignEditor interface {
	SetRecipients(ctx context.Context, userID, id string, recipients []string) (mail.Campaign, error)
}

type parseRecorder interface {
	ObserveParse(stage string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveParse(string) {}

// Deps are the collaborators of the tools. Reader and Campaigns may be nil, in
// which case read_email and set_campaign_recipients are not registered.
type Deps struct {
	Parser        parser
	Executor      executor
	Reader        messageReader
	Campaigns     campaignEditor
	Metrics       parseRecorder
	DefaultUserID string
}

// NewServer creates an MCP server with the voice command tools.
func NewServer(d Deps) *mcp.Server {
	if d.Metrics == nil {
		d.Metrics = nopRecorder{}
	}

	server := mcp.NewServer(&mcp.Implementation{Name: "mailvoice", Version: "v1.0.0"}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_commands",
		Description: "List every spoken email command phrase with its action and parameters",
	}, NewListCommands(d.Parser).ListCommands)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "parse_command",
		Description: "Recognize a spoken email command and extract its parameters without executing it",
	}, NewParseCommand(d.Parser, d.Metrics).ParseCommand)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "execute_command",
		Description: "Execute an email action with parameters and return the result envelope",
	}, NewExecuteCommand(d.Executor, d.DefaultUserID).ExecuteCommand)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "run_command",
		Description: "Recognize a spoken email command and execute it",
	}, NewRunCommand(d.Parser, d.Executor, d.Metrics, d.DefaultUserID).RunCommand)

	if d.Reader != nil {
		mcp.AddTool(server, &mcp.Tool{
			Name:        "read_email",
			Description: "Get the readable body and attachment list of emails by ID",
		}, NewReadEmail(d.Reader).ReadEmail)
	}

	if d.Campaigns != nil {
		mcp.AddTool(server, &mcp.Tool{
			Name:        "set_campaign_recipients",
			Description: "Replace the recipients of a draft email campaign before it is sent",
		}, NewSetCampaignRecipients(d.Campaigns, d.DefaultUserID).SetCampaignRecipients)
	}

	return server
}

func executionContext(defaultUserID, userID, currentEmailID string) dispatch.ExecutionContext {
	ec := dispatch.ExecutionContext{UserID: userID}
	if ec.UserID == "" {
		ec.UserID = defaultUserID
	}
	if currentEmailID != "" {
		ec.CurrentEmail = &mail.Email{ID: currentEmailID}
	}
	return ec
}
