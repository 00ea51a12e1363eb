package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/mailvoice/internal/command"
	"github.com/hal9000y/mailvoice/internal/dispatch"
)

type ListCommandsRequest struct{}

type ListCommandsResponse struct {
	Commands   []command.Entry `json:"commands" jsonschema:"every recognized phrase with its action"`
	HelpTopics []string        `json:"help_topics" jsonschema:"topics accepted by the email help command"`
}

func NewListCommands(p parser) *ListCommands {
	return &ListCommands{parser: p}
}

type ListCommands struct {
	parser parser
}

func (t *ListCommands) ListCommands(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListCommandsRequest,
) (*mcp.CallToolResult, ListCommandsResponse, error) {
	return nil, ListCommandsResponse{
		Commands:   t.parser.Table().Entries(),
		HelpTopics: dispatch.HelpTopics(),
	}, nil
}
