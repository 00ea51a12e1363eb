package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/mailvoice/internal/command"
	"github.com/hal9000y/mailvoice/internal/dispatch"
)

type ExecuteCommandRequest struct {
	Action         command.ActionID `json:"action" jsonschema:"the action identifier, e.g. send or markRead"`
	Params         command.Params   `json:"params,omitempty" jsonschema:"the action parameters"`
	UserID         string           `json:"user_id,omitempty" jsonschema:"the user issuing the command"`
	CurrentEmailID string           `json:"current_email_id,omitempty" jsonschema:"the email the user is looking at"`
}

func NewExecuteCommand(exec executor, defaultUserID string) *ExecuteCommand {
	return &ExecuteCommand{exec: exec, defaultUserID: defaultUserID}
}

type ExecuteCommand struct {
	exec          executor
	defaultUserID string
}

// ExecuteCommand returns the envelope as the tool output; a failed command is
// a successful tool call carrying success=false.
func (t *ExecuteCommand) ExecuteCommand(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExecuteCommandRequest,
) (*mcp.CallToolResult, dispatch.Envelope, error) {
	ec := executionContext(t.defaultUserID, input.UserID, input.CurrentEmailID)
	return nil, t.exec.Execute(ctx, input.Action, input.Params, ec), nil
}
