package tool

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/mailvoice/internal/command"
	"github.com/hal9000y/mailvoice/internal/dispatch"
)

type RunCommandRequest struct {
	Command        string `json:"command" jsonschema:"the spoken utterance"`
	UserID         string `json:"user_id,omitempty" jsonschema:"the user issuing the command"`
	CurrentEmailID string `json:"current_email_id,omitempty" jsonschema:"the email the user is looking at"`
}

type RunCommandResponse struct {
	Matched bool               `json:"matched" jsonschema:"whether the utterance is an email command"`
	Parsed  *command.Result    `json:"parsed,omitempty" jsonschema:"the recognized action and parameters"`
	Result  *dispatch.Envelope `json:"result,omitempty" jsonschema:"the outcome of the command"`
}

func NewRunCommand(p parser, exec executor, metrics parseRecorder, defaultUserID string) *RunCommand {
	return &RunCommand{parser: p, exec: exec, metrics: metrics, defaultUserID: defaultUserID}
}

type RunCommand struct {
	parser        parser
	exec          executor
	metrics       parseRecorder
	defaultUserID string
}

func (t *RunCommand) RunCommand(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RunCommandRequest,
) (*mcp.CallToolResult, RunCommandResponse, error) {
	if strings.TrimSpace(input.Command) == "" {
		return nil, RunCommandResponse{}, errors.New("command is empty")
	}

	parsed := parse(t.parser, t.metrics, input.Command)
	if !parsed.Matched {
		return nil, RunCommandResponse{}, nil
	}

	ec := executionContext(t.defaultUserID, input.UserID, input.CurrentEmailID)
	env := t.exec.Execute(ctx, parsed.Result.Action, parsed.Result.Params, ec)

	return nil, RunCommandResponse{Matched: true, Parsed: parsed.Result, Result: &env}, nil
}
