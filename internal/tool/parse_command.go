package tool

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/mailvoice/internal/command"
)

type ParseCommandRequest struct {
	Command string `json:"command" jsonschema:"the spoken utterance"`
}

type ParseCommandResponse struct {
	Matched bool            `json:"matched" jsonschema:"whether the utterance is an email command"`
	Result  *command.Result `json:"result,omitempty" jsonschema:"the recognized action and parameters"`
}

func NewParseCommand(p parser, metrics parseRecorder) *ParseCommand {
	return &ParseCommand{parser: p, metrics: metrics}
}

type ParseCommand struct {
	parser  parser
	metrics parseRecorder
}

func (t *ParseCommand) ParseCommand(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ParseCommandRequest,
) (*mcp.CallToolResult, ParseCommandResponse, error) {
	if strings.TrimSpace(input.Command) == "" {
		return nil, ParseCommandResponse{}, errors.New("command is empty")
	}

	return nil, parse(t.parser, t.metrics, input.Command), nil
}

func parse(p parser, metrics parseRecorder, utterance string) ParseCommandResponse {
	res, ok := p.Process(utterance)
	if !ok {
		metrics.ObserveParse("")
		return ParseCommandResponse{}
	}

	metrics.ObserveParse(res.Stage)
	return ParseCommandResponse{Matched: true, Result: &res}
}
