package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/mailvoice/internal/mail"
)

type ReadEmailRequest struct {
	EmailIDs []string `json:"email_ids" jsonschema:"array of email IDs to read"`
}

type ReadEmailResponse struct {
	Messages []mail.Message `json:"messages" jsonschema:"the emails with readable bodies"`
}

func NewReadEmail(reader messageReader) *ReadEmail {
	return &ReadEmail{reader: reader}
}

type ReadEmail struct {
	reader messageReader
}

func (t *ReadEmail) ReadEmail(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReadEmailRequest,
) (*mcp.CallToolResult, ReadEmailResponse, error) {
	messages := make([]mail.Message, 0, len(input.EmailIDs))

	for _, id := range input.EmailIDs {
		msg, err := t.reader.Message(ctx, id)
		if err != nil {
			return nil, ReadEmailResponse{}, fmt.Errorf("read email %s failed: %w", id, err)
		}
		messages = append(messages, msg)
	}

	return nil, ReadEmailResponse{Messages: messages}, nil
}
