package tool

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type SetCampaignRecipientsRequest struct {
	CampaignID string   `json:"campaign_id" jsonschema:"the draft campaign to update"`
	Recipients []string `json:"recipients" jsonschema:"email addresses that replace the campaign recipients"`
	UserID     string   `json:"user_id,omitempty" jsonschema:"the user owning the campaign"`
}

type SetCampaignRecipientsResponse struct {
	CampaignID string   `json:"campaign_id" jsonschema:"the updated campaign"`
	Name       string   `json:"name" jsonschema:"the campaign name"`
	Status     string   `json:"status" jsonschema:"the campaign status"`
	Recipients []string `json:"recipients" jsonschema:"the normalized recipient addresses"`
}

func NewSetCampaignRecipients(campaigns campaignEditor, defaultUserID string) *SetCampaignRecipients {
	return &SetCampaignRecipients{campaigns: campaigns, defaultUserID: defaultUserID}
}

type SetCampaignRecipients struct {
	campaigns     campaignEditor
	defaultUserID string
}

func (t *SetCampaignRecipients) SetCampaignRecipients(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SetCampaignRecipientsRequest,
) (*mcp.CallToolResult, SetCampaignRecipientsResponse, error) {
	if input.CampaignID == "" {
		return nil, SetCampaignRecipientsResponse{}, errors.New("campaign_id is empty")
	}

	userID := input.UserID
	if userID == "" {
		userID = t.defaultUserID
	}

	c, err := t.campaigns.SetRecipients(ctx, userID, input.CampaignID, input.Recipients)
	if err != nil {
		return nil, SetCampaignRecipientsResponse{}, fmt.Errorf("campaigns.SetRecipients failed: %w", err)
	}

	return nil, SetCampaignRecipientsResponse{
		CampaignID: c.ID,
		Name:       c.Name,
		Status:     c.Status,
		Recipients: c.Recipients,
	}, nil
}
