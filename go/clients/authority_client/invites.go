package authority_client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/playmesh/matchsync/go/internal/models"
)

type inviteResponseRequest struct {
	SenderID string                    `json:"sender_id"`
	RoomID   string                    `json:"room_id"`
	Kind     models.InviteResponseKind `json:"kind"`
}

// SendInviteResponse notifies an inviter of the receiver's decision.
// Fire-and-forget message insert at the authority.
func (c *AuthorityClient) SendInviteResponse(ctx context.Context, senderID, roomID string, kind models.InviteResponseKind) error {
	_, err := c.PostJSON(ctx, MessagesEndpoint+"/invite-response", inviteResponseRequest{
		SenderID: senderID,
		RoomID:   roomID,
		Kind:     kind,
	})
	if err != nil {
		return fmt.Errorf("failed to send invite response to %s: %w", senderID, err)
	}
	return nil
}

// MarkMessageRead marks a message read at the authority. Best effort;
// callers treat failure as non-fatal.
func (c *AuthorityClient) MarkMessageRead(ctx context.Context, messageID string) error {
	_, err := c.Post(ctx, MessagesEndpoint+"/"+url.PathEscape(messageID)+"/read", nil)
	if err != nil {
		return fmt.Errorf("failed to mark message %s read: %w", messageID, err)
	}
	return nil
}

type profileResponse struct {
	DisplayName string `json:"display_name"`
}

// FetchProfileDisplayName returns the player's display name, or an
// empty string if the profile has none.
func (c *AuthorityClient) FetchProfileDisplayName(ctx context.Context, playerID string) (string, error) {
	data, err := c.Get(ctx, fmt.Sprintf(ProfileEndpoint, url.PathEscape(playerID)))
	if err != nil {
		return "", fmt.Errorf("failed to fetch profile for %s: %w", playerID, err)
	}

	var resp profileResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("failed to parse profile for %s: %w", playerID, err)
	}
	return resp.DisplayName, nil
}

type unreadInvitesResponse struct {
	Invites []models.Invite `json:"invites"`
}

// FetchUnreadInvites returns unread invite messages for the player no
// older than the given cutoff. This is the poll fallback behind the
// push-delivered invite inserts.
func (c *AuthorityClient) FetchUnreadInvites(ctx context.Context, playerID string, since time.Time) ([]models.Invite, error) {
	endpoint := fmt.Sprintf(UnreadInvitesEndpoint, url.PathEscape(playerID)) +
		"?since=" + url.QueryEscape(since.UTC().Format(time.RFC3339))
	data, err := c.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unread invites for %s: %w", playerID, err)
	}

	var resp unreadInvitesResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse unread invites for %s: %w", playerID, err)
	}
	return resp.Invites, nil
}
