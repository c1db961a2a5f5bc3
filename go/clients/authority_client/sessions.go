package authority_client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/playmesh/matchsync/go/internal/models"
)

type serverTimeResponse struct {
	ServerTime time.Time `json:"server_time"`
}

// SampleServerTime returns the authority's current clock reading.
func (c *AuthorityClient) SampleServerTime(ctx context.Context) (time.Time, error) {
	data, err := c.Get(ctx, ServerTimeEndpoint)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to sample server time: %w", err)
	}

	var resp serverTimeResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return time.Time{}, fmt.Errorf("failed to parse server time response: %w", err)
	}
	return resp.ServerTime, nil
}

// StartSession asks the authority to start a waiting session. The
// authority ignores the call if the session already started.
func (c *AuthorityClient) StartSession(ctx context.Context, roomID string) error {
	_, err := c.Post(ctx, SessionsEndpoint+"/"+url.PathEscape(roomID)+"/start", nil)
	if err != nil {
		return fmt.Errorf("failed to start session %s: %w", roomID, err)
	}
	return nil
}

// AdvancePhase moves a session from COUNTDOWN to PLAYING. Safe under
// concurrent calls from both peers.
func (c *AuthorityClient) AdvancePhase(ctx context.Context, roomID string) error {
	_, err := c.Post(ctx, SessionsEndpoint+"/"+url.PathEscape(roomID)+"/advance-phase", nil)
	if err != nil {
		return fmt.Errorf("failed to advance phase for %s: %w", roomID, err)
	}
	return nil
}

type setScoreRequest struct {
	PlayerID string `json:"player_id"`
	Score    int    `json:"score"`
}

// SetScore writes an absolute score for one player. Last write wins at
// the authority, which keeps retries and duplicates harmless.
func (c *AuthorityClient) SetScore(ctx context.Context, roomID, playerID string, score int) error {
	_, err := c.PostJSON(ctx, SessionsEndpoint+"/"+url.PathEscape(roomID)+"/score", setScoreRequest{
		PlayerID: playerID,
		Score:    score,
	})
	if err != nil {
		return fmt.Errorf("failed to set score for %s in %s: %w", playerID, roomID, err)
	}
	return nil
}

// AdvanceRound finalizes the current round, moving the session to the
// next round or to FINISHED. No-op if already advanced.
func (c *AuthorityClient) AdvanceRound(ctx context.Context, roomID string) error {
	_, err := c.Post(ctx, SessionsEndpoint+"/"+url.PathEscape(roomID)+"/advance-round", nil)
	if err != nil {
		return fmt.Errorf("failed to advance round for %s: %w", roomID, err)
	}
	return nil
}

// FetchSession reads the full authoritative snapshot, or nil if the
// room does not exist.
func (c *AuthorityClient) FetchSession(ctx context.Context, roomID string) (*models.SessionSnapshot, error) {
	data, err := c.Get(ctx, SessionsEndpoint+"/"+url.PathEscape(roomID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session %s: %w", roomID, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var snap models.SessionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse session %s: %w", roomID, err)
	}
	if snap.ID == "" {
		return nil, nil
	}
	return &snap, nil
}

// FetchActiveSession reads the player's currently active session, or
// nil if the player is not in one.
func (c *AuthorityClient) FetchActiveSession(ctx context.Context, playerID string) (*models.ActiveSession, error) {
	data, err := c.Get(ctx, fmt.Sprintf(ActiveSessionEndpoint, url.PathEscape(playerID)))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active session for %s: %w", playerID, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var active models.ActiveSession
	if err := json.Unmarshal(data, &active); err != nil {
		return nil, fmt.Errorf("failed to parse active session for %s: %w", playerID, err)
	}
	if active.RoomID == "" {
		return nil, nil
	}
	return &active, nil
}

// CancelReservedRoom releases a room reserved by an invite that is
// being declined or redirected.
func (c *AuthorityClient) CancelReservedRoom(ctx context.Context, roomID string) error {
	_, err := c.Delete(ctx, SessionsEndpoint+"/"+url.PathEscape(roomID)+"/reservation")
	if err != nil {
		return fmt.Errorf("failed to cancel reserved room %s: %w", roomID, err)
	}
	return nil
}
