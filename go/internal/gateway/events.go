package gateway

import (
	"encoding/json"
	"time"

	"github.com/playmesh/matchsync/go/internal/models"
)

// MatchEvent is the frame pushed to UI clients over the local socket.
type MatchEvent struct {
	ID        string          `json:"id"`
	RoomID    string          `json:"room_id,omitempty"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// EventType represents the type of gateway event.
type EventType string

const (
	EventTypeState        EventType = "State"        // coordinator state projection
	EventTypeInvitePrompt EventType = "InvitePrompt" // ask the user to accept or reject
	EventTypeInviteError  EventType = "InviteError"  // invite target became invalid
	EventTypeNavigate     EventType = "Navigate"     // hand the UI off into a session
)

// StatePayload mirrors the coordinator's state projection for rendering.
type StatePayload struct {
	Session      *models.SessionSnapshot `json:"session"`
	RemainingSec float64                 `json:"remaining_sec"`
	LocalScore   int                     `json:"local_score"`
	Host         bool                    `json:"host"`
	TimeUp       bool                    `json:"time_up"`
}

// InvitePromptPayload asks the UI to resolve an invite.
type InvitePromptPayload struct {
	InviteID   string `json:"invite_id"`
	SenderName string `json:"sender_name"`
	RoomID     string `json:"room_id"`
}

// InviteErrorPayload carries the one user-visible invite failure.
type InviteErrorPayload struct {
	Message string `json:"message"`
}

// NavigatePayload tells the UI which session to enter.
type NavigatePayload struct {
	RoomID string `json:"room_id"`
}

// Client message types accepted from the UI.
const (
	ClientTypeScoreDelta     = "ScoreDelta"
	ClientTypeInviteResponse = "InviteResponse"
)

// ClientMessage is a command received from a UI client.
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`

	// Filled in by the connection that read the message.
	UserID string `json:"-"`
	RoomID string `json:"-"`
}

// ScoreDeltaPayload applies a point delta to the local optimistic score.
type ScoreDeltaPayload struct {
	Amount int `json:"amount"`
}

// InviteResponsePayload answers a pending invite prompt.
type InviteResponsePayload struct {
	InviteID string `json:"invite_id"`
	Accepted bool   `json:"accepted"`
}
