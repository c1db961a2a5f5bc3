package events

import (
	"encoding/json"
	"time"

	"github.com/playmesh/matchsync/go/internal/models"
)

// Event type names carried on the push channel.
const (
	EventTypeSessionUpdate    = "SessionUpdate"
	EventTypePresenceSync     = "PresenceSync"
	EventTypePresenceAnnounce = "PresenceAnnounce"
	EventTypeInviteInsert     = "InviteInsert"
)

// Envelope is the wire frame for all push events. Payloads are whole
// records, never deltas, so replaying or reordering an envelope is safe.
type Envelope struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	RoomID    string          `json:"room_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// SessionUpdatePayload carries a full authoritative snapshot.
type SessionUpdatePayload struct {
	Session models.SessionSnapshot `json:"session"`
}

// PresenceSyncPayload carries the full current roster for a room.
type PresenceSyncPayload struct {
	RoomID string   `json:"room_id"`
	Peers  []string `json:"peers"`
}

// PresenceAnnouncePayload is published by a client when it attaches.
type PresenceAnnouncePayload struct {
	RoomID   string    `json:"room_id"`
	PlayerID string    `json:"player_id"`
	JoinedAt time.Time `json:"joined_at"`
}

// InviteInsertPayload carries a full invite record addressed to one peer.
type InviteInsertPayload struct {
	Invite models.Invite `json:"invite"`
}
