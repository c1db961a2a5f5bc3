package models

import "time"

// Invite is a match invitation message observed by the receiving client.
type Invite struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	RoomID     string    `json:"room_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// InviteResponseKind is the terminal answer sent back to the inviter.
type InviteResponseKind string

const (
	InviteAccepted InviteResponseKind = "ACCEPTED"
	InviteRejected InviteResponseKind = "REJECTED"
	InviteBusy     InviteResponseKind = "BUSY"
)
