package main

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playmesh/matchsync/go/internal/gateway"
	"github.com/playmesh/matchsync/go/internal/models"
	"github.com/rs/zerolog/log"
)

// lobbyRoom is the pseudo-room UI clients join before a session exists,
// where invite prompts and navigation events are delivered.
const lobbyRoom = "lobby"

const promptTimeout = 60 * time.Second

// gatewayPrompter bridges invite prompts to UI clients over the local
// WebSocket gateway. It implements invite.Prompter and invite.Navigator.
type gatewayPrompter struct {
	cm     *gateway.ConnectionManager
	selfID string

	mu      sync.Mutex
	pending map[string]chan bool
}

func newGatewayPrompter(cm *gateway.ConnectionManager, selfID string) *gatewayPrompter {
	return &gatewayPrompter{
		cm:      cm,
		selfID:  selfID,
		pending: make(map[string]chan bool),
	}
}

// PromptInvite shows the accept/reject prompt and blocks until the UI
// answers or the prompt times out. Timeout counts as a rejection.
func (p *gatewayPrompter) PromptInvite(ctx context.Context, inv models.Invite, senderName string) (bool, error) {
	answerCh := make(chan bool, 1)

	p.mu.Lock()
	p.pending[inv.ID] = answerCh
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		delete(p.pending, inv.ID)
		p.mu.Unlock()
	}()

	p.cm.BroadcastToUser(lobbyRoom, p.selfID, newEvent(lobbyRoom, gateway.EventTypeInvitePrompt, gateway.InvitePromptPayload{
		InviteID:   inv.ID,
		SenderName: senderName,
		RoomID:     inv.RoomID,
	}))

	select {
	case accepted := <-answerCh:
		return accepted, nil
	case <-time.After(promptTimeout):
		log.Info().Str("invite_id", inv.ID).Msg("invite prompt timed out")
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Resolve answers a pending prompt; late or unknown answers are ignored.
func (p *gatewayPrompter) Resolve(inviteID string, accepted bool) {
	p.mu.Lock()
	ch, ok := p.pending[inviteID]
	p.mu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- accepted:
	default:
	}
}

func (p *gatewayPrompter) NotifyError(message string) {
	p.cm.BroadcastToUser(lobbyRoom, p.selfID, newEvent(lobbyRoom, gateway.EventTypeInviteError, gateway.InviteErrorPayload{
		Message: message,
	}))
}

func (p *gatewayPrompter) EnterSession(roomID string) {
	log.Info().Str("room_id", roomID).Msg("entering session")
	p.cm.BroadcastToUser(lobbyRoom, p.selfID, newEvent(lobbyRoom, gateway.EventTypeNavigate, gateway.NavigatePayload{
		RoomID: roomID,
	}))
}

func newEvent(roomID string, eventType gateway.EventType, payload any) *gateway.MatchEvent {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(eventType)).Msg("failed to marshal gateway payload")
		return &gateway.MatchEvent{ID: uuid.New().String(), RoomID: roomID, Type: eventType, Timestamp: time.Now()}
	}
	return &gateway.MatchEvent{
		ID:        uuid.New().String(),
		RoomID:    roomID,
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}
