package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/playmesh/matchsync/go/internal/match/events"
	"github.com/playmesh/matchsync/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Config holds NATS connection settings for the push channel.
type Config struct {
	URL           string
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultConfig returns the default push channel configuration.
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// Feed is the push side of the dual push+poll delivery pattern. It
// rides core NATS: delivery may drop, duplicate, or reorder, which is
// fine because every consumer is an idempotent reducer and the poll
// fallback covers gaps.
type Feed struct {
	nc *nats.Conn
}

// Connect establishes the NATS connection with reconnect handling.
func Connect(cfg Config) (*Feed, error) {
	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	return &Feed{nc: nc}, nil
}

// Close drops the connection and with it every subscription.
func (f *Feed) Close() {
	if f.nc != nil {
		f.nc.Close()
	}
}

func sessionSubject(roomID string) string {
	return "match.session." + roomID
}

func presenceSubject(roomID string) string {
	return "match.presence." + roomID
}

func inviteSubject(playerID string) string {
	return "match.invite." + playerID
}

// Announce publishes the local identity onto the room's presence
// subject so the roster service can add us to the roster.
func (f *Feed) Announce(ctx context.Context, roomID, playerID string) error {
	payload, err := json.Marshal(events.PresenceAnnouncePayload{
		RoomID:   roomID,
		PlayerID: playerID,
		JoinedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal presence announce: %w", err)
	}

	env := events.Envelope{
		EventID:   uuid.New().String(),
		EventType: events.EventTypePresenceAnnounce,
		RoomID:    roomID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal presence envelope: %w", err)
	}
	return f.nc.Publish(presenceSubject(roomID), data)
}

// SubscribeSession delivers every pushed session snapshot for the room
// to fn. Malformed envelopes are dropped silently.
func (f *Feed) SubscribeSession(roomID string, fn func(models.SessionSnapshot)) (func(), error) {
	sub, err := f.nc.Subscribe(sessionSubject(roomID), func(msg *nats.Msg) {
		env, ok := decodeEnvelope(msg.Data)
		if !ok || env.EventType != events.EventTypeSessionUpdate {
			return
		}
		var p events.SessionUpdatePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			log.Debug().Err(err).Str("subject", msg.Subject).Msg("dropping malformed session update")
			return
		}
		fn(p.Session)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe session updates: %w", err)
	}
	return unsubscriber(sub), nil
}

// SubscribePresence delivers every full-roster sync for the room to fn.
func (f *Feed) SubscribePresence(roomID string, fn func(peers []string)) (func(), error) {
	sub, err := f.nc.Subscribe(presenceSubject(roomID), func(msg *nats.Msg) {
		env, ok := decodeEnvelope(msg.Data)
		if !ok || env.EventType != events.EventTypePresenceSync {
			return
		}
		var p events.PresenceSyncPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			log.Debug().Err(err).Str("subject", msg.Subject).Msg("dropping malformed presence sync")
			return
		}
		fn(p.Peers)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe presence: %w", err)
	}
	return unsubscriber(sub), nil
}

// SubscribeInvites delivers invite inserts addressed to the player.
func (f *Feed) SubscribeInvites(playerID string, fn func(models.Invite)) (func(), error) {
	sub, err := f.nc.Subscribe(inviteSubject(playerID), func(msg *nats.Msg) {
		env, ok := decodeEnvelope(msg.Data)
		if !ok || env.EventType != events.EventTypeInviteInsert {
			return
		}
		var p events.InviteInsertPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			log.Debug().Err(err).Str("subject", msg.Subject).Msg("dropping malformed invite")
			return
		}
		fn(p.Invite)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe invites: %w", err)
	}
	return unsubscriber(sub), nil
}

func decodeEnvelope(data []byte) (events.Envelope, bool) {
	var env events.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Debug().Err(err).Msg("dropping undecodable push event")
		return events.Envelope{}, false
	}
	return env, true
}

func unsubscriber(sub *nats.Subscription) func() {
	return func() {
		if err := sub.Unsubscribe(); err != nil {
			log.Debug().Err(err).Str("subject", sub.Subject).Msg("unsubscribe failed")
		}
	}
}
