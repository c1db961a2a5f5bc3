package feed

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/playmesh/matchsync/go/internal/match/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjects(t *testing.T) {
	assert.Equal(t, "match.session.r1", sessionSubject("r1"))
	assert.Equal(t, "match.presence.r1", presenceSubject("r1"))
	assert.Equal(t, "match.invite.p7", inviteSubject("p7"))
}

func TestDecodeEnvelope(t *testing.T) {
	payload, err := json.Marshal(events.PresenceSyncPayload{Peers: []string{"a", "b"}})
	require.NoError(t, err)
	data, err := json.Marshal(events.Envelope{
		EventID:   "e1",
		EventType: events.EventTypePresenceSync,
		RoomID:    "r1",
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Payload:   payload,
	})
	require.NoError(t, err)

	env, ok := decodeEnvelope(data)
	require.True(t, ok)
	assert.Equal(t, events.EventTypePresenceSync, env.EventType)
	assert.Equal(t, "r1", env.RoomID)

	var p events.PresenceSyncPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Equal(t, []string{"a", "b"}, p.Peers)
}

func TestDecodeEnvelopeRejectsGarbage(t *testing.T) {
	_, ok := decodeEnvelope([]byte("not json"))
	assert.False(t, ok)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, -1, cfg.MaxReconnects)
	assert.Equal(t, 2*time.Second, cfg.ReconnectWait)
}
