package models

import (
	"strings"
	"time"
)

// SessionStatus defines the lifecycle phase of a match session.
type SessionStatus string

const (
	SessionStatusWaiting   SessionStatus = "WAITING"
	SessionStatusCountdown SessionStatus = "COUNTDOWN"
	SessionStatusPlaying   SessionStatus = "PLAYING"
	SessionStatusRoundEnd  SessionStatus = "ROUND_END"
	SessionStatusFinished  SessionStatus = "FINISHED"
)

// SessionMode defines how a session was matched.
type SessionMode string

const (
	SessionModeNormal   SessionMode = "NORMAL"
	SessionModeRank     SessionMode = "RANK"
	SessionModePractice SessionMode = "PRACTICE"
	SessionModeFriendly SessionMode = "FRIENDLY"
)

// Solo reports whether the mode never has a second live peer.
func (m SessionMode) Solo() bool {
	return m == SessionModePractice
}

// SessionSnapshot is a complete, point-in-time copy of the authoritative
// session record. It is always replaced wholesale, never patched.
type SessionSnapshot struct {
	ID           string         `json:"id"`
	Status       SessionStatus  `json:"status"`
	GameType     string         `json:"game_type"`
	Seed         int64          `json:"seed"`
	StartAt      *time.Time     `json:"start_at,omitempty"`
	EndAt        *time.Time     `json:"end_at,omitempty"`
	CurrentRound int            `json:"current_round"`
	TotalRounds  int            `json:"total_rounds"`
	Scores       map[string]int `json:"scores"`
	Wins         map[string]int `json:"wins"`
	Mode         SessionMode    `json:"mode"`
	WinnerID     string         `json:"winner_id,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// ScoreFor returns the authoritative score for a player, zero if absent.
func (s *SessionSnapshot) ScoreFor(playerID string) int {
	if s == nil || s.Scores == nil {
		return 0
	}
	return s.Scores[playerID]
}

// ActiveSession is the authority's answer to "what is this player in
// right now": a room id and its current status, or empty.
type ActiveSession struct {
	RoomID    string        `json:"room_id"`
	Status    SessionStatus `json:"status"`
	Mode      SessionMode   `json:"mode"`
	CreatedAt time.Time     `json:"created_at"`
}

const syntheticOpponentPrefix = "bot:"

// IsSyntheticOpponent reports whether an opponent id is a bot or solo
// placeholder rather than a real peer.
func IsSyntheticOpponent(id string) bool {
	return id == "" || strings.HasPrefix(id, syntheticOpponentPrefix)
}
