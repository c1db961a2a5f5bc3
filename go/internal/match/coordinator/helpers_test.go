package coordinator

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/playmesh/matchsync/go/internal/models"
)

type scoreWrite struct {
	roomID   string
	playerID string
	score    int
}

// mockAuthority counts invocations and lets tests script failures.
type mockAuthority struct {
	mu sync.Mutex

	serverTime    time.Time
	serverTimeErr error
	onSample      func() // simulates round-trip latency by advancing a fake clock

	session  *models.SessionSnapshot
	fetchErr error

	startCalls        int
	advancePhaseCalls int
	advancePhaseErr   error
	advanceRoundCalls int
	advanceRoundErr   error
	scoreWrites       []scoreWrite
	setScoreErr       error
}

func (m *mockAuthority) SampleServerTime(ctx context.Context) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.onSample != nil {
		m.onSample()
	}
	return m.serverTime, m.serverTimeErr
}

func (m *mockAuthority) StartSession(ctx context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startCalls++
	return nil
}

func (m *mockAuthority) AdvancePhase(ctx context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advancePhaseCalls++
	return m.advancePhaseErr
}

func (m *mockAuthority) SetScore(ctx context.Context, roomID, playerID string, score int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setScoreErr != nil {
		return m.setScoreErr
	}
	m.scoreWrites = append(m.scoreWrites, scoreWrite{roomID: roomID, playerID: playerID, score: score})
	return nil
}

func (m *mockAuthority) AdvanceRound(ctx context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advanceRoundCalls++
	return m.advanceRoundErr
}

func (m *mockAuthority) FetchSession(ctx context.Context, roomID string) (*models.SessionSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, m.fetchErr
}

func (m *mockAuthority) phaseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.advancePhaseCalls
}

func (m *mockAuthority) roundCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.advanceRoundCalls
}

func (m *mockAuthority) writes() []scoreWrite {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]scoreWrite, len(m.scoreWrites))
	copy(out, m.scoreWrites)
	return out
}

var testEpoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testSnap(status models.SessionStatus, round int) models.SessionSnapshot {
	return models.SessionSnapshot{
		ID:           "r1",
		Status:       status,
		GameType:     "tap_duel",
		Seed:         42,
		CurrentRound: round,
		TotalRounds:  3,
		Scores:       map[string]int{},
		Wins:         map[string]int{},
		Mode:         models.SessionModeNormal,
		CreatedAt:    testEpoch,
	}
}

// newTestCoordinator builds a coordinator for "a" vs "b" in room "r1"
// on a fake clock, without attaching any timers or subscriptions.
func newTestCoordinator(auth Authority) (*Coordinator, *clockwork.FakeClock) {
	fake := clockwork.NewFakeClockAt(testEpoch)
	c := New(auth, nil, "a", "b", "r1", DefaultConfig()).WithClock(fake)
	return c, fake
}
