package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/playmesh/matchsync/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockFeed struct {
	announced  []string
	sessionFn  func(models.SessionSnapshot)
	presenceFn func([]string)
	unsubCount int
}

func (f *mockFeed) Announce(ctx context.Context, roomID, playerID string) error {
	f.announced = append(f.announced, playerID)
	return nil
}

func (f *mockFeed) SubscribeSession(roomID string, fn func(models.SessionSnapshot)) (func(), error) {
	f.sessionFn = fn
	return func() { f.unsubCount++ }, nil
}

func (f *mockFeed) SubscribePresence(roomID string, fn func(peers []string)) (func(), error) {
	f.presenceFn = fn
	return func() { f.unsubCount++ }, nil
}

func TestAttachInertWithoutIdentity(t *testing.T) {
	c := New(&mockAuthority{}, &mockFeed{}, "", "", "", DefaultConfig())
	require.NoError(t, c.Attach(context.Background()))
	c.Close()
}

func TestAttachAnnouncesAndPrimesState(t *testing.T) {
	waiting := testSnap(models.SessionStatusWaiting, 0)
	auth := &mockAuthority{session: &waiting}
	feed := &mockFeed{}
	c, _ := newTestCoordinator(auth)
	c.feed = feed

	require.NoError(t, c.Attach(context.Background()))
	defer c.Close()

	assert.Equal(t, []string{"a"}, feed.announced)
	require.NotNil(t, feed.sessionFn)
	require.NotNil(t, feed.presenceFn)

	got := c.View().Snapshot
	require.NotNil(t, got)
	assert.Equal(t, models.SessionStatusWaiting, got.Status)

	// The waiting host issues the redundant-safe start call.
	auth.mu.Lock()
	assert.Equal(t, 1, auth.startCalls)
	auth.mu.Unlock()
}

func TestCloseReleasesSubscriptions(t *testing.T) {
	waiting := testSnap(models.SessionStatusWaiting, 0)
	auth := &mockAuthority{session: &waiting}
	feed := &mockFeed{}
	c, _ := newTestCoordinator(auth)
	c.feed = feed

	require.NoError(t, c.Attach(context.Background()))
	c.Close()
	assert.Equal(t, 2, feed.unsubCount)
}

func TestStateListenerSeesEveryMutation(t *testing.T) {
	c, fake := newTestCoordinator(&mockAuthority{})
	var views []StateView
	c.SetStateListener(func(v StateView) { views = append(views, v) })

	c.HandleUpdate(timedSnap(models.SessionStatusPlaying, 1, testEpoch, 5*time.Second))
	c.ApplyDelta(2)
	fake.Advance(time.Second)
	c.tick(context.Background())

	require.Len(t, views, 3)
	assert.Equal(t, 2, views[2].LocalScore)
	assert.Equal(t, 4*time.Second, views[2].Remaining)
	assert.True(t, views[2].Host)
}

// TestTwoPeersRoundLifecycle walks two coordinators sharing one
// authoritative record through a full round: countdown, play with
// scoring on both sides, host-only finalization.
func TestTwoPeersRoundLifecycle(t *testing.T) {
	auth := &mockAuthority{}

	fakeA := clockwork.NewFakeClockAt(testEpoch)
	fakeB := clockwork.NewFakeClockAt(testEpoch)
	a := New(auth, nil, "a", "b", "r1", DefaultConfig()).WithClock(fakeA)
	b := New(auth, nil, "b", "a", "r1", DefaultConfig()).WithClock(fakeB)

	roster := []string{"a", "b"}
	a.HandleRoster(roster)
	b.HandleRoster(roster)

	deliver := func(snap models.SessionSnapshot) {
		a.HandleUpdate(snap)
		b.HandleUpdate(snap)
	}
	advance := func(d time.Duration) {
		fakeA.Advance(d)
		fakeB.Advance(d)
	}
	tickBoth := func() {
		a.tick(context.Background())
		b.tick(context.Background())
	}

	deliver(timedSnap(models.SessionStatusCountdown, 1, testEpoch, 3*time.Second))
	advance(3 * time.Second)
	tickBoth()
	// Either peer may request the move to PLAYING, each at most once.
	assert.LessOrEqual(t, auth.phaseCalls(), 2)
	assert.GreaterOrEqual(t, auth.phaseCalls(), 1)

	deliver(timedSnap(models.SessionStatusPlaying, 1, testEpoch.Add(3*time.Second), 10*time.Second))
	a.ApplyDelta(100)
	b.ApplyDelta(50)
	require.NoError(t, a.flushScore(context.Background()))
	require.NoError(t, b.flushScore(context.Background()))

	advance(10*time.Second + a.cfg.GracePeriod + time.Millisecond)
	for i := 0; i < 3; i++ {
		tickBoth()
	}
	// Only the elected host finalizes, and only once.
	assert.Equal(t, 1, auth.roundCalls())
	assert.True(t, a.View().TimeUp)
	assert.True(t, b.View().TimeUp)

	writes := auth.writes()
	require.Len(t, writes, 2)
	assert.ElementsMatch(t,
		[]scoreWrite{{roomID: "r1", playerID: "a", score: 100}, {roomID: "r1", playerID: "b", score: 50}},
		writes)

	// The finalized record resets both peers for the next round.
	deliver(timedSnap(models.SessionStatusCountdown, 2, testEpoch.Add(15*time.Second), 3*time.Second))
	assert.Equal(t, 0, a.View().LocalScore)
	assert.Equal(t, 0, b.View().LocalScore)
}
