package coordinator

import (
	"testing"

	"github.com/playmesh/matchsync/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleUpdateDropsMalformedAndForeign(t *testing.T) {
	c, _ := newTestCoordinator(&mockAuthority{})

	empty := testSnap(models.SessionStatusPlaying, 1)
	empty.ID = ""
	c.HandleUpdate(empty)
	assert.Nil(t, c.View().Snapshot)

	foreign := testSnap(models.SessionStatusPlaying, 1)
	foreign.ID = "other-room"
	c.HandleUpdate(foreign)
	assert.Nil(t, c.View().Snapshot)
}

func TestHandleUpdateIsIdempotent(t *testing.T) {
	c, _ := newTestCoordinator(&mockAuthority{})

	snap := testSnap(models.SessionStatusPlaying, 2)
	snap.Scores = map[string]int{"a": 7}

	c.HandleUpdate(snap)
	first := c.View()
	c.HandleUpdate(snap)
	second := c.View()

	assert.Equal(t, first.Snapshot, second.Snapshot)
	assert.Equal(t, 7, second.LocalScore)
}

func TestHandleUpdateConvergesUnderReordering(t *testing.T) {
	snaps := []models.SessionSnapshot{
		testSnap(models.SessionStatusWaiting, 0),
		testSnap(models.SessionStatusCountdown, 1),
		testSnap(models.SessionStatusPlaying, 1),
		testSnap(models.SessionStatusRoundEnd, 1),
		testSnap(models.SessionStatusCountdown, 2),
	}
	orders := [][]int{
		{0, 1, 2, 3, 4},
		{4, 3, 2, 1, 0},
		{2, 0, 4, 1, 3},
		{1, 1, 3, 3, 4, 2, 0, 4},
	}

	for _, order := range orders {
		c, _ := newTestCoordinator(&mockAuthority{})
		for _, i := range order {
			c.HandleUpdate(snaps[i])
		}
		got := c.View().Snapshot
		require.NotNil(t, got)
		assert.Equal(t, 2, got.CurrentRound)
		assert.Equal(t, models.SessionStatusCountdown, got.Status)
	}
}

func TestHandleUpdateIgnoresStaleLowerRound(t *testing.T) {
	c, _ := newTestCoordinator(&mockAuthority{})

	c.HandleUpdate(testSnap(models.SessionStatusPlaying, 3))
	c.HandleUpdate(testSnap(models.SessionStatusRoundEnd, 2))

	got := c.View().Snapshot
	require.NotNil(t, got)
	assert.Equal(t, 3, got.CurrentRound)
	assert.Equal(t, models.SessionStatusPlaying, got.Status)
}

func TestHandleUpdateFinishedAlwaysWins(t *testing.T) {
	c, _ := newTestCoordinator(&mockAuthority{})

	c.HandleUpdate(testSnap(models.SessionStatusPlaying, 3))
	done := testSnap(models.SessionStatusFinished, 1)
	done.WinnerID = "a"
	c.HandleUpdate(done)

	got := c.View().Snapshot
	require.NotNil(t, got)
	assert.Equal(t, models.SessionStatusFinished, got.Status)
	assert.Equal(t, "a", got.WinnerID)
}

func TestHandleUpdateCountdownResetsDirtyScore(t *testing.T) {
	c, _ := newTestCoordinator(&mockAuthority{})

	playing := testSnap(models.SessionStatusPlaying, 1)
	c.HandleUpdate(playing)
	c.ApplyDelta(5)
	assert.Equal(t, 5, c.View().LocalScore)

	// Next round begins with a zero authoritative score; the unflushed
	// local tally must not leak into it.
	next := testSnap(models.SessionStatusCountdown, 2)
	c.HandleUpdate(next)
	assert.Equal(t, 0, c.View().LocalScore)
}

func TestHandleUpdateAdoptsAuthScoreWhenClean(t *testing.T) {
	c, _ := newTestCoordinator(&mockAuthority{})

	snap := testSnap(models.SessionStatusPlaying, 1)
	snap.Scores = map[string]int{"a": 12, "b": 9}
	c.HandleUpdate(snap)
	assert.Equal(t, 12, c.View().LocalScore)

	// A dirty local tally is never clobbered by a lagging record.
	c.ApplyDelta(3)
	lagging := testSnap(models.SessionStatusPlaying, 1)
	lagging.Scores = map[string]int{"a": 12}
	c.HandleUpdate(lagging)
	assert.Equal(t, 15, c.View().LocalScore)
}

func TestHandleUpdateRoundChangeClearsInFlightFlags(t *testing.T) {
	c, _ := newTestCoordinator(&mockAuthority{})

	c.HandleUpdate(testSnap(models.SessionStatusPlaying, 1))
	c.mu.Lock()
	c.timeUp = true
	c.playRequested = true
	c.advanceInFlight = true
	c.mu.Unlock()

	c.HandleUpdate(testSnap(models.SessionStatusCountdown, 2))

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.False(t, c.timeUp)
	assert.False(t, c.playRequested)
	assert.False(t, c.advanceInFlight)
}
