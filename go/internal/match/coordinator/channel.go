package coordinator

import (
	"context"
	"time"

	"github.com/playmesh/matchsync/go/internal/models"
	"github.com/rs/zerolog/log"
)

var statusRank = map[models.SessionStatus]int{
	models.SessionStatusWaiting:   0,
	models.SessionStatusCountdown: 1,
	models.SessionStatusPlaying:   2,
	models.SessionStatusRoundEnd:  3,
	models.SessionStatusFinished:  4,
}

// supersedes reports whether next should replace prev. Ordering is
// driven by snapshot content (round index, then status), never by
// delivery order, so duplicated or reordered deliveries converge on the
// same state.
func supersedes(next, prev *models.SessionSnapshot) bool {
	if next.Status == models.SessionStatusFinished {
		return true
	}
	if next.CurrentRound != prev.CurrentRound {
		return next.CurrentRound > prev.CurrentRound
	}
	return statusRank[next.Status] >= statusRank[prev.Status]
}

// HandleUpdate is the idempotent reducer both delivery paths (push and
// poll) funnel into. Applying the same snapshot twice produces the same
// local state; a snapshot older by content than the current one is
// dropped.
func (c *Coordinator) HandleUpdate(snap models.SessionSnapshot) {
	if snap.ID == "" {
		log.Debug().Msg("dropping snapshot without id")
		return
	}
	if c.roomID != "" && snap.ID != c.roomID {
		log.Debug().
			Str("snapshot_id", snap.ID).
			Str("room_id", c.roomID).
			Msg("dropping snapshot for foreign room")
		return
	}

	c.mu.Lock()
	prev := c.snap
	if prev != nil && !supersedes(&snap, prev) {
		c.mu.Unlock()
		return
	}

	// A round, game, or status change invalidates all per-round local
	// state, including a still-set advance in-flight flag.
	if prev == nil ||
		prev.CurrentRound != snap.CurrentRound ||
		prev.GameType != snap.GameType ||
		prev.Status != snap.Status {
		c.timeUp = false
		c.playRequested = false
		c.advanceInFlight = false
	}

	authScore := snap.ScoreFor(c.selfID)
	switch {
	case snap.Status == models.SessionStatusCountdown && authScore == 0:
		// Fresh round at the authority: force a local reset even if the
		// local mutation path lagged and still holds dirty state.
		c.score = scoreState{}
	case !c.score.dirty && authScore >= c.score.pending:
		c.score.pending = authScore
		c.score.committed = authScore
	}

	stored := snap
	c.snap = &stored
	c.mu.Unlock()

	log.Debug().
		Str("room_id", snap.ID).
		Str("status", string(snap.Status)).
		Int("round", snap.CurrentRound).
		Msg("applied session snapshot")
	c.publishState()
}

// runPoller periodically re-fetches the full record as a safety net
// against missed pushes, feeding the same reducer. The interval is
// shorter while the session is still WAITING.
func (c *Coordinator) runPoller(ctx context.Context) {
	defer c.wg.Done()

	timer := c.clock.NewTimer(c.pollInterval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.Chan():
		}

		snap, err := c.authority.FetchSession(ctx, c.roomID)
		if err != nil {
			log.Debug().Err(err).Str("room_id", c.roomID).Msg("session poll failed")
		} else if snap != nil {
			c.HandleUpdate(*snap)
		}

		timer.Reset(c.pollInterval())
	}
}

func (c *Coordinator) pollInterval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap == nil || c.snap.Status == models.SessionStatusWaiting {
		return c.cfg.WaitingPollInterval
	}
	return c.cfg.ActivePollInterval
}
