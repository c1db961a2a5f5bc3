package coordinator

import (
	"context"
	"time"

	"github.com/playmesh/matchsync/go/internal/models"
	"github.com/rs/zerolog/log"
)

// runTicker drives the local countdown/playing/round-end state machine
// from authoritative timestamps corrected by the clock offset.
func (c *Coordinator) runTicker(ctx context.Context) {
	defer c.wg.Done()

	ticker := c.clock.NewTicker(c.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			c.tick(ctx)
		}
	}
}

// remainingLocked computes the corrected remaining time for the current
// phase. Before the authoritative start the value is held at the full
// phase duration instead of counting down.
func (c *Coordinator) remainingLocked(now time.Time) time.Duration {
	snap := c.snap
	if snap == nil || snap.EndAt == nil {
		return 0
	}
	if snap.StartAt != nil && now.Before(*snap.StartAt) {
		return snap.EndAt.Sub(*snap.StartAt)
	}
	rem := snap.EndAt.Sub(now)
	if rem < 0 {
		return 0
	}
	return rem
}

// tick recomputes remaining time and fires the phase transitions whose
// corrected deadlines have passed. Exactly one advance request can be
// outstanding per transition; the in-flight flag is cleared on failure
// (so the next tick retries) or by the snapshot reflecting the new
// round.
func (c *Coordinator) tick(ctx context.Context) {
	c.mu.Lock()
	snap := c.snap
	if snap == nil {
		c.mu.Unlock()
		return
	}

	now := c.clocksync.Now()
	c.remaining = c.remainingLocked(now)

	switch snap.Status {
	case models.SessionStatusCountdown:
		// Any peer may request the move to PLAYING; the authority makes
		// the call idempotent under concurrent requests.
		if snap.EndAt != nil && !now.Before(*snap.EndAt) && !c.playRequested {
			c.playRequested = true
			roomID := c.roomID
			c.mu.Unlock()

			if err := c.authority.AdvancePhase(ctx, roomID); err != nil {
				log.Error().Err(err).Str("room_id", roomID).Msg("advance phase failed")
				c.mu.Lock()
				c.playRequested = false
				c.mu.Unlock()
			}
			c.publishState()
			return
		}

	case models.SessionStatusPlaying:
		// Local-only fairness cutoff: block further input the instant
		// the corrected clock hits zero, without waiting a round trip.
		if c.remaining <= 0 && !c.timeUp {
			c.timeUp = true
			log.Debug().Str("room_id", c.roomID).Msg("round time up locally")
		}

		if snap.EndAt != nil &&
			now.After(snap.EndAt.Add(c.cfg.GracePeriod)) &&
			!c.advanceInFlight &&
			c.isHost(snap) {
			c.advanceInFlight = true
			roomID := c.roomID
			c.mu.Unlock()

			// The host counts its own last points before finalizing.
			if err := c.flushScore(ctx); err != nil {
				log.Error().Err(err).Str("room_id", roomID).Msg("final score flush failed")
				c.mu.Lock()
				c.advanceInFlight = false
				c.mu.Unlock()
				c.publishState()
				return
			}

			if err := c.authority.AdvanceRound(ctx, roomID); err != nil {
				log.Error().Err(err).Str("room_id", roomID).Msg("advance round failed")
				c.mu.Lock()
				c.advanceInFlight = false
				c.mu.Unlock()
			} else {
				log.Info().
					Str("room_id", roomID).
					Int("round", snap.CurrentRound).
					Msg("requested round advance")
			}
			c.publishState()
			return
		}
	}

	c.mu.Unlock()
	c.publishState()
}
