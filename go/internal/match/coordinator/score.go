package coordinator

import (
	"context"

	"github.com/playmesh/matchsync/go/internal/models"
	"github.com/rs/zerolog/log"
)

// scoreState tracks the locally optimistic score against the last value
// flushed to the authority. Reset points: a new round (COUNTDOWN with
// the authoritative score back at baseline) clears all three fields.
type scoreState struct {
	committed int  // last value sent to the authority
	pending   int  // current optimistic value
	dirty     bool // pending diverged and was not yet overwritten by an adopted authoritative value
}

// ApplyDelta adds a point delta to the local score, clamped at zero.
// Input is accepted only while the round is actually playable; after
// the local time-up cutoff further deltas are dropped.
func (c *Coordinator) ApplyDelta(amount int) {
	c.mu.Lock()
	if c.snap == nil || c.snap.Status != models.SessionStatusPlaying || c.timeUp {
		c.mu.Unlock()
		return
	}

	next := c.score.pending + amount
	if next < 0 {
		next = 0
	}
	c.score.pending = next
	c.score.dirty = true
	c.mu.Unlock()

	c.publishState()
}

// flushScore sends the current value as an absolute write if it differs
// from the last value sent. Absolute (not incremental) writes keep the
// operation idempotent under retries and duplicates.
func (c *Coordinator) flushScore(ctx context.Context) error {
	c.mu.Lock()
	pending := c.score.pending
	if pending == c.score.committed {
		c.mu.Unlock()
		return nil
	}
	roomID := c.roomID
	c.mu.Unlock()

	if err := c.authority.SetScore(ctx, roomID, c.selfID, pending); err != nil {
		return err
	}

	c.mu.Lock()
	c.score.committed = pending
	if c.score.pending == c.score.committed {
		c.score.dirty = false
	}
	c.mu.Unlock()

	log.Debug().
		Str("room_id", roomID).
		Int("score", pending).
		Msg("flushed score")
	return nil
}

// runScoreFlusher reconciles the optimistic score on a fixed period.
// Failures are left for the next cycle.
func (c *Coordinator) runScoreFlusher(ctx context.Context) {
	defer c.wg.Done()

	ticker := c.clock.NewTicker(c.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if err := c.flushScore(ctx); err != nil {
				log.Debug().Err(err).Str("room_id", c.roomID).Msg("score flush failed")
			}
		}
	}
}
