package coordinator

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/playmesh/matchsync/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Config holds the coordinator's timing knobs.
type Config struct {
	TickInterval        time.Duration // phase ticker period
	FlushInterval       time.Duration // score flush period
	GracePeriod         time.Duration // delay past a deadline before the host finalizes
	WaitingPollInterval time.Duration // session poll period while WAITING
	ActivePollInterval  time.Duration // session poll period otherwise
	ResampleInterval    time.Duration // clock offset re-sampling period
}

// DefaultConfig returns the production timing configuration.
func DefaultConfig() Config {
	return Config{
		TickInterval:        500 * time.Millisecond,
		FlushInterval:       300 * time.Millisecond,
		GracePeriod:         1500 * time.Millisecond,
		WaitingPollInterval: 2 * time.Second,
		ActivePollInterval:  5 * time.Second,
		ResampleInterval:    5 * time.Minute,
	}
}

// StateView is the read-only projection of coordinator state handed to
// the UI layer after every mutation.
type StateView struct {
	Snapshot   *models.SessionSnapshot
	Remaining  time.Duration
	LocalScore int
	Host       bool
	TimeUp     bool
}

// Coordinator keeps one client synchronized with the authoritative
// record of one match session. All local mutable state (snapshot,
// roster, score, in-flight flags) is owned by this instance and torn
// down with it.
type Coordinator struct {
	authority Authority
	feed      Feed
	clock     Clock
	clocksync *ClockSync
	presence  *PresenceTracker

	selfID     string
	opponentID string
	roomID     string
	cfg        Config

	mu              sync.Mutex
	snap            *models.SessionSnapshot
	score           scoreState
	remaining       time.Duration
	timeUp          bool
	playRequested   bool
	advanceInFlight bool

	onState func(StateView)

	cancel context.CancelFunc
	unsubs []func()
	wg     sync.WaitGroup
}

// New creates a coordinator for one session. A missing self id or room
// id is not an error; Attach then leaves the coordinator inert.
func New(authority Authority, feed Feed, selfID, opponentID, roomID string, cfg Config) *Coordinator {
	clock := clockwork.NewRealClock()
	return &Coordinator{
		authority:  authority,
		feed:       feed,
		clock:      clock,
		clocksync:  NewClockSync(authority, clock),
		presence:   NewPresenceTracker(),
		selfID:     selfID,
		opponentID: opponentID,
		roomID:     roomID,
		cfg:        cfg,
	}
}

// WithClock swaps the clock, for tests. Must be called before Attach.
func (c *Coordinator) WithClock(clock Clock) *Coordinator {
	c.clock = clock
	c.clocksync = NewClockSync(c.authority, clock)
	return c
}

// SetStateListener registers the callback invoked after every state
// change. Must be called before Attach.
func (c *Coordinator) SetStateListener(fn func(StateView)) {
	c.onState = fn
}

// Attach samples the clock offset, announces presence, subscribes to
// the push channel, and starts the timer loops. Without an identity or
// a room the coordinator stays inert rather than failing.
func (c *Coordinator) Attach(ctx context.Context) error {
	if c.selfID == "" || c.roomID == "" {
		log.Warn().
			Str("self_id", c.selfID).
			Str("room_id", c.roomID).
			Msg("missing identity or room; coordinator stays inert")
		return nil
	}

	ctx, c.cancel = context.WithCancel(ctx)

	c.clocksync.Sample(ctx)

	if err := c.feed.Announce(ctx, c.roomID, c.selfID); err != nil {
		log.Error().Err(err).Str("room_id", c.roomID).Msg("presence announce failed")
	}

	unsubSession, err := c.feed.SubscribeSession(c.roomID, c.HandleUpdate)
	if err != nil {
		return err
	}
	c.unsubs = append(c.unsubs, unsubSession)

	unsubPresence, err := c.feed.SubscribePresence(c.roomID, c.HandleRoster)
	if err != nil {
		c.teardown()
		return err
	}
	c.unsubs = append(c.unsubs, unsubPresence)

	// Prime the local view before the first push lands, and issue the
	// redundant-safe start call if we are the waiting host.
	if snap, err := c.authority.FetchSession(ctx, c.roomID); err != nil {
		log.Error().Err(err).Str("room_id", c.roomID).Msg("initial session fetch failed")
	} else if snap != nil {
		c.HandleUpdate(*snap)
		if snap.Status == models.SessionStatusWaiting && c.isHost(snap) {
			if err := c.authority.StartSession(ctx, c.roomID); err != nil {
				log.Error().Err(err).Str("room_id", c.roomID).Msg("start session failed")
			}
		}
	}

	c.wg.Add(4)
	go c.runTicker(ctx)
	go c.runScoreFlusher(ctx)
	go c.runPoller(ctx)
	go c.runResampler(ctx)

	log.Info().
		Str("room_id", c.roomID).
		Str("self_id", c.selfID).
		Msg("coordinator attached")
	return nil
}

// Close cancels every timer loop and releases every subscription. Safe
// to call on a coordinator that never attached.
func (c *Coordinator) Close() {
	if c.cancel != nil {
		c.cancel()
	}
	c.teardown()
	c.wg.Wait()
	log.Info().Str("room_id", c.roomID).Msg("coordinator closed")
}

func (c *Coordinator) teardown() {
	for _, unsub := range c.unsubs {
		unsub()
	}
	c.unsubs = nil
}

// HandleRoster feeds a presence-sync event into the tracker.
func (c *Coordinator) HandleRoster(peers []string) {
	c.presence.HandleRoster(peers)
	c.publishState()
}

func (c *Coordinator) isHost(snap *models.SessionSnapshot) bool {
	mode := models.SessionModeNormal
	if snap != nil {
		mode = snap.Mode
	}
	return IsHost(c.presence.Peers(), c.selfID, c.opponentID, mode)
}

// runResampler periodically re-samples the clock offset to bound drift
// over long sessions.
func (c *Coordinator) runResampler(ctx context.Context) {
	defer c.wg.Done()

	ticker := c.clock.NewTicker(c.cfg.ResampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			c.clocksync.Sample(ctx)
		}
	}
}

func (c *Coordinator) stateViewLocked() StateView {
	return StateView{
		Snapshot:   c.snap,
		Remaining:  c.remaining,
		LocalScore: c.score.pending,
		Host:       c.isHost(c.snap),
		TimeUp:     c.timeUp,
	}
}

func (c *Coordinator) publishState() {
	if c.onState == nil {
		return
	}
	c.mu.Lock()
	view := c.stateViewLocked()
	c.mu.Unlock()
	c.onState(view)
}

// View returns the current state projection.
func (c *Coordinator) View() StateView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateViewLocked()
}
