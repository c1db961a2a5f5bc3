package invite

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/playmesh/matchsync/go/internal/models"
	"github.com/rs/zerolog/log"
)

const fallbackSenderName = "Unknown player"

// Config holds invite handling knobs.
type Config struct {
	PollInterval time.Duration // unread-invite poll period
	PollWindow   time.Duration // recency window for polled invites
	// Practice sessions block incoming invites while still relevant: a
	// WAITING one younger than RecentWaitingWindow, or any later-phase
	// one younger than RunningWindow.
	RecentWaitingWindow time.Duration
	RunningWindow       time.Duration
}

// DefaultConfig returns the production invite configuration.
func DefaultConfig() Config {
	return Config{
		PollInterval:        10 * time.Second,
		PollWindow:          5 * time.Minute,
		RecentWaitingWindow: 2 * time.Minute,
		RunningWindow:       30 * time.Minute,
	}
}

// Coordinator delivers, deduplicates, and resolves match invitations
// for one local peer, independent of any active session coordinator.
//
// The processed set is in-memory and grows for the lifetime of the
// coordinator; there is no eviction by age.
type Coordinator struct {
	authority Authority
	feed      Feed
	prompter  Prompter
	navigator Navigator
	clock     clockwork.Clock
	selfID    string
	cfg       Config

	mu        sync.Mutex
	processed map[string]struct{}

	cancel context.CancelFunc
	unsub  func()
	wg     sync.WaitGroup
}

func New(authority Authority, feed Feed, prompter Prompter, navigator Navigator, selfID string, cfg Config) *Coordinator {
	return &Coordinator{
		authority: authority,
		feed:      feed,
		prompter:  prompter,
		navigator: navigator,
		clock:     clockwork.NewRealClock(),
		selfID:    selfID,
		cfg:       cfg,
		processed: make(map[string]struct{}),
	}
}

// WithClock swaps the clock, for tests. Must be called before Start.
func (c *Coordinator) WithClock(clock clockwork.Clock) *Coordinator {
	c.clock = clock
	return c
}

// Start subscribes to pushed invites and starts the unread-message poll
// fallback. Without an authenticated identity the coordinator stays
// inert.
func (c *Coordinator) Start(ctx context.Context) error {
	if c.selfID == "" {
		log.Warn().Msg("no local identity; invite coordinator stays inert")
		return nil
	}

	ctx, c.cancel = context.WithCancel(ctx)

	unsub, err := c.feed.SubscribeInvites(c.selfID, func(inv models.Invite) {
		c.HandleInvite(ctx, inv)
	})
	if err != nil {
		return err
	}
	c.unsub = unsub

	c.wg.Add(1)
	go c.runPoller(ctx)

	log.Info().Str("self_id", c.selfID).Msg("invite coordinator started")
	return nil
}

// Close releases the subscription, stops the poller, and waits for any
// in-flight invite handling to finish.
func (c *Coordinator) Close() {
	if c.cancel != nil {
		c.cancel()
	}
	if c.unsub != nil {
		c.unsub()
		c.unsub = nil
	}
	c.wg.Wait()
}

// runPoller periodically re-reads recent unread invites; both delivery
// paths funnel into HandleInvite's dedup.
func (c *Coordinator) runPoller(ctx context.Context) {
	defer c.wg.Done()

	ticker := c.clock.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			since := c.clock.Now().Add(-c.cfg.PollWindow)
			invites, err := c.authority.FetchUnreadInvites(ctx, c.selfID, since)
			if err != nil {
				log.Debug().Err(err).Msg("invite poll failed")
				continue
			}
			for _, inv := range invites {
				c.HandleInvite(ctx, inv)
			}
		}
	}
}

// HandleInvite is the idempotent entry point for both delivery paths.
// The first delivery of an invite id wins; each accepted candidate is
// resolved on its own goroutine so a pending user prompt never blocks
// other invites.
func (c *Coordinator) HandleInvite(ctx context.Context, inv models.Invite) {
	if inv.ID == "" || inv.RoomID == "" || inv.SenderID == "" {
		log.Debug().Msg("dropping malformed invite")
		return
	}
	if inv.ReceiverID != c.selfID {
		return
	}

	c.mu.Lock()
	if _, done := c.processed[inv.ID]; done {
		c.mu.Unlock()
		return
	}
	// Marked before resolving the outcome so a concurrent redelivery
	// can never trigger a second terminal action.
	c.processed[inv.ID] = struct{}{}
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.process(ctx, inv)
	}()
}

func (c *Coordinator) process(ctx context.Context, inv models.Invite) {
	log.Info().
		Str("invite_id", inv.ID).
		Str("sender_id", inv.SenderID).
		Str("room_id", inv.RoomID).
		Msg("processing invite")

	if err := c.authority.MarkMessageRead(ctx, inv.ID); err != nil {
		log.Debug().Err(err).Str("invite_id", inv.ID).Msg("mark read failed")
	}

	active, err := c.authority.FetchActiveSession(ctx, c.selfID)
	if err != nil {
		log.Error().Err(err).Str("invite_id", inv.ID).Msg("active session lookup failed")
		return
	}

	if active != nil && !active.Mode.Solo() {
		if active.RoomID != inv.RoomID {
			// Already committed elsewhere: the invite loses.
			c.respondBusy(ctx, inv)
			return
		}
		if active.Status != models.SessionStatusWaiting {
			// Same room but already underway: the invite was actioned
			// through another path. Expected outcome, not an error.
			log.Info().Str("invite_id", inv.ID).Msg("ignoring stale invite for running session")
			return
		}
	}

	if active != nil && active.Mode.Solo() && c.practiceBlocks(active) {
		c.respondBusy(ctx, inv)
		return
	}

	senderName, err := c.authority.FetchProfileDisplayName(ctx, inv.SenderID)
	if err != nil || senderName == "" {
		senderName = fallbackSenderName
	}

	accepted, err := c.prompter.PromptInvite(ctx, inv, senderName)
	if err != nil {
		log.Debug().Err(err).Str("invite_id", inv.ID).Msg("prompt ended without answer")
		accepted = false
	}

	if !accepted {
		if err := c.authority.SendInviteResponse(ctx, inv.SenderID, inv.RoomID, models.InviteRejected); err != nil {
			log.Error().Err(err).Str("invite_id", inv.ID).Msg("reject notification failed")
		}
		return
	}

	// Re-verify under acceptance: the target may have been cancelled
	// while the prompt was open.
	target, err := c.authority.FetchSession(ctx, inv.RoomID)
	if err != nil || target == nil || target.Status != models.SessionStatusWaiting {
		c.prompter.NotifyError("This match is no longer available.")
		return
	}

	if err := c.authority.SendInviteResponse(ctx, inv.SenderID, inv.RoomID, models.InviteAccepted); err != nil {
		// Navigation still proceeds; the sender learns through its own poll.
		log.Error().Err(err).Str("invite_id", inv.ID).Msg("accept notification failed")
	}
	c.navigator.EnterSession(inv.RoomID)
}

// practiceBlocks reports whether a solo session is still relevant
// enough to refuse incoming invites.
func (c *Coordinator) practiceBlocks(active *models.ActiveSession) bool {
	age := c.clock.Now().Sub(active.CreatedAt)
	switch active.Status {
	case models.SessionStatusWaiting:
		return age < c.cfg.RecentWaitingWindow
	case models.SessionStatusFinished:
		return false
	default:
		return age < c.cfg.RunningWindow
	}
}

func (c *Coordinator) respondBusy(ctx context.Context, inv models.Invite) {
	if err := c.authority.CancelReservedRoom(ctx, inv.RoomID); err != nil {
		log.Error().Err(err).Str("room_id", inv.RoomID).Msg("cancel reserved room failed")
	}
	if err := c.authority.SendInviteResponse(ctx, inv.SenderID, inv.RoomID, models.InviteBusy); err != nil {
		log.Error().Err(err).Str("invite_id", inv.ID).Msg("busy notification failed")
	}
	log.Info().Str("invite_id", inv.ID).Msg("responded busy")
}
