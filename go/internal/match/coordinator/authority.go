package coordinator

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/playmesh/matchsync/go/internal/models"
)

// Clock is the interface we use for time operations.
// In production, use clockwork.NewRealClock(). In tests, a FakeClock.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) clockwork.Timer
	NewTicker(d time.Duration) clockwork.Ticker
}

// Authority defines what the coordinator needs from the authoritative
// session store. Every write is safe to repeat; the store's
// transactional discipline makes duplicate calls no-ops.
type Authority interface {
	SampleServerTime(ctx context.Context) (time.Time, error)
	StartSession(ctx context.Context, roomID string) error
	AdvancePhase(ctx context.Context, roomID string) error
	SetScore(ctx context.Context, roomID, playerID string, score int) error
	AdvanceRound(ctx context.Context, roomID string) error
	FetchSession(ctx context.Context, roomID string) (*models.SessionSnapshot, error)
}

// Feed defines what the coordinator needs from the push channel. The
// returned functions release the subscription.
type Feed interface {
	Announce(ctx context.Context, roomID, playerID string) error
	SubscribeSession(roomID string, fn func(models.SessionSnapshot)) (func(), error)
	SubscribePresence(roomID string, fn func(peers []string)) (func(), error)
}
