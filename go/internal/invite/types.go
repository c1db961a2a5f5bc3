package invite

import (
	"context"
	"time"

	"github.com/playmesh/matchsync/go/internal/models"
)

// Authority defines what invite handling needs from the authoritative
// store.
type Authority interface {
	FetchSession(ctx context.Context, roomID string) (*models.SessionSnapshot, error)
	FetchActiveSession(ctx context.Context, playerID string) (*models.ActiveSession, error)
	CancelReservedRoom(ctx context.Context, roomID string) error
	SendInviteResponse(ctx context.Context, senderID, roomID string, kind models.InviteResponseKind) error
	MarkMessageRead(ctx context.Context, messageID string) error
	FetchProfileDisplayName(ctx context.Context, playerID string) (string, error)
	FetchUnreadInvites(ctx context.Context, playerID string, since time.Time) ([]models.Invite, error)
}

// Feed is the push side of invite delivery.
type Feed interface {
	SubscribeInvites(playerID string, fn func(models.Invite)) (func(), error)
}

// Prompter presents the blocking accept/reject decision to the user.
// PromptInvite suspends the calling goroutine (one per invite) until
// the user answers, the prompt times out, or ctx is cancelled.
type Prompter interface {
	PromptInvite(ctx context.Context, inv models.Invite, senderName string) (accepted bool, err error)
	NotifyError(message string)
}

// Navigator hands control to the session UI once an invite is accepted.
type Navigator interface {
	EnterSession(roomID string)
}
