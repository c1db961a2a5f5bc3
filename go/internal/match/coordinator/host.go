package coordinator

import (
	"sort"

	"github.com/playmesh/matchsync/go/internal/models"
)

// IsHost decides whether the local peer currently acts as the phase
// driver. It is a pure function of the roster, the two identities, and
// the session mode, and is re-evaluated on every roster change, which
// lets the election self-heal after a disconnect without any protocol.
//
// A brief window where both peers believe themselves host (mid roster
// flux) is tolerated: every host-gated write is idempotent at the
// authority.
func IsHost(roster []string, selfID, opponentID string, mode models.SessionMode) bool {
	// Solo play has no contention.
	if mode.Solo() || models.IsSyntheticOpponent(opponentID) {
		return true
	}

	// Presence not yet synced: deterministic total order on ids.
	if len(roster) == 0 {
		return selfID < opponentID
	}

	present := make([]string, 0, 2)
	for _, id := range roster {
		if id == selfID || id == opponentID {
			present = append(present, id)
		}
	}
	sort.Strings(present)

	// Neither tracked peer is in the roster yet; fall back to the same
	// total order as the unsynced case.
	if len(present) == 0 {
		return selfID < opponentID
	}

	// Automatic promotion when the opponent dropped off.
	if len(present) == 1 {
		return present[0] == selfID
	}

	return present[0] == selfID
}
