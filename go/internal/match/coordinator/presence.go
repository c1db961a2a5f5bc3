package coordinator

import (
	"sort"
	"sync"
)

// PresenceTracker holds the set of peers currently attached to the
// session channel. The roster is eventually consistent: it may
// transiently hold zero, one, or both peers, and every roster-sync
// event replaces it wholesale.
type PresenceTracker struct {
	mu    sync.RWMutex
	peers map[string]struct{}
}

func NewPresenceTracker() *PresenceTracker {
	return &PresenceTracker{
		peers: make(map[string]struct{}),
	}
}

// HandleRoster replaces the tracked roster with the delivered one,
// deduplicating entries.
func (p *PresenceTracker) HandleRoster(peers []string) {
	next := make(map[string]struct{}, len(peers))
	for _, id := range peers {
		if id == "" {
			continue
		}
		next[id] = struct{}{}
	}

	p.mu.Lock()
	p.peers = next
	p.mu.Unlock()
}

// Peers returns a sorted copy of the current roster.
func (p *PresenceTracker) Peers() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]string, 0, len(p.peers))
	for id := range p.peers {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
