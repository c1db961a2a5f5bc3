package coordinator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresenceTrackerReplacesRosterWholesale(t *testing.T) {
	p := NewPresenceTracker()
	assert.Empty(t, p.Peers())

	p.HandleRoster([]string{"b", "a", "a", ""})
	assert.Equal(t, []string{"a", "b"}, p.Peers())

	// Sync events carry the whole roster; a departure shows up as a
	// shorter list, not a removal delta.
	p.HandleRoster([]string{"b"})
	assert.Equal(t, []string{"b"}, p.Peers())

	p.HandleRoster(nil)
	assert.Empty(t, p.Peers())
}
