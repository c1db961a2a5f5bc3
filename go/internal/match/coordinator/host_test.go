package coordinator

import (
	"testing"

	"github.com/playmesh/matchsync/go/internal/models"
)

func TestIsHost(t *testing.T) {
	cases := []struct {
		name       string
		roster     []string
		selfID     string
		opponentID string
		mode       models.SessionMode
		want       bool
	}{
		{
			name:       "both present, self smallest",
			roster:     []string{"a", "b"},
			selfID:     "a",
			opponentID: "b",
			mode:       models.SessionModeNormal,
			want:       true,
		},
		{
			name:       "both present, opponent smallest",
			roster:     []string{"a", "b"},
			selfID:     "b",
			opponentID: "a",
			mode:       models.SessionModeNormal,
			want:       false,
		},
		{
			name:       "only opponent present",
			roster:     []string{"b"},
			selfID:     "a",
			opponentID: "b",
			mode:       models.SessionModeNormal,
			want:       false,
		},
		{
			name:       "empty roster falls back to id order",
			roster:     nil,
			selfID:     "a",
			opponentID: "b",
			mode:       models.SessionModeNormal,
			want:       true,
		},
		{
			name:       "empty roster, self loses id order",
			roster:     nil,
			selfID:     "b",
			opponentID: "a",
			mode:       models.SessionModeNormal,
			want:       false,
		},
		{
			name:       "promotion when opponent disconnected",
			roster:     []string{"b"},
			selfID:     "b",
			opponentID: "a",
			mode:       models.SessionModeNormal,
			want:       true,
		},
		{
			name:       "practice mode always hosts",
			roster:     []string{"b"},
			selfID:     "a",
			opponentID: "b",
			mode:       models.SessionModePractice,
			want:       true,
		},
		{
			name:       "bot opponent always hosts",
			roster:     nil,
			selfID:     "z",
			opponentID: "bot:easy",
			mode:       models.SessionModeNormal,
			want:       true,
		},
		{
			name:       "missing opponent id always hosts",
			roster:     []string{"a"},
			selfID:     "a",
			opponentID: "",
			mode:       models.SessionModeNormal,
			want:       true,
		},
		{
			name:       "roster holds only strangers, id order decides",
			roster:     []string{"x", "y"},
			selfID:     "a",
			opponentID: "b",
			mode:       models.SessionModeRank,
			want:       true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := IsHost(tc.roster, tc.selfID, tc.opponentID, tc.mode)
			if got != tc.want {
				t.Fatalf("IsHost(%v, %q, %q, %s) = %v, want %v",
					tc.roster, tc.selfID, tc.opponentID, tc.mode, got, tc.want)
			}
		})
	}
}

func TestIsHostExactlyOnePeerElected(t *testing.T) {
	rosters := [][]string{
		{"a", "b"},
		{"a"},
		{"b"},
	}
	for _, roster := range rosters {
		aHosts := IsHost(roster, "a", "b", models.SessionModeNormal)
		bHosts := IsHost(roster, "b", "a", models.SessionModeNormal)
		if aHosts == bHosts {
			t.Fatalf("roster %v: both peers decided %v", roster, aHosts)
		}
	}
}
