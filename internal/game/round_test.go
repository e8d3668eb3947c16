package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("Player %d", i+1)
	}
	return names
}

func testData() GameData {
	return GameData{
		Word:         "Elephant",
		Hint:         "A gray giant with a memory",
		ImposterWord: "Rhino",
		Strategy:     StrategyHint,
	}
}

func TestAssignRolesCounts(t *testing.T) {
	for n := MinPlayers; n <= MaxPlayers; n++ {
		for k := 1; k <= n/2; k++ {
			players, err := AssignRoles(testNames(n), nil, k, testData())
			require.NoError(t, err, "n=%d k=%d", n, k)
			require.Len(t, players, n)

			imposters := 0
			for i, p := range players {
				assert.Equal(t, i, p.ID)
				assert.False(t, p.IsEliminated)
				if p.Role == RoleImposter {
					imposters++
				} else {
					assert.Equal(t, RoleCivilian, p.Role)
				}
			}
			assert.Equal(t, k, imposters, "n=%d k=%d", n, k)
		}
	}
}

func TestAssignRolesBounds(t *testing.T) {
	data := testData()

	_, err := AssignRoles(testNames(2), nil, 1, data)
	assert.ErrorIs(t, err, ErrPlayerCount)

	_, err = AssignRoles(testNames(13), nil, 1, data)
	assert.ErrorIs(t, err, ErrPlayerCount)

	_, err = AssignRoles(testNames(4), nil, 3, data)
	assert.ErrorIs(t, err, ErrImposterCount)

	_, err = AssignRoles(testNames(4), nil, 0, data)
	assert.ErrorIs(t, err, ErrImposterCount)

	_, err = AssignRoles(testNames(4), []string{"a", "b"}, 1, data)
	assert.ErrorIs(t, err, ErrPlayerCount)
}

func TestAssignRolesShuffleIsRoughlyUniform(t *testing.T) {
	const (
		trials = 20000
		n      = 4
		k      = 1
	)
	hits := make([]int, n)
	for i := 0; i < trials; i++ {
		players, err := AssignRoles(testNames(n), nil, k, testData())
		require.NoError(t, err)
		for _, p := range players {
			if p.Role == RoleImposter {
				hits[p.ID]++
			}
		}
	}

	// each seat should be the imposter with probability ~ k/n
	expected := float64(trials) * float64(k) / float64(n)
	for seat, count := range hits {
		assert.InDelta(t, expected, float64(count), expected*0.15, "seat %d", seat)
	}
}

func TestSecretsByStrategy(t *testing.T) {
	tests := []struct {
		name         string
		data         GameData
		wantImposter string
	}{
		{
			name:         "blind ignores god data",
			data:         GameData{Word: "Sushi", Hint: "raw fish", ImposterWord: "Sashimi", Strategy: StrategyBlind},
			wantImposter: SecretBlind,
		},
		{
			name:         "wrong word",
			data:         GameData{Word: "Sushi", ImposterWord: "Sashimi", Strategy: StrategyWrongWord},
			wantImposter: "Sashimi",
		},
		{
			name:         "wrong word fallback",
			data:         GameData{Word: "Sushi", Strategy: StrategyWrongWord},
			wantImposter: SecretNoWrongWord,
		},
		{
			name:         "hint",
			data:         GameData{Word: "Sushi", Hint: "raw fish", Strategy: StrategyHint},
			wantImposter: "raw fish",
		},
		{
			name:         "hint fallback",
			data:         GameData{Word: "Sushi", Strategy: StrategyHint},
			wantImposter: SecretNoHint,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			players, err := AssignRoles(testNames(5), nil, 2, tt.data)
			require.NoError(t, err)
			for _, p := range players {
				if p.Role == RoleImposter {
					assert.Equal(t, tt.wantImposter, p.Secret)
				} else {
					assert.Equal(t, "Sushi", p.Secret)
				}
			}
		})
	}
}

func TestAssignRolesBlankNamesAndPeerIDs(t *testing.T) {
	players, err := AssignRoles([]string{"Alice", "  ", "Carol"}, []string{"p0", "p1", "p2"}, 1, testData())
	require.NoError(t, err)
	assert.Equal(t, "Alice", players[0].Name)
	assert.Equal(t, "Player 2", players[1].Name)
	assert.Equal(t, "p2", players[2].PeerID)
}

// fixedRoster is a four-player round with imposters at seats 1 and 3.
func fixedRoster() []Player {
	roles := []Role{RoleCivilian, RoleImposter, RoleCivilian, RoleImposter}
	players := make([]Player, len(roles))
	for i, role := range roles {
		players[i] = Player{ID: i, Name: fmt.Sprintf("Player %d", i+1), Role: role, Secret: "x"}
	}
	return players
}

func TestResolveCivilianWin(t *testing.T) {
	updated, winner, err := Resolve(fixedRoster(), []int{1, 3})
	require.NoError(t, err)
	assert.Equal(t, RoleCivilian, winner)
	assert.False(t, updated[0].IsEliminated)
	assert.True(t, updated[1].IsEliminated)
	assert.False(t, updated[2].IsEliminated)
	assert.True(t, updated[3].IsEliminated)
}

func TestResolveImposterWinOnMixedAccusation(t *testing.T) {
	// player 3 is an imposter but player 0 is not: no partial credit
	updated, winner, err := Resolve(fixedRoster(), []int{0, 3})
	require.NoError(t, err)
	assert.Equal(t, RoleImposter, winner)
	assert.True(t, updated[0].IsEliminated)
	assert.True(t, updated[3].IsEliminated)
	assert.False(t, updated[1].IsEliminated)
}

func TestResolveCardinalityMismatch(t *testing.T) {
	_, _, err := Resolve(fixedRoster(), []int{1})
	assert.ErrorIs(t, err, ErrSuspectCount)

	_, _, err = Resolve(fixedRoster(), []int{0, 1, 3})
	assert.ErrorIs(t, err, ErrSuspectCount)
}

func TestResolveIsIdempotent(t *testing.T) {
	players := fixedRoster()
	first, winner1, err := Resolve(players, []int{1, 2})
	require.NoError(t, err)
	second, winner2, err := Resolve(players, []int{1, 2})
	require.NoError(t, err)

	assert.Equal(t, winner1, winner2)
	assert.Equal(t, first, second)
}

func TestRoundLifecycle(t *testing.T) {
	r := NewRound()
	assert.Equal(t, StateSetup, r.State())

	players, err := AssignRoles(testNames(4), nil, 1, testData())
	require.NoError(t, err)
	require.NoError(t, r.Begin(players, testData(), 120, "Animals & Nature"))
	assert.Equal(t, StateReveal, r.State())
	assert.Equal(t, 120, r.Duration())
	assert.Equal(t, "Animals & Nature", r.Category())

	// double begin is rejected
	assert.ErrorIs(t, r.Begin(players, testData(), 120, "Animals & Nature"), ErrBadTransition)

	// every seat must acknowledge before play starts
	for i := 0; i < 3; i++ {
		assert.Equal(t, i, r.RevealIndex())
		done, err := r.AcknowledgeReveal()
		require.NoError(t, err)
		assert.False(t, done)
	}
	done, err := r.AcknowledgeReveal()
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, StatePlaying, r.State())

	require.NoError(t, r.OpenVoting())
	assert.ErrorIs(t, r.OpenVoting(), ErrBadTransition)

	suspects := []int{imposterSeat(r.Players())}
	winner, err := r.ResolveVote(suspects)
	require.NoError(t, err)
	assert.Equal(t, RoleCivilian, winner)
	assert.Equal(t, StateWinner, r.State())

	// play again goes straight back into reveal with a fresh roster
	require.NoError(t, r.Begin(players, testData(), 120, "Animals & Nature"))
	assert.Equal(t, StateReveal, r.State())
	for _, p := range r.Players() {
		assert.False(t, p.IsEliminated)
	}
	assert.Equal(t, Role(""), r.Winner())
}

func TestRoundOnlineAcknowledge(t *testing.T) {
	r := NewRound()
	players, err := AssignRoles(testNames(3), []string{"host", "g1", "g2"}, 1, testData())
	require.NoError(t, err)
	require.NoError(t, r.Begin(players, testData(), 60, "Food"))

	p, found := r.PlayerByPeer("g2")
	assert.True(t, found)
	assert.Equal(t, 2, p.ID)

	// unknown peer falls back to the first seat
	p, found = r.PlayerByPeer("stranger")
	assert.False(t, found)
	assert.Equal(t, 0, p.ID)

	require.NoError(t, r.AcknowledgeOwnReveal())
	assert.Equal(t, StatePlaying, r.State())
	assert.ErrorIs(t, r.AcknowledgeOwnReveal(), ErrBadTransition)
}

func TestRoundResetClearsRoundScopedState(t *testing.T) {
	r := NewRound()
	players, err := AssignRoles(testNames(4), nil, 2, testData())
	require.NoError(t, err)
	require.NoError(t, r.Begin(players, testData(), 60, "Food"))
	r.Reset()

	assert.Equal(t, StateSetup, r.State())
	assert.Empty(t, r.Players())
	assert.Nil(t, r.Data())
	assert.Equal(t, Role(""), r.Winner())
	assert.Equal(t, 0, r.RevealIndex())
}

func TestVoteBlockedDuringReveal(t *testing.T) {
	r := NewRound()
	players, err := AssignRoles(testNames(4), nil, 1, testData())
	require.NoError(t, err)
	require.NoError(t, r.Begin(players, testData(), 60, "Food"))

	_, err = r.ResolveVote([]int{0})
	assert.ErrorIs(t, err, ErrBadTransition)
}

func imposterSeat(players []Player) int {
	for _, p := range players {
		if p.Role == RoleImposter {
			return p.ID
		}
	}
	return -1
}
