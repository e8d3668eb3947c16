package game

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// AssignRoles builds the roster for a new round: exactly numImposters
// entries are imposters, placed by a uniform shuffle, and each player's
// secret is derived from the game data and strategy. peerIDs may be nil
// for pass-and-play; otherwise it must be parallel to names.
func AssignRoles(names []string, peerIDs []string, numImposters int, data GameData) ([]Player, error) {
	n := len(names)
	if n < MinPlayers || n > MaxPlayers {
		return nil, fmt.Errorf("%w: %d players", ErrPlayerCount, n)
	}
	if numImposters < 1 || numImposters > n/2 {
		return nil, fmt.Errorf("%w: %d imposters for %d players", ErrImposterCount, numImposters, n)
	}
	if peerIDs != nil && len(peerIDs) != n {
		return nil, fmt.Errorf("%w: %d names, %d peer ids", ErrPlayerCount, n, len(peerIDs))
	}

	roles := make([]Role, 0, n)
	for i := 0; i < numImposters; i++ {
		roles = append(roles, RoleImposter)
	}
	for i := 0; i < n-numImposters; i++ {
		roles = append(roles, RoleCivilian)
	}
	shuffleRoles(roles)

	players := make([]Player, n)
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("Player %d", i+1)
		}
		p := Player{
			ID:     i,
			Name:   name,
			Role:   roles[i],
			Secret: secretFor(roles[i], data),
		}
		if peerIDs != nil {
			p.PeerID = peerIDs[i]
		}
		players[i] = p
	}
	return players, nil
}

// shuffleRoles is a Fisher-Yates shuffle backed by crypto/rand, so the
// imposter positions are unpredictable even to whoever reads the code.
func shuffleRoles(roles []Role) {
	for i := len(roles) - 1; i > 0; i-- {
		r, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			continue
		}
		j := int(r.Int64())
		roles[i], roles[j] = roles[j], roles[i]
	}
}

func secretFor(role Role, data GameData) string {
	if role == RoleCivilian {
		return data.Word
	}
	switch data.Strategy {
	case StrategyBlind:
		return SecretBlind
	case StrategyWrongWord:
		if data.ImposterWord != "" {
			return data.ImposterWord
		}
		return SecretNoWrongWord
	default:
		if data.Hint != "" {
			return data.Hint
		}
		return SecretNoHint
	}
}

// Resolve computes the outcome of a vote. It is a pure function of the
// roster and the suspect set, so every peer that runs it on the same
// inputs reaches the same verdict. Civilians win iff the accusation set
// exactly equals the imposter set; the returned roster has exactly the
// accused marked eliminated.
func Resolve(players []Player, suspectIDs []int) ([]Player, Role, error) {
	imposters := 0
	for _, p := range players {
		if p.Role == RoleImposter {
			imposters++
		}
	}
	if len(suspectIDs) != imposters {
		return nil, "", fmt.Errorf("%w: accused %d of %d imposters", ErrSuspectCount, len(suspectIDs), imposters)
	}

	accused := make(map[int]bool, len(suspectIDs))
	for _, id := range suspectIDs {
		accused[id] = true
	}

	updated := make([]Player, len(players))
	allAccusedAreImposters := true
	caught := 0
	for i, p := range players {
		p.IsEliminated = accused[p.ID]
		if p.IsEliminated {
			if p.Role == RoleImposter {
				caught++
			} else {
				allAccusedAreImposters = false
			}
		}
		updated[i] = p
	}

	winner := RoleImposter
	if allAccusedAreImposters && caught == imposters {
		winner = RoleCivilian
	}
	return updated, winner, nil
}

// Round is the explicit lifecycle machine for one play-through. All
// mutation goes through its transition methods; callers only ever see
// copies of the roster.
type Round struct {
	state     State
	players   []Player
	data      *GameData
	winner    Role
	duration  int
	category  string
	revealIdx int
}

func NewRound() *Round {
	return &Round{state: StateSetup}
}

func (r *Round) State() State     { return r.state }
func (r *Round) Winner() Role     { return r.winner }
func (r *Round) Duration() int    { return r.duration }
func (r *Round) Category() string { return r.category }

func (r *Round) Data() *GameData {
	if r.data == nil {
		return nil
	}
	d := *r.data
	return &d
}

func (r *Round) Players() []Player {
	out := make([]Player, len(r.players))
	copy(out, r.players)
	return out
}

// Begin adopts a fully-resolved roster and transitions to REVEAL. The
// winner-to-reveal edge covers "play again" with the previous config.
func (r *Round) Begin(players []Player, data GameData, duration int, category string) error {
	if !r.state.CanTransitionTo(StateReveal) {
		return fmt.Errorf("%w: %s -> %s", ErrBadTransition, r.state, StateReveal)
	}
	r.players = make([]Player, len(players))
	copy(r.players, players)
	r.data = &data
	r.winner = ""
	r.duration = duration
	r.category = category
	r.revealIdx = 0
	r.state = StateReveal
	return nil
}

// RevealIndex is the seat currently viewing its secret in
// pass-and-play mode.
func (r *Round) RevealIndex() int { return r.revealIdx }

// AcknowledgeReveal records that the current pass-and-play viewer has
// seen their secret. After the last player it transitions to PLAYING;
// until then it only advances the seat index.
func (r *Round) AcknowledgeReveal() (done bool, err error) {
	if r.state != StateReveal {
		return false, fmt.Errorf("%w: reveal ack in %s", ErrBadTransition, r.state)
	}
	if r.revealIdx < len(r.players)-1 {
		r.revealIdx++
		return false, nil
	}
	r.state = StatePlaying
	return true, nil
}

// AcknowledgeOwnReveal is the networked-mode acknowledgment: each peer
// views only its own secret and moves straight to PLAYING.
func (r *Round) AcknowledgeOwnReveal() error {
	if r.state != StateReveal {
		return fmt.Errorf("%w: reveal ack in %s", ErrBadTransition, r.state)
	}
	r.state = StatePlaying
	return nil
}

// OpenVoting enters the voting sub-phase, either on user request or
// when the countdown expires. Re-opening is rejected so an expiring
// timer cannot re-trigger it.
func (r *Round) OpenVoting() error {
	if !r.state.CanTransitionTo(StateVoting) {
		return fmt.Errorf("%w: %s -> %s", ErrBadTransition, r.state, StateVoting)
	}
	r.state = StateVoting
	return nil
}

// ResolveVote applies the deterministic resolution and transitions to
// WINNER. The suspect count must equal the imposter count.
func (r *Round) ResolveVote(suspectIDs []int) (Role, error) {
	if !r.state.CanTransitionTo(StateWinner) {
		return "", fmt.Errorf("%w: %s -> %s", ErrBadTransition, r.state, StateWinner)
	}
	updated, winner, err := Resolve(r.players, suspectIDs)
	if err != nil {
		return "", err
	}
	r.players = updated
	r.winner = winner
	r.state = StateWinner
	return winner, nil
}

// PlayerByPeer finds the local player's seat in a replicated roster,
// falling back to the first seat when the peer id is unknown.
func (r *Round) PlayerByPeer(peerID string) (Player, bool) {
	for _, p := range r.players {
		if p.PeerID == peerID {
			return p, true
		}
	}
	if len(r.players) > 0 {
		return r.players[0], false
	}
	return Player{}, false
}

// Reset discards all round-scoped state and returns to SETUP. Lobby
// membership and settings live outside the round and are untouched.
func (r *Round) Reset() {
	r.state = StateSetup
	r.players = nil
	r.data = nil
	r.winner = ""
	r.revealIdx = 0
}
