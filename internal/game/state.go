package game

// State is the round lifecycle phase of the local peer.
type State string

const (
	StateSetup   State = "SETUP"
	StateReveal  State = "REVEAL"
	StatePlaying State = "PLAYING"
	StateVoting  State = "VOTING"
	StateWinner  State = "WINNER"
)

func (s State) String() string {
	return string(s)
}

// CanTransitionTo reports whether moving from s to target is a legal
// lifecycle step. VOTING is a local sub-phase of PLAYING: every peer
// opens it independently, it is never replicated.
func (s State) CanTransitionTo(target State) bool {
	allowed, ok := transitions[s]
	if !ok {
		return false
	}
	for _, next := range allowed {
		if next == target {
			return true
		}
	}
	return false
}

var transitions = map[State][]State{
	StateSetup:   {StateReveal},
	StateReveal:  {StatePlaying},
	StatePlaying: {StateVoting, StateWinner},
	StateVoting:  {StateWinner},
	StateWinner:  {StateSetup, StateReveal},
}
