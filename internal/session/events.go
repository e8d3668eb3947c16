package session

import (
	"github.com/Alvington/ImposterGame/internal/game"
	"github.com/Alvington/ImposterGame/internal/protocol"
)

// Event is replicated state surfacing to the front end. The
// coordinator owns the replicas; the front end only ever reacts.
type Event interface{ event() }

// LobbyChanged reports the full membership list after any change.
type LobbyChanged struct {
	Players []protocol.LobbyPlayer
}

// SettingsChanged reports the full settings object after any change.
type SettingsChanged struct {
	Settings game.LobbySettings
}

// RoundStarted carries the host-resolved roster and secret material;
// the receiver adopts it and transitions to REVEAL.
type RoundStarted struct {
	Data     game.GameData
	Players  []game.Player
	Duration int
	Category string
}

// VoteResolved carries the accused seat ids; the receiver reruns the
// deterministic resolution against its roster.
type VoteResolved struct {
	SuspectIDs []int
}

// RoundReset ends the round while the room persists.
type RoundReset struct{}

// ConnectionLost is terminal for the current room; the front end
// returns to mode selection.
type ConnectionLost struct {
	Err error
}

func (LobbyChanged) event()    {}
func (SettingsChanged) event() {}
func (RoundStarted) event()    {}
func (VoteResolved) event()    {}
func (RoundReset) event()      {}
func (ConnectionLost) event()  {}
