// Package protocol defines the replication messages exchanged between
// the host and its guests. The wire format is a flat JSON object with a
// "type" tag; Decode validates payloads at the boundary since peers are
// untrusted input.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Alvington/ImposterGame/internal/game"
)

type Type string

const (
	TypeJoin         Type = "JOIN"
	TypeLobbyUpdate  Type = "LOBBY_UPDATE"
	TypeSettingsSync Type = "SETTINGS_SYNC"
	TypeStartGame    Type = "START_GAME"
	TypeVoteSync     Type = "VOTE_SYNC"
	TypeReset        Type = "RESET"
)

var (
	ErrUnknownType = errors.New("unknown message type")
	ErrBadPayload  = errors.New("invalid message payload")
)

// Message is the closed set of replication messages. Every concrete
// type lives in this file; Decode rejects anything else.
type Message interface {
	Tag() Type
	Validate() error
}

// LobbyPlayer is one membership entry as replicated to guests.
type LobbyPlayer struct {
	Name   string `json:"name"`
	PeerID string `json:"peerId"`
}

// Join is sent guest-to-host once the connection opens. The host
// appends the sender to the membership list and rebroadcasts it.
type Join struct {
	Name   string `json:"name"`
	PeerID string `json:"peerId"`
}

func (Join) Tag() Type { return TypeJoin }

func (m Join) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("%w: join without name", ErrBadPayload)
	}
	if m.PeerID == "" {
		return fmt.Errorf("%w: join without peer id", ErrBadPayload)
	}
	return nil
}

// LobbyUpdate carries the host's complete membership list. Guests
// replace their local copy wholesale; there is no merge.
type LobbyUpdate struct {
	Players []LobbyPlayer `json:"players"`
}

func (LobbyUpdate) Tag() Type { return TypeLobbyUpdate }

func (m LobbyUpdate) Validate() error {
	if len(m.Players) == 0 {
		return fmt.Errorf("%w: empty lobby update", ErrBadPayload)
	}
	seen := make(map[string]bool, len(m.Players))
	for _, p := range m.Players {
		if p.PeerID == "" {
			return fmt.Errorf("%w: lobby entry without peer id", ErrBadPayload)
		}
		if seen[p.PeerID] {
			return fmt.Errorf("%w: duplicate peer id %q", ErrBadPayload, p.PeerID)
		}
		seen[p.PeerID] = true
	}
	return nil
}

// SettingsSync carries the host's complete settings object.
type SettingsSync struct {
	Settings game.LobbySettings `json:"settings"`
}

func (SettingsSync) Tag() Type { return TypeSettingsSync }

func (m SettingsSync) Validate() error {
	s := m.Settings
	switch s.Difficulty {
	case game.DifficultyEasy, game.DifficultyAverage, game.DifficultyAdvanced, game.DifficultyExpert:
	default:
		return fmt.Errorf("%w: difficulty %q", ErrBadPayload, s.Difficulty)
	}
	switch s.Strategy {
	case game.StrategyHint, game.StrategyWrongWord, game.StrategyBlind:
	default:
		return fmt.Errorf("%w: strategy %q", ErrBadPayload, s.Strategy)
	}
	if s.NumImposters < 1 {
		return fmt.Errorf("%w: %d imposters", ErrBadPayload, s.NumImposters)
	}
	if s.Duration < 1 {
		return fmt.Errorf("%w: duration %d", ErrBadPayload, s.Duration)
	}
	if s.Category == "" {
		return fmt.Errorf("%w: empty category", ErrBadPayload)
	}
	return nil
}

// StartGame carries a fully-resolved roster plus the round's secret
// material. Guests adopt it as ground truth and never recompute roles.
type StartGame struct {
	GameData game.GameData `json:"gameData"`
	Players  []game.Player `json:"players"`
	Duration int           `json:"duration"`
	Category string        `json:"category"`
}

func (StartGame) Tag() Type { return TypeStartGame }

func (m StartGame) Validate() error {
	if m.GameData.Word == "" {
		return fmt.Errorf("%w: start without word", ErrBadPayload)
	}
	if len(m.Players) < game.MinPlayers || len(m.Players) > game.MaxPlayers {
		return fmt.Errorf("%w: roster of %d", ErrBadPayload, len(m.Players))
	}
	if m.Duration < 1 {
		return fmt.Errorf("%w: duration %d", ErrBadPayload, m.Duration)
	}
	for i, p := range m.Players {
		if p.ID != i {
			return fmt.Errorf("%w: player id %d at seat %d", ErrBadPayload, p.ID, i)
		}
		if p.Role != game.RoleCivilian && p.Role != game.RoleImposter {
			return fmt.Errorf("%w: role %q", ErrBadPayload, p.Role)
		}
	}
	return nil
}

// VoteSync carries the accused seat ids; every receiver reruns the
// deterministic resolution against its replicated roster.
type VoteSync struct {
	SuspectIDs []int `json:"suspectIds"`
}

func (VoteSync) Tag() Type { return TypeVoteSync }

func (m VoteSync) Validate() error {
	if len(m.SuspectIDs) == 0 {
		return fmt.Errorf("%w: empty suspect list", ErrBadPayload)
	}
	seen := make(map[int]bool, len(m.SuspectIDs))
	for _, id := range m.SuspectIDs {
		if id < 0 {
			return fmt.Errorf("%w: suspect id %d", ErrBadPayload, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate suspect id %d", ErrBadPayload, id)
		}
		seen[id] = true
	}
	return nil
}

// Reset ends the round on every peer while leaving the room intact.
type Reset struct{}

func (Reset) Tag() Type       { return TypeReset }
func (Reset) Validate() error { return nil }

// Encode marshals a message with its type tag injected.
func Encode(m Message) ([]byte, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, err
	}
	tag, err := json.Marshal(m.Tag())
	if err != nil {
		return nil, err
	}
	fields["type"] = tag
	return json.Marshal(fields)
}

// Decode parses and validates one wire message. Anything outside the
// closed union, or any payload failing validation, is an error and the
// message must be dropped.
func Decode(data []byte) (Message, error) {
	var env struct {
		Type Type `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	var msg Message
	switch env.Type {
	case TypeJoin:
		msg = &Join{}
	case TypeLobbyUpdate:
		msg = &LobbyUpdate{}
	case TypeSettingsSync:
		msg = &SettingsSync{}
	case TypeStartGame:
		msg = &StartGame{}
	case TypeVoteSync:
		msg = &VoteSync{}
	case TypeReset:
		msg = &Reset{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}

	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return msg, nil
}
