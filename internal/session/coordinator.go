// Package session keeps one peer's replicated view of a room: who is
// in the lobby, what the settings are, and the round lifecycle
// messages riding on top. Exactly one peer per room is the host and
// holds all write authority; guests mirror whatever the host
// broadcasts, wholesale, with no merge logic.
package session

import (
	"context"
	"strings"
	"sync"

	"github.com/Alvington/ImposterGame/internal/game"
	"github.com/Alvington/ImposterGame/internal/protocol"
	"github.com/Alvington/ImposterGame/internal/transport"
)

// PeerRole is the local peer's authority over the room.
type PeerRole string

const (
	RoleHost  PeerRole = "HOST"
	RoleGuest PeerRole = "GUEST"
)

// Coordinator routes protocol messages to the correct local mutation
// and broadcasts host-originated state to every open link. One
// instance runs per peer for the room's lifetime; behavior differs by
// role.
type Coordinator struct {
	role     PeerRole
	name     string
	peerID   string
	roomCode string

	tr transport.Transport

	mu       sync.RWMutex
	conns    map[transport.Conn]bool
	lobby    []protocol.LobbyPlayer
	settings game.LobbySettings

	events chan Event
	logf   func(string, ...any)
}

// NewHost creates the authoritative coordinator for a room. The host's
// peer id is the room code itself, and the lobby starts with the host
// as its only member.
func NewHost(hostName, roomCode string, tr transport.Transport, logf func(string, ...any)) *Coordinator {
	hostName = strings.TrimSpace(hostName)
	if hostName == "" {
		hostName = "Host"
	}
	return &Coordinator{
		role:     RoleHost,
		name:     hostName,
		peerID:   roomCode,
		roomCode: roomCode,
		tr:       tr,
		conns:    make(map[transport.Conn]bool),
		lobby:    []protocol.LobbyPlayer{{Name: hostName, PeerID: roomCode}},
		settings: game.DefaultSettings(),
		events:   make(chan Event, 64),
		logf:     orNop(logf),
	}
}

// NewGuest creates a mirroring coordinator. The guest's peer id is
// generated locally and introduced to the host via JOIN.
func NewGuest(name, roomCode, peerID string, tr transport.Transport, logf func(string, ...any)) *Coordinator {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Guest"
	}
	return &Coordinator{
		role:     RoleGuest,
		name:     name,
		peerID:   peerID,
		roomCode: roomCode,
		tr:       tr,
		conns:    make(map[transport.Conn]bool),
		settings: game.DefaultSettings(),
		events:   make(chan Event, 64),
		logf:     orNop(logf),
	}
}

func orNop(logf func(string, ...any)) func(string, ...any) {
	if logf == nil {
		return func(string, ...any) {}
	}
	return logf
}

func (c *Coordinator) Role() PeerRole   { return c.role }
func (c *Coordinator) PeerID() string   { return c.peerID }
func (c *Coordinator) Name() string     { return c.name }
func (c *Coordinator) RoomCode() string { return c.roomCode }

// Events is the replicated-state stream the front end drives off.
func (c *Coordinator) Events() <-chan Event { return c.events }

// Lobby is a snapshot of the membership list in host append order.
func (c *Coordinator) Lobby() []protocol.LobbyPlayer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]protocol.LobbyPlayer, len(c.lobby))
	copy(out, c.lobby)
	return out
}

// Settings is a snapshot of the settings mirror.
func (c *Coordinator) Settings() game.LobbySettings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// Run processes link and message events until the context ends. All
// replicated-state mutation happens on this goroutine, one event at a
// time.
func (c *Coordinator) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			_ = c.tr.Close()
			return
		case conn := <-c.tr.Joined():
			c.handleJoined(conn)
		case conn := <-c.tr.Left():
			c.handleLeft(conn)
		case in := <-c.tr.Inbox():
			// register any link that opened before this message so a
			// rebroadcast triggered by it reaches the sender too
			c.drainJoined()
			c.handleMessage(in.Msg, in.From)
		}
	}
}

func (c *Coordinator) drainJoined() {
	for {
		select {
		case conn := <-c.tr.Joined():
			c.handleJoined(conn)
		default:
			return
		}
	}
}

func (c *Coordinator) handleJoined(conn transport.Conn) {
	c.mu.Lock()
	c.conns[conn] = true
	settings := c.settings
	c.mu.Unlock()

	switch c.role {
	case RoleHost:
		// settle the guest's settings mirror before its JOIN arrives
		conn.Send(protocol.SettingsSync{Settings: settings})
	case RoleGuest:
		conn.Send(protocol.Join{Name: c.name, PeerID: c.peerID})
	}
}

func (c *Coordinator) handleLeft(conn transport.Conn) {
	c.mu.Lock()
	delete(c.conns, conn)
	c.mu.Unlock()

	if c.role == RoleGuest {
		// the only link a guest holds is the host; losing it ends the room
		c.emit(ConnectionLost{Err: transport.ErrConnectionLost})
		return
	}
	// A departed guest stays in the membership list: the lobby is
	// append-only under host authority, and a reconnecting peer
	// self-heals from the next full-state broadcast.
	c.logf("ROOM: link to %s closed", conn.RemoteAddr())
}

func (c *Coordinator) handleMessage(msg protocol.Message, from transport.Conn) {
	switch m := msg.(type) {
	case *protocol.Join:
		if c.role != RoleHost {
			return
		}
		c.mu.Lock()
		// a re-sent JOIN (reconnect, or a misbehaving peer) updates the
		// existing entry; a duplicate peer id would make every future
		// lobby broadcast fail validation on every guest
		seat := -1
		for i, p := range c.lobby {
			if p.PeerID == m.PeerID {
				seat = i
				break
			}
		}
		if seat >= 0 {
			c.lobby[seat].Name = m.Name
		} else {
			c.lobby = append(c.lobby, protocol.LobbyPlayer{Name: m.Name, PeerID: m.PeerID})
		}
		list := make([]protocol.LobbyPlayer, len(c.lobby))
		copy(list, c.lobby)
		c.mu.Unlock()

		if seat >= 0 {
			c.logf("ROOM: %s rejoined %s", m.Name, c.roomCode)
		} else {
			c.logf("ROOM: %s joined %s", m.Name, c.roomCode)
		}
		c.broadcast(protocol.LobbyUpdate{Players: list})
		c.emit(LobbyChanged{Players: list})

	case *protocol.LobbyUpdate:
		if c.role != RoleGuest {
			return
		}
		c.mu.Lock()
		c.lobby = append([]protocol.LobbyPlayer(nil), m.Players...)
		c.mu.Unlock()
		c.emit(LobbyChanged{Players: m.Players})

	case *protocol.SettingsSync:
		if c.role != RoleGuest {
			return
		}
		c.mu.Lock()
		c.settings = m.Settings
		c.mu.Unlock()
		c.emit(SettingsChanged{Settings: m.Settings})

	case *protocol.StartGame:
		if c.role != RoleGuest {
			return
		}
		c.emit(RoundStarted{
			Data:     m.GameData,
			Players:  m.Players,
			Duration: m.Duration,
			Category: m.Category,
		})

	case *protocol.VoteSync:
		// any peer may have resolved the vote; everyone else replays
		// it, and the host relays a guest's vote to the other guests
		if c.role == RoleHost {
			c.broadcastExcept(from, *m)
		}
		c.emit(VoteResolved{SuspectIDs: m.SuspectIDs})

	case *protocol.Reset:
		if c.role != RoleGuest {
			return
		}
		c.emit(RoundReset{})

	default:
		c.logf("ROOM: unhandled message %T from %s", msg, from.RemoteAddr())
	}
}

// UpdateSettings stores new settings and replicates them. Guests have
// no write authority, so this is a no-op for them; the host's local
// view is updated before any guest can observe the broadcast.
func (c *Coordinator) UpdateSettings(settings game.LobbySettings) {
	if c.role != RoleHost {
		return
	}
	c.mu.Lock()
	c.settings = settings
	c.mu.Unlock()
	c.broadcast(protocol.SettingsSync{Settings: settings})
}

// AnnounceStart replicates a fully-resolved round to every guest,
// called by the host atomically with its own transition to REVEAL.
func (c *Coordinator) AnnounceStart(data game.GameData, players []game.Player, duration int, category string) {
	if c.role != RoleHost {
		return
	}
	c.broadcast(protocol.StartGame{
		GameData: data,
		Players:  players,
		Duration: duration,
		Category: category,
	})
}

// AnnounceVote replicates a locally-performed elimination. Any peer
// may do this; receivers recompute the identical outcome.
func (c *Coordinator) AnnounceVote(suspectIDs []int) {
	c.broadcast(protocol.VoteSync{SuspectIDs: suspectIDs})
}

// AnnounceReset replicates a round reset. Only the host's reset is
// replicated; the membership list and settings survive it.
func (c *Coordinator) AnnounceReset() {
	if c.role != RoleHost {
		return
	}
	c.broadcast(protocol.Reset{})
}

// broadcast sends to every open link; links that cannot take the
// message right now are skipped, with the next full-state broadcast
// as the recovery path.
func (c *Coordinator) broadcast(msg protocol.Message) {
	c.mu.RLock()
	conns := make([]transport.Conn, 0, len(c.conns))
	for conn := range c.conns {
		conns = append(conns, conn)
	}
	c.mu.RUnlock()

	for _, conn := range conns {
		if !conn.Send(msg) {
			c.logf("ROOM: skipped closed link %s", conn.RemoteAddr())
		}
	}
}

func (c *Coordinator) broadcastExcept(skip transport.Conn, msg protocol.Message) {
	c.mu.RLock()
	conns := make([]transport.Conn, 0, len(c.conns))
	for conn := range c.conns {
		if conn != skip {
			conns = append(conns, conn)
		}
	}
	c.mu.RUnlock()

	for _, conn := range conns {
		if !conn.Send(msg) {
			c.logf("ROOM: skipped closed link %s", conn.RemoteAddr())
		}
	}
}

func (c *Coordinator) emit(ev Event) {
	c.events <- ev
}
