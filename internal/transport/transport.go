// Package transport establishes and owns the peer links a room runs
// over. The host end is a websocket listener addressed by room code;
// guests dial it directly. Once open, each link is a reliable, ordered,
// message-oriented channel.
package transport

import (
	"context"
	"errors"

	"github.com/Alvington/ImposterGame/internal/protocol"
)

var (
	// ErrConnection means the local network identity could not be
	// opened (e.g. the listen address is taken).
	ErrConnection = errors.New("connection failed")
	// ErrRoomNotFound means the target room code is unreachable or
	// unknown. Never retried automatically.
	ErrRoomNotFound = errors.New("room not found")
	// ErrConnectionLost means an established link closed unexpectedly.
	ErrConnectionLost = errors.New("connection lost")
)

// Conn is one open peer link. Send is best-effort: a link that is
// closed or backed up drops the message and reports false; the next
// full-state broadcast is the recovery mechanism, not redelivery.
type Conn interface {
	Send(protocol.Message) bool
	Close() error
	RemoteAddr() string
}

// Inbound is a decoded, validated message with the link it arrived on.
type Inbound struct {
	From Conn
	Msg  protocol.Message
}

// Transport is one peer's side of a room: the host end accepts many
// links, a guest end holds exactly one. Start must be called before
// reading any channel, and a previous transport must be closed before
// a new one is started.
type Transport interface {
	Start(ctx context.Context) error
	Joined() <-chan Conn
	Left() <-chan Conn
	Inbox() <-chan Inbound
	Close() error
}
