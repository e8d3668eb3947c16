package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/Alvington/ImposterGame/internal/protocol"
)

// Inproc wires host and guest ends together in-process, for tests and
// single-process demos. Semantics match the websocket transport:
// ordered per-link delivery, best-effort sends, left notifications on
// close.
type Inproc struct {
	mu   sync.Mutex
	host *inprocEnd
	next int
}

func NewInproc() *Inproc {
	return &Inproc{host: newInprocEnd("host")}
}

// HostEnd is the authoritative end of the in-process room.
func (i *Inproc) HostEnd() Transport { return i.host }

// Connect creates a new guest end already linked to the host, as if a
// dial had just completed.
func (i *Inproc) Connect() Transport {
	i.mu.Lock()
	i.next++
	guest := newInprocEnd(fmt.Sprintf("guest-%d", i.next))
	i.mu.Unlock()

	hostView := &inprocConn{local: i.host}
	guestView := &inprocConn{local: guest}
	hostView.peer = guestView
	guestView.peer = hostView

	i.host.joined <- hostView
	guest.joined <- guestView
	return guest
}

type inprocEnd struct {
	name   string
	joined chan Conn
	left   chan Conn
	inbox  chan Inbound
}

func newInprocEnd(name string) *inprocEnd {
	return &inprocEnd{
		name:   name,
		joined: make(chan Conn, 8),
		left:   make(chan Conn, 8),
		inbox:  make(chan Inbound, 64),
	}
}

func (e *inprocEnd) Start(ctx context.Context) error { return nil }
func (e *inprocEnd) Joined() <-chan Conn             { return e.joined }
func (e *inprocEnd) Left() <-chan Conn               { return e.left }
func (e *inprocEnd) Inbox() <-chan Inbound           { return e.inbox }
func (e *inprocEnd) Close() error                    { return nil }

// inprocConn is one side's view of a link: sending delivers into the
// other side's inbox, attributed to the other side's view.
type inprocConn struct {
	local  *inprocEnd
	peer   *inprocConn
	mu     sync.Mutex
	closed bool
}

func (c *inprocConn) RemoteAddr() string { return c.peer.local.name }

func (c *inprocConn) Send(m protocol.Message) bool {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return false
	}
	// round-trip through the codec so tests exercise the wire format
	frame, err := protocol.Encode(m)
	if err != nil {
		return false
	}
	decoded, err := protocol.Decode(frame)
	if err != nil {
		return false
	}
	select {
	case c.peer.local.inbox <- Inbound{From: c.peer, Msg: decoded}:
		return true
	default:
		return false
	}
}

func (c *inprocConn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.peer.mu.Lock()
	peerClosed := c.peer.closed
	c.peer.closed = true
	c.peer.mu.Unlock()

	c.local.left <- c
	if !peerClosed {
		c.peer.local.left <- c.peer
	}
	return nil
}
