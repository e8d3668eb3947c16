package transport

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"
)

// Guest is the joining end of a room: exactly one link, dialed to the
// host's join URL.
type Guest struct {
	url  string
	logf func(string, ...any)

	conn *wsConn

	joined chan Conn
	left   chan Conn
	inbox  chan Inbound
}

func NewGuest(joinURL string, logf func(string, ...any)) *Guest {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Guest{
		url:    joinURL,
		logf:   logf,
		joined: make(chan Conn, 1),
		left:   make(chan Conn, 1),
		inbox:  make(chan Inbound, 64),
	}
}

func (g *Guest) Joined() <-chan Conn   { return g.joined }
func (g *Guest) Left() <-chan Conn     { return g.left }
func (g *Guest) Inbox() <-chan Inbound { return g.inbox }

// Start dials the host. Any dial failure means the room code is
// unreachable or unknown; the caller returns to mode selection rather
// than retrying.
func (g *Guest) Start(ctx context.Context) error {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, g.url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRoomNotFound, err)
	}

	g.conn = newWSConn(ws, g.logf)
	g.logf("NET: connected to %s", g.conn.RemoteAddr())

	g.joined <- g.conn
	go g.conn.writePump()
	go g.conn.readPump(g.inbox, g.left)
	return nil
}

func (g *Guest) Close() error {
	if g.conn == nil {
		return nil
	}
	return g.conn.Close()
}
