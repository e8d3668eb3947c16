package transport

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/Alvington/ImposterGame/internal/protocol"
)

// wsConn wraps one websocket link with a buffered send channel so a
// slow peer never blocks a broadcast.
type wsConn struct {
	ws   *websocket.Conn
	send chan []byte
	once sync.Once
	logf func(string, ...any)
}

func newWSConn(ws *websocket.Conn, logf func(string, ...any)) *wsConn {
	return &wsConn{
		ws:   ws,
		send: make(chan []byte, 16),
		logf: logf,
	}
}

func (c *wsConn) RemoteAddr() string {
	return c.ws.RemoteAddr().String()
}

// Send encodes and queues one message. A closed or backed-up link
// drops the message; the caller treats that as "peer missed this
// broadcast" and moves on.
func (c *wsConn) Send(m protocol.Message) bool {
	frame, err := protocol.Encode(m)
	if err != nil {
		c.logf("NET: encode error: %v", err)
		return false
	}
	defer func() {
		// send raced with Close; count it as a drop
		_ = recover()
	}()
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *wsConn) Close() error {
	var err error
	c.once.Do(func() {
		close(c.send)
		err = c.ws.Close()
	})
	return err
}

func (c *wsConn) writePump() {
	for frame := range c.send {
		if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
	}
	_ = c.ws.Close()
}

// readPump decodes inbound frames, dropping anything that fails
// boundary validation, and reports the link on left when it dies.
func (c *wsConn) readPump(inbox chan<- Inbound, left chan<- Conn) {
	defer func() {
		_ = c.Close()
		left <- c
	}()

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		msg, err := protocol.Decode(data)
		if err != nil {
			c.logf("NET: dropping message from %s: %v", c.RemoteAddr(), err)
			continue
		}
		inbox <- Inbound{From: c, Msg: msg}
	}
}
