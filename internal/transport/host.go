package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const httpTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HostOptions configure the host end of a room.
type HostOptions struct {
	Bind    string
	Port    int
	Code    string
	Version string
	Profile bool
	Logf    func(string, ...any)
}

// Host is the authoritative end of a room: a websocket listener that
// accepts guest links for exactly one room code, plus a QR endpoint
// for sharing the invite.
type Host struct {
	opts HostOptions

	ln  net.Listener
	srv *http.Server

	mu    sync.Mutex
	conns map[*wsConn]bool

	joined chan Conn
	left   chan Conn
	inbox  chan Inbound
}

func NewHost(opts HostOptions) *Host {
	if opts.Logf == nil {
		opts.Logf = func(string, ...any) {}
	}
	return &Host{
		opts:   opts,
		conns:  make(map[*wsConn]bool),
		joined: make(chan Conn, 8),
		left:   make(chan Conn, 8),
		inbox:  make(chan Inbound, 64),
	}
}

func (h *Host) Joined() <-chan Conn   { return h.joined }
func (h *Host) Left() <-chan Conn     { return h.left }
func (h *Host) Inbox() <-chan Inbound { return h.inbox }

// Code is the room code this host answers for.
func (h *Host) Code() string { return h.opts.Code }

// Addr is the bound listen address, valid after Start.
func (h *Host) Addr() string {
	if h.ln == nil {
		return ""
	}
	return h.ln.Addr().String()
}

// JoinURL is the websocket URL guests dial, printed and encoded as the
// invite QR.
func (h *Host) JoinURL() string {
	return fmt.Sprintf("ws://%s/room/%s/ws", h.Addr(), h.opts.Code)
}

// Start binds the listener and begins accepting guest links. A bind
// failure is terminal for the room and reported synchronously.
func (h *Host) Start(ctx context.Context) error {
	mux := httprouter.New()
	mux.GET("/room/:code/ws", h.serveWS)
	mux.GET("/room/:code/qr", h.serveQR)
	mux.GET("/healthz", h.serveHealthCheck)
	mux.GET("/version", h.serveVersion)
	if h.opts.Profile {
		registerProfileHandlers(mux)
	}

	addr := net.JoinHostPort(h.opts.Bind, strconv.Itoa(h.opts.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	h.ln = ln

	h.srv = &http.Server{
		Handler:           mux,
		IdleTimeout:       10 * time.Minute,
		ReadHeaderTimeout: httpTimeout,
	}

	go func() {
		err := h.srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.opts.Logf("NET: serve error: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		_ = h.Close()
	}()

	h.opts.Logf("NET: room %s listening on %s", h.opts.Code, h.Addr())
	return nil
}

func (h *Host) Close() error {
	if h.srv == nil {
		return nil
	}

	// Shutdown leaves hijacked connections alone, so close the guest
	// links directly; each one surfaces on Left as it dies.
	h.mu.Lock()
	conns := make([]*wsConn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.Unlock()
	for _, conn := range conns {
		_ = conn.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return h.srv.Shutdown(shutdownCtx)
}

func (h *Host) serveWS(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	code := ps.ByName("code")
	if code != h.opts.Code {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.opts.Logf("NET: upgrade error: %v", err)
		return
	}

	conn := newWSConn(ws, h.opts.Logf)
	h.opts.Logf("NET: guest link from %s", conn.RemoteAddr())

	h.mu.Lock()
	h.conns[conn] = true
	h.mu.Unlock()

	h.joined <- conn
	go conn.writePump()
	go func() {
		conn.readPump(h.inbox, h.left)
		h.mu.Lock()
		delete(h.conns, conn)
		h.mu.Unlock()
	}()
}

// serveQR renders the join URL as a PNG so nearby players can scan
// into the room instead of typing the code.
func (h *Host) serveQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if ps.ByName("code") != h.opts.Code {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	const qrSize = 320
	png, err := qrcode.Encode(h.JoinURL(), qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (h *Host) serveHealthCheck(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Ok\n"))
}

func (h *Host) serveVersion(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("imposter v" + h.opts.Version + "\n"))
}

func registerProfileHandlers(mux *httprouter.Router) {
	mux.Handler("GET", "/pprof/allocs", pprof.Handler("allocs"))
	mux.Handler("GET", "/pprof/block", pprof.Handler("block"))
	mux.Handler("GET", "/pprof/goroutine", pprof.Handler("goroutine"))
	mux.Handler("GET", "/pprof/heap", pprof.Handler("heap"))
	mux.Handler("GET", "/pprof/mutex", pprof.Handler("mutex"))
	mux.Handler("GET", "/pprof/threadcreate", pprof.Handler("threadcreate"))
	mux.HandlerFunc("GET", "/pprof/cmdline", pprof.Cmdline)
	mux.HandlerFunc("GET", "/pprof/profile", pprof.Profile)
	mux.HandlerFunc("GET", "/pprof/symbol", pprof.Symbol)
	mux.HandlerFunc("GET", "/pprof/trace", pprof.Trace)
}
