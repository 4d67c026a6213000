package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/emtee40/retrowars/internal/protocol"
	"github.com/emtee40/retrowars/internal/transport"
)

// ErrSessionOpen reports a Connect while another session is still live.
// Opening a second session is a programming error, not a recoverable
// condition: close the existing one first.
var ErrSessionOpen = errors.New("session already open")

// Manager hands out at most one live Client at a time. It owns the persisted
// player identity sent during registration and remembers the last address a
// session was successfully established against.
//
// Construct one per process and inject it wherever sessions are opened;
// closing the current session frees the slot for the next Connect.
type Manager struct {
	playerID  string
	keepAlive time.Duration
	dial      func(address string) (wire, error)

	mu         sync.Mutex
	current    *Client
	connecting bool
	lastAddr   string
}

func NewManager(playerID string) *Manager {
	m := &Manager{playerID: playerID}
	m.dial = m.dialServer
	return m
}

// SetKeepAlive overrides the keepalive cadence of every transport this
// manager dials from now on. Zero keeps the transport default.
func (m *Manager) SetKeepAlive(d time.Duration) {
	m.keepAlive = d
}

// dialServer opens a transport and blocks through the WebSocket handshake.
func (m *Manager) dialServer(address string) (wire, error) {
	tr := transport.New()
	tr.SetKeepAlive(m.keepAlive)
	if err := tr.Connect(address); err != nil {
		return nil, err
	}
	if err := <-tr.Connected(); err != nil {
		return nil, err
	}
	return tr, nil
}

// Connect establishes the session: it dials, sends the registration frame,
// and only then exposes the new Client as the live singleton. Establishment
// failures surface here as the returned error and leave no session behind;
// anything that goes wrong later arrives through the client's OnClose.
func (m *Manager) Connect(address string) (*Client, error) {
	m.mu.Lock()
	if m.current != nil || m.connecting {
		m.mu.Unlock()
		return nil, ErrSessionOpen
	}
	m.connecting = true
	m.mu.Unlock()

	tr, err := m.dial(address)
	if err != nil {
		m.abort()
		return nil, fmt.Errorf("connect %s: %w", address, err)
	}

	// Registration must be the first frame on the wire; it is queued before
	// anything else can be.
	if err := tr.Send(protocol.RegisterPlayer(m.playerID)); err != nil {
		tr.Disconnect()
		m.abort()
		return nil, fmt.Errorf("register with %s: %w", address, err)
	}

	c := newClient(tr)
	c.released = func() { m.release(c) }

	m.mu.Lock()
	m.current = c
	m.connecting = false
	m.lastAddr = address
	m.mu.Unlock()

	// Only start delivering once the singleton is registered, so a session
	// that dies instantly still releases its slot.
	c.start()
	return c, nil
}

// LastAddress returns the address of the most recent successful Connect. It
// survives disconnection so callers can offer a reconnect.
func (m *Manager) LastAddress() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastAddr
}

func (m *Manager) abort() {
	m.mu.Lock()
	m.connecting = false
	m.mu.Unlock()
}

func (m *Manager) release(c *Client) {
	m.mu.Lock()
	if m.current == c {
		m.current = nil
	}
	m.mu.Unlock()
}
