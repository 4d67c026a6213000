// Package transport owns the WebSocket connection to a Retrowars server and
// the goroutines that service it: a read loop, a write loop draining a
// bounded outbound queue, and a keepalive ticker. Inbound frames are decoded
// and delivered on a channel whose close is the single disconnect signal.
package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/emtee40/retrowars/internal/protocol"
)

const (
	sendQueueSize     = 10
	inboundBuffer     = 16
	writeTimeout      = 10 * time.Second
	keepAliveInterval = 30 * time.Second
)

var (
	// ErrSendQueueFull reports that the outbound queue was full and the
	// message was dropped. Callers decide whether that matters.
	ErrSendQueueFull = errors.New("send queue full")

	// ErrClosed reports a send on a transport that has already shut down.
	ErrClosed = errors.New("transport closed")
)

// Stats is a point-in-time snapshot of the transport's frame counters.
type Stats struct {
	FramesIn     int64
	FramesOut    int64
	SendsDropped int64
}

// Transport drives one connection. Connect may be called once; a fresh
// Transport is needed for every connection attempt.
type Transport struct {
	messages  chan protocol.Message
	send      chan protocol.Message
	connected chan error
	keepAlive time.Duration

	mu      sync.Mutex
	conn    *websocket.Conn
	started bool
	closed  bool

	terminate sync.Once

	framesIn     atomic.Int64
	framesOut    atomic.Int64
	sendsDropped atomic.Int64
}

func New() *Transport {
	return &Transport{
		messages:  make(chan protocol.Message, inboundBuffer),
		send:      make(chan protocol.Message, sendQueueSize),
		connected: make(chan error, 1),
		keepAlive: keepAliveInterval,
	}
}

// SetKeepAlive overrides the keepalive cadence. Must be called before
// Connect; non-positive values are ignored.
func (t *Transport) SetKeepAlive(d time.Duration) {
	if d <= 0 {
		return
	}
	t.mu.Lock()
	if !t.started {
		t.keepAlive = d
	}
	t.mu.Unlock()
}

// Connect starts dialing the given host:port and returns immediately. The
// only synchronous failures are a malformed address and reuse of a spent
// Transport; everything network-shaped is reported through Connected and,
// terminally, through the Messages channel closing.
func (t *Transport) Connect(address string) error {
	u, err := serverURL(address)
	if err != nil {
		return err
	}

	t.mu.Lock()
	if t.started {
		t.mu.Unlock()
		return errors.New("transport already started")
	}
	t.started = true
	t.mu.Unlock()

	go t.dialAndRun(u)
	return nil
}

// Connected reports the dial outcome exactly once: nil when the handshake
// succeeded, the handshake error otherwise.
func (t *Transport) Connected() <-chan error {
	return t.connected
}

// Messages returns the inbound frame stream. Frames arrive in wire order.
// The channel closes exactly once, after the loops have shut down, and that
// close is the transport's only disconnect signal.
func (t *Transport) Messages() <-chan protocol.Message {
	return t.messages
}

// Send enqueues one message. It never blocks: a full queue fails with
// ErrSendQueueFull, a shut-down transport with ErrClosed.
func (t *Transport) Send(msg protocol.Message) error {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return ErrClosed
	}

	select {
	case t.send <- msg:
		return nil
	default:
		t.sendsDropped.Add(1)
		return ErrSendQueueFull
	}
}

// Disconnect requests closure of the connection. Safe to call any number of
// times, at any point relative to the dial; the disconnect signal still
// fires exactly once.
func (t *Transport) Disconnect() {
	t.mu.Lock()
	already := t.closed
	t.closed = true
	conn := t.conn
	t.mu.Unlock()
	if already || conn == nil {
		// Either shut down before, or the dial is still in flight and
		// dialAndRun will observe the closed flag itself.
		return
	}
	conn.Close()
}

// Stats returns the current frame counters.
func (t *Transport) Stats() Stats {
	return Stats{
		FramesIn:     t.framesIn.Load(),
		FramesOut:    t.framesOut.Load(),
		SendsDropped: t.sendsDropped.Load(),
	}
}

// serverURL turns host:port into the /ws endpoint URL, upgrading to TLS
// when the port is the standard HTTPS one.
func serverURL(address string) (string, error) {
	_, port, err := net.SplitHostPort(address)
	if err != nil {
		return "", fmt.Errorf("invalid server address %q: %w", address, err)
	}
	scheme := "ws"
	if port == "443" {
		scheme = "wss"
	}
	u := url.URL{Scheme: scheme, Host: address, Path: "/ws"}
	return u.String(), nil
}

func (t *Transport) dialAndRun(url string) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Printf("ws dial error: %v", err)
		t.connected <- err
		t.finish()
		return
	}

	t.mu.Lock()
	if t.closed {
		// Disconnect won the race with the dial.
		t.mu.Unlock()
		conn.Close()
		t.connected <- nil
		t.finish()
		return
	}
	t.conn = conn
	t.mu.Unlock()
	t.connected <- nil

	keepAliveStop := make(chan struct{})
	keepAliveDone := make(chan struct{})
	go t.keepAliveLoop(keepAliveStop, keepAliveDone)

	sendStop := make(chan struct{})
	sendDone := make(chan struct{})
	go t.sendLoop(conn, sendStop, sendDone)

	t.readLoop(conn)

	// Teardown order matters: stop producing heartbeats first, then let the
	// send loop flush whatever is queued, then signal the consumer.
	close(keepAliveStop)
	<-keepAliveDone
	close(sendStop)
	<-sendDone
	conn.Close()
	t.finish()
}

// finish marks the transport spent and closes the messages channel. Every
// termination path funnels through here; the Once keeps the signal single.
func (t *Transport) finish() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	t.terminate.Do(func() { close(t.messages) })
}

// readLoop delivers decoded frames until the connection ends. A frame that
// fails to decode is logged and skipped; only the connection ending stops
// the loop. There is deliberately no read deadline: closure is detected
// solely by the connection ending.
func (t *Transport) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Printf("ws read ended: %v", err)
			return
		}

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("ws dropping malformed frame: %v", err)
			continue
		}
		t.framesIn.Add(1)
		t.messages <- msg
	}
}

func (t *Transport) sendLoop(conn *websocket.Conn, stop, done chan struct{}) {
	defer close(done)
	for {
		select {
		case msg := <-t.send:
			if !t.write(conn, msg) {
				return
			}
		case <-stop:
			// Flush queued messages before exiting; writes fail fast if the
			// connection is already gone.
			for {
				select {
				case msg := <-t.send:
					if !t.write(conn, msg) {
						return
					}
				default:
					return
				}
			}
		}
	}
}

func (t *Transport) write(conn *websocket.Conn, msg protocol.Message) bool {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("ws write error: %v", err)
		return false
	}
	t.framesOut.Add(1)
	return true
}

// keepAliveLoop enqueues a liveness frame on a fixed cadence so idle
// connections survive intermediary timeouts. A full queue means real
// traffic is flowing, so the beat is skipped rather than queued.
func (t *Transport) keepAliveLoop(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(t.keepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			select {
			case t.send <- protocol.KeepAlive():
			default:
			}
		}
	}
}
