package session

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/emtee40/retrowars/internal/protocol"
)

// startManager returns a manager whose dial hands out fresh fake wires, plus
// a pointer to the most recent wire.
func startManager(t *testing.T, playerID string) (*Manager, func() *fakeWire) {
	t.Helper()
	m := NewManager(playerID)
	var last *fakeWire
	m.dial = func(address string) (wire, error) {
		last = newFakeWire()
		return last, nil
	}
	return m, func() *fakeWire { return last }
}

func closeClient(t *testing.T, c *Client) {
	t.Helper()
	c.Close()
	<-c.Done()
}

func TestConnectSendsRegistrationFirst(t *testing.T) {
	m, lastWire := startManager(t, "9f2c-e81a")

	c, err := m.Connect("game.example.com:8080")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer closeClient(t, c)

	sent := await(t, lastWire().sent, "registration frame")
	if sent.Type != protocol.MsgRegisterPlayer {
		t.Fatalf("first frame = %q, want %q", sent.Type, protocol.MsgRegisterPlayer)
	}
	var p protocol.RegisterPlayerPayload
	if err := json.Unmarshal(sent.Payload, &p); err != nil {
		t.Fatalf("decode registration: %v", err)
	}
	if p.PlayerID != "9f2c-e81a" {
		t.Errorf("playerId = %q, want the persisted identity", p.PlayerID)
	}
	if p.AppVersion != protocol.AppVersion {
		t.Errorf("appVersion = %d, want %d", p.AppVersion, protocol.AppVersion)
	}
}

func TestSecondConnectFailsFast(t *testing.T) {
	m, _ := startManager(t, "id")

	c, err := m.Connect("a:1")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer closeClient(t, c)

	if _, err := m.Connect("a:1"); !errors.Is(err, ErrSessionOpen) {
		t.Fatalf("second Connect = %v, want ErrSessionOpen", err)
	}
}

func TestReconnectAfterClose(t *testing.T) {
	m, _ := startManager(t, "id")

	c, err := m.Connect("a:1")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	closeClient(t, c)

	c2, err := m.Connect("a:1")
	if err != nil {
		t.Fatalf("Connect after close: %v", err)
	}
	closeClient(t, c2)
}

func TestReconnectAfterServerDrop(t *testing.T) {
	m, lastWire := startManager(t, "id")

	c, err := m.Connect("a:1")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	lastWire().Disconnect()
	<-c.Done()

	c2, err := m.Connect("a:1")
	if err != nil {
		t.Fatalf("Connect after drop: %v", err)
	}
	closeClient(t, c2)
}

func TestDialFailureLeavesNoSession(t *testing.T) {
	m := NewManager("id")
	dialErr := errors.New("connection refused")
	m.dial = func(address string) (wire, error) { return nil, dialErr }

	_, err := m.Connect("a:1")
	if !errors.Is(err, dialErr) {
		t.Fatalf("Connect = %v, want wrapped dial error", err)
	}
	if got := m.LastAddress(); got != "" {
		t.Errorf("LastAddress after failed connect = %q, want empty", got)
	}

	// The failed attempt must not leave the slot claimed.
	m.dial = func(address string) (wire, error) { return newFakeWire(), nil }
	c, err := m.Connect("a:1")
	if err != nil {
		t.Fatalf("Connect after failure: %v", err)
	}
	closeClient(t, c)
}

func TestRegistrationSendFailureClosesWire(t *testing.T) {
	m := NewManager("id")
	var w *fakeWire
	m.dial = func(address string) (wire, error) {
		w = newFakeWire()
		w.setFailSends(true)
		return w, nil
	}

	if _, err := m.Connect("a:1"); err == nil {
		t.Fatal("Connect succeeded despite registration send failing")
	}
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if !closed {
		t.Error("wire left open after registration failure")
	}

	m.dial = func(address string) (wire, error) { return newFakeWire(), nil }
	c, err := m.Connect("a:1")
	if err != nil {
		t.Fatalf("Connect after registration failure: %v", err)
	}
	closeClient(t, c)
}

func TestLastAddressSurvivesDisconnect(t *testing.T) {
	m, _ := startManager(t, "id")

	if got := m.LastAddress(); got != "" {
		t.Fatalf("fresh manager LastAddress = %q, want empty", got)
	}

	c, err := m.Connect("game.example.com:8080")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if got := m.LastAddress(); got != "game.example.com:8080" {
		t.Errorf("LastAddress = %q, want the connected address", got)
	}

	closeClient(t, c)
	if got := m.LastAddress(); got != "game.example.com:8080" {
		t.Errorf("LastAddress after close = %q, want it retained", got)
	}

	c2, err := m.Connect("other.example.com:443")
	if err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	defer closeClient(t, c2)
	if got := m.LastAddress(); got != "other.example.com:443" {
		t.Errorf("LastAddress after reconnect = %q, want the new address", got)
	}
}
