package lobby

import (
	"strings"
	"testing"

	"github.com/emtee40/retrowars/internal/session"
)

func TestEmptyLobby(t *testing.T) {
	m := New()
	if !strings.Contains(m.View(), "Waiting for the server") {
		t.Error("empty lobby should show the waiting message")
	}
}

func TestRosterRenderInOrder(t *testing.T) {
	m := New()
	m.SetPlayers([]*session.Player{{ID: 8317}, {ID: 42}}, 8317)

	view := m.View()
	me := strings.Index(view, "Player 8317 (you)")
	other := strings.Index(view, "Player 0042")
	if me == -1 {
		t.Fatalf("local player missing:\n%s", view)
	}
	if other == -1 {
		t.Fatalf("other player missing:\n%s", view)
	}
	if me > other {
		t.Error("local player should render first")
	}
	if !strings.Contains(view, "2 player(s)") {
		t.Error("player count missing")
	}
}
