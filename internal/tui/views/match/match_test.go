package match

import (
	"strings"
	"testing"

	"github.com/emtee40/retrowars/internal/session"
)

func seededModel(ids ...int64) Model {
	m := New()
	m.Width = 80
	players := make([]*session.Player, len(ids))
	for i, id := range ids {
		players[i] = &session.Player{ID: id}
	}
	m.SetPlayers(players, ids[0])
	return m
}

func TestSpringConvergesOnTarget(t *testing.T) {
	m := seededModel(1)
	m.SetScore(1, 1000)

	for i := 0; i < 10*FPS; i++ {
		m.Animate()
	}

	if !strings.Contains(m.View(), "1000") {
		t.Errorf("expected displayed score to settle on 1000:\n%s", m.View())
	}
}

func TestShownScoreStartsBehindTarget(t *testing.T) {
	m := seededModel(1)
	m.SetScore(1, 50000)
	m.Animate()

	r := m.byID[1]
	if r.shown <= 0 || r.shown >= 50000 {
		t.Errorf("after one frame shown = %f, want between 0 and 50000", r.shown)
	}
}

func TestRowsSortByScore(t *testing.T) {
	m := seededModel(1, 2)
	m.SetScore(1, 100)
	m.SetScore(2, 9999999)

	view := m.View()
	first := strings.Index(view, "Player 0002")
	second := strings.Index(view, "Player 0001")
	if first == -1 || second == -1 {
		t.Fatalf("both players should render:\n%s", view)
	}
	if first > second {
		t.Errorf("higher score should render first:\n%s", view)
	}
}

func TestFlashDecays(t *testing.T) {
	m := seededModel(1)
	m.Flash(1, 2)

	if m.byID[1].flash != flashFrames {
		t.Fatalf("flash = %d, want %d", m.byID[1].flash, flashFrames)
	}
	for i := 0; i < flashFrames; i++ {
		m.Animate()
	}
	if m.byID[1].flash != 0 {
		t.Errorf("flash should have decayed, got %d", m.byID[1].flash)
	}
}

func TestRosterChangeKeepsAnimationState(t *testing.T) {
	m := seededModel(1)
	m.SetScore(1, 1000)
	for i := 0; i < 10*FPS; i++ {
		m.Animate()
	}

	p1 := m.rows[0].player
	m.SetPlayers([]*session.Player{p1, {ID: 2}}, 1)

	if m.byID[1].shown != 1000 {
		t.Errorf("existing row lost its animation state: shown = %f", m.byID[1].shown)
	}
	if m.byID[2].shown != 0 {
		t.Errorf("new row should start at zero, got %f", m.byID[2].shown)
	}
}

func TestResetZeroesEverything(t *testing.T) {
	m := seededModel(1)
	m.SetScore(1, 1000)
	m.Flash(1, 3)
	m.SetSurvivor(1)
	m.Animate()

	m.Reset()

	r := m.byID[1]
	if r.target != 0 || r.shown != 0 || r.velocity != 0 || r.flash != 0 {
		t.Errorf("reset left state behind: %+v", r)
	}
	if m.survivorID != 0 {
		t.Errorf("reset should clear the survivor marker")
	}
}

func TestSurvivorMarkerRenders(t *testing.T) {
	m := seededModel(1, 2)
	m.SetSurvivor(2)

	if !strings.Contains(m.View(), "★") {
		t.Errorf("survivor marker missing:\n%s", m.View())
	}
}
