package session

import (
	"sync/atomic"

	"github.com/emtee40/retrowars/internal/protocol"
)

// Player is one roster entry. The ID is server-assigned and stable for the
// connection's lifetime. Status and game change in place, never by
// replacement: the score and breakpoint tables key by this pointer and
// listeners hold it across callbacks, so it has to keep resolving.
type Player struct {
	ID int64

	status atomic.Int32
	game   atomic.Int32
}

func newPlayer(id int64, status protocol.Status) *Player {
	p := &Player{ID: id}
	p.setStatus(status)
	return p
}

// Status is safe to call from any goroutine.
func (p *Player) Status() protocol.Status {
	return protocol.Status(p.status.Load())
}

// Game is safe to call from any goroutine.
func (p *Player) Game() protocol.Game {
	return protocol.Game(p.game.Load())
}

func (p *Player) setStatus(s protocol.Status) {
	p.status.Store(int32(s))
}

func (p *Player) setGame(g protocol.Game) {
	p.game.Store(int32(g))
}
