// Package session tracks the client's view of one Retrowars match: the
// ordered player roster, live scores, breakpoint thresholds, and survivor
// state, all driven by the server's event stream. Consumers install a
// listener set and read the roster through accessors; every mutation and
// every callback happens on a single delivery goroutine.
package session

import (
	"encoding/json"
	"log"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/emtee40/retrowars/internal/protocol"
	"github.com/emtee40/retrowars/internal/transport"
)

// scoreBreakpoint is the fixed gap between score thresholds. Crossing one
// (or several at once) is reported to listeners as an attack of matching
// strength.
const scoreBreakpoint = 40000

// wire is the transport surface the client consumes. Tests substitute an
// in-memory implementation.
type wire interface {
	Send(protocol.Message) error
	Messages() <-chan protocol.Message
	Disconnect()
	Stats() transport.Stats
}

// Client is a live session against one server. Obtain one through
// Manager.Connect; the zero value is not usable.
//
// The roster is ordered: position 0 is always the local player, a server
// guarantee this client relies on for Me.
type Client struct {
	tr       wire
	events   chan event
	done     chan struct{}
	released func()

	listeners atomic.Pointer[Listeners]

	mu        sync.RWMutex
	players   []*Player
	scores    map[*Player]int64
	nextBreak map[*Player]int64
	survivor  *Player
	fatal     *protocol.FatalErrorPayload
}

func newClient(tr wire) *Client {
	return &Client{
		tr:        tr,
		events:    make(chan event, 16),
		done:      make(chan struct{}),
		scores:    make(map[*Player]int64),
		nextBreak: make(map[*Player]int64),
	}
}

func (c *Client) start() {
	go c.run()
}

// Listen installs the full callback set in one shot, replacing whatever was
// installed before. An event being delivered finishes against the old set;
// every later event sees only the new one, so screens that re-Listen never
// receive stale callbacks.
func (c *Client) Listen(l Listeners) {
	c.listeners.Store(&l)
}

// Me returns the local player, or nil before the server has announced it.
func (c *Client) Me() *Player {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.players) == 0 {
		return nil
	}
	return c.players[0]
}

// OtherPlayers returns everyone but the local player, in roster order.
func (c *Client) OtherPlayers() []*Player {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.players) <= 1 {
		return nil
	}
	others := make([]*Player, len(c.players)-1)
	copy(others, c.players[1:])
	return others
}

// Score returns the player's last delivered score, zero if none arrived yet.
func (c *Client) Score(p *Player) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scores[p]
}

// LastSurvivor returns the player left standing when the round collapsed to
// a single live participant, or nil before that point. It resets when the
// next game starts.
func (c *Client) LastSurvivor() *Player {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.survivor
}

// ChangeStatus records the local player's transition immediately and
// reports it to the server. The status-changed callback and survivor
// bookkeeping run when the server echoes the change back to the roster.
func (c *Client) ChangeStatus(s protocol.Status) {
	c.post(statusEvent{status: s})
}

// UpdateScore applies the score to the local player exactly as an inbound
// score frame would, callbacks included, then reports it to the server. The
// server never echoes a client's own score back, so the local apply is the
// only one that will happen.
func (c *Client) UpdateScore(score int64) {
	c.post(scoreEvent{score: score})
}

// StartGame asks the server to start the game. Local state is untouched;
// the server answers with a start frame for everyone, this client included.
func (c *Client) StartGame() {
	c.send(protocol.RequestStart())
}

// Close tears the session down. Idempotent; however often it is called,
// OnClose still fires exactly once.
func (c *Client) Close() {
	c.tr.Disconnect()
}

// Done is closed once the session has fully terminated and OnClose has
// been delivered.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Stats exposes the underlying connection's frame counters.
func (c *Client) Stats() transport.Stats {
	return c.tr.Stats()
}

// post hands a local action to the delivery loop, giving up if the session
// terminates first.
func (c *Client) post(ev event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

func (c *Client) send(msg protocol.Message) {
	if err := c.tr.Send(msg); err != nil {
		log.Printf("session: dropping outbound %s: %v", msg.Type, err)
	}
}

// run is the delivery loop: the only goroutine that mutates the roster,
// scores, and breakpoints, and the only one that invokes listeners. It ends
// when the transport's message channel closes, which is the transport's
// single disconnect signal.
func (c *Client) run() {
	defer c.terminate()
	for {
		select {
		case msg, ok := <-c.tr.Messages():
			if !ok {
				return
			}
			c.handleMessage(msg)
		case ev := <-c.events:
			c.handleLocal(ev)
		}
	}
}

// terminate normalizes every way a session can end into one OnClose.
func (c *Client) terminate() {
	code, message := protocol.CodeUnknown, protocol.UnknownErrorMessage
	c.mu.RLock()
	if c.fatal != nil {
		code, message = c.fatal.Code, c.fatal.Message
	}
	c.mu.RUnlock()

	// Release the singleton slot before notifying, so an OnClose handler
	// can immediately reconnect.
	if c.released != nil {
		c.released()
	}
	if l := c.listeners.Load(); l != nil && l.OnClose != nil {
		l.OnClose(code, message)
	}
	close(c.done)
}

func (c *Client) handleMessage(msg protocol.Message) {
	switch msg.Type {
	case protocol.MsgPlayerAdded:
		var p protocol.PlayerAddedPayload
		if decode(msg, &p) {
			c.addPlayer(p.ID, p.Status)
		}
	case protocol.MsgPlayerRemoved:
		var p protocol.PlayerRemovedPayload
		if decode(msg, &p) {
			c.removePlayer(p.ID)
		}
	case protocol.MsgPlayerScored:
		var p protocol.PlayerScoredPayload
		if decode(msg, &p) {
			if pl := c.lookup(p.ID); pl != nil {
				c.applyScore(pl, p.Score)
			}
		}
	case protocol.MsgPlayerStatusChange:
		var p protocol.PlayerStatusChangePayload
		if decode(msg, &p) {
			c.applyStatus(p.ID, p.Status)
		}
	case protocol.MsgReturnToLobby:
		var p protocol.ReturnToLobbyPayload
		if decode(msg, &p) {
			c.returnToLobby(p.Games)
		}
	case protocol.MsgStartGame:
		c.startGame()
	case protocol.MsgFatalError:
		var p protocol.FatalErrorPayload
		if decode(msg, &p) {
			c.mu.Lock()
			c.fatal = &p
			c.mu.Unlock()
		}
		c.tr.Disconnect()
	default:
		log.Printf("session: ignoring unknown message type %q", msg.Type)
	}
}

// decode rejects a single bad event without disturbing the stream. Unknown
// status and game names land here too, via their strict unmarshalling.
func decode(msg protocol.Message, into any) bool {
	if err := json.Unmarshal(msg.Payload, into); err != nil {
		log.Printf("session: dropping %s event: %v", msg.Type, err)
		return false
	}
	return true
}

func (c *Client) handleLocal(ev event) {
	switch e := ev.(type) {
	case statusEvent:
		if me := c.Me(); me != nil {
			me.setStatus(e.status)
		}
		c.send(protocol.UpdateStatus(e.status))
	case scoreEvent:
		if me := c.Me(); me != nil {
			c.applyScore(me, e.score)
		}
		c.send(protocol.UpdateScore(e.score))
	}
}

func (c *Client) lookup(id int64) *Player {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.findLocked(id)
}

func (c *Client) findLocked(id int64) *Player {
	for _, p := range c.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (c *Client) addPlayer(id int64, status protocol.Status) {
	c.mu.Lock()
	if c.findLocked(id) != nil {
		c.mu.Unlock()
		log.Printf("session: duplicate player %d ignored", id)
		return
	}
	c.players = append(c.players, newPlayer(id, status))
	roster := slices.Clone(c.players)
	c.mu.Unlock()

	if l := c.listeners.Load(); l != nil && l.OnPlayersChanged != nil {
		l.OnPlayersChanged(roster)
	}
}

func (c *Client) removePlayer(id int64) {
	c.mu.Lock()
	p := c.findLocked(id)
	if p == nil {
		c.mu.Unlock()
		return
	}
	c.players = slices.DeleteFunc(c.players, func(q *Player) bool { return q == p })
	roster := slices.Clone(c.players)
	c.mu.Unlock()

	if l := c.listeners.Load(); l != nil && l.OnPlayersChanged != nil {
		l.OnPlayersChanged(roster)
	}
}

// applyScore is the one code path for score changes, whether the score came
// off the wire or from the local player's own game.
func (c *Client) applyScore(p *Player, score int64) {
	c.mu.Lock()
	c.scores[p] = score
	strength := c.advanceBreakpointsLocked(p, score)
	c.mu.Unlock()

	l := c.listeners.Load()
	if l == nil {
		return
	}
	if l.OnScoreChanged != nil {
		l.OnScoreChanged(p, score)
	}
	if strength > 0 && l.OnScoreBreakpoint != nil {
		l.OnScoreBreakpoint(p, strength)
	}
}

// advanceBreakpointsLocked walks the player's threshold past every multiple
// of scoreBreakpoint the score has crossed and reports how many. The stored
// threshold is always the smallest multiple strictly above the last score
// checked, so a jump across several multiples reports them all at once.
func (c *Client) advanceBreakpointsLocked(p *Player, score int64) int {
	threshold, ok := c.nextBreak[p]
	if !ok {
		threshold = scoreBreakpoint
	}
	crossed := 0
	for score >= threshold {
		crossed++
		threshold += scoreBreakpoint
	}
	c.nextBreak[p] = threshold
	return crossed
}

func (c *Client) applyStatus(id int64, status protocol.Status) {
	c.mu.Lock()
	p := c.findLocked(id)
	if p == nil {
		c.mu.Unlock()
		return
	}
	if status == protocol.StatusDead {
		if s := c.soleSurvivorLocked(p); s != nil {
			c.survivor = s
		}
	}
	p.setStatus(status)
	c.mu.Unlock()

	if l := c.listeners.Load(); l != nil && l.OnPlayerStatusChanged != nil {
		l.OnPlayerStatusChanged(p, status)
	}
}

// soleSurvivorLocked returns the single player other than dying that is
// still playing, or nil if the living count is anything but one.
func (c *Client) soleSurvivorLocked(dying *Player) *Player {
	var alive *Player
	for _, p := range c.players {
		if p == dying || p.Status() != protocol.StatusPlaying {
			continue
		}
		if alive != nil {
			return nil
		}
		alive = p
	}
	return alive
}

func (c *Client) returnToLobby(games map[int64]protocol.Game) {
	c.mu.Lock()
	for _, p := range c.players {
		p.setStatus(protocol.StatusLobby)
		if g, ok := games[p.ID]; ok {
			p.setGame(g)
		}
	}
	c.mu.Unlock()

	if l := c.listeners.Load(); l != nil && l.OnReturnToLobby != nil {
		l.OnReturnToLobby()
	}
}

func (c *Client) startGame() {
	c.mu.Lock()
	c.survivor = nil
	c.scores = make(map[*Player]int64)
	c.nextBreak = make(map[*Player]int64)
	for _, p := range c.players {
		p.setStatus(protocol.StatusPlaying)
		c.scores[p] = 0
	}
	c.mu.Unlock()

	if l := c.listeners.Load(); l != nil && l.OnStartGame != nil {
		l.OnStartGame()
	}
}
