// Package app holds the root Bubble Tea model for the Retrowars TUI. The
// session delivers events on its own goroutine; callbacks forward them as
// messages over a channel that the program loop drains, so all screen state
// changes happen inside Update.
package app

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/emtee40/retrowars/internal/protocol"
	"github.com/emtee40/retrowars/internal/session"
	"github.com/emtee40/retrowars/internal/tui/theme"
	"github.com/emtee40/retrowars/internal/tui/views/debug"
	"github.com/emtee40/retrowars/internal/tui/views/lobby"
	"github.com/emtee40/retrowars/internal/tui/views/match"
)

const (
	eventBuffer = 64

	scoreStep   = 500
	jackpotStep = 10000
)

// Overlay identifies which modal is active.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayHelp
	OverlayDebug
)

// Phase is the screen the client is on.
type Phase int

const (
	PhaseConnecting Phase = iota
	PhaseLobby
	PhasePlaying
	PhaseResults
	PhaseClosed
)

// --- session event messages ---

type connectedMsg struct{ client *session.Client }

type connectFailedMsg struct{ err error }

type playersMsg struct{ players []*session.Player }

type startGameMsg struct{}

type scoreMsg struct {
	player *session.Player
	score  int64
}

type breakpointMsg struct {
	player   *session.Player
	strength int
}

type statusMsg struct {
	player *session.Player
	status protocol.Status
}

type returnToLobbyMsg struct{}

type closedMsg struct {
	code    protocol.ErrorCode
	message string
}

type sessionDoneMsg struct{ client *session.Client }

type frameMsg time.Time

// Model is the root Bubble Tea model.
type Model struct {
	mgr    *session.Manager
	addr   string
	client *session.Client
	events chan tea.Msg

	keys   KeyMap
	width  int
	height int

	phase        Phase
	overlay      Overlay
	playerCount  int
	closeCode    protocol.ErrorCode
	closeMessage string

	spin  spinner.Model
	lobby lobby.Model
	match match.Model
	debug debug.Model

	helpView string
	ticking  bool
}

// New creates the root model. With showDebug the debug overlay starts open.
func New(mgr *session.Manager, addr string, showDebug bool) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorGold)

	m := Model{
		mgr:    mgr,
		addr:   addr,
		events: make(chan tea.Msg, eventBuffer),
		keys:   DefaultKeyMap(),
		spin:   sp,
		lobby:  lobby.New(),
		match:  match.New(),
		debug:  debug.New(),
	}
	if showDebug {
		m.overlay = OverlayDebug
	}
	return m
}

// Init kicks off the connection attempt.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.connect())
}

// connect dials the server and installs the callback forwarders. The dial
// error, if any, is the whole outcome: no session exists after a failure.
func (m Model) connect() tea.Cmd {
	mgr, addr, events := m.mgr, m.addr, m.events
	return func() tea.Msg {
		c, err := mgr.Connect(addr)
		if err != nil {
			return connectFailedMsg{err: err}
		}
		c.Listen(forwardListeners(events))
		return connectedMsg{client: c}
	}
}

// forwardListeners adapts the session callbacks into program messages. The
// callbacks run on the session's delivery goroutine; the channel hands them
// to the program loop, which is the only place screen state changes.
func forwardListeners(events chan<- tea.Msg) session.Listeners {
	return session.Listeners{
		OnClose: func(code protocol.ErrorCode, message string) {
			events <- closedMsg{code: code, message: message}
		},
		OnPlayersChanged: func(players []*session.Player) {
			events <- playersMsg{players: players}
		},
		OnStartGame: func() {
			events <- startGameMsg{}
		},
		OnScoreChanged: func(p *session.Player, score int64) {
			events <- scoreMsg{player: p, score: score}
		},
		OnScoreBreakpoint: func(p *session.Player, strength int) {
			events <- breakpointMsg{player: p, strength: strength}
		},
		OnPlayerStatusChanged: func(p *session.Player, status protocol.Status) {
			events <- statusMsg{player: p, status: status}
		},
		OnReturnToLobby: func() {
			events <- returnToLobbyMsg{}
		},
	}
}

// waitEvent delivers the next forwarded session event. Update re-arms it
// after every delivery.
func waitEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg { return <-events }
}

// waitDone fires once the session has fully terminated, as a backstop for
// a close that slipped past the listener handoff.
func waitDone(c *session.Client) tea.Cmd {
	return func() tea.Msg {
		<-c.Done()
		return sessionDoneMsg{client: c}
	}
}

func frameTick() tea.Cmd {
	return tea.Tick(time.Second/match.FPS, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.lobby.Width = msg.Width
		m.match.Width = msg.Width
		m.helpView = ""
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.phase != PhaseConnecting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case connectedMsg:
		m.client = msg.client
		m.phase = PhaseLobby
		m.refreshRoster()
		m.debug.Add("net", "connected to "+m.addr)
		return m, tea.Batch(waitEvent(m.events), waitDone(m.client), m.armTick())

	case connectFailedMsg:
		m.phase = PhaseClosed
		m.closeCode = protocol.CodeUnknown
		m.closeMessage = msg.err.Error()
		m.debug.Add("err", msg.err.Error())
		return m, nil

	case playersMsg:
		m.applyRoster(msg.players)
		m.debug.Add("game", fmt.Sprintf("roster now %d player(s)", len(msg.players)))
		return m, waitEvent(m.events)

	case startGameMsg:
		m.match.Reset()
		m.phase = PhasePlaying
		m.debug.Add("game", "game started")
		return m, tea.Batch(waitEvent(m.events), m.armTick())

	case scoreMsg:
		m.match.SetScore(msg.player.ID, msg.score)
		return m, waitEvent(m.events)

	case breakpointMsg:
		m.match.Flash(msg.player.ID, msg.strength)
		m.debug.Add("game", fmt.Sprintf("player %d sent an attack x%d", msg.player.ID, msg.strength))
		return m, waitEvent(m.events)

	case statusMsg:
		m.debug.Add("game", fmt.Sprintf("player %d now %s", msg.player.ID, msg.status))
		if m.phase == PhasePlaying && msg.status == protocol.StatusDead {
			if s := m.client.LastSurvivor(); s != nil {
				m.match.SetSurvivor(s.ID)
				m.phase = PhaseResults
			}
		}
		return m, waitEvent(m.events)

	case returnToLobbyMsg:
		m.phase = PhaseLobby
		m.debug.Add("game", "returned to lobby")
		return m, waitEvent(m.events)

	case closedMsg:
		m.phase = PhaseClosed
		m.closeCode = msg.code
		m.closeMessage = msg.message
		m.debug.Add("net", fmt.Sprintf("session closed: %s (%s)", msg.message, msg.code))
		return m, nil

	case sessionDoneMsg:
		// A done signal from a session that has since been replaced, or one
		// racing a reconnect already underway, changes nothing.
		if msg.client != m.client || m.phase == PhaseConnecting {
			return m, nil
		}
		if m.phase != PhaseClosed {
			m.phase = PhaseClosed
			m.closeCode = protocol.CodeUnknown
			m.closeMessage = protocol.UnknownErrorMessage
		}
		return m, nil

	case frameMsg:
		m.ticking = false
		m.match.Animate()
		if m.overlay == OverlayDebug {
			if m.client != nil {
				m.debug.SetNetStats(m.client.Stats())
			}
			m.debug.Sample()
		}
		return m, m.armTick()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.overlay != OverlayNone {
		switch {
		case key.Matches(msg, m.keys.Escape):
			m.overlay = OverlayNone
		case key.Matches(msg, m.keys.Up):
			if m.overlay == OverlayDebug {
				m.debug.ScrollUp(1)
			}
		case key.Matches(msg, m.keys.Down):
			if m.overlay == OverlayDebug {
				m.debug.ScrollDown(1)
			}
		case key.Matches(msg, m.keys.Quit):
			return m.quit()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Help):
		m.helpView = renderHelp(m.width)
		m.overlay = OverlayHelp
		return m, nil

	case key.Matches(msg, m.keys.Debug):
		m.overlay = OverlayDebug
		return m, m.armTick()

	case key.Matches(msg, m.keys.Start):
		if m.phase == PhaseLobby && m.client != nil {
			m.client.StartGame()
			m.debug.Add("sys", "requested game start")
		}
		return m, nil

	case key.Matches(msg, m.keys.Score):
		if m.alive() {
			m.client.UpdateScore(m.myScore() + scoreStep)
		}
		return m, nil

	case key.Matches(msg, m.keys.Jackpot):
		if m.alive() {
			m.client.UpdateScore(m.myScore() + jackpotStep)
		}
		return m, nil

	case key.Matches(msg, m.keys.Die):
		if m.alive() {
			m.client.ChangeStatus(protocol.StatusDead)
			m.debug.Add("sys", "conceded")
		}
		return m, nil

	case key.Matches(msg, m.keys.Reconnect):
		if m.phase == PhaseClosed {
			return m.reconnect()
		}
		return m, nil
	}

	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.client != nil {
		m.client.Close()
	}
	return m, tea.Quit
}

func (m Model) reconnect() (tea.Model, tea.Cmd) {
	if last := m.mgr.LastAddress(); last != "" {
		m.addr = last
	}
	m.phase = PhaseConnecting
	m.closeMessage = ""
	m.debug.Add("net", "reconnecting to "+m.addr)
	return m, tea.Batch(m.spin.Tick, m.connect())
}

// alive reports whether the local player can still act in the round.
func (m Model) alive() bool {
	if m.phase != PhasePlaying || m.client == nil {
		return false
	}
	me := m.client.Me()
	return me != nil && me.Status() == protocol.StatusPlaying
}

func (m Model) myScore() int64 {
	return m.client.Score(m.client.Me())
}

// refreshRoster seeds the views from the accessors, covering anything that
// arrived before the listener handoff finished.
func (m *Model) refreshRoster() {
	me := m.client.Me()
	if me == nil {
		return
	}
	roster := append([]*session.Player{me}, m.client.OtherPlayers()...)
	m.applyRoster(roster)
}

func (m *Model) applyRoster(players []*session.Player) {
	m.playerCount = len(players)
	if len(players) == 0 {
		m.lobby.SetPlayers(nil, 0)
		m.match.SetPlayers(nil, 0)
		return
	}
	meID := players[0].ID
	m.lobby.SetPlayers(players, meID)
	m.match.SetPlayers(players, meID)
}

// armTick starts the animation ticker if something on screen needs frames
// and no tick is already in flight.
func (m *Model) armTick() tea.Cmd {
	if m.ticking || !m.needsTick() {
		return nil
	}
	m.ticking = true
	return frameTick()
}

func (m Model) needsTick() bool {
	return m.phase == PhasePlaying || m.phase == PhaseResults || m.overlay == OverlayDebug
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	if m.overlay == OverlayDebug {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderHeader(),
			m.debug.View(m.width, m.height-3),
		)
	}
	if m.overlay == OverlayHelp {
		help := m.helpView
		if help == "" {
			help = helpText
		}
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderHeader(),
			help,
			theme.StyleDimmed.Render("  esc:close"),
		)
	}

	var body string
	switch m.phase {
	case PhaseConnecting:
		body = m.renderConnecting()
	case PhaseLobby:
		body = m.lobby.View()
	case PhasePlaying:
		body = m.match.View()
	case PhaseResults:
		body = lipgloss.JoinVertical(lipgloss.Left, m.match.View(), "", m.renderWinner())
	case PhaseClosed:
		body = m.renderClosed()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderHint(),
	)
}

func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().Foreground(theme.ColorGold).Bold(true).
		Render("RETROWARS")

	var conn string
	switch m.phase {
	case PhaseConnecting:
		conn = theme.StyleDimmed.Render("○ connecting")
	case PhaseClosed:
		conn = lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("✗ offline")
	default:
		conn = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("● online")
	}

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := title + sep + conn + sep +
		theme.StyleDimmed.Render(m.addr) + sep +
		theme.StyleDimmed.Render(fmt.Sprintf("%d player(s)", m.playerCount))

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}

func (m Model) renderConnecting() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		"  "+m.spin.View()+theme.StyleDimmed.Render(" Connecting to "+m.addr+"..."),
	)
}

func (m Model) renderWinner() string {
	banner := "  ROUND OVER"
	if m.client != nil {
		if s := m.client.LastSurvivor(); s != nil {
			label := fmt.Sprintf("Player %04d", s.ID%10000)
			if me := m.client.Me(); me != nil && me.ID == s.ID {
				label = "You"
			}
			banner = fmt.Sprintf("  ★ %s survived the arcade!", label)
		}
	}
	return lipgloss.NewStyle().Foreground(theme.ColorGold).Bold(true).Render(banner)
}

func (m Model) renderClosed() string {
	title := lipgloss.NewStyle().Foreground(theme.ColorDanger).Bold(true).
		Render(" DISCONNECTED ")

	reason := m.closeMessage
	if reason == "" {
		reason = protocol.UnknownErrorMessage
	}
	detail := theme.StyleDimmed.Render(fmt.Sprintf("  %s (%s)", reason, m.closeCode))

	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		title,
		detail,
		"",
		theme.StyleDimmed.Render("  Press r to reconnect."),
	)
}

func (m Model) renderHint() string {
	var hint string
	switch {
	case m.phase == PhaseLobby:
		hint = "  s:start  d:debug  ?:help  q:quit"
	case m.phase == PhasePlaying:
		hint = "  space:score  enter:jackpot  x:die  d:debug  ?:help  q:quit"
	case m.phase == PhaseResults:
		hint = "  waiting for the lobby...  d:debug  q:quit"
	case m.phase == PhaseClosed:
		hint = "  r:reconnect  q:quit"
	default:
		hint = "  q:quit"
	}
	return theme.StyleDimmed.Render(hint)
}

// renderHelp renders the help markdown for the given width. Any rendering
// problem falls back to the raw text.
func renderHelp(width int) string {
	w := width - 8
	if w < 40 {
		w = 40
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(w),
	)
	if err != nil {
		return helpText
	}
	out, err := r.Render(helpText)
	if err != nil {
		return helpText
	}
	return out
}

const helpText = `# Retrowars

Play retro games against your friends: everyone plays their own arcade
cabinet, and scoring big sends attacks to the others. This client keeps the
scoreboard; the keys below stand in for the cabinet.

## Lobby

- **s** asks the server to start a game for everyone present.

## In a game

- **space** scores a few points.
- **enter** lands a jackpot.
- **x** ends your run; the last player standing wins the round.

Every 40,000 points crosses an attack threshold, shown as a lightning flash
on the scoreboard.

## Anytime

- **d** opens the debug log, **?** this help, **esc** closes overlays.
- **r** reconnects after a disconnect, **q** quits.
`
