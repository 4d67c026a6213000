package session

import "github.com/emtee40/retrowars/internal/protocol"

// Listeners is the full callback set a consumer installs with Listen. Nil
// entries are simply skipped. OnClose is the one entry no real consumer can
// afford to leave nil: a session that loses its connection reports it
// nowhere else.
//
// Every callback is invoked from the session's single delivery goroutine,
// one event at a time, so implementations never observe concurrent calls.
// They should hand work off quickly; a slow callback stalls event delivery.
type Listeners struct {
	// OnClose fires exactly once, when the session ends for any reason. If
	// the server sent a fatal error before dropping the connection its code
	// and message are reported; an abrupt loss reports CodeUnknown and
	// protocol.UnknownErrorMessage.
	OnClose func(code protocol.ErrorCode, message string)

	// OnPlayersChanged fires with a fresh roster snapshot whenever a player
	// joins or leaves.
	OnPlayersChanged func(players []*Player)

	// OnStartGame fires when the server starts a game for everyone.
	OnStartGame func()

	// OnScoreChanged fires whenever any player's score is set, including
	// the local player's own updates.
	OnScoreChanged func(p *Player, score int64)

	// OnScoreBreakpoint fires when a score update crosses one or more
	// breakpoint thresholds; strength is how many were crossed at once.
	OnScoreBreakpoint func(p *Player, strength int)

	// OnPlayerStatusChanged fires on server-reported status transitions,
	// including echoes of the local player's own.
	OnPlayerStatusChanged func(p *Player, status protocol.Status)

	// OnReturnToLobby fires after everyone has been moved back to the lobby
	// and reassigned game variants.
	OnReturnToLobby func()
}
