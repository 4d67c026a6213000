// Package protocol defines the wire messages exchanged with a Retrowars
// server: one JSON envelope per WebSocket text frame, discriminated by type.
package protocol

import (
	"encoding/json"
)

// AppVersion is the protocol version code sent during registration. Servers
// refuse clients whose version is too far behind their own.
const AppVersion = 26

// MessageType identifies the kind of frame inside the envelope.
type MessageType string

// Server to client.
const (
	MsgPlayerAdded        MessageType = "player_added"
	MsgPlayerRemoved      MessageType = "player_removed"
	MsgPlayerScored       MessageType = "player_scored"
	MsgPlayerStatusChange MessageType = "player_status_change"
	MsgReturnToLobby      MessageType = "return_to_lobby"
	MsgStartGame          MessageType = "start_game"
	MsgFatalError         MessageType = "fatal_error"
)

// Client to server.
const (
	MsgRegisterPlayer MessageType = "register_player"
	MsgUpdateStatus   MessageType = "update_status"
	MsgUpdateScore    MessageType = "update_score"
	MsgRequestStart   MessageType = "request_start"
	MsgKeepAlive      MessageType = "keep_alive"
)

// Message is the envelope for every frame in either direction. Frames whose
// kind carries no data omit the payload field entirely.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// --- Server to client payloads ---

// PlayerAddedPayload announces a new roster member. The first player a
// client hears about after registering is always itself.
type PlayerAddedPayload struct {
	ID     int64  `json:"id"`
	Status Status `json:"status"`
}

// PlayerRemovedPayload announces a departure.
type PlayerRemovedPayload struct {
	ID int64 `json:"id"`
}

// PlayerScoredPayload carries another player's absolute score. Servers never
// echo a client's own score back to it.
type PlayerScoredPayload struct {
	ID    int64 `json:"id"`
	Score int64 `json:"score"`
}

// PlayerStatusChangePayload carries a status transition, including echoes of
// the client's own update_status frames.
type PlayerStatusChangePayload struct {
	ID     int64  `json:"id"`
	Status Status `json:"status"`
}

// ReturnToLobbyPayload sends everyone back to the lobby with a fresh game
// variant assignment per player id.
type ReturnToLobbyPayload struct {
	Games map[int64]Game `json:"games"`
}

// FatalErrorPayload is the server's last word before it drops the session.
type FatalErrorPayload struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// --- Client to server payloads ---

// RegisterPlayerPayload must be the first frame on a new connection.
type RegisterPlayerPayload struct {
	AppVersion int    `json:"appVersion"`
	PlayerID   string `json:"playerId"`
}

// UpdateStatusPayload reports the local player's status transition.
type UpdateStatusPayload struct {
	Status Status `json:"status"`
}

// UpdateScorePayload reports the local player's absolute score.
type UpdateScorePayload struct {
	Score int64 `json:"score"`
}

// --- Outbound builders ---

// The outbound payload structs marshal unconditionally, so builders swallow
// the error the same way the envelope consumers skip bad inbound frames.

// RegisterPlayer builds the frame a client must send first after dialing.
func RegisterPlayer(playerID string) Message {
	raw, _ := json.Marshal(RegisterPlayerPayload{AppVersion: AppVersion, PlayerID: playerID})
	return Message{Type: MsgRegisterPlayer, Payload: raw}
}

// UpdateStatus builds a status report frame.
func UpdateStatus(s Status) Message {
	raw, _ := json.Marshal(UpdateStatusPayload{Status: s})
	return Message{Type: MsgUpdateStatus, Payload: raw}
}

// UpdateScore builds a score report frame.
func UpdateScore(score int64) Message {
	raw, _ := json.Marshal(UpdateScorePayload{Score: score})
	return Message{Type: MsgUpdateScore, Payload: raw}
}

// RequestStart builds the frame asking the server to start the game for
// everyone in the lobby.
func RequestStart() Message {
	return Message{Type: MsgRequestStart}
}

// KeepAlive builds the periodic liveness frame.
func KeepAlive() Message {
	return Message{Type: MsgKeepAlive}
}
