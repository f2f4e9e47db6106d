package internal

import "encoding/json"

const (
	MessagePlayerListUpdate = "PLAYER_LIST_UPDATE"
	MessageGameStateUpdate  = "GAME_STATE_UPDATE"
)

// Message is the envelope of every frame sent to clients.
type Message[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ActionMessage is one inbound frame. Payload is decoded per verb.
type ActionMessage struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

type JoinPayload struct {
	Nickname string `json:"nickname"`
}

type StartGamePayload struct {
	TimeLimit json.Number `json:"time_limit"`
}

type SubmitAnswerPayload struct {
	Answer string `json:"answer"`
}

type SelectWinnerPayload struct {
	WinnerID string `json:"winner_id"`
}

func NewPlayerListMessage(room *Room) Message[[]RosterEntry] {
	return Message[[]RosterEntry]{Type: MessagePlayerListUpdate, Payload: room.PlayerList()}
}

func NewGameStateMessage(room *Room) Message[GameStateData] {
	return Message[GameStateData]{Type: MessageGameStateUpdate, Payload: room.GameState()}
}
