package internal

import (
	"time"
)

const (
	DefaultTimeLimit  = 60
	MinPlayersToStart = 3
	RoomCodeLength    = 4
	DefaultNickname   = "Unknown"
)

type GamePhase string

const (
	PhaseLobby       GamePhase = "LOBBY"
	PhasePreparing   GamePhase = "PREPARING"
	PhasePlaying     GamePhase = "PLAYING"
	PhaseEvaluating  GamePhase = "EVALUATING"
	PhaseScores      GamePhase = "SCORES"
	PhaseFinalScores GamePhase = "FINAL_SCORES"
)

// InGame reports whether a round cycle is running (a moderator is in charge).
func (p GamePhase) InGame() bool {
	switch p {
	case PhasePreparing, PhasePlaying, PhaseEvaluating, PhaseScores:
		return true
	}
	return false
}

// Top level keys of the stored room document, used for partial updates.
const (
	FieldPhase        = "state"
	FieldHostID       = "host_id"
	FieldModeratorID  = "moderator_id"
	FieldLetter       = "current_letter"
	FieldCategory     = "current_category"
	FieldRoundAnswers = "round_answers"
	FieldTimeLimit    = "time_limit"
	FieldPlayers      = "players"
	FieldPlayerOrder  = "player_order"
)

type Answer struct {
	ClientID string `json:"client_id"`
	Nickname string `json:"nickname"`
	Answer   string `json:"answer"`
}

// Room is the canonical shape of one game session, exactly as it is
// persisted in the room store.
type Room struct {
	Id    string    `json:"room_id"`
	Phase GamePhase `json:"state"`

	// Roles. Both are weak references into Players.
	HostID      string `json:"host_id"`
	ModeratorID string `json:"moderator_id"`

	// Round state
	CurrentLetter   *string  `json:"current_letter"`
	CurrentCategory *string  `json:"current_category"`
	RoundAnswers    []Answer `json:"round_answers"`
	TimeLimit       int      `json:"time_limit"`

	// Players keyed by client id. PlayerOrder keeps join order since
	// JSON objects carry none.
	Players     map[string]*Player `json:"players"`
	PlayerOrder []string           `json:"player_order"`

	CreatedAt time.Time `json:"created_at"`
}

type RosterEntry struct {
	ID          string `json:"id"`
	Nickname    string `json:"nickname"`
	Score       int    `json:"score"`
	IsHost      bool   `json:"is_host"`
	IsModerator bool   `json:"is_moderator"`
}

type GameStateData struct {
	Phase       GamePhase `json:"state"`
	ModeratorID *string   `json:"moderator_id"`
	Letter      *string   `json:"letter"`
	Category    *string   `json:"category"`
	Answers     []Answer  `json:"answers"`
	TimeLimit   int       `json:"time_limit"`
}

type LeaderboardEntry struct {
	PlayerID string `json:"player_id"`
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
	Position int    `json:"position"`
}

type Response struct {
	StatusCode    int   `json:"status_code"`
	RespStartTime int64 `json:"resp_time_start_ms"`
	RespEndTime   int64 `json:"resp_time_end_ms"`
	NetRespTime   int64 `json:"net_resp_time_ms"`
	Data          any   `json:"data"`
}
