package game

import (
	"encoding/json"

	"github.com/scythe504/basta-backend/internal"
	"github.com/scythe504/basta-backend/internal/utils"
)

// =============================================================================
// ACTIONS
// =============================================================================

type Verb string

const (
	VerbJoin          Verb = "JOIN"
	VerbLeaveRoom     Verb = "LEAVE_ROOM"
	VerbStartGame     Verb = "START_GAME"
	VerbSpin          Verb = "SPIN"
	VerbStartRound    Verb = "START_ROUND"
	VerbSubmitAnswer  Verb = "SUBMIT_ANSWER"
	VerbForceEndRound Verb = "FORCE_END_ROUND"
	VerbSelectWinner  Verb = "SELECT_WINNER"
	VerbContinueGame  Verb = "CONTINUE_GAME"
	VerbRestartRound  Verb = "RESTART_ROUND"
	VerbEndGame       Verb = "END_GAME"
	VerbReturnToLobby Verb = "RETURN_TO_LOBBY"
)

// Action is one request from a participant to change its room.
type Action struct {
	Verb    Verb
	ActorID string
	Payload json.RawMessage
}

// Outcome is the result of applying an Action. A nil Room means the action
// was dropped and Reason says why. Otherwise Room is the next state and the
// flags say which views must be broadcast.
type Outcome struct {
	Room      *internal.Room
	Roster    bool
	GameState bool
	Reason    string
}

func (o Outcome) Applied() bool {
	return o.Room != nil
}

func dropped(reason string) Outcome {
	return Outcome{Reason: reason}
}

// Rules holds the tunables of the state machine.
type Rules struct {
	Picker           utils.Picker
	DefaultTimeLimit int
	MinPlayers       int
}

func DefaultRules() Rules {
	return Rules{
		Picker:           utils.NewRandomPicker(nil, nil),
		DefaultTimeLimit: internal.DefaultTimeLimit,
		MinPlayers:       internal.MinPlayersToStart,
	}
}

type handler func(r Rules, room *internal.Room, a Action) Outcome

var handlers = map[Verb]handler{
	VerbJoin:          handleJoin,
	VerbLeaveRoom:     handleLeaveRoom,
	VerbStartGame:     handleStartGame,
	VerbSpin:          handleSpin,
	VerbStartRound:    handleStartRound,
	VerbSubmitAnswer:  handleSubmitAnswer,
	VerbForceEndRound: handleForceEndRound,
	VerbSelectWinner:  handleSelectWinner,
	VerbContinueGame:  handleContinueGame,
	VerbRestartRound:  handleRestartRound,
	VerbEndGame:       handleEndGame,
	VerbReturnToLobby: handleReturnToLobby,
}

// Apply decides what a into room does. It never mutates room: handlers
// work on a deep copy which becomes Outcome.Room when the action applies.
func (r Rules) Apply(room *internal.Room, a Action) Outcome {
	h, ok := handlers[a.Verb]
	if !ok {
		return dropped("unknown action")
	}
	if room == nil {
		return dropped("no room")
	}
	if a.ActorID == "" {
		return dropped("missing actor")
	}
	if a.Verb != VerbJoin && !room.HasPlayer(a.ActorID) {
		return dropped("actor is not a participant")
	}
	return h(r, room.Clone(), a)
}

// decodePayload fills v from raw. A missing or malformed payload leaves v
// at its zero value.
func decodePayload(raw json.RawMessage, v any) {
	if len(raw) == 0 {
		return
	}
	_ = json.Unmarshal(raw, v)
}

func (r Rules) timeLimit(requested json.Number) int {
	if n, err := requested.Int64(); err == nil && n > 0 {
		return int(n)
	}
	if r.DefaultTimeLimit > 0 {
		return r.DefaultTimeLimit
	}
	return internal.DefaultTimeLimit
}

func (r Rules) minPlayers() int {
	if r.MinPlayers > 0 {
		return r.MinPlayers
	}
	return internal.MinPlayersToStart
}

func (r Rules) picker() utils.Picker {
	if r.Picker != nil {
		return r.Picker
	}
	return utils.NewRandomPicker(nil, nil)
}

// resetRound moves the room to PREPARING with a clean round.
func resetRound(room *internal.Room) {
	room.Phase = internal.PhasePreparing
	room.ClearRound()
}
