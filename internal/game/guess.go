package game

import (
	"github.com/scythe504/basta-backend/internal"
	"github.com/scythe504/basta-backend/internal/utils"
)

// =============================================================================
// ANSWERS & JUDGING
// =============================================================================

// handleSubmitAnswer records one answer per participant per round. The
// round closes once every non-moderator has answered.
func handleSubmitAnswer(_ Rules, room *internal.Room, a Action) Outcome {
	if room.Phase != internal.PhasePlaying {
		return dropped("round not running")
	}
	if room.IsModerator(a.ActorID) {
		return dropped("moderator cannot answer")
	}
	if room.HasAnswered(a.ActorID) {
		return dropped("already answered")
	}

	var p internal.SubmitAnswerPayload
	decodePayload(a.Payload, &p)

	room.RoundAnswers = append(room.RoundAnswers, internal.Answer{
		ClientID: a.ActorID,
		Nickname: room.Players[a.ActorID].Nickname,
		Answer:   utils.NormalizeAnswer(p.Answer),
	})
	if len(room.RoundAnswers) >= room.AnswersExpected() {
		room.Phase = internal.PhaseEvaluating
	}
	return Outcome{Room: room, GameState: true}
}

// handleForceEndRound closes the round early, usually when the client side
// timer runs out. Any participant may send it.
func handleForceEndRound(_ Rules, room *internal.Room, _ Action) Outcome {
	if room.Phase != internal.PhasePlaying {
		return dropped("round not running")
	}

	room.Phase = internal.PhaseEvaluating
	return Outcome{Room: room, GameState: true}
}

// handleSelectWinner scores the round. The winner moderates the next one.
func handleSelectWinner(_ Rules, room *internal.Room, a Action) Outcome {
	if !room.IsModerator(a.ActorID) {
		return dropped("actor is not the moderator")
	}
	if room.Phase != internal.PhaseEvaluating {
		return dropped("not evaluating")
	}

	var p internal.SelectWinnerPayload
	decodePayload(a.Payload, &p)
	winner, ok := room.Players[p.WinnerID]
	if p.WinnerID == "" || !ok {
		return dropped("unknown winner")
	}

	winner.Score++
	room.ModeratorID = p.WinnerID
	room.Phase = internal.PhaseScores
	return Outcome{Room: room, Roster: true, GameState: true}
}
