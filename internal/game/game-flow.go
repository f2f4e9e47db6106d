package game

import (
	"github.com/scythe504/basta-backend/internal"
)

// =============================================================================
// GAME FLOW - ROUNDS (moderator actions)
// =============================================================================

func handleSpin(r Rules, room *internal.Room, a Action) Outcome {
	if !room.IsModerator(a.ActorID) {
		return dropped("actor is not the moderator")
	}
	if room.Phase != internal.PhasePreparing {
		return dropped("not preparing a round")
	}

	picker := r.picker()
	letter := picker.RandomLetter()
	category := picker.RandomCategory()
	room.CurrentLetter = &letter
	room.CurrentCategory = &category
	return Outcome{Room: room, GameState: true}
}

func handleStartRound(_ Rules, room *internal.Room, a Action) Outcome {
	if !room.IsModerator(a.ActorID) {
		return dropped("actor is not the moderator")
	}
	if room.Phase != internal.PhasePreparing {
		return dropped("not preparing a round")
	}
	if room.CurrentLetter == nil || *room.CurrentLetter == "" {
		return dropped("no letter drawn")
	}

	room.Phase = internal.PhasePlaying
	return Outcome{Room: room, GameState: true}
}

func handleContinueGame(_ Rules, room *internal.Room, a Action) Outcome {
	if !room.IsModerator(a.ActorID) {
		return dropped("actor is not the moderator")
	}
	if room.Phase != internal.PhaseScores {
		return dropped("not showing scores")
	}

	resetRound(room)
	return Outcome{Room: room, GameState: true}
}

// handleRestartRound throws the current round away without scoring it.
func handleRestartRound(_ Rules, room *internal.Room, a Action) Outcome {
	if !room.IsModerator(a.ActorID) {
		return dropped("actor is not the moderator")
	}
	if room.Phase != internal.PhaseEvaluating {
		return dropped("not evaluating")
	}

	resetRound(room)
	return Outcome{Room: room, GameState: true}
}

func handleEndGame(_ Rules, room *internal.Room, a Action) Outcome {
	if !room.IsModerator(a.ActorID) {
		return dropped("actor is not the moderator")
	}
	if !room.Phase.InGame() {
		return dropped("no game running")
	}

	room.Phase = internal.PhaseFinalScores
	return Outcome{Room: room, GameState: true}
}
