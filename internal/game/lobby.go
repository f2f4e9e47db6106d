package game

import (
	"strings"

	"github.com/scythe504/basta-backend/internal"
)

// =============================================================================
// GAME FLOW - LOBBY & MEMBERSHIP
// =============================================================================

// handleJoin upserts the actor. A rejoin keeps score and host flag and is
// allowed in any phase; a new participant may only join the lobby.
func handleJoin(_ Rules, room *internal.Room, a Action) Outcome {
	var p internal.JoinPayload
	decodePayload(a.Payload, &p)
	nickname := strings.TrimSpace(p.Nickname)
	if nickname == "" {
		nickname = internal.DefaultNickname
	}

	if existing, ok := room.Players[a.ActorID]; ok {
		existing.Nickname = nickname
		existing.Connected = true
		return Outcome{Room: room, Roster: true}
	}

	if room.Phase != internal.PhaseLobby {
		return dropped("game in progress")
	}

	isHost := room.GetPlayerCount() == 0
	room.AddPlayer(a.ActorID, &internal.Player{
		Nickname:  nickname,
		IsHost:    isHost,
		Connected: true,
	})
	if isHost {
		room.HostID = a.ActorID
	}
	return Outcome{Room: room, Roster: true}
}

// handleLeaveRoom removes the actor in any phase, handing host and
// moderator roles on when the actor held them.
func handleLeaveRoom(_ Rules, room *internal.Room, a Action) Outcome {
	wasHost := room.HostID == a.ActorID || room.Players[a.ActorID].IsHost
	wasModerator := room.IsModerator(a.ActorID)

	room.RemovePlayer(a.ActorID)

	if room.GetPlayerCount() == 0 {
		room.HostID = ""
		room.ModeratorID = ""
		return Outcome{Room: room, Roster: true, GameState: wasModerator}
	}

	if wasHost {
		room.PromoteEarliestHost()
	}
	if wasModerator {
		room.ModeratorID = room.HostID
	}
	return Outcome{Room: room, Roster: true, GameState: wasModerator}
}

// handleStartGame opens the first round with the host as moderator.
func handleStartGame(r Rules, room *internal.Room, a Action) Outcome {
	if room.Phase != internal.PhaseLobby {
		return dropped("game already started")
	}
	if room.GetPlayerCount() < r.minPlayers() {
		return dropped("not enough players")
	}
	if !room.HasPlayer(room.HostID) {
		room.PromoteEarliestHost()
	}

	var p internal.StartGamePayload
	decodePayload(a.Payload, &p)

	resetRound(room)
	room.ModeratorID = room.HostID
	room.TimeLimit = r.timeLimit(p.TimeLimit)
	return Outcome{Room: room, GameState: true}
}

// handleReturnToLobby lets the host reset scores after the final scores.
func handleReturnToLobby(_ Rules, room *internal.Room, a Action) Outcome {
	if room.Phase != internal.PhaseFinalScores {
		return dropped("game not finished")
	}
	if !room.Players[a.ActorID].IsHost {
		return dropped("actor is not the host")
	}

	for _, p := range room.Players {
		p.Score = 0
	}
	room.Phase = internal.PhaseLobby
	room.ClearRound()
	return Outcome{Room: room, Roster: true, GameState: true}
}
