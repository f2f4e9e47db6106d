package internal

import (
	"slices"
	"sort"
	"time"
)

// NewRoom returns an empty lobby, the shape a freshly allocated room code
// is persisted with.
func NewRoom(id string, timeLimit int, now time.Time) *Room {
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}
	return &Room{
		Id:           id,
		Phase:        PhaseLobby,
		RoundAnswers: make([]Answer, 0),
		TimeLimit:    timeLimit,
		Players:      make(map[string]*Player),
		PlayerOrder:  make([]string, 0),
		CreatedAt:    now.UTC(),
	}
}

// Clone returns a deep copy; mutations on the copy never reach the original.
func (r *Room) Clone() *Room {
	cp := *r
	if r.CurrentLetter != nil {
		letter := *r.CurrentLetter
		cp.CurrentLetter = &letter
	}
	if r.CurrentCategory != nil {
		category := *r.CurrentCategory
		cp.CurrentCategory = &category
	}
	cp.RoundAnswers = slices.Clone(r.RoundAnswers)
	if cp.RoundAnswers == nil {
		cp.RoundAnswers = make([]Answer, 0)
	}
	cp.PlayerOrder = slices.Clone(r.PlayerOrder)
	cp.Players = make(map[string]*Player, len(r.Players))
	for id, p := range r.Players {
		cp.Players[id] = p.clone()
	}
	return &cp
}

// Normalize repairs a document read from the store: nil collections become
// empty and PlayerOrder is reconciled with the Players keys.
func (r *Room) Normalize() {
	if r.Players == nil {
		r.Players = make(map[string]*Player)
	}
	if r.RoundAnswers == nil {
		r.RoundAnswers = make([]Answer, 0)
	}
	if r.Phase == "" {
		r.Phase = PhaseLobby
	}
	if r.TimeLimit <= 0 {
		r.TimeLimit = DefaultTimeLimit
	}

	seen := make(map[string]bool, len(r.PlayerOrder))
	order := make([]string, 0, len(r.Players))
	for _, id := range r.PlayerOrder {
		if _, ok := r.Players[id]; ok && !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}
	// Players written without an order (e.g. by another writer) go last,
	// sorted so every reader agrees on the same order.
	missing := make([]string, 0)
	for id := range r.Players {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)
	r.PlayerOrder = append(order, missing...)
}

func (r *Room) GetPlayerCount() int {
	return len(r.Players)
}

func (r *Room) HasPlayer(id string) bool {
	_, ok := r.Players[id]
	return ok
}

func (r *Room) IsModerator(id string) bool {
	return r.ModeratorID != "" && r.ModeratorID == id
}

func (r *Room) HasAnswered(id string) bool {
	return slices.ContainsFunc(r.RoundAnswers, func(a Answer) bool {
		return a.ClientID == id
	})
}

// AnswersExpected is the number of answers that closes a round: every
// participant except the moderator.
func (r *Room) AnswersExpected() int {
	count := 0
	for id := range r.Players {
		if id != r.ModeratorID {
			count++
		}
	}
	return count
}

// ClearRound drops everything tied to the current round.
func (r *Room) ClearRound() {
	r.CurrentLetter = nil
	r.CurrentCategory = nil
	r.RoundAnswers = make([]Answer, 0)
}

// AddPlayer appends a new participant at the end of the join order.
func (r *Room) AddPlayer(id string, p *Player) {
	if _, exists := r.Players[id]; !exists {
		r.PlayerOrder = append(r.PlayerOrder, id)
	}
	r.Players[id] = p
}

func (r *Room) RemovePlayer(id string) {
	delete(r.Players, id)
	r.PlayerOrder = slices.DeleteFunc(r.PlayerOrder, func(s string) bool {
		return s == id
	})
}

// PromoteEarliestHost hands host rights to the earliest remaining joiner.
// It returns the new host id, or "" when nobody is left.
func (r *Room) PromoteEarliestHost() string {
	for _, id := range r.PlayerOrder {
		if p, ok := r.Players[id]; ok {
			for _, other := range r.Players {
				other.IsHost = false
			}
			p.IsHost = true
			r.HostID = id
			return id
		}
	}
	r.HostID = ""
	return ""
}

// PlayerList is the roster view. IsModerator is derived, never stored.
func (r *Room) PlayerList() []RosterEntry {
	roster := make([]RosterEntry, 0, len(r.PlayerOrder))
	for _, id := range r.PlayerOrder {
		p, ok := r.Players[id]
		if !ok {
			continue
		}
		roster = append(roster, RosterEntry{
			ID:          id,
			Nickname:    p.Nickname,
			Score:       p.Score,
			IsHost:      p.IsHost,
			IsModerator: id == r.ModeratorID,
		})
	}
	return roster
}

// GameState is the public game-state view.
func (r *Room) GameState() GameStateData {
	state := GameStateData{
		Phase:     r.Phase,
		Letter:    r.CurrentLetter,
		Category:  r.CurrentCategory,
		Answers:   slices.Clone(r.RoundAnswers),
		TimeLimit: r.TimeLimit,
	}
	if state.Answers == nil {
		state.Answers = make([]Answer, 0)
	}
	if r.ModeratorID != "" {
		moderator := r.ModeratorID
		state.ModeratorID = &moderator
	}
	if state.TimeLimit <= 0 {
		state.TimeLimit = DefaultTimeLimit
	}
	return state
}
