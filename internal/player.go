package internal

type Player struct {
	Nickname  string `json:"nickname"`
	Score     int    `json:"score"`
	IsHost    bool   `json:"is_host"`
	Connected bool   `json:"connected"`
}

func (p *Player) clone() *Player {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
