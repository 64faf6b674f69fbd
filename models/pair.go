package models

// PairStats are the accumulated group stage results of a pair.
type PairStats struct {
	Wins     int `json:"wins"`
	Played   int `json:"played"`
	GameDiff int `json:"game_diff"`
}

// Pair is a temporary team entered into a single tournament. Solo pairs hold
// one player and act as a placeholder until a partner is linked.
type Pair struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	PlayerIDs []int     `json:"player_ids"`
	IsReserve bool      `json:"is_reserve"`
	Active    bool      `json:"active"`
	Stats     PairStats `json:"stats"`
}

func (p *Pair) Solo() bool {
	return len(p.PlayerIDs) == 1
}

func (p *Pair) HasPlayer(playerID int) bool {
	for _, id := range p.PlayerIDs {
		if id == playerID {
			return true
		}
	}
	return false
}

// Group is a round robin pool. PairIDs keep the seeding order.
type Group struct {
	ID      string `json:"id"`
	PairIDs []int  `json:"pair_ids"`
}

func (g *Group) Contains(pairID int) bool {
	for _, id := range g.PairIDs {
		if id == pairID {
			return true
		}
	}
	return false
}
