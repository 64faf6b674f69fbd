package models

// TournamentStatus is the lifecycle state of a tournament.
type TournamentStatus string

const (
	StatusSetup    TournamentStatus = "setup"
	StatusActive   TournamentStatus = "active"
	StatusFinished TournamentStatus = "finished"
)

// TournamentState is the complete state of one organizer's live tournament.
type TournamentState struct {
	Format       Format           `json:"format"`
	Status       TournamentStatus `json:"status"`
	CurrentRound int              `json:"current_round"`
	Courts       int              `json:"courts"`

	Players []Player `json:"players"`
	Pairs   []Pair   `json:"pairs"`
	Groups  []Group  `json:"groups"`
	Matches []Match  `json:"matches"`

	NextPlayerID int `json:"next_player_id"`
	NextPairID   int `json:"next_pair_id"`
	NextMatchID  int `json:"next_match_id"`
}

// NewTournamentState returns an empty setup state.
func NewTournamentState(format Format, courts int) *TournamentState {
	return &TournamentState{
		Format:       format,
		Status:       StatusSetup,
		Courts:       courts,
		Players:      []Player{},
		Pairs:        []Pair{},
		Groups:       []Group{},
		Matches:      []Match{},
		NextPlayerID: 1,
		NextPairID:   1,
		NextMatchID:  1,
	}
}

func (s *TournamentState) Player(id int) *Player {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

func (s *TournamentState) Pair(id int) *Pair {
	for i := range s.Pairs {
		if s.Pairs[i].ID == id {
			return &s.Pairs[i]
		}
	}
	return nil
}

func (s *TournamentState) Group(id string) *Group {
	for i := range s.Groups {
		if s.Groups[i].ID == id {
			return &s.Groups[i]
		}
	}
	return nil
}

func (s *TournamentState) Match(id int) *Match {
	for i := range s.Matches {
		if s.Matches[i].ID == id {
			return &s.Matches[i]
		}
	}
	return nil
}

// GroupOf returns the group a pair is seeded in, or nil.
func (s *TournamentState) GroupOf(pairID int) *Group {
	for i := range s.Groups {
		if s.Groups[i].Contains(pairID) {
			return &s.Groups[i]
		}
	}
	return nil
}

// RoundMatches returns pointers to the matches of a round in id order.
func (s *TournamentState) RoundMatches(round int) []*Match {
	var out []*Match
	for i := range s.Matches {
		if s.Matches[i].Round == round {
			out = append(out, &s.Matches[i])
		}
	}
	return out
}

// Clone returns a deep copy. Transitions work on a clone so a failed
// operation leaves the original untouched.
func (s *TournamentState) Clone() *TournamentState {
	c := *s

	c.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		p.Categories = append([]Category(nil), p.Categories...)
		p.Nickname = cloneString(p.Nickname)
		p.Phone = cloneString(p.Phone)
		p.Email = cloneString(p.Email)
		p.Rating = cloneInt(p.Rating)
		c.Players[i] = p
	}

	c.Pairs = make([]Pair, len(s.Pairs))
	for i, p := range s.Pairs {
		p.PlayerIDs = append([]int(nil), p.PlayerIDs...)
		c.Pairs[i] = p
	}

	c.Groups = make([]Group, len(s.Groups))
	for i, g := range s.Groups {
		g.PairIDs = append([]int(nil), g.PairIDs...)
		c.Groups[i] = g
	}

	c.Matches = make([]Match, len(s.Matches))
	for i, m := range s.Matches {
		m.ScoreA = cloneInt(m.ScoreA)
		m.ScoreB = cloneInt(m.ScoreB)
		if m.RatingDeltas != nil {
			deltas := make(map[int]int, len(m.RatingDeltas))
			for k, v := range m.RatingDeltas {
				deltas[k] = v
			}
			m.RatingDeltas = deltas
		}
		c.Matches[i] = m
	}
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	return &s
}
