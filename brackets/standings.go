package brackets

import (
	"sort"

	"github.com/Dosada05/mini-tournament/models"
)

// Standing is one row of a group table.
type Standing struct {
	Position     int    `json:"position"`
	GroupID      string `json:"group_id"`
	PairID       int    `json:"pair_id"`
	PairName     string `json:"pair_name"`
	Played       int    `json:"played"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	GamesFor     int    `json:"games_for"`
	GamesAgainst int    `json:"games_against"`
	GameDiff     int    `json:"game_diff"`
}

// GroupStandings ranks the pairs of a group from the finished group matches.
// Order is wins desc, then game difference desc. Pairs still level keep their
// seeding order; no further tie-break is applied.
func GroupStandings(group *models.Group, pairs []models.Pair, matches []models.Match) []Standing {
	rows := make([]Standing, len(group.PairIDs))
	index := make(map[int]int, len(group.PairIDs))
	for i, id := range group.PairIDs {
		index[id] = i
		rows[i] = Standing{GroupID: group.ID, PairID: id}
	}
	for _, p := range pairs {
		if i, ok := index[p.ID]; ok {
			rows[i].PairName = p.Name
		}
	}

	for _, m := range matches {
		if m.Bracket != models.BracketGroup || m.GroupID != group.ID || !m.IsFinished {
			continue
		}
		ia, okA := index[m.PairAID]
		ib, okB := index[m.PairBID]
		if !okA || !okB || m.ScoreA == nil || m.ScoreB == nil {
			continue
		}
		a, b := *m.ScoreA, *m.ScoreB
		record(&rows[ia], a, b)
		record(&rows[ib], b, a)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return less(rows[i], rows[j])
	})
	for i := range rows {
		rows[i].Position = i + 1
	}
	return rows
}

func record(s *Standing, own, other int) {
	s.Played++
	s.GamesFor += own
	s.GamesAgainst += other
	s.GameDiff += own - other
	if own > other {
		s.Wins++
	} else {
		s.Losses++
	}
}

func less(a, b Standing) bool {
	if a.Wins != b.Wins {
		return a.Wins > b.Wins
	}
	return a.GameDiff > b.GameDiff
}

// AllStandings computes the table of every group, keyed by group id.
func AllStandings(state *models.TournamentState) map[string][]Standing {
	out := make(map[string][]Standing, len(state.Groups))
	for i := range state.Groups {
		g := &state.Groups[i]
		out[g.ID] = GroupStandings(g, state.Pairs, state.Matches)
	}
	return out
}

// RankAcrossGroups orders the pairs that finished at the same position in
// their groups (for example every second placed pair) with the group table
// key. Level rows keep group order.
func RankAcrossGroups(tables map[string][]Standing, groupIDs []string, position int) []Standing {
	rows := make([]Standing, 0, len(groupIDs))
	for _, id := range groupIDs {
		table := tables[id]
		if position >= 1 && position <= len(table) {
			rows = append(rows, table[position-1])
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return less(rows[i], rows[j])
	})
	return rows
}
