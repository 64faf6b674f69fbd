package brackets

import (
	"testing"

	"github.com/Dosada05/mini-tournament/models"
)

func finished(id int, group string, a, b, scoreA, scoreB int) models.Match {
	return models.Match{
		ID: id, Bracket: models.BracketGroup, GroupID: group,
		PairAID: a, PairBID: b, ScoreA: &scoreA, ScoreB: &scoreB, IsFinished: true,
	}
}

func TestGroupStandings(t *testing.T) {
	group := &models.Group{ID: "A", PairIDs: []int{1, 2, 3, 4}}
	pairs := []models.Pair{{ID: 1, Name: "one"}, {ID: 2, Name: "two"}, {ID: 3, Name: "three"}, {ID: 4, Name: "four"}}

	tests := []struct {
		name    string
		matches []models.Match
		order   []int
	}{
		{
			name:  "nothing played keeps seeding order",
			order: []int{1, 2, 3, 4},
		},
		{
			name: "wins first",
			matches: []models.Match{
				finished(1, "A", 1, 4, 2, 6),
				finished(2, "A", 2, 3, 6, 5),
			},
			order: []int{4, 2, 3, 1},
		},
		{
			name: "game difference breaks equal wins",
			matches: []models.Match{
				finished(1, "A", 1, 4, 6, 5),
				finished(2, "A", 2, 3, 6, 0),
			},
			order: []int{2, 1, 4, 3},
		},
		{
			name: "level rows keep seeding order",
			matches: []models.Match{
				finished(1, "A", 1, 4, 6, 4),
				finished(2, "A", 3, 2, 6, 4),
			},
			order: []int{1, 3, 2, 4},
		},
		{
			name: "other groups and unfinished matches are ignored",
			matches: []models.Match{
				finished(1, "B", 4, 5, 6, 0),
				{ID: 2, Bracket: models.BracketGroup, GroupID: "A", PairAID: 4, PairBID: 1},
			},
			order: []int{1, 2, 3, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := GroupStandings(group, pairs, tt.matches)
			if len(rows) != len(tt.order) {
				t.Fatalf("expected %d rows, got %d", len(tt.order), len(rows))
			}
			for i, id := range tt.order {
				if rows[i].PairID != id {
					t.Errorf("position %d: expected pair %d, got %d", i+1, id, rows[i].PairID)
				}
				if rows[i].Position != i+1 {
					t.Errorf("row %d has position %d", i, rows[i].Position)
				}
			}
		})
	}
}

func TestGroupStandingsTotals(t *testing.T) {
	group := &models.Group{ID: "A", PairIDs: []int{1, 2}}
	pairs := []models.Pair{{ID: 1, Name: "one"}, {ID: 2, Name: "two"}}
	rows := GroupStandings(group, pairs, []models.Match{finished(1, "A", 1, 2, 6, 3)})

	top := rows[0]
	if top.PairName != "one" || top.Wins != 1 || top.Played != 1 || top.GamesFor != 6 || top.GamesAgainst != 3 || top.GameDiff != 3 {
		t.Errorf("unexpected leader row: %+v", top)
	}
	if rows[1].Losses != 1 || rows[1].GameDiff != -3 {
		t.Errorf("unexpected second row: %+v", rows[1])
	}
}

func TestRankAcrossGroups(t *testing.T) {
	tables := map[string][]Standing{
		"A": {{PairID: 1, Wins: 3}, {PairID: 2, Wins: 1, GameDiff: 2}},
		"B": {{PairID: 3, Wins: 3}, {PairID: 4, Wins: 2, GameDiff: -1}},
		"C": {{PairID: 5, Wins: 3}, {PairID: 6, Wins: 1, GameDiff: 5}},
	}

	rows := RankAcrossGroups(tables, []string{"A", "B", "C"}, 2)
	want := []int{4, 6, 2}
	for i, id := range want {
		if rows[i].PairID != id {
			t.Errorf("rank %d: expected pair %d, got %d", i+1, id, rows[i].PairID)
		}
	}
}
