package brackets

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Dosada05/mini-tournament/models"
	"github.com/Dosada05/mini-tournament/rating"
)

// Strategy selects how starter pairs are spread over groups.
type Strategy string

const (
	StrategyArrival     Strategy = "arrival"
	StrategyEloBalanced Strategy = "elo-balanced"
	StrategyEloMixed    Strategy = "elo-mixed"
	StrategyManual      Strategy = "manual"
)

var (
	ErrInsufficientPairs = errors.New("insufficient pairs to start")
	ErrUnknownStrategy   = errors.New("unknown seeding strategy")
	ErrInvalidManual     = errors.New("invalid manual group order")
)

func (s Strategy) Valid() bool {
	switch s {
	case StrategyArrival, StrategyEloBalanced, StrategyEloMixed, StrategyManual:
		return true
	}
	return false
}

type SeedParams struct {
	State    *models.TournamentState
	Layout   models.Layout
	Strategy Strategy
	// Manual lists the pair ids of every group, in group order. Only read by
	// the manual strategy.
	Manual [][]int
}

// Starters returns the active non-reserve pairs in registration order,
// truncated to the number of pairs the layout seeds.
func Starters(state *models.TournamentState, layout models.Layout) []models.Pair {
	starters := make([]models.Pair, 0, layout.RequiredPairs())
	for _, p := range state.Pairs {
		if !p.Active || p.IsReserve {
			continue
		}
		starters = append(starters, p)
		if len(starters) == layout.RequiredPairs() {
			break
		}
	}
	return starters
}

// Seed distributes the starters into the layout's groups.
func Seed(params SeedParams) ([]models.Group, error) {
	if !params.Strategy.Valid() {
		return nil, fmt.Errorf("%w %q", ErrUnknownStrategy, params.Strategy)
	}

	starters := Starters(params.State, params.Layout)
	if len(starters) < params.Layout.RequiredPairs() {
		return nil, fmt.Errorf("%w: %s needs %d starter pairs, have %d",
			ErrInsufficientPairs, params.Layout.Format, params.Layout.RequiredPairs(), len(starters))
	}

	if params.Strategy == StrategyManual {
		return seedManual(params.Layout, starters, params.Manual)
	}

	ids := make([]int, len(starters))
	for i, p := range starters {
		ids[i] = p.ID
	}

	groups := emptyGroups(params.Layout)
	switch params.Strategy {
	case StrategyArrival:
		sliceIntoGroups(groups, ids, params.Layout.GroupSize)
	case StrategyEloBalanced:
		sortByRating(params.State, starters, ids)
		sliceIntoGroups(groups, ids, params.Layout.GroupSize)
	case StrategyEloMixed:
		sortByRating(params.State, starters, ids)
		snake(groups, ids)
	}
	return groups, nil
}

func emptyGroups(layout models.Layout) []models.Group {
	groups := make([]models.Group, 0, layout.GroupCount)
	for _, id := range layout.GroupIDs() {
		groups = append(groups, models.Group{ID: id, PairIDs: make([]int, 0, layout.GroupSize)})
	}
	return groups
}

func sliceIntoGroups(groups []models.Group, ids []int, size int) {
	for i, id := range ids {
		g := &groups[i/size]
		g.PairIDs = append(g.PairIDs, id)
	}
}

// snake deals A, B, C, D, D, C, B, A, A, B, ...
func snake(groups []models.Group, ids []int) {
	n := len(groups)
	for i, id := range ids {
		lap, pos := i/n, i%n
		if lap%2 == 1 {
			pos = n - 1 - pos
		}
		groups[pos].PairIDs = append(groups[pos].PairIDs, id)
	}
}

// sortByRating orders ids by pair rating, best first. Unrated pairs go last
// and ties keep registration order.
func sortByRating(state *models.TournamentState, starters []models.Pair, ids []int) {
	type rated struct {
		id    int
		avg   float64
		known bool
	}
	rows := make([]rated, len(starters))
	for i := range starters {
		avg, ok := rating.PairAverage(state, &starters[i])
		rows[i] = rated{id: starters[i].ID, avg: avg, known: ok}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].known != rows[j].known {
			return rows[i].known
		}
		return rows[i].avg > rows[j].avg
	})
	for i, r := range rows {
		ids[i] = r.id
	}
}

func seedManual(layout models.Layout, starters []models.Pair, manual [][]int) ([]models.Group, error) {
	if len(manual) != layout.GroupCount {
		return nil, fmt.Errorf("%w: expected %d groups, got %d", ErrInvalidManual, layout.GroupCount, len(manual))
	}

	eligible := make(map[int]bool, len(starters))
	for _, p := range starters {
		eligible[p.ID] = true
	}

	groups := emptyGroups(layout)
	used := make(map[int]bool, layout.RequiredPairs())
	for i, chosen := range manual {
		if len(chosen) != layout.GroupSize {
			return nil, fmt.Errorf("%w: group %s needs %d pairs, got %d", ErrInvalidManual, groups[i].ID, layout.GroupSize, len(chosen))
		}
		for _, id := range chosen {
			if !eligible[id] {
				return nil, fmt.Errorf("%w: pair %d is not a starter", ErrInvalidManual, id)
			}
			if used[id] {
				return nil, fmt.Errorf("%w: pair %d chosen twice", ErrInvalidManual, id)
			}
			used[id] = true
			groups[i].PairIDs = append(groups[i].PairIDs, id)
		}
	}
	return groups, nil
}
