package engine

import (
	"fmt"

	"github.com/Dosada05/mini-tournament/brackets"
	"github.com/Dosada05/mini-tournament/models"
)

// Layout returns the configuration table row of the current format.
func (e *Engine) Layout() (models.Layout, error) {
	return models.LayoutFor(e.state.Format)
}

// Standings ranks a group from its finished matches.
func (e *Engine) Standings(groupID string) ([]brackets.Standing, error) {
	g := e.state.Group(groupID)
	if g == nil {
		return nil, fmt.Errorf("%w: %q", ErrGroupNotFound, groupID)
	}
	return brackets.GroupStandings(g, e.state.Pairs, e.state.Matches), nil
}

// PlayableMatches lists the matches of a round that hold a court, by court.
func (e *Engine) PlayableMatches(round int) []models.Match {
	return brackets.PlayableMatches(e.state, round)
}

type Champions struct {
	Main              string `json:"main"`
	MainPairID        int    `json:"main_pair_id"`
	Consolation       string `json:"consolation"`
	ConsolationPairID int    `json:"consolation_pair_id"`
}

// Champions names the winners of the main and consolation finals.
func (e *Engine) Champions() (*Champions, error) {
	if e.state.Status != models.StatusFinished {
		return nil, fmt.Errorf("%w: tournament is %s", ErrNotFinished, e.state.Status)
	}
	plan, err := brackets.PlanFor(e.state.Format)
	if err != nil {
		return nil, err
	}

	var c Champions
	c.MainPairID, c.Main = finalWinner(e.state, plan.MainFinal)
	c.ConsolationPairID, c.Consolation = finalWinner(e.state, plan.ConsolationFinal)
	return &c, nil
}

func finalWinner(st *models.TournamentState, slot string) (int, string) {
	m := matchBySlot(st, slot)
	if m == nil {
		return 0, ""
	}
	winner, _, ok := m.Winner()
	if !ok {
		return 0, ""
	}
	if p := st.Pair(winner); p != nil {
		return p.ID, p.Name
	}
	return winner, ""
}
