package brackets

import (
	"sort"

	"github.com/Dosada05/mini-tournament/models"
)

// AllocateCourts assigns the club's courts (1..courts) to the given matches
// and sets their court status. Finished matches are ignored and keep whatever
// they had. Courts listed in occupied are held by matches already playing and
// cannot be given out.
//
// Matches are served by round (older first), bracket priority (main,
// consolation, group), requested court and id. A match first tries the court
// it asked for; matches still without a court take the lowest free one. What
// is left gets court 0, on technical rest when the court it asked for exists
// but is taken, waiting otherwise.
func AllocateCourts(matches []*models.Match, courts int, occupied []int) {
	pending := make([]*models.Match, 0, len(matches))
	for _, m := range matches {
		if !m.IsFinished {
			pending = append(pending, m)
		}
	}

	sort.SliceStable(pending, func(i, j int) bool {
		a, b := pending[i], pending[j]
		if a.Round != b.Round {
			return a.Round < b.Round
		}
		if a.Bracket.Priority() != b.Bracket.Priority() {
			return a.Bracket.Priority() < b.Bracket.Priority()
		}
		if courtKey(a.RequestedCourt) != courtKey(b.RequestedCourt) {
			return courtKey(a.RequestedCourt) < courtKey(b.RequestedCourt)
		}
		return a.ID < b.ID
	})

	taken := make(map[int]bool, courts)
	for _, c := range occupied {
		taken[c] = true
	}
	assigned := make(map[int]bool, len(pending))

	for _, m := range pending {
		c := m.RequestedCourt
		if c >= 1 && c <= courts && !taken[c] {
			taken[c] = true
			assigned[m.ID] = true
			m.Court = c
			m.CourtStatus = models.CourtScheduled
		}
	}

	free := 1
	for _, m := range pending {
		if assigned[m.ID] {
			continue
		}
		for free <= courts && taken[free] {
			free++
		}
		if free > courts {
			break
		}
		taken[free] = true
		assigned[m.ID] = true
		m.Court = free
		m.CourtStatus = models.CourtScheduled
	}

	for _, m := range pending {
		if assigned[m.ID] {
			continue
		}
		m.Court = 0
		if m.RequestedCourt >= 1 && m.RequestedCourt <= courts {
			m.CourtStatus = models.CourtTechnicalRest
		} else {
			m.CourtStatus = models.CourtWaiting
		}
	}
}

// courtKey sorts "no preference" after every real court.
func courtKey(c int) int {
	if c <= 0 {
		return int(^uint(0) >> 1)
	}
	return c
}

// PlayableMatches returns the matches of a round that hold a court.
func PlayableMatches(state *models.TournamentState, round int) []models.Match {
	out := make([]models.Match, 0)
	for _, m := range state.RoundMatches(round) {
		if m.Playable() {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Court < out[j].Court
	})
	return out
}
