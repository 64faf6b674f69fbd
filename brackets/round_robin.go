package brackets

import (
	"fmt"

	"github.com/Dosada05/mini-tournament/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() BracketGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateRound returns the group fixtures of one group stage round. Groups
// are walked in order and requested courts are numbered across them, so group
// A asks for the lowest courts.
func (g *RoundRobinGenerator) GenerateRound(params GenerateRoundParams) ([]*BracketMatch, error) {
	if params.Round < 1 || params.Round > params.Layout.GroupRounds {
		return nil, fmt.Errorf("RoundRobinGenerator: round %d is not a group round (1..%d)", params.Round, params.Layout.GroupRounds)
	}

	matches := make([]*BracketMatch, 0)
	court := 0
	for _, group := range params.State.Groups {
		if len(group.PairIDs) < 2 {
			return nil, fmt.Errorf("RoundRobinGenerator: group %s has %d pairs, min 2 required", group.ID, len(group.PairIDs))
		}
		schedule := GroupSchedule(len(group.PairIDs), params.Layout.GroupRounds)
		for _, fx := range schedule[params.Round-1] {
			court++
			matches = append(matches, &BracketMatch{
				Bracket:        models.BracketGroup,
				Phase:          models.PhaseGroup,
				GroupID:        group.ID,
				PairAID:        group.PairIDs[fx[0]],
				PairBID:        group.PairIDs[fx[1]],
				RequestedCourt: court,
			})
		}
	}
	return matches, nil
}

// GroupSchedule returns, for a group of n seeds, the fixtures of each of the
// given number of rounds as pairs of seed indexes. It runs the circle method
// (one seed fixed, the rest rotating, a bye for odd n) and, when more rounds
// are wanted than the circle yields, splits the last multi-match rounds so
// fewer matches run at the same time.
func GroupSchedule(n, rounds int) [][][2]int {
	schedule := circleRounds(n)
	for len(schedule) < rounds {
		split := -1
		for i := len(schedule) - 1; i >= 0; i-- {
			if len(schedule[i]) > 1 {
				split = i
				break
			}
		}
		if split < 0 {
			schedule = append(schedule, nil)
			continue
		}
		head := schedule[split][:1]
		tail := schedule[split][1:]
		next := make([][][2]int, 0, len(schedule)+1)
		next = append(next, schedule[:split]...)
		next = append(next, head, tail)
		next = append(next, schedule[split+1:]...)
		schedule = next
	}
	return schedule
}

func circleRounds(n int) [][][2]int {
	seeds := make([]int, n)
	for i := range seeds {
		seeds[i] = i
	}
	if n%2 != 0 {
		seeds = append(seeds, -1)
	}
	size := len(seeds)
	half := size / 2

	rounds := make([][][2]int, 0, size-1)
	for r := 0; r < size-1; r++ {
		var fixtures [][2]int
		for i := 0; i < half; i++ {
			a, b := seeds[i], seeds[size-1-i]
			if a < 0 || b < 0 {
				continue
			}
			fixtures = append(fixtures, [2]int{a, b})
		}
		rounds = append(rounds, fixtures)

		// keep the first seed fixed, move the last one to position 1
		rotated := make([]int, 0, size)
		rotated = append(rotated, seeds[0], seeds[size-1])
		rotated = append(rotated, seeds[1:size-1]...)
		seeds = rotated
	}
	return rounds
}
