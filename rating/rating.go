// Package rating computes first ratings from skill bands and the rating
// transfer applied after every finished match.
package rating

import (
	"errors"
	"fmt"
	"math"

	"github.com/Dosada05/mini-tournament/models"
)

const (
	MinRating = 0
	MaxRating = 6000

	bandWidth    = 1000
	sliderCenter = 5
	sliderStep   = 80

	baseTransfer  = 100
	transferSwing = 50
	// gapScale is the rating gap at which the transfer saturates.
	gapScale = 1000.0
)

var (
	ErrNoCategories = errors.New("at least one category is required")
	ErrUnknownBand  = errors.New("unknown category")
	ErrSliderRange  = errors.New("slider must be between 1 and 10")
)

var bands = map[models.Category]int{
	models.CategoryBeginner:         0,
	models.CategoryInitiation:       1,
	models.CategoryIntermediate:     2,
	models.CategoryIntermediateHigh: 3,
	models.CategoryAdvanced:         4,
	models.CategoryCompetition:      5,
}

// Initial returns the starting rating for a player who picked the given bands
// and slider position: the midpoint of the union of the bands, moved by 80
// points per slider step away from 5.
func Initial(categories []models.Category, slider int) (int, error) {
	if len(categories) == 0 {
		return 0, ErrNoCategories
	}
	if slider < 1 || slider > 10 {
		return 0, fmt.Errorf("%w: got %d", ErrSliderRange, slider)
	}

	lo, hi := len(bands), -1
	for _, c := range categories {
		idx, ok := bands[c]
		if !ok {
			return 0, fmt.Errorf("%w %q", ErrUnknownBand, c)
		}
		lo = min(lo, idx)
		hi = max(hi, idx)
	}

	mid := (lo*bandWidth + (hi+1)*bandWidth) / 2
	return clamp(mid + (slider-sliderCenter)*sliderStep), nil
}

// Transfer returns the points moved from the losing to the winning side.
// Equal averages move 100 points; the value slides linearly with the signed
// gap and saturates at 50 (favorite wins by 1000+) and 150 (underdog wins
// by 1000+).
func Transfer(winnerAvg, loserAvg float64) int {
	d := (loserAvg - winnerAvg) / gapScale
	d = math.Max(-1, math.Min(1, d))
	return int(math.Round(baseTransfer + transferSwing*d))
}

// PairAverage averages the ratings of the given players. ok is false when a
// player is unknown or unrated.
func PairAverage(state *models.TournamentState, pair *models.Pair) (float64, bool) {
	if pair == nil || len(pair.PlayerIDs) == 0 {
		return 0, false
	}
	total := 0
	for _, id := range pair.PlayerIDs {
		p := state.Player(id)
		if p == nil || p.Rating == nil {
			return 0, false
		}
		total += *p.Rating
	}
	return float64(total) / float64(len(pair.PlayerIDs)), true
}

// ApplyMatch moves rating points between the players of a finished match and
// returns the applied per-player deltas. It does nothing when either side has
// no rating.
func ApplyMatch(state *models.TournamentState, winner, loser *models.Pair) map[int]int {
	wAvg, ok := PairAverage(state, winner)
	if !ok {
		return nil
	}
	lAvg, ok := PairAverage(state, loser)
	if !ok {
		return nil
	}

	points := Transfer(wAvg, lAvg)
	deltas := make(map[int]int, len(winner.PlayerIDs)+len(loser.PlayerIDs))
	for _, id := range winner.PlayerIDs {
		deltas[id] = adjust(state.Player(id), points)
	}
	for _, id := range loser.PlayerIDs {
		deltas[id] = adjust(state.Player(id), -points)
	}
	return deltas
}

// Revert undoes deltas previously returned by ApplyMatch.
func Revert(state *models.TournamentState, deltas map[int]int) {
	for id, delta := range deltas {
		if p := state.Player(id); p != nil && p.Rating != nil {
			r := clamp(*p.Rating - delta)
			p.Rating = &r
		}
	}
}

func adjust(p *models.Player, points int) int {
	before := *p.Rating
	after := clamp(before + points)
	p.Rating = &after
	return after - before
}

func clamp(r int) int {
	return max(MinRating, min(MaxRating, r))
}
