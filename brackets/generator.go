package brackets

import (
	"errors"
	"fmt"

	"github.com/Dosada05/mini-tournament/models"
)

var ErrUnresolvedSlot = errors.New("playoff slot depends on an undecided match")

type GenerateRoundParams struct {
	State  *models.TournamentState
	Layout models.Layout
	Round  int
}

// BracketMatch is a generated fixture before it receives a match id.
type BracketMatch struct {
	Bracket        models.Bracket
	Phase          models.Phase
	GroupID        string
	Slot           string
	PairAID        int
	PairBID        int
	RequestedCourt int
}

// BracketGenerator materializes exactly the matches of one round.
type BracketGenerator interface {
	GenerateRound(params GenerateRoundParams) ([]*BracketMatch, error)

	GetName() string
}

// GeneratorFor picks the generator responsible for a round of the layout.
func GeneratorFor(layout models.Layout, round int) (BracketGenerator, error) {
	switch {
	case round >= 1 && round <= layout.GroupRounds:
		return NewRoundRobinGenerator(), nil
	case round > layout.GroupRounds && round <= layout.LastRound():
		return NewPlayoffGenerator(), nil
	default:
		return nil, fmt.Errorf("round %d is outside the %s schedule (1..%d)", round, layout.Format, layout.LastRound())
	}
}
