package engine

import (
	"errors"
	"fmt"

	"github.com/Dosada05/mini-tournament/brackets"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrInvalidStatus       = errors.New("operation not allowed in the current tournament status")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrPairNotFound        = errors.New("pair not found")
	ErrGroupNotFound       = errors.New("group not found")
	ErrMatchNotFound       = errors.New("match not found")
	ErrPlayerAlreadyPaired = errors.New("player already paired")
	ErrPairInPlay          = errors.New("cannot substitute an active/playable pair mid-match")
	ErrEqualScores         = errors.New("scores cannot be equal")
	ErrMatchNotPlayable    = errors.New("match has no court this round")
	ErrMatchLocked         = errors.New("match result already used by a later round")
	ErrRoundNotReady       = errors.New("round not ready to advance")
	ErrNotFinished         = errors.New("tournament is not finished")

	ErrInsufficientPairs = brackets.ErrInsufficientPairs
)

// RoundNotReadyError reports how many matches still block an advance.
type RoundNotReadyError struct {
	Round     int
	Remaining int
}

func (e *RoundNotReadyError) Error() string {
	return fmt.Sprintf("%s: round %d has %d unfinished match(es)", ErrRoundNotReady, e.Round, e.Remaining)
}

func (e *RoundNotReadyError) Unwrap() error {
	return ErrRoundNotReady
}
