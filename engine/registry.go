package engine

import (
	"fmt"
	"strings"

	"github.com/Dosada05/mini-tournament/models"
	"github.com/Dosada05/mini-tournament/rating"
)

type PlayerInput struct {
	Name       string            `json:"name"`
	Nickname   *string           `json:"nickname,omitempty"`
	Phone      *string           `json:"phone,omitempty"`
	Email      *string           `json:"email,omitempty"`
	Categories []models.Category `json:"categories"`
	Slider     int               `json:"slider"`
	// Rating overrides the band based first rating when set.
	Rating *int `json:"rating,omitempty"`
}

// AddPlayer registers a player profile and derives its first rating.
func (e *Engine) AddPlayer(input PlayerInput) (*models.Player, error) {
	var created models.Player
	err := e.apply(func(st *models.TournamentState) error {
		name := strings.TrimSpace(input.Name)
		if name == "" {
			return fmt.Errorf("%w: player name is required", ErrValidation)
		}

		initial, err := rating.Initial(input.Categories, input.Slider)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrValidation, err)
		}
		if input.Rating != nil {
			if *input.Rating < rating.MinRating || *input.Rating > rating.MaxRating {
				return fmt.Errorf("%w: rating must be between %d and %d", ErrValidation, rating.MinRating, rating.MaxRating)
			}
			initial = *input.Rating
		}

		created = models.Player{
			ID:         st.NextPlayerID,
			Name:       name,
			Nickname:   input.Nickname,
			Phone:      input.Phone,
			Email:      input.Email,
			Categories: append([]models.Category(nil), input.Categories...),
			Slider:     input.Slider,
			Rating:     &initial,
		}
		st.NextPlayerID++
		st.Players = append(st.Players, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

type RegisterPairInput struct {
	PlayerIDs []int  `json:"player_ids"`
	Name      string `json:"name,omitempty"`
}

// RegisterPair creates a pair of one or two players. Pairs registered once the
// tournament is running join as reserves.
func (e *Engine) RegisterPair(input RegisterPairInput) (*models.Pair, error) {
	var created models.Pair
	err := e.apply(func(st *models.TournamentState) error {
		if len(input.PlayerIDs) < 1 || len(input.PlayerIDs) > 2 {
			return fmt.Errorf("%w: a pair has one or two players", ErrValidation)
		}
		if len(input.PlayerIDs) == 2 && input.PlayerIDs[0] == input.PlayerIDs[1] {
			return fmt.Errorf("%w: the same player twice", ErrValidation)
		}

		names := make([]string, 0, len(input.PlayerIDs))
		for _, id := range input.PlayerIDs {
			p := st.Player(id)
			if p == nil {
				return fmt.Errorf("%w: %d", ErrPlayerNotFound, id)
			}
			for _, other := range st.Pairs {
				if other.Active && other.HasPlayer(id) {
					return fmt.Errorf("%w: %s is in pair %d", ErrPlayerAlreadyPaired, p.DisplayName(), other.ID)
				}
			}
			names = append(names, p.DisplayName())
		}

		name := strings.TrimSpace(input.Name)
		if name == "" {
			name = strings.Join(names, " / ")
		}

		created = models.Pair{
			ID:        st.NextPairID,
			Name:      name,
			PlayerIDs: append([]int(nil), input.PlayerIDs...),
			IsReserve: st.Status != models.StatusSetup,
			Active:    true,
		}
		st.NextPairID++
		st.Pairs = append(st.Pairs, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func activePair(st *models.TournamentState, id int) (*models.Pair, error) {
	p := st.Pair(id)
	if p == nil || !p.Active {
		return nil, fmt.Errorf("%w: %d", ErrPairNotFound, id)
	}
	return p, nil
}

// MarkReserve flags or unflags a pair as reserve. Seeded pairs cannot change.
func (e *Engine) MarkReserve(pairID int, reserve bool) error {
	return e.apply(func(st *models.TournamentState) error {
		p, err := activePair(st, pairID)
		if err != nil {
			return err
		}
		if st.GroupOf(pairID) != nil {
			return fmt.Errorf("%w: pair %d is seeded in group %s", ErrInvalidStatus, pairID, st.GroupOf(pairID).ID)
		}
		p.IsReserve = reserve
		return nil
	})
}

// DissolvePair drops a pair from the registry before the start. Its players
// stay registered and may pair again.
func (e *Engine) DissolvePair(pairID int) error {
	return e.apply(func(st *models.TournamentState) error {
		if err := requireStatus(st, models.StatusSetup); err != nil {
			return err
		}
		p, err := activePair(st, pairID)
		if err != nil {
			return err
		}
		p.Active = false
		return nil
	})
}

// SubstitutePair swaps a reserve in for a starter. The reserve takes over the
// starter's group slot, every match reference and the accumulated stats; the
// starter leaves the tournament.
func (e *Engine) SubstitutePair(outID, inID int) error {
	return e.apply(func(st *models.TournamentState) error {
		if outID == inID {
			return fmt.Errorf("%w: a pair cannot replace itself", ErrValidation)
		}
		out, err := activePair(st, outID)
		if err != nil {
			return err
		}
		in, err := activePair(st, inID)
		if err != nil {
			return err
		}
		if !in.IsReserve || st.GroupOf(inID) != nil {
			return fmt.Errorf("%w: pair %d is not an available reserve", ErrValidation, inID)
		}

		if len(st.Groups) > 0 {
			g := st.GroupOf(outID)
			if g == nil {
				return fmt.Errorf("%w: pair %d is not seeded", ErrValidation, outID)
			}
			for _, m := range st.Matches {
				if m.Involves(outID) && m.Playable() && !m.IsFinished {
					return fmt.Errorf("%w: pair %d is on court %d", ErrPairInPlay, outID, m.Court)
				}
			}
			for i, id := range g.PairIDs {
				if id == outID {
					g.PairIDs[i] = inID
				}
			}
			for i := range st.Matches {
				m := &st.Matches[i]
				if m.PairAID == outID {
					m.PairAID = inID
				}
				if m.PairBID == outID {
					m.PairBID = inID
				}
			}
		}

		in.Stats = out.Stats
		in.IsReserve = out.IsReserve
		out.Stats = models.PairStats{}
		out.Active = false

		if st.Status == models.StatusSetup {
			moveInto(st, outID, inID)
		}
		return nil
	})
}

// moveInto places pair inID right before outID so the arrival order is kept.
func moveInto(st *models.TournamentState, outID, inID int) {
	var moved models.Pair
	rest := make([]models.Pair, 0, len(st.Pairs))
	for _, p := range st.Pairs {
		if p.ID == inID {
			moved = p
			continue
		}
		rest = append(rest, p)
	}
	ordered := make([]models.Pair, 0, len(st.Pairs))
	for _, p := range rest {
		if p.ID == outID {
			ordered = append(ordered, moved)
		}
		ordered = append(ordered, p)
	}
	st.Pairs = ordered
}
