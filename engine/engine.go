// Package engine holds the tournament state machine: pair registration,
// seeding, score entry and round advancement over a models.TournamentState.
//
// The engine does no I/O and no locking. Callers serialize access to one
// Engine and persist State() after each successful transition.
package engine

import (
	"errors"
	"fmt"

	"github.com/Dosada05/mini-tournament/brackets"
	"github.com/Dosada05/mini-tournament/models"
	"github.com/Dosada05/mini-tournament/rating"
)

type Engine struct {
	state *models.TournamentState
}

// New wraps an existing state. A nil state starts an empty 16_mini setup with
// one court.
func New(state *models.TournamentState) *Engine {
	if state == nil {
		state = models.NewTournamentState(models.Format16Mini, 1)
	}
	return &Engine{state: state}
}

// State returns a copy of the current state.
func (e *Engine) State() *models.TournamentState {
	return e.state.Clone()
}

// apply runs fn on a copy and keeps the copy only when fn succeeds.
func (e *Engine) apply(fn func(st *models.TournamentState) error) error {
	next := e.state.Clone()
	if err := fn(next); err != nil {
		return err
	}
	e.state = next
	return nil
}

func requireStatus(st *models.TournamentState, allowed ...models.TournamentStatus) error {
	for _, s := range allowed {
		if st.Status == s {
			return nil
		}
	}
	return fmt.Errorf("%w: tournament is %s", ErrInvalidStatus, st.Status)
}

func (e *Engine) SetFormat(format models.Format) error {
	return e.apply(func(st *models.TournamentState) error {
		if err := requireStatus(st, models.StatusSetup); err != nil {
			return err
		}
		if !format.Valid() {
			return fmt.Errorf("%w: unknown format %q", ErrValidation, format)
		}
		st.Format = format
		return nil
	})
}

// SetCourts changes the number of courts the club has. While a tournament is
// running the new count applies from the next allocation.
func (e *Engine) SetCourts(courts int) error {
	return e.apply(func(st *models.TournamentState) error {
		if err := requireStatus(st, models.StatusSetup, models.StatusActive); err != nil {
			return err
		}
		if courts < 1 {
			return fmt.Errorf("%w: courts must be at least 1, got %d", ErrValidation, courts)
		}
		st.Courts = courts
		return nil
	})
}

// Start seeds the starters into groups and opens round 1. Non-reserve pairs
// beyond the format's count become reserves.
func (e *Engine) Start(strategy brackets.Strategy, manual [][]int) error {
	return e.apply(func(st *models.TournamentState) error {
		if err := requireStatus(st, models.StatusSetup); err != nil {
			return err
		}
		layout, err := models.LayoutFor(st.Format)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrValidation, err)
		}
		if st.Courts < 1 {
			return fmt.Errorf("%w: courts must be at least 1", ErrValidation)
		}

		groups, err := brackets.Seed(brackets.SeedParams{
			State:    st,
			Layout:   layout,
			Strategy: strategy,
			Manual:   manual,
		})
		if err != nil {
			if errors.Is(err, brackets.ErrInsufficientPairs) {
				return err
			}
			return fmt.Errorf("%w: %w", ErrValidation, err)
		}

		seeded := make(map[int]bool, layout.RequiredPairs())
		for _, g := range groups {
			for _, id := range g.PairIDs {
				seeded[id] = true
			}
		}
		for i := range st.Pairs {
			p := &st.Pairs[i]
			p.Stats = models.PairStats{}
			if p.Active && !p.IsReserve && !seeded[p.ID] {
				p.IsReserve = true
			}
		}

		st.Groups = groups
		st.Matches = []models.Match{}
		st.Status = models.StatusActive
		st.CurrentRound = 1
		return scheduleRound(st, layout, 1)
	})
}

// scheduleRound materializes the matches of a round and gives them courts.
func scheduleRound(st *models.TournamentState, layout models.Layout, round int) error {
	gen, err := brackets.GeneratorFor(layout, round)
	if err != nil {
		return err
	}
	generated, err := gen.GenerateRound(brackets.GenerateRoundParams{State: st, Layout: layout, Round: round})
	if err != nil {
		return fmt.Errorf("%s generator: %w", gen.GetName(), err)
	}

	for _, bm := range generated {
		st.Matches = append(st.Matches, models.Match{
			ID:             st.NextMatchID,
			Round:          round,
			Bracket:        bm.Bracket,
			Phase:          bm.Phase,
			GroupID:        bm.GroupID,
			Slot:           bm.Slot,
			PairAID:        bm.PairAID,
			PairBID:        bm.PairBID,
			RequestedCourt: bm.RequestedCourt,
			CourtStatus:    models.CourtWaiting,
		})
		st.NextMatchID++
	}
	brackets.AllocateCourts(benchedUpTo(st, round), st.Courts, heldCourts(st))
	return nil
}

// heldCourts lists courts held by unfinished playable matches.
func heldCourts(st *models.TournamentState) []int {
	var held []int
	for _, m := range st.Matches {
		if !m.IsFinished && m.Playable() {
			held = append(held, m.Court)
		}
	}
	return held
}

// benchedUpTo returns the unfinished matches of rounds up to round that have
// no court.
func benchedUpTo(st *models.TournamentState, round int) []*models.Match {
	var out []*models.Match
	for i := range st.Matches {
		m := &st.Matches[i]
		if m.Round <= round && !m.IsFinished && !m.Playable() {
			out = append(out, m)
		}
	}
	return out
}

// ScoreResult describes a recorded score. Outcome is set for playoff matches.
type ScoreResult struct {
	Match        models.Match      `json:"match"`
	WinnerPairID int               `json:"winner_pair_id"`
	LoserPairID  int               `json:"loser_pair_id"`
	Corrected    bool              `json:"corrected"`
	Outcome      *brackets.Outcome `json:"outcome,omitempty"`
}

// RecordScore stores the result of a playable match, updates group stats and
// moves rating points. Re-recording a finished match corrects it as long as
// no later round already used the result.
func (e *Engine) RecordScore(matchID, scoreA, scoreB int) (*ScoreResult, error) {
	var result *ScoreResult
	err := e.apply(func(st *models.TournamentState) error {
		if err := requireStatus(st, models.StatusActive); err != nil {
			return err
		}
		if scoreA < 0 || scoreB < 0 {
			return fmt.Errorf("%w: scores must not be negative", ErrValidation)
		}
		if scoreA == scoreB {
			return fmt.Errorf("%w: %d-%d", ErrEqualScores, scoreA, scoreB)
		}
		m := st.Match(matchID)
		if m == nil {
			return fmt.Errorf("%w: %d", ErrMatchNotFound, matchID)
		}
		if !m.Playable() {
			return fmt.Errorf("%w: match %d is %s", ErrMatchNotPlayable, m.ID, m.CourtStatus)
		}

		layout, err := models.LayoutFor(st.Format)
		if err != nil {
			return err
		}
		plan, err := brackets.PlanFor(st.Format)
		if err != nil {
			return err
		}

		corrected := m.IsFinished
		if corrected {
			if err := checkCorrectable(st, layout, plan, m); err != nil {
				return err
			}
			undoResult(st, m)
		}

		a, b := scoreA, scoreB
		m.ScoreA, m.ScoreB = &a, &b
		m.IsFinished = true

		winnerID, loserID, _ := m.Winner()
		winner, loser := st.Pair(winnerID), st.Pair(loserID)
		if winner == nil || loser == nil {
			return fmt.Errorf("%w: match %d references a missing pair", ErrPairNotFound, m.ID)
		}
		if m.Bracket == models.BracketGroup {
			addStats(winner, loser, m)
		}
		m.RatingDeltas = rating.ApplyMatch(st, winner, loser)

		result = &ScoreResult{
			Match:        *m,
			WinnerPairID: winnerID,
			LoserPairID:  loserID,
			Corrected:    corrected,
		}
		if m.Slot != "" {
			o := plan.Outcome(m.Slot)
			result.Outcome = &o
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func checkCorrectable(st *models.TournamentState, layout models.Layout, plan brackets.PlayoffPlan, m *models.Match) error {
	if m.Bracket == models.BracketGroup {
		if st.CurrentRound > layout.GroupRounds {
			return fmt.Errorf("%w: group stage is over", ErrMatchLocked)
		}
		return nil
	}
	for _, key := range plan.Dependents(m.Slot) {
		for _, other := range st.Matches {
			if other.Slot == key {
				return fmt.Errorf("%w: %s feeds %s", ErrMatchLocked, m.Slot, key)
			}
		}
	}
	return nil
}

// undoResult reverts the stats and rating changes of a finished match.
func undoResult(st *models.TournamentState, m *models.Match) {
	winnerID, loserID, ok := m.Winner()
	if ok && m.Bracket == models.BracketGroup {
		winner, loser := st.Pair(winnerID), st.Pair(loserID)
		if winner != nil && loser != nil {
			diff := abs(*m.ScoreA - *m.ScoreB)
			winner.Stats.Wins--
			winner.Stats.Played--
			winner.Stats.GameDiff -= diff
			loser.Stats.Played--
			loser.Stats.GameDiff += diff
		}
	}
	rating.Revert(st, m.RatingDeltas)
	m.RatingDeltas = nil
	m.ScoreA, m.ScoreB = nil, nil
	m.IsFinished = false
}

func addStats(winner, loser *models.Pair, m *models.Match) {
	diff := abs(*m.ScoreA - *m.ScoreB)
	winner.Stats.Wins++
	winner.Stats.Played++
	winner.Stats.GameDiff += diff
	loser.Stats.Played++
	loser.Stats.GameDiff -= diff
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// AdvanceResult describes what an advance did.
type AdvanceResult struct {
	Round    int  `json:"round"`
	Rotated  bool `json:"rotated"`
	Finished bool `json:"finished"`
}

// AdvanceRound moves the tournament forward.
//
// When every playable match of the current round is done but matches of this
// or an earlier round still have no court, those are re-allocated instead (a
// rotation wave).
// During the group stage every playable match of the round must be finished.
// Playoff rounds may be left with stragglers as long as the next round does
// not depend on them. Leaving the last round requires both finals decided and
// finishes the tournament.
func (e *Engine) AdvanceRound() (*AdvanceResult, error) {
	var result *AdvanceResult
	err := e.apply(func(st *models.TournamentState) error {
		if err := requireStatus(st, models.StatusActive); err != nil {
			return err
		}
		layout, err := models.LayoutFor(st.Format)
		if err != nil {
			return err
		}

		round := st.CurrentRound
		playable := 0
		for _, m := range st.RoundMatches(round) {
			if !m.IsFinished && m.Playable() {
				playable++
			}
		}

		if benched := benchedUpTo(st, round); playable == 0 && len(benched) > 0 {
			brackets.AllocateCourts(benched, st.Courts, heldCourts(st))
			if placed(benched) {
				result = &AdvanceResult{Round: round, Rotated: true}
				return nil
			}
		}
		if round <= layout.GroupRounds && playable > 0 {
			return &RoundNotReadyError{Round: round, Remaining: playable}
		}

		next := round + 1
		if next > layout.LastRound() {
			if remaining := undecidedFinals(st); remaining > 0 {
				return &RoundNotReadyError{Round: round, Remaining: remaining}
			}
			st.CurrentRound = next
			st.Status = models.StatusFinished
			result = &AdvanceResult{Round: next, Finished: true}
			return nil
		}

		if err := scheduleRound(st, layout, next); err != nil {
			if errors.Is(err, brackets.ErrUnresolvedSlot) {
				return blockingSources(st, next)
			}
			return err
		}
		st.CurrentRound = next
		result = &AdvanceResult{Round: next}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func undecidedFinals(st *models.TournamentState) int {
	plan, err := brackets.PlanFor(st.Format)
	if err != nil {
		return 0
	}
	remaining := 0
	for _, key := range []string{plan.MainFinal, plan.ConsolationFinal} {
		if m := matchBySlot(st, key); m == nil || !m.IsFinished {
			remaining++
		}
	}
	return remaining
}

func placed(matches []*models.Match) bool {
	for _, m := range matches {
		if m.Playable() {
			return true
		}
	}
	return false
}

// blockingSources reports the undecided playoff matches that the slots of
// round feed from, naming the earliest round among them.
func blockingSources(st *models.TournamentState, round int) *RoundNotReadyError {
	notReady := &RoundNotReadyError{Round: st.CurrentRound}
	plan, err := brackets.PlanFor(st.Format)
	if err != nil {
		return notReady
	}
	seen := make(map[string]bool)
	for _, s := range plan.RoundSlots(round) {
		for _, ref := range []brackets.SlotRef{s.A, s.B} {
			if ref.Kind != brackets.RefWinner && ref.Kind != brackets.RefLoser {
				continue
			}
			if seen[ref.Slot] {
				continue
			}
			seen[ref.Slot] = true

			src := matchBySlot(st, ref.Slot)
			if src != nil && src.IsFinished {
				continue
			}
			srcRound := 0
			if src != nil {
				srcRound = src.Round
			} else if planned, ok := plan.Slot(ref.Slot); ok {
				srcRound = planned.Round
			}
			if notReady.Remaining == 0 || (srcRound > 0 && srcRound < notReady.Round) {
				notReady.Round = srcRound
			}
			notReady.Remaining++
		}
	}
	return notReady
}

func matchBySlot(st *models.TournamentState, slot string) *models.Match {
	for i := range st.Matches {
		if st.Matches[i].Slot == slot {
			return &st.Matches[i]
		}
	}
	return nil
}

// ResetToSetup drops groups and matches and returns to setup. The pair
// registry is kept exactly as it is.
func (e *Engine) ResetToSetup() error {
	return e.apply(func(st *models.TournamentState) error {
		st.Groups = []models.Group{}
		st.Matches = []models.Match{}
		st.Status = models.StatusSetup
		st.CurrentRound = 0
		return nil
	})
}

// Archive returns a snapshot of a finished tournament and replaces the state
// with a fresh setup keeping players, format and courts.
func (e *Engine) Archive() (*models.TournamentState, error) {
	var snapshot *models.TournamentState
	err := e.apply(func(st *models.TournamentState) error {
		if err := requireStatus(st, models.StatusFinished); err != nil {
			return err
		}
		snapshot = st.Clone()

		fresh := models.NewTournamentState(st.Format, st.Courts)
		fresh.Players = st.Players
		fresh.NextPlayerID = st.NextPlayerID
		fresh.NextPairID = st.NextPairID
		fresh.NextMatchID = st.NextMatchID
		*st = *fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}
