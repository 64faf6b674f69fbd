package engine

import (
	"errors"
	"testing"

	"github.com/Dosada05/mini-tournament/brackets"
	"github.com/Dosada05/mini-tournament/models"
)

func TestAddPlayer(t *testing.T) {
	override := 4200
	tooHigh := 7000
	nick := "Lefty"

	tests := []struct {
		name       string
		input      PlayerInput
		wantRating int
		wantErr    error
	}{
		{"band rating", PlayerInput{Name: "Ana", Categories: []models.Category{models.CategoryAdvanced}, Slider: 6}, 4580, nil},
		{"explicit rating", PlayerInput{Name: "Bo", Categories: []models.Category{models.CategoryBeginner}, Slider: 5, Rating: &override}, 4200, nil},
		{"nickname kept", PlayerInput{Name: "Cy", Nickname: &nick, Categories: []models.Category{models.CategoryBeginner}, Slider: 5}, 500, nil},
		{"blank name", PlayerInput{Name: "  ", Categories: []models.Category{models.CategoryBeginner}, Slider: 5}, 0, ErrValidation},
		{"no categories", PlayerInput{Name: "Di", Slider: 5}, 0, ErrValidation},
		{"rating out of range", PlayerInput{Name: "Ed", Categories: []models.Category{models.CategoryBeginner}, Slider: 5, Rating: &tooHigh}, 0, ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(nil)
			p, err := e.AddPlayer(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if len(e.State().Players) != 0 {
					t.Errorf("failed add left a player behind")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.ID != 1 || p.Rating == nil || *p.Rating != tt.wantRating {
				t.Errorf("expected player 1 rated %d, got %+v", tt.wantRating, p)
			}
		})
	}
}

func TestRegisterPair(t *testing.T) {
	e := New(nil)
	nick := "Ace"
	a, _ := e.AddPlayer(PlayerInput{Name: "Ana", Nickname: &nick, Categories: []models.Category{models.CategoryBeginner}, Slider: 5})
	b, _ := e.AddPlayer(PlayerInput{Name: "Bo", Categories: []models.Category{models.CategoryBeginner}, Slider: 5})
	c, _ := e.AddPlayer(PlayerInput{Name: "Cy", Categories: []models.Category{models.CategoryBeginner}, Slider: 5})

	pair, err := e.RegisterPair(RegisterPairInput{PlayerIDs: []int{a.ID, b.ID}})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if pair.Name != "Ace / Bo" || pair.IsReserve || !pair.Active {
		t.Errorf("unexpected pair %+v", pair)
	}

	tests := []struct {
		name    string
		input   RegisterPairInput
		wantErr error
	}{
		{"no players", RegisterPairInput{}, ErrValidation},
		{"three players", RegisterPairInput{PlayerIDs: []int{1, 2, 3}}, ErrValidation},
		{"same player twice", RegisterPairInput{PlayerIDs: []int{c.ID, c.ID}}, ErrValidation},
		{"unknown player", RegisterPairInput{PlayerIDs: []int{c.ID, 42}}, ErrPlayerNotFound},
		{"already paired", RegisterPairInput{PlayerIDs: []int{c.ID, a.ID}}, ErrPlayerAlreadyPaired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.RegisterPair(tt.input); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	solo, err := e.RegisterPair(RegisterPairInput{PlayerIDs: []int{c.ID}, Name: "Cy solo"})
	if err != nil {
		t.Fatalf("register solo: %v", err)
	}
	if !solo.Solo() || solo.Name != "Cy solo" {
		t.Errorf("unexpected solo pair %+v", solo)
	}
}

func TestDissolvePairFreesPlayers(t *testing.T) {
	e := newTournament(t, models.Format8Mini, 2, 1)
	pair := e.State().Pairs[0]

	if err := e.DissolvePair(pair.ID); err != nil {
		t.Fatalf("dissolve: %v", err)
	}
	if _, err := e.RegisterPair(RegisterPairInput{PlayerIDs: pair.PlayerIDs}); err != nil {
		t.Errorf("players of a dissolved pair could not pair again: %v", err)
	}
	if err := e.DissolvePair(pair.ID); !errors.Is(err, ErrPairNotFound) {
		t.Errorf("expected ErrPairNotFound for a dissolved pair, got %v", err)
	}
}

func TestReservesAfterStart(t *testing.T) {
	e := newTournament(t, models.Format8Mini, 4, 8)
	startTournament(t, e, brackets.StrategyArrival)

	late := registerPair(t, e, 9)
	if !late.IsReserve {
		t.Errorf("a pair registered mid play should be a reserve")
	}
	if err := e.MarkReserve(1, true); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus for a seeded pair, got %v", err)
	}
	if err := e.DissolvePair(late.ID); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus dissolving mid play, got %v", err)
	}
}

func TestSubstituteMidTournament(t *testing.T) {
	e := newTournament(t, models.Format8Mini, 4, 9)
	startTournament(t, e, brackets.StrategyArrival)
	recordPlayable(t, e)

	before := e.State()
	outStats := before.Pair(1).Stats
	if outStats.Played != 1 {
		t.Fatalf("expected pair 1 to have played once, got %+v", outStats)
	}

	if err := e.SubstitutePair(1, 9); err != nil {
		t.Fatalf("substitute: %v", err)
	}
	st := e.State()
	group := st.Group("A")
	if group.Contains(1) || !group.Contains(9) || group.PairIDs[0] != 9 {
		t.Errorf("expected pair 9 in pair 1's slot, got %v", group.PairIDs)
	}
	in, out := st.Pair(9), st.Pair(1)
	if in.Stats != outStats || in.IsReserve {
		t.Errorf("incoming pair did not take over the slot: %+v", in)
	}
	if out.Active {
		t.Errorf("outgoing pair is still active")
	}
	outMatches, inMatches := 0, 0
	for _, m := range before.Matches {
		if m.Involves(1) {
			outMatches++
		}
		if m.Involves(9) {
			t.Errorf("reserve pair 9 already in match %d before the swap", m.ID)
		}
	}
	for _, m := range st.Matches {
		if m.Involves(1) {
			t.Errorf("match %d still references pair 1", m.ID)
		}
		if m.Involves(9) {
			inMatches++
		}
	}
	if outMatches == 0 || inMatches != outMatches {
		t.Errorf("expected pair 9 to inherit %d matches, got %d", outMatches, inMatches)
	}

	if _, err := e.AdvanceRound(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	late := registerPair(t, e, 10)
	if err := e.SubstitutePair(2, late.ID); !errors.Is(err, ErrPairInPlay) {
		t.Errorf("expected ErrPairInPlay for a pair on court, got %v", err)
	}
	if err := e.SubstitutePair(3, 2); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for a non reserve, got %v", err)
	}
}

func TestSubstituteInSetupKeepsArrivalOrder(t *testing.T) {
	e := newTournament(t, models.Format8Mini, 4, 10)
	if err := e.MarkReserve(10, true); err != nil {
		t.Fatalf("mark reserve: %v", err)
	}
	if err := e.SubstitutePair(1, 10); err != nil {
		t.Fatalf("substitute: %v", err)
	}

	layout, _ := models.LayoutFor(models.Format8Mini)
	starters := brackets.Starters(e.State(), layout)
	if starters[0].ID != 10 || starters[1].ID != 2 {
		t.Errorf("expected pair 10 to take the first seat, got %d, %d", starters[0].ID, starters[1].ID)
	}
}
