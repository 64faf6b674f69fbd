package rating

import (
	"errors"
	"testing"

	"github.com/Dosada05/mini-tournament/models"
)

func TestInitial(t *testing.T) {
	tests := []struct {
		name       string
		categories []models.Category
		slider     int
		want       int
		wantErr    error
	}{
		{"single band centered", []models.Category{models.CategoryBeginner}, 5, 500, nil},
		{"band union", []models.Category{models.CategoryIntermediate, models.CategoryAdvanced}, 5, 3500, nil},
		{"slider up", []models.Category{models.CategoryIntermediate, models.CategoryAdvanced}, 10, 3900, nil},
		{"slider down", []models.Category{models.CategoryBeginner}, 1, 180, nil},
		{"top band", []models.Category{models.CategoryCompetition}, 10, 5900, nil},
		{"no categories", nil, 5, 0, ErrNoCategories},
		{"slider out of range", []models.Category{models.CategoryBeginner}, 11, 0, ErrSliderRange},
		{"unknown band", []models.Category{"pro"}, 5, 0, ErrUnknownBand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Initial(tt.categories, tt.slider)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected rating %d, got %d", tt.want, got)
			}
		})
	}
}

func TestTransfer(t *testing.T) {
	tests := []struct {
		name      string
		winnerAvg float64
		loserAvg  float64
		want      int
	}{
		{"equal sides", 2000, 2000, 100},
		{"favorite wins", 2500, 2000, 75},
		{"underdog wins", 2000, 2500, 125},
		{"favorite saturates", 4000, 1000, 50},
		{"underdog saturates", 1000, 4000, 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Transfer(tt.winnerAvg, tt.loserAvg); got != tt.want {
				t.Errorf("expected %d points, got %d", tt.want, got)
			}
		})
	}
}

func ratedState(ratings ...int) *models.TournamentState {
	st := models.NewTournamentState(models.Format8Mini, 1)
	for i, r := range ratings {
		r := r
		st.Players = append(st.Players, models.Player{ID: i + 1, Name: "p", Rating: &r})
	}
	return st
}

func TestApplyMatchAndRevert(t *testing.T) {
	st := ratedState(2000, 2000, 2000, 2000)
	winner := &models.Pair{ID: 1, PlayerIDs: []int{1, 2}}
	loser := &models.Pair{ID: 2, PlayerIDs: []int{3, 4}}

	deltas := ApplyMatch(st, winner, loser)
	if len(deltas) != 4 {
		t.Fatalf("expected 4 deltas, got %d", len(deltas))
	}
	if *st.Player(1).Rating != 2100 || *st.Player(3).Rating != 1900 {
		t.Errorf("unexpected ratings after match: %d / %d", *st.Player(1).Rating, *st.Player(3).Rating)
	}

	Revert(st, deltas)
	for _, p := range st.Players {
		if *p.Rating != 2000 {
			t.Errorf("player %d: expected 2000 after revert, got %d", p.ID, *p.Rating)
		}
	}
}

func TestApplyMatchClampsAtFloor(t *testing.T) {
	st := ratedState(3000, 3000, 40, 40)
	winner := &models.Pair{ID: 1, PlayerIDs: []int{1, 2}}
	loser := &models.Pair{ID: 2, PlayerIDs: []int{3, 4}}

	deltas := ApplyMatch(st, winner, loser)
	if *st.Player(3).Rating != MinRating {
		t.Errorf("expected rating clamped to %d, got %d", MinRating, *st.Player(3).Rating)
	}
	if deltas[3] != -40 {
		t.Errorf("expected applied delta -40, got %d", deltas[3])
	}

	Revert(st, deltas)
	if *st.Player(3).Rating != 40 {
		t.Errorf("expected 40 after revert, got %d", *st.Player(3).Rating)
	}
}

func TestApplyMatchSkipsUnrated(t *testing.T) {
	st := ratedState(2000, 2000)
	st.Players = append(st.Players, models.Player{ID: 3, Name: "new"})
	winner := &models.Pair{ID: 1, PlayerIDs: []int{1, 2}}
	loser := &models.Pair{ID: 2, PlayerIDs: []int{3}}

	if deltas := ApplyMatch(st, winner, loser); deltas != nil {
		t.Errorf("expected no deltas, got %v", deltas)
	}
	if *st.Player(1).Rating != 2000 {
		t.Errorf("rating changed for an unrated match")
	}
}
