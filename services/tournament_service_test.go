package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/mini-tournament/brackets"
	"github.com/Dosada05/mini-tournament/engine"
	"github.com/Dosada05/mini-tournament/models"
	"github.com/Dosada05/mini-tournament/repositories"
)

const organizer = 7

func addPairs(t *testing.T, s TournamentService, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 1; i <= n; i++ {
		var ids []int
		for _, side := range []string{"A", "B"} {
			p, err := s.AddPlayer(ctx, organizer, engine.PlayerInput{
				Name:       fmt.Sprintf("P%d%s", i, side),
				Categories: []models.Category{models.CategoryIntermediate},
				Slider:     5,
			})
			if err != nil {
				t.Fatalf("add player: %v", err)
			}
			ids = append(ids, p.ID)
		}
		if _, err := s.RegisterPair(ctx, organizer, engine.RegisterPairInput{PlayerIDs: ids}); err != nil {
			t.Fatalf("register pair: %v", err)
		}
	}
}

func TestGetStateOfNewOrganizer(t *testing.T) {
	f := newFixture(false)
	st, err := f.service.GetState(context.Background(), organizer)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if st.Status != models.StatusSetup || st.Format != models.Format8Mini || st.Courts != 4 {
		t.Errorf("unexpected fresh state: %s %s %d", st.Status, st.Format, st.Courts)
	}
	if f.states.state(organizer) != nil {
		t.Errorf("reading a fresh state should not persist it")
	}
}

func TestInvalidOrganizer(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()

	if _, err := f.service.GetState(ctx, 0); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed, got %v", err)
	}
	if _, err := f.service.SetCourts(ctx, -1, 2); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed, got %v", err)
	}
	if _, err := f.service.Archive(ctx, 0); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed, got %v", err)
	}
}

func TestTournamentFlowPersistsAndNotifies(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()
	addPairs(t, f.service, 8)

	st, err := f.service.Start(ctx, organizer, StartInput{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if st.Status != models.StatusActive || st.CurrentRound != 1 {
		t.Fatalf("expected active round 1, got %s %d", st.Status, st.CurrentRound)
	}
	if stored := f.states.state(organizer); stored.Status != models.StatusActive {
		t.Fatalf("start was not persisted")
	}

	matches, err := f.service.PlayableMatches(ctx, organizer, 1)
	if err != nil {
		t.Fatalf("playable: %v", err)
	}
	if len(matches) != 4 {
		t.Fatalf("expected 4 playable matches, got %d", len(matches))
	}

	if _, err := f.service.AdvanceRound(ctx, organizer); !errors.Is(err, engine.ErrRoundNotReady) {
		t.Errorf("expected ErrRoundNotReady, got %v", err)
	}

	for _, m := range matches {
		res, err := f.service.RecordScore(ctx, organizer, m.ID, 6, 4)
		if err != nil {
			t.Fatalf("record: %v", err)
		}
		if res.WinnerPairID != m.PairAID {
			t.Errorf("expected pair %d to win, got %d", m.PairAID, res.WinnerPairID)
		}
	}

	res, err := f.service.AdvanceRound(ctx, organizer)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if res.Round != 2 {
		t.Errorf("expected round 2, got %d", res.Round)
	}

	rows, err := f.service.Standings(ctx, organizer, "A")
	if err != nil {
		t.Fatalf("standings: %v", err)
	}
	if rows[0].Wins != 1 {
		t.Errorf("unexpected standings %+v", rows)
	}

	for _, want := range []string{brackets.EventTournamentUpdated, brackets.EventScoreRecorded, brackets.EventRoundAdvanced} {
		if !f.notifier.has(want) {
			t.Errorf("expected a %s notification", want)
		}
	}
}

func TestFailedTransitionIsNotSaved(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()
	addPairs(t, f.service, 7)
	saves := f.states.saves

	if _, err := f.service.Start(ctx, organizer, StartInput{Strategy: brackets.StrategyEloBalanced}); !errors.Is(err, engine.ErrInsufficientPairs) {
		t.Fatalf("expected ErrInsufficientPairs, got %v", err)
	}
	if f.states.saves != saves {
		t.Errorf("a failed start was persisted")
	}
}

func TestSaveConflictIsReported(t *testing.T) {
	f := newFixture(false)
	f.states.saveErr = repositories.ErrStateConflict

	if _, err := f.service.SetCourts(context.Background(), organizer, 6); !errors.Is(err, ErrConcurrentUpdate) {
		t.Errorf("expected ErrConcurrentUpdate, got %v", err)
	}
	if f.notifier.has(brackets.EventTournamentUpdated) {
		t.Errorf("a rejected save was broadcast")
	}
}

func TestConcurrentWritesAreSerialized(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.service.AddPlayer(ctx, organizer, engine.PlayerInput{
				Name:       fmt.Sprintf("Player %d", i),
				Categories: []models.Category{models.CategoryBeginner},
				Slider:     5,
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("concurrent add failed: %v", err)
		}
	}

	st := f.states.state(organizer)
	if len(st.Players) != workers {
		t.Fatalf("expected %d players, got %d", workers, len(st.Players))
	}
	seen := make(map[int]bool)
	for _, p := range st.Players {
		if seen[p.ID] {
			t.Errorf("player id %d assigned twice", p.ID)
		}
		seen[p.ID] = true
	}
}

func TestChampionsAndFinishNotification(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()

	if _, err := f.service.Champions(ctx, organizer); !errors.Is(err, engine.ErrNotFinished) {
		t.Errorf("expected ErrNotFinished, got %v", err)
	}

	st := finishedState(t)
	// step back into the last round so the service performs the finishing advance
	st.Status = models.StatusActive
	st.CurrentRound = 6
	f.states.put(organizer, st, time.Now())

	res, err := f.service.AdvanceRound(ctx, organizer)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if !res.Finished {
		t.Fatalf("expected the tournament to finish, got %+v", res)
	}
	if !f.notifier.has(brackets.EventTournamentFinished) {
		t.Errorf("expected a finished notification")
	}
	c, err := f.service.Champions(ctx, organizer)
	if err != nil {
		t.Fatalf("champions: %v", err)
	}
	if c.Main == "" || c.Consolation == "" {
		t.Errorf("unexpected champions %+v", c)
	}
}
