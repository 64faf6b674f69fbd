package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/mini-tournament/brackets"
	"github.com/Dosada05/mini-tournament/engine"
	"github.com/Dosada05/mini-tournament/models"
	"github.com/Dosada05/mini-tournament/repositories"
	"github.com/Dosada05/mini-tournament/storage"
)

const storeTimeout = 5 * time.Second

// Notifier receives tournament events after they are persisted.
type Notifier interface {
	Notify(organizerID int, eventType string, payload interface{})
}

type StartInput struct {
	Strategy brackets.Strategy `json:"strategy"`
	Manual   [][]int           `json:"manual,omitempty"`
}

type TournamentService interface {
	GetState(ctx context.Context, organizerID int) (*models.TournamentState, error)
	SetFormat(ctx context.Context, organizerID int, format models.Format) (*models.TournamentState, error)
	SetCourts(ctx context.Context, organizerID int, courts int) (*models.TournamentState, error)

	AddPlayer(ctx context.Context, organizerID int, input engine.PlayerInput) (*models.Player, error)
	RegisterPair(ctx context.Context, organizerID int, input engine.RegisterPairInput) (*models.Pair, error)
	MarkReserve(ctx context.Context, organizerID, pairID int, reserve bool) (*models.TournamentState, error)
	DissolvePair(ctx context.Context, organizerID, pairID int) (*models.TournamentState, error)
	SubstitutePair(ctx context.Context, organizerID, outID, inID int) (*models.TournamentState, error)

	Start(ctx context.Context, organizerID int, input StartInput) (*models.TournamentState, error)
	RecordScore(ctx context.Context, organizerID, matchID, scoreA, scoreB int) (*engine.ScoreResult, error)
	AdvanceRound(ctx context.Context, organizerID int) (*engine.AdvanceResult, error)
	Reset(ctx context.Context, organizerID int) (*models.TournamentState, error)
	Archive(ctx context.Context, organizerID int) (*models.Archive, error)

	Standings(ctx context.Context, organizerID int, groupID string) ([]brackets.Standing, error)
	PlayableMatches(ctx context.Context, organizerID, round int) ([]models.Match, error)
	Champions(ctx context.Context, organizerID int) (*engine.Champions, error)
	ListArchives(ctx context.Context, organizerID, limit, offset int) ([]models.Archive, error)
	GetArchive(ctx context.Context, organizerID int, archiveID string) (*models.Archive, error)

	// ArchiveFinished archives every tournament finished before the cutoff
	// and returns how many were archived.
	ArchiveFinished(ctx context.Context, finishedBefore time.Time) (int, error)
}

type TournamentServiceConfig struct {
	DB            *sql.DB
	States        repositories.StateRepository
	Archives      repositories.ArchiveRepository
	Uploader      storage.FileUploader
	Notifier      Notifier
	DefaultFormat models.Format
	DefaultCourts int
	Logger        *slog.Logger
}

type tournamentService struct {
	db            *sql.DB
	states        repositories.StateRepository
	archives      repositories.ArchiveRepository
	uploader      storage.FileUploader
	notifier      Notifier
	defaultFormat models.Format
	defaultCourts int
	locks         *keyedMutex
	logger        *slog.Logger
}

func NewTournamentService(cfg TournamentServiceConfig) TournamentService {
	format := cfg.DefaultFormat
	if !format.Valid() {
		format = models.Format16Mini
	}
	courts := cfg.DefaultCourts
	if courts < 1 {
		courts = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &tournamentService{
		db:            cfg.DB,
		states:        cfg.States,
		archives:      cfg.Archives,
		uploader:      cfg.Uploader,
		notifier:      cfg.Notifier,
		defaultFormat: format,
		defaultCourts: courts,
		locks:         newKeyedMutex(),
		logger:        logger,
	}
}

// load returns the organizer's stored state, or a fresh setup state with
// version 0 when none was saved yet.
func (s *tournamentService) load(ctx context.Context, organizerID int) (*repositories.StoredState, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	stored, err := s.states.Get(ctx, organizerID)
	if err != nil {
		if errors.Is(err, repositories.ErrStateNotFound) {
			return &repositories.StoredState{
				OrganizerID: organizerID,
				State:       models.NewTournamentState(s.defaultFormat, s.defaultCourts),
			}, nil
		}
		return nil, err
	}
	return stored, nil
}

func (s *tournamentService) save(ctx context.Context, exec repositories.SQLExecutor, stored *repositories.StoredState, state *models.TournamentState) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if _, err := s.states.Save(ctx, exec, stored.OrganizerID, stored.Version, state); err != nil {
		if errors.Is(err, repositories.ErrStateConflict) {
			return fmt.Errorf("%w: organizer %d", ErrConcurrentUpdate, stored.OrganizerID)
		}
		return fmt.Errorf("failed to save tournament state: %w", err)
	}
	return nil
}

// mutate runs one engine transition for an organizer and persists the result.
func (s *tournamentService) mutate(ctx context.Context, organizerID int, fn func(e *engine.Engine) error) (*models.TournamentState, error) {
	if organizerID <= 0 {
		return nil, fmt.Errorf("%w: invalid organizer id %d", ErrValidationFailed, organizerID)
	}
	unlock := s.locks.Lock(organizerID)
	defer unlock()

	stored, err := s.load(ctx, organizerID)
	if err != nil {
		return nil, err
	}
	eng := engine.New(stored.State)
	if err := fn(eng); err != nil {
		return nil, err
	}
	state := eng.State()
	if err := s.save(ctx, nil, stored, state); err != nil {
		return nil, err
	}
	return state, nil
}

// view runs a read against the organizer's current state.
func (s *tournamentService) view(ctx context.Context, organizerID int, fn func(e *engine.Engine) error) error {
	if organizerID <= 0 {
		return fmt.Errorf("%w: invalid organizer id %d", ErrValidationFailed, organizerID)
	}
	stored, err := s.load(ctx, organizerID)
	if err != nil {
		return err
	}
	return fn(engine.New(stored.State))
}

func (s *tournamentService) notify(organizerID int, eventType string, payload interface{}) {
	if s.notifier != nil {
		s.notifier.Notify(organizerID, eventType, payload)
	}
}

func (s *tournamentService) GetState(ctx context.Context, organizerID int) (*models.TournamentState, error) {
	var state *models.TournamentState
	err := s.view(ctx, organizerID, func(e *engine.Engine) error {
		state = e.State()
		return nil
	})
	return state, err
}

func (s *tournamentService) updated(organizerID int, state *models.TournamentState, err error) (*models.TournamentState, error) {
	if err != nil {
		return nil, err
	}
	s.notify(organizerID, brackets.EventTournamentUpdated, state)
	return state, nil
}

func (s *tournamentService) SetFormat(ctx context.Context, organizerID int, format models.Format) (*models.TournamentState, error) {
	state, err := s.mutate(ctx, organizerID, func(e *engine.Engine) error {
		return e.SetFormat(format)
	})
	return s.updated(organizerID, state, err)
}

func (s *tournamentService) SetCourts(ctx context.Context, organizerID int, courts int) (*models.TournamentState, error) {
	state, err := s.mutate(ctx, organizerID, func(e *engine.Engine) error {
		return e.SetCourts(courts)
	})
	return s.updated(organizerID, state, err)
}

func (s *tournamentService) AddPlayer(ctx context.Context, organizerID int, input engine.PlayerInput) (*models.Player, error) {
	var player *models.Player
	state, err := s.mutate(ctx, organizerID, func(e *engine.Engine) error {
		var err error
		player, err = e.AddPlayer(input)
		return err
	})
	if _, err := s.updated(organizerID, state, err); err != nil {
		return nil, err
	}
	return player, nil
}

func (s *tournamentService) RegisterPair(ctx context.Context, organizerID int, input engine.RegisterPairInput) (*models.Pair, error) {
	var pair *models.Pair
	state, err := s.mutate(ctx, organizerID, func(e *engine.Engine) error {
		var err error
		pair, err = e.RegisterPair(input)
		return err
	})
	if _, err := s.updated(organizerID, state, err); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *tournamentService) MarkReserve(ctx context.Context, organizerID, pairID int, reserve bool) (*models.TournamentState, error) {
	state, err := s.mutate(ctx, organizerID, func(e *engine.Engine) error {
		return e.MarkReserve(pairID, reserve)
	})
	return s.updated(organizerID, state, err)
}

func (s *tournamentService) DissolvePair(ctx context.Context, organizerID, pairID int) (*models.TournamentState, error) {
	state, err := s.mutate(ctx, organizerID, func(e *engine.Engine) error {
		return e.DissolvePair(pairID)
	})
	return s.updated(organizerID, state, err)
}

func (s *tournamentService) SubstitutePair(ctx context.Context, organizerID, outID, inID int) (*models.TournamentState, error) {
	state, err := s.mutate(ctx, organizerID, func(e *engine.Engine) error {
		return e.SubstitutePair(outID, inID)
	})
	if err == nil {
		s.logger.InfoContext(ctx, "pair substituted",
			slog.Int("organizer_id", organizerID), slog.Int("out_pair_id", outID), slog.Int("in_pair_id", inID))
	}
	return s.updated(organizerID, state, err)
}

func (s *tournamentService) Start(ctx context.Context, organizerID int, input StartInput) (*models.TournamentState, error) {
	strategy := input.Strategy
	if strategy == "" {
		strategy = brackets.StrategyArrival
	}
	state, err := s.mutate(ctx, organizerID, func(e *engine.Engine) error {
		return e.Start(strategy, input.Manual)
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "tournament started",
		slog.Int("organizer_id", organizerID), slog.String("format", string(state.Format)),
		slog.String("strategy", string(strategy)), slog.Int("courts", state.Courts))
	s.notify(organizerID, brackets.EventRoundAdvanced, &engine.AdvanceResult{Round: state.CurrentRound})
	return s.updated(organizerID, state, nil)
}

func (s *tournamentService) RecordScore(ctx context.Context, organizerID, matchID, scoreA, scoreB int) (*engine.ScoreResult, error) {
	var result *engine.ScoreResult
	_, err := s.mutate(ctx, organizerID, func(e *engine.Engine) error {
		var err error
		result, err = e.RecordScore(matchID, scoreA, scoreB)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notify(organizerID, brackets.EventScoreRecorded, result)
	return result, nil
}

func (s *tournamentService) AdvanceRound(ctx context.Context, organizerID int) (*engine.AdvanceResult, error) {
	var (
		result    *engine.AdvanceResult
		champions *engine.Champions
	)
	_, err := s.mutate(ctx, organizerID, func(e *engine.Engine) error {
		var err error
		result, err = e.AdvanceRound()
		if err != nil {
			return err
		}
		if result.Finished {
			champions, err = e.Champions()
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "round advanced",
		slog.Int("organizer_id", organizerID), slog.Int("round", result.Round),
		slog.Bool("rotated", result.Rotated), slog.Bool("finished", result.Finished))
	s.notify(organizerID, brackets.EventRoundAdvanced, result)
	if result.Finished {
		s.notify(organizerID, brackets.EventTournamentFinished, champions)
	}
	return result, nil
}

func (s *tournamentService) Reset(ctx context.Context, organizerID int) (*models.TournamentState, error) {
	state, err := s.mutate(ctx, organizerID, func(e *engine.Engine) error {
		return e.ResetToSetup()
	})
	if err == nil {
		s.logger.InfoContext(ctx, "tournament reset to setup", slog.Int("organizer_id", organizerID))
	}
	return s.updated(organizerID, state, err)
}

func (s *tournamentService) Standings(ctx context.Context, organizerID int, groupID string) ([]brackets.Standing, error) {
	var rows []brackets.Standing
	err := s.view(ctx, organizerID, func(e *engine.Engine) error {
		var err error
		rows, err = e.Standings(groupID)
		return err
	})
	return rows, err
}

func (s *tournamentService) PlayableMatches(ctx context.Context, organizerID, round int) ([]models.Match, error) {
	var matches []models.Match
	err := s.view(ctx, organizerID, func(e *engine.Engine) error {
		matches = e.PlayableMatches(round)
		return nil
	})
	return matches, err
}

func (s *tournamentService) Champions(ctx context.Context, organizerID int) (*engine.Champions, error) {
	var champions *engine.Champions
	err := s.view(ctx, organizerID, func(e *engine.Engine) error {
		var err error
		champions, err = e.Champions()
		return err
	})
	return champions, err
}
