package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/mini-tournament/models"
)

var (
	ErrStateNotFound = errors.New("tournament state not found")
	ErrStateConflict = errors.New("tournament state was changed concurrently")
)

// StoredState is a persisted live tournament with its row metadata.
type StoredState struct {
	OrganizerID int
	Version     int
	UpdatedAt   time.Time
	State       *models.TournamentState
}

type StateRepository interface {
	Get(ctx context.Context, organizerID int) (*StoredState, error)
	// Save writes the state. expectedVersion 0 inserts a new row; any other
	// value must match the stored version.
	Save(ctx context.Context, exec SQLExecutor, organizerID, expectedVersion int, state *models.TournamentState) (int, error)
	ListFinished(ctx context.Context, finishedBefore time.Time) ([]int, error)
}

type postgresStateRepository struct {
	db *sql.DB
}

func NewPostgresStateRepository(db *sql.DB) StateRepository {
	return &postgresStateRepository{db: db}
}

func (r *postgresStateRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresStateRepository) Get(ctx context.Context, organizerID int) (*StoredState, error) {
	executor := r.getExecutor(nil)
	query := `
		SELECT organizer_id, version, updated_at, state
		FROM tournament_states
		WHERE organizer_id = $1`

	var (
		s   StoredState
		raw []byte
	)
	err := executor.QueryRowContext(ctx, query, organizerID).Scan(&s.OrganizerID, &s.Version, &s.UpdatedAt, &raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to load tournament state for organizer %d: %w", organizerID, err)
	}

	s.State = &models.TournamentState{}
	if err := json.Unmarshal(raw, s.State); err != nil {
		return nil, fmt.Errorf("failed to decode tournament state for organizer %d: %w", organizerID, err)
	}
	return &s, nil
}

func (r *postgresStateRepository) Save(ctx context.Context, exec SQLExecutor, organizerID, expectedVersion int, state *models.TournamentState) (int, error) {
	executor := r.getExecutor(exec)
	raw, err := json.Marshal(state)
	if err != nil {
		return 0, fmt.Errorf("failed to encode tournament state: %w", err)
	}

	if expectedVersion == 0 {
		query := `
			INSERT INTO tournament_states (organizer_id, status, state, version, updated_at)
			VALUES ($1, $2, $3, 1, NOW())`
		_, err := executor.ExecContext(ctx, query, organizerID, state.Status, raw)
		if err != nil {
			if code, _, ok := pqCode(err); ok && code == "23505" {
				return 0, ErrStateConflict
			}
			return 0, fmt.Errorf("failed to insert tournament state for organizer %d: %w", organizerID, err)
		}
		return 1, nil
	}

	query := `
		UPDATE tournament_states
		SET status = $1, state = $2, version = version + 1, updated_at = NOW()
		WHERE organizer_id = $3 AND version = $4`
	result, err := executor.ExecContext(ctx, query, state.Status, raw, organizerID, expectedVersion)
	if err != nil {
		return 0, fmt.Errorf("failed to update tournament state for organizer %d: %w", organizerID, err)
	}
	if err := checkAffectedRows(result, ErrStateConflict); err != nil {
		return 0, err
	}
	return expectedVersion + 1, nil
}

// ListFinished returns the organizers whose tournament has been finished
// since before the given time.
func (r *postgresStateRepository) ListFinished(ctx context.Context, finishedBefore time.Time) ([]int, error) {
	executor := r.getExecutor(nil)
	query := `
		SELECT organizer_id
		FROM tournament_states
		WHERE status = $1 AND updated_at < $2
		ORDER BY organizer_id`

	rows, err := executor.QueryContext(ctx, query, models.StatusFinished, finishedBefore)
	if err != nil {
		return nil, fmt.Errorf("failed to query finished tournaments: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan organizer id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating finished tournaments: %w", err)
	}
	return ids, nil
}
