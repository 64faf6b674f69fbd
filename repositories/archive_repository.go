package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/mini-tournament/models"
)

var (
	ErrArchiveNotFound = errors.New("archive not found")
	ErrArchiveConflict = errors.New("archive already exists")
)

type ArchiveRepository interface {
	Create(ctx context.Context, exec SQLExecutor, archive *models.Archive) error
	GetByID(ctx context.Context, organizerID int, id string) (*models.Archive, error)
	ListByOrganizer(ctx context.Context, organizerID, limit, offset int) ([]models.Archive, error)
}

type postgresArchiveRepository struct {
	db *sql.DB
}

func NewPostgresArchiveRepository(db *sql.DB) ArchiveRepository {
	return &postgresArchiveRepository{db: db}
}

func (r *postgresArchiveRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresArchiveRepository) Create(ctx context.Context, exec SQLExecutor, a *models.Archive) error {
	executor := r.getExecutor(exec)
	raw, err := json.Marshal(a.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode archive snapshot: %w", err)
	}

	query := `
		INSERT INTO tournament_archives (
			id, organizer_id, format, main_champion, consolation_champion, storage_key, snapshot
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err = executor.QueryRowContext(ctx, query,
		a.ID, a.OrganizerID, a.Format, a.MainChampion, a.ConsolationChampion, a.StorageKey, raw,
	).Scan(&a.CreatedAt)
	return r.handleArchiveError(err)
}

func (r *postgresArchiveRepository) GetByID(ctx context.Context, organizerID int, id string) (*models.Archive, error) {
	executor := r.getExecutor(nil)
	query := `
		SELECT id, organizer_id, format, main_champion, consolation_champion, storage_key, created_at, snapshot
		FROM tournament_archives
		WHERE organizer_id = $1 AND id = $2`

	var (
		a   models.Archive
		raw []byte
	)
	err := executor.QueryRowContext(ctx, query, organizerID, id).Scan(
		&a.ID, &a.OrganizerID, &a.Format, &a.MainChampion, &a.ConsolationChampion, &a.StorageKey, &a.CreatedAt, &raw,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrArchiveNotFound
		}
		return nil, fmt.Errorf("failed to load archive %s: %w", id, err)
	}

	a.Snapshot = &models.TournamentState{}
	if err := json.Unmarshal(raw, a.Snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode archive snapshot %s: %w", id, err)
	}
	return &a, nil
}

// ListByOrganizer lists archives newest first, without snapshots.
func (r *postgresArchiveRepository) ListByOrganizer(ctx context.Context, organizerID, limit, offset int) ([]models.Archive, error) {
	executor := r.getExecutor(nil)
	query := `
		SELECT id, organizer_id, format, main_champion, consolation_champion, storage_key, created_at
		FROM tournament_archives
		WHERE organizer_id = $1
		ORDER BY created_at DESC`

	args := []interface{}{organizerID}
	argID := 2
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, limit)
		argID++
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, offset)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list archives for organizer %d: %w", organizerID, err)
	}
	defer rows.Close()

	archives := make([]models.Archive, 0)
	for rows.Next() {
		var a models.Archive
		if err := rows.Scan(&a.ID, &a.OrganizerID, &a.Format, &a.MainChampion, &a.ConsolationChampion, &a.StorageKey, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan archive row: %w", err)
		}
		archives = append(archives, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating archives: %w", err)
	}
	return archives, nil
}

func (r *postgresArchiveRepository) handleArchiveError(err error) error {
	if err == nil {
		return nil
	}
	if code, constraint, ok := pqCode(err); ok {
		switch code {
		case "23505":
			if constraint == "tournament_archives_pkey" {
				return ErrArchiveConflict
			}
		case "22P02":
			return fmt.Errorf("%w: malformed archive id", ErrArchiveNotFound)
		}
	}
	return err
}
