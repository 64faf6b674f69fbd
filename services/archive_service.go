package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/mini-tournament/brackets"
	"github.com/Dosada05/mini-tournament/engine"
	"github.com/Dosada05/mini-tournament/models"
	"github.com/Dosada05/mini-tournament/repositories"
	"github.com/Dosada05/mini-tournament/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Archive stores the finished tournament of an organizer and starts a fresh
// setup. The snapshot upload and the database writes run concurrently; the
// database transaction is committed only when both succeed.
func (s *tournamentService) Archive(ctx context.Context, organizerID int) (*models.Archive, error) {
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
	champions, err := eng.Champions()
	if err != nil {
		return nil, err
	}
	snapshot, err := eng.Archive()
	if err != nil {
		return nil, err
	}
	fresh := eng.State()

	archive := &models.Archive{
		ID:                  uuid.NewString(),
		OrganizerID:         organizerID,
		Format:              snapshot.Format,
		MainChampion:        nonEmpty(champions.Main),
		ConsolationChampion: nonEmpty(champions.Consolation),
		Snapshot:            snapshot,
	}
	if s.uploader != nil {
		key := storage.SnapshotKey(organizerID, archive.ID)
		archive.StorageKey = &key
	}

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, err
	}

	g, gCtx := errgroup.WithContext(ctx)
	if s.uploader != nil {
		g.Go(func() error {
			uploadCtx, cancel := context.WithTimeout(gCtx, storeTimeout)
			defer cancel()
			if _, err := storage.UploadSnapshot(uploadCtx, s.uploader, organizerID, archive.ID, snapshot); err != nil {
				return fmt.Errorf("failed to upload archive snapshot: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		dbCtx, cancel := context.WithTimeout(gCtx, storeTimeout)
		defer cancel()
		if err := s.archives.Create(dbCtx, tx.exec(), archive); err != nil {
			return fmt.Errorf("failed to insert archive: %w", err)
		}
		return s.save(dbCtx, tx.exec(), stored, fresh)
	})

	if err := g.Wait(); err != nil {
		if rbErr := tx.rollback(); rbErr != nil {
			s.logger.ErrorContext(ctx, "archive rollback failed", slog.Int("organizer_id", organizerID), slog.Any("error", rbErr))
		}
		s.discardSnapshot(ctx, archive)
		return nil, err
	}
	if err := tx.commit(); err != nil {
		s.discardSnapshot(ctx, archive)
		return nil, fmt.Errorf("failed to commit archive: %w", err)
	}

	s.populateSnapshotURL(archive)
	s.logger.InfoContext(ctx, "tournament archived",
		slog.Int("organizer_id", organizerID), slog.String("archive_id", archive.ID),
		slog.String("main_champion", champions.Main))
	s.notify(organizerID, brackets.EventTournamentArchived, archive)
	return archive, nil
}

// discardSnapshot removes an uploaded snapshot whose archive was not stored.
func (s *tournamentService) discardSnapshot(ctx context.Context, archive *models.Archive) {
	if s.uploader == nil || archive.StorageKey == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancel()
	if err := s.uploader.Delete(ctx, *archive.StorageKey); err != nil {
		s.logger.WarnContext(ctx, "failed to delete orphan archive snapshot",
			slog.String("key", *archive.StorageKey), slog.Any("error", err))
	}
}

func (s *tournamentService) populateSnapshotURL(archive *models.Archive) {
	if s.uploader == nil || archive.StorageKey == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*archive.StorageKey); url != "" {
		archive.SnapshotURL = &url
	}
}

func (s *tournamentService) ListArchives(ctx context.Context, organizerID, limit, offset int) ([]models.Archive, error) {
	if organizerID <= 0 {
		return nil, fmt.Errorf("%w: invalid organizer id %d", ErrValidationFailed, organizerID)
	}
	if limit < 0 || offset < 0 {
		return nil, fmt.Errorf("%w: limit and offset must not be negative", ErrValidationFailed)
	}
	archives, err := s.archives.ListByOrganizer(ctx, organizerID, limit, offset)
	if err != nil {
		return nil, err
	}
	for i := range archives {
		s.populateSnapshotURL(&archives[i])
	}
	return archives, nil
}

func (s *tournamentService) GetArchive(ctx context.Context, organizerID int, archiveID string) (*models.Archive, error) {
	if _, err := uuid.Parse(archiveID); err != nil {
		return nil, fmt.Errorf("%w: malformed archive id", ErrValidationFailed)
	}
	archive, err := s.archives.GetByID(ctx, organizerID, archiveID)
	if err != nil {
		if errors.Is(err, repositories.ErrArchiveNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrArchiveNotFound, archiveID)
		}
		return nil, err
	}
	s.populateSnapshotURL(archive)
	return archive, nil
}

func (s *tournamentService) ArchiveFinished(ctx context.Context, finishedBefore time.Time) (int, error) {
	organizers, err := s.states.ListFinished(ctx, finishedBefore)
	if err != nil {
		return 0, err
	}

	archived := 0
	for _, organizerID := range organizers {
		if ctx.Err() != nil {
			return archived, ctx.Err()
		}
		if _, err := s.Archive(ctx, organizerID); err != nil {
			// State may have moved on since the listing.
			if errors.Is(err, engine.ErrInvalidStatus) || errors.Is(err, engine.ErrNotFinished) {
				continue
			}
			s.logger.ErrorContext(ctx, "auto archive failed", slog.Int("organizer_id", organizerID), slog.Any("error", err))
			continue
		}
		archived++
	}
	return archived, nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
