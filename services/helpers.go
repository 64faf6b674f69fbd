package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/mini-tournament/repositories"
)

// txScope wraps an optional transaction. Without a database handle the
// repositories use their own connection and commit is a no-op.
type txScope struct {
	tx *sql.Tx
}

func (s *tournamentService) beginTx(ctx context.Context) (*txScope, error) {
	if s.db == nil {
		return &txScope{}, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &txScope{tx: tx}, nil
}

func (t *txScope) exec() repositories.SQLExecutor {
	if t.tx == nil {
		return nil
	}
	return t.tx
}

func (t *txScope) commit() error {
	if t.tx == nil {
		return nil
	}
	return t.tx.Commit()
}

func (t *txScope) rollback() error {
	if t.tx == nil {
		return nil
	}
	return t.tx.Rollback()
}
