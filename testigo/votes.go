// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testigo

import (
	"context"
	"database/sql"
)

// SQLVoteCountSource reads the current fiscalized vote count at a mesa from
// the votante table. This is the external counting collaborator of the
// sampling engine: the controller only ever observes it, never writes it.
type SQLVoteCountSource struct {
	db *sql.DB
}

func NewSQLVoteCountSource(db *sql.DB) *SQLVoteCountSource {
	return &SQLVoteCountSource{db: db}
}

func (src *SQLVoteCountSource) CurrentVoteCount(ctx context.Context, mesaID string) (int, error) {
	var count int
	err := src.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM votante WHERE mesa_id = $1 AND voted = $2
	`, mesaID, true).Scan(&count)
	if err != nil {
		return 0, &SourceUnavailableError{Err: err}
	}
	return count, nil
}
