// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testigo

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/padron-digital/testigo/models"
)

// SQLSampleStore persists samples in the sample table. Works against both
// postgres and sqlite (the schema avoids backend-specific defaults, and the
// open-sample invariant is also guarded by a partial unique index both
// backends support).
type SQLSampleStore struct {
	db *sql.DB
}

func NewSQLSampleStore(db *sql.DB) *SQLSampleStore {
	return &SQLSampleStore{db: db}
}

const sampleColumns = `id, mesa_id, operator_id, started_at, pile_at_start, votes_at_start,
       pile_at_end, votes_at_end, ballots_consumed, votes_delta, is_valid, finalized_at`

// InsertOpen persists a new open sample and returns its assigned id.
// A second open sample for the same mesa/operator pair is a *ConflictError.
func (st *SQLSampleStore) InsertOpen(ctx context.Context, s *models.Sample) (string, error) {
	var exists bool
	err := st.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM sample
			WHERE mesa_id = $1 AND operator_id = $2 AND pile_at_end IS NULL
		)
	`, s.MesaID, s.OperatorID).Scan(&exists)
	if err != nil {
		return "", &PersistenceError{Op: "insert", Err: err}
	}
	if exists {
		return "", &ConflictError{Message: "ya hay una muestra abierta para esta mesa y operador"}
	}

	id := uuid.NewString()
	_, err = st.db.ExecContext(ctx, `
		INSERT INTO sample (id, mesa_id, operator_id, started_at, pile_at_start, votes_at_start, is_valid)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, s.MesaID, s.OperatorID, s.StartedAt, s.PileAtStart, s.VotesAtStart, s.IsValid)

	if err != nil {
		// The partial unique index catches the race the pre-check misses.
		if isUniqueViolation(err) {
			return "", &ConflictError{Message: "ya hay una muestra abierta para esta mesa y operador"}
		}
		return "", &PersistenceError{Op: "insert", Err: err}
	}

	return id, nil
}

// FindOpen returns the open sample for a mesa/operator pair, or nil when
// there is none.
func (st *SQLSampleStore) FindOpen(ctx context.Context, mesaID, operatorID string) (*models.Sample, error) {
	row := st.db.QueryRowContext(ctx, `
		SELECT `+sampleColumns+`
		FROM sample
		WHERE mesa_id = $1 AND operator_id = $2 AND pile_at_end IS NULL
	`, mesaID, operatorID)

	s, err := scanSample(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "find-open", Err: err}
	}
	return s, nil
}

// Finalize writes all end-of-window fields in one atomic update, restricted
// to still-open rows, and returns the finalized sample.
func (st *SQLSampleStore) Finalize(ctx context.Context, id string, fin SampleFinalization) (*models.Sample, error) {
	res, err := st.db.ExecContext(ctx, `
		UPDATE sample
		SET pile_at_end = $1, votes_at_end = $2, ballots_consumed = $3,
		    votes_delta = $4, is_valid = $5, finalized_at = $6
		WHERE id = $7 AND pile_at_end IS NULL
	`, fin.PileAtEnd, fin.VotesAtEnd, fin.BallotsConsumed, fin.VotesDelta, true, fin.FinalizedAt, id)
	if err != nil {
		return nil, &PersistenceError{Op: "finalize", Err: err}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, &PersistenceError{Op: "finalize", Err: err}
	}
	if affected == 0 {
		return nil, &StateError{Message: "la muestra no está abierta"}
	}

	return st.getByID(ctx, id)
}

// SetValidity updates the isValid flag of a finalized sample. All other
// fields stay untouched.
func (st *SQLSampleStore) SetValidity(ctx context.Context, id string, isValid bool) error {
	res, err := st.db.ExecContext(ctx, `
		UPDATE sample
		SET is_valid = $1
		WHERE id = $2 AND pile_at_end IS NOT NULL
	`, isValid, id)
	if err != nil {
		return &PersistenceError{Op: "set-validity", Err: err}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return &PersistenceError{Op: "set-validity", Err: err}
	}
	if affected == 0 {
		// Distinguish a missing sample from one that is still open.
		if _, err := st.getByID(ctx, id); err != nil {
			return err
		}
		return &StateError{Message: "la muestra aún está abierta; finalizarla antes de marcar su validez"}
	}
	return nil
}

// DeleteOpen hard-deletes a still-open sample. Deleting a finalized sample
// is a *StateError.
func (st *SQLSampleStore) DeleteOpen(ctx context.Context, id string) error {
	res, err := st.db.ExecContext(ctx, `
		DELETE FROM sample WHERE id = $1 AND pile_at_end IS NULL
	`, id)
	if err != nil {
		return &PersistenceError{Op: "delete", Err: err}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return &PersistenceError{Op: "delete", Err: err}
	}
	if affected == 0 {
		if _, err := st.getByID(ctx, id); err != nil {
			return err
		}
		return &StateError{Message: "la muestra ya fue finalizada"}
	}
	return nil
}

// ListByMesa returns all samples for a mesa, oldest first.
func (st *SQLSampleStore) ListByMesa(ctx context.Context, mesaID string) ([]models.Sample, error) {
	rows, err := st.db.QueryContext(ctx, `
		SELECT `+sampleColumns+`
		FROM sample
		WHERE mesa_id = $1
		ORDER BY started_at
	`, mesaID)
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	defer rows.Close()

	samples := []models.Sample{}
	for rows.Next() {
		s, err := scanSample(rows)
		if err != nil {
			return nil, &PersistenceError{Op: "list", Err: err}
		}
		samples = append(samples, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	return samples, nil
}

func (st *SQLSampleStore) getByID(ctx context.Context, id string) (*models.Sample, error) {
	row := st.db.QueryRowContext(ctx, `
		SELECT `+sampleColumns+`
		FROM sample
		WHERE id = $1
	`, id)

	s, err := scanSample(row)
	if err == sql.ErrNoRows {
		return nil, ErrSampleNotFound
	}
	if err != nil {
		return nil, &PersistenceError{Op: "get", Err: err}
	}
	return s, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSample(row scanner) (*models.Sample, error) {
	var s models.Sample
	var pileAtEnd, votesAtEnd, ballotsConsumed, votesDelta sql.NullInt64
	var finalizedAt sql.NullTime

	err := row.Scan(
		&s.ID, &s.MesaID, &s.OperatorID, &s.StartedAt, &s.PileAtStart, &s.VotesAtStart,
		&pileAtEnd, &votesAtEnd, &ballotsConsumed, &votesDelta, &s.IsValid, &finalizedAt,
	)
	if err != nil {
		return nil, err
	}

	s.PileAtEnd = nullableInt(pileAtEnd)
	s.VotesAtEnd = nullableInt(votesAtEnd)
	s.BallotsConsumed = nullableInt(ballotsConsumed)
	s.VotesDelta = nullableInt(votesDelta)
	if finalizedAt.Valid {
		t := finalizedAt.Time
		s.FinalizedAt = &t
	}
	return &s, nil
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

// isUniqueViolation matches the duplicate-key wording of both backends,
// following the driver-agnostic string check the codebase already relies on.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique index")
}
