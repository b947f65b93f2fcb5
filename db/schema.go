// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// Open connects to the configured database backend. DatabaseType selects
// the driver: "postgres" (lib/pq) or "sqlite" (modernc.org/sqlite). The
// driver packages are imported for side effects by the caller.
func Open(databaseType, databaseURL string) (*sql.DB, error) {
	switch databaseType {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported database type %q (want postgres or sqlite)", databaseType)
	}

	conn, err := sql.Open(databaseType, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", databaseType, err)
	}

	if databaseType == "sqlite" {
		// One connection keeps an in-memory sqlite database alive across
		// statements and avoids write contention on file databases.
		conn.SetMaxOpenConns(1)
	}

	return conn, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
//
// Timestamps are always bound from Go, never DB-side defaults, so the one
// schema works on both postgres and sqlite.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Operators (poll workers / fiscales)
CREATE TABLE IF NOT EXISTS operator (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP NOT NULL
);

-- Mesas (physical voting tables)
CREATE TABLE IF NOT EXISTS mesa (
    id TEXT PRIMARY KEY,
    number INTEGER NOT NULL UNIQUE,
    school TEXT NOT NULL,
    fiscal_id TEXT REFERENCES operator(id)
);

CREATE INDEX IF NOT EXISTS idx_mesa_number ON mesa(number);

-- Votantes (padrón entries; the voted flag is the vote-count source)
CREATE TABLE IF NOT EXISTS votante (
    id TEXT PRIMARY KEY,
    mesa_id TEXT NOT NULL REFERENCES mesa(id) ON DELETE CASCADE,
    document TEXT NOT NULL,
    full_name TEXT NOT NULL,
    voted BOOLEAN NOT NULL,
    voted_at TIMESTAMP,
    UNIQUE (mesa_id, document)
);

CREATE INDEX IF NOT EXISTS idx_votante_mesa_id ON votante(mesa_id);
CREATE INDEX IF NOT EXISTS idx_votante_document ON votante(document);
CREATE INDEX IF NOT EXISTS idx_votante_voted ON votante(mesa_id, voted);

-- Samples (mesa-testigo measurement cycles; open while pile_at_end IS NULL)
CREATE TABLE IF NOT EXISTS sample (
    id TEXT PRIMARY KEY,
    mesa_id TEXT NOT NULL REFERENCES mesa(id) ON DELETE CASCADE,
    operator_id TEXT NOT NULL REFERENCES operator(id),
    started_at TIMESTAMP NOT NULL,
    pile_at_start INTEGER NOT NULL CHECK (pile_at_start > 0),
    votes_at_start INTEGER NOT NULL,
    pile_at_end INTEGER CHECK (pile_at_end >= 0 AND pile_at_end <= pile_at_start),
    votes_at_end INTEGER,
    ballots_consumed INTEGER,
    votes_delta INTEGER CHECK (votes_delta >= 0),
    is_valid BOOLEAN NOT NULL,
    finalized_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_sample_mesa ON sample(mesa_id);

-- At most one open sample per (mesa, operator); both backends support
-- partial unique indexes.
CREATE UNIQUE INDEX IF NOT EXISTS idx_sample_open
    ON sample(mesa_id, operator_id) WHERE pile_at_end IS NULL;
`
