// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connection and schema creation.

# Opening a Connection

Open selects the driver from the configured database type:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

Supported types are "postgres" (lib/pq) and "sqlite" (modernc.org/sqlite).

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
Timestamps are bound from Go rather than DB-side defaults so the same DDL
runs on both backends.

# Tables

The schema includes:

  - operator: Poll workers with HMAC-derived credentials
  - mesa: Physical voting tables with fiscal assignment
  - votante: Padrón entries; the voted flag feeds the vote-count source
  - sample: Mesa-testigo measurement cycles

# Relationships

	operator 1──* mesa (fiscal assignment)
	mesa 1──* votante
	mesa 1──* sample
	operator 1──* sample

# Invariants in DDL

  - sample.pile_at_start > 0
  - sample.pile_at_end between 0 and pile_at_start
  - sample.votes_delta >= 0
  - a partial unique index allows at most one open sample
    (pile_at_end IS NULL) per (mesa_id, operator_id)
*/
package db
