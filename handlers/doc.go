// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Testigo API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - SampleHandler: Sample lifecycle (start, finalize, cancel, validity)
  - StatsHandler: Aggregate statistics and text reports per mesa
  - MesaHandler: Mesa creation, listing, and fiscal assignment
  - VoterHandler: Electoral roll entries and vote marking
  - OperatorHandler: Operator registration

Handlers are created via constructor functions that accept *sql.DB and Config:

	sampleHandler := handlers.NewSampleHandler(db, cfg)

# Sample Lifecycle

A mesa has at most one open sample at a time. Samples progress from
open to finalized (or are canceled while open):

	POST   /mesas/{mesa}/samples          → StartSample (captures vote baseline)
	POST   /mesas/{mesa}/samples/finalize → FinalizeSample (computes efficiency)
	DELETE /mesas/{mesa}/samples/open     → CancelSample
	GET    /mesas/{mesa}/samples/open     → GetOpenSample
	GET    /mesas/{mesa}/samples          → ListSamples
	PATCH  /samples/{id}/validity         → ToggleValidity (finalized only)

Lifecycle transitions are serialized per (mesa, operator) pair by a
SessionRegistry, which keeps a testigo.Controller per pair and resumes
any open sample found in the store on first use.

# Error Mapping

Domain errors from the testigo package map to HTTP statuses in
writeDomainError:

	ValidationError        → 400
	ConflictError          → 409
	StateError             → 409
	InvariantError         → 422
	ErrSampleNotFound      → 404
	SourceUnavailableError → 502
	PersistenceError       → 500

# Statistics

Aggregate statistics over finalized valid samples:

	GET /mesas/{mesa}/stats  → GetMesaStats (JSON, includes recommendations)
	GET /mesas/{mesa}/report → GetMesaReport (plain text summary)

# Operator Auth

Mutating operations require the X-Operator-Id and X-Operator-Key
headers. Keys are deterministic HMACs validated by the auth package.
*/
package handlers
