// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Testigo API server.

Testigo is a mesa-testigo (witness table) service for election day: it
tracks an electoral roll per mesa, samples ballot-pile consumption
against observed vote counts, and aggregates the samples into turnout
estimates with efficiency classifications and recommendations.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=postgres://... DATABASE_TYPE=postgres go run main.go

Or with flags:

	go run main.go -p 3419 -t sqlite -d testigo.db

# Configuration

Required settings:

  - DATABASE_URL (-d): Connection string (postgres URL or sqlite path)
  - OPERATOR_KEY_SALT (--operator-salt): Secret for operator key HMAC

Optional settings:

  - PORT (-p): Server port (default: 3419)
  - DATABASE_TYPE (-t): "sqlite" or "postgres" (default: sqlite)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - testigo: Sampling domain (controller, classification, aggregation)
  - handlers: HTTP request handlers (samples, stats, mesas, voters, operators)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - metrics: Prometheus instrumentation
  - models: Request/response types
  - auth: Operator key generation and validation
  - db: Driver selection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
