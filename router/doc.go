// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Testigo API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health and monitoring:

	GET /health
	GET /metrics

Operators:

	POST /operators/register - Register operator (returns operator key)

Mesa management (requires X-Operator-Id and X-Operator-Key):

	POST /mesas             - Create mesa
	GET  /mesas             - List mesas with voter and vote totals
	PUT  /mesas/{id}/fiscal - Assign fiscal to mesa

Electoral roll:

	POST   /mesas/{mesa}/voters - Add voter to mesa
	GET    /mesas/{mesa}/voters - Search voters (document, q, limit)
	POST   /voters/{id}/vote    - Mark voter as voted
	DELETE /voters/{id}/vote    - Undo vote mark

Sample lifecycle (requires X-Operator-Id and X-Operator-Key):

	POST   /mesas/{mesa}/samples          - Start sample
	POST   /mesas/{mesa}/samples/finalize - Finalize sample
	DELETE /mesas/{mesa}/samples/open     - Cancel open sample
	GET    /mesas/{mesa}/samples/open     - Get open sample
	GET    /mesas/{mesa}/samples          - List samples
	PATCH  /samples/{id}/validity         - Toggle sample validity

Statistics (public):

	GET /mesas/{mesa}/stats  - Aggregate statistics with recommendations
	GET /mesas/{mesa}/report - Plain text summary report

# Handler Initialization

The router creates handler instances with dependency injection:

	sampleHandler := handlers.NewSampleHandler(db, cfg)
	statsHandler := handlers.NewStatsHandler(db, cfg)

All handlers receive the database connection and configuration.
*/
package router
