// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/padron-digital/testigo/cliparse"
	"github.com/padron-digital/testigo/handlers"
	"github.com/padron-digital/testigo/metrics"
	"github.com/padron-digital/testigo/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	operatorHandler := handlers.NewOperatorHandler(db, cfg)
	mesaHandler := handlers.NewMesaHandler(db, cfg)
	voterHandler := handlers.NewVoterHandler(db, cfg)
	sampleHandler := handlers.NewSampleHandler(db, cfg)
	statsHandler := handlers.NewStatsHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus metrics
	mux.Handle("GET /metrics", metrics.Handler())

	// Operator registration
	mux.HandleFunc("POST /operators/register", middleware.WithLogging("POST /operators/register", operatorHandler.Register))

	// Mesa management
	mux.HandleFunc("POST /mesas", middleware.WithLogging("POST /mesas", mesaHandler.CreateMesa))
	mux.HandleFunc("GET /mesas", middleware.WithLogging("GET /mesas", mesaHandler.ListMesas))
	mux.HandleFunc("PUT /mesas/{id}/fiscal", middleware.WithLogging("PUT /mesas/{id}/fiscal", mesaHandler.AssignFiscal))

	// Electoral roll
	mux.HandleFunc("POST /mesas/{mesa}/voters", middleware.WithLogging("POST /mesas/{mesa}/voters", voterHandler.AddVoter))
	mux.HandleFunc("GET /mesas/{mesa}/voters", middleware.WithLogging("GET /mesas/{mesa}/voters", voterHandler.ListVoters))
	mux.HandleFunc("POST /voters/{id}/vote", middleware.WithLogging("POST /voters/{id}/vote", voterHandler.MarkVote))
	mux.HandleFunc("DELETE /voters/{id}/vote", middleware.WithLogging("DELETE /voters/{id}/vote", voterHandler.UnmarkVote))

	// Sample lifecycle (operator operations)
	mux.HandleFunc("POST /mesas/{mesa}/samples", middleware.WithLogging("POST /mesas/{mesa}/samples", sampleHandler.StartSample))
	mux.HandleFunc("POST /mesas/{mesa}/samples/finalize", middleware.WithLogging("POST /mesas/{mesa}/samples/finalize", sampleHandler.FinalizeSample))
	mux.HandleFunc("DELETE /mesas/{mesa}/samples/open", middleware.WithLogging("DELETE /mesas/{mesa}/samples/open", sampleHandler.CancelSample))
	mux.HandleFunc("GET /mesas/{mesa}/samples/open", middleware.WithLogging("GET /mesas/{mesa}/samples/open", sampleHandler.GetOpenSample))
	mux.HandleFunc("GET /mesas/{mesa}/samples", middleware.WithLogging("GET /mesas/{mesa}/samples", sampleHandler.ListSamples))
	mux.HandleFunc("PATCH /samples/{id}/validity", middleware.WithLogging("PATCH /samples/{id}/validity", sampleHandler.ToggleValidity))

	// Statistics retrieval (public)
	mux.HandleFunc("GET /mesas/{mesa}/stats", middleware.WithLogging("GET /mesas/{mesa}/stats", statsHandler.GetMesaStats))
	mux.HandleFunc("GET /mesas/{mesa}/report", middleware.WithLogging("GET /mesas/{mesa}/report", statsHandler.GetMesaReport))

	// Root endpoint. {$} pins the pattern to exactly "/" so unknown GET
	// paths fall through to the mux's 404 instead of this handler.
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("testigo API v1"))
	})

	return mux
}
