// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/padron-digital/testigo/cliparse"
	"github.com/padron-digital/testigo/metrics"
	"github.com/padron-digital/testigo/middleware"
	"github.com/padron-digital/testigo/models"
	"github.com/padron-digital/testigo/testigo"
)

type SampleHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	store    *testigo.SQLSampleStore
	registry *SessionRegistry
}

func NewSampleHandler(db *sql.DB, cfg cliparse.Config) *SampleHandler {
	store := testigo.NewSQLSampleStore(db)
	votes := testigo.NewSQLVoteCountSource(db)
	return &SampleHandler{
		db:       db,
		cfg:      cfg,
		store:    store,
		registry: NewSessionRegistry(store, votes),
	}
}

// StartSample handles POST /mesas/:mesa/samples
func (h *SampleHandler) StartSample(w http.ResponseWriter, r *http.Request) {
	mesaID := r.PathValue("mesa")
	if mesaID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "mesa is required")
		return
	}

	operatorID := requireOperator(w, r, h.cfg)
	if operatorID == "" {
		return
	}

	var req models.StartSampleRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var started *models.Sample
	err := h.registry.With(r.Context(), mesaID, operatorID, func(ctl *testigo.Controller) error {
		s, err := ctl.Start(r.Context(), req.PileAtStart)
		if err != nil {
			return err
		}
		started = s
		return nil
	})

	if err != nil {
		writeDomainError(w, "start", err)
		return
	}

	metrics.SamplesStarted.Inc()
	slog.Info("sample started",
		"mesa_id", mesaID,
		"operator_id", operatorID,
		"sample_id", started.ID,
		"pile_at_start", started.PileAtStart,
		"votes_at_start", started.VotesAtStart,
	)

	middleware.JSONResponse(w, http.StatusCreated, started)
}

// FinalizeSample handles POST /mesas/:mesa/samples/finalize
func (h *SampleHandler) FinalizeSample(w http.ResponseWriter, r *http.Request) {
	mesaID := r.PathValue("mesa")
	if mesaID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "mesa is required")
		return
	}

	operatorID := requireOperator(w, r, h.cfg)
	if operatorID == "" {
		return
	}

	var req models.FinalizeSampleRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var (
		finalized *models.Sample
		pct       float64
	)
	err := h.registry.With(r.Context(), mesaID, operatorID, func(ctl *testigo.Controller) error {
		s, p, err := ctl.Finalize(r.Context(), req.PileAtEnd)
		if err != nil {
			return err
		}
		finalized, pct = s, p
		return nil
	})

	if err != nil {
		writeDomainError(w, "finalize", err)
		return
	}

	metrics.SamplesFinalized.Inc()
	slog.Info("sample finalized",
		"mesa_id", mesaID,
		"operator_id", operatorID,
		"sample_id", finalized.ID,
		"ballots_consumed", *finalized.BallotsConsumed,
		"votes_delta", *finalized.VotesDelta,
		"efficiency_pct", pct,
	)

	middleware.JSONResponse(w, http.StatusOK, models.FinalizeSampleResponse{
		Sample:               *finalized,
		EfficiencyPercentage: pct,
		Classification:       testigo.Classify(pct),
	})
}

// CancelSample handles DELETE /mesas/:mesa/samples/open
func (h *SampleHandler) CancelSample(w http.ResponseWriter, r *http.Request) {
	mesaID := r.PathValue("mesa")
	if mesaID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "mesa is required")
		return
	}

	operatorID := requireOperator(w, r, h.cfg)
	if operatorID == "" {
		return
	}

	err := h.registry.With(r.Context(), mesaID, operatorID, func(ctl *testigo.Controller) error {
		return ctl.Cancel(r.Context())
	})

	if err != nil {
		writeDomainError(w, "cancel", err)
		return
	}

	metrics.SamplesCanceled.Inc()
	slog.Info("sample canceled", "mesa_id", mesaID, "operator_id", operatorID)

	middleware.JSONResponse(w, http.StatusOK, map[string]string{"message": "Muestra cancelada"})
}

// GetOpenSample handles GET /mesas/:mesa/samples/open
// Returns the caller's open sample, or 404 when the session is idle.
func (h *SampleHandler) GetOpenSample(w http.ResponseWriter, r *http.Request) {
	mesaID := r.PathValue("mesa")
	if mesaID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "mesa is required")
		return
	}

	operatorID := requireOperator(w, r, h.cfg)
	if operatorID == "" {
		return
	}

	var open *models.Sample
	err := h.registry.With(r.Context(), mesaID, operatorID, func(ctl *testigo.Controller) error {
		open = ctl.ActiveSample()
		return nil
	})

	if err != nil {
		writeDomainError(w, "open", err)
		return
	}
	if open == nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "No hay una muestra abierta")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, open)
}

// ToggleValidity handles PATCH /samples/:id/validity
// Works on any finalized sample, independent of the caller's session state.
func (h *SampleHandler) ToggleValidity(w http.ResponseWriter, r *http.Request) {
	sampleID := r.PathValue("id")
	if sampleID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "sample id is required")
		return
	}

	operatorID := requireOperator(w, r, h.cfg)
	if operatorID == "" {
		return
	}

	var req models.ToggleValidityRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.IsValid == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "is_valid is required")
		return
	}

	if err := h.store.SetValidity(r.Context(), sampleID, *req.IsValid); err != nil {
		writeDomainError(w, "toggle_validity", err)
		return
	}

	slog.Info("sample validity toggled", "sample_id", sampleID, "is_valid", *req.IsValid, "operator_id", operatorID)

	middleware.JSONResponse(w, http.StatusOK, map[string]any{
		"sample_id": sampleID,
		"is_valid":  *req.IsValid,
	})
}

// ListSamples handles GET /mesas/:mesa/samples
func (h *SampleHandler) ListSamples(w http.ResponseWriter, r *http.Request) {
	mesaID := r.PathValue("mesa")
	if mesaID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "mesa is required")
		return
	}

	samples, err := h.store.ListByMesa(r.Context(), mesaID)
	if err != nil {
		writeDomainError(w, "list", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, samples)
}
