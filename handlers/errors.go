// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/padron-digital/testigo/metrics"
	"github.com/padron-digital/testigo/middleware"
	"github.com/padron-digital/testigo/testigo"
)

// writeDomainError maps the engine's error taxonomy onto HTTP statuses so
// every failure mode of the four lifecycle operations stays distinguishable
// to the caller. op labels the metrics counter.
func writeDomainError(w http.ResponseWriter, op string, err error) {
	var (
		verr *testigo.ValidationError
		cerr *testigo.ConflictError
		serr *testigo.StateError
		ierr *testigo.InvariantError
		uerr *testigo.SourceUnavailableError
		perr *testigo.PersistenceError
	)

	switch {
	case errors.As(err, &verr):
		metrics.SampleErrors.WithLabelValues(op, "validation").Inc()
		middleware.ErrorResponse(w, http.StatusBadRequest, verr.Message)
	case errors.As(err, &cerr):
		metrics.SampleErrors.WithLabelValues(op, "conflict").Inc()
		middleware.ErrorResponse(w, http.StatusConflict, cerr.Message)
	case errors.As(err, &serr):
		metrics.SampleErrors.WithLabelValues(op, "state").Inc()
		middleware.ErrorResponse(w, http.StatusConflict, serr.Message)
	case errors.As(err, &ierr):
		metrics.SampleErrors.WithLabelValues(op, "invariant").Inc()
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, ierr.Message)
	case errors.Is(err, testigo.ErrSampleNotFound):
		metrics.SampleErrors.WithLabelValues(op, "not_found").Inc()
		middleware.ErrorResponse(w, http.StatusNotFound, "Muestra no encontrada")
	case errors.As(err, &uerr):
		metrics.SampleErrors.WithLabelValues(op, "source_unavailable").Inc()
		slog.Error("vote count source unavailable", "op", op, "error", err)
		middleware.ErrorResponse(w, http.StatusBadGateway, "La fuente de conteo de votos no está disponible; reintentar")
	case errors.As(err, &perr):
		metrics.SampleErrors.WithLabelValues(op, "persistence").Inc()
		slog.Error("persistence failure", "op", op, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de persistencia; reintentar")
	default:
		metrics.SampleErrors.WithLabelValues(op, "unknown").Inc()
		slog.Error("unexpected error", "op", op, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
	}
}
