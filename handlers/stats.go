// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/padron-digital/testigo/cliparse"
	"github.com/padron-digital/testigo/middleware"
	"github.com/padron-digital/testigo/models"
	"github.com/padron-digital/testigo/testigo"
)

type StatsHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	store *testigo.SQLSampleStore
}

func NewStatsHandler(db *sql.DB, cfg cliparse.Config) *StatsHandler {
	return &StatsHandler{db: db, cfg: cfg, store: testigo.NewSQLSampleStore(db)}
}

// GetMesaStats handles GET /mesas/:mesa/stats
// Aggregate statistics are recomputed from scratch on every call; nothing
// is cached or persisted.
func (h *StatsHandler) GetMesaStats(w http.ResponseWriter, r *http.Request) {
	mesaID := r.PathValue("mesa")
	if mesaID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "mesa is required")
		return
	}

	samples, err := h.store.ListByMesa(r.Context(), mesaID)
	if err != nil {
		writeDomainError(w, "stats", err)
		return
	}

	agg := testigo.Aggregate(samples)

	middleware.JSONResponse(w, http.StatusOK, models.MesaStatsResponse{
		MesaID:          mesaID,
		Stats:           agg,
		Recommendations: testigo.Recommend(agg),
	})
}

// GetMesaReport handles GET /mesas/:mesa/report
// Plain-text summary for poll workers without the frontend at hand.
func (h *StatsHandler) GetMesaReport(w http.ResponseWriter, r *http.Request) {
	mesaID := r.PathValue("mesa")
	if mesaID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "mesa is required")
		return
	}

	var (
		number     int
		school     string
		voterCount int
		voteCount  int
	)
	err := h.db.QueryRowContext(r.Context(), `
		SELECT m.number, m.school,
		       COUNT(v.id),
		       COUNT(CASE WHEN v.voted THEN 1 END)
		FROM mesa m
		LEFT JOIN votante v ON v.mesa_id = m.id
		WHERE m.id = $1
		GROUP BY m.number, m.school
	`, mesaID).Scan(&number, &school, &voterCount, &voteCount)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Mesa no encontrada")
		return
	}
	if err != nil {
		slog.Error("failed to query mesa report", "error", err, "mesa_id", mesaID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	samples, err := h.store.ListByMesa(r.Context(), mesaID)
	if err != nil {
		writeDomainError(w, "report", err)
		return
	}
	agg := testigo.Aggregate(samples)

	var b strings.Builder
	fmt.Fprintf(&b, "Mesa %d - %s\n", number, school)
	fmt.Fprintf(&b, "Votantes empadronados: %s\n", humanize.Comma(int64(voterCount)))
	fmt.Fprintf(&b, "Votos fiscalizados: %s\n", humanize.Comma(int64(voteCount)))
	fmt.Fprintf(&b, "Muestras testigo: %s (%s válidas)\n",
		humanize.Comma(int64(agg.TotalSampleCount)), humanize.Comma(int64(agg.ValidSampleCount)))
	fmt.Fprintf(&b, "Eficiencia promedio: %.1f%% / mediana %.1f%% / desvío %.1f\n",
		agg.AveragePercentage, agg.MedianPercentage, agg.StandardDeviation)
	fmt.Fprintf(&b, "Confianza: %s / participación estimada: %d%%\n",
		agg.ConfidenceTier, agg.ParticipationEstimate)
	for _, rec := range testigo.Recommend(agg) {
		fmt.Fprintf(&b, "[%s] %s\n", rec.Severity, rec.Message)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(b.String())); err != nil {
		slog.Error("failed to write report", "error", err)
	}
}
