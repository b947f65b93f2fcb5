// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/padron-digital/testigo/auth"
	"github.com/padron-digital/testigo/cliparse"
	"github.com/padron-digital/testigo/metrics"
	"github.com/padron-digital/testigo/middleware"
	"github.com/padron-digital/testigo/models"
)

type VoterHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewVoterHandler(db *sql.DB, cfg cliparse.Config) *VoterHandler {
	return &VoterHandler{db: db, cfg: cfg}
}

// AddVoter handles POST /mesas/:mesa/voters
func (h *VoterHandler) AddVoter(w http.ResponseWriter, r *http.Request) {
	mesaID := r.PathValue("mesa")
	if mesaID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "mesa is required")
		return
	}

	if operatorID := requireOperator(w, r, h.cfg); operatorID == "" {
		return
	}

	var req models.AddVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Document = strings.TrimSpace(req.Document)
	req.FullName = strings.TrimSpace(req.FullName)
	if req.Document == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "document is required")
		return
	}
	if req.FullName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "full_name is required")
		return
	}

	// Mesa must exist
	var exists bool
	err := h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM mesa WHERE id = $1)`, mesaID).Scan(&exists)
	if err != nil {
		slog.Error("failed to query mesa", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Mesa no encontrada")
		return
	}

	voterID := uuid.NewString()
	_, err = h.db.Exec(`
		INSERT INTO votante (id, mesa_id, document, full_name, voted)
		VALUES ($1, $2, $3, $4, $5)
	`, voterID, mesaID, req.Document, req.FullName, false)

	if err != nil {
		if isUniqueViolationMessage(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "El documento ya está empadronado en esta mesa")
			return
		}
		slog.Error("failed to insert voter", "error", err, "mesa_id", mesaID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add voter")
		return
	}

	slog.Info("voter added", "mesa_id", mesaID, "voter_id", voterID)

	middleware.JSONResponse(w, http.StatusCreated, models.AddVoterResponse{VoterID: voterID})
}

// ListVoters handles GET /mesas/:mesa/voters?document=&q=&limit=
// document matches exactly; q matches a name substring.
func (h *VoterHandler) ListVoters(w http.ResponseWriter, r *http.Request) {
	mesaID := r.PathValue("mesa")
	if mesaID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "mesa is required")
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 || n > 500 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be 1-500")
			return
		}
		limit = n
	}

	query := `
		SELECT id, mesa_id, document, full_name, voted, voted_at
		FROM votante
		WHERE mesa_id = $1`
	args := []any{mesaID}

	if document := r.URL.Query().Get("document"); document != "" {
		args = append(args, document)
		query += ` AND document = $` + strconv.Itoa(len(args))
	}
	if q := r.URL.Query().Get("q"); q != "" {
		args = append(args, "%"+strings.ToLower(q)+"%")
		query += ` AND LOWER(full_name) LIKE $` + strconv.Itoa(len(args))
	}

	args = append(args, limit)
	query += ` ORDER BY full_name LIMIT $` + strconv.Itoa(len(args))

	rows, err := h.db.QueryContext(r.Context(), query, args...)
	if err != nil {
		slog.Error("failed to query voters", "error", err, "mesa_id", mesaID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	voters := []models.Voter{}
	for rows.Next() {
		var v models.Voter
		var votedAt sql.NullTime
		if err := rows.Scan(&v.ID, &v.MesaID, &v.Document, &v.FullName, &v.Voted, &votedAt); err != nil {
			slog.Error("failed to scan voter", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if votedAt.Valid {
			t := votedAt.Time
			v.VotedAt = &t
		}
		voters = append(voters, v)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate voters", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, voters)
}

// MarkVote handles POST /voters/:id/vote
// Marks the fiscalized vote; this is the write side of the vote count the
// sampling engine observes.
func (h *VoterHandler) MarkVote(w http.ResponseWriter, r *http.Request) {
	h.setVoted(w, r, true)
}

// UnmarkVote handles DELETE /voters/:id/vote
// Undoes an erroneous mark.
func (h *VoterHandler) UnmarkVote(w http.ResponseWriter, r *http.Request) {
	h.setVoted(w, r, false)
}

func (h *VoterHandler) setVoted(w http.ResponseWriter, r *http.Request, voted bool) {
	voterID := r.PathValue("id")
	if voterID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voter id is required")
		return
	}

	operatorID := requireOperator(w, r, h.cfg)
	if operatorID == "" {
		return
	}

	// On unmark the column goes back to NULL and the response carries no
	// timestamp.
	var votedAt *time.Time
	if voted {
		now := time.Now()
		votedAt = &now
	}

	res, err := h.db.ExecContext(r.Context(), `
		UPDATE votante
		SET voted = $1, voted_at = $2
		WHERE id = $3 AND voted = $4
	`, voted, votedAt, voterID, !voted)

	if err != nil {
		slog.Error("failed to update voter", "error", err, "voter_id", voterID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	affected, err := res.RowsAffected()
	if err != nil {
		slog.Error("failed to read rows affected", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if affected == 0 {
		var mesaID string
		err := h.db.QueryRow(`SELECT mesa_id FROM votante WHERE id = $1`, voterID).Scan(&mesaID)
		if err == sql.ErrNoRows {
			middleware.ErrorResponse(w, http.StatusNotFound, "Votante no encontrado")
			return
		}
		if err != nil {
			slog.Error("failed to query voter", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if voted {
			middleware.ErrorResponse(w, http.StatusConflict, "El votante ya tiene el voto marcado")
		} else {
			middleware.ErrorResponse(w, http.StatusConflict, "El votante no tiene el voto marcado")
		}
		return
	}

	var mesaID string
	var voteCount int
	err = h.db.QueryRowContext(r.Context(), `
		SELECT v.mesa_id,
		       (SELECT COUNT(*) FROM votante WHERE mesa_id = v.mesa_id AND voted = $1)
		FROM votante v
		WHERE v.id = $2
	`, true, voterID).Scan(&mesaID, &voteCount)
	if err != nil {
		slog.Error("failed to count votes", "error", err, "voter_id", voterID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if voted {
		metrics.VotesMarked.Inc()
	}

	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.OperatorKeySalt)
	slog.Info("vote mark updated",
		"voter_id", voterID,
		"mesa_id", mesaID,
		"voted", voted,
		"operator_id", operatorID,
		"ip_hash", ipHash,
	)

	middleware.JSONResponse(w, http.StatusOK, models.MarkVoteResponse{
		VoterID:   voterID,
		VoteCount: voteCount,
		VotedAt:   votedAt,
	})
}
