// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/padron-digital/testigo/cliparse"
	"github.com/padron-digital/testigo/middleware"
	"github.com/padron-digital/testigo/models"
)

type MesaHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewMesaHandler(db *sql.DB, cfg cliparse.Config) *MesaHandler {
	return &MesaHandler{db: db, cfg: cfg}
}

// CreateMesa handles POST /mesas
func (h *MesaHandler) CreateMesa(w http.ResponseWriter, r *http.Request) {
	if operatorID := requireOperator(w, r, h.cfg); operatorID == "" {
		return
	}

	var req models.CreateMesaRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Number <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "number must be positive")
		return
	}
	if req.School == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "school is required")
		return
	}

	mesaID := uuid.NewString()
	_, err := h.db.Exec(`
		INSERT INTO mesa (id, number, school)
		VALUES ($1, $2, $3)
	`, mesaID, req.Number, req.School)

	if err != nil {
		if isUniqueViolationMessage(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "La mesa ya existe")
			return
		}
		slog.Error("failed to insert mesa", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create mesa")
		return
	}

	slog.Info("mesa created", "mesa_id", mesaID, "number", req.Number)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateMesaResponse{MesaID: mesaID})
}

// ListMesas handles GET /mesas
func (h *MesaHandler) ListMesas(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.QueryContext(r.Context(), `
		SELECT m.id, m.number, m.school, m.fiscal_id,
		       COUNT(v.id),
		       COUNT(CASE WHEN v.voted THEN 1 END)
		FROM mesa m
		LEFT JOIN votante v ON v.mesa_id = m.id
		GROUP BY m.id, m.number, m.school, m.fiscal_id
		ORDER BY m.number
	`)
	if err != nil {
		slog.Error("failed to query mesas", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	mesas := []models.Mesa{}
	for rows.Next() {
		var m models.Mesa
		var fiscalID sql.NullString
		if err := rows.Scan(&m.ID, &m.Number, &m.School, &fiscalID, &m.VoterCount, &m.VoteCount); err != nil {
			slog.Error("failed to scan mesa", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if fiscalID.Valid {
			f := fiscalID.String
			m.FiscalID = &f
		}
		mesas = append(mesas, m)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate mesas", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, mesas)
}

// AssignFiscal handles PUT /mesas/:id/fiscal
func (h *MesaHandler) AssignFiscal(w http.ResponseWriter, r *http.Request) {
	mesaID := r.PathValue("id")
	if mesaID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "mesa id is required")
		return
	}

	if operatorID := requireOperator(w, r, h.cfg); operatorID == "" {
		return
	}

	var req models.AssignFiscalRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.OperatorID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "operator_id is required")
		return
	}

	// Assigned fiscal must be a registered operator
	var exists bool
	err := h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM operator WHERE id = $1)`, req.OperatorID).Scan(&exists)
	if err != nil {
		slog.Error("failed to query operator", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Operador no encontrado")
		return
	}

	res, err := h.db.Exec(`UPDATE mesa SET fiscal_id = $1 WHERE id = $2`, req.OperatorID, mesaID)
	if err != nil {
		slog.Error("failed to assign fiscal", "error", err, "mesa_id", mesaID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to assign fiscal")
		return
	}

	affected, err := res.RowsAffected()
	if err != nil {
		slog.Error("failed to read rows affected", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Mesa no encontrada")
		return
	}

	slog.Info("fiscal assigned", "mesa_id", mesaID, "operator_id", req.OperatorID)

	middleware.JSONResponse(w, http.StatusOK, map[string]string{
		"mesa_id":     mesaID,
		"operator_id": req.OperatorID,
	})
}
