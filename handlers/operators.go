// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/padron-digital/testigo/auth"
	"github.com/padron-digital/testigo/cliparse"
	"github.com/padron-digital/testigo/middleware"
	"github.com/padron-digital/testigo/models"
)

type OperatorHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewOperatorHandler(db *sql.DB, cfg cliparse.Config) *OperatorHandler {
	return &OperatorHandler{db: db, cfg: cfg}
}

// Register handles POST /operators/register
// Creates an operator and returns its ID plus the HMAC-derived key used to
// authenticate all mutating operations.
func (h *OperatorHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterOperatorRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if len(req.Name) < 2 || len(req.Name) > 100 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name must be 2-100 characters")
		return
	}

	operatorID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate operator ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register operator")
		return
	}

	_, err = h.db.Exec(`
		INSERT INTO operator (id, name, created_at)
		VALUES ($1, $2, $3)
	`, operatorID, req.Name, time.Now())

	if err != nil {
		if isUniqueViolationMessage(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Operator name already taken")
			return
		}
		slog.Error("failed to insert operator", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register operator")
		return
	}

	slog.Info("operator registered", "operator_id", operatorID, "name", req.Name)

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterOperatorResponse{
		OperatorID:  operatorID,
		OperatorKey: auth.GenerateOperatorKey(operatorID, h.cfg.OperatorKeySalt),
	})
}

// requireOperator validates the X-Operator-Id / X-Operator-Key header pair.
// Returns the operator ID, or "" after writing the error response.
func requireOperator(w http.ResponseWriter, r *http.Request, cfg cliparse.Config) string {
	operatorID := r.Header.Get("X-Operator-Id")
	operatorKey := r.Header.Get("X-Operator-Key")
	if operatorID == "" || operatorKey == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Operator-Id and X-Operator-Key headers required")
		return ""
	}
	if err := auth.ValidateOperatorKey(operatorID, operatorKey, cfg.OperatorKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid operator key")
		return ""
	}
	return operatorID
}

// isUniqueViolationMessage matches the duplicate-key wording of both
// supported backends.
func isUniqueViolationMessage(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique index")
}
