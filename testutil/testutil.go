// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/padron-digital/testigo/auth"
	"github.com/padron-digital/testigo/cliparse"
	"github.com/padron-digital/testigo/db"
)

// SetupTestDB creates a fresh in-memory sqlite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:            3419,
		DatabaseURL:     ":memory:",
		DatabaseType:    "sqlite",
		OperatorKeySalt: "test-operator-salt",
	}
}

// CreateTestOperator creates an operator and returns its ID and key
func CreateTestOperator(t *testing.T, conn *sql.DB, cfg cliparse.Config, name string) (operatorID, operatorKey string) {
	t.Helper()

	operatorID, _ = auth.GenerateID(16)
	operatorKey = auth.GenerateOperatorKey(operatorID, cfg.OperatorKeySalt)

	_, err := conn.Exec(`
		INSERT INTO operator (id, name, created_at)
		VALUES ($1, $2, $3)
	`, operatorID, name, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test operator: %v", err)
	}

	return operatorID, operatorKey
}

// CreateTestMesa creates a mesa and returns its ID
func CreateTestMesa(t *testing.T, conn *sql.DB, number int, school string) string {
	t.Helper()

	mesaID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO mesa (id, number, school)
		VALUES ($1, $2, $3)
	`, mesaID, number, school)
	if err != nil {
		t.Fatalf("Failed to create test mesa: %v", err)
	}

	return mesaID
}

// AddTestVoter adds a padrón entry to a mesa and returns the voter ID
func AddTestVoter(t *testing.T, conn *sql.DB, mesaID, document, fullName string) string {
	t.Helper()

	voterID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO votante (id, mesa_id, document, full_name, voted)
		VALUES ($1, $2, $3, $4, $5)
	`, voterID, mesaID, document, fullName, false)
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}

	return voterID
}

// MarkTestVotes creates n voters on a mesa and marks them all as voted.
// Useful for moving a mesa's vote count to a known value.
func MarkTestVotes(t *testing.T, conn *sql.DB, mesaID string, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		voterID := uuid.NewString()
		_, err := conn.Exec(`
			INSERT INTO votante (id, mesa_id, document, full_name, voted, voted_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, voterID, mesaID, uuid.NewString(), "Voted Voter", true, time.Now())
		if err != nil {
			t.Fatalf("Failed to create voted test voter: %v", err)
		}
	}
}

// CreateFinalizedSample inserts a finalized sample row directly.
// ballotsConsumed and votesDelta determine the stored efficiency inputs.
func CreateFinalizedSample(t *testing.T, conn *sql.DB, mesaID, operatorID string, ballotsConsumed, votesDelta int, isValid bool) string {
	t.Helper()

	sampleID := uuid.NewString()
	now := time.Now()
	pileAtStart := ballotsConsumed + 1
	pileAtEnd := pileAtStart - ballotsConsumed

	_, err := conn.Exec(`
		INSERT INTO sample (id, mesa_id, operator_id, started_at, pile_at_start, votes_at_start,
			pile_at_end, votes_at_end, ballots_consumed, votes_delta, is_valid, finalized_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, sampleID, mesaID, operatorID, now, pileAtStart, 0,
		pileAtEnd, votesDelta, ballotsConsumed, votesDelta, isValid, now)
	if err != nil {
		t.Fatalf("Failed to create test sample: %v", err)
	}

	return sampleID
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// OperatorHeaders returns the auth headers for an operator
func OperatorHeaders(operatorID, operatorKey string) map[string]string {
	return map[string]string{
		"X-Operator-Id":  operatorID,
		"X-Operator-Key": operatorKey,
	}
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
