// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"encoding/hex"
	"testing"
)

func TestGenerateID(t *testing.T) {
	id, err := GenerateID(16)
	if err != nil {
		t.Fatalf("GenerateID failed: %v", err)
	}
	if len(id) != 32 {
		t.Errorf("Expected 32 hex chars, got %d", len(id))
	}
	if _, err := hex.DecodeString(id); err != nil {
		t.Errorf("ID is not valid hex: %v", err)
	}

	other, _ := GenerateID(16)
	if id == other {
		t.Error("Two generated IDs should not collide")
	}
}

func TestOperatorKeyRoundTrip(t *testing.T) {
	const salt = "test-operator-salt"

	key := GenerateOperatorKey("op-123", salt)
	if key == "" {
		t.Fatal("Expected non-empty operator key")
	}

	if err := ValidateOperatorKey("op-123", key, salt); err != nil {
		t.Errorf("Valid key rejected: %v", err)
	}

	// Deterministic: same inputs, same key
	if key != GenerateOperatorKey("op-123", salt) {
		t.Error("Operator key should be deterministic")
	}
}

func TestValidateOperatorKeyRejects(t *testing.T) {
	const salt = "test-operator-salt"
	key := GenerateOperatorKey("op-123", salt)

	tests := []struct {
		name       string
		operatorID string
		key        string
		salt       string
	}{
		{"wrong operator", "op-456", key, salt},
		{"wrong salt", "op-123", key, "other-salt"},
		{"tampered key", "op-123", key + "x", salt},
		{"empty key", "op-123", "", salt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateOperatorKey(tt.operatorID, tt.key, tt.salt); err != ErrInvalidOperatorKey {
				t.Errorf("Expected ErrInvalidOperatorKey, got %v", err)
			}
		})
	}
}

func TestHashIP(t *testing.T) {
	h1 := HashIP("192.168.1.10", "salt")
	h2 := HashIP("192.168.1.10", "salt")
	h3 := HashIP("192.168.1.11", "salt")

	if h1 != h2 {
		t.Error("Same IP and salt should hash identically")
	}
	if h1 == h3 {
		t.Error("Different IPs should hash differently")
	}
	if len(h1) != 16 {
		t.Errorf("Expected 16 hex chars, got %d", len(h1))
	}
}
